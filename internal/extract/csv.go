package extract

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"
)

// ReadCSV decodes a column-per-channel CSV export. The header row holds the
// channel names; every following row is one sample. Empty or unparseable
// cells become NaN. A column with no parseable cell at all but at least one
// non-empty cell is reported as non-numeric.
func ReadCSV(r io.Reader) ([]Channel, error) {
	cr := csv.NewReader(r)
	cr.TrimLeadingSpace = true
	cr.FieldsPerRecord = -1

	header, err := cr.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("csv: missing header row")
		}
		return nil, fmt.Errorf("csv: failed to read header: %w", err)
	}

	channels := make([]Channel, len(header))
	parsed := make([]int, len(header))
	filled := make([]int, len(header))
	for i, name := range header {
		channels[i].Name = strings.TrimSpace(name)
	}

	line := 1
	for {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		line++
		if err != nil {
			return nil, fmt.Errorf("csv: line %d: %w", line, err)
		}
		for i := range channels {
			v := math.NaN()
			if i < len(rec) {
				if cell := strings.TrimSpace(rec[i]); cell != "" {
					filled[i]++
					if f, err := strconv.ParseFloat(cell, 64); err == nil {
						v = f
						parsed[i]++
					}
				}
			}
			channels[i].Samples = append(channels[i].Samples, v)
		}
	}

	for i := range channels {
		channels[i].Numeric = parsed[i] > 0 || filled[i] == 0
	}
	return channels, nil
}
