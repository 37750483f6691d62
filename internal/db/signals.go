package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"math"
	"regexp"

	"github.com/banshee-data/thermal.report/internal/monitoring"
	"github.com/banshee-data/thermal.report/internal/thermal"
)

// Sensor numbers of the coolant loop signals in signal_lookup.
const (
	SensorInlet  = 101
	SensorOutlet = 102
	SensorFlow   = 103
)

// ErrInvalidIdentifier is returned for table or column names that cannot be
// safely interpolated into SQL.
var ErrInvalidIdentifier = errors.New("invalid SQL identifier")

var identifierPattern = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// ValidateIdentifier checks a table or column name.
func ValidateIdentifier(name string) error {
	if !identifierPattern.MatchString(name) {
		return fmt.Errorf("%w: %q", ErrInvalidIdentifier, name)
	}
	return nil
}

// SignalLookup tells where one signal of one recording is stored.
type SignalLookup struct {
	FileID       string
	SensorNumber int
	TableName    string
	ChannelName  string
	// Priority orders candidates for the same signal, lowest first.
	Priority int
}

// AddSignalLookup registers a candidate location for a signal.
func (db *DB) AddSignalLookup(l SignalLookup) error {
	if err := ValidateIdentifier(l.TableName); err != nil {
		return err
	}
	if err := ValidateIdentifier(l.ChannelName); err != nil {
		return err
	}
	_, err := db.Exec(
		`INSERT INTO signal_lookup (file_id, sensor_number, table_name, channel_name, priority)
		 VALUES (?, ?, ?, ?, ?)`,
		l.FileID, l.SensorNumber, l.TableName, l.ChannelName, l.Priority,
	)
	if err != nil {
		return fmt.Errorf("failed to insert signal lookup: %w", err)
	}
	return nil
}

// SignalLookups returns the candidates for one signal of a recording in
// priority order.
func (db *DB) SignalLookups(ctx context.Context, fileID string, sensorNumber int) ([]SignalLookup, error) {
	rows, err := db.QueryContext(ctx,
		`SELECT file_id, sensor_number, table_name, channel_name, priority
		 FROM signal_lookup
		 WHERE file_id = ? AND sensor_number = ?
		 ORDER BY priority, rowid`,
		fileID, sensorNumber,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query signal lookup: %w", err)
	}
	defer rows.Close()

	var out []SignalLookup
	for rows.Next() {
		var l SignalLookup
		if err := rows.Scan(&l.FileID, &l.SensorNumber, &l.TableName, &l.ChannelName, &l.Priority); err != nil {
			return nil, fmt.Errorf("failed to scan signal lookup: %w", err)
		}
		out = append(out, l)
	}
	return out, rows.Err()
}

// Signal returns the first non-empty series among the candidates for one
// signal. NULL samples are dropped. Candidates whose table or column is
// invalid or missing are logged and skipped. A signal with no usable
// candidate is a nil series.
func (db *DB) Signal(ctx context.Context, fileID string, sensorNumber int) ([]float64, error) {
	candidates, err := db.SignalLookups(ctx, fileID, sensorNumber)
	if err != nil {
		return nil, err
	}
	for _, c := range candidates {
		values, err := db.readColumn(ctx, c)
		if err != nil {
			monitoring.Logf("db: sensor %d of file %s in %s.%s: %v", sensorNumber, fileID, c.TableName, c.ChannelName, err)
			continue
		}
		if len(values) > 0 {
			return values, nil
		}
	}
	return nil, nil
}

func (db *DB) readColumn(ctx context.Context, l SignalLookup) ([]float64, error) {
	if err := ValidateIdentifier(l.TableName); err != nil {
		return nil, err
	}
	if err := ValidateIdentifier(l.ChannelName); err != nil {
		return nil, err
	}
	order, err := db.sampleOrder(ctx, l.TableName)
	if err != nil {
		return nil, err
	}
	query := fmt.Sprintf(`SELECT "%s" FROM "%s" WHERE file_id = ? ORDER BY %s`, l.ChannelName, l.TableName, order)
	rows, err := db.QueryContext(ctx, query, l.FileID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var values []float64
	for rows.Next() {
		var v sql.NullFloat64
		if err := rows.Scan(&v); err != nil {
			return nil, err
		}
		if v.Valid {
			values = append(values, v.Float64)
		}
	}
	return values, rows.Err()
}

// sampleOrder returns the ORDER BY key for a signal table: sample_index when
// the table carries one, otherwise insertion order.
func (db *DB) sampleOrder(ctx context.Context, table string) (string, error) {
	var n int
	err := db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM pragma_table_info(?) WHERE name = 'sample_index'`, table,
	).Scan(&n)
	if err != nil {
		return "", err
	}
	if n > 0 {
		return "sample_index", nil
	}
	return "rowid", nil
}

// CoolantSignals resolves inlet temperature, outlet temperature and flow for
// a recording. Missing signals are left empty.
func (db *DB) CoolantSignals(ctx context.Context, fileID string) (thermal.CoolantSeries, error) {
	var out thermal.CoolantSeries
	for _, s := range []struct {
		number int
		dst    *[]float64
	}{
		{SensorInlet, &out.Inlet},
		{SensorOutlet, &out.Outlet},
		{SensorFlow, &out.Flow},
	} {
		values, err := db.Signal(ctx, fileID, s.number)
		if err != nil {
			return thermal.CoolantSeries{}, err
		}
		*s.dst = values
	}
	return out, nil
}

// ImportSamples stores coolant samples for a recording in coolant_samples
// and registers them in signal_lookup. Series may differ in length; missing
// samples are stored as NULL. Existing samples for fileID are replaced.
func (db *DB) ImportSamples(ctx context.Context, fileID string, c thermal.CoolantSeries) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin import: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM coolant_samples WHERE file_id = ?`, fileID); err != nil {
		return fmt.Errorf("failed to clear samples: %w", err)
	}
	if _, err := tx.ExecContext(ctx,
		`DELETE FROM signal_lookup WHERE file_id = ? AND table_name = 'coolant_samples'`, fileID); err != nil {
		return fmt.Errorf("failed to clear lookups: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO coolant_samples (file_id, sample_index, coolant_inlet, coolant_outlet, coolant_flow)
		 VALUES (?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("failed to prepare insert: %w", err)
	}
	defer stmt.Close()

	n := max(len(c.Inlet), len(c.Outlet), len(c.Flow))
	for i := 0; i < n; i++ {
		if _, err := stmt.ExecContext(ctx, fileID, i, nullAt(c.Inlet, i), nullAt(c.Outlet, i), nullAt(c.Flow, i)); err != nil {
			return fmt.Errorf("failed to insert sample %d: %w", i, err)
		}
	}

	for _, l := range []struct {
		number int
		column string
		series []float64
	}{
		{SensorInlet, "coolant_inlet", c.Inlet},
		{SensorOutlet, "coolant_outlet", c.Outlet},
		{SensorFlow, "coolant_flow", c.Flow},
	} {
		if len(l.series) == 0 {
			continue
		}
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO signal_lookup (file_id, sensor_number, table_name, channel_name) VALUES (?, ?, 'coolant_samples', ?)`,
			fileID, l.number, l.column); err != nil {
			return fmt.Errorf("failed to register sensor %d: %w", l.number, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit import: %w", err)
	}
	monitoring.Logf("db: imported %d coolant samples for file %s", n, fileID)
	return nil
}

func nullAt(series []float64, i int) sql.NullFloat64 {
	if i >= len(series) || math.IsNaN(series[i]) {
		return sql.NullFloat64{}
	}
	return sql.NullFloat64{Float64: series[i], Valid: true}
}
