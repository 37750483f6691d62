package thermal

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"
	"strings"

	"github.com/banshee-data/thermal.report/internal/fsutil"
	"github.com/banshee-data/thermal.report/internal/security"
)

// maxLayoutFileSize bounds how much of a layout file is read.
const maxLayoutFileSize = 1 * 1024 * 1024

// layoutFile is the on-disk layout document. SensorOrder is a pointer so a
// missing key can be told apart from an empty list.
type layoutFile struct {
	SensorOrder *[]SensorID `json:"sensor_order"`
}

// ParseLayout decodes a layout document of the form
// {"sensor_order": [[1, "01"], [2, "01"], ...]}.
func ParseLayout(data []byte) (LayoutOrder, error) {
	var doc layoutFile
	if err := json.Unmarshal(data, &doc); err != nil {
		if errors.Is(err, ErrLayoutMalformed) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %v", ErrLayoutMalformed, err)
	}
	if doc.SensorOrder == nil {
		return nil, fmt.Errorf("%w: missing sensor_order", ErrLayoutMalformed)
	}
	return LayoutOrder(*doc.SensorOrder), nil
}

// MarshalLayout encodes order in the layout file format.
func MarshalLayout(order LayoutOrder) ([]byte, error) {
	ids := []SensorID(order)
	if ids == nil {
		ids = []SensorID{}
	}
	return json.MarshalIndent(layoutFile{SensorOrder: &ids}, "", "  ")
}

// LoadLayoutFile reads and parses the layout at path.
func LoadLayoutFile(fsys fsutil.FileSystem, path string) (LayoutOrder, error) {
	info, err := fsys.Stat(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrLayoutNotFound, path)
		}
		return nil, fmt.Errorf("failed to stat layout file: %w", err)
	}
	if info.Size() > maxLayoutFileSize {
		return nil, fmt.Errorf("%w: %s is %d bytes, maximum is %d", ErrLayoutMalformed, path, info.Size(), maxLayoutFileSize)
	}

	data, err := fsys.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read layout file: %w", err)
	}

	order, err := ParseLayout(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return order, nil
}

// LayoutStore resolves layout names to <dir>/<name>.json.
type LayoutStore struct {
	fs  fsutil.FileSystem
	dir string

	// checkPath additionally confirms a resolved path stays inside dir.
	// Only set for on-disk stores, where symlinks can be followed.
	checkPath func(path, dir string) error
}

// NewLayoutStore returns a store reading layouts from dir through fsys.
func NewLayoutStore(fsys fsutil.FileSystem, dir string) *LayoutStore {
	return &LayoutStore{fs: fsys, dir: dir}
}

// NewOSLayoutStore returns a store over a directory on disk.
func NewOSLayoutStore(dir string) *LayoutStore {
	s := NewLayoutStore(fsutil.OSFileSystem{}, dir)
	s.checkPath = security.ValidatePathWithinDirectory
	return s
}

// Dir returns the directory layouts are read from.
func (s *LayoutStore) Dir() string { return s.dir }

// Path returns the file path for the named layout.
func (s *LayoutStore) Path(name string) (string, error) {
	if err := security.ValidateFileName(name); err != nil {
		return "", fmt.Errorf("layout %q: %w", name, err)
	}
	path := filepath.Join(s.dir, name+".json")
	if s.checkPath != nil {
		if err := s.checkPath(path, s.dir); err != nil {
			return "", fmt.Errorf("layout %q: %w", name, err)
		}
	}
	return path, nil
}

// Load reads the named layout.
func (s *LayoutStore) Load(name string) (LayoutOrder, error) {
	path, err := s.Path(name)
	if err != nil {
		return nil, err
	}
	return LoadLayoutFile(s.fs, path)
}

// Save writes order as the named layout, creating the directory if needed.
func (s *LayoutStore) Save(name string, order LayoutOrder) error {
	path, err := s.Path(name)
	if err != nil {
		return err
	}
	data, err := MarshalLayout(order)
	if err != nil {
		return fmt.Errorf("failed to encode layout: %w", err)
	}
	if err := s.fs.MkdirAll(s.dir, 0o755); err != nil {
		return fmt.Errorf("failed to create layout directory: %w", err)
	}
	if err := s.fs.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write layout: %w", err)
	}
	return nil
}

// Names lists the available layout names, sorted.
func (s *LayoutStore) Names() ([]string, error) {
	matches, err := s.fs.Glob(filepath.Join(s.dir, "*.json"))
	if err != nil {
		return nil, fmt.Errorf("failed to list layouts: %w", err)
	}
	names := make([]string, 0, len(matches))
	for _, m := range matches {
		name := strings.TrimSuffix(filepath.Base(m), ".json")
		if security.ValidateFileName(name) == nil {
			names = append(names, name)
		}
	}
	return names, nil
}
