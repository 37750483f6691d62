package thermal

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/banshee-data/thermal.report/internal/fsutil"
	"github.com/banshee-data/thermal.report/internal/security"
)

func TestParseLayout(t *testing.T) {
	t.Parallel()

	t.Run("valid", func(t *testing.T) {
		order, err := ParseLayout([]byte(`{"sensor_order": [[1, "01"], [2, "01"], [1, "02"]]}`))
		require.NoError(t, err)
		assert.Equal(t, LayoutOrder{{1, "01"}, {2, "01"}, {1, "02"}}, order)
	})

	t.Run("empty list", func(t *testing.T) {
		order, err := ParseLayout([]byte(`{"sensor_order": []}`))
		require.NoError(t, err)
		assert.Empty(t, order)
	})

	errorCases := map[string]string{
		"invalid json":      `{"sensor_order": [[1, "01"]`,
		"missing key":       `{"order": [[1, "01"]]}`,
		"null list":         `{"sensor_order": null}`,
		"entry wrong arity": `{"sensor_order": [[1]]}`,
		"entry bad index":   `{"sensor_order": [["a", "01"]]}`,
		"entry bad group":   `{"sensor_order": [[1, 2]]}`,
		"not an object":     `[[1, "01"]]`,
	}
	for name, in := range errorCases {
		t.Run(name, func(t *testing.T) {
			_, err := ParseLayout([]byte(in))
			assert.ErrorIs(t, err, ErrLayoutMalformed)
		})
	}
}

func TestLayoutRoundTripHasNoWarnings(t *testing.T) {
	t.Parallel()

	ids := moduleIDs(12)
	data, err := MarshalLayout(LayoutOrder(ids))
	require.NoError(t, err)

	order, err := ParseLayout(data)
	require.NoError(t, err)
	assert.Equal(t, LayoutOrder(ids), order)
	assert.Empty(t, Validate(order, recordsFor(ids), DefaultModuleConfig()))
}

func TestLayoutStore(t *testing.T) {
	t.Parallel()

	fsys := fsutil.NewMemoryFileSystem()
	store := NewLayoutStore(fsys, "layouts")

	order := LayoutOrder(moduleIDs(1))
	require.NoError(t, store.Save("HVB_065_400_T", order))
	require.NoError(t, fsys.WriteFile("layouts/notes.txt", []byte("x"), 0o644))
	require.NoError(t, fsys.WriteFile("layouts/.hidden.json", []byte("{}"), 0o644))

	got, err := store.Load("HVB_065_400_T")
	require.NoError(t, err)
	assert.Equal(t, order, got)

	names, err := store.Names()
	require.NoError(t, err)
	assert.Equal(t, []string{"HVB_065_400_T"}, names)

	_, err = store.Load("HVB_999")
	assert.ErrorIs(t, err, ErrLayoutNotFound)

	for _, name := range []string{"../etc/passwd", "a/b", "", ".."} {
		_, err = store.Load(name)
		assert.ErrorIs(t, err, security.ErrInvalidName, "name %q", name)
	}

	require.NoError(t, fsys.WriteFile("layouts/broken.json", []byte(`{"sensor_order": [[0, "01"]]}`), 0o644))
	_, err = store.Load("broken")
	assert.ErrorIs(t, err, ErrLayoutMalformed)
}

func TestOSLayoutStore(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "HVB_340_800_L.json"), []byte(`{"sensor_order": [[1, "01"]]}`), 0o644))

	store := NewOSLayoutStore(dir)
	order, err := store.Load("HVB_340_800_L")
	require.NoError(t, err)
	assert.Equal(t, LayoutOrder{{1, "01"}}, order)

	names, err := store.Names()
	require.NoError(t, err)
	assert.Equal(t, []string{"HVB_340_800_L"}, names)

	_, err = store.Load("missing")
	assert.ErrorIs(t, err, ErrLayoutNotFound)
}
