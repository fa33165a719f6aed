package pdf

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/FACorreiaa/pesa-insights/internal/domain/statement/parser"
)

func TestWithLocalPath_TempFile(t *testing.T) {
	var seen string

	err := withLocalPath(parser.Source{Data: []byte("%PDF-1.7")}, func(path string) error {
		seen = path
		data, err := os.ReadFile(path)
		require.NoError(t, err)
		assert.Equal(t, []byte("%PDF-1.7"), data)
		return nil
	})

	require.NoError(t, err)
	require.NotEmpty(t, seen)
	_, statErr := os.Stat(seen)
	assert.True(t, os.IsNotExist(statErr), "temp file should be removed")
}

func TestWithLocalPath_TempFileRemovedOnError(t *testing.T) {
	var seen string
	boom := errors.New("render failed")

	err := withLocalPath(parser.Source{Data: []byte("x")}, func(path string) error {
		seen = path
		return boom
	})

	assert.ErrorIs(t, err, boom)
	_, statErr := os.Stat(seen)
	assert.True(t, os.IsNotExist(statErr))
}

func TestWithLocalPath_TempFileRemovedOnPanic(t *testing.T) {
	var seen string

	assert.Panics(t, func() {
		_ = withLocalPath(parser.Source{Data: []byte("x")}, func(path string) error {
			seen = path
			panic("native fault")
		})
	})

	_, statErr := os.Stat(seen)
	assert.True(t, os.IsNotExist(statErr))
}

func TestWithLocalPath_CallerFileKept(t *testing.T) {
	path := filepath.Join(t.TempDir(), "upload.pdf")
	require.NoError(t, os.WriteFile(path, []byte("%PDF-1.7"), 0o600))

	var seen string
	err := withLocalPath(parser.Source{Path: path, Data: []byte("%PDF-1.7")}, func(p string) error {
		seen = p
		return nil
	})

	require.NoError(t, err)
	assert.Equal(t, path, seen)
	_, statErr := os.Stat(path)
	assert.NoError(t, statErr)
}

func TestWithLocalPath_MissingCallerFileFallsBackToTemp(t *testing.T) {
	missing := filepath.Join(t.TempDir(), "gone.pdf")

	var seen string
	err := withLocalPath(parser.Source{Path: missing, Data: []byte("x")}, func(p string) error {
		seen = p
		return nil
	})

	require.NoError(t, err)
	assert.NotEqual(t, missing, seen)
}

func TestNewHintDecoder(t *testing.T) {
	assert.Nil(t, NewHintDecoder(false, nil))
	assert.NotNil(t, NewHintDecoder(true, nil))
}
