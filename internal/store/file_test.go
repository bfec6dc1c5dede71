package store

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestLoadDocumentFile tests reading a file into its cacheable form
func TestLoadDocumentFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "design.pdf")
	require.NoError(t, os.WriteFile(path, []byte("%PDF-1.4 fake"), 0o644))

	file, err := LoadDocumentFile(path)
	require.NoError(t, err)

	assert.Equal(t, "design.pdf", file.Name)
	assert.Equal(t, "application/pdf", file.MimeType)
	assert.Equal(t, []byte("%PDF-1.4 fake"), file.Content)
	assert.True(t, strings.HasPrefix(file.DataURI, "data:application/pdf;base64,"))
	assert.Greater(t, file.LastModified, int64(0))
}

// TestLoadDocumentFileUnknownExtension tests the PDF mime fallback
func TestLoadDocumentFileUnknownExtension(t *testing.T) {
	path := filepath.Join(t.TempDir(), "document.unknownext")
	require.NoError(t, os.WriteFile(path, []byte("content"), 0o644))

	file, err := LoadDocumentFile(path)
	require.NoError(t, err)
	assert.Equal(t, "application/pdf", file.MimeType)
}

// TestLoadDocumentFileErrors tests missing files and directories
func TestLoadDocumentFileErrors(t *testing.T) {
	_, err := LoadDocumentFile(filepath.Join(t.TempDir(), "missing.pdf"))
	assert.Error(t, err)

	_, err = LoadDocumentFile(t.TempDir())
	assert.Error(t, err)
}
