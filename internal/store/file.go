package store

import (
	"encoding/base64"
	"fmt"
	"mime"
	"os"
	"path/filepath"
)

// DocumentFile is an on-disk file prepared for upload and local caching.
type DocumentFile struct {
	Name         string
	MimeType     string
	DataURI      string // self-describing base64 representation for the cache
	LastModified int64
	Content      []byte
}

// LoadDocumentFile reads a file from disk and builds its cacheable
// representation. Nothing is written anywhere; persisting the result is the
// caller's job, and only after the backend accepted the upload.
func LoadDocumentFile(path string) (*DocumentFile, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read file: %w", err)
	}
	if info.IsDir() {
		return nil, fmt.Errorf("%s is a directory, not a document", path)
	}

	content, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read file: %w", err)
	}

	mimeType := mime.TypeByExtension(filepath.Ext(path))
	if mimeType == "" {
		mimeType = "application/pdf"
	}

	return &DocumentFile{
		Name:         filepath.Base(path),
		MimeType:     mimeType,
		DataURI:      fmt.Sprintf("data:%s;base64,%s", mimeType, base64.StdEncoding.EncodeToString(content)),
		LastModified: info.ModTime().UnixMilli(),
		Content:      content,
	}, nil
}
