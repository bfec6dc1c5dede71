// Package workspace decides which backend document a project view operates
// on.
package workspace

import (
	"errors"
	"strconv"

	"github.com/docsentry/docsentry/pkg/models"
)

var (
	// ErrInvalidFileID is returned before any network call when an explicit
	// id is not a positive integer.
	ErrInvalidFileID = errors.New("Invalid file ID")

	// ErrNoDocument means resolution ended in an explicit empty state: the
	// project has no usable document and the backend list is empty.
	ErrNoDocument = errors.New("no document for this project")
)

// Source records which rule produced a resolution.
type Source int

const (
	// SourceNavigation means an explicit id was supplied by the caller.
	SourceNavigation Source = iota
	// SourceProject means the project's stored file id matched a live document.
	SourceProject
	// SourceFallback means the first backend document was used.
	SourceFallback
)

// Resolution is the outcome of document resolution.
type Resolution struct {
	FileID   int64
	Document *models.Document // nil when an explicit id is not in the list
	Source   Source
}

// Resolve determines the active document for a project. In order: an
// explicit id from navigation, the project's stored file id matched against
// the live document list, the first backend document, and finally
// ErrNoDocument. An unresolved id is never passed downstream.
func Resolve(navID string, project *models.Project, docs []models.Document) (*Resolution, error) {
	if navID != "" {
		fileID, err := strconv.ParseInt(navID, 10, 64)
		if err != nil || fileID <= 0 {
			return nil, ErrInvalidFileID
		}
		return &Resolution{FileID: fileID, Document: findDocument(docs, fileID), Source: SourceNavigation}, nil
	}

	if project != nil && project.FileID > 0 {
		if doc := findDocument(docs, project.FileID); doc != nil {
			return &Resolution{FileID: doc.FileID, Document: doc, Source: SourceProject}, nil
		}
	}

	if len(docs) > 0 {
		doc := docs[0]
		return &Resolution{FileID: doc.FileID, Document: &doc, Source: SourceFallback}, nil
	}

	return nil, ErrNoDocument
}

func findDocument(docs []models.Document, fileID int64) *models.Document {
	for i := range docs {
		if docs[i].FileID == fileID {
			return &docs[i]
		}
	}
	return nil
}
