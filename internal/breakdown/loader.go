// Package breakdown fetches and tracks the security-analysis breakdown for
// a resolved document.
package breakdown

import (
	"context"
	"sync"

	"github.com/docsentry/docsentry/internal/workspace"
	"github.com/docsentry/docsentry/pkg/models"
)

// Analyzer is the slice of the API client this package needs.
type Analyzer interface {
	AnalyzeDocument(ctx context.Context, fileID int64, model string) (*models.Breakdown, error)
}

// Fetch requests the breakdown for a document. A missing or non-positive
// file id fails fast with workspace.ErrInvalidFileID before any network
// call. Exactly one request is issued; there is no retry. Sections absent
// from the response are normalized to empty rather than treated as a
// structural error.
func Fetch(ctx context.Context, analyzer Analyzer, fileID int64, model string) (*models.Breakdown, error) {
	if fileID <= 0 {
		return nil, workspace.ErrInvalidFileID
	}

	result, err := analyzer.AnalyzeDocument(ctx, fileID, model)
	if err != nil {
		return nil, err
	}

	normalize(result)
	return result, nil
}

func normalize(b *models.Breakdown) {
	if b.MajorComponents == nil {
		b.MajorComponents = []models.Component{}
	}
	if b.Diagrams == nil {
		b.Diagrams = []models.Diagram{}
	}
	if b.APIContracts == nil {
		b.APIContracts = []models.APIContract{}
	}
	if b.PIIData.IdentifiedFields == nil {
		b.PIIData.IdentifiedFields = []string{}
	}
	if b.PIIData.ComplianceStandards == nil {
		b.PIIData.ComplianceStandards = []string{}
	}
	for i := range b.MajorComponents {
		if b.MajorComponents[i].KeyFunctions == nil {
			b.MajorComponents[i].KeyFunctions = []string{}
		}
	}
	for i := range b.Diagrams {
		if b.Diagrams[i].KeyElements == nil {
			b.Diagrams[i].KeyElements = []string{}
		}
	}
	for i := range b.APIContracts {
		if b.APIContracts[i].Parameters == nil {
			b.APIContracts[i].Parameters = []models.Parameter{}
		}
		if b.APIContracts[i].ErrorCodes == nil {
			b.APIContracts[i].ErrorCodes = []string{}
		}
	}
}

// State tracks a single load of the breakdown view.
type State int

const (
	// StateLoading is entered fresh on every navigation to a document.
	StateLoading State = iota
	// StateReady means the breakdown arrived and is renderable.
	StateReady
	// StateError means the load failed; Err carries the message.
	StateError
)

// Loader is the breakdown view's state machine. Each Begin starts a fresh
// load and bumps the generation; a Finish carrying a stale generation is
// dropped, so a response outliving a navigation never overwrites the newer
// view.
type Loader struct {
	mu         sync.Mutex
	state      State
	result     *models.Breakdown
	err        error
	generation int
}

// NewLoader returns a loader in the Loading state.
func NewLoader() *Loader {
	return &Loader{state: StateLoading}
}

// Begin starts a fresh load and returns its generation token.
func (l *Loader) Begin() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.generation++
	l.state = StateLoading
	l.result = nil
	l.err = nil
	return l.generation
}

// Finish records the outcome of a load begun with the given generation.
func (l *Loader) Finish(gen int, result *models.Breakdown, err error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if gen != l.generation {
		return
	}
	if err != nil {
		l.state = StateError
		l.err = err
		return
	}
	l.state = StateReady
	l.result = result
}

// State returns the current load state.
func (l *Loader) State() State {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.state
}

// Result returns the loaded breakdown, nil unless StateReady.
func (l *Loader) Result() *models.Breakdown {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.result
}

// Err returns the load failure, nil unless StateError.
func (l *Loader) Err() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.err
}
