// Package chat maintains the in-memory conversation transcript and the
// send state machine for a project workspace.
package chat

import (
	"fmt"
	"strings"
	"sync"

	"github.com/docsentry/docsentry/pkg/models"
)

// State is the orchestrator's send state.
type State int

const (
	// StateIdle means no send is in flight.
	StateIdle State = iota
	// StateSending means a turn has been posted and the reply is pending.
	// Only one send may be in flight at a time.
	StateSending
)

const (
	// RoleUser marks a turn typed by the user.
	RoleUser = "user"
	// RoleAssistant marks a turn produced by the backend (or an error/
	// placeholder standing in for one).
	RoleAssistant = "assistant"
)

// Orchestrator holds one workspace's transcript. The transcript lives only
// in memory; it is destroyed with the orchestrator and never persisted.
//
// Results are correlated with the conversation context they were issued
// under through a generation counter: Reset bumps the generation, so a
// reply that arrives after the user switched projects is discarded instead
// of corrupting the newer view. Clear deliberately does not bump it; a
// reply landing after a clear appends to the now-empty transcript.
type Orchestrator struct {
	mu         sync.Mutex
	state      State
	transcript []models.ChatMessage
	generation int
	sessionID  string
}

// New creates an orchestrator bound to a chat session id.
func New(sessionID string) *Orchestrator {
	return &Orchestrator{sessionID: sessionID}
}

// State returns the current send state.
func (o *Orchestrator) State() State {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.state
}

// SessionID returns the session id replies are attributed to.
func (o *Orchestrator) SessionID() string {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.sessionID
}

// Transcript returns a copy of the conversation so far.
func (o *Orchestrator) Transcript() []models.ChatMessage {
	o.mu.Lock()
	defer o.mu.Unlock()
	out := make([]models.ChatMessage, len(o.transcript))
	copy(out, o.transcript)
	return out
}

// Begin starts a send: the user's turn is appended immediately and the
// state moves to Sending. It returns the generation token the caller must
// pass to Finish, and false when the text is empty or a send is already in
// flight.
func (o *Orchestrator) Begin(text string) (int, bool) {
	text = strings.TrimSpace(text)
	if text == "" {
		return 0, false
	}

	o.mu.Lock()
	defer o.mu.Unlock()
	if o.state == StateSending {
		return 0, false
	}

	o.transcript = append(o.transcript, models.ChatMessage{Role: RoleUser, Content: text})
	o.state = StateSending
	return o.generation, true
}

// Finish completes a send. A result from a stale generation is dropped.
// Otherwise exactly one assistant turn is appended: the answer on success,
// a placeholder when the response shape was unexpected, or the error
// message on failure. The state always returns to Idle.
func (o *Orchestrator) Finish(gen int, answer string, err error) {
	o.mu.Lock()
	defer o.mu.Unlock()
	if gen != o.generation {
		return
	}

	o.state = StateIdle
	switch {
	case err != nil:
		o.transcript = append(o.transcript, models.ChatMessage{
			Role:    RoleAssistant,
			Content: fmt.Sprintf("Error: %s. Please try again.", err.Error()),
		})
	case strings.TrimSpace(answer) == "":
		o.transcript = append(o.transcript, models.ChatMessage{
			Role:    RoleAssistant,
			Content: "Received an unexpected response from the backend. Please try again.",
		})
	default:
		o.transcript = append(o.transcript, models.ChatMessage{Role: RoleAssistant, Content: answer})
	}
}

// Clear empties the transcript. It can be called at any time, independent
// of in-flight sends.
func (o *Orchestrator) Clear() {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.transcript = nil
}

// Reset switches the orchestrator to a new conversation context. The
// transcript is emptied, the state returns to Idle, and the generation is
// bumped so replies from the previous context are discarded on arrival.
func (o *Orchestrator) Reset(sessionID string) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.sessionID = sessionID
	o.transcript = nil
	o.state = StateIdle
	o.generation++
}
