// Package replay renders a finished or in-flight run's memory.Memory back
// to a human as Markdown, optionally annotated with pinned notes, and
// prints it through github.com/charmbracelet/glamour for terminal styling.
//
// Notes accumulate in a FIFO-bounded, source-tagged Store that is
// interleaved into the rendered output rather than spliced back into the
// prompt sent to the model.
package replay

import (
	"fmt"
	"strings"
	"sync"
)

// MaxNotes is the maximum number of notes kept per run. FIFO eviction
// removes the oldest auto note first when exceeded.
const MaxNotes = 20

// NoteSource distinguishes auto-generated vs user-pinned notes.
type NoteSource string

const (
	SourceAuto   NoteSource = "auto"   // written by the driver as steps complete
	SourceManual NoteSource = "manual" // pinned by the operator while reviewing a replay
)

// Note is a single annotation attached to a step of a run's replay.
type Note struct {
	StepNumber int        `json:"step_number"` // 0 for run-level notes
	Source     NoteSource `json:"source"`
	Content    string     `json:"content"`
}

// Store holds replay notes per run ID. Thread-safe.
type Store struct {
	mu    sync.RWMutex
	notes map[string][]Note // runID → notes
}

// NewStore creates an empty note store.
func NewStore() *Store {
	return &Store{notes: make(map[string][]Note)}
}

// Append adds a note for runID, evicting the oldest auto note (or, failing
// that, the oldest note of any kind) once MaxNotes is exceeded.
func (s *Store) Append(runID string, note Note) {
	s.mu.Lock()
	defer s.mu.Unlock()

	notes := s.notes[runID]
	if len(notes) >= MaxNotes {
		evicted := -1
		for i := range notes {
			if notes[i].Source != SourceManual {
				evicted = i
				break
			}
		}
		if evicted == -1 {
			evicted = 0
		}
		notes = append(notes[:evicted], notes[evicted+1:]...)
	}
	s.notes[runID] = append(notes, note)
}

// Get returns a defensive copy of runID's notes, or nil if none exist.
func (s *Store) Get(runID string) []Note {
	s.mu.RLock()
	defer s.mu.RUnlock()
	notes := s.notes[runID]
	if notes == nil {
		return nil
	}
	cp := make([]Note, len(notes))
	copy(cp, notes)
	return cp
}

// Delete removes all notes for runID.
func (s *Store) Delete(runID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.notes, runID)
}

// notesByStep indexes a run's notes by step number for interleaving into
// a rendered transcript; run-level notes (StepNumber == 0) are returned
// separately.
func notesByStep(notes []Note) (byStep map[int][]Note, runLevel []Note) {
	byStep = make(map[int][]Note)
	for _, n := range notes {
		if n.StepNumber == 0 {
			runLevel = append(runLevel, n)
			continue
		}
		byStep[n.StepNumber] = append(byStep[n.StepNumber], n)
	}
	return
}

func renderNoteLine(n Note) string {
	if n.Source == SourceManual {
		return fmt.Sprintf("> 📌 %s\n", n.Content)
	}
	return fmt.Sprintf("> %s\n", n.Content)
}

func joinNonEmpty(parts ...string) string {
	var kept []string
	for _, p := range parts {
		if p != "" {
			kept = append(kept, p)
		}
	}
	return strings.Join(kept, "\n")
}
