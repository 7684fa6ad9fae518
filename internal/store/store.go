package store

import (
	"errors"
	"sync"

	"polisee/internal/domain"
)

// ErrNotFound reports a lookup that resolved nothing, including dangling
// weak references. It is never fatal; callers render empty or omit.
var ErrNotFound = errors.New("not found")

// Snapshot is the aggregate wire shape persisted under the storage key:
// five entity collections plus the ledger. Collection order is insertion
// order ascending.
type Snapshot struct {
	Tasks      []domain.Task        `json:"tasks"`
	Rubrics    []domain.Rubric      `json:"rubrics"`
	Responses  []domain.Response    `json:"responses"`
	Reviews    []domain.Review      `json:"reviews"`
	References []domain.Reference   `json:"references"`
	Ledger     []domain.LedgerEvent `json:"ledger"`
}

// Empty returns a snapshot with all collections present but empty.
func Empty() Snapshot {
	return Snapshot{
		Tasks:      []domain.Task{},
		Rubrics:    []domain.Rubric{},
		Responses:  []domain.Response{},
		Reviews:    []domain.Review{},
		References: []domain.Reference{},
		Ledger:     []domain.LedgerEvent{},
	}
}

// Normalize replaces nil collections with empty ones so that a decoded
// snapshot round-trips byte-identically.
func (s *Snapshot) Normalize() {
	if s.Tasks == nil {
		s.Tasks = []domain.Task{}
	}
	if s.Rubrics == nil {
		s.Rubrics = []domain.Rubric{}
	}
	if s.Responses == nil {
		s.Responses = []domain.Response{}
	}
	if s.Reviews == nil {
		s.Reviews = []domain.Review{}
	}
	if s.References == nil {
		s.References = []domain.Reference{}
	}
	if s.Ledger == nil {
		s.Ledger = []domain.LedgerEvent{}
	}
}

// Store owns the aggregate state for the running process. The mutation
// façade is the only writer; Apply serializes writers so each transition
// is observed fully-applied or not at all.
type Store struct {
	mu   sync.Mutex
	snap Snapshot
}

func New(snap Snapshot) *Store {
	snap.Normalize()
	return &Store{snap: snap}
}

// Snapshot returns a copy of the aggregate safe to serialize or iterate
// without holding the store lock. Records are immutable by convention, so
// copying the slice headers is enough.
func (s *Store) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return copySnapshot(s.snap)
}

// Apply runs one state transition: fn receives a copy of the current
// snapshot, mutates it, and the result replaces the aggregate atomically.
func (s *Store) Apply(fn func(*Snapshot)) Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	next := copySnapshot(s.snap)
	fn(&next)
	next.Normalize()
	s.snap = next
	return copySnapshot(s.snap)
}

func copySnapshot(in Snapshot) Snapshot {
	out := Snapshot{
		Tasks:      make([]domain.Task, len(in.Tasks)),
		Rubrics:    make([]domain.Rubric, len(in.Rubrics)),
		Responses:  make([]domain.Response, len(in.Responses)),
		Reviews:    make([]domain.Review, len(in.Reviews)),
		References: make([]domain.Reference, len(in.References)),
		Ledger:     make([]domain.LedgerEvent, len(in.Ledger)),
	}
	copy(out.Tasks, in.Tasks)
	copy(out.Rubrics, in.Rubrics)
	copy(out.Responses, in.Responses)
	copy(out.Reviews, in.Reviews)
	copy(out.References, in.References)
	copy(out.Ledger, in.Ledger)
	return out
}

func (s *Store) Tasks() []domain.Task {
	return s.Snapshot().Tasks
}

func (s *Store) Rubrics() []domain.Rubric {
	return s.Snapshot().Rubrics
}

func (s *Store) Responses() []domain.Response {
	return s.Snapshot().Responses
}

func (s *Store) Reviews() []domain.Review {
	return s.Snapshot().Reviews
}

func (s *Store) References() []domain.Reference {
	return s.Snapshot().References
}

func (s *Store) Ledger() []domain.LedgerEvent {
	return s.Snapshot().Ledger
}

func (s *Store) TaskByID(id string) (domain.Task, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, t := range s.snap.Tasks {
		if t.ID == id {
			return t, nil
		}
	}
	return domain.Task{}, ErrNotFound
}

func (s *Store) RubricByID(id string) (domain.Rubric, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, r := range s.snap.Rubrics {
		if r.ID == id {
			return r, nil
		}
	}
	return domain.Rubric{}, ErrNotFound
}

func (s *Store) ResponseByID(id string) (domain.Response, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, r := range s.snap.Responses {
		if r.ID == id {
			return r, nil
		}
	}
	return domain.Response{}, ErrNotFound
}

func (s *Store) ReviewByID(id string) (domain.Review, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, r := range s.snap.Reviews {
		if r.ID == id {
			return r, nil
		}
	}
	return domain.Review{}, ErrNotFound
}

func (s *Store) ReferenceByID(id string) (domain.Reference, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, r := range s.snap.References {
		if r.ID == id {
			return r, nil
		}
	}
	return domain.Reference{}, ErrNotFound
}

// ReviewsForResponse lists reviews attached to one response, in insertion
// order. Re-grades under different rubrics all appear.
func (s *Store) ReviewsForResponse(responseID string) []domain.Review {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []domain.Review
	for _, r := range s.snap.Reviews {
		if r.ResponseID == responseID {
			out = append(out, r)
		}
	}
	return out
}

// ResponsesForTask lists responses generated for one task.
func (s *Store) ResponsesForTask(taskID string) []domain.Response {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []domain.Response
	for _, r := range s.snap.Responses {
		if r.TaskID == taskID {
			out = append(out, r)
		}
	}
	return out
}

// Counts reports collection sizes for status displays.
func (s *Store) Counts() map[string]int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return map[string]int{
		"tasks":      len(s.snap.Tasks),
		"rubrics":    len(s.snap.Rubrics),
		"responses":  len(s.snap.Responses),
		"reviews":    len(s.snap.Reviews),
		"references": len(s.snap.References),
		"ledger":     len(s.snap.Ledger),
	}
}
