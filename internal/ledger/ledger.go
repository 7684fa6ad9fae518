package ledger

import (
	"time"

	"github.com/google/uuid"

	"polisee/internal/domain"
)

// Writer constructs ledger events. Event ids are random and unique within
// the process lifetime; collisions are an accepted, documented risk rather
// than a handled error.
type Writer struct {
	Now func() time.Time
}

type Patch map[string]any

// Event builds one immutable event record. The ledger itself is the slice
// held by the store; appending is the caller's job so that collection
// update and event append land in the same state transition.
func (w Writer) Event(evtType domain.LedgerEventType, entityType domain.EntityType, entityID, summary string, patch Patch) domain.LedgerEvent {
	now := w.Now
	if now == nil {
		now = time.Now
	}
	if patch == nil {
		patch = Patch{}
	}
	return domain.LedgerEvent{
		ID:         "evt-" + uuid.NewString(),
		TS:         now().UTC().Format(time.RFC3339),
		Type:       evtType,
		EntityType: entityType,
		EntityID:   entityID,
		Summary:    summary,
		Patch:      patch,
	}
}

// Recent returns up to n events newest-first for display. The canonical
// store order stays insertion-ascending; callers needing causal order use
// the slice as stored.
func Recent(events []domain.LedgerEvent, n int) []domain.LedgerEvent {
	if n <= 0 || n > len(events) {
		n = len(events)
	}
	out := make([]domain.LedgerEvent, 0, n)
	for i := len(events) - 1; i >= 0 && len(out) < n; i-- {
		out = append(out, events[i])
	}
	return out
}
