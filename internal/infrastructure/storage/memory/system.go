package memory

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	appctx "slice/internal/core/context"
	"slice/internal/core/id"
	corenum "slice/internal/core/numerator"
	"slice/internal/domain/audit"
	"slice/internal/domain/events"
	pkgnum "slice/pkg/numerator"
)

// ErrNoTransaction is returned by Publish outside a unit of work.
var ErrNoTransaction = errors.New("memory: no active transaction")

// Outbox implements events.Publisher.
type Outbox struct{ s *Store }

var _ events.Publisher = (*Outbox)(nil)

func (o *Outbox) Publish(ctx context.Context, e events.Event) error {
	if !inTx(ctx) {
		return ErrNoTransaction
	}
	return o.s.write(ctx, func(st *state) error {
		st.outbox = append(st.outbox, e)
		return nil
	})
}

// Events returns the committed events of the given type, all when eventType is empty.
func (o *Outbox) Events(eventType string) []events.Event {
	var out []events.Event
	o.s.view(func(st *state) {
		for _, e := range st.outbox {
			if eventType == "" || e.Type == eventType {
				out = append(out, e)
			}
		}
	})
	return out
}

// AuditLog implements audit.Recorder.
type AuditLog struct{ s *Store }

var _ audit.Recorder = (*AuditLog)(nil)

func (a *AuditLog) Record(ctx context.Context, entityType string, entityID id.ID, action audit.Action, changes map[string]any) error {
	raw, err := json.Marshal(changes)
	if err != nil {
		return fmt.Errorf("marshal changes: %w", err)
	}
	entry := audit.Entry{
		ID:         id.New(),
		EntityType: entityType,
		EntityID:   entityID,
		Action:     action,
		UserID:     appctx.GetUserID(ctx),
		Changes:    raw,
		CreatedAt:  time.Now().UTC(),
	}
	return a.s.write(ctx, func(st *state) error {
		st.audit = append(st.audit, entry)
		return nil
	})
}

func (a *AuditLog) History(ctx context.Context, entityType string, entityID id.ID) ([]audit.Entry, error) {
	var out []audit.Entry
	a.s.view(func(st *state) {
		for _, e := range st.audit {
			if e.EntityType == entityType && e.EntityID == entityID {
				out = append(out, e)
			}
		}
	})
	return out, nil
}

// Numerator implements numerator.Generator with strict, transactional sequences.
type Numerator struct{ s *Store }

var _ corenum.Generator = (*Numerator)(nil)

func (n *Numerator) GetNextNumber(ctx context.Context, cfg corenum.Config, _ *corenum.Options, period time.Time) (string, error) {
	key := pkgnum.SequenceKey(cfg, period)
	var next int64
	err := n.s.write(ctx, func(st *state) error {
		st.sequences[key]++
		next = st.sequences[key]
		return nil
	})
	if err != nil {
		return "", err
	}
	return pkgnum.FormatNumber(cfg, period, next), nil
}

func (n *Numerator) SetNextNumber(ctx context.Context, cfg corenum.Config, period time.Time, value int64) error {
	key := pkgnum.SequenceKey(cfg, period)
	return n.s.write(ctx, func(st *state) error {
		st.sequences[key] = value
		return nil
	})
}
