// Package roster holds the escalation roster editor behind the settings page.
//
// The Editor owns the in-memory roster. Mutations are local until Submit
// sends the whole roster to the backend as a wholesale replace.
package roster

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/spec-kit/slackbot-settings/internal/domain"
)

var (
	ErrIndexOutOfRange = errors.New("roster index out of range")
	ErrUnknownField    = errors.New("unknown roster field")
	ErrNotFound        = errors.New("roster member not found")
	ErrStaleLoad       = errors.New("roster load superseded")
	ErrSubmitInFlight  = errors.New("roster submit already in flight")
)

// Mode is the editor's presentation mode.
type Mode int

const (
	Viewing Mode = iota
	Editing
)

func (m Mode) String() string {
	if m == Editing {
		return "editing"
	}
	return "viewing"
}

// Field names an editable member field. Values match the wire JSON keys.
type Field string

const (
	FieldName      Field = "name"
	FieldAccountID Field = "accountId"
	FieldTasks     Field = "tasks"
)

// Fields lists editable fields in display order.
var Fields = []Field{FieldName, FieldAccountID, FieldTasks}

// Store is the backend collaborator.
type Store interface {
	FetchStaff(ctx context.Context) ([]domain.StaffMember, error)
	ReplaceStaff(ctx context.Context, members []domain.StaffMember) error
}

// Editor is safe for concurrent use; network calls run without holding the lock.
type Editor struct {
	store    Store
	notifier Notifier
	logger   *zap.Logger
	newID    func() string

	mu         sync.Mutex
	mode       Mode
	members    []*domain.StaffMember
	seq        uint64
	version    uint64
	submitting bool
}

// NewEditor returns an empty editor in Viewing mode.
func NewEditor(store Store, notifier Notifier, logger *zap.Logger) *Editor {
	if logger == nil {
		logger = zap.NewNop()
	}
	if notifier == nil {
		notifier = NopNotifier{}
	}
	return &Editor{
		store:    store,
		notifier: notifier,
		logger:   logger,
		newID:    uuid.NewString,
	}
}

// Load replaces the roster with the backend's copy. Failures are logged and
// leave the roster untouched. A response that arrives after a newer request
// was issued, or after a local edit, is dropped with ErrStaleLoad.
func (e *Editor) Load(ctx context.Context) error {
	e.mu.Lock()
	e.seq++
	seq, version := e.seq, e.version
	e.mu.Unlock()

	fetched, err := e.store.FetchStaff(ctx)
	if err != nil {
		e.logger.Warn("roster load failed", zap.Error(err))
		return fmt.Errorf("load roster: %w", err)
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	if seq != e.seq || version != e.version {
		e.logger.Debug("discarding stale roster load",
			zap.Uint64("request_seq", seq),
			zap.Uint64("latest_seq", e.seq),
		)
		return ErrStaleLoad
	}

	members := make([]*domain.StaffMember, 0, len(fetched))
	for _, m := range fetched {
		if m.ID == "" {
			m.ID = e.newID()
		}
		members = append(members, &m)
	}
	e.members = members
	e.version++
	e.logger.Info("roster loaded", zap.Int("count", len(members)))
	return nil
}

// ToggleEdit flips between Viewing and Editing and returns the new mode.
func (e *Editor) ToggleEdit() Mode {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.mode == Viewing {
		e.mode = Editing
	} else {
		e.mode = Viewing
	}
	return e.mode
}

// UpdateField sets one field of the member at index.
func (e *Editor) UpdateField(index int, field Field, value string) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if index < 0 || index >= len(e.members) {
		return fmt.Errorf("%w: %d (len %d)", ErrIndexOutOfRange, index, len(e.members))
	}
	return e.updateLocked(index, field, value)
}

// UpdateFieldByID sets one field of the member with the given id.
func (e *Editor) UpdateFieldByID(id string, field Field, value string) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	index := e.indexOfLocked(id)
	if index < 0 {
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return e.updateLocked(index, field, value)
}

// updateLocked swaps in a modified copy so other entries keep their identity.
func (e *Editor) updateLocked(index int, field Field, value string) error {
	updated := *e.members[index]
	switch field {
	case FieldName:
		updated.Name = value
	case FieldAccountID:
		updated.AccountID = value
	case FieldTasks:
		updated.Tasks = value
	default:
		return fmt.Errorf("%w: %q", ErrUnknownField, field)
	}
	e.members[index] = &updated
	e.version++
	return nil
}

// AddEntry appends a blank member and returns its id.
func (e *Editor) AddEntry() string {
	e.mu.Lock()
	defer e.mu.Unlock()
	id := e.newID()
	e.members = append(e.members, &domain.StaffMember{ID: id})
	e.version++
	return id
}

// DeleteEntry removes the member at index. Later members shift down by one.
func (e *Editor) DeleteEntry(index int) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if index < 0 || index >= len(e.members) {
		return fmt.Errorf("%w: %d (len %d)", ErrIndexOutOfRange, index, len(e.members))
	}
	e.deleteLocked(index)
	return nil
}

// DeleteEntryByID removes the member with the given id.
func (e *Editor) DeleteEntryByID(id string) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	index := e.indexOfLocked(id)
	if index < 0 {
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	e.deleteLocked(index)
	return nil
}

func (e *Editor) deleteLocked(index int) {
	members := make([]*domain.StaffMember, 0, len(e.members)-1)
	members = append(members, e.members[:index]...)
	members = append(members, e.members[index+1:]...)
	e.members = members
	e.version++
}

func (e *Editor) indexOfLocked(id string) int {
	for i, m := range e.members {
		if m.ID == id {
			return i
		}
	}
	return -1
}

// Submit sends the whole roster as a wholesale replace. The notifier receives
// exactly one notice per call that reaches the backend. The local roster is
// kept as is whatever the outcome.
func (e *Editor) Submit(ctx context.Context) error {
	e.mu.Lock()
	if e.submitting {
		e.mu.Unlock()
		return ErrSubmitInFlight
	}
	e.submitting = true
	e.seq++
	payload := e.snapshotLocked()
	e.mu.Unlock()

	err := e.store.ReplaceStaff(ctx, payload)

	e.mu.Lock()
	e.submitting = false
	e.mu.Unlock()

	if err != nil {
		e.logger.Error("roster submit failed", zap.Int("count", len(payload)), zap.Error(err))
		e.notifier.Notify(Notice{Kind: Failure, Message: "Error saving staff list", Err: err})
		return fmt.Errorf("submit roster: %w", err)
	}

	e.logger.Info("roster submitted", zap.Int("count", len(payload)))
	e.notifier.Notify(Notice{Kind: Success, Message: "Staff list saved!"})
	return nil
}

// Snapshot returns a copy of the roster.
func (e *Editor) Snapshot() []domain.StaffMember {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.snapshotLocked()
}

func (e *Editor) snapshotLocked() []domain.StaffMember {
	out := make([]domain.StaffMember, len(e.members))
	for i, m := range e.members {
		out[i] = *m
	}
	return out
}

// Mode reports the current mode.
func (e *Editor) Mode() Mode {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.mode
}

// Len reports the number of members.
func (e *Editor) Len() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return len(e.members)
}

// Submitting reports whether a submit is outstanding.
func (e *Editor) Submitting() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.submitting
}
