package service

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"bakerybot/internal/model"
	"bakerybot/internal/store"
	"bakerybot/pkg/uid"
)

// Pending manages clarifications and reminders. It shares the engine's
// mutex so its writes never interleave with a reconciliation.
type Pending struct {
	store *store.Store
	mu    *sync.Mutex
	now   func() time.Time

	// Location is the local zone for "tonight".
	Location    *time.Location
	TonightHour int
}

// AddClarification opens a clarification for requesterID, replacing any
// existing one.
func (p *Pending) AddClarification(ctx context.Context, requesterID, rawPhrase string, options []string, question string) (model.PendingClarification, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	doc, err := p.store.LoadPending(ctx)
	if err != nil {
		return model.PendingClarification{}, err
	}
	if strings.TrimSpace(question) == "" {
		question = AskQuestion(rawPhrase, options)
	}
	c := model.PendingClarification{
		RequesterID: requesterID,
		RawPhrase:   rawPhrase,
		Options:     append([]string(nil), options...),
		Question:    question,
		CreatedAt:   p.now(),
	}
	doc.SetClarification(c)
	if err := p.store.SavePending(ctx, doc); err != nil {
		return model.PendingClarification{}, fmt.Errorf("%w: %w", ErrPersist, err)
	}
	return c, nil
}

// ResolveClarification removes the requester's clarification. It returns nil
// without writing when there is none.
func (p *Pending) ResolveClarification(ctx context.Context, requesterID string) (*model.PendingClarification, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	doc, err := p.store.LoadPending(ctx)
	if err != nil {
		return nil, err
	}
	removed, ok := doc.RemoveClarification(requesterID)
	if !ok {
		return nil, nil
	}
	if err := p.store.SavePending(ctx, doc); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrPersist, err)
	}
	return &removed, nil
}

// GetClarification returns the requester's open clarification or nil.
func (p *Pending) GetClarification(ctx context.Context, requesterID string) (*model.PendingClarification, error) {
	doc, err := p.store.LoadPending(ctx)
	if err != nil {
		return nil, err
	}
	c, ok := doc.Clarification(requesterID)
	if !ok {
		return nil, nil
	}
	return &c, nil
}

// AddReminder stores a reminder for requesterID.
func (p *Pending) AddReminder(ctx context.Context, requesterID, text, when string) (model.Reminder, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return model.Reminder{}, fmt.Errorf("reminder text is required")
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	doc, err := p.store.LoadPending(ctx)
	if err != nil {
		return model.Reminder{}, err
	}
	r := model.Reminder{
		ID:          uid.New(),
		RequesterID: requesterID,
		Text:        text,
		When:        strings.ToLower(strings.TrimSpace(when)),
		CreatedAt:   p.now(),
	}
	doc.AddReminder(r)
	if err := p.store.SavePending(ctx, doc); err != nil {
		return model.Reminder{}, fmt.Errorf("%w: %w", ErrPersist, err)
	}
	return r, nil
}

// Reminders lists reminders, optionally including resolved ones.
func (p *Pending) Reminders(ctx context.Context, includeResolved bool) ([]model.Reminder, error) {
	doc, err := p.store.LoadPending(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]model.Reminder, 0, len(doc.Reminders))
	for _, r := range doc.Reminders {
		if includeResolved || !r.Resolved {
			out = append(out, r)
		}
	}
	return out, nil
}

// DueReminders returns the reminders due at now without changing them.
// Reminders with a specific time text are never returned.
func (p *Pending) DueReminders(ctx context.Context, now time.Time) ([]model.Reminder, error) {
	doc, err := p.store.LoadPending(ctx)
	if err != nil {
		return nil, err
	}
	return doc.DueReminders(now, p.Location, p.tonightHour()), nil
}

// ResolveReminder marks one reminder resolved. It reports false when the id
// is unknown or already resolved.
func (p *Pending) ResolveReminder(ctx context.Context, id string) (bool, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	doc, err := p.store.LoadPending(ctx)
	if err != nil {
		return false, err
	}
	if !doc.ResolveReminder(id) {
		return false, nil
	}
	if err := p.store.SavePending(ctx, doc); err != nil {
		return false, fmt.Errorf("%w: %w", ErrPersist, err)
	}
	return true, nil
}

// MarkDue resolves and returns every reminder due at now in one write.
func (p *Pending) MarkDue(ctx context.Context, now time.Time) ([]model.Reminder, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	doc, err := p.store.LoadPending(ctx)
	if err != nil {
		return nil, err
	}
	due := doc.DueReminders(now, p.Location, p.tonightHour())
	if len(due) == 0 {
		return nil, nil
	}
	for i := range due {
		doc.ResolveReminder(due[i].ID)
		due[i].Resolved = true
	}
	if err := p.store.SavePending(ctx, doc); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrPersist, err)
	}
	return due, nil
}

func (p *Pending) tonightHour() int {
	if p.TonightHour <= 0 {
		return model.DefaultTonightHour
	}
	return p.TonightHour
}
