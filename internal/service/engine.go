package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"bakerybot/internal/catalog"
	"bakerybot/internal/logger"
	"bakerybot/internal/model"
	"bakerybot/internal/store"
	"bakerybot/pkg/uid"
)

// ErrPersist wraps a failed durable write. When it is returned nothing the
// engine computed may be reported to the user as done.
var ErrPersist = errors.New("persist failed")

// ErrPendingNotSaved marks a split write: the inventory was saved but the
// pending-actions document was not. ApplyIntent returns it together with a
// result whose Updated items are durable.
var ErrPendingNotSaved = errors.New("pending actions not saved")

// Options configures the Engine.
type Options struct {
	Logger       *logger.Logger
	Location     *time.Location
	HistoryLimit int
	TonightHour  int
}

// Engine applies structured intents to the Inventory and Pending-Actions
// documents. Every read-modify-write runs under one mutex: the store has no
// locking of its own.
type Engine struct {
	store   *store.Store
	catalog *catalog.Catalog
	log     *logger.Logger

	mu sync.Mutex

	// Now is the clock; tests replace it.
	Now          func() time.Time
	HistoryLimit int

	Pending *Pending
}

// UpdatedItem is one canonical item changed by ApplyIntent.
type UpdatedItem struct {
	Item     string       `json:"item"`
	Status   model.Status `json:"status"`
	Previous model.Status `json:"previous,omitempty"`
}

// ReconcileResult reports what ApplyIntent did.
type ReconcileResult struct {
	Updated []UpdatedItem `json:"updated"`
	// Failed holds raw phrases that named no catalog item.
	Failed []string `json:"failed"`
	// Invalid holds phrases whose status was not stocked, low or out.
	Invalid []string `json:"invalid,omitempty"`
	// Clarification is the requester's open question after the update, if any.
	Clarification *model.PendingClarification `json:"clarification,omitempty"`
	// Cleared is the clarification this message answered.
	Cleared  *model.PendingClarification `json:"cleared,omitempty"`
	Reminder *model.Reminder             `json:"reminder,omitempty"`
}

// NothingMatched reports the all-failed outcome: item phrases were given but
// none could be applied.
func (r *ReconcileResult) NothingMatched() bool {
	return len(r.Updated) == 0 && (len(r.Failed) > 0 || len(r.Invalid) > 0)
}

// UpdatedNames lists the updated canonical items.
func (r *ReconcileResult) UpdatedNames() []string {
	names := make([]string, len(r.Updated))
	for i, u := range r.Updated {
		names[i] = u.Item
	}
	return names
}

// NewEngine wires an engine and its clarification/reminder subsystem.
func NewEngine(st *store.Store, cat *catalog.Catalog, opts Options) *Engine {
	if opts.Logger == nil {
		opts.Logger = logger.Nop()
	}
	if opts.HistoryLimit <= 0 {
		opts.HistoryLimit = model.DefaultHistoryLimit
	}
	if opts.Location == nil {
		opts.Location = time.Local
	}
	e := &Engine{
		store:        st,
		catalog:      cat,
		log:          opts.Logger,
		Now:          time.Now,
		HistoryLimit: opts.HistoryLimit,
	}
	e.Pending = &Pending{
		store:       st,
		mu:          &e.mu,
		now:         e.now,
		Location:    opts.Location,
		TonightHour: opts.TonightHour,
	}
	return e
}

func (e *Engine) now() time.Time {
	if e.Now == nil {
		return time.Now()
	}
	return e.Now()
}

type plannedUpdate struct {
	update model.ItemUpdate
	items  []string
}

// ApplyIntent reconciles one oracle intent for requesterID.
//
// A resolvable update from a requester with an open clarification clears that
// clarification before anything is applied, whether or not the update names
// one of the offered options. On a split write the result is returned with
// an error wrapping ErrPendingNotSaved.
func (e *Engine) ApplyIntent(ctx context.Context, intent *model.Intent, requesterID string) (*ReconcileResult, error) {
	if intent == nil {
		return nil, fmt.Errorf("apply intent: nil intent")
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	now := e.now()
	inv, err := e.store.LoadInventory(ctx)
	if err != nil {
		return nil, err
	}
	pending, err := e.store.LoadPending(ctx)
	if err != nil {
		return nil, err
	}

	res := &ReconcileResult{Updated: []UpdatedItem{}, Failed: []string{}, Invalid: []string{}}
	var plans []plannedUpdate
	var asks []model.PendingClarification

	for _, u := range intent.Updates {
		if !u.Status.Valid() {
			e.log.Debug("rejecting update with unknown status", "item", u.Item, "status", u.Status)
			res.Invalid = append(res.Invalid, u.Item)
			continue
		}
		r := e.catalog.Resolve(u.Item)
		switch {
		case r.Resolved():
			plans = append(plans, plannedUpdate{update: u, items: r.Items})
		case r.Match == catalog.MatchAmbiguous:
			asks = append(asks, model.PendingClarification{
				RequesterID: requesterID,
				RawPhrase:   u.Item,
				Options:     r.Items,
				Question:    AskQuestion(u.Item, r.Items),
				CreatedAt:   now,
			})
		default:
			res.Failed = append(res.Failed, u.Item)
		}
	}

	pendingChanged := false
	if len(plans) > 0 {
		if cleared, ok := pending.RemoveClarification(requesterID); ok {
			res.Cleared = &cleared
			pendingChanged = true
		}
	}

	for _, p := range plans {
		for _, item := range p.items {
			rec := inv.ApplyUpdate(item, p.update.Status, p.update.Qty, p.update.Unit, p.update.Note, now)
			res.Updated = append(res.Updated, UpdatedItem{Item: item, Status: rec.Status, Previous: rec.PreviousStatus})
		}
	}

	for _, c := range intent.Clarifications {
		asks = append(asks, e.proposedClarification(c, requesterID, now))
	}
	for _, c := range asks {
		pending.SetClarification(c)
		pendingChanged = true
	}

	if rp := intent.Reminder; rp != nil && strings.TrimSpace(rp.Text) != "" {
		r := model.Reminder{
			ID:          uid.New(),
			RequesterID: requesterID,
			Text:        strings.TrimSpace(rp.Text),
			When:        strings.TrimSpace(rp.When),
			CreatedAt:   now,
		}
		pending.AddReminder(r)
		res.Reminder = &r
		pendingChanged = true
	}

	if len(res.Updated) > 0 {
		if dropped := inv.TruncateHistory(e.HistoryLimit); dropped > 0 {
			e.log.Debug("history truncated", "dropped", dropped)
		}
		if err := e.store.SaveInventory(ctx, inv); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrPersist, err)
		}
	}
	if pendingChanged {
		if err := e.store.SavePending(ctx, pending); err != nil {
			if len(res.Updated) > 0 {
				e.log.Error("inventory saved but pending actions were not",
					"requester_id", requesterID, "updated", len(res.Updated), "error", err)
				res.Clarification, res.Cleared, res.Reminder = nil, nil, nil
				return res, fmt.Errorf("%w: %w: %w", ErrPersist, ErrPendingNotSaved, err)
			}
			return nil, fmt.Errorf("%w: %w", ErrPersist, err)
		}
	}

	if open, ok := pending.Clarification(requesterID); ok {
		res.Clarification = &open
	}

	e.log.Info("intent applied",
		"requester_id", requesterID,
		"intent", intent.Kind,
		"updated", len(res.Updated),
		"failed", len(res.Failed),
		"invalid", len(res.Invalid),
		"clarification", res.Clarification != nil,
	)
	return res, nil
}

func (e *Engine) proposedClarification(c model.ClarificationProposal, requesterID string, now time.Time) model.PendingClarification {
	options := make([]string, 0, len(c.Options))
	for _, o := range c.Options {
		if canonical, ok := e.catalog.Canonical(o); ok {
			options = append(options, canonical)
			continue
		}
		options = append(options, strings.TrimSpace(o))
	}
	question := strings.TrimSpace(c.Question)
	if question == "" {
		question = AskQuestion(c.Raw, options)
	}
	return model.PendingClarification{
		RequesterID: requesterID,
		RawPhrase:   c.Raw,
		Options:     options,
		Question:    question,
		CreatedAt:   now,
	}
}

// AskQuestion phrases a clarification for an ambiguous phrase.
func AskQuestion(phrase string, options []string) string {
	return fmt.Sprintf("Which %s do you mean: %s?", phrase, joinOr(options))
}

func joinOr(items []string) string {
	return joinWith(items, "or")
}

func joinAnd(items []string) string {
	return joinWith(items, "and")
}

func joinWith(items []string, word string) string {
	switch len(items) {
	case 0:
		return ""
	case 1:
		return items[0]
	case 2:
		return items[0] + " " + word + " " + items[1]
	}
	return strings.Join(items[:len(items)-1], ", ") + " " + word + " " + items[len(items)-1]
}
