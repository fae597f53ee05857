package model

import "time"

// Reminder "when" values matched by DueReminders. Any other text is a
// specific time that is never matched automatically.
const (
	WhenTonight  = "tonight"
	WhenTomorrow = "tomorrow"
)

// DefaultTonightHour is the local hour from which "tonight" reminders are due.
const DefaultTonightHour = 20

// PendingClarification is an open question to a requester about an
// ambiguous item phrase.
type PendingClarification struct {
	RequesterID string    `json:"requesterId"`
	RawPhrase   string    `json:"rawPhrase"`
	Options     []string  `json:"options"`
	Question    string    `json:"question"`
	CreatedAt   time.Time `json:"createdAt"`
}

// Reminder is a requester-scoped nudge.
type Reminder struct {
	ID          string    `json:"id"`
	RequesterID string    `json:"requesterId"`
	Text        string    `json:"text"`
	When        string    `json:"when"`
	CreatedAt   time.Time `json:"createdAt"`
	Resolved    bool      `json:"resolved"`
}

// PendingActions is the persisted set of open clarifications and reminders.
type PendingActions struct {
	Clarifications []PendingClarification `json:"clarifications"`
	Reminders      []Reminder             `json:"reminders"`
}

// NewPendingActions returns an empty document.
func NewPendingActions() *PendingActions {
	return &PendingActions{
		Clarifications: []PendingClarification{},
		Reminders:      []Reminder{},
	}
}

// Normalize fills nil collections left by decoding.
func (p *PendingActions) Normalize() {
	if p.Clarifications == nil {
		p.Clarifications = []PendingClarification{}
	}
	if p.Reminders == nil {
		p.Reminders = []Reminder{}
	}
}

// Clarification returns the requester's open clarification, if any.
func (p *PendingActions) Clarification(requesterID string) (PendingClarification, bool) {
	for _, c := range p.Clarifications {
		if c.RequesterID == requesterID {
			return c, true
		}
	}
	return PendingClarification{}, false
}

// SetClarification stores c, replacing any clarification already open for
// the same requester.
func (p *PendingActions) SetClarification(c PendingClarification) {
	kept := p.Clarifications[:0]
	for _, existing := range p.Clarifications {
		if existing.RequesterID != c.RequesterID {
			kept = append(kept, existing)
		}
	}
	p.Clarifications = append(kept, c)
}

// RemoveClarification deletes the requester's clarification. Removing a
// missing one is a no-op returning false.
func (p *PendingActions) RemoveClarification(requesterID string) (PendingClarification, bool) {
	for i, c := range p.Clarifications {
		if c.RequesterID == requesterID {
			p.Clarifications = append(p.Clarifications[:i:i], p.Clarifications[i+1:]...)
			return c, true
		}
	}
	return PendingClarification{}, false
}

// AddReminder appends r.
func (p *PendingActions) AddReminder(r Reminder) {
	p.Reminders = append(p.Reminders, r)
}

// DueReminders returns unresolved reminders due at now. "tonight" is due
// once the local hour of now reaches tonightHour; "tomorrow" once a full day
// has passed since creation.
func (p *PendingActions) DueReminders(now time.Time, loc *time.Location, tonightHour int) []Reminder {
	if loc == nil {
		loc = time.Local
	}
	var due []Reminder
	for _, r := range p.Reminders {
		if r.Resolved {
			continue
		}
		if reminderDue(r, now, loc, tonightHour) {
			due = append(due, r)
		}
	}
	return due
}

// ResolveReminder marks the reminder with id as resolved.
func (p *PendingActions) ResolveReminder(id string) bool {
	for i := range p.Reminders {
		if p.Reminders[i].ID == id && !p.Reminders[i].Resolved {
			p.Reminders[i].Resolved = true
			return true
		}
	}
	return false
}

func reminderDue(r Reminder, now time.Time, loc *time.Location, tonightHour int) bool {
	switch r.When {
	case WhenTonight:
		return now.In(loc).Hour() >= tonightHour
	case WhenTomorrow:
		return now.Sub(r.CreatedAt) >= 24*time.Hour
	}
	return false
}
