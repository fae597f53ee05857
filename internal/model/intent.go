package model

// IntentKind classifies an incoming message.
type IntentKind string

const (
	IntentUpdate   IntentKind = "update"
	IntentStatus   IntentKind = "status"
	IntentReminder IntentKind = "reminder"
	IntentQuestion IntentKind = "question"
	IntentChat     IntentKind = "chat"
	IntentIgnore   IntentKind = "ignore"
	IntentOrder    IntentKind = "order"
)

// Intent is the structured suggestion returned by the oracle. It is a best
// effort and may reference items that do not exist.
type Intent struct {
	Kind           IntentKind              `json:"intent"`
	Updates        []ItemUpdate            `json:"updates"`
	Clarifications []ClarificationProposal `json:"clarifications"`
	Reminder       *ReminderProposal       `json:"reminder,omitempty"`
	Order          *OrderProposal          `json:"order,omitempty"`
	Reply          string                  `json:"reply"`
}

// ItemUpdate proposes a new status for a raw item phrase.
type ItemUpdate struct {
	Item   string   `json:"item"`
	Status Status   `json:"status"`
	Qty    *float64 `json:"qty,omitempty"`
	Unit   *string  `json:"unit,omitempty"`
	Note   *string  `json:"note,omitempty"`
}

// ClarificationProposal is an ambiguity the oracle could not settle.
type ClarificationProposal struct {
	Raw      string   `json:"raw"`
	Options  []string `json:"options"`
	Question string   `json:"question"`
}

// ReminderProposal asks for a reminder to be stored.
type ReminderProposal struct {
	Text string `json:"text"`
	When string `json:"when"`
}

// OrderProposal summarises an order request.
type OrderProposal struct {
	Summary string `json:"summary"`
}
