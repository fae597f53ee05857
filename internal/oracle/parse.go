package oracle

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"bakerybot/internal/model"
)

type wireIntent struct {
	Intent         string                        `json:"intent"`
	Updates        []wireUpdate                  `json:"updates"`
	Clarifications []model.ClarificationProposal `json:"clarifications"`
	Reminder       *model.ReminderProposal       `json:"reminder"`
	Order          *model.OrderProposal          `json:"order"`
	Reply          string                        `json:"reply"`
}

type wireUpdate struct {
	Item   string          `json:"item"`
	Status string          `json:"status"`
	Qty    json.RawMessage `json:"qty"`
	Unit   *string         `json:"unit"`
	Note   *string         `json:"note"`
}

// Parse extracts an intent from raw model output. The JSON may be wrapped in
// prose or markdown code fences.
func Parse(raw string) (*model.Intent, error) {
	body := ExtractJSON(raw)
	if body == "" {
		return nil, ErrUnparseable
	}
	var w wireIntent
	if err := json.Unmarshal([]byte(body), &w); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnparseable, err)
	}

	intent := &model.Intent{
		Reply:          strings.TrimSpace(w.Reply),
		Clarifications: make([]model.ClarificationProposal, 0, len(w.Clarifications)),
	}
	for _, u := range w.Updates {
		item := strings.TrimSpace(u.Item)
		if item == "" {
			continue
		}
		intent.Updates = append(intent.Updates, model.ItemUpdate{
			Item:   item,
			Status: NormalizeStatus(u.Status),
			Qty:    parseQty(u.Qty),
			Unit:   nonEmpty(u.Unit),
			Note:   nonEmpty(u.Note),
		})
	}
	for _, c := range w.Clarifications {
		if strings.TrimSpace(c.Raw) == "" || len(c.Options) == 0 {
			continue
		}
		intent.Clarifications = append(intent.Clarifications, c)
	}
	if w.Reminder != nil && strings.TrimSpace(w.Reminder.Text) != "" {
		intent.Reminder = &model.ReminderProposal{
			Text: strings.TrimSpace(w.Reminder.Text),
			When: strings.ToLower(strings.TrimSpace(w.Reminder.When)),
		}
	}
	if w.Order != nil && strings.TrimSpace(w.Order.Summary) != "" {
		intent.Order = &model.OrderProposal{Summary: strings.TrimSpace(w.Order.Summary)}
	}
	intent.Kind = normalizeKind(w.Intent, intent)
	return intent, nil
}

func normalizeKind(raw string, intent *model.Intent) model.IntentKind {
	switch k := model.IntentKind(strings.ToLower(strings.TrimSpace(raw))); k {
	case model.IntentUpdate, model.IntentStatus, model.IntentReminder,
		model.IntentQuestion, model.IntentChat, model.IntentIgnore, model.IntentOrder:
		return k
	case "clarification", "answer", "clarification-answer", "clarification_answer":
		return model.IntentQuestion
	case "":
		if len(intent.Updates) > 0 {
			return model.IntentUpdate
		}
	}
	return model.IntentChat
}

// NormalizeStatus maps the model's wording onto the three stored statuses.
// Unrecognised text is returned lower-cased so the engine can reject it.
func NormalizeStatus(raw string) model.Status {
	s := strings.ToLower(strings.TrimSpace(raw))
	switch s {
	case "stocked", "in stock", "in_stock", "full", "restocked", "ok", "plenty", "good":
		return model.StatusStocked
	case "low", "running low", "running_low", "almost out", "low stock":
		return model.StatusLow
	case "out", "out of stock", "out_of_stock", "empty", "none", "gone", "finished":
		return model.StatusOut
	}
	return model.Status(s)
}

func parseQty(raw json.RawMessage) *float64 {
	s := strings.TrimSpace(string(raw))
	if s == "" || s == "null" {
		return nil
	}
	if unq, err := strconv.Unquote(s); err == nil {
		s = strings.TrimSpace(unq)
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return nil
	}
	return &v
}

func nonEmpty(s *string) *string {
	if s == nil {
		return nil
	}
	t := strings.TrimSpace(*s)
	if t == "" {
		return nil
	}
	return &t
}

// ExtractJSON returns the last well-formed top-level JSON object in s, or ""
// when there is none.
func ExtractJSON(s string) string {
	if fenced := stripMarkdownCodeFences(s); fenced != s {
		if found := lastObject(fenced); found != "" {
			return found
		}
	}
	return lastObject(s)
}

// lastObject tries every '{' as the start of an object and keeps the last
// one that decodes. A brace in prose that never closes only costs one failed
// attempt; nested objects are skipped once their parent decodes.
func lastObject(s string) string {
	last := ""
	for i := 0; i < len(s); i++ {
		if s[i] != '{' {
			continue
		}
		var raw json.RawMessage
		dec := json.NewDecoder(strings.NewReader(s[i:]))
		if err := dec.Decode(&raw); err != nil {
			continue
		}
		last = string(raw)
		i += int(dec.InputOffset()) - 1
	}
	return last
}

// stripMarkdownCodeFences returns the content of the first fenced block, or
// s unchanged when it has none.
func stripMarkdownCodeFences(s string) string {
	open := strings.Index(s, "```")
	if open == -1 {
		return s
	}
	rest := s[open+3:]
	nl := strings.Index(rest, "\n")
	if nl == -1 {
		return s
	}
	body := rest[nl+1:]
	end := strings.Index(body, "```")
	if end == -1 {
		return s
	}
	return strings.TrimSpace(body[:end])
}
