package model

import (
	"bytes"
	"encoding/json"
	"fmt"
	"time"
)

// Status is the stock level of a tracked item.
type Status string

const (
	StatusStocked Status = "stocked"
	StatusLow     Status = "low"
	StatusOut     Status = "out"

	// StatusUnknown is never stored; it labels items with no ItemRecord.
	StatusUnknown Status = "unknown"
)

// Valid reports whether s is one of the three storable statuses.
func (s Status) Valid() bool {
	switch s {
	case StatusStocked, StatusLow, StatusOut:
		return true
	}
	return false
}

// DefaultHistoryLimit bounds InventoryDocument.History.
const DefaultHistoryLimit = 500

// Category is a named, ordered group of canonical item names.
type Category struct {
	Name  string
	Items []string
}

// Categories keeps category order across JSON round trips. It encodes as a
// JSON object whose keys appear in slice order.
type Categories []Category

// MarshalJSON writes the categories as an ordered JSON object.
func (c Categories) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, cat := range c {
		if i > 0 {
			buf.WriteByte(',')
		}
		name, err := json.Marshal(cat.Name)
		if err != nil {
			return nil, err
		}
		items := cat.Items
		if items == nil {
			items = []string{}
		}
		list, err := json.Marshal(items)
		if err != nil {
			return nil, err
		}
		buf.Write(name)
		buf.WriteByte(':')
		buf.Write(list)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// UnmarshalJSON reads a JSON object keeping the key order.
func (c *Categories) UnmarshalJSON(data []byte) error {
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		*c = nil
		return nil
	}
	dec := json.NewDecoder(bytes.NewReader(data))
	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if d, ok := tok.(json.Delim); !ok || d != '{' {
		return fmt.Errorf("categories: expected object, got %v", tok)
	}
	out := Categories{}
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return err
		}
		name, ok := tok.(string)
		if !ok {
			return fmt.Errorf("categories: expected key, got %v", tok)
		}
		var items []string
		if err := dec.Decode(&items); err != nil {
			return fmt.Errorf("categories %q: %w", name, err)
		}
		out = append(out, Category{Name: name, Items: items})
	}
	if _, err := dec.Token(); err != nil {
		return err
	}
	*c = out
	return nil
}

// ItemRecord is the last known state of one canonical item.
type ItemRecord struct {
	Status          Status    `json:"status"`
	Quantity        *float64  `json:"quantity,omitempty"`
	Unit            string    `json:"unit,omitempty"`
	Note            string    `json:"note,omitempty"`
	LastUpdatedAt   time.Time `json:"lastUpdatedAt"`
	LastMentionedAt time.Time `json:"lastMentionedAt"`
	PreviousStatus  Status    `json:"previousStatus,omitempty"`
}

// HistoryEntry is an immutable record of one applied update.
type HistoryEntry struct {
	Item      string    `json:"item"`
	Action    Status    `json:"action"`
	Quantity  *float64  `json:"quantity,omitempty"`
	Unit      string    `json:"unit,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

// InventoryDocument is the persisted inventory state.
type InventoryDocument struct {
	Categories Categories             `json:"categories"`
	Items      map[string]*ItemRecord `json:"items"`
	History    []HistoryEntry         `json:"history"`
}

// NewInventoryDocument returns an empty document tracking the given categories.
func NewInventoryDocument(categories Categories) *InventoryDocument {
	return &InventoryDocument{
		Categories: categories,
		Items:      make(map[string]*ItemRecord),
		History:    []HistoryEntry{},
	}
}

// Normalize fills nil collections left by decoding older or partial documents.
func (d *InventoryDocument) Normalize() {
	if d.Items == nil {
		d.Items = make(map[string]*ItemRecord)
	}
	if d.History == nil {
		d.History = []HistoryEntry{}
	}
}

// StatusOf returns the item's status, or StatusUnknown when never observed.
func (d *InventoryDocument) StatusOf(item string) Status {
	if rec, ok := d.Items[item]; ok && rec != nil {
		return rec.Status
	}
	return StatusUnknown
}

// ApplyUpdate sets the item's status and merges the optional fields. Fields
// left nil in the update keep their previous values.
func (d *InventoryDocument) ApplyUpdate(item string, status Status, qty *float64, unit, note *string, at time.Time) *ItemRecord {
	d.Normalize()
	rec, ok := d.Items[item]
	if !ok || rec == nil {
		rec = &ItemRecord{}
		d.Items[item] = rec
	}
	rec.PreviousStatus = rec.Status
	rec.Status = status
	if qty != nil {
		q := *qty
		rec.Quantity = &q
	}
	if unit != nil {
		rec.Unit = *unit
	}
	if note != nil {
		rec.Note = *note
	}
	rec.LastUpdatedAt = at
	rec.LastMentionedAt = at

	entry := HistoryEntry{Item: item, Action: status, Timestamp: at}
	if qty != nil {
		q := *qty
		entry.Quantity = &q
	}
	if unit != nil {
		entry.Unit = *unit
	}
	d.History = append(d.History, entry)
	return rec
}

// TruncateHistory drops the oldest entries beyond limit. It returns the
// number of entries removed.
func (d *InventoryDocument) TruncateHistory(limit int) int {
	if limit <= 0 || len(d.History) <= limit {
		return 0
	}
	drop := len(d.History) - limit
	kept := make([]HistoryEntry, limit)
	copy(kept, d.History[drop:])
	d.History = kept
	return drop
}

// RecentHistory returns up to n entries, most recent first.
func (d *InventoryDocument) RecentHistory(n int) []HistoryEntry {
	if n > len(d.History) {
		n = len(d.History)
	}
	out := make([]HistoryEntry, 0, n)
	for i := len(d.History) - 1; i >= 0 && len(out) < n; i-- {
		out = append(out, d.History[i])
	}
	return out
}
