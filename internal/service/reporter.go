package service

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"bakerybot/internal/catalog"
	"bakerybot/internal/model"
	"bakerybot/internal/store"
)

// Snapshot partitions every catalog item by status.
type Snapshot struct {
	Out     []string `json:"out"`
	Low     []string `json:"low"`
	Stocked []string `json:"stocked"`
	Unknown []string `json:"unknown"`
}

// Reporter builds read-only views of the inventory.
type Reporter struct {
	store    *store.Store
	catalog  *catalog.Catalog
	Location *time.Location
	Now      func() time.Time
}

// NewReporter creates a Reporter.
func NewReporter(st *store.Store, cat *catalog.Catalog, loc *time.Location) *Reporter {
	if loc == nil {
		loc = time.Local
	}
	return &Reporter{store: st, catalog: cat, Location: loc, Now: time.Now}
}

// Snapshot loads the inventory and partitions it.
func (r *Reporter) Snapshot(ctx context.Context) (*Snapshot, error) {
	doc, err := r.store.LoadInventory(ctx)
	if err != nil {
		return nil, err
	}
	return BuildSnapshot(doc, r.catalog), nil
}

// Render loads the inventory and formats the status report.
func (r *Reporter) Render(ctx context.Context) (string, error) {
	doc, err := r.store.LoadInventory(ctx)
	if err != nil {
		return "", err
	}
	return RenderReport(doc, r.catalog, r.Location), nil
}

// Predict loads the inventory and runs the restock prediction.
func (r *Reporter) Predict(ctx context.Context) ([]Prediction, error) {
	doc, err := r.store.LoadInventory(ctx)
	if err != nil {
		return nil, err
	}
	return Predict(doc, r.catalog, r.Now()), nil
}

// History returns up to limit entries, most recent first.
func (r *Reporter) History(ctx context.Context, limit int) ([]model.HistoryEntry, error) {
	doc, err := r.store.LoadInventory(ctx)
	if err != nil {
		return nil, err
	}
	return doc.RecentHistory(limit), nil
}

// BuildSnapshot partitions the catalog items of doc; items with no record
// are unknown.
func BuildSnapshot(doc *model.InventoryDocument, cat *catalog.Catalog) *Snapshot {
	s := &Snapshot{Out: []string{}, Low: []string{}, Stocked: []string{}, Unknown: []string{}}
	for _, item := range cat.Items() {
		switch doc.StatusOf(item) {
		case model.StatusOut:
			s.Out = append(s.Out, item)
		case model.StatusLow:
			s.Low = append(s.Low, item)
		case model.StatusStocked:
			s.Stocked = append(s.Stocked, item)
		default:
			s.Unknown = append(s.Unknown, item)
		}
	}
	return s
}

var statusMarker = map[model.Status]string{
	model.StatusStocked: "🟢",
	model.StatusLow:     "🟡",
	model.StatusOut:     "🔴",
	model.StatusUnknown: "⚪",
}

const recentUpdates = 3

// RenderReport formats the chat status report: items needing attention,
// then every category in catalog order, then recent history and a legend.
func RenderReport(doc *model.InventoryDocument, cat *catalog.Catalog, loc *time.Location) string {
	if loc == nil {
		loc = time.Local
	}
	snap := BuildSnapshot(doc, cat)

	var b strings.Builder
	b.WriteString("📦 **Inventory status**\n\n")

	if len(snap.Out) == 0 && len(snap.Low) == 0 {
		b.WriteString("✅ Nothing is low or out.\n")
	} else {
		b.WriteString("⚠️ **Needs attention**\n")
		if len(snap.Out) > 0 {
			fmt.Fprintf(&b, "%s Out: %s\n", statusMarker[model.StatusOut], annotated(doc, snap.Out))
		}
		if len(snap.Low) > 0 {
			fmt.Fprintf(&b, "%s Low: %s\n", statusMarker[model.StatusLow], annotated(doc, snap.Low))
		}
	}

	for _, c := range cat.Categories() {
		fmt.Fprintf(&b, "\n**%s**\n", c.Name)
		for _, item := range c.Items {
			line := item
			if q := quantityLabel(doc.Items[item]); q != "" {
				line += " (" + q + ")"
			}
			fmt.Fprintf(&b, "%s %s\n", statusMarker[doc.StatusOf(item)], line)
		}
	}

	if recent := doc.RecentHistory(recentUpdates); len(recent) > 0 {
		b.WriteString("\n🕒 **Recent updates**\n")
		for _, h := range recent {
			fmt.Fprintf(&b, "• %s → %s (%s)\n", h.Item, h.Action, h.Timestamp.In(loc).Format("Mon Jan 2 3:04 PM"))
		}
	}

	b.WriteString("\n🟢 stocked · 🟡 low · 🔴 out · ⚪ not tracked yet")
	return b.String()
}

func annotated(doc *model.InventoryDocument, items []string) string {
	parts := make([]string, len(items))
	for i, item := range items {
		parts[i] = item
		if q := quantityLabel(doc.Items[item]); q != "" {
			parts[i] += " (" + q + ")"
		}
	}
	return strings.Join(parts, ", ")
}

func quantityLabel(rec *model.ItemRecord) string {
	if rec == nil || rec.Quantity == nil {
		return ""
	}
	q := strconv.FormatFloat(*rec.Quantity, 'f', -1, 64)
	if rec.Unit != "" {
		q += " " + rec.Unit
	}
	return q
}
