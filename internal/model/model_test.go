package model

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ptr[T any](v T) *T { return &v }

var t0 = time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)

func TestApplyUpdateMergesPartialFields(t *testing.T) {
	doc := NewInventoryDocument(nil)

	doc.ApplyUpdate("Oat milk", StatusStocked, ptr(6.0), ptr("cartons"), ptr("top shelf"), t0)
	rec := doc.ApplyUpdate("Oat milk", StatusLow, nil, nil, nil, t0.Add(time.Hour))

	assert.Equal(t, StatusLow, rec.Status)
	assert.Equal(t, StatusStocked, rec.PreviousStatus)
	require.NotNil(t, rec.Quantity)
	assert.Equal(t, 6.0, *rec.Quantity)
	assert.Equal(t, "cartons", rec.Unit)
	assert.Equal(t, "top shelf", rec.Note)
	assert.Equal(t, t0.Add(time.Hour), rec.LastUpdatedAt)

	require.Len(t, doc.History, 2)
	assert.Equal(t, StatusLow, doc.History[1].Action)
	assert.Nil(t, doc.History[1].Quantity)
	assert.Empty(t, doc.History[1].Unit)
	assert.Equal(t, "cartons", doc.History[0].Unit)
}

func TestStatusOfUnknown(t *testing.T) {
	doc := NewInventoryDocument(nil)
	assert.Equal(t, StatusUnknown, doc.StatusOf("Flour"))
	assert.False(t, StatusUnknown.Valid())
	assert.True(t, StatusOut.Valid())
}

func TestTruncateHistoryKeepsNewest(t *testing.T) {
	doc := NewInventoryDocument(nil)
	for i := 0; i < 510; i++ {
		doc.ApplyUpdate("Flour", StatusStocked, ptr(float64(i)), nil, nil, t0.Add(time.Duration(i)*time.Minute))
	}

	dropped := doc.TruncateHistory(DefaultHistoryLimit)
	assert.Equal(t, 10, dropped)
	require.Len(t, doc.History, DefaultHistoryLimit)
	assert.Equal(t, 10.0, *doc.History[0].Quantity)
	assert.Equal(t, 509.0, *doc.History[len(doc.History)-1].Quantity)

	assert.Zero(t, doc.TruncateHistory(DefaultHistoryLimit))
}

func TestRecentHistoryNewestFirst(t *testing.T) {
	doc := NewInventoryDocument(nil)
	doc.ApplyUpdate("Flour", StatusLow, nil, nil, nil, t0)
	doc.ApplyUpdate("Yeast", StatusOut, nil, nil, nil, t0.Add(time.Minute))

	recent := doc.RecentHistory(5)
	require.Len(t, recent, 2)
	assert.Equal(t, "Yeast", recent[0].Item)
	assert.Equal(t, "Flour", recent[1].Item)
	assert.Len(t, doc.RecentHistory(1), 1)
}

func TestInventoryDocumentRoundTripKeepsCategoryOrder(t *testing.T) {
	doc := NewInventoryDocument(Categories{
		{Name: "Packaging", Items: []string{"Lids", "Napkins"}},
		{Name: "Baking", Items: []string{"Flour"}},
		{Name: "Empty"},
	})
	doc.ApplyUpdate("Lids", StatusOut, ptr(0.0), ptr("sleeves"), nil, t0)

	data, err := json.Marshal(doc)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"categories":{"Packaging":["Lids","Napkins"],"Baking":["Flour"],"Empty":[]}`)

	var back InventoryDocument
	require.NoError(t, json.Unmarshal(data, &back))
	require.Len(t, back.Categories, 3)
	assert.Equal(t, "Packaging", back.Categories[0].Name)
	assert.Equal(t, "Baking", back.Categories[1].Name)
	assert.Equal(t, StatusOut, back.StatusOf("Lids"))

	again, err := json.Marshal(&back)
	require.NoError(t, err)
	assert.JSONEq(t, string(data), string(again))
}

func TestCategoriesRejectNonObject(t *testing.T) {
	var c Categories
	assert.Error(t, json.Unmarshal([]byte(`["a"]`), &c))
	require.NoError(t, json.Unmarshal([]byte(`null`), &c))
	assert.Nil(t, c)
}

func TestClarificationReplaceAndRemove(t *testing.T) {
	p := NewPendingActions()
	p.SetClarification(PendingClarification{RequesterID: "u1", RawPhrase: "cups"})
	p.SetClarification(PendingClarification{RequesterID: "u2", RawPhrase: "milk"})
	p.SetClarification(PendingClarification{RequesterID: "u1", RawPhrase: "sugar"})

	require.Len(t, p.Clarifications, 2)
	c, ok := p.Clarification("u1")
	require.True(t, ok)
	assert.Equal(t, "sugar", c.RawPhrase)

	removed, ok := p.RemoveClarification("u1")
	assert.True(t, ok)
	assert.Equal(t, "sugar", removed.RawPhrase)

	_, ok = p.RemoveClarification("u1")
	assert.False(t, ok)
	assert.Len(t, p.Clarifications, 1)
}

func TestDueReminders(t *testing.T) {
	loc := time.UTC
	created := time.Date(2025, 3, 10, 10, 0, 0, 0, loc)

	p := NewPendingActions()
	p.AddReminder(Reminder{ID: "a", When: WhenTonight, CreatedAt: created})
	p.AddReminder(Reminder{ID: "b", When: WhenTomorrow, CreatedAt: created})
	p.AddReminder(Reminder{ID: "c", When: "friday 3pm", CreatedAt: created})
	p.AddReminder(Reminder{ID: "d", When: "", CreatedAt: created})
	p.AddReminder(Reminder{ID: "e", When: WhenTonight, CreatedAt: created, Resolved: true})

	ids := func(rs []Reminder) []string {
		out := []string{}
		for _, r := range rs {
			out = append(out, r.ID)
		}
		return out
	}

	assert.Empty(t, ids(p.DueReminders(created.Add(2*time.Hour), loc, 20)))
	assert.Equal(t, []string{"a"}, ids(p.DueReminders(time.Date(2025, 3, 10, 20, 0, 0, 0, loc), loc, 20)))
	assert.Equal(t, []string{"b"}, ids(p.DueReminders(created.Add(24*time.Hour), loc, 20)))
	assert.Equal(t, []string{"a", "b"}, ids(p.DueReminders(time.Date(2025, 3, 11, 21, 0, 0, 0, loc), loc, 20)))

	assert.True(t, p.ResolveReminder("a"))
	assert.False(t, p.ResolveReminder("a"))
	assert.False(t, p.ResolveReminder("missing"))
	assert.Equal(t, []string{"b"}, ids(p.DueReminders(time.Date(2025, 3, 11, 21, 0, 0, 0, loc), loc, 20)))
}
