package service

import (
	"fmt"
	"math"
	"sort"
	"strings"
	"time"

	"bakerybot/internal/catalog"
	"bakerybot/internal/model"
)

// Prediction flags an item whose restock interval has (nearly) elapsed.
type Prediction struct {
	Item                 string `json:"item"`
	AvgIntervalDays      int    `json:"avgIntervalDays"`
	DaysSinceLastRestock int    `json:"daysSinceLastRestock"`
	Urgent               bool   `json:"urgent"`
}

// Predict estimates restock needs from "stocked" history entries. It is a
// plain moving average of the gaps between restocks: no seasonality and no
// outlier rejection. Items need at least two restocks. An item is included
// once it is within a day of its average interval and is urgent once the
// interval has fully elapsed. Results follow catalog order.
func Predict(doc *model.InventoryDocument, cat *catalog.Catalog, now time.Time) []Prediction {
	restocks := make(map[string][]time.Time)
	for _, h := range doc.History {
		if h.Action == model.StatusStocked {
			restocks[h.Item] = append(restocks[h.Item], h.Timestamp)
		}
	}

	out := []Prediction{}
	for _, item := range cat.Items() {
		times := restocks[item]
		if len(times) < 2 {
			continue
		}
		sort.Slice(times, func(i, j int) bool { return times[i].Before(times[j]) })

		var total float64
		for i := 1; i < len(times); i++ {
			total += times[i].Sub(times[i-1]).Hours() / 24
		}
		avg := int(math.Round(total / float64(len(times)-1)))
		since := int(math.Round(now.Sub(times[len(times)-1]).Hours() / 24))

		if since < avg-1 {
			continue
		}
		out = append(out, Prediction{
			Item:                 item,
			AvgIntervalDays:      avg,
			DaysSinceLastRestock: since,
			Urgent:               since >= avg,
		})
	}
	return out
}

const maxPredictionLines = 5

// RenderPredictions formats the most pressing predictions, urgent first.
// It returns "" when there are none.
func RenderPredictions(preds []Prediction) string {
	if len(preds) == 0 {
		return ""
	}
	sorted := make([]Prediction, len(preds))
	copy(sorted, preds)
	sort.SliceStable(sorted, func(i, j int) bool {
		if sorted[i].Urgent != sorted[j].Urgent {
			return sorted[i].Urgent
		}
		return sorted[i].DaysSinceLastRestock-sorted[i].AvgIntervalDays >
			sorted[j].DaysSinceLastRestock-sorted[j].AvgIntervalDays
	})
	if len(sorted) > maxPredictionLines {
		sorted = sorted[:maxPredictionLines]
	}

	var b strings.Builder
	b.WriteString("🔮 **Restock forecast**\n")
	for _, p := range sorted {
		marker := "⏳"
		when := "due tomorrow"
		if p.Urgent {
			marker = "❗"
			when = "due now"
		}
		fmt.Fprintf(&b, "%s %s: %s (usually every %d days, last restocked %d days ago)\n",
			marker, p.Item, when, p.AvgIntervalDays, p.DaysSinceLastRestock)
	}
	return strings.TrimRight(b.String(), "\n")
}
