package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"bakerybot/internal/logger"
	"bakerybot/internal/model"
	"bakerybot/internal/oracle"
)

const (
	persistFailedReply = "Sorry, I couldn't save that just now, so nothing was changed. Please try again in a moment."
	loadFailedReply    = "Sorry, I can't reach the inventory right now. Please try again in a moment."
	partialSaveReply   = "%s, but I couldn't save the rest of that message (questions and reminders). Please repeat that part in a moment."
)

// Assistant turns one chat message into at most one reply:
// oracle, then reconciliation or reporting, then reply composition.
type Assistant struct {
	oracle   oracle.Oracle
	engine   *Engine
	reporter *Reporter
	orders   *DailyCounter
	log      *logger.Logger
}

// NewAssistant wires the orchestrator.
func NewAssistant(o oracle.Oracle, engine *Engine, reporter *Reporter, orders *DailyCounter, log *logger.Logger) *Assistant {
	if log == nil {
		log = logger.Nop()
	}
	if orders == nil {
		orders = NewDailyCounter(reporter.Location)
	}
	return &Assistant{oracle: o, engine: engine, reporter: reporter, orders: orders, log: log}
}

// ProcessMessage handles text from requesterID. ok is false when the bot
// should stay silent: ignored messages and anything the oracle could not
// understand.
func (a *Assistant) ProcessMessage(ctx context.Context, text, requesterID string) (reply string, ok bool) {
	text = strings.TrimSpace(text)
	if text == "" {
		return "", false
	}
	log := a.log.With("requester_id", requesterID)

	req := oracle.Request{Text: text, RequesterID: requesterID}
	if open, err := a.engine.Pending.GetClarification(ctx, requesterID); err != nil {
		log.Warn("pending clarification lookup failed", "error", err)
	} else if open != nil {
		req.Context = ClarificationContext(open)
	}

	intent, err := a.oracle.Classify(ctx, req)
	if err == nil && intent == nil {
		err = oracle.ErrUnparseable
	}
	if err != nil {
		log.Warn("oracle gave no usable intent", "error", err)
		return "", false
	}
	log.Debug("message classified", "intent", intent.Kind, "updates", len(intent.Updates))

	switch intent.Kind {
	case model.IntentIgnore:
		return "", false
	case model.IntentStatus:
		return a.statusReply(ctx, log)
	case model.IntentOrder:
		if intent.Order != nil {
			n := a.orders.Next(a.engine.now())
			log.Info("order noted", "order", n)
			return fmt.Sprintf("Order #%d noted: %s.", n, strings.TrimSuffix(intent.Order.Summary, ".")), true
		}
	}

	res, err := a.engine.ApplyIntent(ctx, intent, requesterID)
	if err != nil {
		if errors.Is(err, ErrPendingNotSaved) && res != nil {
			log.Error("update partly persisted", "error", err)
			return fmt.Sprintf(partialSaveReply, "Got it, updated "+updatedList(res)), true
		}
		if errors.Is(err, ErrPersist) {
			log.Error("update not persisted", "error", err)
			return persistFailedReply, true
		}
		log.Error("reconciliation failed", "error", err)
		return loadFailedReply, true
	}

	reply = ComposeReply(intent, res)
	return reply, reply != ""
}

func (a *Assistant) statusReply(ctx context.Context, log *logger.Logger) (string, bool) {
	report, err := a.reporter.Render(ctx)
	if err != nil {
		log.Error("status report failed", "error", err)
		return loadFailedReply, true
	}
	preds, err := a.reporter.Predict(ctx)
	if err != nil {
		log.Warn("prediction failed", "error", err)
	}
	if forecast := RenderPredictions(preds); forecast != "" {
		report += "\n\n" + forecast
	}
	return report, true
}

// ClarificationContext describes an open clarification to the oracle.
func ClarificationContext(c *model.PendingClarification) string {
	return fmt.Sprintf("This user was asked %q about %q. Options: %s.",
		c.Question, c.RawPhrase, strings.Join(c.Options, ", "))
}

// ComposeReply merges the oracle's reply with what actually happened. A
// request where nothing matched gets an apology instead of the oracle's
// reply. An open clarification question is appended unless the oracle's own
// reply already asks something.
func ComposeReply(intent *model.Intent, res *ReconcileResult) string {
	var parts []string
	oracleAsks := false
	if res.NothingMatched() {
		if len(res.Failed) > 0 {
			parts = append(parts, fmt.Sprintf("Sorry, I couldn't find %s in the inventory. Could you check the spelling?", quoteAll(res.Failed)))
		}
	} else {
		reply := strings.TrimSpace(intent.Reply)
		if reply != "" {
			oracleAsks = strings.Contains(reply, "?")
		} else {
			reply = confirmation(res)
		}
		if reply != "" {
			parts = append(parts, reply)
		}
		if len(res.Failed) > 0 {
			parts = append(parts, fmt.Sprintf("I couldn't find %s, so I left it out. Check the spelling?", quoteAll(res.Failed)))
		}
	}
	if len(res.Invalid) > 0 {
		parts = append(parts, fmt.Sprintf("I wasn't sure whether %s is stocked, low or out, so I left it unchanged.", quoteAll(res.Invalid)))
	}

	if c := res.Clarification; c != nil && !oracleAsks {
		parts = append(parts, c.Question)
	}
	return strings.Join(parts, " ")
}

func confirmation(res *ReconcileResult) string {
	var parts []string
	if len(res.Updated) > 0 {
		parts = append(parts, "Got it, updated "+updatedList(res)+".")
	}
	if r := res.Reminder; r != nil {
		when := r.When
		if when == "" {
			when = "later"
		}
		parts = append(parts, fmt.Sprintf("I'll remind you %s: %s.", when, strings.TrimSuffix(r.Text, ".")))
	}
	return strings.Join(parts, " ")
}

func updatedList(res *ReconcileResult) string {
	items := make([]string, len(res.Updated))
	for i, u := range res.Updated {
		items[i] = fmt.Sprintf("%s (%s)", u.Item, u.Status)
	}
	return joinAnd(items)
}

func quoteAll(items []string) string {
	quoted := make([]string, len(items))
	for i, s := range items {
		quoted[i] = fmt.Sprintf("%q", s)
	}
	return joinOr(quoted)
}

// OrdersToday reports how many orders were numbered today.
func (a *Assistant) OrdersToday() int {
	return a.orders.Current(a.engine.now())
}
