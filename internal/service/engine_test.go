package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bakerybot/internal/model"
	"bakerybot/internal/store"
)

var allCups = []string{"Large to go cups", "Regular to go cups", "Espresso to go cups", "Cold to go cups"}

func TestApplyIntentExactAndAlias(t *testing.T) {
	f := newFixture(t)

	res := f.apply(t, "u1",
		model.ItemUpdate{Item: "oat", Status: model.StatusLow, Qty: ptr(2.0), Unit: ptr("cartons")},
		upd("FLOUR", model.StatusOut),
	)

	assert.Equal(t, []string{"Oat milk", "Flour"}, res.UpdatedNames())
	assert.Empty(t, res.Failed)
	assert.Nil(t, res.Clarification)

	doc := f.inventory(t)
	assert.Equal(t, model.StatusLow, doc.StatusOf("Oat milk"))
	assert.Equal(t, model.StatusOut, doc.StatusOf("Flour"))
	assert.Equal(t, 2.0, *doc.Items["Oat milk"].Quantity)
	assert.Len(t, doc.History, 2)
}

func TestApplyIntentExpandGroup(t *testing.T) {
	f := newFixture(t)

	res := f.apply(t, "u1", upd("fruits", model.StatusStocked))

	assert.Equal(t, []string{"Strawberries", "Blueberries", "Bananas", "Lemons", "Apples"}, res.UpdatedNames())
	assert.Len(t, f.inventory(t).History, 5)
}

func TestAmbiguousCupsThenFollowUp(t *testing.T) {
	f := newFixture(t)

	res := f.apply(t, "u1", upd("cups", model.StatusLow))
	assert.Empty(t, res.Updated)
	assert.Empty(t, res.Failed)
	require.NotNil(t, res.Clarification)
	assert.Equal(t, allCups, res.Clarification.Options)
	assert.Equal(t, "Which cups do you mean: Large to go cups, Regular to go cups, Espresso to go cups or Cold to go cups?", res.Clarification.Question)
	assert.False(t, res.NothingMatched())

	for _, item := range allCups {
		assert.Equal(t, model.StatusUnknown, f.inventory(t).StatusOf(item), "ambiguous phrase updates nothing")
	}

	f.advance(time.Minute)
	res = f.apply(t, "u1", upd("Large to go cups", model.StatusLow))
	assert.Equal(t, []string{"Large to go cups"}, res.UpdatedNames())
	require.NotNil(t, res.Cleared)
	assert.Equal(t, "cups", res.Cleared.RawPhrase)
	assert.Nil(t, res.Clarification)
	assert.Empty(t, f.pending(t).Clarifications)
}

// Any resolvable update clears the requester's open clarification, even one
// about an unrelated item.
func TestUnrelatedUpdateClearsClarification(t *testing.T) {
	f := newFixture(t)

	f.apply(t, "u1", upd("cups", model.StatusLow))
	require.Len(t, f.pending(t).Clarifications, 1)

	res := f.apply(t, "u1", upd("Flour", model.StatusOut))
	require.NotNil(t, res.Cleared)
	assert.Equal(t, "cups", res.Cleared.RawPhrase)
	assert.Empty(t, f.pending(t).Clarifications)
	for _, item := range allCups {
		assert.Equal(t, model.StatusUnknown, f.inventory(t).StatusOf(item))
	}
}

func TestClarificationsAreScopedToRequester(t *testing.T) {
	f := newFixture(t)

	f.apply(t, "u1", upd("cups", model.StatusLow))
	res := f.apply(t, "u2", upd("Flour", model.StatusOut))
	assert.Nil(t, res.Cleared)

	c, ok := f.pending(t).Clarification("u1")
	require.True(t, ok)
	assert.Equal(t, "cups", c.RawPhrase)
}

func TestFailedUpdatesDoNotClearClarification(t *testing.T) {
	f := newFixture(t)

	f.apply(t, "u1", upd("cups", model.StatusLow))
	res := f.apply(t, "u1", upd("unicorn dust", model.StatusOut), upd("Flour", "sparkly"))

	assert.True(t, res.NothingMatched())
	assert.Equal(t, []string{"unicorn dust"}, res.Failed)
	assert.Equal(t, []string{"Flour"}, res.Invalid)
	require.NotNil(t, res.Clarification, "still open")
	assert.Nil(t, res.Cleared)
	assert.Equal(t, model.StatusUnknown, f.inventory(t).StatusOf("Flour"))
}

func TestNewClarificationReplacesOld(t *testing.T) {
	f := newFixture(t)

	f.apply(t, "u1", upd("cups", model.StatusLow))
	res := f.apply(t, "u1", upd("sugar", model.StatusOut))

	require.NotNil(t, res.Clarification)
	assert.Equal(t, "sugar", res.Clarification.RawPhrase)
	assert.Len(t, f.pending(t).Clarifications, 1)
}

func TestProposedClarificationOptionsAreCanonicalised(t *testing.T) {
	f := newFixture(t)

	res, err := f.engine.ApplyIntent(context.Background(), &model.Intent{
		Kind: model.IntentChat,
		Clarifications: []model.ClarificationProposal{
			{Raw: "the big ones", Options: []string{"large to go cups", "large paper bags"}},
		},
	}, "u1")
	require.NoError(t, err)
	require.NotNil(t, res.Clarification)
	assert.Equal(t, []string{"Large to go cups", "Large paper bags"}, res.Clarification.Options)
	assert.Equal(t, "Which the big ones do you mean: Large to go cups or Large paper bags?", res.Clarification.Question)
}

func TestApplyIntentAddsReminder(t *testing.T) {
	f := newFixture(t)

	res, err := f.engine.ApplyIntent(context.Background(), &model.Intent{
		Kind:     model.IntentReminder,
		Reminder: &model.ReminderProposal{Text: " order flour ", When: "tonight"},
	}, "u1")
	require.NoError(t, err)
	require.NotNil(t, res.Reminder)
	assert.Equal(t, "order flour", res.Reminder.Text)
	assert.NotEmpty(t, res.Reminder.ID)

	p := f.pending(t)
	require.Len(t, p.Reminders, 1)
	assert.Equal(t, res.Reminder.ID, p.Reminders[0].ID)
	assert.Equal(t, f.now, p.Reminders[0].CreatedAt)
}

func TestPersistFailureIsReported(t *testing.T) {
	f := newFixture(t)
	f.apply(t, "u1", upd("Flour", model.StatusStocked))

	f.repo.SetFailPuts(errors.New("disk full"))
	_, err := f.engine.ApplyIntent(context.Background(), &model.Intent{Updates: []model.ItemUpdate{upd("Flour", model.StatusOut)}}, "u1")
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrPersist))

	f.repo.SetFailPuts(nil)
	assert.Equal(t, model.StatusStocked, f.inventory(t).StatusOf("Flour"), "durable state unchanged")
}

func TestSplitWriteReturnsDurableUpdates(t *testing.T) {
	f := newFixture(t)
	f.apply(t, "u1", upd("cups", model.StatusLow))

	f.repo.SetFailPutsFor(store.KeyPending, errors.New("pending table locked"))
	res, err := f.engine.ApplyIntent(context.Background(), &model.Intent{Updates: []model.ItemUpdate{upd("Flour", model.StatusOut)}}, "u1")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrPersist)
	assert.ErrorIs(t, err, ErrPendingNotSaved)
	require.NotNil(t, res)
	assert.Equal(t, []string{"Flour"}, res.UpdatedNames())
	assert.Nil(t, res.Cleared)

	f.repo.SetFailPutsFor(store.KeyPending, nil)
	assert.Equal(t, model.StatusOut, f.inventory(t).StatusOf("Flour"))
	assert.Len(t, f.pending(t).Clarifications, 1, "clarification still open")
}

func TestPendingOnlyWriteFailureChangesNothing(t *testing.T) {
	f := newFixture(t)
	f.repo.SetFailPutsFor(store.KeyPending, errors.New("pending table locked"))

	res, err := f.engine.ApplyIntent(context.Background(), &model.Intent{Updates: []model.ItemUpdate{upd("cups", model.StatusLow)}}, "u1")
	assert.Nil(t, res)
	assert.ErrorIs(t, err, ErrPersist)
	assert.NotErrorIs(t, err, ErrPendingNotSaved)
}

func TestUnknownStatusIsInvalidNotFailed(t *testing.T) {
	f := newFixture(t)
	res := f.apply(t, "u1", upd("Flour", "sparkly"))

	assert.Empty(t, res.Failed)
	assert.Equal(t, []string{"Flour"}, res.Invalid)
	assert.True(t, res.NothingMatched())
}

func TestHistoryStaysBounded(t *testing.T) {
	f := newFixture(t)
	f.engine.HistoryLimit = model.DefaultHistoryLimit

	for i := 0; i < 101; i++ {
		f.advance(time.Minute)
		f.apply(t, "u1", upd("fruits", model.StatusLow))
	}

	doc := f.inventory(t)
	assert.Len(t, doc.History, model.DefaultHistoryLimit)
	assert.Equal(t, f.now, doc.History[len(doc.History)-1].Timestamp)
}

func TestApplyIntentNil(t *testing.T) {
	f := newFixture(t)
	_, err := f.engine.ApplyIntent(context.Background(), nil, "u1")
	assert.Error(t, err)
}

func TestAskQuestionJoins(t *testing.T) {
	assert.Equal(t, "Which bags do you mean: Small paper bags or Large paper bags?",
		AskQuestion("bags", []string{"Small paper bags", "Large paper bags"}))
	assert.Equal(t, "a", joinAnd([]string{"a"}))
	assert.Equal(t, "a, b and c", joinAnd([]string{"a", "b", "c"}))
	assert.Equal(t, "", joinOr(nil))
}
