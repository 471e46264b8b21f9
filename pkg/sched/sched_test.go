package sched_test

import (
	"testing"

	"github.com/matt-steen/review-tracker/pkg/dates"
	"github.com/matt-steen/review-tracker/pkg/db"
	"github.com/matt-steen/review-tracker/pkg/sched"
	"github.com/stretchr/testify/assert"
)

func testDoc() db.Document {
	return db.Document{
		IntervalSets: []db.IntervalSet{
			{ID: "set-a", Name: "short", Days: []int{1, 2, 4, 7}, IsDefault: true, CreatedAt: "2024-01-01"},
			{ID: "set-b", Name: "single shot", Days: []int{}, CreatedAt: "2024-01-01"},
		},
		Items: []db.Item{
			{ID: "it-1", Title: "algebra", NextDue: "2024-01-10", CreatedAt: "2024-01-01",
				IntervalSetID: "set-a", Priority: db.PriorityMedium},
			{ID: "it-2", Title: "zoology", NextDue: "2024-01-12", CreatedAt: "2024-01-01",
				IntervalSetID: "set-a", Priority: db.PriorityMedium},
			{ID: "it-3", Title: "binders", NextDue: "2024-01-05", CreatedAt: "2024-01-01",
				IntervalSetID: "set-b", Priority: db.PriorityMedium},
		},
	}
}

func itemByID(t *testing.T, doc db.Document, id string) db.Item {
	t.Helper()

	it, ok := doc.FindItem(id)
	if !ok {
		t.Fatalf("item %s not found", id)
	}

	return it
}

func TestCompleteAdvancesStageAndDueDate(t *testing.T) {
	t.Parallel()

	assert := assert.New(t)

	doc := sched.Complete(testDoc(), "it-1", "2024-01-10")
	it := itemByID(t, doc, "it-1")

	assert.Equal(dates.Date("2024-01-11"), it.NextDue)
	assert.Equal(1, it.Stage)
	assert.Equal(dates.Date("2024-01-10"), it.LastDone)

	doc = sched.Complete(doc, "it-1", "2024-01-11")
	it = itemByID(t, doc, "it-1")

	assert.Equal(dates.Date("2024-01-13"), it.NextDue)
	assert.Equal(2, it.Stage)
}

func TestCompleteRecordsUndoSnapshot(t *testing.T) {
	t.Parallel()

	assert := assert.New(t)

	doc := sched.Complete(testDoc(), "it-1", "2024-01-10")
	it := itemByID(t, doc, "it-1")

	assert.NotNil(it.Undo)
	assert.Equal(0, it.Undo.Stage)
	assert.Equal(dates.Date("2024-01-10"), it.Undo.NextDue)
	assert.Equal(dates.Date(""), it.Undo.LastDone)
}

func TestCompleteStageSaturates(t *testing.T) {
	t.Parallel()

	assert := assert.New(t)

	doc := testDoc()
	date := dates.Date("2024-01-10")
	maxStage := 3 // len([1,2,4,7]) - 1

	prevStage := 0

	for i := 0; i < 10; i++ {
		doc = sched.Complete(doc, "it-1", date)
		it := itemByID(t, doc, "it-1")

		assert.GreaterOrEqual(it.Stage, 0)
		assert.LessOrEqual(it.Stage, maxStage)
		assert.GreaterOrEqual(it.Stage, prevStage)

		prevStage = it.Stage
		date = it.NextDue
	}

	// saturated: the longest interval keeps being reused
	it := itemByID(t, doc, "it-1")
	assert.Equal(maxStage, it.Stage)

	doc = sched.Complete(doc, "it-1", "2024-06-01")
	it = itemByID(t, doc, "it-1")
	assert.Equal(maxStage, it.Stage)
	assert.Equal(dates.Date("2024-06-01").AddDays(7), it.NextDue)
}

func TestCompleteClampsStaleStage(t *testing.T) {
	t.Parallel()

	assert := assert.New(t)

	// a stage left over from a longer day sequence gets clamped, not trusted
	doc := testDoc()
	doc.Items[0].Stage = 99

	doc = sched.Complete(doc, "it-1", "2024-01-10")
	it := itemByID(t, doc, "it-1")

	assert.Equal(3, it.Stage)
	assert.Equal(dates.Date("2024-01-17"), it.NextDue)
	assert.Equal(99, it.Undo.Stage)
}

func TestCompleteNoRepeatSentinel(t *testing.T) {
	t.Parallel()

	assert := assert.New(t)

	doc := sched.Complete(testDoc(), "it-3", "2024-03-01")
	it := itemByID(t, doc, "it-3")

	assert.Equal(sched.NeverDue, it.NextDue)
	assert.Equal(0, it.Stage)
	assert.Equal(dates.Date("2024-03-01"), it.LastDone)

	// never reappears in due or overdue views
	assert.Empty(sched.TodosForDate(doc, "2030-01-01"))
	assert.Empty(sched.OverdueOnDate(doc, "2030-01-01"))
}

func TestCompleteNoRepeatResetsStage(t *testing.T) {
	t.Parallel()

	assert := assert.New(t)

	doc := testDoc()
	doc.Items[2].Stage = 5

	doc = sched.Complete(doc, "it-3", "2024-03-01")
	it := itemByID(t, doc, "it-3")

	assert.Equal(0, it.Stage)
	assert.Equal(sched.NeverDue, it.NextDue)
}

func TestCompleteDanglingSetFallsBackToDefault(t *testing.T) {
	t.Parallel()

	assert := assert.New(t)

	doc := testDoc()
	doc.Items[0].IntervalSetID = "no-such-set"

	doc = sched.Complete(doc, "it-1", "2024-01-10")
	it := itemByID(t, doc, "it-1")

	// default set is [1,2,4,7]
	assert.Equal(dates.Date("2024-01-11"), it.NextDue)
	assert.Equal(1, it.Stage)
}

func TestCompleteMissingItemIsNoop(t *testing.T) {
	t.Parallel()

	assert := assert.New(t)

	before := testDoc()
	after := sched.Complete(before, "no-such-item", "2024-01-10")

	assert.Equal(before.Items, after.Items)
}

func TestCompleteLeavesOtherItemsAlone(t *testing.T) {
	t.Parallel()

	assert := assert.New(t)

	before := testDoc()
	after := sched.Complete(before, "it-1", "2024-01-10")

	assert.Equal(itemByID(t, before, "it-2"), itemByID(t, after, "it-2"))
	assert.Equal(itemByID(t, before, "it-3"), itemByID(t, after, "it-3"))

	// the input document itself is untouched
	assert.Equal(0, itemByID(t, before, "it-1").Stage)
}

func TestUndoRestoresExactly(t *testing.T) {
	t.Parallel()

	assert := assert.New(t)

	doc := sched.Complete(testDoc(), "it-1", "2024-01-10")
	doc = sched.Complete(doc, "it-1", "2024-01-11")
	doc = sched.Undo(doc, "it-1")

	it := itemByID(t, doc, "it-1")
	assert.Equal(1, it.Stage)
	assert.Equal(dates.Date("2024-01-11"), it.NextDue)
	assert.Equal(dates.Date("2024-01-10"), it.LastDone)
	assert.Nil(it.Undo)
}

func TestUndoIsSingleLevel(t *testing.T) {
	t.Parallel()

	assert := assert.New(t)

	doc := sched.Complete(testDoc(), "it-1", "2024-01-10")
	doc = sched.Undo(doc, "it-1")

	// the snapshot was consumed; a second undo changes nothing
	again := sched.Undo(doc, "it-1")
	assert.Equal(doc.Items, again.Items)
}

func TestUndoWithoutSnapshotIsNoop(t *testing.T) {
	t.Parallel()

	assert := assert.New(t)

	before := testDoc()
	after := sched.Undo(before, "it-1")

	assert.Equal(before.Items, after.Items)
}

func TestReset(t *testing.T) {
	t.Parallel()

	assert := assert.New(t)

	doc := sched.Complete(testDoc(), "it-1", "2024-01-10")
	doc = sched.Complete(doc, "it-1", "2024-01-11")
	doc = sched.Reset(doc, "it-1", "2024-02-01")

	it := itemByID(t, doc, "it-1")
	assert.Equal(0, it.Stage)
	assert.Equal(dates.Date("2024-02-01"), it.NextDue)
	assert.Equal(dates.Date(""), it.LastDone)
	assert.Nil(it.Undo)
}

func TestMoveDueDateOnlyMovesDueDate(t *testing.T) {
	t.Parallel()

	assert := assert.New(t)

	doc := sched.Complete(testDoc(), "it-1", "2024-01-10")
	before := itemByID(t, doc, "it-1")

	doc = sched.MoveDueDate(doc, "it-1", "2024-05-01")
	after := itemByID(t, doc, "it-1")

	assert.Equal(dates.Date("2024-05-01"), after.NextDue)
	assert.Equal(before.Stage, after.Stage)
	assert.Equal(before.LastDone, after.LastDone)
	assert.Equal(before.Undo, after.Undo)
}

func TestUpdateItemLeavesSchedulingAlone(t *testing.T) {
	t.Parallel()

	assert := assert.New(t)

	doc := sched.Complete(testDoc(), "it-1", "2024-01-10")
	before := itemByID(t, doc, "it-1")

	title := "linear algebra"
	setID := "set-b"
	priority := db.PriorityHigh
	target := 45
	notes := "chapter 3 exercises"
	tags := []string{"math", "morning"}

	doc = sched.UpdateItem(doc, "it-1", sched.ItemPatch{
		Title:         &title,
		Tags:          &tags,
		IntervalSetID: &setID,
		Priority:      &priority,
		TargetMinutes: &target,
		Notes:         &notes,
	})

	it := itemByID(t, doc, "it-1")
	assert.Equal(title, it.Title)
	assert.Equal(tags, it.Tags)
	assert.Equal(setID, it.IntervalSetID)
	assert.Equal(priority, it.Priority)
	assert.Equal(target, it.TargetMinutes)
	assert.Equal(notes, it.Notes)

	// changing the interval set never rewrites the existing schedule; the new
	// table only applies from the next completion
	assert.Equal(before.Stage, it.Stage)
	assert.Equal(before.NextDue, it.NextDue)
	assert.Equal(before.LastDone, it.LastDone)
	assert.Equal(before.Undo, it.Undo)
}

func TestUpdateItemNilFieldsUntouched(t *testing.T) {
	t.Parallel()

	assert := assert.New(t)

	notes := "just notes"
	doc := sched.UpdateItem(testDoc(), "it-1", sched.ItemPatch{Notes: &notes})

	it := itemByID(t, doc, "it-1")
	assert.Equal("algebra", it.Title)
	assert.Equal(notes, it.Notes)
	assert.Equal("set-a", it.IntervalSetID)
}

func TestTodosForDate(t *testing.T) {
	t.Parallel()

	assert := assert.New(t)

	doc := testDoc()

	todos := sched.TodosForDate(doc, "2024-01-10")
	assert.Len(todos, 2)
	// ascending by due date
	assert.Equal("it-3", todos[0].ID)
	assert.Equal("it-1", todos[1].ID)

	todos = sched.TodosForDate(doc, "2024-01-04")
	assert.Empty(todos)

	todos = sched.TodosForDate(doc, "2024-01-12")
	assert.Len(todos, 3)
}

func TestOverdueOnDate(t *testing.T) {
	t.Parallel()

	assert := assert.New(t)

	doc := testDoc()

	overdue := sched.OverdueOnDate(doc, "2024-01-10")
	assert.Len(overdue, 1)
	assert.Equal("it-3", overdue[0].ID)

	// strictly before: an item due today is a todo but not overdue
	assert.Empty(sched.OverdueOnDate(doc, "2024-01-05"))
}

func TestDueFilterRelationship(t *testing.T) {
	t.Parallel()

	assert := assert.New(t)

	doc := testDoc()

	for _, d := range []dates.Date{"2024-01-04", "2024-01-05", "2024-01-10", "2024-01-12", "2024-02-01"} {
		todos := sched.TodosForDate(doc, d)
		overdue := sched.OverdueOnDate(doc, d)
		exact := sched.ExactDue(doc, d)

		// todos = overdue + exactly-due, and the two are disjoint
		assert.Len(todos, len(overdue)+len(exact))

		for _, o := range overdue {
			assert.Equal(-1, dates.Compare(o.NextDue, d))
		}

		for _, e := range exact {
			assert.Equal(d, e.NextDue)
		}
	}
}

func TestExactDueSortedByTitle(t *testing.T) {
	t.Parallel()

	assert := assert.New(t)

	doc := testDoc()
	doc.Items[1].NextDue = "2024-01-10" // zoology joins algebra on the 10th

	exact := sched.ExactDue(doc, "2024-01-10")
	assert.Len(exact, 2)
	assert.Equal("algebra", exact[0].Title)
	assert.Equal("zoology", exact[1].Title)
}

func TestCompletedOnDate(t *testing.T) {
	t.Parallel()

	assert := assert.New(t)

	doc := sched.Complete(testDoc(), "it-2", "2024-01-12")
	doc = sched.Complete(doc, "it-1", "2024-01-12")

	done := sched.CompletedOnDate(doc, "2024-01-12")
	assert.Len(done, 2)
	assert.Equal("algebra", done[0].Title)
	assert.Equal("zoology", done[1].Title)

	assert.Empty(sched.CompletedOnDate(doc, "2024-01-11"))
}

func TestQueriesDoNotMutate(t *testing.T) {
	t.Parallel()

	assert := assert.New(t)

	doc := testDoc()
	want := testDoc()

	sched.TodosForDate(doc, "2024-01-10")
	sched.OverdueOnDate(doc, "2024-01-10")
	sched.ExactDue(doc, "2024-01-10")
	sched.CompletedOnDate(doc, "2024-01-10")

	assert.Equal(want.Items, doc.Items)
}
