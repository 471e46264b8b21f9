// Package sched is the scheduling engine: pure functions from a document (and
// arguments) to a replacement document. Nothing here performs I/O or touches
// the clock except TodayTodos; callers load a document, apply operations, and
// persist the result. Every operation is total: a missing item id degrades to
// "no visible change" rather than an error.
package sched

import (
	"sort"

	"github.com/matt-steen/review-tracker/pkg/dates"
	"github.com/matt-steen/review-tracker/pkg/db"
	"golang.org/x/text/collate"
	"golang.org/x/text/language"
)

// NeverDue marks a completed non-repeating item: far enough out that it never
// shows up in any due or overdue view again.
const NeverDue = dates.Date("9999-12-31")

// titles sort with Japanese collation; a fixed locale keeps the order
// deterministic.
var titleLocale = language.Japanese

// TodosForDate returns items due on or before d ("due by this date"),
// ascending by due date.
func TodosForDate(doc db.Document, d dates.Date) []db.Item {
	items := filterItems(doc, func(it db.Item) bool {
		return dates.Compare(it.NextDue, d) <= 0
	})
	sortByDue(items)

	return items
}

// ExactDue returns items due exactly on d, ascending by title.
func ExactDue(doc db.Document, d dates.Date) []db.Item {
	items := filterItems(doc, func(it db.Item) bool {
		return it.NextDue == d
	})
	sortByTitle(items)

	return items
}

// OverdueOnDate returns items due strictly before d, ascending by due date.
func OverdueOnDate(doc db.Document, d dates.Date) []db.Item {
	items := filterItems(doc, func(it db.Item) bool {
		return dates.Compare(it.NextDue, d) < 0
	})
	sortByDue(items)

	return items
}

// TodayTodos returns the items due by today.
func TodayTodos(doc db.Document) []db.Item {
	return TodosForDate(doc, dates.Today())
}

// CompletedOnDate returns items last completed on d, ascending by title.
func CompletedOnDate(doc db.Document, d dates.Date) []db.Item {
	items := filterItems(doc, func(it db.Item) bool {
		return it.LastDone == d
	})
	sortByTitle(items)

	return items
}

// Complete records a completion of the item on the given date and schedules
// the next one. The pre-completion scheduling fields are kept as a one-level
// undo snapshot. With a non-repeating (empty) interval set the item is pushed
// to NeverDue at stage 0; otherwise the due date advances by the interval at
// the current stage and the stage moves up, saturating at the last index.
// Stage is re-clamped against the current set on every completion, so items
// survive interval-set edits that shortened the day sequence under them.
func Complete(doc db.Document, itemID string, d dates.Date) db.Document {
	return mapItem(doc, itemID, func(it db.Item) db.Item {
		set := doc.SetByID(it.IntervalSetID)
		it.Undo = &db.UndoSnapshot{Stage: it.Stage, NextDue: it.NextDue, LastDone: it.LastDone}
		it.LastDone = d

		if len(set.Days) == 0 {
			it.NextDue = NeverDue
			it.Stage = 0

			return it
		}

		maxStage := len(set.Days) - 1
		stage := clamp(it.Stage, 0, maxStage)
		it.NextDue = d.AddDays(set.Days[stage])

		it.Stage = stage + 1
		if it.Stage > maxStage {
			it.Stage = maxStage
		}

		return it
	})
}

// Undo reverses the most recent completion of the item by restoring its
// snapshot, then clears it. A second Undo is a no-op: the snapshot is single
// level and consumed on use.
func Undo(doc db.Document, itemID string) db.Document {
	return mapItem(doc, itemID, func(it db.Item) db.Item {
		if it.Undo == nil {
			return it
		}

		it.Stage = it.Undo.Stage
		it.NextDue = it.Undo.NextDue
		it.LastDone = it.Undo.LastDone
		it.Undo = nil

		return it
	})
}

// Reset starts the item over: stage 0, due on the given date, completion
// marker and undo snapshot discarded. Unlike Undo this is forward-only; it
// does not restore any earlier state.
func Reset(doc db.Document, itemID string, d dates.Date) db.Document {
	return mapItem(doc, itemID, func(it db.Item) db.Item {
		it.Stage = 0
		it.NextDue = d
		it.LastDone = ""
		it.Undo = nil

		return it
	})
}

// MoveDueDate reschedules the item to newDue and nothing else. Stage, last
// completion, and undo snapshot are untouched: pushing an item around the
// calendar must never look like progress.
func MoveDueDate(doc db.Document, itemID string, newDue dates.Date) db.Document {
	return mapItem(doc, itemID, func(it db.Item) db.Item {
		it.NextDue = newDue

		return it
	})
}

// ItemPatch carries optional non-scheduling fields for UpdateItem; nil fields
// are left alone.
type ItemPatch struct {
	Title         *string
	Tags          *[]string
	IntervalSetID *string
	Priority      *int
	TargetMinutes *int
	Notes         *string
}

// UpdateItem merges the patch into the item. Scheduling fields (stage, due
// date, completion marker, undo snapshot) are never touched here; in
// particular, changing the interval set does not recompute the due date — the
// new table only takes effect from the next completion.
func UpdateItem(doc db.Document, itemID string, patch ItemPatch) db.Document {
	return mapItem(doc, itemID, func(it db.Item) db.Item {
		if patch.Title != nil {
			it.Title = *patch.Title
		}

		if patch.Tags != nil {
			it.Tags = *patch.Tags
		}

		if patch.IntervalSetID != nil {
			it.IntervalSetID = *patch.IntervalSetID
		}

		if patch.Priority != nil {
			it.Priority = *patch.Priority
		}

		if patch.TargetMinutes != nil {
			it.TargetMinutes = *patch.TargetMinutes
		}

		if patch.Notes != nil {
			it.Notes = *patch.Notes
		}

		return it
	})
}

// mapItem returns a document whose items slice is a copy with fn applied to
// the matching item. Other items are carried over untouched, and an unknown
// id leaves the document unchanged apart from the copy.
func mapItem(doc db.Document, itemID string, fn func(db.Item) db.Item) db.Document {
	items := make([]db.Item, len(doc.Items))

	for i, it := range doc.Items {
		if it.ID == itemID {
			it = fn(it)
		}

		items[i] = it
	}

	doc.Items = items

	return doc
}

func filterItems(doc db.Document, keep func(db.Item) bool) []db.Item {
	items := []db.Item{}

	for _, it := range doc.Items {
		if keep(it) {
			items = append(items, it)
		}
	}

	return items
}

func sortByDue(items []db.Item) {
	sort.SliceStable(items, func(i, j int) bool {
		return dates.Compare(items[i].NextDue, items[j].NextDue) < 0
	})
}

func sortByTitle(items []db.Item) {
	// a Collator keeps internal buffers, so each sort gets its own
	coll := collate.New(titleLocale)

	sort.SliceStable(items, func(i, j int) bool {
		return coll.CompareString(items[i].Title, items[j].Title) < 0
	})
}

func clamp(n, lo, hi int) int {
	if n < lo {
		return lo
	}

	if n > hi {
		return hi
	}

	return n
}
