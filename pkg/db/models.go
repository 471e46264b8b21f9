package db

import (
	"errors"
	"math"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/matt-steen/review-tracker/pkg/dates"
)

// Priority levels for items. Lower is more urgent.
const (
	PriorityHigh   = 1
	PriorityMedium = 2
	PriorityLow    = 3
)

// Timer session modes.
const (
	ModePomodoro  = "pomodoro"
	ModeCountdown = "countdown"
)

// ErrNoIntervals is returned when an interval string contains no usable
// positive integer and was not an explicit "no repetition" input.
var ErrNoIntervals = errors.New("intervals must be positive whole numbers of days (leave empty for no repetition)")

// Guards on interval-set deletion.
var (
	ErrSetReferenced = errors.New("interval set is still assigned to items")
	ErrSetIsDefault  = errors.New("the default interval set cannot be deleted")
)

// IntervalSet is a named, ordered list of day-counts. Days[stage] is how far
// into the future a completion at that stage pushes an item's due date. An
// empty Days slice is meaningful: it marks a single-shot, non-repeating set.
type IntervalSet struct {
	ID        string
	Name      string
	Days      []int
	IsDefault bool
	CreatedAt dates.Date
}

// UndoSnapshot captures an item's scheduling fields immediately before a
// completion so that one completion can be reversed.
type UndoSnapshot struct {
	Stage    int
	NextDue  dates.Date
	LastDone dates.Date
}

// Item is a schedulable review task. Stage indexes into the assigned interval
// set's Days and is the interval to apply on the next completion. An empty
// LastDone means the item has never been completed; an empty IntervalSetID
// resolves to the document's default set.
type Item struct {
	ID            string
	Title         string
	Tags          []string
	Stage         int
	NextDue       dates.Date
	LastDone      dates.Date
	CreatedAt     dates.Date
	IntervalSetID string
	Undo          *UndoSnapshot
	Priority      int
	TargetMinutes int
	Notes         string
}

// Session is one logged stretch of study time against an item. Sessions are
// append-only; nothing in the tracker edits or deletes them.
type Session struct {
	ID             string
	ItemID         string
	Mode           string
	PlannedMinutes int
	ActualSeconds  int
	StartedAt      time.Time
	EndedAt        time.Time
	Date           dates.Date
}

// Document is the aggregate holding everything the tracker persists. Scheduler
// operations treat it as a value: they return a replacement rather than
// mutating in place, and the caller persists the result.
type Document struct {
	IntervalSets []IntervalSet
	Items        []Item
	Sessions     []Session
}

// DefaultSet returns the document's default interval set. Normalize guarantees
// exactly one default exists; the first-set fallback keeps this total on
// documents that haven't been normalized yet.
func (d Document) DefaultSet() IntervalSet {
	for _, s := range d.IntervalSets {
		if s.IsDefault {
			return s
		}
	}

	if len(d.IntervalSets) > 0 {
		return d.IntervalSets[0]
	}

	return IntervalSet{}
}

// SetByID resolves an interval set reference. Empty or dangling ids fall back
// to the default set rather than failing.
func (d Document) SetByID(id string) IntervalSet {
	if id == "" {
		return d.DefaultSet()
	}

	for _, s := range d.IntervalSets {
		if s.ID == id {
			return s
		}
	}

	return d.DefaultSet()
}

// SetReferenced reports whether any item points at the given interval set.
func (d Document) SetReferenced(id string) bool {
	for _, it := range d.Items {
		if it.IntervalSetID == id {
			return true
		}
	}

	return false
}

// FindItem returns the item with the given id, if present.
func (d Document) FindItem(id string) (Item, bool) {
	for _, it := range d.Items {
		if it.ID == id {
			return it, true
		}
	}

	return Item{}, false
}

// NewItem builds a fresh item due on startDue (today when empty) at stage 0.
func NewItem(title string, tags []string, intervalSetID string, startDue dates.Date) Item {
	today := dates.Today()
	if startDue == "" {
		startDue = today
	}

	return Item{
		ID:            uuid.NewString(),
		Title:         title,
		Tags:          tags,
		Stage:         0,
		NextDue:       startDue,
		CreatedAt:     today,
		IntervalSetID: intervalSetID,
		Priority:      PriorityMedium,
	}
}

// NewIntervalSet builds a named set from an already-parsed day sequence.
func NewIntervalSet(name string, days []int) IntervalSet {
	return IntervalSet{
		ID:        uuid.NewString(),
		Name:      name,
		Days:      days,
		CreatedAt: dates.Today(),
	}
}

// NewSession builds a session record for the given stretch of time.
func NewSession(itemID, mode string, plannedMinutes, actualSeconds int, startedAt, endedAt time.Time) Session {
	return Session{
		ID:             uuid.NewString(),
		ItemID:         itemID,
		Mode:           mode,
		PlannedMinutes: plannedMinutes,
		ActualSeconds:  actualSeconds,
		StartedAt:      startedAt,
		EndedAt:        endedAt,
		Date:           dates.FromTime(startedAt),
	}
}

// Seed returns the first-run document: three interval sets matching the
// original rotation presets and no items.
func Seed() Document {
	short := NewIntervalSet("short rotation", []int{1, 2, 4, 7, 14, 30, 60})
	short.IsDefault = true

	return Document{
		IntervalSets: []IntervalSet{
			short,
			NewIntervalSet("memorization", []int{1, 2, 4, 7, 14, 30}),
			NewIntervalSet("long understanding", []int{2, 4, 7, 14, 30, 60, 120}),
		},
	}
}

// Normalize repairs a loaded document instead of failing on it: ids are
// backfilled, exactly one interval set ends up as the default (first found
// wins), and item fields get their documented defaults. It returns a new
// document and never errors.
func Normalize(doc Document) Document {
	sets := make([]IntervalSet, len(doc.IntervalSets))
	copy(sets, doc.IntervalSets)

	foundDefault := false

	for i := range sets {
		if sets[i].ID == "" {
			sets[i].ID = uuid.NewString()
		}

		if sets[i].IsDefault {
			if foundDefault {
				sets[i].IsDefault = false
			}

			foundDefault = true
		}
	}

	if !foundDefault && len(sets) > 0 {
		sets[0].IsDefault = true
	}

	doc.IntervalSets = sets
	defaultID := doc.DefaultSet().ID

	items := make([]Item, len(doc.Items))
	copy(items, doc.Items)

	for i := range items {
		if items[i].ID == "" {
			items[i].ID = uuid.NewString()
		}

		if items[i].IntervalSetID == "" {
			items[i].IntervalSetID = defaultID
		}

		if items[i].Priority < PriorityHigh || items[i].Priority > PriorityLow {
			items[i].Priority = PriorityMedium
		}

		if items[i].TargetMinutes < 0 {
			items[i].TargetMinutes = 0
		}

		if items[i].Stage < 0 {
			items[i].Stage = 0
		}
	}

	doc.Items = items

	return doc
}

// SetDefaultSet makes the given set the document's only default. An unknown
// id leaves the document unchanged.
func SetDefaultSet(doc Document, id string) Document {
	found := false

	for _, s := range doc.IntervalSets {
		if s.ID == id {
			found = true

			break
		}
	}

	if !found {
		return doc
	}

	sets := make([]IntervalSet, len(doc.IntervalSets))
	copy(sets, doc.IntervalSets)

	for i := range sets {
		sets[i].IsDefault = sets[i].ID == id
	}

	doc.IntervalSets = sets

	return doc
}

// RemoveIntervalSet deletes a set, refusing while items still reference it or
// while it is the default.
func RemoveIntervalSet(doc Document, id string) (Document, error) {
	if doc.DefaultSet().ID == id {
		return doc, ErrSetIsDefault
	}

	if doc.SetReferenced(id) {
		return doc, ErrSetReferenced
	}

	sets := make([]IntervalSet, 0, len(doc.IntervalSets))

	for _, s := range doc.IntervalSets {
		if s.ID != id {
			sets = append(sets, s)
		}
	}

	doc.IntervalSets = sets

	return doc, nil
}

// ParseIntervals turns free-form text like "1,2,4,7" or "1 2 4 7" into a
// deduplicated ascending day sequence. An empty string (or "none") is the
// explicit no-repetition input and yields an empty sequence; input that leaves
// no positive integer after filtering is ErrNoIntervals.
func ParseIntervals(input string) ([]int, error) {
	trimmed := strings.TrimSpace(input)
	if trimmed == "" || strings.EqualFold(trimmed, "none") || trimmed == "なし" {
		return []int{}, nil
	}

	seen := map[int]bool{}
	days := []int{}

	for _, tok := range strings.FieldsFunc(trimmed, func(r rune) bool {
		return r == ',' || r == ' ' || r == '\t'
	}) {
		f, err := strconv.ParseFloat(tok, 64)
		if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
			continue
		}

		// fractional day counts round down, so "1.5" means one day
		n := int(math.Floor(f))
		if n < 1 {
			continue
		}

		if !seen[n] {
			seen[n] = true

			days = append(days, n)
		}
	}

	if len(days) == 0 {
		return nil, ErrNoIntervals
	}

	sort.Ints(days)

	return days, nil
}
