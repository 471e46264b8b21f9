package controller

import (
	"testing"

	"github.com/matt-steen/review-tracker/pkg/db"
	"github.com/stretchr/testify/assert"
)

func calendarDoc() db.Document {
	return db.Document{
		IntervalSets: []db.IntervalSet{
			{ID: "set-a", Name: "short", Days: []int{1, 2, 4}, IsDefault: true},
		},
		Items: []db.Item{
			{ID: "it-1", Title: "algebra", NextDue: "2024-01-05", IntervalSetID: "set-a"},
			{ID: "it-2", Title: "zoology", NextDue: "2024-01-10", IntervalSetID: "set-a"},
			{ID: "it-3", Title: "binders", NextDue: "2024-01-12", IntervalSetID: "set-a"},
		},
	}
}

func TestCalendarOverdueText(t *testing.T) {
	t.Parallel()

	assert := assert.New(t)

	text := calendarOverdueText(calendarDoc(), "2024-01-10")

	// only items strictly before the browsed date show up
	assert.Contains(text, "overdue before 2024-01-10 (1)")
	assert.Contains(text, "algebra")
	assert.NotContains(text, "zoology")
	assert.NotContains(text, "binders")
}

func TestCalendarOverdueTextEmpty(t *testing.T) {
	t.Parallel()

	assert := assert.New(t)

	text := calendarOverdueText(calendarDoc(), "2024-01-01")
	assert.Contains(text, "overdue before 2024-01-01 (0)")
	assert.NotContains(text, "algebra")
}

func TestCalendarHeading(t *testing.T) {
	t.Parallel()

	assert := assert.New(t)

	assert.Contains(calendarHeading("2024-01-10", "2024-01-10"), "(today)")
	assert.NotContains(calendarHeading("2024-01-11", "2024-01-10"), "(today)")
	assert.Contains(calendarHeading("2024-01-11", "2024-01-10"), "2024-01-11")
}
