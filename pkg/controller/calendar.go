package controller

import (
	"fmt"

	"github.com/matt-steen/review-tracker/pkg/dates"
	"github.com/matt-steen/review-tracker/pkg/db"
	"github.com/matt-steen/review-tracker/pkg/sched"
	"github.com/rivo/tview"
)

// getCalendarGrid builds the date-browse page: a heading with the browsed
// date, the items due exactly on it, and the backlog overdue before it.
func (c *Controller) getCalendarGrid() *tview.Grid {
	header := c.getHeader(pageCalendar, "calendar", c.calEvents)

	c.calDayView = tview.NewTextView().SetDynamicColors(true)
	c.calContent = &itemContent{}
	c.calTable = c.getItemTable(c.calContent)

	c.calOverdueView = tview.NewTextView().SetDynamicColors(true)
	c.calOverdueView.SetScrollable(false)

	grid := tview.NewGrid().SetBorders(true).SetRows(0, 1, 0, 6)

	grid.AddItem(header, 0, 0, 1, 1, 0, 0, false)
	grid.AddItem(c.calDayView, 1, 0, 1, 1, 0, 0, false)
	grid.AddItem(c.calTable, 2, 0, 1, 1, 0, 0, true)
	grid.AddItem(c.calOverdueView, 3, 0, 1, 1, 0, 0, false)

	return grid
}

func (c *Controller) refreshCalendar() {
	today := dates.Today()

	c.calDayView.SetText(calendarHeading(c.calDate, today))
	c.calContent.update(c.doc, sched.ExactDue(c.doc, c.calDate), today)
	c.calOverdueView.SetText(calendarOverdueText(c.doc, c.calDate))
}

// shiftCalendar moves the browsed date by the given number of days.
func (c *Controller) shiftCalendar(days int) {
	c.calDate = c.calDate.AddDays(days)
	c.refreshCalendar()
	c.syncSelection()
}

func (c *Controller) calendarToToday() {
	c.calDate = dates.Today()
	c.refreshCalendar()
	c.syncSelection()
}

func calendarHeading(d, today dates.Date) string {
	suffix := ""
	if d == today {
		suffix = " (today)"
	}

	return fmt.Sprintf("[yellow]browsing[white] %s%s - due exactly on this date:", d, suffix)
}

func calendarOverdueText(doc db.Document, d dates.Date) string {
	overdue := sched.OverdueOnDate(doc, d)

	text := fmt.Sprintf("[yellow]overdue before %s (%d)[white]\n", d, len(overdue))
	for _, it := range overdue {
		text += fmt.Sprintf("  %s  [red]%s[white]\n", it.Title, it.NextDue)
	}

	return text
}
