package controller

import (
	"fmt"
	"strings"

	"github.com/gdamore/tcell/v2"
	"github.com/matt-steen/review-tracker/pkg/dates"
	"github.com/matt-steen/review-tracker/pkg/db"
	"github.com/rivo/tview"
)

const itemColumns = 7

var priorityLabels = map[int]string{
	db.PriorityHigh:   "high",
	db.PriorityMedium: "medium",
	db.PriorityLow:    "low",
}

// itemContent implements tview.TableContent over a precomputed item list, so
// the tables re-render straight from the latest document snapshot.
type itemContent struct {
	tview.TableContentReadOnly
	items []db.Item
	doc   db.Document
	today dates.Date
}

func (ic *itemContent) update(doc db.Document, items []db.Item, today dates.Date) {
	ic.doc = doc
	ic.items = items
	ic.today = today
}

// idForRow maps a table row back to the item id, accounting for the header.
func (ic *itemContent) idForRow(row int) string {
	if idx := row - 1; idx >= 0 && idx < len(ic.items) {
		return ic.items[idx].ID
	}

	return ""
}

// GetCell returns the cell at the given position or nil if no cell.
func (ic *itemContent) GetCell(row, col int) *tview.TableCell {
	if row == 0 {
		headers := []string{"due", "title", "tags", "set", "stage", "priority", "target"}
		if col >= len(headers) {
			return nil
		}

		return tview.NewTableCell(headers[col]).SetExpansion(1).
			SetTextColor(tcell.ColorYellow).SetSelectable(false)
	}

	if row-1 >= len(ic.items) {
		return nil
	}

	it := ic.items[row-1]

	switch col {
	case 0:
		due := string(it.NextDue)
		cell := tview.NewTableCell(due).SetExpansion(1).SetReference(it.ID)

		if dates.Compare(it.NextDue, ic.today) < 0 {
			cell.SetTextColor(tcell.ColorRed)
		}

		return cell
	case 1:
		return tview.NewTableCell(it.Title).SetExpansion(descTitleRatio)
	case 2:
		return tview.NewTableCell(strings.Join(it.Tags, ", ")).SetTextColor(tcell.ColorGreen).SetExpansion(1)
	case 3:
		return tview.NewTableCell(ic.doc.SetByID(it.IntervalSetID).Name).SetExpansion(1)
	case 4:
		set := ic.doc.SetByID(it.IntervalSetID)
		if len(set.Days) == 0 {
			return tview.NewTableCell("single").SetExpansion(1)
		}

		return tview.NewTableCell(fmt.Sprintf("%d/%d", it.Stage, len(set.Days)-1)).SetExpansion(1)
	case 5:
		return tview.NewTableCell(priorityLabels[it.Priority]).SetExpansion(1)
	case 6:
		if it.TargetMinutes == 0 {
			return tview.NewTableCell("-").SetExpansion(1)
		}

		return tview.NewTableCell(fmt.Sprintf("%dm", it.TargetMinutes)).SetExpansion(1)
	}

	return nil
}

// GetRowCount returns the number of rows in the table.
func (ic *itemContent) GetRowCount() int {
	return len(ic.items) + 1
}

// GetColumnCount returns the number of columns in the table.
func (ic *itemContent) GetColumnCount() int {
	return itemColumns
}
