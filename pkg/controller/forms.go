package controller

import (
	"strconv"
	"strings"

	"github.com/matt-steen/review-tracker/pkg/dates"
	"github.com/matt-steen/review-tracker/pkg/db"
	"github.com/matt-steen/review-tracker/pkg/sched"
	"github.com/rivo/tview"
	"github.com/rs/zerolog/log"
)

const (
	titleMax = 50
	notesMax = 500
)

func (c *Controller) getItemFormGrid() *tview.Grid {
	c.itemForm = tview.NewForm()
	c.formMessage = tview.NewTextView().SetDynamicColors(true)

	grid := tview.NewGrid().SetBorders(true).SetRows(3, 0)

	grid.AddItem(c.formMessage, 0, 0, 1, 1, 0, 0, false)
	grid.AddItem(c.itemForm, 1, 0, 1, 1, 0, 0, true)

	return grid
}

func (c *Controller) getSetFormGrid() *tview.Grid {
	c.setForm = tview.NewForm()
	c.setFormMessage = tview.NewTextView().SetDynamicColors(true)

	grid := tview.NewGrid().SetBorders(true).SetRows(3, 0)

	grid.AddItem(c.setFormMessage, 0, 0, 1, 1, 0, 0, false)
	grid.AddItem(c.setForm, 1, 0, 1, 1, 0, 0, true)

	return grid
}

func (c *Controller) getMoveFormGrid() *tview.Grid {
	c.moveForm = tview.NewForm()

	grid := tview.NewGrid().SetBorders(true)

	grid.AddItem(c.moveForm, 0, 0, 1, 1, 0, 0, true)

	return grid
}

func (c *Controller) switchToItemForm(itemID string) {
	c.formReturnPage = c.currentPage
	c.editingItemID = itemID

	title := "New Item"

	it := db.Item{Priority: db.PriorityMedium}
	if itemID != "" {
		title = "Edit Item"

		found, ok := c.doc.FindItem(itemID)
		if !ok {
			return
		}

		it = found
	}

	c.formMessage.SetText("[yellow]" + title + "[white]   <esc> cancels")
	c.buildItemForm(it)
	c.itemForm.SetFocus(0)

	c.currentPage = pageItemForm
	c.pages.SwitchToPage(pageItemForm)
	c.app.SetInputCapture(c.handleFormKeys)
}

func (c *Controller) buildItemForm(it db.Item) {
	c.itemForm.Clear(true)

	setNames, setIdx := c.setOptions(it.IntervalSetID)

	target := ""
	if it.TargetMinutes > 0 {
		target = strconv.Itoa(it.TargetMinutes)
	}

	c.itemForm.
		AddInputField("Title", it.Title, titleMax, nil, nil).
		AddInputField("Tags", strings.Join(it.Tags, ", "), titleMax, nil, nil).
		AddDropDown("Interval set", setNames, setIdx, nil).
		AddDropDown("Priority", []string{"high", "medium", "low"}, it.Priority-1, nil).
		AddInputField("Target minutes", target, 5, nil, nil).
		AddInputField("Notes", it.Notes, notesMax, nil, nil)

	if c.editingItemID == "" {
		c.itemForm.AddInputField("First due (YYYY-MM-DD)", string(dates.Today()), 12, nil, nil)
	}

	c.itemForm.AddButton("Save", c.saveItemForm)
	c.itemForm.AddButton("Cancel", c.closeForm)
}

func (c *Controller) setOptions(selectedID string) ([]string, int) {
	names := make([]string, len(c.doc.IntervalSets))
	idx := 0

	for i, s := range c.doc.IntervalSets {
		names[i] = s.Name

		if s.ID == selectedID {
			idx = i
		}

		if selectedID == "" && s.IsDefault {
			idx = i
		}
	}

	return names, idx
}

func (c *Controller) formField(form *tview.Form, label string) string {
	field, _ := form.GetFormItemByLabel(label).(*tview.InputField)
	if field == nil {
		return ""
	}

	return strings.TrimSpace(field.GetText())
}

func (c *Controller) saveItemForm() {
	title := c.formField(c.itemForm, "Title")
	if title == "" {
		c.formMessage.SetText("[red]a title is required")

		return
	}

	tags := []string{}

	for _, tag := range strings.Split(c.formField(c.itemForm, "Tags"), ",") {
		if tag = strings.TrimSpace(tag); tag != "" {
			tags = append(tags, tag)
		}
	}

	setDrop, _ := c.itemForm.GetFormItemByLabel("Interval set").(*tview.DropDown)
	setID := ""

	if idx, _ := setDrop.GetCurrentOption(); idx >= 0 && idx < len(c.doc.IntervalSets) {
		setID = c.doc.IntervalSets[idx].ID
	}

	prioDrop, _ := c.itemForm.GetFormItemByLabel("Priority").(*tview.DropDown)
	priority := db.PriorityMedium

	if idx, _ := prioDrop.GetCurrentOption(); idx >= 0 {
		priority = idx + 1
	}

	target := 0
	if text := c.formField(c.itemForm, "Target minutes"); text != "" {
		parsed, err := strconv.Atoi(text)
		if err != nil || parsed < 0 {
			c.formMessage.SetText("[red]target minutes must be a whole number")

			return
		}

		target = parsed
	}

	notes := c.formField(c.itemForm, "Notes")

	if c.editingItemID == "" {
		due, err := dates.Parse(c.formField(c.itemForm, "First due (YYYY-MM-DD)"))
		if err != nil {
			c.formMessage.SetText("[red]the first due date must look like 2024-01-31")

			return
		}

		it := db.NewItem(title, tags, setID, due)
		it.Priority = priority
		it.TargetMinutes = target
		it.Notes = notes

		log.Debug().Str("title", title).Msg("adding item")

		c.doc.Items = append(c.doc.Items, it)
		c.persist()
		c.refresh()
		c.closeForm()

		return
	}

	id := c.editingItemID

	c.apply(func(doc db.Document) db.Document {
		return sched.UpdateItem(doc, id, sched.ItemPatch{
			Title:         &title,
			Tags:          &tags,
			IntervalSetID: &setID,
			Priority:      &priority,
			TargetMinutes: &target,
			Notes:         &notes,
		})
	})
	c.closeForm()
}

func (c *Controller) switchToSetForm(setID string) {
	c.formReturnPage = c.currentPage
	c.editingSetID = setID

	title := "New Interval Set"
	set := db.IntervalSet{}

	if setID != "" {
		title = "Edit Interval Set"
		set = c.doc.SetByID(setID)
	}

	c.setFormMessage.SetText("[yellow]" + title + "[white]   <esc> cancels")
	c.buildSetForm(set)
	c.setForm.SetFocus(0)

	c.currentPage = pageSetForm
	c.pages.SwitchToPage(pageSetForm)
	c.app.SetInputCapture(c.handleFormKeys)
}

func (c *Controller) buildSetForm(set db.IntervalSet) {
	c.setForm.Clear(true)

	c.setForm.
		AddInputField("Name", set.Name, titleMax, nil, nil).
		AddInputField("Days", joinDaysLabel(set.Days), titleMax, nil, nil).
		AddCheckbox("Default", set.IsDefault, nil)

	c.setForm.AddButton("Save", c.saveSetForm)
	c.setForm.AddButton("Cancel", c.closeForm)
}

func (c *Controller) saveSetForm() {
	name := c.formField(c.setForm, "Name")
	if name == "" {
		c.setFormMessage.SetText("[red]a name is required")

		return
	}

	days, err := db.ParseIntervals(c.formField(c.setForm, "Days"))
	if err != nil {
		c.setFormMessage.SetText("[red]" + err.Error())

		return
	}

	check, _ := c.setForm.GetFormItemByLabel("Default").(*tview.Checkbox)
	makeDefault := check != nil && check.IsChecked()

	id := c.editingSetID

	if id == "" {
		set := db.NewIntervalSet(name, days)
		id = set.ID
		c.doc.IntervalSets = append(c.doc.IntervalSets, set)
	} else {
		sets := make([]db.IntervalSet, len(c.doc.IntervalSets))
		copy(sets, c.doc.IntervalSets)

		for i := range sets {
			if sets[i].ID == id {
				sets[i].Name = name
				sets[i].Days = days
			}
		}

		c.doc.IntervalSets = sets
	}

	if makeDefault {
		c.doc = db.SetDefaultSet(c.doc, id)
	}

	c.persist()
	c.refresh()
	c.closeForm()
}

func (c *Controller) switchToMoveForm() {
	c.formReturnPage = c.currentPage

	it, ok := c.doc.FindItem(c.selectedItemID)
	if !ok {
		return
	}

	id := it.ID

	c.moveForm.Clear(true)
	c.moveForm.AddInputField("Move to (YYYY-MM-DD)", string(it.NextDue), 12, nil, nil)

	c.moveForm.AddButton("Save", func() {
		due, err := dates.Parse(c.formField(c.moveForm, "Move to (YYYY-MM-DD)"))
		if err != nil {
			log.Warn().Err(err).Msg("rejecting move to malformed date")

			return
		}

		c.apply(func(doc db.Document) db.Document {
			return sched.MoveDueDate(doc, id, due)
		})
		c.closeForm()
	})
	c.moveForm.AddButton("Cancel", c.closeForm)

	c.moveForm.SetFocus(0)

	c.currentPage = pageMoveForm
	c.pages.SwitchToPage(pageMoveForm)
	c.app.SetInputCapture(c.handleFormKeys)
}
