package controller

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/gdamore/tcell/v2"
	"github.com/matt-steen/review-tracker/pkg/config"
	"github.com/matt-steen/review-tracker/pkg/dates"
	"github.com/matt-steen/review-tracker/pkg/db"
	"github.com/matt-steen/review-tracker/pkg/sched"
	"github.com/rivo/tview"
	"github.com/rs/zerolog/log"
)

const descTitleRatio = 2

// Page names.
const (
	pageToday    = "today"
	pageAll      = "all"
	pageSets     = "sets"
	pageCalendar = "calendar"
	pageTimer    = "timer"
	pageItemForm = "itemForm"
	pageSetForm  = "setForm"
	pageMoveForm = "moveForm"
)

// Controller mediates between the document and the view: it holds the current
// document, applies scheduler operations to it, and persists the replacement
// after every mutation.
type Controller struct {
	ctx   context.Context
	store *db.Store
	cfg   config.Config
	doc   db.Document

	app   *tview.Application
	pages *tview.Pages

	listEvents  map[tcell.Key]KeyEvent
	setsEvents  map[tcell.Key]KeyEvent
	calEvents   map[tcell.Key]KeyEvent
	timerEvents map[tcell.Key]KeyEvent

	todayContent *itemContent
	allContent   *itemContent
	calContent   *itemContent

	todayTable     *tview.Table
	allTable       *tview.Table
	setsTable      *tview.Table
	calTable       *tview.Table
	completedView  *tview.TextView
	calDayView     *tview.TextView
	calOverdueView *tview.TextView
	timerView      *tview.TextView
	timerTaskView  *tview.TextView
	headerTables   map[string]*tview.Table
	itemForm       *tview.Form
	setForm        *tview.Form
	moveForm       *tview.Form
	formMessage    *tview.TextView
	setFormMessage *tview.TextView

	currentPage    string
	formReturnPage string
	calDate        dates.Date
	editingItemID  string
	editingSetID   string
	selectedItemID string
	selectedSetRow int

	timer *timer
}

// KeyEvent defines an event associated with a keypress.
type KeyEvent struct {
	Description string
	Action      func(*tcell.EventKey) *tcell.EventKey
}

// NewController loads the document and prepares the app.
func NewController(ctx context.Context, store *db.Store, cfg config.Config) (*Controller, error) {
	doc, err := store.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("error loading document: %w", err)
	}

	c := Controller{
		ctx:          ctx,
		store:        store,
		cfg:          cfg,
		doc:          doc,
		app:          tview.NewApplication(),
		pages:        tview.NewPages(),
		headerTables: map[string]*tview.Table{},
		calDate:      dates.Today(),
		timer:        newTimer(cfg.Timer),
	}

	c.initEvents()

	return &c, nil
}

// Go builds the pages and runs the app until the user exits.
func (c *Controller) Go() {
	c.pages.AddPage(pageToday, c.getTodayGrid(), true, true)
	c.pages.AddPage(pageAll, c.getAllGrid(), true, false)
	c.pages.AddPage(pageSets, c.getSetsGrid(), true, false)
	c.pages.AddPage(pageCalendar, c.getCalendarGrid(), true, false)
	c.pages.AddPage(pageTimer, c.getTimerGrid(), true, false)
	c.pages.AddPage(pageItemForm, c.getItemFormGrid(), true, false)
	c.pages.AddPage(pageSetForm, c.getSetFormGrid(), true, false)
	c.pages.AddPage(pageMoveForm, c.getMoveFormGrid(), true, false)

	c.refresh()
	c.showPage(pageToday)

	go c.runTicker()

	if err := c.app.SetRoot(c.pages, true).SetFocus(c.pages).Run(); err != nil {
		panic(err)
	}
}

// persist saves the current document. Mutations already happened in memory;
// a failed save is logged and the app keeps running on the in-memory state.
func (c *Controller) persist() {
	if err := c.store.Save(c.ctx, c.doc); err != nil {
		log.Error().Err(err).Msg("error saving document")
	}
}

// apply runs a scheduler operation against the current document, persists the
// replacement, and redraws.
func (c *Controller) apply(op func(db.Document) db.Document) {
	c.doc = op(c.doc)
	c.persist()
	c.refresh()
}

func (c *Controller) refresh() {
	today := dates.Today()

	c.todayContent.update(c.doc, sched.TodosForDate(c.doc, today), today)
	c.allContent.update(c.doc, sched.TodosForDate(c.doc, sched.NeverDue), today)
	c.refreshCompletedView(today)
	c.refreshSetsTable()
	c.refreshCalendar()
	c.refreshTimerViews()
}

func (c *Controller) refreshCompletedView(today dates.Date) {
	done := sched.CompletedOnDate(c.doc, today)

	text := fmt.Sprintf("[yellow]completed today (%d)[white]\n", len(done))
	for _, it := range done {
		text += fmt.Sprintf("  %s\n", it.Title)
	}

	c.completedView.SetText(text)
}

func (c *Controller) refreshSetsTable() {
	c.setsTable.Clear()

	for col, name := range []string{"name", "days", "default", "created"} {
		c.setsTable.SetCell(0, col,
			tview.NewTableCell(name).SetExpansion(1).SetTextColor(tcell.ColorYellow).SetSelectable(false))
	}

	for row, set := range c.doc.IntervalSets {
		days := "none"
		if len(set.Days) > 0 {
			days = joinDaysLabel(set.Days)
		}

		isDefault := ""
		if set.IsDefault {
			isDefault = "✓"
		}

		c.setsTable.SetCell(row+1, 0, tview.NewTableCell(set.Name).SetExpansion(1).SetReference(set.ID))
		c.setsTable.SetCell(row+1, 1, tview.NewTableCell(days).SetExpansion(1))
		c.setsTable.SetCell(row+1, 2, tview.NewTableCell(isDefault).SetExpansion(1))
		c.setsTable.SetCell(row+1, 3, tview.NewTableCell(string(set.CreatedAt)).SetExpansion(1))
	}
}

func (c *Controller) showPage(name string) {
	c.currentPage = name

	c.app.SetInputCapture(c.handleKeys)
	c.pages.SwitchToPage(name)
	c.syncSelection()
}

// syncSelection re-derives the selected item from the visible table so that
// actions always target what the user sees.
func (c *Controller) syncSelection() {
	switch c.currentPage {
	case pageToday:
		row, _ := c.todayTable.GetSelection()
		c.selectedItemID = c.todayContent.idForRow(row)
	case pageAll:
		row, _ := c.allTable.GetSelection()
		c.selectedItemID = c.allContent.idForRow(row)
	case pageSets:
		row, _ := c.setsTable.GetSelection()
		c.selectedSetRow = row
	case pageCalendar:
		row, _ := c.calTable.GetSelection()
		c.selectedItemID = c.calContent.idForRow(row)
	}
}

func (c *Controller) selectedSetID() string {
	if idx := c.selectedSetRow - 1; idx >= 0 && idx < len(c.doc.IntervalSets) {
		return c.doc.IntervalSets[idx].ID
	}

	return ""
}

func (c *Controller) handleKeys(evt *tcell.EventKey) *tcell.EventKey {
	key := AsKey(evt)

	var events map[tcell.Key]KeyEvent

	switch c.currentPage {
	case pageSets:
		events = c.setsEvents
	case pageCalendar:
		events = c.calEvents
	case pageTimer:
		events = c.timerEvents
	default:
		events = c.listEvents
	}

	if k, ok := events[key]; ok {
		return k.Action(evt)
	}

	return evt
}

// handleFormKeys only intercepts escape so typing in fields works normally.
func (c *Controller) handleFormKeys(evt *tcell.EventKey) *tcell.EventKey {
	if evt.Key() == tcell.KeyEscape {
		c.closeForm()

		return nil
	}

	return evt
}

func (c *Controller) closeForm() {
	back := c.formReturnPage
	if back == "" {
		back = pageToday
	}

	c.showPage(back)
}

func (c *Controller) getTodayGrid() *tview.Grid {
	header := c.getListHeader(pageToday, "today")
	c.todayContent = &itemContent{}
	c.todayTable = c.getItemTable(c.todayContent)

	c.completedView = tview.NewTextView().SetDynamicColors(true)
	c.completedView.SetScrollable(false)

	grid := tview.NewGrid().SetBorders(true).SetRows(0, 0, 6)

	grid.AddItem(header, 0, 0, 1, 1, 0, 0, false)
	grid.AddItem(c.todayTable, 1, 0, 1, 1, 0, 0, true)
	grid.AddItem(c.completedView, 2, 0, 1, 1, 0, 0, false)

	return grid
}

func (c *Controller) getAllGrid() *tview.Grid {
	header := c.getListHeader(pageAll, "all items")
	c.allContent = &itemContent{}
	c.allTable = c.getItemTable(c.allContent)

	grid := tview.NewGrid().SetBorders(true)

	grid.AddItem(header, 0, 0, 1, 1, 0, 0, false)
	grid.AddItem(c.allTable, 1, 0, 1, 1, 0, 0, true)

	return grid
}

func (c *Controller) getSetsGrid() *tview.Grid {
	header := c.getHeader(pageSets, "interval sets", c.setsEvents)

	c.setsTable = tview.NewTable().SetBorders(false)
	c.setsTable.SetSelectable(true, false)
	c.setsTable.Select(1, 0).SetFixed(1, 0)
	c.setsTable.SetSelectionChangedFunc(func(row, col int) {
		c.selectedSetRow = row
	})

	grid := tview.NewGrid().SetBorders(true)

	grid.AddItem(header, 0, 0, 1, 1, 0, 0, false)
	grid.AddItem(c.setsTable, 1, 0, 1, 1, 0, 0, true)

	return grid
}

func (c *Controller) getListHeader(page, title string) *tview.Table {
	return c.getHeader(page, title, c.listEvents)
}

// getHeader returns the shortcut header shown above each page.
func (c *Controller) getHeader(page, title string, events map[tcell.Key]KeyEvent) *tview.Table {
	table := tview.NewTable().SetBorders(false).SetSelectable(false, false)

	table.SetCell(0, 0, tview.NewTableCell(fmt.Sprintf("[yellow]%s", title)))

	row := 1
	col := 0

	for _, key := range eventOrder(events) {
		text := fmt.Sprintf("[orange]<%s>[white] %s", keyLabel(key), events[key].Description)
		table.SetCell(row, col, tview.NewTableCell(text).SetExpansion(1))

		col++
		if col == 3 {
			col = 0
			row++
		}
	}

	c.headerTables[page] = table

	return table
}

func (c *Controller) getItemTable(content *itemContent) *tview.Table {
	table := tview.NewTable().SetBorders(false)

	table.SetContent(content)
	table.SetSelectable(true, false)
	table.Select(1, 0).SetFixed(1, 0)

	table.SetSelectionChangedFunc(func(row, col int) {
		c.selectedItemID = content.idForRow(row)
	})

	return table
}

// runTicker drives the timer once per second. All state changes run on the UI
// goroutine via QueueUpdateDraw.
func (c *Controller) runTicker() {
	ticker := time.NewTicker(time.Second)
	defer ticker.Stop()

	for range ticker.C {
		c.app.QueueUpdateDraw(func() {
			c.tickTimer()
		})
	}
}

func keyLabel(key tcell.Key) string {
	if name, ok := tcell.KeyNames[key]; ok {
		return name
	}

	return string(rune(key))
}

func eventOrder(events map[tcell.Key]KeyEvent) []tcell.Key {
	keys := make([]tcell.Key, 0, len(events))
	for key := range events {
		keys = append(keys, key)
	}

	sort.Slice(keys, func(i, j int) bool { return keys[i] < keys[j] })

	return keys
}

func joinDaysLabel(days []int) string {
	label := ""
	for _, d := range days {
		if label != "" {
			label += ", "
		}

		label += fmt.Sprint(d)
	}

	return label
}
