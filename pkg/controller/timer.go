package controller

import (
	"fmt"
	"time"

	"github.com/matt-steen/review-tracker/pkg/config"
	"github.com/matt-steen/review-tracker/pkg/dates"
	"github.com/matt-steen/review-tracker/pkg/db"
	"github.com/matt-steen/review-tracker/pkg/sched"
	"github.com/rivo/tview"
	"github.com/rs/zerolog/log"
)

// Pomodoro phases.
const (
	phaseWork      = "work"
	phaseBreak     = "break"
	phaseLongBreak = "long break"
)

// timer is the study timer's runtime state. It only ever changes on the UI
// goroutine; the ticker hands control over via QueueUpdateDraw.
type timer struct {
	cfg       config.Timer
	mode      string
	phase     string
	running   bool
	remaining int
	doneWork  int
	startedAt time.Time
	itemID    string
}

func newTimer(cfg config.Timer) *timer {
	return &timer{
		cfg:       cfg,
		mode:      db.ModePomodoro,
		phase:     phaseWork,
		remaining: cfg.WorkMinutes * 60,
	}
}

// phaseMinutes returns the configured length of the current phase.
func (t *timer) phaseMinutes() int {
	if t.mode == db.ModeCountdown {
		return t.cfg.CountdownMinutes
	}

	switch t.phase {
	case phaseBreak:
		return t.cfg.BreakMinutes
	case phaseLongBreak:
		return t.cfg.LongBreakMinutes
	default:
		return t.cfg.WorkMinutes
	}
}

func (c *Controller) getTimerGrid() *tview.Grid {
	header := c.getHeader(pageTimer, "timer", c.timerEvents)

	c.timerView = tview.NewTextView().SetDynamicColors(true)
	c.timerTaskView = tview.NewTextView().SetDynamicColors(true)

	grid := tview.NewGrid().SetBorders(true).SetRows(0, 8)

	grid.AddItem(header, 0, 0, 1, 2, 0, 0, false)
	grid.AddItem(c.timerView, 1, 0, 1, 1, 0, 0, true)
	grid.AddItem(c.timerTaskView, 1, 1, 1, 1, 0, 0, false)

	return grid
}

func (c *Controller) refreshTimerViews() {
	t := c.timer

	state := "paused"
	if t.running {
		state = "running"
	}

	text := fmt.Sprintf("[yellow]%s[white] (%s)\n\n", t.mode, state)
	text += fmt.Sprintf("[::b]%s[-:-:-]\n\n", fmtSeconds(t.remaining))

	if t.mode == db.ModePomodoro {
		text += fmt.Sprintf("phase: %s\n", t.phase)
		text += fmt.Sprintf("work phases done: %d\n", t.doneWork)
		text += fmt.Sprintf("until long break: %d\n", t.cfg.Cycles-(t.doneWork%t.cfg.Cycles))
	}

	c.timerView.SetText(text)
	c.refreshTimerTaskView()
}

func (c *Controller) refreshTimerTaskView() {
	it, ok := c.doc.FindItem(c.timer.itemID)
	if !ok {
		c.timerTaskView.SetText("[yellow]task[white]\n\nnone selected; <n> picks from today's todos")

		return
	}

	today := dates.Today()

	dueColor := "white"
	if dates.Compare(it.NextDue, today) < 0 {
		dueColor = "red"
	}

	text := fmt.Sprintf("[yellow]task[white]\n\n%s\n", it.Title)
	text += fmt.Sprintf("due: [%s]%s[white]\n", dueColor, it.NextDue)
	text += fmt.Sprintf("priority: %s\n", priorityLabels[it.Priority])

	if it.TargetMinutes > 0 {
		text += fmt.Sprintf("target: %dm\n", it.TargetMinutes)
	}

	if it.Notes != "" {
		text += fmt.Sprintf("\n%s\n", it.Notes)
	}

	c.timerTaskView.SetText(text)
}

// tickTimer advances the countdown by one second and handles phase ends.
func (c *Controller) tickTimer() {
	t := c.timer
	if !t.running {
		return
	}

	t.remaining--
	if t.remaining > 0 {
		c.refreshTimerViews()

		return
	}

	c.logSession()

	if t.mode == db.ModeCountdown {
		t.running = false
		t.remaining = t.phaseMinutes() * 60
		c.refreshTimerViews()

		return
	}

	if t.phase == phaseWork {
		t.doneWork++

		if t.doneWork%t.cfg.Cycles == 0 {
			t.phase = phaseLongBreak
		} else {
			t.phase = phaseBreak
		}
	} else {
		t.phase = phaseWork
	}

	t.remaining = t.phaseMinutes() * 60
	t.startedAt = time.Now()
	c.refreshTimerViews()
}

// logSession appends a session record for the phase that just finished. Break
// phases aren't study time and aren't logged.
func (c *Controller) logSession() {
	t := c.timer

	if t.mode == db.ModePomodoro && t.phase != phaseWork {
		return
	}

	planned := t.phaseMinutes()
	sess := db.NewSession(t.itemID, t.mode, planned, planned*60, t.startedAt, time.Now())

	log.Info().Str("item", t.itemID).Str("mode", t.mode).Int("minutes", planned).Msg("logging study session")

	c.doc.Sessions = append(c.doc.Sessions, sess)
	c.persist()
}

func (c *Controller) toggleTimer() {
	t := c.timer

	t.running = !t.running
	if t.running && t.remaining == t.phaseMinutes()*60 {
		t.startedAt = time.Now()
	}

	c.refreshTimerViews()
}

func (c *Controller) resetTimer() {
	t := c.timer

	t.running = false
	t.phase = phaseWork
	t.doneWork = 0
	t.remaining = t.phaseMinutes() * 60

	c.refreshTimerViews()
}

func (c *Controller) toggleTimerMode() {
	t := c.timer

	if t.mode == db.ModePomodoro {
		t.mode = db.ModeCountdown
	} else {
		t.mode = db.ModePomodoro
	}

	t.running = false
	t.phase = phaseWork
	t.remaining = t.phaseMinutes() * 60

	c.refreshTimerViews()
}

// cycleTimerTask moves the timer's task through today's todos in order.
func (c *Controller) cycleTimerTask() {
	todos := sched.TodayTodos(c.doc)
	if len(todos) == 0 {
		c.timer.itemID = ""
		c.refreshTimerViews()

		return
	}

	next := 0

	for i, it := range todos {
		if it.ID == c.timer.itemID {
			next = (i + 1) % len(todos)

			break
		}
	}

	c.timer.itemID = todos[next].ID
	c.refreshTimerViews()
}

// focusTimerTaskToday pulls a later-due task into today's list so it can be
// worked on now. Tasks already due stay as they are.
func (c *Controller) focusTimerTaskToday() {
	it, ok := c.doc.FindItem(c.timer.itemID)
	if !ok {
		return
	}

	today := dates.Today()
	if dates.Compare(it.NextDue, today) <= 0 {
		return
	}

	c.apply(func(doc db.Document) db.Document {
		return sched.MoveDueDate(doc, it.ID, today)
	})
}

func fmtSeconds(sec int) string {
	if sec < 0 {
		sec = 0
	}

	return fmt.Sprintf("%02d:%02d", sec/60, sec%60)
}
