package controller

import (
	"github.com/gdamore/tcell/v2"
	"github.com/matt-steen/review-tracker/pkg/dates"
	"github.com/matt-steen/review-tracker/pkg/db"
	"github.com/matt-steen/review-tracker/pkg/sched"
	"github.com/rs/zerolog/log"
)

func (c *Controller) initEvents() {
	c.listEvents = map[tcell.Key]KeyEvent{}
	c.setsEvents = map[tcell.Key]KeyEvent{}
	c.calEvents = map[tcell.Key]KeyEvent{}
	c.timerEvents = map[tcell.Key]KeyEvent{}

	for _, events := range []map[tcell.Key]KeyEvent{c.listEvents, c.setsEvents, c.calEvents, c.timerEvents} {
		c.initShowEvents(events)
		c.initExitEvent(events)
	}

	c.initItemEvents(c.listEvents)
	c.initSetEvents(c.setsEvents)
	c.initCalendarEvents(c.calEvents)
	c.initTimerEvents(c.timerEvents)
}

func (c *Controller) getExitAction() func(key *tcell.EventKey) *tcell.EventKey {
	return func(key *tcell.EventKey) *tcell.EventKey {
		log.Info().Msg("terminating application")

		c.app.Stop()

		return key
	}
}

func (c *Controller) initExitEvent(events map[tcell.Key]KeyEvent) {
	events[KeyQ] = KeyEvent{
		Description: "Exit",
		Action:      c.getExitAction(),
	}
}

func (c *Controller) getShowAction(page string) func(key *tcell.EventKey) *tcell.EventKey {
	return func(key *tcell.EventKey) *tcell.EventKey {
		c.showPage(page)

		return key
	}
}

func (c *Controller) initShowEvents(events map[tcell.Key]KeyEvent) {
	events[Key1] = KeyEvent{
		Description: "Show Today",
		Action:      c.getShowAction(pageToday),
	}

	events[Key2] = KeyEvent{
		Description: "Show All",
		Action:      c.getShowAction(pageAll),
	}

	events[Key3] = KeyEvent{
		Description: "Show Sets",
		Action:      c.getShowAction(pageSets),
	}

	events[Key4] = KeyEvent{
		Description: "Show Calendar",
		Action:      c.getShowAction(pageCalendar),
	}

	events[Key5] = KeyEvent{
		Description: "Show Timer",
		Action:      c.getShowAction(pageTimer),
	}
}

// getItemAction wraps a scheduler operation on the selected item.
func (c *Controller) getItemAction(op func(db.Document, string) db.Document) func(key *tcell.EventKey) *tcell.EventKey {
	return func(key *tcell.EventKey) *tcell.EventKey {
		id := c.selectedItemID
		if id == "" {
			return key
		}

		c.apply(func(doc db.Document) db.Document {
			return op(doc, id)
		})
		c.syncSelection()

		return key
	}
}

func (c *Controller) initItemEvents(events map[tcell.Key]KeyEvent) {
	events[KeyC] = KeyEvent{
		Description: "Complete",
		Action: c.getItemAction(func(doc db.Document, id string) db.Document {
			log.Debug().Str("item", id).Msg("completing item")

			return sched.Complete(doc, id, dates.Today())
		}),
	}

	events[KeyU] = KeyEvent{
		Description: "Undo complete",
		Action: c.getItemAction(func(doc db.Document, id string) db.Document {
			return sched.Undo(doc, id)
		}),
	}

	events[KeyT] = KeyEvent{
		Description: "Push to tomorrow",
		Action: c.getItemAction(func(doc db.Document, id string) db.Document {
			return sched.MoveDueDate(doc, id, dates.Tomorrow())
		}),
	}

	events[KeyShiftR] = KeyEvent{
		Description: "Start over",
		Action: c.getItemAction(func(doc db.Document, id string) db.Document {
			return sched.Reset(doc, id, dates.Today())
		}),
	}

	events[KeyD] = KeyEvent{
		Description: "Delete",
		Action: c.getItemAction(func(doc db.Document, id string) db.Document {
			return removeItem(doc, id)
		}),
	}

	events[KeyM] = KeyEvent{
		Description: "Move to date",
		Action: func(key *tcell.EventKey) *tcell.EventKey {
			if c.selectedItemID == "" {
				return key
			}

			c.switchToMoveForm()

			return key
		},
	}

	events[KeyA] = KeyEvent{
		Description: "Add item",
		Action: func(key *tcell.EventKey) *tcell.EventKey {
			c.switchToItemForm("")

			return key
		},
	}

	events[KeyE] = KeyEvent{
		Description: "Edit item",
		Action: func(key *tcell.EventKey) *tcell.EventKey {
			if c.selectedItemID == "" {
				return key
			}

			c.switchToItemForm(c.selectedItemID)

			return key
		},
	}
}

func (c *Controller) initSetEvents(events map[tcell.Key]KeyEvent) {
	events[KeyA] = KeyEvent{
		Description: "Add set",
		Action: func(key *tcell.EventKey) *tcell.EventKey {
			c.switchToSetForm("")

			return key
		},
	}

	events[KeyE] = KeyEvent{
		Description: "Edit set",
		Action: func(key *tcell.EventKey) *tcell.EventKey {
			if id := c.selectedSetID(); id != "" {
				c.switchToSetForm(id)
			}

			return key
		},
	}

	events[KeyShiftD] = KeyEvent{
		Description: "Make default",
		Action: func(key *tcell.EventKey) *tcell.EventKey {
			if id := c.selectedSetID(); id != "" {
				c.apply(func(doc db.Document) db.Document {
					return db.SetDefaultSet(doc, id)
				})
			}

			return key
		},
	}

	events[KeyX] = KeyEvent{
		Description: "Delete set",
		Action: func(key *tcell.EventKey) *tcell.EventKey {
			id := c.selectedSetID()
			if id == "" {
				return key
			}

			doc, err := db.RemoveIntervalSet(c.doc, id)
			if err != nil {
				log.Warn().Err(err).Str("set", id).Msg("refusing to delete interval set")

				return key
			}

			c.doc = doc
			c.persist()
			c.refresh()

			return key
		},
	}
}

func (c *Controller) initCalendarEvents(events map[tcell.Key]KeyEvent) {
	events[KeyH] = KeyEvent{
		Description: "Previous day",
		Action: func(key *tcell.EventKey) *tcell.EventKey {
			c.shiftCalendar(-1)

			return key
		},
	}

	events[KeyL] = KeyEvent{
		Description: "Next day",
		Action: func(key *tcell.EventKey) *tcell.EventKey {
			c.shiftCalendar(1)

			return key
		},
	}

	events[KeyShiftH] = KeyEvent{
		Description: "Back a week",
		Action: func(key *tcell.EventKey) *tcell.EventKey {
			c.shiftCalendar(-7)

			return key
		},
	}

	events[KeyShiftL] = KeyEvent{
		Description: "Forward a week",
		Action: func(key *tcell.EventKey) *tcell.EventKey {
			c.shiftCalendar(7)

			return key
		},
	}

	events[KeyT] = KeyEvent{
		Description: "Jump to today",
		Action: func(key *tcell.EventKey) *tcell.EventKey {
			c.calendarToToday()

			return key
		},
	}

	events[KeyM] = KeyEvent{
		Description: "Move item here",
		Action: c.getItemAction(func(doc db.Document, id string) db.Document {
			return sched.MoveDueDate(doc, id, c.calDate)
		}),
	}

	events[KeyC] = KeyEvent{
		Description: "Complete on date",
		Action: c.getItemAction(func(doc db.Document, id string) db.Document {
			log.Debug().Str("item", id).Str("date", string(c.calDate)).Msg("completing item on browsed date")

			return sched.Complete(doc, id, c.calDate)
		}),
	}
}

func (c *Controller) initTimerEvents(events map[tcell.Key]KeyEvent) {
	events[KeyS] = KeyEvent{
		Description: "Start/Pause",
		Action: func(key *tcell.EventKey) *tcell.EventKey {
			c.toggleTimer()

			return key
		},
	}

	events[KeyShiftR] = KeyEvent{
		Description: "Reset timer",
		Action: func(key *tcell.EventKey) *tcell.EventKey {
			c.resetTimer()

			return key
		},
	}

	events[KeyP] = KeyEvent{
		Description: "Pomodoro/Countdown",
		Action: func(key *tcell.EventKey) *tcell.EventKey {
			c.toggleTimerMode()

			return key
		},
	}

	events[KeyN] = KeyEvent{
		Description: "Next task",
		Action: func(key *tcell.EventKey) *tcell.EventKey {
			c.cycleTimerTask()

			return key
		},
	}

	events[KeyC] = KeyEvent{
		Description: "Complete task",
		Action: func(key *tcell.EventKey) *tcell.EventKey {
			if id := c.timer.itemID; id != "" {
				c.apply(func(doc db.Document) db.Document {
					return sched.Complete(doc, id, dates.Today())
				})
				c.cycleTimerTask()
			}

			return key
		},
	}

	events[KeyF] = KeyEvent{
		Description: "Focus today",
		Action: func(key *tcell.EventKey) *tcell.EventKey {
			c.focusTimerTaskToday()

			return key
		},
	}
}

// removeItem drops an item from the document; unknown ids fall through.
func removeItem(doc db.Document, id string) db.Document {
	items := make([]db.Item, 0, len(doc.Items))

	for _, it := range doc.Items {
		if it.ID != id {
			items = append(items, it)
		}
	}

	doc.Items = items

	return doc
}
