package controller

import "github.com/gdamore/tcell/v2"

// Rune shortcuts mapped into the tcell.Key space so every binding can live in
// one map keyed by tcell.Key.
const (
	Key1 tcell.Key = iota + 49 // '1'
	Key2
	Key3
	Key4
	Key5
)

const (
	KeyShiftD tcell.Key = iota + 68 // 'D'
	KeyShiftE
	KeyShiftF
	KeyShiftG
	KeyShiftH
	KeyShiftI
	KeyShiftJ
	KeyShiftK
	KeyShiftL
	KeyShiftM
	KeyShiftN
	KeyShiftO
	KeyShiftP
	KeyShiftQ
	KeyShiftR
)

const (
	KeyA tcell.Key = iota + 97 // 'a'
	KeyB
	KeyC
	KeyD
	KeyE
	KeyF
	KeyG
	KeyH
	KeyI
	KeyJ
	KeyK
	KeyL
	KeyM
	KeyN
	KeyO
	KeyP
	KeyQ
	KeyR
	KeyS
	KeyT
	KeyU
	KeyV
	KeyW
	KeyX
)

// AsKey converts rune events to their key equivalent so they can be looked up
// alongside the real tcell keys.
func AsKey(evt *tcell.EventKey) tcell.Key {
	if evt.Key() != tcell.KeyRune {
		return evt.Key()
	}

	return tcell.Key(evt.Rune())
}
