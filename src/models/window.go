package models

import "time"

type WindowMode int

const (
	// WindowFullHistory means no bar is stored yet.
	WindowFullHistory WindowMode = iota
	// WindowRange means bars in [From, To) are missing.
	WindowRange
	// WindowCurrent means the symbol is already up to date.
	WindowCurrent
)

func (m WindowMode) String() string {
	switch m {
	case WindowFullHistory:
		return "full_history"
	case WindowRange:
		return "range"
	case WindowCurrent:
		return "current"
	default:
		return "unknown"
	}
}

// MWindow is the update window of one symbol. From is zero in full history
// mode.
type MWindow struct {
	Mode WindowMode `json:"mode"`
	From time.Time  `json:"from"`

	// To is the exclusive request bound: the day after LastSession at the
	// boundary hour. It is always set.
	To time.Time `json:"to"`

	// LastSession is the previous complete business day, the last date a
	// run may store.
	LastSession time.Time `json:"last_session"`
}
