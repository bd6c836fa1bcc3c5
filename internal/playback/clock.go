package playback

import "time"

type Timer interface {
	Stop() bool
}

// Clock schedules the per-item timers of a session.
type Clock interface {
	AfterFunc(d time.Duration, f func()) Timer
}

type SystemClock struct{}

func (SystemClock) AfterFunc(d time.Duration, f func()) Timer {
	return time.AfterFunc(d, f)
}
