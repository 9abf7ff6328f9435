package fm

import "errors"

var errNotInited = errors.New("EventDelay.Delay called before InitAudio")

// An EventDelay holds commands until a given number of samples have passed.
// Events are kept in time order, each storing its distance from the one
// before it.
type EventDelay struct {
	Params Params
	events []delayEvent
}

type delayEvent struct {
	n   int
	cmd Command
}

// Delay schedules cmd t seconds after the current position.
func (d *EventDelay) Delay(t float64, cmd Command) error {
	if d.Params.SampleRate == 0 {
		return errNotInited
	}
	n := int(t * d.Params.SampleRate)
	i := 0
	for ; i < len(d.events); i++ {
		e := &d.events[i]
		if n < e.n {
			e.n -= n
			break
		}
		n -= e.n
	}
	d.events = append(d.events, delayEvent{})
	copy(d.events[i+1:], d.events[i:])
	d.events[i] = delayEvent{n, cmd}
	return nil
}

// Step advances one sample and delivers whatever became due.
func (d *EventDelay) Step(f func(Command)) {
	if len(d.events) > 0 {
		d.events[0].n--
	}
	d.Fire(f)
}

// Advance is n calls to Step.
func (d *EventDelay) Advance(n int, f func(Command)) {
	for ; n > 0 && len(d.events) > 0; n-- {
		d.Step(f)
	}
}

// Fire delivers the events that are due now without advancing time.
func (d *EventDelay) Fire(f func(Command)) {
	for len(d.events) > 0 && d.events[0].n <= 0 {
		f(d.events[0].cmd)
		d.events = d.events[1:]
	}
}

func (d *EventDelay) Pending() int { return len(d.events) }
