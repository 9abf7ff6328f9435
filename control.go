package fm

import (
	"errors"
	"sort"
)

var ErrControlOrder = errors.New("control points out of order")

// A Control ramps linearly from point to point, one value per sample.  It is
// used to drive the key parameter (glides) when rendering offline.
type Control struct {
	params  Params
	points  []ControlPoint
	periods []controlPeriod
	x       float64
}

// A ControlPoint is a target Value reached at Time seconds.  A point at time
// zero sets the starting value.
type ControlPoint struct {
	Time, Value float64
}

func NewControl(points ...ControlPoint) (*Control, error) {
	if !sort.SliceIsSorted(points, func(i, j int) bool { return points[i].Time < points[j].Time }) {
		return nil, ErrControlOrder
	}
	return &Control{points: points}, nil
}

func (c *Control) InitAudio(params Params) {
	c.params = params
	c.SetTime(0)
}

// SetTime rewinds or fast-forwards the control to t seconds.
func (c *Control) SetTime(t float64) {
	c.periods = c.periods[:0]
	prev := ControlPoint{}
	for _, p := range c.points {
		dn := (p.Time - prev.Time) * c.params.SampleRate
		dx := 0.0
		if int(dn) > 0 {
			dx = (p.Value - prev.Value) / float64(int(dn))
		}
		c.periods = append(c.periods, controlPeriod{int(dn), dx, p.Value})
		prev = p
	}

	c.x = 0
	n := int(t * c.params.SampleRate)
	for len(c.periods) > 0 {
		p := &c.periods[0]
		if p.n > n {
			p.n -= n
			c.x += float64(n) * p.dx
			break
		}
		n -= p.n
		c.x = p.value
		c.periods = c.periods[1:]
	}
}

func (c *Control) Sing() float64 {
	for len(c.periods) > 0 {
		p := &c.periods[0]
		if p.n > 0 {
			p.n--
			c.x += p.dx
			break
		}
		c.x = p.value // zero-length periods mark discontinuities
		c.periods = c.periods[1:]
	}
	return c.x
}

// Fill writes the next len(buf) values into buf.
func (c *Control) Fill(buf []float64) []float64 {
	for i := range buf {
		buf[i] = c.Sing()
	}
	return buf
}

func (c *Control) Done() bool {
	return len(c.periods) == 0
}

type controlPeriod struct {
	n     int
	dx    float64
	value float64
}
