package fm

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestControlRamp(t *testing.T) {
	c, err := NewControl(ControlPoint{0, 0}, ControlPoint{1, 10})
	require.NoError(t, err)
	require.NoError(t, Init(c, Params{SampleRate: 10}))

	for i := 1; i <= 10; i++ {
		assert.InDelta(t, float64(i), c.Sing(), 1e-12, "sample %d", i)
	}
	assert.False(t, c.Done())
	assert.Equal(t, 10.0, c.Sing())
	assert.True(t, c.Done())
	assert.Equal(t, 10.0, c.Sing())
}

func TestControlSetTime(t *testing.T) {
	c, err := NewControl(ControlPoint{0, 60}, ControlPoint{1, 70}, ControlPoint{1, 50}, ControlPoint{2, 50})
	require.NoError(t, err)
	require.NoError(t, Init(c, Params{SampleRate: 10}))

	c.SetTime(0.5)
	assert.InDelta(t, 66, c.Sing(), 1e-12)

	buf := c.Fill(make([]float64, 5))
	assert.InDelta(t, 70, buf[3], 1e-12)
	assert.Equal(t, 50.0, buf[4], "zero-length periods jump")

	c.SetTime(5)
	assert.Equal(t, 50.0, c.Sing())
	assert.True(t, c.Done())
}

func TestControlOrder(t *testing.T) {
	_, err := NewControl(ControlPoint{1, 0}, ControlPoint{0, 1})
	assert.ErrorIs(t, err, ErrControlOrder)
}
