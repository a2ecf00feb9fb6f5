package clock

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestUptime_StartsNearZeroAndAdvances(t *testing.T) {
	u := NewUptime()
	first := u.Millis()
	assert.Less(t, first, uint32(1000))

	time.Sleep(20 * time.Millisecond)
	assert.GreaterOrEqual(t, u.Millis()-first, uint32(20))
}

func TestManual_SetAndAdvance(t *testing.T) {
	m := NewManual(0)
	assert.Equal(t, uint32(0), m.Millis())

	m.Advance(1500 * time.Millisecond)
	assert.Equal(t, uint32(1500), m.Millis())

	m.Set(42)
	assert.Equal(t, uint32(42), m.Millis())
}

func TestManual_AdvanceWraps(t *testing.T) {
	m := NewManual(math.MaxUint32 - 9)
	m.Advance(20 * time.Millisecond)

	assert.Equal(t, uint32(10), m.Millis())
}
