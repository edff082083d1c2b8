package clock

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

var epoch = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

func TestFakeFiresInDeadlineOrder(t *testing.T) {
	f := NewFake(epoch)
	var got []string
	var at []time.Duration
	record := func(name string) func() {
		return func() {
			got = append(got, name)
			at = append(at, f.Now().Sub(epoch))
		}
	}
	f.AfterFunc(30*time.Millisecond, record("c"))
	f.AfterFunc(10*time.Millisecond, record("a"))
	f.AfterFunc(10*time.Millisecond, record("b"))
	f.AfterFunc(time.Second, record("late"))

	f.Advance(50 * time.Millisecond)
	assert.Equal(t, []string{"a", "b", "c"}, got)
	assert.Equal(t, []time.Duration{10 * time.Millisecond, 10 * time.Millisecond, 30 * time.Millisecond}, at)
	assert.Equal(t, 50*time.Millisecond, f.Now().Sub(epoch))
	assert.Equal(t, 1, f.Pending())
}

func TestFakeRunsTimersArmedByCallbacks(t *testing.T) {
	f := NewFake(epoch)
	fired := 0
	f.AfterFunc(10*time.Millisecond, func() {
		f.AfterFunc(5*time.Millisecond, func() { fired++ })
	})
	f.Advance(20 * time.Millisecond)
	assert.Equal(t, 1, fired)
	assert.Zero(t, f.Pending())
}

func TestFakeZeroDelayFiresOnNextAdvance(t *testing.T) {
	f := NewFake(epoch)
	fired := false
	f.AfterFunc(0, func() { fired = true })
	assert.False(t, fired)
	f.Advance(0)
	assert.True(t, fired)
}

func TestStopIsIdempotent(t *testing.T) {
	f := NewFake(epoch)
	fired := false
	tm := f.AfterFunc(time.Millisecond, func() { fired = true })
	assert.True(t, tm.Stop())
	assert.False(t, tm.Stop())
	f.Advance(time.Second)
	assert.False(t, fired)

	fired2 := f.AfterFunc(time.Millisecond, func() {})
	f.Advance(time.Millisecond)
	assert.False(t, fired2.Stop())
}

func TestGroupStopAll(t *testing.T) {
	f := NewFake(epoch)
	var g Group
	count := 0
	for i := 1; i <= 3; i++ {
		g.Add(f.AfterFunc(time.Duration(i)*10*time.Millisecond, func() { count++ }))
	}
	f.Advance(15 * time.Millisecond)
	assert.Equal(t, 1, count)
	assert.Equal(t, 3, g.Len())
	assert.Equal(t, 2, g.StopAll())
	assert.Zero(t, g.Len())
	assert.Zero(t, g.StopAll())
	f.Advance(time.Second)
	assert.Equal(t, 1, count)
	assert.Zero(t, f.Pending())
}
