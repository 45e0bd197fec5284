package core_test

import (
	"bytes"
	"errors"
	"testing"
	"time"

	"github.com/spaghettifunk/offaxis/engine/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClock(t *testing.T) {
	now := time.Unix(100, 0)
	c := core.NewClockWithSource(func() time.Time { return now })

	c.Update()
	assert.Zero(t, c.Elapsed())

	c.Start()
	now = now.Add(1500 * time.Millisecond)
	c.Update()
	assert.InDelta(t, 1.5, c.Elapsed(), 1e-9)

	c.Stop()
	now = now.Add(time.Second)
	c.Update()
	assert.InDelta(t, 1.5, c.Elapsed(), 1e-9)
}

func TestIdentifier(t *testing.T) {
	owner := "portal_cam"
	a := core.IdentifierAquireNewID(owner)
	b := core.IdentifierAquireNewID(owner)
	assert.NotEqual(t, a, b)

	got, ok := core.IdentifierOwner(a)
	require.True(t, ok)
	assert.Equal(t, owner, got)

	require.NoError(t, core.IdentifierReleaseID(a))
	assert.Error(t, core.IdentifierReleaseID(a))
	_, ok = core.IdentifierOwner(a)
	assert.False(t, ok)
	require.NoError(t, core.IdentifierReleaseID(b))
}

func TestMetrics(t *testing.T) {
	m := core.NewMetrics()
	for i := 0; i < 40; i++ {
		m.TickUpdate(0.05)
	}
	m.RecordProjection(2*time.Millisecond, nil)
	m.RecordProjection(4*time.Millisecond, nil)
	failure := errors.New("eye behind projection plane")
	m.RecordProjection(time.Millisecond, failure)

	s := m.Snapshot()
	assert.InDelta(t, 50, s.TickMS, 1e-9)
	assert.InDelta(t, 3, s.SolveMS, 1e-9)
	assert.Equal(t, float64(20), s.TPS)
	assert.Equal(t, uint64(2), s.Projections)
	assert.Equal(t, uint64(1), s.Failures)
	assert.Equal(t, failure, s.LastFailure)
}

func TestEventSystem(t *testing.T) {
	es := core.NewEventSystem()
	var seen []string

	first := func(code core.SystemEventCode, sender, listener interface{}, data core.EventContext) bool {
		seen = append(seen, "first:"+data.Name)
		return false
	}
	second := func(code core.SystemEventCode, sender, listener interface{}, data core.EventContext) bool {
		seen = append(seen, "second:"+data.Name)
		return true
	}

	a, b := new(int), new(int)
	require.True(t, es.Register(core.EVENT_CODE_CAMERA_FAILED, a, first))
	require.True(t, es.Register(core.EVENT_CODE_CAMERA_FAILED, b, second))
	assert.False(t, es.Register(core.EVENT_CODE_CAMERA_FAILED, a, second))

	assert.True(t, es.Fire(core.EVENT_CODE_CAMERA_FAILED, nil, core.EventContext{Name: "mirror"}))
	assert.Equal(t, []string{"first:mirror", "second:mirror"}, seen)

	assert.False(t, es.Fire(core.EVENT_CODE_RIG_RELOADED, nil, core.EventContext{}))

	require.True(t, es.Unregister(core.EVENT_CODE_CAMERA_FAILED, b))
	assert.False(t, es.Unregister(core.EVENT_CODE_CAMERA_FAILED, b))
	assert.False(t, es.Fire(core.EVENT_CODE_CAMERA_FAILED, nil, core.EventContext{Name: "wall"}))
	assert.Equal(t, "first:wall", seen[len(seen)-1])

	require.NoError(t, es.Shutdown())
	assert.False(t, es.Fire(core.EVENT_CODE_CAMERA_FAILED, nil, core.EventContext{}))
}

func TestLogLevel(t *testing.T) {
	var buf bytes.Buffer
	core.SetLogOutput(&buf)
	require.NoError(t, core.SetLogLevel("warn"))

	core.LogInfo("hidden %d", 1)
	assert.Empty(t, buf.String())
	core.LogWarn("shown %d", 2)
	assert.Contains(t, buf.String(), "shown 2")

	assert.Error(t, core.SetLogLevel("loud"))
	require.NoError(t, core.SetLogLevel("info"))
}
