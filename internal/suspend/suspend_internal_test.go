package suspend

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestSuspender_tickDecaysAndPrunes(t *testing.T) {
	t.Parallel()

	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	cur := base

	s := New(Config{Enabled: true, SuspendThreshold: 0})
	s.now = func() time.Time { return cur }

	src := Source{MAC: "aa:bb"}
	s.RecordRequest(src)
	s.RecordRequest(src)

	assert.Equal(t, Throttled, s.Check(src))

	s.Tick()
	assert.Equal(t, Throttled, s.Check(src), "score decayed from 2 to 1, still above threshold 0")

	s.Tick()
	assert.Equal(t, Allowed, s.Check(src), "score decayed to 0, entry pruned")

	_, tracked := s.sources[src]
	assert.False(t, tracked)
}

func TestSuspender_blockedUntilExpiry(t *testing.T) {
	t.Parallel()

	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	cur := base

	s := New(Config{Enabled: true, MisbehavingTimeout: 10 * time.Second})
	s.now = func() time.Time { return cur }

	src := Source{MAC: "aa:bb"}
	s.Block(src)
	assert.Equal(t, Blocked, s.Check(src))

	cur = base.Add(11 * time.Second)
	assert.Equal(t, Allowed, s.Check(src))
}
