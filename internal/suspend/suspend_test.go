package suspend_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/flan/staticdhcpd/internal/suspend"
)

func TestSuspender_disabled(t *testing.T) {
	t.Parallel()

	s := suspend.New(suspend.Config{Enabled: false, SuspendThreshold: 1})
	src := suspend.Source{MAC: "aa:bb", RelayIP: ""}

	for range 100 {
		assert.Equal(t, suspend.Allowed, s.RecordRequest(src))
	}

	assert.Equal(t, suspend.Allowed, s.Check(src))
}

func TestSuspender_throttlesOverThreshold(t *testing.T) {
	t.Parallel()

	s := suspend.New(suspend.Config{Enabled: true, SuspendThreshold: 3})
	src := suspend.Source{MAC: "aa:bb:cc:dd:ee:ff", RelayIP: "192.0.2.1"}

	var last suspend.State
	for range 4 {
		last = s.RecordRequest(src)
	}

	assert.Equal(t, suspend.Throttled, last)
}

func TestSuspender_zeroTimeoutBlockNotBlocked(t *testing.T) {
	t.Parallel()

	s := suspend.New(suspend.Config{
		Enabled:            true,
		SuspendThreshold:   100,
		MisbehavingTimeout: 0,
	})
	src := suspend.Source{MAC: "aa:bb:cc:dd:ee:ff"}

	s.Block(src)
	// MisbehavingTimeout of zero means blockedTil is already in the past,
	// so the source should not read as Blocked.
	assert.Equal(t, suspend.Allowed, s.Check(src))
}

func TestSuspender_distinctSourcesIndependent(t *testing.T) {
	t.Parallel()

	s := suspend.New(suspend.Config{Enabled: true, SuspendThreshold: 1})
	a := suspend.Source{MAC: "aa", RelayIP: "192.0.2.1"}
	b := suspend.Source{MAC: "aa", RelayIP: "192.0.2.2"}

	s.RecordRequest(a)
	s.RecordRequest(a)

	assert.Equal(t, suspend.Allowed, s.Check(b))
}
