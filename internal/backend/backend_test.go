package backend_test

import (
	"net/netip"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/flan/staticdhcpd/internal/backend"
)

func validDefinition() *backend.Definition {
	return &backend.Definition{
		IP:        netip.MustParseAddr("192.0.2.10"),
		LeaseTime: time.Hour,
		Hostname:  "host-a",
		Gateways:  []netip.Addr{netip.MustParseAddr("192.0.2.1")},
	}
}

func TestDefinition_Validate(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name    string
		def     *backend.Definition
		wantErr bool
	}{{
		name:    "valid",
		def:     validDefinition(),
		wantErr: false,
	}, {
		name:    "nil",
		def:     nil,
		wantErr: true,
	}, {
		name: "no_ip",
		def: &backend.Definition{
			LeaseTime: time.Hour,
		},
		wantErr: true,
	}, {
		name: "ipv6",
		def: &backend.Definition{
			IP:        netip.MustParseAddr("2001:db8::1"),
			LeaseTime: time.Hour,
		},
		wantErr: true,
	}, {
		name: "zero_lease",
		def: &backend.Definition{
			IP: netip.MustParseAddr("192.0.2.10"),
		},
		wantErr: true,
	}, {
		name: "too_many_dns",
		def: &backend.Definition{
			IP:        netip.MustParseAddr("192.0.2.10"),
			LeaseTime: time.Hour,
			DomainNameServers: []netip.Addr{
				netip.MustParseAddr("192.0.2.53"),
				netip.MustParseAddr("192.0.2.54"),
				netip.MustParseAddr("192.0.2.55"),
				netip.MustParseAddr("192.0.2.56"),
			},
		},
		wantErr: true,
	}}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			err := tc.def.Validate()
			if tc.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestDefinition_Clone(t *testing.T) {
	t.Parallel()

	orig := validDefinition()
	orig.Extra = map[string]any{"k": "v"}

	clone := orig.Clone()
	require.NotSame(t, orig, clone)
	assert.Equal(t, orig.IP, clone.IP)
	assert.Equal(t, orig.Extra, clone.Extra)

	clone.Gateways[0] = netip.MustParseAddr("192.0.2.2")
	assert.NotEqual(t, orig.Gateways[0], clone.Gateways[0])

	clone.Extra["k"] = "changed"
	assert.Equal(t, "v", orig.Extra["k"], "Extra map itself is cloned, so mutating clone must not affect orig")
}

func TestDefinition_Clone_nil(t *testing.T) {
	t.Parallel()

	var d *backend.Definition
	assert.Nil(t, d.Clone())
}
