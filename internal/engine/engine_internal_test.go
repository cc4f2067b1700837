package engine

import (
	"net/netip"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/flan/staticdhcpd/internal/dhcpmsg"
)

func TestClassifyRequest_selecting(t *testing.T) {
	t.Parallel()

	req := dhcpmsg.NewPacket()
	req.SetIPv4(dhcpmsg.OptServerIdentifier, netip.MustParseAddr("192.0.2.1"))
	req.SetIPv4(dhcpmsg.OptRequestedIPAddress, netip.MustParseAddr("192.0.2.50"))

	state, reqIP, ok := classifyRequest(req, netip.MustParseAddr("192.0.2.1"))
	assert.True(t, ok)
	assert.Equal(t, reqStateSelecting, state)
	assert.Equal(t, netip.MustParseAddr("192.0.2.50"), reqIP)
}

func TestClassifyRequest_selectingAddressedToOtherServer(t *testing.T) {
	t.Parallel()

	req := dhcpmsg.NewPacket()
	req.SetIPv4(dhcpmsg.OptServerIdentifier, netip.MustParseAddr("192.0.2.2"))
	req.SetIPv4(dhcpmsg.OptRequestedIPAddress, netip.MustParseAddr("192.0.2.50"))

	_, _, ok := classifyRequest(req, netip.MustParseAddr("192.0.2.1"))
	assert.False(t, ok)
}

func TestClassifyRequest_initReboot(t *testing.T) {
	t.Parallel()

	req := dhcpmsg.NewPacket()
	req.SetIPv4(dhcpmsg.OptRequestedIPAddress, netip.MustParseAddr("192.0.2.50"))

	state, reqIP, ok := classifyRequest(req, netip.Addr{})
	assert.True(t, ok)
	assert.Equal(t, reqStateInitReboot, state)
	assert.Equal(t, netip.MustParseAddr("192.0.2.50"), reqIP)
}

func TestClassifyRequest_renewingVsRebinding(t *testing.T) {
	t.Parallel()

	renewing := dhcpmsg.NewPacket()
	renewing.CIAddr = netip.MustParseAddr("192.0.2.50")

	state, reqIP, ok := classifyRequest(renewing, netip.Addr{})
	assert.True(t, ok)
	assert.Equal(t, reqStateRenewing, state)
	assert.Equal(t, netip.MustParseAddr("192.0.2.50"), reqIP)

	rebinding := dhcpmsg.NewPacket()
	rebinding.CIAddr = netip.MustParseAddr("192.0.2.50")
	rebinding.Flags = dhcpmsg.BroadcastFlag

	state, _, ok = classifyRequest(rebinding, netip.Addr{})
	assert.True(t, ok)
	assert.Equal(t, reqStateRebinding, state)
}

func TestClassifyRequest_malformed(t *testing.T) {
	t.Parallel()

	_, _, ok := classifyRequest(dhcpmsg.NewPacket(), netip.Addr{})
	assert.False(t, ok)
}

func TestMessageTypeName(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "discover", messageTypeName(dhcpmsg.MessageTypeDiscover))
	assert.Equal(t, "nak", messageTypeName(dhcpmsg.MessageTypeNAK))
	assert.Equal(t, "unknown", messageTypeName(0))
}
