package dhcpmsg_test

import (
	"net/netip"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/flan/staticdhcpd/internal/dhcpmsg"
)

func TestPacket_RoundTrip(t *testing.T) {
	t.Parallel()

	p := dhcpmsg.NewPacket()
	p.Op = dhcpmsg.OpRequest
	p.Xid = 0xdeadbeef
	p.Flags = dhcpmsg.BroadcastFlag
	p.CHAddr = dhcpmsg.MAC{0x0, 0x1, 0x2, 0x3, 0x4, 0x5}
	p.CIAddr = netip.MustParseAddr("192.0.2.5")
	p.SetByte(dhcpmsg.OptDHCPMessageType, dhcpmsg.MessageTypeDiscover)
	p.SetIPv4(dhcpmsg.OptServerIdentifier, netip.MustParseAddr("192.0.2.1"))
	p.SetIPv4List(dhcpmsg.OptRouter, []netip.Addr{
		netip.MustParseAddr("192.0.2.1"),
		netip.MustParseAddr("192.0.2.2"),
	})
	p.SetString(dhcpmsg.OptHostName, "client-a")
	p.SetU32(dhcpmsg.OptIPAddressLeaseTime, 3600)

	data, dropped, err := dhcpmsg.Encode(p, dhcpmsg.DefaultMaxPayload)
	require.NoError(t, err)
	assert.Empty(t, dropped)
	assert.GreaterOrEqual(t, len(data), dhcpmsg.MinEncodedLen)

	got, err := dhcpmsg.Decode(data)
	require.NoError(t, err)

	assert.Equal(t, p.Op, got.Op)
	assert.Equal(t, p.Xid, got.Xid)
	assert.Equal(t, p.Flags, got.Flags)
	assert.True(t, got.IsBroadcast())
	assert.Equal(t, p.CHAddr[:6], got.CHAddr[:6])
	assert.Equal(t, p.CIAddr, got.CIAddr)
	assert.Equal(t, dhcpmsg.MessageTypeDiscover, got.MessageType())

	srvID, err := got.GetIPv4(dhcpmsg.OptServerIdentifier)
	require.NoError(t, err)
	assert.Equal(t, netip.MustParseAddr("192.0.2.1"), srvID)

	routers, err := got.GetIPv4List(dhcpmsg.OptRouter)
	require.NoError(t, err)
	assert.Len(t, routers, 2)

	hostname, err := got.GetString(dhcpmsg.OptHostName)
	require.NoError(t, err)
	assert.Equal(t, "client-a", hostname)

	lease, err := got.GetU32(dhcpmsg.OptIPAddressLeaseTime)
	require.NoError(t, err)
	assert.Equal(t, uint32(3600), lease)
}

func TestDecode_truncated(t *testing.T) {
	t.Parallel()

	_, err := dhcpmsg.Decode(make([]byte, 10))
	assert.ErrorIs(t, err, dhcpmsg.ErrTruncated)
}

func TestDecode_badMagic(t *testing.T) {
	t.Parallel()

	buf := make([]byte, dhcpmsg.FixedHeaderLen)
	_, err := dhcpmsg.Decode(buf)
	assert.ErrorIs(t, err, dhcpmsg.ErrBadMagic)
}

func TestPacket_IsRequestedOption(t *testing.T) {
	t.Parallel()

	p := dhcpmsg.NewPacket()
	p.Options[dhcpmsg.OptParameterRequest] = []byte{
		dhcpmsg.OptSubnetMask,
		dhcpmsg.OptRouter,
	}

	assert.True(t, p.IsRequestedOption(dhcpmsg.OptSubnetMask))
	assert.False(t, p.IsRequestedOption(dhcpmsg.OptDomainName))
}

func TestEncode_dropsUnderMTUPressure(t *testing.T) {
	t.Parallel()

	p := dhcpmsg.NewPacket()
	p.SetByte(dhcpmsg.OptDHCPMessageType, dhcpmsg.MessageTypeOffer)
	p.SetIPv4(dhcpmsg.OptServerIdentifier, netip.MustParseAddr("192.0.2.1"))
	p.SetU32(dhcpmsg.OptIPAddressLeaseTime, 3600)
	p.SetU32(dhcpmsg.OptRenewalTimeT1, 1800)
	p.SetU32(dhcpmsg.OptRebindingTimeT2, 3150)
	p.SetString(dhcpmsg.OptDomainName, string(make([]byte, 64)))

	_, dropped, err := dhcpmsg.Encode(p, 40)
	require.NoError(t, err)
	assert.Contains(t, dropped, dhcpmsg.OptDomainName)
}
