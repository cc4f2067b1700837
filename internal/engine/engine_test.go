package engine_test

import (
	"context"
	"net/netip"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/flan/staticdhcpd/internal/backend"
	"github.com/flan/staticdhcpd/internal/dhcpmsg"
	"github.com/flan/staticdhcpd/internal/engine"
	"github.com/flan/staticdhcpd/internal/hooks"
	"github.com/flan/staticdhcpd/internal/memstore"
	"github.com/flan/staticdhcpd/internal/resolver"
	"github.com/flan/staticdhcpd/internal/suspend"
)

// synthesizingHooks answers an unknown MAC with a fixed Definition, letting
// tests confirm that a message type actually calls HandleUnknownMAC instead
// of only ever seeing what the Backend already has on file.
type synthesizingHooks struct {
	hooks.None
	def *backend.Definition
}

func (h *synthesizingHooks) HandleUnknownMAC(
	context.Context,
	*dhcpmsg.Packet,
	dhcpmsg.MAC,
	backend.Meta,
) *backend.Definition {
	return h.def
}

var (
	knownMAC   = dhcpmsg.MAC{0x1, 0x2, 0x3, 0x4, 0x5, 0x6}
	unknownMAC = dhcpmsg.MAC{0xa, 0xb, 0xc, 0xd, 0xe, 0xf}
)

func newTestEngine(t *testing.T, conf engine.Config) *engine.Engine {
	t.Helper()

	store, err := memstore.Open(filepath.Join(t.TempDir(), "store.json"), nil)
	require.NoError(t, err)

	require.NoError(t, store.Put(knownMAC, []*backend.Definition{{
		IP:        netip.MustParseAddr("192.0.2.50"),
		LeaseTime: time.Hour,
		Hostname:  "known-client",
	}}))

	res := resolver.New(store, hooks.None{})
	susp := suspend.New(suspend.Config{Enabled: false})

	return engine.New(conf, res, susp, hooks.None{}, nil, nil)
}

func discoverFrom(mac dhcpmsg.MAC) *dhcpmsg.Packet {
	req := dhcpmsg.NewPacket()
	req.Op = dhcpmsg.OpRequest
	req.CHAddr = mac
	req.SetByte(dhcpmsg.OptDHCPMessageType, dhcpmsg.MessageTypeDiscover)

	return req
}

func TestEngine_DiscoverKnownMAC(t *testing.T) {
	t.Parallel()

	e := newTestEngine(t, engine.Config{ServerID: netip.MustParseAddr("192.0.2.1")})

	resp := e.Handle(context.Background(), discoverFrom(knownMAC), backend.Meta{})
	require.NotNil(t, resp)
	assert.Equal(t, dhcpmsg.MessageTypeOffer, resp.MessageType())
	assert.Equal(t, netip.MustParseAddr("192.0.2.50"), resp.YIAddr)
}

func TestEngine_DiscoverUnknownMACDropped(t *testing.T) {
	t.Parallel()

	e := newTestEngine(t, engine.Config{ServerID: netip.MustParseAddr("192.0.2.1")})

	resp := e.Handle(context.Background(), discoverFrom(unknownMAC), backend.Meta{})
	assert.Nil(t, resp)
}

func selectingRequestFrom(mac dhcpmsg.MAC, serverID, reqIP netip.Addr) *dhcpmsg.Packet {
	req := dhcpmsg.NewPacket()
	req.Op = dhcpmsg.OpRequest
	req.CHAddr = mac
	req.SetByte(dhcpmsg.OptDHCPMessageType, dhcpmsg.MessageTypeRequest)
	req.SetIPv4(dhcpmsg.OptServerIdentifier, serverID)
	req.SetIPv4(dhcpmsg.OptRequestedIPAddress, reqIP)

	return req
}

func TestEngine_SelectingKnownMACMatchingIP(t *testing.T) {
	t.Parallel()

	serverID := netip.MustParseAddr("192.0.2.1")
	e := newTestEngine(t, engine.Config{ServerID: serverID})

	req := selectingRequestFrom(knownMAC, serverID, netip.MustParseAddr("192.0.2.50"))
	resp := e.Handle(context.Background(), req, backend.Meta{})

	require.NotNil(t, resp)
	assert.Equal(t, dhcpmsg.MessageTypeACK, resp.MessageType())
}

func TestEngine_SelectingMismatchedIPIsNAKed(t *testing.T) {
	t.Parallel()

	serverID := netip.MustParseAddr("192.0.2.1")
	e := newTestEngine(t, engine.Config{ServerID: serverID})

	req := selectingRequestFrom(knownMAC, serverID, netip.MustParseAddr("192.0.2.99"))
	resp := e.Handle(context.Background(), req, backend.Meta{})

	require.NotNil(t, resp)
	assert.Equal(t, dhcpmsg.MessageTypeNAK, resp.MessageType())
	assert.False(t, resp.YIAddr.IsValid())
}

func TestEngine_SelectingUnknownMACSilentWhenNotAuthoritative(t *testing.T) {
	t.Parallel()

	serverID := netip.MustParseAddr("192.0.2.1")
	e := newTestEngine(t, engine.Config{ServerID: serverID, Authoritative: false})

	req := selectingRequestFrom(unknownMAC, serverID, netip.MustParseAddr("192.0.2.77"))
	resp := e.Handle(context.Background(), req, backend.Meta{})
	assert.Nil(t, resp)
}

func TestEngine_SelectingUnknownMACNAKedWhenAuthoritative(t *testing.T) {
	t.Parallel()

	serverID := netip.MustParseAddr("192.0.2.1")
	e := newTestEngine(t, engine.Config{ServerID: serverID, Authoritative: true})

	req := selectingRequestFrom(unknownMAC, serverID, netip.MustParseAddr("192.0.2.77"))
	resp := e.Handle(context.Background(), req, backend.Meta{})
	require.NotNil(t, resp)
	assert.Equal(t, dhcpmsg.MessageTypeNAK, resp.MessageType())
}

func TestEngine_InitRebootUnknownMACSilentWhenNotAuthoritative(t *testing.T) {
	t.Parallel()

	e := newTestEngine(t, engine.Config{Authoritative: false})

	req := dhcpmsg.NewPacket()
	req.Op = dhcpmsg.OpRequest
	req.CHAddr = unknownMAC
	req.SetByte(dhcpmsg.OptDHCPMessageType, dhcpmsg.MessageTypeRequest)
	req.SetIPv4(dhcpmsg.OptRequestedIPAddress, netip.MustParseAddr("192.0.2.77"))

	resp := e.Handle(context.Background(), req, backend.Meta{})
	assert.Nil(t, resp)
}

func TestEngine_InitRebootUnknownMACNAKedWhenAuthoritative(t *testing.T) {
	t.Parallel()

	e := newTestEngine(t, engine.Config{Authoritative: true})

	req := dhcpmsg.NewPacket()
	req.Op = dhcpmsg.OpRequest
	req.CHAddr = unknownMAC
	req.SetByte(dhcpmsg.OptDHCPMessageType, dhcpmsg.MessageTypeRequest)
	req.SetIPv4(dhcpmsg.OptRequestedIPAddress, netip.MustParseAddr("192.0.2.77"))

	resp := e.Handle(context.Background(), req, backend.Meta{})
	require.NotNil(t, resp)
	assert.Equal(t, dhcpmsg.MessageTypeNAK, resp.MessageType())
}

func TestEngine_InformOmitsYIAddrAndLeaseTimers(t *testing.T) {
	t.Parallel()

	e := newTestEngine(t, engine.Config{})

	req := dhcpmsg.NewPacket()
	req.Op = dhcpmsg.OpRequest
	req.CHAddr = knownMAC
	req.SetByte(dhcpmsg.OptDHCPMessageType, dhcpmsg.MessageTypeInform)

	resp := e.Handle(context.Background(), req, backend.Meta{})
	require.NotNil(t, resp)
	assert.Equal(t, dhcpmsg.MessageTypeACK, resp.MessageType())
	assert.False(t, resp.YIAddr.IsValid())
	assert.False(t, resp.IsOption(dhcpmsg.OptIPAddressLeaseTime))
	assert.False(t, resp.IsOption(dhcpmsg.OptRenewalTimeT1))
	assert.False(t, resp.IsOption(dhcpmsg.OptRebindingTimeT2))
}

func TestEngine_InformUnknownMACRoutesThroughHandleUnknownMAC(t *testing.T) {
	t.Parallel()

	synth := &backend.Definition{IP: netip.MustParseAddr("192.0.2.200"), LeaseTime: time.Hour}

	store, err := memstore.Open(filepath.Join(t.TempDir(), "store.json"), nil)
	require.NoError(t, err)

	res := resolver.New(store, &synthesizingHooks{def: synth})
	susp := suspend.New(suspend.Config{Enabled: false})
	e := engine.New(engine.Config{}, res, susp, &synthesizingHooks{def: synth}, nil, nil)

	req := dhcpmsg.NewPacket()
	req.Op = dhcpmsg.OpRequest
	req.CHAddr = unknownMAC
	req.SetByte(dhcpmsg.OptDHCPMessageType, dhcpmsg.MessageTypeInform)

	resp := e.Handle(context.Background(), req, backend.Meta{})
	require.NotNil(t, resp, "an unknown MAC INFORM must be resolved via Hooks.HandleUnknownMAC, not just the raw Backend")
	assert.Equal(t, dhcpmsg.MessageTypeACK, resp.MessageType())
}

func TestEngine_ReleaseAndDeclineProduceNoResponse(t *testing.T) {
	t.Parallel()

	e := newTestEngine(t, engine.Config{})

	release := dhcpmsg.NewPacket()
	release.Op = dhcpmsg.OpRequest
	release.CHAddr = knownMAC
	release.SetByte(dhcpmsg.OptDHCPMessageType, dhcpmsg.MessageTypeRelease)
	assert.Nil(t, e.Handle(context.Background(), release, backend.Meta{}))

	decline := dhcpmsg.NewPacket()
	decline.Op = dhcpmsg.OpRequest
	decline.CHAddr = knownMAC
	decline.SetByte(dhcpmsg.OptDHCPMessageType, dhcpmsg.MessageTypeDecline)
	assert.Nil(t, e.Handle(context.Background(), decline, backend.Meta{}))
}
