package netlink_test

import (
	"net/netip"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/flan/staticdhcpd/internal/dhcpmsg"
	"github.com/flan/staticdhcpd/internal/netlink"
)

func TestChooseMode(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name   string
		build  func() *dhcpmsg.Packet
		haveL2 bool
		want   netlink.Mode
	}{{
		name: "relay",
		build: func() *dhcpmsg.Packet {
			p := dhcpmsg.NewPacket()
			p.GIAddr = netip.MustParseAddr("192.0.2.1")

			return p
		},
		want: netlink.ModeUnicastRelay,
	}, {
		name: "ciaddr_ack",
		build: func() *dhcpmsg.Packet {
			p := dhcpmsg.NewPacket()
			p.CIAddr = netip.MustParseAddr("192.0.2.50")
			p.SetByte(dhcpmsg.OptDHCPMessageType, dhcpmsg.MessageTypeACK)

			return p
		},
		want: netlink.ModeUnicastClient,
	}, {
		name: "ciaddr_ack_but_rebinding_broadcasts_instead",
		build: func() *dhcpmsg.Packet {
			p := dhcpmsg.NewPacket()
			p.CIAddr = netip.MustParseAddr("192.0.2.50")
			p.Flags = dhcpmsg.BroadcastFlag
			p.SetByte(dhcpmsg.OptDHCPMessageType, dhcpmsg.MessageTypeACK)

			return p
		},
		want: netlink.ModeBroadcast,
	}, {
		name: "broadcast_flag",
		build: func() *dhcpmsg.Packet {
			p := dhcpmsg.NewPacket()
			p.Flags = dhcpmsg.BroadcastFlag
			p.YIAddr = netip.MustParseAddr("192.0.2.50")

			return p
		},
		want: netlink.ModeBroadcast,
	}, {
		name: "no_yiaddr_falls_back_to_broadcast",
		build: func() *dhcpmsg.Packet {
			return dhcpmsg.NewPacket()
		},
		haveL2: true,
		want:   netlink.ModeBroadcast,
	}, {
		name: "l2_unicast_when_available",
		build: func() *dhcpmsg.Packet {
			p := dhcpmsg.NewPacket()
			p.YIAddr = netip.MustParseAddr("192.0.2.50")

			return p
		},
		haveL2: true,
		want:   netlink.ModeL2Unicast,
	}, {
		name: "no_l2_falls_back_to_broadcast",
		build: func() *dhcpmsg.Packet {
			p := dhcpmsg.NewPacket()
			p.YIAddr = netip.MustParseAddr("192.0.2.50")

			return p
		},
		haveL2: false,
		want:   netlink.ModeBroadcast,
	}}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			got := netlink.ChooseMode(tc.build(), tc.haveL2)
			assert.Equal(t, tc.want, got)
		})
	}
}
