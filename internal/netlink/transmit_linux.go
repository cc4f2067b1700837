//go:build linux

package netlink

import (
	"fmt"
	"net"
	"net/netip"

	"github.com/google/gopacket"
	"github.com/google/gopacket/layers"
	"github.com/mdlayher/ethernet"
	"github.com/mdlayher/packet"
)

// ipv4DefaultTTL is the TTL recommended by RFC 1700 for locally-originated
// packets.
const ipv4DefaultTTL = 64

// rawL2 sends hand-crafted Ethernet+[802.1Q...]+IPv4+UDP frames out a raw
// AF_PACKET socket, the way the teacher's conn_linux.go builds its unicast
// path.
type rawL2 struct {
	conn  net.PacketConn
	iface *net.Interface
}

func openL2(ifaceName string) (l2Sender, error) {
	iface, err := net.InterfaceByName(ifaceName)
	if err != nil {
		return nil, fmt.Errorf("looking up interface %q: %w", ifaceName, err)
	}

	conn, err := packet.Listen(iface, packet.Raw, int(ethernet.EtherTypeIPv4), nil)
	if err != nil {
		return nil, fmt.Errorf("opening raw socket on %q: %w", ifaceName, err)
	}

	return &rawL2{conn: conn, iface: iface}, nil
}

func (r *rawL2) SendUnicast(
	data []byte,
	dstMAC net.HardwareAddr,
	srcIP netip.Addr,
	srcPort uint16,
	dstIP netip.Addr,
	dstPort uint16,
	qtags []QTag,
) error {
	frame, err := buildFrame(data, r.iface.HardwareAddr, dstMAC, srcIP, srcPort, dstIP, dstPort, qtags)
	if err != nil {
		return err
	}

	_, err = r.conn.WriteTo(frame, &packet.Addr{HardwareAddr: dstMAC})

	return err
}

func (r *rawL2) Close() error {
	return r.conn.Close()
}

// buildFrame serializes an Ethernet frame, optionally carrying a stack of
// 802.1Q tags, encapsulating an IPv4/UDP datagram whose payload is data.
func buildFrame(
	data []byte,
	srcMAC, dstMAC net.HardwareAddr,
	srcIP netip.Addr,
	srcPort uint16,
	dstIP netip.Addr,
	dstPort uint16,
	qtags []QTag,
) ([]byte, error) {
	udpLayer := &layers.UDP{
		SrcPort: layers.UDPPort(srcPort),
		DstPort: layers.UDPPort(dstPort),
	}

	ipLayer := &layers.IPv4{
		Version:  4,
		Flags:    layers.IPv4DontFragment,
		TTL:      ipv4DefaultTTL,
		Protocol: layers.IPProtocolUDP,
		SrcIP:    net.IP(srcIP.AsSlice()),
		DstIP:    net.IP(dstIP.AsSlice()),
	}

	if err := udpLayer.SetNetworkLayerForChecksum(ipLayer); err != nil {
		return nil, fmt.Errorf("setting network layer for checksum: %w", err)
	}

	serializable := []gopacket.SerializableLayer{}

	ethType := layers.EthernetTypeIPv4
	if len(qtags) > 0 {
		ethType = layers.EthernetTypeDot1Q
	}

	eth := &layers.Ethernet{
		SrcMAC:       srcMAC,
		DstMAC:       dstMAC,
		EthernetType: ethType,
	}
	serializable = append(serializable, eth)

	for i, tag := range qtags {
		dot1q := &layers.Dot1Q{
			Priority:       tag.PCP,
			DropEligible:   tag.DEI,
			VLANIdentifier: tag.VID,
			Type:           layers.EthernetTypeIPv4,
		}

		if i < len(qtags)-1 {
			dot1q.Type = layers.EthernetTypeDot1Q
		}

		serializable = append(serializable, dot1q)
	}

	serializable = append(serializable, ipLayer, udpLayer, gopacket.Payload(data))

	buf := gopacket.NewSerializeBuffer()
	opts := gopacket.SerializeOptions{FixLengths: true, ComputeChecksums: true}
	if err := gopacket.SerializeLayers(buf, opts, serializable...); err != nil {
		return nil, fmt.Errorf("serializing frame: %w", err)
	}

	return buf.Bytes(), nil
}
