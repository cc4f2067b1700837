package netlink

import (
	"context"
	"fmt"
	"net"
	"net/netip"

	"github.com/AdguardTeam/golibs/errors"
)

// Conn is the set of sockets one engine instance reads from and writes
// through: the server port, the client port (destination-only, used for
// ciaddr unicast and broadcast sends), and an optional proxy port. The L2
// raw socket, when configured, is opened by the platform-specific
// transmitter in transmit_linux.go.
type Conn struct {
	conf Config

	server *net.UDPConn
	client *net.UDPConn
	proxy  *net.UDPConn

	l2 l2Sender
}

// Bind opens the UDP sockets named in conf. The server and proxy sockets are
// bound to the wildcard address, not conf.ServerIP: a DISCOVER from a client
// still in INIT state is sent from 0.0.0.0 to the 255.255.255.255 broadcast
// address, and a socket bound to a specific unicast address never receives
// datagrams addressed to the broadcast address on Linux. conf.ServerIP is
// used only to identify the server in outgoing option 54 and as the source
// address for L2-unicast sends; the client socket is not used — replies to
// ciaddr/broadcast are sent from the server socket, the client socket exists
// only as a documented placeholder for embedders who need to observe the
// client-port number, matching the "binds three UDP endpoints" framing of
// spec.md §4.2 without requiring a second listener nobody reads from.
func Bind(conf Config) (*Conn, error) {
	if conf.ServerPort == 0 {
		conf.ServerPort = DefaultServerPort
	}

	if conf.ClientPort == 0 {
		conf.ClientPort = DefaultClientPort
	}

	lc := net.ListenConfig{Control: broadcastCtrl}

	pconn, err := lc.ListenPacket(context.Background(), "udp4", fmt.Sprintf(":%d", conf.ServerPort))
	if err != nil {
		return nil, errors.Annotate(err, "binding server port: %w")
	}

	server := pconn.(*net.UDPConn)

	c := &Conn{conf: conf, server: server}

	if conf.ProxyPort != 0 {
		c.proxy, err = net.ListenUDP("udp4", &net.UDPAddr{Port: int(conf.ProxyPort)})
		if err != nil {
			_ = server.Close()

			return nil, errors.Annotate(err, "binding proxy port: %w")
		}
	}

	if conf.ResponseInterface != "" {
		c.l2, err = openL2(conf.ResponseInterface)
		if err != nil {
			_ = c.Close()

			return nil, errors.Annotate(err, "opening response interface: %w")
		}
	}

	return c, nil
}

// HaveL2 reports whether a raw L2 socket is open, i.e. whether
// [ModeL2Unicast] is actually reachable.
func (c *Conn) HaveL2() bool {
	return c.l2 != nil
}

// Receive reads one datagram from the server port. It filters out sources
// whose address could never be a legitimate DHCP client or relay (a
// multicast source address); 0.0.0.0 is explicitly admitted, since a client
// in the INIT state legitimately sends from it.
func (c *Conn) Receive(buf []byte) (Request, error) {
	return receiveFrom(c.server, c.conf.ServerPort, buf)
}

// ReceiveProxy reads one datagram from the proxy/PXE port. It returns
// [errNoProxyPort] if none was configured.
func (c *Conn) ReceiveProxy(buf []byte) (Request, error) {
	if c.proxy == nil {
		return Request{}, errNoProxyPort
	}

	return receiveFrom(c.proxy, c.conf.ProxyPort, buf)
}

const errNoProxyPort errors.Error = "netlink: no proxy port configured"

func receiveFrom(conn *net.UDPConn, onPort uint16, buf []byte) (Request, error) {
	for {
		n, addr, err := conn.ReadFromUDP(buf)
		if err != nil {
			return Request{}, err
		}

		ip, ok := netip.AddrFromSlice(addr.IP.To4())
		if !ok {
			continue
		}

		if ip.IsMulticast() {
			continue
		}

		return Request{
			Data:           append([]byte(nil), buf[:n]...),
			SourceIP:       ip,
			SourcePort:     uint16(addr.Port),
			ReceivedOnPort: onPort,
		}, nil
	}
}

// Close closes every socket the Conn holds.
func (c *Conn) Close() error {
	var err error
	if c.server != nil {
		err = errors.WithDeferred(err, c.server.Close())
	}

	if c.client != nil {
		err = errors.WithDeferred(err, c.client.Close())
	}

	if c.proxy != nil {
		err = errors.WithDeferred(err, c.proxy.Close())
	}

	if c.l2 != nil {
		err = errors.WithDeferred(err, c.l2.Close())
	}

	return err
}

// SendUnicastRelay sends data by L3 unicast to giaddr:ServerPort.
func (c *Conn) SendUnicastRelay(data []byte, giaddr netip.Addr) error {
	return c.sendUDP(data, giaddr, c.conf.ServerPort)
}

// SendUnicastClient sends data by L3 unicast to ciaddr:ClientPort.
func (c *Conn) SendUnicastClient(data []byte, ciaddr netip.Addr) error {
	return c.sendUDP(data, ciaddr, c.conf.ClientPort)
}

// SendBroadcast sends data by L3 broadcast to 255.255.255.255:ClientPort.
func (c *Conn) SendBroadcast(data []byte) error {
	return c.sendUDP(data, netip.IPv4Unspecified().WithZone(""), c.conf.ClientPort)
}

func (c *Conn) sendUDP(data []byte, ip netip.Addr, port uint16) error {
	dst := &net.UDPAddr{IP: net.IPv4bcast, Port: int(port)}
	if ip.IsValid() && !ip.IsUnspecified() {
		dst.IP = net.IP(ip.AsSlice())
	}

	_, err := c.server.WriteToUDP(data, dst)

	return err
}

// SendL2Unicast crafts and writes an Ethernet+IPv4+UDP+DHCP frame to dstMAC,
// carrying data as the UDP payload from ServerIP:ServerPort to
// yiaddr:ClientPort. It returns an error if no L2 socket was opened.
func (c *Conn) SendL2Unicast(data []byte, dstMAC net.HardwareAddr, yiaddr netip.Addr) error {
	if c.l2 == nil {
		return fmt.Errorf("netlink: L2 unicast requested but no response interface configured")
	}

	return c.l2.SendUnicast(data, dstMAC, c.conf.ServerIP, c.conf.ServerPort, yiaddr, c.conf.ClientPort, c.conf.ResponseQTags)
}

// l2Sender is implemented per-platform (see transmit_linux.go and
// transmit_other.go) since raw AF_PACKET access is platform-specific.
type l2Sender interface {
	SendUnicast(
		data []byte,
		dstMAC net.HardwareAddr,
		srcIP netip.Addr,
		srcPort uint16,
		dstIP netip.Addr,
		dstPort uint16,
		qtags []QTag,
	) error
	Close() error
}
