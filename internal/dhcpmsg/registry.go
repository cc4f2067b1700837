package dhcpmsg

// PayloadType identifies how a given option code's byte payload should be
// interpreted by the typed accessors.
type PayloadType byte

const (
	// TypeIPv4 is exactly one 4-byte IPv4 address.
	TypeIPv4 PayloadType = iota
	// TypeIPv4Plus is one or more 4-byte IPv4 addresses.
	TypeIPv4Plus
	// TypeIPv4Star is zero or more 4-byte IPv4 addresses.
	TypeIPv4Star
	// TypeByte is a single octet.
	TypeByte
	// TypeBytePlus is one or more octets.
	TypeBytePlus
	// TypeString is an opaque (not NUL-terminated) text string.
	TypeString
	// TypeBool is one octet, 0 or 1.
	TypeBool
	// TypeU16 is a two-byte network-byte-order unsigned integer.
	TypeU16
	// TypeU16Plus is one or more two-byte network-byte-order integers.
	TypeU16Plus
	// TypeU32 is a four-byte network-byte-order unsigned integer.
	TypeU32
	// TypeU32Plus is one or more four-byte network-byte-order integers.
	TypeU32Plus
	// TypeIdentifier is an opaque byte string with no further structure
	// (client-identifier, vendor-class-identifier, and similar).
	TypeIdentifier
	// TypeNone is a zero-length option (pad/end aside, used by flags like
	// rapid-commit).
	TypeNone
)

// OptionInfo is a single entry of the static option registry: for every
// numbered option, its canonical name, its payload type, and whether it is
// handled by one of the RFC-specific sub-codecs rather than by the generic
// typed accessors.
type OptionInfo struct {
	Name     string
	Type     PayloadType
	SubCodec bool
}

// Option codes referenced by name elsewhere in the engine and codec.  Not
// exhaustive of the registry; only the ones the core logic must name
// directly.
const (
	OptSubnetMask          byte = 1
	OptTimeOffset          byte = 2
	OptRouter              byte = 3
	OptTimeServer          byte = 4
	OptNameServer          byte = 5
	OptDomainNameServer    byte = 6
	OptHostName            byte = 12
	OptDomainName          byte = 15
	OptBroadcastAddress    byte = 28
	OptNTPServers          byte = 42
	OptRequestedIPAddress  byte = 50
	OptIPAddressLeaseTime  byte = 51
	OptOptionOverload      byte = 52
	OptDHCPMessageType     byte = 53
	OptServerIdentifier    byte = 54
	OptParameterRequest    byte = 55
	OptMessage             byte = 56
	OptMaxMessageSize      byte = 57
	OptRenewalTimeT1       byte = 58
	OptRebindingTimeT2     byte = 59
	OptVendorClassID       byte = 60
	OptClientIdentifier    byte = 61
	OptTFTPServerName      byte = 66
	OptBootfileName        byte = 67
	OptDomainSearch        byte = 119
	OptSIPServers          byte = 120
	OptClasslessStaticRoute byte = 121
	OptRelayAgentInfo      byte = 82
	OptISNS                byte = 83
	OptBCMCSDomainNames    byte = 88
	OptBCMCSAddresses      byte = 89
	OptVIVendorClass       byte = 124
	OptVIVendorSpecific    byte = 125
	OptLoSTServer          byte = 137
	OptMoSIPv4Addresses    byte = 139
	OptMoSFQDNs            byte = 140
	OptEnd                 byte = 255
	OptPad                 byte = 0
)

// MessageType values of option 53.
const (
	MessageTypeDiscover byte = 1
	MessageTypeOffer    byte = 2
	MessageTypeRequest  byte = 3
	MessageTypeDecline  byte = 4
	MessageTypeACK      byte = 5
	MessageTypeNAK      byte = 6
	MessageTypeRelease  byte = 7
	MessageTypeInform   byte = 8
)

// Registry is the static, immutable-after-init option table.  It is built
// once at package init and never mutated afterwards, so every goroutine
// shares the same read-only map without synchronization — mirroring the
// teacher's treatment of its option-code comparator tables as
// compile-time-fixed data (see dhcpsvc/options4.go).
var Registry = map[byte]OptionInfo{
	1:   {"subnet-mask", TypeIPv4, false},
	2:   {"time-offset", TypeU32, false},
	3:   {"router", TypeIPv4Plus, false},
	4:   {"time-server", TypeIPv4Plus, false},
	5:   {"name-server", TypeIPv4Plus, false},
	6:   {"domain-name-server", TypeIPv4Plus, false},
	7:   {"log-server", TypeIPv4Plus, false},
	8:   {"quotes-server", TypeIPv4Plus, false},
	9:   {"lpr-server", TypeIPv4Plus, false},
	10:  {"impress-server", TypeIPv4Plus, false},
	11:  {"resource-location-server", TypeIPv4Plus, false},
	12:  {"host-name", TypeString, false},
	13:  {"boot-file-size", TypeU16, false},
	14:  {"merit-dump-file", TypeString, false},
	15:  {"domain-name", TypeString, false},
	16:  {"swap-server", TypeIPv4, false},
	17:  {"root-path", TypeString, false},
	18:  {"extensions-path", TypeString, false},
	19:  {"ip-forwarding", TypeBool, false},
	20:  {"non-local-source-routing", TypeBool, false},
	21:  {"policy-filter", TypeIPv4Plus, false},
	22:  {"max-datagram-reassembly-size", TypeU16, false},
	23:  {"default-ip-ttl", TypeByte, false},
	24:  {"path-mtu-aging-timeout", TypeU32, false},
	25:  {"path-mtu-plateau-table", TypeU16Plus, false},
	26:  {"interface-mtu", TypeU16, false},
	27:  {"all-subnets-are-local", TypeBool, false},
	28:  {"broadcast-address", TypeIPv4, false},
	29:  {"perform-mask-discovery", TypeBool, false},
	30:  {"mask-supplier", TypeBool, false},
	31:  {"perform-router-discovery", TypeBool, false},
	32:  {"router-solicitation-address", TypeIPv4, false},
	33:  {"static-route", TypeIPv4Plus, false},
	34:  {"trailer-encapsulation", TypeBool, false},
	35:  {"arp-cache-timeout", TypeU32, false},
	36:  {"ethernet-encapsulation", TypeBool, false},
	37:  {"tcp-default-ttl", TypeByte, false},
	38:  {"tcp-keepalive-interval", TypeU32, false},
	39:  {"tcp-keepalive-garbage", TypeBool, false},
	40:  {"nis-domain", TypeString, false},
	41:  {"nis-servers", TypeIPv4Plus, false},
	42:  {"ntp-servers", TypeIPv4Plus, false},
	43:  {"vendor-specific-information", TypeBytePlus, false},
	44:  {"netbios-name-server", TypeIPv4Plus, false},
	45:  {"netbios-datagram-distribution-server", TypeIPv4Plus, false},
	46:  {"netbios-node-type", TypeByte, false},
	47:  {"netbios-scope", TypeString, false},
	48:  {"x-window-font-server", TypeIPv4Plus, false},
	49:  {"x-window-display-manager", TypeIPv4Plus, false},
	50:  {"requested-ip-address", TypeIPv4, false},
	51:  {"ip-address-lease-time", TypeU32, false},
	52:  {"option-overload", TypeByte, false},
	53:  {"dhcp-message-type", TypeByte, false},
	54:  {"server-identifier", TypeIPv4, false},
	55:  {"parameter-request-list", TypeBytePlus, false},
	56:  {"message", TypeString, false},
	57:  {"maximum-dhcp-message-size", TypeU16, false},
	58:  {"renewal-time-t1", TypeU32, false},
	59:  {"rebinding-time-t2", TypeU32, false},
	60:  {"vendor-class-identifier", TypeIdentifier, false},
	61:  {"client-identifier", TypeIdentifier, false},
	64:  {"nis+-domain", TypeString, false},
	65:  {"nis+-servers", TypeIPv4Plus, false},
	66:  {"tftp-server-name", TypeString, false},
	67:  {"bootfile-name", TypeString, false},
	68:  {"mobile-ip-home-agent", TypeIPv4Star, false},
	69:  {"smtp-server", TypeIPv4Plus, false},
	70:  {"pop3-server", TypeIPv4Plus, false},
	71:  {"nntp-server", TypeIPv4Plus, false},
	72:  {"www-server", TypeIPv4Plus, false},
	73:  {"finger-server", TypeIPv4Plus, false},
	74:  {"irc-server", TypeIPv4Plus, false},
	75:  {"streettalk-server", TypeIPv4Plus, false},
	76:  {"streettalk-directory-assistance-server", TypeIPv4Plus, false},
	77:  {"user-class", TypeIdentifier, false},
	80:  {"rapid-commit", TypeNone, false},
	81:  {"fqdn", TypeBytePlus, false},
	82:  {"relay-agent-information", TypeBytePlus, true},
	83:  {"isns", TypeBytePlus, true},
	85:  {"nds-servers", TypeIPv4Plus, false},
	86:  {"nds-tree-name", TypeString, false},
	87:  {"nds-context", TypeString, false},
	88:  {"bcmcs-domain-name-list", TypeBytePlus, true},
	89:  {"bcmcs-address-list", TypeIPv4Plus, false},
	91:  {"client-last-transaction-time", TypeU32, false},
	92:  {"associated-ip", TypeIPv4Star, false},
	93:  {"client-system-architecture", TypeU16, false},
	94:  {"client-network-device-interface", TypeBytePlus, false},
	97:  {"uuid-guid", TypeBytePlus, false},
	100: {"pcode", TypeString, false},
	101: {"tcode", TypeString, false},
	116: {"auto-configure", TypeByte, false},
	117: {"name-service-search", TypeU16Plus, false},
	118: {"subnet-selection", TypeIPv4, false},
	119: {"domain-search", TypeBytePlus, true},
	120: {"sip-servers", TypeBytePlus, true},
	121: {"classless-static-route", TypeBytePlus, true},
	123: {"geoconf-civic", TypeBytePlus, false},
	124: {"vi-vendor-class", TypeBytePlus, true},
	125: {"vi-vendor-specific-information", TypeBytePlus, true},
	128: {"pxe-undefined-128", TypeBytePlus, false},
	129: {"pxe-undefined-129", TypeBytePlus, false},
	130: {"pxe-undefined-130", TypeBytePlus, false},
	131: {"pxe-undefined-131", TypeBytePlus, false},
	132: {"pxe-undefined-132", TypeBytePlus, false},
	133: {"pxe-undefined-133", TypeBytePlus, false},
	134: {"pxe-undefined-134", TypeBytePlus, false},
	135: {"pxe-undefined-135", TypeBytePlus, false},
	136: {"pana-agent", TypeIPv4Plus, false},
	137: {"lost-server", TypeBytePlus, true},
	138: {"capwap-ac", TypeIPv4Plus, false},
	139: {"mos-ipv4-address", TypeBytePlus, true},
	140: {"mos-fqdn", TypeBytePlus, true},
	141: {"sip-ua-config-domain", TypeString, false},
	142: {"ipv4-address-andsf", TypeIPv4Plus, false},
	145: {"forcerenew-nonce-capable", TypeByte, false},
	146: {"rdnss-selection", TypeBytePlus, false},
	150: {"tftp-server-address", TypeIPv4Plus, false},
	151: {"status-code", TypeBytePlus, false},
	159: {"v4-portparams", TypeBytePlus, false},
	160: {"captive-portal", TypeString, false},
	208: {"pxelinux-magic", TypeU32, false},
	209: {"pxelinux-configfile", TypeString, false},
	210: {"pxelinux-pathprefix", TypeString, false},
	211: {"pxelinux-reboottime", TypeU32, false},
	212: {"option-6rd", TypeBytePlus, false},
	213: {"v4-access-domain", TypeString, false},
}
