// Package config defines the on-disk YAML configuration shape for a
// staticdhcpd instance: socket binding, authoritative/NAK behavior,
// suspension tunables, and cache settings.
package config

import (
	"fmt"
	"net/netip"
	"time"

	"github.com/AdguardTeam/golibs/errors"
	"github.com/AdguardTeam/golibs/validate"

	"github.com/flan/staticdhcpd/internal/aghtime"
)

// Config is the top-level configuration of a staticdhcpd instance.
type Config struct {
	// ServerIP is the address this server identifies itself by in option
	// 54. The UDP sockets are bound to the wildcard address, not to
	// ServerIP. Required.
	ServerIP netip.Addr `yaml:"server_ip"`

	// ServerPort is the port DHCP requests are received on. Zero means
	// [netlink.DefaultServerPort].
	ServerPort uint16 `yaml:"server_port"`

	// ClientPort is the port responses are sent to. Zero means
	// [netlink.DefaultClientPort].
	ClientPort uint16 `yaml:"client_port"`

	// ProxyPort, if nonzero, binds an additional PXE/proxyDHCP socket. The
	// serve loop reads only the server port, so requests arriving on the
	// proxy port are not handled.
	ProxyPort uint16 `yaml:"proxy_port"`

	// BackendPath is the on-disk path for the bundled memstore reference
	// [backend.Backend] implementation. Embedders supplying their own
	// Backend may leave this unset.
	BackendPath string `yaml:"backend_path"`

	// ResponseInterface, if set, is the network interface an L2 raw
	// socket is opened on for direct client-MAC unicast.
	ResponseInterface string `yaml:"response_interface"`

	// ResponseInterfaceQTags stacks 802.1Q tags onto every frame sent out
	// ResponseInterface, outermost first.
	ResponseInterfaceQTags []QTag `yaml:"response_interface_qtags"`

	// Authoritative mirrors the standard DHCP server "authoritative"
	// directive.
	Authoritative bool `yaml:"authoritative"`

	// NAKRenewals, when true, NAKs every RENEWING/REBINDING request so
	// clients fall back to DISCOVER.
	NAKRenewals bool `yaml:"nak_renewals"`

	// Suspend holds the flood/misbehaviour-suspension tunables.
	Suspend SuspendConfig `yaml:"suspend"`

	// Cache holds the lookup-caching tunables.
	Cache CacheConfig `yaml:"cache"`

	// MetricsAddr, if set, serves Prometheus metrics at /metrics on this
	// address (e.g. "127.0.0.1:9116").
	MetricsAddr string `yaml:"metrics_addr"`
}

// QTag is one 802.1Q tag in a VLAN stack.
type QTag struct {
	PCP uint8  `yaml:"pcp"`
	DEI bool   `yaml:"dei"`
	VID uint16 `yaml:"vid"`
}

// SuspendConfig configures per-source flood and misbehaviour suspension.
type SuspendConfig struct {
	Enabled bool `yaml:"enabled"`

	// SuspendThreshold is the score above which a source is throttled.
	SuspendThreshold int `yaml:"suspend_threshold"`

	// MisbehavingClientTimeout is how long an explicitly blocked source
	// stays blocked.
	MisbehavingClientTimeout aghtime.Duration `yaml:"misbehaving_client_timeout"`

	// UnauthorizedClientTimeout is how long a source is blocked after an
	// unknown-MAC response.
	UnauthorizedClientTimeout aghtime.Duration `yaml:"unauthorized_client_timeout"`
}

// CacheConfig configures the optional memoizing layer in front of the
// Backend.
type CacheConfig struct {
	Enabled bool `yaml:"enabled"`

	// OnDisk, if true, backs the live cache table with an embedded
	// key-value file at DBPath instead of an in-memory map.
	OnDisk bool `yaml:"on_disk"`

	DBPath string `yaml:"db_path"`

	// PersistentPath, if set, is a snapshot file the cache reloads from
	// on start and refreshes on every reinitialise, used as a degraded
	// fallback when the Backend is unavailable.
	PersistentPath string `yaml:"persistent_path"`

	// NegativeTTL is how long a "no Definitions for this MAC" result is
	// cached. Zero disables negative caching.
	NegativeTTL aghtime.Duration `yaml:"negative_ttl"`
}

// type check
var _ validate.Interface = (*Config)(nil)

// Validate implements the [validate.Interface] interface for *Config.
func (c *Config) Validate() (err error) {
	if c == nil {
		return errors.ErrNoValue
	}

	var errs []error

	switch {
	case !c.ServerIP.IsValid():
		errs = append(errs, fmt.Errorf("conf.ServerIP: %w", errors.ErrNoValue))
	case !c.ServerIP.Is4():
		errs = append(errs, fmt.Errorf("conf.ServerIP: %w", errNotIPv4))
	}

	errs = validate.Append(errs, "conf.Suspend", &c.Suspend)
	errs = validate.Append(errs, "conf.Cache", &c.Cache)

	return errors.Join(errs...)
}

const errNotIPv4 errors.Error = "must be an IPv4 address"

// type check
var _ validate.Interface = (*SuspendConfig)(nil)

// Validate implements the [validate.Interface] interface for *SuspendConfig.
func (s *SuspendConfig) Validate() (err error) {
	if s == nil || !s.Enabled {
		return nil
	}

	return errors.Join(
		validate.Positive("suspend_threshold", s.SuspendThreshold),
		validate.Positive("misbehaving_client_timeout", s.MisbehavingClientTimeout.Duration),
		validate.Positive("unauthorized_client_timeout", s.UnauthorizedClientTimeout.Duration),
	)
}

// type check
var _ validate.Interface = (*CacheConfig)(nil)

// Validate implements the [validate.Interface] interface for *CacheConfig.
func (c *CacheConfig) Validate() (err error) {
	if c == nil || !c.Enabled {
		return nil
	}

	errs := []error{
		validate.NotNegative("negative_ttl", c.NegativeTTL.Duration),
	}

	if c.OnDisk {
		errs = append(errs, validate.NotEmpty("db_path", c.DBPath))
	}

	return errors.Join(errs...)
}

// DefaultSuspendConfig mirrors spec.md's documented suspension defaults.
func DefaultSuspendConfig() SuspendConfig {
	return SuspendConfig{
		SuspendThreshold:          10,
		MisbehavingClientTimeout:  aghtime.Duration{Duration: 150 * time.Second},
		UnauthorizedClientTimeout: aghtime.Duration{Duration: 60 * time.Second},
	}
}
