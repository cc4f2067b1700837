package config_test

import (
	"net/netip"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"gopkg.in/yaml.v3"

	"github.com/flan/staticdhcpd/internal/aghtime"
	"github.com/flan/staticdhcpd/internal/config"
)

func validConfig() *config.Config {
	return &config.Config{
		ServerIP: netip.MustParseAddr("192.0.2.1"),
		Suspend:  config.DefaultSuspendConfig(),
	}
}

func TestConfig_Validate(t *testing.T) {
	t.Parallel()

	assert.NoError(t, validConfig().Validate())

	noIP := validConfig()
	noIP.ServerIP = netip.Addr{}
	assert.Error(t, noIP.Validate())

	ipv6 := validConfig()
	ipv6.ServerIP = netip.MustParseAddr("2001:db8::1")
	assert.Error(t, ipv6.Validate())

	var nilConf *config.Config
	assert.Error(t, nilConf.Validate())
}

func TestSuspendConfig_Validate(t *testing.T) {
	t.Parallel()

	disabled := &config.SuspendConfig{Enabled: false}
	assert.NoError(t, disabled.Validate())

	bad := &config.SuspendConfig{Enabled: true, SuspendThreshold: 0}
	assert.Error(t, bad.Validate())

	good := &config.SuspendConfig{
		Enabled:                   true,
		SuspendThreshold:          10,
		MisbehavingClientTimeout:  aghtime.Duration{Duration: 150 * time.Second},
		UnauthorizedClientTimeout: aghtime.Duration{Duration: 60 * time.Second},
	}
	assert.NoError(t, good.Validate())
}

func TestCacheConfig_Validate(t *testing.T) {
	t.Parallel()

	disabled := &config.CacheConfig{Enabled: false}
	assert.NoError(t, disabled.Validate())

	missingPath := &config.CacheConfig{Enabled: true, OnDisk: true}
	assert.Error(t, missingPath.Validate())

	ok := &config.CacheConfig{Enabled: true, OnDisk: true, DBPath: "/tmp/cache.db"}
	assert.NoError(t, ok.Validate())
}

func TestConfig_YAMLRoundTrip(t *testing.T) {
	t.Parallel()

	src := `
server_ip: 192.0.2.1
server_port: 6700
authoritative: true
nak_renewals: false
response_interface_qtags:
  - pcp: 3
    dei: false
    vid: 100
suspend:
  enabled: true
  suspend_threshold: 10
  misbehaving_client_timeout: 2m30s
  unauthorized_client_timeout: 1m
cache:
  enabled: true
  negative_ttl: 30s
`

	var conf config.Config
	assert.NoError(t, yaml.Unmarshal([]byte(src), &conf))

	assert.Equal(t, netip.MustParseAddr("192.0.2.1"), conf.ServerIP)
	assert.EqualValues(t, 6700, conf.ServerPort)
	assert.True(t, conf.Authoritative)
	assert.False(t, conf.NAKRenewals)
	assert.Len(t, conf.ResponseInterfaceQTags, 1)
	assert.EqualValues(t, 100, conf.ResponseInterfaceQTags[0].VID)
	assert.Equal(t, 150*time.Second, conf.Suspend.MisbehavingClientTimeout.Duration)
	assert.Equal(t, 30*time.Second, conf.Cache.NegativeTTL.Duration)

	assert.NoError(t, conf.Validate())
}
