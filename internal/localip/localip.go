// Package localip discovers a LAN-reachable address for building shareable
// links. Discovery is best effort: any failure falls back to a configured
// default, and callers never see an error.
package localip

import (
	"log/slog"
	"net"
	"strings"
)

// DefaultFallback is returned when no suitable interface address exists.
const DefaultFallback = "127.0.0.1"

// Resolver finds the machine's LAN-facing IPv4 address.
type Resolver struct {
	fallback string

	// interfaceAddrs is swappable for tests; defaults to net.InterfaceAddrs.
	interfaceAddrs func() ([]net.Addr, error)
}

// New creates a Resolver. An empty fallback selects DefaultFallback.
func New(fallback string) *Resolver {
	if fallback == "" {
		fallback = DefaultFallback
	}
	return &Resolver{
		fallback:       fallback,
		interfaceAddrs: net.InterfaceAddrs,
	}
}

// Resolve returns the first non-loopback IPv4 address that does not sit in
// the 172.16/12 range (container bridge networks), or the fallback when
// nothing qualifies. It never fails.
func (r *Resolver) Resolve() string {
	addrs, err := r.interfaceAddrs()
	if err != nil {
		slog.Warn("interface enumeration failed, using fallback address",
			"error", err, "fallback", r.fallback)
		return r.fallback
	}

	for _, addr := range addrs {
		ipNet, ok := addr.(*net.IPNet)
		if !ok {
			continue
		}
		ip := ipNet.IP.To4()
		if ip == nil || ip.IsLoopback() {
			continue
		}
		if strings.HasPrefix(ip.String(), "172.") {
			continue
		}
		return ip.String()
	}

	slog.Debug("no LAN address found, using fallback", "fallback", r.fallback)
	return r.fallback
}
