// Package requestip resolves the client address of an HTTP request,
// trusting forwarding headers only from configured proxy ranges.
package requestip

import (
	"fmt"
	"net"
	"net/http"
	"net/netip"
	"strings"
)

// Resolver extracts client addresses. The zero value trusts no proxy.
type Resolver struct {
	trusted []netip.Prefix
}

// NewResolver parses a comma-separated list of trusted proxy CIDRs.
// An empty list yields a resolver that only looks at RemoteAddr.
func NewResolver(cidrs string) (*Resolver, error) {
	var prefixes []netip.Prefix
	for _, part := range strings.Split(cidrs, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		prefix, err := netip.ParsePrefix(part)
		if err != nil {
			return nil, fmt.Errorf("invalid CIDR %q: %w", part, err)
		}
		prefixes = append(prefixes, prefix.Masked())
	}
	return &Resolver{trusted: prefixes}, nil
}

// ClientIP returns the address of the client that sent r. When the peer is
// a trusted proxy, X-Forwarded-For is walked right to left and the first
// hop outside the trusted ranges wins. X-Real-IP is the fallback.
func (res *Resolver) ClientIP(r *http.Request) string {
	peer, ok := parseAddr(r.RemoteAddr)
	if !ok {
		return strings.TrimSpace(r.RemoteAddr)
	}
	if !res.trusts(peer) {
		return peer.String()
	}

	if xff := r.Header.Values("X-Forwarded-For"); len(xff) > 0 {
		hops := strings.Split(strings.Join(xff, ","), ",")
		for i := len(hops) - 1; i >= 0; i-- {
			addr, ok := parseAddr(hops[i])
			if !ok {
				break
			}
			if !res.trusts(addr) {
				return addr.String()
			}
		}
	}

	if addr, ok := parseAddr(r.Header.Get("X-Real-IP")); ok {
		return addr.String()
	}
	return peer.String()
}

func (res *Resolver) trusts(addr netip.Addr) bool {
	if res == nil {
		return false
	}
	addr = addr.Unmap()
	for _, p := range res.trusted {
		if p.Contains(addr) {
			return true
		}
	}
	return false
}

func parseAddr(value string) (netip.Addr, bool) {
	v := strings.TrimSpace(value)
	if v == "" {
		return netip.Addr{}, false
	}
	if host, _, err := net.SplitHostPort(v); err == nil {
		v = host
	}
	addr, err := netip.ParseAddr(strings.Trim(v, "[]"))
	if err != nil {
		return netip.Addr{}, false
	}
	return addr.Unmap(), true
}
