package middleware

import (
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"net/netip"
	"strings"

	"github.com/crljhnmngs/portfolio-admin/pkg/config"
)

// DevIdentifier is the client identifier used when a request carries no
// forwarding headers, which only happens when the API is hit directly in
// local development.
const DevIdentifier = "dev-user"

// IPExtractor resolves the identifier a request is rate limited under.
type IPExtractor interface {
	// ClientIP returns the client address of r. It never returns "".
	ClientIP(r *http.Request) string
}

// ClientIP returns the first X-Forwarded-For entry, else X-Real-Ip, else
// DevIdentifier. Both headers are trimmed and trusted as sent.
//
// Examples:
//   - "X-Forwarded-For: 203.0.113.5, 10.0.0.1" → "203.0.113.5"
//   - "X-Real-Ip:  198.51.100.7 " → "198.51.100.7"
//   - no headers → "dev-user"
func ClientIP(r *http.Request) string {
	if ip, ok := headerIP(r); ok {
		return ip
	}
	return DevIdentifier
}

// headerIP applies the forwarding header precedence.
func headerIP(r *http.Request) (string, bool) {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		first, _, _ := strings.Cut(xff, ",")
		if first = strings.TrimSpace(first); first != "" {
			return first, true
		}
	}
	if xri := strings.TrimSpace(r.Header.Get("X-Real-Ip")); xri != "" {
		return xri, true
	}
	return "", false
}

// HeaderIPExtractor implements IPExtractor with ClientIP.
//
// It suits deployments behind a platform proxy that always overwrites the
// forwarding headers. Anywhere else a client can pick its own identifier.
type HeaderIPExtractor struct{}

// ClientIP implements IPExtractor.
func (HeaderIPExtractor) ClientIP(r *http.Request) string {
	return ClientIP(r)
}

// TrustedProxyConfig lists the reverse proxies whose forwarding headers are
// believed.
type TrustedProxyConfig struct {
	// Enabled turns on proxy validation. When false the headers are always
	// honored, like HeaderIPExtractor.
	Enabled bool

	// AllowedCIDRs are the trusted proxy ranges. Single IPs become /32 or /128.
	// Examples: ["10.0.0.1/32", "172.16.0.0/12", "2001:db8::/32"]
	AllowedCIDRs []netip.Prefix
}

// IsTrusted reports whether remoteAddr ("IP:port" or "IP") is a trusted proxy.
func (c *TrustedProxyConfig) IsTrusted(remoteAddr string) bool {
	ip, err := extractIPFromAddr(remoteAddr)
	if err != nil {
		return false
	}
	addr, err := netip.ParseAddr(ip)
	if err != nil {
		return false
	}
	addr = addr.Unmap()
	for _, prefix := range c.AllowedCIDRs {
		if prefix.Contains(addr) {
			return true
		}
	}
	return false
}

// LoadTrustedProxyConfig reads the proxy trust settings.
//
// Environment variables:
//   - RATE_LIMIT_TRUST_PROXY: "true" enables validation (default false)
//   - RATE_LIMIT_TRUSTED_PROXIES: comma-separated IPs or CIDR ranges
//
// Enabling validation without any valid proxy is a startup error; otherwise
// every request would be keyed by the proxy's own address.
func LoadTrustedProxyConfig() (*TrustedProxyConfig, error) {
	cfg := &TrustedProxyConfig{
		Enabled:      config.GetEnvBool("RATE_LIMIT_TRUST_PROXY", false),
		AllowedCIDRs: []netip.Prefix{},
	}
	if !cfg.Enabled {
		return cfg, nil
	}

	entries := config.GetEnvStringList("RATE_LIMIT_TRUSTED_PROXIES", nil)
	if len(entries) == 0 {
		return nil, fmt.Errorf("RATE_LIMIT_TRUST_PROXY is enabled but RATE_LIMIT_TRUSTED_PROXIES is empty")
	}

	prefixes, err := ParseTrustedProxies(entries)
	if err != nil {
		return nil, err
	}
	cfg.AllowedCIDRs = prefixes
	return cfg, nil
}

// ParseTrustedProxies converts IP and CIDR strings into prefixes.
func ParseTrustedProxies(entries []string) ([]netip.Prefix, error) {
	prefixes := make([]netip.Prefix, 0, len(entries))
	for _, entry := range entries {
		entry = strings.TrimSpace(entry)
		if entry == "" {
			continue
		}

		prefix, err := netip.ParsePrefix(entry)
		if err != nil {
			ip, ipErr := netip.ParseAddr(entry)
			if ipErr != nil {
				return nil, fmt.Errorf("invalid IP or CIDR format '%s': must be valid IP address or CIDR notation (e.g., '192.168.1.1' or '10.0.0.0/8')", entry)
			}
			prefix = netip.PrefixFrom(ip, ip.BitLen())
		}
		prefixes = append(prefixes, prefix.Masked())
	}
	return prefixes, nil
}

// TrustedProxyExtractor honors the forwarding headers only when the TCP peer
// is a trusted proxy. Requests from anywhere else are keyed by RemoteAddr,
// so a client cannot rotate its identifier by forging X-Forwarded-For.
type TrustedProxyExtractor struct {
	config TrustedProxyConfig
}

// NewTrustedProxyExtractor creates a TrustedProxyExtractor.
func NewTrustedProxyExtractor(config TrustedProxyConfig) *TrustedProxyExtractor {
	return &TrustedProxyExtractor{config: config}
}

// ClientIP implements IPExtractor.
func (e *TrustedProxyExtractor) ClientIP(r *http.Request) string {
	if !e.config.Enabled {
		return ClientIP(r)
	}

	if e.config.IsTrusted(r.RemoteAddr) {
		if ip, ok := headerIP(r); ok {
			return ip
		}
	} else if r.Header.Get("X-Forwarded-For") != "" || r.Header.Get("X-Real-Ip") != "" {
		slog.Warn("untrusted peer sent forwarding headers",
			slog.String("remote_addr", r.RemoteAddr),
			slog.String("x_forwarded_for", r.Header.Get("X-Forwarded-For")),
			slog.String("x_real_ip", r.Header.Get("X-Real-Ip")),
		)
	}

	ip, err := extractIPFromAddr(r.RemoteAddr)
	if err != nil {
		return DevIdentifier
	}
	return ip
}

// NewIPExtractorFromEnv picks the extractor the environment asks for.
func NewIPExtractorFromEnv() (IPExtractor, error) {
	cfg, err := LoadTrustedProxyConfig()
	if err != nil {
		return nil, err
	}
	if !cfg.Enabled {
		return HeaderIPExtractor{}, nil
	}

	slog.Info("rate limit proxy trust enabled",
		slog.Int("trusted_ranges", len(cfg.AllowedCIDRs)))
	return NewTrustedProxyExtractor(*cfg), nil
}

// extractIPFromAddr extracts the IP from a "host:port" or bare IP string.
//
// Examples:
//   - "192.168.1.1:8080" → "192.168.1.1"
//   - "[2001:db8::1]:8080" → "2001:db8::1"
//   - "127.0.0.1" → "127.0.0.1"
func extractIPFromAddr(addr string) (string, error) {
	host, _, err := net.SplitHostPort(addr)
	if err != nil {
		if ip := net.ParseIP(addr); ip != nil {
			return ip.String(), nil
		}
		return "", fmt.Errorf("invalid address format: %s", addr)
	}
	return host, nil
}
