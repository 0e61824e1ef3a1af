package check

import (
	"context"
	"errors"
	"net"
	"sort"
	"strings"
	"time"

	"github.com/optimode/mailcheck/types"
)

// Resolver is the subset of *net.Resolver the DNS checker needs.
// It is satisfied by net.DefaultResolver and by test fakes.
type Resolver interface {
	LookupMX(ctx context.Context, name string) ([]*net.MX, error)
	LookupIP(ctx context.Context, network, host string) ([]net.IP, error)
}

// DNSConfig is the DNS checker configuration.
type DNSConfig struct {
	// Timeout bounds each resolution stage (MX, A, AAAA) separately.
	Timeout time.Duration
}

// DNSChecker resolves a domain through the MX → A → AAAA chain.
type DNSChecker struct {
	cfg      DNSConfig
	resolver Resolver
}

func NewDNSChecker(cfg DNSConfig) *DNSChecker {
	return NewDNSCheckerWithResolver(cfg, net.DefaultResolver)
}

// NewDNSCheckerWithResolver is a test-oriented constructor that overrides the resolver.
func NewDNSCheckerWithResolver(cfg DNSConfig, r Resolver) *DNSChecker {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 5 * time.Second
	}
	return &DNSChecker{cfg: cfg, resolver: r}
}

// Resolve runs the resolution chain for domain. It never returns an error:
// failures are reported through DNSCheck.Error and DNSCheck.ErrorKind.
func (c *DNSChecker) Resolve(ctx context.Context, domain string) types.DNSCheck {
	mx, mxErr := c.lookupMX(ctx, domain)
	if mxErr == nil && len(mx) > 0 {
		preferred := mx[0]
		return types.DNSCheck{
			Valid:        true,
			DomainExists: true,
			HasMX:        true,
			MXRecords:    mx,
			PreferredMX:  &preferred,
			Provider:     ProviderFromMX(preferred.Exchange),
		}
	}

	// Only an explicit not-found or an empty answer moves on to the next
	// record type. A timeout or server failure ends the chain: the domain
	// may well have MX records the resolver could not deliver.
	if kind := classify(mxErr); kind != types.DNSErrorNotFound {
		return failed(kind, domain)
	}

	// No usable MX: an address record still proves the domain exists.
	_, aErr := c.lookupIP(ctx, "ip4", domain)
	if aErr == nil {
		return types.DNSCheck{Valid: true, DomainExists: true, HasMX: false, MXRecords: []types.MXRecord{}}
	}
	if kind := classify(aErr); kind != types.DNSErrorNotFound {
		return failed(kind, domain)
	}
	_, aaaaErr := c.lookupIP(ctx, "ip6", domain)
	if aaaaErr == nil {
		return types.DNSCheck{Valid: true, DomainExists: true, HasMX: false, MXRecords: []types.MXRecord{}}
	}
	return failed(classify(aaaaErr), domain)
}

func failed(kind types.DNSErrorKind, domain string) types.DNSCheck {
	return types.DNSCheck{
		Valid:     false,
		MXRecords: []types.MXRecord{},
		Error:     describe(kind, domain),
		ErrorKind: kind,
	}
}

func (c *DNSChecker) lookupMX(ctx context.Context, domain string) ([]types.MXRecord, error) {
	ctx, cancel := context.WithTimeout(ctx, c.cfg.Timeout)
	defer cancel()

	records, err := c.resolver.LookupMX(ctx, domain)
	if err != nil {
		return nil, err
	}

	out := make([]types.MXRecord, 0, len(records))
	for _, r := range records {
		if r == nil {
			continue
		}
		host := strings.TrimSuffix(r.Host, ".")
		// A null MX (RFC 7505) declares that the domain accepts no mail.
		if host == "" {
			continue
		}
		out = append(out, types.MXRecord{Exchange: host, Priority: r.Pref})
	}
	// Stable so that equal priorities keep resolver order.
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Priority < out[j].Priority
	})
	return out, nil
}

func (c *DNSChecker) lookupIP(ctx context.Context, network, domain string) ([]net.IP, error) {
	ctx, cancel := context.WithTimeout(ctx, c.cfg.Timeout)
	defer cancel()

	ips, err := c.resolver.LookupIP(ctx, network, domain)
	if err != nil {
		return nil, err
	}
	if len(ips) == 0 {
		return nil, &net.DNSError{Err: "no such host", Name: domain, IsNotFound: true}
	}
	return ips, nil
}

// classify maps a lookup error to a DNSErrorKind. A nil error (a successful
// but empty answer) counts as not found.
func classify(err error) types.DNSErrorKind {
	if err == nil {
		return types.DNSErrorNotFound
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return types.DNSErrorTimeout
	}
	var dnsErr *net.DNSError
	if errors.As(err, &dnsErr) {
		switch {
		case dnsErr.IsTimeout:
			return types.DNSErrorTimeout
		case dnsErr.IsNotFound:
			return types.DNSErrorNotFound
		}
	}
	return types.DNSErrorServerFailure
}

func describe(kind types.DNSErrorKind, domain string) string {
	switch kind {
	case types.DNSErrorTimeout:
		return "DNS lookup timed out for " + domain
	case types.DNSErrorServerFailure:
		return "DNS server failure while resolving " + domain
	default:
		return "domain " + domain + " does not exist"
	}
}
