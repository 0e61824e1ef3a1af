package mailcheck

import (
	"net"
	"time"
)

// Options configures a single verification. The zero value is usable:
// unset durations fall back to their defaults.
type Options struct {
	// EnableSMTP runs the catch-all probe. Default: false
	EnableSMTP bool
	// DNSTimeout bounds each DNS resolution stage. Default: 5s
	DNSTimeout time.Duration
	// SMTPTimeout is the hard upper bound of the catch-all probe. Default: 10s
	SMTPTimeout time.Duration

	SkipDisposable bool
	SkipRole       bool
	SkipTypo       bool

	// AllowImplicitMX lets a domain with only A/AAAA records continue
	// through the pipeline (RFC 5321 implicit MX) instead of ending as
	// undeliverable. Default: false
	AllowImplicitMX bool
}

const (
	defaultDNSTimeout  = 5 * time.Second
	defaultSMTPTimeout = 10 * time.Second
	defaultConcurrency = 5
)

// DefaultOptions returns the options used when none are given.
func DefaultOptions() Options {
	return Options{
		DNSTimeout:  defaultDNSTimeout,
		SMTPTimeout: defaultSMTPTimeout,
	}
}

func resolveOptions(opts []Options) Options {
	o := DefaultOptions()
	if len(opts) > 0 {
		o = opts[0]
	}
	if o.DNSTimeout <= 0 {
		o.DNSTimeout = defaultDNSTimeout
	}
	if o.SMTPTimeout <= 0 {
		o.SMTPTimeout = defaultSMTPTimeout
	}
	return o
}

// ProbeOptions configures the catch-all prober identity and transport.
type ProbeOptions struct {
	// HeloDomain is the domain sent in the EHLO command. Required, e.g. "myapp.com"
	HeloDomain string
	// MailFrom is the address sent in the MAIL FROM command. Required, e.g. "verify@myapp.com"
	MailFrom string
	// Port is the SMTP port. Default: 25
	Port string
	// CommandDelay is how long the prober waits for a reply before sending
	// the next command regardless. Default: 250ms
	CommandDelay time.Duration
	// Dial is injectable for testing. Default: net.DialTimeout
	Dial func(network, address string, timeout time.Duration) (net.Conn, error)
}

func defaultProbeOptions() ProbeOptions {
	return ProbeOptions{
		HeloDomain:   "localhost",
		MailFrom:     "verify@localhost",
		Port:         "25",
		CommandDelay: 250 * time.Millisecond,
	}
}
