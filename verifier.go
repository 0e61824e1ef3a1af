package mailcheck

import (
	"context"
	"fmt"
	"net"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/optimode/mailcheck/check"
	"github.com/optimode/mailcheck/internal/dnscache"
	"github.com/optimode/mailcheck/internal/parse"
	"github.com/optimode/mailcheck/lookup"
	"github.com/optimode/mailcheck/score"
	"github.com/optimode/mailcheck/types"
)

// Verifier is the main fluent builder struct and the verification
// orchestrator. Instantiate with the New() function.
// A configured Verifier is safe for concurrent use.
type Verifier struct {
	resolver check.Resolver
	probe    ProbeOptions
	cache    *dnscache.Cache
	logger   logrus.FieldLogger
	err      error // configuration error, returned on Verify()

	syntax *check.SyntaxChecker
	attrs  *check.AttributeChecker
}

// New creates a Verifier that uses the system resolver and the built-in
// lookup tables. Every call resolves afresh; see WithDNSCache.
func New() *Verifier {
	return &Verifier{
		resolver: net.DefaultResolver,
		probe:    defaultProbeOptions(),
		logger:   logrus.StandardLogger(),
		syntax:   check.NewSyntaxChecker(),
		attrs:    check.NewAttributeChecker(lookup.Default()),
	}
}

// WithResolver replaces the DNS resolver (e.g. a custom *net.Resolver).
func (v *Verifier) WithResolver(r check.Resolver) *Verifier {
	v.resolver = r
	return v
}

// WithLookups replaces the static reference tables.
func (v *Verifier) WithLookups(tables lookup.Tables) *Verifier {
	v.attrs = check.NewAttributeChecker(tables)
	return v
}

// WithProbe configures the catch-all prober identity. The probe itself
// only runs when Options.EnableSMTP is set.
// ProbeOptions.HeloDomain and MailFrom are required.
func (v *Verifier) WithProbe(opts ProbeOptions) *Verifier {
	if opts.HeloDomain == "" || opts.MailFrom == "" {
		v.err = ErrInvalidProbeOptions
		return v
	}
	// Apply defaults for unset values
	def := defaultProbeOptions()
	if opts.Port == "" {
		opts.Port = def.Port
	}
	if opts.CommandDelay <= 0 {
		opts.CommandDelay = def.CommandDelay
	}
	v.probe = opts
	return v
}

// WithDNSCache shares DNS results between calls for ttl. A TTL <= 0
// disables the cache, which is the default. Timeouts and server failures
// are never cached. Entries are keyed by domain only, so a cached result
// is reused whatever the DNSTimeout of the later call.
func (v *Verifier) WithDNSCache(ttl time.Duration) *Verifier {
	if ttl <= 0 {
		v.cache = nil
		return v
	}
	v.cache = dnscache.New(ttl)
	return v
}

func (v *Verifier) WithLogger(logger logrus.FieldLogger) *Verifier {
	v.logger = logger
	return v
}

// Verify runs the pipeline on a single address. Stages run in order and
// the first terminal outcome short-circuits the rest:
//
//	syntax → parse → DNS → attributes → [catch-all probe] → verdict
//
// A non-nil error is either a configuration error or an *InternalError;
// every heuristic outcome is reported in the Result.
func (v *Verifier) Verify(ctx context.Context, email string, opts ...Options) (res Result, err error) {
	if v.err != nil {
		return Result{}, v.err
	}

	o := resolveOptions(opts)
	start := time.Now()
	addr := parse.New(email)
	log := v.logger.WithFields(logrus.Fields{"email": addr.Normalized})

	stage := "syntax"
	defer func() {
		if r := recover(); r != nil {
			res = Result{}
			err = &InternalError{Stage: stage, Err: fmt.Errorf("panic: %v", r)}
		}
	}()

	var checks types.CheckBundle
	finish := func() (Result, error) {
		return v.assemble(email, addr, checks, o, start), nil
	}

	checks.Syntax = v.syntax.Check(ctx, addr)
	if !checks.Syntax.Valid {
		log.WithField("error", checks.Syntax.Error).Debug("syntax check failed")
		return finish()
	}

	stage = "dns"
	dns := v.resolve(ctx, addr.Domain, o.DNSTimeout)
	checks.DNS = &dns
	if !dns.Valid || (!dns.HasMX && !o.AllowImplicitMX) {
		log.WithFields(logrus.Fields{
			"domain":    addr.Domain,
			"exists":    dns.DomainExists,
			"errorKind": dns.ErrorKind,
		}).Debug("dns check ended verification")
		return finish()
	}

	stage = "attributes"
	if !o.SkipDisposable {
		d := v.attrs.Disposable(addr.Domain)
		checks.Disposable = &d
	}
	if !o.SkipRole {
		r := v.attrs.Role(addr.Base)
		checks.Role = &r
	}
	free := v.attrs.FreeProvider(addr.Domain)
	checks.FreeProvider = &free
	if !o.SkipTypo {
		t := v.attrs.Typo(addr.Local, addr.Domain)
		checks.Typo = &t
	}

	if o.EnableSMTP {
		stage = "catch_all"
		checks.CatchAll = v.prober(o).Probe(ctx, addr.Domain, dns.MXRecords)
		log.WithFields(logrus.Fields{
			"mx":         checks.CatchAll.MXHost,
			"catchAll":   checks.CatchAll.IsCatchAll,
			"confidence": checks.CatchAll.Confidence,
		}).Debug("catch-all probe finished")
	}

	stage = "verdict"
	return finish()
}

func (v *Verifier) resolve(ctx context.Context, domain string, timeout time.Duration) types.DNSCheck {
	dns := check.NewDNSCheckerWithResolver(check.DNSConfig{Timeout: timeout}, v.resolver)
	if v.cache == nil {
		return dns.Resolve(ctx, domain)
	}
	return v.cache.Resolve(ctx, domain, dns.Resolve)
}

func (v *Verifier) prober(o Options) *check.CatchAllProber {
	return check.NewCatchAllProber(check.ProbeConfig{
		HeloDomain:   v.probe.HeloDomain,
		MailFrom:     v.probe.MailFrom,
		Port:         v.probe.Port,
		Timeout:      o.SMTPTimeout,
		CommandDelay: v.probe.CommandDelay,
		Dial:         v.probe.Dial,
		Logger:       v.logger,
	})
}

func (v *Verifier) assemble(email string, addr parse.Address, checks types.CheckBundle, o Options, start time.Time) Result {
	state, reason := verdict(checks, o.AllowImplicitMX)
	ev := score.Evaluate(checks)

	res := Result{
		Email:             email,
		Normalized:        addr.Normalized,
		State:             state,
		Reason:            reason,
		Score:             ev.Score,
		RiskLevel:         ev.Risk,
		QualityIndicators: ev.QualityIndicators,
		Warnings:          ev.Warnings,
		Checks:            checks,
		Duration:          time.Since(start).Milliseconds(),
		VerifiedAt:        time.Now().UTC(),
	}
	if checks.Syntax.Valid {
		res.Local = addr.Local
		res.Domain = addr.Domain
		res.Tag = addr.Tag
	}
	return res
}
