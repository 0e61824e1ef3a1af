// Package mailcheck determines whether an email address is safe to send to
// without sending mail. It runs syntax validation, a DNS resolution chain,
// static attribute lookups and an optional catch-all probe, then derives a
// verdict, a 0-100 quality score and a risk level.
//
// Basic usage:
//
//	result, err := mailcheck.New().Verify(ctx, "user@example.com")
//
// With the catch-all probe:
//
//	v := mailcheck.New().WithProbe(mailcheck.ProbeOptions{
//	    HeloDomain: "myapp.com",
//	    MailFrom:   "verify@myapp.com",
//	})
//	result, err := v.Verify(ctx, "user@example.com", mailcheck.Options{EnableSMTP: true})
//
// Verification never fails for heuristic ambiguity. An error is returned
// only for misconfiguration or an unexpected internal failure.
package mailcheck

import "github.com/optimode/mailcheck/types"

// Re-exports from the types package so that consumers don't need to import
// it directly.
type (
	State       = types.State
	Reason      = types.Reason
	RiskLevel   = types.RiskLevel
	Confidence  = types.Confidence
	Tri         = types.Tri
	CheckBundle = types.CheckBundle
)

// State constants re-exported.
const (
	StateDeliverable   = types.StateDeliverable
	StateUndeliverable = types.StateUndeliverable
	StateRisky         = types.StateRisky
	StateUnknown       = types.StateUnknown
)

// Reason constants re-exported.
const (
	ReasonInvalidSyntax = types.ReasonInvalidSyntax
	ReasonInvalidDomain = types.ReasonInvalidDomain
	ReasonNoMXRecords   = types.ReasonNoMXRecords
	ReasonDisposable    = types.ReasonDisposable
	ReasonRoleBased     = types.ReasonRoleBased
	ReasonCatchAll      = types.ReasonCatchAll
	ReasonImplicitMX    = types.ReasonImplicitMX
	ReasonValidMailbox  = types.ReasonValidMailbox
)

// RiskLevel constants re-exported.
const (
	RiskLow    = types.RiskLow
	RiskMedium = types.RiskMedium
	RiskHigh   = types.RiskHigh
)
