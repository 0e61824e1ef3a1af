// Package types contains the shared types for mailcheck.
// This package does not import anything from other mailcheck packages
// to avoid circular imports.
package types

import "encoding/json"

// State is the overall deliverability verdict.
type State string

const (
	StateDeliverable   State = "deliverable"
	StateUndeliverable State = "undeliverable"
	StateRisky         State = "risky"
	StateUnknown       State = "unknown"
)

// Reason is the single code that accompanies a State.
type Reason string

const (
	ReasonInvalidSyntax Reason = "invalid_syntax"
	ReasonInvalidDomain Reason = "invalid_domain"
	ReasonNoMXRecords   Reason = "no_mx_records"
	ReasonDisposable    Reason = "disposable_email"
	ReasonRoleBased     Reason = "role_based_email"
	ReasonCatchAll      Reason = "catch_all_domain"
	ReasonImplicitMX    Reason = "implicit_mx"
	ReasonValidMailbox  Reason = "valid_mailbox"
)

// RiskLevel is derived from the check bundle independently of the verdict.
type RiskLevel string

const (
	RiskLow    RiskLevel = "low"
	RiskMedium RiskLevel = "medium"
	RiskHigh   RiskLevel = "high"
)

// Confidence qualifies a catch-all probe outcome.
type Confidence string

const (
	ConfidenceLow    Confidence = "low"
	ConfidenceMedium Confidence = "medium"
	ConfidenceHigh   Confidence = "high"
)

// Tri is a boolean that may not have been evaluated.
// The zero value is Unknown and marshals to JSON null.
type Tri int8

const (
	Unknown Tri = iota
	True
	False
)

// TriOf converts a known boolean.
func TriOf(b bool) Tri {
	if b {
		return True
	}
	return False
}

func (t Tri) Known() bool { return t != Unknown }

func (t Tri) String() string {
	switch t {
	case True:
		return "true"
	case False:
		return "false"
	default:
		return "unknown"
	}
}

func (t Tri) MarshalJSON() ([]byte, error) {
	switch t {
	case True:
		return []byte("true"), nil
	case False:
		return []byte("false"), nil
	default:
		return []byte("null"), nil
	}
}

func (t *Tri) UnmarshalJSON(b []byte) error {
	var v *bool
	if err := json.Unmarshal(b, &v); err != nil {
		return err
	}
	if v == nil {
		*t = Unknown
		return nil
	}
	*t = TriOf(*v)
	return nil
}

// DNSErrorKind classifies why a domain could not be resolved.
type DNSErrorKind string

const (
	DNSErrorNotFound      DNSErrorKind = "not_found"
	DNSErrorTimeout       DNSErrorKind = "timeout"
	DNSErrorServerFailure DNSErrorKind = "server_failure"
)

// MXRecord is a single mail exchanger, trailing dot removed.
type MXRecord struct {
	Exchange string `json:"exchange"`
	Priority uint16 `json:"priority"`
}

type SyntaxCheck struct {
	Valid bool   `json:"valid"`
	Error string `json:"error,omitempty"`
}

// DNSCheck is the Domain Resolver output. MXRecords is sorted by ascending
// priority and PreferredMX is MXRecords[0] whenever HasMX is true.
type DNSCheck struct {
	Valid        bool         `json:"valid"`
	DomainExists bool         `json:"domainExists"`
	HasMX        bool         `json:"hasMx"`
	MXRecords    []MXRecord   `json:"mxRecords"`
	PreferredMX  *MXRecord    `json:"preferredMx,omitempty"`
	Provider     string       `json:"provider,omitempty"`
	Error        string       `json:"error,omitempty"`
	ErrorKind    DNSErrorKind `json:"errorKind,omitempty"`
}

type DisposableCheck struct {
	IsDisposable bool   `json:"isDisposable"`
	Provider     string `json:"provider,omitempty"`
}

type RoleCheck struct {
	IsRole bool   `json:"isRole"`
	Role   string `json:"role,omitempty"`
}

type FreeProviderCheck struct {
	IsFree   bool   `json:"isFree"`
	Provider string `json:"provider,omitempty"`
}

type TypoCheck struct {
	HasTypo         bool   `json:"hasTypo"`
	Suggestion      string `json:"suggestion,omitempty"`
	OriginalDomain  string `json:"originalDomain,omitempty"`
	SuggestedDomain string `json:"suggestedDomain,omitempty"`
}

// CatchAllCheck holds the catch-all probe outcome. Valid reports whether the
// mail exchanger answered the probe at all; both fields stay Unknown when
// the probe did not run.
type CatchAllCheck struct {
	Valid      Tri        `json:"valid"`
	IsCatchAll Tri        `json:"isCatchAll"`
	Confidence Confidence `json:"confidence,omitempty"`
	MXHost     string     `json:"mxHost,omitempty"`
	Response   string     `json:"response,omitempty"`
}

// CheckBundle is the set of named check outcomes. A nil pointer field means
// the check was not evaluated.
type CheckBundle struct {
	Syntax       SyntaxCheck        `json:"syntax"`
	DNS          *DNSCheck          `json:"dns"`
	Disposable   *DisposableCheck   `json:"disposable"`
	Role         *RoleCheck         `json:"role"`
	FreeProvider *FreeProviderCheck `json:"freeProvider"`
	Typo         *TypoCheck         `json:"typo"`
	CatchAll     CatchAllCheck      `json:"catchAll"`
}
