package mailcheck

import (
	"slices"
	"time"

	"github.com/optimode/mailcheck/types"
)

// Result is the full outcome of a verification.
type Result struct {
	Email      string `json:"email"`
	Normalized string `json:"normalized"`
	Local      string `json:"local,omitempty"`
	Domain     string `json:"domain,omitempty"`
	Tag        string `json:"tag,omitempty"`

	State  State  `json:"state"`
	Reason Reason `json:"reason"`

	Score             int       `json:"score"`
	RiskLevel         RiskLevel `json:"riskLevel"`
	QualityIndicators []string  `json:"qualityIndicators"`
	Warnings          []string  `json:"warnings"`

	Checks types.CheckBundle `json:"checks"`

	// Duration is the elapsed verification time in milliseconds.
	Duration   int64     `json:"duration"`
	VerifiedAt time.Time `json:"verifiedAt"`
}

// Deliverable reports whether the verdict is deliverable.
func (r Result) Deliverable() bool {
	return r.State == StateDeliverable
}

// HasWarning reports whether tag is among the warnings.
func (r Result) HasWarning(tag string) bool {
	return slices.Contains(r.Warnings, tag)
}
