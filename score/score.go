// Package score turns a check bundle into a 0-100 quality score, a risk
// level and flat lists of favorable and unfavorable signal tags.
//
// Every function here is pure. A nil attribute check in the bundle means the
// check was skipped and counts as favorable; an Unknown catch-all field earns
// half credit.
package score

import "github.com/optimode/mailcheck/types"

// Weights of the favorable signals.
const (
	WeightDomainExists  = 20
	WeightHasMX         = 20
	WeightNotDisposable = 15
	WeightNotRole       = 10
	WeightNotFree       = 5
	WeightNotCatchAll   = 10
	WeightNoTypo        = 10
	WeightSMTPVerified  = 10
)

// Evaluation is the Scoring Engine output.
type Evaluation struct {
	Score             int
	Risk              types.RiskLevel
	QualityIndicators []string
	Warnings          []string
}

func Evaluate(c types.CheckBundle) Evaluation {
	s := Score(c)
	indicators, warnings := Signals(c)
	return Evaluation{
		Score:             s,
		Risk:              Risk(c, s),
		QualityIndicators: indicators,
		Warnings:          warnings,
	}
}

// Score returns 0 for invalid syntax and otherwise the clamped sum of the
// weights of every favorable signal.
func Score(c types.CheckBundle) int {
	if !c.Syntax.Valid {
		return 0
	}

	total := 0
	if c.DNS != nil {
		if c.DNS.DomainExists {
			total += WeightDomainExists
		}
		if c.DNS.HasMX {
			total += WeightHasMX
		}
	}
	if c.Disposable == nil || !c.Disposable.IsDisposable {
		total += WeightNotDisposable
	}
	if c.Role == nil || !c.Role.IsRole {
		total += WeightNotRole
	}
	if c.FreeProvider == nil || !c.FreeProvider.IsFree {
		total += WeightNotFree
	}
	total += triCredit(c.CatchAll.IsCatchAll, types.False, WeightNotCatchAll)
	if c.Typo == nil || !c.Typo.HasTypo {
		total += WeightNoTypo
	}
	total += triCredit(c.CatchAll.Valid, types.True, WeightSMTPVerified)

	return min(max(total, 0), 100)
}

// triCredit gives full weight when v is favorable, half when unknown.
func triCredit(v, favorable types.Tri, weight int) int {
	switch v {
	case favorable:
		return weight
	case types.Unknown:
		return weight / 2
	default:
		return 0
	}
}

// Risk is derived independently of the verdict.
func Risk(c types.CheckBundle, score int) types.RiskLevel {
	switch {
	case !c.Syntax.Valid,
		c.DNS == nil || !c.DNS.Valid,
		c.Disposable != nil && c.Disposable.IsDisposable:
		return types.RiskHigh
	case !c.DNS.HasMX,
		c.Role != nil && c.Role.IsRole,
		c.Typo != nil && c.Typo.HasTypo,
		score < 50:
		return types.RiskMedium
	case score >= 70:
		return types.RiskLow
	default:
		return types.RiskMedium
	}
}

// Signals lists the favorable and unfavorable tags of every evaluated
// check. Skipped checks contribute to neither list.
func Signals(c types.CheckBundle) (indicators, warnings []string) {
	indicators = []string{}
	warnings = []string{}
	add := func(good bool, indicator, warning string) {
		if good {
			indicators = append(indicators, indicator)
		} else {
			warnings = append(warnings, warning)
		}
	}

	add(c.Syntax.Valid, "valid_syntax", "invalid_syntax")
	if !c.Syntax.Valid {
		return indicators, warnings
	}

	if c.DNS != nil {
		add(c.DNS.DomainExists, "domain_exists", "domain_not_found")
		if c.DNS.DomainExists {
			add(c.DNS.HasMX, "has_mx_records", "no_mx_records")
		}
	}
	if c.Disposable != nil {
		add(!c.Disposable.IsDisposable, "not_disposable", "disposable_email")
	}
	if c.Role != nil {
		add(!c.Role.IsRole, "not_role_based", "role_based_email")
	}
	if c.FreeProvider != nil {
		add(!c.FreeProvider.IsFree, "business_domain", "free_provider")
	}
	if c.Typo != nil {
		add(!c.Typo.HasTypo, "no_typo", "possible_typo")
	}
	if c.CatchAll.IsCatchAll.Known() && c.CatchAll.Valid == types.True {
		add(c.CatchAll.IsCatchAll == types.False, "not_catch_all", "catch_all_domain")
	}
	if c.CatchAll.Valid.Known() {
		add(c.CatchAll.Valid == types.True, "smtp_reachable", "smtp_unreachable")
	}
	return indicators, warnings
}
