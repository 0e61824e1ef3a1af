package mailcheck

import "github.com/optimode/mailcheck/types"

// verdict derives the state and reason from a (possibly partial) bundle.
// The first matching rule wins.
func verdict(c types.CheckBundle, allowImplicitMX bool) (State, Reason) {
	switch {
	case !c.Syntax.Valid:
		return StateUndeliverable, ReasonInvalidSyntax
	case c.DNS == nil || !c.DNS.Valid:
		return StateUndeliverable, ReasonInvalidDomain
	case !c.DNS.HasMX && !allowImplicitMX:
		return StateUndeliverable, ReasonNoMXRecords
	case c.Disposable != nil && c.Disposable.IsDisposable:
		return StateRisky, ReasonDisposable
	case c.Role != nil && c.Role.IsRole:
		return StateRisky, ReasonRoleBased
	case c.CatchAll.IsCatchAll == types.True:
		return StateUnknown, ReasonCatchAll
	case !c.DNS.HasMX:
		return StateDeliverable, ReasonImplicitMX
	default:
		return StateDeliverable, ReasonValidMailbox
	}
}
