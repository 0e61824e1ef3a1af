package check

import (
	"strings"

	"github.com/optimode/mailcheck/lookup"
	"github.com/optimode/mailcheck/types"
)

// AttributeChecker answers the disposable, role, free-provider and typo
// questions against injected lookup tables. A nil table never matches.
type AttributeChecker struct {
	tables lookup.Tables
}

func NewAttributeChecker(tables lookup.Tables) *AttributeChecker {
	return &AttributeChecker{tables: tables}
}

// Disposable checks the domain and each of its parent domains, so
// "inbox.mailinator.com" matches a "mailinator.com" entry.
func (c *AttributeChecker) Disposable(domain string) types.DisposableCheck {
	if c.tables.Disposable == nil {
		return types.DisposableCheck{}
	}
	for d := strings.ToLower(domain); strings.Contains(d, "."); d = d[strings.IndexByte(d, '.')+1:] {
		if name, ok := c.tables.Disposable.Lookup(d); ok {
			return types.DisposableCheck{IsDisposable: true, Provider: name}
		}
	}
	return types.DisposableCheck{}
}

// Role matches the local part without its subaddress tag.
func (c *AttributeChecker) Role(base string) types.RoleCheck {
	if c.tables.Role == nil {
		return types.RoleCheck{}
	}
	if role, ok := c.tables.Role.Lookup(base); ok {
		return types.RoleCheck{IsRole: true, Role: role}
	}
	return types.RoleCheck{}
}

func (c *AttributeChecker) FreeProvider(domain string) types.FreeProviderCheck {
	if c.tables.Free == nil {
		return types.FreeProviderCheck{}
	}
	if name, ok := c.tables.Free.Lookup(domain); ok {
		return types.FreeProviderCheck{IsFree: true, Provider: name}
	}
	return types.FreeProviderCheck{}
}

// Typo suggests a corrected address when the domain looks like a
// misspelling of a well-known one.
func (c *AttributeChecker) Typo(local, domain string) types.TypoCheck {
	if c.tables.Typo == nil {
		return types.TypoCheck{}
	}
	suggested, ok := c.tables.Typo.Suggest(domain)
	if !ok || strings.EqualFold(suggested, domain) {
		return types.TypoCheck{}
	}
	return types.TypoCheck{
		HasTypo:         true,
		Suggestion:      local + "@" + suggested,
		OriginalDomain:  domain,
		SuggestedDomain: suggested,
	}
}
