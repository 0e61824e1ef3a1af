package parse

import (
	"net/mail"
	"strings"

	"golang.org/x/net/idna"
)

// Address is the internal representation of a normalized email address.
// Local, Domain and Tag are only populated when Valid is true.
type Address struct {
	Raw           string // the original input, untouched
	Normalized    string // trimmed and lower-cased
	Local         string // the part before @, including any +tag
	Base          string // Local without the +tag
	Tag           string // subaddress after the first '+', may be empty
	Domain        string // ASCII/Punycode form (for DNS/SMTP)
	DomainUnicode string // Unicode form (for display/typo detection)
	Quoted        bool   // the local part was written in quoted form
	Valid         bool   // false if Normalized cannot be decomposed
}

// Email returns local@domain using the ASCII domain.
func (a Address) Email() string {
	if !a.Valid {
		return a.Normalized
	}
	return a.Local + "@" + a.Domain
}

// New normalizes and decomposes the given email string.
// If decomposition fails, Valid=false but Raw and Normalized are populated.
// Supports internationalized email addresses (RFC 6531 / EAI) and
// internationalized domain names (IDNA2008).
func New(raw string) Address {
	normalized := strings.ToLower(strings.TrimSpace(raw))
	base := Address{Raw: raw, Normalized: normalized}

	addr, err := mail.ParseAddress(normalized)
	if err != nil {
		addr, err = mail.ParseAddress("<" + normalized + ">")
		if err != nil {
			// net/mail rejects Unicode local parts (RFC 6531 SMTPUTF8)
			return parseManual(base)
		}
	}

	// A display name means the input was not a bare address.
	if addr.Name != "" {
		return base
	}

	at := strings.LastIndex(addr.Address, "@")
	if at < 1 || at >= len(addr.Address)-1 {
		return base
	}
	base.Quoted = hasQuotedLocal(normalized)
	return build(base, addr.Address[:at], addr.Address[at+1:])
}

func parseManual(base Address) Address {
	raw := base.Normalized
	at := strings.LastIndex(raw, "@")
	if at < 1 || at >= len(raw)-1 {
		return base
	}
	local := raw[:at]
	domain := raw[at+1:]
	if strings.ContainsAny(local, " \t<>") || strings.ContainsAny(domain, " \t<>@") {
		return base
	}
	return build(base, local, domain)
}

// build fills in the decomposed fields with proper IDNA domain handling.
func build(a Address, local, domain string) Address {
	ascii, unicode, ok := convertDomain(domain)
	if !ok {
		return a
	}

	a.Local = local
	a.Base = local
	if i := strings.IndexByte(local, '+'); i > 0 && !a.Quoted {
		a.Base = local[:i]
		a.Tag = local[i+1:]
	}
	a.Domain = ascii
	a.DomainUnicode = unicode
	a.Valid = true
	return a
}

// hasQuotedLocal checks if the raw email has a quoted local part.
// net/mail strips the quotes, so the raw input has to be inspected.
func hasQuotedLocal(raw string) bool {
	at := strings.LastIndex(raw, "@")
	if at < 1 {
		return false
	}
	local := raw[:at]
	return len(local) >= 2 && strings.HasPrefix(local, `"`) && strings.HasSuffix(local, `"`)
}

// convertDomain converts a domain to both ASCII/Punycode and Unicode forms.
// ok is false if the domain contains non-ASCII characters that fail
// IDNA2008 validation.
func convertDomain(domain string) (ascii, unicode string, ok bool) {
	hasNonASCII := false
	for _, r := range domain {
		if r > 127 {
			hasNonASCII = true
			break
		}
	}

	if hasNonASCII {
		a, err := idna.Lookup.ToASCII(domain)
		if err != nil {
			return "", "", false
		}
		return a, domain, true
	}

	// Already-Punycode labels are decoded for display (xn--mnchen-3ya.de → münchen.de)
	u, err := idna.Display.ToUnicode(domain)
	if err != nil {
		u = domain
	}
	return domain, u, true
}
