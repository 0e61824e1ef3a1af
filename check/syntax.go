package check

import (
	"context"
	"strings"
	"unicode"

	"github.com/badoux/checkmail"

	"github.com/optimode/mailcheck/internal/parse"
	"github.com/optimode/mailcheck/types"
)

// SyntaxChecker validates email syntax according to RFC 5321/5322
// with RFC 6531 (SMTPUTF8) and IDNA2008 internationalization support.
type SyntaxChecker struct{}

func NewSyntaxChecker() *SyntaxChecker {
	return &SyntaxChecker{}
}

func (c *SyntaxChecker) Check(_ context.Context, addr parse.Address) types.SyntaxCheck {
	if addr.Normalized == "" {
		return invalid("empty email address")
	}
	if !addr.Valid {
		return invalid("invalid email syntax")
	}

	// Length checks (RFC 5321)
	if len(addr.Normalized) > 254 {
		return invalid("email address exceeds 254 characters")
	}
	if len(addr.Local) > 64 {
		return invalid("local part exceeds 64 characters")
	}

	if !addr.Quoted {
		if err := validateLocal(addr.Local); err != "" {
			return invalid(err)
		}
	}

	// IDNA2008 validation already happened while parsing; the Unicode form
	// gives readable errors.
	if err := validateDomain(addr.DomainUnicode); err != "" {
		return invalid(err)
	}

	// Plain ASCII addresses also have to satisfy the stricter RFC 5322
	// dot-atom grammar.
	if !addr.Quoted && isASCII(addr.Normalized) {
		if err := checkmail.ValidateFormat(addr.Normalized); err != nil {
			return invalid("invalid email syntax")
		}
	}

	return types.SyntaxCheck{Valid: true}
}

func invalid(msg string) types.SyntaxCheck {
	return types.SyntaxCheck{Valid: false, Error: msg}
}

func isASCII(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] > unicode.MaxASCII {
			return false
		}
	}
	return true
}

// validateLocal validates an unquoted local part. Returns error text, or ""
// if ok.
func validateLocal(local string) string {
	if local == "" {
		return "local part is empty"
	}

	const asciiSpecial = "!#$%&'*+/=?^_`{|}~-."

	for _, ch := range local {
		if ch > unicode.MaxASCII {
			// RFC 6531: non-ASCII is allowed except control characters
			if unicode.IsControl(ch) {
				return "local part contains control character"
			}
			continue
		}
		if (ch >= 'a' && ch <= 'z') || (ch >= 'A' && ch <= 'Z') || (ch >= '0' && ch <= '9') {
			continue
		}
		if !strings.ContainsRune(asciiSpecial, ch) {
			return "local part contains invalid character: " + string(ch)
		}
	}

	if strings.HasPrefix(local, ".") || strings.HasSuffix(local, ".") {
		return "local part cannot start or end with a dot"
	}
	if strings.Contains(local, "..") {
		return "local part cannot contain consecutive dots"
	}
	return ""
}

// validateDomain validates the domain part (Unicode form). Returns error
// text, or "" if ok.
func validateDomain(domain string) string {
	if domain == "" {
		return "domain is empty"
	}

	// IP literals cannot be resolved through MX and are rejected outright.
	if strings.HasPrefix(domain, "[") {
		return "domain literals are not supported"
	}

	labels := strings.Split(domain, ".")
	if len(labels) < 2 {
		return "domain must have at least two labels"
	}

	for _, label := range labels {
		if label == "" {
			return "domain contains empty label (consecutive dots)"
		}
		if len(label) > 63 {
			return "domain label exceeds 63 characters"
		}
		if strings.HasPrefix(label, "-") || strings.HasSuffix(label, "-") {
			return "domain label cannot start or end with a hyphen"
		}
		for _, ch := range label {
			if !unicode.IsLetter(ch) && !unicode.IsDigit(ch) && ch != '-' {
				return "domain label contains invalid character: " + string(ch)
			}
		}
	}

	tld := labels[len(labels)-1]
	if strings.IndexFunc(tld, func(r rune) bool { return !unicode.IsDigit(r) }) < 0 {
		return "TLD cannot be all digits"
	}
	return ""
}
