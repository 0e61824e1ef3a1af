package parse_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/optimode/mailcheck/internal/parse"
)

func TestNew_ASCII(t *testing.T) {
	e := parse.New("user@example.com")
	assert.True(t, e.Valid)
	assert.Equal(t, "user", e.Local)
	assert.Equal(t, "example.com", e.Domain)
	assert.Equal(t, "example.com", e.DomainUnicode)
}

func TestNew_Whitespace(t *testing.T) {
	e := parse.New("  user@example.com  ")
	assert.True(t, e.Valid)
	assert.Equal(t, "user", e.Local)
}

func TestNew_Invalid(t *testing.T) {
	tests := []string{
		"",
		"noatsign",
		"@nodomain",
		"nolocal@",
	}
	for _, raw := range tests {
		e := parse.New(raw)
		assert.False(t, e.Valid, "expected invalid for %q", raw)
	}
}

func TestNew_IDN_UnicodeDomain(t *testing.T) {
	// Unicode domain should be converted to Punycode in Domain,
	// and kept as Unicode in DomainUnicode
	e := parse.New("user@münchen.de")
	assert.True(t, e.Valid)
	assert.Equal(t, "user", e.Local)
	assert.Equal(t, "xn--mnchen-3ya.de", e.Domain)
	assert.Equal(t, "münchen.de", e.DomainUnicode)
}

func TestNew_IDN_PunycodeDomain(t *testing.T) {
	// Already-Punycode domain should be kept as-is in Domain,
	// and decoded to Unicode in DomainUnicode
	e := parse.New("user@xn--mnchen-3ya.de")
	assert.True(t, e.Valid)
	assert.Equal(t, "xn--mnchen-3ya.de", e.Domain)
	assert.Equal(t, "münchen.de", e.DomainUnicode)
}

func TestNew_EAI_UnicodeLocal(t *testing.T) {
	// Unicode local part (RFC 6531 SMTPUTF8)
	e := parse.New("用户@example.com")
	assert.True(t, e.Valid)
	assert.Equal(t, "用户", e.Local)
	assert.Equal(t, "example.com", e.Domain)
}

func TestNew_EAI_BothUnicode(t *testing.T) {
	// Both Unicode local and domain
	e := parse.New("用户@münchen.de")
	assert.True(t, e.Valid)
	assert.Equal(t, "用户", e.Local)
	assert.Equal(t, "xn--mnchen-3ya.de", e.Domain)
	assert.Equal(t, "münchen.de", e.DomainUnicode)
}

func TestNew_IDN_JapaneseDomain(t *testing.T) {
	e := parse.New("user@例え.jp")
	assert.True(t, e.Valid)
	assert.Equal(t, "xn--r8jz45g.jp", e.Domain)
	assert.Equal(t, "例え.jp", e.DomainUnicode)
}

func TestNew_IDN_CyrillicDomain(t *testing.T) {
	e := parse.New("user@почта.рф")
	assert.True(t, e.Valid)
	assert.Equal(t, "xn--80a1acny.xn--p1ai", e.Domain)
	assert.Equal(t, "почта.рф", e.DomainUnicode)
}

func TestNew_DomainCaseNormalization(t *testing.T) {
	e := parse.New("user@EXAMPLE.COM")
	assert.True(t, e.Valid)
	assert.Equal(t, "example.com", e.Domain)
}

func TestNew_Subaddress(t *testing.T) {
	e := parse.New(" User+News@Example.com ")
	assert.True(t, e.Valid)
	assert.Equal(t, "user+news@example.com", e.Normalized)
	assert.Equal(t, "user+news", e.Local)
	assert.Equal(t, "user", e.Base)
	assert.Equal(t, "news", e.Tag)
	assert.Equal(t, "user+news@example.com", e.Email())
	assert.Equal(t, " User+News@Example.com ", e.Raw)
}

func TestNew_LeadingPlusIsNotTag(t *testing.T) {
	e := parse.New("+tag@example.com")
	assert.True(t, e.Valid)
	assert.Equal(t, "+tag", e.Base)
	assert.Empty(t, e.Tag)
}

func TestNew_QuotedLocal(t *testing.T) {
	e := parse.New(`"john+doe"@example.com`)
	assert.True(t, e.Valid)
	assert.True(t, e.Quoted)
	assert.Equal(t, "john+doe", e.Base)
	assert.Empty(t, e.Tag)
}

func TestNew_DisplayNameRejected(t *testing.T) {
	e := parse.New("John Doe <john@example.com>")
	assert.False(t, e.Valid)
	assert.Equal(t, "john doe <john@example.com>", e.Email())
}
