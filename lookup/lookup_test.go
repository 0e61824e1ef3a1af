package lookup_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/optimode/mailcheck/lookup"
)

func TestDefault_Disposable(t *testing.T) {
	tables := lookup.Default()

	assert.True(t, tables.Disposable.Contains("mailinator.com"))
	assert.True(t, tables.Disposable.Contains("YOPMAIL.COM"))
	assert.False(t, tables.Disposable.Contains("gmail.com"))

	name, ok := tables.Disposable.Lookup("guerrillamail.com")
	assert.True(t, ok)
	assert.Equal(t, "guerrillamail.com", name)
}

func TestDefault_FreeAndRole(t *testing.T) {
	tables := lookup.Default()

	name, ok := tables.Free.Lookup("gmail.com")
	assert.True(t, ok)
	assert.Equal(t, "Gmail", name)
	assert.False(t, tables.Free.Contains("example.com"))

	role, ok := tables.Role.Lookup("info")
	assert.True(t, ok)
	assert.Equal(t, "info", role)

	role, ok = tables.Role.Lookup("no-reply")
	assert.True(t, ok)
	assert.Equal(t, "noreply", role)

	assert.False(t, tables.Role.Contains("jane"))
}

func TestTypoTable_Suggest(t *testing.T) {
	typos := lookup.Default().Typo

	tests := []struct {
		domain string
		want   string
		ok     bool
	}{
		{"gmai.com", "gmail.com", true},
		{"gmail.co", "gmail.com", true},
		{"yahooo.com", "yahoo.com", true},
		{"outlook.cm", "", false},        // different TLD, no table entry
		{"gmaik.com", "gmail.com", true}, // edit distance fallback
		{"hotmail.de", "", false},        // real domain, different TLD
		{"gmail.com", "", false},
		{"email.com", "", false},
		{"example.com", "", false},
	}
	for _, tt := range tests {
		t.Run(tt.domain, func(t *testing.T) {
			got, ok := typos.Suggest(tt.domain)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseList(t *testing.T) {
	m := lookup.ParseList("# comment\n\nFoo.com\n  bar.org  \n")
	assert.Len(t, m, 2)
	assert.True(t, m.Contains("foo.com"))
	assert.True(t, m.Contains("BAR.ORG"))
}
