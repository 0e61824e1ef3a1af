// Package lookup provides the static reference data consumed by the
// verification pipeline: disposable domains, free mailbox providers, role
// prefixes and common domain typos.
//
// Every table sits behind a narrow interface so callers can refresh or
// replace the data without touching the pipeline.
package lookup

import (
	_ "embed"
	"strings"
	"sync"

	"github.com/optimode/mailcheck/internal/levenshtein"
)

// Set answers membership for a single key.
type Set interface {
	Contains(key string) bool
}

// Table is a Set that also returns a display name for the matched key.
type Table interface {
	Set
	Lookup(key string) (name string, ok bool)
}

// TypoSuggester proposes a corrected domain for a likely misspelling.
type TypoSuggester interface {
	Suggest(domain string) (suggested string, ok bool)
}

// Tables bundles the collaborators the attribute checks need.
type Tables struct {
	Disposable Table
	Free       Table
	Role       Table
	Typo       TypoSuggester
}

// Map is an in-memory Table keyed by lower-case strings.
type Map map[string]string

// Contains reports whether key (case-insensitive) is present.
func (m Map) Contains(key string) bool {
	_, ok := m[strings.ToLower(key)]
	return ok
}

// Lookup returns the display name stored for key.
func (m Map) Lookup(key string) (string, bool) {
	name, ok := m[strings.ToLower(key)]
	return name, ok
}

// ParseList builds a Map from newline separated entries. Blank lines and
// lines starting with '#' are skipped. Each entry names itself.
func ParseList(raw string) Map {
	m := make(Map)
	for _, line := range strings.Split(raw, "\n") {
		line = strings.ToLower(strings.TrimSpace(line))
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		m[line] = line
	}
	return m
}

//go:embed disposable.txt
var rawDisposable string

var (
	defaultOnce   sync.Once
	defaultTables Tables
)

// Default returns the built-in tables. They are built once and shared;
// Map values must not be mutated by callers.
func Default() Tables {
	defaultOnce.Do(func() {
		defaultTables = Tables{
			Disposable: ParseList(rawDisposable),
			Free:       freeProviders,
			Role:       rolePrefixes,
			Typo: &TypoTable{
				Exact:     commonTypos,
				Targets:   typoTargets,
				Known:     freeProviders,
				Threshold: 2,
			},
		}
	})
	return defaultTables
}

// TypoTable suggests corrections from an exact typo table first and then by
// edit distance against a short list of high-volume provider domains.
type TypoTable struct {
	Exact     map[string]string
	Targets   []string
	Known     Set // domains that are never reported as typos
	Threshold int // maximum edit distance for the fallback, 0 disables it
}

// Suggest implements TypoSuggester.
func (t *TypoTable) Suggest(domain string) (string, bool) {
	domain = strings.ToLower(domain)
	if s, ok := t.Exact[domain]; ok {
		return s, true
	}
	if t.Threshold <= 0 || (t.Known != nil && t.Known.Contains(domain)) {
		return "", false
	}
	// Only compare against targets with the same TLD: "hotmail.de" is a
	// real domain, not a misspelling of "hotmail.com".
	tld := domain[strings.LastIndexByte(domain, '.')+1:]
	var candidates []string
	for _, target := range t.Targets {
		if strings.HasSuffix(target, "."+tld) {
			candidates = append(candidates, target)
		}
	}
	return levenshtein.Closest(domain, candidates, t.Threshold)
}
