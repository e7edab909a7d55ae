package passman

import (
	"sort"
	"strings"
	"unicode"

	"github.com/secureshell/passman/internal/domain"
)

// ParseSearchTokens splits the raw search string into lower-cased tokens.
// Tokens are delimited by '+' or any whitespace character.
func ParseSearchTokens(raw string) []string {
	fields := strings.FieldsFunc(strings.TrimSpace(raw), func(r rune) bool {
		return unicode.IsSpace(r) || r == '+'
	})
	if len(fields) == 0 {
		return nil
	}

	tokens := make([]string, 0, len(fields))
	for _, field := range fields {
		tokens = append(tokens, strings.ToLower(field))
	}
	return tokens
}

// MatchesSearchTokens reports whether the entry satisfies all search tokens.
// Each token must be contained in the service, username or link.
func MatchesSearchTokens(entry *domain.Entry, tokens []string) bool {
	if len(tokens) == 0 || entry == nil {
		return true
	}

	service := domain.NormalizedService(entry.Service)
	username := strings.ToLower(entry.Username)
	link := strings.ToLower(entry.ServiceLink)

	for _, token := range tokens {
		if strings.Contains(service, token) ||
			strings.Contains(username, token) ||
			strings.Contains(link, token) {
			continue
		}
		return false
	}
	return true
}

// Search returns the sorted services whose entry matches every token of query.
// An empty query matches everything.
func (m *Manager) Search(query string) []string {
	tokens := ParseSearchTokens(query)

	var services []string
	for k, e := range m.entries {
		if MatchesSearchTokens(e, tokens) {
			services = append(services, k)
		}
	}
	sort.Strings(services)
	return services
}
