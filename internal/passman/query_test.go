package passman

import (
	"reflect"
	"testing"

	"github.com/secureshell/passman/internal/domain"
)

func TestParseSearchTokens(t *testing.T) {
	tests := []struct {
		raw  string
		want []string
	}{
		{"", nil},
		{"   ", nil},
		{"GitHub", []string{"github"}},
		{"aws+prod", []string{"aws", "prod"}},
		{" mail  work+ ", []string{"mail", "work"}},
	}

	for _, tt := range tests {
		if got := ParseSearchTokens(tt.raw); !reflect.DeepEqual(got, tt.want) {
			t.Errorf("ParseSearchTokens(%q) = %v, want %v", tt.raw, got, tt.want)
		}
	}
}

func TestMatchesSearchTokens(t *testing.T) {
	entry := &domain.Entry{Service: "AWS-Prod", Username: "deploy", ServiceLink: "https://console.aws.amazon.com"}

	tests := []struct {
		query string
		want  bool
	}{
		{"", true},
		{"aws", true},
		{"aws+prod", true},
		{"deploy+amazon", true},
		{"aws+staging", false},
	}

	for _, tt := range tests {
		if got := MatchesSearchTokens(entry, ParseSearchTokens(tt.query)); got != tt.want {
			t.Errorf("MatchesSearchTokens(%q) = %v, want %v", tt.query, got, tt.want)
		}
	}
}

func TestManagerSearch(t *testing.T) {
	m, _ := newInitializedManager(t)

	for _, e := range []struct{ service, user string }{
		{"GitHub", "alice"},
		{"gitlab", "alice"},
		{"mail", "bob"},
	} {
		if err := m.AddEntry(e.service, e.user, "pw"); err != nil {
			t.Fatalf("AddEntry(%s) error = %v", e.service, err)
		}
	}

	if got, want := m.Search("git"), []string{"GitHub", "gitlab"}; !reflect.DeepEqual(got, want) {
		t.Errorf("Search(git) = %v, want %v", got, want)
	}
	if got, want := m.Search("alice+hub"), []string{"GitHub"}; !reflect.DeepEqual(got, want) {
		t.Errorf("Search(alice+hub) = %v, want %v", got, want)
	}
	if got := m.Search("nothing"); len(got) != 0 {
		t.Errorf("Search(nothing) = %v, want empty", got)
	}
	if got := m.Search(""); len(got) != 3 {
		t.Errorf("Search(\"\") = %v, want all", got)
	}
}
