package summarizer

import (
	"strings"
	"testing"
)

func words(n int) string {
	w := make([]string, n)
	for i := range w {
		w[i] = "w"
	}
	return strings.Join(w, " ")
}

func TestFallback_Properties(t *testing.T) {
	cases := []struct {
		name string
		in   string
		want string
	}{
		{"empty", "", "..."},
		{"whitespace only", " \n\t ", "..."},
		{"short text keeps every word", "alpha beta", "alpha beta..."},
		{"collapses whitespace", "  alpha\n\nbeta\tgamma  ", "alpha beta gamma..."},
		{"exactly 100 tokens still gets ellipsis", words(100), words(100) + "..."},
		{"truncates to 100 tokens", words(250), words(100) + "..."},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := Fallback(tc.in); got != tc.want {
				t.Fatalf("Fallback(%q) = %q; want %q", tc.in, got, tc.want)
			}
		})
	}
}

func TestFallback_IsPrefixOfNormalizedInput(t *testing.T) {
	in := "The team agreed to ship on Friday.  Alice owns QA;\nBob owns release notes."
	got := Fallback(in)
	body := strings.TrimSuffix(got, "...")
	if !strings.HasPrefix(strings.Join(strings.Fields(in), " "), body) {
		t.Fatalf("fallback %q is not a prefix of the normalized input", got)
	}
	if n := len(strings.Fields(body)); n > 100 {
		t.Fatalf("fallback has %d tokens", n)
	}
}

func TestBuildPrompt(t *testing.T) {
	got := BuildPrompt("Summarize.", "notes")
	if got != "Summarize.\n\nText to summarize:\nnotes" {
		t.Fatalf("unexpected prompt %q", got)
	}
}
