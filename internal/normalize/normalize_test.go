package normalize

import "testing"

func TestEmail(t *testing.T) {
	if got := Email("  USER@Example.COM "); got != "user@example.com" {
		t.Fatalf("Email normalization failed, got %q", got)
	}
}

func TestLang(t *testing.T) {
	cases := map[string]string{
		"EN":    "en",
		"fr-CA": "fr",
		"en_US": "en",
		" es ":  "es",
		"":      "en",
	}
	for in, want := range cases {
		if got := Lang(in); got != want {
			t.Fatalf("Lang(%q) = %q, want %q", in, got, want)
		}
	}
}
