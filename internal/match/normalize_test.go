package match

import "testing"

func TestNormalize(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"lowercases", "Django REST", "django rest"},
		{"commas become spaces", "go,python,sql", "go python sql"},
		{"collapses whitespace", "a\t b\n\n c", "a b c"},
		{"strips unsafe chars", "c@t *and* d$g", "ct and dg"},
		{"keeps allowed punctuation", "ci/cd; node.js (v18)!", "ci/cd; node.js (v18)!"},
		{"splits glued words", "JohnSmith worksAt AcmeCorp", "john smith works at acme corp"},
		{"trims", "  padded  ", "padded"},
		{"empty", "", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Normalize(tt.input); got != tt.want {
				t.Errorf("Normalize(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestNormalizeIdempotent(t *testing.T) {
	inputs := []string{
		"John Doe is a software developer with 5 years of experience in Django, Python, and REST APIs.",
		"SeniorBackendEngineer,remote-first TEAM",
		"  messy\t\ninput,, with;; artifacts  ",
		"",
	}
	for _, in := range inputs {
		once := Normalize(in)
		twice := Normalize(once)
		if once != twice {
			t.Errorf("Normalize not idempotent for %q: %q != %q", in, once, twice)
		}
	}
}
