package sanitize

import "testing"

func TestCleanMasksWholeWords(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"single term", "I love Rust", "I love ***"},
		{"two terms", "I love Go and Rust", "I love *** and ***"},
		{"case-insensitive", "i love rUsT and PYTHON", "i love *** and ***"},
		{"term at start", "Python is fine", "*** is fine"},
		{"term at end", "have you tried Zig", "have you tried ***"},
		{"punctuation boundary", "Rust, Go, and Perl.", "***, ***, and ***."},
		{"multi-word term", "Visual Basic forever", "*** forever"},
		{"multi-word case-insensitive", "I write common lisp daily", "I write *** daily"},
		{"no denylisted terms", "hello there, lovely weather", "hello there, lovely weather"},
		{"empty input", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Clean(tt.input); got != tt.want {
				t.Errorf("Clean(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

// Substrings inside longer words must survive — the mask is word-boundary
// anchored, not a blind string replace.
func TestCleanLeavesSubstringsAlone(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{"term inside a word", "I trust you"},            // Rust inside trust
		{"term as prefix", "the Javanese gamelan"},       // Java inside Javanese
		{"term as suffix", "a quick segoe glance"},       // go inside segoe
		{"compound word", "the Adamant fortress"},        // Ada inside Adamant
		{"mask-adjacent word", "bashful but determined"}, // Bash inside bashful
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Clean(tt.input); got != tt.input {
				t.Errorf("Clean(%q) = %q, want input unchanged", tt.input, got)
			}
		})
	}
}

// The one term that gets a pass.
func TestCleanExemptsJavaScript(t *testing.T) {
	input := "JavaScript is the only language worth naming"
	if got := Clean(input); got != input {
		t.Errorf("Clean(%q) = %q, want JavaScript left unmasked", input, got)
	}
}

// Every denylisted term, standing alone as a whole word, must be fully
// masked — this is the property the denylist exists for.
func TestCleanMasksEveryDenylistedTerm(t *testing.T) {
	for _, term := range denylist {
		if got := Clean(term); got != Mask {
			t.Errorf("Clean(%q) = %q, want %q", term, got, Mask)
		}
	}
}

func TestCleanIsDeterministic(t *testing.T) {
	input := "Go Rust Go Rust Go"
	first := Clean(input)
	for i := 0; i < 10; i++ {
		if got := Clean(input); got != first {
			t.Fatalf("Clean is not deterministic: %q vs %q", got, first)
		}
	}
}
