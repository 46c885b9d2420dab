// Package sanitize scrubs guestbook messages against a fixed denylist.
//
// THE HOUSE RULE:
// This guestbook masks the name of every programming language and ecosystem
// mentioned in a message — every one except JavaScript, which gets a pass.
// (A joke inherited from the first version of this guestbook. Yes, that means
// "Go" itself is masked. No, we will not be taking questions.)
//
// The denylist is static data compiled into the binary, so there is no
// injection risk from user input — but the terms are still escaped with
// regexp.QuoteMeta before the pattern is built, so adding a term with a
// special character later cannot silently break matching.
package sanitize

import (
	"regexp"
	"strings"
)

// Mask replaces each denylisted term wherever it appears as a whole word.
const Mask = "***"

// denylist holds the masked terms. Matching is whole-word and
// case-insensitive; multi-word terms match as contiguous word sequences.
//
// Word-boundary anchoring (\b) means "Rust" inside "trust" or "Java" inside
// "Javanese" is left alone.
var denylist = []string{
	"Go",
	"Golang",
	"Rust",
	"Python",
	"Java",
	"Kotlin",
	"Scala",
	"Groovy",
	"Clojure",
	"Ruby",
	"Perl",
	"PHP",
	"Swift",
	"Dart",
	"Elixir",
	"Erlang",
	"Haskell",
	"OCaml",
	"Lisp",
	"Scheme",
	"Racket",
	"Fortran",
	"Cobol",
	"Pascal",
	"Delphi",
	"Ada",
	"Prolog",
	"Smalltalk",
	"Lua",
	"Julia",
	"Zig",
	"Nim",
	"Crystal",
	"Elm",
	"PureScript",
	"ReasonML",
	"CoffeeScript",
	"TypeScript",
	"AssemblyScript",
	"WebAssembly",
	"Visual Basic",
	"Common Lisp",
	"Emacs Lisp",
	"Standard ML",
	"Matlab",
	"Octave",
	"Basic",
	"Tcl",
	"Rexx",
	"Forth",
	"APL",
	"Verilog",
	"VHDL",
	"Solidity",
	"Bash",
	"Powershell",
	"Node",
	"Deno",
	"Bun",
	"Rails",
	"Django",
	"Laravel",
	"Spring",
	// JavaScript is conspicuously absent.
}

// pattern matches any denylisted term as a whole word, case-insensitively.
//
// PATTERN CONSTRUCTION:
// We build one alternation — \b(?:term1|term2|...)\b — and compile it once at
// package init. regexp.MustCompile panics on a bad pattern, which is the
// right behaviour for a pattern built from compile-time data: if the list is
// broken, the program should not start.
var pattern = regexp.MustCompile(`(?i)\b(?:` + alternation(denylist) + `)\b`)

func alternation(terms []string) string {
	quoted := make([]string, len(terms))
	for i, term := range terms {
		quoted[i] = regexp.QuoteMeta(term)
	}
	return strings.Join(quoted, "|")
}

// Clean returns text with every whole-word, case-insensitive occurrence of a
// denylisted term replaced by the mask. Pure function: no side effects,
// deterministic for a given input.
func Clean(text string) string {
	return pattern.ReplaceAllString(text, Mask)
}
