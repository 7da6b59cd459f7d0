package metrics

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// Features holds basic local text features derived from an input string.
type Features struct {
	Bytes     int
	Runes     int
	Words     int
	Lines     int
	Digits    int
	Operators int
}

// CountFeatures computes byte, rune, word, line, digit and arithmetic operator
// counts for the input string.
func CountFeatures(s string) Features {
	f := Features{
		Bytes: len(s),
		Runes: utf8.RuneCountInString(s),
		Words: countWords(s),
		Lines: countLines(s),
	}
	for _, r := range s {
		switch {
		case unicode.IsDigit(r):
			f.Digits++
		case strings.ContainsRune(operators, r):
			f.Operators++
		}
	}
	return f
}

// operators are the arithmetic symbols a student is likely to type, including
// the typographic ones.
const operators = "+-*/%^=×÷−²³√"

// LooksMathematical reports whether s carries any numeric or symbolic content.
// It is a cheap pre-filter and knows nothing about words.
func (f Features) LooksMathematical() bool {
	return f.Digits > 0 || f.Operators > 0
}

// countWords counts words split on Unicode whitespace.
func countWords(s string) int {
	return len(strings.Fields(s))
}

// countLines returns 0 for empty strings; otherwise 1 plus the number of '\n' runes.
func countLines(s string) int {
	if s == "" {
		return 0
	}
	return 1 + strings.Count(s, "\n")
}
