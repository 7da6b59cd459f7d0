package metrics_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/petasbytes/mathtutor/internal/metrics"
)

func TestCountFeatures(t *testing.T) {
	cases := map[string]struct {
		in   string
		want metrics.Features
	}{
		"empty": {
			in:   "",
			want: metrics.Features{},
		},
		"plain question": {
			in:   "what is pi",
			want: metrics.Features{Bytes: 10, Runes: 10, Words: 3, Lines: 1},
		},
		"expression": {
			in:   "2*3+5",
			want: metrics.Features{Bytes: 5, Runes: 5, Words: 1, Lines: 1, Digits: 3, Operators: 2},
		},
		"spanish accents": {
			in:   "¿Cuánto es 12 ÷ 4?",
			want: metrics.Features{Bytes: 21, Runes: 18, Words: 5, Lines: 1, Digits: 3, Operators: 1},
		},
		"typographic equation": {
			in:   "x² − 4 = 0",
			want: metrics.Features{Bytes: 13, Runes: 10, Words: 5, Lines: 1, Digits: 2, Operators: 3},
		},
		"system of lines": {
			in:   "x + y = 3\nx - y = 1\n",
			want: metrics.Features{Bytes: 20, Runes: 20, Words: 10, Lines: 3, Digits: 2, Operators: 4},
		},
		"crlf and tabs": {
			in:   "a\r\n\tb",
			want: metrics.Features{Bytes: 5, Runes: 5, Words: 2, Lines: 2},
		},
		"nbsp splits words": {
			in:   "10\u00a0%",
			want: metrics.Features{Bytes: 5, Runes: 4, Words: 2, Lines: 1, Digits: 2, Operators: 1},
		},
		"zero width space does not split": {
			in:   "ab\u200bcd",
			want: metrics.Features{Bytes: 7, Runes: 5, Words: 1, Lines: 1},
		},
		"emoji": {
			in:   "\U0001F9EE",
			want: metrics.Features{Bytes: 4, Runes: 1, Words: 1, Lines: 1},
		},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			assert.Equal(t, tc.want, metrics.CountFeatures(tc.in))
		})
	}
}

func TestLooksMathematical(t *testing.T) {
	assert.True(t, metrics.CountFeatures("2*3+5").LooksMathematical())
	assert.True(t, metrics.CountFeatures("√x").LooksMathematical())
	assert.False(t, metrics.CountFeatures("What is the capital of France?").LooksMathematical())
	assert.False(t, metrics.CountFeatures("").LooksMathematical())
}
