package styles

import (
	"testing"

	"github.com/charmbracelet/lipgloss"
	"github.com/stretchr/testify/assert"
)

func TestTruncate(t *testing.T) {
	tests := []struct {
		name  string
		in    string
		width int
		want  string
	}{
		{name: "fits", in: "drill", width: 10, want: "drill"},
		{name: "cut", in: "hammer drill", width: 7, want: "hammer…"},
		{name: "persian", in: "پیچ گوشتی", width: 4, want: "پیچ…"},
		{name: "zero", in: "drill", width: 0, want: ""},
		{name: "one", in: "drill", width: 1, want: "d"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Truncate(tt.in, tt.width)
			assert.Equal(t, tt.want, got)
			assert.LessOrEqual(t, lipgloss.Width(got), max(tt.width, 0))
		})
	}
}

func TestPad(t *testing.T) {
	assert.Equal(t, "ab  ", Pad("ab", 4))
	assert.Equal(t, "abcdef", Pad("abcdef", 4))
	assert.Equal(t, 5, lipgloss.Width(Pad("پیچ", 5)))
}
