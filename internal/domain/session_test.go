package domain_test

import (
	"strings"
	"testing"

	"github.com/educhat-ai/educhat/internal/domain"
)

func TestSessionTitle(t *testing.T) {
	tests := []struct {
		name  string
		first string
		want  string
	}{
		{"short", "What is photosynthesis?", "What is photosynthesis?"},
		{"trimmed", "  spaced out  ", "spaced out"},
		{"exactly fifty", strings.Repeat("a", 50), strings.Repeat("a", 50)},
		{"truncated", strings.Repeat("a", 60), strings.Repeat("a", 47) + "..."},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := domain.SessionTitle(tt.first); got != tt.want {
				t.Errorf("SessionTitle(%q) = %q, want %q", tt.first, got, tt.want)
			}
		})
	}
}

func TestSessionTitle_MultibyteRunes(t *testing.T) {
	first := strings.Repeat("ü", 60)
	got := domain.SessionTitle(first)
	want := strings.Repeat("ü", 47) + "..."
	if got != want {
		t.Errorf("expected rune-aware truncation, got %q", got)
	}
}
