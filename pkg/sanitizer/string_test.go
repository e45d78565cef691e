package sanitizer

import "testing"

func TestTrimAndNormalize(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"empty", "", ""},
		{"only spaces", "   ", ""},
		{"simple trim", "  projector  ", "projector"},
		{"collapse inner whitespace", "meeting \t room\n A", "meeting room A"},
		{"control characters stripped", "lab\x00\x07 bench", "lab bench"},
		{"idempotent", "meeting room A", "meeting room A"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := TrimAndNormalize(tt.input)
			if got != tt.expected {
				t.Errorf("TrimAndNormalize(%q) = %q, want %q", tt.input, got, tt.expected)
			}
			if again := TrimAndNormalize(got); again != got {
				t.Errorf("not idempotent: %q -> %q", got, again)
			}
		})
	}
}

func TestNormalizeAnnotation(t *testing.T) {
	if got := NormalizeAnnotation("  weekly   maintenance  ", 0); got != "weekly maintenance" {
		t.Errorf("unexpected result: %q", got)
	}
	if got := NormalizeAnnotation("abcdefgh", 5); got != "abcde" {
		t.Errorf("expected cap at 5 runes, got %q", got)
	}
}
