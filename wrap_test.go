package typeset

import "testing"

// TestWrapModeString tests WrapMode.String method.
func TestWrapModeString(t *testing.T) {
	tests := []struct {
		mode WrapMode
		want string
	}{
		{WrapNone, "None"},
		{WrapWord, "Word"},
		{WrapChar, "Char"},
		{WrapMode(99), unknownStr},
	}

	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			got := tt.mode.String()
			if got != tt.want {
				t.Errorf("WrapMode(%d).String() = %q, want %q", tt.mode, got, tt.want)
			}
		})
	}
}

// TestBreakKindString tests BreakKind.String method.
func TestBreakKindString(t *testing.T) {
	tests := []struct {
		kind BreakKind
		want string
	}{
		{BreakAllowed, "Allowed"},
		{BreakMandatory, "Mandatory"},
		{BreakKind(99), unknownStr},
	}

	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			got := tt.kind.String()
			if got != tt.want {
				t.Errorf("BreakKind(%d).String() = %q, want %q", tt.kind, got, tt.want)
			}
		})
	}
}

// TestClassifyRune tests rune classification for shaping and breaking.
func TestClassifyRune(t *testing.T) {
	tests := []struct {
		name string
		r    rune
		want runeBehavior
	}{
		{"newline", '\n', runeLinebreak},
		{"carriage return", '\r', runeLinebreak},
		{"space", ' ', runeSpace},
		{"tab", '\t', runeTab},
		{"nul", '\x00', runeIgnore},
		{"bell", '\x07', runeIgnore},
		{"delete", '\x7f', runeIgnore},
		{"latin a", 'a', runeRegular},
		{"digit 1", '1', runeRegular},
		{"accented e", 'é', runeRegular},
		{"CJK ideograph", '一', runeRegular},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := classifyRune(tt.r)
			if got != tt.want {
				t.Errorf("classifyRune(%q) = %v, want %v", tt.r, got, tt.want)
			}
		})
	}
}

// BenchmarkClassifyRune benchmarks rune classification.
func BenchmarkClassifyRune(b *testing.B) {
	runes := []rune("The quick brown fox jumps over the lazy dog.")

	for b.Loop() {
		for _, r := range runes {
			_ = classifyRune(r)
		}
	}
}
