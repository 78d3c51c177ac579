package licensecode

import (
	"strings"
	"testing"
)

func TestParseCharset(t *testing.T) {
	tests := []struct {
		input    string
		expected string
		wantErr  bool
	}{
		{"abc", "abc", false},
		{"a-c", "abc", false},
		{"1-3", "123", false},
		{"a-c,1-3", "abc123", false},
		{"A-C", "ABC", false},
		{"a-c,x", "abcx", false},
		{"z-a", "", true},
		{"", "", true},
	}

	for _, tt := range tests {
		got, err := ParseCharset(tt.input)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseCharset(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			continue
		}
		if !tt.wantErr && got != tt.expected {
			t.Errorf("ParseCharset(%q) = %q, want %q", tt.input, got, tt.expected)
		}
	}

	got, _ := ParseCharset(CharsetSpec)
	if len(got) != 36 {
		t.Errorf("ParseCharset(%q) returned %d chars, want 36", CharsetSpec, len(got))
	}
}

func TestGenerate(t *testing.T) {
	for i := 0; i < 200; i++ {
		code, err := Generate()
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !Valid(code) {
			t.Fatalf("generated code %q is not canonical", code)
		}
	}
}

func TestGenerateWith(t *testing.T) {
	code, err := GenerateWith("A", 2, 3, "#")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if code != "AAA#AAA" {
		t.Errorf("expected AAA#AAA, got %s", code)
	}

	parsed, _ := ParseCharset("1-1")
	code, _ = GenerateWith(parsed, 1, 5, "-")
	if code != "11111" {
		t.Errorf("expected all 1s, got %s", code)
	}

	if _, err := GenerateWith("", 3, 4, "-"); err == nil {
		t.Error("expected error for empty charset")
	}
	if _, err := GenerateWith("AB", 0, 4, "-"); err == nil {
		t.Error("expected error for zero groups")
	}
}

func TestValid(t *testing.T) {
	valid := []string{"AB12-CD34-EF56", "0000-0000-0000", "ZZZZ-9999-A1B2"}
	invalid := []string{"", "ab12-cd34-ef56", "AB12CD34EF56", "AB12-CD34-EF5", "AB12-CD34-EF56-", "AB12_CD34_EF56", strings.Repeat("A", 14)}

	for _, c := range valid {
		if !Valid(c) {
			t.Errorf("Valid(%q) = false, want true", c)
		}
	}
	for _, c := range invalid {
		if Valid(c) {
			t.Errorf("Valid(%q) = true, want false", c)
		}
	}
}
