package model

import "testing"

func TestParseCents(t *testing.T) {
	tests := []struct {
		input string
		want  int64
	}{
		{"99.00", 9900},
		{"1234.56", 123456},
		{"0.01", 1},
		{"10", 1000},
		{"-3.50", -350},
		{"", 0},
		{"not-a-number", 0},
	}
	for _, tt := range tests {
		if got := ParseCents(tt.input); got != tt.want {
			t.Errorf("ParseCents(%q) = %d, want %d", tt.input, got, tt.want)
		}
	}
}

func TestFormatCents(t *testing.T) {
	tests := []struct {
		input int64
		want  string
	}{
		{9900, "99.00"},
		{1, "0.01"},
		{0, "0.00"},
		{-350, "-3.50"},
		{123456, "1234.56"},
	}
	for _, tt := range tests {
		if got := FormatCents(tt.input); got != tt.want {
			t.Errorf("FormatCents(%d) = %q, want %q", tt.input, got, tt.want)
		}
	}
}
