package domain

import "testing"

func TestParseAmount(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    int64
		wantErr bool
	}{
		{name: "whole amount", input: "150", want: 15000},
		{name: "two decimals", input: "1234.50", want: 123450},
		{name: "one decimal", input: "9.5", want: 950},
		{name: "leading dot", input: ".75", want: 75},
		{name: "trailing dot", input: "12.", want: 1200},
		{name: "zero", input: "0", want: 0},
		{name: "negative carries sign", input: "-3.25", want: -325},
		{name: "surrounding spaces", input: "  42.00 ", want: 4200},
		{name: "empty", input: "", wantErr: true},
		{name: "three decimals", input: "1.005", wantErr: true},
		{name: "not a number", input: "abc", wantErr: true},
		{name: "lone dot", input: ".", wantErr: true},
		{name: "sign inside fraction", input: "1.-5", wantErr: true},
		{name: "double sign", input: "--3", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseAmount(tt.input)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("expected error, got %d", got)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.want {
				t.Fatalf("expected %d, got %d", tt.want, got)
			}
		})
	}
}

func TestFormatAmount(t *testing.T) {
	tests := []struct {
		minor int64
		want  string
	}{
		{minor: 123450, want: "1234.50"},
		{minor: 5, want: "0.05"},
		{minor: 0, want: "0.00"},
		{minor: -325, want: "-3.25"},
	}

	for _, tt := range tests {
		if got := FormatAmount(tt.minor); got != tt.want {
			t.Fatalf("FormatAmount(%d) = %q, want %q", tt.minor, got, tt.want)
		}
	}
}

func TestParseFormatRoundTrip(t *testing.T) {
	for _, s := range []string{"0.00", "1.05", "99999.99"} {
		minor, err := ParseAmount(s)
		if err != nil {
			t.Fatalf("ParseAmount(%q) failed: %v", s, err)
		}
		if got := FormatAmount(minor); got != s {
			t.Fatalf("round trip of %q produced %q", s, got)
		}
	}
}
