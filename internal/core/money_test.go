package core

import "testing"

func TestParseAmount(t *testing.T) {
	cases := []struct {
		in    string
		cents int64
	}{
		{"12.34", 1234},
		{"12,34", 1234},
		{"1.234,56", 123456},
		{"1234.56", 123456},
		{"R$ 1.234,56", 123456},
		{"$12.34", 1234},
		{"  300 ", 30000},
		{"0,5", 50},
		{"12.345", 1234}, // third decimal rounds half-up
		{"12.346", 1235},
		{"-10,00", -1000},
		{"", 0},
		{"abc", 0},
		{"1.2.3.4", 0}, // dots without comma: not a number
		{"--5", 0},
	}
	for _, tc := range cases {
		got := ParseAmount(tc.in)
		if got.Cents != tc.cents {
			t.Errorf("ParseAmount(%q) = %d, want %d", tc.in, got.Cents, tc.cents)
		}
	}
}

func TestFormatCents(t *testing.T) {
	cases := []struct {
		cents int64
		want  string
	}{
		{0, "0.00"},
		{5, "0.05"},
		{1234, "12.34"},
		{123456, "1234.56"},
		{-1000, "-10.00"},
	}
	for _, tc := range cases {
		if got := FormatCents(tc.cents); got != tc.want {
			t.Errorf("FormatCents(%d) = %q, want %q", tc.cents, got, tc.want)
		}
	}
}

func TestParseFormatRoundTrip(t *testing.T) {
	for _, cents := range []int64{1, 99, 100, 101, 123456789} {
		if got := ParseAmount(FormatCents(cents)); got.Cents != cents {
			t.Errorf("round trip %d -> %d", cents, got.Cents)
		}
	}
}

func TestMoneyValidate(t *testing.T) {
	if err := (Money{Cents: 1}).Validate(); err != nil {
		t.Fatalf("expected ok, got %v", err)
	}
	if err := (Money{Cents: 0}).Validate(); err == nil {
		t.Fatal("expected error for zero")
	}
	if err := (Money{Cents: -10}).Validate(); err == nil {
		t.Fatal("expected error for negative")
	}
}
