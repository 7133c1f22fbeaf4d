package core

import "testing"

func TestParseAmount(t *testing.T) {
	cases := []struct {
		in  string
		out string
		ok  bool
	}{
		{"1", "1", true},
		{"1.0", "1", true},
		{"1.23", "1.23", true},
		{"1,23", "1.23", true},
		{"0.01", "0.01", true},
		{"1.005", "1.01", true}, // half-up rounding
		{" 2.50 ", "2.5", true},
		{"-1", "", false},
		{"0", "", false},
		{"abc", "", false},
		{"1.2.3", "", false},
		{"1e3", "", false},
		{"", "", false},
	}
	for _, tc := range cases {
		got, err := ParseAmount(tc.in)
		if tc.ok {
			if err != nil || got.String() != tc.out {
				t.Fatalf("%q expected %s, got %s (err=%v)", tc.in, tc.out, got, err)
			}
		} else if err == nil {
			t.Fatalf("%q expected error", tc.in)
		}
	}
}

func TestParseSignedAmount(t *testing.T) {
	got, err := ParseSignedAmount("-42,10")
	if err != nil || got.String() != "-42.1" {
		t.Fatalf("expected -42.1, got %s (err=%v)", got, err)
	}
}

func TestParseBudget(t *testing.T) {
	for _, in := range []string{"", "none", "NONE", "0", "-10"} {
		b, err := ParseBudget(in)
		if err != nil || b != nil {
			t.Fatalf("%q expected no budget, got %v (err=%v)", in, b, err)
		}
	}
	b, err := ParseBudget("250")
	if err != nil || b == nil || b.String() != "250" {
		t.Fatalf("expected 250, got %v (err=%v)", b, err)
	}
	if _, err := ParseBudget("abc"); err == nil {
		t.Fatalf("expected error for garbage budget")
	}
}
