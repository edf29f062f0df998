package models

import "testing"

func TestParseEnums(t *testing.T) {
	for _, c := range Categories() {
		if got, err := ParseCategory(string(c)); err != nil || got != c {
			t.Errorf("ParseCategory(%q) = %q, %v", c, got, err)
		}
	}
	for _, g := range GenderLimits() {
		if got, err := ParseGenderLimit(string(g)); err != nil || got != g {
			t.Errorf("ParseGenderLimit(%q) = %q, %v", g, got, err)
		}
	}
	for _, s := range Statuses() {
		if got, err := ParseStatus(string(s)); err != nil || got != s {
			t.Errorf("ParseStatus(%q) = %q, %v", s, got, err)
		}
	}

	// Enums are case-sensitive and closed.
	for _, bad := range []string{"", "Soccer", "chess"} {
		if _, err := ParseCategory(bad); err == nil {
			t.Errorf("ParseCategory(%q) should fail", bad)
		}
	}
	if _, err := ParseGenderLimit("MALE"); err == nil {
		t.Error("ParseGenderLimit(MALE) should fail")
	}
	if _, err := ParseStatus("in-progress"); err == nil {
		t.Error("ParseStatus(in-progress) should fail")
	}
}

func TestDefaultsAreValid(t *testing.T) {
	if !CategoryDefault.Valid() || !GenderLimitDefault.Valid() || !StatusDefault.Valid() {
		t.Error("defaults must be members of their enums")
	}
}
