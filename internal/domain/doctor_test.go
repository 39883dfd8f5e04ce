package domain

import (
	"testing"
	"time"
)

func TestParseSpecialty(t *testing.T) {
	tests := []struct {
		raw  string
		want Specialty
		ok   bool
	}{
		{"Dermatology", SpecialtyDermatology, true},
		{"Cardiology", SpecialtyCardiology, true},
		{"Eye", SpecialtyEye, true},
		{"GeneralSurgery", SpecialtyGeneralSurgery, true},
		{"dermatology", "", false},
		{"Neurology", "", false},
		{"", "", false},
	}
	for _, tt := range tests {
		got, ok := ParseSpecialty(tt.raw)
		if got != tt.want || ok != tt.ok {
			t.Errorf("ParseSpecialty(%q) = (%q, %v), want (%q, %v)", tt.raw, got, ok, tt.want, tt.ok)
		}
	}
}

func TestSessionExpired(t *testing.T) {
	now := time.Now()
	session := &Session{ExpiresAt: now.Add(time.Hour)}
	if session.Expired(now) {
		t.Fatal("session with future expiry reported expired")
	}
	if !session.Expired(now.Add(2 * time.Hour)) {
		t.Fatal("session past expiry reported live")
	}
}
