package models

import (
	"testing"
	"time"
)

func TestRestrictionIsActiveAt(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	past := now.Add(-time.Hour)
	future := now.Add(time.Hour)

	tests := []struct {
		name        string
		restriction ServerRestriction
		want        bool
	}{
		{"permanent active", ServerRestriction{}, true},
		{"future expiry active", ServerRestriction{ExpiresAt: &future}, true},
		{"past expiry inactive", ServerRestriction{ExpiresAt: &past}, false},
		{"expiry exactly now inactive", ServerRestriction{ExpiresAt: &now}, false},
		{"revoked inactive", ServerRestriction{RevokedAt: &past}, false},
		{"revoked wins over future expiry", ServerRestriction{RevokedAt: &past, ExpiresAt: &future}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.restriction.IsActiveAt(now); got != tt.want {
				t.Errorf("IsActiveAt = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestClampTimeoutMinutes(t *testing.T) {
	tests := []struct {
		in   int
		want int
	}{
		{-5, MinTimeoutMinutes},
		{0, MinTimeoutMinutes},
		{1, 1},
		{60, 60},
		{4320, 4320},
		{99999, MaxTimeoutMinutes},
	}

	for _, tt := range tests {
		if got := ClampTimeoutMinutes(tt.in); got != tt.want {
			t.Errorf("ClampTimeoutMinutes(%d) = %d, want %d", tt.in, got, tt.want)
		}
	}
}
