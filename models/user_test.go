package models

import "testing"

func TestNormalizeUsername(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"  Ayse  ", "ayse"},
		{"MEHMET", "mehmet"},
		{"zeynep", "zeynep"},
	}
	for _, tt := range tests {
		if got := NormalizeUsername(tt.in); got != tt.want {
			t.Errorf("NormalizeUsername(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestHasRealCredential(t *testing.T) {
	real := &User{PasswordHash: "$2a$10$somethinghashed"}
	if !real.HasRealCredential() {
		t.Error("bcrypt hash should count as a real credential")
	}

	placeholder := &User{PasswordHash: PasswordSentinel}
	if placeholder.HasRealCredential() {
		t.Error("sentinel hash should not count as a real credential")
	}

	empty := &User{}
	if empty.HasRealCredential() {
		t.Error("empty hash should not count as a real credential")
	}
}
