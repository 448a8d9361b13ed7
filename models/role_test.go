package models

import "testing"

func TestRoleAllowed(t *testing.T) {
	tests := []struct {
		name             string
		role             Role
		moderatorAllowed bool
		memberAllowed    bool
		want             bool
	}{
		{"admin always allowed", RoleAdmin, false, false, true},
		{"moderator follows moderator flag", RoleModerator, true, false, true},
		{"moderator denied when flag off", RoleModerator, false, true, false},
		{"member follows member flag", RoleMember, false, true, true},
		{"member denied when flag off", RoleMember, true, false, false},
		{"unknown role never allowed", Role("ghost"), true, true, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tt.role.Allowed(tt.moderatorAllowed, tt.memberAllowed)
			if got != tt.want {
				t.Errorf("Allowed(%v, %v) = %v, want %v", tt.moderatorAllowed, tt.memberAllowed, got, tt.want)
			}
		})
	}
}

func TestRoleValid(t *testing.T) {
	for _, r := range []Role{RoleAdmin, RoleModerator, RoleMember} {
		if !r.Valid() {
			t.Errorf("%q should be valid", r)
		}
	}
	for _, r := range []Role{"", "owner", "ADMIN"} {
		if Role(r).Valid() {
			t.Errorf("%q should be invalid", r)
		}
	}
}

func TestRoleElevated(t *testing.T) {
	if !RoleAdmin.Elevated() || !RoleModerator.Elevated() {
		t.Error("admin and moderator should be elevated")
	}
	if RoleMember.Elevated() {
		t.Error("member should not be elevated")
	}
}

func TestMemberCapabilityFlags(t *testing.T) {
	// Admin, flag'lerden bağımsız her capability'ye sahip.
	admin := &ServerMember{Role: RoleAdmin}
	if !admin.CanBanUsers() || !admin.CanRemoveMembers() || !admin.CanManageInvites() {
		t.Error("admin should hold every capability implicitly")
	}

	// Moderator sadece açık flag'lerini taşır.
	mod := &ServerMember{Role: RoleModerator, Flags: ModeratorFlags{CanBanUsers: true}}
	if !mod.CanBanUsers() {
		t.Error("moderator with ban flag should be able to ban")
	}
	if mod.CanTimeoutVoice() || mod.CanRemoveMembers() {
		t.Error("moderator without a flag should not hold that capability")
	}

	// Member için flag'ler anlamsız — hepsi kapalı.
	member := &ServerMember{Role: RoleMember, Flags: ModeratorFlags{CanBanUsers: true}}
	if member.CanBanUsers() {
		t.Error("member should never hold moderation capabilities")
	}
}
