package models

import "testing"

func TestAllowsAssetAction(t *testing.T) {
	server := &Server{Policy: ServerPolicy{AllowSoundUpload: true}}

	tests := []struct {
		name   string
		action AssetAction
		role   Role
		want   bool
	}{
		{"admin always allowed", AssetEmojiCreate, RoleAdmin, true},
		{"member allowed when policy open", AssetSoundUpload, RoleMember, true},
		{"moderator shares the same flag", AssetSoundUpload, RoleModerator, true},
		{"member denied when policy closed", AssetStickerCreate, RoleMember, false},
		{"unknown action denied even for admin", AssetAction("bilinmeyen"), RoleAdmin, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := server.AllowsAssetAction(tt.action, tt.role); got != tt.want {
				t.Errorf("AllowsAssetAction(%s, %s) = %v, want %v", tt.action, tt.role, got, tt.want)
			}
		})
	}
}

func TestAssetActionValid(t *testing.T) {
	for _, action := range []AssetAction{AssetSoundUpload, AssetSoundDelete, AssetStickerCreate, AssetEmojiCreate, AssetCrossServerSound} {
		if !action.Valid() {
			t.Errorf("%s should be valid", action)
		}
	}
	if AssetAction("bilinmeyen").Valid() {
		t.Error("unknown action should be invalid")
	}
}

func TestSettingsRequestTierDetection(t *testing.T) {
	name := "ad"
	allow := true
	banner := "url"

	ownerOnly := &UpdateServerSettingsRequest{Name: &name}
	if !ownerOnly.TouchesOwnerFields() || ownerOnly.TouchesPolicyFields() || ownerOnly.TouchesBannerFields() {
		t.Error("name should be an owner-only field")
	}

	policy := &UpdateServerSettingsRequest{AllowCrossServerSounds: &allow}
	if policy.TouchesOwnerFields() || !policy.TouchesPolicyFields() {
		t.Error("cross-server sounds should be a policy field")
	}

	bannerReq := &UpdateServerSettingsRequest{BannerURL: &banner}
	if bannerReq.TouchesOwnerFields() || bannerReq.TouchesPolicyFields() || !bannerReq.TouchesBannerFields() {
		t.Error("banner should only touch the banner tier")
	}
}
