package models

import "testing"

func TestChannelPermissionMatrix(t *testing.T) {
	channel := &Channel{
		Member: ChannelFlags{
			View:         true,
			Access:       false,
			SendMessages: true,
			SendLinks:    false,
		},
		Moderator: ChannelFlags{
			View:           true,
			Access:         true,
			SendMessages:   true,
			SendLinks:      true,
			DeleteMessages: true,
		},
	}

	tests := []struct {
		name  string
		check func(Role) bool
		role  Role
		want  bool
	}{
		{"admin view without any flag", channel.CanView, RoleAdmin, true},
		{"admin access despite member flag off", channel.CanAccess, RoleAdmin, true},
		{"admin delete messages implicitly", channel.CanDeleteMessages, RoleAdmin, true},
		{"moderator access via moderator flag", channel.CanAccess, RoleModerator, true},
		{"moderator links via moderator flag", channel.CanSendLinks, RoleModerator, true},
		{"member view allowed", channel.CanView, RoleMember, true},
		{"member access denied", channel.CanAccess, RoleMember, false},
		{"member links denied", channel.CanSendLinks, RoleMember, false},
		{"member delete denied", channel.CanDeleteMessages, RoleMember, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.check(tt.role); got != tt.want {
				t.Errorf("got %v, want %v", got, tt.want)
			}
		})
	}
}

func TestDefaultChannelFlags(t *testing.T) {
	member := DefaultChannelFlags(RoleMember)
	if !member.View || !member.Access || !member.SendMessages || !member.SendFiles || !member.SendLinks {
		t.Error("default member flags should allow everything except delete")
	}
	if member.DeleteMessages {
		t.Error("members should not delete others' messages by default")
	}

	mod := DefaultChannelFlags(RoleModerator)
	if !mod.DeleteMessages {
		t.Error("moderators should delete messages by default")
	}
}

func TestCreateChannelRequestValidate(t *testing.T) {
	tests := []struct {
		name    string
		req     CreateChannelRequest
		wantErr bool
	}{
		{"valid text channel", CreateChannelRequest{Name: "genel", Type: "text"}, false},
		{"valid voice channel", CreateChannelRequest{Name: "Sohbet Odası", Type: "voice"}, false},
		{"empty name", CreateChannelRequest{Name: "   ", Type: "text"}, true},
		{"bad type", CreateChannelRequest{Name: "genel", Type: "video"}, true},
		{"invalid characters", CreateChannelRequest{Name: "genel#1", Type: "text"}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.req.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}
