// Package main — Handler katmanı başlatma.
//
// initHandlers, tüm HTTP handler'larını oluşturur.
// Her handler, ihtiyaç duyduğu service interface'lerini constructor'dan alır.
// Handler'lar "thin"dir — sadece HTTP parse + service call + response write.
package main

import (
	"github.com/veyra-chat/server/handlers"
	"github.com/veyra-chat/server/ws"
)

// Handlers, tüm handler instance'larını tutan container struct.
type Handlers struct {
	Auth       *handlers.AuthHandler
	Server     *handlers.ServerHandler
	Member     *handlers.MemberHandler
	Moderation *handlers.ModerationHandler
	Invite     *handlers.InviteHandler
	Channel    *handlers.ChannelHandler
	DM         *handlers.DMHandler
	Friendship *handlers.FriendshipHandler
	Voice      *handlers.VoiceHandler
	WS         *ws.Handler
}

// initHandlers, tüm handler'ları service dependency'leri ile oluşturur.
func initHandlers(svcs *Services, hub *ws.Hub) *Handlers {
	return &Handlers{
		Auth:       handlers.NewAuthHandler(svcs.Auth),
		Server:     handlers.NewServerHandler(svcs.Server, svcs.Audit),
		Member:     handlers.NewMemberHandler(svcs.Member),
		Moderation: handlers.NewModerationHandler(svcs.Moderation),
		Invite:     handlers.NewInviteHandler(svcs.Invite),
		Channel:    handlers.NewChannelHandler(svcs.Channel, svcs.Category),
		DM:         handlers.NewDMHandler(svcs.DM),
		Friendship: handlers.NewFriendshipHandler(svcs.Friendship),
		Voice:      handlers.NewVoiceHandler(svcs.Voice),
		WS:         ws.NewHandler(hub, svcs.Auth),
	}
}
