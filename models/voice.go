// Package models — Voice access modelleri.
package models

import "fmt"

// VoiceTokenResponse, ses kanalına katılım için client'a dönen yanıt.
// Token, harici medya servisinin (LiveKit) JWT'sidir; URL servis adresidir.
type VoiceTokenResponse struct {
	Token    string `json:"token"`
	URL      string `json:"url"`
	RoomName string `json:"room_name"`
}

// VoiceRoomName, (server, channel) çiftinden deterministik oda adı üretir.
// Harici medya servisi ile tek sözleşme bu string'dir — aynı çift her zaman
// aynı odaya düşer.
func VoiceRoomName(serverID, channelID string) string {
	return fmt.Sprintf("%s:%s", serverID, channelID)
}
