// Package ws, WebSocket bağlantı yönetimi ve gerçek zamanlı event dağıtımını sağlar.
//
// Mimari:
// - Hub: Tüm bağlantıları yöneten merkezi yapı
// - Client: Her WebSocket bağlantısını temsil eder
// - Event: Client-server arası iletilen mesaj formatı
//
// Event dağıtımı teslimat garantisi değildir: bağlı olmayan client event'i
// kaçırır, state'in kaynağı her zaman HTTP API'dir.
package ws

// Event, WebSocket üzerinden iletilen bir mesajı temsil eder.
//
// Seq, her outbound event'e verilen artan sayıdır — client eksik event
// tespiti için takip eder (seq 5'ten sonra 7 gelirse 6 kaybolmuştur).
type Event struct {
	Op   string `json:"op"`
	Data any    `json:"d,omitempty"`
	Seq  int64  `json:"seq,omitempty"`
}

// Client → Server operasyonları
const (
	OpHeartbeat = "heartbeat" // "hâlâ bağlıyım" sinyali, read deadline'ı yeniler
)

// Server → Client operasyonları
const (
	OpHeartbeatAck = "heartbeat_ack"

	// Sunucu graph event'leri
	OpServerUpdate    = "server_update"
	OpServerDelete    = "server_delete"
	OpMemberJoin      = "member_join"
	OpMemberLeave     = "member_leave"
	OpMemberUpdate    = "member_update" // rol/flag değişikliği
	OpChannelCreate   = "channel_create"
	OpChannelUpdate   = "channel_update"
	OpChannelDelete   = "channel_delete"
	OpCategoryCreate  = "category_create"
	OpCategoryUpdate  = "category_update"
	OpCategoryDelete  = "category_delete"

	// Moderasyon event'leri
	OpMemberBan    = "member_ban"
	OpMemberUnban  = "member_unban"
	OpVoiceTimeout = "voice_timeout"

	// DM event'leri
	OpDMConversationCreate = "dm_conversation_create"
	OpDMMessageCreate      = "dm_message_create"
	OpDMMessageUpdate      = "dm_message_update"
	OpDMMessageDelete      = "dm_message_delete"

	// Arkadaşlık event'leri
	OpFriendRequestCreate  = "friend_request_create"
	OpFriendRequestAccept  = "friend_request_accept"
	OpFriendRequestDecline = "friend_request_decline"
	OpFriendRemove         = "friend_remove"
)
