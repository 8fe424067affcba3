package lavalink

// TrackInfo contains the decoded metadata of a track.
type TrackInfo struct {
	Identifier string `json:"identifier"`
	IsSeekable bool   `json:"isSeekable"`
	Author     string `json:"author"`
	Length     int64  `json:"length"`
	IsStream   bool   `json:"isStream"`
	Position   int64  `json:"position"`
	Title      string `json:"title"`
	URI        string `json:"uri"`
	ArtworkURL string `json:"artworkUrl"`
	SourceName string `json:"sourceName"`
}

// Track represents a playable track. Encoded is the opaque token the node
// plays; it may be empty until the track has been resolved.
type Track struct {
	Encoded string    `json:"track"`
	Info    TrackInfo `json:"info"`
}

// MemoryStats holds the memory section of a node stats report.
type MemoryStats struct {
	Free       int64 `json:"free"`
	Used       int64 `json:"used"`
	Allocated  int64 `json:"allocated"`
	Reservable int64 `json:"reservable"`
}

// CPUStats holds the cpu section of a node stats report.
type CPUStats struct {
	Cores        int     `json:"cores"`
	SystemLoad   float64 `json:"systemLoad"`
	LavalinkLoad float64 `json:"lavalinkLoad"`
}

// FrameStats holds the frame section of a node stats report. It is only
// present once the node has players sending frames.
type FrameStats struct {
	Sent    int `json:"sent"`
	Nulled  int `json:"nulled"`
	Deficit int `json:"deficit"`
}

// NodeStats is the periodic load snapshot a node pushes over the control
// socket. The stored snapshot is replaced wholesale on every stats message,
// never mutated field by field.
type NodeStats struct {
	Players        int         `json:"players"`
	PlayingPlayers int         `json:"playingPlayers"`
	Uptime         int64       `json:"uptime"`
	Memory         MemoryStats `json:"memory"`
	CPU            CPUStats    `json:"cpu"`
	FrameStats     *FrameStats `json:"frameStats,omitempty"`
}

// PlayerState is the state section of a playerUpdate message.
type PlayerState struct {
	Time      int64 `json:"time"`
	Position  int64 `json:"position"`
	Connected bool  `json:"connected"`
	Ping      int   `json:"ping"`
}

// VoiceServer carries the voice-server credentials delivered by the platform
// gateway. The full payload is forwarded to the node verbatim.
type VoiceServer struct {
	Token    string `json:"token"`
	GuildID  string `json:"guild_id"`
	Endpoint string `json:"endpoint"`
}

// VoiceState carries the fields of a platform voice-state update the client
// cares about.
type VoiceState struct {
	GuildID   string `json:"guild_id"`
	ChannelID string `json:"channel_id"`
	UserID    string `json:"user_id"`
	SessionID string `json:"session_id"`
	SelfDeaf  bool   `json:"self_deaf"`
	SelfMute  bool   `json:"self_mute"`
}

// Load types returned by the loadtracks endpoint.
const (
	LoadTypeTrackLoaded    = "TRACK_LOADED"
	LoadTypePlaylistLoaded = "PLAYLIST_LOADED"
	LoadTypeSearchResult   = "SEARCH_RESULT"
	LoadTypeNoMatches      = "NO_MATCHES"
	LoadTypeLoadFailed     = "LOAD_FAILED"
)

// LoadResult is the response of the node's loadtracks endpoint.
type LoadResult struct {
	LoadType     string        `json:"loadType"`
	PlaylistInfo *PlaylistInfo `json:"playlistInfo"`
	Tracks       []*Track      `json:"tracks"`
	Exception    *struct {
		Message  string `json:"message"`
		Severity string `json:"severity"`
	} `json:"exception"`
}

// PlaylistInfo describes the playlist a loadtracks result belongs to.
type PlaylistInfo struct {
	Name          string `json:"name"`
	SelectedTrack int    `json:"selectedTrack"`
}

// Outbound control socket payloads.

type voiceUpdatePayload struct {
	Op        string       `json:"op"`
	GuildID   string       `json:"guildId"`
	SessionID string       `json:"sessionId"`
	Event     *VoiceServer `json:"event"`
}

type playPayload struct {
	Op        string `json:"op"`
	GuildID   string `json:"guildId"`
	Track     string `json:"track"`
	StartTime int64  `json:"startTime,omitempty"`
	Pause     bool   `json:"pause,omitempty"`
	NoReplace bool   `json:"noReplace"`
}

type stopPayload struct {
	Op      string `json:"op"`
	GuildID string `json:"guildId"`
}

type pausePayload struct {
	Op      string `json:"op"`
	GuildID string `json:"guildId"`
	Pause   bool   `json:"pause"`
}

type seekPayload struct {
	Op       string `json:"op"`
	GuildID  string `json:"guildId"`
	Position int64  `json:"position"`
}

type filtersPayload struct {
	Op      string  `json:"op"`
	GuildID string  `json:"guildId"`
	Volume  float64 `json:"volume"`
}

type destroyPayload struct {
	Op      string `json:"op"`
	GuildID string `json:"guildId"`
}

type configureResumingPayload struct {
	Op      string `json:"op"`
	Key     string `json:"key"`
	Timeout int    `json:"timeout"`
}

// Inbound control socket messages.

type inboundEnvelope struct {
	Op      string `json:"op"`
	GuildID string `json:"guildId"`
}

type playerUpdateMessage struct {
	GuildID string      `json:"guildId"`
	State   PlayerState `json:"state"`
}

type playerEventMessage struct {
	GuildID   string `json:"guildId"`
	Type      string `json:"type"`
	Reason    string `json:"reason"`
	Code      int    `json:"code"`
	ByRemote  bool   `json:"byRemote"`
	Error     string `json:"error"`
	Threshold int64  `json:"thresholdMs"`
}

// Track end reasons the player state machine special-cases.
const (
	endReasonReplaced   = "REPLACED"
	endReasonLoadFailed = "LOAD_FAILED"
	endReasonCleanup    = "CLEAN_UP"
)

// Voice gateway close codes after which rejoining the channel recovers the
// underlying voice socket (voice server crashed, session invalidated).
const (
	voiceCloseSessionInvalid = 4009
	voiceCloseServerCrashed  = 4015
)
