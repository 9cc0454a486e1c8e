package domain

// MediaKind is the kind of a remote track.
type MediaKind int

const (
	KindAudio MediaKind = iota
	KindVideo
)

func (k MediaKind) String() string {
	if k == KindVideo {
		return "video"
	}
	return "audio"
}

// ParseMediaKind maps a wire kind; screen shares arrive as video.
func ParseMediaKind(s string) (MediaKind, bool) {
	switch s {
	case "audio":
		return KindAudio, true
	case "video", "screen":
		return KindVideo, true
	}
	return 0, false
}

// TrackSource is where a local track comes from.
type TrackSource int

const (
	SourceMicrophone TrackSource = iota
	SourceCamera
	SourceScreen
)

func (s TrackSource) String() string {
	switch s {
	case SourceCamera:
		return "camera"
	case SourceScreen:
		return "screen"
	default:
		return "microphone"
	}
}

func (s TrackSource) Kind() MediaKind {
	if s == SourceMicrophone {
		return KindAudio
	}
	return KindVideo
}

// Participant is the renderable view of one remote identity.
type Participant struct {
	RemoteID     RemoteID `json:"remote_id"`
	HasAudio     bool     `json:"has_audio"`
	HasVideo     bool     `json:"has_video"`
	AudioTrackID string   `json:"audio_track_id,omitempty"`
	VideoTrackID string   `json:"video_track_id,omitempty"`
}

// LocalMediaState is what the view sees of local media. Tracks stay in the controller.
type LocalMediaState struct {
	AudioEnabled   bool `json:"audio_enabled"`
	VideoEnabled   bool `json:"video_enabled"`
	ScreenSharing  bool `json:"screen_sharing"`
	HasAudioTrack  bool `json:"has_audio_track"`
	HasVideoTrack  bool `json:"has_video_track"`
	HasScreenTrack bool `json:"has_screen_track"`
}
