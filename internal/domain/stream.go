package domain

import "time"

type StreamStatus string

const (
	StatusScheduled StreamStatus = "scheduled"
	StatusLive      StreamStatus = "live"
	StatusCompleted StreamStatus = "completed"
)

type Trainer struct {
	ID   string `json:"id,omitempty"`
	Name string `json:"name"`
}

// StreamData is the per-room credential bundle handed out by the backend.
type StreamData struct {
	AppID       string `json:"app_id"`
	ChannelName string `json:"channel_name"`
	Token       string `json:"-"`
	UID         string `json:"uid,omitempty"`
}

// Params maps backend credentials onto transport connection parameters.
func (d StreamData) Params() ConnectionParameters {
	return ConnectionParameters{
		RoomID:        RoomID(d.ChannelName),
		AccessToken:   d.Token,
		ApplicationID: d.AppID,
		LocalIdentity: RemoteID(d.UID),
	}
}

// StreamDetails is the canonical shape of a session's streaming details.
type StreamDetails struct {
	SessionID    string       `json:"session_id"`
	Title        string       `json:"title,omitempty"`
	Status       StreamStatus `json:"status"`
	ScheduledAt  time.Time    `json:"scheduled_at,omitzero"`
	StartedAt    time.Time    `json:"started_at,omitzero"`
	Trainer      Trainer      `json:"trainer"`
	StreamData   *StreamData  `json:"stream_data,omitempty"`
	Participants []string     `json:"participants,omitempty"`
}

func (s StreamDetails) IsLive() bool { return s.Status == StatusLive }

// Elapsed is the running time of a live session, never negative.
func (s StreamDetails) Elapsed(now time.Time) time.Duration {
	if !s.IsLive() || s.StartedAt.IsZero() {
		return 0
	}
	d := now.Sub(s.StartedAt)
	if d < 0 {
		return 0
	}
	return d.Truncate(time.Second)
}
