package backend

import (
	"encoding/json"
	"strings"
	"time"

	"github.com/dkeye/liveroom/internal/domain"
)

// rawStream accepts every shape the backend is known to send.
type rawStream struct {
	Status       string          `json:"status"`
	Title        string          `json:"title"`
	ScheduledAt  string          `json:"scheduledAt"`
	StartedAt    string          `json:"startedAt"`
	Trainer      json.RawMessage `json:"trainer"`
	StreamData   *rawStreamData  `json:"streamData"`
	Participants json.RawMessage `json:"participants"`
	SessionData  *rawSessionData `json:"sessionData"`
}

type rawSessionData struct {
	Title       string          `json:"title"`
	ScheduledAt string          `json:"scheduledAt"`
	StartedAt   string          `json:"startedAt"`
	Trainer     json.RawMessage `json:"trainer"`
}

type rawStreamData struct {
	AppID       string          `json:"appId"`
	ChannelName string          `json:"channelName"`
	Token       string          `json:"token"`
	UID         json.RawMessage `json:"uid"`
}

type rawPerson struct {
	ID        string `json:"_id"`
	AltID     string `json:"id"`
	Name      string `json:"name"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
}

func (p rawPerson) id() string {
	if p.ID != "" {
		return p.ID
	}
	return p.AltID
}

func (p rawPerson) name() string {
	if p.Name != "" {
		return p.Name
	}
	return strings.TrimSpace(p.FirstName + " " + p.LastName)
}

func (r rawStream) normalize(sessionID string) domain.StreamDetails {
	d := domain.StreamDetails{
		SessionID:   sessionID,
		Title:       r.Title,
		Status:      normalizeStatus(r.Status),
		ScheduledAt: parseTime(r.ScheduledAt),
		StartedAt:   parseTime(r.StartedAt),
		Trainer:     normalizeTrainer(r.Trainer),
	}
	if sd := r.SessionData; sd != nil {
		if d.Title == "" {
			d.Title = sd.Title
		}
		if d.ScheduledAt.IsZero() {
			d.ScheduledAt = parseTime(sd.ScheduledAt)
		}
		if d.StartedAt.IsZero() {
			d.StartedAt = parseTime(sd.StartedAt)
		}
		if d.Trainer.Name == "Unknown" && len(sd.Trainer) > 0 {
			d.Trainer = normalizeTrainer(sd.Trainer)
		}
	}
	if s := r.StreamData; s != nil {
		d.StreamData = &domain.StreamData{
			AppID:       s.AppID,
			ChannelName: s.ChannelName,
			Token:       s.Token,
			UID:         scalarString(s.UID),
		}
	}
	d.Participants = normalizeParticipantList(r.Participants)
	return d
}

func normalizeStatus(s string) domain.StreamStatus {
	switch domain.StreamStatus(strings.ToLower(strings.TrimSpace(s))) {
	case domain.StatusLive:
		return domain.StatusLive
	case domain.StatusCompleted, "ended":
		return domain.StatusCompleted
	}
	return domain.StatusScheduled
}

// normalizeTrainer accepts a plain name or a person object.
func normalizeTrainer(raw json.RawMessage) domain.Trainer {
	if len(raw) == 0 || string(raw) == "null" {
		return domain.Trainer{Name: "Unknown"}
	}
	var name string
	if err := json.Unmarshal(raw, &name); err == nil {
		if name == "" {
			name = "Unknown"
		}
		return domain.Trainer{Name: name}
	}
	var p rawPerson
	if err := json.Unmarshal(raw, &p); err != nil {
		return domain.Trainer{Name: "Unknown"}
	}
	t := domain.Trainer{ID: p.id(), Name: p.name()}
	if t.Name == "" {
		t.Name = "Unknown"
	}
	return t
}

// normalizeParticipantList accepts ids, person objects, or an object wrapping
// either under "participants".
func normalizeParticipantList(raw json.RawMessage) []string {
	if len(raw) == 0 || string(raw) == "null" {
		return nil
	}
	var items []json.RawMessage
	if err := json.Unmarshal(raw, &items); err != nil {
		var wrapped struct {
			Participants json.RawMessage `json:"participants"`
		}
		if json.Unmarshal(raw, &wrapped) != nil || len(wrapped.Participants) == 0 {
			return nil
		}
		return normalizeParticipantList(wrapped.Participants)
	}
	out := make([]string, 0, len(items))
	for _, it := range items {
		var s string
		if json.Unmarshal(it, &s) == nil {
			if s != "" {
				out = append(out, s)
			}
			continue
		}
		var p rawPerson
		if json.Unmarshal(it, &p) == nil {
			if id := p.id(); id != "" {
				out = append(out, id)
			}
		}
	}
	return out
}

// scalarString renders a JSON string or number as a string.
func scalarString(raw json.RawMessage) string {
	if len(raw) == 0 || string(raw) == "null" {
		return ""
	}
	var s string
	if json.Unmarshal(raw, &s) == nil {
		return s
	}
	var n json.Number
	if json.Unmarshal(raw, &n) == nil {
		return n.String()
	}
	return ""
}

func parseTime(s string) time.Time {
	if s == "" {
		return time.Time{}
	}
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return time.Time{}
	}
	return t
}
