package domain

import "strings"

type (
	RoomID   string
	RemoteID string
)

type Role int

const (
	RoleViewer Role = iota
	RolePresenter
)

func (r Role) String() string {
	if r == RolePresenter {
		return "presenter"
	}
	return "viewer"
}

// ParseRole accepts "presenter"/"host" and treats everything else as a viewer.
func ParseRole(s string) Role {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "presenter", "host", "trainer":
		return RolePresenter
	default:
		return RoleViewer
	}
}

// ConnectionParameters are immutable for one connection attempt.
type ConnectionParameters struct {
	RoomID        RoomID   `json:"room_id"`
	AccessToken   string   `json:"-"`
	ApplicationID string   `json:"application_id"`
	LocalIdentity RemoteID `json:"local_identity,omitempty"`
}

// Validate reports every missing required field at once.
func (p ConnectionParameters) Validate() error {
	var missing []string
	if p.ApplicationID == "" {
		missing = append(missing, "application id")
	}
	if p.RoomID == "" {
		missing = append(missing, "room id")
	}
	if p.AccessToken == "" {
		missing = append(missing, "access token")
	}
	if len(missing) > 0 {
		return &ConfigError{Missing: missing}
	}
	return nil
}

// SameTarget reports whether q addresses the same room with the same credential.
func (p ConnectionParameters) SameTarget(q ConnectionParameters) bool {
	return p.RoomID == q.RoomID && p.AccessToken == q.AccessToken && p.ApplicationID == q.ApplicationID
}
