package rtc

import (
	"encoding/json"

	"github.com/pion/webrtc/v4"
)

// envelope is decoded first to route a frame by type.
type envelope struct {
	Type string `json:"type"`
}

type joinMsg struct {
	Type  string `json:"type"`
	Room  string `json:"room"`
	AppID string `json:"app_id"`
	Name  string `json:"name,omitempty"`
}

type sdpMsg struct {
	Type string `json:"type"`
	SDP  string `json:"sdp"`
}

type candidateMsg struct {
	Type          string `json:"type"`
	Candidate     string `json:"candidate"`
	SDPMid        string `json:"sdpMid,omitempty"`
	SDPMLineIndex uint16 `json:"sdpMLineIndex,omitempty"`
}

type roomStateMsg struct {
	Type    string            `json:"type"`
	Room    string            `json:"room"`
	Members []json.RawMessage `json:"members"`
	Count   int               `json:"count"`
}

type memberLeftMsg struct {
	Type string `json:"type"`
	User struct {
		ID string `json:"id"`
	} `json:"user"`
}

type trackUnpublishedMsg struct {
	Type string `json:"type"`
	UID  string `json:"uid"`
	Kind string `json:"kind"`
}

type errorMsg struct {
	Type  string `json:"type"`
	Error string `json:"error"`
}

func newCandidateMsg(ci webrtc.ICECandidateInit) candidateMsg {
	m := candidateMsg{Type: "candidate", Candidate: ci.Candidate}
	if ci.SDPMid != nil {
		m.SDPMid = *ci.SDPMid
	}
	if ci.SDPMLineIndex != nil {
		m.SDPMLineIndex = *ci.SDPMLineIndex
	}
	return m
}

func (m candidateMsg) init() webrtc.ICECandidateInit {
	ci := webrtc.ICECandidateInit{Candidate: m.Candidate}
	if m.SDPMid != "" {
		mid := m.SDPMid
		ci.SDPMid = &mid
	}
	idx := m.SDPMLineIndex
	ci.SDPMLineIndex = &idx
	return ci
}
