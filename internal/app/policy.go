package app

import (
	"errors"

	"github.com/dkeye/liveroom/internal/domain"
)

// Notice is the kind of message the view shows for a failed operation.
type Notice int

const (
	NoticeNone Notice = iota
	NoticeMisconfigured
	NoticePermission
	NoticeNetwork
	NoticeBusy
)

func (n Notice) String() string {
	switch n {
	case NoticeMisconfigured:
		return "misconfigured"
	case NoticePermission:
		return "permission"
	case NoticeNetwork:
		return "network"
	case NoticeBusy:
		return "busy"
	}
	return "none"
}

type Policy interface {
	Classify(err error) Notice
}

type SimplePolicy struct{}

// Classify maps the error taxonomy onto notices. Device errors are checked
// before transport errors so a permission problem is never shown as a network one.
func (SimplePolicy) Classify(err error) Notice {
	switch {
	case err == nil:
		return NoticeNone
	case domain.IsConfigError(err):
		return NoticeMisconfigured
	case domain.IsDeviceError(err):
		return NoticePermission
	case domain.IsTransportError(err):
		return NoticeNetwork
	case errors.Is(err, domain.ErrBusy):
		return NoticeBusy
	}
	return NoticeNone
}
