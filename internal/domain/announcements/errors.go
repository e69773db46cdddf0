package announcements

import "errors"

var (
	ErrAnnouncementNotFound = errors.New("announcement not found")
	ErrNotEnrolled          = errors.New("not enrolled in this event")
)
