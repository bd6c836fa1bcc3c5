package common

import "strings"

// StatusKind is the declared kind of a status update
type StatusKind string

const (
	StatusKindImage StatusKind = "image"
	StatusKindVideo StatusKind = "video"
	StatusKindText  StatusKind = "text"
)

// String returns the string representation
func (k StatusKind) String() string {
	return string(k)
}

// IsValid checks if the status kind is valid
func (k StatusKind) IsValid() bool {
	return k == StatusKindImage || k == StatusKindVideo || k == StatusKindText
}

// HasMedia reports whether statuses of this kind carry a media file.
func (k StatusKind) HasMedia() bool {
	return k == StatusKindImage || k == StatusKindVideo
}

// DetectFileType maps a mime type onto a media kind. Anything that is not
// image/* or video/* yields an empty kind.
func DetectFileType(mimeType string) StatusKind {
	lowerMimeType := strings.ToLower(strings.TrimSpace(mimeType))
	if strings.HasPrefix(lowerMimeType, "image/") {
		return StatusKindImage
	}
	if strings.HasPrefix(lowerMimeType, "video/") {
		return StatusKindVideo
	}
	return ""
}

// ModerationState is where a status sits in the moderation lifecycle
type ModerationState string

const (
	ModerationPending  ModerationState = "pending"
	ModerationApproved ModerationState = "approved"
	ModerationRejected ModerationState = "rejected"
	ModerationExpired  ModerationState = "expired"
)

func (s ModerationState) String() string {
	return string(s)
}

func (s ModerationState) IsValid() bool {
	switch s {
	case ModerationPending, ModerationApproved, ModerationRejected, ModerationExpired:
		return true
	}
	return false
}
