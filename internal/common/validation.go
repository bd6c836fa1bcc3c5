package common

import (
	"regexp"
	"strings"
	"unicode/utf8"
)

var mimeRegex = regexp.MustCompile(`^[a-z]+/[a-z0-9.+\-]+$`)

// MediaLimits bounds the media a publisher may attach.
type MediaLimits struct {
	MaxVideoBytes    int64
	MaxImageBytes    int64
	MaxCaptionLength int
}

// ValidateMedia checks a declared media reference against the declared kind.
func ValidateMedia(kind StatusKind, mimeType string, sizeBytes int64, limits MediaLimits) error {
	if !kind.HasMedia() {
		return Validationf("%s statuses cannot carry media", kind)
	}
	mimeType = strings.ToLower(strings.TrimSpace(mimeType))
	if !mimeRegex.MatchString(mimeType) {
		return Validationf("invalid mime type %q", mimeType)
	}
	if DetectFileType(mimeType) != kind {
		return Validationf("mime type %s does not match kind %s", mimeType, kind)
	}
	if sizeBytes <= 0 {
		return Validationf("media size must be positive")
	}

	max := limits.MaxImageBytes
	if kind == StatusKindVideo {
		max = limits.MaxVideoBytes
	}
	if max > 0 && sizeBytes > max {
		return Validationf("%s exceeds maximum size of %d bytes", kind, max)
	}
	return nil
}

func ValidateCaption(caption string, maxLength int) error {
	if strings.TrimSpace(caption) == "" {
		return Validationf("caption is empty")
	}
	if maxLength > 0 && utf8.RuneCountInString(caption) > maxLength {
		return Validationf("caption must be at most %d characters", maxLength)
	}
	return nil
}
