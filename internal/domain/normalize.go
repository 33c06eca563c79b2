package domain

import (
	"strings"
)

// NormalizeDeckTopic prepares a deck topic for storage and comparison:
//   - trims leading/trailing whitespace
//   - converts to lowercase
//   - compresses multiple spaces into one
func NormalizeDeckTopic(topic string) string {
	topic = strings.TrimSpace(topic)
	if topic == "" {
		return ""
	}
	topic = strings.ToLower(topic)

	// Compress multiple spaces into one.
	var b strings.Builder
	b.Grow(len(topic))
	prevSpace := false
	for _, r := range topic {
		if r == ' ' {
			if prevSpace {
				continue
			}
			prevSpace = true
		} else {
			prevSpace = false
		}
		b.WriteRune(r)
	}
	return b.String()
}

// NormalizeDifficultyTag maps upstream difficulty strings onto the closed
// tag set, case-insensitively. Unknown values return false; upstream shape
// is not trusted.
func NormalizeDifficultyTag(raw string) (DifficultyTag, bool) {
	switch strings.ToUpper(strings.TrimSpace(raw)) {
	case "EASY", "BEGINNER":
		return DifficultyTagEasy, true
	case "MEDIUM", "INTERMEDIATE", "":
		return DifficultyTagMedium, true
	case "HARD", "ADVANCED":
		return DifficultyTagHard, true
	}
	return "", false
}
