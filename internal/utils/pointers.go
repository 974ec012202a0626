package utils

import (
	"math"
	"strings"
	"time"
)

func StringPtr(s string) *string {
	return &s
}

// TrimmedStringPtr returns nil for blank input so optional columns stay NULL.
func TrimmedStringPtr(s *string) *string {
	if s == nil {
		return nil
	}

	trimmed := strings.TrimSpace(*s)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}

func TimePtr(t time.Time) *time.Time {
	return &t
}

func PtrString(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func RoundFloat64(f float64, places int) float64 {
	factor := math.Pow(10, float64(places))
	return math.Round(f*factor) / factor
}
