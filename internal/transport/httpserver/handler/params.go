package handler

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// parseDate accepts a calendar date or a full RFC 3339 timestamp.
func parseDate(value string) (time.Time, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return time.Time{}, fmt.Errorf("date is required")
	}
	if parsed, err := time.Parse(time.RFC3339, value); err == nil {
		return parsed, nil
	}
	return time.Parse("2006-01-02", value)
}

func parseDateParam(value *string) (*time.Time, error) {
	if value == nil {
		return nil, nil
	}
	parsed, err := parseDate(*value)
	if err != nil {
		return nil, err
	}
	return &parsed, nil
}

func parseBoolParam(value string) (*bool, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return nil, nil
	}
	parsed, err := strconv.ParseBool(value)
	if err != nil {
		return nil, fmt.Errorf("invalid bool")
	}
	return &parsed, nil
}

func firstNonEmpty(values ...string) string {
	for _, value := range values {
		if strings.TrimSpace(value) != "" {
			return value
		}
	}
	return ""
}
