package models

import (
	"encoding/json"
	"strings"
	"time"
)

// Mastery level bounds
const (
	MinMasteryLevel = 0
	MaxMasteryLevel = 5
)

// MasteryRecord tracks a learner's proficiency with one word of one category
type MasteryRecord struct {
	CorrectCount   int        `json:"correct_count" db:"correct_count"`
	IncorrectCount int        `json:"incorrect_count" db:"incorrect_count"`
	MasteryLevel   int        `json:"mastery_level" db:"mastery_level"` // 0-5
	LastPracticed  *time.Time `json:"last_practiced" db:"-"`
}

// masteryRecordJSON carries last_practiced as a raw string so a malformed value
// can be decoded as "never practiced" instead of failing the whole profile.
type masteryRecordJSON struct {
	CorrectCount   int     `json:"correct_count"`
	IncorrectCount int     `json:"incorrect_count"`
	MasteryLevel   int     `json:"mastery_level"`
	LastPracticed  *string `json:"last_practiced"`
}

// MarshalJSON writes last_practiced as an ISO-8601 string or null
func (r MasteryRecord) MarshalJSON() ([]byte, error) {
	out := masteryRecordJSON{
		CorrectCount:   r.CorrectCount,
		IncorrectCount: r.IncorrectCount,
		MasteryLevel:   r.MasteryLevel,
	}
	if r.LastPracticed != nil {
		s := FormatTimestamp(*r.LastPracticed)
		out.LastPracticed = &s
	}
	return json.Marshal(out)
}

// UnmarshalJSON reads a record, treating an unparseable last_practiced as absent
func (r *MasteryRecord) UnmarshalJSON(data []byte) error {
	var in masteryRecordJSON
	if err := json.Unmarshal(data, &in); err != nil {
		return err
	}
	r.CorrectCount = in.CorrectCount
	r.IncorrectCount = in.IncorrectCount
	r.MasteryLevel = ClampLevel(in.MasteryLevel)
	r.LastPracticed = nil
	if in.LastPracticed != nil {
		r.LastPracticed = ParseTimestamp(*in.LastPracticed)
	}
	return nil
}

// ClampLevel forces a mastery level into [0,5]
func ClampLevel(level int) int {
	if level < MinMasteryLevel {
		return MinMasteryLevel
	}
	if level > MaxMasteryLevel {
		return MaxMasteryLevel
	}
	return level
}

// timestampLayouts are tried in order. The naive layouts match what older
// profiles wrote (local time without an offset).
var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02 15:04:05.999999999-07:00",
	"2006-01-02 15:04:05.999999999",
	"2006-01-02",
}

// ParseTimestamp parses an ISO-8601 date-time. It returns nil for empty or
// malformed input.
func ParseTimestamp(s string) *time.Time {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	for _, layout := range timestampLayouts {
		if t, err := time.ParseInLocation(layout, s, time.Local); err == nil {
			return &t
		}
	}
	return nil
}

// FormatTimestamp renders t the way profiles store it
func FormatTimestamp(t time.Time) string {
	return t.Format(time.RFC3339Nano)
}
