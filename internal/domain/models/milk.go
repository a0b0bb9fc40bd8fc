package models

import "strings"

// MilkingTime is the session of the day a yield was recorded in.
type MilkingTime string

const (
	MilkingMorning MilkingTime = "Morning"
	MilkingEvening MilkingTime = "Evening"
)

// ParseMilkingTime matches s case-insensitively against the known sessions.
func ParseMilkingTime(s string) (MilkingTime, bool) {
	switch {
	case strings.EqualFold(strings.TrimSpace(s), string(MilkingMorning)):
		return MilkingMorning, true
	case strings.EqualFold(strings.TrimSpace(s), string(MilkingEvening)):
		return MilkingEvening, true
	}
	return MilkingTime(s), false
}

// MilkingRecord is one yield observation. Date is DD/MM/YYYY once persisted.
type MilkingRecord struct {
	Date    string      `json:"date"`
	Yield   Number      `json:"yield"`
	Time    MilkingTime `json:"time"`
	Quality string      `json:"quality"`
}

// MilkGroup holds every record sharing one date.
type MilkGroup []MilkingRecord

// Date returns the date of the group's first record.
func (g MilkGroup) Date() string {
	if len(g) == 0 {
		return ""
	}
	return g[0].Date
}
