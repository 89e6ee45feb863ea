package mcp12306

import (
	"time"
)

const dateLayout = "2006-01-02"

// defaultTimezone is the railway network's timezone; every 12306 timetable
// is published in it.
const defaultTimezone = "Asia/Shanghai"

// ValidateDate reports whether s is a well-formed YYYY-MM-DD calendar date.
func ValidateDate(s string) bool {
	_, err := time.Parse(dateLayout, s)
	return err == nil
}

// DateInPast reports whether s falls before today in the railway timezone.
// Malformed input reports false; callers validate format first.
func DateInPast(s string) bool {
	d, err := time.Parse(dateLayout, s)
	if err != nil {
		return false
	}
	loc, err := time.LoadLocation(defaultTimezone)
	if err != nil {
		loc = time.UTC
	}
	now := time.Now().In(loc)
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	return d.Before(today)
}

// currentTimeInfo is the get-current-time tool payload.
type currentTimeInfo struct {
	Success           bool   `json:"success"`
	Timezone          string `json:"timezone"`
	Datetime          string `json:"datetime"`
	Date              string `json:"date"`
	Time              string `json:"time"`
	Timestamp         int64  `json:"timestamp"`
	Tomorrow          string `json:"tomorrow"`
	DayAfterTomorrow  string `json:"day_after_tomorrow"`
}

func currentTime(timezone string) currentTimeInfo {
	if timezone == "" {
		timezone = defaultTimezone
	}
	loc, err := time.LoadLocation(timezone)
	if err != nil {
		loc, _ = time.LoadLocation(defaultTimezone)
	}
	now := time.Now().In(loc)
	return currentTimeInfo{
		Success:          true,
		Timezone:         loc.String(),
		Datetime:         now.Format("2006-01-02 15:04:05"),
		Date:             now.Format(dateLayout),
		Time:             now.Format("15:04:05"),
		Timestamp:        now.Unix(),
		Tomorrow:         now.AddDate(0, 0, 1).Format(dateLayout),
		DayAfterTomorrow: now.AddDate(0, 0, 2).Format(dateLayout),
	}
}
