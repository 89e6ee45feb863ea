package railway

import "fmt"

// TrainLeg is one direct train ride between two stations as reported by the
// left-ticket query. Seat values keep the upstream's textual conventions:
// a numeric remaining count, "有" (available) or "无" (sold out).
type TrainLeg struct {
	TrainNo   string            `json:"train_no"`   // official unique number, e.g. 5l000G10140Q
	TrainCode string            `json:"train_code"` // public train code, e.g. G1014
	FromCode  string            `json:"from_station_code"`
	ToCode    string            `json:"to_station_code"`
	FromName  string            `json:"from_station"`
	ToName    string            `json:"to_station"`
	Start     string            `json:"start_time"`  // HH:MM wall clock
	Arrive    string            `json:"arrive_time"` // HH:MM wall clock
	Duration  string            `json:"duration"`    // HH:MM elapsed
	Seats     map[string]string `json:"seats"`       // seat-class label -> remaining
}

// RouteStop is one row of a train's stop-by-stop schedule.
type RouteStop struct {
	StationNo    string `json:"station_no"`
	StationName  string `json:"station_name"`
	ArriveTime   string `json:"arrive_time"`
	StartTime    string `json:"start_time"`
	StopoverTime string `json:"stopover_time"`
}

// UpstreamError reports a transport or provider failure against 12306.
// Inside the transfer engine it eliminates a single candidate, never the
// whole request.
type UpstreamError struct {
	Op  string
	Err error
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("12306 %s: %v", e.Op, e.Err)
}

func (e *UpstreamError) Unwrap() error { return e.Err }

// SeatClass describes one bookable seat category of the upstream ticket
// string. Field is the position inside the '|'-separated record.
type SeatClass struct {
	Label string
	Field int
}

// SeatClasses lists the seat categories in the order 12306 renders them.
// StandingLabel marks the no-seat category, usable only when the caller
// asked for standing tickets.
var SeatClasses = []SeatClass{
	{Label: "商务座", Field: 32},
	{Label: "特等座", Field: 25},
	{Label: "一等座", Field: 31},
	{Label: "二等座", Field: 30},
	{Label: "高级软卧", Field: 21},
	{Label: "软卧", Field: 23},
	{Label: "动卧", Field: 33},
	{Label: "硬卧", Field: 28},
	{Label: "软座", Field: 24},
	{Label: "硬座", Field: 29},
	{Label: "无座", Field: 26},
}

const StandingLabel = "无座"

// SeatUsable reports whether a seat value counts as bookable: a positive
// numeric remaining count or the "有" sentinel.
func SeatUsable(v string) bool {
	if v == "有" {
		return true
	}
	n := 0
	for _, r := range v {
		if r < '0' || r > '9' {
			return false
		}
		n = n*10 + int(r-'0')
	}
	return len(v) > 0 && n > 0
}

// HasUsableSeat reports whether a leg has at least one bookable seat class.
// The standing category only counts when showStanding is set.
func (l TrainLeg) HasUsableSeat(showStanding bool) bool {
	for label, v := range l.Seats {
		if label == StandingLabel && !showStanding {
			continue
		}
		if SeatUsable(v) {
			return true
		}
	}
	return false
}
