package railway

import (
	"strings"
)

// minTicketFields is the shortest '|'-separated record the left-ticket
// endpoint emits that still carries every seat column we read.
const minTicketFields = 35

// parseTicketString parses one '|'-separated left-ticket record. The layout
// is positional: 1 reserve flag, 2 train_no, 3 train code, 6/7 the actual
// from/to telecodes (which may differ from the queried pair on through
// trains), 8 departure, 9 arrival, 10 elapsed time, seat columns per
// SeatClasses. Returns false for short or malformed records.
func parseTicketString(ticket string, stationNames map[string]string) (TrainLeg, bool) {
	parts := strings.Split(ticket, "|")
	if len(parts) < minTicketFields {
		return TrainLeg{}, false
	}
	leg := TrainLeg{
		TrainNo:   parts[2],
		TrainCode: parts[3],
		FromCode:  parts[6],
		ToCode:    parts[7],
		Start:     parts[8],
		Arrive:    parts[9],
		Duration:  parts[10],
		Seats:     map[string]string{},
	}
	if leg.TrainNo == "" || leg.TrainCode == "" {
		return TrainLeg{}, false
	}
	leg.FromName = stationNames[leg.FromCode]
	leg.ToName = stationNames[leg.ToCode]
	for _, sc := range SeatClasses {
		if sc.Field >= len(parts) {
			continue
		}
		v := parts[sc.Field]
		if v == "" || v == "--" {
			continue
		}
		leg.Seats[sc.Label] = v
	}
	return leg, true
}

// parseTicketStrings parses a full left-ticket result list, dropping
// malformed records.
func parseTicketStrings(tickets []string, stationNames map[string]string) []TrainLeg {
	legs := make([]TrainLeg, 0, len(tickets))
	for _, t := range tickets {
		if leg, ok := parseTicketString(t, stationNames); ok {
			legs = append(legs, leg)
		}
	}
	return legs
}
