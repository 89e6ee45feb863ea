package mcp12306

import (
	"github.com/drfccv/mcp-server-12306/railway"
	"github.com/drfccv/mcp-server-12306/station"
	"github.com/drfccv/mcp-server-12306/transfer"
)

// Payload shapes of the tool responses. Field order follows what the
// upstream tools have always emitted, so downstream consumers keep working.

type stationPayload struct {
	Name    string `json:"name"`
	Code    string `json:"code"`
	Pinyin  string `json:"pinyin"`
	PyShort string `json:"py_short"`
	Num     string `json:"num,omitempty"`
}

func renderStation(s station.Station) stationPayload {
	return stationPayload{Name: s.Name, Code: s.Code, Pinyin: s.Pinyin, PyShort: s.PyShort, Num: s.Num}
}

type trainPayload struct {
	TrainNo         string            `json:"train_no"`
	FromStation     string            `json:"from_station"`
	FromStationCode string            `json:"from_station_code"`
	ToStation       string            `json:"to_station"`
	ToStationCode   string            `json:"to_station_code"`
	StartTime       string            `json:"start_time"`
	ArriveTime      string            `json:"arrive_time"`
	Duration        string            `json:"duration"`
	Seats           map[string]string `json:"seats"`
}

// renderTrain renders one direct leg. train_no carries the public train code
// (G1014 style), as the tool surface has always done.
func renderTrain(leg railway.TrainLeg) trainPayload {
	return trainPayload{
		TrainNo:         leg.TrainCode,
		FromStation:     nameOrCode(leg.FromName, leg.FromCode),
		FromStationCode: leg.FromCode,
		ToStation:       nameOrCode(leg.ToName, leg.ToCode),
		ToStationCode:   leg.ToCode,
		StartTime:       leg.Start,
		ArriveTime:      leg.Arrive,
		Duration:        leg.Duration,
		Seats:           leg.Seats,
	}
}

type segmentPayload struct {
	TrainNo     string            `json:"train_no"`
	FromStation string            `json:"from_station"`
	ToStation   string            `json:"to_station"`
	StartTime   string            `json:"start_time"`
	ArriveTime  string            `json:"arrive_time"`
	Duration    string            `json:"duration"`
	Seats       map[string]string `json:"seats"`
}

type transferPayload struct {
	MiddleStation string           `json:"middle_station"`
	WaitTime      string           `json:"wait_time"`
	TotalDuration string           `json:"total_duration"`
	Segments      []segmentPayload `json:"segments"`
}

type transferResponse struct {
	Success     bool              `json:"success"`
	FromStation string            `json:"from_station"`
	ToStation   string            `json:"to_station"`
	TrainDate   string            `json:"train_date"`
	Count       int               `json:"count"`
	Transfers   []transferPayload `json:"transfers"`
}

// renderTransferResult serializes engine output into the tool envelope:
// durations become "HH:MM", segments are the ordered leg pair, seats keep
// the upstream's textual availability conventions.
func renderTransferResult(res *transfer.Result) transferResponse {
	transfers := make([]transferPayload, 0, len(res.Itineraries))
	for _, it := range res.Itineraries {
		transfers = append(transfers, transferPayload{
			MiddleStation: it.Middle.Name,
			WaitTime:      transfer.FormatMinutes(it.WaitMinutes),
			TotalDuration: transfer.FormatMinutes(it.TotalMinutes),
			Segments: []segmentPayload{
				renderSegment(it.Leg1),
				renderSegment(it.Leg2),
			},
		})
	}
	return transferResponse{
		Success:     true,
		FromStation: res.From.Name,
		ToStation:   res.To.Name,
		TrainDate:   res.TrainDate,
		Count:       len(transfers),
		Transfers:   transfers,
	}
}

func renderSegment(leg railway.TrainLeg) segmentPayload {
	return segmentPayload{
		TrainNo:     leg.TrainCode,
		FromStation: nameOrCode(leg.FromName, leg.FromCode),
		ToStation:   nameOrCode(leg.ToName, leg.ToCode),
		StartTime:   leg.Start,
		ArriveTime:  leg.Arrive,
		Duration:    leg.Duration,
		Seats:       leg.Seats,
	}
}

type routeStopPayload struct {
	StationNo    string `json:"station_no"`
	StationName  string `json:"station_name"`
	ArriveTime   string `json:"arrive_time"`
	StartTime    string `json:"start_time"`
	StopoverTime string `json:"stopover_time"`
}

func renderRouteStops(stops []railway.RouteStop) []routeStopPayload {
	out := make([]routeStopPayload, 0, len(stops))
	for _, s := range stops {
		out = append(out, routeStopPayload(s))
	}
	return out
}

func nameOrCode(name, code string) string {
	if name != "" {
		return name
	}
	return code
}
