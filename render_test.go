package mcp12306

import (
	"encoding/json"
	"testing"

	"github.com/drfccv/mcp-server-12306/railway"
	"github.com/drfccv/mcp-server-12306/station"
	"github.com/drfccv/mcp-server-12306/transfer"
)

func TestRenderTransferResult(t *testing.T) {
	res := &transfer.Result{
		From:      station.Station{Name: "九江", Code: "JJG"},
		To:        station.Station{Name: "福州", Code: "FZS"},
		TrainDate: "2026-10-01",
		Itineraries: []transfer.Itinerary{{
			Middle: station.Station{Name: "南昌", Code: "NCG"},
			Leg1: railway.TrainLeg{
				TrainCode: "G1581", FromName: "九江", ToName: "南昌",
				Start: "08:00", Arrive: "08:40", Duration: "00:40",
				Seats: map[string]string{"二等座": "有"},
			},
			Leg2: railway.TrainLeg{
				TrainCode: "G2045", FromName: "南昌", ToName: "福州",
				Start: "09:10", Arrive: "09:40", Duration: "00:30",
				Seats: map[string]string{"二等座": "5"},
			},
			WaitMinutes:  30,
			TotalMinutes: 100,
		}},
	}

	got := renderTransferResult(res)
	if !got.Success || got.Count != 1 {
		t.Fatalf("envelope = success:%v count:%d", got.Success, got.Count)
	}
	tr := got.Transfers[0]
	if tr.MiddleStation != "南昌" {
		t.Errorf("middle_station = %s", tr.MiddleStation)
	}
	if tr.WaitTime != "00:30" || tr.TotalDuration != "01:40" {
		t.Errorf("times = %s / %s, want 00:30 / 01:40", tr.WaitTime, tr.TotalDuration)
	}
	if len(tr.Segments) != 2 || tr.Segments[0].TrainNo != "G1581" || tr.Segments[1].TrainNo != "G2045" {
		t.Errorf("segments = %+v", tr.Segments)
	}
}

func TestRenderTransferResultEmpty(t *testing.T) {
	res := &transfer.Result{
		From:      station.Station{Name: "九江", Code: "JJG"},
		To:        station.Station{Name: "福州", Code: "FZS"},
		TrainDate: "2026-10-01",
	}
	got := renderTransferResult(res)
	if !got.Success {
		t.Error("an empty result is still a successful query")
	}
	if got.Count != 0 || got.Transfers == nil {
		t.Errorf("count = %d, transfers nil = %v; want 0 and an empty array", got.Count, got.Transfers == nil)
	}

	b, err := json.Marshal(got)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	var decoded map[string]any
	if err := json.Unmarshal(b, &decoded); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if _, ok := decoded["transfers"].([]any); !ok {
		t.Errorf(`"transfers" must serialize as an array, got %T`, decoded["transfers"])
	}
}

func TestRenderTrainUsesPublicCode(t *testing.T) {
	leg := railway.TrainLeg{
		TrainNo: "5l000G101401", TrainCode: "G1014",
		FromCode: "IOQ", ToCode: "GZQ",
	}
	got := renderTrain(leg)
	if got.TrainNo != "G1014" {
		t.Errorf("train_no = %s, want the public code G1014", got.TrainNo)
	}
	// Names absent, codes stand in.
	if got.FromStation != "IOQ" || got.ToStation != "GZQ" {
		t.Errorf("station fallbacks = %s / %s", got.FromStation, got.ToStation)
	}
}
