package transfer

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"sync"
	"testing"

	"github.com/drfccv/mcp-server-12306/railway"
	"github.com/drfccv/mcp-server-12306/station"
)

// fakeTicketSource serves canned leg results keyed by "from>to".
type fakeTicketSource struct {
	mu    sync.Mutex
	legs  map[string][]railway.TrainLeg
	errs  map[string]error
	calls int
}

func (f *fakeTicketSource) QueryLeftTickets(ctx context.Context, fromCode, toCode, date, purposeCodes string) ([]railway.TrainLeg, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	key := fromCode + ">" + toCode
	if err, ok := f.errs[key]; ok {
		return nil, err
	}
	return f.legs[key], nil
}

func (f *fakeTicketSource) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

func testProvider(t *testing.T) *station.Provider {
	t.Helper()
	p := station.NewProvider()
	p.Swap(station.NewIndex([]station.Station{
		{Name: "九江", Code: "JJG", Pinyin: "jiujiang", PyShort: "jj"},
		{Name: "福州", Code: "FZS", Pinyin: "fuzhou", PyShort: "fz"},
		{Name: "南昌", Code: "NCG", Pinyin: "nanchang", PyShort: "nc"},
		{Name: "武汉", Code: "WHN", Pinyin: "wuhan", PyShort: "wh"},
	}))
	return p
}

func availableSeats() map[string]string {
	return map[string]string{"二等座": "有", "一等座": "3"}
}

func leg(code, from, to, start, duration string, seats map[string]string) railway.TrainLeg {
	return railway.TrainLeg{
		TrainNo:   "5l0000" + code,
		TrainCode: code,
		FromCode:  from,
		ToCode:    to,
		Start:     start,
		Duration:  duration,
		Seats:     seats,
	}
}

func TestPlanSingleCandidate(t *testing.T) {
	src := &fakeTicketSource{legs: map[string][]railway.TrainLeg{
		"JJG>NCG": {leg("G1581", "JJG", "NCG", "08:00", "00:40", availableSeats())},
		"NCG>FZS": {leg("G2045", "NCG", "FZS", "09:10", "00:30", availableSeats())},
	}}
	e := NewEngine(testProvider(t), src, []string{"NCG"}, 20, 2)

	res, err := e.Plan(context.Background(), Request{From: "九江", To: "福州", TrainDate: "2026-10-01"})
	if err != nil {
		t.Fatalf("Plan error: %v", err)
	}
	if len(res.Itineraries) != 1 {
		t.Fatalf("got %d itineraries, want 1", len(res.Itineraries))
	}
	it := res.Itineraries[0]
	if it.Middle.Code != "NCG" {
		t.Errorf("middle = %s, want NCG", it.Middle.Code)
	}
	if it.WaitMinutes != 30 {
		t.Errorf("wait = %d min, want 30", it.WaitMinutes)
	}
	if it.TotalMinutes != 100 {
		t.Errorf("total = %d min, want 100", it.TotalMinutes)
	}
}

func TestPlanCrossMidnightConnection(t *testing.T) {
	src := &fakeTicketSource{legs: map[string][]railway.TrainLeg{
		"JJG>NCG": {leg("K1181", "JJG", "NCG", "23:00", "00:50", availableSeats())},
		"NCG>FZS": {leg("K8701", "NCG", "FZS", "00:10", "01:00", availableSeats())},
	}}
	e := NewEngine(testProvider(t), src, []string{"NCG"}, 15, 2)

	res, err := e.Plan(context.Background(), Request{From: "JJG", To: "FZS", TrainDate: "2026-10-01"})
	if err != nil {
		t.Fatalf("Plan error: %v", err)
	}
	if len(res.Itineraries) != 1 {
		t.Fatalf("got %d itineraries, want 1 (00:10 should read as next-day departure)", len(res.Itineraries))
	}
	if got := res.Itineraries[0].WaitMinutes; got != 20 {
		t.Errorf("wait = %d min, want 20", got)
	}
}

func TestPlanConnectionBuffer(t *testing.T) {
	// Arrives 08:40; the 08:50 onward train leaves only 10 minutes of dwell.
	src := &fakeTicketSource{legs: map[string][]railway.TrainLeg{
		"JJG>NCG": {leg("G1581", "JJG", "NCG", "08:00", "00:40", availableSeats())},
		"NCG>FZS": {
			leg("G2045", "NCG", "FZS", "08:50", "00:30", availableSeats()),
			leg("G2047", "NCG", "FZS", "09:00", "00:30", availableSeats()),
		},
	}}
	e := NewEngine(testProvider(t), src, []string{"NCG"}, 20, 2)

	res, err := e.Plan(context.Background(), Request{From: "JJG", To: "FZS", TrainDate: "2026-10-01"})
	if err != nil {
		t.Fatalf("Plan error: %v", err)
	}
	if len(res.Itineraries) != 1 {
		t.Fatalf("got %d itineraries, want 1 (10-minute dwell must be excluded)", len(res.Itineraries))
	}
	if got := res.Itineraries[0].Leg2.TrainCode; got != "G2047" {
		t.Errorf("kept onward train %s, want G2047", got)
	}
}

func TestPlanSeatFilterOnwardLegOnly(t *testing.T) {
	soldOut := map[string]string{"二等座": "无", "一等座": "--"}
	standingOnly := map[string]string{"二等座": "无", "无座": "有"}

	tests := []struct {
		name         string
		leg2Seats    map[string]string
		showStanding bool
		want         int
	}{
		{name: "sold out onward leg excluded", leg2Seats: soldOut, want: 0},
		{name: "standing hidden by default", leg2Seats: standingOnly, want: 0},
		{name: "standing allowed when requested", leg2Seats: standingOnly, showStanding: true, want: 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			src := &fakeTicketSource{legs: map[string][]railway.TrainLeg{
				// A sold-out first leg never eliminates the pairing.
				"JJG>NCG": {leg("G1581", "JJG", "NCG", "08:00", "00:40", soldOut)},
				"NCG>FZS": {leg("G2045", "NCG", "FZS", "09:10", "00:30", tt.leg2Seats)},
			}}
			e := NewEngine(testProvider(t), src, []string{"NCG"}, 20, 2)
			res, err := e.Plan(context.Background(), Request{
				From: "JJG", To: "FZS", TrainDate: "2026-10-01", ShowStanding: tt.showStanding,
			})
			if err != nil {
				t.Fatalf("Plan error: %v", err)
			}
			if len(res.Itineraries) != tt.want {
				t.Errorf("got %d itineraries, want %d", len(res.Itineraries), tt.want)
			}
		})
	}
}

func TestPlanUnresolvableStation(t *testing.T) {
	src := &fakeTicketSource{}
	e := NewEngine(testProvider(t), src, []string{"NCG"}, 20, 2)

	_, err := e.Plan(context.Background(), Request{From: "不存在的站", To: "福州", TrainDate: "2026-10-01"})
	if !errors.Is(err, station.ErrStationNotFound) {
		t.Fatalf("err = %v, want ErrStationNotFound", err)
	}
	if n := src.callCount(); n != 0 {
		t.Errorf("made %d upstream calls before failing, want 0", n)
	}
}

func TestPlanCandidateElimination(t *testing.T) {
	src := &fakeTicketSource{
		legs: map[string][]railway.TrainLeg{
			"JJG>NCG": {leg("G1581", "JJG", "NCG", "08:00", "00:40", availableSeats())},
			"NCG>FZS": {leg("G2045", "NCG", "FZS", "09:10", "00:30", availableSeats())},
			// WHN is unreachable from the origin: empty leg1.
			"JJG>WHN": {},
		},
	}
	e := NewEngine(testProvider(t), src, []string{"NCG", "WHN"}, 20, 2)

	res, err := e.Plan(context.Background(), Request{From: "JJG", To: "FZS", TrainDate: "2026-10-01"})
	if err != nil {
		t.Fatalf("Plan error: %v", err)
	}
	for _, it := range res.Itineraries {
		if it.Middle.Code == "WHN" {
			t.Errorf("unreachable candidate WHN produced an itinerary")
		}
	}
	if len(res.Itineraries) != 1 {
		t.Errorf("got %d itineraries, want 1", len(res.Itineraries))
	}
}

func TestPlanUpstreamErrorEliminatesOnlyCandidate(t *testing.T) {
	src := &fakeTicketSource{
		legs: map[string][]railway.TrainLeg{
			"JJG>NCG": {leg("G1581", "JJG", "NCG", "08:00", "00:40", availableSeats())},
			"NCG>FZS": {leg("G2045", "NCG", "FZS", "09:10", "00:30", availableSeats())},
		},
		errs: map[string]error{
			"JJG>WHN": fmt.Errorf("upstream timeout"),
		},
	}
	e := NewEngine(testProvider(t), src, []string{"WHN", "NCG"}, 20, 2)

	res, err := e.Plan(context.Background(), Request{From: "JJG", To: "FZS", TrainDate: "2026-10-01"})
	if err != nil {
		t.Fatalf("Plan error: %v", err)
	}
	if len(res.Itineraries) != 1 {
		t.Fatalf("got %d itineraries, want 1 surviving candidate", len(res.Itineraries))
	}
}

func TestPlanForcedMiddleEqualEndpoint(t *testing.T) {
	src := &fakeTicketSource{}
	e := NewEngine(testProvider(t), src, []string{"NCG"}, 20, 2)

	res, err := e.Plan(context.Background(), Request{
		From: "九江", To: "福州", Middle: "九江", TrainDate: "2026-10-01",
	})
	if err != nil {
		t.Fatalf("Plan error: %v", err)
	}
	if len(res.Itineraries) != 0 {
		t.Errorf("got %d itineraries, want 0", len(res.Itineraries))
	}
	if n := src.callCount(); n != 0 {
		t.Errorf("made %d upstream calls for an empty candidate set, want 0", n)
	}
}

func TestPlanRankingAndDedup(t *testing.T) {
	src := &fakeTicketSource{legs: map[string][]railway.TrainLeg{
		"JJG>NCG": {
			leg("G1581", "JJG", "NCG", "08:00", "00:40", availableSeats()),
			// Same train pair again from the upstream; the duplicate must fold.
			leg("G1581", "JJG", "NCG", "08:00", "00:40", availableSeats()),
			leg("G1583", "JJG", "NCG", "08:30", "00:40", availableSeats()),
		},
		"NCG>FZS": {
			leg("G2045", "NCG", "FZS", "09:10", "00:30", availableSeats()),
			leg("G2047", "NCG", "FZS", "10:00", "00:30", availableSeats()),
		},
	}}
	e := NewEngine(testProvider(t), src, []string{"NCG"}, 20, 2)

	res, err := e.Plan(context.Background(), Request{From: "JJG", To: "FZS", TrainDate: "2026-10-01"})
	if err != nil {
		t.Fatalf("Plan error: %v", err)
	}

	var pairs [][2]string
	for _, it := range res.Itineraries {
		pairs = append(pairs, [2]string{it.Leg1.TrainCode, it.Leg2.TrainCode})
	}
	// G1583 arrives 09:10, so G2045 leaves no dwell and drops out; the
	// duplicate G1581 rows fold into one pair each.
	want := [][2]string{
		{"G1581", "G2045"}, // total 01:40
		{"G1583", "G2047"}, // total 02:00
		{"G1581", "G2047"}, // total 02:30
	}
	if !reflect.DeepEqual(pairs, want) {
		t.Errorf("ranked pairs = %v, want %v", pairs, want)
	}
}

func TestPlanIdempotent(t *testing.T) {
	legs := map[string][]railway.TrainLeg{
		"JJG>NCG": {
			leg("G1581", "JJG", "NCG", "08:00", "00:40", availableSeats()),
			leg("G1583", "JJG", "NCG", "08:30", "00:40", availableSeats()),
		},
		"NCG>FZS": {
			leg("G2045", "NCG", "FZS", "09:10", "00:30", availableSeats()),
			leg("G2047", "NCG", "FZS", "10:00", "00:30", availableSeats()),
		},
		"JJG>WHN": {leg("D3262", "JJG", "WHN", "07:30", "02:00", availableSeats())},
		"WHN>FZS": {leg("G1755", "WHN", "FZS", "11:00", "04:00", availableSeats())},
	}
	req := Request{From: "JJG", To: "FZS", TrainDate: "2026-10-01"}

	run := func() []Itinerary {
		e := NewEngine(testProvider(t), &fakeTicketSource{legs: legs}, []string{"NCG", "WHN"}, 20, 3)
		res, err := e.Plan(context.Background(), req)
		if err != nil {
			t.Fatalf("Plan error: %v", err)
		}
		return res.Itineraries
	}

	first := run()
	for i := 0; i < 5; i++ {
		if again := run(); !reflect.DeepEqual(first, again) {
			t.Fatalf("run %d differs from first run", i+1)
		}
	}
}
