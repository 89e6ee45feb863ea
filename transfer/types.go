package transfer

import (
	"github.com/drfccv/mcp-server-12306/railway"
	"github.com/drfccv/mcp-server-12306/station"
)

// Request describes one transfer query. From, To and Middle accept either a
// station name or a telecode; Middle, when set, restricts the candidate set
// to that single station. PurposeCodes is forwarded opaquely to the leg
// queries; ShowStanding lets the no-seat category count as usable.
type Request struct {
	From         string
	To           string
	TrainDate    string
	Middle       string
	PurposeCodes string
	ShowStanding bool
}

// Itinerary is one feasible two-leg trip joined at Middle. Wait and total
// times are minutes on the anchored timeline; rendering to "HH:MM" happens
// at the formatting boundary.
type Itinerary struct {
	Middle       station.Station
	Leg1         railway.TrainLeg
	Leg2         railway.TrainLeg
	WaitMinutes  int
	TotalMinutes int
}

// Result is a ranked sequence of itineraries for one request. Empty
// Itineraries is a valid successful outcome, not an error.
type Result struct {
	From        station.Station
	To          station.Station
	TrainDate   string
	Itineraries []Itinerary
}
