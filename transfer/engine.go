package transfer

import (
	"context"
	"fmt"
	"log"
	"sort"
	"sync"

	"github.com/drfccv/mcp-server-12306/railway"
	"github.com/drfccv/mcp-server-12306/station"
)

// Engine synthesizes one-transfer itineraries out of the direct-ticket query
// primitive. Each request runs the same pipeline: resolve stations, enumerate
// candidate middle stations, fan out two leg queries per candidate, filter
// feasible pairs on the anchored timeline, then rank. No state survives a
// request.
type Engine struct {
	stations      *station.Provider
	tickets       railway.TicketSource
	hubs          []string
	bufferMinutes int
	concurrency   int
}

// NewEngine wires the engine to its collaborators. hubs is the
// transfer-capable station reference list (telecodes); bufferMinutes is the
// minimum connection dwell at the middle station.
func NewEngine(stations *station.Provider, tickets railway.TicketSource, hubs []string, bufferMinutes, concurrency int) *Engine {
	if concurrency < 1 {
		concurrency = 1
	}
	return &Engine{
		stations:      stations,
		tickets:       tickets,
		hubs:          hubs,
		bufferMinutes: bufferMinutes,
		concurrency:   concurrency,
	}
}

// Plan runs one transfer query. It returns station.ErrStationNotFound when an
// endpoint cannot be resolved, station.ErrDataUnavailable when the dataset is
// not loaded, and ctx.Err() on cancellation. Per-candidate upstream failures
// are logged and eliminate only their candidate.
func (e *Engine) Plan(ctx context.Context, req Request) (*Result, error) {
	idx, err := e.stations.Current()
	if err != nil {
		return nil, err
	}

	from, to, candidates, err := e.resolveAndEnumerate(idx, req)
	if err != nil {
		return nil, err
	}

	pairs, err := e.queryLegs(ctx, from.Code, to.Code, req, candidates)
	if err != nil {
		return nil, err
	}

	var itineraries []Itinerary
	for i, c := range candidates {
		if pairs[i] == nil {
			continue
		}
		itineraries = append(itineraries,
			feasiblePairs(c, pairs[i].leg1, pairs[i].leg2, e.bufferMinutes, req.ShowStanding)...)
	}

	return &Result{
		From:        from,
		To:          to,
		TrainDate:   req.TrainDate,
		Itineraries: rank(itineraries),
	}, nil
}

// resolveAndEnumerate covers the ResolvingStations and EnumeratingCandidates
// stages. With no forced middle station the candidate set is the transfer-hub
// reference list minus the endpoints; reachability from the origin is then
// enforced by the leg1 query itself, which silently eliminates hubs the
// origin does not serve.
func (e *Engine) resolveAndEnumerate(idx *station.Index, req Request) (station.Station, station.Station, []station.Station, error) {
	var none station.Station
	from, ok := idx.Resolve(req.From)
	if !ok {
		return none, none, nil, fmt.Errorf("%w: %q", station.ErrStationNotFound, req.From)
	}
	to, ok := idx.Resolve(req.To)
	if !ok {
		return none, none, nil, fmt.Errorf("%w: %q", station.ErrStationNotFound, req.To)
	}

	var candidates []station.Station
	if req.Middle != "" {
		mid, ok := idx.Resolve(req.Middle)
		if !ok {
			return none, none, nil, fmt.Errorf("%w: %q", station.ErrStationNotFound, req.Middle)
		}
		if mid.Code != from.Code && mid.Code != to.Code {
			candidates = append(candidates, mid)
		}
	} else {
		seen := map[string]struct{}{}
		for _, code := range e.hubs {
			hub, ok := idx.ResolveCode(code)
			if !ok {
				continue
			}
			if hub.Code == from.Code || hub.Code == to.Code {
				continue
			}
			if _, dup := seen[hub.Code]; dup {
				continue
			}
			seen[hub.Code] = struct{}{}
			candidates = append(candidates, hub)
		}
	}
	return from, to, candidates, nil
}

// candidateLegs holds the two result sets for one candidate. A nil entry in
// the collected slice means the candidate was eliminated.
type candidateLegs struct {
	leg1 []railway.TrainLeg
	leg2 []railway.TrainLeg
}

// queryLegs fans the two leg queries per candidate out over a bounded worker
// pool. Results land in a candidate-indexed slice so output order never
// depends on completion order. A failed or empty leg eliminates only its
// candidate; cancellation aborts the whole run because ranking needs the
// full candidate set.
func (e *Engine) queryLegs(ctx context.Context, fromCode, toCode string, req Request, candidates []station.Station) ([]*candidateLegs, error) {
	results := make([]*candidateLegs, len(candidates))

	sem := make(chan struct{}, e.concurrency)
	var wg sync.WaitGroup
	for i, c := range candidates {
		if ctx.Err() != nil {
			break
		}
		wg.Add(1)
		go func(i int, c station.Station) {
			defer wg.Done()
			sem <- struct{}{}
			defer func() { <-sem }()
			if ctx.Err() != nil {
				return
			}
			results[i] = e.queryCandidate(ctx, fromCode, toCode, req, c)
		}(i, c)
	}
	wg.Wait()

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return results, nil
}

func (e *Engine) queryCandidate(ctx context.Context, fromCode, toCode string, req Request, c station.Station) *candidateLegs {
	leg1, err := e.tickets.QueryLeftTickets(ctx, fromCode, c.Code, req.TrainDate, req.PurposeCodes)
	if err != nil {
		log.Printf("transfer candidate %s eliminated: leg1 query: %v", c.Name, err)
		return nil
	}
	if len(leg1) == 0 {
		return nil
	}
	leg2, err := e.tickets.QueryLeftTickets(ctx, c.Code, toCode, req.TrainDate, req.PurposeCodes)
	if err != nil {
		log.Printf("transfer candidate %s eliminated: leg2 query: %v", c.Name, err)
		return nil
	}
	if len(leg2) == 0 {
		return nil
	}
	return &candidateLegs{leg1: leg1, leg2: leg2}
}

// feasiblePairs materializes every feasible (leg1, leg2) pair for one
// candidate: join identity by telecode, minimum connection buffer on the
// anchored timeline, and a usable seat on the onward leg.
func feasiblePairs(c station.Station, legs1, legs2 []railway.TrainLeg, bufferMinutes int, showStanding bool) []Itinerary {
	var out []Itinerary
	for _, l1 := range legs1 {
		if l1.ToCode != c.Code {
			continue
		}
		span1, err := anchorFirstLeg(l1.Start, l1.Duration)
		if err != nil {
			continue
		}
		for _, l2 := range legs2 {
			if l2.FromCode != c.Code {
				continue
			}
			if !l2.HasUsableSeat(showStanding) {
				continue
			}
			span2, err := anchorSecondLeg(l2.Start, l2.Duration, span1.arrive)
			if err != nil {
				continue
			}
			if span2.depart < span1.arrive+bufferMinutes {
				continue
			}
			out = append(out, Itinerary{
				Middle:       c,
				Leg1:         l1,
				Leg2:         l2,
				WaitMinutes:  span2.depart - span1.arrive,
				TotalMinutes: span2.arrive - span1.depart,
			})
		}
	}
	return out
}

// rank deduplicates by the riding train pair and sorts by total elapsed
// time, ties broken by wait time. The full ranked sequence is returned;
// truncation belongs to the caller.
func rank(itineraries []Itinerary) []Itinerary {
	type key struct{ a, b string }
	seen := map[key]struct{}{}
	deduped := itineraries[:0]
	for _, it := range itineraries {
		k := key{it.Leg1.TrainCode, it.Leg2.TrainCode}
		if _, dup := seen[k]; dup {
			continue
		}
		seen[k] = struct{}{}
		deduped = append(deduped, it)
	}
	sort.SliceStable(deduped, func(i, j int) bool {
		if deduped[i].TotalMinutes != deduped[j].TotalMinutes {
			return deduped[i].TotalMinutes < deduped[j].TotalMinutes
		}
		return deduped[i].WaitMinutes < deduped[j].WaitMinutes
	})
	return deduped
}
