package transfer

import (
	"fmt"
	"strconv"
	"strings"
)

// All comparisons inside the engine work on minutes counted from 00:00 of
// the travel date, never on bare wall-clock strings; times are only rendered
// back to "HH:MM" at the formatting boundary.

const dayMinutes = 24 * 60

// nextDayWindow is how far behind leg1's arrival a leg2 wall-clock departure
// must lag before it is read as a next-day departure rather than a missed
// connection. Half a day keeps both readings unambiguous.
const nextDayWindow = dayMinutes / 2

// parseHHMM parses an "HH:MM" string into minutes. Hours above 23 are
// accepted because upstream elapsed times ("lishi") run past 24 on overnight
// trains.
func parseHHMM(s string) (int, error) {
	h, m, ok := strings.Cut(strings.TrimSpace(s), ":")
	if !ok {
		return 0, fmt.Errorf("malformed time %q", s)
	}
	hours, err := strconv.Atoi(h)
	if err != nil || hours < 0 {
		return 0, fmt.Errorf("malformed time %q", s)
	}
	mins, err := strconv.Atoi(m)
	if err != nil || mins < 0 || mins > 59 {
		return 0, fmt.Errorf("malformed time %q", s)
	}
	return hours*60 + mins, nil
}

// FormatMinutes renders minutes as "HH:MM" for the response boundary.
// Values past 24h keep accumulating hours, matching the upstream's
// elapsed-time convention.
func FormatMinutes(minutes int) string {
	if minutes < 0 {
		minutes = 0
	}
	return fmt.Sprintf("%02d:%02d", minutes/60, minutes%60)
}

// legSpan is a leg pinned onto the continuous timeline: departure and
// arrival in minutes from the anchor.
type legSpan struct {
	depart int
	arrive int
}

// anchorFirstLeg places leg1 on the timeline: departure is its wall-clock
// time on the travel date, arrival follows from the elapsed time so that
// overnight legs land on the correct day.
func anchorFirstLeg(start, duration string) (legSpan, error) {
	dep, err := parseHHMM(start)
	if err != nil {
		return legSpan{}, err
	}
	dur, err := parseHHMM(duration)
	if err != nil {
		return legSpan{}, err
	}
	return legSpan{depart: dep, arrive: dep + dur}, nil
}

// anchorSecondLeg places leg2 relative to leg1's arrival. The wall clock is
// first projected onto leg1's arrival day; when it lands more than
// nextDayWindow behind the arrival it is rolled one day forward, so a 23:50
// arrival connecting to a 00:10 departure reads as a 20-minute wait rather
// than a departure before arrival.
func anchorSecondLeg(start, duration string, firstArrive int) (legSpan, error) {
	wall, err := parseHHMM(start)
	if err != nil {
		return legSpan{}, err
	}
	dur, err := parseHHMM(duration)
	if err != nil {
		return legSpan{}, err
	}
	dep := wall + (firstArrive/dayMinutes)*dayMinutes
	if dep < firstArrive && firstArrive-dep > nextDayWindow {
		dep += dayMinutes
	}
	return legSpan{depart: dep, arrive: dep + dur}, nil
}
