// Package railway is the HTTP client for the public 12306 query endpoints:
// left-ticket availability, train route stop tables, and train code
// resolution. It parses the upstream's positional '|'-separated ticket
// records into TrainLeg values and keeps seat availability in the upstream's
// own textual conventions.
package railway
