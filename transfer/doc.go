// Package transfer synthesizes one-transfer train itineraries. 12306 offers
// no combined-transfer primitive this server can rely on, so the engine
// cross-references independent direct-ticket queries: it enumerates candidate
// middle stations, fans out origin→middle and middle→destination queries,
// keeps the pairs that connect with enough dwell time on a timeline anchored
// at the travel date, and ranks them by total elapsed time.
package transfer
