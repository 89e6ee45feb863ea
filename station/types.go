package station

import "errors"

// Station is one record of the 12306 station dataset. Code (the telecode) is
// the only stable join key across upstream queries; names can collide.
type Station struct {
	Name    string `json:"name"`
	Code    string `json:"code"`
	Pinyin  string `json:"pinyin"`
	PyShort string `json:"py_short"`
	Num     string `json:"num,omitempty"`
}

// ErrDataUnavailable is returned when the station dataset has not been
// loaded; every call that needs station resolution propagates it.
var ErrDataUnavailable = errors.New("station dataset not loaded")

// ErrStationNotFound is returned when a station name or code cannot be
// resolved against the loaded dataset.
var ErrStationNotFound = errors.New("station not found")
