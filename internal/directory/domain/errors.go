package directory

import "errors"

var (
	// ErrStationNotFound is returned when a station does not exist.
	ErrStationNotFound = errors.New("directory: station not found")
	// ErrNozzleNotFound is returned when a nozzle does not exist.
	ErrNozzleNotFound = errors.New("directory: nozzle not found")
)
