package memory

import (
	"context"
	"sync"
	"time"

	directory "fuelstation-cloud/internal/directory/domain"
)

// Directory is an in-memory station directory for tests.
type Directory struct {
	mu       sync.RWMutex
	stations map[string]*directory.Station
}

// NewDirectory constructs an empty directory.
func NewDirectory() *Directory {
	return &Directory{stations: make(map[string]*directory.Station)}
}

// AddStation seeds a station.
func (d *Directory) AddStation(st directory.Station) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.stations[st.ID] = &st
}

// Station returns a station by id.
func (d *Directory) Station(ctx context.Context, stationID string) (*directory.Station, error) {
	_ = ctx
	d.mu.RLock()
	defer d.mu.RUnlock()
	st, ok := d.stations[stationID]
	if !ok {
		return nil, directory.ErrStationNotFound
	}
	copy := *st
	return &copy, nil
}

// ShiftBook is an in-memory shift checker for tests.
type ShiftBook struct {
	mu   sync.RWMutex
	open map[string]bool
}

// NewShiftBook constructs an empty shift book.
func NewShiftBook() *ShiftBook {
	return &ShiftBook{open: make(map[string]bool)}
}

func shiftKey(stationID, userID string, day time.Time) string {
	return stationID + "|" + userID + "|" + day.UTC().Format("2006-01-02")
}

// Open marks a shift open for a user on a station day.
func (b *ShiftBook) Open(stationID, userID string, day time.Time) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.open[shiftKey(stationID, userID, day)] = true
}

// HasOpenShift reports whether the user has an open shift.
func (b *ShiftBook) HasOpenShift(ctx context.Context, stationID, userID string, day time.Time) (bool, error) {
	_ = ctx
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.open[shiftKey(stationID, userID, day)], nil
}
