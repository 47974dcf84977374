// Package timerange persists named date range presets so a user can reuse
// the same acquisition window across areas.
package timerange

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/vladk-ml/areamanager/model"
)

// Storage errors surfaced to the user
var (
	ErrNotFound = errors.New("no time range with that name exists")
	ErrInvalid  = errors.New("time range dates must be YYYY-MM-DD with start before end")
	ErrNoName   = errors.New("time range name must not be empty")
)

var timeNow = time.Now

// TimeRange is a saved date range preset
type TimeRange struct {
	StartDate string `json:"start_date"`
	EndDate   string `json:"end_date"`
	Timestamp string `json:"timestamp"`
}

// NamedTimeRange pairs a preset with its key for listings
type NamedTimeRange struct {
	Name string `json:"name"`
	TimeRange
}

// Store persists presets to a single JSON file keyed by name, with the same
// whole-file read-modify-write and atomic replace discipline as the area
// store
type Store struct {
	path string
}

// NewStore creates a store backed by the given file, creating it empty if
// needed
func NewStore(path string) (*Store, error) {
	store := &Store{path: path}
	if _, err := os.Stat(path); os.IsNotExist(err) {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, fmt.Errorf("creating data directory: %w", err)
		}
		if err := store.save(map[string]TimeRange{}); err != nil {
			return nil, err
		}
	}
	return store, nil
}

func (s *Store) load() (map[string]TimeRange, error) {
	bytes, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return map[string]TimeRange{}, nil
		}
		return nil, fmt.Errorf("reading time range file: %w", err)
	}
	ranges := map[string]TimeRange{}
	if err = json.Unmarshal(bytes, &ranges); err != nil {
		return nil, fmt.Errorf("parsing time range file: %w", err)
	}
	return ranges, nil
}

func (s *Store) save(ranges map[string]TimeRange) error {
	bytes, err := json.MarshalIndent(ranges, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding time ranges: %w", err)
	}
	tmp, err := os.CreateTemp(filepath.Dir(s.path), ".timeranges-*.json")
	if err != nil {
		return fmt.Errorf("creating temp time range file: %w", err)
	}
	if _, err = tmp.Write(bytes); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return fmt.Errorf("writing time range file: %w", err)
	}
	if err = tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("closing time range file: %w", err)
	}
	if err = os.Rename(tmp.Name(), s.path); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("replacing time range file: %w", err)
	}
	return nil
}

// List returns all saved presets sorted by name
func (s *Store) List() ([]NamedTimeRange, error) {
	ranges, err := s.load()
	if err != nil {
		return nil, err
	}
	names := make([]string, 0, len(ranges))
	for name := range ranges {
		names = append(names, name)
	}
	sort.Strings(names)
	listed := make([]NamedTimeRange, len(names))
	for i, name := range names {
		listed[i] = NamedTimeRange{Name: name, TimeRange: ranges[name]}
	}
	return listed, nil
}

// Get returns the preset with the given name, or ErrNotFound
func (s *Store) Get(name string) (TimeRange, error) {
	ranges, err := s.load()
	if err != nil {
		return TimeRange{}, err
	}
	tr, ok := ranges[name]
	if !ok {
		return TimeRange{}, ErrNotFound
	}
	return tr, nil
}

// Save validates and stores a preset under the given name, overwriting any
// existing preset with that name
func (s *Store) Save(name, startDate, endDate string) (TimeRange, error) {
	var tr TimeRange
	if name == "" {
		return tr, ErrNoName
	}
	if _, err := model.NewDateRange(startDate, endDate); err != nil {
		return tr, ErrInvalid
	}

	ranges, err := s.load()
	if err != nil {
		return tr, err
	}
	tr = TimeRange{
		StartDate: startDate,
		EndDate:   endDate,
		Timestamp: timeNow().UTC().Format(time.RFC3339),
	}
	ranges[name] = tr
	return tr, s.save(ranges)
}

// Delete removes the named preset, or fails with ErrNotFound
func (s *Store) Delete(name string) error {
	ranges, err := s.load()
	if err != nil {
		return err
	}
	if _, ok := ranges[name]; !ok {
		return ErrNotFound
	}
	delete(ranges, name)
	return s.save(ranges)
}

// Clear removes all saved presets
func (s *Store) Clear() error {
	return s.save(map[string]TimeRange{})
}
