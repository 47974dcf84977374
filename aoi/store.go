// Copyright 2024, the AreaManager authors.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//   http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package aoi

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/venicegeo/geojson-go/geojson"
)

var timeNow = time.Now

// Store persists areas of interest to a single GeoJSON FeatureCollection
// file. The file is the sole source of truth: every operation is a whole-file
// read-modify-write, and the replace is atomic (write to a temp file, then
// rename). Nothing is cached in memory.
type Store struct {
	path string
}

// NewStore creates a store backed by the given file, creating the file with
// an empty FeatureCollection if it does not exist yet
func NewStore(path string) (*Store, error) {
	store := &Store{path: path}
	if _, err := os.Stat(path); os.IsNotExist(err) {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, fmt.Errorf("creating data directory: %w", err)
		}
		if err := store.save(geojson.NewFeatureCollection(nil)); err != nil {
			return nil, err
		}
	}
	return store, nil
}

// Path returns the location of the backing file
func (s *Store) Path() string {
	return s.path
}

func (s *Store) load() (*geojson.FeatureCollection, error) {
	bytes, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return geojson.NewFeatureCollection(nil), nil
		}
		return nil, fmt.Errorf("reading area file: %w", err)
	}
	parsed, err := geojson.Parse(bytes)
	if err != nil {
		return nil, fmt.Errorf("parsing area file: %w", err)
	}
	fc, ok := parsed.(*geojson.FeatureCollection)
	if !ok {
		return nil, fmt.Errorf("area file holds a %T, not a FeatureCollection", parsed)
	}
	return fc, nil
}

func (s *Store) save(fc *geojson.FeatureCollection) error {
	tmp, err := os.CreateTemp(filepath.Dir(s.path), ".areas-*.geojson")
	if err != nil {
		return fmt.Errorf("creating temp area file: %w", err)
	}
	if _, err = tmp.WriteString(fc.String()); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return fmt.Errorf("writing area file: %w", err)
	}
	if err = tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("closing area file: %w", err)
	}
	if err = os.Rename(tmp.Name(), s.path); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("replacing area file: %w", err)
	}
	return nil
}

// List returns all stored areas in file order
func (s *Store) List() ([]AreaOfInterest, error) {
	fc, err := s.load()
	if err != nil {
		return nil, err
	}
	areas := make([]AreaOfInterest, 0, len(fc.Features))
	for _, feature := range fc.Features {
		area, err := areaFromFeature(feature)
		if err != nil {
			return nil, fmt.Errorf("area %q: %w", feature.PropertyString("name"), err)
		}
		areas = append(areas, area)
	}
	return areas, nil
}

// Get returns the area with the given name, or ErrNotFound
func (s *Store) Get(name string) (AreaOfInterest, error) {
	fc, err := s.load()
	if err != nil {
		return AreaOfInterest{}, err
	}
	for _, feature := range fc.Features {
		if feature.PropertyString("name") == name {
			return areaFromFeature(feature)
		}
	}
	return AreaOfInterest{}, ErrNotFound
}

// Create adds a new area. The name must be unused and the geometry must
// enclose an area; failed creates leave the file untouched.
func (s *Store) Create(name, description string, geometry *geojson.Polygon) (AreaOfInterest, error) {
	var area AreaOfInterest
	if name == "" {
		return area, errors.New("area name must not be empty")
	}
	normalized, err := NormalizePolygon(geometry)
	if err != nil {
		return area, err
	}

	fc, err := s.load()
	if err != nil {
		return area, err
	}
	for _, feature := range fc.Features {
		if feature.PropertyString("name") == name {
			return area, ErrDuplicateName
		}
	}

	now := timeNow().UTC()
	area = AreaOfInterest{
		Name:        name,
		Description: description,
		Geometry:    normalized,
		Created:     now,
		Modified:    now,
	}
	feature, err := area.GeoJSONFeature()
	if err != nil {
		return area, err
	}
	fc.Features = append(fc.Features, feature)
	return area, s.save(fc)
}

// Update describes the fields of an existing area to overwrite. Nil fields
// are left as stored.
type Update struct {
	NewName     *string
	Description *string
	Geometry    *geojson.Polygon
}

// Update overwrites fields of the named area and bumps its modified
// timestamp. Renaming to a name already in use fails with ErrDuplicateName.
func (s *Store) Update(name string, update Update) (AreaOfInterest, error) {
	var updated AreaOfInterest
	fc, err := s.load()
	if err != nil {
		return updated, err
	}

	index := -1
	for i, feature := range fc.Features {
		if feature.PropertyString("name") == name {
			index = i
			break
		}
	}
	if index < 0 {
		return updated, ErrNotFound
	}

	if updated, err = areaFromFeature(fc.Features[index]); err != nil {
		return updated, err
	}

	if update.NewName != nil && *update.NewName != name {
		for _, feature := range fc.Features {
			if feature.PropertyString("name") == *update.NewName {
				return updated, ErrDuplicateName
			}
		}
		updated.Name = *update.NewName
	}
	if update.Description != nil {
		updated.Description = *update.Description
	}
	if update.Geometry != nil {
		normalized, err := NormalizePolygon(update.Geometry)
		if err != nil {
			return updated, err
		}
		updated.Geometry = normalized
	}
	updated.Modified = timeNow().UTC()

	feature, err := updated.GeoJSONFeature()
	if err != nil {
		return updated, err
	}
	fc.Features[index] = feature
	return updated, s.save(fc)
}

// Delete removes the named area, or fails with ErrNotFound
func (s *Store) Delete(name string) error {
	fc, err := s.load()
	if err != nil {
		return err
	}
	remaining := make([]*geojson.Feature, 0, len(fc.Features))
	found := false
	for _, feature := range fc.Features {
		if feature.PropertyString("name") == name {
			found = true
			continue
		}
		remaining = append(remaining, feature)
	}
	if !found {
		return ErrNotFound
	}
	fc.Features = remaining
	return s.save(fc)
}

// Collection returns a FeatureCollection of the named areas, in file order.
// Unknown names fail with ErrNotFound.
func (s *Store) Collection(names []string) (*geojson.FeatureCollection, error) {
	wanted := map[string]bool{}
	for _, name := range names {
		wanted[name] = true
	}
	fc, err := s.load()
	if err != nil {
		return nil, err
	}
	selected := make([]*geojson.Feature, 0, len(names))
	for _, feature := range fc.Features {
		if wanted[feature.PropertyString("name")] {
			selected = append(selected, feature)
			delete(wanted, feature.PropertyString("name"))
		}
	}
	if len(wanted) > 0 {
		return nil, ErrNotFound
	}
	return geojson.NewFeatureCollection(selected), nil
}

// Clear resets the store to an empty FeatureCollection
func (s *Store) Clear() error {
	return s.save(geojson.NewFeatureCollection(nil))
}
