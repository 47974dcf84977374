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
	"time"

	"github.com/venicegeo/geojson-go/geojson"
	"github.com/vladk-ml/areamanager/model"
	"github.com/vladk-ml/areamanager/util"
)

// Storage errors surfaced to the user
var (
	ErrDuplicateName   = errors.New("an area with that name already exists")
	ErrInvalidGeometry = errors.New("area geometry needs at least 3 distinct vertices")
	ErrNotFound        = errors.New("no area with that name exists")
)

// AreaOfInterest is a named polygon region drawn by the user
type AreaOfInterest struct {
	Name        string
	Description string
	Geometry    *geojson.Polygon
	Created     time.Time
	Modified    time.Time
}

// AreaResult converts the AOI to its shared result representation
func (a AreaOfInterest) AreaResult() model.AreaResult {
	return model.AreaResult{
		Name:        a.Name,
		Description: a.Description,
		Geometry:    a.Geometry,
		Created:     a.Created,
		Modified:    a.Modified,
	}
}

// GeoJSONFeature implements the model.GeoJSONFeatureCreator interface
func (a AreaOfInterest) GeoJSONFeature() (*geojson.Feature, error) {
	return a.AreaResult().GeoJSONFeature()
}

func areaFromFeature(feature *geojson.Feature) (AreaOfInterest, error) {
	area := AreaOfInterest{
		Name:        feature.PropertyString("name"),
		Description: feature.PropertyString("description"),
	}
	polygon, ok := feature.Geometry.(*geojson.Polygon)
	if !ok {
		return area, ErrInvalidGeometry
	}
	area.Geometry = polygon
	area.Created, _ = time.Parse(time.RFC3339, feature.PropertyString("created"))
	area.Modified, _ = time.Parse(time.RFC3339, feature.PropertyString("modified"))
	return area, nil
}

// NormalizePolygon validates every ring of the polygon and closes any that
// were left open by the drawing tool. A ring needs at least 3 distinct
// vertices to enclose an area.
func NormalizePolygon(polygon *geojson.Polygon) (*geojson.Polygon, error) {
	if polygon == nil || len(polygon.Coordinates) == 0 {
		return nil, ErrInvalidGeometry
	}
	rings := make([][][]float64, len(polygon.Coordinates))
	for i, ring := range polygon.Coordinates {
		normalized, err := normalizeRing(ring)
		if err != nil {
			return nil, err
		}
		rings[i] = normalized
	}
	return geojson.NewPolygon(rings), nil
}

func normalizeRing(ring [][]float64) ([][]float64, error) {
	for _, vertex := range ring {
		if len(vertex) < 2 {
			return nil, ErrInvalidGeometry
		}
	}

	closed := len(ring) > 1 && sameVertex(ring[0], ring[len(ring)-1])

	distinct := map[[2]float64]bool{}
	vertices := ring
	if closed {
		vertices = ring[:len(ring)-1]
	}
	for _, vertex := range vertices {
		distinct[[2]float64{vertex[0], vertex[1]}] = true
	}
	if len(distinct) < 3 {
		return nil, ErrInvalidGeometry
	}

	if !closed {
		ring = append(append([][]float64{}, ring...), ring[0])
	}
	return ring, nil
}

func sameVertex(a, b []float64) bool {
	return a[0] == b[0] && a[1] == b[1]
}

// Context is the context for AOI storage operations
type Context struct {
	Store     *Store
	sessionID string
}

// AppName returns the application name
func (c *Context) AppName() string {
	return "areamanager"
}

// SessionID returns a session ID, creating one if needed
func (c *Context) SessionID() string {
	if c.sessionID == "" {
		c.sessionID = util.NewUUID()
	}
	return c.sessionID
}
