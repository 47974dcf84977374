package model

import (
	"errors"

	"github.com/venicegeo/geojson-go/geojson"
)

// MapLayerData is a mixin containing the tile layer reference returned by the
// geospatial platform for a rendered composite
type MapLayerData struct {
	MapID   string
	TileURL string
}

// Apply implements the GeoJSONFeatureMixin interface
func (mld MapLayerData) Apply(feature *geojson.Feature) error {
	if mld.TileURL == "" {
		return errors.New("no tile URL in map layer data")
	}
	feature.Properties["mapId"] = mld.MapID
	feature.Properties["tileUrl"] = mld.TileURL
	return nil
}

// StatisticsData is a mixin containing VV backscatter statistics computed
// over an AOI footprint, in dB
type StatisticsData struct {
	Mean   float64
	StdDev float64
	Min    float64
	Max    float64
}

// Apply implements the GeoJSONFeatureMixin interface
func (sd StatisticsData) Apply(feature *geojson.Feature) error {
	feature.Properties["VV_mean"] = sd.Mean
	feature.Properties["VV_stdDev"] = sd.StdDev
	feature.Properties["VV_min"] = sd.Min
	feature.Properties["VV_max"] = sd.Max
	return nil
}
