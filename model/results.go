package model

import (
	"time"

	"github.com/venicegeo/geojson-go/geojson"
)

// AreaResult holds the fields common to all single-AOI results
type AreaResult struct {
	Name        string
	Description string
	Geometry    interface{}
	Created     time.Time
	Modified    time.Time
}

// GeoJSONFeature implements the GeoJSONFeatureCreator interface
func (ar AreaResult) GeoJSONFeature() (*geojson.Feature, error) {
	f := geojson.NewFeature(ar.Geometry, ar.Name, map[string]interface{}{
		"name":        ar.Name,
		"description": ar.Description,
		"created":     ar.Created.Format(time.RFC3339),
		"modified":    ar.Modified.Format(time.RFC3339),
	})
	f.Bbox = f.ForceBbox()
	return f, nil
}

// PreviewResult is an AOI augmented with the tile layer produced for it
type PreviewResult struct {
	AreaResult
	MapLayerData
}

// GeoJSONFeature implements the GeoJSONFeatureCreator interface
func (result PreviewResult) GeoJSONFeature() (*geojson.Feature, error) {
	feature, err := result.AreaResult.GeoJSONFeature()
	if err != nil {
		return nil, err
	}

	if err = result.MapLayerData.Apply(feature); err != nil {
		return nil, err
	}

	return feature, nil
}

// StatisticsResult is an AOI augmented with backscatter statistics over its
// footprint
type StatisticsResult struct {
	AreaResult
	StatisticsData
}

// GeoJSONFeature implements the GeoJSONFeatureCreator interface
func (result StatisticsResult) GeoJSONFeature() (*geojson.Feature, error) {
	feature, err := result.AreaResult.GeoJSONFeature()
	if err != nil {
		return nil, err
	}

	if err = result.StatisticsData.Apply(feature); err != nil {
		return nil, err
	}

	return feature, nil
}

// MultiAreaResult is a container type for bundling multiple results together,
// e.g. as the body of the area listing endpoint
type MultiAreaResult struct {
	FeatureCreators []GeoJSONFeatureCreator
}

// GeoJSONFeatureCollection implements the GeoJSONFeatureCollectionCreator interface
func (result MultiAreaResult) GeoJSONFeatureCollection() (*geojson.FeatureCollection, error) {
	var err error
	features := make([]*geojson.Feature, len(result.FeatureCreators))
	for i, creator := range result.FeatureCreators {
		features[i], err = creator.GeoJSONFeature()
		if err != nil {
			return nil, err
		}
	}

	return geojson.NewFeatureCollection(features), nil
}
