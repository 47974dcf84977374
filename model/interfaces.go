package model

import "github.com/venicegeo/geojson-go/geojson"

// ExportDestination is an enum type for recognized export targets
type ExportDestination string

// Drive corresponds to exports written to the user's cloud drive
const Drive ExportDestination = "drive"

// Download corresponds to exports retrieved through a download URL
const Download ExportDestination = "download"

// ValidDestination reports whether the given string names a known export target
func ValidDestination(destination string) bool {
	switch ExportDestination(destination) {
	case Drive, Download:
		return true
	}
	return false
}

// GeoJSONFeatureCreator is an interface for data that can convert itself to a GeoJSON feature
type GeoJSONFeatureCreator interface {
	GeoJSONFeature() (*geojson.Feature, error)
}

// GeoJSONFeatureCollectionCreator is an interface for data that can convert itself to a GeoJSON feature collection
type GeoJSONFeatureCollectionCreator interface {
	GeoJSONFeatureCollection() (*geojson.FeatureCollection, error)
}

// GeoJSONFeatureMixin is an interface for data that can be used to augment an existing GeoJSON feature
type GeoJSONFeatureMixin interface {
	Apply(*geojson.Feature) error
}
