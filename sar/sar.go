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

// Package sar builds Sentinel-1 SAR composites for areas of interest:
// preview tile layers, VV backscatter statistics, and exports.
package sar

import (
	"fmt"

	"github.com/vladk-ml/areamanager/ee"
	"github.com/vladk-ml/areamanager/model"
)

// Sentinel-1 GRD collection parameters
const (
	Collection     = "COPERNICUS/S1_GRD"
	Band           = "VV"
	InstrumentMode = "IW"
)

// Processing scales, in meters per pixel
const (
	ExportScale     = 10
	StatisticsScale = 30
	MaxPixels       = 1e9
)

// DefaultVisParams renders VV backscatter between -25 dB and 0 dB in
// grayscale
var DefaultVisParams = ee.VisParams{Min: -25, Max: 0, Palette: []string{"black", "white"}}

// CompositeExpression describes the mean VV composite of all Sentinel-1 IW
// scenes intersecting the geometry within the date range
func CompositeExpression(geometry interface{}, dates model.DateRange) ee.ImageExpression {
	return ee.ImageExpression{
		Collection: Collection,
		Filters: []ee.Filter{
			{Type: "GeometryFilter", FieldName: "geometry", Config: geometry},
			{Type: "DateRangeFilter", FieldName: "system:time_start", Config: ee.DateRangeConfig{GTE: dates.StartString(), LTE: dates.EndString()}},
			{Type: "ListContainsFilter", FieldName: "transmitterReceiverPolarisation", Config: ee.ValueConfig{Value: Band}},
			{Type: "EqualsFilter", FieldName: "instrumentMode", Config: ee.ValueConfig{Value: InstrumentMode}},
		},
		Bands:   []string{Band},
		Reducer: "mean",
	}
}

// GetPreview renders the composite for the geometry and date range into a
// tile layer
func GetPreview(geometry interface{}, dates model.DateRange, context *ee.Context) (*model.MapLayerData, error) {
	layer, err := ee.GetMapLayer(ee.MapOptions{
		Expression: CompositeExpression(geometry, dates),
		VisParams:  DefaultVisParams,
	}, context)
	if err != nil {
		return nil, err
	}
	return &model.MapLayerData{MapID: layer.Name, TileURL: layer.TileURL}, nil
}

// GetStatistics reduces the composite over the geometry to mean, standard
// deviation, minimum, and maximum VV backscatter in dB
func GetStatistics(geometry interface{}, dates model.DateRange, context *ee.Context) (*model.StatisticsData, error) {
	values, err := ee.ComputeValue(ee.ValueOptions{
		Expression: CompositeExpression(geometry, dates),
		Geometry:   geometry,
		Scale:      StatisticsScale,
		MaxPixels:  MaxPixels,
	}, context)
	if err != nil {
		return nil, err
	}
	return &model.StatisticsData{
		Mean:   values[Band+"_mean"],
		StdDev: values[Band+"_stdDev"],
		Min:    values[Band+"_min"],
		Max:    values[Band+"_max"],
	}, nil
}

// ExportDescription names a drive export after the area and the start of its
// date range
func ExportDescription(areaName string, dates model.DateRange) string {
	return fmt.Sprintf("SAR_Export_%s_%s", areaName, dates.Start.Format("20060102"))
}

// ExportComposite starts a drive export of the composite over the geometry
func ExportComposite(areaName string, geometry interface{}, dates model.DateRange, folder string, context *ee.Context) (*ee.Operation, error) {
	return ee.ExportImage(ee.ExportOptions{
		Expression:  CompositeExpression(geometry, dates),
		Geometry:    geometry,
		Description: ExportDescription(areaName, dates),
		Folder:      folder,
		Scale:       ExportScale,
		MaxPixels:   MaxPixels,
	}, context)
}
