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

package ee

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/venicegeo/geojson-go/geojson"
)

type mockPlatform struct {
	status       int
	responseBody string
	lastPath     string
	lastAuth     string
	lastBody     []byte
}

func (m *mockPlatform) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	m.lastPath = r.URL.Path
	m.lastAuth = r.Header.Get("Authorization")
	m.lastBody, _ = io.ReadAll(r.Body)
	if m.status != 0 {
		w.WriteHeader(m.status)
	}
	w.Write([]byte(m.responseBody))
}

func newMockContext(platform *mockPlatform) (*Context, *httptest.Server) {
	server := httptest.NewServer(platform)
	return &Context{BaseURL: server.URL, Project: "test-project", Token: "test-token"}, server
}

func testExpression() ImageExpression {
	return ImageExpression{
		Collection: "COPERNICUS/S1_GRD",
		Bands:      []string{"VV"},
		Reducer:    "mean",
	}
}

func TestGetMapLayer_Success(t *testing.T) {
	// Mock
	platform := &mockPlatform{responseBody: `{"name": "projects/test-project/maps/abc123"}`}
	context, server := newMockContext(platform)
	defer server.Close()

	// Tested code
	layer, err := GetMapLayer(MapOptions{Expression: testExpression(), VisParams: VisParams{Min: -25, Max: 0}}, context)

	// Asserts
	assert.NoError(t, err)
	assert.Equal(t, "projects/test-project/maps/abc123", layer.Name)
	assert.Equal(t, server.URL+"/projects/test-project/maps/abc123/tiles/{z}/{x}/{y}", layer.TileURL)
	assert.Equal(t, "/projects/test-project/maps", platform.lastPath)
	assert.Equal(t, "Bearer test-token", platform.lastAuth)

	var sent MapOptions
	assert.NoError(t, json.Unmarshal(platform.lastBody, &sent))
	assert.Equal(t, "COPERNICUS/S1_GRD", sent.Expression.Collection)
	assert.Equal(t, float64(-25), sent.VisParams.Min)
}

func TestGetMapLayer_MissingName(t *testing.T) {
	// Mock
	platform := &mockPlatform{responseBody: `{}`}
	context, server := newMockContext(platform)
	defer server.Close()

	// Tested code
	_, err := GetMapLayer(MapOptions{Expression: testExpression()}, context)

	// Asserts
	assert.Error(t, err)
	assert.IsType(t, ServiceError{}, err)
}

func TestComputeValue_Success(t *testing.T) {
	// Mock
	platform := &mockPlatform{responseBody: `{"result": {"VV_mean": -12.5, "VV_stdDev": 2.1}}`}
	context, server := newMockContext(platform)
	defer server.Close()

	// Tested code
	values, err := ComputeValue(ValueOptions{Expression: testExpression(), Scale: 30, MaxPixels: 1e9}, context)

	// Asserts
	assert.NoError(t, err)
	assert.Equal(t, -12.5, values["VV_mean"])
	assert.Equal(t, 2.1, values["VV_stdDev"])
	assert.Equal(t, "/projects/test-project/value:compute", platform.lastPath)
}

func TestExportImage_Success(t *testing.T) {
	// Mock
	platform := &mockPlatform{responseBody: `{"name": "projects/test-project/operations/op-1", "state": "RUNNING"}`}
	context, server := newMockContext(platform)
	defer server.Close()

	// Tested code
	operation, err := ExportImage(ExportOptions{Expression: testExpression(), Description: "SAR_Export_Farm1_20240101", Folder: "SAR_Exports", Scale: 10, MaxPixels: 1e9}, context)

	// Asserts
	assert.NoError(t, err)
	assert.Equal(t, "projects/test-project/operations/op-1", operation.Name)
	assert.Equal(t, "RUNNING", operation.State)
	assert.Equal(t, "/projects/test-project/image:export", platform.lastPath)
}

func TestExportImage_DefaultsToPending(t *testing.T) {
	// Mock
	platform := &mockPlatform{responseBody: `{"name": "projects/test-project/operations/op-2"}`}
	context, server := newMockContext(platform)
	defer server.Close()

	// Tested code
	operation, err := ExportImage(ExportOptions{Expression: testExpression()}, context)

	// Asserts
	assert.NoError(t, err)
	assert.Equal(t, "PENDING", operation.State)
}

func TestGetDownloadURL_Success(t *testing.T) {
	// Mock
	platform := &mockPlatform{responseBody: `{"name": "projects/test-project/tables/tbl-1"}`}
	context, server := newMockContext(platform)
	defer server.Close()
	fc := geojson.NewFeatureCollection(nil)

	// Tested code
	downloadURL, err := GetDownloadURL(fc, "SAR_Export_Farm1_20240101", context)

	// Asserts
	assert.NoError(t, err)
	assert.Equal(t, server.URL+"/projects/test-project/tables/tbl-1:getFeatures?fileFormat=GEO_JSON", downloadURL)
	assert.Equal(t, "/projects/test-project/tables", platform.lastPath)
}

func TestEERequest_ClientErrorSurfacesStatus(t *testing.T) {
	// Mock
	platform := &mockPlatform{status: http.StatusUnauthorized, responseBody: `{"error": "bad token"}`}
	context, server := newMockContext(platform)
	defer server.Close()

	// Tested code
	_, err := GetMapLayer(MapOptions{Expression: testExpression()}, context)

	// Asserts
	assert.Error(t, err)
	var serviceErr ServiceError
	assert.ErrorAs(t, err, &serviceErr)
	assert.Equal(t, http.StatusUnauthorized, serviceErr.Status)
}

func TestEERequest_ServerErrorSurfacesStatus(t *testing.T) {
	// Mock
	platform := &mockPlatform{status: http.StatusServiceUnavailable, responseBody: "down for maintenance"}
	context, server := newMockContext(platform)
	defer server.Close()

	// Tested code
	_, err := ComputeValue(ValueOptions{Expression: testExpression()}, context)

	// Asserts
	var serviceErr ServiceError
	assert.ErrorAs(t, err, &serviceErr)
	assert.Equal(t, http.StatusServiceUnavailable, serviceErr.Status)
}

func TestEERequest_NetworkFailureHasNoStatus(t *testing.T) {
	// Mock: a server that is already closed
	platform := &mockPlatform{}
	context, server := newMockContext(platform)
	server.Close()

	// Tested code
	_, err := GetMapLayer(MapOptions{Expression: testExpression()}, context)

	// Asserts
	var serviceErr ServiceError
	assert.ErrorAs(t, err, &serviceErr)
	assert.Equal(t, 0, serviceErr.Status)
	assert.Contains(t, serviceErr.Error(), "platform unreachable")
}

func TestTokenRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "token")

	// Tested code
	err := SaveToken(path, "  ya29.secret  \n")
	assert.NoError(t, err)
	token, err := LoadToken(path)

	// Asserts
	assert.NoError(t, err)
	assert.Equal(t, "ya29.secret", token)
}

func TestLoadToken_Missing(t *testing.T) {
	// Tested code
	_, err := LoadToken(filepath.Join(t.TempDir(), "nope"))

	// Asserts
	assert.Error(t, err)
}
