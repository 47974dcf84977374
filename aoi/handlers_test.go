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
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/venicegeo/geojson-go/geojson"
)

const farm1Body = `{
	"name": "Farm1",
	"description": "Test field boundary",
	"geometry": {
		"type": "Polygon",
		"coordinates": [[[-93.5, 42.0], [-93.4, 42.0], [-93.4, 42.1], [-93.5, 42.1], [-93.5, 42.0]]]
	}
}`

func newTestRouter(t *testing.T) (*mux.Router, *Store) {
	store := newTestStore(t)
	router := mux.NewRouter()
	router.Handle("/api/areas", NewAreasHandler(store))
	router.Handle("/api/areas/{name}", NewAreaHandler(store))
	return router, store
}

func doRequest(router *mux.Router, method, url, body string) *httptest.ResponseRecorder {
	request := httptest.NewRequest(method, url, strings.NewReader(body))
	response := httptest.NewRecorder()
	router.ServeHTTP(response, request)
	return response
}

func TestAreasHandler_ListEmpty(t *testing.T) {
	router, _ := newTestRouter(t)

	// Tested code
	response := doRequest(router, "GET", "/api/areas", "")

	// Asserts
	assert.Equal(t, http.StatusOK, response.Code)
	assert.Equal(t, "application/geo+json", response.Header().Get("Content-Type"))
	body, _ := io.ReadAll(response.Result().Body)
	parsed, err := geojson.Parse(body)
	assert.NoError(t, err)
	fc, ok := parsed.(*geojson.FeatureCollection)
	assert.True(t, ok)
	assert.Empty(t, fc.Features)
}

func TestAreasHandler_Create(t *testing.T) {
	router, store := newTestRouter(t)

	// Tested code
	response := doRequest(router, "POST", "/api/areas", farm1Body)

	// Asserts
	assert.Equal(t, http.StatusCreated, response.Code)
	body, _ := io.ReadAll(response.Result().Body)
	parsed, err := geojson.Parse(body)
	assert.NoError(t, err)
	feature, ok := parsed.(*geojson.Feature)
	assert.True(t, ok)
	assert.Equal(t, "Farm1", feature.PropertyString("name"))
	assert.Equal(t, "Test field boundary", feature.PropertyString("description"))
	assert.NotEmpty(t, feature.PropertyString("created"))

	stored, err := store.Get("Farm1")
	assert.NoError(t, err)
	assert.Equal(t, "Farm1", stored.Name)
}

func TestAreasHandler_CreateDuplicateConflicts(t *testing.T) {
	router, _ := newTestRouter(t)
	assert.Equal(t, http.StatusCreated, doRequest(router, "POST", "/api/areas", farm1Body).Code)

	// Tested code
	response := doRequest(router, "POST", "/api/areas", farm1Body)

	// Asserts
	assert.Equal(t, http.StatusConflict, response.Code)
}

func TestAreasHandler_CreateBadGeometry(t *testing.T) {
	router, _ := newTestRouter(t)
	badBody := `{"name": "Sliver", "geometry": {"type": "Polygon", "coordinates": [[[0,0],[1,1]]]}}`

	// Tested code
	response := doRequest(router, "POST", "/api/areas", badBody)

	// Asserts
	assert.Equal(t, http.StatusBadRequest, response.Code)
}

func TestAreasHandler_CreateNonPolygonGeometry(t *testing.T) {
	router, _ := newTestRouter(t)
	pointBody := `{"name": "Spot", "geometry": {"type": "Point", "coordinates": [0, 0]}}`

	// Tested code
	response := doRequest(router, "POST", "/api/areas", pointBody)

	// Asserts
	assert.Equal(t, http.StatusBadRequest, response.Code)
}

func TestAreasHandler_CreateMalformedJSON(t *testing.T) {
	router, _ := newTestRouter(t)

	// Tested code
	response := doRequest(router, "POST", "/api/areas", "{not json")

	// Asserts
	assert.Equal(t, http.StatusBadRequest, response.Code)
}

func TestAreaHandler_Get(t *testing.T) {
	router, _ := newTestRouter(t)
	doRequest(router, "POST", "/api/areas", farm1Body)

	// Tested code
	response := doRequest(router, "GET", "/api/areas/Farm1", "")

	// Asserts
	assert.Equal(t, http.StatusOK, response.Code)
	body, _ := io.ReadAll(response.Result().Body)
	parsed, err := geojson.Parse(body)
	assert.NoError(t, err)
	feature, ok := parsed.(*geojson.Feature)
	assert.True(t, ok)
	assert.Equal(t, "Farm1", feature.PropertyString("name"))
}

func TestAreaHandler_GetMissing(t *testing.T) {
	router, _ := newTestRouter(t)

	// Tested code
	response := doRequest(router, "GET", "/api/areas/Nowhere", "")

	// Asserts
	assert.Equal(t, http.StatusNotFound, response.Code)
}

func TestAreaHandler_Update(t *testing.T) {
	router, store := newTestRouter(t)
	doRequest(router, "POST", "/api/areas", farm1Body)

	// Tested code
	response := doRequest(router, "PUT", "/api/areas/Farm1", `{"description": "Updated boundary"}`)

	// Asserts
	assert.Equal(t, http.StatusOK, response.Code)
	stored, err := store.Get("Farm1")
	assert.NoError(t, err)
	assert.Equal(t, "Updated boundary", stored.Description)
}

func TestAreaHandler_UpdateRenameCollision(t *testing.T) {
	router, _ := newTestRouter(t)
	doRequest(router, "POST", "/api/areas", farm1Body)
	doRequest(router, "POST", "/api/areas", strings.Replace(farm1Body, "Farm1", "Farm2", 1))

	// Tested code
	response := doRequest(router, "PUT", "/api/areas/Farm1", `{"name": "Farm2"}`)

	// Asserts
	assert.Equal(t, http.StatusConflict, response.Code)
}

func TestAreaHandler_Delete(t *testing.T) {
	router, store := newTestRouter(t)
	doRequest(router, "POST", "/api/areas", farm1Body)

	// Tested code
	response := doRequest(router, "DELETE", "/api/areas/Farm1", "")

	// Asserts
	assert.Equal(t, http.StatusNoContent, response.Code)
	_, err := store.Get("Farm1")
	assert.Equal(t, ErrNotFound, err)
}

func TestAreaHandler_DeleteMissing(t *testing.T) {
	router, _ := newTestRouter(t)

	// Tested code
	response := doRequest(router, "DELETE", "/api/areas/Nowhere", "")

	// Asserts
	assert.Equal(t, http.StatusNotFound, response.Code)
}
