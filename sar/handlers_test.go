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

package sar

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/venicegeo/geojson-go/geojson"

	"github.com/vladk-ml/areamanager/aoi"
	"github.com/vladk-ml/areamanager/ee"
	"github.com/vladk-ml/areamanager/jobs"
)

type testEnv struct {
	router *mux.Router
	store  *aoi.Store
	repo   *jobs.Repository
}

// newTestEnv wires the SAR handlers against a temp area store, a temp job
// ledger, and a mock platform that serves the given body per endpoint suffix
func newTestEnv(t *testing.T, platform http.Handler) testEnv {
	dir := t.TempDir()
	store, err := aoi.NewStore(filepath.Join(dir, "areas.geojson"))
	assert.NoError(t, err)
	_, err = store.Create("Farm1", "Test field boundary", testGeometry())
	assert.NoError(t, err)

	db, err := jobs.New(filepath.Join(dir, "jobs.db"))
	assert.NoError(t, err)
	repo := jobs.NewRepository(db)
	t.Cleanup(func() { repo.Close() })

	server := httptest.NewServer(platform)
	t.Cleanup(server.Close)
	eeContext := &ee.Context{BaseURL: server.URL, Project: "test", Token: "tok"}

	router := mux.NewRouter()
	router.Handle("/api/sar/preview", NewPreviewHandler(store, eeContext))
	router.Handle("/api/sar/statistics", NewStatisticsHandler(store, eeContext))
	router.Handle("/api/export", NewExportHandler(store, eeContext, repo))
	return testEnv{router: router, store: store, repo: repo}
}

func platformStub(bodiesBySuffix map[string]string) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		for suffix, body := range bodiesBySuffix {
			if strings.HasSuffix(r.URL.Path, suffix) {
				w.Write([]byte(body))
				return
			}
		}
		w.WriteHeader(http.StatusNotFound)
	})
}

func do(router *mux.Router, method, url, body string) *httptest.ResponseRecorder {
	request := httptest.NewRequest(method, url, strings.NewReader(body))
	response := httptest.NewRecorder()
	router.ServeHTTP(response, request)
	return response
}

func parseFeature(t *testing.T, response *httptest.ResponseRecorder) *geojson.Feature {
	body, _ := io.ReadAll(response.Result().Body)
	parsed, err := geojson.Parse(body)
	assert.NoError(t, err)
	feature, ok := parsed.(*geojson.Feature)
	assert.True(t, ok, "expected a Feature, got %T", parsed)
	return feature
}

func TestPreviewHandler(t *testing.T) {
	env := newTestEnv(t, platformStub(map[string]string{
		"/maps": `{"name": "projects/test/maps/m1"}`,
	}))

	// Tested code
	response := do(env.router, "GET", "/api/sar/preview?name=Farm1&start=2024-01-01&end=2024-01-31", "")

	// Asserts
	assert.Equal(t, http.StatusOK, response.Code)
	feature := parseFeature(t, response)
	assert.Equal(t, "Farm1", feature.PropertyString("name"))
	assert.Equal(t, "projects/test/maps/m1", feature.PropertyString("mapId"))
	assert.Contains(t, feature.PropertyString("tileUrl"), "/tiles/{z}/{x}/{y}")
}

func TestPreviewHandler_DefaultsDateRange(t *testing.T) {
	env := newTestEnv(t, platformStub(map[string]string{
		"/maps": `{"name": "projects/test/maps/m1"}`,
	}))

	// Tested code
	response := do(env.router, "GET", "/api/sar/preview?name=Farm1", "")

	// Asserts
	assert.Equal(t, http.StatusOK, response.Code)
}

func TestPreviewHandler_MissingName(t *testing.T) {
	env := newTestEnv(t, platformStub(nil))

	// Tested code
	response := do(env.router, "GET", "/api/sar/preview", "")

	// Asserts
	assert.Equal(t, http.StatusBadRequest, response.Code)
}

func TestPreviewHandler_UnknownArea(t *testing.T) {
	env := newTestEnv(t, platformStub(nil))

	// Tested code
	response := do(env.router, "GET", "/api/sar/preview?name=Nowhere", "")

	// Asserts
	assert.Equal(t, http.StatusNotFound, response.Code)
}

func TestPreviewHandler_BadDateRange(t *testing.T) {
	env := newTestEnv(t, platformStub(nil))

	// Tested code
	response := do(env.router, "GET", "/api/sar/preview?name=Farm1&start=2024-02-01&end=2024-01-01", "")

	// Asserts
	assert.Equal(t, http.StatusBadRequest, response.Code)
}

func TestPreviewHandler_PlatformFailureIsBadGateway(t *testing.T) {
	env := newTestEnv(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))

	// Tested code
	response := do(env.router, "GET", "/api/sar/preview?name=Farm1", "")

	// Asserts
	assert.Equal(t, http.StatusBadGateway, response.Code)
}

func TestStatisticsHandler(t *testing.T) {
	env := newTestEnv(t, platformStub(map[string]string{
		"/value:compute": `{"result": {"VV_mean": -12.5, "VV_stdDev": 2.1, "VV_min": -24.9, "VV_max": -0.3}}`,
	}))

	// Tested code
	response := do(env.router, "GET", "/api/sar/statistics?name=Farm1&start=2024-01-01&end=2024-01-31", "")

	// Asserts
	assert.Equal(t, http.StatusOK, response.Code)
	feature := parseFeature(t, response)
	assert.Equal(t, -12.5, feature.PropertyFloat("VV_mean"))
	assert.Equal(t, 2.1, feature.PropertyFloat("VV_stdDev"))
	assert.Equal(t, -24.9, feature.PropertyFloat("VV_min"))
	assert.Equal(t, -0.3, feature.PropertyFloat("VV_max"))
}

func TestExportHandler_Drive(t *testing.T) {
	env := newTestEnv(t, platformStub(map[string]string{
		"/image:export": `{"name": "projects/test/operations/op-1", "state": "RUNNING"}`,
	}))

	// Tested code
	response := do(env.router, "POST", "/api/export",
		`{"name": "Farm1", "destination": "drive", "start": "2024-01-01", "end": "2024-01-31"}`)

	// Asserts
	assert.Equal(t, http.StatusCreated, response.Code)
	var job jobs.ExportJob
	assert.NoError(t, json.NewDecoder(response.Result().Body).Decode(&job))
	assert.Equal(t, "Farm1", job.AreaName)
	assert.Equal(t, "drive", job.Destination)
	assert.Equal(t, "RUNNING", job.State)
	assert.Equal(t, "projects/test/operations/op-1", job.Operation)
	assert.Equal(t, "2024-01-01", job.StartDate)

	recorded, err := env.repo.Get(job.ID)
	assert.NoError(t, err)
	assert.Equal(t, "RUNNING", recorded.State)
}

func TestExportHandler_Download(t *testing.T) {
	env := newTestEnv(t, platformStub(map[string]string{
		"/tables": `{"name": "projects/test/tables/tbl-1"}`,
	}))

	// Tested code
	response := do(env.router, "POST", "/api/export",
		`{"name": "Farm1", "destination": "download", "start": "2024-01-01", "end": "2024-01-31"}`)

	// Asserts
	assert.Equal(t, http.StatusCreated, response.Code)
	var job jobs.ExportJob
	assert.NoError(t, json.NewDecoder(response.Result().Body).Decode(&job))
	assert.Equal(t, "COMPLETED", job.State)
	assert.Contains(t, job.Operation, ":getFeatures?fileFormat=GEO_JSON")
}

func TestExportHandler_BadDestination(t *testing.T) {
	env := newTestEnv(t, platformStub(nil))

	// Tested code
	response := do(env.router, "POST", "/api/export", `{"name": "Farm1", "destination": "ftp"}`)

	// Asserts
	assert.Equal(t, http.StatusBadRequest, response.Code)
}

func TestExportHandler_UnknownArea(t *testing.T) {
	env := newTestEnv(t, platformStub(nil))

	// Tested code
	response := do(env.router, "POST", "/api/export", `{"name": "Nowhere", "destination": "drive"}`)

	// Asserts
	assert.Equal(t, http.StatusNotFound, response.Code)
}

func TestExportHandler_PlatformFailureRecordsNoJob(t *testing.T) {
	env := newTestEnv(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))

	// Tested code
	response := do(env.router, "POST", "/api/export", `{"name": "Farm1", "destination": "drive"}`)

	// Asserts
	assert.Equal(t, http.StatusBadGateway, response.Code)
	recorded, err := env.repo.List()
	assert.NoError(t, err)
	assert.Empty(t, recorded)
}
