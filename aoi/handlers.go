package aoi

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/venicegeo/geojson-go/geojson"
	"github.com/vladk-ml/areamanager/metrics"
	"github.com/vladk-ml/areamanager/model"
	"github.com/vladk-ml/areamanager/util"
)

// areaPayload is the JSON body for create and update requests
type areaPayload struct {
	Name        *string         `json:"name"`
	Description *string         `json:"description"`
	Geometry    json.RawMessage `json:"geometry"`
}

func parseAreaPayload(r *http.Request) (*areaPayload, *geojson.Polygon, error) {
	body, err := io.ReadAll(r.Body)
	if err != nil {
		return nil, nil, err
	}
	var payload areaPayload
	if err = json.Unmarshal(body, &payload); err != nil {
		return nil, nil, err
	}
	var polygon *geojson.Polygon
	if len(payload.Geometry) > 0 {
		parsed, err := geojson.Parse(payload.Geometry)
		if err != nil {
			return nil, nil, err
		}
		var ok bool
		if polygon, ok = parsed.(*geojson.Polygon); !ok {
			return nil, nil, fmt.Errorf("area geometry must be a Polygon, got %T", parsed)
		}
	}
	return &payload, polygon, nil
}

func statusForStoreErr(err error) int {
	switch {
	case errors.Is(err, ErrDuplicateName):
		return http.StatusConflict
	case errors.Is(err, ErrInvalidGeometry):
		return http.StatusBadRequest
	case errors.Is(err, ErrNotFound):
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

func writeGeoJSON(w http.ResponseWriter, status int, body string) {
	w.Header().Set("Content-Type", "application/geo+json")
	w.WriteHeader(status)
	w.Write([]byte(body))
}

// AreasHandler is a handler for /api/areas
// @Title areasHandler
// @Description lists stored areas of interest, or creates a new one
// @Accept  json
// @Success 200 {object}  geojson.FeatureCollection
// @Failure 400 {object}  string
// @Router /api/areas [get,post]
type AreasHandler struct {
	Context Context
}

// NewAreasHandler creates a new handler for the given store
func NewAreasHandler(store *Store) *AreasHandler {
	return &AreasHandler{Context: Context{Store: store}}
}

// ServeHTTP implements the http.Handler interface for the AreasHandler type
func (h *AreasHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		h.list(w, r)
	case http.MethodPost:
		h.create(w, r)
	default:
		util.HTTPError(r, w, &h.Context, "Method not allowed", http.StatusMethodNotAllowed)
	}
}

func (h *AreasHandler) list(w http.ResponseWriter, r *http.Request) {
	areas, err := h.Context.Store.List()
	if err != nil {
		message := fmt.Sprintf("Error reading stored areas: %v", err)
		util.LogSimpleErr(&h.Context, message, err)
		util.HTTPError(r, w, &h.Context, message, http.StatusInternalServerError)
		return
	}

	featureCreators := make([]model.GeoJSONFeatureCreator, len(areas))
	for i, area := range areas {
		featureCreators[i] = area
	}
	fc, err := model.MultiAreaResult{FeatureCreators: featureCreators}.GeoJSONFeatureCollection()
	if err != nil {
		message := fmt.Sprintf("Error converting to feature collection: %v", err)
		util.LogSimpleErr(&h.Context, message, err)
		util.HTTPError(r, w, &h.Context, message, http.StatusInternalServerError)
		return
	}
	writeGeoJSON(w, http.StatusOK, fc.String())
}

func (h *AreasHandler) create(w http.ResponseWriter, r *http.Request) {
	payload, polygon, err := parseAreaPayload(r)
	if err != nil {
		message := fmt.Sprintf("Could not parse area payload: %v", err)
		util.LogAlert(&h.Context, message)
		util.HTTPError(r, w, &h.Context, message, http.StatusBadRequest)
		return
	}
	name, description := "", ""
	if payload.Name != nil {
		name = *payload.Name
	}
	if payload.Description != nil {
		description = *payload.Description
	}

	area, err := h.Context.Store.Create(name, description, polygon)
	if err != nil {
		message := fmt.Sprintf("Could not create area %q: %v", name, err)
		util.LogAlert(&h.Context, message)
		util.HTTPError(r, w, &h.Context, message, statusForStoreErr(err))
		return
	}
	metrics.AreaOperations.WithLabelValues("create").Inc()

	feature, err := area.GeoJSONFeature()
	if err != nil {
		message := fmt.Sprintf("Error converting area to geojson: %v", err)
		util.LogSimpleErr(&h.Context, message, err)
		util.HTTPError(r, w, &h.Context, message, http.StatusInternalServerError)
		return
	}
	writeGeoJSON(w, http.StatusCreated, feature.String())
}

// AreaHandler is a handler for /api/areas/{name}
// @Title areaHandler
// @Description fetches, overwrites, or deletes a single stored area
// @Accept  json
// @Param   name    path   string  true        "The name of the area"
// @Success 200 {object}  geojson.Feature
// @Failure 404 {object}  string
// @Router /api/areas/{name} [get,put,delete]
type AreaHandler struct {
	Context Context
}

// NewAreaHandler creates a new handler for the given store
func NewAreaHandler(store *Store) *AreaHandler {
	return &AreaHandler{Context: Context{Store: store}}
}

// ServeHTTP implements the http.Handler interface for the AreaHandler type
func (h *AreaHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	name, ok := mux.Vars(r)["name"]
	if !ok {
		message := "No area name found in URL"
		util.LogAlert(&h.Context, message)
		util.HTTPError(r, w, &h.Context, message, http.StatusNotFound)
		return
	}

	switch r.Method {
	case http.MethodGet:
		h.get(w, r, name)
	case http.MethodPut:
		h.update(w, r, name)
	case http.MethodDelete:
		h.delete(w, r, name)
	default:
		util.HTTPError(r, w, &h.Context, "Method not allowed", http.StatusMethodNotAllowed)
	}
}

func (h *AreaHandler) get(w http.ResponseWriter, r *http.Request, name string) {
	area, err := h.Context.Store.Get(name)
	if err != nil {
		message := fmt.Sprintf("Could not fetch area %q: %v", name, err)
		util.LogAlert(&h.Context, message)
		util.HTTPError(r, w, &h.Context, message, statusForStoreErr(err))
		return
	}
	feature, err := area.GeoJSONFeature()
	if err != nil {
		message := fmt.Sprintf("Error converting area to geojson: %v", err)
		util.LogSimpleErr(&h.Context, message, err)
		util.HTTPError(r, w, &h.Context, message, http.StatusInternalServerError)
		return
	}
	writeGeoJSON(w, http.StatusOK, feature.String())
}

func (h *AreaHandler) update(w http.ResponseWriter, r *http.Request, name string) {
	payload, polygon, err := parseAreaPayload(r)
	if err != nil {
		message := fmt.Sprintf("Could not parse area payload: %v", err)
		util.LogAlert(&h.Context, message)
		util.HTTPError(r, w, &h.Context, message, http.StatusBadRequest)
		return
	}

	area, err := h.Context.Store.Update(name, Update{
		NewName:     payload.Name,
		Description: payload.Description,
		Geometry:    polygon,
	})
	if err != nil {
		message := fmt.Sprintf("Could not update area %q: %v", name, err)
		util.LogAlert(&h.Context, message)
		util.HTTPError(r, w, &h.Context, message, statusForStoreErr(err))
		return
	}
	metrics.AreaOperations.WithLabelValues("update").Inc()

	feature, err := area.GeoJSONFeature()
	if err != nil {
		message := fmt.Sprintf("Error converting area to geojson: %v", err)
		util.LogSimpleErr(&h.Context, message, err)
		util.HTTPError(r, w, &h.Context, message, http.StatusInternalServerError)
		return
	}
	writeGeoJSON(w, http.StatusOK, feature.String())
}

func (h *AreaHandler) delete(w http.ResponseWriter, r *http.Request, name string) {
	if err := h.Context.Store.Delete(name); err != nil {
		message := fmt.Sprintf("Could not delete area %q: %v", name, err)
		util.LogAlert(&h.Context, message)
		util.HTTPError(r, w, &h.Context, message, statusForStoreErr(err))
		return
	}
	metrics.AreaOperations.WithLabelValues("delete").Inc()
	w.WriteHeader(http.StatusNoContent)
}
