package sar

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/vladk-ml/areamanager/aoi"
	"github.com/vladk-ml/areamanager/ee"
	"github.com/vladk-ml/areamanager/jobs"
	"github.com/vladk-ml/areamanager/metrics"
	"github.com/vladk-ml/areamanager/model"
	"github.com/vladk-ml/areamanager/util"
)

// Context is the context for SAR imagery requests
type Context struct {
	Store     *aoi.Store
	EE        *ee.Context
	Jobs      *jobs.Repository
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

func statusForErr(err error) int {
	var svcErr ee.ServiceError
	switch {
	case errors.As(err, &svcErr):
		return http.StatusBadGateway
	case errors.Is(err, aoi.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, aoi.ErrDuplicateName):
		return http.StatusConflict
	case errors.Is(err, aoi.ErrInvalidGeometry):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

// dateRangeFromForm reads the start/end form values, defaulting to the last
// 30 days when both are absent
func dateRangeFromForm(r *http.Request) (model.DateRange, error) {
	start, end := r.FormValue("start"), r.FormValue("end")
	if start == "" && end == "" {
		return model.DefaultDateRange(time.Now().UTC()), nil
	}
	return model.NewDateRange(start, end)
}

// PreviewHandler is a handler for /api/sar/preview
// @Title sarPreviewHandler
// @Description renders the SAR composite for a stored area into a tile layer
// @Accept  plain
// @Param   name   query   string  true         "The name of the stored area"
// @Param   start  query   string  false        "The earliest acquisition date (YYYY-MM-DD)"
// @Param   end    query   string  false        "The latest acquisition date (YYYY-MM-DD)"
// @Success 200 {object}  geojson.Feature
// @Failure 502 {object}  string
// @Router /api/sar/preview [get]
type PreviewHandler struct {
	Context Context
}

// NewPreviewHandler creates a new handler over the given store and platform
// context
func NewPreviewHandler(store *aoi.Store, eeContext *ee.Context) *PreviewHandler {
	return &PreviewHandler{Context: Context{Store: store, EE: eeContext}}
}

// ServeHTTP implements the http.Handler interface for the PreviewHandler type
func (h *PreviewHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	area, dates, ok := h.Context.areaAndDates(w, r)
	if !ok {
		return
	}

	layerData, err := GetPreview(area.Geometry, dates, h.Context.EE)
	if err != nil {
		metrics.PlatformErrors.Inc()
		message := fmt.Sprintf("Could not render SAR preview for %q: %v", area.Name, err)
		util.LogAlert(&h.Context, message)
		util.HTTPError(r, w, &h.Context, message, statusForErr(err))
		return
	}
	metrics.PreviewsRequested.Inc()

	result := model.PreviewResult{AreaResult: area.AreaResult(), MapLayerData: *layerData}
	writeFeature(w, r, &h.Context, result)
}

// StatisticsHandler is a handler for /api/sar/statistics
// @Title sarStatisticsHandler
// @Description computes VV backscatter statistics over a stored area
// @Accept  plain
// @Param   name   query   string  true         "The name of the stored area"
// @Param   start  query   string  false        "The earliest acquisition date (YYYY-MM-DD)"
// @Param   end    query   string  false        "The latest acquisition date (YYYY-MM-DD)"
// @Success 200 {object}  geojson.Feature
// @Failure 502 {object}  string
// @Router /api/sar/statistics [get]
type StatisticsHandler struct {
	Context Context
}

// NewStatisticsHandler creates a new handler over the given store and
// platform context
func NewStatisticsHandler(store *aoi.Store, eeContext *ee.Context) *StatisticsHandler {
	return &StatisticsHandler{Context: Context{Store: store, EE: eeContext}}
}

// ServeHTTP implements the http.Handler interface for the StatisticsHandler type
func (h *StatisticsHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	area, dates, ok := h.Context.areaAndDates(w, r)
	if !ok {
		return
	}

	stats, err := GetStatistics(area.Geometry, dates, h.Context.EE)
	if err != nil {
		metrics.PlatformErrors.Inc()
		message := fmt.Sprintf("Could not compute SAR statistics for %q: %v", area.Name, err)
		util.LogAlert(&h.Context, message)
		util.HTTPError(r, w, &h.Context, message, statusForErr(err))
		return
	}

	result := model.StatisticsResult{AreaResult: area.AreaResult(), StatisticsData: *stats}
	writeFeature(w, r, &h.Context, result)
}

// exportPayload is the JSON body for export requests
type exportPayload struct {
	Name        string `json:"name"`
	Destination string `json:"destination"`
	Start       string `json:"start"`
	End         string `json:"end"`
}

// ExportHandler is a handler for /api/export
// @Title exportHandler
// @Description starts a drive export of the SAR composite, or generates a
// download URL for the stored area itself
// @Accept  json
// @Success 201 {object}  jobs.ExportJob
// @Failure 502 {object}  string
// @Router /api/export [post]
type ExportHandler struct {
	Context Context
}

// NewExportHandler creates a new handler over the given store, platform
// context, and job ledger
func NewExportHandler(store *aoi.Store, eeContext *ee.Context, repo *jobs.Repository) *ExportHandler {
	return &ExportHandler{Context: Context{Store: store, EE: eeContext, Jobs: repo}}
}

// ServeHTTP implements the http.Handler interface for the ExportHandler type
func (h *ExportHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(r.Body)
	if err != nil {
		message := fmt.Sprintf("Could not read export payload: %v", err)
		util.LogAlert(&h.Context, message)
		util.HTTPError(r, w, &h.Context, message, http.StatusBadRequest)
		return
	}
	var payload exportPayload
	if err = json.Unmarshal(body, &payload); err != nil {
		message := fmt.Sprintf("Could not parse export payload: %v", err)
		util.LogAlert(&h.Context, message)
		util.HTTPError(r, w, &h.Context, message, http.StatusBadRequest)
		return
	}
	if !model.ValidDestination(payload.Destination) {
		message := fmt.Sprintf("Unrecognized export destination: %q", payload.Destination)
		util.LogAlert(&h.Context, message)
		util.HTTPError(r, w, &h.Context, message, http.StatusBadRequest)
		return
	}

	var dates model.DateRange
	if payload.Start == "" && payload.End == "" {
		dates = model.DefaultDateRange(time.Now().UTC())
	} else if dates, err = model.NewDateRange(payload.Start, payload.End); err != nil {
		message := fmt.Sprintf("Invalid export date range: %v", err)
		util.LogAlert(&h.Context, message)
		util.HTTPError(r, w, &h.Context, message, http.StatusBadRequest)
		return
	}

	area, err := h.Context.Store.Get(payload.Name)
	if err != nil {
		message := fmt.Sprintf("Could not fetch area %q: %v", payload.Name, err)
		util.LogAlert(&h.Context, message)
		util.HTTPError(r, w, &h.Context, message, statusForErr(err))
		return
	}

	var job *jobs.ExportJob
	switch model.ExportDestination(payload.Destination) {
	case model.Drive:
		operation, err := ExportComposite(area.Name, area.Geometry, dates, util.GetDriveFolder(), h.Context.EE)
		if err != nil {
			metrics.PlatformErrors.Inc()
			message := fmt.Sprintf("Could not start drive export for %q: %v", area.Name, err)
			util.LogAlert(&h.Context, message)
			util.HTTPError(r, w, &h.Context, message, statusForErr(err))
			return
		}
		job = jobs.NewExportJob(area.Name, payload.Destination, operation.State, operation.Name, dates.StartString(), dates.EndString())

	case model.Download:
		fc, err := h.Context.Store.Collection([]string{area.Name})
		if err != nil {
			message := fmt.Sprintf("Could not collect area %q: %v", area.Name, err)
			util.LogSimpleErr(&h.Context, message, err)
			util.HTTPError(r, w, &h.Context, message, statusForErr(err))
			return
		}
		downloadURL, err := ee.GetDownloadURL(fc, ExportDescription(area.Name, dates), h.Context.EE)
		if err != nil {
			metrics.PlatformErrors.Inc()
			message := fmt.Sprintf("Could not generate download URL for %q: %v", area.Name, err)
			util.LogAlert(&h.Context, message)
			util.HTTPError(r, w, &h.Context, message, statusForErr(err))
			return
		}
		job = jobs.NewExportJob(area.Name, payload.Destination, "COMPLETED", downloadURL, dates.StartString(), dates.EndString())
	}

	if err = h.Context.Jobs.Insert(job); err != nil {
		message := fmt.Sprintf("Could not record export job for %q: %v", area.Name, err)
		util.LogSimpleErr(&h.Context, message, err)
		util.HTTPError(r, w, &h.Context, message, http.StatusInternalServerError)
		return
	}
	metrics.ExportsStarted.WithLabelValues(payload.Destination).Inc()

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(job)
}

// areaAndDates resolves the requested area and date range, writing the error
// response itself when either is invalid
func (c *Context) areaAndDates(w http.ResponseWriter, r *http.Request) (aoi.AreaOfInterest, model.DateRange, bool) {
	var (
		area  aoi.AreaOfInterest
		dates model.DateRange
	)
	name := r.FormValue("name")
	if name == "" {
		message := "No area name in request"
		util.LogAlert(c, message)
		util.HTTPError(r, w, c, message, http.StatusBadRequest)
		return area, dates, false
	}

	dates, err := dateRangeFromForm(r)
	if err != nil {
		message := fmt.Sprintf("Invalid date range: %v", err)
		util.LogAlert(c, message)
		util.HTTPError(r, w, c, message, http.StatusBadRequest)
		return area, dates, false
	}

	if area, err = c.Store.Get(name); err != nil {
		message := fmt.Sprintf("Could not fetch area %q: %v", name, err)
		util.LogAlert(c, message)
		util.HTTPError(r, w, c, message, statusForErr(err))
		return area, dates, false
	}
	return area, dates, true
}

func writeFeature(w http.ResponseWriter, r *http.Request, context *Context, creator model.GeoJSONFeatureCreator) {
	feature, err := creator.GeoJSONFeature()
	if err != nil {
		message := fmt.Sprintf("Error converting result to geojson: %v", err)
		util.LogSimpleErr(context, message, err)
		util.HTTPError(r, w, context, message, http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/geo+json")
	w.Write([]byte(feature.String()))
}
