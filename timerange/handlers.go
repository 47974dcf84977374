package timerange

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/vladk-ml/areamanager/util"
)

// Context is the context for time range preset requests
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

func statusForStoreErr(err error) int {
	switch {
	case errors.Is(err, ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrInvalid), errors.Is(err, ErrNoName):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

// RangesHandler is a handler for /api/timeranges
// @Title timeRangesHandler
// @Description lists saved time range presets, or saves a new one
// @Accept  json
// @Success 200 {array}  timerange.NamedTimeRange
// @Router /api/timeranges [get,post]
type RangesHandler struct {
	Context Context
}

// NewRangesHandler creates a new handler for the given store
func NewRangesHandler(store *Store) *RangesHandler {
	return &RangesHandler{Context: Context{Store: store}}
}

// ServeHTTP implements the http.Handler interface for the RangesHandler type
func (h *RangesHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		h.list(w, r)
	case http.MethodPost:
		h.save(w, r)
	default:
		util.HTTPError(r, w, &h.Context, "Method not allowed", http.StatusMethodNotAllowed)
	}
}

func (h *RangesHandler) list(w http.ResponseWriter, r *http.Request) {
	ranges, err := h.Context.Store.List()
	if err != nil {
		message := fmt.Sprintf("Error reading time ranges: %v", err)
		util.LogSimpleErr(&h.Context, message, err)
		util.HTTPError(r, w, &h.Context, message, http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(ranges)
}

func (h *RangesHandler) save(w http.ResponseWriter, r *http.Request) {
	var payload NamedTimeRange
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		message := fmt.Sprintf("Could not parse time range payload: %v", err)
		util.LogAlert(&h.Context, message)
		util.HTTPError(r, w, &h.Context, message, http.StatusBadRequest)
		return
	}

	saved, err := h.Context.Store.Save(payload.Name, payload.StartDate, payload.EndDate)
	if err != nil {
		message := fmt.Sprintf("Could not save time range %q: %v", payload.Name, err)
		util.LogAlert(&h.Context, message)
		util.HTTPError(r, w, &h.Context, message, statusForStoreErr(err))
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(NamedTimeRange{Name: payload.Name, TimeRange: saved})
}

// RangeHandler is a handler for /api/timeranges/{name}
// @Title timeRangeHandler
// @Description fetches or deletes a single saved time range preset
// @Param   name    path   string  true        "The name of the preset"
// @Success 200 {object}  timerange.TimeRange
// @Failure 404 {object}  string
// @Router /api/timeranges/{name} [get,delete]
type RangeHandler struct {
	Context Context
}

// NewRangeHandler creates a new handler for the given store
func NewRangeHandler(store *Store) *RangeHandler {
	return &RangeHandler{Context: Context{Store: store}}
}

// ServeHTTP implements the http.Handler interface for the RangeHandler type
func (h *RangeHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	name, ok := mux.Vars(r)["name"]
	if !ok {
		message := "No time range name found in URL"
		util.LogAlert(&h.Context, message)
		util.HTTPError(r, w, &h.Context, message, http.StatusNotFound)
		return
	}

	switch r.Method {
	case http.MethodGet:
		tr, err := h.Context.Store.Get(name)
		if err != nil {
			message := fmt.Sprintf("Could not fetch time range %q: %v", name, err)
			util.LogAlert(&h.Context, message)
			util.HTTPError(r, w, &h.Context, message, statusForStoreErr(err))
			return
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(NamedTimeRange{Name: name, TimeRange: tr})

	case http.MethodDelete:
		if err := h.Context.Store.Delete(name); err != nil {
			message := fmt.Sprintf("Could not delete time range %q: %v", name, err)
			util.LogAlert(&h.Context, message)
			util.HTTPError(r, w, &h.Context, message, statusForStoreErr(err))
			return
		}
		w.WriteHeader(http.StatusNoContent)

	default:
		util.HTTPError(r, w, &h.Context, "Method not allowed", http.StatusMethodNotAllowed)
	}
}
