package jobs

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/vladk-ml/areamanager/util"
)

// Context is the context for job ledger requests
type Context struct {
	Repo      *Repository
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

// ListHandler is a handler for /api/jobs
// @Title jobsListHandler
// @Description lists recorded export jobs, newest first
// @Success 200 {array}  jobs.ExportJob
// @Router /api/jobs [get]
type ListHandler struct {
	Context Context
}

// NewListHandler creates a new handler over the given ledger
func NewListHandler(repo *Repository) *ListHandler {
	return &ListHandler{Context: Context{Repo: repo}}
}

// ServeHTTP implements the http.Handler interface for the ListHandler type
func (h *ListHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	jobs, err := h.Context.Repo.List()
	if err != nil {
		message := fmt.Sprintf("Error reading export jobs: %v", err)
		util.LogSimpleErr(&h.Context, message, err)
		util.HTTPError(r, w, &h.Context, message, http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(jobs)
}

// GetHandler is a handler for /api/jobs/{id}
// @Title jobsGetHandler
// @Description fetches a single recorded export job
// @Param   id    path   string  true        "The job ID"
// @Success 200 {object}  jobs.ExportJob
// @Failure 404 {object}  string
// @Router /api/jobs/{id} [get]
type GetHandler struct {
	Context Context
}

// NewGetHandler creates a new handler over the given ledger
func NewGetHandler(repo *Repository) *GetHandler {
	return &GetHandler{Context: Context{Repo: repo}}
}

// ServeHTTP implements the http.Handler interface for the GetHandler type
func (h *GetHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(mux.Vars(r)["id"])
	if err != nil {
		message := fmt.Sprintf("Invalid job ID: %v", err)
		util.LogAlert(&h.Context, message)
		util.HTTPError(r, w, &h.Context, message, http.StatusBadRequest)
		return
	}

	job, err := h.Context.Repo.Get(id)
	if errors.Is(err, ErrNotFound) {
		message := fmt.Sprintf("Export job not found: %s", id)
		util.LogInfo(&h.Context, message)
		util.HTTPError(r, w, &h.Context, message, http.StatusNotFound)
		return
	}
	if err != nil {
		message := fmt.Sprintf("Error reading export job: %v", err)
		util.LogSimpleErr(&h.Context, message, err)
		util.HTTPError(r, w, &h.Context, message, http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(job)
}
