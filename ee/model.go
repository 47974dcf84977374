package ee

import (
	"fmt"

	"github.com/vladk-ml/areamanager/util"
)

// Context is the context for a geospatial platform operation
type Context struct {
	BaseURL   string
	Project   string
	Token     string
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

// ServiceError is any failure at the platform boundary: network errors, auth
// rejections, and API errors all surface as-is to the user and are never
// retried. Status is 0 when the request never completed.
type ServiceError struct {
	Status  int
	Message string
}

func (e ServiceError) Error() string {
	if e.Status == 0 {
		return fmt.Sprintf("platform unreachable: %v", e.Message)
	}
	return fmt.Sprintf("platform error (HTTP %v): %v", e.Status, e.Message)
}

// ImageExpression describes the composite the platform should compute: an
// image collection narrowed by filters, reduced to one band composite
type ImageExpression struct {
	Collection string   `json:"collection"`
	Filters    []Filter `json:"filters,omitempty"`
	Bands      []string `json:"bands,omitempty"`
	Reducer    string   `json:"reducer,omitempty"`
}

// Filter narrows an image collection by geometry, date, or property
type Filter struct {
	Type      string      `json:"type"`
	FieldName string      `json:"field_name,omitempty"`
	Config    interface{} `json:"config,omitempty"`
}

// DateRangeConfig is the config payload for a date range filter
type DateRangeConfig struct {
	GTE string `json:"gte,omitempty"`
	LTE string `json:"lte,omitempty"`
}

// ValueConfig is the config payload for equality and list-contains filters
type ValueConfig struct {
	Value interface{} `json:"value"`
}

// VisParams controls how a composite is rendered to tiles
type VisParams struct {
	Min     float64  `json:"min"`
	Max     float64  `json:"max"`
	Palette []string `json:"palette,omitempty"`
}

// MapOptions are the options for a tile layer request
type MapOptions struct {
	Expression ImageExpression `json:"expression"`
	VisParams  VisParams       `json:"visualizationOptions"`
}

// MapLayer is a tile layer minted by the platform for a composite
type MapLayer struct {
	Name    string
	TileURL string
}

// ValueOptions are the options for a region reduction request
type ValueOptions struct {
	Expression ImageExpression `json:"expression"`
	Geometry   interface{}     `json:"geometry"`
	Scale      float64         `json:"scale"`
	MaxPixels  float64         `json:"maxPixels"`
}

// ExportOptions are the options for a drive image export request
type ExportOptions struct {
	Expression  ImageExpression `json:"expression"`
	Geometry    interface{}     `json:"region"`
	Description string          `json:"description"`
	Folder      string          `json:"folder"`
	Scale       float64         `json:"scale"`
	MaxPixels   float64         `json:"maxPixels"`
}

// Operation is a handle to a long-running export job on the platform
type Operation struct {
	Name  string                 `json:"name"`
	State string                 `json:"state"`
	Done  bool                   `json:"done"`
	Error map[string]interface{} `json:"error,omitempty"`
}

type mapResponse struct {
	Name string `json:"name"`
}

type valueResponse struct {
	Result map[string]float64 `json:"result"`
}

type tableResponse struct {
	Name string `json:"name"`
}

type tableRequest struct {
	Collection  interface{} `json:"featureCollection"`
	FileFormat  string      `json:"fileFormat"`
	Description string      `json:"description"`
}

type eeRequestInput struct {
	method      string
	inputURL    string // URL may be relative or absolute based on BaseURL
	body        []byte
	contentType string
}
