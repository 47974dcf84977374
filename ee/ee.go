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

// Package ee is a thin client for the hosted geospatial platform: minting
// tile layers for composites, reducing composites to statistics over a
// region, starting drive exports, and generating table download URLs.
package ee

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"strings"

	"github.com/venicegeo/geojson-go/geojson"
	"github.com/vladk-ml/areamanager/util"
)

// NewContext builds a platform context from the configured base URL, project,
// and stored access token
func NewContext() *Context {
	context := &Context{
		BaseURL: util.GetEEAPIURL(),
		Project: util.GetEEProject(),
	}
	token, err := LoadToken(util.GetEETokenFile())
	if err != nil {
		util.LogAlert(context, "No stored access token found. Run the authenticate command first.")
	}
	context.Token = token
	return context
}

// LoadToken reads a stored access token from the given file
func LoadToken(path string) (string, error) {
	bytes, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(string(bytes)), nil
}

// SaveToken writes an access token to the given file
func SaveToken(path, token string) error {
	return os.WriteFile(path, []byte(strings.TrimSpace(token)+"\n"), 0o600)
}

// GetMapLayer asks the platform to render the composite described by the
// expression and returns the minted tile layer
func GetMapLayer(options MapOptions, context *Context) (*MapLayer, error) {
	requestBody, err := json.Marshal(options)
	if err != nil {
		return nil, util.LogSimpleErr(context, fmt.Sprintf("Failed to marshal map request %#v.", options), err)
	}

	inputURL := "projects/" + context.Project + "/maps"
	body, err := eeRequest(eeRequestInput{method: "POST", inputURL: inputURL, body: requestBody, contentType: "application/json"}, context)
	if err != nil {
		return nil, err
	}

	var response mapResponse
	if err = json.Unmarshal(body, &response); err != nil {
		plErr := util.Error{LogMsg: "Failed to unmarshal response from platform map request: " + err.Error(),
			SimpleMsg: "The platform returned an unexpected response for this request. See log for further details.",
			Response:  string(body),
			URL:       inputURL}
		plErr.Log(context, "")
		return nil, ServiceError{Message: plErr.SimpleMsg}
	}
	if response.Name == "" {
		return nil, ServiceError{Message: "the platform returned no map layer name"}
	}

	return &MapLayer{
		Name:    response.Name,
		TileURL: strings.TrimSuffix(context.BaseURL, "/") + "/" + response.Name + "/tiles/{z}/{x}/{y}",
	}, nil
}

// ComputeValue reduces the composite over a region and returns the named
// statistics
func ComputeValue(options ValueOptions, context *Context) (map[string]float64, error) {
	requestBody, err := json.Marshal(options)
	if err != nil {
		return nil, util.LogSimpleErr(context, fmt.Sprintf("Failed to marshal value request %#v.", options), err)
	}

	inputURL := "projects/" + context.Project + "/value:compute"
	body, err := eeRequest(eeRequestInput{method: "POST", inputURL: inputURL, body: requestBody, contentType: "application/json"}, context)
	if err != nil {
		return nil, err
	}

	var response valueResponse
	if err = json.Unmarshal(body, &response); err != nil {
		plErr := util.Error{LogMsg: "Failed to unmarshal response from platform value request: " + err.Error(),
			SimpleMsg: "The platform returned an unexpected response for this request. See log for further details.",
			Response:  string(body),
			URL:       inputURL}
		plErr.Log(context, "")
		return nil, ServiceError{Message: plErr.SimpleMsg}
	}
	return response.Result, nil
}

// ExportImage starts a drive export of the composite and returns the job
// handle. The job runs on the platform; completion is checked by the user in
// their drive, never polled here.
func ExportImage(options ExportOptions, context *Context) (*Operation, error) {
	requestBody, err := json.Marshal(options)
	if err != nil {
		return nil, util.LogSimpleErr(context, fmt.Sprintf("Failed to marshal export request %#v.", options), err)
	}

	inputURL := "projects/" + context.Project + "/image:export"
	body, err := eeRequest(eeRequestInput{method: "POST", inputURL: inputURL, body: requestBody, contentType: "application/json"}, context)
	if err != nil {
		return nil, err
	}

	var operation Operation
	if err = json.Unmarshal(body, &operation); err != nil {
		plErr := util.Error{LogMsg: "Failed to unmarshal response from platform export request: " + err.Error(),
			SimpleMsg: "The platform returned an unexpected response for this request. See log for further details.",
			Response:  string(body),
			URL:       inputURL}
		plErr.Log(context, "")
		return nil, ServiceError{Message: plErr.SimpleMsg}
	}
	if operation.Name == "" {
		return nil, ServiceError{Message: "the platform returned no export operation name"}
	}
	if operation.State == "" {
		operation.State = "PENDING"
	}
	return &operation, nil
}

// GetDownloadURL registers the feature collection as a table on the platform
// and returns a URL the browser can fetch it from
func GetDownloadURL(fc *geojson.FeatureCollection, description string, context *Context) (string, error) {
	requestBody, err := json.Marshal(tableRequest{Collection: json.RawMessage(fc.String()), FileFormat: "GEO_JSON", Description: description})
	if err != nil {
		return "", util.LogSimpleErr(context, "Failed to marshal table request.", err)
	}

	inputURL := "projects/" + context.Project + "/tables"
	body, err := eeRequest(eeRequestInput{method: "POST", inputURL: inputURL, body: requestBody, contentType: "application/json"}, context)
	if err != nil {
		return "", err
	}

	var response tableResponse
	if err = json.Unmarshal(body, &response); err != nil {
		plErr := util.Error{LogMsg: "Failed to unmarshal response from platform table request: " + err.Error(),
			SimpleMsg: "The platform returned an unexpected response for this request. See log for further details.",
			Response:  string(body),
			URL:       inputURL}
		plErr.Log(context, "")
		return "", ServiceError{Message: plErr.SimpleMsg}
	}
	if response.Name == "" {
		return "", ServiceError{Message: "the platform returned no table name"}
	}
	return strings.TrimSuffix(context.BaseURL, "/") + "/" + response.Name + ":getFeatures?fileFormat=GEO_JSON", nil
}

// eeRequest performs the request and maps every failure to a ServiceError
func eeRequest(input eeRequestInput, context *Context) ([]byte, error) {
	inputURL := input.inputURL
	if !strings.Contains(inputURL, context.BaseURL) {
		baseURL, err := url.Parse(strings.TrimSuffix(context.BaseURL, "/") + "/")
		if err != nil {
			return nil, util.LogSimpleErr(context, fmt.Sprintf("Failed to parse %v into a URL.", context.BaseURL), err)
		}
		parsedRelativeURL, err := url.Parse(input.inputURL)
		if err != nil {
			return nil, util.LogSimpleErr(context, fmt.Sprintf("Failed to parse %v into a URL.", input.inputURL), err)
		}
		inputURL = baseURL.ResolveReference(parsedRelativeURL).String()
	}

	request, err := http.NewRequest(input.method, inputURL, bytes.NewBuffer(input.body))
	if err != nil {
		return nil, util.LogSimpleErr(context, fmt.Sprintf("Failed to make a new HTTP request for %v.", inputURL), err)
	}
	if input.contentType != "" {
		request.Header.Set("Content-Type", input.contentType)
	}
	request.Header.Set("Authorization", "Bearer "+context.Token)

	util.LogAudit(context, util.LogAuditInput{Actor: "ee/eeRequest", Action: input.method, Actee: inputURL, Message: "Requesting data from the geospatial platform", Severity: util.INFO})
	response, err := util.HTTPClient().Do(request)
	if err != nil {
		util.LogSimpleErr(context, fmt.Sprintf("Platform request to %v failed.", inputURL), err)
		return nil, ServiceError{Message: err.Error()}
	}
	defer response.Body.Close()
	util.LogAudit(context, util.LogAuditInput{Actor: inputURL, Action: input.method + " response", Actee: "ee/eeRequest", Message: "Receiving data from the geospatial platform", Severity: util.INFO})

	responseBody, _ := io.ReadAll(response.Body)
	switch {
	case (response.StatusCode >= 400) && (response.StatusCode < 500):
		message := fmt.Sprintf("The platform rejected the request: %v. ", response.Status)
		util.LogAlert(context, message+string(responseBody))
		return nil, ServiceError{Status: response.StatusCode, Message: message}
	case response.StatusCode >= 500:
		message := fmt.Sprintf("The platform failed to complete the request: %v. ", response.Status)
		util.LogAlert(context, message+string(responseBody))
		return nil, ServiceError{Status: response.StatusCode, Message: message}
	default:
		// no op
	}
	return responseBody, nil
}
