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

package util

import (
	"fmt"
	"log"

	"github.com/google/uuid"
)

// Severity indicates the importance of a log message
type Severity string

// Log severities
const (
	INFO   Severity = "INFO"
	NOTICE Severity = "NOTICE"
	WARN   Severity = "WARN"
	ERROR  Severity = "ERROR"
)

// LogContext provides the identifying information logged with each message
type LogContext interface {
	AppName() string
	SessionID() string
}

// BasicLogContext is a LogContext with no application-specific state
type BasicLogContext struct {
	sessionID string
}

// AppName returns the application name
func (c *BasicLogContext) AppName() string {
	return "areamanager"
}

// SessionID returns a session ID, creating one if needed
func (c *BasicLogContext) SessionID() string {
	if c.sessionID == "" {
		c.sessionID = NewUUID()
	}
	return c.sessionID
}

// NewUUID returns a new random UUID string
func NewUUID() string {
	return uuid.NewString()
}

// LogAuditInput is the set of fields for an audit log record
type LogAuditInput struct {
	Actor    string
	Action   string
	Actee    string
	Message  string
	Severity Severity
}

// LogInfo logs an informational message
func LogInfo(context LogContext, message string) {
	logMessage(context, INFO, message)
}

// LogAlert logs a message needing operator attention
func LogAlert(context LogContext, message string) {
	logMessage(context, WARN, message)
}

// LogSimpleErr logs a message together with its underlying error and returns
// an error suitable for surfacing to the caller
func LogSimpleErr(context LogContext, message string, err error) error {
	logMessage(context, ERROR, fmt.Sprintf("%v %v", message, err))
	return fmt.Errorf("%v %v", message, err)
}

// LogAudit records an actor/action/actee audit message
func LogAudit(context LogContext, input LogAuditInput) {
	logMessage(context, input.Severity, fmt.Sprintf("[audit] %v -> %v -> %v: %v", input.Actor, input.Action, input.Actee, input.Message))
}

func logMessage(context LogContext, severity Severity, message string) {
	log.Printf("%v [%v] (%v) %v", context.AppName(), severity, context.SessionID(), message)
}

// Error is a richer error for failures involving an external endpoint.
// LogMsg is what gets logged; SimpleMsg is what gets surfaced to the user.
type Error struct {
	LogMsg     string
	SimpleMsg  string
	Response   string
	URL        string
	HTTPStatus int
}

// Log writes the detailed form of the error to the log and returns an error
// carrying the user-facing message
func (e Error) Log(context LogContext, prefix string) error {
	message := e.LogMsg
	if prefix != "" {
		message = prefix + ": " + message
	}
	if e.URL != "" {
		message += fmt.Sprintf("\nURL: %v", e.URL)
	}
	if e.HTTPStatus != 0 {
		message += fmt.Sprintf("\nHTTP Status: %v", e.HTTPStatus)
	}
	if e.Response != "" {
		message += fmt.Sprintf("\nResponse: %v", e.Response)
	}
	logMessage(context, ERROR, message)
	if e.SimpleMsg != "" {
		return fmt.Errorf("%s", e.SimpleMsg)
	}
	return fmt.Errorf("%s", e.LogMsg)
}
