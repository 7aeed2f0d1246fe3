// Package respond writes the JSON envelopes every API handler returns.
//
// Success bodies look like {"success":true,"data":...}. Failures all go
// through Error, which is the single place an error becomes a status code
// and a client-visible message.
package respond

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"sync"

	"github.com/dalemusser/portfolio/internal/app/system/apierr"
	"github.com/dalemusser/portfolio/internal/app/system/limits"
	"github.com/dalemusser/portfolio/internal/app/system/paging"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"
)

// Reporter receives errors that ended in a 500.
type Reporter interface {
	Report(r *http.Request, err error)
}

// Options configures the central error responder.
type Options struct {
	// Production hides error detail from clients.
	Production bool
	Reporter   Reporter
}

var (
	mu   sync.RWMutex
	opts = Options{}
)

// Configure sets the responder options. Call once during startup.
func Configure(o Options) {
	mu.Lock()
	defer mu.Unlock()
	opts = o
}

func current() Options {
	mu.RLock()
	defer mu.RUnlock()
	return opts
}

// envelope is the body shape for single-record and message responses.
type envelope struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
	Data    any    `json:"data,omitempty"`
}

type listEnvelope struct {
	Success    bool           `json:"success"`
	Count      int            `json:"count"`
	Total      int64          `json:"total"`
	Pagination paging.Summary `json:"pagination"`
	Data       any            `json:"data"`
}

type errorEnvelope struct {
	Success bool              `json:"success"`
	Message string            `json:"message"`
	Fields  map[string]string `json:"fields,omitempty"`
	Error   string            `json:"error,omitempty"`
}

// JSON writes v with the given status.
func JSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// OK writes 200 with data.
func OK(w http.ResponseWriter, data any) {
	JSON(w, http.StatusOK, envelope{Success: true, Data: data})
}

// Created writes 201 with an optional message and the new record.
func Created(w http.ResponseWriter, message string, data any) {
	JSON(w, http.StatusCreated, envelope{Success: true, Message: message, Data: data})
}

// Message writes 200 with a message and optional data.
func Message(w http.ResponseWriter, message string, data any) {
	JSON(w, http.StatusOK, envelope{Success: true, Message: message, Data: data})
}

// Empty writes 200 with an empty data object.
func Empty(w http.ResponseWriter, message string) {
	Message(w, message, struct{}{})
}

// List writes a paged list. items must be a non-nil slice so "data" is
// always an array.
func List(w http.ResponseWriter, items any, count int, total int64, p paging.Params) {
	JSON(w, http.StatusOK, listEnvelope{
		Success:    true,
		Count:      count,
		Total:      total,
		Pagination: p.Summary(total),
		Data:       items,
	})
}

// Error classifies err and writes the matching failure envelope. Unclassified
// errors become 500 "Server Error"; their detail is included only outside
// production and they are forwarded to the configured Reporter.
func Error(w http.ResponseWriter, r *http.Request, log *zap.Logger, err error) {
	o := current()
	ae := apierr.Classify(err)
	status := ae.Status()

	body := errorEnvelope{Success: false, Message: ae.Message, Fields: ae.Fields}
	if log == nil {
		log = zap.NewNop()
	}
	fields := []zap.Field{
		zap.Int("status", status),
		zap.String("method", r.Method),
		zap.String("path", r.URL.Path),
		zap.String("request_id", middleware.GetReqID(r.Context())),
	}

	if status >= http.StatusInternalServerError {
		log.Error("request failed", append(fields, zap.Error(err))...)
		if !o.Production && ae.Err != nil {
			body.Error = ae.Err.Error()
		}
		if o.Reporter != nil {
			o.Reporter.Report(r, err)
		}
	} else {
		log.Debug("request rejected", append(fields, zap.String("reason", ae.Message))...)
	}

	JSON(w, status, body)
}

// DecodeJSON reads a bounded JSON body into dst. Syntax and type errors come
// back as a 400 apierr.
func DecodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	r.Body = http.MaxBytesReader(w, r.Body, limits.MaxJSONBody)
	dec := json.NewDecoder(r.Body)
	if err := dec.Decode(dst); err != nil {
		var tooBig *http.MaxBytesError
		switch {
		case errors.Is(err, io.EOF):
			return apierr.BadRequest("Request body is required")
		case errors.As(err, &tooBig):
			return apierr.BadRequest("Request body too large")
		default:
			return apierr.BadRequest("Invalid JSON body")
		}
	}
	return nil
}
