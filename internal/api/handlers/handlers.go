// Package handlers implements the scoring API endpoints.
package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/ramonehamilton/bridge-scorer/internal/events"
	"github.com/ramonehamilton/bridge-scorer/internal/recompute"
	"github.com/ramonehamilton/bridge-scorer/internal/storage"
)

// Deps are the services shared by all handlers.
type Deps struct {
	Store      *storage.Service
	Recomputer *recompute.Recomputer
	Dispatcher *events.EventDispatcher

	// AutoRecompute rescores a session and the totals after every write.
	AutoRecompute bool
}

var validate = validator.New(validator.WithRequiredStructEnabled())

var errInvalidBody = errors.New("invalid request body")

// intParam reads a positive integer URL parameter.
func intParam(r *http.Request, name string) (int, error) {
	raw := chi.URLParam(r, name)
	n, err := strconv.Atoi(raw)
	if err != nil || n < 1 {
		return 0, fmt.Errorf("invalid %s %q", name, raw)
	}
	return n, nil
}

// decode reads a JSON body and validates it. The returned error is either
// errInvalidBody or a validation error.
func decode(r *http.Request, v interface{}) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return errInvalidBody
	}
	return validate.Struct(v)
}

func (d Deps) dispatch(r *http.Request, eventType string, data interface{ Map() map[string]interface{} }) {
	if d.Dispatcher == nil {
		return
	}
	d.Dispatcher.Dispatch(events.Event{Type: eventType, Data: data.Map(), TypedData: data, Context: r.Context()})
}

// afterWrite rescores what a write touched when auto recompute is on.
// session is 0 when only the totals are affected.
func (d Deps) afterWrite(r *http.Request, session int) error {
	if !d.AutoRecompute || d.Recomputer == nil {
		return nil
	}
	if session > 0 {
		if _, err := d.Recomputer.RunSession(r.Context(), session, false); err != nil {
			return err
		}
	}
	_, err := d.Recomputer.RunCompetition(r.Context())
	return err
}
