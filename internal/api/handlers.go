package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/nerrad567/lightguard-core/internal/cycle"
	"github.com/nerrad567/lightguard-core/internal/failsafe"
	"github.com/nerrad567/lightguard-core/internal/journal"
	"github.com/nerrad567/lightguard-core/internal/lighting"
)

// healthCheckTimeout bounds the total time spent probing components.
const healthCheckTimeout = 2 * time.Second

// handleHealth reports server liveness plus each registered component's health.
// Any failing component turns the response into 503 "degraded".
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), healthCheckTimeout)
	defer cancel()

	status := "ok"
	code := http.StatusOK
	components := make(map[string]string, len(s.checks))
	for name, c := range s.checks {
		if err := c.HealthCheck(ctx); err != nil {
			components[name] = err.Error()
			status = "degraded"
			code = http.StatusServiceUnavailable
			continue
		}
		components[name] = "ok"
	}

	resp := map[string]any{
		"status":     status,
		"version":    s.version,
		"components": components,
	}
	if out, ok := s.status.Latest(); ok {
		resp["system_state"] = out.SystemState
		resp["tick"] = out.Tick
	}
	writeJSON(w, code, resp)
}

// snapshot feeds the hub's subscribe-time snapshot for the command channel.
func (s *Server) snapshot(channel string) (any, bool) {
	if channel != cycle.ChannelCommand {
		return nil, false
	}
	out, ok := s.status.Latest()
	return out, ok
}

// handleStatus returns the most recent control output.
func (s *Server) handleStatus(w http.ResponseWriter, _ *http.Request) {
	out, ok := s.status.Latest()
	if !ok {
		writeUnavailable(w, "no control cycle has completed yet")
		return
	}
	writeJSON(w, http.StatusOK, out)
}

// handleListFaults pages through the fault and transition journal.
//
// Query parameters: type (FAULT|TRANSITION), kind, severity, since (RFC 3339),
// limit, offset.
func (s *Server) handleListFaults(w http.ResponseWriter, r *http.Request) {
	if s.faults == nil {
		writeUnavailable(w, "fault journal is not configured")
		return
	}

	filter, err := parseFaultFilter(r)
	if err != nil {
		writeBadRequest(w, err.Error())
		return
	}

	result, err := s.faults.List(r.Context(), filter)
	if err != nil {
		s.logger.Error("listing journal failed", "error", err, "request_id", r.Context().Value(ctxKeyRequestID))
		writeInternalError(w, "failed to list faults")
		return
	}
	writeJSON(w, http.StatusOK, result)
}

// parseFaultFilter maps query parameters onto a journal filter, rejecting
// values the journal could never match.
func parseFaultFilter(r *http.Request) (journal.Filter, error) {
	q := r.URL.Query()
	var f journal.Filter

	if v := q.Get("type"); v != "" {
		f.Type = journal.EntryType(strings.ToUpper(v))
		if f.Type != journal.EntryFault && f.Type != journal.EntryTransition {
			return f, errors.New("type must be FAULT or TRANSITION")
		}
	}
	if v := q.Get("kind"); v != "" {
		f.Kind = failsafe.Kind(strings.ToUpper(v))
		switch f.Kind {
		case failsafe.KindInput, failsafe.KindTiming, failsafe.KindInvariant:
		default:
			return f, fmt.Errorf("unknown fault kind %q", v)
		}
	}
	if v := q.Get("severity"); v != "" {
		f.Severity = failsafe.Severity(strings.ToUpper(v))
		if f.Severity != failsafe.SeverityWarning && f.Severity != failsafe.SeverityCritical {
			return f, errors.New("severity must be WARNING or CRITICAL")
		}
	}
	if v := q.Get("since"); v != "" {
		t, err := time.Parse(time.RFC3339, v)
		if err != nil {
			return f, errors.New("since must be an RFC 3339 timestamp")
		}
		f.Since = t
	}

	var err error
	if f.Limit, err = intParam(q.Get("limit")); err != nil {
		return f, fmt.Errorf("limit: %w", err)
	}
	if f.Offset, err = intParam(q.Get("offset")); err != nil {
		return f, fmt.Errorf("offset: %w", err)
	}
	return f, nil
}

func intParam(v string) (int, error) {
	if v == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil || n < 0 {
		return 0, errors.New("must be a non-negative integer")
	}
	return n, nil
}

// overrideBody is the request and response body for /override.
// A null or empty mode means automatic control.
type overrideBody struct {
	Mode *string `json:"mode"`
}

func overrideResponse(mode *lighting.BeamMode) overrideBody {
	if mode == nil {
		return overrideBody{}
	}
	m := string(*mode)
	return overrideBody{Mode: &m}
}

// handleGetOverride returns the currently held manual beam request.
func (s *Server) handleGetOverride(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, overrideResponse(s.override.Manual()))
}

// handleSetOverride holds or releases the manual beam request. The next tick
// picks it up; the controller rather than this handler decides whether the
// system state allows it.
func (s *Server) handleSetOverride(w http.ResponseWriter, r *http.Request) {
	var body overrideBody
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&body); err != nil {
		writeBadRequest(w, "invalid JSON body")
		return
	}

	var mode *lighting.BeamMode
	if body.Mode != nil && !strings.EqualFold(strings.TrimSpace(*body.Mode), "AUTO") && strings.TrimSpace(*body.Mode) != "" {
		m, err := lighting.ParseBeamMode(*body.Mode)
		if err != nil {
			writeError(w, http.StatusBadRequest, ErrCodeValidation, "mode must be LOW, HIGH, AUTO or null")
			return
		}
		mode = &m
	}

	s.override.SetManual(mode)

	label := "AUTO"
	if mode != nil {
		label = string(*mode)
	}
	subject := ""
	if claims := claimsFromContext(r.Context()); claims != nil {
		subject = claims.Subject
	}
	s.logger.Info("manual beam override set",
		"mode", label,
		"subject", subject,
		"request_id", r.Context().Value(ctxKeyRequestID),
	)
	writeJSON(w, http.StatusOK, overrideResponse(mode))
}
