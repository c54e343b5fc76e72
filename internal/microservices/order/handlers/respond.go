package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"dineflow/internal/common/logger"
	"dineflow/internal/microservices/order/domain/dto"
	"dineflow/internal/microservices/order/domain/errs"
)

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

// writeProblem writes the simplified RFC 7807 error body.
func writeProblem(w http.ResponseWriter, code int, typ, detail string) {
	writeJSON(w, code, dto.Problem{
		Type:   typ,
		Title:  http.StatusText(code),
		Status: code,
		Detail: detail,
		Error:  detail,
	})
}

// writeError maps domain errors to their HTTP status.
func writeError(w http.ResponseWriter, lg *logger.Logger, err error) {
	var e *errs.Error
	if !errors.As(err, &e) {
		lg.Error("unhandled_error", err, nil)
		writeProblem(w, http.StatusInternalServerError, "internal_error", "internal server error")
		return
	}

	p := dto.Problem{Detail: e.Message, Error: e.Message}
	switch e.Kind {
	case errs.KindInvalidOrder:
		p.Status, p.Type = http.StatusBadRequest, "invalid_order"
	case errs.KindInvalidTransition:
		p.Status, p.Type = http.StatusBadRequest, "invalid_transition"
		p.Current, p.Requested = e.Current, e.Requested
	case errs.KindNotFound:
		p.Status, p.Type = http.StatusNotFound, "not_found"
	default:
		p.Status, p.Type = http.StatusInternalServerError, "store_error"
		if errors.Is(err, context.DeadlineExceeded) {
			p.Status = http.StatusServiceUnavailable
		}
		p.Detail, p.Error = "order store unavailable", "order store unavailable"
		lg.Error("store_error", err, nil)
	}
	p.Title = http.StatusText(p.Status)
	writeJSON(w, p.Status, p)
}
