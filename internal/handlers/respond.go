package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"house_admin/internal/domain"
	"house_admin/internal/model"

	"github.com/gin-gonic/gin"
)

const (
	codeHouseFull   = "house_full"
	codeSyncFailed  = "sync_failed"
	codeNotFound    = "not_found"
	codeInvalid     = "invalid"
	codeHouseExists = "house_exists"
	codeInternal    = "internal"
)

type errorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

// writeError maps domain errors to HTTP statuses. Store failures are not
// echoed to the client.
func (h *Handler) writeError(c *gin.Context, err error) {
	_ = c.Error(err)
	switch {
	case domain.IsCapacity(err):
		c.JSON(http.StatusConflict, errorResponse{Error: err.Error(), Code: codeHouseFull})
	case errors.Is(err, domain.ErrHouseExists):
		c.JSON(http.StatusConflict, errorResponse{Error: err.Error(), Code: codeHouseExists})
	case errors.Is(err, domain.ErrNotFound):
		c.JSON(http.StatusNotFound, errorResponse{Error: err.Error(), Code: codeNotFound})
	case errors.Is(err, domain.ErrInvalid):
		c.JSON(http.StatusBadRequest, errorResponse{Error: err.Error(), Code: codeInvalid})
	default:
		c.JSON(http.StatusInternalServerError, errorResponse{Error: "internal error", Code: codeInternal})
	}
}

func badRequest(c *gin.Context, msg string) {
	c.JSON(http.StatusBadRequest, errorResponse{Error: msg, Code: codeInvalid})
}

func parseID(c *gin.Context, name string) (uint, bool) {
	id, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil || id == 0 {
		badRequest(c, "invalid "+name)
		return 0, false
	}
	return uint(id), true
}

// Field is a JSON field that tells "absent" from "null" in PATCH bodies.
type Field[T any] struct {
	Set   bool
	Null  bool
	Value T
}

func (f *Field[T]) UnmarshalJSON(b []byte) error {
	f.Set = true
	if string(b) == "null" {
		f.Null = true
		return nil
	}
	return json.Unmarshal(b, &f.Value)
}

// Ptr returns nil when the field is absent, else a pointer to the value.
// Null is rejected for fields that are not nullable.
func (f Field[T]) Ptr(name string) (*T, error) {
	if !f.Set {
		return nil, nil
	}
	if f.Null {
		return nil, domain.Invalidf("%s must not be null", name)
	}
	v := f.Value
	return &v, nil
}

// datePatch converts an optional "YYYY-MM-DD" field to the double pointer
// used by model patches: nil leaves the column alone, a pointer to nil
// clears it.
func datePatch(f Field[string], name string) (**time.Time, error) {
	if !f.Set {
		return nil, nil
	}
	var d *time.Time
	if !f.Null {
		parsed, err := model.ParseDate(f.Value)
		if err != nil {
			return nil, domain.Invalidf("%s: %v", name, err)
		}
		d = parsed
	}
	return &d, nil
}

func parseDate(s, name string) (*time.Time, error) {
	d, err := model.ParseDate(s)
	if err != nil {
		return nil, domain.Invalidf("%s: %v", name, err)
	}
	return d, nil
}

func formatDate(t *time.Time) *string {
	if t == nil {
		return nil
	}
	s := model.FormatDate(t)
	return &s
}
