package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"house_admin/internal/domain"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

func TestField(t *testing.T) {
	var body struct {
		A Field[string] `json:"a"`
		B Field[string] `json:"b"`
		C Field[string] `json:"c"`
	}
	require.NoError(t, json.Unmarshal([]byte(`{"a":"x","b":null}`), &body))

	a, err := body.A.Ptr("a")
	require.NoError(t, err)
	require.NotNil(t, a)
	assert.Equal(t, "x", *a)

	_, err = body.B.Ptr("b")
	assert.ErrorIs(t, err, domain.ErrInvalid)

	c, err := body.C.Ptr("c")
	require.NoError(t, err)
	assert.Nil(t, c)
}

func TestDatePatch(t *testing.T) {
	p, err := datePatch(Field[string]{}, "d")
	require.NoError(t, err)
	assert.Nil(t, p, "absent leaves the column alone")

	p, err = datePatch(Field[string]{Set: true, Null: true}, "d")
	require.NoError(t, err)
	require.NotNil(t, p)
	assert.Nil(t, *p, "null clears the column")

	p, err = datePatch(Field[string]{Set: true, Value: "2026-04-01"}, "d")
	require.NoError(t, err)
	require.NotNil(t, p)
	require.NotNil(t, *p)
	assert.Equal(t, "2026-04-01", (*p).Format("2006-01-02"))

	_, err = datePatch(Field[string]{Set: true, Value: "April"}, "d")
	assert.ErrorIs(t, err, domain.ErrInvalid)
}

func TestWriteError(t *testing.T) {
	gin.SetMode(gin.TestMode)
	h := NewHandler(Deps{}, zaptest.NewLogger(t))

	tests := []struct {
		name   string
		err    error
		status int
		code   string
	}{
		{"capacity", fmt.Errorf("insert: %w", &domain.CapacityError{HouseID: 1, HouseNumber: "101", Count: 5}), http.StatusConflict, codeHouseFull},
		{"duplicate house", domain.ErrHouseExists, http.StatusConflict, codeHouseExists},
		{"not found", domain.ErrNotFound, http.StatusNotFound, codeNotFound},
		{"invalid", domain.Invalidf("bad"), http.StatusBadRequest, codeInvalid},
		{"store", errors.New("pq: connection refused"), http.StatusInternalServerError, codeInternal},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			c, _ := gin.CreateTestContext(w)
			h.writeError(c, tt.err)

			assert.Equal(t, tt.status, w.Code)
			var resp errorResponse
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
			assert.Equal(t, tt.code, resp.Code)
			if tt.status == http.StatusInternalServerError {
				assert.Equal(t, "internal error", resp.Error)
			}
		})
	}
}

func TestParseID(t *testing.T) {
	gin.SetMode(gin.TestMode)
	for _, raw := range []string{"0", "-1", "abc"} {
		w := httptest.NewRecorder()
		c, _ := gin.CreateTestContext(w)
		c.Params = gin.Params{{Key: "id", Value: raw}}
		_, ok := parseID(c, "id")
		assert.False(t, ok, raw)
		assert.Equal(t, http.StatusBadRequest, w.Code, raw)
	}

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Params = gin.Params{{Key: "id", Value: "42"}}
	id, ok := parseID(c, "id")
	assert.True(t, ok)
	assert.Equal(t, uint(42), id)
}
