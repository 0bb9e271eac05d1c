package response_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/flockhq/flock/internal/api/response"
)

func TestSuccess_WrapsDataWithMeta(t *testing.T) {
	w := httptest.NewRecorder()
	response.Success(w, http.StatusOK, map[string]string{"name": "alpha"}, "req-1")

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "application/json", w.Header().Get("Content-Type"))

	var env struct {
		Data  map[string]string `json:"data"`
		Error *response.Error   `json:"error"`
		Meta  response.Meta     `json:"meta"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env))

	assert.Equal(t, "alpha", env.Data["name"])
	assert.Nil(t, env.Error)
	assert.Equal(t, "req-1", env.Meta.RequestID)
	assert.NotEmpty(t, env.Meta.Timestamp)
}

func TestSuccess_GeneratesRequestIDWhenEmpty(t *testing.T) {
	w := httptest.NewRecorder()
	response.Success(w, http.StatusOK, nil, "")

	var env struct {
		Meta response.Meta `json:"meta"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env))
	assert.NotEmpty(t, env.Meta.RequestID)
}

func TestErr_SetsErrorAndNullData(t *testing.T) {
	w := httptest.NewRecorder()
	response.Err(w, http.StatusNotFound, "NOT_FOUND", "Team not found", "req-2")

	assert.Equal(t, http.StatusNotFound, w.Code)

	var env struct {
		Data  json.RawMessage `json:"data"`
		Error *response.Error `json:"error"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env))

	assert.Equal(t, "null", string(env.Data))
	require.NotNil(t, env.Error)
	assert.Equal(t, "NOT_FOUND", env.Error.Code)
	assert.Equal(t, "Team not found", env.Error.Message)
}

func TestErrWithDetails_IncludesDetails(t *testing.T) {
	w := httptest.NewRecorder()
	details := []map[string]string{{"field": "name", "message": "name is required"}}
	response.ErrWithDetails(w, http.StatusBadRequest, "VALIDATION_ERROR", "Input validation failed", details, "req-3")

	var env struct {
		Error struct {
			Details []map[string]string `json:"details"`
		} `json:"error"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env))
	require.Len(t, env.Error.Details, 1)
	assert.Equal(t, "name", env.Error.Details[0]["field"])
}

func TestSuccessList_PaginationMeta(t *testing.T) {
	w := httptest.NewRecorder()
	response.SuccessList(w, http.StatusOK, []string{"a", "b"}, 42, 2, 20, "req-4")

	var env struct {
		Data []string          `json:"data"`
		Meta response.ListMeta `json:"meta"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env))

	assert.Len(t, env.Data, 2)
	assert.Equal(t, 42, env.Meta.Total)
	assert.Equal(t, 2, env.Meta.Page)
	assert.Equal(t, 20, env.Meta.Limit)
}

func TestNoContent(t *testing.T) {
	w := httptest.NewRecorder()
	response.NoContent(w)

	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Empty(t, w.Body.String())
}
