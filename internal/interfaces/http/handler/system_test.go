package handler

import (
	"encoding/json"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cementiri/backend/internal/infrastructure/persistence"
	"github.com/cementiri/backend/internal/interfaces/http/dto"
	"github.com/cementiri/backend/tests/testutil"
)

func TestNewSystemHandler(t *testing.T) {
	mock := testutil.NewMockDB(t)
	defer mock.Close()

	h := NewSystemHandler(&persistence.Database{DB: mock.DB})
	assert.NotNil(t, h)
	assert.False(t, h.startTime.IsZero())
}

func TestSystemHandler_Health(t *testing.T) {
	mock := testutil.NewMockDB(t)
	defer mock.Close()

	h := NewSystemHandler(&persistence.Database{DB: mock.DB})
	tc := testutil.NewTestContext(t)

	h.Health(tc.Context)

	assert.Equal(t, http.StatusOK, tc.ResponseCode())

	var resp dto.Response
	require.NoError(t, json.Unmarshal(tc.ResponseBody(), &resp))
	assert.True(t, resp.Success)

	data := resp.Data.(map[string]interface{})
	assert.Equal(t, "ok", data["status"])
	assert.Equal(t, "ok", data["database"])
}

func TestSystemHandler_HealthDegraded(t *testing.T) {
	mock := testutil.NewMockDB(t)
	mock.Mock.ExpectClose()
	require.NoError(t, mock.SqlDB.Close())

	h := NewSystemHandler(&persistence.Database{DB: mock.DB})
	tc := testutil.NewTestContext(t)

	h.Health(tc.Context)

	assert.Equal(t, http.StatusServiceUnavailable, tc.ResponseCode())

	var resp dto.Response
	require.NoError(t, json.Unmarshal(tc.ResponseBody(), &resp))
	data := resp.Data.(map[string]interface{})
	assert.Equal(t, "degraded", data["status"])
	assert.Equal(t, "unreachable", data["database"])
}

func TestSystemHandler_GetSystemInfo(t *testing.T) {
	mock := testutil.NewMockDB(t)
	defer mock.Close()

	h := NewSystemHandler(&persistence.Database{DB: mock.DB})
	tc := testutil.NewTestContext(t)

	h.GetSystemInfo(tc.Context)

	assert.Equal(t, http.StatusOK, tc.ResponseCode())

	var resp dto.Response
	require.NoError(t, json.Unmarshal(tc.ResponseBody(), &resp))
	assert.True(t, resp.Success)

	data := resp.Data.(map[string]interface{})
	assert.Equal(t, "Cemetery Administration API", data["name"])
	assert.Equal(t, "1.0.0", data["version"])
	assert.NotEmpty(t, data["go_version"])
	assert.NotEmpty(t, data["uptime"])
}

func TestSystemHandler_Ping(t *testing.T) {
	mock := testutil.NewMockDB(t)
	defer mock.Close()

	h := NewSystemHandler(&persistence.Database{DB: mock.DB})
	tc := testutil.NewTestContext(t)

	h.Ping(tc.Context)

	assert.Equal(t, http.StatusOK, tc.ResponseCode())

	var resp dto.Response
	require.NoError(t, json.Unmarshal(tc.ResponseBody(), &resp))
	data := resp.Data.(map[string]interface{})
	assert.Equal(t, "pong", data["message"])

	timestamp := data["timestamp"].(string)
	_, err := time.Parse(time.RFC3339, timestamp)
	assert.NoError(t, err)
}
