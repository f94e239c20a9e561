package api

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/critmon/pulsecheck/internal/services"
	"github.com/critmon/pulsecheck/internal/store"
)

func newTestRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)
	st := store.NewMemoryStore()
	svc := services.NewMonitorService(st, 100, time.Minute, zerolog.Nop())
	return NewRouter(svc, zerolog.Nop())
}

func doJSON(t *testing.T, r *gin.Engine, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func decodeBody(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var body map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return body
}

// TestCreateMonitor_Success tests POST /monitors.
func TestCreateMonitor_Success(t *testing.T) {
	r := newTestRouter()

	w := doJSON(t, r, http.MethodPost, "/monitors", gin.H{
		"device_id": "pump-1", "timeout": 60, "alert_email": "ops@example.com",
	})

	assert.Equal(t, http.StatusCreated, w.Code)
	body := decodeBody(t, w)
	assert.Equal(t, true, body["success"])
	data := body["data"].(map[string]any)
	assert.Equal(t, "pump-1", data["device_id"])
	assert.NotEmpty(t, data["id"])
}

// TestCreateMonitor_Validation tests rejection of malformed input before any
// state mutation.
func TestCreateMonitor_Validation(t *testing.T) {
	r := newTestRouter()

	cases := []gin.H{
		{"timeout": 60, "alert_email": "ops@example.com"},                    // missing device id
		{"device_id": "pump-1", "timeout": 0, "alert_email": "a@b.com"},      // non-positive timeout
		{"device_id": "pump-1", "timeout": 60, "alert_email": "not-an-email"}, // malformed email
	}
	for _, c := range cases {
		w := doJSON(t, r, http.MethodPost, "/monitors", c)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	}

	w := doJSON(t, r, http.MethodGet, "/monitors", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	body := decodeBody(t, w)
	assert.Empty(t, body["data"])
}

// TestCreateMonitorsBatch_Partial tests the 206 partial-success mapping.
func TestCreateMonitorsBatch_Partial(t *testing.T) {
	r := newTestRouter()

	w := doJSON(t, r, http.MethodPost, "/monitors", gin.H{
		"device_id": "pump-1", "timeout": 60, "alert_email": "ops@example.com",
	})
	require.Equal(t, http.StatusCreated, w.Code)

	w = doJSON(t, r, http.MethodPost, "/monitors/batch", gin.H{
		"devices": []gin.H{
			{"id": "pump-1", "timeout": 60, "alert_email": "ops@example.com"},
			{"id": "pump-2", "timeout": 60, "alert_email": "ops@example.com"},
		},
	})
	assert.Equal(t, http.StatusPartialContent, w.Code)

	body := decodeBody(t, w)
	data := body["data"].(map[string]any)
	assert.Equal(t, float64(2), data["total_requested"])
	assert.Equal(t, float64(1), data["successful"])
	assert.Equal(t, float64(1), data["failed"])
}

// TestCreateMonitorsBatch_AllDuplicates tests the 400 no-success mapping.
func TestCreateMonitorsBatch_AllDuplicates(t *testing.T) {
	r := newTestRouter()

	w := doJSON(t, r, http.MethodPost, "/monitors", gin.H{
		"device_id": "pump-1", "timeout": 60, "alert_email": "ops@example.com",
	})
	require.Equal(t, http.StatusCreated, w.Code)

	w = doJSON(t, r, http.MethodPost, "/monitors/batch", gin.H{
		"devices": []gin.H{
			{"id": "pump-1", "timeout": 60, "alert_email": "ops@example.com"},
		},
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

// TestCreateMonitorsBatch_Empty tests the degenerate 0/0 batch.
func TestCreateMonitorsBatch_Empty(t *testing.T) {
	r := newTestRouter()

	w := doJSON(t, r, http.MethodPost, "/monitors/batch", gin.H{"devices": []gin.H{}})
	assert.Equal(t, http.StatusCreated, w.Code)

	body := decodeBody(t, w)
	data := body["data"].(map[string]any)
	assert.Equal(t, float64(0), data["total_requested"])
}

// TestHeartbeatEndpoint tests POST /monitors/:id/heartbeat incl. NotFound.
func TestHeartbeatEndpoint(t *testing.T) {
	r := newTestRouter()

	w := doJSON(t, r, http.MethodPost, "/monitors", gin.H{
		"device_id": "pump-1", "timeout": 60, "alert_email": "ops@example.com",
	})
	require.Equal(t, http.StatusCreated, w.Code)
	id := decodeBody(t, w)["data"].(map[string]any)["id"].(string)

	w = doJSON(t, r, http.MethodPost, "/monitors/"+id+"/heartbeat", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	body := decodeBody(t, w)
	assert.Contains(t, body["message"], "pump-1")

	w = doJSON(t, r, http.MethodPost, "/monitors/does-not-exist/heartbeat", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

// TestPauseResumeEndpoints tests the pause/resume round trip.
func TestPauseResumeEndpoints(t *testing.T) {
	r := newTestRouter()

	w := doJSON(t, r, http.MethodPost, "/monitors", gin.H{
		"device_id": "pump-1", "timeout": 60, "alert_email": "ops@example.com",
	})
	require.Equal(t, http.StatusCreated, w.Code)
	id := decodeBody(t, w)["data"].(map[string]any)["id"].(string)

	w = doJSON(t, r, http.MethodPost, "/monitors/"+id+"/pause", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	data := decodeBody(t, w)["data"].(map[string]any)
	assert.Equal(t, true, data["is_paused"])

	w = doJSON(t, r, http.MethodPost, "/monitors/"+id+"/resume", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	data = decodeBody(t, w)["data"].(map[string]any)
	assert.Equal(t, false, data["is_paused"])
}

// TestListMonitors_ActiveFilter tests GET /monitors?active=true.
func TestListMonitors_ActiveFilter(t *testing.T) {
	r := newTestRouter()

	w := doJSON(t, r, http.MethodPost, "/monitors", gin.H{
		"device_id": "pump-1", "timeout": 60, "alert_email": "ops@example.com",
	})
	require.Equal(t, http.StatusCreated, w.Code)

	w = doJSON(t, r, http.MethodGet, "/monitors?active=true", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	data := decodeBody(t, w)["data"].([]any)
	assert.Len(t, data, 1)
}

// TestDashboardEndpoint tests GET /monitors/dashboard on an empty fleet.
func TestDashboardEndpoint(t *testing.T) {
	r := newTestRouter()

	w := doJSON(t, r, http.MethodGet, "/monitors/dashboard", nil)
	assert.Equal(t, http.StatusOK, w.Code)

	data := decodeBody(t, w)["data"].(map[string]any)
	assert.Equal(t, float64(0), data["active_devices"])
	assert.Equal(t, float64(0), data["down_devices"])
	assert.Equal(t, float64(0), data["alerts_today"])
	assert.Equal(t, float64(0), data["average_uptime"])
}

// TestDeleteEndpoint tests DELETE /monitors/:id and the follow-up 404s.
func TestDeleteEndpoint(t *testing.T) {
	r := newTestRouter()

	w := doJSON(t, r, http.MethodPost, "/monitors", gin.H{
		"device_id": "pump-1", "timeout": 60, "alert_email": "ops@example.com",
	})
	require.Equal(t, http.StatusCreated, w.Code)
	id := decodeBody(t, w)["data"].(map[string]any)["id"].(string)

	w = doJSON(t, r, http.MethodDelete, "/monitors/"+id, nil)
	assert.Equal(t, http.StatusOK, w.Code)

	w = doJSON(t, r, http.MethodGet, "/monitors/"+id, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = doJSON(t, r, http.MethodDelete, "/monitors/"+id, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}
