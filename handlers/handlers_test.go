package handlers

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/noracami/my-12-week-year/models"
	"github.com/noracami/my-12-week-year/utils"
	"github.com/stretchr/testify/assert"
)

// Validation must reject malformed input before any storage access, so these
// run against a router with no database behind it.
func newTestRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)
	if utils.Logger == nil {
		utils.InitLogger()
	}
	r := gin.New()
	r.Use(func(c *gin.Context) {
		c.Set("user", models.User{ID: 1, Username: "tester", Role: models.RoleUser})
		c.Next()
	})
	r.GET("/api/records/score", GetScore)
	r.GET("/api/week-selections", GetWeekSelection)
	r.PUT("/api/week-selections", PutWeekSelection)
	r.DELETE("/api/week-selections", DeleteWeekSelection)
	r.POST("/api/records", UpsertRecord)
	return r
}

func TestGetScore_RequiresDateRange(t *testing.T) {
	r := newTestRouter()

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/records/score", nil)
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "startDate and endDate are required")
}

func TestGetScore_RejectsMalformedDates(t *testing.T) {
	r := newTestRouter()

	for _, q := range []string{
		"startDate=2026-1-5&endDate=2026-01-11",
		"startDate=2026-01-05&endDate=not-a-date",
	} {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/api/records/score?"+q, nil)
		r.ServeHTTP(w, req)

		assert.Equal(t, http.StatusBadRequest, w.Code, "query %q", q)
	}
}

func TestGetScore_RejectsReversedRange(t *testing.T) {
	r := newTestRouter()

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet,
		"/api/records/score?startDate=2026-01-11&endDate=2026-01-05", nil)
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "endDate must not precede startDate")
}

func TestGetWeekSelection_RequiresWeekStart(t *testing.T) {
	r := newTestRouter()

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/week-selections", nil)
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "weekStart is required")
}

// A selection stored under a mid-week key would never be found by scoring,
// which resolves Monday-aligned keys. Writes must therefore reject anything
// that is not a Monday.
func TestPutWeekSelection_RejectsNonMondayKey(t *testing.T) {
	r := newTestRouter()

	// 2026-01-06 is a Tuesday.
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPut, "/api/week-selections",
		strings.NewReader(`{"week_start":"2026-01-06","tactic_ids":[]}`))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "must be a Monday")
}

func TestDeleteWeekSelection_RejectsNonMondayKey(t *testing.T) {
	r := newTestRouter()

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodDelete, "/api/week-selections?weekStart=2026-01-06", nil)
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "must be a Monday")
}

func TestUpsertRecord_RejectsInvalidPayloads(t *testing.T) {
	r := newTestRouter()

	cases := []struct {
		name string
		body string
	}{
		{"missing tactic", `{"date":"2026-01-05","value":1}`},
		{"missing date", `{"tactic_id":1,"value":1}`},
		{"missing value", `{"tactic_id":1,"date":"2026-01-05"}`},
		{"bad date format", `{"tactic_id":1,"date":"01/05/2026","value":1}`},
		{"not json", `tactic_id=1`},
	}

	for _, tc := range cases {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/api/records", strings.NewReader(tc.body))
		req.Header.Set("Content-Type", "application/json")
		r.ServeHTTP(w, req)

		assert.Equal(t, http.StatusBadRequest, w.Code, tc.name)
	}
}
