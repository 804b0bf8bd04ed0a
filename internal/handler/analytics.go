package handler

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/surehub/platform/internal/analytics"
	"github.com/surehub/platform/internal/domain"
	"github.com/surehub/platform/internal/service"
)

// AnalyticsHandler serves the reliability scoreboard and alert endpoints.
type AnalyticsHandler struct {
	insights *service.InsightsService
}

// NewAnalyticsHandler creates a new AnalyticsHandler.
func NewAnalyticsHandler(insights *service.InsightsService) *AnalyticsHandler {
	return &AnalyticsHandler{insights: insights}
}

// scoreboardResponse wraps GET /projects/{projectID}/analytics/scoreboard.
type scoreboardResponse struct {
	Window analytics.Window           `json:"window"`
	Scores []analytics.BookmakerScore `json:"scores"`
}

// Scoreboard handles GET /projects/{projectID}/analytics/scoreboard.
// The window defaults to the trailing 90 days and is overridable with
// start/end (RFC 3339) or days query parameters.
func (h *AnalyticsHandler) Scoreboard(w http.ResponseWriter, r *http.Request) {
	projectID, err := uuid.Parse(chi.URLParam(r, "projectID"))
	if err != nil {
		RespondError(w, domain.ErrValidation("invalid project id"))
		return
	}

	window, err := parseWindow(r)
	if err != nil {
		RespondError(w, err)
		return
	}

	scores, err := h.insights.Scoreboard(r.Context(), projectID, window)
	if err != nil {
		RespondError(w, err)
		return
	}
	RespondJSON(w, http.StatusOK, scoreboardResponse{Window: window, Scores: scores})
}

// alertsResponse wraps GET /projects/{projectID}/analytics/alerts.
type alertsResponse struct {
	Alerts []analytics.Alert `json:"alerts"`
}

// Alerts handles GET /projects/{projectID}/analytics/alerts.
func (h *AnalyticsHandler) Alerts(w http.ResponseWriter, r *http.Request) {
	projectID, err := uuid.Parse(chi.URLParam(r, "projectID"))
	if err != nil {
		RespondError(w, domain.ErrValidation("invalid project id"))
		return
	}

	alerts, err := h.insights.Alerts(r.Context(), projectID)
	if err != nil {
		RespondError(w, err)
		return
	}
	RespondJSON(w, http.StatusOK, alertsResponse{Alerts: alerts})
}

func parseWindow(r *http.Request) (analytics.Window, error) {
	q := r.URL.Query()
	now := time.Now().UTC()

	if s, e := q.Get("start"), q.Get("end"); s != "" || e != "" {
		start, err := time.Parse(time.RFC3339, s)
		if err != nil {
			return analytics.Window{}, domain.ErrValidation("invalid start date")
		}
		end, err := time.Parse(time.RFC3339, e)
		if err != nil {
			return analytics.Window{}, domain.ErrValidation("invalid end date")
		}
		if end.Before(start) {
			return analytics.Window{}, domain.ErrValidation("end date before start date")
		}
		return analytics.Window{Start: start, End: end}, nil
	}

	days := 90
	if v := q.Get("days"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			return analytics.Window{}, domain.ErrValidation("invalid days parameter")
		}
		days = n
	}
	return analytics.TrailingWindow(now, days), nil
}
