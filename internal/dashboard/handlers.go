package dashboard

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/tomiwa-dev/naijapulse/internal/database"
	"github.com/tomiwa-dev/naijapulse/internal/errors"
	"github.com/tomiwa-dev/naijapulse/internal/filters"
	"github.com/tomiwa-dev/naijapulse/internal/privacy"
	"github.com/tomiwa-dev/naijapulse/internal/quality"
	"github.com/tomiwa-dev/naijapulse/internal/rankings"
	"github.com/tomiwa-dev/naijapulse/internal/security"
	"github.com/tomiwa-dev/naijapulse/internal/types"
)

// filterGroups are the selection groups the toggle endpoint accepts.
var filterGroups = map[string]bool{
	"parties":   true,
	"states":    true,
	"platforms": true,
	"topics":    true,
}

// Handlers wires the dashboard services into gin routes.
type Handlers struct {
	charts     *Service
	rankings   *rankings.Service
	sessions   *database.SessionService
	filters    *filters.Store
	thresholds *quality.ThresholdStore
	security   *security.SecurityMiddleware
	privacy    *privacy.Service
}

// NewHandlers creates the handler set.
func NewHandlers(charts *Service, rankingsService *rankings.Service, sessions *database.SessionService,
	filterStore *filters.Store, thresholds *quality.ThresholdStore, sec *security.SecurityMiddleware,
	privacyService *privacy.Service) *Handlers {
	return &Handlers{
		charts:     charts,
		rankings:   rankingsService,
		sessions:   sessions,
		filters:    filterStore,
		thresholds: thresholds,
		security:   sec,
		privacy:    privacyService,
	}
}

// Register mounts all dashboard routes on an API group.
func (h *Handlers) Register(api *gin.RouterGroup) {
	api.POST("/session", h.CreateSession)

	authed := api.Group("")
	authed.Use(h.SessionAuth)
	{
		authed.DELETE("/session", h.DeleteSession)
		authed.GET("/preferences", h.GetPreferences)
		authed.PUT("/preferences", h.UpdatePreferences)
		authed.POST("/filters/:group/toggle", h.ToggleFilter)
		authed.DELETE("/filters", h.ClearFilters)
		authed.GET("/recent", h.GetRecentlyViewed)
		authed.POST("/recent/:politician", h.MarkViewed)
	}

	api.GET("/mentions", h.Mentions)
	api.GET("/sentiment/timeline", h.Timeline)
	api.GET("/demographics", h.Demographics)
	api.GET("/parties/compare", h.CompareParties)
	api.GET("/politicians/top", h.TopPoliticians)
	api.GET("/quality/thresholds", h.GetThresholds)
	api.PUT("/quality/thresholds", h.UpdateThresholds)
}

// CreateSession starts an anonymous session and returns its bearer token.
// The client IP is anonymized before it reaches storage.
func (h *Handlers) CreateSession(c *gin.Context) {
	result, err := h.sessions.StartSession(h.privacy.AnonymizeIP(c.ClientIP()), c.GetHeader("User-Agent"))
	if err != nil {
		h.fail(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"session_id": result.Session.ID,
		"token":      result.Token,
	})
}

// DeleteSession erases the session and everything stored under it.
func (h *Handlers) DeleteSession(c *gin.Context) {
	if err := h.privacy.EraseSession(c.GetString("session_id")); err != nil {
		h.fail(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "session data erased"})
}

// SessionAuth resolves the bearer token and stores the session ID in the
// request context. Stored filter state is seeded into the store on first
// sight of a restored session.
func (h *Handlers) SessionAuth(c *gin.Context) {
	header := c.GetHeader("Authorization")
	if !strings.HasPrefix(header, "Bearer ") {
		appErr := errors.NewUnauthorizedError("missing bearer token", nil)
		c.JSON(appErr.HTTPStatus, appErr)
		c.Abort()
		return
	}
	token := strings.TrimPrefix(header, "Bearer ")

	session, err := h.sessions.ResolveSession(token)
	if err != nil {
		appErr := errors.NewUnauthorizedError("invalid session token", err)
		c.JSON(appErr.HTTPStatus, appErr)
		c.Abort()
		return
	}

	c.Set("session_id", session.ID)
	c.Next()
}

// GetPreferences returns theme and period from storage plus the live filter
// state for the session.
func (h *Handlers) GetPreferences(c *gin.Context) {
	sessionID := c.GetString("session_id")

	prefs, err := h.sessions.GetPreferences(sessionID)
	if err != nil {
		h.fail(c, err)
		return
	}

	state := h.filters.Get(sessionID)
	prefs.Filters = state.Selections
	prefs.RecentlyViewed = state.RecentlyViewed

	c.JSON(http.StatusOK, prefs)
}

// UpdatePreferences merges a partial update into the stored preferences.
func (h *Handlers) UpdatePreferences(c *gin.Context) {
	sessionID := c.GetString("session_id")

	var req types.PreferencesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.fail(c, errors.NewValidationError("invalid preferences payload"))
		return
	}

	prefs, err := h.sessions.UpdatePreferences(sessionID, &req)
	if err != nil {
		h.fail(c, err)
		return
	}

	if req.Filters != nil {
		h.filters.Seed(sessionID, filters.State{
			Selections:     req.Filters,
			RecentlyViewed: prefs.RecentlyViewed,
		})
	}

	c.JSON(http.StatusOK, prefs)
}

// ToggleFilter flips one value in a selection group.
func (h *Handlers) ToggleFilter(c *gin.Context) {
	group := c.Param("group")
	if !filterGroups[group] {
		h.fail(c, errors.NewValidationError("unknown filter group: "+group))
		return
	}

	value, ok := h.security.ValidateFilterValue(c, c.Query("value"))
	if !ok {
		return
	}

	state := h.filters.Toggle(c.GetString("session_id"), group, value)
	c.JSON(http.StatusOK, state)
}

// ClearFilters drops every selection for the session.
func (h *Handlers) ClearFilters(c *gin.Context) {
	state := h.filters.Clear(c.GetString("session_id"))
	c.JSON(http.StatusOK, state)
}

// GetRecentlyViewed returns the session's recently-viewed politicians.
func (h *Handlers) GetRecentlyViewed(c *gin.Context) {
	state := h.filters.Get(c.GetString("session_id"))
	c.JSON(http.StatusOK, gin.H{"recently_viewed": state.RecentlyViewed})
}

// MarkViewed pushes a politician onto the recently-viewed ring.
func (h *Handlers) MarkViewed(c *gin.Context) {
	politician, ok := h.security.ValidateFilterValue(c, c.Param("politician"))
	if !ok {
		return
	}

	state := h.filters.MarkViewed(c.GetString("session_id"), politician)
	c.JSON(http.StatusOK, gin.H{"recently_viewed": state.RecentlyViewed})
}

// Mentions serves the per-politician mention summary chart.
func (h *Handlers) Mentions(c *gin.Context) {
	resp, err := h.charts.Mentions(c.Request.Context(), MentionsQuery{
		Parties:   splitParam(c.Query("parties")),
		States:    splitParam(c.Query("states")),
		Days:      intParam(c, "days"),
		MinPoints: intParam(c, "min_points"),
	})
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Timeline serves the daily sentiment timeline chart.
func (h *Handlers) Timeline(c *gin.Context) {
	resp, err := h.charts.Timeline(c.Request.Context(), TimelineQuery{
		Politician: c.Query("politician"),
		Days:       intParam(c, "days"),
		MinPoints:  intParam(c, "min_points"),
	})
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Demographics serves the demographic breakdown chart.
func (h *Handlers) Demographics(c *gin.Context) {
	dimension := c.DefaultQuery("dimension", "age")

	resp, err := h.charts.Demographics(c.Request.Context(), dimension, intParam(c, "days"))
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// CompareParties serves the cross-party comparison chart.
func (h *Handlers) CompareParties(c *gin.Context) {
	resp, err := h.charts.CompareParties(c.Request.Context(),
		splitParam(c.Query("parties")), intParam(c, "days"))
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// TopPoliticians serves the ranking table for a period.
func (h *Handlers) TopPoliticians(c *gin.Context) {
	period := c.DefaultQuery("period", "weekly")

	limit := 50
	if raw := c.Query("limit"); raw != "" {
		if l, err := strconv.Atoi(raw); err == nil {
			limit = l
		}
	}

	resp, err := h.rankings.GetRankings(period, limit)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// GetThresholds returns the active quality threshold table.
func (h *Handlers) GetThresholds(c *gin.Context) {
	th, err := h.thresholds.Load()
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, th)
}

// UpdateThresholds replaces the quality threshold table.
func (h *Handlers) UpdateThresholds(c *gin.Context) {
	var th quality.Thresholds
	if err := c.ShouldBindJSON(&th); err != nil {
		h.fail(c, errors.NewValidationError("invalid thresholds payload"))
		return
	}

	if err := th.Validate(); err != nil {
		h.fail(c, errors.NewValidationError(err.Error()))
		return
	}

	if err := h.thresholds.Save(th); err != nil {
		h.fail(c, err)
		return
	}

	c.JSON(http.StatusOK, th)
}

func (h *Handlers) fail(c *gin.Context, err error) {
	appErr := errors.ToAppError(err)
	errors.LogError(c, appErr)
	c.JSON(appErr.HTTPStatus, appErr)
}

// splitParam parses a comma-separated query parameter.
func splitParam(raw string) []string {
	if raw == "" {
		return nil
	}
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func intParam(c *gin.Context, name string) int {
	raw := c.Query(name)
	if raw == "" {
		return 0
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 0 {
		return 0
	}
	return n
}
