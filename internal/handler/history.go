package handler

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/trettofejr/LumenFi/internal/repository"
)

// HistoryHandler serves a participant's own round history from the audit
// store. Unavailable (503) when persistence is disabled.
type HistoryHandler struct {
	Repo repository.ArenaRepository
}

func (h *HistoryHandler) Register(r *gin.Engine) {
	r.GET("/api/v1/players/:player/history", h.playerHistory)
	r.GET("/api/v1/arena/contests", h.listContests)
}

func (h *HistoryHandler) playerHistory(c *gin.Context) {
	if h.Repo == nil {
		Error(c, http.StatusServiceUnavailable, "history unavailable without persistence", nil)
		return
	}
	player := strings.TrimSpace(c.Param("player"))
	if player == "" {
		Error(c, http.StatusBadRequest, "player required", nil)
		return
	}
	limit := intQuery(c, "limit", 50)
	offset := intQuery(c, "offset", 0)

	entries, err := h.Repo.ListEntriesByPlayer(c.Request.Context(), repository.ListEntriesParams{
		Limit:  limit,
		Offset: offset,
		Player: player,
	})
	if err != nil {
		Error(c, http.StatusBadGateway, err.Error(), nil)
		return
	}
	claims, err := h.Repo.ListClaimsByPlayer(c.Request.Context(), player, limit)
	if err != nil {
		Error(c, http.StatusBadGateway, err.Error(), nil)
		return
	}
	Ok(c, gin.H{"entries": entries, "claims": claims}, map[string]any{
		"limit":  limit,
		"offset": offset,
	})
}

func (h *HistoryHandler) listContests(c *gin.Context) {
	if h.Repo == nil {
		Error(c, http.StatusServiceUnavailable, "history unavailable without persistence", nil)
		return
	}
	limit := intQuery(c, "limit", 50)
	offset := intQuery(c, "offset", 0)
	var settled *bool
	if v := strings.TrimSpace(c.Query("settled")); v != "" {
		b := v == "true" || v == "1"
		settled = &b
	}
	items, err := h.Repo.ListContests(c.Request.Context(), repository.ListContestsParams{
		Limit:   limit,
		Offset:  offset,
		Settled: settled,
	})
	if err != nil {
		Error(c, http.StatusBadGateway, err.Error(), nil)
		return
	}
	Ok(c, items, map[string]any{
		"limit":  limit,
		"offset": offset,
	})
}

func intQuery(c *gin.Context, key string, fallback int) int {
	v := strings.TrimSpace(c.Query(key))
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return n
}
