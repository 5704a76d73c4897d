package handler

import (
	"encoding/base64"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/trettofejr/LumenFi/internal/arena"
	"github.com/trettofejr/LumenFi/internal/ledger"
)

type ArenaHandler struct {
	Engine *arena.Engine
	Logger *zap.Logger
}

func (h *ArenaHandler) Register(r *gin.Engine) {
	group := r.Group("/api/v1/arena")
	group.GET("/latest", h.latest)
	group.GET("/contests/:id", h.getContest)
	group.GET("/contests/:id/bounds", h.getBounds)
	group.GET("/contests/:id/stats", h.getStats)
	group.GET("/contests/:id/players/:player", h.getPlayerStatus)
	group.GET("/contests/:id/pending-handles", h.getPendingHandles)
	group.POST("/enter", h.enter)
	group.POST("/contests/:id/reveal/request", h.requestReveal)
	group.POST("/contests/:id/reveal/submit", h.submitReveal)
	group.POST("/contests/:id/settle", h.settle)
	group.POST("/contests/:id/claim", h.claim)
}

type contestView struct {
	ID              uint64  `json:"id"`
	StartTime       int64   `json:"start_time"`
	LockTime        int64   `json:"lock_time"`
	SettleTime      int64   `json:"settle_time"`
	StartingPrice   string  `json:"starting_price"`
	RangeBounds     []int64 `json:"range_bounds"`
	EntryFeeWei     string  `json:"entry_fee_wei"`
	PrizePoolWei    string  `json:"prize_pool_wei"`
	PaidOutWei      string  `json:"paid_out_wei"`
	Entrants        uint64  `json:"entrants"`
	DirectionsReady bool    `json:"directions_ready"`
	Settled         bool    `json:"settled"`
	RolledOver      bool    `json:"rolled_over"`
	WinningRange    int     `json:"winning_range"`
	WinnerCount     uint64  `json:"winner_count"`
	ClaimedCount    uint64  `json:"claimed_count"`
}

func toContestView(c ledger.Contest) contestView {
	return contestView{
		ID:              c.ID,
		StartTime:       c.StartTime,
		LockTime:        c.LockTime,
		SettleTime:      c.SettleTime,
		StartingPrice:   c.StartingPrice.String(),
		RangeBounds:     c.RangeBounds,
		EntryFeeWei:     c.EntryFee.String(),
		PrizePoolWei:    c.PrizePool.String(),
		PaidOutWei:      c.PaidOut.String(),
		Entrants:        c.Entrants,
		DirectionsReady: c.DirectionsReady,
		Settled:         c.Settled,
		RolledOver:      c.RolledOver,
		WinningRange:    c.WinningRange,
		WinnerCount:     c.WinnerCount,
		ClaimedCount:    c.ClaimedCount,
	}
}

func (h *ArenaHandler) latest(c *gin.Context) {
	Ok(c, gin.H{"latest_contest_id": h.Engine.LatestContestID()}, nil)
}

func (h *ArenaHandler) getContest(c *gin.Context) {
	id, ok := contestIDParam(c)
	if !ok {
		return
	}
	contest, err := h.Engine.GetContest(id)
	if err != nil {
		EngineError(c, err)
		return
	}
	Ok(c, toContestView(contest), nil)
}

func (h *ArenaHandler) getBounds(c *gin.Context) {
	id, ok := contestIDParam(c)
	if !ok {
		return
	}
	bounds, err := h.Engine.GetRangeBounds(id)
	if err != nil {
		EngineError(c, err)
		return
	}
	Ok(c, gin.H{"range_bounds": bounds}, nil)
}

func (h *ArenaHandler) getStats(c *gin.Context) {
	id, ok := contestIDParam(c)
	if !ok {
		return
	}
	stats, err := h.Engine.GetRangeStats(id)
	if err != nil {
		EngineError(c, err)
		return
	}
	Ok(c, stats, nil)
}

func (h *ArenaHandler) getPlayerStatus(c *gin.Context) {
	id, ok := contestIDParam(c)
	if !ok {
		return
	}
	player := strings.TrimSpace(c.Param("player"))
	if player == "" {
		Error(c, http.StatusBadRequest, "player required", nil)
		return
	}
	status, err := h.Engine.GetPlayerStatus(id, player)
	if err != nil {
		EngineError(c, err)
		return
	}
	Ok(c, status, nil)
}

func (h *ArenaHandler) getPendingHandles(c *gin.Context) {
	id, ok := contestIDParam(c)
	if !ok {
		return
	}
	handles, err := h.Engine.GetPendingRevealHandles(id)
	if err != nil {
		EngineError(c, err)
		return
	}
	Ok(c, gin.H{"handles": handles}, nil)
}

type enterRequest struct {
	Player     string `json:"player"`
	Handle     string `json:"handle"`
	InputProof string `json:"input_proof"` // base64
	FeeWei     string `json:"fee_wei"`
}

func (h *ArenaHandler) enter(c *gin.Context) {
	var req enterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		Error(c, http.StatusBadRequest, "invalid body", nil)
		return
	}
	req.Player = strings.TrimSpace(req.Player)
	req.Handle = strings.TrimSpace(req.Handle)
	if req.Player == "" || req.Handle == "" {
		Error(c, http.StatusBadRequest, "player and handle required", nil)
		return
	}
	proof, err := base64.StdEncoding.DecodeString(req.InputProof)
	if err != nil {
		Error(c, http.StatusBadRequest, "input_proof must be base64", nil)
		return
	}
	fee, err := decimal.NewFromString(strings.TrimSpace(req.FeeWei))
	if err != nil {
		Error(c, http.StatusBadRequest, "fee_wei must be a wei amount", nil)
		return
	}

	if err := h.Engine.EnterContest(c.Request.Context(), req.Player, req.Handle, proof, fee, time.Now().UTC()); err != nil {
		EngineError(c, err)
		return
	}
	Ok(c, gin.H{"contest_id": h.Engine.LatestContestID()}, nil)
}

func (h *ArenaHandler) requestReveal(c *gin.Context) {
	id, ok := contestIDParam(c)
	if !ok {
		return
	}
	handles, err := h.Engine.RequestRangeReveal(c.Request.Context(), id, time.Now().UTC())
	if err != nil {
		EngineError(c, err)
		return
	}
	Ok(c, gin.H{"handles": handles}, nil)
}

type submitRevealRequest struct {
	ClearValues []uint8 `json:"clear_values"`
	Proof       string  `json:"proof"` // base64
}

func (h *ArenaHandler) submitReveal(c *gin.Context) {
	id, ok := contestIDParam(c)
	if !ok {
		return
	}
	var req submitRevealRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		Error(c, http.StatusBadRequest, "invalid body", nil)
		return
	}
	proof, err := base64.StdEncoding.DecodeString(req.Proof)
	if err != nil {
		Error(c, http.StatusBadRequest, "proof must be base64", nil)
		return
	}
	if err := h.Engine.SubmitRangeReveal(c.Request.Context(), id, req.ClearValues, proof, time.Now().UTC()); err != nil {
		EngineError(c, err)
		return
	}
	Ok(c, gin.H{"contest_id": id}, nil)
}

func (h *ArenaHandler) settle(c *gin.Context) {
	id, ok := contestIDParam(c)
	if !ok {
		return
	}
	result, err := h.Engine.SettleContest(c.Request.Context(), id, time.Now().UTC())
	if err != nil {
		EngineError(c, err)
		return
	}
	Ok(c, gin.H{
		"contest_id":      result.ContestID,
		"final_price":     result.FinalPrice.String(),
		"change_bps":      result.ChangeBps,
		"winning_range":   result.WinningRange,
		"winner_count":    result.WinnerCount,
		"rolled_over":     result.RolledOver,
		"carry_wei":       result.Carry.String(),
		"next_contest_id": result.NextContestID,
	}, nil)
}

type claimRequest struct {
	Player string `json:"player"`
}

func (h *ArenaHandler) claim(c *gin.Context) {
	id, ok := contestIDParam(c)
	if !ok {
		return
	}
	var req claimRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		Error(c, http.StatusBadRequest, "invalid body", nil)
		return
	}
	req.Player = strings.TrimSpace(req.Player)
	if req.Player == "" {
		Error(c, http.StatusBadRequest, "player required", nil)
		return
	}
	amount, err := h.Engine.ClaimPrize(c.Request.Context(), id, req.Player, time.Now().UTC())
	if err != nil {
		EngineError(c, err)
		return
	}
	Ok(c, gin.H{"contest_id": id, "player": req.Player, "amount_wei": amount.String()}, nil)
}

func contestIDParam(c *gin.Context) (uint64, bool) {
	id, err := strconv.ParseUint(strings.TrimSpace(c.Param("id")), 10, 64)
	if err != nil || id == 0 {
		Error(c, http.StatusBadRequest, "invalid contest id", nil)
		return 0, false
	}
	return id, true
}
