package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/trettofejr/LumenFi/internal/ledger"
)

type apiResponse struct {
	Code    int            `json:"code"`
	Message string         `json:"message"`
	Data    any            `json:"data,omitempty"`
	Meta    map[string]any `json:"meta,omitempty"`
}

func Ok(c *gin.Context, data any, meta map[string]any) {
	c.JSON(http.StatusOK, apiResponse{
		Code:    0,
		Message: "ok",
		Data:    data,
		Meta:    meta,
	})
}

func Error(c *gin.Context, status int, message string, meta map[string]any) {
	c.JSON(status, apiResponse{
		Code:    status,
		Message: message,
		Meta:    meta,
	})
}

// EngineError maps the rejection taxonomy onto HTTP statuses: unknown ids are
// 404, wrong-phase and one-shot violations are 409, bad input is 400, and
// upstream oracle/decryption failures are 502.
func EngineError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, ledger.ErrContestMissing):
		Error(c, http.StatusNotFound, err.Error(), nil)
	case errors.Is(err, ledger.ErrContestLocked),
		errors.Is(err, ledger.ErrAlreadyEntered),
		errors.Is(err, ledger.ErrDirectionsAlreadyRevealed),
		errors.Is(err, ledger.ErrAlreadyClaimed),
		errors.Is(err, ledger.ErrNothingToClaim):
		Error(c, http.StatusConflict, err.Error(), nil)
	case errors.Is(err, ledger.ErrInvalidFee),
		errors.Is(err, ledger.ErrInvalidConfiguration),
		errors.Is(err, ledger.ErrInvalidProof),
		errors.Is(err, ledger.ErrNotWinner):
		Error(c, http.StatusBadRequest, err.Error(), nil)
	case errors.Is(err, ledger.ErrDependencyUnavailable):
		Error(c, http.StatusBadGateway, err.Error(), nil)
	default:
		Error(c, http.StatusInternalServerError, err.Error(), nil)
	}
}
