package arena

import (
	"context"
	"encoding/json"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"gorm.io/datatypes"

	"github.com/trettofejr/LumenFi/internal/models"
)

const auditTimeout = 3 * time.Second

// persist mirrors the contest's ledger state into the repository. Best-effort:
// the ledger stays authoritative and a failed write never rolls anything back.
func (e *Engine) persist(ctx context.Context, id uint64, finalPrice *decimal.Decimal) {
	if e.repo == nil {
		return
	}
	c, err := e.ledger.Contest(id)
	if err != nil {
		return
	}
	entries, err := e.ledger.Entries(id)
	if err != nil {
		return
	}
	stats, err := e.ledger.RangeStats(id)
	if err != nil {
		return
	}

	auditCtx, cancel := context.WithTimeout(withoutCancel(ctx), auditTimeout)
	defer cancel()

	now := time.Now().UTC()
	boundsJSON, _ := json.Marshal(c.RangeBounds)
	row := &models.Contest{
		ID:              c.ID,
		StartTime:       time.Unix(c.StartTime, 0).UTC(),
		LockTime:        time.Unix(c.LockTime, 0).UTC(),
		SettleTime:      time.Unix(c.SettleTime, 0).UTC(),
		StartingPrice:   c.StartingPrice,
		FinalPrice:      finalPrice,
		RangeBounds:     datatypes.JSON(boundsJSON),
		EntryFee:        c.EntryFee,
		PrizePool:       c.PrizePool,
		PaidOut:         c.PaidOut,
		Entrants:        c.Entrants,
		DirectionsReady: c.DirectionsReady,
		Settled:         c.Settled,
		RolledOver:      c.RolledOver,
		WinningRange:    int16(c.WinningRange),
		WinnerCount:     c.WinnerCount,
		ClaimedCount:    c.ClaimedCount,
		UpdatedAt:       now,
	}
	if err := e.repo.UpsertContest(auditCtx, row); err != nil {
		e.logger.Warn("audit contest upsert failed", zap.Uint64("contest_id", id), zap.Error(err))
		return
	}

	entryRows := make([]models.ContestEntry, 0, len(entries))
	for _, entry := range entries {
		entryRows = append(entryRows, models.ContestEntry{
			ContestID:  c.ID,
			Player:     entry.Player,
			Handle:     entry.Handle,
			RangeIndex: int16(entry.RangeIndex),
			Won:        entry.Won,
			Claimed:    entry.Claimed,
			EnteredAt:  time.Unix(entry.EnteredAt, 0).UTC(),
			UpdatedAt:  now,
		})
	}
	if err := e.repo.UpsertEntries(auditCtx, entryRows); err != nil {
		e.logger.Warn("audit entries upsert failed", zap.Uint64("contest_id", id), zap.Error(err))
	}

	rangeRows := make([]models.ContestRange, 0, len(stats))
	for i, stat := range stats {
		rangeRows = append(rangeRows, models.ContestRange{
			ContestID:        c.ID,
			RangeIndex:       int16(i),
			LowerBps:         stat.LowerBps,
			UpperBps:         stat.UpperBps,
			Entrants:         stat.Entrants,
			RevealedExposure: stat.RevealedExposure,
			UpdatedAt:        now,
		})
	}
	if err := e.repo.UpsertRanges(auditCtx, rangeRows); err != nil {
		e.logger.Warn("audit ranges upsert failed", zap.Uint64("contest_id", id), zap.Error(err))
	}
}

func (e *Engine) recordClaim(ctx context.Context, id uint64, player string, amount decimal.Decimal, now time.Time) {
	if e.repo == nil {
		return
	}
	auditCtx, cancel := context.WithTimeout(withoutCancel(ctx), auditTimeout)
	defer cancel()
	err := e.repo.InsertClaim(auditCtx, &models.PrizeClaim{
		ContestID: id,
		Player:    player,
		Amount:    amount,
		ClaimedAt: now.UTC(),
	})
	if err != nil {
		e.logger.Warn("audit claim insert failed", zap.Uint64("contest_id", id), zap.Error(err))
	}
}

// Audit writes should survive a caller hanging up mid-request.
func withoutCancel(ctx context.Context) context.Context {
	if ctx == nil {
		return context.Background()
	}
	return context.WithoutCancel(ctx)
}
