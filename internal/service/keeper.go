package service

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/trettofejr/LumenFi/internal/arena"
	"github.com/trettofejr/LumenFi/internal/confidential"
	"github.com/trettofejr/LumenFi/internal/ledger"
)

// Keeper is one permissionless caller of the phase transitions. The engine
// owns no scheduler: rounds advance only when somebody invokes reveal and
// settle after the deadlines pass, and the keeper is the deployment's default
// somebody. Anyone else calling first is fine; every transition the keeper
// attempts is either idempotent or rejected cleanly as already done.
type Keeper struct {
	Engine *arena.Engine
	Vault  confidential.Service
	Logger *zap.Logger

	// Now is overridable for tests; defaults to wall clock.
	Now func() time.Time
}

func (k *Keeper) RunOnce(ctx context.Context) {
	if k == nil || k.Engine == nil || k.Vault == nil {
		return
	}
	id := k.Engine.LatestContestID()
	if id == 0 {
		return
	}
	now := k.now()
	contest, err := k.Engine.GetContest(id)
	if err != nil {
		k.warn("keeper contest read failed", id, err)
		return
	}

	if now.Unix() >= contest.LockTime && !contest.DirectionsReady && contest.Entrants > 0 {
		k.reveal(ctx, id, now)
	}
	if now.Unix() >= contest.SettleTime {
		k.settle(ctx, id, now)
	}
}

func (k *Keeper) reveal(ctx context.Context, id uint64, now time.Time) {
	handles, err := k.Engine.RequestRangeReveal(ctx, id, now)
	if err != nil {
		if !errors.Is(err, ledger.ErrDirectionsAlreadyRevealed) {
			k.warn("keeper reveal request failed", id, err)
		}
		return
	}
	clearValues, proof, err := k.Vault.Decrypt(ctx, handles)
	if err != nil {
		k.warn("keeper decrypt failed", id, err)
		return
	}
	if err := k.Engine.SubmitRangeReveal(ctx, id, clearValues, proof, now); err != nil {
		k.warn("keeper reveal submit failed", id, err)
	}
}

func (k *Keeper) settle(ctx context.Context, id uint64, now time.Time) {
	result, err := k.Engine.SettleContest(ctx, id, now)
	if err != nil {
		if !errors.Is(err, ledger.ErrContestLocked) {
			k.warn("keeper settle failed", id, err)
		}
		return
	}
	if k.Logger != nil {
		k.Logger.Info("keeper settled contest",
			zap.Uint64("contest_id", result.ContestID),
			zap.Uint64("next_contest_id", result.NextContestID),
			zap.Bool("rolled_over", result.RolledOver),
		)
	}
}

func (k *Keeper) now() time.Time {
	if k.Now != nil {
		return k.Now()
	}
	return time.Now().UTC()
}

func (k *Keeper) warn(msg string, id uint64, err error) {
	if k.Logger == nil {
		return
	}
	k.Logger.Warn(msg, zap.Uint64("contest_id", id), zap.Error(err))
}
