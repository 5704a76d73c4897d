// Package arena hosts the contest lifecycle engine: the phase state machine
// over Open -> Locked -> Revealed -> Settled, driven entirely by callers. The
// engine is the only component that talks to the price oracle and the
// confidential value service; the ledger underneath stays a pure data
// structure.
package arena

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/trettofejr/LumenFi/internal/accounting"
	"github.com/trettofejr/LumenFi/internal/confidential"
	"github.com/trettofejr/LumenFi/internal/ledger"
	"github.com/trettofejr/LumenFi/internal/oracle"
	"github.com/trettofejr/LumenFi/internal/repository"
)

// Params fixes the arena configuration at construction.
type Params struct {
	// Instance names this deployment for ciphertext binding, so handles
	// produced for one arena cannot be replayed into another.
	Instance      string
	EntryFee      decimal.Decimal // wei
	LockDuration  time.Duration
	RoundDuration time.Duration
	RangeBounds   []int64 // signed basis points, strictly increasing
}

// SettleResult reports one settlement and the successor round it opened.
type SettleResult struct {
	ContestID     uint64
	FinalPrice    decimal.Decimal
	ChangeBps     int64
	WinningRange  int
	WinnerCount   uint64
	RolledOver    bool
	Carry         decimal.Decimal
	NextContestID uint64
}

// Engine serializes every mutating operation behind one mutex: no operation
// observes a partially-applied effect of another, matching the one-transaction
// -at-a-time execution model of the source environment.
type Engine struct {
	mu     sync.Mutex
	params Params
	ledger *ledger.Ledger
	oracle oracle.PriceOracle
	vault  confidential.Service
	repo   repository.ArenaRepository // optional audit sink
	logger *zap.Logger
}

// New builds the engine and opens contest 1, sampling the oracle for its
// starting price.
func New(ctx context.Context, params Params, po oracle.PriceOracle, vault confidential.Service, repo repository.ArenaRepository, logger *zap.Logger, now time.Time) (*Engine, error) {
	if po == nil || vault == nil {
		return nil, fmt.Errorf("%w: oracle and confidential service are required", ledger.ErrInvalidConfiguration)
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	led, err := ledger.New(ledger.Params{
		EntryFee:      params.EntryFee,
		LockDuration:  int64(params.LockDuration / time.Second),
		RoundDuration: int64(params.RoundDuration / time.Second),
	})
	if err != nil {
		return nil, err
	}
	e := &Engine{
		params: params,
		ledger: led,
		oracle: po,
		vault:  vault,
		repo:   repo,
		logger: logger,
	}

	quote, err := po.LatestPrice(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: genesis price read: %v", ledger.ErrDependencyUnavailable, err)
	}
	genesis, err := led.CreateContest(quote.Value, params.RangeBounds, now.Unix(), decimal.Zero)
	if err != nil {
		return nil, err
	}
	logger.Info("arena genesis",
		zap.Uint64("contest_id", genesis.ID),
		zap.String("starting_price", genesis.StartingPrice.String()),
		zap.Int64("lock_time", genesis.LockTime),
		zap.Int64("settle_time", genesis.SettleTime),
	)
	e.persist(ctx, genesis.ID, nil)
	return e, nil
}

// Binding returns the ciphertext binding an entrant must encrypt under.
func (e *Engine) Binding(player string) confidential.Binding {
	return confidential.Binding{Instance: e.params.Instance, Submitter: player}
}

// EnterContest books a paid, encrypted directional bet into the latest open
// contest. The input proof binds the handle to this arena and this player.
func (e *Engine) EnterContest(ctx context.Context, player, handle string, inputProof []byte, fee decimal.Decimal, now time.Time) error {
	if err := e.vault.VerifyInput(ctx, handle, inputProof, e.Binding(player)); err != nil {
		return fmt.Errorf("%w: %v", ledger.ErrInvalidProof, err)
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	id := e.ledger.Latest()
	if err := e.ledger.RecordEntry(id, player, handle, fee, now.Unix()); err != nil {
		return err
	}
	e.logger.Info("entry recorded",
		zap.Uint64("contest_id", id),
		zap.String("player", player),
	)
	e.persist(ctx, id, nil)
	return nil
}

// RequestRangeReveal marks the contest's handles pending with the confidential
// service and returns them. Idempotent while the reveal is outstanding.
func (e *Engine) RequestRangeReveal(ctx context.Context, id uint64, now time.Time) ([]string, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	handles, err := e.ledger.RevealHandles(id, now.Unix())
	if err != nil {
		return nil, err
	}
	// The pending flag commits only after the service accepts the batch: a
	// failed request leaves the contest exactly as it was.
	if err := e.vault.RequestDecryption(ctx, handles); err != nil {
		return nil, fmt.Errorf("%w: request decryption: %v", ledger.ErrDependencyUnavailable, err)
	}
	if _, err := e.ledger.MarkRevealRequested(id, now.Unix()); err != nil {
		return nil, err
	}
	e.logger.Info("reveal requested", zap.Uint64("contest_id", id), zap.Int("handles", len(handles)))
	e.persist(ctx, id, nil)
	return handles, nil
}

// SubmitRangeReveal verifies the decryption proof against the exact pending
// handle set and, all-or-nothing, tallies the cleartext choices into per-range
// exposures.
func (e *Engine) SubmitRangeReveal(ctx context.Context, id uint64, clearValues []uint8, proof []byte, now time.Time) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	pending, err := e.ledger.PendingRevealHandles(id)
	if err != nil {
		return err
	}
	if len(pending) == 0 {
		return fmt.Errorf("%w: no pending reveal", ledger.ErrContestLocked)
	}
	if err := e.vault.Verify(ctx, pending, clearValues, proof); err != nil {
		return fmt.Errorf("%w: %v", ledger.ErrInvalidProof, err)
	}
	choices := make([]int, len(clearValues))
	for i, v := range clearValues {
		choices[i] = int(v)
	}
	if err := e.ledger.MarkExposuresReady(id, choices); err != nil {
		return err
	}
	e.logger.Info("exposures ready", zap.Uint64("contest_id", id), zap.Int("entries", len(choices)))
	e.persist(ctx, id, nil)
	return nil
}

// SettleContest reads the oracle once, decides the winning range, freezes the
// prize pool (or rolls it forward when the winning range is empty) and opens
// the successor round with the same bounds.
func (e *Engine) SettleContest(ctx context.Context, id uint64, now time.Time) (SettleResult, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	c, err := e.ledger.Contest(id)
	if err != nil {
		return SettleResult{}, err
	}
	if c.Settled || now.Unix() < c.SettleTime {
		return SettleResult{}, ErrNotSettleable(c, now.Unix())
	}
	if c.Entrants > 0 && !c.DirectionsReady {
		return SettleResult{}, fmt.Errorf("%w: reveal required before settlement", ledger.ErrContestLocked)
	}

	quote, err := e.oracle.LatestPrice(ctx)
	if err != nil {
		return SettleResult{}, fmt.Errorf("%w: settlement price read: %v", ledger.ErrDependencyUnavailable, err)
	}
	changeBps, err := accounting.ChangeBps(c.StartingPrice, quote.Value)
	if err != nil {
		return SettleResult{}, err
	}
	winningRange := accounting.WinningRange(changeBps, c.RangeBounds)

	rolled, winners, err := e.ledger.MarkSettled(id, winningRange)
	if err != nil {
		return SettleResult{}, err
	}
	carry := decimal.Zero
	if rolled {
		carry = accounting.Rollover(c.PrizePool)
	}

	// The settlement read doubles as the successor's starting price: both are
	// the same point in time, and a second oracle call could fail after the
	// terminal state transition above.
	next, err := e.ledger.CreateContest(quote.Value, c.RangeBounds, now.Unix(), carry)
	if err != nil {
		return SettleResult{}, err
	}

	result := SettleResult{
		ContestID:     id,
		FinalPrice:    quote.Value,
		ChangeBps:     changeBps,
		WinningRange:  winningRange,
		WinnerCount:   winners,
		RolledOver:    rolled,
		Carry:         carry,
		NextContestID: next.ID,
	}
	e.logger.Info("contest settled",
		zap.Uint64("contest_id", id),
		zap.String("final_price", quote.Value.String()),
		zap.Int64("change_bps", changeBps),
		zap.Int("winning_range", winningRange),
		zap.Uint64("winners", winners),
		zap.Bool("rolled_over", rolled),
		zap.Uint64("next_contest_id", next.ID),
	)
	e.persist(ctx, id, &quote.Value)
	e.persist(ctx, next.ID, nil)
	return result, nil
}

// ClaimPrize pays out one winner's share, exactly once. The last claimer
// absorbs the integer-division remainder so the pool empties exactly.
func (e *Engine) ClaimPrize(ctx context.Context, id uint64, player string, now time.Time) (decimal.Decimal, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	c, err := e.ledger.Contest(id)
	if err != nil {
		return decimal.Zero, err
	}
	if !c.Settled {
		return decimal.Zero, fmt.Errorf("%w: not yet settled", ledger.ErrContestLocked)
	}
	if c.RolledOver {
		return decimal.Zero, fmt.Errorf("%w: pool rolled over", ledger.ErrNothingToClaim)
	}
	status, err := e.ledger.PlayerStatus(id, player)
	if err != nil {
		return decimal.Zero, err
	}
	if !status.Won {
		return decimal.Zero, ledger.ErrNotWinner
	}
	if status.Claimed {
		return decimal.Zero, ledger.ErrAlreadyClaimed
	}

	isLast := c.ClaimedCount == c.WinnerCount-1
	amount, err := accounting.Share(c.PrizePool, c.WinnerCount, isLast)
	if err != nil {
		return decimal.Zero, err
	}
	if err := e.ledger.MarkClaimed(id, player, amount); err != nil {
		return decimal.Zero, err
	}
	e.logger.Info("prize claimed",
		zap.Uint64("contest_id", id),
		zap.String("player", player),
		zap.String("amount", amount.String()),
	)
	e.recordClaim(ctx, id, player, amount, now)
	e.persist(ctx, id, nil)
	return amount, nil
}

// LatestContestID is the id of the only contest accepting entries.
func (e *Engine) LatestContestID() uint64 {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.ledger.Latest()
}

func (e *Engine) GetContest(id uint64) (ledger.Contest, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.ledger.Contest(id)
}

func (e *Engine) GetRangeBounds(id uint64) ([]int64, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.ledger.RangeBounds(id)
}

func (e *Engine) GetRangeStats(id uint64) ([]ledger.RangeStat, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.ledger.RangeStats(id)
}

func (e *Engine) GetPlayerStatus(id uint64, player string) (ledger.PlayerStatus, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.ledger.PlayerStatus(id, player)
}

func (e *Engine) GetPendingRevealHandles(id uint64) ([]string, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.ledger.PendingRevealHandles(id)
}

// EntryFee is the exact wei amount an entry must pay.
func (e *Engine) EntryFee() decimal.Decimal {
	return e.params.EntryFee
}

// ErrNotSettleable keeps the locked/settled distinction in the message while
// staying in the ContestLocked taxonomy.
func ErrNotSettleable(c ledger.Contest, now int64) error {
	if c.Settled {
		return fmt.Errorf("%w: already settled", ledger.ErrContestLocked)
	}
	return fmt.Errorf("%w: settle opens at %d, now %d", ledger.ErrContestLocked, c.SettleTime, now)
}
