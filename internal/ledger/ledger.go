package ledger

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// MinEntryFeeWei is the floor for the configured entry fee: 0.00035 ether.
var MinEntryFeeWei = decimal.RequireFromString("350000000000000")

// Params fixes the contest configuration at construction time.
type Params struct {
	EntryFee      decimal.Decimal // exact fee required per entry, in wei
	LockDuration  int64           // seconds from start until entries close
	RoundDuration int64           // seconds from start until settlement opens
}

// Contest is the public view of one round. Times are unix seconds.
type Contest struct {
	ID              uint64
	StartTime       int64
	LockTime        int64
	SettleTime      int64
	StartingPrice   decimal.Decimal
	RangeBounds     []int64
	EntryFee        decimal.Decimal
	PrizePool       decimal.Decimal // frozen at settlement, net of nothing
	PaidOut         decimal.Decimal // sum of successful claims
	Entrants        uint64
	DirectionsReady bool
	Settled         bool
	RolledOver      bool
	WinningRange    int // meaningful only once Settled
	WinnerCount     uint64
	ClaimedCount    uint64
	RevealRequested bool
}

// RangeStat is one price-change bucket. Entrants is attributed only at reveal
// time: who entered is public, which range they chose is confidential until
// the verified reveal lands.
type RangeStat struct {
	LowerBps         int64
	UpperBps         int64
	Entrants         uint64
	RevealedExposure uint64
}

// Entry is one player's position in one contest.
type Entry struct {
	Player     string
	Handle     string
	RangeIndex int // -1 until revealed
	Won        bool
	Claimed    bool
	EnteredAt  int64
}

// PlayerStatus mirrors the public per-player view.
type PlayerStatus struct {
	Entered bool
	Won     bool
	Claimed bool
}

type record struct {
	contest Contest
	stats   []RangeStat
	entries map[string]*Entry
	order   []string // players in entry order; fixes the reveal handle order
}

// Ledger is the single source of truth for contest, range, and entry state.
// Pure bookkeeping with validation: no clocks, no cryptography, no I/O.
// Callers (the engine) serialize access.
type Ledger struct {
	params   Params
	contests map[uint64]*record
	latest   uint64
}

func New(params Params) (*Ledger, error) {
	if params.LockDuration <= 0 || params.RoundDuration <= 0 || params.LockDuration >= params.RoundDuration {
		return nil, fmt.Errorf("%w: lock duration must be positive and shorter than round duration", ErrInvalidConfiguration)
	}
	if params.EntryFee.LessThan(MinEntryFeeWei) {
		return nil, fmt.Errorf("%w: entry fee below minimum", ErrInvalidFee)
	}
	return &Ledger{
		params:   params,
		contests: map[uint64]*record{},
	}, nil
}

// CreateContest opens round latest+1. seedPool carries a rolled-over prize
// pool from the predecessor; genesis passes zero.
func (l *Ledger) CreateContest(startingPrice decimal.Decimal, rangeBounds []int64, now int64, seedPool decimal.Decimal) (Contest, error) {
	if len(rangeBounds) < 3 {
		return Contest{}, fmt.Errorf("%w: need at least 3 boundary values", ErrInvalidConfiguration)
	}
	for i := 1; i < len(rangeBounds); i++ {
		if rangeBounds[i] <= rangeBounds[i-1] {
			return Contest{}, fmt.Errorf("%w: bounds must be strictly increasing", ErrInvalidConfiguration)
		}
	}
	if startingPrice.Sign() <= 0 {
		return Contest{}, fmt.Errorf("%w: starting price must be positive", ErrInvalidConfiguration)
	}
	if seedPool.Sign() < 0 {
		return Contest{}, fmt.Errorf("%w: negative seed pool", ErrInvalidConfiguration)
	}

	bounds := append([]int64(nil), rangeBounds...)
	id := l.latest + 1
	c := Contest{
		ID:            id,
		StartTime:     now,
		LockTime:      now + l.params.LockDuration,
		SettleTime:    now + l.params.RoundDuration,
		StartingPrice: startingPrice,
		RangeBounds:   bounds,
		EntryFee:      l.params.EntryFee,
		PrizePool:     seedPool,
		PaidOut:       decimal.Zero,
		WinningRange:  -1,
	}
	stats := make([]RangeStat, len(bounds)-1)
	for i := range stats {
		stats[i] = RangeStat{LowerBps: bounds[i], UpperBps: bounds[i+1]}
	}
	l.contests[id] = &record{
		contest: c,
		stats:   stats,
		entries: map[string]*Entry{},
	}
	l.latest = id
	return c, nil
}

// RecordEntry books one paid, encrypted entry into the latest open contest.
func (l *Ledger) RecordEntry(id uint64, player, handle string, fee decimal.Decimal, now int64) error {
	rec, ok := l.contests[id]
	if !ok {
		return ErrContestMissing
	}
	c := &rec.contest
	if c.Settled || id != l.latest || now >= c.LockTime {
		return ErrContestLocked
	}
	if _, dup := rec.entries[player]; dup {
		return ErrAlreadyEntered
	}
	if fee.LessThan(MinEntryFeeWei) || !fee.Equal(c.EntryFee) {
		return ErrInvalidFee
	}

	rec.entries[player] = &Entry{
		Player:     player,
		Handle:     handle,
		RangeIndex: -1,
		EnteredAt:  now,
	}
	rec.order = append(rec.order, player)
	c.Entrants++
	c.PrizePool = c.PrizePool.Add(fee)
	return nil
}

// RevealHandles validates that a reveal may be requested and returns the
// handle set in entry order, without mutating anything. Callers that clear the
// decryption request with an external service peek here first and mark after.
func (l *Ledger) RevealHandles(id uint64, now int64) ([]string, error) {
	rec, err := l.revealable(id, now)
	if err != nil {
		return nil, err
	}
	return rec.handles(), nil
}

// MarkRevealRequested flags the contest as awaiting decryption and returns the
// pending handle set, in entry order. Idempotent: a second call while pending
// returns the same set.
func (l *Ledger) MarkRevealRequested(id uint64, now int64) ([]string, error) {
	rec, err := l.revealable(id, now)
	if err != nil {
		return nil, err
	}
	rec.contest.RevealRequested = true
	return rec.handles(), nil
}

func (l *Ledger) revealable(id uint64, now int64) (*record, error) {
	rec, ok := l.contests[id]
	if !ok {
		return nil, ErrContestMissing
	}
	c := &rec.contest
	if c.Settled || now < c.LockTime {
		return nil, ErrContestLocked
	}
	if c.DirectionsReady {
		return nil, ErrDirectionsAlreadyRevealed
	}
	if c.Entrants == 0 {
		return nil, ErrNothingToClaim
	}
	return rec, nil
}

// PendingRevealHandles returns the handle set awaiting decryption; empty until
// a reveal has been requested and again once exposures are ready.
func (l *Ledger) PendingRevealHandles(id uint64) ([]string, error) {
	rec, ok := l.contests[id]
	if !ok {
		return nil, ErrContestMissing
	}
	if !rec.contest.RevealRequested || rec.contest.DirectionsReady {
		return nil, nil
	}
	return rec.handles(), nil
}

// MarkExposuresReady stores the verified cleartext choices. choices[i] is the
// range index of the i-th entry in entry order, matching the pending handle
// set. One-shot.
func (l *Ledger) MarkExposuresReady(id uint64, choices []int) error {
	rec, ok := l.contests[id]
	if !ok {
		return ErrContestMissing
	}
	c := &rec.contest
	if c.Settled || !c.RevealRequested {
		return ErrContestLocked
	}
	if c.DirectionsReady {
		return ErrDirectionsAlreadyRevealed
	}
	if uint64(len(choices)) != c.Entrants {
		return fmt.Errorf("%w: %d clear values for %d entries", ErrInvalidProof, len(choices), c.Entrants)
	}
	for _, choice := range choices {
		if choice < 0 || choice >= len(rec.stats) {
			return fmt.Errorf("%w: range index %d out of bounds", ErrInvalidProof, choice)
		}
	}

	for i, player := range rec.order {
		entry := rec.entries[player]
		entry.RangeIndex = choices[i]
		rec.stats[choices[i]].Entrants++
		rec.stats[choices[i]].RevealedExposure++
	}
	c.DirectionsReady = true
	return nil
}

// MarkSettled terminally fixes the winner set for the contest by replaying the
// revealed per-entry choices. Returns whether the pool rolls over (no entrant
// in the winning range) and the winner count.
func (l *Ledger) MarkSettled(id uint64, winningRange int) (rolledOver bool, winnerCount uint64, err error) {
	rec, ok := l.contests[id]
	if !ok {
		return false, 0, ErrContestMissing
	}
	c := &rec.contest
	if c.Settled {
		return false, 0, ErrContestLocked
	}
	if winningRange < 0 || winningRange >= len(rec.stats) {
		return false, 0, fmt.Errorf("%w: winning range %d out of bounds", ErrInvalidConfiguration, winningRange)
	}

	for _, player := range rec.order {
		entry := rec.entries[player]
		if entry.RangeIndex == winningRange {
			entry.Won = true
			winnerCount++
		}
	}
	c.Settled = true
	c.WinningRange = winningRange
	c.WinnerCount = winnerCount
	c.RolledOver = winnerCount == 0
	return c.RolledOver, winnerCount, nil
}

// MarkClaimed books one successful prize payout.
func (l *Ledger) MarkClaimed(id uint64, player string, amount decimal.Decimal) error {
	rec, ok := l.contests[id]
	if !ok {
		return ErrContestMissing
	}
	c := &rec.contest
	if !c.Settled {
		return ErrContestLocked
	}
	entry, ok := rec.entries[player]
	if !ok || !entry.Won {
		return ErrNotWinner
	}
	if entry.Claimed {
		return ErrAlreadyClaimed
	}
	entry.Claimed = true
	c.ClaimedCount++
	c.PaidOut = c.PaidOut.Add(amount)
	return nil
}

// Latest returns the id of the only contest accepting entries, 0 before genesis.
func (l *Ledger) Latest() uint64 {
	return l.latest
}

func (l *Ledger) Contest(id uint64) (Contest, error) {
	rec, ok := l.contests[id]
	if !ok {
		return Contest{}, ErrContestMissing
	}
	c := rec.contest
	c.RangeBounds = append([]int64(nil), c.RangeBounds...)
	return c, nil
}

func (l *Ledger) RangeBounds(id uint64) ([]int64, error) {
	rec, ok := l.contests[id]
	if !ok {
		return nil, ErrContestMissing
	}
	return append([]int64(nil), rec.contest.RangeBounds...), nil
}

func (l *Ledger) RangeStats(id uint64) ([]RangeStat, error) {
	rec, ok := l.contests[id]
	if !ok {
		return nil, ErrContestMissing
	}
	return append([]RangeStat(nil), rec.stats...), nil
}

func (l *Ledger) PlayerStatus(id uint64, player string) (PlayerStatus, error) {
	rec, ok := l.contests[id]
	if !ok {
		return PlayerStatus{}, ErrContestMissing
	}
	entry, ok := rec.entries[player]
	if !ok {
		return PlayerStatus{}, nil
	}
	return PlayerStatus{Entered: true, Won: entry.Won, Claimed: entry.Claimed}, nil
}

// Entries returns copies of the contest's entries in entry order. Range
// attribution stays -1 until exposures are ready.
func (l *Ledger) Entries(id uint64) ([]Entry, error) {
	rec, ok := l.contests[id]
	if !ok {
		return nil, ErrContestMissing
	}
	out := make([]Entry, 0, len(rec.order))
	for _, player := range rec.order {
		out = append(out, *rec.entries[player])
	}
	return out, nil
}

func (r *record) handles() []string {
	out := make([]string, 0, len(r.order))
	for _, player := range r.order {
		out = append(out, r.entries[player].Handle)
	}
	return out
}
