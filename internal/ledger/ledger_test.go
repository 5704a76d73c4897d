package ledger

import (
	"errors"
	"testing"

	"github.com/shopspring/decimal"
)

var (
	testFee    = decimal.RequireFromString("350000000000000")
	testPrice  = decimal.RequireFromString("50000")
	testBounds = []int64{-10000, 0, 10000}
)

const (
	testLock  = int64(96 * 3600)
	testRound = int64(168 * 3600)
)

func newTestLedger(t *testing.T) *Ledger {
	t.Helper()
	l, err := New(Params{EntryFee: testFee, LockDuration: testLock, RoundDuration: testRound})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return l
}

func TestNewValidation(t *testing.T) {
	cases := []struct {
		name   string
		params Params
		want   error
	}{
		{"lock equals round", Params{EntryFee: testFee, LockDuration: 100, RoundDuration: 100}, ErrInvalidConfiguration},
		{"lock exceeds round", Params{EntryFee: testFee, LockDuration: 200, RoundDuration: 100}, ErrInvalidConfiguration},
		{"zero lock", Params{EntryFee: testFee, LockDuration: 0, RoundDuration: 100}, ErrInvalidConfiguration},
		{"fee below minimum", Params{EntryFee: testFee.Sub(decimal.NewFromInt(1)), LockDuration: testLock, RoundDuration: testRound}, ErrInvalidFee},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := New(tc.params); !errors.Is(err, tc.want) {
				t.Fatalf("err = %v, want %v", err, tc.want)
			}
		})
	}
}

func TestCreateContestSchedule(t *testing.T) {
	l := newTestLedger(t)
	now := int64(1_700_000_000)
	c, err := l.CreateContest(testPrice, testBounds, now, decimal.Zero)
	if err != nil {
		t.Fatalf("CreateContest: %v", err)
	}
	if c.ID != 1 {
		t.Fatalf("genesis id = %d, want 1", c.ID)
	}
	if c.LockTime != now+testLock || c.SettleTime != now+testRound {
		t.Fatalf("schedule = (%d, %d), want (%d, %d)", c.LockTime, c.SettleTime, now+testLock, now+testRound)
	}
	if c.WinningRange != -1 {
		t.Fatalf("winning range = %d before settlement, want -1", c.WinningRange)
	}
	if l.Latest() != 1 {
		t.Fatalf("latest = %d, want 1", l.Latest())
	}

	stats, err := l.RangeStats(1)
	if err != nil {
		t.Fatalf("RangeStats: %v", err)
	}
	if len(stats) != 2 {
		t.Fatalf("range count = %d, want 2", len(stats))
	}
	if stats[0].LowerBps != -10000 || stats[0].UpperBps != 0 || stats[1].LowerBps != 0 || stats[1].UpperBps != 10000 {
		t.Fatalf("unexpected range bounds: %+v", stats)
	}
}

func TestCreateContestValidation(t *testing.T) {
	l := newTestLedger(t)
	now := int64(1_700_000_000)

	if _, err := l.CreateContest(testPrice, []int64{-10000, 0}, now, decimal.Zero); !errors.Is(err, ErrInvalidConfiguration) {
		t.Fatalf("two bounds: err = %v, want ErrInvalidConfiguration", err)
	}
	if _, err := l.CreateContest(testPrice, []int64{-10000, 0, 0}, now, decimal.Zero); !errors.Is(err, ErrInvalidConfiguration) {
		t.Fatalf("non-increasing bounds: err = %v, want ErrInvalidConfiguration", err)
	}
	if _, err := l.CreateContest(decimal.Zero, testBounds, now, decimal.Zero); !errors.Is(err, ErrInvalidConfiguration) {
		t.Fatalf("zero price: err = %v, want ErrInvalidConfiguration", err)
	}
	if _, err := l.CreateContest(testPrice, testBounds, now, decimal.NewFromInt(-1)); !errors.Is(err, ErrInvalidConfiguration) {
		t.Fatalf("negative seed: err = %v, want ErrInvalidConfiguration", err)
	}
}

func TestRecordEntryGuards(t *testing.T) {
	l := newTestLedger(t)
	now := int64(1_700_000_000)
	if _, err := l.CreateContest(testPrice, testBounds, now, decimal.Zero); err != nil {
		t.Fatalf("CreateContest: %v", err)
	}

	if err := l.RecordEntry(99, "alice", "h1", testFee, now+1); !errors.Is(err, ErrContestMissing) {
		t.Fatalf("missing contest: err = %v", err)
	}
	if err := l.RecordEntry(1, "alice", "h1", testFee.Add(decimal.NewFromInt(1)), now+1); !errors.Is(err, ErrInvalidFee) {
		t.Fatalf("overpaid fee: err = %v", err)
	}
	if err := l.RecordEntry(1, "alice", "h1", testFee.Sub(decimal.NewFromInt(1)), now+1); !errors.Is(err, ErrInvalidFee) {
		t.Fatalf("underpaid fee: err = %v", err)
	}
	if err := l.RecordEntry(1, "alice", "h1", testFee, now+1); err != nil {
		t.Fatalf("valid entry: %v", err)
	}
	if err := l.RecordEntry(1, "alice", "h2", testFee, now+2); !errors.Is(err, ErrAlreadyEntered) {
		t.Fatalf("duplicate player: err = %v", err)
	}
	if err := l.RecordEntry(1, "bob", "h2", testFee, now+testLock); !errors.Is(err, ErrContestLocked) {
		t.Fatalf("entry at lock time: err = %v", err)
	}

	c, err := l.Contest(1)
	if err != nil {
		t.Fatalf("Contest: %v", err)
	}
	if c.Entrants != 1 {
		t.Fatalf("entrants = %d, want 1", c.Entrants)
	}
	if !c.PrizePool.Equal(testFee) {
		t.Fatalf("pool = %s, want %s", c.PrizePool, testFee)
	}
}

func TestEntryRejectedForSupersededContest(t *testing.T) {
	l := newTestLedger(t)
	now := int64(1_700_000_000)
	if _, err := l.CreateContest(testPrice, testBounds, now, decimal.Zero); err != nil {
		t.Fatalf("CreateContest 1: %v", err)
	}
	if _, err := l.CreateContest(testPrice, testBounds, now+testRound, decimal.Zero); err != nil {
		t.Fatalf("CreateContest 2: %v", err)
	}
	if err := l.RecordEntry(1, "alice", "h1", testFee, now+1); !errors.Is(err, ErrContestLocked) {
		t.Fatalf("superseded contest: err = %v, want ErrContestLocked", err)
	}
	if err := l.RecordEntry(2, "alice", "h1", testFee, now+testRound+1); err != nil {
		t.Fatalf("latest contest entry: %v", err)
	}
}

func TestRevealFlow(t *testing.T) {
	l := newTestLedger(t)
	now := int64(1_700_000_000)
	if _, err := l.CreateContest(testPrice, testBounds, now, decimal.Zero); err != nil {
		t.Fatalf("CreateContest: %v", err)
	}
	for i, p := range []string{"alice", "bob", "carol"} {
		if err := l.RecordEntry(1, p, "h-"+p, testFee, now+int64(i)+1); err != nil {
			t.Fatalf("entry %s: %v", p, err)
		}
	}

	if _, err := l.MarkRevealRequested(1, now+1); !errors.Is(err, ErrContestLocked) {
		t.Fatalf("reveal before lock: err = %v, want ErrContestLocked", err)
	}

	handles, err := l.MarkRevealRequested(1, now+testLock)
	if err != nil {
		t.Fatalf("MarkRevealRequested: %v", err)
	}
	want := []string{"h-alice", "h-bob", "h-carol"}
	if len(handles) != len(want) {
		t.Fatalf("handles = %v, want %v", handles, want)
	}
	for i := range want {
		if handles[i] != want[i] {
			t.Fatalf("handle order %v, want %v", handles, want)
		}
	}

	// Re-request while pending returns the same set.
	again, err := l.MarkRevealRequested(1, now+testLock+10)
	if err != nil {
		t.Fatalf("second MarkRevealRequested: %v", err)
	}
	if len(again) != len(want) {
		t.Fatalf("re-request handles = %v, want %v", again, want)
	}

	pending, err := l.PendingRevealHandles(1)
	if err != nil {
		t.Fatalf("PendingRevealHandles: %v", err)
	}
	if len(pending) != 3 {
		t.Fatalf("pending = %v, want 3 handles", pending)
	}

	if err := l.MarkExposuresReady(1, []int{0, 1}); !errors.Is(err, ErrInvalidProof) {
		t.Fatalf("short choices: err = %v, want ErrInvalidProof", err)
	}
	if err := l.MarkExposuresReady(1, []int{0, 1, 2}); !errors.Is(err, ErrInvalidProof) {
		t.Fatalf("out-of-range choice: err = %v, want ErrInvalidProof", err)
	}
	if err := l.MarkExposuresReady(1, []int{0, 1, 1}); err != nil {
		t.Fatalf("MarkExposuresReady: %v", err)
	}
	if err := l.MarkExposuresReady(1, []int{0, 1, 1}); !errors.Is(err, ErrDirectionsAlreadyRevealed) {
		t.Fatalf("second reveal: err = %v, want ErrDirectionsAlreadyRevealed", err)
	}
	if _, err := l.MarkRevealRequested(1, now+testLock+20); !errors.Is(err, ErrDirectionsAlreadyRevealed) {
		t.Fatalf("request after ready: err = %v, want ErrDirectionsAlreadyRevealed", err)
	}

	pending, err = l.PendingRevealHandles(1)
	if err != nil {
		t.Fatalf("PendingRevealHandles after ready: %v", err)
	}
	if len(pending) != 0 {
		t.Fatalf("pending after ready = %v, want empty", pending)
	}

	stats, err := l.RangeStats(1)
	if err != nil {
		t.Fatalf("RangeStats: %v", err)
	}
	if stats[0].Entrants != 1 || stats[1].Entrants != 2 {
		t.Fatalf("attributed entrants = (%d, %d), want (1, 2)", stats[0].Entrants, stats[1].Entrants)
	}
}

func TestRevealHandlesDoesNotMarkPending(t *testing.T) {
	l := newTestLedger(t)
	now := int64(1_700_000_000)
	if _, err := l.CreateContest(testPrice, testBounds, now, decimal.Zero); err != nil {
		t.Fatalf("CreateContest: %v", err)
	}
	if err := l.RecordEntry(1, "alice", "h1", testFee, now+1); err != nil {
		t.Fatalf("entry: %v", err)
	}

	handles, err := l.RevealHandles(1, now+testLock)
	if err != nil {
		t.Fatalf("RevealHandles: %v", err)
	}
	if len(handles) != 1 || handles[0] != "h1" {
		t.Fatalf("handles = %v, want [h1]", handles)
	}
	pending, err := l.PendingRevealHandles(1)
	if err != nil {
		t.Fatalf("PendingRevealHandles: %v", err)
	}
	if len(pending) != 0 {
		t.Fatalf("pending = %v after peek, want empty", pending)
	}
	c, err := l.Contest(1)
	if err != nil {
		t.Fatalf("Contest: %v", err)
	}
	if c.RevealRequested {
		t.Fatal("peek set the reveal-requested flag")
	}

	if _, err := l.MarkRevealRequested(1, now+testLock); err != nil {
		t.Fatalf("MarkRevealRequested: %v", err)
	}
	pending, err = l.PendingRevealHandles(1)
	if err != nil {
		t.Fatalf("PendingRevealHandles: %v", err)
	}
	if len(pending) != 1 {
		t.Fatalf("pending = %v after mark, want 1 handle", pending)
	}
}

func TestRevealWithNoEntrants(t *testing.T) {
	l := newTestLedger(t)
	now := int64(1_700_000_000)
	if _, err := l.CreateContest(testPrice, testBounds, now, decimal.Zero); err != nil {
		t.Fatalf("CreateContest: %v", err)
	}
	if _, err := l.MarkRevealRequested(1, now+testLock); !errors.Is(err, ErrNothingToClaim) {
		t.Fatalf("err = %v, want ErrNothingToClaim", err)
	}
}

func TestSettleAndClaim(t *testing.T) {
	l := newTestLedger(t)
	now := int64(1_700_000_000)
	if _, err := l.CreateContest(testPrice, testBounds, now, decimal.Zero); err != nil {
		t.Fatalf("CreateContest: %v", err)
	}
	for i, p := range []string{"alice", "bob", "carol"} {
		if err := l.RecordEntry(1, p, "h-"+p, testFee, now+int64(i)+1); err != nil {
			t.Fatalf("entry %s: %v", p, err)
		}
	}
	if _, err := l.MarkRevealRequested(1, now+testLock); err != nil {
		t.Fatalf("MarkRevealRequested: %v", err)
	}
	if err := l.MarkExposuresReady(1, []int{1, 0, 1}); err != nil {
		t.Fatalf("MarkExposuresReady: %v", err)
	}

	if _, _, err := l.MarkSettled(1, 5); !errors.Is(err, ErrInvalidConfiguration) {
		t.Fatalf("out-of-range winning range: err = %v", err)
	}
	rolled, winners, err := l.MarkSettled(1, 1)
	if err != nil {
		t.Fatalf("MarkSettled: %v", err)
	}
	if rolled || winners != 2 {
		t.Fatalf("settle = (rolled %v, winners %d), want (false, 2)", rolled, winners)
	}
	if _, _, err := l.MarkSettled(1, 1); !errors.Is(err, ErrContestLocked) {
		t.Fatalf("second settle: err = %v, want ErrContestLocked", err)
	}

	if err := l.MarkClaimed(1, "bob", testFee); !errors.Is(err, ErrNotWinner) {
		t.Fatalf("loser claim: err = %v, want ErrNotWinner", err)
	}
	if err := l.MarkClaimed(1, "dave", testFee); !errors.Is(err, ErrNotWinner) {
		t.Fatalf("stranger claim: err = %v, want ErrNotWinner", err)
	}
	if err := l.MarkClaimed(1, "alice", testFee); err != nil {
		t.Fatalf("winner claim: %v", err)
	}
	if err := l.MarkClaimed(1, "alice", testFee); !errors.Is(err, ErrAlreadyClaimed) {
		t.Fatalf("double claim: err = %v, want ErrAlreadyClaimed", err)
	}

	c, err := l.Contest(1)
	if err != nil {
		t.Fatalf("Contest: %v", err)
	}
	if c.ClaimedCount != 1 || !c.PaidOut.Equal(testFee) {
		t.Fatalf("claimed = %d paid = %s, want 1 and %s", c.ClaimedCount, c.PaidOut, testFee)
	}

	status, err := l.PlayerStatus(1, "alice")
	if err != nil {
		t.Fatalf("PlayerStatus: %v", err)
	}
	if !status.Entered || !status.Won || !status.Claimed {
		t.Fatalf("alice status = %+v", status)
	}
	status, err = l.PlayerStatus(1, "dave")
	if err != nil {
		t.Fatalf("PlayerStatus dave: %v", err)
	}
	if status.Entered || status.Won || status.Claimed {
		t.Fatalf("dave status = %+v, want zero", status)
	}
}

func TestSettleWithNoWinnersRollsOver(t *testing.T) {
	l := newTestLedger(t)
	now := int64(1_700_000_000)
	if _, err := l.CreateContest(testPrice, testBounds, now, decimal.Zero); err != nil {
		t.Fatalf("CreateContest: %v", err)
	}
	if err := l.RecordEntry(1, "alice", "h1", testFee, now+1); err != nil {
		t.Fatalf("entry: %v", err)
	}
	if _, err := l.MarkRevealRequested(1, now+testLock); err != nil {
		t.Fatalf("MarkRevealRequested: %v", err)
	}
	if err := l.MarkExposuresReady(1, []int{0}); err != nil {
		t.Fatalf("MarkExposuresReady: %v", err)
	}
	rolled, winners, err := l.MarkSettled(1, 1)
	if err != nil {
		t.Fatalf("MarkSettled: %v", err)
	}
	if !rolled || winners != 0 {
		t.Fatalf("settle = (rolled %v, winners %d), want (true, 0)", rolled, winners)
	}
	if err := l.MarkClaimed(1, "alice", testFee); !errors.Is(err, ErrNotWinner) {
		t.Fatalf("claim on rolled-over round: err = %v, want ErrNotWinner", err)
	}
}

func TestSeedPoolCarriesIntoNewContest(t *testing.T) {
	l := newTestLedger(t)
	now := int64(1_700_000_000)
	carry := decimal.RequireFromString("700000000000000")
	c, err := l.CreateContest(testPrice, testBounds, now, carry)
	if err != nil {
		t.Fatalf("CreateContest: %v", err)
	}
	if !c.PrizePool.Equal(carry) {
		t.Fatalf("seeded pool = %s, want %s", c.PrizePool, carry)
	}
	if err := l.RecordEntry(1, "alice", "h1", testFee, now+1); err != nil {
		t.Fatalf("entry: %v", err)
	}
	c, err = l.Contest(1)
	if err != nil {
		t.Fatalf("Contest: %v", err)
	}
	if !c.PrizePool.Equal(carry.Add(testFee)) {
		t.Fatalf("pool = %s, want %s", c.PrizePool, carry.Add(testFee))
	}
}
