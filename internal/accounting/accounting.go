// Package accounting holds the deterministic prize-pool arithmetic, isolated
// from time and oracle concerns so it can be unit-tested on its own.
package accounting

import (
	"fmt"
	"sort"

	"github.com/shopspring/decimal"

	"github.com/trettofejr/LumenFi/internal/ledger"
)

var bpsScale = decimal.NewFromInt(10000)

// Share computes one winner's payout from a frozen prize pool. The base share
// is the integer division prizePool/winnerCount; the last claimer receives
// whatever remains, so the pool is exhausted exactly despite integer-division
// remainder.
func Share(prizePool decimal.Decimal, winnerCount uint64, isLast bool) (decimal.Decimal, error) {
	if winnerCount == 0 {
		return decimal.Zero, fmt.Errorf("%w: zero winners", ledger.ErrNothingToClaim)
	}
	count := decimal.NewFromUint64(winnerCount)
	base, _ := prizePool.QuoRem(count, 0)
	if !isLast {
		return base, nil
	}
	return prizePool.Sub(base.Mul(count.Sub(decimal.NewFromInt(1)))), nil
}

// Rollover is the carry-forward amount when a round settles with no winners:
// the entire pool, unmodified. Trivial on purpose; this is the single place
// the no-winner policy is encoded.
func Rollover(prizePool decimal.Decimal) decimal.Decimal {
	return prizePool
}

// ChangeBps returns the signed basis-point price change from start to final,
// floored (toward negative infinity) to an integer.
func ChangeBps(start, final decimal.Decimal) (int64, error) {
	if start.Sign() <= 0 {
		return 0, fmt.Errorf("%w: non-positive starting price", ledger.ErrInvalidConfiguration)
	}
	n := final.Sub(start).Mul(bpsScale)
	q, r := n.QuoRem(start, 0)
	if r.Sign() != 0 && n.Sign() < 0 {
		q = q.Sub(decimal.NewFromInt(1))
	}
	return q.IntPart(), nil
}

// WinningRange locates the unique range whose [lower, upper) interval contains
// changeBps, with the first lower bound treated as -inf and the last upper
// bound as +inf. A change sitting exactly on a boundary resolves to the
// higher-indexed (more bullish) range.
func WinningRange(changeBps int64, bounds []int64) int {
	interior := bounds[1 : len(bounds)-1]
	return sort.Search(len(interior), func(i int) bool {
		return changeBps < interior[i]
	})
}
