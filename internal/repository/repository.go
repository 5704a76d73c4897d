package repository

import (
	"context"

	"github.com/trettofejr/LumenFi/internal/models"
)

type ListContestsParams struct {
	Limit   int
	Offset  int
	Settled *bool
	Asc     bool
}

type ListEntriesParams struct {
	Limit  int
	Offset int
	Player string
}

// ArenaRepository persists write-through snapshots of the ledger for audit and
// reconstructs a participant's own round history. It is a sink, never an
// authority: the engine does not read it back on the hot path.
type ArenaRepository interface {
	UpsertContest(ctx context.Context, item *models.Contest) error
	UpsertEntries(ctx context.Context, items []models.ContestEntry) error
	UpsertRanges(ctx context.Context, items []models.ContestRange) error
	InsertClaim(ctx context.Context, item *models.PrizeClaim) error

	GetContest(ctx context.Context, id uint64) (*models.Contest, error)
	ListContests(ctx context.Context, params ListContestsParams) ([]models.Contest, error)
	ListEntriesByPlayer(ctx context.Context, params ListEntriesParams) ([]models.ContestEntry, error)
	ListClaimsByPlayer(ctx context.Context, player string, limit int) ([]models.PrizeClaim, error)
}
