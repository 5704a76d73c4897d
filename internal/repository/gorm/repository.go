package gormrepository

import (
	"context"
	"errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/trettofejr/LumenFi/internal/models"
	"github.com/trettofejr/LumenFi/internal/repository"
)

type Store struct {
	db *gorm.DB
}

func New(db *gorm.DB) *Store {
	return &Store{db: db}
}

func (s *Store) UpsertContest(ctx context.Context, item *models.Contest) error {
	if s == nil || s.db == nil || item == nil {
		return nil
	}
	return s.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "id"}},
			UpdateAll: true,
		}).
		Create(item).Error
}

func (s *Store) UpsertEntries(ctx context.Context, items []models.ContestEntry) error {
	if s == nil || s.db == nil || len(items) == 0 {
		return nil
	}
	return s.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "contest_id"}, {Name: "player"}},
			UpdateAll: true,
		}).
		Create(&items).Error
}

func (s *Store) UpsertRanges(ctx context.Context, items []models.ContestRange) error {
	if s == nil || s.db == nil || len(items) == 0 {
		return nil
	}
	return s.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "contest_id"}, {Name: "range_index"}},
			UpdateAll: true,
		}).
		Create(&items).Error
}

func (s *Store) InsertClaim(ctx context.Context, item *models.PrizeClaim) error {
	if s == nil || s.db == nil || item == nil {
		return nil
	}
	return s.db.WithContext(ctx).Create(item).Error
}

func (s *Store) GetContest(ctx context.Context, id uint64) (*models.Contest, error) {
	if s == nil || s.db == nil {
		return nil, nil
	}
	var item models.Contest
	err := s.db.WithContext(ctx).First(&item, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &item, nil
}

func (s *Store) ListContests(ctx context.Context, params repository.ListContestsParams) ([]models.Contest, error) {
	if s == nil || s.db == nil {
		return nil, nil
	}
	query := s.db.WithContext(ctx).Model(&models.Contest{})
	if params.Settled != nil {
		query = query.Where("settled = ?", *params.Settled)
	}
	order := "id DESC"
	if params.Asc {
		order = "id ASC"
	}
	var items []models.Contest
	err := query.Order(order).
		Limit(normalizeLimit(params.Limit, 50)).
		Offset(normalizeOffset(params.Offset)).
		Find(&items).Error
	if err != nil {
		return nil, err
	}
	return items, nil
}

func (s *Store) ListEntriesByPlayer(ctx context.Context, params repository.ListEntriesParams) ([]models.ContestEntry, error) {
	if s == nil || s.db == nil {
		return nil, nil
	}
	var items []models.ContestEntry
	err := s.db.WithContext(ctx).
		Where("player = ?", params.Player).
		Order("contest_id DESC").
		Limit(normalizeLimit(params.Limit, 50)).
		Offset(normalizeOffset(params.Offset)).
		Find(&items).Error
	if err != nil {
		return nil, err
	}
	return items, nil
}

func (s *Store) ListClaimsByPlayer(ctx context.Context, player string, limit int) ([]models.PrizeClaim, error) {
	if s == nil || s.db == nil {
		return nil, nil
	}
	var items []models.PrizeClaim
	err := s.db.WithContext(ctx).
		Where("player = ?", player).
		Order("contest_id DESC").
		Limit(normalizeLimit(limit, 50)).
		Find(&items).Error
	if err != nil {
		return nil, err
	}
	return items, nil
}

func normalizeLimit(limit, fallback int) int {
	if limit <= 0 || limit > 1000 {
		return fallback
	}
	return limit
}

func normalizeOffset(offset int) int {
	if offset < 0 {
		return 0
	}
	return offset
}
