package catalog

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	types "github.com/yungbote/unibridge-backend/internal/domain"
	"github.com/yungbote/unibridge-backend/internal/platform/dbctx"
	"github.com/yungbote/unibridge-backend/internal/platform/logger"
)

type UniversityRepo interface {
	GetByID(dbc dbctx.Context, id uuid.UUID) (*types.University, error)
	GetByIDs(dbc dbctx.Context, ids []uuid.UUID) ([]*types.University, error)
	GetByNameKeys(dbc dbctx.Context, keys []string) ([]*types.University, error)
	// ResolveOrCreate inserts the candidates whose name_key is unknown and returns the
	// stored row for every input, in input order. Existing rows win over the input.
	ResolveOrCreate(dbc dbctx.Context, candidates []*types.University) ([]*types.University, error)
	List(dbc dbctx.Context, limit int) ([]*types.University, error)
	Update(dbc dbctx.Context, u *types.University) error
}

type universityRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewUniversityRepo(db *gorm.DB, baseLog *logger.Logger) UniversityRepo {
	repoLog := baseLog.With("repo", "UniversityRepo")
	return &universityRepo{db: db, log: repoLog}
}

func (r *universityRepo) GetByID(dbc dbctx.Context, id uuid.UUID) (*types.University, error) {
	var rows []*types.University
	if err := dbc.DB(r.db).Where("id = ?", id).Limit(1).Find(&rows).Error; err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, nil
	}
	return rows[0], nil
}

func (r *universityRepo) GetByIDs(dbc dbctx.Context, ids []uuid.UUID) ([]*types.University, error) {
	var results []*types.University
	if len(ids) == 0 {
		return results, nil
	}
	if err := dbc.DB(r.db).Where("id IN ?", ids).Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (r *universityRepo) GetByNameKeys(dbc dbctx.Context, keys []string) ([]*types.University, error) {
	var results []*types.University
	if len(keys) == 0 {
		return results, nil
	}
	if err := dbc.DB(r.db).Where("name_key IN ?", keys).Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (r *universityRepo) ResolveOrCreate(dbc dbctx.Context, candidates []*types.University) ([]*types.University, error) {
	if len(candidates) == 0 {
		return []*types.University{}, nil
	}
	now := time.Now().UTC()
	keys := make([]string, 0, len(candidates))
	for _, c := range candidates {
		if c.ID == uuid.Nil {
			c.ID = uuid.New()
		}
		if c.CreatedAt.IsZero() {
			c.CreatedAt = now
		}
		c.UpdatedAt = now
		keys = append(keys, c.NameKey)
	}

	tx := dbc.DB(r.db)
	if err := tx.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "name_key"}},
		DoNothing: true,
	}).Create(&candidates).Error; err != nil {
		return nil, err
	}

	stored, err := r.GetByNameKeys(dbc, keys)
	if err != nil {
		return nil, err
	}
	byKey := make(map[string]*types.University, len(stored))
	for _, u := range stored {
		byKey[u.NameKey] = u
	}
	out := make([]*types.University, 0, len(candidates))
	for _, c := range candidates {
		if u, ok := byKey[c.NameKey]; ok {
			out = append(out, u)
		}
	}
	return out, nil
}

func (r *universityRepo) List(dbc dbctx.Context, limit int) ([]*types.University, error) {
	var results []*types.University
	q := dbc.DB(r.db).Order("name ASC")
	if limit > 0 {
		q = q.Limit(limit)
	}
	if err := q.Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (r *universityRepo) Update(dbc dbctx.Context, u *types.University) error {
	u.UpdatedAt = time.Now().UTC()
	return dbc.DB(r.db).Save(u).Error
}
