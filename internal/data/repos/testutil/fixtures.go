package testutil

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	types "github.com/yungbote/unibridge-backend/internal/domain"
	"github.com/yungbote/unibridge-backend/internal/domain/catalog"
	"github.com/yungbote/unibridge-backend/internal/domain/journey"
)

func SeedUser(tb testing.TB, ctx context.Context, tx *gorm.DB, stage journey.Stage) *types.User {
	tb.Helper()
	now := time.Now().UTC()
	u := &types.User{
		ID:        uuid.New(),
		Email:     uuid.NewString() + "@example.com",
		Password:  "pw",
		FirstName: "A",
		LastName:  "B",
		Stage:     stage,
		IsActive:  true,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := tx.WithContext(ctx).Create(u).Error; err != nil {
		tb.Fatalf("seed user: %v", err)
	}
	return u
}

func SeedUniversity(tb testing.TB, ctx context.Context, tx *gorm.DB, name string) *types.University {
	tb.Helper()
	now := time.Now().UTC()
	u := &types.University{
		ID:         uuid.New(),
		Name:       name,
		NameKey:    catalog.NormalizeName(name),
		Country:    "Canada",
		Degree:     "Masters",
		Field:      "Computer Science",
		TuitionMin: 30000,
		TuitionMax: 40000,
		Difficulty: catalog.DifficultyMedium,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if err := tx.WithContext(ctx).Create(u).Error; err != nil {
		tb.Fatalf("seed university: %v", err)
	}
	return u
}
