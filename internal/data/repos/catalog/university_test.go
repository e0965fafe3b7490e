package catalog

import (
	"context"
	"testing"

	"github.com/google/uuid"

	"github.com/yungbote/unibridge-backend/internal/data/repos/testutil"
	types "github.com/yungbote/unibridge-backend/internal/domain"
	"github.com/yungbote/unibridge-backend/internal/domain/catalog"
	"github.com/yungbote/unibridge-backend/internal/platform/dbctx"
)

func TestUniversityRepoResolveOrCreate(t *testing.T) {
	gdb := testutil.DB(t)
	tx := testutil.Tx(t, gdb)
	ctx := context.Background()
	dbc := dbctx.Context{Ctx: ctx, Tx: tx}
	repo := NewUniversityRepo(gdb, testutil.Logger(t))

	suffix := uuid.NewString()[:8]
	existing := testutil.SeedUniversity(t, ctx, tx, "Existing University "+suffix)

	candidates := []*types.University{
		{Name: "New University " + suffix, NameKey: catalog.NormalizeName("New University " + suffix), Country: "Germany", Degree: "Masters", Field: "Physics", TuitionMin: 1000, TuitionMax: 11000, Difficulty: catalog.DifficultyLow, GeneratedByAI: true},
		{Name: "EXISTING university " + suffix, NameKey: catalog.NormalizeName("EXISTING university " + suffix), Country: "Elsewhere", Degree: "PhD", Field: "Other", Difficulty: catalog.DifficultyHigh, GeneratedByAI: true},
	}
	got, err := repo.ResolveOrCreate(dbc, candidates)
	if err != nil {
		t.Fatalf("ResolveOrCreate: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("ResolveOrCreate: expected 2 rows, got %d", len(got))
	}
	if got[1].ID != existing.ID || got[1].Country != existing.Country {
		t.Fatalf("existing row should win: %+v", got[1])
	}
	if !got[0].GeneratedByAI || got[0].Country != "Germany" {
		t.Fatalf("new row not stored as given: %+v", got[0])
	}

	again, err := repo.ResolveOrCreate(dbc, []*types.University{{Name: "new university " + suffix, NameKey: catalog.NormalizeName("new university " + suffix), Difficulty: catalog.DifficultyMedium}})
	if err != nil {
		t.Fatalf("ResolveOrCreate (again): %v", err)
	}
	if len(again) != 1 || again[0].ID != got[0].ID {
		t.Fatalf("same name should resolve to the same row: %+v", again)
	}
}
