package db_test

import (
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yungbote/unibridge-backend/internal/data/db"
	"github.com/yungbote/unibridge-backend/internal/data/repos/testutil"
	types "github.com/yungbote/unibridge-backend/internal/domain"
)

func TestCatalogueParses(t *testing.T) {
	rows, err := db.Catalogue()
	require.NoError(t, err)
	require.NotEmpty(t, rows)

	seen := map[string]bool{}
	for _, u := range rows {
		assert.False(t, seen[u.NameKey], "duplicate catalogue name %q", u.Name)
		seen[u.NameKey] = true
		assert.False(t, u.GeneratedByAI)
		assert.LessOrEqual(t, u.TuitionMin, u.TuitionMax)
	}
}

func TestParseCatalogueRejectsInvertedTuition(t *testing.T) {
	_, err := db.ParseCatalogue([]byte(`
universities:
  - name: Backwards College
    tuition_min: 5000
    tuition_max: 100
`))
	require.Error(t, err)
}

func TestSeedCatalogueIsIdempotent(t *testing.T) {
	gdb := testutil.DB(t)
	tx := testutil.Tx(t, gdb)

	first, err := db.SeedCatalogue(tx)
	require.NoError(t, err)

	second, err := db.SeedCatalogue(tx)
	require.NoError(t, err)
	assert.Zero(t, second)

	var count int64
	require.NoError(t, tx.Model(&types.University{}).Where("generated_by_ai = ?", false).Count(&count).Error)
	assert.GreaterOrEqual(t, count, first)
}

func TestIsUniqueViolation(t *testing.T) {
	assert.False(t, db.IsUniqueViolation(nil))
	assert.False(t, db.IsUniqueViolation(assert.AnError))
	assert.True(t, db.IsUniqueViolation(fmt.Errorf("insert: %w", &pgconn.PgError{Code: "23505"})))
	assert.False(t, db.IsUniqueViolation(&pgconn.PgError{Code: "23503"}))
	assert.True(t, db.IsUniqueViolation(errors.New("UNIQUE constraint failed: shortlist_entry.user_id")))
}
