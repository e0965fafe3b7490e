package db

import (
	_ "embed"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gopkg.in/yaml.v3"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	types "github.com/yungbote/unibridge-backend/internal/domain"
	"github.com/yungbote/unibridge-backend/internal/domain/catalog"
)

//go:embed seed/catalogue.yaml
var catalogueYAML []byte

type catalogueFile struct {
	Universities []catalogueEntry `yaml:"universities"`
}

type catalogueEntry struct {
	Name       string `yaml:"name"`
	Country    string `yaml:"country"`
	Degree     string `yaml:"degree"`
	Field      string `yaml:"field"`
	TuitionMin int    `yaml:"tuition_min"`
	TuitionMax int    `yaml:"tuition_max"`
	Difficulty string `yaml:"difficulty"`
}

// Catalogue parses the embedded curated university list.
func Catalogue() ([]*types.University, error) {
	return ParseCatalogue(catalogueYAML)
}

func ParseCatalogue(raw []byte) ([]*types.University, error) {
	var f catalogueFile
	if err := yaml.Unmarshal(raw, &f); err != nil {
		return nil, fmt.Errorf("parse catalogue: %w", err)
	}
	now := time.Now().UTC()
	out := make([]*types.University, 0, len(f.Universities))
	for i, e := range f.Universities {
		name := strings.TrimSpace(e.Name)
		key := catalog.NormalizeName(name)
		if key == "" {
			return nil, fmt.Errorf("catalogue entry %d has no name", i)
		}
		if e.TuitionMax < e.TuitionMin {
			return nil, fmt.Errorf("catalogue entry %q: tuition_max below tuition_min", name)
		}
		out = append(out, &types.University{
			ID:         uuid.New(),
			Name:       name,
			NameKey:    key,
			Country:    e.Country,
			Degree:     e.Degree,
			Field:      e.Field,
			TuitionMin: e.TuitionMin,
			TuitionMax: e.TuitionMax,
			Difficulty: catalog.ParseDifficulty(e.Difficulty),
			CreatedAt:  now,
			UpdatedAt:  now,
		})
	}
	return out, nil
}

// SeedCatalogue inserts the curated universities, skipping names already present.
// It returns the number of rows inserted.
func SeedCatalogue(db *gorm.DB) (int64, error) {
	rows, err := Catalogue()
	if err != nil {
		return 0, err
	}
	if len(rows) == 0 {
		return 0, nil
	}
	res := db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "name_key"}},
		DoNothing: true,
	}).Create(&rows)
	if res.Error != nil {
		return 0, fmt.Errorf("seed catalogue: %w", res.Error)
	}
	return res.RowsAffected, nil
}
