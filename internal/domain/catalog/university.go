package catalog

import (
	"strings"
	"time"
	"unicode"

	"github.com/google/uuid"
)

type Difficulty string

const (
	DifficultyLow    Difficulty = "LOW"
	DifficultyMedium Difficulty = "MEDIUM"
	DifficultyHigh   Difficulty = "HIGH"
)

// ParseDifficulty upper-cases raw and falls back to MEDIUM for anything unknown.
func ParseDifficulty(raw string) Difficulty {
	switch d := Difficulty(strings.ToUpper(strings.TrimSpace(raw))); d {
	case DifficultyLow, DifficultyMedium, DifficultyHigh:
		return d
	default:
		return DifficultyMedium
	}
}

// Defaults applied to provider candidates with missing attributes.
const (
	DefaultCountry    = "Unknown"
	DefaultDegree     = "Bachelors"
	DefaultField      = "Various"
	DefaultTuitionMin = 20000
	TuitionBandWidth  = 10000
)

// University is a candidate a user can shortlist and lock. NameKey is the normalized
// name used to resolve provider output to an existing row.
type University struct {
	ID            uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	Name          string     `gorm:"not null;column:name" json:"name"`
	NameKey       string     `gorm:"not null;uniqueIndex;column:name_key" json:"-"`
	Country       string     `gorm:"not null;column:country" json:"country"`
	Degree        string     `gorm:"not null;column:degree" json:"degree"`
	Field         string     `gorm:"not null;column:field" json:"field"`
	TuitionMin    int        `gorm:"not null;column:tuition_min" json:"tuition_min"`
	TuitionMax    int        `gorm:"not null;column:tuition_max" json:"tuition_max"`
	Difficulty    Difficulty `gorm:"not null;column:difficulty" json:"difficulty"`
	GeneratedByAI bool       `gorm:"not null;default:false;column:generated_by_ai" json:"generated_by_ai"`
	CreatedAt     time.Time  `gorm:"not null" json:"created_at"`
	UpdatedAt     time.Time  `gorm:"not null" json:"updated_at"`
}

func (University) TableName() string { return "university" }

// EstimatedTuition is the midpoint of the tuition band.
func (u University) EstimatedTuition() int {
	return (u.TuitionMin + u.TuitionMax) / 2
}

// NormalizeName folds a university name to its dedup key: lowercase, punctuation
// stripped, whitespace collapsed. Dashes and slashes separate words.
func NormalizeName(name string) string {
	var b strings.Builder
	b.Grow(len(name))
	space := false
	for _, r := range strings.ToLower(name) {
		switch {
		case unicode.IsLetter(r) || unicode.IsDigit(r):
			if space && b.Len() > 0 {
				b.WriteByte(' ')
			}
			space = false
			b.WriteRune(r)
		case unicode.IsSpace(r) || unicode.Is(unicode.Pd, r) || r == '/':
			space = true
		}
	}
	return b.String()
}
