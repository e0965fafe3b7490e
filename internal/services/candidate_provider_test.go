package services

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	types "github.com/yungbote/unibridge-backend/internal/domain"
	"github.com/yungbote/unibridge-backend/internal/domain/catalog"
)

func TestParseCandidatesLenient(t *testing.T) {
	raw := "Sure! Here are some options:\n```json\n[" +
		`{"name":"  University of Toronto ","country":"Canada","degree":"Masters","field":"CS","estimated_tuition":"$45,000","difficulty":"high"},` +
		`{"name":"University-of Toronto","country":"Canada"},` +
		`{"name":"","country":"Canada"},` +
		`{"name":"McGill University"},` +
		`"not an object",` +
		`{"name":"ETH Zurich","country":"Switzerland","estimated_tuition":1500.5,"difficulty":"impossible"},` +
		`{"name":"TU Munich","country":"Germany","estimated_tuition":-3}` +
		"]\n```\nLet me know if you need more."

	got := ParseCandidates(raw)
	require.Len(t, got, 3)

	assert.Equal(t, "University of Toronto", got[0].Name)
	assert.Equal(t, "university of toronto", got[0].NameKey)
	assert.Equal(t, 45000, got[0].EstimatedTuition)
	assert.Equal(t, catalog.DifficultyHigh, got[0].Difficulty)

	assert.Equal(t, "ETH Zurich", got[1].Name)
	assert.Equal(t, 1500, got[1].EstimatedTuition)
	assert.Equal(t, catalog.DifficultyMedium, got[1].Difficulty)

	assert.Equal(t, "TU Munich", got[2].Name)
	assert.Zero(t, got[2].EstimatedTuition)
}

func TestParseCandidatesFallsBackToFirstWellFormedArray(t *testing.T) {
	raw := `Options [see below]: [{"name":"Aalto University","country":"Finland"}] trailing ] bracket`
	got := ParseCandidates(raw)
	require.Len(t, got, 1)
	assert.Equal(t, "Aalto University", got[0].Name)
}

func TestParseCandidatesGarbage(t *testing.T) {
	assert.Empty(t, ParseCandidates(""))
	assert.Empty(t, ParseCandidates("no json here"))
	assert.Empty(t, ParseCandidates("[not, json"))
	assert.Empty(t, ParseCandidates(`{"name":"Solo","country":"X"}`))
}

func TestCandidateDefaults(t *testing.T) {
	u := Candidate{Name: "X", NameKey: "x"}.toUniversity()
	assert.Equal(t, catalog.DefaultCountry, u.Country)
	assert.Equal(t, catalog.DefaultDegree, u.Degree)
	assert.Equal(t, catalog.DefaultField, u.Field)
	assert.Equal(t, 20000, u.TuitionMin)
	assert.Equal(t, 30000, u.TuitionMax)
	assert.Equal(t, catalog.DifficultyMedium, u.Difficulty)
	assert.True(t, u.GeneratedByAI)

	u = Candidate{Name: "Y", NameKey: "y", EstimatedTuition: 35000, Difficulty: catalog.DifficultyLow}.toUniversity()
	assert.Equal(t, 35000, u.TuitionMin)
	assert.Equal(t, 45000, u.TuitionMax)
	assert.Equal(t, catalog.DifficultyLow, u.Difficulty)
}

func TestCandidateProviderPrompt(t *testing.T) {
	gen := &fakeGenerator{replies: []string{candidatesJSON("A Uni", "B Uni")}}
	p := NewCandidateProvider(gen)
	profile := &types.Profile{BudgetRange: "20000-30000", TargetCountry: "Germany", TargetField: "Physics", TargetDegree: "Masters"}

	got, err := p.Candidates(context.Background(), profile, CandidateCount)
	require.NoError(t, err)
	assert.Len(t, got, 2)

	prompt := gen.prompts[0]
	for _, want := range []string{"exactly 12", "20000-30000", "Germany", "Physics", "Masters", "not specified", "estimated_tuition", "difficulty"} {
		assert.True(t, strings.Contains(prompt, want), "prompt missing %q", want)
	}
}
