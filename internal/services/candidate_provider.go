package services

import (
	"context"
	"encoding/json"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/xeipuuv/gojsonschema"

	types "github.com/yungbote/unibridge-backend/internal/domain"
	"github.com/yungbote/unibridge-backend/internal/domain/catalog"
)

// CandidateCount is how many universities one discovery call asks for.
const CandidateCount = 12

// Candidate is one university suggested by the provider, already normalized.
type Candidate struct {
	Name             string
	NameKey          string
	Country          string
	Degree           string
	Field            string
	EstimatedTuition int
	Difficulty       catalog.Difficulty
}

type CandidateProvider interface {
	Candidates(ctx context.Context, profile *types.Profile, n int) ([]Candidate, error)
}

type candidateProvider struct {
	gen TextGenerator
}

func NewCandidateProvider(gen TextGenerator) CandidateProvider {
	return &candidateProvider{gen: gen}
}

func (p *candidateProvider) Candidates(ctx context.Context, profile *types.Profile, n int) ([]Candidate, error) {
	system, user := candidatePrompt(profile, n)
	raw, err := p.gen.GenerateText(ctx, system, user)
	if err != nil {
		return nil, err
	}
	return ParseCandidates(raw), nil
}

func candidatePrompt(profile *types.Profile, n int) (string, string) {
	system := "You are a university admissions researcher. You reply with JSON only, no prose and no code fences."

	var b strings.Builder
	fmt.Fprintf(&b, "Suggest exactly %d real universities for this student.\n\n", n)
	fmt.Fprintf(&b, "Budget per year (USD): %s\n", orUnknown(profile.BudgetRange))
	fmt.Fprintf(&b, "Preferred country: %s\n", orUnknown(profile.TargetCountry))
	fmt.Fprintf(&b, "Field of study: %s\n", orUnknown(profile.TargetField))
	fmt.Fprintf(&b, "Target degree: %s\n", orUnknown(profile.TargetDegree))
	fmt.Fprintf(&b, "Current major: %s\n\n", orUnknown(profile.Major))
	fmt.Fprintf(&b, "Return a JSON array of exactly %d objects. Each object has exactly these keys:\n", n)
	b.WriteString(`  "name" (string), "country" (string), "degree" (string), "field" (string),` + "\n")
	b.WriteString(`  "estimated_tuition" (number, yearly USD), "difficulty" ("LOW", "MEDIUM" or "HIGH").` + "\n")
	b.WriteString("Return nothing else.")
	return system, b.String()
}

func orUnknown(s string) string {
	if s = strings.TrimSpace(s); s == "" {
		return "not specified"
	}
	return s
}

var candidateSchema = func() *gojsonschema.Schema {
	schema, err := gojsonschema.NewSchema(gojsonschema.NewStringLoader(`{
		"type": "object",
		"required": ["name", "country"],
		"properties": {
			"name":    {"type": "string", "pattern": "\\S"},
			"country": {"type": "string", "pattern": "\\S"}
		}
	}`))
	if err != nil {
		panic(fmt.Sprintf("candidate schema: %v", err))
	}
	return schema
}()

type candidateWire struct {
	Name             string          `json:"name"`
	Country          string          `json:"country"`
	Degree           json.RawMessage `json:"degree"`
	Field            json.RawMessage `json:"field"`
	EstimatedTuition json.RawMessage `json:"estimated_tuition"`
	Difficulty       json.RawMessage `json:"difficulty"`
}

// ParseCandidates extracts candidates from free-form provider output. Elements that fail
// validation are dropped; duplicates by normalized name keep the first occurrence.
func ParseCandidates(raw string) []Candidate {
	elems := extractJSONArray(raw)
	out := make([]Candidate, 0, len(elems))
	seen := map[string]bool{}
	for _, elem := range elems {
		res, err := candidateSchema.Validate(gojsonschema.NewBytesLoader(elem))
		if err != nil || !res.Valid() {
			continue
		}
		var w candidateWire
		if err := json.Unmarshal(elem, &w); err != nil {
			continue
		}
		name := strings.Join(strings.Fields(w.Name), " ")
		key := catalog.NormalizeName(name)
		if key == "" || seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, Candidate{
			Name:             name,
			NameKey:          key,
			Country:          strings.TrimSpace(w.Country),
			Degree:           jsonString(w.Degree),
			Field:            jsonString(w.Field),
			EstimatedTuition: parseTuition(w.EstimatedTuition),
			Difficulty:       catalog.ParseDifficulty(jsonString(w.Difficulty)),
		})
	}
	return out
}

// extractJSONArray takes the text between the first '[' and the last ']'. When that does
// not decode, it returns the first well-formed array that starts at any '['.
func extractJSONArray(raw string) []json.RawMessage {
	start := strings.Index(raw, "[")
	end := strings.LastIndex(raw, "]")
	if start < 0 || end <= start {
		return nil
	}
	var elems []json.RawMessage
	if err := json.Unmarshal([]byte(raw[start:end+1]), &elems); err == nil {
		return elems
	}
	for i := start; i < len(raw); i++ {
		if raw[i] != '[' {
			continue
		}
		dec := json.NewDecoder(strings.NewReader(raw[i:]))
		var arr []json.RawMessage
		if err := dec.Decode(&arr); err == nil {
			return arr
		}
	}
	return nil
}

func jsonString(raw json.RawMessage) string {
	if len(raw) == 0 {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return strings.TrimSpace(s)
	}
	return ""
}

var tuitionNumber = regexp.MustCompile(`\d[\d,]*(\.\d+)?`)

// parseTuition accepts a JSON number or a string like "$35,000". Unknown or negative is 0.
func parseTuition(raw json.RawMessage) int {
	if len(raw) == 0 {
		return 0
	}
	var f float64
	if err := json.Unmarshal(raw, &f); err == nil {
		if f < 0 {
			return 0
		}
		return int(f)
	}
	s := jsonString(raw)
	m := tuitionNumber.FindString(s)
	if m == "" {
		return 0
	}
	f, err := strconv.ParseFloat(strings.ReplaceAll(m, ",", ""), 64)
	if err != nil {
		return 0
	}
	return int(f)
}

// toUniversity applies the defaults for missing attributes.
func (c Candidate) toUniversity() *types.University {
	u := &types.University{
		Name:          c.Name,
		NameKey:       c.NameKey,
		Country:       c.Country,
		Degree:        c.Degree,
		Field:         c.Field,
		Difficulty:    c.Difficulty,
		GeneratedByAI: true,
	}
	if u.Country == "" {
		u.Country = catalog.DefaultCountry
	}
	if u.Degree == "" {
		u.Degree = catalog.DefaultDegree
	}
	if u.Field == "" {
		u.Field = catalog.DefaultField
	}
	if u.Difficulty == "" {
		u.Difficulty = catalog.DifficultyMedium
	}
	if c.EstimatedTuition > 0 {
		u.TuitionMin = c.EstimatedTuition
	} else {
		u.TuitionMin = catalog.DefaultTuitionMin
	}
	u.TuitionMax = u.TuitionMin + catalog.TuitionBandWidth
	return u
}
