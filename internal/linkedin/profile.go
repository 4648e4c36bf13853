package linkedin

import (
	"math"
	"strings"
	"time"
)

const (
	// UnknownName is used when neither the page nor the extractor yields a name.
	UnknownName = "Unknown"

	MinScore = 0
	MaxScore = 10
)

// Experience is a single role held by a candidate.
type Experience struct {
	Role        string `json:"role" mapstructure:"role"`
	Company     string `json:"company" mapstructure:"company"`
	Duration    string `json:"duration" mapstructure:"duration"`
	Description string `json:"description" mapstructure:"description"`
}

// Education is a single education entry.
type Education struct {
	Degree      string `json:"degree" mapstructure:"degree"`
	Institution string `json:"institution" mapstructure:"institution"`
	Duration    string `json:"duration" mapstructure:"duration"`
}

// Profile is the structured extraction of a profile page.
// RawOutput is only populated when the model response could not be parsed.
type Profile struct {
	Name                 string       `json:"name,omitempty"`
	Headline             string       `json:"headline,omitempty"`
	Location             string       `json:"location,omitempty"`
	OpenToWork           bool         `json:"open_to_work"`
	TotalYearsExperience float64      `json:"total_years_experience"`
	Experience           []Experience `json:"experience,omitempty"`
	Education            []Education  `json:"education,omitempty"`
	Skills               []string     `json:"skills,omitempty"`
	URL                  string       `json:"url"`
	ScrapedAt            time.Time    `json:"scraped_at"`
	RawOutput            string       `json:"raw_output,omitempty"`
}

// DisplayName returns the profile name or UnknownName.
func (p *Profile) DisplayName() string {
	if p == nil {
		return UnknownName
	}
	if name := strings.TrimSpace(p.Name); name != "" {
		return name
	}
	return UnknownName
}

// Degraded reports whether the extraction fell back to the raw model output.
func (p *Profile) Degraded() bool {
	return p != nil && p.RawOutput != ""
}

// Normalize enforces the record invariants: finite non-negative experience
// and case-insensitively unique skills in first-seen order.
func (p *Profile) Normalize() {
	if years := p.TotalYearsExperience; math.IsNaN(years) || math.IsInf(years, 0) || years < 0 {
		p.TotalYearsExperience = 0
	}
	p.Skills = UniqueFold(p.Skills)
}

// MatchRecord is the assessment of a profile against a job description.
type MatchRecord struct {
	URL                  string    `json:"url"`
	Name                 string    `json:"name"`
	TotalYearsExperience float64   `json:"total_years_experience"`
	MatchScore           float64   `json:"match_score"`
	MatchingSkills       []string  `json:"matching_skills"`
	MissingSkills        []string  `json:"missing_skills"`
	ExperienceRelevance  string    `json:"experience_relevance"`
	OverallAssessment    string    `json:"overall_assessment"`
	EvaluatedAt          time.Time `json:"evaluated_at"`
}

// Stamp binds the record to the profile it was produced for.
func (m *MatchRecord) Stamp(p *Profile, now time.Time) {
	m.URL = p.URL
	m.Name = p.DisplayName()
	m.TotalYearsExperience = p.TotalYearsExperience
	m.MatchScore = ClampScore(m.MatchScore)
	m.EvaluatedAt = now
	if m.MatchingSkills == nil {
		m.MatchingSkills = []string{}
	}
	if m.MissingSkills == nil {
		m.MissingSkills = []string{}
	}
}

// MatchedProfile is a profile that reached the match threshold.
type MatchedProfile struct {
	Profile
	MatchScore   float64      `json:"match_score"`
	MatchDetails *MatchRecord `json:"match_details"`
}

// NewMatchedProfile copies the profile and attaches the match details.
func NewMatchedProfile(p *Profile, m *MatchRecord) MatchedProfile {
	return MatchedProfile{
		Profile:      *p,
		MatchScore:   m.MatchScore,
		MatchDetails: m,
	}
}

// ClampScore bounds a score to [MinScore, MaxScore].
func ClampScore(score float64) float64 {
	switch {
	case math.IsNaN(score):
		return MinScore
	case score < MinScore:
		return MinScore
	case score > MaxScore:
		return MaxScore
	default:
		return score
	}
}

// UniqueFold removes blank and case-insensitively duplicated entries, keeping the first spelling.
func UniqueFold(items []string) []string {
	if len(items) == 0 {
		return items
	}

	seen := make(map[string]struct{}, len(items))
	result := make([]string, 0, len(items))
	for _, item := range items {
		item = strings.TrimSpace(item)
		if item == "" {
			continue
		}
		key := strings.ToLower(item)
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		result = append(result, item)
	}

	return result
}
