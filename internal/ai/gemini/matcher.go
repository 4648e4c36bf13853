package gemini

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	_ "embed"

	"github.com/spigell/talent-scout/internal/linkedin"
	"github.com/spigell/talent-scout/internal/utils"
	"go.uber.org/zap"
)

const (
	matchInstruction = "You evaluate candidate profiles against job descriptions and answer only with JSON."
	parseFailure     = "Error parsing match result"
)

//go:embed prompts/match.md
var matchTemplate string

// CandidateMatcher scores profiles against a job description.
type CandidateMatcher struct {
	generator contentGenerator
	logger    *zap.Logger
	maxLogLen int
}

func NewCandidateMatcher(generator contentGenerator, maxLogLength int, logger *zap.Logger) *CandidateMatcher {
	if maxLogLength <= 0 {
		maxLogLength = defaultMaxLogLength
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	return &CandidateMatcher{
		generator: generator,
		logger:    logger,
		maxLogLen: maxLogLength,
	}
}

// Match returns a score of zero with the raw output as assessment when the
// model response cannot be parsed.
func (m *CandidateMatcher) Match(ctx context.Context, profile *linkedin.Profile, jobDescription string) (*linkedin.MatchRecord, error) {
	if profile == nil {
		return nil, errors.New("profile is required")
	}
	if strings.TrimSpace(jobDescription) == "" {
		return nil, errors.New("job description is required")
	}

	prompt, err := buildMatchPrompt(profile, jobDescription)
	if err != nil {
		return nil, err
	}

	m.logger.Debug("gemini match request",
		zap.String("url", profile.URL),
		zap.Int("prompt_length", utf8.RuneCountInString(prompt)),
		zap.String("prompt_preview", utils.TruncateForLog(prompt, m.maxLogLen)),
	)

	raw, err := m.generator.GenerateContent(ctx, matchInstruction, prompt)
	if err != nil {
		return nil, err
	}

	m.logger.Debug("gemini match response",
		zap.String("url", profile.URL),
		zap.Int("response_length", utf8.RuneCountInString(raw)),
		zap.String("response_preview", utils.TruncateForLog(raw, m.maxLogLen)),
	)

	record, err := parseMatch(raw)
	if err != nil {
		m.logger.Warn("match output is not valid JSON, scoring as zero", zap.String("url", profile.URL), zap.Error(err))
		return &linkedin.MatchRecord{
			MatchScore:          0,
			MatchingSkills:      []string{},
			MissingSkills:       []string{},
			ExperienceRelevance: parseFailure,
			OverallAssessment:   raw,
		}, nil
	}

	return record, nil
}

func buildMatchPrompt(p *linkedin.Profile, jobDescription string) (string, error) {
	experience, err := json.MarshalIndent(p.Experience, "", "  ")
	if err != nil {
		return "", fmt.Errorf("marshal experience: %w", err)
	}
	education, err := json.MarshalIndent(p.Education, "", "  ")
	if err != nil {
		return "", fmt.Errorf("marshal education: %w", err)
	}

	headline := p.Headline
	if headline == "" {
		headline = "N/A"
	}

	var summary strings.Builder
	fmt.Fprintf(&summary, "Name: %s\n", p.DisplayName())
	fmt.Fprintf(&summary, "Headline: %s\n", headline)
	fmt.Fprintf(&summary, "Total Years of Experience: %g years\n", p.TotalYearsExperience)
	fmt.Fprintf(&summary, "Skills: %s\n", strings.Join(p.Skills, ", "))
	fmt.Fprintf(&summary, "Experience: %s\n", experience)
	fmt.Fprintf(&summary, "Education: %s\n", education)
	if p.Degraded() {
		fmt.Fprintf(&summary, "Unstructured profile data: %s\n", p.RawOutput)
	}

	template := matchTemplate
	if strings.TrimSpace(template) == "" {
		template = "Job description:\n{{JOB_DESCRIPTION}}\n\nCandidate:\n{{PROFILE}}\n\nJSON Response:"
	}
	prompt := strings.ReplaceAll(template, "{{JOB_DESCRIPTION}}", strings.TrimSpace(jobDescription))
	prompt = strings.ReplaceAll(prompt, "{{PROFILE}}", summary.String())
	return prompt, nil
}

func parseMatch(raw string) (*linkedin.MatchRecord, error) {
	data, err := decodeObject(raw)
	if err != nil {
		return nil, err
	}

	if _, ok := data["match_score"]; !ok {
		return nil, errors.New("match_score is missing")
	}

	return &linkedin.MatchRecord{
		MatchScore:          linkedin.ClampScore(coerceFloat(data["match_score"])),
		MatchingSkills:      coerceStrings(data["matching_skills"]),
		MissingSkills:       coerceStrings(data["missing_skills"]),
		ExperienceRelevance: coerceString(data["experience_relevance"]),
		OverallAssessment:   coerceString(data["overall_assessment"]),
	}, nil
}
