package gemini

import (
	"context"
	"reflect"
	"strings"
	"testing"

	"github.com/spigell/talent-scout/internal/linkedin"
	"go.uber.org/zap"
)

func TestCandidateMatcherMatch(t *testing.T) {
	stub := &stubGenerator{response: `{
		"match_score": "8",
		"matching_skills": ["Go", "Kubernetes"],
		"missing_skills": "Rust, Terraform",
		"experience_relevance": "Strong backend background",
		"overall_assessment": "Good fit."
	}`}
	matcher := NewCandidateMatcher(stub, 0, zap.NewNop())

	profile := &linkedin.Profile{
		Name:                 "Jane",
		TotalYearsExperience: 6,
		Skills:               []string{"Go", "Kubernetes"},
		Experience:           []linkedin.Experience{{Role: "SRE", Company: "Acme"}},
	}

	record, err := matcher.Match(context.Background(), profile, "Senior Go engineer")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if record.MatchScore != 8 {
		t.Fatalf("expected score 8, got %v", record.MatchScore)
	}
	if !reflect.DeepEqual(record.MissingSkills, []string{"Rust", "Terraform"}) {
		t.Fatalf("unexpected missing skills: %v", record.MissingSkills)
	}
	if record.OverallAssessment != "Good fit." {
		t.Fatalf("unexpected assessment: %q", record.OverallAssessment)
	}

	for _, want := range []string{"Senior Go engineer", "Name: Jane", "Total Years of Experience: 6 years", "Skills: Go, Kubernetes", `"company": "Acme"`} {
		if !strings.Contains(stub.lastPrompt, want) {
			t.Fatalf("expected prompt to contain %q, got:\n%s", want, stub.lastPrompt)
		}
	}
	if strings.Contains(stub.lastPrompt, "{{") {
		t.Fatalf("expected every placeholder to be replaced")
	}
}

func TestCandidateMatcherClampsScore(t *testing.T) {
	matcher := NewCandidateMatcher(&stubGenerator{response: `{"match_score": 14}`}, 0, nil)

	record, err := matcher.Match(context.Background(), &linkedin.Profile{}, "jd")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if record.MatchScore != linkedin.MaxScore {
		t.Fatalf("expected clamped score, got %v", record.MatchScore)
	}
}

func TestCandidateMatcherDegradesOnGarbage(t *testing.T) {
	raw := "The candidate looks decent overall."
	matcher := NewCandidateMatcher(&stubGenerator{response: raw}, 0, nil)

	record, err := matcher.Match(context.Background(), &linkedin.Profile{Name: "A"}, "jd")
	if err != nil {
		t.Fatalf("degraded match must not fail, got %v", err)
	}
	if record.MatchScore != 0 {
		t.Fatalf("expected score 0, got %v", record.MatchScore)
	}
	if record.ExperienceRelevance != parseFailure || record.OverallAssessment != raw {
		t.Fatalf("unexpected degraded record: %+v", record)
	}
}

func TestCandidateMatcherValidatesInput(t *testing.T) {
	matcher := NewCandidateMatcher(&stubGenerator{}, 0, nil)

	if _, err := matcher.Match(context.Background(), nil, "jd"); err == nil {
		t.Fatalf("expected error for nil profile")
	}
	if _, err := matcher.Match(context.Background(), &linkedin.Profile{}, " "); err == nil {
		t.Fatalf("expected error for empty job description")
	}
}
