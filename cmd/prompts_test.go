package cmd

import (
	"bytes"
	"errors"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spigell/talent-scout/internal/filtering"
	"github.com/spigell/talent-scout/internal/progress"
)

func TestReadMultiline(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{
			name:  "stops after two empty lines",
			input: "Senior Go engineer\n\nKubernetes, Postgres\n\n\nignored tail\n",
			want:  "Senior Go engineer\n\nKubernetes, Postgres",
		},
		{
			name:  "eof ends input",
			input: "Platform engineer",
			want:  "Platform engineer",
		},
		{
			name:  "whitespace only lines count as empty",
			input: "Backend role\n  \n\t\nafter",
			want:  "Backend role",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := readMultiline(strings.NewReader(tt.input))
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.want {
				t.Fatalf("expected %q, got %q", tt.want, got)
			}
		})
	}
}

func TestReadMultilineEmpty(t *testing.T) {
	_, err := readMultiline(strings.NewReader("\n\n\nlate text"))
	if !errors.Is(err, errEmptyJobDescription) {
		t.Fatalf("expected errEmptyJobDescription, got %v", err)
	}
}

func TestValidators(t *testing.T) {
	tests := []struct {
		name     string
		validate func(string) error
		input    string
		ok       bool
	}{
		{"term", validateNotEmpty, "golang developer", true},
		{"blank term", validateNotEmpty, "   ", false},
		{"limit", validatePositiveInt, "25", true},
		{"zero limit", validatePositiveInt, "0", false},
		{"fractional limit", validatePositiveInt, "2.5", false},
		{"experience", validateNonNegativeFloat, "3.5", true},
		{"no experience filter", validateNonNegativeFloat, "0", true},
		{"negative experience", validateNonNegativeFloat, "-1", false},
		{"not a number", validateNonNegativeFloat, "five", false},
		{"nan experience", validateNonNegativeFloat, "NaN", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.validate(tt.input)
			if tt.ok && err != nil {
				t.Fatalf("expected %q to be accepted, got %v", tt.input, err)
			}
			if !tt.ok && err == nil {
				t.Fatalf("expected %q to be rejected", tt.input)
			}
		})
	}
}

func TestJobDescriptionFromConfig(t *testing.T) {
	got, err := jobDescription(&SearchConfig{JobDescription: "  inline jd  "})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != "inline jd" {
		t.Fatalf("expected trimmed inline description, got %q", got)
	}

	_, err = jobDescription(&SearchConfig{JobDescriptionFile: filepath.Join(t.TempDir(), "missing.md")})
	if err == nil {
		t.Fatal("expected an error for a missing job description file")
	}
}

func TestPrintBatch(t *testing.T) {
	state := progress.New(progress.Params{SearchTerm: "go developer", ProfileLimit: 3, MinExperience: 2}, []string{
		"https://www.linkedin.com/in/a",
		"https://www.linkedin.com/in/b",
		"https://www.linkedin.com/in/c",
	})
	if err := state.MarkCompleted("https://www.linkedin.com/in/a"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	var buf bytes.Buffer
	printBatch(&buf, state)

	out := buf.String()
	for _, want := range []string{"Search term: go developer", "Completed: 1/3", "Remaining: 2", state.RunID} {
		if !strings.Contains(out, want) {
			t.Fatalf("expected %q in output:\n%s", want, out)
		}
	}
}

func TestProgressConfig(t *testing.T) {
	cfg := &Config{Output: &OutputConfig{Dir: "results"}}
	if got := cfg.progressConfig().Path; got != filepath.Join("results", progress.DefaultFile) {
		t.Fatalf("unexpected file path: %s", got)
	}

	cfg.Progress.Backend = progress.BackendSQLite
	if got := cfg.progressConfig().Path; got != filepath.Join("results", progress.DefaultDatabase) {
		t.Fatalf("unexpected database path: %s", got)
	}

	cfg.Progress.Path = "/tmp/custom.db"
	if got := cfg.progressConfig().Path; got != "/tmp/custom.db" {
		t.Fatalf("expected explicit path to win, got %s", got)
	}

	cfg = &Config{Output: &OutputConfig{}}
	if got := cfg.progressConfig().Path; got != filepath.Join("output", progress.DefaultFile) {
		t.Fatalf("expected default output directory, got %s", got)
	}
}

func TestNewGates(t *testing.T) {
	gates := newGates(&FiltersConfig{ExcludeCompanies: []string{"Acme"}})

	statuses := filtering.Describe(gates)
	if len(statuses) != 2 {
		t.Fatalf("expected 2 gates, got %d", len(statuses))
	}

	enabled := map[string]bool{}
	for _, g := range gates {
		enabled[g.Name()] = g.IsEnabled()
	}
	if !enabled[filtering.CompaniesName] {
		t.Fatal("expected companies gate to be enabled")
	}
	if enabled[filtering.OpenToWorkName] {
		t.Fatal("expected open to work gate to be disabled")
	}
}

func TestNewGatesDisable(t *testing.T) {
	gates := newGates(&FiltersConfig{
		ExcludeCompanies: []string{"Acme"},
		OpenToWorkOnly:   true,
		Disable:          []string{" companies "},
	})

	for _, status := range filtering.Describe(gates) {
		switch status.Name {
		case filtering.CompaniesName:
			if status.Enabled || status.Reason != "disabled by configuration" {
				t.Fatalf("expected companies gate to be disabled, got %+v", status)
			}
		case filtering.OpenToWorkName:
			if !status.Enabled {
				t.Fatalf("expected open to work gate to stay enabled, got %+v", status)
			}
		}
	}
}

func TestGatherParamsRejectsNegativeMinExperience(t *testing.T) {
	config := &Config{
		Search: &SearchConfig{
			Term:           "go developer",
			Limit:          5,
			MinExperience:  -2,
			JobDescription: "Go backend role",
		},
	}

	_, err := gatherParams(config)
	if err == nil || !strings.Contains(err.Error(), "search.min-experience") {
		t.Fatalf("expected min experience to be rejected, got %v", err)
	}
}
