package gemini

import (
	"context"
	"errors"
	"strings"
	"unicode/utf8"

	_ "embed"

	"github.com/mitchellh/mapstructure"
	"github.com/spigell/talent-scout/internal/linkedin"
	"github.com/spigell/talent-scout/internal/utils"
	"go.uber.org/zap"
)

const (
	defaultMaxLogLength  = 200
	DefaultMaxInputChars = 15000
)

//go:embed prompts/extract.md
var extractInstruction string

type contentGenerator interface {
	GenerateContent(ctx context.Context, system, prompt string) (string, error)
}

// ProfileExtractor turns page text into a linkedin.Profile.
type ProfileExtractor struct {
	generator     contentGenerator
	logger        *zap.Logger
	maxInputChars int
	maxLogLen     int
}

func NewProfileExtractor(generator contentGenerator, maxInputChars, maxLogLength int, logger *zap.Logger) *ProfileExtractor {
	if maxInputChars <= 0 {
		maxInputChars = DefaultMaxInputChars
	}
	if maxLogLength <= 0 {
		maxLogLength = defaultMaxLogLength
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	return &ProfileExtractor{
		generator:     generator,
		logger:        logger,
		maxInputChars: maxInputChars,
		maxLogLen:     maxLogLength,
	}
}

// Extract never fails on malformed model output: such output is returned as a
// degraded profile with RawOutput set and zero experience.
func (e *ProfileExtractor) Extract(ctx context.Context, pageText string) (*linkedin.Profile, error) {
	text := utils.Truncate(strings.TrimSpace(pageText), e.maxInputChars)
	if text == "" {
		return nil, errors.New("page text is empty")
	}

	prompt := "Profile text:\n" + text

	e.logger.Debug("gemini extract request",
		zap.Int("prompt_length", utf8.RuneCountInString(prompt)),
		zap.String("prompt_preview", utils.TruncateForLog(prompt, e.maxLogLen)),
	)

	raw, err := e.generator.GenerateContent(ctx, extractInstruction, prompt)
	if err != nil {
		return nil, err
	}

	e.logger.Debug("gemini extract response",
		zap.Int("response_length", utf8.RuneCountInString(raw)),
		zap.String("response_preview", utils.TruncateForLog(raw, e.maxLogLen)),
	)

	profile, err := parseProfile(raw)
	if err != nil {
		e.logger.Warn("extraction output is not valid JSON, keeping raw output", zap.Error(err))
		return &linkedin.Profile{RawOutput: raw}, nil
	}

	return profile, nil
}

// parseProfile fails only when the response holds no JSON object. Loosely
// typed fields are coerced and malformed list entries are coerced field by
// field so the rest of the profile survives.
func parseProfile(raw string) (*linkedin.Profile, error) {
	data, err := decodeObject(raw)
	if err != nil {
		return nil, err
	}

	profile := &linkedin.Profile{
		Name:                 coerceText(data["name"]),
		Headline:             coerceText(data["headline"]),
		Location:             coerceText(data["location"]),
		OpenToWork:           coerceBool(data["open_to_work"]),
		TotalYearsExperience: nonNegative(coerceFloat(data["total_years_experience"])),
		Experience:           decodeEntries(data["experience"], experienceFromMap),
		Education:            decodeEntries(data["education"], educationFromMap),
		Skills:               coerceStrings(data["skills"]),
	}
	profile.Normalize()

	return profile, nil
}

// decodeEntries decodes a list of objects one entry at a time. A single object
// counts as a one-entry list and non-object entries are skipped. An entry that
// does not fit T is rebuilt by fallback.
func decodeEntries[T any](v any, fallback func(map[string]any) T) []T {
	var items []any
	switch val := v.(type) {
	case []any:
		items = val
	case map[string]any:
		items = []any{val}
	default:
		return nil
	}

	entries := make([]T, 0, len(items))
	for _, item := range items {
		m, ok := item.(map[string]any)
		if !ok {
			continue
		}

		var entry T
		decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
			WeaklyTypedInput: true,
			Result:           &entry,
		})
		if err == nil {
			err = decoder.Decode(m)
		}
		if err != nil {
			entry = fallback(m)
		}
		entries = append(entries, entry)
	}
	return entries
}

func experienceFromMap(m map[string]any) linkedin.Experience {
	return linkedin.Experience{
		Role:        coerceText(m["role"]),
		Company:     coerceText(m["company"]),
		Duration:    coerceText(m["duration"]),
		Description: coerceText(m["description"]),
	}
}

func educationFromMap(m map[string]any) linkedin.Education {
	return linkedin.Education{
		Degree:      coerceText(m["degree"]),
		Institution: coerceText(m["institution"]),
		Duration:    coerceText(m["duration"]),
	}
}
