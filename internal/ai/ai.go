// Package ai declares the language-model collaborators of the pipeline.
package ai

import (
	"context"

	"github.com/spigell/talent-scout/internal/linkedin"
)

// Extractor turns visible page text into a structured profile. Unparseable
// model output degrades to a profile carrying only RawOutput; an error means
// the model could not be reached at all.
type Extractor interface {
	Extract(ctx context.Context, pageText string) (*linkedin.Profile, error)
}

// Matcher scores a profile against a job description on a 0-10 scale.
type Matcher interface {
	Match(ctx context.Context, profile *linkedin.Profile, jobDescription string) (*linkedin.MatchRecord, error)
}
