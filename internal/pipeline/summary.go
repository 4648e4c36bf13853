package pipeline

import (
	"fmt"
	"maps"
	"slices"

	"go.uber.org/zap"
)

// Summary reports the outcome of a batch. Scraped, PassedFilter and Matched
// count every record in the output logs; the other counters cover this run only.
type Summary struct {
	RunID        string
	Total        int
	Processed    int
	Scraped      int
	FilteredOut  int
	PassedFilter int
	Matched      int
	Failed       int
	Files        map[string]string
}

// Fields renders the summary for structured logging.
func (s *Summary) Fields() []zap.Field {
	fields := []zap.Field{
		zap.String("run_id", s.RunID),
		zap.Int("total_urls", s.Total),
		zap.Int("processed", s.Processed),
		zap.Int("scraped", s.Scraped),
		zap.Int("filtered_out", s.FilteredOut),
		zap.Int("passed_filter", s.PassedFilter),
		zap.Int("matched", s.Matched),
		zap.Int("failed", s.Failed),
	}
	for _, name := range slices.Sorted(maps.Keys(s.Files)) {
		fields = append(fields, zap.String(fmt.Sprintf("file_%s", name), s.Files[name]))
	}
	return fields
}

type tally struct {
	processed   int
	filteredOut int
	failed      int
}
