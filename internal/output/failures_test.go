package output

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFailureLogFormat(t *testing.T) {
	path := filepath.Join(t.TempDir(), "failed_urls.txt")
	log := NewFailureLog(path)

	require.NoError(t, log.Append(Failure{URL: "https://www.linkedin.com/in/a", Message: "timeout"}))
	require.NoError(t, log.Append(Failure{URL: "https://www.linkedin.com/in/b", Message: "Extraction error: bad\nresponse"}))

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t,
		"https://www.linkedin.com/in/a | Error: timeout\n"+
			"https://www.linkedin.com/in/b | Error: Extraction error: bad response\n",
		string(raw),
	)

	failures, err := log.ReadAll()
	require.NoError(t, err)
	require.Len(t, failures, 2)
	assert.Equal(t, "https://www.linkedin.com/in/b", failures[1].URL)
	assert.Equal(t, "Extraction error: bad response", failures[1].Message)
}

func TestFailureLogMissing(t *testing.T) {
	failures, err := NewFailureLog(filepath.Join(t.TempDir(), "none.txt")).ReadAll()
	require.NoError(t, err)
	assert.Empty(t, failures)
}

func TestOpenSinks(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "out")
	sinks, err := Open(dir, Paths{Matched: "good.json"})
	require.NoError(t, err)

	assert.DirExists(t, dir)
	assert.Equal(t, filepath.Join(dir, "all_profiles.json"), sinks.Profiles.Path())
	assert.Equal(t, filepath.Join(dir, "good.json"), sinks.Matched.Path())
	assert.Equal(t, filepath.Join(dir, "failed_urls.txt"), sinks.Failures.Path())
	assert.Len(t, sinks.Files(), 5)
}
