package cmd

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"strconv"
	"strings"

	"github.com/manifoldco/promptui"
	"github.com/spf13/viper"
	"github.com/spigell/talent-scout/internal/progress"
)

const (
	PromptYes = "Yes"
	PromptNo  = "No"

	// Two consecutive empty lines end a multiline answer.
	multilineTerminator = 2
)

var errEmptyJobDescription = errors.New("job description is empty")

func confirm(label string) (bool, error) {
	prompt := promptui.Select{
		Label: label,
		Items: []string{PromptYes, PromptNo},
	}

	_, answer, err := prompt.Run()
	if err != nil {
		return false, err
	}
	return answer == PromptYes, nil
}

func printBatch(w io.Writer, state *progress.BatchState) {
	fmt.Fprintln(w, "Found a previous run:")
	fmt.Fprintf(w, "  Run ID: %s\n", state.RunID)
	fmt.Fprintf(w, "  Search term: %s\n", state.SearchTerm)
	fmt.Fprintf(w, "  Profile limit: %d\n", state.ProfileLimit)
	fmt.Fprintf(w, "  Minimum experience: %g\n", state.MinExperience)
	fmt.Fprintf(w, "  Completed: %d/%d\n", len(state.Completed()), state.Total())
	fmt.Fprintf(w, "  Remaining: %d\n", len(state.Remaining()))
	fmt.Fprintf(w, "  Last update: %s\n", state.UpdatedAt.Format("2006-01-02 15:04:05"))
}

// gatherParams fills the batch parameters from the configuration and asks
// for whatever is missing.
func gatherParams(config *Config) (progress.Params, error) {
	search := config.Search
	params := progress.Params{
		SearchTerm:    strings.TrimSpace(search.Term),
		ProfileLimit:  search.Limit,
		MinExperience: search.MinExperience,
	}

	if err := checkMinExperience(search.MinExperience); err != nil {
		return params, fmt.Errorf("search.min-experience: %w", err)
	}

	var err error
	if params.SearchTerm == "" && search.URLsFile == "" {
		params.SearchTerm, err = ask("Enter search term", validateNotEmpty)
		if err != nil {
			return params, err
		}
	}

	// A urls file without a limit is processed in full.
	if params.ProfileLimit <= 0 && search.URLsFile == "" {
		answer, err := ask("How many profiles to scrape", validatePositiveInt)
		if err != nil {
			return params, err
		}
		params.ProfileLimit, _ = strconv.Atoi(answer)
	}

	if !viper.IsSet("search.min-experience") {
		params.MinExperience = config.Pipeline.MinExperience
		answer, err := askDefault("Minimum years of experience (0 for no filter)", strconv.FormatFloat(params.MinExperience, 'g', -1, 64), validateNonNegativeFloat)
		if err != nil {
			return params, err
		}
		params.MinExperience, _ = strconv.ParseFloat(answer, 64)
	}

	params.JobDescription, err = jobDescription(search)
	if err != nil {
		return params, err
	}

	return params, nil
}

func jobDescription(search *SearchConfig) (string, error) {
	if jd := strings.TrimSpace(search.JobDescription); jd != "" {
		return jd, nil
	}

	if search.JobDescriptionFile != "" {
		data, err := os.ReadFile(search.JobDescriptionFile)
		if err != nil {
			return "", fmt.Errorf("read job description: %w", err)
		}
		jd := strings.TrimSpace(string(data))
		if jd == "" {
			return "", fmt.Errorf("%w: %s", errEmptyJobDescription, search.JobDescriptionFile)
		}
		return jd, nil
	}

	fmt.Println("Paste the job description. Finish with two empty lines:")
	return readMultiline(os.Stdin)
}

// readMultiline reads lines until two consecutive empty lines or EOF.
func readMultiline(r io.Reader) (string, error) {
	var lines []string
	empty := 0

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1<<20)
	for scanner.Scan() {
		line := scanner.Text()
		if strings.TrimSpace(line) == "" {
			empty++
			if empty >= multilineTerminator {
				break
			}
		} else {
			empty = 0
		}
		lines = append(lines, line)
	}
	if err := scanner.Err(); err != nil {
		return "", fmt.Errorf("read job description: %w", err)
	}

	text := strings.TrimSpace(strings.Join(lines, "\n"))
	if text == "" {
		return "", errEmptyJobDescription
	}
	return text, nil
}

func ask(label string, validate promptui.ValidateFunc) (string, error) {
	return askDefault(label, "", validate)
}

func askDefault(label, def string, validate promptui.ValidateFunc) (string, error) {
	prompt := promptui.Prompt{
		Label:    label,
		Default:  def,
		Validate: validate,
	}

	answer, err := prompt.Run()
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(answer), nil
}

func validateNotEmpty(input string) error {
	if strings.TrimSpace(input) == "" {
		return errors.New("value cannot be empty")
	}
	return nil
}

func validatePositiveInt(input string) error {
	n, err := strconv.Atoi(strings.TrimSpace(input))
	if err != nil {
		return errors.New("enter a whole number")
	}
	if n <= 0 {
		return errors.New("enter a number greater than zero")
	}
	return nil
}

func validateNonNegativeFloat(input string) error {
	f, err := strconv.ParseFloat(strings.TrimSpace(input), 64)
	if err != nil {
		return errors.New("enter a number")
	}
	return checkMinExperience(f)
}

func checkMinExperience(f float64) error {
	if math.IsNaN(f) || math.IsInf(f, 0) || f < 0 {
		return errors.New("enter a number that is zero or greater")
	}
	return nil
}
