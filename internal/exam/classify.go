package exam

import (
	"regexp"
	"slices"
)

// Language is the lowercased language name as offered by the archive's
// language select.
type Language string

const (
	Swedish Language = "swedish"
	English Language = "english"
	Finnish Language = "finnish"
)

// Rule maps a set of descriptions to the language the exam is written in.
type Rule struct {
	Language Language
	Exact    []string
	Patterns []*regexp.Regexp
}

func (r Rule) Matches(description string) bool {
	if slices.Contains(r.Exact, description) {
		return true
	}
	for _, p := range r.Patterns {
		if p.MatchString(description) {
			return true
		}
	}
	return false
}

// Classifier is an ordered rule table, the first matching rule wins.
type Classifier []Rule

var DefaultClassifier = Classifier{
	{
		Language: Swedish,
		Exact:    []string{"tentamen", "sluttentamen"},
		Patterns: []*regexp.Regexp{
			regexp.MustCompile(`^mellanförhör-\d$`),
			regexp.MustCompile(`^deltentamen-\d$`),
		},
	},
	{
		Language: English,
		Exact:    []string{"exam", "final-exam"},
		Patterns: []*regexp.Regexp{
			// misspelled on purpose, the existing archive filenames use it
			regexp.MustCompile(`^medterm-\d$`),
			regexp.MustCompile(`^midterm-\d$`),
		},
	},
	{
		Language: Finnish,
		Exact:    []string{"tentti", "välikoe", "kesätentti"},
		Patterns: []*regexp.Regexp{
			regexp.MustCompile(`^välikoe-\d$`),
			regexp.MustCompile(`^osakoe-\d\pL?$`),
		},
	},
}

// Classify returns the language of the first rule matching description.
func (c Classifier) Classify(description string) (Language, bool) {
	for _, rule := range c {
		if rule.Matches(description) {
			return rule.Language, true
		}
	}
	return "", false
}
