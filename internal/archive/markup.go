package archive

import (
	"bytes"
	"fmt"
	"regexp"
	"strings"
	"tenttiarkisto-uploader/internal/exam"
	"tenttiarkisto-uploader/lib/htmlutil"

	"github.com/PuerkitoBio/goquery"
)

const csrfField = "csrfmiddlewaretoken"

// OptionPair is one <option> of a select. For courses Label holds only the
// course code part of the option text.
type OptionPair struct {
	ID    string
	Label string
}

// Markup holds every assumption made about the archive's html.
type Markup interface {
	Token(body []byte) (string, error)
	Courses(body []byte) ([]OptionPair, error)
	Languages(body []byte) ([]OptionPair, error)
}

func tokenNotFound() error {
	return exam.NewError(exam.KindTokenNotFound, fmt.Sprintf("no %s field in response", csrfField), nil)
}

// FormMarkup reads the upload form with goquery, only looking at the select
// elements the values are submitted under.
type FormMarkup struct{}

func (FormMarkup) parse(body []byte) (*goquery.Document, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("parse html: %w", err)
	}
	return doc, nil
}

func (m FormMarkup) Token(body []byte) (string, error) {
	doc, err := m.parse(body)
	if err != nil {
		return "", err
	}
	token := strings.TrimSpace(
		doc.Find(fmt.Sprintf("input[name=%s]", csrfField)).First().AttrOr("value", ""),
	)
	if token == "" {
		return "", tokenNotFound()
	}
	return token, nil
}

func (m FormMarkup) options(body []byte, selectName string) ([]OptionPair, error) {
	doc, err := m.parse(body)
	if err != nil {
		return nil, err
	}

	var pairs []OptionPair
	for _, node := range doc.Find(fmt.Sprintf("select[name=%s] option", selectName)).Nodes {
		id := ""
		for _, a := range node.Attr {
			if a.Key == "value" {
				id = strings.TrimSpace(a.Val)
				break
			}
		}
		// the "---------" placeholder has an empty value
		if id == "" {
			continue
		}
		pairs = append(pairs, OptionPair{
			ID:    id,
			Label: htmlutil.Normalize(htmlutil.GetText(node)),
		})
	}
	return pairs, nil
}

func (m FormMarkup) Courses(body []byte) ([]OptionPair, error) {
	options, err := m.options(body, "course")
	if err != nil {
		return nil, err
	}
	var courses []OptionPair
	for _, o := range options {
		code, _, found := strings.Cut(o.Label, ": ")
		if !found || code == "" {
			continue
		}
		courses = append(courses, OptionPair{ID: o.ID, Label: code})
	}
	return courses, nil
}

func (m FormMarkup) Languages(body []byte) ([]OptionPair, error) {
	return m.options(body, "lang")
}

var (
	legacyCoursePattern   = regexp.MustCompile(`<option value="(\d*)">(.+): .*</option>`)
	legacyLanguagePattern = regexp.MustCompile(`<option value="(\d)">(.+)</option>`)
	legacyTokenPattern    = regexp.MustCompile(`name="csrfmiddlewaretoken" value="([a-zA-Z0-9]*)"`)
)

// LegacyMarkup matches raw patterns against the page. The language pattern
// is not scoped to the language select and picks up any single digit option,
// which is harmless as languages are only ever looked up by exact name.
type LegacyMarkup struct{}

func (LegacyMarkup) Token(body []byte) (string, error) {
	groups := legacyTokenPattern.FindSubmatch(body)
	if len(groups) < 2 || len(groups[1]) == 0 {
		return "", tokenNotFound()
	}
	return string(groups[1]), nil
}

func (LegacyMarkup) Courses(body []byte) ([]OptionPair, error) {
	return ExtractOptionPairs(body, legacyCoursePattern), nil
}

func (LegacyMarkup) Languages(body []byte) ([]OptionPair, error) {
	return ExtractOptionPairs(body, legacyLanguagePattern), nil
}

// ExtractOptionPairs returns (id, label) for every match of pattern, which
// must capture the id as its first group and the label as its second.
func ExtractOptionPairs(body []byte, pattern *regexp.Regexp) []OptionPair {
	var pairs []OptionPair
	for _, groups := range pattern.FindAllSubmatch(body, -1) {
		if len(groups) < 3 {
			continue
		}
		pairs = append(pairs, OptionPair{
			ID:    string(groups[1]),
			Label: string(groups[2]),
		})
	}
	return pairs
}

// MarkupByName returns the markup for a configuration value, "" means "form".
func MarkupByName(name string) (Markup, error) {
	switch name {
	case "", "form":
		return FormMarkup{}, nil
	case "legacy":
		return LegacyMarkup{}, nil
	}
	return nil, fmt.Errorf("unknown markup %q, expected \"form\" or \"legacy\"", name)
}
