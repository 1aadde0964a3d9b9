package exam

import (
	"fmt"
	"regexp"
	"strings"
	"time"
	"unicode"
	"unicode/utf8"
)

const dateLayout = "20060102"

var datePattern = regexp.MustCompile(`^\d{8}$`)

// Parsed is the metadata recovered from a staged file's stem,
// `<course_code>_<YYYYMMDD>_<description>`.
type Parsed struct {
	// CourseCode is lowercased to match the keys of OptionTables.Courses.
	CourseCode     string
	Date           time.Time
	RawDescription string
	Label          string
	Language       Language
}

func (p Parsed) ISODate() string {
	return p.Date.Format(time.DateOnly)
}

func ParseFilename(stem string) (Parsed, error) {
	return DefaultClassifier.Parse(stem)
}

func (c Classifier) Parse(stem string) (Parsed, error) {
	parts := strings.Split(stem, "_")
	if len(parts) != 3 {
		return Parsed{}, NewError(
			KindMalformedFilename,
			stem,
			fmt.Errorf("expected 3 underscore separated fields, got %d", len(parts)),
		)
	}
	courseCode, dateStr, description := parts[0], parts[1], parts[2]
	if courseCode == "" || description == "" {
		return Parsed{}, NewError(KindMalformedFilename, stem, fmt.Errorf("empty field"))
	}

	language, ok := c.Classify(description)
	if !ok {
		return Parsed{}, NewError(
			KindUnrecognizedDescription,
			stem,
			fmt.Errorf("no language matches %q", description),
		)
	}

	date, err := ParseDate(dateStr)
	if err != nil {
		return Parsed{}, NewError(KindInvalidDate, stem, err)
	}

	return Parsed{
		CourseCode:     strings.ToLower(courseCode),
		Date:           date,
		RawDescription: description,
		Label:          Label(description),
		Language:       language,
	}, nil
}

// ParseDate accepts exactly eight digits in YYYYMMDD order.
func ParseDate(s string) (time.Time, error) {
	if !datePattern.MatchString(s) {
		return time.Time{}, fmt.Errorf("%q is not in YYYYMMDD format", s)
	}
	return time.Parse(dateLayout, s)
}

// Label turns a raw description into its display form: hyphens become
// spaces, the first letter is uppercased and the rest lowercased.
func Label(raw string) string {
	s := strings.ReplaceAll(raw, "-", " ")
	first, size := utf8.DecodeRuneInString(s)
	if size == 0 {
		return s
	}
	return string(unicode.ToUpper(first)) + strings.ToLower(s[size:])
}
