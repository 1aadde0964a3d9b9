package archive

import (
	"fmt"
	"strings"
	"tenttiarkisto-uploader/internal/components/telemetry"
	"tenttiarkisto-uploader/internal/exam"
)

const (
	report_options_resolve_courses   = "options.resolve-courses"
	report_options_resolve_languages = "options.resolve-languages"
	report_options_courses           = "options.courses"
	report_options_languages         = "options.languages"
)

// ResolveOptions builds the lookup tables out of scraped option pairs.
//
// Courses: an override for a scraped code always wins. Otherwise the first id
// seen for a code is kept and later duplicates are reported, not raised.
// Languages: duplicates fail with DuplicateLanguage.
func ResolveOptions(
	courses, languages []OptionPair,
	overrides map[string]string,
	tel telemetry.API,
) (exam.OptionTables, error) {
	normalizedOverrides := make(map[string]string, len(overrides))
	for code, id := range overrides {
		normalizedOverrides[strings.ToLower(code)] = id
	}

	tables := exam.OptionTables{
		Courses:   map[string]string{},
		Languages: map[string]string{},
	}

	for _, pair := range courses {
		code := strings.ToLower(pair.Label)

		if override, ok := normalizedOverrides[code]; ok {
			tables.Courses[code] = override
			continue
		}

		existing, seen := tables.Courses[code]
		if !seen {
			tables.Courses[code] = pair.ID
			continue
		}

		tel.ReportWarning(
			report_options_resolve_courses,
			fmt.Errorf("unhandled duplicate course %s (%s and %s)", pair.Label, existing, pair.ID),
		)
	}

	for _, pair := range languages {
		name := strings.ToLower(pair.Label)
		if existing, seen := tables.Languages[name]; seen {
			err := exam.NewError(
				exam.KindDuplicateLanguage,
				pair.Label,
				fmt.Errorf("offered as both %s and %s", existing, pair.ID),
			)
			tel.ReportBroken(report_options_resolve_languages, err)
			return exam.OptionTables{}, err
		}
		tables.Languages[name] = pair.ID
	}

	tel.ReportCount(report_options_courses, int64(len(tables.Courses)))
	tel.ReportCount(report_options_languages, int64(len(tables.Languages)))

	return tables, nil
}
