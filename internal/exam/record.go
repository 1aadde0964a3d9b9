package exam

import (
	"fmt"
)

// OptionTables resolves human readable names to the archive's form values.
type OptionTables struct {
	// lowercased course code -> course id
	Courses map[string]string
	// lowercased language name -> language id
	Languages map[string]string
}

func (t OptionTables) Empty() bool {
	return len(t.Courses) == 0 && len(t.Languages) == 0
}

// Record holds everything needed to submit one exam.
type Record struct {
	CourseID   string
	ExamDate   string
	Label      string
	LanguageID string
	SourcePath string
}

// Build resolves parsed against tables.
func Build(parsed Parsed, tables OptionTables, sourcePath string) (Record, error) {
	courseId, ok := tables.Courses[parsed.CourseCode]
	if !ok {
		err := NewError(
			KindUnknownCourse,
			sourcePath,
			fmt.Errorf("course code %q is not offered by the archive", parsed.CourseCode),
		)
		if suggestion := suggestCourse(parsed.CourseCode, tables.Courses); suggestion != "" {
			err.Hint = fmt.Sprintf("did you mean %q?", suggestion)
		}
		return Record{}, err
	}

	languageId, ok := tables.Languages[string(parsed.Language)]
	if !ok {
		return Record{}, NewError(
			KindUnrecognizedDescription,
			sourcePath,
			fmt.Errorf("archive does not offer language %q", parsed.Language),
		)
	}

	return Record{
		CourseID:   courseId,
		ExamDate:   parsed.ISODate(),
		Label:      parsed.Label,
		LanguageID: languageId,
		SourcePath: sourcePath,
	}, nil
}

// BuildAll parses and resolves every file, stopping at the first failure.
func BuildAll(files []StagedFile, classifier Classifier, tables OptionTables) ([]Record, error) {
	records := make([]Record, 0, len(files))
	for _, f := range files {
		parsed, err := classifier.Parse(f.Stem())
		if err != nil {
			return nil, fmt.Errorf("%s: %w", f.Path, err)
		}
		record, err := Build(parsed, tables, f.Path)
		if err != nil {
			return nil, err
		}
		records = append(records, record)
	}
	return records, nil
}
