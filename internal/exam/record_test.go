package exam

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"tenttiarkisto-uploader/internal/components/telemetry"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"
)

var testTables = OptionTables{
	Courses: map[string]string{
		"cs-101":     "7",
		"ms-a0102":   "2253",
		"phys-c0220": "2441",
	},
	Languages: map[string]string{
		"finnish": "1",
		"swedish": "2",
		"english": "3",
	},
}

func TestBuild(t *testing.T) {
	parsed, err := ParseFilename("MS-A0102_20191024_final-exam")
	require.NoError(t, err)

	record, err := Build(parsed, testTables, "todo/MS-A0102_20191024_final-exam.pdf")
	require.NoError(t, err)

	expected := Record{
		CourseID:   "2253",
		ExamDate:   "2019-10-24",
		Label:      "Final exam",
		LanguageID: "3",
		SourcePath: "todo/MS-A0102_20191024_final-exam.pdf",
	}
	if diff := cmp.Diff(expected, record); diff != "" {
		t.Fatalf("unexpected record (-want +got):\n%s", diff)
	}
}

func TestBuildUnknownCourse(t *testing.T) {
	parsed, err := ParseFilename("cs-102_20240315_exam")
	require.NoError(t, err)

	_, err = Build(parsed, testTables, "todo/cs-102_20240315_exam.pdf")
	require.True(t, errors.Is(err, ErrUnknownCourse))

	var examErr *Error
	require.True(t, errors.As(err, &examErr))
	require.Equal(t, "todo/cs-102_20240315_exam.pdf", examErr.Subject)
	require.Equal(t, `did you mean "cs-101"?`, examErr.Hint)

	parsed, err = ParseFilename("xyz_20240315_exam")
	require.NoError(t, err)
	_, err = Build(parsed, testTables, "todo/xyz_20240315_exam.pdf")
	require.True(t, errors.As(err, &examErr))
	require.Empty(t, examErr.Hint)
}

func TestBuildMissingLanguage(t *testing.T) {
	parsed, err := ParseFilename("cs-101_20240315_exam")
	require.NoError(t, err)

	tables := OptionTables{
		Courses:   testTables.Courses,
		Languages: map[string]string{"finnish": "1"},
	}
	_, err = Build(parsed, tables, "todo/cs-101_20240315_exam.pdf")
	require.Equal(t, KindUnrecognizedDescription, KindOf(err))
}

func writeFiles(t testing.TB, dir string, names ...string) {
	for _, name := range names {
		err := os.WriteFile(filepath.Join(dir, name), []byte("%PDF-1.4\n"), 0o644)
		require.NoError(t, err)
	}
}

func TestDiscover(t *testing.T) {
	dir := t.TempDir()
	writeFiles(t, dir,
		"phys-c0220_20010101_tentti.pdf",
		"cs-101_20240315_exam.pdf",
		"notes.txt",
		"ms-a0102_20191024_exam.PDF",
	)
	require.NoError(t, os.Mkdir(filepath.Join(dir, "nested.pdf"), 0o755))

	tel := &telemetry.Recorder{}
	files, err := Discover(dir, tel)
	require.NoError(t, err)

	require.Equal(t, []StagedFile{
		{Path: filepath.Join(dir, "cs-101_20240315_exam.pdf")},
		{Path: filepath.Join(dir, "phys-c0220_20010101_tentti.pdf")},
	}, files)
	require.Equal(t, "cs-101_20240315_exam", files[0].Stem())

	count, ok := tel.Count(report_discover)
	require.True(t, ok)
	require.Equal(t, int64(2), count)
}

func TestDiscoverMissingDir(t *testing.T) {
	tel := &telemetry.Recorder{}
	_, err := Discover(filepath.Join(t.TempDir(), "missing"), tel)
	require.Error(t, err)
	require.Len(t, tel.Reports(telemetry.REPORT_BROKEN), 1)
}

func TestBuildAll(t *testing.T) {
	dir := t.TempDir()
	writeFiles(t, dir, "cs-101_20240315_exam.pdf", "ms-a0102_20191024_tentti.pdf")

	files, err := Discover(dir, &telemetry.Recorder{})
	require.NoError(t, err)

	records, err := BuildAll(files, DefaultClassifier, testTables)
	require.NoError(t, err)
	require.Len(t, records, 2)
	require.Equal(t, "7", records[0].CourseID)
	require.Equal(t, "1", records[1].LanguageID)

	writeFiles(t, dir, "bad_name.pdf")
	files, err = Discover(dir, &telemetry.Recorder{})
	require.NoError(t, err)

	_, err = BuildAll(files, DefaultClassifier, testTables)
	require.True(t, errors.Is(err, ErrMalformedFilename))
	require.Contains(t, err.Error(), "bad_name.pdf")
}

func TestPageCountRejectsGarbage(t *testing.T) {
	dir := t.TempDir()
	writeFiles(t, dir, "cs-101_20240315_exam.pdf")

	_, err := PageCount(filepath.Join(dir, "cs-101_20240315_exam.pdf"))
	require.Error(t, err)
}
