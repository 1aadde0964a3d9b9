package archive

import (
	"errors"
	"fmt"
	"regexp"
	"testing"
	"tenttiarkisto-uploader/internal/archive/archivetest"
	"tenttiarkisto-uploader/internal/exam"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"
)

var formPage = []byte(fmt.Sprintf(
	`<form><input type="hidden" name="csrfmiddlewaretoken" value="abcDEF123">%s</form>`,
	archivetest.DefaultOptions,
))

func TestFormMarkup(t *testing.T) {
	m := FormMarkup{}

	token, err := m.Token(formPage)
	require.NoError(t, err)
	require.Equal(t, "abcDEF123", token)

	courses, err := m.Courses(formPage)
	require.NoError(t, err)
	expectedCourses := []OptionPair{
		{ID: "7", Label: "CS-101"},
		{ID: "99", Label: "CS-101"},
		{ID: "2253", Label: "MS-A0102"},
		{ID: "2441", Label: "PHYS-C0220"},
	}
	if diff := cmp.Diff(expectedCourses, courses); diff != "" {
		t.Fatalf("courses (-want +got):\n%s", diff)
	}

	languages, err := m.Languages(formPage)
	require.NoError(t, err)
	expectedLanguages := []OptionPair{
		{ID: "1", Label: "Finnish"},
		{ID: "2", Label: "Swedish"},
		{ID: "3", Label: "English"},
	}
	if diff := cmp.Diff(expectedLanguages, languages); diff != "" {
		t.Fatalf("languages (-want +got):\n%s", diff)
	}
}

func TestFormMarkupWhitespace(t *testing.T) {
	page := []byte(`<select name="lang">
	<option value=" 5 ">
		Northern
		Sami
	</option>
</select>`)
	languages, err := FormMarkup{}.Languages(page)
	require.NoError(t, err)
	require.Equal(t, []OptionPair{{ID: "5", Label: "Northern Sami"}}, languages)
}

func TestLegacyMarkup(t *testing.T) {
	m := LegacyMarkup{}

	token, err := m.Token(formPage)
	require.NoError(t, err)
	require.Equal(t, "abcDEF123", token)

	courses, err := m.Courses(formPage)
	require.NoError(t, err)
	require.Equal(t, []OptionPair{
		{ID: "7", Label: "CS-101"},
		{ID: "99", Label: "CS-101"},
		{ID: "2253", Label: "MS-A0102"},
		{ID: "2441", Label: "PHYS-C0220"},
	}, courses)

	// the legacy pattern also picks up single digit options outside the language select
	languages, err := m.Languages(formPage)
	require.NoError(t, err)
	labels := map[string]string{}
	for _, l := range languages {
		labels[l.Label] = l.ID
	}
	require.Equal(t, "1", labels["Finnish"])
	require.Equal(t, "2", labels["Swedish"])
	require.Equal(t, "3", labels["English"])
	require.Equal(t, "4", labels["Other"])
	require.Equal(t, "7", labels["CS-101: Introduction to programming"])
}

func TestTokenNotFound(t *testing.T) {
	pages := [][]byte{
		[]byte(`<form><input name="username"></form>`),
		[]byte(`<input type="hidden" name="csrfmiddlewaretoken" value="">`),
	}
	for _, markup := range []Markup{FormMarkup{}, LegacyMarkup{}} {
		for _, page := range pages {
			_, err := markup.Token(page)
			require.True(t, errors.Is(err, exam.ErrTokenNotFound), "%T: %v", markup, err)
		}
	}
}

func TestExtractOptionPairs(t *testing.T) {
	pattern := regexp.MustCompile(`<option value="(\d+)">(\w+)</option>`)
	pairs := ExtractOptionPairs([]byte(`
<option value="1">a</option><option value="x">b</option>
<option value="22">c</option>`), pattern)
	require.Equal(t, []OptionPair{{ID: "1", Label: "a"}, {ID: "22", Label: "c"}}, pairs)
}

func TestMarkupByName(t *testing.T) {
	m, err := MarkupByName("")
	require.NoError(t, err)
	require.IsType(t, FormMarkup{}, m)

	m, err = MarkupByName("legacy")
	require.NoError(t, err)
	require.IsType(t, LegacyMarkup{}, m)

	_, err = MarkupByName("regex")
	require.Error(t, err)
}
