package uploader

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"tenttiarkisto-uploader/internal/archive"
	"tenttiarkisto-uploader/internal/archive/archivetest"
	"tenttiarkisto-uploader/internal/components/telemetry"
	"tenttiarkisto-uploader/internal/exam"

	"github.com/stretchr/testify/require"
)

type dirs struct {
	todo string
	done string
}

func setupDirs(t testing.TB, names ...string) dirs {
	root := t.TempDir()
	d := dirs{todo: filepath.Join(root, "todo"), done: filepath.Join(root, "done")}
	require.NoError(t, os.Mkdir(d.todo, 0o755))
	for _, name := range names {
		err := os.WriteFile(filepath.Join(d.todo, name), []byte("%PDF-1.4 "+name), 0o644)
		require.NoError(t, err)
	}
	return d
}

func requireMoved(t testing.TB, d dirs, name string) {
	_, err := os.Stat(filepath.Join(d.todo, name))
	require.True(t, os.IsNotExist(err), "%s should be gone from todo", name)
	_, err = os.Stat(filepath.Join(d.done, name))
	require.NoError(t, err, "%s should be in done", name)
}

func requireStaged(t testing.TB, d dirs, name string) {
	_, err := os.Stat(filepath.Join(d.todo, name))
	require.NoError(t, err, "%s should still be in todo", name)
	_, err = os.Stat(filepath.Join(d.done, name))
	require.True(t, os.IsNotExist(err), "%s should not be in done", name)
}

func setupArchive(t testing.TB) (*archivetest.Server, *archive.Client) {
	server := archivetest.NewServer()
	t.Cleanup(server.Close)

	client, err := archive.NewClient(archive.ClientOptions{BaseUrl: server.URL}, &telemetry.Recorder{})
	require.NoError(t, err)
	return server, client
}

var stagedNames = []string{
	"cs-101_20240315_final-exam.pdf",
	"ms-a0102_20191024_tentti.pdf",
	"phys-c0220_20010101_tentamen.pdf",
}

func TestRun(t *testing.T) {
	server, client := setupArchive(t)
	server.RequireSession = true
	d := setupDirs(t, stagedNames...)
	ctx := context.Background()

	require.NoError(t, client.Login(ctx, "user", "hunter2"))

	tel := &telemetry.Recorder{}
	records, _, err := Plan(ctx, client, PlanOptions{TodoDir: d.todo}, tel)
	require.NoError(t, err)
	require.Len(t, records, 3)

	driver := NewDriver(client, d.done, tel)
	var echoed []string
	driver.OnSubmit = func(record exam.Record) {
		echoed = append(echoed, filepath.Base(record.SourcePath))
	}

	summary, err := driver.Run(ctx, records, 0)
	require.NoError(t, err)
	require.Len(t, summary.Submitted, 3)
	require.Empty(t, summary.Skipped)
	require.Equal(t, stagedNames, echoed)
	require.Equal(t, STATE_SUCCESS, driver.State())

	for _, name := range stagedNames {
		requireMoved(t, d, name)
	}

	require.Len(t, server.Submissions, 3)
	for i, submission := range server.Submissions {
		require.Equal(t, 200, submission.Status)
		require.Equal(t, stagedNames[i], submission.Filename)
	}
	require.Equal(t, "2253", server.Submissions[1].Fields["course"])
	require.Equal(t, "1", server.Submissions[1].Fields["lang"])
	require.Equal(t, "Tentamen", server.Submissions[2].Fields["desc"])
}

func TestRunRenewsToken(t *testing.T) {
	server, client := setupArchive(t)
	d := setupDirs(t, stagedNames...)
	ctx := context.Background()

	records, _, err := Plan(ctx, client, PlanOptions{TodoDir: d.todo}, &telemetry.Recorder{})
	require.NoError(t, err)

	driver := NewDriver(client, d.done, &telemetry.Recorder{})
	_, held := driver.Token()
	require.False(t, held)

	_, err = driver.Run(ctx, records, 0)
	require.NoError(t, err)

	// 1: options page, 2: seeded token, 3..5: issued with each response
	issued := server.Issued()
	require.Len(t, issued, 5)
	require.Len(t, server.Submissions, 3)
	require.Equal(t, issued[1], server.Submissions[0].Token)
	for i := 1; i < len(server.Submissions); i++ {
		require.NotEqual(t, server.Submissions[i-1].Token, server.Submissions[i].Token)
		require.Equal(t, issued[i+1], server.Submissions[i].Token)
	}

	token, held := driver.Token()
	require.True(t, held)
	require.Equal(t, issued[4], token)
}

func TestRunAbortsOnFailure(t *testing.T) {
	server, client := setupArchive(t)
	server.Reject[stagedNames[1]] = 400
	d := setupDirs(t, stagedNames...)
	ctx := context.Background()

	records, _, err := Plan(ctx, client, PlanOptions{TodoDir: d.todo}, &telemetry.Recorder{})
	require.NoError(t, err)

	driver := NewDriver(client, d.done, &telemetry.Recorder{})
	summary, err := driver.Run(ctx, records, 0)
	require.True(t, errors.Is(err, exam.ErrSubmissionFailed))
	require.Contains(t, err.Error(), stagedNames[1])
	require.Equal(t, STATE_FAILURE, driver.State())
	require.Len(t, summary.Submitted, 1)

	requireMoved(t, d, stagedNames[0])
	requireStaged(t, d, stagedNames[1])
	requireStaged(t, d, stagedNames[2])
	require.Len(t, server.Submissions, 2)
}

func TestRunWithoutSession(t *testing.T) {
	server, client := setupArchive(t)
	server.RequireSession = true
	d := setupDirs(t, stagedNames[0])
	ctx := context.Background()

	records, _, err := Plan(ctx, client, PlanOptions{TodoDir: d.todo}, &telemetry.Recorder{})
	require.NoError(t, err)

	_, err = NewDriver(client, d.done, &telemetry.Recorder{}).Run(ctx, records, 0)
	require.Equal(t, exam.KindSubmissionFailed, exam.KindOf(err))
	requireStaged(t, d, stagedNames[0])
}

func TestRunLimit(t *testing.T) {
	server, client := setupArchive(t)
	d := setupDirs(t, stagedNames...)
	ctx := context.Background()

	records, _, err := Plan(ctx, client, PlanOptions{TodoDir: d.todo}, &telemetry.Recorder{})
	require.NoError(t, err)

	summary, err := NewDriver(client, d.done, &telemetry.Recorder{}).Run(ctx, records, 1)
	require.NoError(t, err)
	require.Len(t, summary.Submitted, 1)
	require.Len(t, summary.Skipped, 2)

	requireMoved(t, d, stagedNames[0])
	requireStaged(t, d, stagedNames[1])
	requireStaged(t, d, stagedNames[2])
	require.Len(t, server.Submissions, 1)
}

type fakeArchive struct {
	seeds     int
	responses []archive.SubmitResult
	used      []string
}

func (f *fakeArchive) SubmissionToken(ctx context.Context) (string, error) {
	f.seeds++
	return fmt.Sprintf("seed%d", f.seeds), nil
}

func (f *fakeArchive) SubmitExam(ctx context.Context, token string, record exam.Record) (archive.SubmitResult, error) {
	f.used = append(f.used, token)
	res := f.responses[0]
	f.responses = f.responses[1:]
	return res, nil
}

func TestRunReseedsMissingToken(t *testing.T) {
	d := setupDirs(t, stagedNames...)
	records := make([]exam.Record, len(stagedNames))
	for i, name := range stagedNames {
		records[i] = exam.Record{SourcePath: filepath.Join(d.todo, name)}
	}

	fake := &fakeArchive{responses: []archive.SubmitResult{
		{Status: 200, Ok: true, NextToken: "next1"},
		{Status: 200, Ok: true},
		{Status: 200, Ok: true, NextToken: "next2"},
	}}
	driver := NewDriver(fake, d.done, &telemetry.Recorder{})
	_, err := driver.Run(context.Background(), records, 0)
	require.NoError(t, err)

	require.Equal(t, []string{"seed1", "next1", "seed2"}, fake.used)
	require.Equal(t, 2, fake.seeds)
}

func TestPlanUnknownCourse(t *testing.T) {
	_, client := setupArchive(t)
	d := setupDirs(t, "tfy-0.3252_20050101_tentti.pdf")

	_, _, err := Plan(context.Background(), client, PlanOptions{TodoDir: d.todo}, &telemetry.Recorder{})
	require.True(t, errors.Is(err, exam.ErrUnknownCourse))
}

func TestPlanUsesGivenTables(t *testing.T) {
	d := setupDirs(t, "tfy-0.3252_20050101_tentti.pdf")
	tables := exam.OptionTables{
		Courses:   map[string]string{"tfy-0.3252": "735"},
		Languages: map[string]string{"finnish": "1"},
	}

	// a nil source would panic if Plan tried to fetch
	records, resolved, err := Plan(context.Background(), nil, PlanOptions{TodoDir: d.todo, Tables: tables}, &telemetry.Recorder{})
	require.NoError(t, err)
	require.Equal(t, tables, resolved)
	require.Equal(t, "735", records[0].CourseID)
}

func TestRunRefusesDoneDuplicate(t *testing.T) {
	d := setupDirs(t, stagedNames[0])
	require.NoError(t, os.Mkdir(d.done, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(d.done, stagedNames[0]), []byte("earlier"), 0o644))

	fake := &fakeArchive{}
	records := []exam.Record{{SourcePath: filepath.Join(d.todo, stagedNames[0])}}
	_, err := NewDriver(fake, d.done, &telemetry.Recorder{}).Run(context.Background(), records, 0)
	require.ErrorContains(t, err, "already in")
	require.Empty(t, fake.used)
	require.Zero(t, fake.seeds)

	contents, err := os.ReadFile(filepath.Join(d.done, stagedNames[0]))
	require.NoError(t, err)
	require.Equal(t, "earlier", string(contents))
}
