package service

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/aws/smithy-go"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/catalog-search/internal/database"
	"github.com/catalog-search/internal/database/memdb"
)

const capstoneJSON = `[
  {"CourseID":"1","Subject":"CYOP","CatalogNbr":"400","Title":"Cybersecurity Capstone","NumCredits":3},
  {"CourseID":"2","Subject":"CYOP","CatalogNbr":"300","Title":"Network Security","NumCredits":3},
  {"CourseID":"3","Subject":"CMSC","CatalogNbr":335,"Title":"Software Security","NumCredits":3}
]`

type fixture struct {
	svc   *CatalogService
	store *memdb.Store
	logs  *bytes.Buffer
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	store := memdb.New()
	logs := &bytes.Buffer{}
	logger := zerolog.New(logs)
	client := database.New(store, "Courses", database.Options{Logger: logger})
	return &fixture{
		svc:   NewCatalogService(client, logger),
		store: store,
		logs:  logs,
	}
}

func writeCourses(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "course_items.json")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestEnsureTable_Idempotent(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	assert.Equal(t, database.TableCreated, f.svc.EnsureTable(ctx))
	assert.Contains(t, f.logs.String(), "Table created!")

	f.logs.Reset()
	assert.Equal(t, database.TableAlreadyExists, f.svc.EnsureTable(ctx))
	assert.Contains(t, f.logs.String(), "Table already exists")

	_, err := f.svc.LoadCourses(ctx, writeCourses(t, capstoneJSON))
	require.NoError(t, err)
}

func TestEnsureTable_FailureIsLogged(t *testing.T) {
	f := newFixture(t)
	f.store.CreateTableErr = &smithy.GenericAPIError{Code: "AccessDeniedException", Message: "not authorized"}

	assert.Equal(t, database.TableCreateFailed, f.svc.EnsureTable(context.Background()))
	assert.Contains(t, f.logs.String(), "AccessDeniedException")
}

func TestFindTitle_CapstoneScenario(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.svc.EnsureTable(ctx)
	_, err := f.svc.LoadCourses(ctx, writeCourses(t, `[{"CourseID":"1","Subject":"CYOP","CatalogNbr":"400","Title":"Cybersecurity Capstone","NumCredits":3}]`))
	require.NoError(t, err)

	title, ok := f.svc.FindTitle(ctx, "CYOP", "400")
	assert.True(t, ok)
	assert.Equal(t, "Cybersecurity Capstone", title)

	title, ok = f.svc.FindTitle(ctx, "CYOP", "401")
	assert.False(t, ok)
	assert.Empty(t, title)
}

func TestFindTitle_EveryLoadedCourse(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.svc.EnsureTable(ctx)
	_, err := f.svc.LoadCourses(ctx, writeCourses(t, capstoneJSON))
	require.NoError(t, err)

	want := map[[2]string]string{
		{"CYOP", "400"}: "Cybersecurity Capstone",
		{"CYOP", "300"}: "Network Security",
		{"CMSC", "335"}: "Software Security",
	}
	for pair, title := range want {
		got, ok := f.svc.FindTitle(ctx, pair[0], pair[1])
		assert.True(t, ok, "%v", pair)
		assert.Equal(t, title, got)
	}
}

func TestFindTitle_EmptyTitleReadsAsNotFound(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.svc.EnsureTable(ctx)
	_, err := f.svc.LoadCourses(ctx, writeCourses(t, `[{"CourseID":"9","Subject":"CYOP","CatalogNbr":"499","Title":"","NumCredits":1}]`))
	require.NoError(t, err)

	title, ok := f.svc.FindTitle(ctx, "CYOP", "499")
	assert.False(t, ok)
	assert.Empty(t, title)
}

func TestFindTitle_ScanErrorReadsAsNotFound(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.svc.EnsureTable(ctx)
	_, err := f.svc.LoadCourses(ctx, writeCourses(t, capstoneJSON))
	require.NoError(t, err)

	f.store.ScanErr = &smithy.GenericAPIError{Code: "ProvisionedThroughputExceededException"}
	f.logs.Reset()

	title, ok := f.svc.FindTitle(ctx, "CYOP", "400")
	assert.False(t, ok)
	assert.Empty(t, title)
	assert.Contains(t, f.logs.String(), "ProvisionedThroughputExceededException")
}

func TestFindTitle_NotFoundIsNotLoggedAsFailure(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.svc.EnsureTable(ctx)
	f.logs.Reset()

	_, ok := f.svc.FindTitle(ctx, "CYOP", "999")
	assert.False(t, ok)
	assert.NotContains(t, f.logs.String(), "course lookup failed")
}

func TestFindTitle_MissingTable(t *testing.T) {
	f := newFixture(t)

	_, ok := f.svc.FindTitle(context.Background(), "CYOP", "400")
	assert.False(t, ok)
	assert.Contains(t, f.logs.String(), "course lookup failed")
}
