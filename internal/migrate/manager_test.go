package migrate

import (
	"context"
	"testing"
	"testing/fstest"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSplitStatements(t *testing.T) {
	src := `-- header comment
create table a (id text);
insert into a values ('x;y');

create index a_idx on a (id);`
	stmts := splitStatements(src)
	require.Len(t, stmts, 3)
	assert.Equal(t, "create table a (id text);", stmts[0])
	assert.Equal(t, "insert into a values ('x;y');", stmts[1])
	assert.Equal(t, "create index a_idx on a (id);", stmts[2])
}

func newMockManager(t *testing.T, fsys fstest.MapFS) (*Manager, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	m := NewManager(db, fsys)
	m.now = func() time.Time { return time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC) }
	return m, mock
}

func TestUpAppliesPending(t *testing.T) {
	fsys := fstest.MapFS{
		"001_init.up.sql":   {Data: []byte("create table a (id text);")},
		"001_init.down.sql": {Data: []byte("drop table a;")},
		"002_more.up.sql":   {Data: []byte("create table b (id text);\ncreate table c (id text);")},
	}
	m, mock := newMockManager(t, fsys)

	mock.ExpectExec("create table if not exists schema_migrations").WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectQuery("select name from schema_migrations").
		WillReturnRows(sqlmock.NewRows([]string{"name"}).AddRow("001_init.up.sql"))
	mock.ExpectBegin()
	mock.ExpectExec("create table b").WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec("create table c").WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectCommit()
	mock.ExpectExec("insert into schema_migrations").
		WithArgs("002_more.up.sql", sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))

	applied, err := m.Up(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"002_more.up.sql"}, applied)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDownRollsBackLast(t *testing.T) {
	fsys := fstest.MapFS{
		"001_init.up.sql":   {Data: []byte("create table a (id text);")},
		"001_init.down.sql": {Data: []byte("drop table a;")},
	}
	m, mock := newMockManager(t, fsys)

	mock.ExpectExec("create table if not exists schema_migrations").WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectQuery("select name from schema_migrations").
		WillReturnRows(sqlmock.NewRows([]string{"name"}).AddRow("001_init.up.sql"))
	mock.ExpectBegin()
	mock.ExpectExec("drop table a").WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectCommit()
	mock.ExpectExec("delete from schema_migrations where name = \\$1").
		WithArgs("001_init.up.sql").
		WillReturnResult(sqlmock.NewResult(0, 1))

	name, err := m.Down(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "001_init.up.sql", name)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDownWithNothingApplied(t *testing.T) {
	m, mock := newMockManager(t, fstest.MapFS{})
	mock.ExpectExec("create table if not exists").WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectQuery("select name").WillReturnRows(sqlmock.NewRows([]string{"name"}))

	_, err := m.Down(context.Background())
	assert.EqualError(t, err, "no migrations applied")
}
