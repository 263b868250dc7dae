package sqlsource

import (
	"context"
	"testing"
	"time"

	"gounivar/domain/dataset"
	"gounivar/internal/errors"

	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	_ "modernc.org/sqlite"
)

func memorySource(t *testing.T) *Source {
	t.Helper()
	db, err := sqlx.Connect("sqlite", ":memory:")
	require.NoError(t, err)
	// every pooled connection would get its own in-memory database
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { db.Close() })

	db.MustExec(`CREATE TABLE cohort (arm TEXT, age INTEGER, score REAL, site TEXT)`)
	db.MustExec(`INSERT INTO cohort VALUES ('A', 34, 1.5, '01'), ('B', NULL, 2.25, '02'), ('A', 51, NULL, NULL)`)
	return New(db)
}

func TestLoad(t *testing.T) {
	src := memorySource(t)

	ds, err := src.Load(context.Background(), `SELECT arm, age, score, site FROM cohort ORDER BY rowid`)
	require.NoError(t, err)
	assert.Equal(t, []string{"arm", "age", "score", "site"}, ds.Names())
	assert.Equal(t, 3, ds.Len())

	arms, err := ds.Column("arm")
	require.NoError(t, err)
	assert.Equal(t, []dataset.Value{dataset.String("A"), dataset.String("B"), dataset.String("A")}, arms)

	age, err := ds.Column("age")
	require.NoError(t, err)
	assert.Equal(t, dataset.Number(34), age[0])
	assert.True(t, age[1].IsMissing())

	// text codes are not coerced to numbers
	site, err := ds.Column("site")
	require.NoError(t, err)
	assert.Equal(t, dataset.String("01"), site[0])
	assert.True(t, site[2].IsMissing())
}

func TestLoadWithArgs(t *testing.T) {
	src := memorySource(t)

	ds, err := src.Load(context.Background(), `SELECT score FROM cohort WHERE arm = ?`, "B")
	require.NoError(t, err)
	scores, err := ds.Floats("score")
	require.NoError(t, err)
	assert.Equal(t, []float64{2.25}, scores)
}

func TestLoadErrors(t *testing.T) {
	src := memorySource(t)
	ctx := context.Background()

	_, err := src.Load(ctx, "")
	assert.True(t, errors.IsCode(err, errors.CodeInvalidInput))

	_, err = src.Load(ctx, `SELECT * FROM cohort WHERE arm = 'Z'`)
	assert.True(t, errors.IsCode(err, errors.CodeInvalidInput))

	_, err = src.Load(ctx, `SELECT * FROM missing_table`)
	assert.Error(t, err)
}

func TestOpenRequiresDriverAndDSN(t *testing.T) {
	_, err := Open("", "")
	assert.True(t, errors.IsCode(err, errors.CodeConfigInvalid))

	src, err := Open("sqlite", ":memory:")
	require.NoError(t, err)
	assert.NoError(t, src.Close())
}

func TestValueOf(t *testing.T) {
	assert.Equal(t, dataset.Number(12.5), valueOf([]byte("12.5")))
	assert.Equal(t, dataset.String("x"), valueOf([]byte("x")))
	assert.True(t, valueOf(nil).IsMissing())
	assert.Equal(t, dataset.Number(3), valueOf(int64(3)))

	ts := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	assert.Equal(t, dataset.String("2024-03-01T12:00:00Z"), valueOf(ts))
}
