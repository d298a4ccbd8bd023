package store

import (
	"context"
	"database/sql"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/viant/kanon"
	"github.com/viant/kanon/column"
	"github.com/viant/kanon/dataset"
	"github.com/viant/kanon/engine"
)

func openDB(t *testing.T) *sql.DB {
	db, err := engine.Open(":memory:")
	require.NoError(t, err)
	// every pooled connection would get its own in-memory database
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func seed(t *testing.T, db *sql.DB) {
	_, err := db.Exec(`CREATE TABLE people (pid TEXT, city TEXT, age INTEGER, score REAL)`)
	require.NoError(t, err)
	_, err = db.Exec(`INSERT INTO people VALUES
		('p1', 'Paris', 30, 1.5),
		('p2', 'Paris', 31, NULL),
		('p3', 'Lyon', 40, 2),
		('p4', 'Lyon', NULL, 3.25),
		('p5', 'Nice', 50, 0)`)
	require.NoError(t, err)
}

func TestLoadTable(t *testing.T) {
	ctx := context.Background()
	db := openDB(t)
	seed(t, db)

	ds, err := LoadTable(ctx, db, "people", "pid")
	require.NoError(t, err)
	assert.Equal(t, []string{"pid", "city", "age", "score"}, ds.Columns())
	assert.Equal(t, []string{"p1", "p2", "p3", "p4", "p5"}, ds.IDs())
	assert.Equal(t, "Paris", ds.Get(0, "city").Text())
	age, ok := ds.Get(2, "age").Float()
	assert.True(t, ok)
	assert.Equal(t, 40.0, age)
	assert.True(t, ds.Get(3, "age").IsNull())
	assert.True(t, ds.Get(1, "score").IsNull())

	ds, err = LoadTable(ctx, db, "people", "")
	require.NoError(t, err)
	assert.Equal(t, "0", ds.ID(0))

	_, err = LoadTable(ctx, db, "people", "missing")
	assert.Error(t, err)
	_, err = LoadTable(ctx, db, "nope", "")
	assert.Error(t, err)
	_, err = LoadTable(ctx, db, " ", "")
	assert.Error(t, err)
}

func TestWriteTable(t *testing.T) {
	ctx := context.Background()
	db := openDB(t)
	seed(t, db)
	ds, err := LoadTable(ctx, db, "people", "pid")
	require.NoError(t, err)
	ds.Set(0, 1, dataset.String(`Sa"int`))

	require.NoError(t, WriteTable(ctx, db, "people out", ds))
	require.NoError(t, WriteTable(ctx, db, "people out", ds))
	restored, err := LoadTable(ctx, db, "people out", "pid")
	require.NoError(t, err)
	require.Equal(t, ds.Len(), restored.Len())
	assert.Equal(t, ds.Columns(), restored.Columns())
	for row := 0; row < ds.Len(); row++ {
		for col := range ds.Columns() {
			assert.True(t, dataset.Equal(ds.Value(row, col), restored.Value(row, col)), "row %d col %d", row, col)
		}
	}
}

func fitPlan(t *testing.T) (*kanon.Plan, *dataset.Dataset) {
	ds, err := dataset.FromRecords([]string{"city", "age"}, [][]string{
		{"Paris", "30"}, {"Paris", "31"}, {"Lyon", "40"}, {"Lyon", "41"},
		{"Nice", "50"}, {"Nice", "50"}, {"Nice", "50"},
	})
	require.NoError(t, err)
	anonymizer, err := kanon.New(kanon.Config{
		Columns: column.Options{Categorical: []string{"city"}, Numeric: []string{"age"}},
		KTarget: 2,
		Stable:  true,
	})
	require.NoError(t, err)
	plan, err := anonymizer.Fit(ds)
	require.NoError(t, err)
	return plan, ds
}

func TestPlanPersistence(t *testing.T) {
	ctx := context.Background()
	db := openDB(t)
	plan, ds := fitPlan(t)

	require.NoError(t, SavePlan(ctx, db, "people", plan))
	require.NoError(t, SavePlan(ctx, db, "people", plan))
	restored, err := LoadPlan(ctx, db, "people")
	require.NoError(t, err)
	assert.Equal(t, plan.ID(), restored.ID())
	assert.Equal(t, plan.Groups(), restored.Groups())

	anonymizer, err := kanon.New(restored.Config())
	require.NoError(t, err)
	want, err := anonymizer.Transform(ds, plan)
	require.NoError(t, err)
	got, err := anonymizer.Transform(ds, restored)
	require.NoError(t, err)
	for row := 0; row < ds.Len(); row++ {
		assert.Equal(t, want.Row(row), got.Row(row))
	}

	infos, err := ListPlans(ctx, db)
	require.NoError(t, err)
	require.Len(t, infos, 1)
	assert.Equal(t, "people", infos[0].Name)
	assert.Equal(t, plan.ID(), infos[0].ID)
	assert.Equal(t, 2, infos[0].KTarget)
	assert.Equal(t, plan.Stats().Classes, infos[0].Classes)

	nearest, err := NearestClasses(ctx, db, "people", plan.Vector(0), 2)
	require.NoError(t, err)
	require.Len(t, nearest, 2)
	assert.Equal(t, 0, nearest[0])

	require.NoError(t, DeletePlan(ctx, db, "people"))
	_, err = LoadPlan(ctx, db, "people")
	assert.ErrorIs(t, err, ErrPlanNotFound)
	assert.Error(t, SavePlan(ctx, db, "", plan))
}
