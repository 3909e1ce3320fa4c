package sqlite

import (
	"context"
	"encoding/json"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/babyscan/babyscan/internal/anthropometry"
	"github.com/babyscan/babyscan/internal/types"
)

// setupTestDB creates a file-backed store in a temp dir.
func setupTestDB(t *testing.T) *SQLiteStorage {
	t.Helper()
	store, err := New(filepath.Join(t.TempDir(), "nested", "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func newBaby(name string) *types.Baby {
	return &types.Baby{
		Name:       name,
		BirthDate:  time.Date(2023, 1, 15, 0, 0, 0, 0, time.UTC),
		Sex:        anthropometry.SexFemale,
		ParentName: "Parent of " + name,
	}
}

func newMeasurement(babyID string, date time.Time) *types.Measurement {
	return &types.Measurement{
		BabyID:          babyID,
		HeightCm:        74.2,
		WeightKg:        8.26,
		AgeMonths:       12,
		HAZScore:        -0.5,
		HAZCategory:     anthropometry.CategoryNormal,
		HAZColor:        "#26a269",
		ScaleCmPerPx:    0.1,
		Method:          "test",
		MeasurementDate: date,
	}
}

func TestNewCreatesParentDirectory(t *testing.T) {
	store := setupTestDB(t)
	assert.NotNil(t, store.db)
}

func TestInMemoryDatabase(t *testing.T) {
	store, err := New(":memory:")
	require.NoError(t, err)
	defer store.Close()

	ctx := context.Background()
	require.NoError(t, store.CreateBaby(ctx, newBaby("Ada")))
	babies, err := store.ListBabies(ctx)
	require.NoError(t, err)
	assert.Len(t, babies, 1)
}

func TestCreateAndGetBaby(t *testing.T) {
	store := setupTestDB(t)
	ctx := context.Background()

	baby := newBaby("Ada")
	require.NoError(t, store.CreateBaby(ctx, baby))
	require.NotEmpty(t, baby.ID)
	assert.False(t, baby.CreatedAt.IsZero())

	got, err := store.GetBaby(ctx, baby.ID)
	require.NoError(t, err)
	assert.Equal(t, "Ada", got.Name)
	assert.Equal(t, anthropometry.SexFemale, got.Sex)
	assert.Equal(t, "2023-01-15", got.BirthDateString())
	assert.Equal(t, "Parent of Ada", got.ParentName)
	assert.True(t, baby.CreatedAt.UTC().Equal(got.CreatedAt))
}

func TestCreateBabyRejectsInvalid(t *testing.T) {
	store := setupTestDB(t)
	baby := newBaby("")
	err := store.CreateBaby(context.Background(), baby)
	assert.Error(t, err)
}

func TestGetBabyNotFound(t *testing.T) {
	store := setupTestDB(t)
	_, err := store.GetBaby(context.Background(), "missing")
	assert.True(t, errors.Is(err, types.ErrNotFound), "got %v", err)
}

func TestListBabiesNewestFirst(t *testing.T) {
	store := setupTestDB(t)
	ctx := context.Background()

	base := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	for i, name := range []string{"First", "Second", "Third"} {
		b := newBaby(name)
		b.CreatedAt = base.Add(time.Duration(i) * time.Hour)
		require.NoError(t, store.CreateBaby(ctx, b))
	}

	babies, err := store.ListBabies(ctx)
	require.NoError(t, err)
	require.Len(t, babies, 3)
	assert.Equal(t, "Third", babies[0].Name)
	assert.Equal(t, "Second", babies[1].Name)
	assert.Equal(t, "First", babies[2].Name)
}

func TestUpdateBaby(t *testing.T) {
	store := setupTestDB(t)
	ctx := context.Background()

	baby := newBaby("Ada")
	require.NoError(t, store.CreateBaby(ctx, baby))

	err := store.UpdateBaby(ctx, baby.ID, map[string]interface{}{
		"name":       "  Ada L.  ",
		"birth_date": "2022-12-01",
		"sex":        "boy",
	})
	require.NoError(t, err)

	got, err := store.GetBaby(ctx, baby.ID)
	require.NoError(t, err)
	assert.Equal(t, "Ada L.", got.Name)
	assert.Equal(t, "2022-12-01", got.BirthDateString())
	assert.Equal(t, anthropometry.SexMale, got.Sex)
	assert.False(t, got.UpdatedAt.Before(got.CreatedAt))
}

func TestUpdateBabyErrors(t *testing.T) {
	store := setupTestDB(t)
	ctx := context.Background()

	baby := newBaby("Ada")
	require.NoError(t, store.CreateBaby(ctx, baby))

	err := store.UpdateBaby(ctx, baby.ID, map[string]interface{}{"id": "other"})
	assert.Error(t, err)

	err = store.UpdateBaby(ctx, baby.ID, map[string]interface{}{"birth_date": "yesterday"})
	assert.True(t, errors.Is(err, anthropometry.ErrInvalidDate), "got %v", err)

	err = store.UpdateBaby(ctx, "missing", map[string]interface{}{"name": "X"})
	assert.True(t, errors.Is(err, types.ErrNotFound), "got %v", err)

	err = store.UpdateBaby(ctx, "missing", map[string]interface{}{})
	assert.True(t, errors.Is(err, types.ErrNotFound), "got %v", err)
}

func TestMeasurementLifecycle(t *testing.T) {
	store := setupTestDB(t)
	ctx := context.Background()

	baby := newBaby("Ada")
	require.NoError(t, store.CreateBaby(ctx, baby))

	m := newMeasurement(baby.ID, time.Date(2024, 1, 15, 9, 30, 0, 0, time.UTC))
	m.Landmarks = json.RawMessage(`{"head":{"x":0.5,"y":0.1}}`)
	require.NoError(t, store.CreateMeasurement(ctx, m))
	require.NotEmpty(t, m.ID)

	got, err := store.GetMeasurement(ctx, m.ID)
	require.NoError(t, err)
	assert.Equal(t, baby.ID, got.BabyID)
	assert.InDelta(t, 74.2, got.HeightCm, 1e-9)
	assert.InDelta(t, 8.26, got.WeightKg, 1e-9)
	assert.Equal(t, 12, got.AgeMonths)
	assert.Equal(t, anthropometry.CategoryNormal, got.HAZCategory)
	assert.JSONEq(t, `{"head":{"x":0.5,"y":0.1}}`, string(got.Landmarks))
	assert.True(t, m.MeasurementDate.Equal(got.MeasurementDate))

	newDate := time.Date(2024, 2, 1, 8, 0, 0, 0, time.UTC)
	require.NoError(t, store.UpdateMeasurement(ctx, m.ID, map[string]interface{}{
		"notes":            "after feeding",
		"measurement_date": newDate.Format(time.RFC3339),
	}))
	got, err = store.GetMeasurement(ctx, m.ID)
	require.NoError(t, err)
	assert.Equal(t, "after feeding", got.Notes)
	assert.True(t, newDate.Equal(got.MeasurementDate))

	err = store.UpdateMeasurement(ctx, m.ID, map[string]interface{}{"haz_score": 3.0})
	assert.Error(t, err)

	require.NoError(t, store.DeleteMeasurement(ctx, m.ID))
	_, err = store.GetMeasurement(ctx, m.ID)
	assert.True(t, errors.Is(err, types.ErrNotFound))
	assert.True(t, errors.Is(store.DeleteMeasurement(ctx, m.ID), types.ErrNotFound))
}

func TestMeasurementWithoutLandmarks(t *testing.T) {
	store := setupTestDB(t)
	ctx := context.Background()

	baby := newBaby("Ada")
	require.NoError(t, store.CreateBaby(ctx, baby))
	m := newMeasurement(baby.ID, time.Now())
	require.NoError(t, store.CreateMeasurement(ctx, m))

	got, err := store.GetMeasurement(ctx, m.ID)
	require.NoError(t, err)
	assert.Empty(t, got.Landmarks)
}

func TestCreateMeasurementUnknownBaby(t *testing.T) {
	store := setupTestDB(t)
	err := store.CreateMeasurement(context.Background(), newMeasurement("missing", time.Now()))
	assert.True(t, errors.Is(err, types.ErrNotFound), "got %v", err)
}

func TestListMeasurementsMostRecentFirst(t *testing.T) {
	store := setupTestDB(t)
	ctx := context.Background()

	baby := newBaby("Ada")
	other := newBaby("Bea")
	require.NoError(t, store.CreateBaby(ctx, baby))
	require.NoError(t, store.CreateBaby(ctx, other))

	dates := []time.Time{
		time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC),
		time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
		time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC),
	}
	for _, d := range dates {
		require.NoError(t, store.CreateMeasurement(ctx, newMeasurement(baby.ID, d)))
	}
	require.NoError(t, store.CreateMeasurement(ctx, newMeasurement(other.ID, dates[0])))

	list, err := store.ListMeasurements(ctx, baby.ID)
	require.NoError(t, err)
	require.Len(t, list, 3)
	assert.Equal(t, time.March, list[0].MeasurementDate.Month())
	assert.Equal(t, time.February, list[1].MeasurementDate.Month())
	assert.Equal(t, time.January, list[2].MeasurementDate.Month())

	empty, err := store.ListMeasurements(ctx, "missing")
	require.NoError(t, err)
	assert.Empty(t, empty)
}

func TestDeleteBabyCascades(t *testing.T) {
	store := setupTestDB(t)
	ctx := context.Background()

	baby := newBaby("Ada")
	require.NoError(t, store.CreateBaby(ctx, baby))
	m := newMeasurement(baby.ID, time.Now())
	require.NoError(t, store.CreateMeasurement(ctx, m))

	require.NoError(t, store.DeleteBaby(ctx, baby.ID))

	_, err := store.GetBaby(ctx, baby.ID)
	assert.True(t, errors.Is(err, types.ErrNotFound))
	_, err = store.GetMeasurement(ctx, m.ID)
	assert.True(t, errors.Is(err, types.ErrNotFound))
	assert.True(t, errors.Is(store.DeleteBaby(ctx, baby.ID), types.ErrNotFound))
}

func TestReopenKeepsData(t *testing.T) {
	path := filepath.Join(t.TempDir(), "persist.db")
	ctx := context.Background()

	store, err := New(path)
	require.NoError(t, err)
	baby := newBaby("Ada")
	require.NoError(t, store.CreateBaby(ctx, baby))
	require.NoError(t, store.Close())

	reopened, err := New(path)
	require.NoError(t, err)
	defer reopened.Close()
	got, err := reopened.GetBaby(ctx, baby.ID)
	require.NoError(t, err)
	assert.Equal(t, "Ada", got.Name)
}
