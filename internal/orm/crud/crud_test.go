package crud

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/careboard/careboard/internal/codec"
	"github.com/careboard/careboard/internal/models"
	"github.com/careboard/careboard/internal/orm/dialect"
	"github.com/careboard/careboard/internal/orm/schema"
)

func newMockStore(t *testing.T) (*Store, *sql.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherEqual))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return NewStore(dialect.Postgres{}), db, mock
}

func TestFindAll(t *testing.T) {
	store, db, mock := newMockStore(t)
	ctx := context.Background()

	mock.ExpectQuery(`SELECT "caregiver_user_id", "job_id", "date_applied" FROM "job_application" ORDER BY "caregiver_user_id", "job_id"`).
		WillReturnRows(sqlmock.NewRows([]string{"caregiver_user_id", "job_id", "date_applied"}).
			AddRow(int64(3), int64(1), time.Date(2025, 9, 5, 0, 0, 0, 0, time.UTC)).
			AddRow(int64(3), int64(2), nil))

	records, err := store.FindAll(ctx, db, models.JobApplications)
	require.NoError(t, err)
	require.Len(t, records, 2)

	applied, err := records[0].Get("date_applied")
	require.NoError(t, err)
	assert.Equal(t, codec.Date{Year: 2025, Month: time.September, Day: 5}, applied)

	applied, err = records[1].Get("date_applied")
	require.NoError(t, err)
	assert.Nil(t, applied)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestFindByKey(t *testing.T) {
	ctx := context.Background()

	t.Run("composite key", func(t *testing.T) {
		store, db, mock := newMockStore(t)

		mock.ExpectQuery(`SELECT "caregiver_user_id", "job_id", "date_applied" FROM "job_application" WHERE "caregiver_user_id" = $1 AND "job_id" = $2`).
			WithArgs(int64(3), int64(1)).
			WillReturnRows(sqlmock.NewRows([]string{"caregiver_user_id", "job_id", "date_applied"}).
				AddRow(int64(3), int64(1), time.Date(2025, 9, 5, 0, 0, 0, 0, time.UTC)))

		key := Key{{Field: "caregiver_user_id", Value: 3}, {Field: "job_id", Value: 1}}
		rec, err := store.FindByKey(ctx, db, models.JobApplications, key)
		require.NoError(t, err)

		got, err := store.KeyOf(models.JobApplications, rec)
		require.NoError(t, err)
		assert.Equal(t, key, got)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("decimal column arrives as text", func(t *testing.T) {
		store, db, mock := newMockStore(t)

		mock.ExpectQuery(`SELECT "caregiver_user_id", "photo", "gender", "caregiving_type", "hourly_rate" FROM "caregiver" WHERE "caregiver_user_id" = $1`).
			WithArgs(int64(3)).
			WillReturnRows(sqlmock.NewRows([]string{"caregiver_user_id", "photo", "gender", "caregiving_type", "hourly_rate"}).
				AddRow(int64(3), "beks.jpg", "Male", "babysitter", "7.50"))

		rec, err := store.FindByKey(ctx, db, models.Caregivers, Key{{Field: "caregiver_user_id", Value: 3}})
		require.NoError(t, err)

		caregiver := rec.(*schema.Bound[models.Caregiver]).Value()
		assert.True(t, decimal.RequireFromString("7.5").Equal(caregiver.HourlyRate.V))
		assert.Equal(t, "beks.jpg", caregiver.Photo.V)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("not found", func(t *testing.T) {
		store, db, mock := newMockStore(t)

		mock.ExpectQuery(`SELECT "job_id", "member_user_id", "required_caregiving_type", "other_requirements", "date_posted" FROM "job" WHERE "job_id" = $1`).
			WithArgs(int64(999)).
			WillReturnRows(sqlmock.NewRows([]string{"job_id", "member_user_id", "required_caregiving_type", "other_requirements", "date_posted"}))

		_, err := store.FindByKey(ctx, db, models.Jobs, Key{{Field: "job_id", Value: 999}})
		assert.ErrorIs(t, err, ErrNotFound)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("key shape mismatch", func(t *testing.T) {
		store, db, _ := newMockStore(t)

		_, err := store.FindByKey(ctx, db, models.JobApplications, Key{{Field: "caregiver_user_id", Value: 3}})
		assert.Error(t, err)

		_, err = store.FindByKey(ctx, db, models.JobApplications, Key{{Field: "job_id", Value: 1}, {Field: "caregiver_user_id", Value: 3}})
		assert.Error(t, err)
	})
}

func TestInsert(t *testing.T) {
	ctx := context.Background()

	t.Run("identity assigned by store", func(t *testing.T) {
		store, db, mock := newMockStore(t)

		mock.ExpectQuery(`INSERT INTO "job" ("member_user_id", "required_caregiving_type", "other_requirements", "date_posted") VALUES ($1, $2, $3, $4) RETURNING "job_id"`).
			WithArgs(int64(1), "babysitter", "punctual", time.Date(2025, 10, 1, 0, 0, 0, 0, time.UTC)).
			WillReturnRows(sqlmock.NewRows([]string{"job_id"}).AddRow(int64(7)))

		rec := models.Jobs.New()
		require.NoError(t, rec.Set("member_user_id", int64(1)))
		require.NoError(t, rec.Set("required_caregiving_type", "babysitter"))
		require.NoError(t, rec.Set("other_requirements", "punctual"))
		require.NoError(t, rec.Set("date_posted", codec.Date{Year: 2025, Month: time.October, Day: 1}))

		key, err := store.Insert(ctx, db, models.Jobs, rec)
		require.NoError(t, err)
		assert.Equal(t, Key{{Field: "job_id", Value: 7}}, key)

		id, err := rec.Get("job_id")
		require.NoError(t, err)
		assert.Equal(t, int64(7), id)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("natural key supplied by caller", func(t *testing.T) {
		store, db, mock := newMockStore(t)

		mock.ExpectQuery(`INSERT INTO "caregiver" ("caregiver_user_id", "photo", "gender", "caregiving_type", "hourly_rate") VALUES ($1, $2, $3, $4, $5) RETURNING "caregiver_user_id"`).
			WithArgs(int64(3), nil, nil, "babysitter", "7.50").
			WillReturnRows(sqlmock.NewRows([]string{"caregiver_user_id"}).AddRow(int64(3)))

		rec := models.Caregivers.New()
		require.NoError(t, rec.Set("caregiver_user_id", int64(3)))
		require.NoError(t, rec.Set("caregiving_type", "babysitter"))
		require.NoError(t, rec.Set("hourly_rate", decimal.NewFromFloat(7.5)))

		key, err := store.Insert(ctx, db, models.Caregivers, rec)
		require.NoError(t, err)
		assert.Equal(t, "3", key.String())
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("unique violation", func(t *testing.T) {
		store, db, mock := newMockStore(t)

		mock.ExpectQuery(`INSERT INTO "member" ("member_user_id", "house_rules", "dependent_description") VALUES ($1, $2, $3) RETURNING "member_user_id"`).
			WithArgs(int64(1), nil, nil).
			WillReturnError(&pgconn.PgError{Code: "23505", Detail: "Key (member_user_id)=(1) already exists."})

		rec := models.Members.New()
		require.NoError(t, rec.Set("member_user_id", int64(1)))

		_, err := store.Insert(ctx, db, models.Members, rec)
		require.Error(t, err)
		assert.True(t, IsUniqueViolation(err))
		assert.True(t, IsConstraintViolation(err))
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("null natural key never reaches the store", func(t *testing.T) {
		store, db, mock := newMockStore(t)

		rec := models.Members.New()
		require.NoError(t, rec.Set("house_rules", "No shoes"))

		_, err := store.Insert(ctx, db, models.Members, rec)
		assert.ErrorIs(t, err, ErrNotNullViolation)
		assert.Contains(t, err.Error(), "member_user_id")
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestUpdate(t *testing.T) {
	ctx := context.Background()
	key := Key{{Field: "caregiver_user_id", Value: 3}}

	newCaregiver := func(t *testing.T) schema.Record {
		rec := models.Caregivers.New()
		require.NoError(t, rec.Set("caregiver_user_id", int64(3)))
		require.NoError(t, rec.Set("photo", "beks.jpg"))
		require.NoError(t, rec.Set("gender", "Male"))
		require.NoError(t, rec.Set("hourly_rate", decimal.NewFromInt(12)))
		return rec
	}

	t.Run("writes non-key columns", func(t *testing.T) {
		store, db, mock := newMockStore(t)

		mock.ExpectExec(`UPDATE "caregiver" SET "photo" = $1, "gender" = $2, "caregiving_type" = $3, "hourly_rate" = $4 WHERE "caregiver_user_id" = $5`).
			WithArgs("beks.jpg", "Male", nil, "12.00", int64(3)).
			WillReturnResult(sqlmock.NewResult(0, 1))

		require.NoError(t, store.Update(ctx, db, models.Caregivers, key, newCaregiver(t)))
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("no matching row", func(t *testing.T) {
		store, db, mock := newMockStore(t)

		mock.ExpectExec(`UPDATE "caregiver" SET "photo" = $1, "gender" = $2, "caregiving_type" = $3, "hourly_rate" = $4 WHERE "caregiver_user_id" = $5`).
			WillReturnResult(sqlmock.NewResult(0, 0))

		err := store.Update(ctx, db, models.Caregivers, key, newCaregiver(t))
		assert.ErrorIs(t, err, ErrNotFound)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("key-only table checks existence", func(t *testing.T) {
		store, db, mock := newMockStore(t)
		table := &schema.Table{
			Name:       "tag",
			Columns:    []schema.ColumnDef{{Name: "tag_id", Parser: codec.ParserInt}},
			PrimaryKey: []string{"tag_id"},
		}
		type tag struct{ ID sql.Null[int64] }
		model := schema.MustModel(table, schema.Fields[tag]{
			"tag_id": schema.Field("tag_id", codec.ParserInt, func(t *tag) *sql.Null[int64] { return &t.ID }),
		})

		mock.ExpectQuery(`SELECT "tag_id" FROM "tag" WHERE "tag_id" = $1`).
			WithArgs(int64(4)).
			WillReturnRows(sqlmock.NewRows([]string{"tag_id"}).AddRow(int64(4)))

		err := store.Update(ctx, db, model, Key{{Field: "tag_id", Value: 4}}, model.New())
		require.NoError(t, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestDelete(t *testing.T) {
	ctx := context.Background()

	t.Run("deletes by key", func(t *testing.T) {
		store, db, mock := newMockStore(t)

		mock.ExpectExec(`DELETE FROM "job" WHERE "job_id" = $1`).
			WithArgs(int64(1)).
			WillReturnResult(sqlmock.NewResult(0, 1))

		require.NoError(t, store.Delete(ctx, db, models.Jobs, Key{{Field: "job_id", Value: 1}}))
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("not found", func(t *testing.T) {
		store, db, mock := newMockStore(t)

		mock.ExpectExec(`DELETE FROM "job_application" WHERE "caregiver_user_id" = $1 AND "job_id" = $2`).
			WithArgs(int64(999), int64(1)).
			WillReturnResult(sqlmock.NewResult(0, 0))

		err := store.Delete(ctx, db, models.JobApplications, Key{{Field: "caregiver_user_id", Value: 999}, {Field: "job_id", Value: 1}})
		assert.ErrorIs(t, err, ErrNotFound)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestCountAndExists(t *testing.T) {
	store, db, mock := newMockStore(t)
	ctx := context.Background()

	mock.ExpectQuery(`SELECT COUNT(*) FROM "user"`).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(int64(10)))
	mock.ExpectQuery(`SELECT 1 FROM "user" LIMIT 1`).
		WillReturnRows(sqlmock.NewRows([]string{"?column?"}))

	count, err := store.Count(ctx, db, models.Users)
	require.NoError(t, err)
	assert.Equal(t, int64(10), count)

	exists, err := store.Exists(ctx, db, models.Users)
	require.NoError(t, err)
	assert.False(t, exists)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSyncIdentity(t *testing.T) {
	store, db, mock := newMockStore(t)
	ctx := context.Background()

	mock.ExpectExec(`SELECT setval(pg_get_serial_sequence('"user"', 'user_id'), COALESCE((SELECT MAX("user_id") FROM "user"), 0) + 1, false)`).
		WillReturnResult(sqlmock.NewResult(0, 0))

	require.NoError(t, store.SyncIdentity(ctx, db, models.Users))
	// natural keys have no sequence
	require.NoError(t, store.SyncIdentity(ctx, db, models.Members))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestKey(t *testing.T) {
	key := Key{{Field: "caregiver_user_id", Value: 3}, {Field: "job_id", Value: 1}}
	assert.Equal(t, "3/1", key.String())
	assert.Equal(t, []int64{3, 1}, key.Values())
	assert.Equal(t, []string{"3", "1"}, key.Segments())
	assert.Equal(t, map[string]int64{"caregiver_user_id": 3, "job_id": 1}, key.Map())
}
