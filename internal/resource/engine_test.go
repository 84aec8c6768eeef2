package resource

import (
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/careboard/careboard/internal/database"
	"github.com/careboard/careboard/internal/models"
	"github.com/careboard/careboard/internal/orm/crud"
	"github.com/careboard/careboard/internal/orm/schema"
	"github.com/careboard/careboard/internal/orm/transaction"
	"github.com/careboard/careboard/internal/seed"
)

type recordedOp struct {
	entity, operation, outcome string
}

type fakeObserver struct {
	mu  sync.Mutex
	ops []recordedOp
}

func (o *fakeObserver) RecordOperation(entity, operation, outcome string, _ time.Duration) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.ops = append(o.ops, recordedOp{entity, operation, outcome})
}

func (o *fakeObserver) last() recordedOp {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.ops[len(o.ops)-1]
}

// newSeededEngine returns an engine over an in-memory database holding the
// demo fixture.
func newSeededEngine(t *testing.T) (*Engine, *fakeObserver) {
	t.Helper()
	ctx := context.Background()

	db, err := database.Open(ctx, database.Config{URL: "sqlite://:memory:"})
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	_, err = db.Migrate(ctx, nil)
	require.NoError(t, err)

	registry := models.NewRegistry()
	store := crud.NewStore(db.Dialect)
	tx := transaction.NewManager(db.DB)

	_, err = seed.NewLoader(registry, store, tx, nil).Load(ctx, seed.Default())
	require.NoError(t, err)

	observer := &fakeObserver{}
	engine := NewEngine(registry, store, tx, WithObserver(observer), WithLogger(zaptest.NewLogger(t)))
	return engine, observer
}

func keyStrings(l *Listing) []string {
	keys := make([]string, len(l.Rows))
	for i, r := range l.Rows {
		keys[i] = r.Key.String()
	}
	return keys
}

func formValue(t *testing.T, f *Form, name string) FormField {
	t.Helper()
	for _, field := range f.Fields {
		if field.Name == name {
			return field
		}
	}
	t.Fatalf("form has no field %s", name)
	return FormField{}
}

func TestList(t *testing.T) {
	engine, observer := newSeededEngine(t)
	ctx := context.Background()

	t.Run("composite keys ordered field by field", func(t *testing.T) {
		listing, err := engine.List(ctx, "job_applications")
		require.NoError(t, err)
		assert.Equal(t, []string{"3/1", "3/2", "5/3", "7/1", "8/3", "10/2"}, keyStrings(listing))
		assert.Equal(t, []string{"3", "1", "2025-09-05"}, listing.Rows[0].Cells)
		assert.Equal(t, "Applied", listing.Columns[2].Label)
	})

	t.Run("cells use form encoding", func(t *testing.T) {
		listing, err := engine.List(ctx, "caregivers")
		require.NoError(t, err)
		require.Len(t, listing.Rows, 7)
		assert.Equal(t, []string{"3", "Male", "babysitter", "7.50"}, listing.Rows[0].Cells)
		assert.Equal(t, []string{"4", "Male", "playmate", "12.00"}, listing.Rows[1].Cells)
	})

	t.Run("unknown entity", func(t *testing.T) {
		_, err := engine.List(ctx, "widgets")
		assert.ErrorIs(t, err, ErrUnknownEntity)
		assert.Equal(t, recordedOp{"widgets", OpList, "unknown_entity"}, observer.last())
	})
}

func TestNewForm(t *testing.T) {
	engine, _ := newSeededEngine(t)

	form, err := engine.NewForm("job_applications")
	require.NoError(t, err)
	assert.False(t, form.IsEdit())
	require.Len(t, form.Fields, 3)
	for _, f := range form.Fields {
		assert.Empty(t, f.Value)
		assert.False(t, f.ReadOnly)
	}
	assert.Equal(t, schema.InputDate, form.Fields[2].InputType)
}

func TestCreate(t *testing.T) {
	ctx := context.Background()

	t.Run("job with surrogate key", func(t *testing.T) {
		engine, observer := newSeededEngine(t)

		key, err := engine.Create(ctx, "jobs", Input{
			"member_user_id":           "1",
			"required_caregiving_type": "babysitter",
			"other_requirements":       "punctual",
			"date_posted":              "2025-10-01",
			"ignored":                  "x",
		})
		require.NoError(t, err)
		assert.Equal(t, "7", key.String())
		assert.Equal(t, recordedOp{"jobs", OpCreate, "ok"}, observer.last())

		listing, err := engine.List(ctx, "jobs")
		require.NoError(t, err)
		last := listing.Rows[len(listing.Rows)-1]
		assert.Equal(t, []string{"7", "1", "babysitter", "2025-10-01"}, last.Cells)
	})

	t.Run("natural key supplied by the form", func(t *testing.T) {
		engine, _ := newSeededEngine(t)

		key, err := engine.Create(ctx, "job_applications", Input{
			"caregiver_user_id": "4",
			"job_id":            "5",
			"date_applied":      "2025-10-20",
		})
		require.NoError(t, err)
		assert.Equal(t, crud.Key{{Field: "caregiver_user_id", Value: 4}, {Field: "job_id", Value: 5}}, key)
	})

	t.Run("malformed input writes nothing", func(t *testing.T) {
		engine, observer := newSeededEngine(t)

		_, err := engine.Create(ctx, "appointments", Input{
			"caregiver_user_id": "3",
			"member_user_id":    "1",
			"appointment_date":  "2025-10-20",
			"work_hours":        "abc",
		})
		assert.ErrorIs(t, err, ErrFormat)
		assert.True(t, IsClientError(err))
		assert.Equal(t, "format_error", observer.last().outcome)

		n, err := engine.Count(ctx, "appointments")
		require.NoError(t, err)
		assert.Equal(t, int64(4), n)
	})

	t.Run("field invariant", func(t *testing.T) {
		engine, _ := newSeededEngine(t)

		_, err := engine.Create(ctx, "users", Input{
			"email": "nobody", "given_name": "N", "surname": "B", "password": "p",
		})
		assert.ErrorIs(t, err, ErrValidation)

		n, err := engine.Count(ctx, "users")
		require.NoError(t, err)
		assert.Equal(t, int64(10), n)
	})

	t.Run("storage constraints", func(t *testing.T) {
		engine, _ := newSeededEngine(t)

		_, err := engine.Create(ctx, "caregivers", Input{"caregiver_user_id": "3"})
		assert.ErrorIs(t, err, crud.ErrUniqueViolation)

		_, err = engine.Create(ctx, "caregivers", Input{"caregiver_user_id": "999"})
		assert.ErrorIs(t, err, crud.ErrForeignKeyViolation)

		_, err = engine.Create(ctx, "users", Input{"email": "raim@mail.com", "given_name": "R", "surname": "S", "password": "p"})
		assert.ErrorIs(t, err, ErrConstraintViolation)

		_, err = engine.Create(ctx, "users", Input{"email": "x@mail.com"})
		assert.ErrorIs(t, err, crud.ErrNotNullViolation)
		assert.True(t, IsClientError(err))
	})

	t.Run("value too large for its column", func(t *testing.T) {
		engine, observer := newSeededEngine(t)

		_, err := engine.Create(ctx, "users", Input{
			"email":      strings.Repeat("a", 250) + "@mail.com",
			"given_name": "Long", "surname": "Mail", "password": "p",
		})
		assert.ErrorIs(t, err, ErrInvalidValue)
		assert.True(t, IsClientError(err))
		assert.Equal(t, "invalid_value", observer.last().outcome)

		_, err = engine.Create(ctx, "caregivers", Input{
			"caregiver_user_id": "6", "caregiving_type": "babysitter", "hourly_rate": "100000",
		})
		assert.ErrorIs(t, err, ErrInvalidValue)

		_, err = engine.Create(ctx, "appointments", Input{
			"caregiver_user_id": "3", "member_user_id": "1",
			"appointment_date": "2025-10-20", "work_hours": "9999999999",
		})
		assert.ErrorIs(t, err, ErrInvalidValue)

		users, err := engine.Count(ctx, "users")
		require.NoError(t, err)
		assert.Equal(t, int64(10), users)
		appointments, err := engine.Count(ctx, "appointments")
		require.NoError(t, err)
		assert.Equal(t, int64(4), appointments)
	})

	t.Run("blank natural key", func(t *testing.T) {
		engine, observer := newSeededEngine(t)

		for _, entity := range []string{"members", "caregivers", "addresses"} {
			before, err := engine.Count(ctx, entity)
			require.NoError(t, err)

			_, err = engine.Create(ctx, entity, Input{})
			assert.ErrorIs(t, err, crud.ErrNotNullViolation, entity)
			assert.True(t, IsClientError(err))
			assert.Equal(t, "constraint_violation", observer.last().outcome)

			after, err := engine.Count(ctx, entity)
			require.NoError(t, err)
			assert.Equal(t, before, after, entity)
		}
	})
}

func TestEditForm(t *testing.T) {
	engine, _ := newSeededEngine(t)
	ctx := context.Background()

	t.Run("composite key", func(t *testing.T) {
		form, err := engine.EditForm(ctx, "job_applications", []string{"3", "1"})
		require.NoError(t, err)
		assert.True(t, form.IsEdit())
		assert.Equal(t, "3/1", form.Key.String())

		assert.Equal(t, "2025-09-05", formValue(t, form, "date_applied").Value)
		caregiver := formValue(t, form, "caregiver_user_id")
		assert.Equal(t, "3", caregiver.Value)
		assert.True(t, caregiver.ReadOnly)
		assert.False(t, formValue(t, form, "date_applied").ReadOnly)
	})

	t.Run("decimal rendered with two digits", func(t *testing.T) {
		form, err := engine.EditForm(ctx, "caregivers", []string{"3"})
		require.NoError(t, err)
		assert.Equal(t, "7.50", formValue(t, form, "hourly_rate").Value)
	})

	t.Run("time drops seconds", func(t *testing.T) {
		form, err := engine.EditForm(ctx, "appointments", []string{"1"})
		require.NoError(t, err)
		assert.Equal(t, "09:00", formValue(t, form, "appointment_time").Value)
		assert.Equal(t, "3", formValue(t, form, "work_hours").Value)
	})

	t.Run("not found", func(t *testing.T) {
		for _, segments := range [][]string{
			{"999", "1"},
			{"abc", "1"},
			{"3"},
			{"3", "1", "7"},
			{"0", "1"},
			{"-3", "1"},
			{"9999999999", "1"},
			{"3", "2147483648"},
		} {
			_, err := engine.EditForm(ctx, "job_applications", segments)
			assert.ErrorIs(t, err, ErrNotFound, "%v", segments)
		}
	})
}

func TestUpdate(t *testing.T) {
	ctx := context.Background()

	appointmentInput := func() Input {
		return Input{
			"caregiver_user_id": "7",
			"member_user_id":    "1",
			"appointment_date":  "2025-10-15",
			"appointment_time":  "14:30",
			"work_hours":        "6",
			"status":            "accepted",
		}
	}

	t.Run("overwrites every form field", func(t *testing.T) {
		engine, _ := newSeededEngine(t)

		require.NoError(t, engine.Update(ctx, "appointments", []string{"1"}, appointmentInput()))

		form, err := engine.EditForm(ctx, "appointments", []string{"1"})
		require.NoError(t, err)
		assert.Equal(t, "7", formValue(t, form, "caregiver_user_id").Value)
		assert.Equal(t, "14:30", formValue(t, form, "appointment_time").Value)
		assert.Equal(t, "6", formValue(t, form, "work_hours").Value)
	})

	t.Run("missing fields become null", func(t *testing.T) {
		engine, _ := newSeededEngine(t)

		in := appointmentInput()
		delete(in, "status")
		require.NoError(t, engine.Update(ctx, "appointments", []string{"2"}, in))

		form, err := engine.EditForm(ctx, "appointments", []string{"2"})
		require.NoError(t, err)
		assert.Empty(t, formValue(t, form, "status").Value)
	})

	t.Run("idempotent", func(t *testing.T) {
		engine, _ := newSeededEngine(t)

		require.NoError(t, engine.Update(ctx, "appointments", []string{"1"}, appointmentInput()))
		first, err := engine.Get(ctx, "appointments", crud.Key{{Field: "appointment_id", Value: 1}})
		require.NoError(t, err)

		require.NoError(t, engine.Update(ctx, "appointments", []string{"1"}, appointmentInput()))
		second, err := engine.Get(ctx, "appointments", crud.Key{{Field: "appointment_id", Value: 1}})
		require.NoError(t, err)

		assert.Equal(t,
			first.(*schema.Bound[models.Appointment]).Value(),
			second.(*schema.Bound[models.Appointment]).Value())
	})

	t.Run("malformed input leaves the record untouched", func(t *testing.T) {
		engine, _ := newSeededEngine(t)

		before, err := engine.EditForm(ctx, "appointments", []string{"1"})
		require.NoError(t, err)

		in := appointmentInput()
		in["work_hours"] = "abc"
		err = engine.Update(ctx, "appointments", []string{"1"}, in)
		assert.ErrorIs(t, err, ErrFormat)

		after, err := engine.EditForm(ctx, "appointments", []string{"1"})
		require.NoError(t, err)
		assert.Equal(t, before.Fields, after.Fields)
	})

	t.Run("primary key fields are identity", func(t *testing.T) {
		engine, _ := newSeededEngine(t)
		in := Input{"caregiver_user_id": "3", "gender": "Male", "caregiving_type": "tutor", "hourly_rate": "9.25"}

		require.NoError(t, engine.Update(ctx, "caregivers", []string{"3"}, in))

		in["caregiver_user_id"] = ""
		require.NoError(t, engine.Update(ctx, "caregivers", []string{"3"}, in))

		in["caregiver_user_id"] = "4"
		in["hourly_rate"] = "99"
		err := engine.Update(ctx, "caregivers", []string{"3"}, in)
		assert.ErrorIs(t, err, ErrKeyMismatch)

		form, err := engine.EditForm(ctx, "caregivers", []string{"3"})
		require.NoError(t, err)
		assert.Equal(t, "9.25", formValue(t, form, "hourly_rate").Value)
		assert.Equal(t, "tutor", formValue(t, form, "caregiving_type").Value)

		// caregiver 4 is untouched
		form, err = engine.EditForm(ctx, "caregivers", []string{"4"})
		require.NoError(t, err)
		assert.Equal(t, "12.00", formValue(t, form, "hourly_rate").Value)
	})

	t.Run("not found", func(t *testing.T) {
		engine, observer := newSeededEngine(t)

		err := engine.Update(ctx, "appointments", []string{"999"}, appointmentInput())
		assert.ErrorIs(t, err, ErrNotFound)
		assert.Equal(t, recordedOp{"appointments", OpUpdate, "not_found"}, observer.last())
	})
}

func TestDelete(t *testing.T) {
	ctx := context.Background()

	t.Run("cascades to dependents", func(t *testing.T) {
		engine, _ := newSeededEngine(t)

		require.NoError(t, engine.Delete(ctx, "jobs", []string{"1"}))

		listing, err := engine.List(ctx, "job_applications")
		require.NoError(t, err)
		assert.Equal(t, []string{"3/2", "5/3", "8/3", "10/2"}, keyStrings(listing))

		_, err = engine.EditForm(ctx, "job_applications", []string{"3", "1"})
		assert.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("deleting a user removes its profiles", func(t *testing.T) {
		engine, _ := newSeededEngine(t)

		require.NoError(t, engine.Delete(ctx, "users", []string{"3"}))

		_, err := engine.EditForm(ctx, "caregivers", []string{"3"})
		assert.ErrorIs(t, err, ErrNotFound)

		n, err := engine.Count(ctx, "appointments")
		require.NoError(t, err)
		assert.Equal(t, int64(3), n)

		n, err = engine.Count(ctx, "job_applications")
		require.NoError(t, err)
		assert.Equal(t, int64(4), n)
	})

	t.Run("composite key", func(t *testing.T) {
		engine, _ := newSeededEngine(t)

		require.NoError(t, engine.Delete(ctx, "job_applications", []string{"10", "2"}))
		n, err := engine.Count(ctx, "job_applications")
		require.NoError(t, err)
		assert.Equal(t, int64(5), n)
	})

	t.Run("not found", func(t *testing.T) {
		engine, _ := newSeededEngine(t)

		assert.ErrorIs(t, engine.Delete(ctx, "jobs", []string{"999"}), ErrNotFound)
		assert.ErrorIs(t, engine.Delete(ctx, "jobs", []string{"x"}), ErrNotFound)
	})
}

func TestDashboard(t *testing.T) {
	engine, _ := newSeededEngine(t)

	counts, err := engine.Dashboard(context.Background())
	require.NoError(t, err)

	got := make(map[string]int64, len(counts))
	var order []string
	for _, c := range counts {
		got[c.Entity.Name] = c.Count
		order = append(order, c.Entity.Name)
	}
	assert.Equal(t, engine.Registry().Names(), order)
	assert.Equal(t, map[string]int64{
		"users":            10,
		"caregivers":       7,
		"members":          3,
		"addresses":        3,
		"jobs":             6,
		"job_applications": 6,
		"appointments":     4,
	}, got)
}

func TestSubmittedForm(t *testing.T) {
	entity, err := models.NewRegistry().Get("caregivers")
	require.NoError(t, err)

	form := SubmittedForm(entity, crud.Key{{Field: "caregiver_user_id", Value: 3}}, Input{
		"caregiver_user_id": "4",
		"hourly_rate":       "abc",
	})
	assert.Equal(t, "3", formValue(t, form, "caregiver_user_id").Value)
	assert.True(t, formValue(t, form, "caregiver_user_id").ReadOnly)
	assert.Equal(t, "abc", formValue(t, form, "hourly_rate").Value)

	form = SubmittedForm(entity, nil, Input{"caregiver_user_id": "4"})
	assert.Equal(t, "4", formValue(t, form, "caregiver_user_id").Value)
	assert.False(t, formValue(t, form, "caregiver_user_id").ReadOnly)
}
