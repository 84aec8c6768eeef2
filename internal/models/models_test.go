package models

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/careboard/careboard/internal/codec"
	"github.com/careboard/careboard/internal/orm/schema"
)

func TestNewRegistry(t *testing.T) {
	registry := NewRegistry()

	assert.Equal(t, []string{
		"users", "caregivers", "members", "addresses", "jobs", "job_applications", "appointments",
	}, registry.Names())

	e, err := registry.Get("job_applications")
	require.NoError(t, err)
	assert.Equal(t, []string{"caregiver_user_id", "job_id"}, e.PrimaryKey)
	assert.Equal(t, "job_application", e.Table().Name)

	_, err = registry.Get("invoices")
	assert.ErrorIs(t, err, schema.ErrUnknownEntity)
}

func TestTables_DependencyOrder(t *testing.T) {
	seen := make(map[string]bool)
	for _, table := range Tables() {
		for _, ref := range table.References() {
			assert.True(t, seen[ref], "%s references %s before it is declared", table.Name, ref)
		}
		seen[table.Name] = true
	}
	assert.Len(t, seen, 7)
}

func TestTables_CascadeEdges(t *testing.T) {
	edges := make(map[string][]string)
	for _, table := range Tables() {
		for _, fk := range table.ForeignKeys {
			require.Equal(t, schema.CascadeCascade, fk.OnDelete, "%s.%s", table.Name, fk.Column)
			edges[fk.RefTable] = append(edges[fk.RefTable], table.Name)
		}
	}

	assert.ElementsMatch(t, []string{"caregiver", "member"}, edges["user"])
	assert.ElementsMatch(t, []string{"job_application", "appointment"}, edges["caregiver"])
	assert.ElementsMatch(t, []string{"address", "job", "appointment"}, edges["member"])
	assert.ElementsMatch(t, []string{"job_application"}, edges["job"])
}

func TestUser_EmailValidation(t *testing.T) {
	rec := Users.Bind(&User{})

	err := rec.Set("email", "raim.mail.com")
	require.Error(t, err)
	assert.True(t, schema.IsValidationError(err))
	assert.False(t, rec.Value().Email.Valid)

	require.NoError(t, rec.Set("email", "raim@mail.com"))
	assert.Equal(t, "raim@mail.com", rec.Value().Email.V)
}

func TestCaregiver_Accessors(t *testing.T) {
	rec := Caregivers.Bind(&Caregiver{})

	rate, err := codec.Decode(codec.ParserDecimal, "7.5")
	require.NoError(t, err)
	require.NoError(t, rec.Set("hourly_rate", rate))
	require.NoError(t, rec.Set("caregiver_user_id", int64(3)))

	assert.True(t, decimal.NewFromFloat(7.5).Equal(rec.Value().HourlyRate.V))

	v, err := rec.Get("hourly_rate")
	require.NoError(t, err)
	assert.Equal(t, "7.50", codec.Encode(codec.ParserDecimal, v))
}

func TestAppointment_Accessors(t *testing.T) {
	rec := Appointments.New()

	at, err := codec.Decode(codec.ParserTime, "09:00")
	require.NoError(t, err)
	require.NoError(t, rec.Set("appointment_time", at))

	v, err := rec.Get("appointment_time")
	require.NoError(t, err)
	assert.Equal(t, codec.Clock{Hour: 9}, v)

	v, err = rec.Get("work_hours")
	require.NoError(t, err)
	assert.Nil(t, v)
}

func TestDescriptors_FormFieldsMatchOriginalLayout(t *testing.T) {
	registry := NewRegistry()

	caregivers, err := registry.Get("caregivers")
	require.NoError(t, err)
	f, ok := caregivers.Field("hourly_rate")
	require.True(t, ok)
	assert.Equal(t, codec.ParserDecimal, f.Parser)
	assert.Equal(t, schema.InputNumber, f.InputType)

	users, err := registry.Get("users")
	require.NoError(t, err)
	assert.Len(t, users.FormFields, 7)
	_, ok = users.Field("user_id")
	assert.False(t, ok, "surrogate key is assigned by the store")

	jobs, err := registry.Get("jobs")
	require.NoError(t, err)
	assert.Equal(t, "jobs", jobs.Name)
	assert.Equal(t, "job_id", jobs.Table().Identity)
}
