package migrate

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/careboard/careboard/internal/models"
	"github.com/careboard/careboard/internal/orm/dialect"
)

func TestGenerator_CreateTable(t *testing.T) {
	t.Run("composite key with foreign keys", func(t *testing.T) {
		gen := NewGenerator(dialect.Postgres{})
		want := `CREATE TABLE IF NOT EXISTS "job_application" (
  "caregiver_user_id" INTEGER NOT NULL,
  "job_id" INTEGER NOT NULL,
  "date_applied" DATE,
  PRIMARY KEY ("caregiver_user_id", "job_id"),
  FOREIGN KEY ("caregiver_user_id") REFERENCES "caregiver" ("caregiver_user_id") ON DELETE CASCADE,
  FOREIGN KEY ("job_id") REFERENCES "job" ("job_id") ON DELETE CASCADE
)`
		assert.Equal(t, want, gen.CreateTable(models.JobApplications.Table()))
	})

	t.Run("identity column per dialect", func(t *testing.T) {
		pg := NewGenerator(dialect.Postgres{}).CreateTable(models.Users.Table())
		assert.Contains(t, pg, `"user_id" SERIAL NOT NULL`)
		assert.Contains(t, pg, `"email" VARCHAR(255) NOT NULL UNIQUE`)
		assert.Contains(t, pg, `PRIMARY KEY ("user_id")`)

		lite := NewGenerator(dialect.SQLite{}).CreateTable(models.Users.Table())
		assert.Contains(t, lite, `"user_id" INTEGER NOT NULL`)
	})

	t.Run("decimal and time columns", func(t *testing.T) {
		gen := NewGenerator(dialect.SQLite{})
		assert.Contains(t, gen.CreateTable(models.Caregivers.Table()), `"hourly_rate" NUMERIC(6,2)`)
		assert.Contains(t, gen.CreateTable(models.Appointments.Table()), `"appointment_time" TIME`)
	})
}

func TestGenerator_Migration(t *testing.T) {
	gen := NewGenerator(dialect.SQLite{})
	tables := models.Tables()

	m := gen.Migration(1, "create_tables", tables)
	require.Len(t, m.Up, len(tables))
	require.Len(t, m.Down, len(tables))

	assert.Contains(t, m.Up[0], `"user"`)
	assert.Equal(t, `DROP TABLE IF EXISTS "appointment"`, m.Down[0])
	assert.Equal(t, `DROP TABLE IF EXISTS "user"`, m.Down[len(m.Down)-1])
}
