package models

import (
	"database/sql"

	"github.com/careboard/careboard/internal/codec"
	"github.com/careboard/careboard/internal/orm/schema"
)

// JobApplication links a caregiver to a job they applied for. It is keyed
// by the (caregiver, job) pair.
type JobApplication struct {
	CaregiverUserID sql.Null[int64]
	JobID           sql.Null[int64]
	DateApplied     sql.Null[codec.Date]
}

var jobApplicationTable = &schema.Table{
	Name: "job_application",
	Columns: []schema.ColumnDef{
		{Name: "caregiver_user_id", Parser: codec.ParserInt, NotNull: true},
		{Name: "job_id", Parser: codec.ParserInt, NotNull: true},
		{Name: "date_applied", Parser: codec.ParserDate},
	},
	PrimaryKey: []string{"caregiver_user_id", "job_id"},
	ForeignKeys: []schema.ForeignKey{
		{Column: "caregiver_user_id", RefTable: "caregiver", RefColumn: "caregiver_user_id", OnDelete: schema.CascadeCascade},
		{Column: "job_id", RefTable: "job", RefColumn: "job_id", OnDelete: schema.CascadeCascade},
	},
}

var jobApplicationFields = schema.Fields[JobApplication]{
	"caregiver_user_id": schema.Field("caregiver_user_id", codec.ParserInt, func(a *JobApplication) *sql.Null[int64] { return &a.CaregiverUserID }),
	"job_id":            schema.Field("job_id", codec.ParserInt, func(a *JobApplication) *sql.Null[int64] { return &a.JobID }),
	"date_applied":      schema.Field("date_applied", codec.ParserDate, func(a *JobApplication) *sql.Null[codec.Date] { return &a.DateApplied }),
}

// JobApplications is the storage model of JobApplication
var JobApplications = schema.MustModel(jobApplicationTable, jobApplicationFields)

func jobApplicationsDescriptor() *schema.EntityDescriptor {
	return &schema.EntityDescriptor{
		Name:       "job_applications",
		Title:      "Job Applications",
		PrimaryKey: []string{"caregiver_user_id", "job_id"},
		ListColumns: []schema.Column{
			{Name: "caregiver_user_id", Label: "Caregiver ID"},
			{Name: "job_id", Label: "Job ID"},
			{Name: "date_applied", Label: "Applied"},
		},
		FormFields: []schema.FieldDescriptor{
			{Name: "caregiver_user_id", Label: "Caregiver ID", InputType: schema.InputNumber, Parser: codec.ParserInt, Required: true},
			{Name: "job_id", Label: "Job ID", InputType: schema.InputNumber, Parser: codec.ParserInt, Required: true},
			{Name: "date_applied", Label: "Date Applied", InputType: schema.InputDate, Parser: codec.ParserDate},
		},
		Model: JobApplications,
	}
}
