package models

import (
	"database/sql"

	"github.com/careboard/careboard/internal/codec"
	"github.com/careboard/careboard/internal/orm/schema"
)

// Job is a posting by a member describing the care they need.
type Job struct {
	JobID                  sql.Null[int64]
	MemberUserID           sql.Null[int64]
	RequiredCaregivingType sql.Null[string]
	OtherRequirements      sql.Null[string]
	DatePosted             sql.Null[codec.Date]
}

var jobTable = &schema.Table{
	Name: "job",
	Columns: []schema.ColumnDef{
		{Name: "job_id", Parser: codec.ParserInt, NotNull: true},
		{Name: "member_user_id", Parser: codec.ParserInt, NotNull: true},
		{Name: "required_caregiving_type", Parser: codec.ParserString, Length: 50},
		{Name: "other_requirements", Parser: codec.ParserString},
		{Name: "date_posted", Parser: codec.ParserDate},
	},
	PrimaryKey: []string{"job_id"},
	Identity:   "job_id",
	ForeignKeys: []schema.ForeignKey{
		{Column: "member_user_id", RefTable: "member", RefColumn: "member_user_id", OnDelete: schema.CascadeCascade},
	},
}

var jobFields = schema.Fields[Job]{
	"job_id":                   schema.Field("job_id", codec.ParserInt, func(j *Job) *sql.Null[int64] { return &j.JobID }),
	"member_user_id":           schema.Field("member_user_id", codec.ParserInt, func(j *Job) *sql.Null[int64] { return &j.MemberUserID }),
	"required_caregiving_type": schema.Field("required_caregiving_type", codec.ParserString, func(j *Job) *sql.Null[string] { return &j.RequiredCaregivingType }),
	"other_requirements":       schema.Field("other_requirements", codec.ParserString, func(j *Job) *sql.Null[string] { return &j.OtherRequirements }),
	"date_posted":              schema.Field("date_posted", codec.ParserDate, func(j *Job) *sql.Null[codec.Date] { return &j.DatePosted }),
}

// Jobs is the storage model of Job
var Jobs = schema.MustModel(jobTable, jobFields)

func jobsDescriptor() *schema.EntityDescriptor {
	return &schema.EntityDescriptor{
		Name:       "jobs",
		Title:      "Jobs",
		PrimaryKey: []string{"job_id"},
		ListColumns: []schema.Column{
			{Name: "job_id", Label: "Job ID"},
			{Name: "member_user_id", Label: "Member ID"},
			{Name: "required_caregiving_type", Label: "Type"},
			{Name: "date_posted", Label: "Posted"},
		},
		FormFields: []schema.FieldDescriptor{
			{Name: "member_user_id", Label: "Member ID", InputType: schema.InputNumber, Parser: codec.ParserInt, Required: true},
			{Name: "required_caregiving_type", Label: "Required Type", InputType: schema.InputText, Parser: codec.ParserString},
			{Name: "other_requirements", Label: "Other Requirements", InputType: schema.InputTextarea, Parser: codec.ParserString},
			{Name: "date_posted", Label: "Date Posted", InputType: schema.InputDate, Parser: codec.ParserDate},
		},
		Model: Jobs,
	}
}
