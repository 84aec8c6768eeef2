package models

import (
	"database/sql"

	"github.com/careboard/careboard/internal/codec"
	"github.com/careboard/careboard/internal/orm/schema"
)

// Appointment is a scheduled visit of a caregiver to a member.
type Appointment struct {
	AppointmentID   sql.Null[int64]
	CaregiverUserID sql.Null[int64]
	MemberUserID    sql.Null[int64]
	AppointmentDate sql.Null[codec.Date]
	AppointmentTime sql.Null[codec.Clock]
	WorkHours       sql.Null[int64]
	Status          sql.Null[string]
}

var appointmentTable = &schema.Table{
	Name: "appointment",
	Columns: []schema.ColumnDef{
		{Name: "appointment_id", Parser: codec.ParserInt, NotNull: true},
		{Name: "caregiver_user_id", Parser: codec.ParserInt, NotNull: true},
		{Name: "member_user_id", Parser: codec.ParserInt, NotNull: true},
		{Name: "appointment_date", Parser: codec.ParserDate},
		{Name: "appointment_time", Parser: codec.ParserTime},
		{Name: "work_hours", Parser: codec.ParserInt},
		{Name: "status", Parser: codec.ParserString, Length: 20},
	},
	PrimaryKey: []string{"appointment_id"},
	Identity:   "appointment_id",
	ForeignKeys: []schema.ForeignKey{
		{Column: "caregiver_user_id", RefTable: "caregiver", RefColumn: "caregiver_user_id", OnDelete: schema.CascadeCascade},
		{Column: "member_user_id", RefTable: "member", RefColumn: "member_user_id", OnDelete: schema.CascadeCascade},
	},
}

var appointmentFields = schema.Fields[Appointment]{
	"appointment_id":    schema.Field("appointment_id", codec.ParserInt, func(a *Appointment) *sql.Null[int64] { return &a.AppointmentID }),
	"caregiver_user_id": schema.Field("caregiver_user_id", codec.ParserInt, func(a *Appointment) *sql.Null[int64] { return &a.CaregiverUserID }),
	"member_user_id":    schema.Field("member_user_id", codec.ParserInt, func(a *Appointment) *sql.Null[int64] { return &a.MemberUserID }),
	"appointment_date":  schema.Field("appointment_date", codec.ParserDate, func(a *Appointment) *sql.Null[codec.Date] { return &a.AppointmentDate }),
	"appointment_time":  schema.Field("appointment_time", codec.ParserTime, func(a *Appointment) *sql.Null[codec.Clock] { return &a.AppointmentTime }),
	"work_hours":        schema.Field("work_hours", codec.ParserInt, func(a *Appointment) *sql.Null[int64] { return &a.WorkHours }),
	"status":            schema.Field("status", codec.ParserString, func(a *Appointment) *sql.Null[string] { return &a.Status }),
}

// Appointments is the storage model of Appointment
var Appointments = schema.MustModel(appointmentTable, appointmentFields)

func appointmentsDescriptor() *schema.EntityDescriptor {
	return &schema.EntityDescriptor{
		Name:       "appointments",
		Title:      "Appointments",
		PrimaryKey: []string{"appointment_id"},
		ListColumns: []schema.Column{
			{Name: "appointment_id", Label: "Appointment ID"},
			{Name: "caregiver_user_id", Label: "Caregiver ID"},
			{Name: "member_user_id", Label: "Member ID"},
			{Name: "appointment_date", Label: "Date"},
			{Name: "status", Label: "Status"},
		},
		FormFields: []schema.FieldDescriptor{
			{Name: "caregiver_user_id", Label: "Caregiver ID", InputType: schema.InputNumber, Parser: codec.ParserInt, Required: true},
			{Name: "member_user_id", Label: "Member ID", InputType: schema.InputNumber, Parser: codec.ParserInt, Required: true},
			{Name: "appointment_date", Label: "Date", InputType: schema.InputDate, Parser: codec.ParserDate},
			{Name: "appointment_time", Label: "Time", InputType: schema.InputTime, Parser: codec.ParserTime},
			{Name: "work_hours", Label: "Work Hours", InputType: schema.InputNumber, Parser: codec.ParserInt},
			{Name: "status", Label: "Status", InputType: schema.InputText, Parser: codec.ParserString},
		},
		Model: Appointments,
	}
}
