package models

import (
	"database/sql"

	"github.com/shopspring/decimal"

	"github.com/careboard/careboard/internal/codec"
	"github.com/careboard/careboard/internal/orm/schema"
)

// Caregiver is the caregiver profile of a user, keyed by that user's ID.
type Caregiver struct {
	CaregiverUserID sql.Null[int64]
	Photo           sql.Null[string]
	Gender          sql.Null[string]
	CaregivingType  sql.Null[string]
	HourlyRate      sql.Null[decimal.Decimal]
}

var caregiverTable = &schema.Table{
	Name: "caregiver",
	Columns: []schema.ColumnDef{
		{Name: "caregiver_user_id", Parser: codec.ParserInt, NotNull: true},
		{Name: "photo", Parser: codec.ParserString, Length: 255},
		{Name: "gender", Parser: codec.ParserString, Length: 20},
		{Name: "caregiving_type", Parser: codec.ParserString, Length: 50},
		{Name: "hourly_rate", Parser: codec.ParserDecimal, Precision: 6, Scale: 2},
	},
	PrimaryKey: []string{"caregiver_user_id"},
	ForeignKeys: []schema.ForeignKey{
		{Column: "caregiver_user_id", RefTable: "user", RefColumn: "user_id", OnDelete: schema.CascadeCascade},
	},
}

var caregiverFields = schema.Fields[Caregiver]{
	"caregiver_user_id": schema.Field("caregiver_user_id", codec.ParserInt, func(c *Caregiver) *sql.Null[int64] { return &c.CaregiverUserID }),
	"photo":             schema.Field("photo", codec.ParserString, func(c *Caregiver) *sql.Null[string] { return &c.Photo }),
	"gender":            schema.Field("gender", codec.ParserString, func(c *Caregiver) *sql.Null[string] { return &c.Gender }),
	"caregiving_type":   schema.Field("caregiving_type", codec.ParserString, func(c *Caregiver) *sql.Null[string] { return &c.CaregivingType }),
	"hourly_rate":       schema.Field("hourly_rate", codec.ParserDecimal, func(c *Caregiver) *sql.Null[decimal.Decimal] { return &c.HourlyRate }),
}

// Caregivers is the storage model of Caregiver
var Caregivers = schema.MustModel(caregiverTable, caregiverFields)

func caregiversDescriptor() *schema.EntityDescriptor {
	return &schema.EntityDescriptor{
		Name:       "caregivers",
		Title:      "Caregivers",
		PrimaryKey: []string{"caregiver_user_id"},
		ListColumns: []schema.Column{
			{Name: "caregiver_user_id", Label: "User ID"},
			{Name: "gender", Label: "Gender"},
			{Name: "caregiving_type", Label: "Type"},
			{Name: "hourly_rate", Label: "Hourly Rate"},
		},
		FormFields: []schema.FieldDescriptor{
			{Name: "caregiver_user_id", Label: "User ID", InputType: schema.InputNumber, Parser: codec.ParserInt, Required: true},
			{Name: "photo", Label: "Photo URL", InputType: schema.InputText, Parser: codec.ParserString},
			{Name: "gender", Label: "Gender", InputType: schema.InputText, Parser: codec.ParserString},
			{Name: "caregiving_type", Label: "Caregiving Type", InputType: schema.InputText, Parser: codec.ParserString},
			{Name: "hourly_rate", Label: "Hourly Rate", InputType: schema.InputNumber, Parser: codec.ParserDecimal},
		},
		Model: Caregivers,
	}
}
