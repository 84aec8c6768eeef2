package models

import (
	"database/sql"

	"github.com/careboard/careboard/internal/codec"
	"github.com/careboard/careboard/internal/orm/schema"
)

// Address is the home address of a member; one per member.
type Address struct {
	MemberUserID sql.Null[int64]
	HouseNumber  sql.Null[string]
	Street       sql.Null[string]
	Town         sql.Null[string]
}

var addressTable = &schema.Table{
	Name: "address",
	Columns: []schema.ColumnDef{
		{Name: "member_user_id", Parser: codec.ParserInt, NotNull: true},
		{Name: "house_number", Parser: codec.ParserString, Length: 20},
		{Name: "street", Parser: codec.ParserString, Length: 100},
		{Name: "town", Parser: codec.ParserString, Length: 100},
	},
	PrimaryKey: []string{"member_user_id"},
	ForeignKeys: []schema.ForeignKey{
		{Column: "member_user_id", RefTable: "member", RefColumn: "member_user_id", OnDelete: schema.CascadeCascade},
	},
}

var addressFields = schema.Fields[Address]{
	"member_user_id": schema.Field("member_user_id", codec.ParserInt, func(a *Address) *sql.Null[int64] { return &a.MemberUserID }),
	"house_number":   schema.Field("house_number", codec.ParserString, func(a *Address) *sql.Null[string] { return &a.HouseNumber }),
	"street":         schema.Field("street", codec.ParserString, func(a *Address) *sql.Null[string] { return &a.Street }),
	"town":           schema.Field("town", codec.ParserString, func(a *Address) *sql.Null[string] { return &a.Town }),
}

// Addresses is the storage model of Address
var Addresses = schema.MustModel(addressTable, addressFields)

func addressesDescriptor() *schema.EntityDescriptor {
	return &schema.EntityDescriptor{
		Name:       "addresses",
		Title:      "Addresses",
		PrimaryKey: []string{"member_user_id"},
		ListColumns: []schema.Column{
			{Name: "member_user_id", Label: "Member ID"},
			{Name: "house_number", Label: "House #"},
			{Name: "street", Label: "Street"},
			{Name: "town", Label: "Town"},
		},
		FormFields: []schema.FieldDescriptor{
			{Name: "member_user_id", Label: "Member ID", InputType: schema.InputNumber, Parser: codec.ParserInt, Required: true},
			{Name: "house_number", Label: "House Number", InputType: schema.InputText, Parser: codec.ParserString},
			{Name: "street", Label: "Street", InputType: schema.InputText, Parser: codec.ParserString},
			{Name: "town", Label: "Town", InputType: schema.InputText, Parser: codec.ParserString},
		},
		Model: Addresses,
	}
}
