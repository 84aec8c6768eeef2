package models

import (
	"database/sql"

	"github.com/careboard/careboard/internal/codec"
	"github.com/careboard/careboard/internal/orm/schema"
)

// Member is the profile of a user looking for care.
type Member struct {
	MemberUserID         sql.Null[int64]
	HouseRules           sql.Null[string]
	DependentDescription sql.Null[string]
}

var memberTable = &schema.Table{
	Name: "member",
	Columns: []schema.ColumnDef{
		{Name: "member_user_id", Parser: codec.ParserInt, NotNull: true},
		{Name: "house_rules", Parser: codec.ParserString},
		{Name: "dependent_description", Parser: codec.ParserString},
	},
	PrimaryKey: []string{"member_user_id"},
	ForeignKeys: []schema.ForeignKey{
		{Column: "member_user_id", RefTable: "user", RefColumn: "user_id", OnDelete: schema.CascadeCascade},
	},
}

var memberFields = schema.Fields[Member]{
	"member_user_id":        schema.Field("member_user_id", codec.ParserInt, func(m *Member) *sql.Null[int64] { return &m.MemberUserID }),
	"house_rules":           schema.Field("house_rules", codec.ParserString, func(m *Member) *sql.Null[string] { return &m.HouseRules }),
	"dependent_description": schema.Field("dependent_description", codec.ParserString, func(m *Member) *sql.Null[string] { return &m.DependentDescription }),
}

// Members is the storage model of Member
var Members = schema.MustModel(memberTable, memberFields)

func membersDescriptor() *schema.EntityDescriptor {
	return &schema.EntityDescriptor{
		Name:       "members",
		Title:      "Members",
		PrimaryKey: []string{"member_user_id"},
		ListColumns: []schema.Column{
			{Name: "member_user_id", Label: "User ID"},
			{Name: "house_rules", Label: "House Rules"},
			{Name: "dependent_description", Label: "Dependent"},
		},
		FormFields: []schema.FieldDescriptor{
			{Name: "member_user_id", Label: "User ID", InputType: schema.InputNumber, Parser: codec.ParserInt, Required: true},
			{Name: "house_rules", Label: "House Rules", InputType: schema.InputTextarea, Parser: codec.ParserString},
			{Name: "dependent_description", Label: "Dependent Description", InputType: schema.InputTextarea, Parser: codec.ParserString},
		},
		Model: Members,
	}
}
