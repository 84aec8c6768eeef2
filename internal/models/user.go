package models

import (
	"database/sql"
	"errors"
	"strings"

	"github.com/careboard/careboard/internal/codec"
	"github.com/careboard/careboard/internal/orm/schema"
)

// User is a person registered on the platform. A user may hold a caregiver
// profile, a member profile, or both.
type User struct {
	UserID             sql.Null[int64]
	Email              sql.Null[string]
	GivenName          sql.Null[string]
	Surname            sql.Null[string]
	City               sql.Null[string]
	PhoneNumber        sql.Null[string]
	ProfileDescription sql.Null[string]
	Password           sql.Null[string]
}

// ErrEmailFormat is returned for an email value without '@'
var ErrEmailFormat = errors.New("email must contain @")

func validateEmail(email string) error {
	if !strings.Contains(email, "@") {
		return ErrEmailFormat
	}
	return nil
}

var userTable = &schema.Table{
	Name: "user",
	Columns: []schema.ColumnDef{
		{Name: "user_id", Parser: codec.ParserInt, NotNull: true},
		{Name: "email", Parser: codec.ParserString, Length: 255, NotNull: true, Unique: true},
		{Name: "given_name", Parser: codec.ParserString, Length: 100, NotNull: true},
		{Name: "surname", Parser: codec.ParserString, Length: 100, NotNull: true},
		{Name: "city", Parser: codec.ParserString, Length: 100},
		{Name: "phone_number", Parser: codec.ParserString, Length: 20},
		{Name: "profile_description", Parser: codec.ParserString},
		{Name: "password", Parser: codec.ParserString, Length: 255, NotNull: true},
	},
	PrimaryKey: []string{"user_id"},
	Identity:   "user_id",
}

var userFields = schema.Fields[User]{
	"user_id":             schema.Field("user_id", codec.ParserInt, func(u *User) *sql.Null[int64] { return &u.UserID }),
	"email":               schema.Field("email", codec.ParserString, func(u *User) *sql.Null[string] { return &u.Email }, validateEmail),
	"given_name":          schema.Field("given_name", codec.ParserString, func(u *User) *sql.Null[string] { return &u.GivenName }),
	"surname":             schema.Field("surname", codec.ParserString, func(u *User) *sql.Null[string] { return &u.Surname }),
	"city":                schema.Field("city", codec.ParserString, func(u *User) *sql.Null[string] { return &u.City }),
	"phone_number":        schema.Field("phone_number", codec.ParserString, func(u *User) *sql.Null[string] { return &u.PhoneNumber }),
	"profile_description": schema.Field("profile_description", codec.ParserString, func(u *User) *sql.Null[string] { return &u.ProfileDescription }),
	"password":            schema.Field("password", codec.ParserString, func(u *User) *sql.Null[string] { return &u.Password }),
}

// Users is the storage model of User
var Users = schema.MustModel(userTable, userFields)

func usersDescriptor() *schema.EntityDescriptor {
	return &schema.EntityDescriptor{
		Name:       "users",
		Title:      "Users",
		PrimaryKey: []string{"user_id"},
		ListColumns: []schema.Column{
			{Name: "user_id", Label: "ID"},
			{Name: "email", Label: "Email"},
			{Name: "given_name", Label: "Given Name"},
			{Name: "surname", Label: "Surname"},
			{Name: "city", Label: "City"},
		},
		FormFields: []schema.FieldDescriptor{
			{Name: "email", Label: "Email", InputType: schema.InputEmail, Parser: codec.ParserString, Required: true},
			{Name: "given_name", Label: "Given Name", InputType: schema.InputText, Parser: codec.ParserString, Required: true},
			{Name: "surname", Label: "Surname", InputType: schema.InputText, Parser: codec.ParserString, Required: true},
			{Name: "city", Label: "City", InputType: schema.InputText, Parser: codec.ParserString},
			{Name: "phone_number", Label: "Phone Number", InputType: schema.InputText, Parser: codec.ParserString},
			{Name: "profile_description", Label: "Profile Description", InputType: schema.InputTextarea, Parser: codec.ParserString},
			{Name: "password", Label: "Password", InputType: schema.InputText, Parser: codec.ParserString, Required: true},
		},
		Model: Users,
	}
}
