package resource

import (
	"github.com/careboard/careboard/internal/codec"
	"github.com/careboard/careboard/internal/orm/crud"
	"github.com/careboard/careboard/internal/orm/schema"
)

// Input is submitted form data: a flat text-keyed mapping. Keys that are not
// declared form fields are ignored; a missing key reads as empty text.
type Input map[string]string

// FormField is one form field with its current text
type FormField struct {
	schema.FieldDescriptor
	Value    string
	ReadOnly bool
}

// Form is the data needed to render a create or edit form. Key is nil for
// create.
type Form struct {
	Entity *schema.EntityDescriptor
	Key    crud.Key
	Fields []FormField
}

// IsEdit reports whether the form edits an existing record
func (f *Form) IsEdit() bool {
	return f.Key != nil
}

// decoded is a submission decoded field by field, before any record is
// touched
type decoded struct {
	names  []string
	values map[string]any
}

// decodeInput decodes every declared form field in declaration order. The
// first malformed value aborts with a *codec.FormatError.
func decodeInput(e *schema.EntityDescriptor, in Input) (*decoded, error) {
	d := &decoded{
		names:  make([]string, 0, len(e.FormFields)),
		values: make(map[string]any, len(e.FormFields)),
	}
	for _, f := range e.FormFields {
		v, err := codec.DecodeField(f.Name, f.Parser, in[f.Name])
		if err != nil {
			return nil, err
		}
		d.names = append(d.names, f.Name)
		d.values[f.Name] = v
	}
	return d, nil
}

// blankForm returns the form fields with empty values
func blankForm(e *schema.EntityDescriptor) *Form {
	form := &Form{Entity: e, Fields: make([]FormField, len(e.FormFields))}
	for i, f := range e.FormFields {
		form.Fields[i] = FormField{FieldDescriptor: f}
	}
	return form
}

// recordForm fills the form fields from a stored record
func recordForm(e *schema.EntityDescriptor, key crud.Key, rec schema.Record) (*Form, error) {
	form := &Form{Entity: e, Key: key, Fields: make([]FormField, len(e.FormFields))}
	for i, f := range e.FormFields {
		v, err := rec.Get(f.Name)
		if err != nil {
			return nil, err
		}
		form.Fields[i] = FormField{
			FieldDescriptor: f,
			Value:           codec.Encode(f.Parser, v),
			ReadOnly:        e.IsKeyField(f.Name),
		}
	}
	return form, nil
}

// SubmittedForm rebuilds a form from rejected input so it can be shown again
// with the values the user typed. key is nil for create.
func SubmittedForm(e *schema.EntityDescriptor, key crud.Key, in Input) *Form {
	form := &Form{Entity: e, Key: key, Fields: make([]FormField, len(e.FormFields))}
	keyValues := key.Map()
	for i, f := range e.FormFields {
		field := FormField{FieldDescriptor: f, Value: in[f.Name]}
		if key != nil && e.IsKeyField(f.Name) {
			field.ReadOnly = true
			field.Value = codec.Encode(codec.ParserInt, keyValues[f.Name])
		}
		form.Fields[i] = field
	}
	return form
}
