package router

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/careboard/careboard/internal/orm/schema"
)

// Operation is one of the generated entity operations
type Operation int

const (
	// OpList renders the list page (GET /E)
	OpList Operation = iota
	// OpNew renders the create form (GET /E/create)
	OpNew
	// OpCreate submits the create form (POST /E/create)
	OpCreate
	// OpEdit renders the edit form (GET /E/edit/{pk...})
	OpEdit
	// OpUpdate submits the edit form (POST /E/edit/{pk...})
	OpUpdate
	// OpDelete deletes a record (POST /E/delete/{pk...})
	OpDelete
)

// String returns the operation name used in route names
func (o Operation) String() string {
	switch o {
	case OpList:
		return "list"
	case OpNew:
		return "new"
	case OpCreate:
		return "create"
	case OpEdit:
		return "edit"
	case OpUpdate:
		return "update"
	case OpDelete:
		return "delete"
	default:
		return "unknown"
	}
}

// EntityHandlers holds the handlers of one entity's routes
type EntityHandlers struct {
	List   http.HandlerFunc
	New    http.HandlerFunc
	Create http.HandlerFunc
	Edit   http.HandlerFunc
	Update http.HandlerFunc
	Delete http.HandlerFunc
}

func (h *EntityHandlers) handler(op Operation) http.HandlerFunc {
	switch op {
	case OpList:
		return h.List
	case OpNew:
		return h.New
	case OpCreate:
		return h.Create
	case OpEdit:
		return h.Edit
	case OpUpdate:
		return h.Update
	case OpDelete:
		return h.Delete
	default:
		return nil
	}
}

var entityOperations = []Operation{OpList, OpNew, OpCreate, OpEdit, OpUpdate, OpDelete}

// RegisterEntity generates the six routes of an entity, named
// "{entity}.{operation}". Key routes carry one path segment per primary-key
// field, in declaration order, named after the field.
func (r *Router) RegisterEntity(e *schema.EntityDescriptor, handlers EntityHandlers) error {
	base := "/" + e.Name
	keyPath := KeyPattern(e)

	for _, op := range entityOperations {
		handler := handlers.handler(op)
		if handler == nil {
			return fmt.Errorf("entity %s: missing %s handler", e.Name, op)
		}

		var route *Route
		switch op {
		case OpList:
			route = r.Get(base, handler)
		case OpNew:
			route = r.Get(base+"/create", handler)
		case OpCreate:
			route = r.Post(base+"/create", handler)
		case OpEdit:
			route = r.Get(base+"/edit/"+keyPath, handler)
		case OpUpdate:
			route = r.Post(base+"/edit/"+keyPath, handler)
		case OpDelete:
			route = r.Post(base+"/delete/"+keyPath, handler)
		}

		route.Entity = e.Name
		route.Operation = op
		if _, err := r.Named(route, RouteName(e.Name, op)); err != nil {
			return err
		}
	}
	return nil
}

// RouteName is the name of an entity route
func RouteName(entity string, op Operation) string {
	return entity + "." + op.String()
}

// KeyPattern returns the key placeholders of an entity, e.g.
// "{caregiver_user_id}/{job_id}"
func KeyPattern(e *schema.EntityDescriptor) string {
	parts := make([]string, len(e.PrimaryKey))
	for i, field := range e.PrimaryKey {
		parts[i] = "{" + field + "}"
	}
	return strings.Join(parts, "/")
}
