// Package models declares the caregiver platform entities: typed records,
// their tables and the descriptors that drive the generic CRUD pages.
package models

import "github.com/careboard/careboard/internal/orm/schema"

// NewRegistry returns a registry holding every entity in navigation order.
func NewRegistry() *schema.Registry {
	registry := schema.NewRegistry()
	for _, e := range []*schema.EntityDescriptor{
		usersDescriptor(),
		caregiversDescriptor(),
		membersDescriptor(),
		addressesDescriptor(),
		jobsDescriptor(),
		jobApplicationsDescriptor(),
		appointmentsDescriptor(),
	} {
		registry.MustRegister(e)
	}
	return registry
}

// Tables returns every table in dependency order: a table is listed after
// every table it references.
func Tables() []*schema.Table {
	return []*schema.Table{
		Users.Table(),
		Caregivers.Table(),
		Members.Table(),
		Addresses.Table(),
		Jobs.Table(),
		JobApplications.Table(),
		Appointments.Table(),
	}
}
