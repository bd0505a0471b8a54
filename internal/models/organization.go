package models

import (
	"slices"
	"time"
)

// OrganizationTypeLegalEntity marks an organization provisioned under a legal-entity master.
const OrganizationTypeLegalEntity = "LE_ORG"

// Organization represents a tenant in the system, keyed by its tenant key.
// Admins and Viewers hold opaque identity strings and are kept disjoint.
type Organization struct {
	TenantKey         string    `dynamodbav:"client_name" json:"client_name"`
	Name              string    `dynamodbav:"organization_name" json:"organization_name"`
	CreatedAt         time.Time `dynamodbav:"created_at" json:"created_at"`
	CreatedBy         string    `dynamodbav:"created_by,omitempty" json:"created_by,omitempty"`
	OwnerEmail        string    `dynamodbav:"owner_email,omitempty" json:"owner_email,omitempty"`
	Admins            []string  `dynamodbav:"admins,stringset,omitempty" json:"admins"`
	Viewers           []string  `dynamodbav:"viewers,stringset,omitempty" json:"viewers"`
	LegalEntityMaster string    `dynamodbav:"le_master,omitempty" json:"le_master,omitempty"`
	Type              string    `dynamodbav:"type,omitempty" json:"type,omitempty"`
	PartnerCode       string    `dynamodbav:"partner_code,omitempty" json:"partner_code,omitempty"`
	Profile           Profile   `dynamodbav:"profile" json:"profile"`
}

// Profile is the free-form profiling data attached to an organization.
type Profile struct {
	Sector               string   `dynamodbav:"sector,omitempty" json:"sector,omitempty"`
	WebsiteURL           string   `dynamodbav:"website_url,omitempty" json:"website_url,omitempty"`
	CountriesOfOperation []string `dynamodbav:"countries_of_operation,omitempty" json:"countries_of_operation,omitempty"`
	HomeURL              string   `dynamodbav:"home_url,omitempty" json:"home_url,omitempty"`
	AboutUsURL           string   `dynamodbav:"about_us_url,omitempty" json:"about_us_url,omitempty"`
	AdditionalDetails    string   `dynamodbav:"additional_details,omitempty" json:"additional_details,omitempty"`
}

// IsLegalEntity returns true for organizations managed by a legal-entity master.
func (o *Organization) IsLegalEntity() bool {
	return o.Type == OrganizationTypeLegalEntity
}

// IsAdmin returns true if id is in the admin set.
func (o *Organization) IsAdmin(id string) bool {
	return id != "" && slices.Contains(o.Admins, id)
}

// IsViewer returns true if id is in the viewer set.
func (o *Organization) IsViewer(id string) bool {
	return id != "" && slices.Contains(o.Viewers, id)
}

// IsMember returns true if id is in either set.
func (o *Organization) IsMember(id string) bool {
	return o.IsAdmin(id) || o.IsViewer(id)
}

// AddAdmin adds id to the admin set, removing it from the viewers.
func (o *Organization) AddAdmin(id string) {
	o.Viewers = slices.DeleteFunc(o.Viewers, func(v string) bool { return v == id })
	if !slices.Contains(o.Admins, id) {
		o.Admins = append(o.Admins, id)
	}
}

// AddViewer adds id to the viewer set, removing it from the admins.
func (o *Organization) AddViewer(id string) {
	o.Admins = slices.DeleteFunc(o.Admins, func(v string) bool { return v == id })
	if !slices.Contains(o.Viewers, id) {
		o.Viewers = append(o.Viewers, id)
	}
}

// RemoveIdentity drops id from both sets.
func (o *Organization) RemoveIdentity(id string) {
	o.Admins = slices.DeleteFunc(o.Admins, func(v string) bool { return v == id })
	o.Viewers = slices.DeleteFunc(o.Viewers, func(v string) bool { return v == id })
}

// Clone returns a deep copy.
func (o *Organization) Clone() *Organization {
	c := *o
	c.Admins = slices.Clone(o.Admins)
	c.Viewers = slices.Clone(o.Viewers)
	c.Profile.CountriesOfOperation = slices.Clone(o.Profile.CountriesOfOperation)
	return &c
}
