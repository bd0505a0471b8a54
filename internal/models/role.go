package models

import "slices"

// RoleDefinition is an entry in the platform role catalogue.
type RoleDefinition struct {
	RoleID      string   `dynamodbav:"role_id" json:"role_id" yaml:"role_id"`
	Name        string   `dynamodbav:"name" json:"name" yaml:"name"`
	Description string   `dynamodbav:"description,omitempty" json:"description,omitempty" yaml:"description"`
	Permissions []string `dynamodbav:"permissions" json:"permissions" yaml:"permissions"`
}

func (r *RoleDefinition) Clone() *RoleDefinition {
	c := *r
	c.Permissions = slices.Clone(r.Permissions)
	return &c
}
