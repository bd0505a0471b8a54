package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/wolfeidau/tenancy/internal/models"
	"github.com/wolfeidau/tenancy/internal/quota"
	"github.com/wolfeidau/tenancy/internal/roles"
)

// Catalogue is the seed data for the tier and role tables.
type Catalogue struct {
	Tiers []*models.Tier           `yaml:"tiers"`
	Roles []*models.RoleDefinition `yaml:"roles"`
}

// DefaultCatalogue holds the built-in tiers and no roles.
func DefaultCatalogue() *Catalogue {
	return &Catalogue{Tiers: models.DefaultTiers(), Roles: []*models.RoleDefinition{}}
}

// LoadCatalogue reads a YAML catalogue file. An empty path yields the default catalogue.
func LoadCatalogue(path string) (*Catalogue, error) {
	if path == "" {
		return DefaultCatalogue(), nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read catalogue file: %w", err)
	}

	return ParseCatalogue(data)
}

// ParseCatalogue decodes and validates a YAML catalogue.
func ParseCatalogue(data []byte) (*Catalogue, error) {
	var cat Catalogue
	if err := yaml.Unmarshal(data, &cat); err != nil {
		return nil, fmt.Errorf("failed to parse YAML catalogue: %w", err)
	}

	seen := make(map[models.TierCode]bool, len(cat.Tiers))
	for i, tier := range cat.Tiers {
		if tier == nil {
			return nil, fmt.Errorf("tiers[%d]: empty entry", i)
		}
		if err := quota.ValidateTier(tier); err != nil {
			return nil, fmt.Errorf("tiers[%d]: %w", i, err)
		}
		if seen[tier.Code] {
			return nil, fmt.Errorf("tiers[%d]: duplicate tier %s", i, tier.Code)
		}
		seen[tier.Code] = true
		if tier.AllowedTabs == nil {
			tier.AllowedTabs = []string{}
		}
	}

	ids := make(map[string]bool, len(cat.Roles))
	for i, role := range cat.Roles {
		if role == nil {
			return nil, fmt.Errorf("roles[%d]: empty entry", i)
		}
		if err := roles.Validate(role); err != nil {
			return nil, fmt.Errorf("roles[%d]: %w", i, err)
		}
		if ids[role.RoleID] {
			return nil, fmt.Errorf("roles[%d]: duplicate role %s", i, role.RoleID)
		}
		ids[role.RoleID] = true
	}

	if cat.Tiers == nil {
		cat.Tiers = []*models.Tier{}
	}
	if cat.Roles == nil {
		cat.Roles = []*models.RoleDefinition{}
	}

	return &cat, nil
}
