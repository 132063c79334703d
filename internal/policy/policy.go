// Package policy holds the pure access and filtering rules of the
// register. Every function here is side-effect free and total: any
// well-typed input yields a result, never a panic or an error.
package policy

import "github.com/sandiara-digital/ged-api/internal/models"

// MaxLevel returns the highest confidentiality level the role may see.
// The switch is exhaustive over the closed role set; anything else maps
// to an invalid level so that every visibility check fails closed.
func MaxLevel(role models.Role) models.Confidentiality {
	switch role {
	case models.RoleMaire:
		return models.ConfidentialityStrictementPrive
	case models.RoleAdministrateur:
		return models.ConfidentialityConfidentiel
	case models.RoleSecretaire:
		return models.ConfidentialityPublic
	}
	return ""
}

// Visible reports whether the role may see the document:
// doc.confidentiality <= maxLevel(role) on the total order
// PUBLIC < CONFIDENTIEL < STRICTEMENT_PRIVE.
func Visible(role models.Role, doc models.Document) bool {
	max := MaxLevel(role)
	if !max.Valid() || !doc.Confidentiality.Valid() {
		return false
	}
	return doc.Confidentiality.Rank() <= max.Rank()
}

// SelectableLevels returns the confidentiality levels the role may use
// as a filter criterion, in ascending order. By construction this is
// exactly the set of levels visible to the role.
func SelectableLevels(role models.Role) []models.Confidentiality {
	max := MaxLevel(role)
	if !max.Valid() {
		return nil
	}
	levels := make([]models.Confidentiality, 0, len(models.ConfidentialityLevels))
	for _, level := range models.ConfidentialityLevels {
		if level.Rank() <= max.Rank() {
			levels = append(levels, level)
		}
	}
	return levels
}

// Selectable reports whether the role may filter by the given level.
func Selectable(role models.Role, level models.Confidentiality) bool {
	if !level.Valid() {
		return false
	}
	max := MaxLevel(role)
	return max.Valid() && level.Rank() <= max.Rank()
}
