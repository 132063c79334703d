package models

import (
	"strings"
	"time"

	"gorm.io/gorm"
)

// Confidentiality is the ordered classification gating document visibility.
type Confidentiality string

const (
	ConfidentialityPublic           Confidentiality = "PUBLIC"
	ConfidentialityConfidentiel     Confidentiality = "CONFIDENTIEL"
	ConfidentialityStrictementPrive Confidentiality = "STRICTEMENT_PRIVE"
)

// ConfidentialityLevels lists the levels in ascending order of restriction.
var ConfidentialityLevels = []Confidentiality{
	ConfidentialityPublic,
	ConfidentialityConfidentiel,
	ConfidentialityStrictementPrive,
}

// Rank returns the position of the level in the total order
// PUBLIC < CONFIDENTIEL < STRICTEMENT_PRIVE. Unknown levels rank below
// PUBLIC so that comparisons against them always fail closed.
func (c Confidentiality) Rank() int {
	switch c {
	case ConfidentialityPublic:
		return 0
	case ConfidentialityConfidentiel:
		return 1
	case ConfidentialityStrictementPrive:
		return 2
	}
	return -1
}

// Valid reports whether the level is one of the closed set.
func (c Confidentiality) Valid() bool {
	return c.Rank() >= 0
}

// DocStatus tracks a document through its lifecycle.
type DocStatus string

const (
	StatusRecu    DocStatus = "RECU"
	StatusEnCours DocStatus = "EN_COURS"
	StatusValide  DocStatus = "VALIDE"
	StatusArchive DocStatus = "ARCHIVE"
)

// Signable reports whether the document may still be signed into VALIDE.
func (s DocStatus) Signable() bool {
	return s == StatusRecu || s == StatusEnCours
}

// Category is the closed classification set for registered documents.
type Category string

const (
	CategoryCourrierEntrant Category = "Courrier Entrant"
	CategoryCourrierSortant Category = "Courrier Sortant"
	CategoryArreteMunicipal Category = "Arrêté Municipal"
	CategoryDeliberation    Category = "Délibération"
	CategoryNoteInterne     Category = "Note Interne"
	CategoryDossierFoncier  Category = "Dossier Foncier"
	CategoryAutre           Category = "Autre"
)

// Categories lists every category the register recognises.
var Categories = []Category{
	CategoryCourrierEntrant,
	CategoryCourrierSortant,
	CategoryArreteMunicipal,
	CategoryDeliberation,
	CategoryNoteInterne,
	CategoryDossierFoncier,
	CategoryAutre,
}

// ParseCategory clamps free-form input (typically AI output) to the closed
// category set, falling back to Autre.
func ParseCategory(raw string) Category {
	candidate := strings.TrimSpace(raw)
	for _, category := range Categories {
		if strings.EqualFold(candidate, string(category)) {
			return category
		}
	}
	return CategoryAutre
}

// Document is the managed administrative record. Created at registration,
// mutated only to bump the view counter on consultation or to advance the
// status on signature. Never deleted.
type Document struct {
	ID              string          `gorm:"primaryKey;size:64" json:"id"`
	Title           string          `gorm:"size:255;not null" json:"title"`
	Description     string          `gorm:"type:text" json:"description"`
	Category        Category        `gorm:"size:64;not null" json:"category"`
	Service         string          `gorm:"size:128" json:"service"`
	Sender          string          `gorm:"size:128" json:"sender"`
	ReceivedAt      time.Time       `gorm:"index" json:"received_at"`
	Status          DocStatus       `gorm:"size:32;not null" json:"status"`
	Confidentiality Confidentiality `gorm:"size:32;not null" json:"confidentiality"`
	Summary         string          `gorm:"type:text" json:"summary,omitempty"`
	TagsRaw         string          `gorm:"column:tags;type:text" json:"-"`
	Tags            []string        `gorm:"-" json:"tags"`
	ScannedBy       string          `gorm:"size:128" json:"scanned_by"`
	LastViewedAt    *time.Time      `json:"last_viewed_at,omitempty"`
	ViewCount       int64           `gorm:"not null;default:0" json:"view_count"`
	CreatedAt       time.Time       `json:"created_at"`
	UpdatedAt       time.Time       `json:"updated_at"`
}

// BeforeSave normalises tag data before persisting.
func (d *Document) BeforeSave(tx *gorm.DB) error {
	d.TagsRaw = encodeTags(d.Tags)
	return nil
}

// AfterFind hydrates the tag list after retrieval.
func (d *Document) AfterFind(tx *gorm.DB) error {
	d.Tags = decodeTags(d.TagsRaw)
	return nil
}

func encodeTags(tags []string) string {
	cleaned := make([]string, 0, len(tags))
	for _, tag := range tags {
		trimmed := strings.TrimSpace(tag)
		if trimmed == "" {
			continue
		}
		cleaned = append(cleaned, trimmed)
	}
	if len(cleaned) == 0 {
		return ""
	}
	return "|" + strings.Join(cleaned, "|") + "|"
}

func decodeTags(raw string) []string {
	raw = strings.Trim(raw, "|")
	if raw == "" {
		return []string{}
	}
	parts := strings.Split(raw, "|")
	tags := make([]string, 0, len(parts))
	for _, part := range parts {
		trimmed := strings.TrimSpace(part)
		if trimmed == "" {
			continue
		}
		tags = append(tags, trimmed)
	}
	return tags
}
