package dto

import (
	"time"

	"github.com/sandiara-digital/ged-api/internal/models"
)

// DocumentResponse is the API projection of a registered document.
type DocumentResponse struct {
	ID              string     `json:"id"`
	Title           string     `json:"title"`
	Description     string     `json:"description"`
	Category        string     `json:"category"`
	Service         string     `json:"service"`
	Sender          string     `json:"sender"`
	ReceivedAt      time.Time  `json:"received_at"`
	Status          string     `json:"status"`
	Confidentiality string     `json:"confidentiality"`
	Summary         string     `json:"summary,omitempty"`
	Tags            []string   `json:"tags"`
	ScannedBy       string     `json:"scanned_by"`
	LastViewedAt    *time.Time `json:"last_viewed_at,omitempty"`
	ViewCount       int64      `json:"view_count"`
}

// NewDocumentResponse maps a document model to its API projection.
func NewDocumentResponse(doc models.Document) DocumentResponse {
	tags := doc.Tags
	if tags == nil {
		tags = []string{}
	}
	return DocumentResponse{
		ID:              doc.ID,
		Title:           doc.Title,
		Description:     doc.Description,
		Category:        string(doc.Category),
		Service:         doc.Service,
		Sender:          doc.Sender,
		ReceivedAt:      doc.ReceivedAt,
		Status:          string(doc.Status),
		Confidentiality: string(doc.Confidentiality),
		Summary:         doc.Summary,
		Tags:            tags,
		ScannedBy:       doc.ScannedBy,
		LastViewedAt:    doc.LastViewedAt,
		ViewCount:       doc.ViewCount,
	}
}

// DocumentListResponse carries the filtered register view.
type DocumentListResponse struct {
	Items []DocumentResponse `json:"items"`
	Count int                `json:"count"`
}

// RegisterDocumentRequest is the scan-register intake payload. The
// confidentiality level is required and restricted to the two lowest
// levels; STRICTEMENT_PRIVE is never offered at intake.
type RegisterDocumentRequest struct {
	Title           string `form:"title" json:"title" validate:"omitempty,max=255"`
	Description     string `form:"description" json:"description" validate:"omitempty,max=10000"`
	Confidentiality string `form:"confidentiality" json:"confidentiality" validate:"required,oneof=PUBLIC CONFIDENTIEL"`
}

// ConsultResponse pairs the consulted document with the ledger entry the
// consultation produced.
type ConsultResponse struct {
	Document DocumentResponse      `json:"document"`
	Entry    ActivityEntryResponse `json:"entry"`
}
