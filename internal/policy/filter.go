package policy

import (
	"strings"
	"time"

	"github.com/sandiara-digital/ged-api/internal/models"
)

// SentinelAll disables the category or confidentiality criterion.
const SentinelAll = "All"

// Criteria is the multi-criteria search input evaluated per document.
// Zero values disable the corresponding criterion.
type Criteria struct {
	Query           string
	Category        string
	Confidentiality string
	SenderOrService string
	DateStart       *time.Time
	DateEnd         *time.Time
}

// FilterDocuments returns the documents matching the role gate and every
// active criterion, preserving input order. The role gate cannot be
// bypassed by any criterion value, and a confidentiality criterion the
// role may not select matches nothing.
func FilterDocuments(docs []models.Document, role models.Role, criteria Criteria) []models.Document {
	matched := make([]models.Document, 0, len(docs))
	for _, doc := range docs {
		if Matches(doc, role, criteria) {
			matched = append(matched, doc)
		}
	}
	return matched
}

// CountDocuments returns the number of matching documents.
func CountDocuments(docs []models.Document, role models.Role, criteria Criteria) int {
	count := 0
	for _, doc := range docs {
		if Matches(doc, role, criteria) {
			count++
		}
	}
	return count
}

// Matches evaluates the conjunction of all criteria for a single document.
func Matches(doc models.Document, role models.Role, criteria Criteria) bool {
	if !Visible(role, doc) {
		return false
	}

	if query := strings.ToLower(strings.TrimSpace(criteria.Query)); query != "" {
		title := strings.ToLower(doc.Title)
		description := strings.ToLower(doc.Description)
		if !strings.Contains(title, query) && !strings.Contains(description, query) {
			return false
		}
	}

	if category := strings.TrimSpace(criteria.Category); category != "" && category != SentinelAll {
		if string(doc.Category) != category {
			return false
		}
	}

	if level := strings.TrimSpace(criteria.Confidentiality); level != "" && level != SentinelAll {
		requested := models.Confidentiality(level)
		if !Selectable(role, requested) {
			return false
		}
		if doc.Confidentiality != requested {
			return false
		}
	}

	if needle := strings.ToLower(strings.TrimSpace(criteria.SenderOrService)); needle != "" {
		sender := strings.ToLower(doc.Sender)
		service := strings.ToLower(doc.Service)
		if !strings.Contains(sender, needle) && !strings.Contains(service, needle) {
			return false
		}
	}

	if criteria.DateStart != nil {
		if doc.ReceivedAt.Before(startOfDay(*criteria.DateStart)) {
			return false
		}
	}
	if criteria.DateEnd != nil {
		if doc.ReceivedAt.After(endOfDay(*criteria.DateEnd)) {
			return false
		}
	}

	return true
}

func startOfDay(t time.Time) time.Time {
	year, month, day := t.Date()
	return time.Date(year, month, day, 0, 0, 0, 0, t.Location())
}

func endOfDay(t time.Time) time.Time {
	year, month, day := t.Date()
	return time.Date(year, month, day, 23, 59, 59, 999_000_000, t.Location())
}
