package dto

import (
	"time"

	"github.com/sandiara-digital/ged-api/internal/models"
)

// ActivityEntryResponse is the API projection of one ledger entry.
type ActivityEntryResponse struct {
	Seq       uint64                 `json:"seq"`
	ID        string                 `json:"id"`
	ActorID   string                 `json:"actor_id"`
	ActorName string                 `json:"actor_name"`
	ActorRole string                 `json:"actor_role"`
	Action    string                 `json:"action"`
	DocID     string                 `json:"doc_id"`
	DocTitle  string                 `json:"doc_title"`
	Metadata  map[string]interface{} `json:"metadata,omitempty"`
	Timestamp time.Time              `json:"timestamp"`
}

// NewActivityEntryResponse maps a ledger model to its API projection.
func NewActivityEntryResponse(entry models.ActivityLog) ActivityEntryResponse {
	return ActivityEntryResponse{
		Seq:       entry.Seq,
		ID:        entry.ID,
		ActorID:   entry.ActorID,
		ActorName: entry.ActorName,
		ActorRole: string(entry.ActorRole),
		Action:    string(entry.Action),
		DocID:     entry.DocID,
		DocTitle:  entry.DocTitle,
		Metadata:  map[string]interface{}(entry.Metadata),
		Timestamp: entry.CreatedAt,
	}
}

// ActivityListRequest narrows and paginates ledger queries.
type ActivityListRequest struct {
	Page     int
	PageSize int
	ActorID  string
	Action   string
	DocID    string
}

// ActivityListResponse carries a page of the ledger, newest-first.
type ActivityListResponse struct {
	Items      []ActivityEntryResponse `json:"items"`
	Pagination PaginationMeta          `json:"pagination"`
}
