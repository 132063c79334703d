package service

import (
	"context"
	"fmt"
	"math"
	"strings"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"gorm.io/datatypes"

	"github.com/sandiara-digital/ged-api/internal/dto"
	"github.com/sandiara-digital/ged-api/internal/models"
	"github.com/sandiara-digital/ged-api/internal/repository"
)

// ActivityService records and queries the audit ledger.
type ActivityService interface {
	Record(ctx context.Context, actor models.User, action models.ActionKind, docID, docTitle string) (dto.ActivityEntryResponse, error)
	List(ctx context.Context, req dto.ActivityListRequest) (dto.ActivityListResponse, error)
}

type activityService struct {
	repo   repository.ActivityLogRepository
	logger zerolog.Logger
}

// NewActivityService constructs the ledger service.
func NewActivityService(repo repository.ActivityLogRepository, logger zerolog.Logger) ActivityService {
	return &activityService{
		repo:   repo,
		logger: logger.With().Str("component", "activity_service").Logger(),
	}
}

// newLedgerEntry snapshots the actor by value so that later changes to
// the user record never rewrite history. Metadata carries action details
// such as a status transition and may be nil.
func newLedgerEntry(actor models.User, action models.ActionKind, docID, docTitle string, metadata map[string]interface{}) models.ActivityLog {
	return models.ActivityLog{
		ID:        uuid.NewString(),
		ActorID:   actor.ID,
		ActorName: actor.Name,
		ActorRole: actor.Role,
		Action:    action,
		DocID:     docID,
		DocTitle:  docTitle,
		Metadata:  sanitizeMetadata(metadata),
	}
}

// sanitizeMetadata trims string values and drops blank keys and values so
// the ledger never stores padding. An empty result collapses to nil and
// the metadata column stays NULL.
func sanitizeMetadata(metadata map[string]interface{}) datatypes.JSONMap {
	if len(metadata) == 0 {
		return nil
	}
	cleaned := make(datatypes.JSONMap, len(metadata))
	for key, value := range metadata {
		key = strings.TrimSpace(key)
		if key == "" {
			continue
		}
		if text, ok := value.(string); ok {
			text = strings.TrimSpace(text)
			if text == "" {
				continue
			}
			value = text
		}
		cleaned[key] = value
	}
	if len(cleaned) == 0 {
		return nil
	}
	return cleaned
}

func (s *activityService) Record(ctx context.Context, actor models.User, action models.ActionKind, docID, docTitle string) (dto.ActivityEntryResponse, error) {
	if strings.TrimSpace(docID) == "" {
		return dto.ActivityEntryResponse{}, fmt.Errorf("document id is required")
	}

	entry := newLedgerEntry(actor, action, docID, docTitle, nil)
	if err := s.repo.Create(ctx, &entry); err != nil {
		s.logger.Error().Err(err).Str("doc_id", docID).Msg("failed to persist ledger entry")
		return dto.ActivityEntryResponse{}, err
	}

	return dto.NewActivityEntryResponse(entry), nil
}

func (s *activityService) List(ctx context.Context, req dto.ActivityListRequest) (dto.ActivityListResponse, error) {
	filter := repository.ActivityLogFilter{
		Page:     req.Page,
		PageSize: req.PageSize,
		ActorID:  strings.TrimSpace(req.ActorID),
		Action:   models.ActionKind(strings.TrimSpace(req.Action)),
		DocID:    strings.TrimSpace(req.DocID),
	}

	entries, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return dto.ActivityListResponse{}, err
	}

	items := make([]dto.ActivityEntryResponse, 0, len(entries))
	for _, entry := range entries {
		items = append(items, dto.NewActivityEntryResponse(entry))
	}

	pagination := dto.PaginationMeta{
		Page:       maxInt(req.Page, 1),
		PageSize:   req.PageSize,
		TotalItems: total,
	}
	if req.PageSize > 0 {
		pagination.TotalPages = int(math.Ceil(float64(total) / float64(req.PageSize)))
	} else {
		pagination.TotalPages = 1
	}

	return dto.ActivityListResponse{Items: items, Pagination: pagination}, nil
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}
