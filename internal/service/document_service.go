package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gabriel-vasile/mimetype"
	"github.com/go-playground/validator/v10"
	"github.com/microcosm-cc/bluemonday"
	"github.com/rs/zerolog"

	"github.com/sandiara-digital/ged-api/internal/dto"
	"github.com/sandiara-digital/ged-api/internal/models"
	"github.com/sandiara-digital/ged-api/internal/policy"
	"github.com/sandiara-digital/ged-api/internal/repository"
	"github.com/sandiara-digital/ged-api/pkg/ai"
)

// Registration fallbacks applied when extraction yields nothing.
const (
	fallbackTitle       = "Document Sans Titre"
	fallbackDescription = "Document numérisé via terminal mobile."
	fallbackService     = "Direction Générale"
)

var (
	// ErrNotVisible is returned when the actor's role may not see the
	// requested document. Handlers must not distinguish it from a
	// missing document.
	ErrNotVisible = errors.New("document not visible to role")
	// ErrInvalidTransition is returned when a signature is requested on
	// a document that is already VALIDE or ARCHIVE.
	ErrInvalidTransition = errors.New("document status cannot advance")
	// ErrUnsupportedImage is returned when the scan payload is not an image.
	ErrUnsupportedImage = errors.New("scan payload is not an image")
)

// LedgerBroadcaster fans freshly written ledger entries out to live
// subscribers. Implementations must not block.
type LedgerBroadcaster interface {
	Broadcast(entry dto.ActivityEntryResponse)
}

// CacheInvalidator drops cached aggregates after a register write.
type CacheInvalidator interface {
	Invalidate(ctx context.Context)
}

// DocumentService drives the register's document workflows.
type DocumentService interface {
	List(ctx context.Context, actor models.User, criteria policy.Criteria) (dto.DocumentListResponse, error)
	Consult(ctx context.Context, actor models.User, docID string) (dto.ConsultResponse, error)
	Register(ctx context.Context, actor models.User, req dto.RegisterDocumentRequest, image []byte) (dto.DocumentResponse, error)
	Sign(ctx context.Context, actor models.User, docID string) (dto.DocumentResponse, error)
}

type documentService struct {
	docs              repository.DocumentRepository
	extractor         ai.Extractor
	validator         *validator.Validate
	sanitizer         *bluemonday.Policy
	feed              LedgerBroadcaster
	cache             CacheInvalidator
	extractionTimeout time.Duration
	logger            zerolog.Logger
	now               func() time.Time

	seedOnce sync.Once
	docSeq   atomic.Int64
}

// NewDocumentService constructs the document workflow service. Feed and
// cache may be nil when no live feed or dashboard cache is wired.
func NewDocumentService(docs repository.DocumentRepository, extractor ai.Extractor, validate *validator.Validate, feed LedgerBroadcaster, cache CacheInvalidator, extractionTimeout time.Duration, logger zerolog.Logger) DocumentService {
	if extractor == nil {
		extractor = ai.Unavailable{}
	}
	if extractionTimeout <= 0 {
		extractionTimeout = 8 * time.Second
	}
	return &documentService{
		docs:              docs,
		extractor:         extractor,
		validator:         validate,
		sanitizer:         bluemonday.StrictPolicy(),
		feed:              feed,
		cache:             cache,
		extractionTimeout: extractionTimeout,
		logger:            logger.With().Str("component", "document_service").Logger(),
		now:               time.Now,
	}
}

// List applies the pure filter engine to the register snapshot. The role
// gate is part of the engine and cannot be bypassed by criteria values.
func (s *documentService) List(ctx context.Context, actor models.User, criteria policy.Criteria) (dto.DocumentListResponse, error) {
	docs, err := s.docs.List(ctx)
	if err != nil {
		return dto.DocumentListResponse{}, err
	}

	matched := policy.FilterDocuments(docs, actor.Role, criteria)
	items := make([]dto.DocumentResponse, 0, len(matched))
	for _, doc := range matched {
		items = append(items, dto.NewDocumentResponse(doc))
	}

	return dto.DocumentListResponse{Items: items, Count: len(items)}, nil
}

// Consult records a CONSULTATION entry and bumps the view counter in one
// transaction; a consultation without its ledger entry never occurs.
func (s *documentService) Consult(ctx context.Context, actor models.User, docID string) (dto.ConsultResponse, error) {
	doc, err := s.docs.GetByID(ctx, docID)
	if err != nil {
		return dto.ConsultResponse{}, err
	}
	if !policy.Visible(actor.Role, doc) {
		return dto.ConsultResponse{}, ErrNotVisible
	}

	entry := newLedgerEntry(actor, models.ActionConsultation, doc.ID, doc.Title, nil)
	updated, err := s.docs.ConsultWithLog(ctx, doc.ID, s.now(), &entry)
	if err != nil {
		s.logger.Error().Err(err).Str("doc_id", docID).Msg("consultation failed")
		return dto.ConsultResponse{}, err
	}

	s.broadcast(entry)

	return dto.ConsultResponse{
		Document: dto.NewDocumentResponse(updated),
		Entry:    dto.NewActivityEntryResponse(entry),
	}, nil
}

// Register runs the scan-register workflow: validate intake, enrich via
// the extraction collaborator (best effort, bounded wait), construct the
// document with fallbacks, then commit document and ENREGISTREMENT entry
// together or not at all.
func (s *documentService) Register(ctx context.Context, actor models.User, req dto.RegisterDocumentRequest, image []byte) (dto.DocumentResponse, error) {
	if err := s.validator.Struct(req); err != nil {
		return dto.DocumentResponse{}, err
	}

	imageMIME := ""
	if len(image) > 0 {
		mime := mimetype.Detect(image)
		if !strings.HasPrefix(mime.String(), "image/") {
			return dto.DocumentResponse{}, fmt.Errorf("%w: %s", ErrUnsupportedImage, mime.String())
		}
		imageMIME = mime.String()
	}

	description := strings.TrimSpace(s.sanitizer.Sanitize(req.Description))
	userTitle := strings.TrimSpace(s.sanitizer.Sanitize(req.Title))

	extraction := s.extract(ctx, description, image, imageMIME)

	title := extraction.Title
	if title == "" {
		title = userTitle
	}
	if title == "" {
		title = fallbackTitle
	}
	if description == "" {
		description = fallbackDescription
	}
	serviceName := extraction.Service
	if serviceName == "" {
		serviceName = fallbackService
	}
	tags := extraction.Tags
	if tags == nil {
		tags = []string{}
	}

	doc := models.Document{
		ID:              s.nextDocumentID(ctx),
		Title:           title,
		Description:     description,
		Category:        models.ParseCategory(extraction.Category),
		Service:         serviceName,
		Sender:          actor.Name,
		ReceivedAt:      s.now(),
		Status:          models.StatusRecu,
		Confidentiality: models.Confidentiality(req.Confidentiality),
		Summary:         extraction.Summary,
		Tags:            tags,
		ScannedBy:       actor.Name,
	}

	entry := newLedgerEntry(actor, models.ActionEnregistrement, doc.ID, doc.Title, map[string]interface{}{
		"confidentiality": string(doc.Confidentiality),
		"category":        string(doc.Category),
	})
	if err := s.docs.RegisterWithLog(ctx, &doc, &entry); err != nil {
		s.logger.Error().Err(err).Str("doc_id", doc.ID).Msg("registration failed")
		return dto.DocumentResponse{}, err
	}

	s.broadcast(entry)
	s.invalidate(ctx)

	return dto.NewDocumentResponse(doc), nil
}

// Sign advances a document to VALIDE and records a MODIFICATION entry in
// the same transaction.
func (s *documentService) Sign(ctx context.Context, actor models.User, docID string) (dto.DocumentResponse, error) {
	doc, err := s.docs.GetByID(ctx, docID)
	if err != nil {
		return dto.DocumentResponse{}, err
	}
	if !policy.Visible(actor.Role, doc) {
		return dto.DocumentResponse{}, ErrNotVisible
	}
	if !doc.Status.Signable() {
		return dto.DocumentResponse{}, fmt.Errorf("%w: status %s", ErrInvalidTransition, doc.Status)
	}

	entry := newLedgerEntry(actor, models.ActionModification, doc.ID, doc.Title, map[string]interface{}{
		"from": string(doc.Status),
		"to":   string(models.StatusValide),
	})
	updated, err := s.docs.AdvanceStatusWithLog(ctx, doc.ID, models.StatusValide, &entry)
	if err != nil {
		s.logger.Error().Err(err).Str("doc_id", docID).Msg("signature failed")
		return dto.DocumentResponse{}, err
	}

	s.broadcast(entry)
	s.invalidate(ctx)

	return dto.NewDocumentResponse(updated), nil
}

// nextDocumentID issues the next SAND-prefixed register number. The
// counter is seeded once from the highest number already stored, so a
// restarted process continues the sequence instead of re-issuing an ID
// and hitting the primary-key conflict.
func (s *documentService) nextDocumentID(ctx context.Context) string {
	s.seedOnce.Do(func() {
		max, err := s.docs.MaxRegisterSequence(ctx)
		if err != nil {
			s.logger.Warn().Err(err).Msg("failed to read register sequence, seeding from clock")
			max = time.Now().UnixMilli()
		}
		s.docSeq.Store(max)
	})
	return fmt.Sprintf("SAND-%06d", s.docSeq.Add(1))
}

// extract calls the collaborator with a bounded wait. Every failure path
// degrades to an empty result; registration never aborts because of it.
func (s *documentService) extract(ctx context.Context, text string, image []byte, imageMIME string) ai.ExtractionResult {
	if text == "" && len(image) == 0 {
		return ai.ExtractionResult{}
	}

	extractionCtx, cancel := context.WithTimeout(ctx, s.extractionTimeout)
	defer cancel()

	result, err := s.extractor.Extract(extractionCtx, ai.ExtractionInput{
		Text:      text,
		ImageData: image,
		ImageMIME: imageMIME,
	})
	if err != nil {
		s.logger.Warn().Err(err).Msg("metadata extraction unavailable, using fallbacks")
		return ai.ExtractionResult{}
	}
	return result
}

func (s *documentService) broadcast(entry models.ActivityLog) {
	if s.feed != nil {
		s.feed.Broadcast(dto.NewActivityEntryResponse(entry))
	}
}

func (s *documentService) invalidate(ctx context.Context) {
	if s.cache != nil {
		s.cache.Invalidate(ctx)
	}
}
