package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/sandiara-digital/ged-api/internal/models"
)

// ErrNotFound is returned when a looked-up record does not exist.
var ErrNotFound = errors.New("record not found")

// DocumentRepository persists the document register. Consultation and
// registration pair the document write with its ledger entry in a single
// transaction so that one never appears without the other.
type DocumentRepository interface {
	Create(ctx context.Context, doc *models.Document) error
	List(ctx context.Context) ([]models.Document, error)
	GetByID(ctx context.Context, id string) (models.Document, error)
	Count(ctx context.Context) (int64, error)
	MaxRegisterSequence(ctx context.Context) (int64, error)
	RegisterWithLog(ctx context.Context, doc *models.Document, entry *models.ActivityLog) error
	ConsultWithLog(ctx context.Context, id string, viewedAt time.Time, entry *models.ActivityLog) (models.Document, error)
	AdvanceStatusWithLog(ctx context.Context, id string, status models.DocStatus, entry *models.ActivityLog) (models.Document, error)
}

type documentRepository struct {
	db *gorm.DB
}

// NewDocumentRepository constructs the document repository.
func NewDocumentRepository(db *gorm.DB) DocumentRepository {
	return &documentRepository{db: db}
}

func (r *documentRepository) Create(ctx context.Context, doc *models.Document) error {
	return r.db.WithContext(ctx).Create(doc).Error
}

// List returns the full register ordered most-recent-first. The ordering
// is reconstructed from received_at so the store itself carries no
// display invariant.
func (r *documentRepository) List(ctx context.Context) ([]models.Document, error) {
	var docs []models.Document
	err := r.db.WithContext(ctx).
		Order("received_at DESC, created_at DESC").
		Find(&docs).Error
	if err != nil {
		return nil, err
	}
	return docs, nil
}

func (r *documentRepository) GetByID(ctx context.Context, id string) (models.Document, error) {
	var doc models.Document
	err := r.db.WithContext(ctx).First(&doc, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return models.Document{}, ErrNotFound
	}
	if err != nil {
		return models.Document{}, err
	}
	return doc, nil
}

func (r *documentRepository) Count(ctx context.Context) (int64, error) {
	var total int64
	err := r.db.WithContext(ctx).Model(&models.Document{}).Count(&total).Error
	return total, err
}

// MaxRegisterSequence returns the highest numeric suffix among
// SAND-prefixed document IDs, or zero on an empty register. ID issuance
// is seeded from it so the sequence survives restarts.
func (r *documentRepository) MaxRegisterSequence(ctx context.Context) (int64, error) {
	var max int64
	err := r.db.WithContext(ctx).
		Model(&models.Document{}).
		Where("id LIKE ?", "SAND-%").
		Select("COALESCE(MAX(CAST(SUBSTR(id, 6) AS BIGINT)), 0)").
		Scan(&max).Error
	return max, err
}

func (r *documentRepository) RegisterWithLog(ctx context.Context, doc *models.Document, entry *models.ActivityLog) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(doc).Error; err != nil {
			return fmt.Errorf("create document: %w", err)
		}
		if err := tx.Create(entry).Error; err != nil {
			return fmt.Errorf("create ledger entry: %w", err)
		}
		return nil
	})
}

// ConsultWithLog bumps the view counter with an in-database increment, so
// concurrent consultations of the same document never lose a count, and
// records the CONSULTATION entry in the same transaction. The entry
// metadata carries the count the consultation produced.
func (r *documentRepository) ConsultWithLog(ctx context.Context, id string, viewedAt time.Time, entry *models.ActivityLog) (models.Document, error) {
	var doc models.Document
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		result := tx.Model(&models.Document{}).
			Where("id = ?", id).
			UpdateColumns(map[string]interface{}{
				"view_count":     gorm.Expr("view_count + 1"),
				"last_viewed_at": viewedAt,
			})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return ErrNotFound
		}
		if err := tx.First(&doc, "id = ?", id).Error; err != nil {
			return err
		}
		if entry.Metadata == nil {
			entry.Metadata = datatypes.JSONMap{}
		}
		entry.Metadata["view_count"] = doc.ViewCount
		if err := tx.Create(entry).Error; err != nil {
			return fmt.Errorf("create ledger entry: %w", err)
		}
		return nil
	})
	if err != nil {
		return models.Document{}, err
	}
	return doc, nil
}

func (r *documentRepository) AdvanceStatusWithLog(ctx context.Context, id string, status models.DocStatus, entry *models.ActivityLog) (models.Document, error) {
	var doc models.Document
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&doc, "id = ?", id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrNotFound
			}
			return err
		}
		if err := tx.Model(&models.Document{}).Where("id = ?", id).UpdateColumn("status", status).Error; err != nil {
			return err
		}
		if err := tx.Create(entry).Error; err != nil {
			return fmt.Errorf("create ledger entry: %w", err)
		}
		doc.Status = status
		return nil
	})
	if err != nil {
		return models.Document{}, err
	}
	return doc, nil
}
