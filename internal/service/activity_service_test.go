package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/sandiara-digital/ged-api/internal/dto"
	"github.com/sandiara-digital/ged-api/internal/models"
	"github.com/sandiara-digital/ged-api/internal/repository"
)

func TestActivityRecordSnapshotsActor(t *testing.T) {
	db := setupServiceDB(t)
	svc := NewActivityService(repository.NewActivityLogRepository(db), testLogger())

	entry, err := svc.Record(context.Background(), maire, models.ActionConsultation, "DOC-2024-001", "Délibération n°12")
	require.NoError(t, err)
	require.NotEmpty(t, entry.ID)
	require.Equal(t, maire.ID, entry.ActorID)
	require.Equal(t, maire.Name, entry.ActorName)
	require.Equal(t, string(models.RoleMaire), entry.ActorRole)
	require.Equal(t, string(models.ActionConsultation), entry.Action)
}

func TestSanitizeMetadataDropsBlankEntries(t *testing.T) {
	cleaned := sanitizeMetadata(map[string]interface{}{
		"from":       " RECU ",
		"to":         "VALIDE",
		"":           "orphan",
		"empty":      "   ",
		"view_count": int64(3),
	})
	require.Equal(t, "RECU", cleaned["from"])
	require.Equal(t, "VALIDE", cleaned["to"])
	require.EqualValues(t, 3, cleaned["view_count"])
	require.NotContains(t, cleaned, "")
	require.NotContains(t, cleaned, "empty")

	require.Nil(t, sanitizeMetadata(nil))
	require.Nil(t, sanitizeMetadata(map[string]interface{}{"only": "  "}))
}

func TestActivityRecordRequiresDocumentID(t *testing.T) {
	db := setupServiceDB(t)
	svc := NewActivityService(repository.NewActivityLogRepository(db), testLogger())

	_, err := svc.Record(context.Background(), maire, models.ActionConsultation, "  ", "titre")
	require.Error(t, err)
}

func TestActivityListPaginationMeta(t *testing.T) {
	db := setupServiceDB(t)
	repo := repository.NewActivityLogRepository(db)
	svc := NewActivityService(repo, testLogger())

	for i := 0; i < 5; i++ {
		_, err := svc.Record(context.Background(), secretaire, models.ActionEnregistrement, "DOC-2024-002", "Facture")
		require.NoError(t, err)
	}

	page, err := svc.List(context.Background(), dto.ActivityListRequest{Page: 2, PageSize: 2})
	require.NoError(t, err)
	require.Len(t, page.Items, 2)
	require.Equal(t, 2, page.Pagination.Page)
	require.Equal(t, int64(5), page.Pagination.TotalItems)
	require.Equal(t, 3, page.Pagination.TotalPages)
}

func TestActivityListFiltersByAction(t *testing.T) {
	db := setupServiceDB(t)
	svc := NewActivityService(repository.NewActivityLogRepository(db), testLogger())

	_, err := svc.Record(context.Background(), secretaire, models.ActionEnregistrement, "DOC-1", "a")
	require.NoError(t, err)
	_, err = svc.Record(context.Background(), maire, models.ActionConsultation, "DOC-1", "a")
	require.NoError(t, err)

	result, err := svc.List(context.Background(), dto.ActivityListRequest{Action: "CONSULTATION"})
	require.NoError(t, err)
	require.Len(t, result.Items, 1)
	require.Equal(t, maire.ID, result.Items[0].ActorID)
}
