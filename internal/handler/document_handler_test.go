package handler

import (
	"bytes"
	"context"
	"io"
	"mime/multipart"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/sandiara-digital/ged-api/internal/dto"
	"github.com/sandiara-digital/ged-api/internal/models"
	"github.com/sandiara-digital/ged-api/internal/policy"
	"github.com/sandiara-digital/ged-api/internal/repository"
	"github.com/sandiara-digital/ged-api/internal/service"
)

type documentServiceMock struct {
	listFn     func(ctx context.Context, actor models.User, criteria policy.Criteria) (dto.DocumentListResponse, error)
	consultFn  func(ctx context.Context, actor models.User, docID string) (dto.ConsultResponse, error)
	registerFn func(ctx context.Context, actor models.User, req dto.RegisterDocumentRequest, image []byte) (dto.DocumentResponse, error)
	signFn     func(ctx context.Context, actor models.User, docID string) (dto.DocumentResponse, error)
}

func (m *documentServiceMock) List(ctx context.Context, actor models.User, criteria policy.Criteria) (dto.DocumentListResponse, error) {
	return m.listFn(ctx, actor, criteria)
}

func (m *documentServiceMock) Consult(ctx context.Context, actor models.User, docID string) (dto.ConsultResponse, error) {
	return m.consultFn(ctx, actor, docID)
}

func (m *documentServiceMock) Register(ctx context.Context, actor models.User, req dto.RegisterDocumentRequest, image []byte) (dto.DocumentResponse, error) {
	return m.registerFn(ctx, actor, req, image)
}

func (m *documentServiceMock) Sign(ctx context.Context, actor models.User, docID string) (dto.DocumentResponse, error) {
	return m.signFn(ctx, actor, docID)
}

func newDocumentApp(svc service.DocumentService, actor *models.User) *fiber.App {
	app := fiber.New()
	group := app.Group("/documents", func(c *fiber.Ctx) error {
		if actor != nil {
			c.Locals("current_user", *actor)
			c.Locals("user_role", string(actor.Role))
		}
		return c.Next()
	})
	passthrough := func(c *fiber.Ctx) error { return c.Next() }
	NewDocumentHandler(svc, zerolog.New(io.Discard)).Register(group, passthrough, passthrough)
	return app
}

func TestDocumentListParsesCriteria(t *testing.T) {
	actor := models.User{ID: "1", Name: "M. le Maire Serigne Diop", Role: models.RoleMaire}

	var captured policy.Criteria
	mock := &documentServiceMock{
		listFn: func(ctx context.Context, got models.User, criteria policy.Criteria) (dto.DocumentListResponse, error) {
			require.Equal(t, actor.ID, got.ID)
			captured = criteria
			return dto.DocumentListResponse{Items: []dto.DocumentResponse{}, Count: 0}, nil
		},
	}
	app := newDocumentApp(mock, &actor)

	target := "/documents?q=budget&category=D%C3%A9lib%C3%A9ration&confidentiality=CONFIDENTIEL&sender=Voirie&date_start=2024-03-01&date_end=2024-03-31"
	resp, err := app.Test(httptest.NewRequest("GET", target, nil))
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	require.Equal(t, "budget", captured.Query)
	require.Equal(t, "Délibération", captured.Category)
	require.Equal(t, "CONFIDENTIEL", captured.Confidentiality)
	require.Equal(t, "Voirie", captured.SenderOrService)
	require.NotNil(t, captured.DateStart)
	require.Equal(t, time.Date(2024, 3, 1, 0, 0, 0, 0, time.Local), *captured.DateStart)
	require.NotNil(t, captured.DateEnd)
	require.Equal(t, time.Date(2024, 3, 31, 0, 0, 0, 0, time.Local), *captured.DateEnd)
}

func TestDocumentListRejectsMalformedDate(t *testing.T) {
	actor := models.User{ID: "1", Role: models.RoleMaire}
	app := newDocumentApp(&documentServiceMock{}, &actor)

	resp, err := app.Test(httptest.NewRequest("GET", "/documents?date_start=31-03-2024", nil))
	require.NoError(t, err)
	require.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
}

func TestDocumentListWithoutSession(t *testing.T) {
	app := newDocumentApp(&documentServiceMock{}, nil)

	resp, err := app.Test(httptest.NewRequest("GET", "/documents", nil))
	require.NoError(t, err)
	require.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
}

func TestDocumentConsultMapsHiddenDocumentsToNotFound(t *testing.T) {
	actor := models.User{ID: "3", Role: models.RoleSecretaire}
	mock := &documentServiceMock{
		consultFn: func(ctx context.Context, got models.User, docID string) (dto.ConsultResponse, error) {
			return dto.ConsultResponse{}, service.ErrNotVisible
		},
	}
	app := newDocumentApp(mock, &actor)

	resp, err := app.Test(httptest.NewRequest("POST", "/documents/DOC-2024-001/consult", nil))
	require.NoError(t, err)
	require.Equal(t, fiber.StatusNotFound, resp.StatusCode)
}

func TestDocumentConsultUnknownDocument(t *testing.T) {
	actor := models.User{ID: "1", Role: models.RoleMaire}
	mock := &documentServiceMock{
		consultFn: func(ctx context.Context, got models.User, docID string) (dto.ConsultResponse, error) {
			require.Equal(t, "SAND-999999", docID)
			return dto.ConsultResponse{}, repository.ErrNotFound
		},
	}
	app := newDocumentApp(mock, &actor)

	resp, err := app.Test(httptest.NewRequest("POST", "/documents/SAND-999999/consult", nil))
	require.NoError(t, err)
	require.Equal(t, fiber.StatusNotFound, resp.StatusCode)
}

func multipartRegisterBody(t *testing.T, fields map[string]string, scan []byte) (*bytes.Buffer, string) {
	t.Helper()
	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	for key, value := range fields {
		require.NoError(t, writer.WriteField(key, value))
	}
	if scan != nil {
		part, err := writer.CreateFormFile("scan", "scan.png")
		require.NoError(t, err)
		_, err = part.Write(scan)
		require.NoError(t, err)
	}
	require.NoError(t, writer.Close())
	return body, writer.FormDataContentType()
}

func TestDocumentRegisterForwardsFormAndScan(t *testing.T) {
	actor := models.User{ID: "3", Name: "Amadou Fall (Secrétariat)", Role: models.RoleSecretaire}

	mock := &documentServiceMock{
		registerFn: func(ctx context.Context, got models.User, req dto.RegisterDocumentRequest, image []byte) (dto.DocumentResponse, error) {
			require.Equal(t, "Vote budget 2025", req.Description)
			require.Equal(t, "PUBLIC", req.Confidentiality)
			require.Equal(t, []byte{0x89, 'P', 'N', 'G'}, image)
			return dto.DocumentResponse{ID: "SAND-000123", Status: "RECU"}, nil
		},
	}
	app := newDocumentApp(mock, &actor)

	body, contentType := multipartRegisterBody(t, map[string]string{
		"description":     "Vote budget 2025",
		"confidentiality": "PUBLIC",
	}, []byte{0x89, 'P', 'N', 'G'})

	req := httptest.NewRequest("POST", "/documents", body)
	req.Header.Set("Content-Type", contentType)
	resp, err := app.Test(req)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusCreated, resp.StatusCode)
}

func TestDocumentRegisterValidationFailure(t *testing.T) {
	actor := models.User{ID: "3", Role: models.RoleSecretaire}
	validate := validator.New(validator.WithRequiredStructEnabled())

	mock := &documentServiceMock{
		registerFn: func(ctx context.Context, got models.User, req dto.RegisterDocumentRequest, image []byte) (dto.DocumentResponse, error) {
			return dto.DocumentResponse{}, validate.Struct(req)
		},
	}
	app := newDocumentApp(mock, &actor)

	body, contentType := multipartRegisterBody(t, map[string]string{"description": "sans niveau"}, nil)
	req := httptest.NewRequest("POST", "/documents", body)
	req.Header.Set("Content-Type", contentType)
	resp, err := app.Test(req)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusUnprocessableEntity, resp.StatusCode)
}

func TestDocumentRegisterRejectsNonImageScan(t *testing.T) {
	actor := models.User{ID: "3", Role: models.RoleSecretaire}
	mock := &documentServiceMock{
		registerFn: func(ctx context.Context, got models.User, req dto.RegisterDocumentRequest, image []byte) (dto.DocumentResponse, error) {
			return dto.DocumentResponse{}, service.ErrUnsupportedImage
		},
	}
	app := newDocumentApp(mock, &actor)

	body, contentType := multipartRegisterBody(t, map[string]string{"confidentiality": "PUBLIC"}, []byte("%PDF-1.7"))
	req := httptest.NewRequest("POST", "/documents", body)
	req.Header.Set("Content-Type", contentType)
	resp, err := app.Test(req)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusUnprocessableEntity, resp.StatusCode)
}

func TestDocumentSignConflictOnRepeatedSignature(t *testing.T) {
	actor := models.User{ID: "1", Role: models.RoleMaire}
	mock := &documentServiceMock{
		signFn: func(ctx context.Context, got models.User, docID string) (dto.DocumentResponse, error) {
			return dto.DocumentResponse{}, service.ErrInvalidTransition
		},
	}
	app := newDocumentApp(mock, &actor)

	resp, err := app.Test(httptest.NewRequest("POST", "/documents/DOC-2024-001/sign", nil))
	require.NoError(t, err)
	require.Equal(t, fiber.StatusConflict, resp.StatusCode)
}
