package handler_test

import (
	"bytes"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"workwise/internal/domain"
	"workwise/internal/handler"
	"workwise/internal/middleware"
	"workwise/internal/service"
	"workwise/mocks"
)

func documentTestRouter(svc service.DocumentService, userID uuid.UUID) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(func(c *gin.Context) {
		c.Set(middleware.ContextKeyUserID, userID)
		c.Next()
	})
	h := handler.NewDocumentHandler(svc, 3600)
	r.POST("/api/v1/documents", h.Upload)
	r.GET("/api/v1/documents", h.List)
	r.GET("/api/v1/documents/:id", h.Get)
	r.DELETE("/api/v1/documents/:id", h.Delete)
	return r
}

func multipartFile(t *testing.T, filename string, content []byte) (*bytes.Buffer, string) {
	t.Helper()
	buf := new(bytes.Buffer)
	w := multipart.NewWriter(buf)
	fw, err := w.CreateFormFile("file", filename)
	require.NoError(t, err)
	_, err = fw.Write(content)
	require.NoError(t, err)
	require.NoError(t, w.Close())
	return buf, w.FormDataContentType()
}

func TestUploadDocument_Created(t *testing.T) {
	svc := new(mocks.MockDocumentService)
	userID := uuid.New()
	r := documentTestRouter(svc, userID)

	created := &domain.Document{ID: uuid.New(), OwnerID: userID, Name: "report.pdf",
		FileType: domain.FileTypePDF, Status: domain.DocumentStatusUploaded}
	svc.On("Upload", mock.Anything, mock.MatchedBy(func(in *service.UploadDocumentInput) bool {
		return in.OwnerID == userID && in.FileName == "report.pdf" && len(in.Data) > 0
	})).Return(created, nil)

	body, contentType := multipartFile(t, "report.pdf", []byte("%PDF-1.5 fake"))
	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodPost, "/api/v1/documents", body)
	req.Header.Set("Content-Type", contentType)
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusCreated, w.Code)
	assert.Contains(t, w.Body.String(), `"status":"uploaded"`)
}

func TestUploadDocument_MissingFile(t *testing.T) {
	svc := new(mocks.MockDocumentService)
	r := documentTestRouter(svc, uuid.New())

	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodPost, "/api/v1/documents", bytes.NewReader(nil))
	req.Header.Set("Content-Type", "multipart/form-data; boundary=x")
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	svc.AssertNotCalled(t, "Upload", mock.Anything, mock.Anything)
}

func TestUploadDocument_UnsupportedType(t *testing.T) {
	svc := new(mocks.MockDocumentService)
	r := documentTestRouter(svc, uuid.New())

	svc.On("Upload", mock.Anything, mock.Anything).Return(nil, domain.ErrUnsupportedFileType)

	body, contentType := multipartFile(t, "notes.txt", []byte("plain text"))
	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodPost, "/api/v1/documents", body)
	req.Header.Set("Content-Type", contentType)
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "UNSUPPORTED_FILE_TYPE")
}

func TestListDocuments_Paginated(t *testing.T) {
	svc := new(mocks.MockDocumentService)
	userID := uuid.New()
	r := documentTestRouter(svc, userID)

	svc.On("List", mock.Anything, userID, 0, 20).Return([]domain.Document{
		{ID: uuid.New(), Name: "report.pdf"},
	}, 1, nil)

	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodGet, "/api/v1/documents", nil)
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"total":1`)
}

func TestGetDocument_InvalidID(t *testing.T) {
	svc := new(mocks.MockDocumentService)
	r := documentTestRouter(svc, uuid.New())

	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodGet, "/api/v1/documents/not-a-uuid", nil)
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestGetDocument_NotFound(t *testing.T) {
	svc := new(mocks.MockDocumentService)
	r := documentTestRouter(svc, uuid.New())

	svc.On("GetByID", mock.Anything, mock.Anything, mock.Anything).
		Return(nil, domain.ErrDocumentNotFound)

	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodGet, "/api/v1/documents/"+uuid.NewString(), nil)
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Contains(t, w.Body.String(), "DOCUMENT_NOT_FOUND")
}
