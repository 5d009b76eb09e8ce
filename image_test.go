package main

import (
	"bytes"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"strings"
	"testing"

	"foodbank-backend/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// uploadRequest собирает multipart-запрос с одним файлом
func uploadRequest(t *testing.T, token, filename, contentType string, content []byte) *http.Request {
	t.Helper()

	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)
	header := make(textproto.MIMEHeader)
	header.Set("Content-Disposition", `form-data; name="file"; filename="`+filename+`"`)
	header.Set("Content-Type", contentType)
	part, err := writer.CreatePart(header)
	require.NoError(t, err)
	_, err = part.Write(content)
	require.NoError(t, err)
	require.NoError(t, writer.Close())

	req := httptest.NewRequest("POST", "/api/images", &buf)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	return req
}

func TestUploadImage(t *testing.T) {
	srv, db := setupTestServer(t.TempDir())
	_, token := createTestUser(db, "volunteer@foodbank.org", "password123", models.RoleUser)

	resp, err := srv.app.Test(uploadRequest(t, token, "milk.jpg", "image/jpeg", []byte("jpeg-bytes")), -1)
	require.NoError(t, err)
	require.Equal(t, 201, resp.StatusCode)

	var body struct {
		Image    models.Image `json:"image"`
		ImageRef string       `json:"image_ref"`
		ImageURL string       `json:"image_url"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.True(t, strings.HasPrefix(body.ImageRef, "images/"))
	assert.True(t, strings.HasSuffix(body.ImageRef, ".jpg"))
	assert.Equal(t, body.ImageRef, body.Image.Ref)
	assert.Equal(t, "image/jpeg", body.Image.MimeType)
	assert.Equal(t, int64(len("jpeg-bytes")), body.Image.Size)

	var count int64
	db.Model(&models.Image{}).Where("ref = ?", body.ImageRef).Count(&count)
	assert.Equal(t, int64(1), count)

	// Скачивание по подписанной ссылке
	req := httptest.NewRequest("GET", strings.TrimPrefix(body.ImageURL, "http://localhost:8080"), nil)
	fileResp, err := srv.app.Test(req, -1)
	require.NoError(t, err)
	require.Equal(t, 200, fileResp.StatusCode)
	assert.Equal(t, "image/jpeg", fileResp.Header.Get("Content-Type"))
	data, _ := io.ReadAll(fileResp.Body)
	assert.Equal(t, "jpeg-bytes", string(data))
}

func TestUploadImageValidation(t *testing.T) {
	srv, db := setupTestServer(t.TempDir())
	_, token := createTestUser(db, "volunteer@foodbank.org", "password123", models.RoleUser)

	tests := []struct {
		name           string
		token          string
		filename       string
		contentType    string
		expectedStatus int
	}{
		{
			name:           "Без авторизации",
			token:          "",
			filename:       "milk.jpg",
			contentType:    "image/jpeg",
			expectedStatus: 401,
		},
		{
			name:           "Недопустимый тип",
			token:          token,
			filename:       "notes.txt",
			contentType:    "text/plain",
			expectedStatus: 400,
		},
		{
			name:           "Недопустимое расширение",
			token:          token,
			filename:       "milk.exe",
			contentType:    "image/png",
			expectedStatus: 400,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, err := srv.app.Test(uploadRequest(t, tt.token, tt.filename, tt.contentType, []byte("data")), -1)
			require.NoError(t, err)
			assert.Equal(t, tt.expectedStatus, resp.StatusCode)
		})
	}
}

func TestGetFileWithBadToken(t *testing.T) {
	srv, db := setupTestServer(t.TempDir())
	_, token := createTestUser(db, "volunteer@foodbank.org", "password123", models.RoleUser)

	status, _ := doJSON(t, srv.app, "GET", "/files/not-a-token", "", nil)
	assert.Equal(t, 403, status)

	// Токен сессии не открывает файлы
	status, _ = doJSON(t, srv.app, "GET", "/files/"+token, "", nil)
	assert.Equal(t, 403, status)
}
