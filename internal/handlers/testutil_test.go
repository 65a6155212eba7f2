package handlers_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"testing"
	"time"

	"github.com/carmarket-app/backend/internal/config"
	"github.com/carmarket-app/backend/internal/database"
	"github.com/carmarket-app/backend/internal/handlers"
	"github.com/carmarket-app/backend/internal/models"
	"github.com/carmarket-app/backend/internal/routes"
	"github.com/carmarket-app/backend/internal/services"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

type testEnv struct {
	app *fiber.App
	cfg *config.Config
	db  *gorm.DB
}

func setup(t *testing.T) *testEnv {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&models.User{}, &models.RefreshToken{}, &models.Listing{}))

	// The health endpoint pings through the package-level handle.
	database.DB = db

	cfg := &config.Config{
		JWTSecret:        "test-secret",
		JWTAccessExpiry:  24 * time.Hour,
		JWTRefreshExpiry: 168 * time.Hour,
		UploadDir:        t.TempDir(),
		BodyLimit:        110 * 1024 * 1024,
		CORSOrigins:      "*",
	}

	authService := services.NewAuthService(db, cfg)
	listingService := services.NewListingService(db)
	imageStore, err := services.NewImageStore(cfg.UploadDir)
	require.NoError(t, err)

	app := fiber.New(fiber.Config{BodyLimit: cfg.BodyLimit})
	routes.Setup(app, cfg,
		handlers.NewAuthHandler(authService),
		handlers.NewListingHandler(listingService, imageStore),
		handlers.NewHealthHandler(),
	)

	return &testEnv{app: app, cfg: cfg, db: db}
}

func (e *testEnv) request(t *testing.T, method, target, token string, body io.Reader, contentType string) *http.Response {
	t.Helper()

	req := httptest.NewRequest(method, target, body)
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := e.app.Test(req, -1)
	require.NoError(t, err)
	return resp
}

func (e *testEnv) postJSON(t *testing.T, target, token string, payload any) *http.Response {
	t.Helper()
	b, err := json.Marshal(payload)
	require.NoError(t, err)
	return e.request(t, http.MethodPost, target, token, bytes.NewReader(b), "application/json")
}

func decodeBody(t *testing.T, resp *http.Response, out any) {
	t.Helper()
	defer resp.Body.Close()
	require.NoError(t, json.NewDecoder(resp.Body).Decode(out))
}

func readBody(t *testing.T, resp *http.Response) string {
	t.Helper()
	defer resp.Body.Close()
	b, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return string(b)
}

// register creates a user and returns its access token.
func (e *testEnv) register(t *testing.T, name, email string) string {
	t.Helper()

	resp := e.postJSON(t, "/api/users/register", "", map[string]string{
		"name": name, "email": email, "password": "secret-pass",
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	var body struct {
		Token string `json:"token"`
	}
	decodeBody(t, resp, &body)
	require.NotEmpty(t, body.Token)
	return body.Token
}

type imagePart struct {
	name        string
	contentType string
	content     []byte
}

// carForm builds the multipart body the car endpoints accept.
func carForm(t *testing.T, fields map[string]string, tags []string, images []imagePart) (*bytes.Buffer, string) {
	t.Helper()

	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	for key, val := range fields {
		require.NoError(t, w.WriteField(key, val))
	}
	for _, tag := range tags {
		require.NoError(t, w.WriteField("tags", tag))
	}
	for _, img := range images {
		h := make(textproto.MIMEHeader)
		h.Set("Content-Disposition", fmt.Sprintf(`form-data; name="images"; filename="%s"`, img.name))
		h.Set("Content-Type", img.contentType)
		part, err := w.CreatePart(h)
		require.NoError(t, err)
		_, err = part.Write(img.content)
		require.NoError(t, err)
	}
	require.NoError(t, w.Close())
	return &buf, w.FormDataContentType()
}

func (e *testEnv) listingCount(t *testing.T) int64 {
	t.Helper()
	var count int64
	require.NoError(t, e.db.Model(&models.Listing{}).Count(&count).Error)
	return count
}
