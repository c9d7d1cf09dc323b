package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"application-intake/models"
	"application-intake/services"
)

// memStore 内存对象存储，满足文件工作流的契约
type memStore struct {
	mu      sync.Mutex
	objects map[string][]byte
}

func newMemStore() *memStore {
	return &memStore{objects: make(map[string][]byte)}
}

func (m *memStore) PutObject(ctx context.Context, key string, body []byte, contentType string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.objects[key] = body
	return nil
}

func (m *memStore) CopyObject(ctx context.Context, srcKey, destKey string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.objects[destKey] = m.objects[srcKey]
	return nil
}

func (m *memStore) RemoveObject(ctx context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.objects, key)
	return nil
}

func (m *memStore) PresignedGetURL(ctx context.Context, key string, expiry time.Duration) (string, error) {
	return "https://storage.test/" + key, nil
}

type appTestEnv struct {
	db     *gorm.DB
	files  *services.FileService
	router *gin.Engine
}

func newAppTestEnv(t *testing.T) *appTestEnv {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&models.Application{}, &models.File{}))

	fileService := services.NewFileService(newMemStore(), "applications", db)
	notifier := services.NewNotificationService("", "http://localhost:3000")
	handler := NewApplicationHandler(db, fileService, notifier)

	r := gin.New()
	r.POST("/api/applications", handler.Create)

	return &appTestEnv{db: db, files: fileService, router: r}
}

func (e *appTestEnv) createApplication(t *testing.T, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/api/applications", bytes.NewReader([]byte(body)))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)
	return w
}

func (e *appTestEnv) uploadUnassigned(t *testing.T, filename string) *models.File {
	t.Helper()
	file, err := e.files.UploadFile(context.Background(), []byte("pdf"), filename, "application/pdf", nil, "")
	require.NoError(t, err)
	return file
}

func TestCreateApplicationAssociatesFiles(t *testing.T) {
	env := newAppTestEnv(t)

	f1 := env.uploadUnassigned(t, "portfolio.pdf")
	f2 := env.uploadUnassigned(t, "cv.pdf")

	body, err := json.Marshal(map[string]interface{}{
		"name":    "Jane Doe",
		"fileIds": []string{f1.ID, f2.ID},
	})
	require.NoError(t, err)

	w := env.createApplication(t, string(body))
	require.Equal(t, http.StatusCreated, w.Code)

	var created models.Application
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &created))
	require.NotEmpty(t, created.ID)
	assert.Len(t, created.Files, 2)

	var files []models.File
	require.NoError(t, env.db.Find(&files).Error)
	require.Len(t, files, 2)
	for _, file := range files {
		require.NotNil(t, file.ApplicationID)
		assert.Equal(t, created.ID, *file.ApplicationID)
		assert.True(t, strings.HasPrefix(file.S3Key, "applications/"+created.ID+"/"), "key was %s", file.S3Key)
	}
}

// 部分文件迁移失败时请求整体报错，但已迁移的文件不回滚
func TestCreateApplicationPartialFailureKeepsMovedFiles(t *testing.T) {
	env := newAppTestEnv(t)

	good := env.uploadUnassigned(t, "cv.pdf")

	body, err := json.Marshal(map[string]interface{}{
		"name":    "Jane Doe",
		"fileIds": []string{good.ID, "does-not-exist"},
	})
	require.NoError(t, err)

	w := env.createApplication(t, string(body))
	require.Equal(t, http.StatusInternalServerError, w.Code)

	var reloaded models.File
	require.NoError(t, env.db.First(&reloaded, "id = ?", good.ID).Error)
	require.NotNil(t, reloaded.ApplicationID, "already-moved file must stay associated")
	assert.True(t, strings.HasPrefix(reloaded.S3Key, "applications/"), "key was %s", reloaded.S3Key)
}

func TestCreateApplicationMissingName(t *testing.T) {
	env := newAppTestEnv(t)

	w := env.createApplication(t, `{"description":"no name"}`)
	require.Equal(t, http.StatusBadRequest, w.Code)

	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "Name is required", body["error"])
}

func TestCreateApplicationMalformedBody(t *testing.T) {
	env := newAppTestEnv(t)

	// name 合法但 fileIds 类型不对，不应报 Name is required
	w := env.createApplication(t, `{"name":"Jane","fileIds":"not-an-array"}`)
	require.Equal(t, http.StatusBadRequest, w.Code)

	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "Invalid request body", body["error"])
}
