// filepath: internal/services/main_test.go
package services

import (
	"bytes"
	"context"
	"encoding/json"
	"mime/multipart"
	"sync"
	"testing"
	"time"

	"github.com/patrickmn/go-cache"
	"github.com/stretchr/testify/require"

	"shapehub/internal/library"
	"shapehub/internal/models"
	"shapehub/internal/preview"
	"shapehub/internal/repository"
)

// recordingAuditor captures audit actions so tests can assert what was
// logged without standing up a real sink.
type recordingAuditor struct {
	mu      sync.Mutex
	actions []string
}

func (a *recordingAuditor) Log(_ context.Context, action string, _ string, _ string, _ map[string]interface{}) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.actions = append(a.actions, action)
}

func (a *recordingAuditor) recorded() []string {
	a.mu.Lock()
	defer a.mu.Unlock()
	out := make([]string, len(a.actions))
	copy(out, a.actions)
	return out
}

// setupIntegrationTest creates a real repository and preview manager backed
// by a temp library root seeded with the default categories.
func setupIntegrationTest(t *testing.T) (*repository.Repository, *preview.Manager, *recordingAuditor) {
	t.Helper()

	paths, err := library.NewPaths(t.TempDir())
	require.NoError(t, err)
	require.NoError(t, paths.EnsureLayout())

	repo := repository.NewRepository(paths, cache.New(5*time.Minute, 10*time.Minute))
	_, err = repo.LoadCategories()
	require.NoError(t, err)

	return repo, preview.NewManager(paths), &recordingAuditor{}
}

// pngBytes returns a payload http.DetectContentType sniffs as image/png.
func pngBytes() []byte {
	return append([]byte("\x89PNG\r\n\x1a\n"), []byte("not a real image, close enough for sniffing")...)
}

// rawFields builds a partial-update field set from raw JSON values.
func rawFields(t *testing.T, kv map[string]string) models.ShapeFields {
	t.Helper()
	fields := models.ShapeFields{}
	for k, v := range kv {
		fields[k] = json.RawMessage(v)
	}
	return fields
}

// buildUpload packs content into a parsed multipart file part, the exact
// form CaptureShape receives from the HTTP layer.
func buildUpload(t *testing.T, field, filename string, content []byte) (multipart.File, *multipart.FileHeader) {
	t.Helper()

	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	part, err := writer.CreateFormFile(field, filename)
	require.NoError(t, err)
	_, err = part.Write(content)
	require.NoError(t, err)
	require.NoError(t, writer.Close())

	form, err := multipart.NewReader(body, writer.Boundary()).ReadForm(32 << 20)
	require.NoError(t, err)
	t.Cleanup(func() { form.RemoveAll() })

	header := form.File[field][0]
	file, err := header.Open()
	require.NoError(t, err)
	t.Cleanup(func() { file.Close() })

	return file, header
}
