// filepath: internal/api/handlers/shape_handler_test.go
package handlers

import (
	"bytes"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"shapehub/internal/config"
	"shapehub/internal/models"
	"shapehub/internal/services"
	"shapehub/internal/services/mocks"
)

// setupShapeHandlerTestAPI creates a new test server for shape handlers.
func setupShapeHandlerTestAPI(t *testing.T) (*httptest.Server, *mocks.MockShapeService, func()) {
	t.Helper()

	mockShapeSvc := new(mocks.MockShapeService)

	dummyCfg := &config.Config{
		MaxUploadSizeBytes: 8 << 20, // 8MB default for tests
	}

	h := NewHandlers(nil, nil, mockShapeSvc, nil, nil, dummyCfg)

	r := mux.NewRouter()
	r.HandleFunc("/shapes", h.GetShapes).Methods("GET")
	r.HandleFunc("/shapes", h.CaptureShape).Methods("POST")
	r.HandleFunc("/shapes/{category}/{id}", h.GetShape).Methods("GET")
	r.HandleFunc("/shapes/{category}/{id}", h.UpdateShape).Methods("PATCH")
	r.HandleFunc("/shapes/{category}/{id}", h.DeleteShape).Methods("DELETE")
	r.HandleFunc("/shapes/{category}/{id}/preview", h.GetShapePreview).Methods("GET")
	r.HandleFunc("/shapes/{category}/{id}/native", h.GetShapeNative).Methods("GET")

	server := httptest.NewServer(r)

	cleanup := func() {
		server.Close()
	}

	return server, mockShapeSvc, cleanup
}

func TestGetShapes(t *testing.T) {
	server, mockShapeSvc, cleanup := setupShapeHandlerTestAPI(t)
	defer cleanup()

	mockShapeSvc.On("GetShapes", "basic").Return([]models.Shape{
		{ID: "arrow-1", Name: "Arrow", Category: "basic", Tags: []string{}},
		{ID: "oval-1", Name: "Oval", Category: "basic", Tags: []string{}},
	}, nil).Once()

	resp, err := http.Get(server.URL + "/shapes?category=basic")
	assert.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var shapes []models.Shape
	err = json.NewDecoder(resp.Body).Decode(&shapes)
	assert.NoError(t, err)
	assert.Len(t, shapes, 2)
	assert.Equal(t, "Arrow", shapes[0].Name)

	mockShapeSvc.AssertExpectations(t)
}

func TestGetShapes_MissingCategory(t *testing.T) {
	server, mockShapeSvc, cleanup := setupShapeHandlerTestAPI(t)
	defer cleanup()

	resp, err := http.Get(server.URL + "/shapes")
	assert.NoError(t, err)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	mockShapeSvc.AssertNotCalled(t, "GetShapes")
}

func TestGetShapes_EmptyIsArray(t *testing.T) {
	server, mockShapeSvc, cleanup := setupShapeHandlerTestAPI(t)
	defer cleanup()

	mockShapeSvc.On("GetShapes", "custom").Return(nil, nil).Once()

	resp, err := http.Get(server.URL + "/shapes?category=custom")
	assert.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	body, _ := io.ReadAll(resp.Body)
	assert.JSONEq(t, "[]", string(body))
}

func TestCaptureShape_Success(t *testing.T) {
	server, mockShapeSvc, cleanup := setupShapeHandlerTestAPI(t)
	defer cleanup()

	// --- Prepare multipart form ---
	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)

	metadataStr := `{"name": "Block Arrow", "category": "basic", "tags": ["arrow"]}`
	writer.WriteField("metadata", metadataStr)

	previewPart, _ := writer.CreateFormFile("preview", "capture.png")
	previewPart.Write([]byte("\x89PNG\r\n\x1a\nfake"))

	nativePart, _ := writer.CreateFormFile("native", "capture.pptx")
	nativePart.Write([]byte("PK\x03\x04fake"))
	writer.Close()

	// --- Mock the service call ---
	returnedShape := &models.Shape{
		ID:         "01J8ZULIDTEST0000000000000",
		Name:       "Block Arrow",
		Category:   "basic",
		Tags:       []string{"arrow"},
		Preview:    "assets/basic/01J8ZULIDTEST0000000000000.png",
		NativePptx: "native/01J8ZULIDTEST0000000000000.pptx",
	}

	mockShapeSvc.On(
		"CaptureShape",
		metadataStr,
		mock.Anything,
		mock.Anything,
		mock.Anything,
		mock.Anything,
	).Return(returnedShape, nil).Once()

	// --- Capture ---
	req, _ := http.NewRequest("POST", server.URL+"/shapes", body)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	resp, err := http.DefaultClient.Do(req)
	assert.NoError(t, err)

	if resp.StatusCode != http.StatusCreated {
		bodyBytes, _ := io.ReadAll(resp.Body)
		t.Fatalf("Expected status 201, got %d. Body: %s", resp.StatusCode, string(bodyBytes))
	}
	defer resp.Body.Close()

	var captured models.Shape
	err = json.NewDecoder(resp.Body).Decode(&captured)
	assert.NoError(t, err)
	assert.Equal(t, "Block Arrow", captured.Name)
	assert.Equal(t, "assets/basic/01J8ZULIDTEST0000000000000.png", captured.Preview)

	mockShapeSvc.AssertExpectations(t)
}

func TestCaptureShape_MissingParts(t *testing.T) {
	server, mockShapeSvc, cleanup := setupShapeHandlerTestAPI(t)
	defer cleanup()

	t.Run("No Metadata", func(t *testing.T) {
		body := &bytes.Buffer{}
		writer := multipart.NewWriter(body)
		part, _ := writer.CreateFormFile("preview", "capture.png")
		part.Write([]byte("\x89PNG\r\n\x1a\n"))
		writer.Close()

		req, _ := http.NewRequest("POST", server.URL+"/shapes", body)
		req.Header.Set("Content-Type", writer.FormDataContentType())
		resp, err := http.DefaultClient.Do(req)
		assert.NoError(t, err)
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	})

	t.Run("No Preview", func(t *testing.T) {
		body := &bytes.Buffer{}
		writer := multipart.NewWriter(body)
		writer.WriteField("metadata", `{"name": "Arrow", "category": "basic"}`)
		writer.Close()

		req, _ := http.NewRequest("POST", server.URL+"/shapes", body)
		req.Header.Set("Content-Type", writer.FormDataContentType())
		resp, err := http.DefaultClient.Do(req)
		assert.NoError(t, err)
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	})

	mockShapeSvc.AssertNotCalled(t, "CaptureShape")
}

func TestCaptureShape_UnsupportedPreview(t *testing.T) {
	server, mockShapeSvc, cleanup := setupShapeHandlerTestAPI(t)
	defer cleanup()

	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	writer.WriteField("metadata", `{"name": "Arrow", "category": "basic"}`)
	part, _ := writer.CreateFormFile("preview", "capture.bmp")
	part.Write([]byte("BM not a png"))
	writer.Close()

	mockShapeSvc.On(
		"CaptureShape",
		mock.AnythingOfType("string"),
		mock.Anything,
		mock.Anything,
		mock.Anything,
		mock.Anything,
	).Return(nil, services.ErrUnsupported).Once()

	req, _ := http.NewRequest("POST", server.URL+"/shapes", body)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	resp, err := http.DefaultClient.Do(req)
	assert.NoError(t, err)

	assert.Equal(t, http.StatusUnsupportedMediaType, resp.StatusCode)
	mockShapeSvc.AssertExpectations(t)
}

func TestUpdateShape(t *testing.T) {
	server, mockShapeSvc, cleanup := setupShapeHandlerTestAPI(t)
	defer cleanup()

	patch := func(t *testing.T, path, body string) *http.Response {
		t.Helper()
		req, _ := http.NewRequest("PATCH", server.URL+path, bytes.NewReader([]byte(body)))
		req.Header.Set("Content-Type", "application/json")
		resp, err := http.DefaultClient.Do(req)
		assert.NoError(t, err)
		return resp
	}

	t.Run("Fields Only", func(t *testing.T) {
		fields := models.ShapeFields{"name": json.RawMessage(`"Renamed"`)}
		mockShapeSvc.On("UpdateShape", "basic", "arrow-1", fields).
			Return(&models.Shape{ID: "arrow-1", Name: "Renamed", Category: "basic"}, nil).Once()

		resp := patch(t, "/shapes/basic/arrow-1", `{"name":"Renamed"}`)
		assert.Equal(t, http.StatusOK, resp.StatusCode)

		var updated models.Shape
		json.NewDecoder(resp.Body).Decode(&updated)
		assert.Equal(t, "Renamed", updated.Name)
		mockShapeSvc.AssertNotCalled(t, "MoveShape")
	})

	t.Run("Move Only", func(t *testing.T) {
		mockShapeSvc.On("MoveShape", "basic", "arrow-1", "callouts").
			Return(&models.Shape{ID: "arrow-1", Name: "Arrow", Category: "callouts"}, nil).Once()

		resp := patch(t, "/shapes/basic/arrow-1", `{"category":"callouts"}`)
		assert.Equal(t, http.StatusOK, resp.StatusCode)

		var moved models.Shape
		json.NewDecoder(resp.Body).Decode(&moved)
		assert.Equal(t, "callouts", moved.Category)
	})

	t.Run("Move And Rename", func(t *testing.T) {
		fields := models.ShapeFields{"name": json.RawMessage(`"Shout"`)}
		mockShapeSvc.On("MoveShape", "basic", "arrow-1", "callouts").
			Return(&models.Shape{ID: "arrow-1", Name: "Arrow", Category: "callouts"}, nil).Once()
		// The rename lands on the category the shape just moved to.
		mockShapeSvc.On("UpdateShape", "callouts", "arrow-1", fields).
			Return(&models.Shape{ID: "arrow-1", Name: "Shout", Category: "callouts"}, nil).Once()

		resp := patch(t, "/shapes/basic/arrow-1", `{"category":"callouts","name":"Shout"}`)
		assert.Equal(t, http.StatusOK, resp.StatusCode)

		var final models.Shape
		json.NewDecoder(resp.Body).Decode(&final)
		assert.Equal(t, "Shout", final.Name)
		assert.Equal(t, "callouts", final.Category)
	})

	t.Run("Same Category Is No Move", func(t *testing.T) {
		fields := models.ShapeFields{"name": json.RawMessage(`"Kept"`)}
		mockShapeSvc.On("UpdateShape", "basic", "arrow-1", fields).
			Return(&models.Shape{ID: "arrow-1", Name: "Kept", Category: "basic"}, nil).Once()

		resp := patch(t, "/shapes/basic/arrow-1", `{"category":"basic","name":"Kept"}`)
		assert.Equal(t, http.StatusOK, resp.StatusCode)
	})

	t.Run("No Fields", func(t *testing.T) {
		resp := patch(t, "/shapes/basic/arrow-1", `{}`)
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	})

	t.Run("Bad Category Value", func(t *testing.T) {
		resp := patch(t, "/shapes/basic/arrow-1", `{"category":123}`)
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	})

	t.Run("Unknown Shape", func(t *testing.T) {
		fields := models.ShapeFields{"name": json.RawMessage(`"Ghost"`)}
		mockShapeSvc.On("UpdateShape", "basic", "ghost", fields).
			Return(nil, services.ErrNotFound).Once()

		resp := patch(t, "/shapes/basic/ghost", `{"name":"Ghost"}`)
		assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	})

	mockShapeSvc.AssertExpectations(t)
}

func TestDeleteShape(t *testing.T) {
	server, mockShapeSvc, cleanup := setupShapeHandlerTestAPI(t)
	defer cleanup()

	mockShapeSvc.On("DeleteShape", "basic", "arrow-1").Return(nil).Once()

	req, _ := http.NewRequest("DELETE", server.URL+"/shapes/basic/arrow-1", nil)
	resp, err := http.DefaultClient.Do(req)
	assert.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var msg MessageResponse
	err = json.NewDecoder(resp.Body).Decode(&msg)
	assert.NoError(t, err)
	assert.Equal(t, "Shape 'arrow-1' was successfully deleted.", msg.Message)

	mockShapeSvc.AssertExpectations(t)
}

func TestGetShapePreview(t *testing.T) {
	server, mockShapeSvc, cleanup := setupShapeHandlerTestAPI(t)
	defer cleanup()

	tmpfile, err := os.CreateTemp("", "preview-*.png")
	assert.NoError(t, err)
	defer os.Remove(tmpfile.Name())
	tmpfile.Write([]byte("\x89PNG\r\n\x1a\nfake preview"))
	tmpfile.Close()

	mockShapeSvc.On("PreviewPath", "basic", "arrow-1").Return(tmpfile.Name(), nil).Once()

	resp, err := http.Get(server.URL + "/shapes/basic/arrow-1/preview")
	assert.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "image/png", resp.Header.Get("Content-Type"))
	assert.Equal(t, "no-cache, no-store, must-revalidate", resp.Header.Get("Cache-Control"))

	bodyBytes, err := io.ReadAll(resp.Body)
	assert.NoError(t, err)
	assert.Equal(t, []byte("\x89PNG\r\n\x1a\nfake preview"), bodyBytes)

	mockShapeSvc.AssertExpectations(t)
}

func TestGetShapePreview_NotFound(t *testing.T) {
	server, mockShapeSvc, cleanup := setupShapeHandlerTestAPI(t)
	defer cleanup()

	mockShapeSvc.On("PreviewPath", "basic", "ghost").Return("", services.ErrNotFound).Once()

	resp, err := http.Get(server.URL + "/shapes/basic/ghost/preview")
	assert.NoError(t, err)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	mockShapeSvc.AssertExpectations(t)
}

func TestGetShapeNative(t *testing.T) {
	server, mockShapeSvc, cleanup := setupShapeHandlerTestAPI(t)
	defer cleanup()

	tmpfile, err := os.CreateTemp("", "native-*.pptx")
	assert.NoError(t, err)
	defer os.Remove(tmpfile.Name())
	tmpfile.Write([]byte("PK\x03\x04 native snippet"))
	tmpfile.Close()

	mockShapeSvc.On("NativePath", "basic", "arrow-1").Return(tmpfile.Name(), nil).Once()

	resp, err := http.Get(server.URL + "/shapes/basic/arrow-1/native")
	assert.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "application/vnd.openxmlformats-officedocument.presentationml.presentation", resp.Header.Get("Content-Type"))
	assert.Equal(t, "attachment; filename=\"arrow-1.pptx\"", resp.Header.Get("Content-Disposition"))

	bodyBytes, err := io.ReadAll(resp.Body)
	assert.NoError(t, err)
	assert.Equal(t, []byte("PK\x03\x04 native snippet"), bodyBytes)

	mockShapeSvc.AssertExpectations(t)
}
