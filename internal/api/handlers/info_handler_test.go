// filepath: internal/api/handlers/info_handler_test.go
package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"shapehub/internal/models"
	"shapehub/internal/services/mocks"
)

func TestGetInfo(t *testing.T) {
	testInfo := models.Info{
		ServiceName: "ShapeHub-API",
		Version:     "v1.2.3-test",
		UptimeSince: time.Now(),
		LibraryRoot: "/tmp/shape-library",
		Categories:  4,
		Shapes:      17,
		DeckPresent: true,
	}

	infoService := new(mocks.MockInfoService)
	infoService.On("GetInfo").Return(testInfo)

	// GetInfo only touches the info service; the rest can stay nil.
	h := &Handlers{Info: infoService}

	req, err := http.NewRequest("GET", "/api/info", nil)
	assert.NoError(t, err)
	rr := httptest.NewRecorder()

	h.GetInfo(rr, req)

	assert.Equal(t, http.StatusOK, rr.Code)
	var response models.Info
	json.Unmarshal(rr.Body.Bytes(), &response)
	assert.Equal(t, "ShapeHub-API", response.ServiceName)
	assert.Equal(t, 17, response.Shapes)
	assert.True(t, response.DeckPresent)
}
