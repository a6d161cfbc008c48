package sheetimport

import (
	"testing"

	"github.com/gin-gonic/gin"
)

func TestRegisterRoutesExposesSettingsManagement(t *testing.T) {
	gin.SetMode(gin.TestMode)
	engine := gin.New()
	RegisterRoutes(engine.Group("/api/import"), testWorker(newFakeStore(), &fakeRowSource{}))

	want := map[string]bool{
		"POST /api/import/run":                     false,
		"POST /api/import/runs/:id/commit":         false,
		"DELETE /api/import/runs/:id":              false,
		"GET /api/import/sources/:year":            false,
		"DELETE /api/import/sources/:year":         false,
		"DELETE /api/import/agent-range-rules/:id": false,
	}
	for _, route := range engine.Routes() {
		key := route.Method + " " + route.Path
		if _, ok := want[key]; ok {
			want[key] = true
		}
	}
	for key, seen := range want {
		if !seen {
			t.Errorf("route %s is not registered", key)
		}
	}
}
