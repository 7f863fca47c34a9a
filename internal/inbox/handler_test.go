package inbox

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
)

func newTestRouter(service *Service) *gin.Engine {
	gin.SetMode(gin.TestMode)
	engine := gin.New()
	handler := NewHandler(service)
	handler.RegisterRoutes(engine.Group("/leads"), engine.Group("/messages"))
	return engine
}

func TestRecordMessageRejectsMalformedInput(t *testing.T) {
	store := newFakeLeadStore()
	lead := seedLead(store, "owner@harbordental.com")
	engine := newTestRouter(newTestService(store))

	cases := []struct {
		name string
		path string
		body string
	}{
		{"bad lead id", "/leads/not-a-uuid/messages", `{"direction":"in","content":"hi"}`},
		{"bad direction", "/leads/" + lead.ID.String() + "/messages", `{"direction":"sideways","content":"hi"}`},
		{"missing content", "/leads/" + lead.ID.String() + "/messages", `{"direction":"in"}`},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodPost, tc.path, strings.NewReader(tc.body))
			req.Header.Set("Content-Type", "application/json")
			engine.ServeHTTP(rec, req)

			if rec.Code != http.StatusBadRequest {
				t.Fatalf("status = %d, want 400 (body %s)", rec.Code, rec.Body.String())
			}
		})
	}

	if len(store.messages) != 0 {
		t.Fatalf("stored %d messages for rejected requests, want 0", len(store.messages))
	}
}

func TestMarkReadRejectsBadMessageID(t *testing.T) {
	engine := newTestRouter(newTestService(newFakeLeadStore()))

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/messages/not-a-uuid/read", nil)
	engine.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
}
