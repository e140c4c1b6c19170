package emails

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
)

func TestDeadLettersEndpoint(t *testing.T) {
	rdb := newTestRedis(t)
	ctx := context.Background()

	for _, id := range []string{"m1", "m2"} {
		payload, err := json.Marshal(Message{ID: id, To: "a@example.com", Template: TemplateWelcome, Attempts: maxAttempts})
		if err != nil {
			t.Fatalf("marshal: %v", err)
		}
		if err := rdb.LPush(ctx, deadLetterKey, payload).Err(); err != nil {
			t.Fatalf("seed dead letter: %v", err)
		}
	}
	// Undecodable entries are parked raw and skipped by the listing.
	if err := rdb.LPush(ctx, deadLetterKey, "not-json").Err(); err != nil {
		t.Fatalf("seed raw entry: %v", err)
	}

	gin.SetMode(gin.TestMode)
	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	c.Request = httptest.NewRequest(http.MethodGet, "/admin/emails/dead", nil)

	NewHandler(rdb).DeadLetters(c)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	var body struct {
		DeadLetters []Message `json:"deadLetters"`
		Total       int       `json:"total"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body.Total != 2 || len(body.DeadLetters) != 2 {
		t.Fatalf("total = %d, letters = %d, want 2 each", body.Total, len(body.DeadLetters))
	}
	// Newest first.
	if body.DeadLetters[0].ID != "m2" {
		t.Errorf("first letter = %q, want m2", body.DeadLetters[0].ID)
	}
}
