package controller

import (
	"context"
	"errors"
	"io"
	"net/http/httptest"
	"strings"
	"testing"

	"what-coffee-be/internal/dto"
	"what-coffee-be/internal/pkg/serverutils"
	"what-coffee-be/pkg/llm"
	"what-coffee-be/pkg/store"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
)

// fakeChatService scripts the pipeline behind the HTTP surface.
type fakeChatService struct {
	sessionID  string
	chunks     []string
	quickReply string
	streamErr  error

	history *dto.GetChatHistoryResponse
	cleared []string
}

func (f *fakeChatService) EnsureSession(sessionID string) string {
	if sessionID != "" {
		return sessionID
	}
	return f.sessionID
}

func (f *fakeChatService) StreamChat(ctx context.Context, sessionID, userMessage string, sink llm.StreamHandler) (*dto.ChatResult, error) {
	var full strings.Builder
	for _, chunk := range f.chunks {
		if err := sink(chunk); err != nil {
			return nil, err
		}
		full.WriteString(chunk)
	}
	if f.streamErr != nil {
		return &dto.ChatResult{SessionID: sessionID, FullText: full.String()}, f.streamErr
	}
	return &dto.ChatResult{
		SessionID:  sessionID,
		Turn:       1,
		QuickReply: f.quickReply,
		FullText:   full.String(),
	}, nil
}

func (f *fakeChatService) GetChatHistory(sessionID string) (*dto.GetChatHistoryResponse, bool) {
	if f.history == nil || f.history.SessionID != sessionID {
		return nil, false
	}
	return f.history, true
}

func (f *fakeChatService) ClearSession(sessionID string) {
	f.cleared = append(f.cleared, sessionID)
}

func newTestApp(svc *fakeChatService) *fiber.App {
	app := fiber.New()
	app.Use(serverutils.ErrorHandlerMiddleware())
	api := app.Group("/api")
	NewChatController(svc).RegisterRoutes(api)
	return app
}

func TestSendStreamsSSE(t *testing.T) {
	svc := &fakeChatService{
		sessionID:  "minted-id",
		chunks:     []string{"Hello ", "there"},
		quickReply: "experience",
	}
	app := newTestApp(svc)

	req := httptest.NewRequest(fiber.MethodPost, "/api/chat/v1", strings.NewReader(`{"message": "hi"}`))
	req.Header.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)

	resp, err := app.Test(req, -1)
	assert.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Equal(t, "text/event-stream", resp.Header.Get(fiber.HeaderContentType))
	assert.Equal(t, "minted-id", resp.Header.Get("X-Session-Id"))

	body, err := io.ReadAll(resp.Body)
	assert.NoError(t, err)
	got := string(body)

	assert.Contains(t, got, `data: {"text":"Hello "}`)
	assert.Contains(t, got, `data: {"text":"there"}`)
	assert.Contains(t, got, "event: done")
	assert.Contains(t, got, `"quick_reply":"experience"`)
	assert.Contains(t, got, `"session_id":"minted-id"`)

	// Chunk events precede the terminal event.
	assert.Less(t, strings.Index(got, `"Hello "`), strings.Index(got, "event: done"))
}

func TestSendEmitsErrorEvent(t *testing.T) {
	svc := &fakeChatService{
		sessionID: "s1",
		chunks:    []string{"Here are "},
		streamErr: errors.New("upstream reset"),
	}
	app := newTestApp(svc)

	req := httptest.NewRequest(fiber.MethodPost, "/api/chat/v1", strings.NewReader(`{"message": "hi", "session_id": "s1"}`))
	req.Header.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)

	resp, err := app.Test(req, -1)
	assert.NoError(t, err)

	body, _ := io.ReadAll(resp.Body)
	got := string(body)

	assert.Contains(t, got, `data: {"text":"Here are "}`)
	assert.Contains(t, got, "event: error")
	assert.Contains(t, got, "The answer was interrupted. Please try again!")
	assert.NotContains(t, got, "event: done")
}

func TestSendRejectsInvalidBody(t *testing.T) {
	app := newTestApp(&fakeChatService{sessionID: "s1"})

	tests := []struct {
		name string
		body string
	}{
		{"empty message", `{"message": ""}`},
		{"missing message", `{}`},
		{"oversized message", `{"message": "` + strings.Repeat("x", 501) + `"}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(fiber.MethodPost, "/api/chat/v1", strings.NewReader(tt.body))
			req.Header.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)

			resp, err := app.Test(req, -1)
			assert.NoError(t, err)
			assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
		})
	}
}

func TestHistoryEndpoint(t *testing.T) {
	svc := &fakeChatService{
		history: &dto.GetChatHistoryResponse{
			SessionID: "s1",
			Turns: []dto.TurnResponse{
				{Role: store.RoleUser, Content: "hi"},
				{Role: store.RoleAssistant, Content: "hello"},
			},
		},
	}
	app := newTestApp(svc)

	resp, err := app.Test(httptest.NewRequest(fiber.MethodGet, "/api/chat/v1/s1/history", nil), -1)
	assert.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	body, _ := io.ReadAll(resp.Body)
	assert.Contains(t, string(body), `"session_id":"s1"`)

	resp, err = app.Test(httptest.NewRequest(fiber.MethodGet, "/api/chat/v1/unknown/history", nil), -1)
	assert.NoError(t, err)
	assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)
}

func TestClearEndpoint(t *testing.T) {
	svc := &fakeChatService{}
	app := newTestApp(svc)

	resp, err := app.Test(httptest.NewRequest(fiber.MethodDelete, "/api/chat/v1/s1", nil), -1)
	assert.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Equal(t, []string{"s1"}, svc.cleared)
}
