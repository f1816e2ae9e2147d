package service

import (
	"context"
	"encoding/json"
	"log"
	"os"
	"path/filepath"
	"time"

	"what-coffee-be/internal/dto"
	"what-coffee-be/internal/repository/memory"
	"what-coffee-be/pkg/answer"
	"what-coffee-be/pkg/events"
	"what-coffee-be/pkg/llm"
	"what-coffee-be/pkg/profile"
	"what-coffee-be/pkg/quickreply"
	"what-coffee-be/pkg/retrieval"
	"what-coffee-be/pkg/store"

	"what-coffee-be/internal/pkg/logger"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/google/uuid"
)

// TopicChatEvents is the in-process event bus topic for chat lifecycle events.
const TopicChatEvents = "chat.events"

// turnLimitMessage closes a session that hit the per-session turn cap.
const turnLimitMessage = "You've reached the end of this session! Refresh the page to start fresh and discover more coffees."

// IChatService defines the conversational recommendation surface
type IChatService interface {
	// EnsureSession resolves or mints the session id before streaming starts
	// so the transport can surface it out-of-band.
	EnsureSession(sessionID string) string

	// StreamChat runs one full turn, pushing answer chunks through sink.
	// On upstream failure the already-emitted text stands, the error is
	// returned and no assistant turn is committed.
	StreamChat(ctx context.Context, sessionID, userMessage string, sink llm.StreamHandler) (*dto.ChatResult, error)

	GetChatHistory(sessionID string) (*dto.GetChatHistoryResponse, bool)
	ClearSession(sessionID string)
}

type chatService struct {
	sessions  *memory.SessionRepository
	extractor *profile.Extractor
	engine    *retrieval.Engine
	streamer  *answer.Streamer
	publisher message.Publisher
	sysLogger logger.ILogger

	maxTurns int
	topN     int
}

// NewChatService wires the per-turn pipeline
func NewChatService(
	sessions *memory.SessionRepository,
	extractor *profile.Extractor,
	engine *retrieval.Engine,
	streamer *answer.Streamer,
	publisher message.Publisher,
	sysLogger logger.ILogger,
	maxTurns int,
	topN int,
) IChatService {
	if maxTurns <= 0 {
		maxTurns = 8
	}
	if topN <= 0 {
		topN = 3
	}
	return &chatService{
		sessions:  sessions,
		extractor: extractor,
		engine:    engine,
		streamer:  streamer,
		publisher: publisher,
		sysLogger: sysLogger,
		maxTurns:  maxTurns,
		topN:      topN,
	}
}

// InitPipelineLogger builds the plain logger shared by the pipeline
// components, writing to logs/llm_chat.log with stdout fallback.
func InitPipelineLogger() *log.Logger {
	logPath := filepath.Join(".", "logs", "llm_chat.log")
	if err := os.MkdirAll(filepath.Dir(logPath), 0755); err != nil {
		log.Printf("Failed to create logs directory: %v", err)
	}
	file, err := os.OpenFile(logPath, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return log.New(os.Stdout, "[LLM-CHAT] ", log.LstdFlags)
	}
	return log.New(file, "", log.LstdFlags)
}

func (cs *chatService) EnsureSession(sessionID string) string {
	_, existed := cs.sessions.Get(sessionID)
	id, _ := cs.sessions.GetOrCreate(sessionID)
	if !existed {
		cs.publish(events.NewSessionCreated(id))
	}
	return id
}

func (cs *chatService) StreamChat(ctx context.Context, sessionID, userMessage string, sink llm.StreamHandler) (*dto.ChatResult, error) {
	start := time.Now()

	// Single writer per session: the whole turn holds the session lock so a
	// turn's profile merge and history append land before the next begins.
	unlock := cs.sessions.Lock(sessionID)
	defer unlock()

	id, session := cs.sessions.GetOrCreate(sessionID)
	turn := session.UserTurnCount() + 1

	cs.sysLogger.Info("chat", "chat_request", map[string]interface{}{
		"session_id":     id,
		"turn":           turn,
		"message_length": len(userMessage),
	})

	if turn > cs.maxTurns {
		cs.sysLogger.Info("chat", "turn_limit_reached", map[string]interface{}{"session_id": id})
		if err := sink(turnLimitMessage); err != nil {
			return nil, err
		}
		return &dto.ChatResult{
			SessionID:  id,
			Turn:       turn,
			QuickReply: string(quickreply.CategoryNone),
			FullText:   turnLimitMessage,
		}, nil
	}

	historyBefore := append([]store.Turn(nil), session.Turns...)
	cs.sessions.AppendTurn(id, store.Turn{Role: store.RoleUser, Content: userMessage})

	// Extraction is best-effort; a failed call merges nothing
	update := cs.extractor.Extract(ctx, historyBefore, userMessage)
	prof := cs.sessions.MergeProfile(id, update)

	candidates, err := cs.engine.Retrieve(ctx, prof, cs.topN)
	if err != nil {
		// Degrade to an ungrounded answer rather than failing the turn
		cs.sysLogger.Error("chat", "retrieval_failed", map[string]interface{}{
			"session_id": id,
			"error":      err.Error(),
		})
		candidates = nil
	}

	_, freshSession := cs.sessions.GetOrCreate(id)
	fullText, err := cs.streamer.Stream(ctx, freshSession.Turns, prof, candidates, sink)
	if err != nil {
		// Partial text already reached the caller; the turn list stays
		// consistent by not committing an assistant turn.
		cs.sysLogger.Error("chat", "chat_stream_failed", map[string]interface{}{
			"session_id":  id,
			"turn":        turn,
			"emitted":     len(fullText),
			"duration_ms": time.Since(start).Milliseconds(),
			"error":       err.Error(),
		})
		return &dto.ChatResult{SessionID: id, Turn: turn, FullText: fullText}, err
	}

	cs.sessions.AppendTurn(id, store.Turn{Role: store.RoleAssistant, Content: fullText})

	// Classification runs over the completed turn only, never over chunks
	category := quickreply.Classify(fullText)

	cs.sysLogger.Info("chat", "chat_response", map[string]interface{}{
		"session_id":      id,
		"turn":            turn,
		"duration_ms":     time.Since(start).Milliseconds(),
		"response_length": len(fullText),
		"candidates":      len(candidates),
		"quick_reply":     string(category),
	})

	cs.publish(events.NewChatCompleted(id, turn, len(fullText), string(category), time.Since(start).Milliseconds()))

	return &dto.ChatResult{
		SessionID:  id,
		Turn:       turn,
		QuickReply: string(category),
		FullText:   fullText,
	}, nil
}

func (cs *chatService) GetChatHistory(sessionID string) (*dto.GetChatHistoryResponse, bool) {
	session, found := cs.sessions.Get(sessionID)
	if !found {
		return nil, false
	}

	turns := make([]dto.TurnResponse, len(session.Turns))
	for i, t := range session.Turns {
		turns[i] = dto.TurnResponse{Role: t.Role, Content: t.Content}
	}
	return &dto.GetChatHistoryResponse{
		SessionID: session.ID,
		Turns:     turns,
		Profile:   session.Profile,
	}, true
}

func (cs *chatService) ClearSession(sessionID string) {
	cs.sessions.Delete(sessionID)
	cs.sysLogger.Info("chat", "session_cleared", map[string]interface{}{"session_id": sessionID})
}

func (cs *chatService) publish(event events.Event) {
	if cs.publisher == nil {
		return
	}
	payload, err := json.Marshal(map[string]interface{}{
		"type":        event.EventType(),
		"payload":     event.Payload(),
		"occurred_at": event.Timestamp(),
	})
	if err != nil {
		return
	}
	msg := message.NewMessage(uuid.NewString(), payload)
	if err := cs.publisher.Publish(TopicChatEvents, msg); err != nil {
		cs.sysLogger.Warn("chat", "event_publish_failed", map[string]interface{}{
			"type":  event.EventType(),
			"error": err.Error(),
		})
	}
}
