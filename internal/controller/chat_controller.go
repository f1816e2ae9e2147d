package controller

import (
	"bufio"
	"encoding/json"
	"fmt"

	"what-coffee-be/internal/dto"
	"what-coffee-be/internal/pkg/serverutils"
	"what-coffee-be/internal/service"

	"github.com/gofiber/fiber/v2"
	"github.com/valyala/fasthttp"
)

type IChatController interface {
	RegisterRoutes(r fiber.Router)
	Send(ctx *fiber.Ctx) error
	History(ctx *fiber.Ctx) error
	Clear(ctx *fiber.Ctx) error
}

type chatController struct {
	chatService service.IChatService
}

func NewChatController(chatService service.IChatService) IChatController {
	return &chatController{
		chatService: chatService,
	}
}

func (c *chatController) RegisterRoutes(r fiber.Router) {
	h := r.Group("/chat/v1")
	h.Post("", c.Send)
	h.Get(":sessionId/history", c.History)
	h.Delete(":sessionId", c.Clear)
}

// Send streams the assistant answer as server-sent events. Chunks arrive
// as `data:` events; the terminal `done` event carries the session id and
// the quick-reply signal, `error` marks an interrupted stream.
func (c *chatController) Send(ctx *fiber.Ctx) error {
	var req dto.SendChatRequest
	if err := ctx.BodyParser(&req); err != nil {
		return serverutils.NewBadRequest("Invalid request body")
	}
	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	// Resolve the session up front so the id rides a response header even
	// when the stream later fails.
	sessionID := c.chatService.EnsureSession(req.SessionID)

	ctx.Set(fiber.HeaderContentType, "text/event-stream")
	ctx.Set(fiber.HeaderCacheControl, "no-cache")
	ctx.Set(fiber.HeaderConnection, "keep-alive")
	ctx.Set("X-Session-Id", sessionID)

	// fasthttp's RequestCtx doubles as the context; it is cancelled when
	// the client disconnects, which aborts the upstream generative call.
	reqCtx := ctx.Context()

	reqCtx.SetBodyStreamWriter(fasthttp.StreamWriter(func(w *bufio.Writer) {
		sink := func(chunk string) error {
			if err := writeSSE(w, "", map[string]string{"text": chunk}); err != nil {
				return err
			}
			return w.Flush()
		}

		result, err := c.chatService.StreamChat(reqCtx, sessionID, req.Message, sink)
		if err != nil {
			// Partial text stands; the error marker tells the client the
			// turn did not complete.
			_ = writeSSE(w, "error", map[string]string{
				"session_id": sessionID,
				"message":    "The answer was interrupted. Please try again!",
			})
			_ = w.Flush()
			return
		}

		_ = writeSSE(w, "done", map[string]string{
			"session_id":  result.SessionID,
			"quick_reply": result.QuickReply,
		})
		_ = w.Flush()
	}))

	return nil
}

func (c *chatController) History(ctx *fiber.Ctx) error {
	sessionID := ctx.Params("sessionId")

	history, found := c.chatService.GetChatHistory(sessionID)
	if !found {
		return serverutils.NewNotFound("Unknown session")
	}
	return ctx.JSON(serverutils.SuccessResponse("Success get chat history", history))
}

func (c *chatController) Clear(ctx *fiber.Ctx) error {
	sessionID := ctx.Params("sessionId")
	c.chatService.ClearSession(sessionID)
	return ctx.JSON(serverutils.SuccessResponse("Session cleared", nil))
}

func writeSSE(w *bufio.Writer, event string, payload interface{}) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	if event != "" {
		if _, err := fmt.Fprintf(w, "event: %s\n", event); err != nil {
			return err
		}
	}
	_, err = fmt.Fprintf(w, "data: %s\n\n", data)
	return err
}
