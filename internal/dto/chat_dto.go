package dto

import "what-coffee-be/pkg/store"

type SendChatRequest struct {
	Message   string `json:"message" validate:"required,max=500"`
	SessionID string `json:"session_id"`
}

// ChatResult is the out-of-band envelope returned once a stream completes.
type ChatResult struct {
	SessionID  string `json:"session_id"`
	Turn       int    `json:"turn"`
	QuickReply string `json:"quick_reply"`
	FullText   string `json:"-"`
}

type TurnResponse struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type GetChatHistoryResponse struct {
	SessionID string         `json:"session_id"`
	Turns     []TurnResponse `json:"turns"`
	Profile   store.Profile  `json:"profile"`
}
