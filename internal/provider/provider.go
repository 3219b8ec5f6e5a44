// Package provider holds the LLM completion client.
package provider

import "context"

// Message is one turn of a conversation.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// ChatRequest is a single completion call.
type ChatRequest struct {
	System      string
	Messages    []Message
	Temperature float64
	MaxTokens   int
}

// Usage reports the token counts the API billed for one call.
type Usage struct {
	InputTokens  int
	OutputTokens int
}

// ChatResponse is the assistant's reply plus billing metadata.
type ChatResponse struct {
	Content string
	Usage   Usage
}

// Completer is the completion backend the router talks to.
type Completer interface {
	Complete(ctx context.Context, req *ChatRequest) (*ChatResponse, error)
}
