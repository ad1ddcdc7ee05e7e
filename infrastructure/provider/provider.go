// Package provider implements the embedding and chat model collaborators.
package provider

import "context"

// Message is a single chat message.
type Message struct {
	role    string
	content string
}

// NewMessage creates a new Message.
func NewMessage(role, content string) Message {
	return Message{role: role, content: content}
}

// SystemMessage creates a system-role message.
func SystemMessage(content string) Message {
	return NewMessage("system", content)
}

// UserMessage creates a user-role message.
func UserMessage(content string) Message {
	return NewMessage("user", content)
}

// Role returns the message role.
func (m Message) Role() string { return m.role }

// Content returns the message content.
func (m Message) Content() string { return m.content }

// ChatCompletionRequest describes one chat completion call.
type ChatCompletionRequest struct {
	messages    []Message
	maxTokens   int
	temperature float64
	jsonObject  bool
}

// NewChatCompletionRequest creates a request with the given messages.
func NewChatCompletionRequest(messages ...Message) ChatCompletionRequest {
	return ChatCompletionRequest{messages: messages}
}

// WithMaxTokens returns a copy with the completion token limit set.
func (r ChatCompletionRequest) WithMaxTokens(n int) ChatCompletionRequest {
	r.maxTokens = n
	return r
}

// WithTemperature returns a copy with the sampling temperature set.
func (r ChatCompletionRequest) WithTemperature(t float64) ChatCompletionRequest {
	r.temperature = t
	return r
}

// WithJSONObject returns a copy that requests a JSON-object response format,
// forcing structurally valid JSON at the transport level where the model
// supports it.
func (r ChatCompletionRequest) WithJSONObject() ChatCompletionRequest {
	r.jsonObject = true
	return r
}

// Messages returns the chat messages.
func (r ChatCompletionRequest) Messages() []Message { return r.messages }

// MaxTokens returns the completion token limit, 0 for the model default.
func (r ChatCompletionRequest) MaxTokens() int { return r.maxTokens }

// Temperature returns the sampling temperature, 0 for the model default.
func (r ChatCompletionRequest) Temperature() float64 { return r.temperature }

// JSONObject reports whether a JSON-object response format is requested.
func (r ChatCompletionRequest) JSONObject() bool { return r.jsonObject }

// ChatCompletionResponse is the result of a chat completion call.
type ChatCompletionResponse struct {
	content      string
	finishReason string
}

// NewChatCompletionResponse creates a response.
func NewChatCompletionResponse(content, finishReason string) ChatCompletionResponse {
	return ChatCompletionResponse{content: content, finishReason: finishReason}
}

// Content returns the generated text.
func (r ChatCompletionResponse) Content() string { return r.content }

// FinishReason returns why generation stopped.
func (r ChatCompletionResponse) FinishReason() string { return r.finishReason }

// EmbeddingRequest describes one embedding call for a batch of texts.
type EmbeddingRequest struct {
	texts []string
}

// NewEmbeddingRequest creates a request for the given texts.
func NewEmbeddingRequest(texts []string) EmbeddingRequest {
	return EmbeddingRequest{texts: texts}
}

// Texts returns the texts to embed.
func (r EmbeddingRequest) Texts() []string { return r.texts }

// EmbeddingResponse holds one vector per requested text.
type EmbeddingResponse struct {
	embeddings [][]float64
}

// NewEmbeddingResponse creates a response.
func NewEmbeddingResponse(embeddings [][]float64) EmbeddingResponse {
	return EmbeddingResponse{embeddings: embeddings}
}

// Embeddings returns the vectors in request order.
func (r EmbeddingResponse) Embeddings() [][]float64 { return r.embeddings }

// Embedder generates embedding vectors for texts.
type Embedder interface {
	Embed(ctx context.Context, req EmbeddingRequest) (EmbeddingResponse, error)
}

// TextGenerator generates chat completions.
type TextGenerator interface {
	ChatCompletion(ctx context.Context, req ChatCompletionRequest) (ChatCompletionResponse, error)
}
