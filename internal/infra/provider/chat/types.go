package chat

// Message is one chat-completions message.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// CompletionRequest is the OpenAI-compatible request body.
type CompletionRequest struct {
	Model       string    `json:"model"`
	Temperature float64   `json:"temperature"`
	Messages    []Message `json:"messages"`
}

// CompletionResponse is the subset of the response the client reads.
type CompletionResponse struct {
	Choices []Choice  `json:"choices"`
	Error   *APIError `json:"error,omitempty"`
}

// Choice is one generated alternative.
type Choice struct {
	Message Message `json:"message"`
}

// APIError is the error object returned by the endpoint.
type APIError struct {
	Message string `json:"message"`
	Type    string `json:"type"`
}
