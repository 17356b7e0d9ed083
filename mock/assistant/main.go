package main

import (
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"strings"
	"time"
)

type message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type completionRequest struct {
	Model    string    `json:"model"`
	Messages []message `json:"messages"`
}

func main() {
	http.HandleFunc("/chat/completions", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}
		if !strings.HasPrefix(r.Header.Get("Authorization"), "Bearer ") {
			writeJSON(w, http.StatusUnauthorized, map[string]any{
				"error": map[string]string{"message": "missing api key", "type": "auth_error"},
			})
			return
		}

		var req completionRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil || len(req.Messages) == 0 {
			writeJSON(w, http.StatusBadRequest, map[string]any{
				"error": map[string]string{"message": "invalid request", "type": "invalid_request_error"},
			})
			return
		}

		// Simulate model latency (200-500ms)
		time.Sleep(time.Duration(200+time.Now().UnixNano()%300) * time.Millisecond)

		question := req.Messages[len(req.Messages)-1].Content
		answer := fmt.Sprintf("**Mock answer** (%s)\n\nYou asked: %s\n\n- Post when your audience is online\n- Lean into the platform with the best engagement", req.Model, question)

		writeJSON(w, http.StatusOK, map[string]any{
			"choices": []map[string]any{
				{"message": message{Role: "assistant", Content: answer}},
			},
		})
		log.Printf("[Mock Assistant] %s %s - 200 OK", r.Method, r.URL.Path)
	})

	http.HandleFunc("/health", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "healthy"})
	})

	log.Println("Mock assistant running on :8081")
	server := &http.Server{
		Addr:         ":8081",
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  120 * time.Second,
	}
	log.Fatal(server.ListenAndServe())
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		log.Printf("[Mock Assistant] Write error: %v", err)
	}
}
