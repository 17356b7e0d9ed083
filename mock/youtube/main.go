package main

import (
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"strings"
	"time"
)

type video struct {
	id       string
	title    string
	likes    int
	comments int
	age      time.Duration
}

var videos = []video{
	{id: "vid-101", title: "Behind the scenes", likes: 320, comments: 41, age: 20 * time.Hour},
	{id: "vid-102", title: "Product walkthrough", likes: 870, comments: 96, age: 3 * 24 * time.Hour},
	{id: "vid-103", title: "Customer story", likes: 150, comments: 12, age: 9 * 24 * time.Hour},
}

func main() {
	http.HandleFunc("/youtube/v3/search", func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("key") == "" {
			writeJSON(w, http.StatusForbidden, map[string]any{
				"error": map[string]any{"code": 403, "message": "API key missing"},
			})
			return
		}

		items := make([]map[string]any, len(videos))
		for i, v := range videos {
			items[i] = map[string]any{
				"kind": "youtube#searchResult",
				"id":   map[string]string{"kind": "youtube#video", "videoId": v.id},
			}
		}
		writeJSON(w, http.StatusOK, map[string]any{"kind": "youtube#searchListResponse", "items": items})
		log.Printf("[Mock YouTube] %s %s - 200 OK", r.Method, r.URL.Path)
	})

	http.HandleFunc("/youtube/v3/videos", func(w http.ResponseWriter, r *http.Request) {
		wanted := map[string]bool{}
		for _, id := range strings.Split(r.URL.Query().Get("id"), ",") {
			wanted[id] = true
		}

		now := time.Now().UTC()
		items := make([]map[string]any, 0, len(videos))
		for _, v := range videos {
			if !wanted[v.id] {
				continue
			}
			items = append(items, map[string]any{
				"id": v.id,
				"snippet": map[string]any{
					"title":       v.title,
					"publishedAt": now.Add(-v.age).Format(time.RFC3339),
				},
				"statistics": map[string]string{
					"likeCount":    fmt.Sprint(v.likes),
					"commentCount": fmt.Sprint(v.comments),
				},
			})
		}
		writeJSON(w, http.StatusOK, map[string]any{"kind": "youtube#videoListResponse", "items": items})
		log.Printf("[Mock YouTube] %s %s - 200 OK", r.Method, r.URL.Path)
	})

	http.HandleFunc("/health", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "healthy"})
	})

	log.Println("Mock YouTube Data API running on :8082")
	server := &http.Server{
		Addr:         ":8082",
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
		log.Printf("[Mock YouTube] Write error: %v", err)
	}
}
