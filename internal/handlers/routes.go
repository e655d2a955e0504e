package handlers

import "net/http"

// RegisterRoutes wires HTTP handlers into the provided ServeMux.
func RegisterRoutes(mux *http.ServeMux, deps Dependencies) {
	health := HealthHandler{}
	auth := AuthHandler{Auth: deps.Auth, Users: deps.Users, Sessions: deps.Sessions, Limiter: deps.AuthLimiter}
	videos := VideoHandler{Videos: deps.Videos}
	messages := MessageHandler{Messaging: deps.Messaging}
	live := LiveHandler{Live: deps.Live}
	search := SearchHandler{Users: deps.Users, Videos: deps.VideoSearch}

	mux.HandleFunc("/healthz", health.Handle)
	mux.HandleFunc("/api/v1/auth/signup", auth.SignUp)
	mux.HandleFunc("/api/v1/auth/login", auth.Login)
	mux.HandleFunc("/api/v1/auth/social", auth.Social)
	mux.HandleFunc("/api/v1/auth/refresh", auth.Refresh)
	mux.HandleFunc("/api/v1/auth/logout", auth.Logout)
	mux.HandleFunc("/api/v1/videos", videos.Create)
	mux.HandleFunc("/api/v1/videos/feed", videos.Feed)
	mux.HandleFunc("/api/v1/videos/like", videos.Like)
	mux.HandleFunc("/api/v1/videos/share", videos.Share)
	mux.HandleFunc("/api/v1/videos/view", videos.View)
	mux.HandleFunc("/api/v1/videos/search", search.SearchVideos)
	mux.HandleFunc("/api/v1/users/search", search.SearchUsers)
	mux.HandleFunc("/api/v1/users/block", messages.Block)
	mux.HandleFunc("/api/v1/chats", messages.Chats)
	mux.HandleFunc("/api/v1/chats/messages", messages.Messages)
	mux.HandleFunc("/api/v1/chats/read", messages.MarkRead)
	mux.HandleFunc("/api/v1/live", live.Streams)
	mux.HandleFunc("/api/v1/live/end", live.End)
	mux.HandleFunc("/api/v1/live/viewers", live.Viewers)
}

// Dependencies aggregates collaborators required by HTTP handlers.
type Dependencies struct {
	Auth        Authenticator
	Users       UserStore
	Sessions    SessionManager
	AuthLimiter RateLimiter
	Videos      VideoService
	VideoSearch VideoSearcher
	Messaging   MessagingStore
	Live        LiveService
}
