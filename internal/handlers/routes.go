package handlers

import "net/http"

// RegisterRoutes wires HTTP handlers into the provided ServeMux.
func RegisterRoutes(mux *http.ServeMux, deps Dependencies) {
	health := HealthHandler{}
	auth := AuthHandler{Profiles: deps.Profiles, Sessions: deps.Sessions, Limiter: deps.AuthLimiter}
	profile := ProfileHandler{Profiles: deps.Profiles, Ingestor: deps.Avatars}
	friends := FriendHandler{Friends: deps.Friends, Limiter: deps.AuthLimiter}
	calendar := CalendarHandler{Engine: deps.Calendar, Availability: deps.Availability}
	suggestions := SuggestionHandler{Engine: deps.Suggestions}

	mux.HandleFunc("/healthz", health.Handle)
	mux.HandleFunc("/api/v1/auth/signup", auth.SignUp)
	mux.HandleFunc("/api/v1/auth/login", auth.Login)
	mux.HandleFunc("/api/v1/auth/refresh", auth.Refresh)
	mux.HandleFunc("/api/v1/auth/logout", auth.Logout)
	mux.HandleFunc("/api/v1/profile", RequireUser(deps.Sessions, profile.Me))
	mux.HandleFunc("/api/v1/profile/avatar", RequireUser(deps.Sessions, profile.Avatar))
	mux.HandleFunc("/api/v1/friends", RequireUser(deps.Sessions, friends.List))
	mux.HandleFunc("/api/v1/friends/request", RequireUser(deps.Sessions, friends.Request))
	mux.HandleFunc("/api/v1/friends/respond", RequireUser(deps.Sessions, friends.Respond))
	mux.HandleFunc("/api/v1/friends/cancel", RequireUser(deps.Sessions, friends.Cancel))
	mux.HandleFunc("/api/v1/friends/remove", RequireUser(deps.Sessions, friends.Remove))
	mux.HandleFunc("/api/v1/calendar", RequireUser(deps.Sessions, calendar.Range))
	mux.HandleFunc("/api/v1/availability", RequireUser(deps.Sessions, calendar.SetAvailability))
	mux.HandleFunc("/api/v1/meetups/suggestions", RequireUser(deps.Sessions, suggestions.Suggest))
}

// Dependencies aggregates collaborators required by HTTP handlers.
type Dependencies struct {
	Profiles     ProfileStore
	Sessions     SessionManager
	Friends      FriendService
	Availability AvailabilityWriter
	Calendar     CalendarEngine
	Suggestions  SuggestionEngine
	Avatars      AvatarIngestor
	AuthLimiter  RateLimiter
}
