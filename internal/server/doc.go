// Package server implements the HTTP and WebSocket surface using Echo.
//
// Routes: auth (JWT signup/login/refresh), users, issues (+comments, counts),
// files (multipart upload), daily stats, and the live event stream (ticket
// handshake + WebSocket). Handlers split by domain: handlers_auth.go,
// handlers_users.go, handlers_issues.go, handlers_files.go, handlers_stats.go,
// handlers_events.go.
package server
