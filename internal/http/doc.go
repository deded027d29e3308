// Package http provides HTTP handlers and middleware for the session generator.
//
// The router exposes the following endpoints:
//   - PUT /services/{id}: stores a service configuration. Body:
//     {"name","schedule_id","session_types":[{"type","data":{"duration","resources"}}]}.
//     The service's sessions are regenerated before the response is written.
//   - POST /services/{id}/sessions/regenerate: regenerates one service. Rate limited
//     per client.
//   - GET /services/{id}/sessions: lists sessions as JSON. Optional `from` and `to`
//     query parameters (RFC 3339 or epoch seconds) keep sessions overlapping the window.
//   - GET /services/{id}/sessions.ics: the same sessions as an iCalendar feed.
//   - PUT /resources/{id}: stores a resource availability. Body:
//     {"name","availability":{"timezone","rules":[...]}}.
//   - POST /regenerate: regenerates every service.
//   - GET /metrics: Prometheus exposition.
//   - GET /healthz: storage health.
//
// Errors are rendered as {"error":{"code","message","fields"}}.
package http
