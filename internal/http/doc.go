// Package http provides the HTTP handlers and middleware for the study-timer API.
//
// The router exposes the following endpoints:
//   - POST /session: starts a focus session, resuming or catching up a persisted
//     one when present. Body: {"activity_id","activity_title","category_id"}
//     (all optional). Response: the `sessionDTO` plus `resumed`/`caught_up` flags.
//   - GET /session: reports the current timer state including the remaining
//     seconds derived from the persisted deadline. Returns 404 when idle.
//   - POST /session/skip: ends the current phase immediately and transitions to
//     the next one, identical to a natural expiry.
//   - DELETE /session: cancels the session without any transition side effects.
//   - GET /session/encouragement: returns a short encouraging line for the
//     current focus subject, generated or served from cache.
//   - POST /breathing, DELETE /breathing, GET /breathing: start, stop, and
//     observe the breathing exercise. The GET response carries the live phase,
//     the remaining display countdown, and the fixed phase timetable.
//   - GET /trigger, PUT /trigger: read and toggle the daily notification
//     trigger. PUT body: {"enabled"}.
//   - GET /profile: returns the student profile with accumulated focus minutes.
//
// Request/response DTOs live alongside their respective handlers so tests and
// documentation share the same ground truth.
package http
