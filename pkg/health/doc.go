// Package health provides liveness and readiness probe handlers.
//
//	r.Get("/health/live", health.LivenessHandler())
//	r.Get("/health/ready", health.ReadinessHandler(health.Checks{
//	    "upstream": pingUpstream,
//	}))
//
// Readiness checks run concurrently under one timeout (5s by default).
// Responses are plain text unless the client asks for JSON with
// ?format=json or an Accept header containing application/json.
package health
