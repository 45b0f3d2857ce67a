// Package middlewares provides preRouting chunks for anvil applications.
//
// # Request ID
//
// RequestID assigns an ID to each request for tracing and debugging.
// It reuses an incoming X-Request-ID (or a configured header) or
// generates a UUIDv7, and echoes it in the response.
//
//	app := anvil.New(
//	    anvil.WithMiddleware(anvil.PreRouting, middlewares.RequestID()),
//	)
//
// Pass RequestIDExtractor to logger.New to add request_id to every record
// logged with the request context:
//
//	log := logger.New(cfg, middlewares.RequestIDExtractor())
//
// # CORS
//
// CORS adds Cross-Origin Resource Sharing headers and answers preflight
// requests from accepted origins with 204. Answering stops the pipeline,
// so routes never see those preflights.
//
//	app := anvil.New(
//	    anvil.WithMiddleware(anvil.PreRouting,
//	        middlewares.CORS(middlewares.WithAllowOrigins("https://app.example.com")),
//	    ),
//	)
//
// CORSConfig carries env tags (CORS_ALLOW_ORIGINS, CORS_MAX_AGE, ...), so a
// config loaded with config.Load can be passed to CORSWithConfig.
package middlewares
