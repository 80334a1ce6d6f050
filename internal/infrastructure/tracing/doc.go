/*
Package tracing carries a trace id through each request.

Incoming X-Trace-ID and X-Span-ID headers are honored; otherwise a new
trace starts. The ids are echoed on the response, stored in the request
context, and forwarded on outbound model calls via InjectHeaders. Finished
spans are logged through zap.

	tracer := tracing.New("workspace", logger.Logger)
	router.Use(tracing.HTTPMiddleware(tracer))
*/
package tracing
