// Package middleware provides built-in middleware implementations for the
// chat client. Each middleware is constructed via a New* function that
// returns a [client.Middleware] ready to be passed to [client.WithMiddleware].
//
// # Available Middleware
//
//   - [NewTimeoutMiddleware]: Adds a per-request deadline via
//     context.WithTimeout, so a stalled provider call cannot block the caller
//     indefinitely.
//
//   - [NewLoggingMiddleware]: Emits structured slog entries before and after
//     every provider call, with three verbosity levels (Minimal, Standard,
//     Verbose).
//
// # Usage
//
//	c, err := client.New(provider,
//	    client.WithMiddleware(
//	        middleware.NewTimeoutMiddleware(30*time.Second),
//	        middleware.NewLoggingMiddleware(slog.Default(), middleware.LogLevelStandard),
//	    ),
//	)
//
// Middlewares execute outermost-first: the first entry in WithMiddleware runs
// first on the way in and last on the way out. In the example above a request
// travels Timeout, then Logging, then the provider, and the response returns
// in reverse.
package middleware
