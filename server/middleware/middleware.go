package middleware

import "net/http"

// Middleware wraps an http.Handler. The stack is applied at the server
// handler level so it covers Gin routes and anything mounted beside them.
type Middleware func(http.Handler) http.Handler

// Chain composes middlewares. The first is the outermost.
func Chain(middlewares ...Middleware) Middleware {
	return func(final http.Handler) http.Handler {
		for i := len(middlewares) - 1; i >= 0; i-- {
			final = middlewares[i](final)
		}
		return final
	}
}
