package middleware

import "net/http"

// Chain wraps h so the middleware run in the order given (first is outermost).
//
//	handler := Chain(mux,
//	    RequestID,                  // runs first
//	    AuthMiddleware(authService),
//	    RequestLogging,             // sees the user and the matched route
//	)
func Chain(h http.Handler, middlewares ...func(http.Handler) http.Handler) http.Handler {
	for i := len(middlewares) - 1; i >= 0; i-- {
		h = middlewares[i](h)
	}
	return h
}
