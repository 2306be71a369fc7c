// Package httputil provides HTTP response helpers for the wall server.
//
// # Errors
//
// [WriteError] maps coded errors from pkg/errors to status codes and writes
// a JSON body with the user-facing message:
//
//	if err != nil {
//	    httputil.WriteError(w, logger, err)
//	    return
//	}
//
// Server-side failures (5xx) are logged; client errors are not.
//
// # Conditional requests
//
// Rendered walls are deterministic, so responses carry a strong [ETag]
// derived from the body. [Serve] answers If-None-Match with 304:
//
//	httputil.Serve(w, r, "image/svg+xml", body)
package httputil
