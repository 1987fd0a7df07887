// Package httputil provides shared HTTP response/request utilities for handlers.
//
// Handlers use these helpers instead of writing raw http.ResponseWriter
// calls. Error responses never include internal error text; the real
// error goes to the log.
package httputil
