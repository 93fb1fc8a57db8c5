// Package httputil holds the JSON response helpers the API handlers
// share: one writer for payloads and one envelope for errors, so every
// endpoint answers in the same shape.
package httputil
