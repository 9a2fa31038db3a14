// Package http exposes the bundle registry over a JSON HTTP API built on gin.
//
// Projection endpoints accept a flags query parameter (decimal, hex or
// names such as "module|ability") and an optional user parameter. Without a
// user the projection is computed without per-user state.
package http
