// Package middleware contains HTTP middleware for the Fiber application.
//
// # Components
//
//   - auth: API key validation through the X-API-Key header. /health stays public.
//   - rayid: generates a unique Request ID (RayID) for every incoming request,
//     injecting it into the context and response headers for tracing.
//
// The serve command registers rayid first so that every log line, including
// authentication failures, carries the RayID.
package middleware
