// Package server holds the HTTP server configuration.
//
// While the serve command handles the server startup, this package defines the
// listen port, the API key and the request timeouts.
//
// # Usage
//
// This package is embedded by core/config under the "server" key, so SERVER_PORT and
// SERVER_API_KEY configure it from the environment.
package server
