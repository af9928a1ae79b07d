// Package api provides the HTTP handlers of the task service.
//
// Handlers decode and validate requests, call the services, and translate
// service errors into status codes with MapErrorToStatusCode and
// GetSafeErrorMessage. Raw error text never reaches a client; missing and
// foreign resources both answer 404 with an empty body.
package api
