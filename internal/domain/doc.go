// Package domain contains the core business entities of the application:
// users with their credentials and session tokens, and the tasks they own.
// Entities validate themselves explicitly before persistence; there are no
// implicit lifecycle hooks. The package is independent of any storage or
// delivery mechanism.
package domain
