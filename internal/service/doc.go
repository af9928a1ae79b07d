// Package service implements the application's business rules on top of the
// store interfaces: account registration and login with multiple concurrent
// session tokens, profile maintenance, avatars, account deletion with an
// explicit task cascade, and owner-scoped task management.
//
// Services never talk to HTTP; handlers translate their sentinel errors into
// status codes. Side effects that must not fail a request, such as
// transactional email, go through the Notifier interface.
package service
