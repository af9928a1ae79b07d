// Package notify sends the transactional account emails. A Notifier turns
// each request into a detached job so the HTTP request never waits on mail
// delivery; a Mailer performs the delivery through SendGrid, or only logs
// the message when no API key is configured.
package notify
