// Package job runs detached background work on a bounded in-memory queue
// served by a fixed pool of workers.
//
// Submission never blocks: a full queue rejects the job with ErrQueueFull.
// Jobs run at most once; failures and panics are logged and reported to the
// error handler but never retried. Stop closes the queue, lets the workers
// drain what was already accepted, and waits for them.
package job
