// Package task runs reminder delivery in the background.
// A poller finds due reminders and submits one delivery task per reminder to
// a bounded queue drained by a worker pool. Reminders stay pending in the
// database until delivered, so work interrupted by a restart is picked up by
// the next poll.
package task
