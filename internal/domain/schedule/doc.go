// Package schedule turns a task's due date, priority and reminder strategy into
// a timeline of one to three reminder stages.
//
// Planning is a pure function of its inputs, including the reference time, so it
// is safe to call concurrently and needs no locking. Times that land in the past
// (a due date closer than the stage lead times) are returned as computed.
package schedule
