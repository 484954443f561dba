// Package notify delivers due reminders to their recipients.
//
// A Registry tracks which recipients hold a live connection. A Dispatcher
// fans a reminder out to every configured Channel concurrently and reports a
// per-channel outcome; no channel's failure affects another, and Dispatch
// never returns an error.
//
// Channels:
//   - DurableChannel appends a NotificationRecord and always runs.
//   - LiveChannel pushes a JSON frame to the recipient's live connection and
//     is skipped when the recipient is offline.
//   - BrokerChannel publishes the reminder to an AMQP exchange.
//
// The Registry emits presence.changed events on connect and disconnect;
// PresenceBroadcaster turns them into user_status frames for every online
// recipient.
package notify
