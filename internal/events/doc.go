// Package events provides types and interfaces for an event-driven architecture.
//
// Components emit events without knowing which handlers will process them.
// The reminder pipeline uses two event types:
//   - presence.changed: a recipient's live connection came or went
//   - reminder.dispatch_requested: a user asked for a reminder to be sent now
package events
