// Package domain contains the core business entities of the reminder pipeline:
// tasks (read-only here), reminders and their lifecycle, generated reminder
// content, and per-channel notification records.
//
// Entities validate themselves and own their state transitions. Persistence and
// transport concerns live elsewhere.
package domain
