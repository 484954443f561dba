// Package service contains the reminder use cases. It coordinates the task
// reader, the reminder planner, content generation and the reminder and
// notification stores, and translates their failures into service errors.
//
// Ownership is checked here against the task or reminder owner; callers are
// expected to have authenticated the user id they pass in.
package service
