// Package notifications publishes run events to ntfy.
//
// The service posts to the topic configured under [notifications] and
// degrades to a no-op when no topic is set. Callers publish an Event with a
// Payload of named values; formatting lives here so every command produces
// the same messages.
package notifications
