/*
Package notify provides ports.NotificationSink implementations.

LogSink writes every notification to a structured logger, Recorder keeps them in
memory for assertions and replay reports, and Multi fans a notification out to
several sinks in order.
*/
package notify
