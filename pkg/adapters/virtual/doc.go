/*
Package virtual provides in-memory engines, surfaces, and host windows.

They stand in for a real rendering stack when the coordinator is driven from the
CLI, the HTTP bridge, replay scripts, or tests. Every operation is appended to a
shared Journal so callers can check ordering (for example, that a detach always
precedes the next attach on the same engine).
*/
package virtual
