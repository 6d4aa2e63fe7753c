/*
Package lifecycle tracks where a single container sits in the host lifecycle.

The Machine is fed one host signal at a time and simply overwrites its stage: the
host driver is authoritative and may replay or skip signals, so no transition is
ever rejected. The coordinator reads IsPausing to decide whether a sibling's
resume or pause is spurious.
*/
package lifecycle
