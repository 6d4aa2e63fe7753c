package stagehand

// Version is the library release, reported by the CLI and the HTTP bridge.
const Version = "0.3.0"
