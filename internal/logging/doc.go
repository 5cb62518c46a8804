// Package logging wires log/slog for the rest of the module.
//
// Loggers are constructed once from config and passed down explicitly; no
// package holds a global logger. Console output uses the text handler, json
// output the JSON handler, and both can tee into a run log file under the
// configured log directory.
package logging
