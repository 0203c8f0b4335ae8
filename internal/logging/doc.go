// Package logging owns the process-wide structured logging pipeline.
//
// Every log call, whether issued through the native Logger API or
// through the stdlib log/slog surface, is converted into a Record,
// enriched by one shared processor chain, and serialized by a single
// renderer (JSON or console) into the shared sink. The package also
// applies per-namespace policy rules that silence or redirect named
// logger subtrees, and provides capture hooks that turn uncaught
// panics into one final CRITICAL record while leaving interrupt
// handling untouched.
//
// Setup must run once at process startup before anything logs; repeat
// calls reuse the existing pipeline instead of attaching duplicate
// sinks or hooks.
package logging
