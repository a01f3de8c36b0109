// Package orchestrator wires the loader, schema adapters, tree builder,
// chooser and renderer registry into a single entry point. Callers describe
// where the setup, values and chooser documents live and get back either the
// built tree (Build) or rendered bytes (Generate).
package orchestrator
