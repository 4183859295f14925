// Package orchestrator wires the full pipeline together: source document →
// format adapter → canonical schema IR → field spec tree → value sessions
// (defaults, normalization, validation). Adapters register by name and are
// auto-detected from the payload when no format is forced.
package orchestrator
