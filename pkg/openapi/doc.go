// Package openapi adapts OpenAPI 3.x documents into the canonical schema IR.
// Each operation with a request body becomes one form; the request body
// schema feeds the field spec builder. Parsing is delegated to kin-openapi
// behind the Parser interface so the public surface stays decoupled.
package openapi
