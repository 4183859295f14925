package formspec

import (
	jsLoader "github.com/goliatone/go-formspec/internal/jsonschema/loader"
	oaLoader "github.com/goliatone/go-formspec/internal/openapi/loader"
	oaParser "github.com/goliatone/go-formspec/internal/openapi/parser"
	pkgjsonschema "github.com/goliatone/go-formspec/pkg/jsonschema"
	pkgopenapi "github.com/goliatone/go-formspec/pkg/openapi"
)

// NewOpenAPILoader constructs a loader using the internal implementation while
// keeping the concrete type hidden from consumers.
func NewOpenAPILoader(options ...pkgopenapi.LoaderOption) pkgopenapi.Loader {
	cfg := pkgopenapi.NewLoaderOptions(options...)
	return oaLoader.New(cfg)
}

// NewOpenAPIParser constructs a parser backed by the internal implementation.
func NewOpenAPIParser(options ...pkgopenapi.ParserOption) pkgopenapi.Parser {
	cfg := pkgopenapi.NewParserOptions(options...)
	return oaParser.New(cfg)
}

// NewJSONSchemaLoader constructs a document loader for the JSON Schema
// adapter.
func NewJSONSchemaLoader(options ...pkgjsonschema.LoaderOption) pkgjsonschema.Loader {
	cfg := pkgjsonschema.ResolveLoaderOptions(options...)
	return jsLoader.New(cfg)
}
