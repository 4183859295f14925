package parser_test

import (
	"context"
	"testing"

	"github.com/goliatone/go-formspec/internal/openapi/parser"
	pkgopenapi "github.com/goliatone/go-formspec/pkg/openapi"
	"github.com/goliatone/go-formspec/pkg/schema"
)

const tasksDoc = `{
  "openapi": "3.0.3",
  "info": { "title": "Tasks", "version": "1.0.0" },
  "paths": {
    "/tasks": {
      "post": {
        "operationId": "createTask",
        "summary": "Create a task",
        "x-formspec": { "submitLabel": "Create" },
        "requestBody": {
          "required": true,
          "content": {
            "application/json": {
              "schema": {
                "type": "object",
                "required": ["title"],
                "properties": {
                  "title": { "type": "string", "minLength": 1 },
                  "priority": { "type": "integer", "minimum": 1, "maximum": 5, "default": 3 },
                  "done": { "type": "boolean", "default": false }
                }
              }
            }
          }
        },
        "responses": {
          "201": {
            "description": "Created",
            "content": {
              "application/json": {
                "schema": {
                  "type": "object",
                  "properties": { "id": { "type": "string", "readOnly": true } }
                }
              }
            }
          }
        }
      }
    }
  }
}`

func mustOperations(t *testing.T, raw string, options ...pkgopenapi.ParserOption) map[string]pkgopenapi.Operation {
	t.Helper()
	p := parser.New(pkgopenapi.NewParserOptions(options...))
	doc := pkgopenapi.MustNewDocument(schema.SourceFromFS("spec.json"), []byte(raw))
	ops, err := p.Operations(context.Background(), doc)
	if err != nil {
		t.Fatalf("operations: %v", err)
	}
	return ops
}

func TestOperations_ExtractsRequestBody(t *testing.T) {
	ops := mustOperations(t, tasksDoc)

	op, ok := ops["createTask"]
	if !ok {
		t.Fatalf("createTask missing: %v", ops)
	}
	if op.Method != "POST" || op.Path != "/tasks" {
		t.Fatalf("operation routing: %s %s", op.Method, op.Path)
	}
	if op.Summary != "Create a task" {
		t.Fatalf("summary lost: %q", op.Summary)
	}

	body := op.RequestBody
	if body.Type != "object" || len(body.Required) != 1 || body.Required[0] != "title" {
		t.Fatalf("request body: %#v", body)
	}
	title := body.Properties["title"]
	if title.MinLength == nil || *title.MinLength != 1 {
		t.Fatalf("minLength lost: %#v", title)
	}
	priority := body.Properties["priority"]
	if priority.Type != "integer" || !priority.HasDefault {
		t.Fatalf("priority: %#v", priority)
	}
	if priority.Minimum == nil || *priority.Minimum != 1 || priority.Maximum == nil || *priority.Maximum != 5 {
		t.Fatalf("priority bounds: %#v", priority)
	}
}

func TestOperations_ResponseSchemas(t *testing.T) {
	ops := mustOperations(t, tasksDoc)

	op := ops["createTask"]
	if !op.HasResponse("201") {
		t.Fatalf("201 response missing: %#v", op.Responses)
	}
	id := op.Responses["201"].Properties["id"]
	if !id.ReadOnly {
		t.Fatalf("readOnly flag lost: %#v", id)
	}
}

func TestOperations_ExtensionNamespace(t *testing.T) {
	ops := mustOperations(t, tasksDoc)

	ext := ops["createTask"].Extensions
	meta, _ := ext["x-formspec"].(map[string]any)
	if meta["submitLabel"] != "Create" {
		t.Fatalf("operation extension lost: %#v", ext)
	}
}

func TestOperations_MissingOperationID(t *testing.T) {
	raw := `{
  "openapi": "3.0.3",
  "info": { "title": "Things", "version": "1.0.0" },
  "paths": {
    "/things": {
      "post": {
        "responses": { "204": { "description": "No content" } }
      }
    }
  }
}`
	ops := mustOperations(t, raw)

	if _, ok := ops["post:/things"]; !ok {
		t.Fatalf("expected synthesized operation id, got %v", ops)
	}
}

func TestOperations_MediaTypePreference(t *testing.T) {
	raw := `{
  "openapi": "3.0.3",
  "info": { "title": "Mixed", "version": "1.0.0" },
  "paths": {
    "/notes": {
      "post": {
        "operationId": "createNote",
        "requestBody": {
          "content": {
            "text/plain": { "schema": { "type": "string" } },
            "application/json": {
              "schema": { "type": "object", "properties": { "body": { "type": "string" } } }
            }
          }
        },
        "responses": { "204": { "description": "No content" } }
      }
    }
  }
}`
	ops := mustOperations(t, raw)

	body := ops["createNote"].RequestBody
	if body.Type != "object" {
		t.Fatalf("json media type must win: %#v", body)
	}
}

func TestOperations_EmptyDocuments(t *testing.T) {
	raw := `{
  "openapi": "3.0.3",
  "info": { "title": "Empty", "version": "1.0.0" },
  "paths": {}
}`
	p := parser.New(pkgopenapi.NewParserOptions())
	doc := pkgopenapi.MustNewDocument(schema.SourceFromFS("spec.json"), []byte(raw))
	if _, err := p.Operations(context.Background(), doc); err == nil {
		t.Fatal("pathless documents must fail by default")
	}

	partial := parser.New(pkgopenapi.NewParserOptions(pkgopenapi.WithPartialDocuments(true)))
	ops, err := partial.Operations(context.Background(), doc)
	if err != nil {
		t.Fatalf("partial documents must be tolerated: %v", err)
	}
	if len(ops) != 0 {
		t.Fatalf("expected no operations, got %v", ops)
	}
}
