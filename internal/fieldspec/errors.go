package fieldspec

import "fmt"

// UnsupportedTypeError reports a schema construct with no field kind mapping.
// It is a schema-definition error: the schema author must fix the schema, so
// construction aborts instead of degrading silently.
type UnsupportedTypeError struct {
	Path      string
	Construct string
}

func (e *UnsupportedTypeError) Error() string {
	path := e.Path
	if path == "" {
		path = "$"
	}
	return fmt.Sprintf("fieldspec: unsupported type %q at %s", e.Construct, path)
}
