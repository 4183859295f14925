package formvalue

import (
	"fmt"
	"strings"
)

// Issue codes. Validation outcomes are data, not errors; codes let callers
// group issues without parsing messages.
const (
	CodeRequired = "required"
	CodeFormat   = "format"
	CodePattern  = "pattern"
	CodeRange    = "range"
	CodeLength   = "length"
	CodeEnum     = "enum"
)

// Issue is one user-facing validation finding anchored to a field path.
type Issue struct {
	Path    string `json:"path"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

func (i Issue) String() string {
	if i.Path == "" {
		return i.Message
	}
	return i.Path + ": " + i.Message
}

// Issues is an ordered list of validation findings. It satisfies error so
// submission flows can return it through error-shaped plumbing, but an empty
// list means the value passed.
type Issues []Issue

func (issues Issues) Error() string {
	switch len(issues) {
	case 0:
		return "no validation issues"
	case 1:
		return issues[0].String()
	}
	parts := make([]string, len(issues))
	for i, issue := range issues {
		parts[i] = issue.String()
	}
	return fmt.Sprintf("%d validation issues: %s", len(issues), strings.Join(parts, "; "))
}

// At filters issues anchored at exactly the given path.
func (issues Issues) At(path string) Issues {
	var out Issues
	for _, issue := range issues {
		if issue.Path == path {
			out = append(out, issue)
		}
	}
	return out
}

func requiredIssue(path, message string) Issue {
	return Issue{Path: path, Code: CodeRequired, Message: message}
}
