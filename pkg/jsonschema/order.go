package jsonschema

import (
	"bytes"
	"fmt"
	"io"

	json "github.com/goccy/go-json"
	"gopkg.in/yaml.v3"
)

// propertyOrders recovers the key declaration order of every object in the
// raw document, keyed by JSON pointer. Decoding into Go maps loses that
// order, so a second pass over the token stream (JSON) or the node tree
// (YAML) records it for the converter. Best effort: a scan failure returns
// whatever was collected and the converter falls back to sorted keys.
func propertyOrders(raw []byte) map[string][]string {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 {
		return nil
	}
	orders := make(map[string][]string)
	if trimmed[0] == '{' {
		dec := json.NewDecoder(bytes.NewReader(trimmed))
		_ = scanJSONOrders(dec, "#", orders)
		return orders
	}

	var root yaml.Node
	if err := yaml.Unmarshal(trimmed, &root); err != nil {
		return orders
	}
	scanYAMLOrders(&root, "#", orders)
	return orders
}

func scanJSONOrders(dec *json.Decoder, path string, orders map[string][]string) error {
	tok, err := dec.Token()
	if err != nil {
		return err
	}
	delim, ok := tok.(json.Delim)
	if !ok {
		return nil
	}
	switch delim {
	case '{':
		keys := make([]string, 0, 8)
		for dec.More() {
			keyTok, err := dec.Token()
			if err != nil {
				return err
			}
			key, _ := keyTok.(string)
			keys = append(keys, key)
			if err := scanJSONOrders(dec, joinPath(path, key), orders); err != nil {
				return err
			}
		}
		if _, err := dec.Token(); err != nil && err != io.EOF {
			return err
		}
		orders[path] = keys
	case '[':
		idx := 0
		for dec.More() {
			if err := scanJSONOrders(dec, joinPath(path, fmt.Sprintf("%d", idx)), orders); err != nil {
				return err
			}
			idx++
		}
		if _, err := dec.Token(); err != nil && err != io.EOF {
			return err
		}
	}
	return nil
}

func scanYAMLOrders(node *yaml.Node, path string, orders map[string][]string) {
	switch node.Kind {
	case yaml.DocumentNode:
		for _, child := range node.Content {
			scanYAMLOrders(child, path, orders)
		}
	case yaml.MappingNode:
		keys := make([]string, 0, len(node.Content)/2)
		for i := 0; i+1 < len(node.Content); i += 2 {
			key := node.Content[i].Value
			keys = append(keys, key)
			scanYAMLOrders(node.Content[i+1], joinPath(path, key), orders)
		}
		orders[path] = keys
	case yaml.SequenceNode:
		for i, child := range node.Content {
			scanYAMLOrders(child, joinPath(path, fmt.Sprintf("%d", i)), orders)
		}
	}
}
