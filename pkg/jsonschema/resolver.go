package jsonschema

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"path"
	"path/filepath"
	"strconv"
	"strings"
)

const (
	defaultMaxDocumentBytes = int64(5 << 20)
	defaultMaxDocuments     = 128
	defaultMaxRefDepth      = 64
)

// ResolveOptions configures JSON Schema ref resolution.
type ResolveOptions struct {
	// AllowHTTPRefs toggles HTTP/HTTPS ref resolution.
	AllowHTTPRefs bool
	// AllowPathTraversal permits refs to escape the root directory.
	AllowPathTraversal bool
	// MaxDocumentBytes caps the size of any single referenced document.
	MaxDocumentBytes int64
	// MaxDocuments caps the number of unique documents loaded during resolution.
	MaxDocuments int
	// MaxRefDepth caps the depth of $ref resolution chains.
	MaxRefDepth int
}

// Resolver inlines external and anchor $ref references with guardrails.
// Local refs into the document's own $defs table are left untouched: they
// feed the field spec builder's lazy resolution, which is what makes
// self-referential definitions representable at all.
type Resolver struct {
	loader Loader
	opts   ResolveOptions
}

// NewResolver constructs a resolver with the supplied loader and options.
func NewResolver(loader Loader, opts ResolveOptions) *Resolver {
	if opts.MaxDocumentBytes <= 0 {
		opts.MaxDocumentBytes = defaultMaxDocumentBytes
	}
	if opts.MaxDocuments <= 0 {
		opts.MaxDocuments = defaultMaxDocuments
	}
	if opts.MaxRefDepth <= 0 {
		opts.MaxRefDepth = defaultMaxRefDepth
	}
	return &Resolver{loader: loader, opts: opts}
}

// Resolve expands non-local $ref references in a parsed JSON Schema payload.
func (r *Resolver) Resolve(ctx context.Context, doc Document, payload map[string]any) (map[string]any, error) {
	if r == nil {
		return nil, errors.New("jsonschema resolver: resolver is nil")
	}
	if r.loader == nil {
		return nil, errors.New("jsonschema resolver: loader is nil")
	}
	if doc.Source() == nil {
		return nil, errors.New("jsonschema resolver: source is nil")
	}
	if payload == nil {
		return nil, errors.New("jsonschema resolver: payload is nil")
	}
	if int64(len(doc.Raw())) > r.opts.MaxDocumentBytes {
		return nil, fmt.Errorf("jsonschema resolver: document too large (%d bytes)", len(doc.Raw()))
	}

	session := &resolveSession{
		loader: r.loader,
		opts:   r.opts,
		cache:  make(map[string]*resolvedDocument),
	}
	root, err := session.register(doc.Source(), payload)
	if err != nil {
		return nil, err
	}
	session.rootDir = root.baseDir

	resolved, err := session.resolveNode(ctx, root, payload, &refStack{})
	if err != nil {
		return nil, err
	}
	output, ok := resolved.(map[string]any)
	if !ok {
		return nil, errors.New("jsonschema resolver: resolved root is not an object")
	}
	return output, nil
}

type resolveSession struct {
	loader  Loader
	opts    ResolveOptions
	cache   map[string]*resolvedDocument
	rootDir string
}

type resolvedDocument struct {
	key      string
	kind     SourceKind
	location string
	baseDir  string
	data     map[string]any
	anchors  map[string]string
}

// isLazyLocalRef reports refs the builder resolves on demand against the
// document's $defs table; these must survive resolution verbatim.
func isLazyLocalRef(ref string) bool {
	return strings.HasPrefix(ref, "#/$defs/") || strings.HasPrefix(ref, "#/definitions/")
}

func (s *resolveSession) resolveNode(ctx context.Context, doc *resolvedDocument, node any, stack *refStack) (any, error) {
	switch typed := node.(type) {
	case map[string]any:
		if ref := strings.TrimSpace(readString(typed, "$ref")); ref != "" && !isLazyLocalRef(ref) {
			return s.inlineRef(ctx, doc, typed, ref, stack)
		}
		resolved := make(map[string]any, len(typed))
		for key, value := range typed {
			child, err := s.resolveNode(ctx, doc, value, stack)
			if err != nil {
				return nil, err
			}
			resolved[key] = child
		}
		return resolved, nil
	case []any:
		out := make([]any, len(typed))
		for idx, entry := range typed {
			child, err := s.resolveNode(ctx, doc, entry, stack)
			if err != nil {
				return nil, err
			}
			out[idx] = child
		}
		return out, nil
	default:
		return node, nil
	}
}

func (s *resolveSession) inlineRef(ctx context.Context, doc *resolvedDocument, refObj map[string]any, ref string, stack *refStack) (any, error) {
	if stack.depth() >= s.opts.MaxRefDepth {
		return nil, fmt.Errorf("jsonschema resolver: ref depth exceeds %d", s.opts.MaxRefDepth)
	}

	refKey, target, targetDoc, err := s.lookupRef(ctx, doc, ref)
	if err != nil {
		return nil, err
	}
	if stack.contains(refKey) {
		return nil, fmt.Errorf("jsonschema resolver: ref cycle detected at %s", ref)
	}

	merged, err := mergeRefTarget(target, refObj)
	if err != nil {
		return nil, err
	}

	stack.push(refKey)
	defer stack.pop()
	return s.resolveNode(ctx, targetDoc, merged, stack)
}

func (s *resolveSession) lookupRef(ctx context.Context, doc *resolvedDocument, ref string) (string, any, *resolvedDocument, error) {
	refPath, fragment := splitRef(ref)
	if refPath == "" {
		target, err := s.fragmentTarget(doc, fragment)
		return doc.key + "#" + fragment, target, doc, err
	}

	parsed, err := url.Parse(refPath)
	if err != nil {
		return "", nil, nil, fmt.Errorf("jsonschema resolver: invalid ref %q", ref)
	}

	var src Source
	switch {
	case parsed.Scheme == "http" || parsed.Scheme == "https":
		if !s.opts.AllowHTTPRefs {
			return "", nil, nil, fmt.Errorf("jsonschema resolver: http refs disabled (%s)", ref)
		}
		src = SourceFromURL(parsed.String())
	case parsed.Scheme == "file":
		src = SourceFromFile(parsed.Path)
	case parsed.Scheme != "":
		return "", nil, nil, fmt.Errorf("jsonschema resolver: unsupported ref scheme %q", parsed.Scheme)
	default:
		src, err = s.relativeSource(doc, parsed.Path)
		if err != nil {
			return "", nil, nil, err
		}
	}

	targetDoc, err := s.loadDocument(ctx, src)
	if err != nil {
		return "", nil, nil, err
	}
	target, err := s.fragmentTarget(targetDoc, fragment)
	return targetDoc.key + "#" + fragment, target, targetDoc, err
}

func (s *resolveSession) fragmentTarget(doc *resolvedDocument, fragment string) (any, error) {
	fragment = strings.TrimPrefix(fragment, "#")
	if fragment == "" {
		return cloneAny(doc.data), nil
	}
	if strings.HasPrefix(fragment, "/") {
		return resolveJSONPointer(doc.data, fragment)
	}
	pointer, ok := doc.anchors[fragment]
	if !ok {
		return nil, fmt.Errorf("jsonschema resolver: anchor %q not found", fragment)
	}
	pointer = strings.TrimPrefix(pointer, "#")
	if pointer == "" {
		return cloneAny(doc.data), nil
	}
	return resolveJSONPointer(doc.data, pointer)
}

func (s *resolveSession) loadDocument(ctx context.Context, src Source) (*resolvedDocument, error) {
	key, _, _, err := canonicalLocation(src)
	if err != nil {
		return nil, err
	}
	if cached, ok := s.cache[key]; ok {
		return cached, nil
	}
	if len(s.cache) >= s.opts.MaxDocuments {
		return nil, fmt.Errorf("jsonschema resolver: exceeded max documents (%d)", s.opts.MaxDocuments)
	}

	doc, err := s.loader.Load(ctx, src)
	if err != nil {
		return nil, err
	}
	if int64(len(doc.Raw())) > s.opts.MaxDocumentBytes {
		return nil, fmt.Errorf("jsonschema resolver: document too large (%d bytes)", len(doc.Raw()))
	}
	payload, err := parseJSONSchema(doc.Raw())
	if err != nil {
		return nil, err
	}
	if err := validateDialect(payload); err != nil {
		return nil, err
	}
	return s.register(src, payload)
}

func (s *resolveSession) register(src Source, payload map[string]any) (*resolvedDocument, error) {
	key, location, baseDir, err := canonicalLocation(src)
	if err != nil {
		return nil, err
	}
	anchors := make(map[string]string)
	if err := indexAnchors(payload, "#", anchors); err != nil {
		return nil, err
	}
	doc := &resolvedDocument{
		key:      key,
		kind:     src.Kind(),
		location: location,
		baseDir:  baseDir,
		data:     payload,
		anchors:  anchors,
	}
	s.cache[key] = doc
	return doc, nil
}

func (s *resolveSession) relativeSource(doc *resolvedDocument, refPath string) (Source, error) {
	switch doc.kind {
	case SourceKindFile:
		candidate := refPath
		if !filepath.IsAbs(candidate) {
			candidate = filepath.Join(doc.baseDir, refPath)
		}
		candidate = filepath.Clean(candidate)
		if !s.opts.AllowPathTraversal {
			rel, err := filepath.Rel(s.rootDir, candidate)
			if err != nil || strings.HasPrefix(rel, "..") {
				return nil, fmt.Errorf("jsonschema resolver: ref path escapes root (%s)", refPath)
			}
		}
		return SourceFromFile(candidate), nil
	case SourceKindFS:
		candidate := strings.TrimPrefix(path.Clean(path.Join(doc.baseDir, refPath)), "/")
		if !s.opts.AllowPathTraversal && strings.HasPrefix(candidate, "..") {
			return nil, fmt.Errorf("jsonschema resolver: ref path escapes root (%s)", refPath)
		}
		return SourceFromFS(candidate), nil
	case SourceKindURL:
		if !s.opts.AllowHTTPRefs {
			return nil, fmt.Errorf("jsonschema resolver: http refs disabled (%s)", refPath)
		}
		base, err := url.Parse(doc.location)
		if err != nil {
			return nil, err
		}
		rel, err := url.Parse(refPath)
		if err != nil {
			return nil, err
		}
		return SourceFromURL(base.ResolveReference(rel).String()), nil
	default:
		return nil, errors.New("jsonschema resolver: unsupported source kind")
	}
}

func canonicalLocation(src Source) (string, string, string, error) {
	if src == nil {
		return "", "", "", errors.New("jsonschema resolver: source is nil")
	}
	location := src.Location()
	switch src.Kind() {
	case SourceKindFile:
		abs, err := filepath.Abs(location)
		if err != nil {
			return "", "", "", err
		}
		return "file:" + abs, abs, filepath.Dir(abs), nil
	case SourceKindFS:
		cleaned := path.Clean(strings.TrimPrefix(location, "/"))
		return "fs:" + cleaned, cleaned, path.Dir(cleaned), nil
	case SourceKindURL:
		return "url:" + location, location, path.Dir(location), nil
	default:
		return "", "", "", errors.New("jsonschema resolver: unsupported source kind")
	}
}

func splitRef(ref string) (string, string) {
	parts := strings.SplitN(ref, "#", 2)
	if len(parts) == 1 {
		return parts[0], ""
	}
	return parts[0], parts[1]
}

func resolveJSONPointer(root any, pointer string) (any, error) {
	if pointer == "" || pointer == "#" {
		return cloneAny(root), nil
	}
	if !strings.HasPrefix(pointer, "/") {
		return nil, fmt.Errorf("jsonschema resolver: invalid json pointer %q", pointer)
	}

	current := root
	for _, part := range strings.Split(pointer, "/")[1:] {
		decoded, err := url.PathUnescape(part)
		if err != nil {
			return nil, err
		}
		decoded = strings.ReplaceAll(decoded, "~1", "/")
		decoded = strings.ReplaceAll(decoded, "~0", "~")

		switch typed := current.(type) {
		case map[string]any:
			value, ok := typed[decoded]
			if !ok {
				return nil, fmt.Errorf("jsonschema resolver: pointer %q not found", pointer)
			}
			current = value
		case []any:
			idx, err := strconv.Atoi(decoded)
			if err != nil || idx < 0 || idx >= len(typed) {
				return nil, fmt.Errorf("jsonschema resolver: pointer %q out of range", pointer)
			}
			current = typed[idx]
		default:
			return nil, fmt.Errorf("jsonschema resolver: pointer %q invalid", pointer)
		}
	}
	return cloneAny(current), nil
}

func indexAnchors(node any, pointer string, anchors map[string]string) error {
	switch typed := node.(type) {
	case map[string]any:
		if raw, ok := typed["$anchor"]; ok {
			name, _ := raw.(string)
			name = strings.TrimSpace(name)
			if name != "" {
				if _, exists := anchors[name]; exists {
					return fmt.Errorf("jsonschema resolver: duplicate anchor %q", name)
				}
				anchors[name] = pointer
			}
		}
		for key, value := range typed {
			if isVendorExtension(key) {
				continue
			}
			if err := indexAnchors(value, joinPath(pointer, key), anchors); err != nil {
				return err
			}
		}
	case []any:
		for idx, value := range typed {
			if err := indexAnchors(value, joinPath(pointer, strconv.Itoa(idx)), anchors); err != nil {
				return err
			}
		}
	}
	return nil
}

// mergeRefTarget overlays allowed $ref sibling keywords onto a copy of the
// target schema.
func mergeRefTarget(target any, refObj map[string]any) (any, error) {
	merged := cloneAny(target)
	mergedMap, ok := merged.(map[string]any)
	if !ok {
		for key := range refObj {
			if key != "$ref" {
				return nil, errors.New("jsonschema resolver: $ref target is not an object")
			}
		}
		return merged, nil
	}
	for key, value := range refObj {
		if key == "$ref" {
			continue
		}
		if !isAllowedRefSibling(key) {
			return nil, fmt.Errorf("jsonschema resolver: unsupported $ref sibling %q", key)
		}
		mergedMap[key] = value
	}
	return mergedMap, nil
}

func isAllowedRefSibling(key string) bool {
	switch key {
	case "title", "description", "default":
		return true
	}
	return isVendorExtension(key)
}

func cloneAny(value any) any {
	switch typed := value.(type) {
	case map[string]any:
		out := make(map[string]any, len(typed))
		for key, val := range typed {
			out[key] = cloneAny(val)
		}
		return out
	case []any:
		out := make([]any, len(typed))
		for idx, val := range typed {
			out[idx] = cloneAny(val)
		}
		return out
	default:
		return typed
	}
}

type refStack struct {
	refs []string
}

func (s *refStack) push(ref string) {
	s.refs = append(s.refs, ref)
}

func (s *refStack) pop() {
	if len(s.refs) > 0 {
		s.refs = s.refs[:len(s.refs)-1]
	}
}

func (s *refStack) contains(ref string) bool {
	for _, existing := range s.refs {
		if existing == ref {
			return true
		}
	}
	return false
}

func (s *refStack) depth() int {
	return len(s.refs)
}
