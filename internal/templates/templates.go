// Package templates holds the Python blueprints expanded into sample files.
//
// Blueprints are embedded text/template files, one per Kind, named "<key>.py.tmpl".
// They may only reference the fields of Params; anything else is rejected when the
// set is loaded so a broken blueprint fails before any file is written.
package templates

import (
	"bytes"
	"embed"
	"fmt"
	"io/fs"
	"sort"
	"strings"
	"text/template"
	"text/template/parse"
)

//go:embed blueprints/*.py.tmpl
var blueprintsFS embed.FS

// Params are the values substituted into a blueprint
type Params struct {
	Module         string
	ClassName      string
	ClassNameLower string
}

// NewParams builds the parameters for one generated file
func NewParams(module, className string) Params {
	return Params{
		Module:         module,
		ClassName:      className,
		ClassNameLower: strings.ToLower(className),
	}
}

// placeholders is the set of fields a blueprint may reference
var placeholders = map[string]bool{
	"Module":         true,
	"ClassName":      true,
	"ClassNameLower": true,
}

// Set is a loaded, validated collection of blueprints, one per Kind
type Set struct {
	blueprints [kindCount]*template.Template
}

// Default loads the embedded blueprints
func Default() (*Set, error) {
	sub, err := fs.Sub(blueprintsFS, "blueprints")
	if err != nil {
		return nil, fmt.Errorf("failed to open embedded blueprints: %w", err)
	}
	return Load(sub)
}

// Load reads and validates one blueprint per Kind from the root of fsys
func Load(fsys fs.FS) (*Set, error) {
	s := &Set{}
	used := make(map[string]bool)

	for _, k := range Kinds() {
		name := k.Key() + ".py.tmpl"
		data, err := fs.ReadFile(fsys, name)
		if err != nil {
			return nil, fmt.Errorf("failed to read blueprint %s: %w", name, err)
		}

		tmpl, err := template.New(k.Key()).Option("missingkey=error").Parse(string(data))
		if err != nil {
			return nil, fmt.Errorf("failed to parse blueprint %s: %w", name, err)
		}

		fields, err := referencedFields(tmpl.Tree.Root)
		if err != nil {
			return nil, fmt.Errorf("invalid blueprint %s: %w", name, err)
		}
		for _, f := range fields {
			used[f] = true
		}

		s.blueprints[k] = tmpl
	}

	for p := range placeholders {
		if !used[p] {
			return nil, fmt.Errorf("no blueprint references placeholder %s", p)
		}
	}

	return s, nil
}

// Expand renders the blueprint for k with the given parameters
func (s *Set) Expand(k Kind, p Params) ([]byte, error) {
	if !k.Valid() {
		return nil, fmt.Errorf("unknown template kind: %d", int(k))
	}

	var buf bytes.Buffer
	if err := s.blueprints[k].Execute(&buf, p); err != nil {
		return nil, fmt.Errorf("failed to expand %s blueprint: %w", k.Key(), err)
	}
	return buf.Bytes(), nil
}

// referencedFields walks a parsed blueprint and collects the Params fields it uses.
// Only plain text and single-field actions such as {{.ClassName}} are allowed.
func referencedFields(root *parse.ListNode) ([]string, error) {
	seen := make(map[string]bool)

	for _, node := range root.Nodes {
		switch n := node.(type) {
		case *parse.TextNode, *parse.CommentNode:
		case *parse.ActionNode:
			name, err := fieldName(n)
			if err != nil {
				return nil, err
			}
			seen[name] = true
		default:
			return nil, fmt.Errorf("unsupported construct at offset %d", node.Position())
		}
	}

	fields := make([]string, 0, len(seen))
	for f := range seen {
		fields = append(fields, f)
	}
	sort.Strings(fields)
	return fields, nil
}

func fieldName(n *parse.ActionNode) (string, error) {
	if n.Pipe == nil || len(n.Pipe.Decl) > 0 || len(n.Pipe.Cmds) != 1 || len(n.Pipe.Cmds[0].Args) != 1 {
		return "", fmt.Errorf("unsupported action %s", n.String())
	}

	field, ok := n.Pipe.Cmds[0].Args[0].(*parse.FieldNode)
	if !ok || len(field.Ident) != 1 {
		return "", fmt.Errorf("unsupported action %s", n.String())
	}

	name := field.Ident[0]
	if !placeholders[name] {
		return "", fmt.Errorf("unknown placeholder %s", name)
	}
	return name, nil
}
