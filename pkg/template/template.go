// Package template renders action configuration values against trigger data.
package template

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
	"text/template"
	"text/template/parse"
	"time"

	"github.com/dukex/autoflow/pkg/models"
)

// ErrInvalidTemplate is returned when a value does not parse as a template.
var ErrInvalidTemplate = errors.New("invalid template")

// placeholderPattern matches bare placeholders such as {{order_id}}. Native
// text/template actions ({{ .order_id }}, {{ now }}) are left alone.
var placeholderPattern = regexp.MustCompile(`\{\{\s*([A-Za-z_][A-Za-z0-9_]*)\s*\}\}`)

var funcs = template.FuncMap{
	"now": func() string {
		return time.Now().UTC().Format(time.RFC3339)
	},
	"upper": strings.ToUpper,
	"lower": strings.ToLower,
}

// NeedsTemplating reports whether text contains template actions.
func NeedsTemplating(text string) bool {
	return strings.Contains(text, "{{") && strings.Contains(text, "}}")
}

// normalize rewrites bare placeholders into field actions.
func normalize(text string) string {
	return placeholderPattern.ReplaceAllStringFunc(text, func(match string) string {
		name := placeholderPattern.FindStringSubmatch(match)[1]
		if _, isFunc := funcs[name]; isFunc {
			return match
		}

		return "{{ ." + name + " }}"
	})
}

func parseText(text string) (*template.Template, error) {
	tmpl, err := template.New("config").Funcs(funcs).Option("missingkey=error").Parse(normalize(text))
	if err != nil {
		return nil, fmt.Errorf("%w '%s': %v", ErrInvalidTemplate, text, err)
	}

	return tmpl, nil
}

// Placeholders returns the distinct trigger data keys text refers to, bare
// ({{order_id}}) or native ({{ .order_id }}), in order of first appearance.
func Placeholders(text string) ([]string, error) {
	if !NeedsTemplating(text) {
		return []string{}, nil
	}

	tmpl, err := parseText(text)
	if err != nil {
		return nil, err
	}

	c := &fieldCollector{seen: make(map[string]struct{}), names: make([]string, 0)}
	c.walk(tmpl.Tree.Root, true)

	return c.names, nil
}

type fieldCollector struct {
	seen  map[string]struct{}
	names []string
}

func (c *fieldCollector) add(name string) {
	if _, dup := c.seen[name]; dup {
		return
	}

	c.seen[name] = struct{}{}
	c.names = append(c.names, name)
}

// walk records field references. Inside range and with bodies dot is no
// longer the trigger data, so only $-rooted references count there.
func (c *fieldCollector) walk(node parse.Node, atRoot bool) {
	switch n := node.(type) {
	case *parse.ListNode:
		if n == nil {
			return
		}

		for _, child := range n.Nodes {
			c.walk(child, atRoot)
		}
	case *parse.ActionNode:
		c.walk(n.Pipe, atRoot)
	case *parse.PipeNode:
		if n == nil {
			return
		}

		for _, cmd := range n.Cmds {
			c.walk(cmd, atRoot)
		}
	case *parse.CommandNode:
		for _, arg := range n.Args {
			c.walk(arg, atRoot)
		}
	case *parse.ChainNode:
		c.walk(n.Node, atRoot)
	case *parse.FieldNode:
		if atRoot {
			c.add(n.Ident[0])
		}
	case *parse.VariableNode:
		if len(n.Ident) > 1 && n.Ident[0] == "$" {
			c.add(n.Ident[1])
		}
	case *parse.IfNode:
		c.walk(n.Pipe, atRoot)
		c.walk(n.List, atRoot)
		c.walk(n.ElseList, atRoot)
	case *parse.RangeNode:
		c.walk(n.Pipe, atRoot)
		c.walk(n.List, false)
		c.walk(n.ElseList, atRoot)
	case *parse.WithNode:
		c.walk(n.Pipe, atRoot)
		c.walk(n.List, false)
		c.walk(n.ElseList, atRoot)
	}
}

// RenderString renders text with data and returns the raw output. Missing
// keys are an error.
func RenderString(text string, data map[string]any) (string, error) {
	if !NeedsTemplating(text) {
		return text, nil
	}

	tmpl, err := parseText(text)
	if err != nil {
		return "", err
	}

	var buf strings.Builder

	err = tmpl.Execute(&buf, data)
	if err != nil {
		return "", fmt.Errorf("failed to execute template '%s': %w", text, err)
	}

	return buf.String(), nil
}

// RenderConfig renders every value of an automation config with the trigger
// data of an execution.
func RenderConfig(config map[string]string, data models.TriggerData) (map[string]string, error) {
	rendered := make(map[string]string, len(config))

	for key, value := range config {
		out, err := RenderString(value, data)
		if err != nil {
			return nil, fmt.Errorf("config %s: %w", key, err)
		}

		rendered[key] = out
	}

	return rendered, nil
}
