package eventfsm

import (
	"bytes"
	"errors"
	"fmt"
	"io"

	"gopkg.in/yaml.v3"
)

// LoadYAML reads a state table from r. The document must be a mapping of
// state names to mappings of event names; an event maps either to the name
// of the state to move to or to {handler: <name>}, bound from handlers.
//
//	locked:
//	  coin: unlocked
//	unlocked:
//	  push: locked
//	  inspect: {handler: inspect}
//
// States and events keep their order from the document.
func LoadYAML(r io.Reader, handlers map[string]Handler) (*Table, error) {
	var doc yaml.Node
	if err := yaml.NewDecoder(r).Decode(&doc); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, configErrorf("state table document is empty")
		}
		return nil, &ConfigurationError{Reason: "parse state table", Err: err}
	}
	return tableFromNode(&doc, handlers)
}

// ParseYAML is LoadYAML over a byte slice
func ParseYAML(data []byte, handlers map[string]Handler) (*Table, error) {
	return LoadYAML(bytes.NewReader(data), handlers)
}

type handlerRef struct {
	Handler string `yaml:"handler"`
}

func tableFromNode(doc *yaml.Node, handlers map[string]Handler) (*Table, error) {
	root := doc
	if root.Kind == yaml.DocumentNode {
		if len(root.Content) == 0 {
			return nil, configErrorf("state table document is empty")
		}
		root = root.Content[0]
	}
	if root.Kind != yaml.MappingNode {
		return nil, configErrorf("state table must be a mapping of states, got %s at line %d", nodeKind(root), root.Line)
	}

	t := NewTable()
	for i := 0; i+1 < len(root.Content); i += 2 {
		key, body := root.Content[i], root.Content[i+1]
		if key.Kind != yaml.ScalarNode || key.Value == "" {
			return nil, configErrorf("invalid state name at line %d", key.Line)
		}
		events, err := eventsFromNode(StateID(key.Value), body, handlers)
		if err != nil {
			return nil, err
		}
		t.addState(StateID(key.Value), events)
	}
	return t, nil
}

func eventsFromNode(state StateID, body *yaml.Node, handlers map[string]Handler) ([]eventDecl, error) {
	if body.Kind == yaml.ScalarNode && body.Tag == "!!null" {
		return nil, nil
	}
	if body.Kind != yaml.MappingNode {
		return nil, configErrorf("state %q must map events, got %s at line %d", state, nodeKind(body), body.Line)
	}

	decls := make([]eventDecl, 0, len(body.Content)/2)
	for i := 0; i+1 < len(body.Content); i += 2 {
		key, val := body.Content[i], body.Content[i+1]
		if key.Kind != yaml.ScalarNode || key.Value == "" {
			return nil, configErrorf("state %q: invalid event name at line %d", state, key.Line)
		}
		event := EventID(key.Value)

		switch val.Kind {
		case yaml.ScalarNode:
			if val.Tag == "!!null" || val.Value == "" {
				return nil, configErrorf("state %q event %q: missing target at line %d", state, event, val.Line)
			}
			decls = append(decls, eventDecl{event: event, value: StateID(val.Value)})
		case yaml.MappingNode:
			for j := 0; j+1 < len(val.Content); j += 2 {
				if k := val.Content[j]; k.Value != "handler" {
					return nil, configErrorf("state %q event %q: unknown key %q at line %d", state, event, k.Value, k.Line)
				}
			}
			var ref handlerRef
			if err := val.Decode(&ref); err != nil {
				return nil, &ConfigurationError{Reason: fmt.Sprintf("state %q event %q", state, event), Err: err}
			}
			h, ok := handlers[ref.Handler]
			if !ok || h == nil {
				return nil, configErrorf("state %q event %q: unknown handler %q", state, event, ref.Handler)
			}
			decls = append(decls, eventDecl{event: event, value: h})
		default:
			return nil, configErrorf("state %q event %q: unsupported %s at line %d", state, event, nodeKind(val), val.Line)
		}
	}
	return decls, nil
}

func nodeKind(n *yaml.Node) string {
	switch n.Kind {
	case yaml.SequenceNode:
		return "sequence"
	case yaml.MappingNode:
		return "mapping"
	case yaml.ScalarNode:
		return "scalar"
	case yaml.AliasNode:
		return "alias"
	default:
		return "document"
	}
}
