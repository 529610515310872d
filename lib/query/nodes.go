package query

import (
	"encoding/json"
	"fmt"
)

// --------------------------------------------------------------------------
// Condition Nodes
// --------------------------------------------------------------------------

// Node is a single node of a query condition tree. A node is evaluated
// against one document at a time and reports whether the document matches.
type Node interface {
	// Evaluate reports whether the given document satisfies the condition.
	Evaluate(doc map[string]any) bool
}

// And matches when every child node matches. An empty And matches everything.
type And struct {
	Nodes []Node
}

func (n *And) Evaluate(doc map[string]any) bool {
	for _, child := range n.Nodes {
		if !child.Evaluate(doc) {
			return false
		}
	}
	return true
}

// Or matches when at least one child node matches.
type Or struct {
	Nodes []Node
}

func (n *Or) Evaluate(doc map[string]any) bool {
	for _, child := range n.Nodes {
		if child.Evaluate(doc) {
			return true
		}
	}
	return false
}

// Not inverts its child node.
type Not struct {
	Node Node
}

func (n *Not) Evaluate(doc map[string]any) bool {
	return !n.Node.Evaluate(doc)
}

// Compare matches a single field of a document against a constant value.
// The field may be a dotted path into nested objects (e.g. "user.name").
type Compare struct {
	Field string
	Op    Operator
	Value any
}

func (n *Compare) Evaluate(doc map[string]any) bool {
	actual, found := LookupPath(doc, n.Field)
	if !found {
		return false
	}

	switch n.Op {
	case OpEq:
		return equalValues(actual, n.Value)
	case OpNeq:
		return !equalValues(actual, n.Value)
	case OpGt, OpGte, OpLt, OpLte:
		cmp, ok := compareValues(actual, n.Value)
		if !ok {
			return false
		}
		switch n.Op {
		case OpGt:
			return cmp > 0
		case OpGte:
			return cmp >= 0
		case OpLt:
			return cmp < 0
		default:
			return cmp <= 0
		}
	case OpContains:
		return containsValue(actual, n.Value)
	case OpStartsWith:
		return hasAffix(actual, n.Value, true)
	case OpEndsWith:
		return hasAffix(actual, n.Value, false)
	case OpIn:
		candidates, ok := n.Value.([]any)
		if !ok {
			return false
		}
		for _, candidate := range candidates {
			if equalValues(actual, candidate) {
				return true
			}
		}
		return false
	default:
		return false
	}
}

// --------------------------------------------------------------------------
// Comparison Operators
// --------------------------------------------------------------------------

// Operator is the comparison operator of a Compare node.
type Operator uint8

const (
	OpUnknown Operator = iota
	OpEq
	OpNeq
	OpGt
	OpGte
	OpLt
	OpLte
	OpContains
	OpStartsWith
	OpEndsWith
	OpIn
)

// String returns the wire name of an Operator.
func (o Operator) String() string {
	switch o {
	case OpEq:
		return "eq"
	case OpNeq:
		return "neq"
	case OpGt:
		return "gt"
	case OpGte:
		return "gte"
	case OpLt:
		return "lt"
	case OpLte:
		return "lte"
	case OpContains:
		return "contains"
	case OpStartsWith:
		return "startsWith"
	case OpEndsWith:
		return "endsWith"
	case OpIn:
		return "in"
	default:
		return "unknown"
	}
}

func parseOperator(s string) (Operator, bool) {
	for _, op := range []Operator{
		OpEq, OpNeq, OpGt, OpGte, OpLt, OpLte,
		OpContains, OpStartsWith, OpEndsWith, OpIn,
	} {
		if op.String() == s {
			return op, true
		}
	}
	return OpUnknown, false
}

// --------------------------------------------------------------------------
// Node Factory Functions
// --------------------------------------------------------------------------

// NewAnd creates a node that matches when all child nodes match.
func NewAnd(nodes ...Node) Node { return &And{Nodes: nodes} }

// NewOr creates a node that matches when any child node matches.
func NewOr(nodes ...Node) Node { return &Or{Nodes: nodes} }

// NewNot creates a node that inverts its child node.
func NewNot(node Node) Node { return &Not{Node: node} }

// NewCompare creates a field comparison node.
func NewCompare(field string, op Operator, value any) Node {
	return &Compare{Field: field, Op: op, Value: value}
}

// --------------------------------------------------------------------------
// JSON Encoding
// --------------------------------------------------------------------------

// The wire form of a node carries a "type" discriminator:
//
//	{"type":"and","nodes":[...]}
//	{"type":"not","node":{...}}
//	{"type":"eq","field":"age","value":30}

type nodeEnvelope struct {
	Type  string            `json:"type"`
	Nodes []json.RawMessage `json:"nodes,omitempty"`
	Node  json.RawMessage   `json:"node,omitempty"`
	Field string            `json:"field,omitempty"`
	Value any               `json:"value,omitempty"`
}

// DecodeNode restores a condition node from its wire form.
func DecodeNode(raw []byte) (Node, error) {
	var env nodeEnvelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return nil, fmt.Errorf("invalid condition node: %w", err)
	}

	switch env.Type {
	case "and", "or":
		children := make([]Node, 0, len(env.Nodes))
		for _, rawChild := range env.Nodes {
			child, err := DecodeNode(rawChild)
			if err != nil {
				return nil, err
			}
			children = append(children, child)
		}
		if env.Type == "and" {
			return &And{Nodes: children}, nil
		}
		return &Or{Nodes: children}, nil
	case "not":
		if env.Node == nil {
			return nil, fmt.Errorf("not node requires a child node")
		}
		child, err := DecodeNode(env.Node)
		if err != nil {
			return nil, err
		}
		return &Not{Node: child}, nil
	default:
		op, ok := parseOperator(env.Type)
		if !ok {
			return nil, fmt.Errorf("unknown condition node type: %s", env.Type)
		}
		if env.Field == "" {
			return nil, fmt.Errorf("%s node requires a field", env.Type)
		}
		return &Compare{Field: env.Field, Op: op, Value: env.Value}, nil
	}
}

// EncodeNode converts a condition node to its wire form.
func EncodeNode(n Node) ([]byte, error) {
	switch node := n.(type) {
	case *And, *Or:
		var (
			children []Node
			typeName string
		)
		if and, ok := node.(*And); ok {
			children, typeName = and.Nodes, "and"
		} else {
			children, typeName = node.(*Or).Nodes, "or"
		}
		rawChildren := make([]json.RawMessage, 0, len(children))
		for _, child := range children {
			raw, err := EncodeNode(child)
			if err != nil {
				return nil, err
			}
			rawChildren = append(rawChildren, raw)
		}
		return json.Marshal(nodeEnvelope{Type: typeName, Nodes: rawChildren})
	case *Not:
		raw, err := EncodeNode(node.Node)
		if err != nil {
			return nil, err
		}
		return json.Marshal(nodeEnvelope{Type: "not", Node: raw})
	case *Compare:
		// dedicated struct so that zero values ("", 0, false) survive encoding
		return json.Marshal(struct {
			Type  string `json:"type"`
			Field string `json:"field"`
			Value any    `json:"value"`
		}{Type: node.Op.String(), Field: node.Field, Value: node.Value})
	default:
		return nil, fmt.Errorf("unsupported condition node type %T", n)
	}
}
