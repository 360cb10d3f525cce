package scrape

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/buger/jsonparser"
)

// Kind tags the variant held by a Node.
type Kind uint8

const (
	KindNull Kind = iota
	KindBool
	KindNumber
	KindString
	KindArray
	KindObject
)

// ErrMalformedJSON is returned by Decode for input that is not valid JSON.
var ErrMalformedJSON = errors.New("malformed JSON")

// Node is a decoded JSON value that keeps object keys in document order.
// Walk order over the page data decides which entries survive the result cap,
// so a plain map would make results nondeterministic.
type Node struct {
	Kind   Kind
	Str    string // string value, or the literal text of a number
	Bool   bool
	Keys   []string
	Fields map[string]*Node
	Items  []*Node
}

// Decode parses raw JSON into a Node tree.
func Decode(raw []byte) (*Node, error) {
	if !json.Valid(raw) {
		return nil, ErrMalformedJSON
	}
	value, dataType, _, err := jsonparser.Get(raw)
	if err != nil {
		return nil, fmt.Errorf("reading root value: %w", err)
	}
	return decodeValue(value, dataType)
}

func decodeValue(value []byte, dataType jsonparser.ValueType) (*Node, error) {
	switch dataType {
	case jsonparser.Object:
		n := &Node{Kind: KindObject, Fields: make(map[string]*Node)}
		err := jsonparser.ObjectEach(value, func(key, v []byte, vt jsonparser.ValueType, _ int) error {
			name, err := jsonparser.ParseString(key)
			if err != nil {
				return fmt.Errorf("decoding key: %w", err)
			}
			child, err := decodeValue(v, vt)
			if err != nil {
				return err
			}
			n.Set(name, child)
			return nil
		})
		if err != nil {
			return nil, err
		}
		return n, nil

	case jsonparser.Array:
		n := &Node{Kind: KindArray}
		var itemErr error
		_, err := jsonparser.ArrayEach(value, func(v []byte, vt jsonparser.ValueType, _ int, err error) {
			if itemErr != nil {
				return
			}
			if err != nil {
				itemErr = err
				return
			}
			child, err := decodeValue(v, vt)
			if err != nil {
				itemErr = err
				return
			}
			n.Items = append(n.Items, child)
		})
		if err != nil {
			return nil, err
		}
		if itemErr != nil {
			return nil, itemErr
		}
		return n, nil

	case jsonparser.String:
		s, err := jsonparser.ParseString(value)
		if err != nil {
			return nil, fmt.Errorf("decoding string: %w", err)
		}
		return &Node{Kind: KindString, Str: s}, nil

	case jsonparser.Number:
		return &Node{Kind: KindNumber, Str: string(value)}, nil

	case jsonparser.Boolean:
		b, err := jsonparser.ParseBoolean(value)
		if err != nil {
			return nil, fmt.Errorf("decoding boolean: %w", err)
		}
		return &Node{Kind: KindBool, Bool: b}, nil

	case jsonparser.Null:
		return &Node{Kind: KindNull}, nil
	}
	return nil, fmt.Errorf("unsupported JSON value type %v", dataType)
}

// Set adds or replaces a field, keeping first-seen key order.
func (n *Node) Set(key string, child *Node) {
	if n.Fields == nil {
		n.Fields = make(map[string]*Node)
	}
	if _, exists := n.Fields[key]; !exists {
		n.Keys = append(n.Keys, key)
	}
	n.Fields[key] = child
}

// Get returns the named field of an object node, or nil.
func (n *Node) Get(key string) *Node {
	if n == nil || n.Kind != KindObject {
		return nil
	}
	return n.Fields[key]
}

// Path follows a chain of object keys.
func (n *Node) Path(keys ...string) *Node {
	for _, key := range keys {
		n = n.Get(key)
	}
	return n
}

// Index returns the i-th element of an array node, or nil.
func (n *Node) Index(i int) *Node {
	if n == nil || n.Kind != KindArray || i < 0 || i >= len(n.Items) {
		return nil
	}
	return n.Items[i]
}

// Text returns the value of a string node.
func (n *Node) Text() (string, bool) {
	if n == nil || n.Kind != KindString {
		return "", false
	}
	return n.Str, true
}
