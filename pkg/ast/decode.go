package ast

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
)

// ErrParseFailed is wrapped by every *FailureError.
var ErrParseFailed = errors.New("parse failed")

// FailureError reports a parse result that carried a diagnostic instead of a
// tree.
type FailureError struct {
	Message string
}

func (e *FailureError) Error() string {
	if e.Message == "" {
		return ErrParseFailed.Error()
	}
	return fmt.Sprintf("%s: %s", ErrParseFailed, e.Message)
}

func (e *FailureError) Unwrap() error { return ErrParseFailed }

// DecodeError reports JSON that does not describe a tree.
type DecodeError struct {
	Path    string
	Message string
}

func (e *DecodeError) Error() string {
	if e.Path == "" {
		return "decode ast: " + e.Message
	}
	return fmt.Sprintf("decode ast at %s: %s", e.Path, e.Message)
}

// DecodeParseResult decodes the output of a parser invocation. It accepts a
// ParseOk/ParseError result, a {"success": ..., "parseResult": ...} service
// envelope, an {"error": "..."} service failure, or a bare root node.
// Diagnostics are returned as *FailureError.
func DecodeParseResult(data []byte) (Node, error) {
	obj, err := parseObject(data)
	if err != nil {
		return nil, &DecodeError{Message: err.Error()}
	}
	return decodeResult(obj, "$")
}

// Decode decodes a single JSON node and its subtree.
func Decode(data []byte) (Node, error) {
	return decodeNode(data, "$")
}

func decodeResult(obj *object, path string) (Node, error) {
	if raw, ok := obj.fields["parseResult"]; ok {
		nested, err := parseObject(raw)
		if err != nil {
			return nil, &DecodeError{Path: path + ".parseResult", Message: err.Error()}
		}
		if success, ok := obj.boolField("success"); ok && !success {
			return nil, &FailureError{Message: failureMessage(nested)}
		}
		return decodeResult(nested, path+".parseResult")
	}

	switch obj.stringField("kind") {
	case "ParseOk":
		for _, key := range []string{"root", "ast"} {
			if raw, ok := obj.fields[key]; ok {
				return decodeNode(raw, path+"."+key)
			}
		}
		return nil, &DecodeError{Path: path, Message: "ParseOk result has no root"}
	case "ParseError":
		return nil, &FailureError{Message: failureMessage(obj)}
	case "":
		if _, ok := obj.fields["error"]; ok {
			return nil, &FailureError{Message: failureMessage(obj)}
		}
		for _, key := range []string{"root", "ast"} {
			if raw, ok := obj.fields[key]; ok {
				return decodeNode(raw, path+"."+key)
			}
		}
		return nil, &DecodeError{Path: path, Message: "object has no kind"}
	}
	return decodeObjectNode(obj, path)
}

// failureMessage digs the diagnostic text out of a failure result.
func failureMessage(obj *object) string {
	if msg := obj.stringField("message"); msg != "" {
		return msg
	}
	raw, ok := obj.fields["error"]
	if !ok {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	inner, err := parseObject(raw)
	if err != nil {
		return ""
	}
	if msg := inner.stringField("message"); msg != "" {
		return msg
	}
	if nested, ok := inner.fields["innerError"]; ok {
		if o, err := parseObject(nested); err == nil {
			return o.stringField("message")
		}
	}
	return ""
}

func decodeNode(raw json.RawMessage, path string) (Node, error) {
	if isNull(raw) {
		return nil, nil
	}
	obj, err := parseObject(raw)
	if err != nil {
		return nil, &DecodeError{Path: path, Message: err.Error()}
	}
	if obj.stringField("kind") == "" {
		return nil, &DecodeError{Path: path, Message: "node has no kind"}
	}
	return decodeObjectNode(obj, path)
}

func decodeObjectNode(obj *object, path string) (Node, error) {
	tr, err := obj.tokenRange(path)
	if err != nil {
		return nil, err
	}

	switch kind := Kind(obj.stringField("kind")); kind {
	case KindLetExpression:
		steps, err := decodeSteps(obj.fields["variableList"], path+".variableList")
		if err != nil {
			return nil, err
		}
		body, err := decodeNode(obj.fields["expression"], path+".expression")
		if err != nil {
			return nil, err
		}
		return &LetExpression{Steps: steps, Body: body, TokenRange: tr}, nil

	case KindIdentifierPairedExpression:
		return decodePair(obj, path, tr)

	case KindIdentifierExpression:
		id, err := decodeIdentifier(obj.fields["identifier"], path+".identifier")
		if err != nil {
			return nil, err
		}
		inclusive, _ := obj.boolField("inclusive")
		if raw, ok := obj.fields["maybeInclusiveConstant"]; ok && !isNull(raw) {
			inclusive = true
		}
		return &IdentifierExpression{Identifier: id, Inclusive: inclusive, TokenRange: tr}, nil

	case KindIdentifier, "GeneralizedIdentifier":
		return &Identifier{Literal: obj.stringField("literal"), TokenRange: tr}, nil

	case KindFunctionExpression:
		params, err := collectParameters(obj.fields["parameters"], path+".parameters")
		if err != nil {
			return nil, err
		}
		body, err := decodeNode(obj.firstField("expression", "body"), path+".expression")
		if err != nil {
			return nil, err
		}
		return &FunctionExpression{Parameters: params, Body: body, TokenRange: tr}, nil

	case KindEachExpression:
		// powerquery-parser spells the field "paramater".
		body, err := decodeNode(obj.firstField("paramater", "parameter", "expression", "body"), path+".paramater")
		if err != nil {
			return nil, err
		}
		return &EachExpression{Body: body, TokenRange: tr}, nil

	default:
		c := &Composite{NodeKind: kind, TokenRange: tr}
		for _, key := range obj.keys {
			switch key {
			case "kind", "tokenRange", "id", "isLeaf":
				continue
			case "literal":
				var s string
				if err := json.Unmarshal(obj.fields[key], &s); err == nil {
					c.Literal = s
					continue
				}
			}
			children, err := collectNodes(obj.fields[key], path+"."+key)
			if err != nil {
				return nil, err
			}
			c.Children = append(c.Children, children...)
		}
		return c, nil
	}
}

func decodePair(obj *object, path string, tr *TokenRange) (*IdentifierPairedExpression, error) {
	key, err := decodeIdentifier(obj.fields["key"], path+".key")
	if err != nil {
		return nil, err
	}
	value, err := decodeNode(obj.fields["value"], path+".value")
	if err != nil {
		return nil, err
	}
	return &IdentifierPairedExpression{Key: key, Value: value, TokenRange: tr}, nil
}

// decodeSteps unwraps ArrayWrapper<Csv<IdentifierPairedExpression>>. Both the
// wrapper object and the Csv layer are optional.
func decodeSteps(raw json.RawMessage, path string) ([]*IdentifierPairedExpression, error) {
	if isNull(raw) {
		return nil, nil
	}
	elements := raw
	elemPath := path
	if firstByte(raw) == '{' {
		obj, err := parseObject(raw)
		if err != nil {
			return nil, &DecodeError{Path: path, Message: err.Error()}
		}
		elements = obj.fields["elements"]
		elemPath = path + ".elements"
	}

	var items []json.RawMessage
	if err := json.Unmarshal(elements, &items); err != nil {
		return nil, &DecodeError{Path: elemPath, Message: "variable list is not an array"}
	}

	steps := make([]*IdentifierPairedExpression, 0, len(items))
	for i, item := range items {
		itemPath := fmt.Sprintf("%s[%d]", elemPath, i)
		obj, err := parseObject(item)
		if err != nil {
			return nil, &DecodeError{Path: itemPath, Message: err.Error()}
		}
		if Kind(obj.stringField("kind")) == KindCsv {
			itemPath += ".node"
			if obj, err = parseObject(obj.fields["node"]); err != nil {
				return nil, &DecodeError{Path: itemPath, Message: err.Error()}
			}
		}
		if kind := Kind(obj.stringField("kind")); kind != KindIdentifierPairedExpression {
			return nil, &DecodeError{Path: itemPath, Message: fmt.Sprintf("expected %s, got %q", KindIdentifierPairedExpression, kind)}
		}
		tr, err := obj.tokenRange(itemPath)
		if err != nil {
			return nil, err
		}
		pair, err := decodePair(obj, itemPath, tr)
		if err != nil {
			return nil, err
		}
		steps = append(steps, pair)
	}
	return steps, nil
}

// decodeIdentifier reads {literal} with or without a kind tag.
func decodeIdentifier(raw json.RawMessage, path string) (*Identifier, error) {
	if isNull(raw) {
		return nil, nil
	}
	obj, err := parseObject(raw)
	if err != nil {
		return nil, &DecodeError{Path: path, Message: err.Error()}
	}
	tr, err := obj.tokenRange(path)
	if err != nil {
		return nil, err
	}
	return &Identifier{Literal: obj.stringField("literal"), TokenRange: tr}, nil
}

// collectParameters finds every Parameter node below raw and returns their
// names in order.
func collectParameters(raw json.RawMessage, path string) ([]*Identifier, error) {
	var params []*Identifier
	var walk func(raw json.RawMessage, path string) error
	walk = func(raw json.RawMessage, path string) error {
		switch firstByte(raw) {
		case '[':
			var items []json.RawMessage
			if err := json.Unmarshal(raw, &items); err != nil {
				return &DecodeError{Path: path, Message: err.Error()}
			}
			for i, item := range items {
				if err := walk(item, fmt.Sprintf("%s[%d]", path, i)); err != nil {
					return err
				}
			}
		case '{':
			obj, err := parseObject(raw)
			if err != nil {
				return &DecodeError{Path: path, Message: err.Error()}
			}
			if Kind(obj.stringField("kind")) == KindParameter {
				id, err := decodeIdentifier(obj.fields["name"], path+".name")
				if err != nil {
					return err
				}
				if id != nil {
					params = append(params, id)
				}
				return nil
			}
			for _, key := range obj.keys {
				if key == "tokenRange" {
					continue
				}
				if err := walk(obj.fields[key], path+"."+key); err != nil {
					return err
				}
			}
		}
		return nil
	}
	if err := walk(raw, path); err != nil {
		return nil, err
	}
	return params, nil
}

// collectNodes returns the nodes found in a field value: a node object, an
// array of values, or an untagged object whose fields hold nodes.
func collectNodes(raw json.RawMessage, path string) ([]Node, error) {
	switch firstByte(raw) {
	case '[':
		var items []json.RawMessage
		if err := json.Unmarshal(raw, &items); err != nil {
			return nil, &DecodeError{Path: path, Message: err.Error()}
		}
		var out []Node
		for i, item := range items {
			nodes, err := collectNodes(item, fmt.Sprintf("%s[%d]", path, i))
			if err != nil {
				return nil, err
			}
			out = append(out, nodes...)
		}
		return out, nil
	case '{':
		obj, err := parseObject(raw)
		if err != nil {
			return nil, &DecodeError{Path: path, Message: err.Error()}
		}
		if obj.stringField("kind") != "" {
			n, err := decodeObjectNode(obj, path)
			if err != nil {
				return nil, err
			}
			return []Node{n}, nil
		}
		var out []Node
		for _, key := range obj.keys {
			if key == "tokenRange" {
				continue
			}
			nodes, err := collectNodes(obj.fields[key], path+"."+key)
			if err != nil {
				return nil, err
			}
			out = append(out, nodes...)
		}
		return out, nil
	}
	return nil, nil
}

// object is a JSON object that remembers its key order.
type object struct {
	keys   []string
	fields map[string]json.RawMessage
}

func parseObject(data []byte) (*object, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	tok, err := dec.Token()
	if err != nil {
		return nil, err
	}
	if d, ok := tok.(json.Delim); !ok || d != '{' {
		return nil, errors.New("expected a JSON object")
	}
	obj := &object{fields: make(map[string]json.RawMessage)}
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return nil, err
		}
		key, ok := tok.(string)
		if !ok {
			return nil, errors.New("expected an object key")
		}
		var value json.RawMessage
		if err := dec.Decode(&value); err != nil {
			return nil, err
		}
		if _, dup := obj.fields[key]; !dup {
			obj.keys = append(obj.keys, key)
		}
		obj.fields[key] = value
	}
	if _, err := dec.Token(); err != nil {
		return nil, err
	}
	return obj, nil
}

func (o *object) stringField(key string) string {
	raw, ok := o.fields[key]
	if !ok {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return ""
	}
	return s
}

func (o *object) boolField(key string) (bool, bool) {
	raw, ok := o.fields[key]
	if !ok {
		return false, false
	}
	var b bool
	if err := json.Unmarshal(raw, &b); err != nil {
		return false, false
	}
	return b, true
}

func (o *object) firstField(keys ...string) json.RawMessage {
	for _, k := range keys {
		if raw, ok := o.fields[k]; ok {
			return raw
		}
	}
	return nil
}

func (o *object) tokenRange(path string) (*TokenRange, error) {
	raw, ok := o.fields["tokenRange"]
	if !ok || isNull(raw) {
		return nil, nil
	}
	var tr TokenRange
	if err := json.Unmarshal(raw, &tr); err != nil {
		return nil, &DecodeError{Path: path + ".tokenRange", Message: err.Error()}
	}
	return &tr, nil
}

func firstByte(raw []byte) byte {
	for _, b := range raw {
		switch b {
		case ' ', '\t', '\n', '\r':
			continue
		}
		return b
	}
	return 0
}

func isNull(raw json.RawMessage) bool {
	return len(raw) == 0 || firstByte(raw) == 'n'
}
