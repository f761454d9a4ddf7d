package analysis

import (
	"sort"
	"strings"
)

// Type is the static type of an expression. The set of implementations is
// closed; Mixed is the top type and the result of every failed inference.
type Type interface {
	String() string
}

type basicType string

func (b basicType) String() string { return string(b) }

var (
	Mixed        Type = basicType("mixed")
	Boolean      Type = basicType("bool")
	Integer      Type = basicType("int")
	Float        Type = basicType("float")
	StringType   Type = basicType("string")
	Null         Type = basicType("null")
	Void         Type = basicType("void")
	CallableType Type = basicType("callable")
)

// ObjectType is an instance of a class or interface. FQN is empty for
// anonymous classes.
type ObjectType struct {
	FQN       FQN
	Anonymous bool
}

func (o ObjectType) String() string {
	if o.Anonymous || o.FQN == "" {
		return "object"
	}
	return string(o.FQN)
}

type ArrayType struct {
	Value Type
	Key   Type
}

func (a ArrayType) String() string {
	v, k := a.Value, a.Key
	if v == nil {
		v = Mixed
	}
	if k == nil {
		k = Mixed
	}
	return "array<" + k.String() + "," + v.String() + ">"
}

// CompoundType is a union of alternatives. Only Union builds one, so a
// CompoundType in the wild is always normalized: no duplicates, more than
// one alternative, no Mixed member.
type CompoundType struct {
	alts []Type
}

func (c CompoundType) Alternatives() []Type { return c.alts }

func (c CompoundType) String() string {
	parts := make([]string, len(c.alts))
	for i, t := range c.alts {
		parts[i] = t.String()
	}
	return strings.Join(parts, "|")
}

// Union builds the normalized union of types: nested compounds flatten,
// duplicates collapse, a single alternative unwraps, and any Mixed member
// swallows the rest. An empty union is Mixed.
func Union(types ...Type) Type {
	seen := map[string]Type{}
	var order []string
	var add func(t Type)
	add = func(t Type) {
		if t == nil {
			return
		}
		if c, ok := t.(CompoundType); ok {
			for _, alt := range c.alts {
				add(alt)
			}
			return
		}
		key := t.String()
		if _, ok := seen[key]; !ok {
			seen[key] = t
			order = append(order, key)
		}
	}
	for _, t := range types {
		add(t)
	}

	if len(order) == 0 {
		return Mixed
	}
	if _, ok := seen[Mixed.String()]; ok {
		return Mixed
	}
	if len(order) == 1 {
		return seen[order[0]]
	}
	sort.Strings(order)
	alts := make([]Type, len(order))
	for i, key := range order {
		alts[i] = seen[key]
	}
	return CompoundType{alts: alts}
}

// TypeEqual compares canonical forms.
func TypeEqual(a, b Type) bool {
	if a == nil || b == nil {
		return a == b
	}
	return a.String() == b.String()
}

// ParseTypeString turns a docblock or signature type expression into a
// Type. resolve maps a bare class name to its FQN under the current
// namespace context; nil means leading-backslash interpretation only.
func ParseTypeString(s string, resolve func(string) FQN) Type {
	s = strings.TrimSpace(s)
	if s == "" {
		return Mixed
	}
	if strings.Contains(s, "|") {
		var alts []Type
		for _, part := range strings.Split(s, "|") {
			alts = append(alts, ParseTypeString(part, resolve))
		}
		return Union(alts...)
	}
	if nullable := strings.TrimPrefix(s, "?"); nullable != s {
		return Union(ParseTypeString(nullable, resolve), Null)
	}
	if elem := strings.TrimSuffix(s, "[]"); elem != s {
		return ArrayType{Value: ParseTypeString(elem, resolve), Key: Integer}
	}

	switch strings.ToLower(s) {
	case "mixed":
		return Mixed
	case "bool", "boolean", "false", "true":
		return Boolean
	case "int", "integer":
		return Integer
	case "float", "double":
		return Float
	case "string":
		return StringType
	case "null":
		return Null
	case "void":
		return Void
	case "callable", "closure", "\\closure":
		return CallableType
	case "array", "iterable":
		return ArrayType{Value: Mixed, Key: Mixed}
	case "object":
		return ObjectType{Anonymous: true}
	case "static", "self", "$this":
		// Not resolved against the declaring class; they widen.
		return Mixed
	}

	if strings.HasPrefix(s, "\\") {
		return ObjectType{FQN: FQN(s)}
	}
	if resolve != nil {
		if fqn := resolve(s); fqn != "" {
			return ObjectType{FQN: fqn}
		}
	}
	return ObjectType{FQN: FQN("\\" + s)}
}
