package analysis

import (
	"github.com/carn181/phplsp/docblock"
	"github.com/carn181/phplsp/phpast"
)

// DefinitionSource is the resolver's view of the symbol graph.
type DefinitionSource interface {
	Definition(fqn FQN) *Definition
}

// Resolver computes best-effort static types of expression nodes. It never
// fails: every unresolved path widens to Mixed. A resolver tracks the nodes
// it is currently working on so cyclic variable definitions terminate.
//
// Resolvers are cheap; create one per query. Not safe for concurrent use.
type Resolver struct {
	src        DefinitionSource
	inProgress map[*phpast.Node]struct{}
}

func NewResolver(src DefinitionSource) *Resolver {
	return &Resolver{src: src, inProgress: map[*phpast.Node]struct{}{}}
}

// TypeOf returns the static type of any expression node. Total: unhandled
// shapes are Mixed.
func (r *Resolver) TypeOf(n *phpast.Node) Type {
	if n == nil {
		return Mixed
	}
	if _, busy := r.inProgress[n]; busy {
		return Mixed
	}
	r.inProgress[n] = struct{}{}
	defer delete(r.inProgress, n)

	switch n.Kind {
	case phpast.Variable:
		return r.typeOfVariable(n)

	case phpast.Assign:
		return r.TypeOf(n.ChildByRole("right"))

	case phpast.Parameter:
		return r.typeOfParameter(n)

	case phpast.ClosureUse:
		return r.typeOfCapture(n)

	case phpast.FunctionCall:
		return r.typeOfFunctionCall(n)

	case phpast.MethodCall:
		return r.declaredTypeOf(r.memberFQN(n))

	case phpast.PropertyFetch:
		return r.declaredTypeOf(r.memberFQN(n))

	case phpast.StaticCall, phpast.StaticPropertyFetch:
		return r.declaredTypeOf(r.memberFQN(n))

	case phpast.ClassConstFetch:
		if name := n.ChildByRole("name"); name != nil && name.Name == "class" {
			return StringType
		}
		return r.declaredTypeOf(r.memberFQN(n))

	case phpast.ConstFetch:
		return r.typeOfConstFetch(n)

	case phpast.New:
		return r.typeOfNew(n)

	case phpast.AnonClass:
		return ObjectType{Anonymous: true}

	case phpast.Clone:
		return r.TypeOf(n.ChildByRole("operand"))

	case phpast.Ternary:
		then := n.ChildByRole("then")
		if then == nil {
			// Short form: cond ?: else.
			return Union(r.TypeOf(n.ChildByRole("cond")), r.TypeOf(n.ChildByRole("else")))
		}
		return Union(r.TypeOf(then), r.TypeOf(n.ChildByRole("else")))

	case phpast.Coalesce:
		return Union(r.TypeOf(n.ChildByRole("left")), r.TypeOf(n.ChildByRole("right")))

	case phpast.BinaryOp:
		return r.typeOfBinaryOp(n)

	case phpast.UnaryOp:
		if n.Operator == "!" {
			return Boolean
		}
		return Mixed

	case phpast.Cast:
		return castType(n.Operator)

	case phpast.InstanceOf, phpast.Isset, phpast.Empty:
		return Boolean

	case phpast.ArrayLiteral:
		return r.typeOfArrayLiteral(n)

	case phpast.ArrayIndex:
		if arr, ok := r.TypeOf(n.ChildByRole("array")).(ArrayType); ok {
			return arr.Value
		}
		return Mixed

	case phpast.Include:
		return Mixed

	case phpast.Closure, phpast.ArrowFunction:
		return CallableType

	case phpast.IntLiteral:
		return Integer
	case phpast.FloatLiteral:
		return Float
	case phpast.StringLiteral, phpast.InterpolatedString:
		return StringType
	case phpast.BoolLiteral:
		return Boolean
	case phpast.NullLiteral:
		return Null
	}
	return Mixed
}

func (r *Resolver) typeOfVariable(n *phpast.Node) Type {
	if n.Name == "this" {
		if class := enclosingClassFQN(n); class != "" {
			return ObjectType{FQN: class}
		}
		return Mixed
	}
	def := VariableDefinition(n)
	if def == nil {
		return Mixed
	}
	return r.TypeOf(def)
}

func (r *Resolver) typeOfParameter(n *phpast.Node) Type {
	if hint := n.ChildByRole("type"); hint != nil {
		return typeFromHint(hint)
	}
	if fn := n.Parent; fn != nil && fn.Doc != "" {
		if s := docblock.Parse(fn.Doc).ParamType(n.Name); s != "" {
			return ParseTypeString(s, func(name string) FQN {
				return NamespacedFQN(enclosingNamespaceName(n), name)
			})
		}
	}
	return Mixed
}

// typeOfCapture resolves a closure use-clause binding in the scope
// enclosing the closure.
func (r *Resolver) typeOfCapture(n *phpast.Node) Type {
	closure := n.Parent
	if closure == nil {
		return Mixed
	}
	def := variableDefinitionFrom(closure, n.Name)
	if def == nil {
		return Mixed
	}
	return r.TypeOf(def)
}

func (r *Resolver) typeOfFunctionCall(n *phpast.Node) Type {
	callee := n.ChildByRole("function")
	if callee == nil || callee.Kind != phpast.Name {
		// Dynamic callee.
		return Mixed
	}
	fqn := referenceName(callee)
	if fqn == "" {
		return Mixed
	}
	if def := r.lookup(fqn); def != nil {
		return symbolType(def)
	}
	// Unqualified calls fall back to the global namespace.
	if def := r.lookup(fqn.StripNamespace()); def != nil {
		return symbolType(def)
	}
	return Mixed
}

func (r *Resolver) typeOfConstFetch(n *phpast.Node) Type {
	switch n.Name {
	case "true", "false":
		return Boolean
	case "null":
		return Null
	}
	fqn := referenceName(n)
	if fqn == "" {
		return Mixed
	}
	if def := r.lookup(fqn); def != nil {
		return symbolType(def)
	}
	if def := r.lookup(fqn.StripNamespace()); def != nil {
		return symbolType(def)
	}
	return Mixed
}

func (r *Resolver) typeOfNew(n *phpast.Node) Type {
	class := n.ChildByRole("class")
	if class == nil {
		return Mixed
	}
	if class.Kind == phpast.AnonClass {
		return ObjectType{Anonymous: true}
	}
	fqn := r.classTokenFQN(class)
	if fqn == "" {
		// new $expr(...)
		return Mixed
	}
	return ObjectType{FQN: fqn}
}

func (r *Resolver) typeOfBinaryOp(n *phpast.Node) Type {
	switch n.Operator {
	case ".":
		return StringType
	case "==", "===", "!=", "!==", "<>", "<", ">", "<=", ">=",
		"&&", "||", "and", "or", "xor", "instanceof":
		return Boolean
	case "<=>":
		return Integer
	case "+", "-", "*", "/", "%", "**":
		// Conservative: no float promotion.
		return Integer
	case "??":
		return Union(r.TypeOf(n.ChildByRole("left")), r.TypeOf(n.ChildByRole("right")))
	}
	return Mixed
}

// typeOfArrayLiteral unions element value and key types independently.
// Elements without keys take integer keys.
func (r *Resolver) typeOfArrayLiteral(n *phpast.Node) Type {
	var valueTypes, keyTypes []Type
	for _, el := range n.Children {
		if el.Kind != phpast.ArrayElement {
			continue
		}
		valueTypes = append(valueTypes, r.TypeOf(el.ChildByRole("value")))
		if key := el.ChildByRole("key"); key != nil {
			keyTypes = append(keyTypes, r.TypeOf(key))
		} else {
			keyTypes = append(keyTypes, Integer)
		}
	}
	return ArrayType{Value: Union(valueTypes...), Key: Union(keyTypes...)}
}

// memberFQN resolves a member reference node to the FQN it addresses:
// OWNER::name() for calls, OWNER::name for properties and constants,
// OWNER::$name for static properties. Empty when the receiver type or the
// member name cannot be resolved.
func (r *Resolver) memberFQN(n *phpast.Node) FQN {
	name := n.ChildByRole("name")
	if name == nil || name.Kind != phpast.Name || name.Name == "" {
		// Dynamic member name.
		return ""
	}

	var owner FQN
	switch n.Kind {
	case phpast.MethodCall, phpast.PropertyFetch:
		recv := n.ChildByRole("object")
		obj, ok := r.TypeOf(recv).(ObjectType)
		if !ok || obj.FQN == "" {
			return ""
		}
		owner = obj.FQN
	case phpast.StaticCall, phpast.StaticPropertyFetch, phpast.ClassConstFetch:
		owner = r.classTokenFQN(n.ChildByRole("class"))
		if owner == "" {
			return ""
		}
	default:
		return ""
	}

	switch n.Kind {
	case phpast.MethodCall, phpast.StaticCall:
		return MethodFQN(owner, name.Name)
	case phpast.StaticPropertyFetch:
		return StaticPropertyFQN(owner, name.Name)
	default:
		return MemberFQN(owner, name.Name)
	}
}

// classTokenFQN resolves a static class token: a name, or the relative
// keywords self and static against the enclosing class. Dynamic class
// expressions yield "".
func (r *Resolver) classTokenFQN(class *phpast.Node) FQN {
	if class == nil || class.Kind != phpast.Name {
		return ""
	}
	switch class.Name {
	case "self", "static":
		return enclosingClassFQN(class)
	}
	return referenceName(class)
}

// ReferenceFQN computes the FQN a reference node refers to, or "" when the
// node is dynamic or defines rather than references. Variables are not
// references; callers route them through VariableDefinition.
func (r *Resolver) ReferenceFQN(n *phpast.Node) FQN {
	if n == nil {
		return ""
	}
	switch n.Kind {
	case phpast.Name:
		return r.classTokenFQN(n)
	case phpast.FunctionCall:
		if callee := n.ChildByRole("function"); callee != nil && callee.Kind == phpast.Name {
			return referenceName(callee)
		}
		return ""
	case phpast.ConstFetch:
		return referenceName(n)
	case phpast.New:
		return r.classTokenFQN(n.ChildByRole("class"))
	case phpast.MethodCall, phpast.PropertyFetch,
		phpast.StaticCall, phpast.StaticPropertyFetch, phpast.ClassConstFetch:
		return r.memberFQN(n)
	}
	return ""
}

func (r *Resolver) lookup(fqn FQN) *Definition {
	if r.src == nil || fqn == "" {
		return nil
	}
	return r.src.Definition(fqn)
}

// declaredTypeOf is the declared type of the definition at fqn, Mixed when
// the symbol or its type is unknown.
func (r *Resolver) declaredTypeOf(fqn FQN) Type {
	def := r.lookup(fqn)
	if def == nil {
		return Mixed
	}
	return symbolType(def)
}

func symbolType(def *Definition) Type {
	if def.Symbol.DeclaredType == nil {
		return Mixed
	}
	return def.Symbol.DeclaredType
}

func castType(target string) Type {
	switch target {
	case "string", "binary":
		return StringType
	case "int", "integer":
		return Integer
	case "float", "double", "real":
		return Float
	case "bool", "boolean":
		return Boolean
	case "array":
		return ArrayType{Value: Mixed, Key: Mixed}
	case "object":
		return ObjectType{Anonymous: true}
	}
	return Mixed
}
