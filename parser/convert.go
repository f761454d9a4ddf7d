package parser

import (
	"strings"

	tree_sitter "github.com/tree-sitter/go-tree-sitter"

	"github.com/carn181/phplsp/phpast"
)

// converter lowers a tree-sitter CST into the analyzer AST. It tracks the
// namespace and use-import context so every referenced name leaves the
// parser already resolved to its namespaced form.
type converter struct {
	src []byte

	ns        string
	uses      map[string]string
	useFuncs  map[string]string
	useConsts map[string]string
}

type nameContext int

const (
	classContext nameContext = iota
	funcContext
	constContext
)

func newConverter(src []byte) *converter {
	return &converter{
		src:       src,
		uses:      map[string]string{},
		useFuncs:  map[string]string{},
		useConsts: map[string]string{},
	}
}

func (c *converter) text(n *tree_sitter.Node) string {
	return n.Utf8Text(c.src)
}

func (c *converter) node(kind phpast.Kind, role string, n *tree_sitter.Node) *phpast.Node {
	start := n.StartPosition()
	end := n.EndPosition()
	return &phpast.Node{
		Kind: kind,
		Role: role,
		Span: phpast.Span{
			StartByte: uint32(n.StartByte()),
			EndByte:   uint32(n.EndByte()),
			Start:     phpast.Point{Row: uint32(start.Row), Column: uint32(start.Column)},
			End:       phpast.Point{Row: uint32(end.Row), Column: uint32(end.Column)},
		},
	}
}

func (c *converter) convertSource(root *tree_sitter.Node) *phpast.Node {
	file := c.node(phpast.SourceFile, "", root)
	container := file

	for i := uint(0); i < root.NamedChildCount(); i++ {
		child := root.NamedChild(i)
		switch child.Kind() {
		case "php_tag", "text", "comment":
			continue
		case "namespace_definition":
			name := ""
			if nameNode := child.ChildByFieldName("name"); nameNode != nil {
				name = c.text(nameNode)
			}
			ns := c.node(phpast.NamespaceDecl, "", child)
			ns.Name = name

			if body := child.ChildByFieldName("body"); body != nil {
				// Braced form scopes its body only.
				saved := c.ns
				c.ns = name
				for j := uint(0); j < body.NamedChildCount(); j++ {
					c.appendStmt(ns, body.NamedChild(j))
				}
				c.ns = saved
				container.Children = append(container.Children, ns)
				continue
			}

			// Unbraced form scopes everything that follows; reparent
			// the remaining siblings under the namespace node.
			c.ns = name
			container.Children = append(container.Children, ns)
			container = ns
		default:
			c.appendStmt(container, child)
		}
	}
	return file
}

// appendStmt converts one statement-position node into parent's children.
// A single source statement may append several nodes (multi-element
// property and const declarations).
func (c *converter) appendStmt(parent *phpast.Node, n *tree_sitter.Node) {
	switch n.Kind() {
	case "comment", "php_tag", "text", "text_interpolation":
		return

	case "namespace_use_declaration":
		parent.Children = append(parent.Children, c.useDeclaration(n))

	case "function_definition":
		parent.Children = append(parent.Children, c.functionLike(phpast.FunctionDecl, "", n))

	case "method_declaration":
		m := c.functionLike(phpast.MethodDecl, "member", n)
		m.Static = hasModifier(n, "static_modifier")
		parent.Children = append(parent.Children, m)

	case "class_declaration":
		parent.Children = append(parent.Children, c.classLike(phpast.ClassDecl, n))

	case "interface_declaration":
		parent.Children = append(parent.Children, c.classLike(phpast.InterfaceDecl, n))

	case "property_declaration":
		static := hasModifier(n, "static_modifier")
		doc := c.docComment(n)
		typeHint := n.ChildByFieldName("type")
		for i := uint(0); i < n.NamedChildCount(); i++ {
			el := n.NamedChild(i)
			if el.Kind() != "property_element" {
				continue
			}
			prop := c.node(phpast.PropertyDecl, "member", el)
			prop.Static = static
			prop.Doc = doc
			if v := firstNamedOfKind(el, "variable_name"); v != nil {
				prop.Name = strings.TrimPrefix(c.text(v), "$")
			}
			if typeHint != nil {
				prop.Children = append(prop.Children, c.typeHint(typeHint, "type"))
			}
			parent.Children = append(parent.Children, prop)
		}

	case "const_declaration":
		kind := phpast.ConstDecl
		switch parent.Kind {
		case phpast.ClassDecl, phpast.InterfaceDecl, phpast.AnonClass:
			kind = phpast.ClassConstDecl
		}
		doc := c.docComment(n)
		for i := uint(0); i < n.NamedChildCount(); i++ {
			el := n.NamedChild(i)
			if el.Kind() != "const_element" {
				continue
			}
			decl := c.node(kind, "member", el)
			decl.Doc = doc
			if name := firstNamedOfKind(el, "name"); name != nil {
				decl.Name = c.text(name)
			}
			if el.NamedChildCount() > 1 {
				if value := c.exprOrUnknown(el.NamedChild(el.NamedChildCount() - 1)); value != nil {
					value.Role = "value"
					decl.Children = append(decl.Children, value)
				}
			}
			parent.Children = append(parent.Children, decl)
		}

	case "expression_statement":
		stmt := c.node(phpast.ExpressionStmt, "", n)
		if n.NamedChildCount() > 0 {
			if e := c.exprOrUnknown(n.NamedChild(0)); e != nil {
				e.Role = "expression"
				stmt.Children = append(stmt.Children, e)
			}
		}
		parent.Children = append(parent.Children, stmt)

	case "return_statement":
		stmt := c.node(phpast.ReturnStmt, "", n)
		if n.NamedChildCount() > 0 {
			if e := c.exprOrUnknown(n.NamedChild(0)); e != nil {
				e.Role = "expression"
				stmt.Children = append(stmt.Children, e)
			}
		}
		parent.Children = append(parent.Children, stmt)

	case "compound_statement":
		block := c.node(phpast.Block, "", n)
		for i := uint(0); i < n.NamedChildCount(); i++ {
			c.appendStmt(block, n.NamedChild(i))
		}
		parent.Children = append(parent.Children, block)

	default:
		if e := c.expr(n); e != nil {
			parent.Children = append(parent.Children, e)
			return
		}
		// Statements the analyzer has no special handling for keep
		// their children reachable for scope and type walks.
		u := c.node(phpast.Unknown, "", n)
		for i := uint(0); i < n.NamedChildCount(); i++ {
			c.appendStmt(u, n.NamedChild(i))
		}
		parent.Children = append(parent.Children, u)
	}
}

func (c *converter) useDeclaration(n *tree_sitter.Node) *phpast.Node {
	ctx := classContext
	for i := uint(0); i < n.ChildCount(); i++ {
		switch c.text(n.Child(i)) {
		case "function":
			ctx = funcContext
		case "const":
			ctx = constContext
		}
	}

	decl := c.node(phpast.UseDecl, "", n)
	for i := uint(0); i < n.NamedChildCount(); i++ {
		clause := n.NamedChild(i)
		if clause.Kind() != "namespace_use_clause" {
			continue
		}
		var target, alias string
		for j := uint(0); j < clause.NamedChildCount(); j++ {
			part := clause.NamedChild(j)
			switch part.Kind() {
			case "name", "qualified_name":
				target = c.text(part)
			case "namespace_aliasing_clause":
				if a := firstNamedOfKind(part, "name"); a != nil {
					alias = c.text(a)
				}
			}
		}
		if target == "" {
			continue
		}
		fq := "\\" + strings.TrimPrefix(target, "\\")
		if alias == "" {
			alias = lastSegment(target)
		}
		switch ctx {
		case funcContext:
			c.useFuncs[alias] = fq
		case constContext:
			c.useConsts[alias] = fq
		default:
			c.uses[alias] = fq
		}
		decl.Name = strings.TrimPrefix(fq, "\\")
	}
	return decl
}

// functionLike converts function_definition and method_declaration nodes:
// name, parameters, return type and body.
func (c *converter) functionLike(kind phpast.Kind, role string, n *tree_sitter.Node) *phpast.Node {
	fn := c.node(kind, role, n)
	fn.Doc = c.docComment(n)
	if name := n.ChildByFieldName("name"); name != nil {
		fn.Name = c.text(name)
	}
	c.appendParameters(fn, n.ChildByFieldName("parameters"))
	if ret := n.ChildByFieldName("return_type"); ret != nil {
		fn.Children = append(fn.Children, c.typeHint(ret, "return_type"))
	}
	if body := n.ChildByFieldName("body"); body != nil {
		c.appendBody(fn, body)
	}
	return fn
}

func (c *converter) appendParameters(fn *phpast.Node, params *tree_sitter.Node) {
	if params == nil {
		return
	}
	for i := uint(0); i < params.NamedChildCount(); i++ {
		p := params.NamedChild(i)
		switch p.Kind() {
		case "simple_parameter", "variadic_parameter", "property_promotion_parameter":
		default:
			continue
		}
		param := c.node(phpast.Parameter, "parameter", p)
		if v := p.ChildByFieldName("name"); v != nil {
			param.Name = strings.TrimPrefix(c.text(v), "$")
		}
		if t := p.ChildByFieldName("type"); t != nil {
			param.Children = append(param.Children, c.typeHint(t, "type"))
		}
		if def := p.ChildByFieldName("default_value"); def != nil {
			if e := c.exprOrUnknown(def); e != nil {
				e.Role = "default"
				param.Children = append(param.Children, e)
			}
		}
		fn.Children = append(fn.Children, param)
	}
}

func (c *converter) appendBody(fn *phpast.Node, body *tree_sitter.Node) {
	block := c.node(phpast.Block, "body", body)
	if body.Kind() == "compound_statement" {
		for i := uint(0); i < body.NamedChildCount(); i++ {
			c.appendStmt(block, body.NamedChild(i))
		}
	} else if e := c.exprOrUnknown(body); e != nil {
		// Arrow function bodies are expressions.
		e.Role = "expression"
		block.Children = append(block.Children, e)
	}
	fn.Children = append(fn.Children, block)
}

func (c *converter) classLike(kind phpast.Kind, n *tree_sitter.Node) *phpast.Node {
	class := c.node(kind, "", n)
	class.Doc = c.docComment(n)
	if name := n.ChildByFieldName("name"); name != nil {
		class.Name = c.text(name)
	}
	for i := uint(0); i < n.NamedChildCount(); i++ {
		child := n.NamedChild(i)
		switch child.Kind() {
		case "base_clause", "class_interface_clause":
			role := "extends"
			if child.Kind() == "class_interface_clause" {
				role = "implements"
			}
			for j := uint(0); j < child.NamedChildCount(); j++ {
				base := child.NamedChild(j)
				switch base.Kind() {
				case "name", "qualified_name":
					class.Children = append(class.Children, c.nameNode(base, role, classContext))
				}
			}
		case "declaration_list":
			for j := uint(0); j < child.NamedChildCount(); j++ {
				c.appendStmt(class, child.NamedChild(j))
			}
		}
	}
	return class
}

// expr converts an expression-position node, or returns nil when the node
// kind is not an expression the analyzer models.
func (c *converter) expr(n *tree_sitter.Node) *phpast.Node {
	switch n.Kind() {
	case "assignment_expression", "reference_assignment_expression":
		e := c.node(phpast.Assign, "", n)
		c.addExprField(e, n, "left", "left")
		c.addExprField(e, n, "right", "right")
		return e

	case "variable_name":
		e := c.node(phpast.Variable, "", n)
		e.Name = strings.TrimPrefix(c.text(n), "$")
		return e

	case "function_call_expression":
		callee := n.ChildByFieldName("function")
		if callee != nil {
			switch callee.Kind() {
			case "name", "qualified_name":
				switch strings.ToLower(c.text(callee)) {
				case "isset":
					return c.intrinsic(phpast.Isset, n)
				case "empty":
					return c.intrinsic(phpast.Empty, n)
				}
				e := c.node(phpast.FunctionCall, "", n)
				e.Children = append(e.Children, c.nameNode(callee, "function", funcContext))
				c.appendArguments(e, n.ChildByFieldName("arguments"))
				return e
			}
		}
		e := c.node(phpast.FunctionCall, "", n)
		if callee != nil {
			if dyn := c.exprOrUnknown(callee); dyn != nil {
				dyn.Role = "function"
				e.Children = append(e.Children, dyn)
			}
		}
		c.appendArguments(e, n.ChildByFieldName("arguments"))
		return e

	case "member_call_expression", "nullsafe_member_call_expression":
		return c.memberExpr(phpast.MethodCall, n, "object")

	case "member_access_expression", "nullsafe_member_access_expression":
		return c.memberExpr(phpast.PropertyFetch, n, "object")

	case "scoped_call_expression":
		e := c.node(phpast.StaticCall, "", n)
		c.addClassToken(e, n.ChildByFieldName("scope"))
		c.addMemberName(e, n.ChildByFieldName("name"))
		c.appendArguments(e, n.ChildByFieldName("arguments"))
		return e

	case "scoped_property_access_expression":
		e := c.node(phpast.StaticPropertyFetch, "", n)
		c.addClassToken(e, n.ChildByFieldName("scope"))
		if name := n.ChildByFieldName("name"); name != nil {
			member := c.node(phpast.Name, "name", name)
			member.Name = strings.TrimPrefix(c.text(name), "$")
			e.Children = append(e.Children, member)
		}
		return e

	case "class_constant_access_expression":
		e := c.node(phpast.ClassConstFetch, "", n)
		if n.NamedChildCount() > 0 {
			c.addClassToken(e, n.NamedChild(0))
		}
		if n.NamedChildCount() > 1 {
			c.addMemberName(e, n.NamedChild(n.NamedChildCount()-1))
		}
		return e

	case "object_creation_expression":
		e := c.node(phpast.New, "", n)
		if body := firstNamedOfKind(n, "declaration_list"); body != nil {
			anon := c.node(phpast.AnonClass, "class", n)
			for i := uint(0); i < body.NamedChildCount(); i++ {
				c.appendStmt(anon, body.NamedChild(i))
			}
			e.Children = append(e.Children, anon)
			return e
		}
		for i := uint(0); i < n.NamedChildCount(); i++ {
			child := n.NamedChild(i)
			switch child.Kind() {
			case "name", "qualified_name":
				e.Children = append(e.Children, c.nameNode(child, "class", classContext))
			case "arguments":
				c.appendArguments(e, child)
			default:
				if dyn := c.expr(child); dyn != nil {
					dyn.Role = "class"
					e.Children = append(e.Children, dyn)
				}
			}
		}
		return e

	case "clone_expression":
		e := c.node(phpast.Clone, "", n)
		if n.NamedChildCount() > 0 {
			if operand := c.exprOrUnknown(n.NamedChild(0)); operand != nil {
				operand.Role = "operand"
				e.Children = append(e.Children, operand)
			}
		}
		return e

	case "conditional_expression":
		e := c.node(phpast.Ternary, "", n)
		c.addExprField(e, n, "condition", "cond")
		c.addExprField(e, n, "body", "then")
		c.addExprField(e, n, "alternative", "else")
		return e

	case "null_coalescing_expression":
		e := c.node(phpast.Coalesce, "", n)
		c.addExprField(e, n, "left", "left")
		c.addExprField(e, n, "right", "right")
		return e

	case "binary_expression":
		op := ""
		if opNode := n.ChildByFieldName("operator"); opNode != nil {
			op = c.text(opNode)
		}
		switch op {
		case "??":
			e := c.node(phpast.Coalesce, "", n)
			c.addExprField(e, n, "left", "left")
			c.addExprField(e, n, "right", "right")
			return e
		case "instanceof":
			e := c.node(phpast.InstanceOf, "", n)
			c.addExprField(e, n, "left", "left")
			if right := n.ChildByFieldName("right"); right != nil {
				switch right.Kind() {
				case "name", "qualified_name":
					e.Children = append(e.Children, c.nameNode(right, "right", classContext))
				default:
					c.addExprField(e, n, "right", "right")
				}
			}
			return e
		}
		e := c.node(phpast.BinaryOp, "", n)
		e.Operator = op
		c.addExprField(e, n, "left", "left")
		c.addExprField(e, n, "right", "right")
		return e

	case "unary_op_expression":
		e := c.node(phpast.UnaryOp, "", n)
		if n.ChildCount() > 0 {
			e.Operator = c.text(n.Child(0))
		}
		if n.NamedChildCount() > 0 {
			if operand := c.exprOrUnknown(n.NamedChild(0)); operand != nil {
				operand.Role = "operand"
				e.Children = append(e.Children, operand)
			}
		}
		return e

	case "cast_expression":
		e := c.node(phpast.Cast, "", n)
		if t := n.ChildByFieldName("type"); t != nil {
			e.Operator = strings.Trim(c.text(t), "() \t")
		}
		c.addExprField(e, n, "value", "value")
		return e

	case "parenthesized_expression", "error_suppression_expression":
		if n.NamedChildCount() > 0 {
			return c.expr(n.NamedChild(0))
		}
		return nil

	case "array_creation_expression", "list_literal":
		e := c.node(phpast.ArrayLiteral, "", n)
		for i := uint(0); i < n.NamedChildCount(); i++ {
			init := n.NamedChild(i)
			if init.Kind() != "array_element_initializer" {
				continue
			}
			el := c.node(phpast.ArrayElement, "element", init)
			named := init.NamedChildCount()
			if named >= 2 {
				if key := c.exprOrUnknown(init.NamedChild(0)); key != nil {
					key.Role = "key"
					el.Children = append(el.Children, key)
				}
			}
			if named >= 1 {
				if value := c.exprOrUnknown(init.NamedChild(named - 1)); value != nil {
					value.Role = "value"
					el.Children = append(el.Children, value)
				}
			}
			e.Children = append(e.Children, el)
		}
		return e

	case "subscript_expression":
		e := c.node(phpast.ArrayIndex, "", n)
		if n.NamedChildCount() > 0 {
			if arr := c.exprOrUnknown(n.NamedChild(0)); arr != nil {
				arr.Role = "array"
				e.Children = append(e.Children, arr)
			}
		}
		if n.NamedChildCount() > 1 {
			if idx := c.exprOrUnknown(n.NamedChild(1)); idx != nil {
				idx.Role = "index"
				e.Children = append(e.Children, idx)
			}
		}
		return e

	case "include_expression", "include_once_expression",
		"require_expression", "require_once_expression":
		e := c.node(phpast.Include, "", n)
		if n.NamedChildCount() > 0 {
			if path := c.exprOrUnknown(n.NamedChild(0)); path != nil {
				path.Role = "path"
				e.Children = append(e.Children, path)
			}
		}
		return e

	case "anonymous_function_creation_expression", "anonymous_function":
		e := c.node(phpast.Closure, "", n)
		c.appendParameters(e, n.ChildByFieldName("parameters"))
		if uses := firstNamedOfKind(n, "anonymous_function_use_clause"); uses != nil {
			for i := uint(0); i < uses.NamedChildCount(); i++ {
				v := uses.NamedChild(i)
				if v.Kind() != "variable_name" {
					continue
				}
				capture := c.node(phpast.ClosureUse, "use", v)
				capture.Name = strings.TrimPrefix(c.text(v), "$")
				e.Children = append(e.Children, capture)
			}
		}
		if ret := n.ChildByFieldName("return_type"); ret != nil {
			e.Children = append(e.Children, c.typeHint(ret, "return_type"))
		}
		if body := n.ChildByFieldName("body"); body != nil {
			c.appendBody(e, body)
		}
		return e

	case "arrow_function":
		e := c.node(phpast.ArrowFunction, "", n)
		c.appendParameters(e, n.ChildByFieldName("parameters"))
		if ret := n.ChildByFieldName("return_type"); ret != nil {
			e.Children = append(e.Children, c.typeHint(ret, "return_type"))
		}
		if body := n.ChildByFieldName("body"); body != nil {
			c.appendBody(e, body)
		}
		return e

	case "integer":
		e := c.node(phpast.IntLiteral, "", n)
		e.Value = c.text(n)
		return e
	case "float":
		e := c.node(phpast.FloatLiteral, "", n)
		e.Value = c.text(n)
		return e
	case "string":
		e := c.node(phpast.StringLiteral, "", n)
		e.Value = c.text(n)
		return e
	case "encapsed_string", "heredoc", "shell_command_expression":
		e := c.node(phpast.InterpolatedString, "", n)
		e.Value = c.text(n)
		return e
	case "boolean":
		e := c.node(phpast.BoolLiteral, "", n)
		e.Value = strings.ToLower(c.text(n))
		return e
	case "null":
		return c.node(phpast.NullLiteral, "", n)

	case "name", "qualified_name":
		// A bare name in expression position is a constant fetch.
		e := c.node(phpast.ConstFetch, "", n)
		text := c.text(n)
		e.Name = lastSegment(text)
		switch strings.ToLower(text) {
		case "true", "false", "null":
			e.Name = strings.ToLower(text)
		default:
			e.NamespacedName = c.resolve(text, constContext)
		}
		return e
	}
	return nil
}

// exprOrUnknown keeps unmodeled expressions in the tree so their children
// stay reachable.
func (c *converter) exprOrUnknown(n *tree_sitter.Node) *phpast.Node {
	if e := c.expr(n); e != nil {
		return e
	}
	u := c.node(phpast.Unknown, "", n)
	for i := uint(0); i < n.NamedChildCount(); i++ {
		c.appendStmt(u, n.NamedChild(i))
	}
	return u
}

func (c *converter) memberExpr(kind phpast.Kind, n *tree_sitter.Node, receiverRole string) *phpast.Node {
	e := c.node(kind, "", n)
	if recv := n.ChildByFieldName("object"); recv != nil {
		if r := c.exprOrUnknown(recv); r != nil {
			r.Role = receiverRole
			e.Children = append(e.Children, r)
		}
	}
	c.addMemberName(e, n.ChildByFieldName("name"))
	if args := n.ChildByFieldName("arguments"); args != nil {
		c.appendArguments(e, args)
	}
	return e
}

// addMemberName adds the member name slot: a Name node for static text,
// the converted expression for dynamic names.
func (c *converter) addMemberName(e *phpast.Node, name *tree_sitter.Node) {
	if name == nil {
		return
	}
	if name.Kind() == "name" {
		member := c.node(phpast.Name, "name", name)
		member.Name = c.text(name)
		e.Children = append(e.Children, member)
		return
	}
	if dyn := c.exprOrUnknown(name); dyn != nil {
		dyn.Role = "name"
		e.Children = append(e.Children, dyn)
	}
}

// addClassToken adds the class slot of a scoped expression. The relative
// keywords stay unresolved; the analyzer binds them to the enclosing class.
func (c *converter) addClassToken(e *phpast.Node, scope *tree_sitter.Node) {
	if scope == nil {
		return
	}
	switch scope.Kind() {
	case "name", "qualified_name", "relative_scope":
		token := c.node(phpast.Name, "class", scope)
		text := c.text(scope)
		token.Name = lastSegment(text)
		switch text {
		case "self", "static", "parent":
		default:
			token.NamespacedName = c.resolve(text, classContext)
		}
		e.Children = append(e.Children, token)
	default:
		if dyn := c.exprOrUnknown(scope); dyn != nil {
			dyn.Role = "class"
			e.Children = append(e.Children, dyn)
		}
	}
}

func (c *converter) appendArguments(e *phpast.Node, args *tree_sitter.Node) {
	if args == nil {
		return
	}
	for i := uint(0); i < args.NamedChildCount(); i++ {
		arg := args.NamedChild(i)
		if arg.Kind() != "argument" {
			continue
		}
		if arg.NamedChildCount() == 0 {
			continue
		}
		if e2 := c.exprOrUnknown(arg.NamedChild(arg.NamedChildCount() - 1)); e2 != nil {
			e2.Role = "argument"
			e.Children = append(e.Children, e2)
		}
	}
}

func (c *converter) intrinsic(kind phpast.Kind, call *tree_sitter.Node) *phpast.Node {
	e := c.node(kind, "", call)
	c.appendArguments(e, call.ChildByFieldName("arguments"))
	return e
}

func (c *converter) addExprField(e *phpast.Node, n *tree_sitter.Node, field, role string) {
	child := n.ChildByFieldName(field)
	if child == nil {
		return
	}
	if converted := c.exprOrUnknown(child); converted != nil {
		converted.Role = role
		e.Children = append(e.Children, converted)
	}
}

// nameNode builds a Name reference with its parse-time namespaced form.
func (c *converter) nameNode(n *tree_sitter.Node, role string, ctx nameContext) *phpast.Node {
	name := c.node(phpast.Name, role, n)
	text := c.text(n)
	name.Name = lastSegment(text)
	name.NamespacedName = c.resolve(text, ctx)
	return name
}

// typeHint keeps the raw type text; simple class names resolve against the
// use imports so hints carry namespaced forms like references do.
func (c *converter) typeHint(n *tree_sitter.Node, role string) *phpast.Node {
	hint := c.node(phpast.Name, role, n)
	text := strings.TrimSpace(c.text(n))
	hint.Name = text

	bare := strings.TrimPrefix(text, "?")
	switch n.Kind() {
	case "named_type", "name", "qualified_name":
		if !isScalarTypeName(bare) {
			hint.NamespacedName = c.resolve(bare, classContext)
			if strings.HasPrefix(text, "?") {
				hint.NamespacedName = "?" + hint.NamespacedName
			}
		}
	}
	return hint
}

func isScalarTypeName(s string) bool {
	switch strings.ToLower(s) {
	case "mixed", "bool", "boolean", "int", "integer", "float", "double",
		"string", "null", "void", "callable", "array", "iterable",
		"object", "self", "static", "parent", "never", "false", "true":
		return true
	}
	return false
}

// docComment finds the docblock immediately preceding a declaration.
func (c *converter) docComment(n *tree_sitter.Node) string {
	for prev := n.PrevSibling(); prev != nil; prev = prev.PrevSibling() {
		if prev.Kind() != "comment" {
			return ""
		}
		text := c.text(prev)
		if strings.HasPrefix(text, "/**") {
			return text
		}
	}
	return ""
}

// resolve maps a source name to its canonical namespaced form, applying
// the language's resolution order: fully qualified as written, relative
// "namespace\" prefixes, use imports for the first segment, then the
// current namespace.
func (c *converter) resolve(text string, ctx nameContext) string {
	text = strings.TrimSpace(text)
	if text == "" {
		return ""
	}
	if strings.HasPrefix(text, "\\") {
		return text
	}
	if rest, ok := strings.CutPrefix(text, "namespace\\"); ok {
		return c.prefix() + rest
	}

	first, rest, qualified := strings.Cut(text, "\\")
	if qualified {
		if fq, ok := c.uses[first]; ok {
			return fq + "\\" + rest
		}
		return c.prefix() + text
	}

	switch ctx {
	case classContext:
		if fq, ok := c.uses[text]; ok {
			return fq
		}
	case funcContext:
		if fq, ok := c.useFuncs[text]; ok {
			return fq
		}
	case constContext:
		if fq, ok := c.useConsts[text]; ok {
			return fq
		}
	}
	return c.prefix() + text
}

func (c *converter) prefix() string {
	if c.ns == "" {
		return "\\"
	}
	return "\\" + c.ns + "\\"
}

func lastSegment(name string) string {
	if i := strings.LastIndexByte(name, '\\'); i >= 0 {
		return name[i+1:]
	}
	return name
}

func hasModifier(n *tree_sitter.Node, kind string) bool {
	for i := uint(0); i < n.NamedChildCount(); i++ {
		if n.NamedChild(i).Kind() == kind {
			return true
		}
	}
	return false
}

func firstNamedOfKind(n *tree_sitter.Node, kind string) *tree_sitter.Node {
	for i := uint(0); i < n.NamedChildCount(); i++ {
		if child := n.NamedChild(i); child.Kind() == kind {
			return child
		}
	}
	return nil
}
