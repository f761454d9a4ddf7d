package analysis

import "github.com/carn181/phplsp/phpast"

// VariableDefinition locates the node that established the variable used at
// use: a parameter of the enclosing function-like node, a capture binding
// of the nearest enclosing closure, or the nearest assignment lexically
// preceding the use within the same body. Nil when nothing defines it.
//
// The walk stops at the enclosing function, method or closure; arrow
// functions capture implicitly, so there the walk continues in the
// enclosing scope. Control-flow joins are not modeled, the nearest
// preceding assignment simply wins.
func VariableDefinition(use *phpast.Node) *phpast.Node {
	if use == nil || use.Kind != phpast.Variable || use.Name == "" {
		return nil
	}
	return variableDefinitionFrom(use, use.Name)
}

// variableDefinitionFrom runs the same walk starting at an arbitrary node.
// Capture bindings re-enter here with the closure node as start so the
// search continues in the enclosing scope.
func variableDefinitionFrom(start *phpast.Node, name string) *phpast.Node {
	node := start
	for node != nil {
		for sib := node.PrevSibling; sib != nil; sib = sib.PrevSibling {
			if a := assignmentTo(sib, name); a != nil {
				return a
			}
		}

		parent := node.Parent
		if parent == nil {
			return nil
		}
		if parent.IsFunctionLike() {
			for _, p := range parent.ChildrenByRole("parameter") {
				if p.Kind == phpast.Parameter && p.Name == name {
					return p
				}
			}
			if parent.Kind == phpast.Closure {
				for _, u := range parent.ChildrenByRole("use") {
					if u.Kind == phpast.ClosureUse && u.Name == name {
						return u
					}
				}
			}
			// Arrow functions capture implicitly.
			if parent.Kind == phpast.ArrowFunction {
				return variableDefinitionFrom(parent, name)
			}
			return nil
		}
		node = parent
	}
	return nil
}

// assignmentTo unwraps expression statements and reports n as a match if it
// assigns to a variable named name.
func assignmentTo(n *phpast.Node, name string) *phpast.Node {
	if n == nil {
		return nil
	}
	if n.Kind == phpast.ExpressionStmt && len(n.Children) > 0 {
		n = n.Children[0]
	}
	if n.Kind != phpast.Assign {
		return nil
	}
	left := n.ChildByRole("left")
	if left != nil && left.Kind == phpast.Variable && left.Name == name {
		return n
	}
	return nil
}
