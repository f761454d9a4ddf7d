package analysis

import (
	"strings"

	"github.com/carn181/phplsp/phpast"
)

// FQN is the canonical project-wide name of a definition:
//
//	\Ns\Sub\Name        type, function or constant
//	\Ns\Class::method() method
//	\Ns\Class::member   instance property or class constant
//	\Ns\Class::$member  static property
//
// Matching is byte-exact and case-sensitive.
type FQN string

func NamespacedFQN(namespace, name string) FQN {
	if namespace == "" {
		return FQN("\\" + name)
	}
	return FQN("\\" + namespace + "\\" + name)
}

func MethodFQN(class FQN, name string) FQN {
	return class + FQN("::"+name+"()")
}

func MemberFQN(class FQN, name string) FQN {
	return class + FQN("::"+name)
}

func StaticPropertyFQN(class FQN, name string) FQN {
	return class + FQN("::$"+name)
}

// StripNamespace rewrites a namespaced top-level name to its global-
// namespace form: \App\strlen becomes \strlen. Member names are returned
// unchanged.
func (f FQN) StripNamespace() FQN {
	if strings.Contains(string(f), "::") {
		return f
	}
	i := strings.LastIndexByte(string(f), '\\')
	if i <= 0 {
		return f
	}
	return FQN("\\" + string(f)[i+1:])
}

// IsMember reports whether the FQN names a class member rather than a
// top-level symbol.
func (f FQN) IsMember() bool {
	return strings.Contains(string(f), "::")
}

// DefinitionFQN computes the FQN a declaration node defines, reading the
// enclosing namespace and class from parent links. Empty for nodes that
// define no name (anonymous classes and their members included).
func DefinitionFQN(n *phpast.Node) FQN {
	if n == nil || n.Name == "" {
		return ""
	}
	switch n.Kind {
	case phpast.ClassDecl, phpast.InterfaceDecl, phpast.FunctionDecl, phpast.ConstDecl:
		return NamespacedFQN(enclosingNamespaceName(n), n.Name)
	case phpast.MethodDecl:
		class := enclosingClassFQN(n)
		if class == "" {
			return ""
		}
		return MethodFQN(class, n.Name)
	case phpast.PropertyDecl:
		class := enclosingClassFQN(n)
		if class == "" {
			return ""
		}
		if n.Static {
			return StaticPropertyFQN(class, n.Name)
		}
		return MemberFQN(class, n.Name)
	case phpast.ClassConstDecl:
		class := enclosingClassFQN(n)
		if class == "" {
			return ""
		}
		return MemberFQN(class, n.Name)
	}
	return ""
}

func enclosingNamespaceName(n *phpast.Node) string {
	if ns := n.EnclosingNamespace(); ns != nil {
		return ns.Name
	}
	return ""
}

func enclosingClassFQN(n *phpast.Node) FQN {
	class := n.EnclosingClass()
	if class == nil || class.Kind == phpast.AnonClass {
		return ""
	}
	return NamespacedFQN(enclosingNamespaceName(class), class.Name)
}

// referenceName resolves the FQN a name-position node refers to: the
// parser-resolved namespaced name when present, else the literal text
// rooted at the global namespace.
func referenceName(n *phpast.Node) FQN {
	if n == nil {
		return ""
	}
	if n.NamespacedName != "" {
		return FQN(n.NamespacedName)
	}
	if n.Name == "" {
		return ""
	}
	if strings.HasPrefix(n.Name, "\\") {
		return FQN(n.Name)
	}
	return FQN("\\" + n.Name)
}
