// Package docblock parses phpdoc comments into structured tags. Only the
// tags the analyzer consumes are modeled; unknown tags are kept verbatim so
// hover can render them later.
package docblock

import "strings"

type Tag struct {
	// Name without the leading @: "return", "var", "param", ...
	Name string
	// Type expression, when the tag carries one.
	Type string
	// Var is the $variable a param or var tag binds to, without the sigil.
	Var string
	// Description is the free text after the structured parts.
	Description string
}

type Block struct {
	Summary string
	Tags    []Tag
}

var typedTags = map[string]bool{
	"param":    true,
	"return":   true,
	"var":      true,
	"property": true,
	"throws":   true,
}

// Parse reads a /** ... */ comment. Content before the first tag becomes
// the summary.
func Parse(comment string) Block {
	var b Block
	var summary []string

	for _, line := range strings.Split(comment, "\n") {
		line = strings.TrimSpace(line)
		line = strings.TrimPrefix(line, "/**")
		line = strings.TrimSuffix(line, "*/")
		line = strings.TrimSpace(strings.TrimPrefix(line, "*"))
		if line == "" {
			continue
		}
		if !strings.HasPrefix(line, "@") {
			if len(b.Tags) == 0 {
				summary = append(summary, line)
			}
			continue
		}
		b.Tags = append(b.Tags, parseTag(line))
	}

	b.Summary = strings.Join(summary, "\n")
	return b
}

func parseTag(line string) Tag {
	fields := strings.Fields(line[1:])
	if len(fields) == 0 {
		return Tag{}
	}
	tag := Tag{Name: fields[0]}
	rest := fields[1:]

	if typedTags[tag.Name] && len(rest) > 0 {
		tag.Type = rest[0]
		rest = rest[1:]
	}
	if len(rest) > 0 && strings.HasPrefix(rest[0], "$") {
		tag.Var = strings.TrimPrefix(rest[0], "$")
		rest = rest[1:]
	}
	tag.Description = strings.Join(rest, " ")
	return tag
}

// ReturnType is the type of the first @return tag, or "".
func (b Block) ReturnType() string {
	for _, t := range b.Tags {
		if t.Name == "return" {
			return t.Type
		}
	}
	return ""
}

// VarType is the type of the first @var tag, or "".
func (b Block) VarType() string {
	for _, t := range b.Tags {
		if t.Name == "var" {
			return t.Type
		}
	}
	return ""
}

// ParamType is the declared type of the named parameter, or "".
func (b Block) ParamType(name string) string {
	for _, t := range b.Tags {
		if t.Name == "param" && t.Var == name {
			return t.Type
		}
	}
	return ""
}
