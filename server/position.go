package server

import (
	"fmt"
	"unicode/utf8"

	"github.com/carn181/phplsp/transport"
)

// ApplyIncrementalChange splices newText over the given range of content.
// Offsets honor the negotiated position encoding.
func ApplyIncrementalChange(r transport.Range, newText, content, encoding string) (string, error) {
	start, err := PositionToOffset(r.Start, content, encoding)
	if err != nil {
		return "", err
	}
	end, err := PositionToOffset(r.End, content, encoding)
	if err != nil {
		return "", err
	}
	if start > end || end > len(content) {
		return "", fmt.Errorf("invalid change range [%d,%d)", start, end)
	}
	return content[:start] + newText + content[end:], nil
}

// PositionToOffset converts an encoding-relative position to a byte offset.
func PositionToOffset(pos transport.Position, s string, encoding string) (int, error) {
	if len(s) == 0 {
		return 0, nil
	}
	lines := lineIndices(s)
	if int(pos.Line) > len(lines) {
		return 0, fmt.Errorf("line %d out of range", pos.Line)
	}
	if int(pos.Line) == len(lines) {
		return len(s), nil
	}

	offset := lines[pos.Line]
	remaining := int(pos.Character)
	for remaining > 0 && offset < len(s) {
		r, w := utf8.DecodeRuneInString(s[offset:])
		if w == 0 || r == '\n' {
			break
		}
		offset += w
		switch encoding {
		case "utf-8":
			remaining -= w
		case "utf-16":
			if r >= 0x10000 {
				remaining -= 2
			} else {
				remaining--
			}
		default:
			// utf-32: one code unit per rune.
			remaining--
		}
	}
	return offset, nil
}

// OffsetToPosition converts a byte offset back to an encoding-relative
// position.
func OffsetToPosition(offset int, s string, encoding string) (transport.Position, error) {
	if offset < 0 || offset > len(s) {
		return transport.Position{}, fmt.Errorf("offset %d out of range", offset)
	}

	var line, char uint32
	for i := 0; i < offset && i < len(s); {
		r, w := utf8.DecodeRuneInString(s[i:])
		if w == 0 || i+w > offset {
			// An offset inside a rune rounds down to the rune's start.
			break
		}
		if r == '\n' {
			line++
			char = 0
		} else {
			switch encoding {
			case "utf-8":
				char += uint32(w)
			case "utf-16":
				if r >= 0x10000 {
					char += 2
				} else {
					char++
				}
			default:
				char++
			}
		}
		i += w
	}
	return transport.Position{Line: line, Character: char}, nil
}

// lineIndices returns the byte offset of each line start.
func lineIndices(s string) []int {
	lines := []int{0}
	for i, b := range []byte(s) {
		if b == '\n' {
			lines = append(lines, i+1)
		}
	}
	return lines
}
