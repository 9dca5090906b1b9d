package cst

import (
	"strings"

	"github.com/oxhq/blueprint-ls/core"
)

type lineKind int

const (
	lineBlank lineKind = iota
	lineKeyword
	lineDependsOn
	lineComment
	lineCodeBlock
	lineText
)

// logicalLine is one syntactically meaningful unit of source: usually a
// single physical line, but a fenced code block or a block comment
// collapses several physical lines into one logical line so the parser
// never has to look inside them.
type logicalLine struct {
	kind    lineKind
	indent  int
	keyword string // "@module", "@depends-on", etc, for lineKeyword/lineDependsOn
	rest    string // raw (untrimmed) line content after the keyword token
	restCol int    // column at which rest begins within the line
	raw     string // full raw text of the logical line (for code_block/comment content)
	start   core.Position
	end     core.Position
	sByte   int
	eByte   int
}

// lineStarts returns the byte offset of the start of each line (0-indexed
// line -> byte offset), splitting on '\n' and tolerating '\r\n'.
func lineStarts(text string) []int {
	starts := []int{0}
	for i, b := range []byte(text) {
		if b == '\n' {
			starts = append(starts, i+1)
		}
	}
	return starts
}

func splitLinesKeepEnds(text string) []string {
	var lines []string
	start := 0
	for i := 0; i < len(text); i++ {
		if text[i] == '\n' {
			lines = append(lines, text[start:i+1])
			start = i + 1
		}
	}
	if start < len(text) {
		lines = append(lines, text[start:])
	}
	return lines
}

func rstripEOL(s string) string {
	s = strings.TrimSuffix(s, "\n")
	s = strings.TrimSuffix(s, "\r")
	return s
}

func indentOf(s string) (int, string) {
	i := 0
	for i < len(s) && (s[i] == ' ' || s[i] == '\t') {
		i++
	}
	return i, s[i:]
}

var blockKeywords = []string{"@description", "@module", "@feature", "@requirement", "@constraint", "@depends-on"}

// lex tokenizes the full document text into logical lines.
func lex(text string) []logicalLine {
	raws := splitLinesKeepEnds(text)
	var out []logicalLine

	byteOff := 0
	lineNo := 0
	for lineNo < len(raws) {
		raw := raws[lineNo]
		content := rstripEOL(raw)
		indent, trimmed := indentOf(content)
		lineStartByte := byteOff
		lineEndByte := byteOff + len(raw)

		switch {
		case strings.TrimSpace(trimmed) == "":
			out = append(out, logicalLine{
				kind:  lineBlank,
				start: core.Position{Line: lineNo, Col: 0},
				end:   core.Position{Line: lineNo, Col: len(content)},
				sByte: lineStartByte, eByte: lineEndByte,
			})
			byteOff = lineEndByte
			lineNo++
			continue

		case strings.HasPrefix(trimmed, "```"):
			// Fenced code block: consume until a closing ``` line or EOF.
			startLine := lineNo
			startCol := indent
			lineNo++
			byteOff = lineEndByte
			var bodyLines []string
			closed := false
			for lineNo < len(raws) {
				r2 := raws[lineNo]
				c2 := rstripEOL(r2)
				_, t2 := indentOf(c2)
				if strings.HasPrefix(strings.TrimSpace(t2), "```") {
					closed = true
					break
				}
				bodyLines = append(bodyLines, c2)
				byteOff += len(r2)
				lineNo++
			}
			endLine := lineNo
			endCol := 3
			bodyEnd := byteOff
			if closed {
				// consume the closing fence line too
				closeRaw := raws[lineNo]
				byteOff += len(closeRaw)
				endLine = lineNo
				endCol = len(rstripEOL(closeRaw))
				lineNo++
			}
			out = append(out, logicalLine{
				kind:  lineCodeBlock,
				indent: indent,
				raw:   strings.Join(bodyLines, "\n"),
				start: core.Position{Line: startLine, Col: startCol},
				end:   core.Position{Line: endLine, Col: endCol},
				sByte: lineStartByte, eByte: bodyEnd,
			})
			continue

		case strings.HasPrefix(trimmed, "/*"):
			startLine := lineNo
			startCol := indent
			var bodyLines []string
			closed := false
			cur := trimmed
			for {
				if idx := strings.Index(cur, "*/"); idx >= 0 {
					closed = true
					break
				}
				bodyLines = append(bodyLines, cur)
				byteOff = lineEndByte
				lineNo++
				if lineNo >= len(raws) {
					break
				}
				raw = raws[lineNo]
				cur = rstripEOL(raw)
				lineEndByte = byteOff + len(raw)
			}
			if closed {
				bodyLines = append(bodyLines, cur)
				byteOff = lineEndByte
				lineNo++
			}
			endLine := lineNo - 1
			if endLine < startLine {
				endLine = startLine
			}
			out = append(out, logicalLine{
				kind:  lineComment,
				indent: indent,
				raw:   strings.Join(bodyLines, "\n"),
				start: core.Position{Line: startLine, Col: startCol},
				end:   core.Position{Line: endLine, Col: len(cur)},
				sByte: lineStartByte, eByte: byteOff,
			})
			continue

		case strings.HasPrefix(trimmed, "//"):
			out = append(out, logicalLine{
				kind:  lineComment,
				indent: indent,
				raw:   trimmed,
				start: core.Position{Line: lineNo, Col: indent},
				end:   core.Position{Line: lineNo, Col: len(content)},
				sByte: lineStartByte, eByte: lineEndByte,
			})
			byteOff = lineEndByte
			lineNo++
			continue

		default:
			kw, rest, isKeyword := matchKeyword(trimmed)
			ll := logicalLine{
				indent: indent,
				start:  core.Position{Line: lineNo, Col: indent},
				end:    core.Position{Line: lineNo, Col: len(content)},
				sByte:  lineStartByte, eByte: lineEndByte,
				raw:    trimmed,
			}
			if isKeyword {
				if kw == "@depends-on" {
					ll.kind = lineDependsOn
				} else {
					ll.kind = lineKeyword
				}
				ll.keyword = kw
				ll.rest = rest
				ll.restCol = indent + len(kw)
			} else {
				ll.kind = lineText
				ll.rest = trimmed
			}
			out = append(out, ll)
			byteOff = lineEndByte
			lineNo++
		}
	}
	return out
}

func matchKeyword(trimmed string) (kw string, rest string, ok bool) {
	for _, k := range blockKeywords {
		if trimmed == k {
			return k, "", true
		}
		if strings.HasPrefix(trimmed, k+" ") || strings.HasPrefix(trimmed, k+"\t") {
			return k, trimmed[len(k):], true
		}
	}
	return "", trimmed, false
}
