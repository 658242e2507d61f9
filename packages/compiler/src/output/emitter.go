// Package output renders IR into target artifacts: marked templates for a
// server backend and the hydration module for the client. Emitters share
// no state; each consumes the IR independently, which is safe because slot
// assignment is deterministic.
package output

import (
	"strings"
)

var indentWith = "  "

// EmittedLine represents a line being emitted
type EmittedLine struct {
	Parts  []string
	Indent int
}

// EmitterVisitorContext accumulates emitted source with indentation
type EmitterVisitorContext struct {
	lines  []*EmittedLine
	indent int
}

// NewEmitterVisitorContext creates a new EmitterVisitorContext
func NewEmitterVisitorContext(indent int) *EmitterVisitorContext {
	return &EmitterVisitorContext{
		lines:  []*EmittedLine{{Indent: indent}},
		indent: indent,
	}
}

func (ctx *EmitterVisitorContext) currentLine() *EmittedLine {
	return ctx.lines[len(ctx.lines)-1]
}

// LineIsEmpty checks if the current line is empty
func (ctx *EmitterVisitorContext) LineIsEmpty() bool {
	return len(ctx.currentLine().Parts) == 0
}

// Print appends text to the current line
func (ctx *EmitterVisitorContext) Print(part string) {
	if len(part) > 0 {
		line := ctx.currentLine()
		line.Parts = append(line.Parts, part)
	}
}

// Println appends text and terminates the line
func (ctx *EmitterVisitorContext) Println(lastPart string) {
	ctx.Print(lastPart)
	ctx.lines = append(ctx.lines, &EmittedLine{Indent: ctx.indent})
}

// IncIndent increases the indentation of subsequent lines
func (ctx *EmitterVisitorContext) IncIndent() {
	ctx.indent++
	if ctx.LineIsEmpty() {
		ctx.currentLine().Indent = ctx.indent
	}
}

// DecIndent decreases the indentation of subsequent lines
func (ctx *EmitterVisitorContext) DecIndent() {
	ctx.indent--
	if ctx.LineIsEmpty() {
		ctx.currentLine().Indent = ctx.indent
	}
}

// ToSource returns the emitted source text
func (ctx *EmitterVisitorContext) ToSource() string {
	var sb strings.Builder
	for _, line := range ctx.lines {
		if len(line.Parts) > 0 {
			sb.WriteString(strings.Repeat(indentWith, line.Indent))
			sb.WriteString(strings.Join(line.Parts, ""))
			sb.WriteString("\n")
		}
	}
	return strings.TrimRight(sb.String(), "\n") + "\n"
}

// escapeHTMLText escapes a text run for literal markup
func escapeHTMLText(s string) string {
	s = strings.ReplaceAll(s, "&", "&amp;")
	s = strings.ReplaceAll(s, "<", "&lt;")
	return strings.ReplaceAll(s, ">", "&gt;")
}

// escapeHTMLAttr escapes a double-quoted attribute value
func escapeHTMLAttr(s string) string {
	s = strings.ReplaceAll(s, "&", "&amp;")
	return strings.ReplaceAll(s, `"`, "&quot;")
}
