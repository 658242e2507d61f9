package jsx_parser

import (
	"fmt"
	"strings"

	"github.com/dlclark/regexp2"

	"bfc-go/packages/compiler/src/core"
	"bfc-go/packages/compiler/src/util"
)

// operators longest-first so the scanner always takes the longest match
var punctuators = []string{
	"...", "===", "!==", "**=", "&&=", "||=", "??=", ">>>",
	"=>", "==", "!=", "<=", ">=", "&&", "||", "??", "?.", "++", "--",
	"**", "+=", "-=", "*=", "/=", "%=", "&=", "|=", "^=", "<<", ">>",
	"{", "}", "(", ")", "[", "]", ";", ",", "<", ">", "+", "-", "*",
	"/", "%", "&", "|", "^", "!", "~", "?", ":", "=", ".", "@",
}

// Lexer is a pull-mode scanner over one source file. The parser drives it
// token by token and switches it into JSX text mode explicitly, since JSX
// children are not tokenizable as script.
type Lexer struct {
	file   *util.ParseSourceFile
	src    string
	pos    int
	line   int
	col    int
	prev   Token
	errors []*util.ParseError
}

// NewLexer creates a new Lexer for the given source file
func NewLexer(file *util.ParseSourceFile) *Lexer {
	return &Lexer{file: file, src: file.Content}
}

// Errors returns the diagnostics collected while scanning
func (l *Lexer) Errors() []*util.ParseError {
	return l.errors
}

// Mark is a resumable scanner position
type Mark struct {
	pos  int
	line int
	col  int
	prev Token
}

// Mark captures the current scanner position
func (l *Lexer) Mark() Mark {
	return Mark{pos: l.pos, line: l.line, col: l.col, prev: l.prev}
}

// ResetTo rewinds the scanner to a previously captured position
func (l *Lexer) ResetTo(m Mark) {
	l.pos, l.line, l.col, l.prev = m.pos, m.line, m.col, m.prev
}

func (l *Lexer) peek() int {
	if l.pos >= len(l.src) {
		return core.CharEOF
	}
	return int(l.src[l.pos])
}

func (l *Lexer) peekAt(offset int) int {
	if l.pos+offset >= len(l.src) {
		return core.CharEOF
	}
	return int(l.src[l.pos+offset])
}

func (l *Lexer) advance() {
	if l.pos >= len(l.src) {
		return
	}
	if l.src[l.pos] == '\n' {
		l.line++
		l.col = 0
	} else {
		l.col++
	}
	l.pos++
}

func (l *Lexer) location() *util.ParseLocation {
	return util.NewParseLocation(l.file, l.pos, l.line, l.col)
}

func (l *Lexer) spanFrom(start *util.ParseLocation) *util.ParseSourceSpan {
	return util.NewParseSourceSpan(start, l.location(), nil, nil)
}

func (l *Lexer) error(start *util.ParseLocation, code, msg string) {
	l.errors = append(l.errors, util.NewParseError(l.spanFrom(start), code, msg))
}

func (l *Lexer) skipTrivia() {
	for {
		ch := l.peek()
		if core.IsWhitespace(ch) {
			l.advance()
			continue
		}
		if ch == core.CharSLASH && l.peekAt(1) == core.CharSLASH {
			for l.peek() != core.CharEOF && !core.IsNewLine(l.peek()) {
				l.advance()
			}
			continue
		}
		if ch == core.CharSLASH && l.peekAt(1) == core.CharSTAR {
			start := l.location()
			l.advance()
			l.advance()
			closed := false
			for l.peek() != core.CharEOF {
				if l.peek() == core.CharSTAR && l.peekAt(1) == core.CharSLASH {
					l.advance()
					l.advance()
					closed = true
					break
				}
				l.advance()
			}
			if !closed {
				l.error(start, "BF1001", "unterminated block comment")
			}
			continue
		}
		return
	}
}

// Next scans and returns the next token
func (l *Lexer) Next() Token {
	return l.next(true)
}

// NextNoRegex lexes like Next but always treats a leading slash as
// punctuation. The parser uses it right after the `<` of a JSX tag,
// where `/` begins a closing tag and never a regular expression.
func (l *Lexer) NextNoRegex() Token {
	return l.next(false)
}

func (l *Lexer) next(regexOK bool) Token {
	l.skipTrivia()
	start := l.location()
	ch := l.peek()

	var tok Token
	switch {
	case ch == core.CharEOF:
		tok = Token{Type: TokenTypeEOF, Span: l.spanFrom(start)}
	case core.IsIdentifierStart(ch):
		tok = l.scanIdent(start)
	case core.IsDigit(ch) || (ch == core.CharPERIOD && core.IsDigit(l.peekAt(1))):
		tok = l.scanNumber(start)
	case ch == core.CharSQ || ch == core.CharDQ:
		tok = l.scanString(start)
	case ch == core.CharBT:
		tok = l.scanTemplate(start)
	case ch == core.CharSLASH && regexOK && l.regexAllowed():
		tok = l.scanRegex(start)
	default:
		tok = l.scanPunct(start)
	}
	l.prev = tok
	return tok
}

// NextJSXText scans a raw JSX text run up to the next `<`, `{` or EOF.
// Whitespace is preserved; the parser decides what to keep.
func (l *Lexer) NextJSXText() Token {
	start := l.location()
	var sb strings.Builder
	for {
		ch := l.peek()
		if ch == core.CharEOF || ch == core.CharLT || ch == core.CharLBRACE {
			break
		}
		sb.WriteByte(byte(ch))
		l.advance()
	}
	tok := Token{Type: TokenTypeJSXText, Text: sb.String(), Span: l.spanFrom(start)}
	l.prev = tok
	return tok
}

func (l *Lexer) scanIdent(start *util.ParseLocation) Token {
	for core.IsIdentifierPart(l.peek()) {
		l.advance()
	}
	return Token{
		Type: TokenTypeIdent,
		Text: l.src[start.Offset:l.pos],
		Span: l.spanFrom(start),
	}
}

func (l *Lexer) scanNumber(start *util.ParseLocation) Token {
	if l.peek() == core.Char0 && (l.peekAt(1) == core.CharLowerX || l.peekAt(1) == core.CharX) {
		l.advance()
		l.advance()
		for core.IsAsciiHexDigit(l.peek()) || l.peek() == core.CharUnderscore {
			l.advance()
		}
	} else {
		for core.IsDigit(l.peek()) || l.peek() == core.CharUnderscore {
			l.advance()
		}
		if l.peek() == core.CharPERIOD && core.IsDigit(l.peekAt(1)) {
			l.advance()
			for core.IsDigit(l.peek()) {
				l.advance()
			}
		}
		if l.peek() == core.CharLowerE || l.peek() == core.CharE {
			mark := l.Mark()
			l.advance()
			if l.peek() == core.CharPLUS || l.peek() == core.CharMINUS {
				l.advance()
			}
			if core.IsDigit(l.peek()) {
				for core.IsDigit(l.peek()) {
					l.advance()
				}
			} else {
				l.ResetTo(mark)
			}
		}
	}
	return Token{
		Type: TokenTypeNumber,
		Text: l.src[start.Offset:l.pos],
		Span: l.spanFrom(start),
	}
}

func (l *Lexer) scanString(start *util.ParseLocation) Token {
	quote := l.peek()
	l.advance()
	var sb strings.Builder
	for {
		ch := l.peek()
		if ch == core.CharEOF || core.IsNewLine(ch) {
			l.error(start, "BF1002", "unterminated string literal")
			break
		}
		if ch == quote {
			l.advance()
			break
		}
		if ch == core.CharBACKSLASH {
			l.advance()
			sb.WriteString(decodeEscape(l))
			continue
		}
		sb.WriteByte(byte(ch))
		l.advance()
	}
	return Token{Type: TokenTypeString, Text: sb.String(), Span: l.spanFrom(start)}
}

func decodeEscape(l *Lexer) string {
	ch := l.peek()
	l.advance()
	switch ch {
	case core.CharLowerN:
		return "\n"
	case core.CharLowerT:
		return "\t"
	case core.CharLowerR:
		return "\r"
	case core.CharEOF:
		return ""
	default:
		return string(rune(ch))
	}
}

func (l *Lexer) scanTemplate(start *util.ParseLocation) Token {
	l.advance() // opening backtick
	var parts []TemplatePart
	var quasi strings.Builder
	quasiStart := l.pos
	flush := func() {
		parts = append(parts, TemplatePart{Literal: true, Text: quasi.String(), Offset: quasiStart})
		quasi.Reset()
	}
	for {
		ch := l.peek()
		if ch == core.CharEOF {
			l.error(start, "BF1003", "unterminated template literal")
			flush()
			break
		}
		if ch == core.CharBT {
			l.advance()
			flush()
			break
		}
		if ch == core.CharBACKSLASH {
			l.advance()
			quasi.WriteString(decodeEscape(l))
			continue
		}
		if ch == core.CharDollar && l.peekAt(1) == core.CharLBRACE {
			flush()
			l.advance()
			l.advance()
			exprStart := l.pos
			depth := 1
			for l.peek() != core.CharEOF && depth > 0 {
				switch l.peek() {
				case core.CharLBRACE:
					depth++
				case core.CharRBRACE:
					depth--
				}
				if depth > 0 {
					l.advance()
				}
			}
			parts = append(parts, TemplatePart{Literal: false, Text: l.src[exprStart:l.pos], Offset: exprStart})
			if l.peek() == core.CharRBRACE {
				l.advance()
			} else {
				l.error(start, "BF1003", "unterminated template expression")
			}
			quasiStart = l.pos
			continue
		}
		quasi.WriteByte(byte(ch))
		l.advance()
	}
	return Token{Type: TokenTypeTemplate, Parts: parts, Span: l.spanFrom(start)}
}

func (l *Lexer) regexAllowed() bool {
	switch l.prev.Type {
	case TokenTypeIdent:
		switch l.prev.Text {
		case "return", "typeof", "new", "in", "of", "do", "else", "case":
			return true
		}
		return false
	case TokenTypeNumber, TokenTypeString, TokenTypeTemplate, TokenTypeRegex:
		return false
	case TokenTypePunct:
		switch l.prev.Text {
		case ")", "]", "}", "++", "--":
			return false
		}
		return true
	}
	// start of input
	return true
}

func (l *Lexer) scanRegex(start *util.ParseLocation) Token {
	l.advance() // leading slash
	patternStart := l.pos
	inClass := false
	for {
		ch := l.peek()
		if ch == core.CharEOF || core.IsNewLine(ch) {
			l.error(start, "BF1004", "unterminated regular expression literal")
			break
		}
		if ch == core.CharBACKSLASH {
			l.advance()
			l.advance()
			continue
		}
		if ch == core.CharLBRACKET {
			inClass = true
		} else if ch == core.CharRBRACKET {
			inClass = false
		} else if ch == core.CharSLASH && !inClass {
			break
		}
		l.advance()
	}
	pattern := l.src[patternStart:l.pos]
	if l.peek() == core.CharSLASH {
		l.advance()
	}
	flagsStart := l.pos
	for core.IsIdentifierPart(l.peek()) {
		l.advance()
	}
	flags := l.src[flagsStart:l.pos]

	// validate with ECMAScript semantics, which differ from Go's RE2
	if _, err := regexp2.Compile(pattern, regexp2.ECMAScript); err != nil {
		l.errors = append(l.errors, util.NewParseWarning(l.spanFrom(start), "BF1005",
			fmt.Sprintf("regular expression does not compile: %v", err)))
	}
	return Token{Type: TokenTypeRegex, Text: pattern, Flags: flags, Span: l.spanFrom(start)}
}

func (l *Lexer) scanPunct(start *util.ParseLocation) Token {
	rest := l.src[l.pos:]
	for _, op := range punctuators {
		if strings.HasPrefix(rest, op) {
			for range op {
				l.advance()
			}
			return Token{Type: TokenTypePunct, Text: op, Span: l.spanFrom(start)}
		}
	}
	ch := l.peek()
	l.advance()
	l.error(start, "BF1000", fmt.Sprintf("unexpected character %q", rune(ch)))
	return Token{Type: TokenTypePunct, Text: string(rune(ch)), Span: l.spanFrom(start)}
}
