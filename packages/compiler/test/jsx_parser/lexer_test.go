package jsx_parser_test

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"bfc-go/packages/compiler/src/jsx_parser"
	"bfc-go/packages/compiler/src/util"
)

func tokenize(src string) []interface{} {
	file := util.NewParseSourceFile(src, "test.tsx")
	lexer := jsx_parser.NewLexer(file)
	var out []interface{}
	for {
		tok := lexer.Next()
		if tok.Type == jsx_parser.TokenTypeEOF {
			break
		}
		out = append(out, []interface{}{tok.Type.String(), tok.Text})
	}
	return out
}

func TestLexer(t *testing.T) {
	t.Run("should tokenize identifiers and punctuators", func(t *testing.T) {
		expected := []interface{}{
			[]interface{}{"IDENT", "const"},
			[]interface{}{"IDENT", "x"},
			[]interface{}{"PUNCT", "="},
			[]interface{}{"NUMBER", "42"},
			[]interface{}{"PUNCT", ";"},
		}
		result := tokenize("const x = 42;")
		if diff := cmp.Diff(expected, result); diff != "" {
			t.Errorf("tokenize() mismatch (-want +got):\n%s", diff)
		}
	})

	t.Run("should decode string escapes", func(t *testing.T) {
		expected := []interface{}{
			[]interface{}{"STRING", "a\nb"},
		}
		result := tokenize(`"a\nb"`)
		if diff := cmp.Diff(expected, result); diff != "" {
			t.Errorf("tokenize() mismatch (-want +got):\n%s", diff)
		}
	})

	t.Run("should match multi-character punctuators longest first", func(t *testing.T) {
		expected := []interface{}{
			[]interface{}{"IDENT", "a"},
			[]interface{}{"PUNCT", "==="},
			[]interface{}{"IDENT", "b"},
			[]interface{}{"PUNCT", "??"},
			[]interface{}{"IDENT", "c"},
			[]interface{}{"PUNCT", "=>"},
			[]interface{}{"IDENT", "d"},
		}
		result := tokenize("a === b ?? c => d")
		if diff := cmp.Diff(expected, result); diff != "" {
			t.Errorf("tokenize() mismatch (-want +got):\n%s", diff)
		}
	})

	t.Run("should skip line and block comments", func(t *testing.T) {
		expected := []interface{}{
			[]interface{}{"IDENT", "a"},
			[]interface{}{"IDENT", "b"},
		}
		result := tokenize("a // trailing\n/* block */ b")
		if diff := cmp.Diff(expected, result); diff != "" {
			t.Errorf("tokenize() mismatch (-want +got):\n%s", diff)
		}
	})

	t.Run("should split template literals into quasis and expressions", func(t *testing.T) {
		file := util.NewParseSourceFile("`a${x}b`", "test.tsx")
		lexer := jsx_parser.NewLexer(file)
		tok := lexer.Next()
		if tok.Type != jsx_parser.TokenTypeTemplate {
			t.Fatalf("expected template token, got %s", tok.Type)
		}
		expected := []jsx_parser.TemplatePart{
			{Literal: true, Text: "a", Offset: 1},
			{Literal: false, Text: "x", Offset: 4},
			{Literal: true, Text: "b", Offset: 6},
		}
		if diff := cmp.Diff(expected, tok.Parts); diff != "" {
			t.Errorf("template parts mismatch (-want +got):\n%s", diff)
		}
	})

	t.Run("should read a regex literal in expression position", func(t *testing.T) {
		result := tokenize(`const re = /ab+c/gi;`)
		last := result[len(result)-2].([]interface{})
		if last[0] != "REGEX" {
			t.Errorf("expected REGEX token, got %v", last)
		}
	})

	t.Run("should read division after an identifier", func(t *testing.T) {
		expected := []interface{}{
			[]interface{}{"IDENT", "a"},
			[]interface{}{"PUNCT", "/"},
			[]interface{}{"IDENT", "b"},
		}
		result := tokenize("a / b")
		if diff := cmp.Diff(expected, result); diff != "" {
			t.Errorf("tokenize() mismatch (-want +got):\n%s", diff)
		}
	})
}
