// lexer_test.go
package lamina

import (
	"reflect"
	"testing"
)

func scanAll(src string) []Token {
	lex := NewLexer(src)
	var out []Token
	for {
		tok := lex.Next()
		if tok.Type == TokEOF {
			return out
		}
		out = append(out, tok)
	}
}

func tokenTypes(tokens []Token) []TokenType {
	out := make([]TokenType, 0, len(tokens))
	for _, tok := range tokens {
		out = append(out, tok.Type)
	}
	return out
}

func wantTokenTypes(t *testing.T, src string, want []TokenType) []Token {
	t.Helper()
	got := scanAll(src)
	gotTypes := tokenTypes(got)
	if !reflect.DeepEqual(gotTypes, want) {
		t.Fatalf("\nsource:\n%s\nwant types:\n%v\ngot types:\n%v\n", src, want, gotTypes)
	}
	return got
}

func Test_Lexer_Punctuation(t *testing.T) {
	wantTokenTypes(t, "l.():->{}=:=!;", []TokenType{
		TokLambda, TokDot, TokLParen, TokRParen, TokColon, TokArrow,
		TokLBrace, TokRBrace, TokEqual, TokAssign, TokBang, TokSemi,
	})
}

func Test_Lexer_Keywords(t *testing.T) {
	src := "true false if else then 0 succ pred iszero Bool Nat let in ref Ref unit Unit fix"
	wantTokenTypes(t, src, []TokenType{
		TokTrue, TokFalse, TokIf, TokElse, TokThen,
		TokZero, TokSucc, TokPred, TokIsZero,
		TokBoolType, TokNatType,
		TokLet, TokIn,
		TokRef, TokRefType,
		TokUnit, TokUnitType,
		TokFix,
	})
}

func Test_Lexer_Identifiers(t *testing.T) {
	got := wantTokenTypes(t, "x y L test _", []TokenType{
		TokID, TokID, TokID, TokID, TokID,
	})
	want := []string{"x", "y", "L", "test", "_"}
	for i, tok := range got {
		if tok.Text != want[i] {
			t.Fatalf("token %d: want text %q, got %q", i, want[i], tok.Text)
		}
	}
}

func Test_Lexer_GreekLambdaAlias(t *testing.T) {
	wantTokenTypes(t, "λ x:Bool. x", []TokenType{
		TokLambda, TokID, TokColon, TokBoolType, TokDot, TokID,
	})
}

func Test_Lexer_InvalidChunks(t *testing.T) {
	src := `@ # $ % ^ & * - + ? / < > ' " \ | [ ]`
	got := scanAll(src)
	if len(got) != 19 {
		t.Fatalf("want 19 tokens, got %d: %v", len(got), got)
	}
	for i, tok := range got {
		if tok.Type != TokInvalid {
			t.Fatalf("token %d: want TokInvalid, got %v", i, tok)
		}
	}
}

func Test_Lexer_InvalidRun(t *testing.T) {
	got := wantTokenTypes(t, "x*", []TokenType{TokInvalid})
	if got[0].Text != "x*" {
		t.Fatalf("want invalid chunk %q, got %q", "x*", got[0].Text)
	}
}

func Test_Lexer_WhitespaceInsensitive(t *testing.T) {
	dense := scanAll("(lx:Bool.x)true")
	spaced := scanAll("( lx : Bool . x ) true")
	if !reflect.DeepEqual(dense, spaced) {
		t.Fatalf("token streams differ:\n%v\n%v", dense, spaced)
	}
}

func Test_Lexer_AssignVsColon(t *testing.T) {
	wantTokenTypes(t, "x:=y", []TokenType{TokID, TokAssign, TokID})
	wantTokenTypes(t, "x : = y", []TokenType{TokID, TokColon, TokEqual, TokID})
}

func Test_Lexer_ArrowVsMinus(t *testing.T) {
	wantTokenTypes(t, "Bool->Nat", []TokenType{TokBoolType, TokArrow, TokNatType})
	got := scanAll("Bool - Nat")
	if got[1].Type != TokInvalid {
		t.Fatalf("lone '-' should be invalid, got %v", got[1])
	}
}

func Test_Lexer_PutBack(t *testing.T) {
	lex := NewLexer("succ 0")
	first := lex.Next()
	lex.PutBack()
	again := lex.Next()
	if !reflect.DeepEqual(first, again) {
		t.Fatalf("put-back token differs: %v vs %v", first, again)
	}
	if lex.Next().Type != TokZero {
		t.Fatalf("lookahead lost the stream position")
	}
}

func Test_Lexer_EOFIsSticky(t *testing.T) {
	lex := NewLexer("x")
	lex.Next()
	for i := 0; i < 3; i++ {
		if lex.Next().Type != TokEOF {
			t.Fatalf("expected persistent EOF")
		}
	}
}
