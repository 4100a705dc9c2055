package lexer

import "testing"

func TestNextBasicTokens(t *testing.T) {
	input := `let x = 6
x += 5
unlet x = 11`

	want := []TokenType{
		LET, IDENT, EQ, NUMBER, NEWLINE,
		IDENT, PLUSEQ, NUMBER, NEWLINE,
		UNLET, IDENT, EQ, NUMBER, EOF,
	}

	l := New(input)
	for i, wantType := range want {
		tok := l.Next()
		if tok.Type != wantType {
			t.Fatalf("token %d: got %v, want %v (literal %q)", i, tok.Type, wantType, tok.Literal)
		}
	}
}

func TestCommentsAndContinuation(t *testing.T) {
	input := "let x = 1 $ a comment $ \\\n+ 2"
	l := New(input)
	var types []TokenType
	for {
		tok := l.Next()
		types = append(types, tok.Type)
		if tok.Type == EOF {
			break
		}
	}
	want := []TokenType{LET, IDENT, EQ, NUMBER, PLUS, NUMBER, EOF}
	if len(types) != len(want) {
		t.Fatalf("got %v, want %v", types, want)
	}
	for i := range want {
		if types[i] != want[i] {
			t.Fatalf("token %d: got %v, want %v", i, types[i], want[i])
		}
	}
}

func TestFractionLiteral(t *testing.T) {
	l := New("4/7")
	tok := l.Next()
	if tok.Type != NUMBER || tok.Literal != "4/7" {
		t.Fatalf("got %+v", tok)
	}
}

func TestMonoIdentifier(t *testing.T) {
	l := New(".count")
	tok := l.Next()
	if tok.Type != IDENT || tok.Literal != ".count" {
		t.Fatalf("got %+v", tok)
	}
}

func TestPseudoIdentifiers(t *testing.T) {
	l := New("TID #TID")
	tok := l.Next()
	if tok.Type != TID {
		t.Fatalf("got %+v", tok)
	}
	tok = l.Next()
	if tok.Type != HASHTID {
		t.Fatalf("got %+v", tok)
	}
}

func TestModificationOperators(t *testing.T) {
	cases := map[string]TokenType{
		"+=": PLUSEQ, "-=": MINUSEQ, "*=": STAREQ, "/=": SLASHEQ,
		"**=": DSTAREQ, "%=": PERCENTEQ, "^=": CARETEQ, "&=": AMPEQ, "|=": PIPEEQ,
	}
	for lit, want := range cases {
		l := New(lit)
		tok := l.Next()
		if tok.Type != want {
			t.Fatalf("%q: got %v, want %v", lit, tok.Type, want)
		}
	}
}
