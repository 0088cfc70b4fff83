package token

import "testing"

func TestCreateToken(t *testing.T) {
	tok := CreateToken(LCUR, 2, 4)
	if tok.TokenType != LCUR {
		t.Errorf("TokenType = %v, want %v", tok.TokenType, LCUR)
	}
	if tok.Lexeme != "{" {
		t.Errorf("Lexeme = %q, want %q", tok.Lexeme, "{")
	}
	if tok.Literal != nil {
		t.Errorf("Literal = %v, want nil", tok.Literal)
	}
}

func TestCreateIdentifierToken(t *testing.T) {
	tok := CreateIdentifierToken("main", 0, 0)
	if tok.TokenType != IDENTIFIER {
		t.Errorf("TokenType = %v, want %v", tok.TokenType, IDENTIFIER)
	}
	if tok.Lexeme != "main" {
		t.Errorf("Lexeme = %q, want %q", tok.Lexeme, "main")
	}
}

func TestCreateDataToken(t *testing.T) {
	lit := DataLiteral{Kind: HexKind, Digits: "a5"}
	tok := CreateDataToken(lit, "0xa5", 1, 3)
	if tok.TokenType != DATA {
		t.Errorf("TokenType = %v, want %v", tok.TokenType, DATA)
	}
	got, ok := tok.Literal.(DataLiteral)
	if !ok {
		t.Fatalf("Literal is not a DataLiteral: %v", tok.Literal)
	}
	if got != lit {
		t.Errorf("Literal = %+v, want %+v", got, lit)
	}
}

func TestKeyWords(t *testing.T) {
	tests := []struct {
		word string
		want TokenType
	}{
		{"function", FUNCTION},
		{"return", RETURN},
	}
	for _, tt := range tests {
		got, ok := KeyWords[tt.word]
		if !ok {
			t.Errorf("KeyWords[%q] missing", tt.word)
			continue
		}
		if got != tt.want {
			t.Errorf("KeyWords[%q] = %v, want %v", tt.word, got, tt.want)
		}
	}
	if _, ok := KeyWords["main"]; ok {
		t.Errorf("KeyWords should not contain plain identifiers")
	}
}

func TestTokenString(t *testing.T) {
	tok := CreateToken(ROL, 0, 0)
	want := `Token {Type: <<<, Value: "<<<"}`
	if tok.String() != want {
		t.Errorf("String() = %q, want %q", tok.String(), want)
	}
}
