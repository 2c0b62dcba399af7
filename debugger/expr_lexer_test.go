package debugger

import (
	"testing"

	"github.com/tigrkoshka/karma/specs"
)

func TestExprLexer_RegisterNames(t *testing.T) {
	tests := []struct {
		name string
		want bool
	}{
		{"r0", true},
		{"r1", true},
		{"r15", true},
		{"R7", true},
		{"r16", false},
		{"r99", false},
		{"sp", true},
		{"cf", true},
		{"ip", true},
		{"result", false},
		{"r", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := isRegisterName(tt.name); got != tt.want {
				t.Errorf("isRegisterName(%q) = %v, want %v", tt.name, got, tt.want)
			}
		})
	}

	if specs.NRegisters != 16 {
		t.Fatalf("test assumes specs.NRegisters == 16, got %d", specs.NRegisters)
	}
}

func TestExprLexer_OutOfRangeRegisterIsSymbol(t *testing.T) {
	l := NewExprLexer("r16")
	tok := l.NextToken()

	if tok.Type != ExprTokenSymbol {
		t.Errorf("type = %v, want ExprTokenSymbol", tok.Type)
	}
	if tok.Value != "r16" {
		t.Errorf("value = %q, want r16", tok.Value)
	}
}

func TestExprLexer_Numbers(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"42", "42"},
		{"0x1A", "0x1A"},
		{"0b1010", "0b1010"},
		{"-5", "-5"},
	}

	for _, tt := range tests {
		l := NewExprLexer(tt.input)
		tok := l.NextToken()
		if tok.Type != ExprTokenNumber {
			t.Errorf("NextToken(%q).Type = %v, want ExprTokenNumber", tt.input, tok.Type)
		}
		if tok.Value != tt.want {
			t.Errorf("NextToken(%q).Value = %q, want %q", tt.input, tok.Value, tt.want)
		}
	}
}

func TestExprLexer_MemoryDereference(t *testing.T) {
	tokens := NewExprLexer("[r0]").TokenizeAll()

	want := []ExprTokenType{ExprTokenLBracket, ExprTokenRegister, ExprTokenRBracket, ExprTokenEOF}
	if len(tokens) != len(want) {
		t.Fatalf("got %d tokens, want %d", len(tokens), len(want))
	}
	for i, typ := range want {
		if tokens[i].Type != typ {
			t.Errorf("token[%d].Type = %v, want %v", i, tokens[i].Type, typ)
		}
	}
	if tokens[1].Value != "r0" {
		t.Errorf("token[1].Value = %q, want r0", tokens[1].Value)
	}
}

func TestExprLexer_Operators(t *testing.T) {
	tokens := NewExprLexer("r0 + r1 << 2").TokenizeAll()

	wantValues := []string{"r0", "+", "r1", "<<", "2", ""}
	if len(tokens) != len(wantValues) {
		t.Fatalf("got %d tokens, want %d", len(tokens), len(wantValues))
	}
	for i, v := range wantValues {
		if tokens[i].Value != v {
			t.Errorf("token[%d].Value = %q, want %q", i, tokens[i].Value, v)
		}
	}
}

func TestExprLexer_ValueRef(t *testing.T) {
	tok := NewExprLexer("$1").NextToken()

	if tok.Type != ExprTokenValueRef {
		t.Errorf("type = %v, want ExprTokenValueRef", tok.Type)
	}
	if tok.Value != "$1" {
		t.Errorf("value = %q, want $1", tok.Value)
	}
}
