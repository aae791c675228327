package expr

import (
	"math"
	"strings"
	"testing"
)

func TestPrecedence(t *testing.T) {
	tests := []struct {
		src  string
		x    float64
		want float64
	}{
		{"1 + 2 * 3", 0, 7},
		{"(1 + 2) * 3", 0, 9},
		{"10 - 4 - 3", 0, 3},
		{"24 / 4 / 3", 0, 2},
		{"2 ^ 3 ^ 2", 0, 512},
		{"-2 ^ 2", 0, 4},
		{"2 ^ -1", 0, 0.5},
		{"-x^2", 3, 9},
		{"0 - x^2", 3, -9},
		{"--x", 5, 5},
		{"+x", 5, 5},
		{"2x", 4, 8},
		{"2x^2", 3, 18},
		{"3(x + 1)", 1, 6},
		{"(x + 1)(x - 1)", 3, 8},
		{"2pi", 0, 2 * math.Pi},
		{"2e", 0, 2 * math.E},
		{"1.5e2", 0, 150},
		{".5 + x", 1, 1.5},
		{"π", 0, math.Pi},
		{"sin(pi/2)", 0, 1},
		{"sqrt(abs(-16))", 0, 4},
		{"log(exp(x))", 2, 2},
		{"log10(1000)", 0, 3},
		{"floor(x) + ceil(x)", 1.5, 3},
		{"sin(cos(tan(0)))", 0, math.Sin(1)},
		{"cosh(0) + sinh(0) + tanh(0)", 0, 1},
		{"asin(1) + acos(1) + atan(0)", 0, math.Pi / 2},
	}

	for _, tt := range tests {
		t.Run(tt.src, func(t *testing.T) {
			p, err := Compile(tt.src)
			if err != nil {
				t.Fatalf("Compile(%q): %v", tt.src, err)
			}
			got, err := p.Eval(tt.x)
			if err != nil {
				t.Fatalf("Eval(%g): %v", tt.x, err)
			}
			if math.Abs(got-tt.want) > 1e-12 {
				t.Errorf("%s at x=%g = %v, want %v", tt.src, tt.x, got, tt.want)
			}
		})
	}
}

func TestCanonicalString(t *testing.T) {
	tests := []struct {
		src  string
		want string
	}{
		{"1+2*x", "(1 + (2 * x))"},
		{"2^3^x", "(2 ^ (3 ^ x))"},
		{"-x^2", "((-x) ^ 2)"},
		{"2x", "(2 * x)"},
		{"sin(pi*x)", "sin((pi * x))"},
	}
	for _, tt := range tests {
		if got := MustCompile(tt.src).String(); got != tt.want {
			t.Errorf("String(%q) = %q, want %q", tt.src, got, tt.want)
		}
	}
}

func TestSyntaxErrors(t *testing.T) {
	tests := []struct {
		src     string
		column  int
		message string
	}{
		{"1/(", 4, "unexpected end of input"},
		{"", 1, "empty expression"},
		{"   ", 1, "empty expression"},
		{"x +", 4, "unexpected end of input"},
		{"(x + 1", 7, "missing ')'"},
		{"x + 1)", 6, "unmatched ')'"},
		{"y + 1", 1, `unknown identifier "y"`},
		{"foo(x)", 1, `unknown function "foo"`},
		{"sin x", 1, "requires parentheses"},
		{"sin()", 5, "exactly 1 argument"},
		{"log(x, 2)", 6, "exactly 1 argument"},
		{"x $ 2", 3, "unexpected character"},
		{"1..2", 1, "malformed number"},
		{"x * * 2", 5, `unexpected "*"`},
	}

	for _, tt := range tests {
		t.Run(tt.src, func(t *testing.T) {
			_, err := Compile(tt.src)
			if err == nil {
				t.Fatalf("Compile(%q) succeeded, want error", tt.src)
			}
			se, ok := err.(*SyntaxError)
			if !ok {
				t.Fatalf("error type = %T, want *SyntaxError", err)
			}
			if se.Column() != tt.column {
				t.Errorf("Column() = %d, want %d (%v)", se.Column(), tt.column, se)
			}
			if !strings.Contains(se.Message, tt.message) {
				t.Errorf("Message = %q, want it to contain %q", se.Message, tt.message)
			}
		})
	}
}

func TestSyntaxErrorShow(t *testing.T) {
	_, err := Compile("1/(")
	se := err.(*SyntaxError)
	want := "  1/(\n     ^ unexpected end of input"
	if got := se.Show("  "); got != want {
		t.Errorf("Show() =\n%s\nwant\n%s", got, want)
	}
}

func TestLexNumbers(t *testing.T) {
	toks, err := lex("3.25e-1 2E3 7.")
	if err != nil {
		t.Fatal(err)
	}
	want := []float64{0.325, 2000, 7}
	for i, w := range want {
		if toks[i].kind != tokNumber || toks[i].num != w {
			t.Errorf("token %d = %+v, want number %v", i, toks[i], w)
		}
	}
	if toks[len(toks)-1].kind != tokEOF {
		t.Error("token stream should end with EOF")
	}
}

func TestLexIdentifiers(t *testing.T) {
	toks, err := lex("log10(x) π")
	if err != nil {
		t.Fatal(err)
	}
	var idents []string
	for _, tok := range toks {
		if tok.kind == tokIdent {
			idents = append(idents, tok.text)
		}
	}
	if strings.Join(idents, ",") != "log10,x,π" {
		t.Errorf("identifiers = %v", idents)
	}
}
