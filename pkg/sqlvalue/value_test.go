package sqlvalue

import (
	"testing"
	"time"
)

func TestTypeString(t *testing.T) {
	cases := map[Type]string{
		NULL: "NULL", INT: "INT", FLOAT: "FLOAT", BOOL: "BOOL", CHARS: "CHARS", DATES: "DATES",
	}
	for typ, want := range cases {
		if got := typ.String(); got != want {
			t.Errorf("Type(%d).String() = %q, want %q", typ, got, want)
		}
	}
}

func TestAsConversions(t *testing.T) {
	if Int(5).AsFloat() != 5.0 {
		t.Error("Int.AsFloat should widen")
	}
	if Float(2.7).AsInt() != 2 {
		t.Error("Float.AsInt should truncate")
	}
	if Bool(true).AsInt() != 1 || Bool(false).AsInt() != 0 {
		t.Error("Bool.AsInt mismatch")
	}
	if !Int(1).AsBool() || Int(0).AsBool() {
		t.Error("Int.AsBool mismatch")
	}
	if Null().AsBool() {
		t.Error("Null.AsBool must be false")
	}
	if Chars("hi").AsString() != "hi" {
		t.Error("Chars.AsString mismatch")
	}
	if Null().String() != "NULL" {
		t.Error("Null.String must be NULL")
	}
}

func TestCompareNulls(t *testing.T) {
	_, ok := Null().Compare(Int(1))
	if ok {
		t.Error("comparing against NULL must report ok=false")
	}
	_, ok = Int(1).Compare(Null())
	if ok {
		t.Error("comparing against NULL must report ok=false")
	}
}

func TestCompareIncomparableTypes(t *testing.T) {
	_, ok := Chars("x").Compare(Int(1))
	if ok {
		t.Error("CHARS vs INT should be incomparable")
	}
	_, ok = Bool(true).Compare(Int(1))
	if ok {
		t.Error("BOOL vs INT should be incomparable")
	}
}

func TestCompareNumericWidening(t *testing.T) {
	ord, ok := Int(3).Compare(Float(3.0))
	if !ok || ord != Equal {
		t.Errorf("Int(3) vs Float(3.0) = (%v, %v), want (Equal, true)", ord, ok)
	}
	ord, ok = Int(2).Compare(Float(3.5))
	if !ok || ord != Less {
		t.Errorf("Int(2) vs Float(3.5) = (%v, %v), want (Less, true)", ord, ok)
	}
}

func TestCompareFloatEpsilon(t *testing.T) {
	ord, ok := Float(1.0000001).Compare(Float(1.0))
	if !ok || ord != Equal {
		t.Errorf("values within epsilon should compare Equal, got (%v, %v)", ord, ok)
	}
}

func TestCompareDates(t *testing.T) {
	d1 := Date(time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC))
	d2 := Date(time.Date(2021, 1, 1, 0, 0, 0, 0, time.UTC))
	ord, ok := d1.Compare(d2)
	if !ok || ord != Less {
		t.Errorf("d1 before d2 should be Less, got (%v, %v)", ord, ok)
	}
}

func TestIsIdentical(t *testing.T) {
	if !Null().IsIdentical(Null()) {
		t.Error("NULL IS NULL should be true")
	}
	if Null().IsIdentical(Int(0)) {
		t.Error("NULL IS 0 should be false")
	}
	if Int(0).IsIdentical(Null()) {
		t.Error("0 IS NULL should be false")
	}
	if !Int(5).IsIdentical(Int(5)) {
		t.Error("5 IS 5 should be true")
	}
	if Int(5).IsIdentical(Int(6)) {
		t.Error("5 IS 6 should be false")
	}
}

func TestWiden(t *testing.T) {
	if Widen(INT, INT) != INT {
		t.Error("INT+INT should widen to INT")
	}
	if Widen(INT, FLOAT) != FLOAT {
		t.Error("INT+FLOAT should widen to FLOAT")
	}
	if Widen(NULL, INT) != NULL {
		t.Error("NULL participant should widen to NULL")
	}
}

func TestArithmetic(t *testing.T) {
	if Add(Int(2), Int(3)) != Int(5) {
		t.Error("2+3 should be 5")
	}
	if got := Add(Int(2), Float(3.5)); got.Type() != FLOAT || got.AsFloat() != 5.5 {
		t.Errorf("2+3.5 should widen to FLOAT(5.5), got %v", got)
	}
	if !Add(Null(), Int(1)).IsNull() {
		t.Error("NULL+1 should be NULL")
	}
	if got := Div(Int(10), Int(4)); got.Type() != FLOAT || got.AsFloat() != 2.5 {
		t.Errorf("10/4 should be FLOAT(2.5), got %v", got)
	}
	if !Div(Int(1), Int(0)).IsNull() {
		t.Error("division by zero should yield NULL")
	}
	if Mod(Int(10), Int(3)) != Int(1) {
		t.Error("10 mod 3 should be 1")
	}
	if !Mod(Int(10), Int(0)).IsNull() {
		t.Error("mod by zero should yield NULL")
	}
	if !Mod(Float(10.5), Int(3)).IsNull() {
		t.Error("mod requires integer operands, should yield NULL for a FLOAT operand")
	}
	if Neg(Int(5)) != Int(-5) {
		t.Error("Neg(5) should be -5")
	}
	if !Neg(Null()).IsNull() {
		t.Error("Neg(NULL) should be NULL")
	}
}

func TestLike(t *testing.T) {
	cases := []struct {
		s, pattern string
		want       bool
	}{
		{"hello", "h%", true},
		{"hello", "%lo", true},
		{"hello", "h_llo", true},
		{"hello", "h_lo", false},
		{"hello", "%", true},
		{"", "%", true},
		{"hello", "H%", false},
		{"hello", "hello", true},
		{"hello", "hellox", false},
	}
	for _, c := range cases {
		if got := Like(c.s, c.pattern); got != c.want {
			t.Errorf("Like(%q, %q) = %v, want %v", c.s, c.pattern, got, c.want)
		}
	}
}
