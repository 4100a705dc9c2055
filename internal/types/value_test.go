package types

import "testing"

func TestExactThirdsSumToOne(t *testing.T) {
	third, err := NewRational(1, 3)
	if err != nil {
		t.Fatal(err)
	}
	sum := Value(third)
	for i := 0; i < 2; i++ {
		var err error
		sum, err = BinaryOp("+", sum, third)
		if err != nil {
			t.Fatal(err)
		}
	}
	one := NewRationalInt(1)
	if !sum.Equal(one) {
		t.Fatalf("1/3+1/3+1/3 = %s, want 1", sum.String())
	}
}

func TestParseRational(t *testing.T) {
	r, err := ParseRational("4/7")
	if err != nil {
		t.Fatal(err)
	}
	if r.String() != "4/7" {
		t.Fatalf("got %s", r.String())
	}

	whole, err := ParseRational("6")
	if err != nil {
		t.Fatal(err)
	}
	if whole.String() != "6" {
		t.Fatalf("got %s", whole.String())
	}
}

func TestDivisionByZero(t *testing.T) {
	_, err := BinaryOp("/", NewRationalInt(1), NewRationalInt(0))
	if err != ErrDivisionByZero {
		t.Fatalf("got %v", err)
	}
}

func TestZeroMultiplicationModification(t *testing.T) {
	_, err := ApplyModification("*=", NewRationalInt(5), NewRationalInt(0), false)
	if err != ErrZeroMultiplication {
		t.Fatalf("got %v", err)
	}
}

func TestModificationInverse(t *testing.T) {
	cur := NewRationalInt(6)
	forward, err := ApplyModification("+=", cur, NewRationalInt(5), false)
	if err != nil {
		t.Fatal(err)
	}
	if forward.String() != "11" {
		t.Fatalf("got %s", forward.String())
	}
	back, err := ApplyModification("+=", forward, NewRationalInt(5), true)
	if err != nil {
		t.Fatal(err)
	}
	if !back.Equal(cur) {
		t.Fatalf("got %s, want %s", back.String(), cur.String())
	}
}

func TestCompareRationalAndArrayIsError(t *testing.T) {
	_, err := BinaryOp("<", NewRationalInt(1), NewArray(nil))
	if err == nil {
		t.Fatal("expected type-mismatch error")
	}
}

func TestArrayTruthiness(t *testing.T) {
	empty := NewArray(nil)
	if empty.Truthy() {
		t.Fatal("empty array should be falsy")
	}
	nonEmpty := NewArray([]Value{NewRationalInt(0)})
	if !nonEmpty.Truthy() {
		t.Fatal("non-empty array should be truthy")
	}
}

func TestArrayCloneIsDeep(t *testing.T) {
	a := NewArray([]Value{NewArray([]Value{NewRationalInt(1)})})
	b := a.Clone().(*Array)
	inner := b.Elems[0].(*Array)
	inner.Push(NewRationalInt(2))
	if a.Elems[0].(*Array).Len() != 1 {
		t.Fatal("clone aliased inner array")
	}
}
