package template

import "testing"

func TestTestConditionEmptyIsTrue(t *testing.T) {
	ok, err := TestCondition("", nil, Strict)
	if err != nil || !ok {
		t.Errorf("TestCondition(\"\") = (%v, %v), want (true, nil)", ok, err)
	}
}

func TestTestConditionEvaluatesBooleanExpr(t *testing.T) {
	ok, err := TestCondition("count > 2", map[string]any{"count": 5}, Strict)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !ok {
		t.Error("want true for count(5) > 2")
	}

	ok, err = TestCondition("count > 2", map[string]any{"count": 1}, Strict)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if ok {
		t.Error("want false for count(1) > 2")
	}
}

func TestTestConditionStrictFailsOnMalformedExpression(t *testing.T) {
	if _, err := TestCondition("count >", map[string]any{"count": 1}, Strict); err == nil {
		t.Error("want compile error for a malformed expression in Strict mode")
	}
}

func TestTestConditionOffModeTreatsCompileErrorAsFalse(t *testing.T) {
	ok, err := TestCondition("count >", map[string]any{"count": 1}, Off)
	if err != nil {
		t.Fatalf("Off mode must not surface a compile error, got: %v", err)
	}
	if ok {
		t.Error("want false for a malformed condition in Off mode")
	}
}
