package template

import "testing"

func TestRenderSubstitutesKnownVariable(t *testing.T) {
	out, err := Render("hello {{ name }}", map[string]any{"name": "world"}, Strict)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out != "hello world" {
		t.Errorf("Render = %q, want %q", out, "hello world")
	}
}

func TestRenderStrictMissingVariableFails(t *testing.T) {
	_, err := Render("path={{ missing }}", map[string]any{}, Strict)
	if err == nil {
		t.Fatal("want MissingVariableError, got nil")
	}
	mv, ok := err.(*MissingVariableError)
	if !ok {
		t.Fatalf("want *MissingVariableError, got %T", err)
	}
	if mv.Name != "missing" {
		t.Errorf("Name = %q, want %q", mv.Name, "missing")
	}
}

func TestRenderOffModeSubstitutesEmptyForMissing(t *testing.T) {
	out, err := Render("path={{ missing }}", map[string]any{}, Off)
	if err != nil {
		t.Fatalf("unexpected error in Off mode: %v", err)
	}
	if out != "path=" {
		t.Errorf("Render = %q, want %q", out, "path=")
	}
}

func TestRenderPassThroughWithoutPlaceholders(t *testing.T) {
	out, err := Render("/etc/hosts", nil, Strict)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out != "/etc/hosts" {
		t.Errorf("Render = %q, want %q", out, "/etc/hosts")
	}
}

func TestRenderUsesHelperFuncs(t *testing.T) {
	out, err := Render("{{ to_upper_case .name }}", map[string]any{"name": "x"}, Strict)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out != "X" {
		t.Errorf("Render = %q, want %q", out, "X")
	}
}

func TestCoerceIntRejectsNonNumeric(t *testing.T) {
	if _, err := CoerceInt("not-a-number"); err == nil {
		t.Error("want error coercing non-numeric string, got nil")
	}
}

func TestCoerceIntEmptyStringIsZero(t *testing.T) {
	n, err := CoerceInt("")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if n != 0 {
		t.Errorf("CoerceInt(\"\") = %d, want 0", n)
	}
}

func TestCoerceBoolParsesTrueFalse(t *testing.T) {
	b, err := CoerceBool("true")
	if err != nil || !b {
		t.Errorf("CoerceBool(\"true\") = (%v, %v), want (true, nil)", b, err)
	}
	b, err = CoerceBool("false")
	if err != nil || b {
		t.Errorf("CoerceBool(\"false\") = (%v, %v), want (false, nil)", b, err)
	}
}
