package source

import "testing"

func TestNewLanguageGateInvalidTag(t *testing.T) {
	if _, err := NewLanguageGate("not a language"); err == nil {
		t.Error("Expected error for invalid language tag")
	}
}

func TestLanguageGateAllows(t *testing.T) {
	gate, err := NewLanguageGate("en")
	if err != nil {
		t.Fatal(err)
	}

	english := "Researchers released a new open weights language model today, " +
		"trained on a mixture of code and natural text."
	if !gate.Allows(english) {
		t.Error("Expected English text to pass an English gate")
	}

	russian := "Исследователи представили новую языковую модель, обученную " +
		"на большом корпусе текстов и программного кода."
	if gate.Allows(russian) {
		t.Error("Expected Russian text to fail an English gate")
	}

	if gate.Allows("   ") {
		t.Error("Expected empty text to fail")
	}
}

func TestLanguageGateRegionalVariant(t *testing.T) {
	gate, err := NewLanguageGate("en-US")
	if err != nil {
		t.Fatal(err)
	}

	text := "The weekly roundup covers model releases, benchmarks, and tooling " +
		"updates from across the ecosystem."
	if !gate.Allows(text) {
		t.Error("Expected regional variant to match its base language")
	}
}
