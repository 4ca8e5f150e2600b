package app

import (
	"strings"
	"testing"
)

func TestFillSubject_ReplacesEveryPlaceholder(t *testing.T) {
	got := FillSubject("XX can't stop doodling their name + XX with hearts", "ana")

	if strings.Contains(got, SubjectPlaceholder) {
		t.Fatalf("placeholder left in %q", got)
	}
	if !strings.Contains(got, "ana") {
		t.Fatalf("subject name missing from %q", got)
	}
}

func TestRandomQuestion_FromBank(t *testing.T) {
	bank := make(map[string]bool, len(Questions))
	for _, q := range Questions {
		bank[q] = true
	}

	for i := 0; i < 20; i++ {
		if q := RandomQuestion(); !bank[q] {
			t.Fatalf("question %q not from the bank", q)
		}
	}
}

func TestRandomQuestionExcluding(t *testing.T) {
	// A single excluded template never comes back
	excluded := Questions[:1]
	for i := 0; i < 20; i++ {
		if q := RandomQuestionExcluding(excluded); q == Questions[0] {
			t.Fatalf("excluded question %q was returned", q)
		}
	}

	// With the whole bank excluded it still returns something
	if q := RandomQuestionExcluding(Questions); q == "" {
		t.Fatalf("expected a fallback question")
	}
}
