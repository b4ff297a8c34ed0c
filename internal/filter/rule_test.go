package filter

import (
	"testing"

	"github.com/yhirano/auctionwatch/internal/core"
)

func TestRuleMatchesOnPriceAndTitle(t *testing.T) {
	rule, err := Compile(`price >= 10000 && title contains "FE2"`)
	if err != nil {
		t.Fatalf("compile failed: %v", err)
	}

	ok, err := rule.Match(core.Item{ID: "a", Title: "Nikon FE2 black", Price: 12000})
	if err != nil {
		t.Fatalf("match failed: %v", err)
	}
	if !ok {
		t.Fatalf("expected item to match")
	}

	ok, err = rule.Match(core.Item{ID: "b", Title: "Nikon FM", Price: 12000})
	if err != nil {
		t.Fatalf("match failed: %v", err)
	}
	if ok {
		t.Fatalf("expected title mismatch to fail the rule")
	}
}

func TestCompileRejectsNonBool(t *testing.T) {
	if _, err := Compile(`price + 1`); err == nil {
		t.Fatalf("expected compile error for non-bool expression")
	}
}

func TestCompileRejectsEmpty(t *testing.T) {
	if _, err := Compile(""); err == nil {
		t.Fatalf("expected error for empty expression")
	}
}

func TestCompileRejectsUnknownField(t *testing.T) {
	if _, err := Compile(`seller == "x"`); err == nil {
		t.Fatalf("expected error for unknown identifier")
	}
}
