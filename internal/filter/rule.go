// Package filter compiles the optional per-source candidate rules. A rule
// is an expr expression over a listing, e.g.
//
//	price >= 10000 && title contains "FE2"
//
// Rules narrow what gets notified after dedup. A candidate the rule
// rejects is still recorded as seen; the rule is not re-run on it every
// pass.
package filter

import (
	"fmt"

	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/vm"

	"github.com/yhirano/auctionwatch/internal/core"
)

type Rule struct {
	src     string
	program *vm.Program
}

// Compile builds a Rule from src. The expression must evaluate to a bool.
func Compile(src string) (*Rule, error) {
	if src == "" {
		return nil, fmt.Errorf("filter expression is required")
	}
	program, err := expr.Compile(src, expr.Env(ruleEnv(core.Item{})), expr.AsBool())
	if err != nil {
		return nil, fmt.Errorf("compile filter %q: %w", src, err)
	}
	return &Rule{src: src, program: program}, nil
}

func (r *Rule) String() string {
	return r.src
}

// Match reports whether item passes the rule.
func (r *Rule) Match(item core.Item) (bool, error) {
	result, err := expr.Run(r.program, ruleEnv(item))
	if err != nil {
		return false, fmt.Errorf("evaluate filter %q: %w", r.src, err)
	}
	matched, ok := result.(bool)
	if !ok {
		return false, fmt.Errorf("filter %q did not return bool", r.src)
	}
	return matched, nil
}

func ruleEnv(item core.Item) map[string]interface{} {
	return map[string]interface{}{
		"id":    item.ID,
		"title": item.Title,
		"price": item.Price,
		"url":   item.URL,
	}
}
