package identity

import (
	"fmt"

	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/vm"
)

// RuleSpec is a user supplied classification rule as written in the config.
//
//	wm_rules:
//	  - when: 'lower(name) == "river"'
//	    pretty: River
type RuleSpec struct {
	When   string `yaml:"when" json:"when"`
	Pretty string `yaml:"pretty" json:"pretty"`
}

type rule struct {
	src     string
	pretty  string
	program *vm.Program
}

// Rules are compiled user rules, consulted before the built-in tables.
// A nil *Rules matches nothing.
type Rules struct {
	wm []rule
	de []rule
}

func ruleEnv(name string) map[string]any {
	return map[string]any{"name": name}
}

func compileList(kind string, specs []RuleSpec) ([]rule, error) {
	out := make([]rule, 0, len(specs))
	for i, s := range specs {
		if s.When == "" || s.Pretty == "" {
			return nil, fmt.Errorf("%s rule %d: both when and pretty are required", kind, i)
		}
		program, err := expr.Compile(s.When, expr.Env(ruleEnv("")), expr.AsBool())
		if err != nil {
			return nil, fmt.Errorf("%s rule %d: %w", kind, i, err)
		}
		out = append(out, rule{src: s.When, pretty: s.Pretty, program: program})
	}
	return out, nil
}

// CompileRules compiles the window manager and desktop environment rules.
func CompileRules(wm, de []RuleSpec) (*Rules, error) {
	wmRules, err := compileList("wm", wm)
	if err != nil {
		return nil, err
	}
	deRules, err := compileList("de", de)
	if err != nil {
		return nil, err
	}
	return &Rules{wm: wmRules, de: deRules}, nil
}

func match(rules []rule, name string) (string, bool) {
	for _, r := range rules {
		out, err := expr.Run(r.program, ruleEnv(name))
		if err != nil {
			continue
		}
		if ok, _ := out.(bool); ok {
			return r.pretty, true
		}
	}
	return "", false
}

// MatchWM returns the pretty name of the first WM rule accepting name.
func (r *Rules) MatchWM(name string) (string, bool) {
	if r == nil || name == "" {
		return "", false
	}
	return match(r.wm, name)
}

// MatchDE returns the pretty name of the first DE rule accepting name.
func (r *Rules) MatchDE(name string) (string, bool) {
	if r == nil || name == "" {
		return "", false
	}
	return match(r.de, name)
}

// Len returns the number of compiled rules.
func (r *Rules) Len() int {
	if r == nil {
		return 0
	}
	return len(r.wm) + len(r.de)
}
