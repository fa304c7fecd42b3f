package points

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

type Type string

const (
	TypeLearning Type = "learning"
	TypeSign     Type = "sign"
	TypeQA       Type = "qa"
	TypeNote     Type = "note"
	TypeComment  Type = "comment"
)

// Rule caps the daily sum for one Type. MaxPoints <= 0 means uncapped.
type Rule struct {
	Type      Type   `yaml:"type" json:"type"`
	Desc      string `yaml:"desc" json:"desc"`
	MaxPoints int    `yaml:"max_points" json:"max_points"`
}

func (r Rule) Capped() bool { return r.MaxPoints > 0 }

type Rules map[Type]Rule

func DefaultRules() Rules {
	return Rules{
		TypeLearning: {Type: TypeLearning, Desc: "course learning", MaxPoints: 50},
		TypeSign:     {Type: TypeSign, Desc: "daily sign-in", MaxPoints: 0},
		TypeQA:       {Type: TypeQA, Desc: "course Q&A", MaxPoints: 20},
		TypeNote:     {Type: TypeNote, Desc: "course notes", MaxPoints: 20},
		TypeComment:  {Type: TypeComment, Desc: "course review", MaxPoints: 0},
	}
}

func (r Rules) Lookup(t Type) (Rule, bool) {
	rule, ok := r[t]
	return rule, ok
}

// ParseType normalises case and whitespace; unknown names are rejected.
func ParseType(raw string) (Type, error) {
	t := Type(strings.ToLower(strings.TrimSpace(raw)))
	if _, ok := DefaultRules()[t]; !ok {
		return "", fmt.Errorf("unknown points type %q", raw)
	}
	return t, nil
}

type rulesFile struct {
	Rules []Rule `yaml:"rules"`
}

// LoadRules starts from DefaultRules and applies overrides from a YAML file
// of the form `rules: [{type: qa, max_points: 30}]`. Empty path is a no-op.
func LoadRules(path string) (Rules, error) {
	rules := DefaultRules()
	if strings.TrimSpace(path) == "" {
		return rules, nil
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read points rules: %w", err)
	}
	var f rulesFile
	if err := yaml.Unmarshal(raw, &f); err != nil {
		return nil, fmt.Errorf("parse points rules: %w", err)
	}
	for _, o := range f.Rules {
		t, err := ParseType(string(o.Type))
		if err != nil {
			return nil, err
		}
		cur := rules[t]
		cur.MaxPoints = o.MaxPoints
		if strings.TrimSpace(o.Desc) != "" {
			cur.Desc = o.Desc
		}
		rules[t] = cur
	}
	return rules, nil
}
