package points

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadRulesOverridesCap(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "rules.yaml")
	body := "rules:\n  - type: QA\n    max_points: 30\n  - type: sign\n    max_points: 0\n    desc: check-in\n"
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}
	rules, err := LoadRules(path)
	if err != nil {
		t.Fatalf("LoadRules: %v", err)
	}
	if rules[TypeQA].MaxPoints != 30 {
		t.Fatalf("qa cap: want=30 got=%d", rules[TypeQA].MaxPoints)
	}
	if rules[TypeSign].Desc != "check-in" || rules[TypeSign].Capped() {
		t.Fatalf("sign rule: %+v", rules[TypeSign])
	}
	if rules[TypeLearning].MaxPoints != 50 {
		t.Fatalf("learning default lost: %+v", rules[TypeLearning])
	}
}

func TestLoadRulesRejectsUnknownType(t *testing.T) {
	path := filepath.Join(t.TempDir(), "rules.yaml")
	if err := os.WriteFile(path, []byte("rules:\n  - type: karma\n    max_points: 1\n"), 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}
	if _, err := LoadRules(path); err == nil {
		t.Fatalf("expected error for unknown type")
	}
}

func TestLoadRulesEmptyPathIsDefault(t *testing.T) {
	rules, err := LoadRules("")
	if err != nil || len(rules) != len(DefaultRules()) {
		t.Fatalf("LoadRules(\"\"): err=%v len=%d", err, len(rules))
	}
}
