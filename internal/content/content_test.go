package content

import (
	"testing"

	"github.com/hitoshi/stuffscope/internal/model"
)

// 定義済みバリアントが取得できること
func TestLookup_KnownVariants(t *testing.T) {
	for _, variant := range []string{model.DefaultVariant, "v1"} {
		t.Run(variant, func(t *testing.T) {
			cfg, ok := Lookup(variant)
			if !ok {
				t.Fatalf("Lookup(%q) = not found", variant)
			}
			if cfg.Variant != variant {
				t.Errorf("Variant = %q, want %q", cfg.Variant, variant)
			}
			if cfg.Hero.Headline == "" {
				t.Error("Hero.Headline should not be empty")
			}
			if len(cfg.SurveyQuestions) == 0 {
				t.Error("SurveyQuestions should not be empty")
			}
		})
	}
}

// 未知のバリアントでok=falseが返ること
func TestLookup_UnknownVariant(t *testing.T) {
	if _, ok := Lookup("v99"); ok {
		t.Error("Lookup(v99) should not be found")
	}
}

// 設問IDがバリアント内で一意であること
func TestQuestionIDsAreUniquePerVariant(t *testing.T) {
	for _, variant := range Variants() {
		cfg, _ := Lookup(variant)
		seen := make(map[string]struct{})
		for _, q := range cfg.SurveyQuestions {
			if _, dup := seen[q.ID]; dup {
				t.Errorf("variant %q has duplicate question id %q", variant, q.ID)
			}
			seen[q.ID] = struct{}{}
		}
	}
}

// 選択式の設問には選択肢が定義されていること
func TestChoiceQuestionsHaveOptions(t *testing.T) {
	for _, variant := range Variants() {
		cfg, _ := Lookup(variant)
		for _, q := range cfg.SurveyQuestions {
			switch q.Type {
			case QuestionRadio, QuestionCheckbox:
				if len(q.Options) < 2 {
					t.Errorf("variant %q question %q: choice question needs at least 2 options", variant, q.ID)
				}
			case QuestionTextarea:
				if len(q.Options) != 0 {
					t.Errorf("variant %q question %q: textarea should not have options", variant, q.ID)
				}
			}
		}
	}
}
