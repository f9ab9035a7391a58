// Package content はバリアント別のランディングページコンテンツを提供する。
// コンテンツはプロセス起動時に1回構築されるイミュータブルなテーブルであり、
// 動的な変更経路は存在しない。レンダリング側は読み取り専用で参照する。
package content

import "github.com/hitoshi/stuffscope/internal/model"

// Hero はファーストビューのコピー。
type Hero struct {
	Headline     string `json:"headline"`
	Subheadline  string `json:"subheadline"`
	CTAPrimary   string `json:"ctaPrimary"`
	CTASecondary string `json:"ctaSecondary"`
}

// Feature は機能紹介1項目。
type Feature struct {
	Icon        string `json:"icon"`
	Title       string `json:"title"`
	Description string `json:"description"`
}

// QuestionType はアンケート設問の回答形式。
type QuestionType string

const (
	// QuestionRadio は単一選択。
	QuestionRadio QuestionType = "radio"
	// QuestionCheckbox は複数選択。
	QuestionCheckbox QuestionType = "checkbox"
	// QuestionTextarea は自由記述。
	QuestionTextarea QuestionType = "textarea"
)

// Question はアンケート設問の定義。
type Question struct {
	ID       string       `json:"id"`
	Type     QuestionType `json:"type"`
	Question string       `json:"question"`
	Options  []string     `json:"options,omitempty"`
}

// Config は1バリアント分のコンテンツ一式。
type Config struct {
	Variant         string     `json:"variant"`
	Hero            Hero       `json:"hero"`
	Features        []Feature  `json:"features"`
	SurveyQuestions []Question `json:"surveyQuestions"`
}

// variants はバリアント名からコンテンツへのイミュータブルなテーブル。
var variants = map[string]*Config{
	model.DefaultVariant: {
		Variant: model.DefaultVariant,
		Hero: Hero{
			Headline:     "StuffScope — The smarter way to catalog what matters most.",
			Subheadline:  "Instantly scan, document, and organize your belongings. Whether for moving, decluttering, or future insurance claims, keep everything safe, searchable, and accessible.",
			CTAPrimary:   "Join Waitlist",
			CTASecondary: "Take Survey",
		},
		Features: []Feature{
			{Icon: "camera", Title: "One-tap scanning", Description: "No spreadsheets, no typing - just point and scan"},
			{Icon: "tag", Title: "Automatic categorization", Description: "Furniture, appliances, electronics, and more"},
			{Icon: "dollar-sign", Title: "Value estimates", Description: "MSRP lookups and resale guidance"},
			{Icon: "download", Title: "Flexible exports", Description: "CSV, PDF, or direct insurance submissions"},
			{Icon: "cloud", Title: "Cloud backup", Description: "Secure, always accessible from anywhere"},
		},
		SurveyQuestions: []Question{
			{
				ID:       "q1",
				Type:     QuestionRadio,
				Question: "Have you ever created a list or record of your home or business belongings?",
				Options:  []string{"Yes", "No"},
			},
			{
				ID:       "q2",
				Type:     QuestionCheckbox,
				Question: "If yes, how did you document your belongings? (Select all that apply)",
				Options:  []string{"Photos", "Spreadsheet", "Written list", "Specialized app", "I haven't documented them"},
			},
			{
				ID:       "q3",
				Type:     QuestionRadio,
				Question: "How often do you update your belongings list or records?",
				Options:  []string{"Monthly", "Yearly", "Only after major purchases", "Never"},
			},
			{
				ID:       "q4",
				Type:     QuestionCheckbox,
				Question: "What situations would motivate you most to use a tool like StuffScope? (Select all that apply)",
				Options:  []string{"Insurance claims", "Moving", "Decluttering", "Estate planning", "Peace of mind"},
			},
			{
				ID:       "q5",
				Type:     QuestionRadio,
				Question: "Would you be willing to pay a small monthly subscription ($5–$10) for unlimited scans and item reports?",
				Options:  []string{"Yes", "Maybe", "No"},
			},
			{
				ID:       "q6",
				Type:     QuestionTextarea,
				Question: "What's one feature or capability you would most like to see in StuffScope that would make it indispensable for you?",
			},
		},
	},
	"v1": {
		Variant: "v1",
		Hero: Hero{
			Headline:     "Never Lose Track of What Matters Again",
			Subheadline:  "What if you lost everything tomorrow? StuffScope ensures you're prepared. Scan any room in seconds and get instant AI-powered inventory reports for insurance, moving, or peace of mind.",
			CTAPrimary:   "Get Early Access",
			CTASecondary: "See How It Works",
		},
		Features: []Feature{
			{Icon: "camera", Title: "One-tap scanning", Description: "No spreadsheets, no typing - just point and scan"},
			{Icon: "tag", Title: "Automatic categorization", Description: "Furniture, appliances, electronics, and more"},
			{Icon: "dollar-sign", Title: "Value estimates", Description: "MSRP lookups and resale guidance"},
			{Icon: "cloud", Title: "Cloud backup", Description: "Secure, always accessible from anywhere"},
		},
		SurveyQuestions: []Question{
			{
				ID:       "q1",
				Type:     QuestionRadio,
				Question: "Have you ever wished you had better documentation of your belongings?",
				Options:  []string{"Yes, definitely", "Sometimes", "Not really"},
			},
			{
				ID:       "q2",
				Type:     QuestionCheckbox,
				Question: "What methods have you tried for tracking your belongings? (Select all that apply)",
				Options:  []string{"Photos", "Spreadsheet", "Written list", "Specialized app", "None"},
			},
			{
				ID:       "q3",
				Type:     QuestionRadio,
				Question: "What would motivate you most to document your belongings TODAY?",
				Options:  []string{"An upcoming move", "Insurance requirements", "A recent loss or scare", "General preparedness"},
			},
			{
				ID:       "q4",
				Type:     QuestionCheckbox,
				Question: "Which situations worry you most? (Select all that apply)",
				Options:  []string{"Fire or natural disaster", "Theft or burglary", "Moving damage", "Warranty disputes"},
			},
			{
				ID:       "q5",
				Type:     QuestionTextarea,
				Question: "What's one feature or capability you would most like to see in StuffScope?",
			},
		},
	},
}

// Lookup は指定バリアントのコンテンツを返す。
// 未知のバリアント名の場合はok=falseを返す。
func Lookup(variant string) (*Config, bool) {
	cfg, ok := variants[variant]
	return cfg, ok
}

// Variants は定義済みバリアント名の一覧を返す。
func Variants() []string {
	names := make([]string, 0, len(variants))
	for name := range variants {
		names = append(names, name)
	}
	return names
}
