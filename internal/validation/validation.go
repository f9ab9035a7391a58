// Package validation は送信ペイロードの検証と正規化を提供する。
// すべて副作用のない純粋関数として実装する。
package validation

import (
	"regexp"
	"strings"

	"github.com/hitoshi/stuffscope/internal/model"
)

// emailPattern は基本的な local@domain.tld 形式を検証する。
// RFC完全準拠ではなく、明白な入力ミスを弾くことが目的。
var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// WaitlistInput はウェイトリスト登録の生ペイロード。
type WaitlistInput struct {
	Name    string `json:"name"`
	Email   string `json:"email"`
	Variant string `json:"variant"`
}

// NormalizedWaitlist は検証・正規化済みのウェイトリスト登録内容。
type NormalizedWaitlist struct {
	Name    string
	Email   string
	Variant string
}

// Waitlist はウェイトリスト登録ペイロードを検証し、正規化した値を返す。
// nameとemailはトリム後に空でないこと、emailは基本形式を満たすことを要求する。
// variantは未指定時にDefaultVariantへフォールバックする。
func Waitlist(in WaitlistInput) (NormalizedWaitlist, error) {
	name := strings.TrimSpace(in.Name)
	email := strings.ToLower(strings.TrimSpace(in.Email))

	if name == "" || email == "" {
		return NormalizedWaitlist{}, model.NewMissingFieldsError()
	}

	if !emailPattern.MatchString(email) {
		return NormalizedWaitlist{}, model.NewInvalidEmailError()
	}

	variant := in.Variant
	if variant == "" {
		variant = model.DefaultVariant
	}

	return NormalizedWaitlist{
		Name:    name,
		Email:   email,
		Variant: variant,
	}, nil
}

// SurveyInput はアンケート回答の生ペイロード。
type SurveyInput struct {
	Answers map[string]model.AnswerValue `json:"answers"`
	Variant string                       `json:"variant"`
}

// NormalizedSurvey は検証済みのアンケート回答内容。
// QuestionCountは検証時点のAnswersのキー数を保持する。
type NormalizedSurvey struct {
	Answers       map[string]model.AnswerValue
	Variant       string
	QuestionCount int
}

// Survey はアンケート回答ペイロードを検証する。
// answersが未指定または空の場合はエラーを返す。
// 回答の中身は解釈せず、そのまま保持する。
func Survey(in SurveyInput) (NormalizedSurvey, error) {
	if len(in.Answers) == 0 {
		return NormalizedSurvey{}, model.NewMissingAnswersError()
	}

	variant := in.Variant
	if variant == "" {
		variant = model.DefaultVariant
	}

	return NormalizedSurvey{
		Answers:       in.Answers,
		Variant:       variant,
		QuestionCount: len(in.Answers),
	}, nil
}
