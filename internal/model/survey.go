package model

import (
	"encoding/json"
	"fmt"
	"time"
)

// SurveyResponse はアンケート回答1件を表す。
// QuestionCountは挿入時点のAnswersのキー数を非正規化したレポート用フィールドで、
// 挿入後に再計算されることはない。
type SurveyResponse struct {
	ID            string
	SessionID     string
	Variant       string
	Answers       map[string]AnswerValue
	QuestionCount int
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// SurveyStat は集計用に取得するアンケート回答行の射影。
type SurveyStat struct {
	Variant       string    `json:"variant"`
	QuestionCount int       `json:"question_count"`
	CreatedAt     time.Time `json:"created_at"`
}

// AnswerValue は単一回答（文字列）または複数選択回答（文字列リスト）を表す。
// 永続化層はこの値を解釈せず、JSONのまま保存・返却する。
type AnswerValue struct {
	// Multi がtrueの場合はValuesを、falseの場合はValueを使用する。
	Multi  bool
	Value  string
	Values []string
}

// SingleAnswer は単一回答のAnswerValueを生成する。
func SingleAnswer(v string) AnswerValue {
	return AnswerValue{Value: v}
}

// MultiAnswer は複数選択回答のAnswerValueを生成する。
func MultiAnswer(vs ...string) AnswerValue {
	return AnswerValue{Multi: true, Values: vs}
}

// MarshalJSON は単一回答をJSON文字列、複数選択回答をJSON配列として出力する。
func (a AnswerValue) MarshalJSON() ([]byte, error) {
	if a.Multi {
		if a.Values == nil {
			return json.Marshal([]string{})
		}
		return json.Marshal(a.Values)
	}
	return json.Marshal(a.Value)
}

// UnmarshalJSON はJSON文字列または文字列配列をAnswerValueとして受理する。
// それ以外の型はエラーとする。
func (a *AnswerValue) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		*a = AnswerValue{Value: s}
		return nil
	}

	var list []string
	if err := json.Unmarshal(data, &list); err == nil {
		*a = AnswerValue{Multi: true, Values: list}
		return nil
	}

	return fmt.Errorf("answer value must be a string or an array of strings: %s", string(data))
}
