package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"

	"github.com/hitoshi/stuffscope/internal/model"
)

// PostgresSurveyRepo はPostgreSQLを使用したアンケート回答リポジトリ。
type PostgresSurveyRepo struct {
	db *sql.DB
}

// NewPostgresSurveyRepo はPostgresSurveyRepoを生成する。
func NewPostgresSurveyRepo(db *sql.DB) *PostgresSurveyRepo {
	return &PostgresSurveyRepo{db: db}
}

// Insert はアンケート回答を作成する。
// AnswersはJSONにシリアライズしてjsonbカラムへそのまま保存する。
// IDはここで採番し、タイムスタンプはDB側のnow()を採用してresponseに書き戻す。
func (r *PostgresSurveyRepo) Insert(ctx context.Context, response *model.SurveyResponse) error {
	answersJSON, err := json.Marshal(response.Answers)
	if err != nil {
		return fmt.Errorf("failed to encode answers: %w", err)
	}

	response.ID = uuid.NewString()

	err = r.db.QueryRowContext(ctx,
		`INSERT INTO survey_responses (id, session_id, variant, answers, question_count)
		 VALUES ($1, $2, $3, $4, $5)
		 RETURNING created_at, updated_at`,
		response.ID, response.SessionID, response.Variant,
		string(answersJSON), response.QuestionCount,
	).Scan(&response.CreatedAt, &response.UpdatedAt)
	if err != nil {
		return classifyStoreError("insert_survey_response", err)
	}

	return nil
}

// ListStats は集計用の射影を新しい順で返す。
func (r *PostgresSurveyRepo) ListStats(ctx context.Context) ([]model.SurveyStat, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT variant, question_count, created_at
		 FROM survey_responses ORDER BY created_at DESC`,
	)
	if err != nil {
		return nil, classifyStoreError("list_survey_responses", err)
	}
	defer rows.Close()

	var stats []model.SurveyStat
	for rows.Next() {
		var s model.SurveyStat
		if err := rows.Scan(&s.Variant, &s.QuestionCount, &s.CreatedAt); err != nil {
			return nil, classifyStoreError("list_survey_responses", err)
		}
		stats = append(stats, s)
	}
	if err := rows.Err(); err != nil {
		return nil, classifyStoreError("list_survey_responses", err)
	}

	return stats, nil
}

// compile-time interface check
var _ SurveyRepository = (*PostgresSurveyRepo)(nil)
