package repository

import (
	"context"
	"database/sql"

	"github.com/google/uuid"

	"github.com/hitoshi/stuffscope/internal/model"
)

// PostgresWaitlistRepo はPostgreSQLを使用したウェイトリストリポジトリ。
type PostgresWaitlistRepo struct {
	db *sql.DB
}

// NewPostgresWaitlistRepo はPostgresWaitlistRepoを生成する。
func NewPostgresWaitlistRepo(db *sql.DB) *PostgresWaitlistRepo {
	return &PostgresWaitlistRepo{db: db}
}

// Insert はウェイトリスト登録を作成する。
// IDはここで採番し、タイムスタンプはDB側のnow()を採用してentryに書き戻す。
// emailの一意制約は意図的に張っていないため、同一emailの同時登録は両方成功しうる。
func (r *PostgresWaitlistRepo) Insert(ctx context.Context, entry *model.WaitlistEntry) error {
	entry.ID = uuid.NewString()

	err := r.db.QueryRowContext(ctx,
		`INSERT INTO waitlist (id, name, email, variant)
		 VALUES ($1, $2, $3, $4)
		 RETURNING created_at, updated_at`,
		entry.ID, entry.Name, entry.Email, entry.Variant,
	).Scan(&entry.CreatedAt, &entry.UpdatedAt)
	if err != nil {
		return classifyStoreError("insert_waitlist_entry", err)
	}

	return nil
}

// EmailExists は正規化済みメールアドレスの登録有無を返す。
// sql.ErrNoRowsはアプリケーションエラーではなくfalseにマップする。
func (r *PostgresWaitlistRepo) EmailExists(ctx context.Context, email string) (bool, error) {
	var found string
	err := r.db.QueryRowContext(ctx,
		`SELECT email FROM waitlist WHERE email = $1 LIMIT 1`,
		email,
	).Scan(&found)

	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, classifyStoreError("check_email_exists", err)
	}

	return true, nil
}

// ListStats は集計用の射影を新しい順で返す。
func (r *PostgresWaitlistRepo) ListStats(ctx context.Context) ([]model.WaitlistStat, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT variant, created_at FROM waitlist ORDER BY created_at DESC`,
	)
	if err != nil {
		return nil, classifyStoreError("list_waitlist", err)
	}
	defer rows.Close()

	var stats []model.WaitlistStat
	for rows.Next() {
		var s model.WaitlistStat
		if err := rows.Scan(&s.Variant, &s.CreatedAt); err != nil {
			return nil, classifyStoreError("list_waitlist", err)
		}
		stats = append(stats, s)
	}
	if err := rows.Err(); err != nil {
		return nil, classifyStoreError("list_waitlist", err)
	}

	return stats, nil
}

// CheckAccess はストア到達性を確認する軽量な読み取りを1回発行する。
// 行の有無は問わず、スキーマ未作成・権限不足の検出だけを目的とする。
func (r *PostgresWaitlistRepo) CheckAccess(ctx context.Context) error {
	var n int
	err := r.db.QueryRowContext(ctx, `SELECT 1 FROM waitlist LIMIT 1`).Scan(&n)
	if err == sql.ErrNoRows {
		return nil
	}
	if err != nil {
		return classifyStoreError("check_access", err)
	}
	return nil
}

// compile-time interface check
var _ WaitlistRepository = (*PostgresWaitlistRepo)(nil)
