package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/hitoshi/mindblown/internal/model"
)

// observedOnLayout はobserved_on（DATE型）の入力形式。
const observedOnLayout = "2006-01-02"

// PostgresObservationRepo はPostgreSQLを使用した感情観測リポジトリ。
type PostgresObservationRepo struct {
	db *sql.DB
}

// NewPostgresObservationRepo はPostgresObservationRepoを生成する。
func NewPostgresObservationRepo(db *sql.DB) *PostgresObservationRepo {
	return &PostgresObservationRepo{db: db}
}

// ExistsInRange はユーザーのcreated_atが[from, to]に含まれる観測が存在するかを返す。
func (r *PostgresObservationRepo) ExistsInRange(ctx context.Context, userID string, from, to time.Time) (bool, error) {
	var exists bool
	err := r.db.QueryRowContext(ctx,
		`SELECT EXISTS (
			SELECT 1 FROM observations
			WHERE user_id = $1 AND created_at >= $2 AND created_at <= $3
		)`,
		userID, from, to,
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check observation in range: %w", err)
	}
	return exists, nil
}

// Create は観測を作成する。
// observed_onの一意制約違反はErrDuplicateObservationとして返す。
func (r *PostgresObservationRepo) Create(ctx context.Context, obs *model.Observation) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO observations (id, user_id, original_text, detected_emotion, observed_on, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6)`,
		obs.ID, obs.UserID, obs.OriginalText, string(obs.DetectedEmotion),
		obs.ObservedOn.Format(observedOnLayout), obs.CreatedAt,
	)
	if err != nil {
		if mapped := mapUniqueViolation(err); mapped != nil {
			return mapped
		}
		return fmt.Errorf("failed to insert observation: %w", err)
	}
	return nil
}

// ListByUserID はユーザーの全観測をcreated_at降順で返す。
// 観測がない場合は空スライスを返す。
func (r *PostgresObservationRepo) ListByUserID(ctx context.Context, userID string) ([]*model.Observation, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, user_id, original_text, detected_emotion, observed_on, created_at
		 FROM observations
		 WHERE user_id = $1
		 ORDER BY created_at DESC`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list observations: %w", err)
	}
	defer rows.Close()

	observations := make([]*model.Observation, 0)
	for rows.Next() {
		obs := &model.Observation{}
		var emotion string
		if err := rows.Scan(&obs.ID, &obs.UserID, &obs.OriginalText, &emotion, &obs.ObservedOn, &obs.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan observation: %w", err)
		}
		obs.DetectedEmotion = model.EmotionLabel(emotion)
		observations = append(observations, obs)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate observations: %w", err)
	}

	return observations, nil
}

// compile-time interface check
var _ ObservationRepository = (*PostgresObservationRepo)(nil)
