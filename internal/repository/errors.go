package repository

import (
	"errors"

	"github.com/lib/pq"
)

// uniqueViolation はPostgreSQLの一意制約違反のSQLSTATE。
const uniqueViolation = "23505"

// 一意制約名と定義済みエラーの対応。マイグレーションの制約名と一致させる。
var constraintErrors = map[string]error{
	"users_username_key":        ErrDuplicateUsername,
	"users_email_key":           ErrDuplicateEmail,
	"observations_user_day_key": ErrDuplicateObservation,
}

// mapUniqueViolation は一意制約違反を定義済みエラーへ変換する。
// 該当しない場合はnilを返す。
func mapUniqueViolation(err error) error {
	var pqErr *pq.Error
	if !errors.As(err, &pqErr) || pqErr.Code != uniqueViolation {
		return nil
	}
	if mapped, ok := constraintErrors[pqErr.Constraint]; ok {
		return mapped
	}
	return nil
}
