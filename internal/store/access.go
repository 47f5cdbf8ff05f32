package store

import (
	"context"
	"fmt"

	"supportdesk/internal/query"
)

// Предикаты доступа. Оба только читают и вызываются внутри той же
// транзакции, что и защищаемая ими операция: проверка и изменение видят
// один снимок данных, разрыва между check и use нет.

// CanAccessGroup сообщает, входит ли пользователь в группу.
func CanAccessGroup(ctx context.Context, db query.DBTX, userID, groupID int64) (bool, error) {
	rows, err := query.Many(ctx, db, "user-group-ids", map[string]any{"user-id": userID})
	if err != nil {
		return false, fmt.Errorf("ошибка получения групп пользователя: %w", err)
	}
	for _, r := range rows {
		if asInt64(r["group-id"]) == groupID {
			return true, nil
		}
	}
	return false, nil
}

// CanAccessIssue сообщает, входит ли пользователь в группу,
// владеющую обращением. Для несуществующего обращения — false.
func CanAccessIssue(ctx context.Context, db query.DBTX, userID, issueID int64) (bool, error) {
	row, err := query.One(ctx, db, "issue-group", map[string]any{"id": issueID})
	if err != nil {
		return false, fmt.Errorf("ошибка получения группы обращения: %w", err)
	}
	if row == nil {
		return false, nil
	}
	return CanAccessGroup(ctx, db, userID, asInt64(row["group-id"]))
}
