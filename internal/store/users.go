package store

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"supportdesk/internal/query"
)

// upsertUser создаёт или обновляет пользователя по screenname.
// Для существующего пользователя без поля pass секрет сохраняется
// (путь user-update); с полем pass — заменяется (user-update-pass).
// Возвращает полную строку пользователя после записи.
func upsertUser(ctx context.Context, db query.DBTX, user query.Row) (query.Row, error) {
	existing, err := query.One(ctx, db, "user-by-screenname", user)
	if err != nil {
		return nil, fmt.Errorf("ошибка поиска пользователя: %w", err)
	}

	if existing == nil {
		row, err := query.One(ctx, db, "user-insert", user)
		if err != nil {
			if isUniqueViolation(err) {
				return nil, fmt.Errorf("%w: пользователь уже существует", ErrConflict)
			}
			return nil, fmt.Errorf("ошибка создания пользователя: %w", err)
		}
		return row, nil
	}

	op := "user-update"
	if asString(user["pass"]) != "" {
		op = "user-update-pass"
	}
	row, err := query.One(ctx, db, op, user)
	if err != nil {
		return nil, fmt.Errorf("ошибка обновления пользователя: %w", err)
	}
	return row, nil
}

// memberOf возвращает текущий список групп пользователя.
func memberOf(ctx context.Context, db query.DBTX, userID int64) ([]string, error) {
	rows, err := query.Many(ctx, db, "user-member-of", map[string]any{"user-id": userID})
	if err != nil {
		return nil, fmt.Errorf("ошибка получения членства: %w", err)
	}
	names := make([]string, 0, len(rows))
	for _, r := range rows {
		names = append(names, asString(r["group-name"]))
	}
	return names, nil
}

// userWithGroups возвращает проекцию пользователя с агрегированным
// списком групп. Поле pass в проекцию не входит.
func userWithGroups(ctx context.Context, db query.DBTX, screenname string) (query.Row, error) {
	row, err := query.One(ctx, db, "user-with-groups", map[string]any{"screenname": screenname})
	if err != nil {
		return nil, fmt.Errorf("ошибка получения пользователя с группами: %w", err)
	}
	if row != nil {
		row["member-of"] = dedupeValues(row["member-of"])
	}
	return row, nil
}

// UpsertUser создаёт или обновляет пользователя в отдельной транзакции.
func (s *Store) UpsertUser(ctx context.Context, user query.Row) (query.Row, error) {
	var result query.Row
	err := s.tx.RunInTx(ctx, func(tx pgx.Tx) error {
		row, err := upsertUser(ctx, tx, user)
		if err != nil {
			return err
		}
		result = row
		return nil
	})
	return result, err
}

// InsertUserWithGroups создаёт пользователя и привязывает его к группам.
// Если вставка не вернула строку, членство не записывается и
// возвращается nil. Результат — проекция с агрегированными группами.
func (s *Store) InsertUserWithGroups(ctx context.Context, user query.Row) (query.Row, error) {
	groups := dedupeStrings(asStringSlice(user["member-of"]))

	var result query.Row
	err := s.tx.RunInTx(ctx, func(tx pgx.Tx) error {
		row, err := query.One(ctx, tx, "user-insert", user)
		if err != nil {
			if isUniqueViolation(err) {
				return fmt.Errorf("%w: пользователь уже существует", ErrConflict)
			}
			return fmt.Errorf("ошибка создания пользователя: %w", err)
		}
		if row == nil {
			return nil
		}

		if len(groups) > 0 {
			params := map[string]any{"user-id": row["id"], "groups": groups}
			if _, err := query.Many(ctx, tx, "user-groups-add", params); err != nil {
				return fmt.Errorf("ошибка привязки к группам: %w", err)
			}
		}

		result, err = userWithGroups(ctx, tx, asString(row["screenname"]))
		return err
	})
	return result, err
}

// ReconcileUserGroups создаёт либо обновляет пользователя и приводит его
// членство ровно к объединению user["member-of"] и memberships.
// Разность считается против снимка членства до любых записей;
// у нового пользователя снимок пуст, поэтому снимать нечего.
// Возвращает проекцию пользователя с агрегированными группами.
func (s *Store) ReconcileUserGroups(ctx context.Context, user query.Row, memberships []string) (query.Row, error) {
	desired := dedupeStrings(append(asStringSlice(user["member-of"]), memberships...))

	var result query.Row
	err := s.tx.RunInTx(ctx, func(tx pgx.Tx) error {
		var current []string
		existing, err := query.One(ctx, tx, "user-by-screenname", user)
		if err != nil {
			return fmt.Errorf("ошибка поиска пользователя: %w", err)
		}
		if existing != nil {
			current, err = memberOf(ctx, tx, asInt64(existing["id"]))
			if err != nil {
				return err
			}
		}

		row, err := upsertUser(ctx, tx, user)
		if err != nil {
			return err
		}
		if row == nil {
			return nil
		}
		userID := asInt64(row["id"])

		if del := diffStrings(current, desired); len(del) > 0 {
			params := map[string]any{"user-id": userID, "groups": del}
			if _, err := query.Many(ctx, tx, "user-groups-remove", params); err != nil {
				return fmt.Errorf("ошибка снятия членства: %w", err)
			}
		}
		if add := diffStrings(desired, current); len(add) > 0 {
			params := map[string]any{"user-id": userID, "groups": add}
			if _, err := query.Many(ctx, tx, "user-groups-add", params); err != nil {
				return fmt.Errorf("ошибка добавления членства: %w", err)
			}
		}

		result, err = userWithGroups(ctx, tx, asString(row["screenname"]))
		return err
	})
	return result, err
}
