package store

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"supportdesk/internal/query"
)

// SupportIssue возвращает обращение с метками и вложениями и атомарно
// увеличивает счётчик просмотров в той же транзакции. Агрегирующий join
// может вернуть дубликаты — tags и files приводятся к семантике множества.
// Если обращения нет — возвращается nil без ошибки.
func (s *Store) SupportIssue(ctx context.Context, id int64) (query.Row, error) {
	var result query.Row
	err := s.tx.RunInTx(ctx, func(tx pgx.Tx) error {
		issue, err := query.One(ctx, tx, "support-issue", map[string]any{"id": id})
		if err != nil {
			return err
		}
		if issue == nil {
			return nil
		}

		issue["tags"] = dedupeValues(issue["tags"])
		issue["files"] = dedupeValues(issue["files"])

		views, err := query.One(ctx, tx, "views-increment", map[string]any{"id": id})
		if err != nil {
			return err
		}
		for k, v := range views {
			issue[k] = v
		}

		result = issue
		return nil
	})
	return result, err
}

// CreateMissingTags создаёт метки из desired, которых ещё нет в БД:
// вставляется ровно разность desired − known. Создание идемпотентно,
// порядок вставки значения не имеет.
func CreateMissingTags(ctx context.Context, db query.DBTX, desired []string) error {
	desired = dedupeStrings(desired)
	if len(desired) == 0 {
		return nil
	}

	rows, err := query.Many(ctx, db, "tags-existing", map[string]any{"tags": desired})
	if err != nil {
		return fmt.Errorf("ошибка получения существующих меток: %w", err)
	}
	known := make([]string, 0, len(rows))
	for _, r := range rows {
		known = append(known, asString(r["tag"]))
	}

	missing := diffStrings(desired, known)
	if len(missing) == 0 {
		return nil
	}

	if _, err := query.Many(ctx, db, "tags-create", map[string]any{"tags": missing}); err != nil {
		return fmt.Errorf("ошибка создания меток: %w", err)
	}
	return nil
}

// ResetIssueTags приводит метки обращения ровно к желаемому набору:
// создаёт недостающие метки, снимает все текущие связи и ставит новые.
// Выполняется на транзакции вызывающей операции — конкурентный читатель
// не увидит обращение без меток.
func ResetIssueTags(ctx context.Context, db query.DBTX, issueID int64, tags []string) error {
	tags = dedupeStrings(tags)

	if err := CreateMissingTags(ctx, db, tags); err != nil {
		return err
	}
	if _, err := query.Many(ctx, db, "issue-tags-clear", map[string]any{"id": issueID}); err != nil {
		return fmt.Errorf("ошибка очистки связей меток: %w", err)
	}
	if len(tags) == 0 {
		return nil
	}
	if _, err := query.Many(ctx, db, "issue-tags-add", map[string]any{"id": issueID, "tags": tags}); err != nil {
		return fmt.Errorf("ошибка привязки меток: %w", err)
	}
	return nil
}

// CreateIssueWithTags создаёт обращение с метками от имени пользователя.
// Проверка членства в группе выполняется первой, в той же транзакции:
// при отказе не происходит никаких записей и возвращается nil.
// Возвращает строку с идентификатором нового обращения.
func (s *Store) CreateIssueWithTags(ctx context.Context, userID int64, issue query.Row) (query.Row, error) {
	groupID := asInt64(issue["group-id"])
	tags := asStringSlice(issue["tags"])

	var result query.Row
	err := s.tx.RunInTx(ctx, func(tx pgx.Tx) error {
		allowed, err := CanAccessGroup(ctx, tx, userID, groupID)
		if err != nil {
			return err
		}
		if !allowed {
			return nil
		}

		// Метки не объявлены параметром issue-insert и в запись не попадают
		row, err := query.One(ctx, tx, "issue-insert", issue)
		if err != nil {
			if isUniqueViolation(err) {
				return fmt.Errorf("%w: обращение уже существует", ErrConflict)
			}
			return fmt.Errorf("ошибка создания обращения: %w", err)
		}
		if row == nil {
			return nil
		}

		if err := ResetIssueTags(ctx, tx, asInt64(row["id"]), tags); err != nil {
			return err
		}

		result = row
		return nil
	})
	return result, err
}

// UpdateIssueWithTags обновляет поля обращения и приводит его метки
// к желаемому набору. Гейт тот же, что и при создании; при отказе —
// nil и никаких записей.
func (s *Store) UpdateIssueWithTags(ctx context.Context, userID int64, issue query.Row) (query.Row, error) {
	issueID := asInt64(issue["id"])
	tags := asStringSlice(issue["tags"])

	var result query.Row
	err := s.tx.RunInTx(ctx, func(tx pgx.Tx) error {
		allowed, err := CanAccessIssue(ctx, tx, userID, issueID)
		if err != nil {
			return err
		}
		if !allowed {
			return nil
		}

		if err := ResetIssueTags(ctx, tx, issueID, tags); err != nil {
			return err
		}

		row, err := query.One(ctx, tx, "issue-update", issue)
		if err != nil {
			return fmt.Errorf("ошибка обновления обращения: %w", err)
		}
		result = row
		return nil
	})
	return result, err
}

// AttachIssueFile регистрирует вложение обращения. Идентификатор
// вложения генерируется на стороне приложения. Гейт тот же, что и
// у остальных операций над обращением: при отказе — nil без записей.
func (s *Store) AttachIssueFile(ctx context.Context, userID, issueID int64, filename, contentType string) (query.Row, error) {
	var result query.Row
	err := s.tx.RunInTx(ctx, func(tx pgx.Tx) error {
		allowed, err := CanAccessIssue(ctx, tx, userID, issueID)
		if err != nil {
			return err
		}
		if !allowed {
			return nil
		}

		row, err := query.One(ctx, tx, "issue-file-insert", map[string]any{
			"id":           uuid.New().String(),
			"issue-id":     issueID,
			"filename":     filename,
			"content-type": contentType,
		})
		if err != nil {
			return fmt.Errorf("ошибка регистрации вложения: %w", err)
		}
		result = row
		return nil
	})
	return result, err
}

// DeleteIssue удаляет обращение вместе с зависимыми записями:
// сначала вложения, затем связи меток, затем само обращение
// (зависимые строки раньше родительской).
func (s *Store) DeleteIssue(ctx context.Context, issueID int64) error {
	return s.tx.RunInTx(ctx, func(tx pgx.Tx) error {
		params := map[string]any{"id": issueID}
		if _, err := query.Many(ctx, tx, "issue-files-delete", params); err != nil {
			return fmt.Errorf("ошибка удаления вложений: %w", err)
		}
		if _, err := query.Many(ctx, tx, "issue-tags-clear", params); err != nil {
			return fmt.Errorf("ошибка удаления связей меток: %w", err)
		}
		if _, err := query.Many(ctx, tx, "issue-delete", params); err != nil {
			return fmt.Errorf("ошибка удаления обращения: %w", err)
		}
		return nil
	})
}

// RunIfIssueVisible выполняет переданную операцию чтения, только если
// пользователь имеет доступ к обращению. Проверка и чтение выполняются
// в одной транзакции и видят один снимок данных. При отказе — nil.
func (s *Store) RunIfIssueVisible(
	ctx context.Context,
	userID, issueID int64,
	op func(ctx context.Context, db query.DBTX) (any, error),
) (any, error) {
	var result any
	err := s.tx.RunInTx(ctx, func(tx pgx.Tx) error {
		allowed, err := CanAccessIssue(ctx, tx, userID, issueID)
		if err != nil {
			return err
		}
		if !allowed {
			return nil
		}

		out, err := op(ctx, tx)
		if err != nil {
			return err
		}
		result = out
		return nil
	})
	return result, err
}
