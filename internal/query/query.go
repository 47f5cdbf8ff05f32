// Пакет query — выполнение именованных операций над PostgreSQL.
// Каждая операция принимает карту параметров и возвращает одну строку
// или набор строк; результаты проходят через кодек типов и нормализацию
// ключей к kebab-case. Это единственная точка приведения результатов:
// ни один вызов именованной операции её не обходит.
package query

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgtype"

	"supportdesk/internal/pgtypes"
)

// Row — строка результата в каноническом виде: kebab-case ключи,
// канонические значения.
type Row = map[string]any

// DBTX — интерфейс для выполнения SQL-запросов.
// Реализуется как *pgxpool.Pool, так и pgx.Tx, что позволяет
// выполнять именованные операции как внутри, так и вне транзакций.
type DBTX interface {
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// Запасная карта типов для случаев, когда соединение недоступно
// (стандартные OID PostgreSQL).
var defaultTypeMap = pgtype.NewMap()

// One выполняет именованную операцию и возвращает не более одной строки.
// Если строк нет — возвращает nil без ошибки.
func One(ctx context.Context, db DBTX, name string, params map[string]any) (Row, error) {
	rows, err := runStatement(ctx, db, name, params)
	if err != nil {
		return nil, err
	}
	projected, err := ProjectRows(rows)
	if err != nil {
		return nil, fmt.Errorf("операция %s: %w", name, err)
	}
	if len(projected) == 0 {
		return nil, nil
	}
	return projected[0], nil
}

// Many выполняет именованную операцию и возвращает все строки результата
// (возможно, пустой срез).
func Many(ctx context.Context, db DBTX, name string, params map[string]any) ([]Row, error) {
	rows, err := runStatement(ctx, db, name, params)
	if err != nil {
		return nil, err
	}
	projected, err := ProjectRows(rows)
	if err != nil {
		return nil, fmt.Errorf("операция %s: %w", name, err)
	}
	return projected, nil
}

// runStatement находит операцию в реестре, связывает параметры
// и выполняет запрос.
func runStatement(ctx context.Context, db DBTX, name string, params map[string]any) (pgx.Rows, error) {
	stmt, ok := statements[name]
	if !ok {
		return nil, fmt.Errorf("неизвестная именованная операция: %q", name)
	}

	args, err := bindArgs(stmt, params)
	if err != nil {
		return nil, fmt.Errorf("операция %s: %w", name, err)
	}

	rows, err := db.Query(ctx, stmt.SQL, args...)
	if err != nil {
		return nil, fmt.Errorf("ошибка выполнения операции %s: %w", name, err)
	}
	return rows, nil
}

// bindArgs связывает карту параметров с позиционными аргументами запроса
// в порядке, объявленном в реестре. Кодирование каждого значения зависит
// от объявленного типа параметра (см. pgtypes.BindValue).
func bindArgs(stmt Statement, params map[string]any) ([]any, error) {
	args := make([]any, len(stmt.Params))
	for i, p := range stmt.Params {
		bound, err := pgtypes.BindValue(p.Type, params[p.Name])
		if err != nil {
			return nil, fmt.Errorf("параметр %s: %w", p.Name, err)
		}
		args[i] = bound
	}
	return args, nil
}

// ProjectRows приводит результат запроса к каноническому виду:
// значение каждой колонки проходит через кодек типов, после чего все
// ключи (включая вложенные в JSON-значения) переписываются в kebab-case.
func ProjectRows(rows pgx.Rows) ([]Row, error) {
	defer rows.Close()

	fields := rows.FieldDescriptions()

	typeMap := defaultTypeMap
	if conn := rows.Conn(); conn != nil {
		typeMap = conn.TypeMap()
	}

	// Имена типов колонок; для неизвестных OID остаётся пустая строка,
	// и кодек пропускает значение без преобразования.
	typeNames := make([]string, len(fields))
	for i, fd := range fields {
		if dt, ok := typeMap.TypeForOID(fd.DataTypeOID); ok {
			typeNames[i] = dt.Name
		}
	}

	result := make([]Row, 0)
	for rows.Next() {
		values, err := rows.Values()
		if err != nil {
			return nil, fmt.Errorf("ошибка чтения строки: %w", err)
		}

		row := make(map[string]any, len(fields))
		for i, fd := range fields {
			decoded, err := pgtypes.DecodeColumn(typeNames[i], values[i])
			if err != nil {
				return nil, fmt.Errorf("колонка %s: %w", fd.Name, err)
			}
			row[fd.Name] = decoded
		}

		result = append(result, pgtypes.KebabizeDeep(row).(map[string]any))
	}
	return result, rows.Err()
}
