package query

// Param — объявление параметра именованной операции.
// Имя задаётся в соглашении приложения (kebab-case), тип — именем типа
// PostgreSQL; у массивных типов имя начинается с "_". Объявленный тип
// нужен кодеку в момент связывания: по нему срез уходит либо нативным
// массивом, либо JSONB.
type Param struct {
	Name string
	Type string
}

// Statement — именованная операция: текст SQL и упорядоченный список
// параметров, соответствующий позиционным аргументам $1..$N.
type Statement struct {
	SQL    string
	Params []Param
}

// Реестр именованных операций. Слой не интерпретирует SQL —
// только связывает параметры и приводит результаты.
var statements = map[string]Statement{
	// --- Обращения ---

	"support-issue": {
		SQL: `
			SELECT i.id, i.group_id, i.reporter_id, i.title, i.summary, i.detail,
			       i.fields, i.views, i.created_at, i.updated_at,
			       array_agg(t.tag::text) AS tags,
			       array_agg(f.id::text) AS files
			FROM issues i
			LEFT JOIN issue_tags it ON it.issue_id = i.id
			LEFT JOIN tags t ON t.id = it.tag_id
			LEFT JOIN issue_files f ON f.issue_id = i.id
			WHERE i.id = $1
			GROUP BY i.id`,
		Params: []Param{{"id", "int8"}},
	},

	"views-increment": {
		SQL: `
			UPDATE issues
			SET views = views + 1
			WHERE id = $1
			RETURNING views`,
		Params: []Param{{"id", "int8"}},
	},

	"issue-insert": {
		SQL: `
			INSERT INTO issues (group_id, reporter_id, title, summary, detail, fields)
			VALUES ($1, $2, $3, $4, $5, COALESCE($6, '{}'::jsonb))
			RETURNING id`,
		Params: []Param{
			{"group-id", "int8"},
			{"reporter-id", "int8"},
			{"title", "text"},
			{"summary", "text"},
			{"detail", "text"},
			{"fields", "jsonb"},
		},
	},

	"issue-update": {
		SQL: `
			UPDATE issues
			SET title = $2, summary = $3, detail = $4,
			    fields = COALESCE($5, fields),
			    updated_at = now()
			WHERE id = $1
			RETURNING id`,
		Params: []Param{
			{"id", "int8"},
			{"title", "text"},
			{"summary", "text"},
			{"detail", "text"},
			{"fields", "jsonb"},
		},
	},

	"issue-delete": {
		SQL:    `DELETE FROM issues WHERE id = $1`,
		Params: []Param{{"id", "int8"}},
	},

	"issue-file-insert": {
		SQL: `
			INSERT INTO issue_files (id, issue_id, filename, content_type)
			VALUES ($1, $2, $3, $4)
			RETURNING id::text AS id, issue_id, filename, content_type, created_at`,
		Params: []Param{
			{"id", "uuid"},
			{"issue-id", "int8"},
			{"filename", "text"},
			{"content-type", "text"},
		},
	},

	"issue-files-delete": {
		SQL:    `DELETE FROM issue_files WHERE issue_id = $1`,
		Params: []Param{{"id", "int8"}},
	},

	"issue-group": {
		SQL:    `SELECT group_id FROM issues WHERE id = $1`,
		Params: []Param{{"id", "int8"}},
	},

	// --- Метки ---

	"tags-existing": {
		SQL:    `SELECT tag::text AS tag FROM tags WHERE tag = ANY($1::text[])`,
		Params: []Param{{"tags", "_text"}},
	},

	"tags-create": {
		SQL: `
			INSERT INTO tags (tag)
			SELECT unnest($1::text[])
			ON CONFLICT (tag) DO NOTHING`,
		Params: []Param{{"tags", "_text"}},
	},

	"issue-tags-clear": {
		SQL:    `DELETE FROM issue_tags WHERE issue_id = $1`,
		Params: []Param{{"id", "int8"}},
	},

	"issue-tags-add": {
		SQL: `
			INSERT INTO issue_tags (issue_id, tag_id)
			SELECT $1, t.id FROM tags t WHERE t.tag = ANY($2::text[])
			ON CONFLICT DO NOTHING`,
		Params: []Param{{"id", "int8"}, {"tags", "_text"}},
	},

	// --- Пользователи и группы ---

	"user-by-screenname": {
		SQL: `
			SELECT id, screenname, pass, admin, is_active, last_login
			FROM users
			WHERE screenname = $1`,
		Params: []Param{{"screenname", "citext"}},
	},

	"user-with-groups": {
		SQL: `
			SELECT u.id, u.screenname, u.admin, u.is_active, u.last_login,
			       array_agg(g.name::text) AS member_of
			FROM users u
			LEFT JOIN user_groups ug ON ug.user_id = u.id
			LEFT JOIN groups g ON g.id = ug.group_id
			WHERE u.screenname = $1
			GROUP BY u.id`,
		Params: []Param{{"screenname", "citext"}},
	},

	"user-insert": {
		SQL: `
			INSERT INTO users (screenname, pass, admin, is_active)
			VALUES ($1, $2, $3, $4)
			RETURNING id, screenname, pass, admin, is_active, last_login`,
		Params: []Param{
			{"screenname", "citext"},
			{"pass", "text"},
			{"admin", "bool"},
			{"is-active", "bool"},
		},
	},

	// Обновление без смены пароля (секрет сохраняется)
	"user-update": {
		SQL: `
			UPDATE users
			SET admin = $2, is_active = $3, last_login = COALESCE($4, last_login)
			WHERE screenname = $1
			RETURNING id, screenname, pass, admin, is_active, last_login`,
		Params: []Param{
			{"screenname", "citext"},
			{"admin", "bool"},
			{"is-active", "bool"},
			{"last-login", "timestamptz"},
		},
	},

	// Обновление со сменой пароля
	"user-update-pass": {
		SQL: `
			UPDATE users
			SET pass = $2, admin = $3, is_active = $4,
			    last_login = COALESCE($5, last_login)
			WHERE screenname = $1
			RETURNING id, screenname, pass, admin, is_active, last_login`,
		Params: []Param{
			{"screenname", "citext"},
			{"pass", "text"},
			{"admin", "bool"},
			{"is-active", "bool"},
			{"last-login", "timestamptz"},
		},
	},

	"user-groups-add": {
		SQL: `
			INSERT INTO user_groups (user_id, group_id)
			SELECT $1, g.id FROM groups g WHERE g.name = ANY($2::text[])
			ON CONFLICT DO NOTHING`,
		Params: []Param{{"user-id", "int8"}, {"groups", "_text"}},
	},

	"user-groups-remove": {
		SQL: `
			DELETE FROM user_groups
			WHERE user_id = $1
			  AND group_id IN (SELECT id FROM groups WHERE name = ANY($2::text[]))`,
		Params: []Param{{"user-id", "int8"}, {"groups", "_text"}},
	},

	"user-member-of": {
		SQL: `
			SELECT g.name::text AS group_name
			FROM groups g
			JOIN user_groups ug ON ug.group_id = g.id
			WHERE ug.user_id = $1
			ORDER BY g.name`,
		Params: []Param{{"user-id", "int8"}},
	},

	"user-group-ids": {
		SQL:    `SELECT group_id FROM user_groups WHERE user_id = $1`,
		Params: []Param{{"user-id", "int8"}},
	},
}
