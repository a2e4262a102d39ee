package store

// migration holds a single schema migration with its target version and SQL.
type migration struct {
	version int
	sql     string
}

// migrations is the ordered list of schema migrations.
// Each migration's version must be sequential starting from 1.
var migrations = []migration{
	{
		version: 1,
		sql: `
CREATE TABLE IF NOT EXISTS schema_version (
	version INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS users (
	id         TEXT PRIMARY KEY,
	name       TEXT NOT NULL DEFAULT '',
	email      TEXT NOT NULL DEFAULT '',
	created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE TABLE IF NOT EXISTS roles (
	id         TEXT PRIMARY KEY,
	name       TEXT NOT NULL,
	created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE TABLE IF NOT EXISTS user_roles (
	user_id TEXT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
	role_id TEXT NOT NULL REFERENCES roles(id) ON DELETE CASCADE,
	PRIMARY KEY (user_id, role_id)
);

CREATE TABLE IF NOT EXISTS task_instances (
	id                TEXT PRIMARY KEY,
	template_id       TEXT,
	title             TEXT NOT NULL DEFAULT '',
	notes             TEXT NOT NULL DEFAULT '',
	completion_reason TEXT NOT NULL DEFAULT '',
	for_date          TEXT NOT NULL,
	due_at            TEXT,
	assignee_user_id  TEXT,
	assignee_role_id  TEXT,
	status            TEXT NOT NULL DEFAULT 'pending',
	completed_at      DATETIME,
	created_at        DATETIME NOT NULL,
	updated_at        DATETIME NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_task_instances_for_date ON task_instances(for_date);
CREATE INDEX IF NOT EXISTS idx_task_instances_assignee_user ON task_instances(assignee_user_id);
CREATE INDEX IF NOT EXISTS idx_task_instances_assignee_role ON task_instances(assignee_role_id);

CREATE TABLE IF NOT EXISTS task_changes (
	seq        INTEGER PRIMARY KEY AUTOINCREMENT,
	task_id    TEXT NOT NULL,
	for_date   TEXT NOT NULL,
	kind       TEXT NOT NULL CHECK(kind IN ('created', 'updated', 'deleted')),
	payload    TEXT NOT NULL,
	created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE INDEX IF NOT EXISTS idx_task_changes_for_date_seq ON task_changes(for_date, seq);

INSERT INTO schema_version (version) VALUES (1);
`,
	},
	{
		version: 2,
		sql: `
CREATE TABLE IF NOT EXISTS task_templates (
	id               TEXT PRIMARY KEY,
	title            TEXT NOT NULL,
	default_notes    TEXT NOT NULL DEFAULT '',
	due_at           TEXT,
	assignee_user_id TEXT,
	assignee_role_id TEXT,
	created_at       DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE UNIQUE INDEX IF NOT EXISTS idx_task_instances_template_day
	ON task_instances(template_id, for_date) WHERE template_id IS NOT NULL;

INSERT INTO schema_version (version) VALUES (2);
`,
	},
}
