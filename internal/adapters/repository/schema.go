package repository

const sqliteSchema = `
CREATE TABLE IF NOT EXISTS members (
	id             INTEGER PRIMARY KEY AUTOINCREMENT,
	handle_key     TEXT NOT NULL UNIQUE,
	handle         TEXT NOT NULL,
	display_name   TEXT NOT NULL DEFAULT '',
	avatar_url     TEXT NOT NULL DEFAULT '',
	role_tags      TEXT NOT NULL DEFAULT '',
	posts_count    INTEGER NOT NULL DEFAULT 0,
	likes_total    INTEGER NOT NULL DEFAULT 0,
	replies_total  INTEGER NOT NULL DEFAULT 0,
	retweets_total INTEGER NOT NULL DEFAULT 0,
	quotes_total   INTEGER NOT NULL DEFAULT 0,
	views_total    INTEGER NOT NULL DEFAULT 0
);

CREATE TABLE IF NOT EXISTS valentines (
	id          INTEGER PRIMARY KEY AUTOINCREMENT,
	note_id     TEXT NOT NULL UNIQUE,
	from_handle TEXT NOT NULL,
	to_key      TEXT NOT NULL,
	to_handle   TEXT NOT NULL,
	message     TEXT NOT NULL,
	sent_at_ns  INTEGER NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_valentines_to_sent ON valentines(to_key, sent_at_ns DESC, id DESC);
`
