package pgstore

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"
)

// schema is applied on startup. Every statement is idempotent.
var schema = []string{
	`CREATE TABLE IF NOT EXISTS users (
		id           BIGSERIAL PRIMARY KEY,
		handle       TEXT NOT NULL UNIQUE,
		display_name TEXT NOT NULL UNIQUE,
		pass_hash    TEXT NOT NULL,
		staff        BOOLEAN NOT NULL DEFAULT FALSE,
		created_at   TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,
	`CREATE TABLE IF NOT EXISTS teams (
		id           BIGSERIAL PRIMARY KEY,
		name         TEXT NOT NULL UNIQUE,
		creator_id   BIGINT NOT NULL UNIQUE REFERENCES users(id) ON DELETE CASCADE,
		complete     BOOLEAN NOT NULL DEFAULT FALSE,
		member_count INT NOT NULL DEFAULT 0,
		created_at   TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,
	`CREATE TABLE IF NOT EXISTS role_assignments (
		id         BIGSERIAL PRIMARY KEY,
		team_id    BIGINT NOT NULL REFERENCES teams(id) ON DELETE CASCADE,
		user_id    BIGINT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
		role       TEXT NOT NULL CHECK (role IN ('TopLane','MidLane','Jungle','BotLane','Support','Sub1','Sub2')),
		created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
		UNIQUE (team_id, role),
		UNIQUE (team_id, user_id, role)
	)`,
	`CREATE INDEX IF NOT EXISTS role_assignments_user ON role_assignments (user_id)`,
	`CREATE TABLE IF NOT EXISTS invitations (
		id           BIGSERIAL PRIMARY KEY,
		sender_id    BIGINT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
		receiver_id  BIGINT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
		team_id      BIGINT NOT NULL REFERENCES teams(id) ON DELETE CASCADE,
		role         TEXT NOT NULL,
		status       TEXT NOT NULL CHECK (status IN ('Pending','Accepted','Declined')),
		created_at   TIMESTAMPTZ NOT NULL DEFAULT now(),
		responded_at TIMESTAMPTZ
	)`,
	`CREATE UNIQUE INDEX IF NOT EXISTS invitations_pending_role
		ON invitations (team_id, role) WHERE status = 'Pending'`,
	`CREATE UNIQUE INDEX IF NOT EXISTS invitations_pending_receiver
		ON invitations (team_id, receiver_id) WHERE status = 'Pending'`,
	`CREATE TABLE IF NOT EXISTS notifications (
		id         BIGSERIAL PRIMARY KEY,
		user_id    BIGINT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
		message    TEXT NOT NULL,
		created_at TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,
	`CREATE INDEX IF NOT EXISTS notifications_user ON notifications (user_id, id DESC)`,
	`CREATE TABLE IF NOT EXISTS tournaments (
		id         BIGSERIAL PRIMARY KEY,
		title      TEXT NOT NULL,
		created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
		start_time TIMESTAMPTZ NOT NULL,
		end_time   TIMESTAMPTZ NOT NULL,
		team_limit INT NOT NULL DEFAULT 0,
		CHECK (start_time < end_time)
	)`,
	`CREATE TABLE IF NOT EXISTS registrations (
		id            BIGSERIAL PRIMARY KEY,
		team_id       BIGINT NOT NULL REFERENCES teams(id) ON DELETE CASCADE,
		tournament_id BIGINT NOT NULL REFERENCES tournaments(id) ON DELETE CASCADE,
		created_at    TIMESTAMPTZ NOT NULL DEFAULT now(),
		UNIQUE (team_id, tournament_id)
	)`,
	`CREATE TABLE IF NOT EXISTS fixtures (
		id             BIGSERIAL PRIMARY KEY,
		tournament_id  BIGINT NOT NULL REFERENCES tournaments(id) ON DELETE CASCADE,
		scheduled_at   TIMESTAMPTZ NOT NULL,
		team_1_id      BIGINT NOT NULL REFERENCES teams(id) ON DELETE CASCADE,
		team_2_id      BIGINT NOT NULL REFERENCES teams(id) ON DELETE CASCADE,
		score_1        INT NOT NULL DEFAULT 0,
		score_2        INT NOT NULL DEFAULT 0,
		image_1        TEXT NOT NULL DEFAULT '',
		image_2        TEXT NOT NULL DEFAULT '',
		evidence_key_1 TEXT NOT NULL DEFAULT '',
		evidence_key_2 TEXT NOT NULL DEFAULT '',
		votes_1        INT NOT NULL DEFAULT 0,
		votes_2        INT NOT NULL DEFAULT 0,
		finalized      BOOLEAN NOT NULL DEFAULT FALSE,
		finalized_at   TIMESTAMPTZ,
		CHECK (team_1_id <> team_2_id)
	)`,
	`CREATE INDEX IF NOT EXISTS fixtures_tournament ON fixtures (tournament_id)`,
	`CREATE TABLE IF NOT EXISTS fixture_votes (
		fixture_id BIGINT NOT NULL REFERENCES fixtures(id) ON DELETE CASCADE,
		user_id    BIGINT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
		side       SMALLINT NOT NULL CHECK (side IN (1, 2)),
		created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
		PRIMARY KEY (fixture_id, user_id)
	)`,
	`CREATE TABLE IF NOT EXISTS standings (
		id            BIGSERIAL PRIMARY KEY,
		team_id       BIGINT NOT NULL REFERENCES teams(id) ON DELETE CASCADE,
		tournament_id BIGINT NOT NULL REFERENCES tournaments(id) ON DELETE CASCADE,
		score         INT NOT NULL DEFAULT 0,
		wins          INT NOT NULL DEFAULT 0,
		losses        INT NOT NULL DEFAULT 0,
		draws         INT NOT NULL DEFAULT 0,
		games_played  INT NOT NULL DEFAULT 0,
		registered_at TIMESTAMPTZ NOT NULL DEFAULT now(),
		UNIQUE (team_id, tournament_id)
	)`,
	`CREATE TABLE IF NOT EXISTS logs (
		id         BIGSERIAL PRIMARY KEY,
		actor_id   BIGINT REFERENCES users(id) ON DELETE SET NULL,
		action     TEXT NOT NULL,
		details    TEXT NOT NULL DEFAULT '',
		created_at TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,
}

// Migrate creates any missing tables and indexes.
func Migrate(ctx context.Context, pool *pgxpool.Pool) error {
	for _, stmt := range schema {
		if _, err := pool.Exec(ctx, stmt); err != nil {
			return translate(err, "migrate")
		}
	}
	return nil
}
