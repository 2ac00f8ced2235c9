package store

import (
	"context"
	"database/sql"
	"fmt"

	"medichat/api/internal/chat"
	"medichat/api/internal/script"
)

// HistoryRepo is the Postgres-backed chat.HistoryStore.
type HistoryRepo struct{ DB *sql.DB }

func NewHistoryRepo(db *sql.DB) *HistoryRepo { return &HistoryRepo{DB: db} }

var _ chat.HistoryStore = (*HistoryRepo)(nil)

const schema = `
create table if not exists chat_history (
    id         bigserial primary key,
    chat_id    text        not null,
    role       text        not null,
    content    text        not null,
    script     text        not null default '',
    stamp      text        not null default '',
    created_at timestamptz not null default now()
);
create index if not exists chat_history_chat_id_idx on chat_history (chat_id, id);`

func (r *HistoryRepo) EnsureSchema(ctx context.Context) error {
	if _, err := r.DB.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("history schema: %w", err)
	}
	return nil
}

// Append inserts e and trims the chat to its newest limit rows in one
// transaction, returning the resulting length.
func (r *HistoryRepo) Append(ctx context.Context, chatID string, e chat.Entry, limit int) (int, error) {
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("history append: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	const ins = `
insert into chat_history(chat_id, role, content, script, stamp, created_at)
values ($1,$2,$3,$4,$5,$6)`
	if _, err := tx.ExecContext(ctx, ins, chatID, e.Role, e.Content, string(e.Script), e.Stamp, e.CreatedAt); err != nil {
		return 0, fmt.Errorf("history append: %w", err)
	}

	if limit > 0 {
		const trim = `
delete from chat_history
where chat_id = $1 and id not in (
    select id from chat_history where chat_id = $1 order by id desc limit $2
)`
		if _, err := tx.ExecContext(ctx, trim, chatID, limit); err != nil {
			return 0, fmt.Errorf("history trim: %w", err)
		}
	}

	var n int
	if err := tx.QueryRowContext(ctx, `select count(*) from chat_history where chat_id = $1`, chatID).Scan(&n); err != nil {
		return 0, fmt.Errorf("history count: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("history commit: %w", err)
	}
	return n, nil
}

// Recent returns up to n newest entries in chronological order; n <= 0
// returns them all.
func (r *HistoryRepo) Recent(ctx context.Context, chatID string, n int) ([]chat.Entry, error) {
	q := `
select role, content, script, stamp, created_at from (
    select id, role, content, script, stamp, created_at
    from chat_history
    where chat_id = $1
    order by id desc
    limit $2
) t order by id`
	args := []any{chatID, n}
	if n <= 0 {
		q = `
select role, content, script, stamp, created_at
from chat_history
where chat_id = $1
order by id`
		args = args[:1]
	}

	rows, err := r.DB.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("history recent: %w", err)
	}
	defer rows.Close()

	var out []chat.Entry
	for rows.Next() {
		var (
			e   chat.Entry
			lbl string
		)
		if err := rows.Scan(&e.Role, &e.Content, &lbl, &e.Stamp, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("history scan: %w", err)
		}
		e.Script, _ = script.ParseLabel(lbl)
		out = append(out, e)
	}
	return out, rows.Err()
}

func (r *HistoryRepo) Count(ctx context.Context, chatID string) (int, error) {
	var n int
	err := r.DB.QueryRowContext(ctx, `select count(*) from chat_history where chat_id = $1`, chatID).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("history count: %w", err)
	}
	return n, nil
}

func (r *HistoryRepo) Clear(ctx context.Context, chatID string) error {
	if _, err := r.DB.ExecContext(ctx, `delete from chat_history where chat_id = $1`, chatID); err != nil {
		return fmt.Errorf("history clear: %w", err)
	}
	return nil
}
