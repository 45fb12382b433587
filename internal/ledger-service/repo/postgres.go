package repo

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/radieske/bettrack/internal/ledger"
)

// Postgres implementa a persistência de apostas em banco Postgres
type Postgres struct{ db *sql.DB }

// NewPostgres retorna uma instância do repositório de apostas
func NewPostgres(db *sql.DB) *Postgres { return &Postgres{db: db} }

const betColumns = `id, name, amount, odds, placed_at, outcome, returns, created_at, updated_at, settled_at`

// Create insere uma nova aposta Pending com returns 0
func (p *Postgres) Create(ctx context.Context, b *ledger.Bet) (string, error) {
	id := uuid.NewString()
	_, err := p.db.ExecContext(ctx, `
		INSERT INTO bets (id, name, amount, odds, placed_at, outcome, returns)
		VALUES ($1, $2, $3, $4, $5, 'Pending', 0)`,
		id, b.Name, b.Amount, b.Odds, b.Date,
	)
	if err != nil {
		return "", fmt.Errorf("insert bet: %w", err)
	}
	return id, nil
}

// ListAll retorna todas as apostas na ordem pedida
func (p *Postgres) ListAll(ctx context.Context, order Order) ([]ledger.Bet, error) {
	q := `SELECT ` + betColumns + ` FROM bets ORDER BY ` + order.orderBy()
	rows, err := p.db.QueryContext(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("list bets: %w", err)
	}
	defer rows.Close()

	var out []ledger.Bet
	for rows.Next() {
		b, err := scanBet(rows)
		if err != nil {
			return nil, fmt.Errorf("scan bet: %w", err)
		}
		out = append(out, b)
	}
	return out, rows.Err()
}

// Get retorna uma aposta pelo id
func (p *Postgres) Get(ctx context.Context, id string) (ledger.Bet, error) {
	if _, err := uuid.Parse(id); err != nil {
		return ledger.Bet{}, ErrNotFound
	}
	row := p.db.QueryRowContext(ctx, `SELECT `+betColumns+` FROM bets WHERE id=$1`, id)
	b, err := scanBet(row)
	if errors.Is(err, sql.ErrNoRows) {
		return ledger.Bet{}, ErrNotFound
	}
	if err != nil {
		return ledger.Bet{}, fmt.Errorf("get bet: %w", err)
	}
	return b, nil
}

// Update aplica uma atualização parcial. Alterar amount ou odds só é
// permitido enquanto a aposta está Pending.
func (p *Postgres) Update(ctx context.Context, id string, patch ledger.BetPatch) error {
	if _, err := uuid.Parse(id); err != nil {
		return ErrNotFound
	}

	var sets []string
	var args []any
	set := func(col string, v any) {
		args = append(args, v)
		sets = append(sets, fmt.Sprintf("%s=$%d", col, len(args)))
	}
	if patch.Name != nil {
		set("name", strings.TrimSpace(*patch.Name))
	}
	if patch.Amount != nil {
		set("amount", *patch.Amount)
	}
	if patch.Odds != nil {
		set("odds", strings.TrimSpace(*patch.Odds))
	}
	if patch.Date != nil {
		set("placed_at", *patch.Date)
	}
	if len(sets) == 0 {
		return nil
	}

	args = append(args, id)
	q := `UPDATE bets SET ` + strings.Join(sets, ", ") + `, updated_at=NOW() WHERE id=$` + fmt.Sprint(len(args))
	if patch.TouchesPayout() {
		q += ` AND outcome='Pending'`
	}

	res, err := p.db.ExecContext(ctx, q, args...)
	if err != nil {
		return fmt.Errorf("update bet: %w", err)
	}
	return p.checkAffected(ctx, res, id)
}

// Settle grava o resultado terminal. Só atualiza apostas ainda Pending,
// então uma segunda liquidação devolve ErrAlreadySettled sem alterar nada.
func (p *Postgres) Settle(ctx context.Context, id string, outcome ledger.Outcome, returns float64) error {
	if _, err := uuid.Parse(id); err != nil {
		return ErrNotFound
	}
	res, err := p.db.ExecContext(ctx, `
		UPDATE bets
		SET outcome=$1, returns=$2, settled_at=NOW(), updated_at=NOW()
		WHERE id=$3 AND outcome='Pending'`,
		string(outcome), returns, id,
	)
	if err != nil {
		return fmt.Errorf("settle bet: %w", err)
	}
	return p.checkAffected(ctx, res, id)
}

// Delete remove uma aposta
func (p *Postgres) Delete(ctx context.Context, id string) error {
	if _, err := uuid.Parse(id); err != nil {
		return ErrNotFound
	}
	res, err := p.db.ExecContext(ctx, `DELETE FROM bets WHERE id=$1`, id)
	if err != nil {
		return fmt.Errorf("delete bet: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete bet: %w", err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

// checkAffected distingue aposta inexistente de aposta já liquidada
// quando um UPDATE guardado não afeta linhas
func (p *Postgres) checkAffected(ctx context.Context, res sql.Result, id string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if n > 0 {
		return nil
	}

	var outcome string
	err = p.db.QueryRowContext(ctx, `SELECT outcome FROM bets WHERE id=$1`, id).Scan(&outcome)
	if errors.Is(err, sql.ErrNoRows) {
		return ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("check bet: %w", err)
	}
	return ErrAlreadySettled
}

type scanner interface {
	Scan(dest ...any) error
}

func scanBet(s scanner) (ledger.Bet, error) {
	var (
		b         ledger.Bet
		outcome   string
		settledAt sql.NullTime
	)
	err := s.Scan(&b.ID, &b.Name, &b.Amount, &b.Odds, &b.Date, &outcome, &b.Returns,
		&b.CreatedAt, &b.UpdatedAt, &settledAt)
	if err != nil {
		return ledger.Bet{}, err
	}
	b.Outcome = ledger.Outcome(outcome)
	if settledAt.Valid {
		t := settledAt.Time.In(time.UTC)
		b.SettledAt = &t
	}
	return b, nil
}
