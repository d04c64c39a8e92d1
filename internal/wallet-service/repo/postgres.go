package repo

import (
	"context"
	"database/sql"
	"errors"

	"github.com/google/uuid"
)

// Postgres implementa operações de carteira em banco
type Postgres struct{ db *sql.DB }

func NewPostgres(db *sql.DB) *Postgres { return &Postgres{db: db} }

var (
	ErrInsufficientFunds = errors.New("insufficient funds")
	ErrNotFound          = errors.New("not found")
)

// GetOrCreateWallet retorna o walletId e saldo de um usuário, criando a carteira se não existir
// Usa transação para garantir atomicidade
func (p *Postgres) GetOrCreateWallet(ctx context.Context, userID string) (walletID string, balance int64, err error) {
	tx, err := p.db.BeginTx(ctx, nil)
	if err != nil {
		return "", 0, err
	}
	defer tx.Rollback()

	id, bal, err := getOrCreateTx(ctx, tx, userID)
	if err != nil {
		return "", 0, err
	}

	if err = tx.Commit(); err != nil {
		return "", 0, err
	}
	return id, bal, nil
}

// getOrCreateTx resolve a carteira dentro de uma transação já aberta
func getOrCreateTx(ctx context.Context, tx *sql.Tx, userID string) (string, int64, error) {
	var id string
	var bal int64
	err := tx.QueryRowContext(ctx, `SELECT id, balance_cents FROM wallets WHERE user_id=$1`, userID).Scan(&id, &bal)
	if err == sql.ErrNoRows {
		id = uuid.New().String()
		if _, err = tx.ExecContext(ctx,
			`INSERT INTO wallets(id, user_id, balance_cents, version) VALUES($1,$2,0,1)`,
			id, userID); err != nil {
			return "", 0, err
		}
		return id, 0, nil
	}
	if err != nil {
		return "", 0, err
	}
	return id, bal, nil
}

// Deposit incrementa o saldo da carteira e registra a operação no ledger
// Garante lock pessimista na linha da carteira
func (p *Postgres) Deposit(ctx context.Context, userID string, amount int64, externalRef string) (walletID string, newBalance int64, err error) {
	tx, err := p.db.BeginTx(ctx, nil)
	if err != nil {
		return "", 0, err
	}
	defer tx.Rollback()

	if _, _, err = getOrCreateTx(ctx, tx, userID); err != nil {
		return "", 0, err
	}

	var id string
	if err = tx.QueryRowContext(ctx, `SELECT id FROM wallets WHERE user_id=$1 FOR UPDATE`, userID).Scan(&id); err != nil {
		return "", 0, err
	}

	if _, err = tx.ExecContext(ctx, `UPDATE wallets SET balance_cents = balance_cents + $1, version = version + 1 WHERE id=$2`, amount, id); err != nil {
		return "", 0, err
	}

	if _, err = tx.ExecContext(ctx, `INSERT INTO wallet_ledger(wallet_id, operation_type, amount_cents, description) VALUES($1,'CREDIT',$2,$3)`,
		id, amount, "deposit:"+externalRef); err != nil {
		return "", 0, err
	}

	if err = tx.QueryRowContext(ctx, `SELECT balance_cents FROM wallets WHERE id=$1`, id).Scan(&newBalance); err != nil {
		return "", 0, err
	}

	if err = tx.Commit(); err != nil {
		return "", 0, err
	}
	return id, newBalance, nil
}

// Transfer move amount entre duas contas em uma única transação.
// É a primitiva atômica exigida pelo motor de escrow: ou o valor inteiro sai
// de from e entra em to, ou nada acontece (saldo insuficiente retorna
// ErrInsufficientFunds sem efeito).
//
// As linhas são travadas em ordem determinística de user_id para evitar
// deadlock entre transferências concorrentes em sentidos opostos.
func (p *Postgres) Transfer(ctx context.Context, from, to string, amount int64, externalRef string) error {
	tx, err := p.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	// cria as carteiras que ainda não existem (destino pode ser conta nova,
	// ex.: primeira vez que um vencedor recebe payout)
	if _, _, err = getOrCreateTx(ctx, tx, from); err != nil {
		return err
	}
	if _, _, err = getOrCreateTx(ctx, tx, to); err != nil {
		return err
	}

	first, second := from, to
	if second < first {
		first, second = second, first
	}
	ids := map[string]string{}
	for _, u := range []string{first, second} {
		var id string
		if err = tx.QueryRowContext(ctx, `SELECT id FROM wallets WHERE user_id=$1 FOR UPDATE`, u).Scan(&id); err != nil {
			return err
		}
		ids[u] = id
	}

	var fromBalance int64
	if err = tx.QueryRowContext(ctx, `SELECT balance_cents FROM wallets WHERE id=$1`, ids[from]).Scan(&fromBalance); err != nil {
		return err
	}
	if fromBalance < amount {
		return ErrInsufficientFunds
	}

	if _, err = tx.ExecContext(ctx, `UPDATE wallets SET balance_cents = balance_cents - $1, version = version + 1 WHERE id=$2`, amount, ids[from]); err != nil {
		return err
	}
	if _, err = tx.ExecContext(ctx, `UPDATE wallets SET balance_cents = balance_cents + $1, version = version + 1 WHERE id=$2`, amount, ids[to]); err != nil {
		return err
	}

	if _, err = tx.ExecContext(ctx, `INSERT INTO wallet_ledger(wallet_id, operation_type, amount_cents, description) VALUES($1,'DEBIT',$2,$3)`,
		ids[from], amount, "transfer-out:"+externalRef); err != nil {
		return err
	}
	if _, err = tx.ExecContext(ctx, `INSERT INTO wallet_ledger(wallet_id, operation_type, amount_cents, description) VALUES($1,'CREDIT',$2,$3)`,
		ids[to], amount, "transfer-in:"+externalRef); err != nil {
		return err
	}

	return tx.Commit()
}
