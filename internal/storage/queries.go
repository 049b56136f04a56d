package storage

import (
	"context"
	"database/sql"
)

// DBTX is satisfied by *sql.DB and *sql.Tx.
type DBTX interface {
	ExecContext(context.Context, string, ...interface{}) (sql.Result, error)
	QueryContext(context.Context, string, ...interface{}) (*sql.Rows, error)
	QueryRowContext(context.Context, string, ...interface{}) *sql.Row
}

func New(db DBTX) *Queries {
	return &Queries{db: db}
}

type Queries struct {
	db DBTX
}

func (q *Queries) WithTx(tx *sql.Tx) *Queries {
	return &Queries{db: tx}
}

const userColumns = `id, username, full_name, email, password_hash, created_at`

func scanUser(row interface{ Scan(...any) error }) (User, error) {
	var u User
	err := row.Scan(&u.ID, &u.Username, &u.FullName, &u.Email, &u.PasswordHash, &u.CreatedAt)
	return u, err
}

const createUser = `INSERT INTO users (` + userColumns + `) VALUES (?, ?, ?, ?, ?, ?)`

func (q *Queries) CreateUser(ctx context.Context, u User) error {
	_, err := q.db.ExecContext(ctx, createUser, u.ID, u.Username, u.FullName, u.Email, u.PasswordHash, u.CreatedAt)
	return err
}

const getUser = `SELECT ` + userColumns + ` FROM users WHERE id = ?`

func (q *Queries) GetUser(ctx context.Context, id string) (User, error) {
	return scanUser(q.db.QueryRowContext(ctx, getUser, id))
}

const getUserByUsername = `SELECT ` + userColumns + ` FROM users WHERE username = ? COLLATE NOCASE`

func (q *Queries) GetUserByUsername(ctx context.Context, username string) (User, error) {
	return scanUser(q.db.QueryRowContext(ctx, getUserByUsername, username))
}

const listUsers = `SELECT ` + userColumns + ` FROM users ORDER BY created_at, rowid`

func (q *Queries) ListUsers(ctx context.Context) ([]User, error) {
	return queryAll(ctx, q.db, scanUser, listUsers)
}

const debtColumns = `id, user_id, name, balance_cents, interest_rate_bp, minimum_payment_cents, due_day, category, frequency, created_at`

func scanDebt(row interface{ Scan(...any) error }) (Debt, error) {
	var d Debt
	err := row.Scan(&d.ID, &d.UserID, &d.Name, &d.BalanceCents, &d.InterestRateBp,
		&d.MinimumPaymentCents, &d.DueDay, &d.Category, &d.Frequency, &d.CreatedAt)
	return d, err
}

const createDebt = `INSERT INTO debts (` + debtColumns + `) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

func (q *Queries) CreateDebt(ctx context.Context, d Debt) error {
	_, err := q.db.ExecContext(ctx, createDebt, d.ID, d.UserID, d.Name, d.BalanceCents, d.InterestRateBp,
		d.MinimumPaymentCents, d.DueDay, d.Category, d.Frequency, d.CreatedAt)
	return err
}

const getDebt = `SELECT ` + debtColumns + ` FROM debts WHERE id = ?`

func (q *Queries) GetDebt(ctx context.Context, id string) (Debt, error) {
	return scanDebt(q.db.QueryRowContext(ctx, getDebt, id))
}

const listDebts = `SELECT ` + debtColumns + ` FROM debts WHERE user_id = ? ORDER BY created_at, rowid`

func (q *Queries) ListDebts(ctx context.Context, userID string) ([]Debt, error) {
	return queryAll(ctx, q.db, scanDebt, listDebts, userID)
}

const updateDebt = `UPDATE debts SET name = ?, balance_cents = ?, interest_rate_bp = ?, minimum_payment_cents = ?,
	due_day = ?, category = ?, frequency = ? WHERE id = ?`

func (q *Queries) UpdateDebt(ctx context.Context, d Debt) error {
	_, err := q.db.ExecContext(ctx, updateDebt, d.Name, d.BalanceCents, d.InterestRateBp, d.MinimumPaymentCents,
		d.DueDay, d.Category, d.Frequency, d.ID)
	return err
}

const deleteDebt = `DELETE FROM debts WHERE id = ?`

func (q *Queries) DeleteDebt(ctx context.Context, id string) error {
	_, err := q.db.ExecContext(ctx, deleteDebt, id)
	return err
}

const paymentColumns = `id, debt_id, user_id, amount_cents, paid_at, kind, created_at`

func scanPayment(row interface{ Scan(...any) error }) (Payment, error) {
	var p Payment
	err := row.Scan(&p.ID, &p.DebtID, &p.UserID, &p.AmountCents, &p.PaidAt, &p.Kind, &p.CreatedAt)
	return p, err
}

const createPayment = `INSERT INTO payments (` + paymentColumns + `) VALUES (?, ?, ?, ?, ?, ?, ?)`

func (q *Queries) CreatePayment(ctx context.Context, p Payment) error {
	_, err := q.db.ExecContext(ctx, createPayment, p.ID, p.DebtID, p.UserID, p.AmountCents, p.PaidAt, p.Kind, p.CreatedAt)
	return err
}

const getPayment = `SELECT ` + paymentColumns + ` FROM payments WHERE id = ?`

func (q *Queries) GetPayment(ctx context.Context, id string) (Payment, error) {
	return scanPayment(q.db.QueryRowContext(ctx, getPayment, id))
}

const listPayments = `SELECT ` + paymentColumns + ` FROM payments WHERE user_id = ? ORDER BY created_at, rowid`

func (q *Queries) ListPayments(ctx context.Context, userID string) ([]Payment, error) {
	return queryAll(ctx, q.db, scanPayment, listPayments, userID)
}

const listPaymentsByDebt = `SELECT ` + paymentColumns + ` FROM payments WHERE debt_id = ? ORDER BY created_at, rowid`

func (q *Queries) ListPaymentsByDebt(ctx context.Context, debtID string) ([]Payment, error) {
	return queryAll(ctx, q.db, scanPayment, listPaymentsByDebt, debtID)
}

const deletePayment = `DELETE FROM payments WHERE id = ?`

func (q *Queries) DeletePayment(ctx context.Context, id string) error {
	_, err := q.db.ExecContext(ctx, deletePayment, id)
	return err
}

const deletePaymentsByDebt = `DELETE FROM payments WHERE debt_id = ?`

func (q *Queries) DeletePaymentsByDebt(ctx context.Context, debtID string) error {
	_, err := q.db.ExecContext(ctx, deletePaymentsByDebt, debtID)
	return err
}

const budgetItemColumns = `id, user_id, name, amount_cents, category, item_type, is_essential, is_fixed, is_protected, created_at`

func scanBudgetItem(row interface{ Scan(...any) error }) (BudgetItem, error) {
	var b BudgetItem
	err := row.Scan(&b.ID, &b.UserID, &b.Name, &b.AmountCents, &b.Category, &b.ItemType,
		&b.IsEssential, &b.IsFixed, &b.IsProtected, &b.CreatedAt)
	return b, err
}

const createBudgetItem = `INSERT INTO budget_items (` + budgetItemColumns + `) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

func (q *Queries) CreateBudgetItem(ctx context.Context, b BudgetItem) error {
	_, err := q.db.ExecContext(ctx, createBudgetItem, b.ID, b.UserID, b.Name, b.AmountCents, b.Category, b.ItemType,
		b.IsEssential, b.IsFixed, b.IsProtected, b.CreatedAt)
	return err
}

const getBudgetItem = `SELECT ` + budgetItemColumns + ` FROM budget_items WHERE id = ?`

func (q *Queries) GetBudgetItem(ctx context.Context, id string) (BudgetItem, error) {
	return scanBudgetItem(q.db.QueryRowContext(ctx, getBudgetItem, id))
}

const listBudgetItems = `SELECT ` + budgetItemColumns + ` FROM budget_items WHERE user_id = ? ORDER BY created_at, rowid`

func (q *Queries) ListBudgetItems(ctx context.Context, userID string) ([]BudgetItem, error) {
	return queryAll(ctx, q.db, scanBudgetItem, listBudgetItems, userID)
}

const updateBudgetItem = `UPDATE budget_items SET name = ?, amount_cents = ?, category = ?, item_type = ?,
	is_essential = ?, is_fixed = ?, is_protected = ? WHERE id = ?`

func (q *Queries) UpdateBudgetItem(ctx context.Context, b BudgetItem) error {
	_, err := q.db.ExecContext(ctx, updateBudgetItem, b.Name, b.AmountCents, b.Category, b.ItemType,
		b.IsEssential, b.IsFixed, b.IsProtected, b.ID)
	return err
}

const deleteBudgetItem = `DELETE FROM budget_items WHERE id = ?`

func (q *Queries) DeleteBudgetItem(ctx context.Context, id string) error {
	_, err := q.db.ExecContext(ctx, deleteBudgetItem, id)
	return err
}

func queryAll[T any](ctx context.Context, db DBTX, scan func(interface{ Scan(...any) error }) (T, error), query string, args ...interface{}) ([]T, error) {
	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	items := []T{}
	for rows.Next() {
		i, err := scan(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	if err := rows.Close(); err != nil {
		return nil, err
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}
