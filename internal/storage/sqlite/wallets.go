package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/mmynk/splitledger/internal/models"
	"github.com/mmynk/splitledger/internal/storage"
)

// CreateWallet persists a new wallet. The ID is generated when empty.
func (s *SQLiteStore) CreateWallet(ctx context.Context, w *models.Wallet) error {
	if w.ID == "" {
		w.ID = uuid.New().String()
	}
	if w.CreatedAt == 0 {
		w.CreatedAt = time.Now().Unix()
	}

	_, err := s.q.ExecContext(ctx,
		"INSERT INTO wallets (id, owner_id, name, currency, balance, version, created_at) VALUES (?, ?, ?, ?, ?, ?, ?)",
		w.ID, w.OwnerID, w.Name, w.Currency, w.Balance, w.Version, w.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert wallet: %w", err)
	}
	return nil
}

// GetWallet retrieves a wallet by ID.
func (s *SQLiteStore) GetWallet(ctx context.Context, id string) (*models.Wallet, error) {
	w := &models.Wallet{}
	err := s.q.QueryRowContext(ctx,
		"SELECT id, owner_id, name, currency, balance, version, created_at FROM wallets WHERE id = ?",
		id,
	).Scan(&w.ID, &w.OwnerID, &w.Name, &w.Currency, &w.Balance, &w.Version, &w.CreatedAt)
	if err != nil {
		return nil, notFound(err, "wallet", id)
	}
	return w, nil
}

// ListWallets returns the wallets owned by ownerID, oldest first.
func (s *SQLiteStore) ListWallets(ctx context.Context, ownerID string) ([]models.Wallet, error) {
	rows, err := s.q.QueryContext(ctx,
		"SELECT id, owner_id, name, currency, balance, version, created_at FROM wallets WHERE owner_id = ? ORDER BY created_at, id",
		ownerID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list wallets: %w", err)
	}
	defer rows.Close()

	var wallets []models.Wallet
	for rows.Next() {
		var w models.Wallet
		if err := rows.Scan(&w.ID, &w.OwnerID, &w.Name, &w.Currency, &w.Balance, &w.Version, &w.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan wallet: %w", err)
		}
		wallets = append(wallets, w)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate wallets: %w", err)
	}
	return wallets, nil
}

// UpdateWalletBalance is a compare-and-swap on the wallet version.
func (s *SQLiteStore) UpdateWalletBalance(ctx context.Context, w *models.Wallet) error {
	res, err := s.q.ExecContext(ctx,
		"UPDATE wallets SET balance = ?, version = version + 1 WHERE id = ? AND version = ?",
		w.Balance, w.ID, w.Version,
	)
	if err != nil {
		return fmt.Errorf("failed to update wallet balance: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read rows affected: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("wallet %s at version %d: %w", w.ID, w.Version, storage.ErrVersionConflict)
	}
	w.Version++
	return nil
}

const personalTxColumns = `id, wallet_id, user_id, type, amount, category_id, note, lat, lng, date, created_at, updated_at`

func scanPersonalTx(row rowScanner) (*models.PersonalTransaction, error) {
	t := &models.PersonalTransaction{}
	var lat, lng sql.NullFloat64
	err := row.Scan(&t.ID, &t.WalletID, &t.UserID, &t.Type, &t.Amount, &t.CategoryID, &t.Note,
		&lat, &lng, &t.Date, &t.CreatedAt, &t.UpdatedAt)
	if err != nil {
		return nil, err
	}
	if lat.Valid && lng.Valid {
		t.Location = &models.GeoPoint{Lat: lat.Float64, Lng: lng.Float64}
	}
	return t, nil
}

func locationArgs(p *models.GeoPoint) (sql.NullFloat64, sql.NullFloat64) {
	if p == nil {
		return sql.NullFloat64{}, sql.NullFloat64{}
	}
	return sql.NullFloat64{Float64: p.Lat, Valid: true}, sql.NullFloat64{Float64: p.Lng, Valid: true}
}

// CreatePersonalTransaction persists a wallet transaction. It does not touch
// the wallet balance.
func (s *SQLiteStore) CreatePersonalTransaction(ctx context.Context, t *models.PersonalTransaction) error {
	if t.ID == "" {
		t.ID = uuid.New().String()
	}
	now := time.Now().Unix()
	if t.CreatedAt == 0 {
		t.CreatedAt = now
	}
	if t.UpdatedAt == 0 {
		t.UpdatedAt = t.CreatedAt
	}
	if t.Date == 0 {
		t.Date = t.CreatedAt
	}

	lat, lng := locationArgs(t.Location)
	_, err := s.q.ExecContext(ctx,
		"INSERT INTO personal_transactions ("+personalTxColumns+") VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)",
		t.ID, t.WalletID, t.UserID, t.Type, t.Amount, t.CategoryID, t.Note, lat, lng, t.Date, t.CreatedAt, t.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert personal transaction: %w", err)
	}
	return nil
}

// GetPersonalTransaction retrieves a wallet transaction by ID.
func (s *SQLiteStore) GetPersonalTransaction(ctx context.Context, id string) (*models.PersonalTransaction, error) {
	t, err := scanPersonalTx(s.q.QueryRowContext(ctx,
		"SELECT "+personalTxColumns+" FROM personal_transactions WHERE id = ?", id))
	if err != nil {
		return nil, notFound(err, "personal transaction", id)
	}
	return t, nil
}

// UpdatePersonalTransaction overwrites every mutable field.
func (s *SQLiteStore) UpdatePersonalTransaction(ctx context.Context, t *models.PersonalTransaction) error {
	t.UpdatedAt = time.Now().Unix()
	lat, lng := locationArgs(t.Location)
	res, err := s.q.ExecContext(ctx,
		`UPDATE personal_transactions
		SET wallet_id = ?, type = ?, amount = ?, category_id = ?, note = ?, lat = ?, lng = ?, date = ?, updated_at = ?
		WHERE id = ?`,
		t.WalletID, t.Type, t.Amount, t.CategoryID, t.Note, lat, lng, t.Date, t.UpdatedAt, t.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update personal transaction: %w", err)
	}
	return expectOne(res, "personal transaction", t.ID)
}

// DeletePersonalTransaction removes a wallet transaction row.
func (s *SQLiteStore) DeletePersonalTransaction(ctx context.Context, id string) error {
	res, err := s.q.ExecContext(ctx, "DELETE FROM personal_transactions WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("failed to delete personal transaction: %w", err)
	}
	return expectOne(res, "personal transaction", id)
}

// ListPersonalTransactions returns matching transactions, newest first.
func (s *SQLiteStore) ListPersonalTransactions(ctx context.Context, f storage.PersonalTxFilter) ([]models.PersonalTransaction, error) {
	var where []string
	var args []any
	if f.WalletID != "" {
		where = append(where, "wallet_id = ?")
		args = append(args, f.WalletID)
	}
	if f.UserID != "" {
		where = append(where, "user_id = ?")
		args = append(args, f.UserID)
	}
	if f.Type != "" {
		where = append(where, "type = ?")
		args = append(args, f.Type)
	}
	if f.From != 0 {
		where = append(where, "date >= ?")
		args = append(args, f.From)
	}
	if f.To != 0 {
		where = append(where, "date <= ?")
		args = append(args, f.To)
	}

	query := "SELECT " + personalTxColumns + " FROM personal_transactions"
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	query += " ORDER BY date DESC, created_at DESC, id"

	rows, err := s.q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list personal transactions: %w", err)
	}
	defer rows.Close()

	var txs []models.PersonalTransaction
	for rows.Next() {
		t, err := scanPersonalTx(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan personal transaction: %w", err)
		}
		txs = append(txs, *t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate personal transactions: %w", err)
	}
	return txs, nil
}
