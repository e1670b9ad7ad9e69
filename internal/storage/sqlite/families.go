package sqlite

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/mmynk/splitledger/internal/models"
	"github.com/mmynk/splitledger/internal/storage"
)

// CreateFamily persists a new family.
func (s *SQLiteStore) CreateFamily(ctx context.Context, f *models.Family) error {
	if f.ID == "" {
		f.ID = uuid.New().String()
	}
	if f.CreatedAt == 0 {
		f.CreatedAt = time.Now().Unix()
	}
	_, err := s.q.ExecContext(ctx,
		"INSERT INTO families (id, name, owner_id, currency, created_at) VALUES (?, ?, ?, ?, ?)",
		f.ID, f.Name, f.OwnerID, f.Currency, f.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert family: %w", err)
	}
	return nil
}

// GetFamily retrieves a family by ID.
func (s *SQLiteStore) GetFamily(ctx context.Context, id string) (*models.Family, error) {
	f := &models.Family{}
	err := s.q.QueryRowContext(ctx,
		"SELECT id, name, owner_id, currency, created_at FROM families WHERE id = ?", id,
	).Scan(&f.ID, &f.Name, &f.OwnerID, &f.Currency, &f.CreatedAt)
	if err != nil {
		return nil, notFound(err, "family", id)
	}
	return f, nil
}

// DeleteFamily removes the family row. Members, balance, mirror and
// transactions cascade.
func (s *SQLiteStore) DeleteFamily(ctx context.Context, id string) error {
	res, err := s.q.ExecContext(ctx, "DELETE FROM families WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("failed to delete family: %w", err)
	}
	return expectOne(res, "family", id)
}

// AddFamilyMember inserts a membership row.
func (s *SQLiteStore) AddFamilyMember(ctx context.Context, m *models.Member) error {
	if m.JoinedAt == 0 {
		m.JoinedAt = time.Now().Unix()
	}
	_, err := s.q.ExecContext(ctx,
		"INSERT INTO family_members (family_id, user_id, role, joined_at) VALUES (?, ?, ?, ?)",
		m.FamilyID, m.UserID, m.Role, m.JoinedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert family member: %w", err)
	}
	return nil
}

// GetFamilyMember retrieves one membership.
func (s *SQLiteStore) GetFamilyMember(ctx context.Context, familyID, userID string) (*models.Member, error) {
	m := &models.Member{}
	err := s.q.QueryRowContext(ctx,
		"SELECT family_id, user_id, role, joined_at FROM family_members WHERE family_id = ? AND user_id = ?",
		familyID, userID,
	).Scan(&m.FamilyID, &m.UserID, &m.Role, &m.JoinedAt)
	if err != nil {
		return nil, notFound(err, "family member", userID)
	}
	return m, nil
}

// ListFamilyMembers returns memberships in join order.
func (s *SQLiteStore) ListFamilyMembers(ctx context.Context, familyID string) ([]models.Member, error) {
	rows, err := s.q.QueryContext(ctx,
		"SELECT family_id, user_id, role, joined_at FROM family_members WHERE family_id = ? ORDER BY joined_at, user_id",
		familyID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list family members: %w", err)
	}
	defer rows.Close()

	var members []models.Member
	for rows.Next() {
		var m models.Member
		if err := rows.Scan(&m.FamilyID, &m.UserID, &m.Role, &m.JoinedAt); err != nil {
			return nil, fmt.Errorf("failed to scan family member: %w", err)
		}
		members = append(members, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate family members: %w", err)
	}
	return members, nil
}

// RemoveFamilyMember deletes a membership row.
func (s *SQLiteStore) RemoveFamilyMember(ctx context.Context, familyID, userID string) error {
	res, err := s.q.ExecContext(ctx,
		"DELETE FROM family_members WHERE family_id = ? AND user_id = ?", familyID, userID)
	if err != nil {
		return fmt.Errorf("failed to remove family member: %w", err)
	}
	return expectOne(res, "family member", userID)
}

// CreateFamilyBalance inserts the balance record and its mirror rows.
func (s *SQLiteStore) CreateFamilyBalance(ctx context.Context, b *models.FamilyBalance) error {
	if b.UpdatedAt == 0 {
		b.UpdatedAt = time.Now().Unix()
	}
	return s.atomic(ctx, func(q dbtx) error {
		_, err := q.ExecContext(ctx,
			"INSERT INTO family_balances (family_id, balance, version, updated_at) VALUES (?, ?, ?, ?)",
			b.FamilyID, b.Balance, b.Version, b.UpdatedAt,
		)
		if err != nil {
			return fmt.Errorf("failed to insert family balance: %w", err)
		}
		return writeMirror(ctx, q, b)
	})
}

// GetFamilyBalance retrieves the pool and the member mirror.
func (s *SQLiteStore) GetFamilyBalance(ctx context.Context, familyID string) (*models.FamilyBalance, error) {
	b := models.NewFamilyBalance(familyID)
	err := s.q.QueryRowContext(ctx,
		"SELECT balance, version, updated_at FROM family_balances WHERE family_id = ?", familyID,
	).Scan(&b.Balance, &b.Version, &b.UpdatedAt)
	if err != nil {
		return nil, notFound(err, "family balance", familyID)
	}

	rows, err := s.q.QueryContext(ctx,
		"SELECT user_id, balance FROM family_member_balances WHERE family_id = ?", familyID)
	if err != nil {
		return nil, fmt.Errorf("failed to get member balances: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var userID string
		var bal decimal.Decimal
		if err := rows.Scan(&userID, &bal); err != nil {
			return nil, fmt.Errorf("failed to scan member balance: %w", err)
		}
		b.MemberBalances[userID] = bal
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate member balances: %w", err)
	}
	return b, nil
}

// SaveFamilyBalance is a compare-and-swap on the balance version that also
// replaces the mirror rows.
func (s *SQLiteStore) SaveFamilyBalance(ctx context.Context, b *models.FamilyBalance) error {
	updatedAt := time.Now().Unix()
	err := s.atomic(ctx, func(q dbtx) error {
		res, err := q.ExecContext(ctx,
			"UPDATE family_balances SET balance = ?, version = version + 1, updated_at = ? WHERE family_id = ? AND version = ?",
			b.Balance, updatedAt, b.FamilyID, b.Version,
		)
		if err != nil {
			return fmt.Errorf("failed to update family balance: %w", err)
		}
		n, err := res.RowsAffected()
		if err != nil {
			return fmt.Errorf("failed to read rows affected: %w", err)
		}
		if n == 0 {
			return fmt.Errorf("family balance %s at version %d: %w", b.FamilyID, b.Version, storage.ErrVersionConflict)
		}

		if _, err := q.ExecContext(ctx,
			"DELETE FROM family_member_balances WHERE family_id = ?", b.FamilyID); err != nil {
			return fmt.Errorf("failed to clear member balances: %w", err)
		}
		return writeMirror(ctx, q, b)
	})
	if err != nil {
		return err
	}
	b.Version++
	b.UpdatedAt = updatedAt
	return nil
}

func writeMirror(ctx context.Context, q dbtx, b *models.FamilyBalance) error {
	userIDs := make([]string, 0, len(b.MemberBalances))
	for userID := range b.MemberBalances {
		userIDs = append(userIDs, userID)
	}
	sort.Strings(userIDs)

	for _, userID := range userIDs {
		_, err := q.ExecContext(ctx,
			"INSERT INTO family_member_balances (family_id, user_id, balance) VALUES (?, ?, ?)",
			b.FamilyID, userID, b.MemberBalances[userID],
		)
		if err != nil {
			return fmt.Errorf("failed to insert member balance: %w", err)
		}
	}
	return nil
}

const familyTxColumns = `id, family_id, type, amount, category_id, scope, linked_wallet_id, linked_transaction_id, created_by, note, date, created_at, updated_at`

func scanFamilyTx(row rowScanner) (*models.FamilyTransaction, error) {
	t := &models.FamilyTransaction{}
	err := row.Scan(&t.ID, &t.FamilyID, &t.Type, &t.Amount, &t.CategoryID, &t.Scope,
		&t.LinkedWalletID, &t.LinkedTransactionID, &t.CreatedBy, &t.Note, &t.Date, &t.CreatedAt, &t.UpdatedAt)
	return t, err
}

// CreateFamilyTransaction persists a family entry and its tags.
func (s *SQLiteStore) CreateFamilyTransaction(ctx context.Context, t *models.FamilyTransaction) error {
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

	return s.atomic(ctx, func(q dbtx) error {
		_, err := q.ExecContext(ctx,
			"INSERT INTO family_transactions ("+familyTxColumns+") VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)",
			t.ID, t.FamilyID, t.Type, t.Amount, t.CategoryID, t.Scope,
			t.LinkedWalletID, t.LinkedTransactionID, t.CreatedBy, t.Note, t.Date, t.CreatedAt, t.UpdatedAt,
		)
		if err != nil {
			return fmt.Errorf("failed to insert family transaction: %w", err)
		}
		return writeTags(ctx, q, t.ID, t.Tags)
	})
}

func writeTags(ctx context.Context, q dbtx, txID string, tags []string) error {
	for _, tag := range tags {
		_, err := q.ExecContext(ctx,
			"INSERT OR IGNORE INTO family_transaction_tags (transaction_id, tag) VALUES (?, ?)", txID, tag)
		if err != nil {
			return fmt.Errorf("failed to insert tag: %w", err)
		}
	}
	return nil
}

// GetFamilyTransaction retrieves a family entry with its tags.
func (s *SQLiteStore) GetFamilyTransaction(ctx context.Context, id string) (*models.FamilyTransaction, error) {
	t, err := scanFamilyTx(s.q.QueryRowContext(ctx,
		"SELECT "+familyTxColumns+" FROM family_transactions WHERE id = ?", id))
	if err != nil {
		return nil, notFound(err, "family transaction", id)
	}
	if err := s.attachTags(ctx, []*models.FamilyTransaction{t}); err != nil {
		return nil, err
	}
	return t, nil
}

// GetFamilyTransactionByLinkedTx finds the family entry linked to a wallet transaction.
func (s *SQLiteStore) GetFamilyTransactionByLinkedTx(ctx context.Context, personalTxID string) (*models.FamilyTransaction, error) {
	t, err := scanFamilyTx(s.q.QueryRowContext(ctx,
		"SELECT "+familyTxColumns+" FROM family_transactions WHERE linked_transaction_id = ? LIMIT 1", personalTxID))
	if err != nil {
		return nil, notFound(err, "family transaction linked to", personalTxID)
	}
	if err := s.attachTags(ctx, []*models.FamilyTransaction{t}); err != nil {
		return nil, err
	}
	return t, nil
}

// UpdateFamilyTransaction overwrites the mutable fields and the tag set.
func (s *SQLiteStore) UpdateFamilyTransaction(ctx context.Context, t *models.FamilyTransaction) error {
	t.UpdatedAt = time.Now().Unix()
	return s.atomic(ctx, func(q dbtx) error {
		res, err := q.ExecContext(ctx,
			`UPDATE family_transactions
			SET type = ?, amount = ?, category_id = ?, scope = ?, linked_wallet_id = ?, linked_transaction_id = ?,
			note = ?, date = ?, updated_at = ?
			WHERE id = ?`,
			t.Type, t.Amount, t.CategoryID, t.Scope, t.LinkedWalletID, t.LinkedTransactionID,
			t.Note, t.Date, t.UpdatedAt, t.ID,
		)
		if err != nil {
			return fmt.Errorf("failed to update family transaction: %w", err)
		}
		if err := expectOne(res, "family transaction", t.ID); err != nil {
			return err
		}
		if _, err := q.ExecContext(ctx,
			"DELETE FROM family_transaction_tags WHERE transaction_id = ?", t.ID); err != nil {
			return fmt.Errorf("failed to clear tags: %w", err)
		}
		return writeTags(ctx, q, t.ID, t.Tags)
	})
}

// DeleteFamilyTransaction removes a family entry; tags cascade.
func (s *SQLiteStore) DeleteFamilyTransaction(ctx context.Context, id string) error {
	res, err := s.q.ExecContext(ctx, "DELETE FROM family_transactions WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("failed to delete family transaction: %w", err)
	}
	return expectOne(res, "family transaction", id)
}

// ListFamilyTransactions returns matching entries, newest first.
func (s *SQLiteStore) ListFamilyTransactions(ctx context.Context, f storage.FamilyTxFilter) ([]models.FamilyTransaction, error) {
	var where []string
	var args []any
	if f.FamilyID != "" {
		where = append(where, "family_id = ?")
		args = append(args, f.FamilyID)
	}
	if f.CreatedBy != "" {
		where = append(where, "created_by = ?")
		args = append(args, f.CreatedBy)
	}
	if f.Scope != "" {
		where = append(where, "scope = ?")
		args = append(args, f.Scope)
	}
	if f.Tag != "" {
		where = append(where, "id IN (SELECT transaction_id FROM family_transaction_tags WHERE tag = ?)")
		args = append(args, f.Tag)
	}
	if f.From != 0 {
		where = append(where, "date >= ?")
		args = append(args, f.From)
	}
	if f.To != 0 {
		where = append(where, "date <= ?")
		args = append(args, f.To)
	}

	query := "SELECT " + familyTxColumns + " FROM family_transactions"
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	query += " ORDER BY date DESC, created_at DESC, id"

	rows, err := s.q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list family transactions: %w", err)
	}

	var txs []*models.FamilyTransaction
	for rows.Next() {
		t, err := scanFamilyTx(rows)
		if err != nil {
			rows.Close()
			return nil, fmt.Errorf("failed to scan family transaction: %w", err)
		}
		txs = append(txs, t)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate family transactions: %w", err)
	}

	if err := s.attachTags(ctx, txs); err != nil {
		return nil, err
	}

	out := make([]models.FamilyTransaction, len(txs))
	for i, t := range txs {
		out[i] = *t
	}
	return out, nil
}

// attachTags loads tags for txs in one query.
func (s *SQLiteStore) attachTags(ctx context.Context, txs []*models.FamilyTransaction) error {
	if len(txs) == 0 {
		return nil
	}
	byID := make(map[string]*models.FamilyTransaction, len(txs))
	args := make([]any, len(txs))
	for i, t := range txs {
		byID[t.ID] = t
		args[i] = t.ID
	}

	rows, err := s.q.QueryContext(ctx,
		"SELECT transaction_id, tag FROM family_transaction_tags WHERE transaction_id IN (?"+
			repeatPlaceholder(len(txs)-1)+") ORDER BY transaction_id, tag",
		args...,
	)
	if err != nil {
		return fmt.Errorf("failed to get tags: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var txID, tag string
		if err := rows.Scan(&txID, &tag); err != nil {
			return fmt.Errorf("failed to scan tag: %w", err)
		}
		if t, ok := byID[txID]; ok {
			t.Tags = append(t.Tags, tag)
		}
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("failed to iterate tags: %w", err)
	}
	return nil
}
