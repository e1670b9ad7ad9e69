package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/mmynk/splitledger/internal/models"
)

// CreateGroup persists a new group. The owner is always stored as a member.
func (s *SQLiteStore) CreateGroup(ctx context.Context, group *models.Group) error {
	if group.ID == "" {
		group.ID = uuid.New().String()
	}
	if group.CreatedAt == 0 {
		group.CreatedAt = time.Now().Unix()
	}
	if !containsString(group.Members, group.OwnerID) {
		group.Members = append([]string{group.OwnerID}, group.Members...)
	}

	return s.atomic(ctx, func(q dbtx) error {
		_, err := q.ExecContext(ctx,
			"INSERT INTO groups (id, name, owner_id, created_at) VALUES (?, ?, ?, ?)",
			group.ID, group.Name, group.OwnerID, group.CreatedAt,
		)
		if err != nil {
			return fmt.Errorf("failed to insert group: %w", err)
		}

		for _, member := range group.Members {
			_, err = q.ExecContext(ctx,
				"INSERT OR IGNORE INTO group_members (group_id, user_id) VALUES (?, ?)",
				group.ID, member,
			)
			if err != nil {
				return fmt.Errorf("failed to insert group member: %w", err)
			}
		}
		return nil
	})
}

// GetGroup retrieves a group and its members.
func (s *SQLiteStore) GetGroup(ctx context.Context, id string) (*models.Group, error) {
	group := &models.Group{}
	err := s.q.QueryRowContext(ctx,
		"SELECT id, name, owner_id, created_at FROM groups WHERE id = ?", id,
	).Scan(&group.ID, &group.Name, &group.OwnerID, &group.CreatedAt)
	if err != nil {
		return nil, notFound(err, "group", id)
	}

	rows, err := s.q.QueryContext(ctx,
		"SELECT user_id FROM group_members WHERE group_id = ? ORDER BY user_id", id,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to get group members: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var member string
		if err := rows.Scan(&member); err != nil {
			return nil, fmt.Errorf("failed to scan group member: %w", err)
		}
		group.Members = append(group.Members, member)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate group members: %w", err)
	}
	return group, nil
}

// AddGroupMember adds userID to the group. Adding an existing member is a no-op.
func (s *SQLiteStore) AddGroupMember(ctx context.Context, groupID, userID string) error {
	_, err := s.q.ExecContext(ctx,
		"INSERT OR IGNORE INTO group_members (group_id, user_id) VALUES (?, ?)",
		groupID, userID,
	)
	if err != nil {
		return fmt.Errorf("failed to add group member: %w", err)
	}
	return nil
}

// CreateGroupTransaction persists a transaction and its ordered participants.
func (s *SQLiteStore) CreateGroupTransaction(ctx context.Context, t *models.GroupTransaction) error {
	if t.ID == "" {
		t.ID = uuid.New().String()
	}
	if t.CreatedAt == 0 {
		t.CreatedAt = time.Now().Unix()
	}

	return s.atomic(ctx, func(q dbtx) error {
		_, err := q.ExecContext(ctx,
			`INSERT INTO group_transactions
			(id, group_id, payer_user_id, payer_email, description, total_amount, strategy, category_id, created_by, created_at)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			t.ID, t.GroupID, t.Payer.UserID, t.Payer.Email, t.Description, t.TotalAmount,
			t.Strategy, t.CategoryID, t.CreatedBy, t.CreatedAt,
		)
		if err != nil {
			return fmt.Errorf("failed to insert group transaction: %w", err)
		}

		for i := range t.Participants {
			p := &t.Participants[i]
			_, err = q.ExecContext(ctx,
				`INSERT INTO group_participants
				(transaction_id, position, user_id, email, share_amount, percentage, settled, settled_at, wallet_id)
				VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
				t.ID, i, p.Ref.UserID, p.Ref.Email, p.ShareAmount, nullDecimal(p.Percentage),
				p.Settled, nullInt64(p.SettledAt), p.WalletID,
			)
			if err != nil {
				return fmt.Errorf("failed to insert participant: %w", err)
			}
		}
		return nil
	})
}

const groupTxColumns = `id, group_id, payer_user_id, payer_email, description, total_amount, strategy, category_id, created_by, created_at`

func scanGroupTx(row rowScanner) (*models.GroupTransaction, error) {
	t := &models.GroupTransaction{}
	err := row.Scan(&t.ID, &t.GroupID, &t.Payer.UserID, &t.Payer.Email, &t.Description,
		&t.TotalAmount, &t.Strategy, &t.CategoryID, &t.CreatedBy, &t.CreatedAt)
	return t, err
}

// GetGroupTransaction retrieves a transaction with its participants in order.
func (s *SQLiteStore) GetGroupTransaction(ctx context.Context, id string) (*models.GroupTransaction, error) {
	t, err := scanGroupTx(s.q.QueryRowContext(ctx,
		"SELECT "+groupTxColumns+" FROM group_transactions WHERE id = ?", id))
	if err != nil {
		return nil, notFound(err, "group transaction", id)
	}

	participants, err := s.loadParticipants(ctx,
		"WHERE transaction_id = ?", id)
	if err != nil {
		return nil, err
	}
	t.Participants = participants[t.ID]
	return t, nil
}

// ListGroupTransactions returns the group's transactions, newest first.
func (s *SQLiteStore) ListGroupTransactions(ctx context.Context, groupID string) ([]models.GroupTransaction, error) {
	rows, err := s.q.QueryContext(ctx,
		"SELECT "+groupTxColumns+" FROM group_transactions WHERE group_id = ? ORDER BY created_at DESC, id",
		groupID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list group transactions: %w", err)
	}

	var txs []models.GroupTransaction
	for rows.Next() {
		t, err := scanGroupTx(rows)
		if err != nil {
			rows.Close()
			return nil, fmt.Errorf("failed to scan group transaction: %w", err)
		}
		txs = append(txs, *t)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate group transactions: %w", err)
	}

	participants, err := s.loadParticipants(ctx,
		"WHERE transaction_id IN (SELECT id FROM group_transactions WHERE group_id = ?)", groupID)
	if err != nil {
		return nil, err
	}
	for i := range txs {
		txs[i].Participants = participants[txs[i].ID]
	}
	return txs, nil
}

// loadParticipants reads participants grouped by transaction ID.
func (s *SQLiteStore) loadParticipants(ctx context.Context, where string, args ...any) (map[string][]models.Participant, error) {
	rows, err := s.q.QueryContext(ctx,
		`SELECT transaction_id, user_id, email, share_amount, percentage, settled, settled_at, wallet_id
		FROM group_participants `+where+` ORDER BY transaction_id, position`,
		args...,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to get participants: %w", err)
	}
	defer rows.Close()

	out := make(map[string][]models.Participant)
	for rows.Next() {
		var (
			txID      string
			p         models.Participant
			pct       decimal.NullDecimal
			settledAt sql.NullInt64
		)
		if err := rows.Scan(&txID, &p.Ref.UserID, &p.Ref.Email, &p.ShareAmount, &pct,
			&p.Settled, &settledAt, &p.WalletID); err != nil {
			return nil, fmt.Errorf("failed to scan participant: %w", err)
		}
		if pct.Valid {
			v := pct.Decimal
			p.Percentage = &v
		}
		if settledAt.Valid {
			v := settledAt.Int64
			p.SettledAt = &v
		}
		out[txID] = append(out[txID], p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate participants: %w", err)
	}
	return out, nil
}

// DeleteGroupTransaction removes a transaction; participants cascade.
func (s *SQLiteStore) DeleteGroupTransaction(ctx context.Context, id string) error {
	res, err := s.q.ExecContext(ctx, "DELETE FROM group_transactions WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("failed to delete group transaction: %w", err)
	}
	return expectOne(res, "group transaction", id)
}

// UpdateParticipant writes the settlement fields of one participant.
func (s *SQLiteStore) UpdateParticipant(ctx context.Context, txID string, index int, p *models.Participant) error {
	res, err := s.q.ExecContext(ctx,
		`UPDATE group_participants SET settled = ?, settled_at = ?, wallet_id = ?
		WHERE transaction_id = ? AND position = ?`,
		p.Settled, nullInt64(p.SettledAt), p.WalletID, txID, index,
	)
	if err != nil {
		return fmt.Errorf("failed to update participant: %w", err)
	}
	return expectOne(res, "participant", fmt.Sprintf("%s#%d", txID, index))
}

// ResolveInvitee rewrites invitee references to the registered user and adds
// the user to every group those references belong to.
func (s *SQLiteStore) ResolveInvitee(ctx context.Context, email, userID string) (int, error) {
	email = models.NormalizeEmail(email)
	var total int64
	err := s.atomic(ctx, func(q dbtx) error {
		_, err := q.ExecContext(ctx,
			`INSERT OR IGNORE INTO group_members (group_id, user_id)
			SELECT DISTINCT group_id, ? FROM group_transactions
			WHERE (payer_email = ? AND payer_user_id = '')
			OR id IN (SELECT transaction_id FROM group_participants WHERE email = ? AND user_id = '')`,
			userID, email, email,
		)
		if err != nil {
			return fmt.Errorf("failed to add invitee to groups: %w", err)
		}

		res, err := q.ExecContext(ctx,
			"UPDATE group_transactions SET payer_user_id = ?, payer_email = '' WHERE payer_email = ? AND payer_user_id = ''",
			userID, email,
		)
		if err != nil {
			return fmt.Errorf("failed to resolve invitee payer: %w", err)
		}
		n, err := res.RowsAffected()
		if err != nil {
			return fmt.Errorf("failed to read rows affected: %w", err)
		}
		total += n

		res, err = q.ExecContext(ctx,
			"UPDATE group_participants SET user_id = ?, email = '' WHERE email = ? AND user_id = ''",
			userID, email,
		)
		if err != nil {
			return fmt.Errorf("failed to resolve invitee participant: %w", err)
		}
		n, err = res.RowsAffected()
		if err != nil {
			return fmt.Errorf("failed to read rows affected: %w", err)
		}
		total += n
		return nil
	})
	return int(total), err
}

func nullDecimal(d *decimal.Decimal) decimal.NullDecimal {
	if d == nil {
		return decimal.NullDecimal{}
	}
	return decimal.NullDecimal{Decimal: *d, Valid: true}
}

func nullInt64(v *int64) sql.NullInt64 {
	if v == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: *v, Valid: true}
}

func containsString(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
