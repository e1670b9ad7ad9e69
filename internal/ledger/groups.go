package ledger

import (
	"context"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/mmynk/splitledger/internal/calculator"
	"github.com/mmynk/splitledger/internal/models"
	"github.com/mmynk/splitledger/internal/notify"
	"github.com/mmynk/splitledger/internal/settlement"
	"github.com/mmynk/splitledger/internal/storage"
)

// ParticipantInput is one requested participant of a group expense.
type ParticipantInput struct {
	Ref models.ParticipantRef
	// Percentage is only read for percentage_split.
	Percentage decimal.Decimal
}

// GroupTxInput describes a paid expense to split.
type GroupTxInput struct {
	GroupID     string
	Payer       models.ParticipantRef
	Description string
	Amount      decimal.Decimal
	Strategy    models.SplitStrategy
	CategoryID  string
	// Participants is ignored for payer_single.
	Participants []ParticipantInput
}

// SettleInput names the obligation to settle.
type SettleInput struct {
	GroupID       string
	TransactionID string
	Participant   models.ParticipantRef
	WalletID      string
}

// GroupSummary is the per-actor view of a group's outstanding obligations.
type GroupSummary struct {
	Group    *models.Group
	Balances []calculator.MemberBalance
	Debts    []calculator.DebtEdge
}

// CreateGroup creates a group owned by the actor. Every listed member must
// be a registered user.
func (s *Service) CreateGroup(ctx context.Context, actor Actor, name string, members []string) (*models.Group, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, ErrNameRequired
	}

	g := &models.Group{Name: name, OwnerID: actor.UserID}
	err := s.run(ctx, "create_group", func(u *unit) error {
		ids, err := s.requireUsers(u, members)
		if err != nil {
			return err
		}
		g.Members = ids
		g.CreatedAt = u.now.Unix()
		if err := u.l.CreateGroup(u.ctx, g); err != nil {
			return internal(err)
		}
		for _, m := range g.Members {
			if m == actor.UserID {
				continue
			}
			u.emit(notify.Event{
				Type:       notify.MemberJoined,
				ActorID:    actor.UserID,
				ScopeID:    g.ID,
				SubjectID:  m,
				Recipients: []string{m},
			})
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return g, nil
}

// GetGroup returns a group the actor belongs to.
func (s *Service) GetGroup(ctx context.Context, actor Actor, groupID string) (*models.Group, error) {
	var g *models.Group
	err := s.read(ctx, func(l storage.Ledger) error {
		var err error
		g, err = memberGroup(ctx, l, groupID, actor)
		return err
	})
	return g, err
}

// AddGroupMember adds a registered user to the group. Owner only.
func (s *Service) AddGroupMember(ctx context.Context, actor Actor, groupID, userID string) (*models.Group, error) {
	if strings.TrimSpace(userID) == "" {
		return nil, ErrMemberRequired
	}

	var g *models.Group
	err := s.run(ctx, "add_group_member", func(u *unit) error {
		var err error
		g, err = memberGroup(u.ctx, u.l, groupID, actor)
		if err != nil {
			return err
		}
		if g.OwnerID != actor.UserID {
			return ErrNotGroupOwner
		}
		if g.HasMember(userID) {
			return ErrAlreadyMember
		}
		if _, err := s.requireUsers(u, []string{userID}); err != nil {
			return err
		}
		if err := u.l.AddGroupMember(u.ctx, groupID, userID); err != nil {
			return internal(err)
		}
		g.Members = append(g.Members, userID)
		u.emit(notify.Event{
			Type:       notify.MemberJoined,
			ActorID:    actor.UserID,
			ScopeID:    groupID,
			SubjectID:  userID,
			Recipients: []string{userID},
		})
		return nil
	})
	if err != nil {
		return nil, err
	}
	return g, nil
}

// CreateGroupTransaction splits a paid expense into obligations and records
// it. Participants may be group members or invitees known by email.
func (s *Service) CreateGroupTransaction(ctx context.Context, actor Actor, in GroupTxInput) (*models.GroupTransaction, error) {
	if !in.Strategy.Valid() {
		return nil, calculator.ErrUnknownStrategy
	}
	if err := calculator.ValidateAmount(in.Amount); err != nil {
		return nil, err
	}

	var tx *models.GroupTransaction
	err := s.run(ctx, "create_group_transaction", func(u *unit) error {
		g, err := memberGroup(u.ctx, u.l, in.GroupID, actor)
		if err != nil {
			return err
		}
		if in.CategoryID != "" {
			if err := requireCategory(u.ctx, u.l, in.CategoryID); err != nil {
				return err
			}
		}
		payer, err := groupRef(g, in.Payer)
		if err != nil {
			return ErrInvalidPayer
		}

		var participants []ParticipantInput
		if in.Strategy != models.PayerSingle {
			participants, err = groupParticipants(g, in.Participants)
			if err != nil {
				return err
			}
		}
		var percentages []decimal.Decimal
		if in.Strategy == models.PercentageSplit {
			for _, p := range participants {
				percentages = append(percentages, p.Percentage)
			}
		}
		split, err := calculator.Split(in.Amount, in.Strategy, len(participants), percentages)
		if err != nil {
			return err
		}

		tx = &models.GroupTransaction{
			GroupID:     g.ID,
			Payer:       payer,
			Description: strings.TrimSpace(in.Description),
			TotalAmount: split.Total,
			Strategy:    in.Strategy,
			CategoryID:  in.CategoryID,
			CreatedBy:   actor.UserID,
			CreatedAt:   u.now.Unix(),
		}
		for i, p := range participants {
			part := models.Participant{Ref: p.Ref, ShareAmount: split.Shares[i]}
			if in.Strategy == models.PercentageSplit {
				pct := p.Percentage
				part.Percentage = &pct
			}
			tx.Participants = append(tx.Participants, part)
		}
		if err := u.l.CreateGroupTransaction(u.ctx, tx); err != nil {
			return internal(err)
		}

		if recipients := debtors(tx); len(recipients) > 0 {
			u.emit(notify.Event{
				Type:       notify.ObligationCreated,
				ActorID:    actor.UserID,
				ScopeID:    g.ID,
				SubjectID:  tx.ID,
				Recipients: recipients,
				Amount:     tx.TotalAmount.StringFixed(2),
			})
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return tx, nil
}

// GetGroupTransaction returns a transaction of a group the actor belongs to.
func (s *Service) GetGroupTransaction(ctx context.Context, actor Actor, groupID, txID string) (*models.GroupTransaction, error) {
	var tx *models.GroupTransaction
	err := s.read(ctx, func(l storage.Ledger) error {
		if _, err := memberGroup(ctx, l, groupID, actor); err != nil {
			return err
		}
		var err error
		tx, err = groupTx(ctx, l, groupID, txID)
		return err
	})
	return tx, err
}

// ListGroupTransactions returns every transaction of the group, newest first.
func (s *Service) ListGroupTransactions(ctx context.Context, actor Actor, groupID string) ([]models.GroupTransaction, error) {
	var txs []models.GroupTransaction
	err := s.read(ctx, func(l storage.Ledger) error {
		if _, err := memberGroup(ctx, l, groupID, actor); err != nil {
			return err
		}
		var err error
		txs, err = l.ListGroupTransactions(ctx, groupID)
		return err
	})
	return txs, err
}

// DeleteGroupTransaction removes a transaction with its obligations. Allowed
// for the creator, the payer and the group owner.
func (s *Service) DeleteGroupTransaction(ctx context.Context, actor Actor, groupID, txID string) error {
	return s.run(ctx, "delete_group_transaction", func(u *unit) error {
		g, err := memberGroup(u.ctx, u.l, groupID, actor)
		if err != nil {
			return err
		}
		tx, err := groupTx(u.ctx, u.l, groupID, txID)
		if err != nil {
			return err
		}
		if tx.CreatedBy != actor.UserID && !tx.Payer.IsUser(actor.UserID) && g.OwnerID != actor.UserID {
			return ErrNotTxParticipant
		}
		return internal(u.l.DeleteGroupTransaction(u.ctx, tx.ID))
	})
}

// SettleParticipant marks one obligation as settled. The requester must be
// the participant, the payer or the group owner. A wallet named as the source
// of the payment must belong to the requester; it is recorded, not debited.
func (s *Service) SettleParticipant(ctx context.Context, actor Actor, in SettleInput) (*models.GroupTransaction, error) {
	var tx *models.GroupTransaction
	err := s.run(ctx, "settle_participant", func(u *unit) error {
		g, err := u.l.GetGroup(u.ctx, in.GroupID)
		if err != nil {
			return lookup(err, wrapf(ErrGroupNotFound, "group %s", in.GroupID))
		}
		tx, err = u.l.GetGroupTransaction(u.ctx, in.TransactionID)
		if err != nil {
			return lookup(err, wrapf(ErrTransactionNotFound, "group transaction %s", in.TransactionID))
		}
		if in.WalletID != "" {
			if _, err := u.ownedWallet(in.WalletID, actor.UserID); err != nil {
				return err
			}
		}

		requester := settlement.Requester{UserID: actor.UserID, Email: actor.Email}
		req := settlement.Request{GroupID: in.GroupID, Participant: in.Participant, WalletID: in.WalletID}
		p, err := settlement.Settle(g, tx, req, requester, u.now)
		if err != nil {
			return err
		}
		idx, err := settlement.Locate(tx, req, requester)
		if err != nil {
			return err
		}
		if err := u.l.UpdateParticipant(u.ctx, tx.ID, idx, p); err != nil {
			return internal(err)
		}

		recipients := []string{refRecipient(tx.Payer)}
		if r := refRecipient(p.Ref); r != recipients[0] {
			recipients = append(recipients, r)
		}
		u.emit(notify.Event{
			Type:       notify.ObligationSettled,
			ActorID:    actor.UserID,
			ScopeID:    tx.GroupID,
			SubjectID:  tx.ID,
			Recipients: recipients,
			Amount:     p.ShareAmount.StringFixed(2),
		})
		return nil
	})
	if err != nil {
		return nil, err
	}
	return tx, nil
}

// GroupSummary reports who paid, owes and is owed across the group, plus a
// simplified set of debts.
func (s *Service) GroupSummary(ctx context.Context, actor Actor, groupID string) (*GroupSummary, error) {
	var sum GroupSummary
	err := s.read(ctx, func(l storage.Ledger) error {
		g, err := memberGroup(ctx, l, groupID, actor)
		if err != nil {
			return err
		}
		txs, err := l.ListGroupTransactions(ctx, groupID)
		if err != nil {
			return err
		}
		sum.Group = g
		sum.Balances, sum.Debts = calculator.CalculateGroupBalances(txs)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &sum, nil
}

// ResolveInvitee turns obligations recorded against email into obligations of
// the freshly registered userID.
func (s *Service) ResolveInvitee(ctx context.Context, email, userID string) (int, error) {
	email = models.NormalizeEmail(email)
	if email == "" || userID == "" {
		return 0, ErrMemberRequired
	}
	var n int
	err := s.run(ctx, "resolve_invitee", func(u *unit) error {
		var err error
		n, err = u.l.ResolveInvitee(u.ctx, email, userID)
		return internal(err)
	})
	if err == nil && n > 0 {
		s.logger.InfoContext(ctx, "Resolved invitee obligations", "user_id", userID, "rows", n)
	}
	return n, err
}

func memberGroup(ctx context.Context, l storage.GroupStore, groupID string, actor Actor) (*models.Group, error) {
	g, err := l.GetGroup(ctx, groupID)
	if err != nil {
		return nil, lookup(err, wrapf(ErrGroupNotFound, "group %s", groupID))
	}
	if !g.HasMember(actor.UserID) {
		return nil, ErrNotGroupMember
	}
	return g, nil
}

func groupTx(ctx context.Context, l storage.GroupStore, groupID, txID string) (*models.GroupTransaction, error) {
	tx, err := l.GetGroupTransaction(ctx, txID)
	if err != nil {
		return nil, lookup(err, wrapf(ErrTransactionNotFound, "group transaction %s", txID))
	}
	if tx.GroupID != groupID {
		return nil, settlement.ErrInvalidReference
	}
	return tx, nil
}

// requireUsers checks that every id is a registered user and drops duplicates.
func (s *Service) requireUsers(u *unit, ids []string) ([]string, error) {
	var out []string
	seen := make(map[string]bool)
	for _, id := range ids {
		id = strings.TrimSpace(id)
		if id == "" || seen[id] {
			continue
		}
		seen[id] = true
		out = append(out, id)
	}
	if len(out) == 0 {
		return out, nil
	}
	users, err := u.l.GetUsersByIDs(u.ctx, out)
	if err != nil {
		return nil, internal(err)
	}
	for _, id := range out {
		if _, ok := users[id]; !ok {
			return nil, wrapf(ErrUserNotFound, "user %s", id)
		}
	}
	return out, nil
}

// groupRef normalizes ref and checks a registered ref belongs to the group.
func groupRef(g *models.Group, ref models.ParticipantRef) (models.ParticipantRef, error) {
	switch {
	case ref.UserID != "":
		if !g.HasMember(ref.UserID) {
			return models.ParticipantRef{}, ErrInvalidMember
		}
		return models.Registered(ref.UserID), nil
	case models.NormalizeEmail(ref.Email) != "":
		return models.Unregistered(ref.Email), nil
	}
	return models.ParticipantRef{}, ErrMemberRequired
}

func groupParticipants(g *models.Group, in []ParticipantInput) ([]ParticipantInput, error) {
	out := make([]ParticipantInput, 0, len(in))
	seen := make(map[string]bool)
	for _, p := range in {
		ref, err := groupRef(g, p.Ref)
		if err != nil {
			return nil, err
		}
		if seen[ref.Key()] {
			return nil, wrapf(ErrDuplicateMember, "%s", ref.Key())
		}
		seen[ref.Key()] = true
		out = append(out, ParticipantInput{Ref: ref, Percentage: p.Percentage})
	}
	return out, nil
}

// debtors lists who owes on tx, excluding the payer.
func debtors(tx *models.GroupTransaction) []string {
	var out []string
	for _, p := range tx.Participants {
		if p.Ref == tx.Payer {
			continue
		}
		out = append(out, refRecipient(p.Ref))
	}
	return out
}

func refRecipient(r models.ParticipantRef) string {
	if r.IsRegistered() {
		return r.UserID
	}
	return r.Email
}
