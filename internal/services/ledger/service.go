// Package ledger applies balance-changing operations to room members.
// Balances never go negative: player operations that would overdraw are
// rejected, system expenses are clamped at zero.
package ledger

import (
	"context"
	"fmt"
	"log/slog"
	"math"

	"github.com/google/uuid"

	"github.com/mcoot/energyofmoney/internal/dependencies/clock"
	"github.com/mcoot/energyofmoney/internal/model"
	"github.com/mcoot/energyofmoney/internal/services/room"
	"github.com/mcoot/energyofmoney/internal/services/turn"
)

// Config holds credit policy
type Config struct {
	MaxCreditPerRequest  int64
	MaxOutstandingCredit int64 // 0 means no aggregate cap
}

// DefaultConfig returns the default credit policy
func DefaultConfig() Config {
	return Config{
		MaxCreditPerRequest: 10000,
	}
}

// Service is the room ledger. Every operation runs inside the room's
// mutation, so it is serialized with turn changes for the same room.
type Service struct {
	rooms  *room.Controller
	clock  clock.Clock
	logger *slog.Logger
	cfg    Config
}

// New creates a new ledger Service
func New(rooms *room.Controller, logger *slog.Logger, cfg Config) *Service {
	return &Service{
		rooms:  rooms,
		clock:  rooms.Clock(),
		logger: logger,
		cfg:    cfg,
	}
}

// Transfer moves amount from the current player to the member with the
// given display name. Both sides get a completed entry sharing one
// transaction ID.
func (s *Service) Transfer(ctx context.Context, id model.RoomID, playerID model.PlayerID, recipientName string, amount int64) (*model.Room, error) {
	if amount <= 0 {
		return nil, model.ErrInvalidAmount
	}
	return s.rooms.Mutate(ctx, id, func(r *model.Room) ([]model.Event, error) {
		if err := turn.RequireTurn(r, playerID, s.clock.Now()); err != nil {
			return nil, err
		}
		sender := r.GetMember(playerID)
		recipient := r.GetMemberByName(recipientName)
		if recipient == nil || recipient.ID == sender.ID {
			return nil, model.ErrRecipientNotFound
		}
		if sender.Balance < amount {
			return nil, insufficient(sender.Balance)
		}
		if err := checkAdd(recipient.Balance, amount); err != nil {
			return nil, err
		}

		txID := uuid.NewString()
		sender.Balance -= amount
		recipient.Balance += amount
		out := s.post(sender, txID, model.OpTransfer, amount, sender.ID, recipient.ID, recipient.DisplayName)
		in := s.post(recipient, txID, model.OpTransfer, amount, sender.ID, recipient.ID, sender.DisplayName)

		s.logger.Info("transfer completed",
			slog.String("room_id", string(r.ID)),
			slog.String("tx_id", txID),
			slog.String("from", string(sender.ID)),
			slog.String("to", string(recipient.ID)),
			slog.Int64("amount", amount),
		)

		return []model.Event{s.updated(r, playerID,
			model.BalanceChange{PlayerID: sender.ID, Balance: sender.Balance, Entries: []model.LedgerEntry{out}},
			model.BalanceChange{PlayerID: recipient.ID, Balance: recipient.Balance, Entries: []model.LedgerEntry{in}},
		)}, nil
	})
}

// Credit lends the current player money from the bank
func (s *Service) Credit(ctx context.Context, id model.RoomID, playerID model.PlayerID, amount int64) (*model.Room, error) {
	if amount <= 0 {
		return nil, model.ErrInvalidAmount
	}
	if s.cfg.MaxCreditPerRequest > 0 && amount > s.cfg.MaxCreditPerRequest {
		return nil, fmt.Errorf("%w: at most %d per request", model.ErrCreditLimitExceeded, s.cfg.MaxCreditPerRequest)
	}
	return s.rooms.Mutate(ctx, id, func(r *model.Room) ([]model.Event, error) {
		if err := turn.RequireTurn(r, playerID, s.clock.Now()); err != nil {
			return nil, err
		}
		m := r.GetMember(playerID)
		if s.cfg.MaxOutstandingCredit > 0 && m.Credit+amount > s.cfg.MaxOutstandingCredit {
			return nil, fmt.Errorf("%w: %d of %d outstanding",
				model.ErrCreditLimitExceeded, m.Credit, s.cfg.MaxOutstandingCredit)
		}
		if err := checkAdd(m.Balance, amount); err != nil {
			return nil, err
		}
		if err := checkAdd(m.Credit, amount); err != nil {
			return nil, err
		}

		m.Balance += amount
		m.Credit += amount
		e := s.post(m, uuid.NewString(), model.OpCredit, amount, "", m.ID, "")
		return []model.Event{s.updated(r, playerID, change(m, e))}, nil
	})
}

// Repay pays outstanding credit back to the bank
func (s *Service) Repay(ctx context.Context, id model.RoomID, playerID model.PlayerID, amount int64) (*model.Room, error) {
	if amount <= 0 {
		return nil, model.ErrInvalidAmount
	}
	return s.rooms.Mutate(ctx, id, func(r *model.Room) ([]model.Event, error) {
		if err := turn.RequireTurn(r, playerID, s.clock.Now()); err != nil {
			return nil, err
		}
		m := r.GetMember(playerID)
		if m.Balance < amount {
			return nil, insufficient(m.Balance)
		}

		m.Balance -= amount
		m.Credit -= min(m.Credit, amount)
		e := s.post(m, uuid.NewString(), model.OpRepay, amount, m.ID, "", "")
		return []model.Event{s.updated(r, playerID, change(m, e))}, nil
	})
}

// ApplyIncome credits system income such as payday. It is not bound to the
// current turn.
func (s *Service) ApplyIncome(ctx context.Context, id model.RoomID, playerID model.PlayerID, amount int64, kind model.OperationKind) (*model.Room, error) {
	if amount <= 0 {
		return nil, model.ErrInvalidAmount
	}
	if !kind.IsIncome() {
		return nil, fmt.Errorf("%w: %s is not income", model.ErrInvalidOperation, kind)
	}
	return s.rooms.Mutate(ctx, id, func(r *model.Room) ([]model.Event, error) {
		if err := turn.RequireMember(r, playerID, s.clock.Now()); err != nil {
			return nil, err
		}
		m := r.GetMember(playerID)
		if err := checkAdd(m.Balance, amount); err != nil {
			return nil, err
		}
		m.Balance += amount
		e := s.post(m, uuid.NewString(), kind, amount, "", m.ID, "")
		return []model.Event{s.updated(r, playerID, change(m, e))}, nil
	})
}

// ApplyExpense debits a system expense, clamped so the balance stops at
// zero. The entry records the amount actually taken.
func (s *Service) ApplyExpense(ctx context.Context, id model.RoomID, playerID model.PlayerID, amount int64, kind model.OperationKind) (*model.Room, error) {
	if amount <= 0 {
		return nil, model.ErrInvalidAmount
	}
	if !kind.IsExpense() {
		return nil, fmt.Errorf("%w: %s is not an expense", model.ErrInvalidOperation, kind)
	}
	return s.rooms.Mutate(ctx, id, func(r *model.Room) ([]model.Event, error) {
		if err := turn.RequireMember(r, playerID, s.clock.Now()); err != nil {
			return nil, err
		}
		m := r.GetMember(playerID)
		applied := min(amount, m.Balance)
		if applied == 0 {
			return nil, nil
		}
		m.Balance -= applied
		e := s.post(m, uuid.NewString(), kind, applied, m.ID, "", "")
		return []model.Event{s.updated(r, playerID, change(m, e))}, nil
	})
}

// AdjustPassiveIncome changes a member's recorded passive income, the
// metric behind ranking and the win condition. It never drops below zero.
func (s *Service) AdjustPassiveIncome(ctx context.Context, id model.RoomID, playerID model.PlayerID, delta int64) (*model.Room, error) {
	return s.rooms.Mutate(ctx, id, func(r *model.Room) ([]model.Event, error) {
		if err := turn.RequireMember(r, playerID, s.clock.Now()); err != nil {
			return nil, err
		}
		m := r.GetMember(playerID)
		if delta > 0 {
			if err := checkAdd(m.PassiveIncome, delta); err != nil {
				return nil, err
			}
		}
		m.PassiveIncome = max(0, m.PassiveIncome+delta)
		return []model.Event{s.updated(r, playerID, model.BalanceChange{PlayerID: m.ID, Balance: m.Balance})}, nil
	})
}

// History returns a member's ledger entries in the order they were applied
func (s *Service) History(ctx context.Context, id model.RoomID, playerID model.PlayerID) ([]model.LedgerEntry, error) {
	r, err := s.rooms.GetRoom(ctx, id)
	if err != nil {
		return nil, err
	}
	m := r.GetMember(playerID)
	if m == nil {
		return nil, model.ErrPlayerNotFound
	}
	return m.History, nil
}

// post appends a completed entry to m's history; m's balance must already
// reflect the operation. Empty from/to mean the bank.
func (s *Service) post(m *model.Member, txID string, kind model.OperationKind, amount int64, from, to model.PlayerID, counterparty string) model.LedgerEntry {
	e := model.LedgerEntry{
		ID:            uuid.NewString(),
		TransactionID: txID,
		Kind:          kind,
		Amount:        amount,
		From:          playerRef(from),
		To:            playerRef(to),
		Counterparty:  counterparty,
		BalanceAfter:  m.Balance,
		Status:        model.StatusCompleted,
		CreatedAt:     s.clock.Now(),
	}
	m.History = append(m.History, e)
	return e
}

func (s *Service) updated(r *model.Room, actor model.PlayerID, changes ...model.BalanceChange) model.Event {
	evt := s.rooms.Event(r, model.EventLedgerUpdated, model.LedgerUpdatedPayload{Changes: changes})
	evt.PlayerID = actor
	return evt
}

func change(m *model.Member, e model.LedgerEntry) model.BalanceChange {
	return model.BalanceChange{PlayerID: m.ID, Balance: m.Balance, Entries: []model.LedgerEntry{e}}
}

func playerRef(id model.PlayerID) *model.PlayerID {
	if id == "" {
		return nil
	}
	return &id
}

func insufficient(available int64) error {
	return fmt.Errorf("%w: available balance %d", model.ErrInsufficientFunds, available)
}

// checkAdd rejects an addition that would overflow the stored total
func checkAdd(total, amount int64) error {
	if total > math.MaxInt64-amount {
		return fmt.Errorf("%w: total would overflow", model.ErrInvalidAmount)
	}
	return nil
}
