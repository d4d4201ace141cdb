// Package ledger maintains the in-memory collection of groups and the
// identifier of the currently-selected group. Every mutation validates its
// input, leaves the model consistent, refreshes the group's UpdatedAt and
// persists the full collection through the storage contract.
//
// Failed mutations never partially apply: validation happens before any
// state is touched.
package ledger

import (
	"context"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/splitledger/splitledger/internal/models"
	"github.com/splitledger/splitledger/internal/settlement"
	"github.com/splitledger/splitledger/internal/storage"
)

// Ledger is the single owned store instance, constructed at process start
// and initialized from storage. It is safe for concurrent use by HTTP
// handlers.
type Ledger struct {
	mu       sync.Mutex
	store    storage.Store
	groups   []*models.Group
	activeID string
}

// New creates an empty ledger backed by the given store. Call Init to load
// persisted state before serving.
func New(store storage.Store) *Ledger {
	return &Ledger{store: store}
}

// Init loads all groups and the active group identifier from storage. An
// active identifier that does not match any loaded group resolves to none.
// Initial load is the one blocking persistence call: the ledger cannot have
// an active group until it completes.
func (l *Ledger) Init(ctx context.Context) error {
	groups, err := l.store.LoadGroups(ctx)
	if err != nil {
		return err
	}
	activeID, err := l.store.LoadActiveGroupID(ctx)
	if err != nil {
		return err
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	l.groups = groups
	l.activeID = ""
	for _, g := range groups {
		if g.ID == activeID {
			l.activeID = activeID
			break
		}
	}

	slog.Info("Ledger initialized", "groups", len(groups), "active_group", l.activeID)
	return nil
}

// persist writes the full collection and active identifier to storage.
// Saves are fire-and-forget: a failed save is logged but never fails or
// rolls back the mutation that triggered it.
func (l *Ledger) persist(ctx context.Context) {
	if err := l.store.SaveGroups(ctx, l.groups); err != nil {
		slog.Error("Failed to save groups", "error", err)
		return
	}
	if l.activeID != "" {
		if err := l.store.SaveActiveGroupID(ctx, l.activeID); err != nil {
			slog.Error("Failed to save active group id", "error", err)
		}
	}
}

// Groups returns a snapshot of all groups in insertion order, plus the
// active group identifier ("" when none).
func (l *Ledger) Groups() ([]*models.Group, string) {
	l.mu.Lock()
	defer l.mu.Unlock()

	out := make([]*models.Group, len(l.groups))
	for i, g := range l.groups {
		out[i] = g.Clone()
	}
	return out, l.activeID
}

// ActiveGroup returns a snapshot of the active group, or ErrNoActiveGroup.
func (l *Ledger) ActiveGroup() (*models.Group, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	g := l.activeGroup()
	if g == nil {
		return nil, ErrNoActiveGroup
	}
	return g.Clone(), nil
}

// CreateGroup creates a new empty group, appends it to the collection and
// makes it the active group.
func (l *Ledger) CreateGroup(ctx context.Context, name, description string) (*models.Group, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, ErrEmptyGroupName
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	now := time.Now()
	group := &models.Group{
		ID:          uuid.New().String(),
		Name:        name,
		Description: description,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	l.groups = append(l.groups, group)
	l.activeID = group.ID

	l.persist(ctx)
	return group.Clone(), nil
}

// UpdateGroup replaces the name and description of an existing group.
func (l *Ledger) UpdateGroup(ctx context.Context, groupID, name, description string) (*models.Group, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	group := l.groupByID(groupID)
	if group == nil {
		return nil, ErrGroupNotFound
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, ErrEmptyGroupName
	}

	group.Name = name
	group.Description = description
	group.UpdatedAt = time.Now()

	l.persist(ctx)
	return group.Clone(), nil
}

// RemoveGroup deletes a group and everything it owns. The last remaining
// group can never be removed. If the removed group was active, the first
// remaining group (insertion order) becomes active.
func (l *Ledger) RemoveGroup(ctx context.Context, groupID string) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if len(l.groups) <= 1 {
		return ErrLastGroup
	}

	idx := -1
	for i, g := range l.groups {
		if g.ID == groupID {
			idx = i
			break
		}
	}
	if idx < 0 {
		return ErrGroupNotFound
	}

	l.groups = append(l.groups[:idx], l.groups[idx+1:]...)
	if l.activeID == groupID {
		l.activeID = ""
		if len(l.groups) > 0 {
			l.activeID = l.groups[0].ID
		}
	}

	l.persist(ctx)
	return nil
}

// SwitchGroup makes the given group the active one. Unknown identifiers
// leave the selection unchanged.
func (l *Ledger) SwitchGroup(ctx context.Context, groupID string) (*models.Group, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	group := l.groupByID(groupID)
	if group == nil {
		return nil, ErrGroupNotFound
	}

	l.activeID = groupID
	l.persist(ctx)
	return group.Clone(), nil
}

// AddPerson appends a new active member to the active group. Names must be
// non-empty and unique among the group's active members; a soft-deleted
// member's name may be reused.
func (l *Ledger) AddPerson(ctx context.Context, name, avatar string) (*models.Person, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, ErrEmptyPersonName
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	group := l.activeGroup()
	if group == nil {
		return nil, ErrNoActiveGroup
	}
	for i := range group.Members {
		if group.Members[i].IsActive() && group.Members[i].Name == name {
			return nil, ErrDuplicateName
		}
	}

	person := models.Person{
		ID:        uuid.New().String(),
		Name:      name,
		Avatar:    avatar,
		Status:    models.PersonActive,
		CreatedAt: time.Now(),
	}
	group.Members = append(group.Members, person)
	group.UpdatedAt = time.Now()

	l.persist(ctx)
	return &person, nil
}

// RemovePerson soft-deletes a member of the active group. A member that has
// paid for any expense can never be removed: payment history must stay
// attributable. The member record stays in the group either way, so expenses
// where the person merely participated remain resolvable.
func (l *Ledger) RemovePerson(ctx context.Context, personID string) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	group := l.activeGroup()
	if group == nil {
		return ErrNoActiveGroup
	}
	if group.HasExpensesPaidBy(personID) {
		return ErrPayerHasExpenses
	}

	person := group.MemberByID(personID)
	if person == nil {
		return ErrPersonNotFound
	}

	person.Status = models.PersonDeleted
	group.UpdatedAt = time.Now()

	l.persist(ctx)
	return nil
}

// AddExpense records a new expense in the active group.
func (l *Ledger) AddExpense(ctx context.Context, title string, amount float64, payerID string, participants []string, description, category string) (*models.Expense, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	group := l.activeGroup()
	if group == nil {
		return nil, ErrNoActiveGroup
	}
	if err := validateExpense(group, title, amount, payerID, participants); err != nil {
		return nil, err
	}

	expense := models.Expense{
		ID:           uuid.New().String(),
		Title:        title,
		Amount:       amount,
		PayerID:      payerID,
		Participants: append([]string(nil), participants...),
		Description:  description,
		Category:     category,
		CreatedAt:    time.Now(),
	}
	group.Expenses = append(group.Expenses, expense)
	group.UpdatedAt = time.Now()

	l.persist(ctx)
	return expense.Clone(), nil
}

// UpdateExpense replaces all mutable fields of an existing expense. ID and
// CreatedAt are preserved.
func (l *Ledger) UpdateExpense(ctx context.Context, expenseID, title string, amount float64, payerID string, participants []string, description, category string) (*models.Expense, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	group := l.activeGroup()
	if group == nil {
		return nil, ErrNoActiveGroup
	}
	expense := group.ExpenseByID(expenseID)
	if expense == nil {
		return nil, ErrExpenseNotFound
	}
	if err := validateExpense(group, title, amount, payerID, participants); err != nil {
		return nil, err
	}

	expense.Title = title
	expense.Amount = amount
	expense.PayerID = payerID
	expense.Participants = append([]string(nil), participants...)
	expense.Description = description
	expense.Category = category
	group.UpdatedAt = time.Now()

	l.persist(ctx)
	return expense.Clone(), nil
}

// RemoveExpense deletes an expense unconditionally; nothing downstream
// depends on expense history.
func (l *Ledger) RemoveExpense(ctx context.Context, expenseID string) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	group := l.activeGroup()
	if group == nil {
		return ErrNoActiveGroup
	}

	idx := -1
	for i := range group.Expenses {
		if group.Expenses[i].ID == expenseID {
			idx = i
			break
		}
	}
	if idx < 0 {
		return ErrExpenseNotFound
	}

	group.Expenses = append(group.Expenses[:idx], group.Expenses[idx+1:]...)
	group.UpdatedAt = time.Now()

	l.persist(ctx)
	return nil
}

// Settlement computes the settlement of the active group. A group with no
// expenses yields ErrNoExpenses rather than an empty result.
func (l *Ledger) Settlement() (*settlement.Result, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	group := l.activeGroup()
	if group == nil {
		return nil, ErrNoActiveGroup
	}
	if len(group.Expenses) == 0 {
		return nil, ErrNoExpenses
	}

	balances, transfers := settlement.Compute(group.Expenses, group.Members)
	return &settlement.Result{
		GroupID:          group.ID,
		PersonBalances:   balances,
		OptimalTransfers: transfers,
		TotalAmount:      settlement.TotalAmount(group.Expenses),
		CalculatedAt:     time.Now(),
	}, nil
}

// ClearAll erases all persisted state and resets the ledger to an empty
// collection with no active group.
func (l *Ledger) ClearAll(ctx context.Context) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if err := l.store.ClearAll(ctx); err != nil {
		return err
	}
	l.groups = nil
	l.activeID = ""
	return nil
}

func (l *Ledger) groupByID(groupID string) *models.Group {
	for _, g := range l.groups {
		if g.ID == groupID {
			return g
		}
	}
	return nil
}

func (l *Ledger) activeGroup() *models.Group {
	if l.activeID == "" {
		return nil
	}
	return l.groupByID(l.activeID)
}

func validateExpense(group *models.Group, title string, amount float64, payerID string, participants []string) error {
	if strings.TrimSpace(title) == "" {
		return ErrEmptyTitle
	}
	if amount <= 0 {
		return ErrInvalidAmount
	}
	payer := group.MemberByID(payerID)
	if payer == nil || !payer.IsActive() {
		return ErrUnknownPayer
	}
	if len(participants) == 0 {
		return ErrNoParticipants
	}
	// Participants form a set; a duplicated ID would also violate the
	// storage schema's uniqueness constraint.
	seen := make(map[string]struct{}, len(participants))
	for _, pid := range participants {
		if _, ok := seen[pid]; ok {
			return ErrDupParticipant
		}
		seen[pid] = struct{}{}
	}
	return nil
}
