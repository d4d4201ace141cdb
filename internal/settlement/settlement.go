// Package settlement computes net balances and a minimal transfer plan for a
// group's expenses. It is pure: no mutation, no I/O, deterministic output for
// identical input.
package settlement

import (
	"math"
	"sort"
	"time"

	"github.com/splitledger/splitledger/internal/models"
)

// epsilon absorbs floating-point drift in all balance comparisons.
// Two-decimal currency rounding makes anything below one cent noise.
const epsilon = 0.01

// PersonBalance is one active person's net position across all expenses.
type PersonBalance struct {
	PersonID   string  `json:"person_id"`
	TotalPaid  float64 `json:"total_paid"`
	TotalShare float64 `json:"total_share"`
	// Balance = TotalPaid - TotalShare. Positive means the person is owed
	// money, negative means the person owes money.
	Balance float64 `json:"balance"`
}

// Transfer is one recommended payment from a debtor to a creditor.
type Transfer struct {
	FromPersonID string  `json:"from_person_id"`
	ToPersonID   string  `json:"to_person_id"`
	Amount       float64 `json:"amount"`
}

// Result is the full settlement of one group.
type Result struct {
	GroupID          string          `json:"group_id"`
	PersonBalances   []PersonBalance `json:"person_balances"`
	OptimalTransfers []Transfer      `json:"optimal_transfers"`
	TotalAmount      float64         `json:"total_amount"`
	CalculatedAt     time.Time       `json:"calculated_at"`
}

// Compute derives per-person balances and a transfer plan from a group's
// expenses and members.
//
// Rules:
//   - Only active members get a balance entry. Soft-deleted members are
//     excluded entirely.
//   - Each expense is split equally among its participants that are still
//     active. If none remain, the expense is skipped and its cost drops out
//     of all balances. Deliberately NOT redistributed to surviving members.
//   - The payer is credited the full amount only while active. An inactive
//     payer should be impossible (the ledger refuses to delete payers with
//     history), so this is a defensive check, not a reachable path.
func Compute(expenses []models.Expense, members []models.Person) ([]PersonBalance, []Transfer) {
	var active []models.Person
	for i := range members {
		if members[i].IsActive() {
			active = append(active, members[i])
		}
	}

	index := make(map[string]int, len(active))
	balances := make([]PersonBalance, len(active))
	for i := range active {
		index[active[i].ID] = i
		balances[i] = PersonBalance{PersonID: active[i].ID}
	}

	for i := range expenses {
		exp := &expenses[i]

		var activeParticipants []string
		for _, pid := range exp.Participants {
			if _, ok := index[pid]; ok {
				activeParticipants = append(activeParticipants, pid)
			}
		}
		if len(activeParticipants) == 0 {
			continue
		}

		share := exp.Amount / float64(len(activeParticipants))

		if j, ok := index[exp.PayerID]; ok {
			balances[j].TotalPaid += exp.Amount
		}
		for _, pid := range activeParticipants {
			balances[index[pid]].TotalShare += share
		}
	}

	for i := range balances {
		balances[i].Balance = balances[i].TotalPaid - balances[i].TotalShare
	}

	return balances, minimizeTransfers(balances)
}

// minimizeTransfers reduces a set of balances to a short list of payments
// using a greedy two-pointer sweep: repeatedly match the largest creditor
// with the largest-magnitude debtor. The result is not guaranteed to be the
// theoretical minimum (that matching problem is NP-hard) but settles every
// balance using at most creditors+debtors-1 transfers.
//
// Running balances stay unrounded throughout; only recorded transfer amounts
// are rounded to two decimals, so rounding error never compounds across
// transfers.
func minimizeTransfers(balances []PersonBalance) []Transfer {
	var creditors, debtors []PersonBalance
	for _, b := range balances {
		switch {
		case b.Balance > epsilon:
			creditors = append(creditors, b)
		case b.Balance < -epsilon:
			debtors = append(debtors, b)
		}
	}
	sort.SliceStable(creditors, func(i, j int) bool {
		return creditors[i].Balance > creditors[j].Balance
	})
	sort.SliceStable(debtors, func(i, j int) bool {
		return debtors[i].Balance < debtors[j].Balance
	})

	var transfers []Transfer
	i, j := 0, 0
	for i < len(creditors) && j < len(debtors) {
		creditor := &creditors[i]
		debtor := &debtors[j]

		amount := math.Min(creditor.Balance, -debtor.Balance)
		if amount > epsilon {
			transfers = append(transfers, Transfer{
				FromPersonID: debtor.PersonID,
				ToPersonID:   creditor.PersonID,
				Amount:       round2(amount),
			})
			creditor.Balance -= amount
			debtor.Balance += amount
		}

		if math.Abs(creditor.Balance) < epsilon {
			i++
		}
		if math.Abs(debtor.Balance) < epsilon {
			j++
		}
	}

	return transfers
}

// TotalAmount sums all expense amounts, including expenses that settlement
// skipped because their participants are gone.
func TotalAmount(expenses []models.Expense) float64 {
	var total float64
	for i := range expenses {
		total += expenses[i].Amount
	}
	return total
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
