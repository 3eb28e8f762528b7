package sqlite

import (
	"context"
	"errors"
	"path/filepath"
	"sync"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mmynk/splitledger/internal/models"
	"github.com/mmynk/splitledger/internal/storage"
)

func newTestStore(t *testing.T) *SQLiteStore {
	t.Helper()
	store, err := New(filepath.Join(t.TempDir(), "nested", "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func dinner(groupID string) *models.Expense {
	return &models.Expense{
		GroupID:     groupID,
		Description: "Dinner",
		Amount:      dec("100.00"),
		Currency:    "USD",
		PayerID:     "alice",
		Strategy:    models.SplitPercentage,
		CreatedBy:   "alice",
		Shares: []models.Share{
			{UserID: "carol", Amount: dec("33.33"), Percentage: decimal.NewNullDecimal(dec("33.33"))},
			{UserID: "alice", Amount: dec("33.33"), Percentage: decimal.NewNullDecimal(dec("33.33")), Settled: true},
			{UserID: "bob", Amount: dec("33.34"), Percentage: decimal.NewNullDecimal(dec("33.34"))},
		},
	}
}

func TestExpenses(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	t.Run("CreateExpense generates ID and timestamps", func(t *testing.T) {
		expense := dinner("g1")
		require.NoError(t, store.CreateExpense(ctx, expense))

		assert.NotEmpty(t, expense.ID)
		assert.NotZero(t, expense.CreatedAt)
		assert.Equal(t, expense.CreatedAt, expense.UpdatedAt)
		assert.True(t, expense.Active)
		for _, s := range expense.Shares {
			assert.Equal(t, expense.ID, s.ExpenseID)
		}
	})

	t.Run("GetExpense round-trips amounts exactly and keeps share order", func(t *testing.T) {
		original := dinner("g1")
		require.NoError(t, store.CreateExpense(ctx, original))

		got, err := store.GetExpense(ctx, original.ID)
		require.NoError(t, err)

		assert.Equal(t, original.Description, got.Description)
		assert.True(t, got.Amount.Equal(original.Amount), "amount %s", got.Amount)
		assert.Equal(t, models.SplitPercentage, got.Strategy)
		assert.True(t, got.Active)
		require.Len(t, got.Shares, 3)

		for i, want := range original.Shares {
			share := got.Shares[i]
			assert.Equal(t, want.UserID, share.UserID)
			assert.True(t, want.Amount.Equal(share.Amount), "share %d amount %s", i, share.Amount)
			assert.True(t, share.Percentage.Valid)
			assert.True(t, want.Percentage.Decimal.Equal(share.Percentage.Decimal))
			assert.Equal(t, want.Settled, share.Settled)
		}
		assert.True(t, got.ShareTotal().Equal(got.Amount))
	})

	t.Run("GetExpense returns ErrNotFound for nonexistent expense", func(t *testing.T) {
		_, err := store.GetExpense(ctx, "nonexistent-id")
		assert.ErrorIs(t, err, storage.ErrNotFound)
	})

	t.Run("ReplaceExpense swaps the whole share set", func(t *testing.T) {
		expense := dinner("g1")
		require.NoError(t, store.CreateExpense(ctx, expense))

		expense.Description = "Dinner and drinks"
		expense.Amount = dec("50.00")
		expense.Strategy = models.SplitEqual
		expense.Shares = []models.Share{
			{UserID: "alice", Amount: dec("25.00"), Settled: true},
			{UserID: "dave", Amount: dec("25.00")},
		}
		require.NoError(t, store.ReplaceExpense(ctx, expense))

		got, err := store.GetExpense(ctx, expense.ID)
		require.NoError(t, err)
		assert.Equal(t, "Dinner and drinks", got.Description)
		assert.Equal(t, models.SplitEqual, got.Strategy)
		require.Len(t, got.Shares, 2)
		assert.Equal(t, "alice", got.Shares[0].UserID)
		assert.Equal(t, "dave", got.Shares[1].UserID)
		assert.False(t, got.Shares[1].Percentage.Valid)
		assert.True(t, got.ShareTotal().Equal(dec("50.00")))
	})

	t.Run("ReplaceExpense rejects duplicate users without touching old shares", func(t *testing.T) {
		expense := dinner("g1")
		require.NoError(t, store.CreateExpense(ctx, expense))

		expense.Shares = []models.Share{
			{UserID: "alice", Amount: dec("50.00")},
			{UserID: "alice", Amount: dec("50.00")},
		}
		require.Error(t, store.ReplaceExpense(ctx, expense))

		got, err := store.GetExpense(ctx, expense.ID)
		require.NoError(t, err)
		assert.Len(t, got.Shares, 3)
		assert.Equal(t, "Dinner", got.Description)
	})

	t.Run("DeactivateExpense hides the expense from listings", func(t *testing.T) {
		kept := dinner("g-deactivate")
		deleted := dinner("g-deactivate")
		require.NoError(t, store.CreateExpense(ctx, kept))
		require.NoError(t, store.CreateExpense(ctx, deleted))

		require.NoError(t, store.DeactivateExpense(ctx, deleted.ID))
		assert.ErrorIs(t, store.DeactivateExpense(ctx, deleted.ID), storage.ErrNotFound)
		assert.ErrorIs(t, store.ReplaceExpense(ctx, deleted), storage.ErrNotFound)

		list, err := store.ListExpensesByGroup(ctx, "g-deactivate")
		require.NoError(t, err)
		require.Len(t, list, 1)
		assert.Equal(t, kept.ID, list[0].ID)
		assert.Len(t, list[0].Shares, 3)

		got, err := store.GetExpense(ctx, deleted.ID)
		require.NoError(t, err)
		assert.False(t, got.Active)
	})

	t.Run("ListExpensesByGroup returns newest first", func(t *testing.T) {
		first := dinner("g-order")
		first.CreatedAt = 1000
		second := dinner("g-order")
		second.CreatedAt = 2000
		require.NoError(t, store.CreateExpense(ctx, first))
		require.NoError(t, store.CreateExpense(ctx, second))

		list, err := store.ListExpensesByGroup(ctx, "g-order")
		require.NoError(t, err)
		require.Len(t, list, 2)
		assert.Equal(t, second.ID, list[0].ID)
		assert.Equal(t, first.ID, list[1].ID)

		empty, err := store.ListExpensesByGroup(ctx, "g-empty")
		require.NoError(t, err)
		assert.Empty(t, empty)
	})
}

func payment(groupID, payer, payee, amount string, status models.SettlementStatus) *models.Settlement {
	return &models.Settlement{
		GroupID:       groupID,
		PayerID:       payer,
		PayeeID:       payee,
		Amount:        dec(amount),
		Currency:      "USD",
		Status:        status,
		PaymentMethod: "CASH",
		CreatedBy:     payer,
	}
}

func TestSettlements(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	t.Run("CreateSettlement stamps SettledAt for completed payments", func(t *testing.T) {
		done := payment("g1", "bob", "alice", "12.50", models.SettlementCompleted)
		done.Note = "lunch"
		require.NoError(t, store.CreateSettlement(ctx, done))
		assert.NotEmpty(t, done.ID)
		assert.Equal(t, done.CreatedAt, done.SettledAt)

		got, err := store.GetSettlement(ctx, done.ID)
		require.NoError(t, err)
		assert.Equal(t, models.SettlementCompleted, got.Status)
		assert.True(t, got.Amount.Equal(dec("12.50")))
		assert.Equal(t, "CASH", got.PaymentMethod)
		assert.Equal(t, "lunch", got.Note)
		assert.Empty(t, got.TransactionRef)
		assert.Equal(t, done.SettledAt, got.SettledAt)

		pending := payment("g1", "carol", "alice", "5.00", models.SettlementPending)
		require.NoError(t, store.CreateSettlement(ctx, pending))
		got, err = store.GetSettlement(ctx, pending.ID)
		require.NoError(t, err)
		assert.Zero(t, got.SettledAt)
	})

	t.Run("GetSettlement returns ErrNotFound for nonexistent settlement", func(t *testing.T) {
		_, err := store.GetSettlement(ctx, "nonexistent-id")
		assert.ErrorIs(t, err, storage.ErrNotFound)
	})

	t.Run("TransitionSettlement completes exactly once", func(t *testing.T) {
		pending := payment("g1", "carol", "alice", "7.00", models.SettlementPending)
		require.NoError(t, store.CreateSettlement(ctx, pending))

		updated, err := store.TransitionSettlement(ctx, pending.ID, models.SettlementPending, models.SettlementCompleted)
		require.NoError(t, err)
		assert.Equal(t, models.SettlementCompleted, updated.Status)
		assert.NotZero(t, updated.SettledAt)

		_, err = store.TransitionSettlement(ctx, pending.ID, models.SettlementPending, models.SettlementCancelled)
		assert.ErrorIs(t, err, storage.ErrStatusConflict)

		got, err := store.GetSettlement(ctx, pending.ID)
		require.NoError(t, err)
		assert.Equal(t, models.SettlementCompleted, got.Status)
	})

	t.Run("TransitionSettlement cancels without SettledAt", func(t *testing.T) {
		pending := payment("g1", "dave", "alice", "3.00", models.SettlementPending)
		require.NoError(t, store.CreateSettlement(ctx, pending))

		updated, err := store.TransitionSettlement(ctx, pending.ID, models.SettlementPending, models.SettlementCancelled)
		require.NoError(t, err)
		assert.Equal(t, models.SettlementCancelled, updated.Status)
		assert.Zero(t, updated.SettledAt)
	})

	t.Run("TransitionSettlement rejects unknown IDs and illegal transitions", func(t *testing.T) {
		_, err := store.TransitionSettlement(ctx, "nonexistent-id", models.SettlementPending, models.SettlementCompleted)
		assert.ErrorIs(t, err, storage.ErrNotFound)

		_, err = store.TransitionSettlement(ctx, "any", models.SettlementCompleted, models.SettlementPending)
		assert.Error(t, err)
	})

	t.Run("concurrent completions have a single winner", func(t *testing.T) {
		pending := payment("g1", "erin", "alice", "9.99", models.SettlementPending)
		require.NoError(t, store.CreateSettlement(ctx, pending))

		const callers = 8
		var (
			wg        sync.WaitGroup
			mu        sync.Mutex
			succeeded int
			conflicts int
		)
		for i := 0; i < callers; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				_, err := store.TransitionSettlement(ctx, pending.ID, models.SettlementPending, models.SettlementCompleted)
				mu.Lock()
				defer mu.Unlock()
				switch {
				case err == nil:
					succeeded++
				case errors.Is(err, storage.ErrStatusConflict):
					conflicts++
				default:
					t.Errorf("unexpected error: %v", err)
				}
			}()
		}
		wg.Wait()

		assert.Equal(t, 1, succeeded)
		assert.Equal(t, callers-1, conflicts)
	})

	t.Run("ListSettlementsByUser matches payer or payee", func(t *testing.T) {
		require.NoError(t, store.CreateSettlement(ctx, payment("g-user", "frank", "gina", "1.00", models.SettlementCompleted)))
		require.NoError(t, store.CreateSettlement(ctx, payment("g-user", "gina", "hank", "2.00", models.SettlementCompleted)))
		require.NoError(t, store.CreateSettlement(ctx, payment("g-user", "hank", "frank", "3.00", models.SettlementCompleted)))

		list, err := store.ListSettlementsByUser(ctx, "gina")
		require.NoError(t, err)
		assert.Len(t, list, 2)
		for _, s := range list {
			assert.True(t, s.PayerID == "gina" || s.PayeeID == "gina")
		}

		byGroup, err := store.ListSettlementsByGroup(ctx, "g-user")
		require.NoError(t, err)
		assert.Len(t, byGroup, 3)
	})
}

func TestGroupLedger(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	active := dinner("g1")
	removed := dinner("g1")
	other := dinner("g2")
	for _, e := range []*models.Expense{active, removed, other} {
		require.NoError(t, store.CreateExpense(ctx, e))
	}
	require.NoError(t, store.DeactivateExpense(ctx, removed.ID))

	require.NoError(t, store.CreateSettlement(ctx, payment("g1", "bob", "alice", "10.00", models.SettlementCompleted)))
	require.NoError(t, store.CreateSettlement(ctx, payment("g1", "carol", "alice", "5.00", models.SettlementPending)))
	require.NoError(t, store.CreateSettlement(ctx, payment("g2", "bob", "alice", "1.00", models.SettlementCompleted)))

	ledger, err := store.GroupLedger(ctx, "g1")
	require.NoError(t, err)
	assert.Equal(t, "g1", ledger.GroupID)
	require.Len(t, ledger.Expenses, 1)
	assert.Equal(t, active.ID, ledger.Expenses[0].ID)
	assert.Len(t, ledger.Expenses[0].Shares, 3)
	assert.Len(t, ledger.Settlements, 2)

	empty, err := store.GroupLedger(ctx, "g-none")
	require.NoError(t, err)
	assert.Empty(t, empty.Expenses)
	assert.Empty(t, empty.Settlements)
}

func TestActivities(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	for i, typ := range []models.ActivityType{
		models.ActivityExpenseAdded,
		models.ActivityPaymentRecorded,
		models.ActivitySettlementCompleted,
	} {
		require.NoError(t, store.CreateActivity(ctx, &models.Activity{
			Type:        typ,
			GroupID:     "g1",
			ActorID:     "alice",
			Description: string(typ),
			CreatedAt:   int64(1000 + i),
		}))
	}
	require.NoError(t, store.CreateActivity(ctx, &models.Activity{
		Type:         models.ActivityPaymentRecorded,
		GroupID:      "g2",
		ActorID:      "bob",
		TargetUserID: "alice",
		Description:  "bob paid alice",
	}))

	list, err := store.ListActivitiesByGroup(ctx, "g1", 2)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, models.ActivitySettlementCompleted, list[0].Type)
	assert.Equal(t, models.ActivityPaymentRecorded, list[1].Type)
	assert.Empty(t, list[0].TargetUserID)

	all, err := store.ListActivitiesByGroup(ctx, "g2", 0)
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.Equal(t, "alice", all[0].TargetUserID)
	assert.NotEmpty(t, all[0].ID)
}

func TestExpenseDetails(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	expense := dinner("g1")
	expense.Category = "FOOD"
	expense.Notes = "birthday"
	expense.ReceiptURL = "https://receipts.example.com/1.png"
	require.NoError(t, store.CreateExpense(ctx, expense))
	assert.Equal(t, expense.CreatedAt, expense.Date, "date defaults to creation time")

	expense.Category = "ENTERTAINMENT"
	expense.Notes = ""
	expense.Date = 1700000000
	require.NoError(t, store.ReplaceExpense(ctx, expense))

	got, err := store.GetExpense(ctx, expense.ID)
	require.NoError(t, err)
	assert.Equal(t, "ENTERTAINMENT", got.Category)
	assert.Empty(t, got.Notes)
	assert.Equal(t, "https://receipts.example.com/1.png", got.ReceiptURL)
	assert.Equal(t, int64(1700000000), got.Date)
}

func TestUserLedger(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	// carol has a share in the first two and pays the third.
	older := dinner("g1")
	older.Date = 1000
	newer := dinner("g2")
	newer.Date = 2000
	paid := &models.Expense{
		GroupID:     "g3",
		Description: "Taxi",
		Amount:      dec("20.00"),
		Currency:    "USD",
		PayerID:     "carol",
		Strategy:    models.SplitEqual,
		CreatedBy:   "carol",
		Date:        1500,
		Shares: []models.Share{
			{UserID: "carol", Amount: dec("10.00"), Settled: true},
			{UserID: "dave", Amount: dec("10.00")},
		},
	}
	unrelated := dinner("g1")
	unrelated.Shares = []models.Share{{UserID: "alice", Amount: dec("100.00"), Settled: true}}
	removed := dinner("g2")
	for _, e := range []*models.Expense{older, newer, paid, unrelated, removed} {
		require.NoError(t, store.CreateExpense(ctx, e))
	}
	require.NoError(t, store.DeactivateExpense(ctx, removed.ID))

	require.NoError(t, store.CreateSettlement(ctx, payment("g1", "carol", "alice", "10.00", models.SettlementCompleted)))
	require.NoError(t, store.CreateSettlement(ctx, payment("g2", "bob", "alice", "1.00", models.SettlementCompleted)))

	list, err := store.ListExpensesByUser(ctx, "carol")
	require.NoError(t, err)
	require.Len(t, list, 3)
	assert.Equal(t, []string{newer.ID, paid.ID, older.ID}, []string{list[0].ID, list[1].ID, list[2].ID})
	assert.Len(t, list[0].Shares, 3, "shares are attached in full, not only the user's")
	assert.Len(t, list[1].Shares, 2)

	ledger, err := store.UserLedger(ctx, "carol")
	require.NoError(t, err)
	assert.Empty(t, ledger.GroupID)
	assert.Len(t, ledger.Expenses, 3)
	require.Len(t, ledger.Settlements, 1)
	assert.Equal(t, "carol", ledger.Settlements[0].PayerID)

	none, err := store.ListExpensesByUser(ctx, "nobody")
	require.NoError(t, err)
	assert.Empty(t, none)
}
