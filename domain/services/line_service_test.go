package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"dailybet/domain/apperrors"
	"dailybet/domain/entities"
	"dailybet/domain/events"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func newTestLineService(mocks *TestMocks, now time.Time) *lineService {
	svc := NewLineService(mocks.DailyLineRepo, mocks.BetRepo, mocks.Ledger(), mocks.EventPublisher).(*lineService)
	svc.now = fixedClock(now)
	return svc
}

func TestLineService_SetDailyLine(t *testing.T) {
	ctx := context.Background()

	t.Run("upserts line keyed by cutoff date", func(t *testing.T) {
		mocks := NewTestMocks()
		svc := newTestLineService(mocks, TestNow)

		mocks.DailyLineRepo.On("Upsert", ctx, mock.MatchedBy(func(l *entities.DailyLine) bool {
			return l.Date == TestLineDate &&
				l.YesOdds == "+150" &&
				l.NoOdds == "-200" &&
				l.IsActive &&
				l.CutoffTime.Equal(time.Date(2025, 3, 10, 20, 0, 0, 0, time.UTC))
		})).Return(testLine("+150", "-200"), nil)
		mocks.ExpectEvent(events.EventTypeDailyLineUpdated)

		line, err := svc.SetDailyLine(ctx, lineParams("Will ETH close above 4000?", "+150", "-200", "2025-03-10T20:00"))

		require.NoError(t, err)
		assert.Equal(t, TestLineDate, line.Date)
		mocks.AssertAllExpectations(t)
	})

	t.Run("accepts RFC3339 with offset", func(t *testing.T) {
		mocks := NewTestMocks()
		svc := newTestLineService(mocks, TestNow)

		mocks.DailyLineRepo.On("Upsert", ctx, mock.MatchedBy(func(l *entities.DailyLine) bool {
			return l.Date == TestLineDate && l.CutoffTime.Equal(time.Date(2025, 3, 10, 18, 0, 0, 0, time.UTC))
		})).Return(testLine("100", "100"), nil)
		mocks.ExpectEvent(events.EventTypeDailyLineUpdated)

		_, err := svc.SetDailyLine(ctx, lineParams("q", "100", "100", "2025-03-10T20:00:00+02:00"))

		require.NoError(t, err)
		mocks.AssertAllExpectations(t)
	})

	t.Run("non-numeric odds are stored as entered", func(t *testing.T) {
		mocks := NewTestMocks()
		svc := newTestLineService(mocks, TestNow)

		mocks.DailyLineRepo.On("Upsert", ctx, mock.MatchedBy(func(l *entities.DailyLine) bool {
			return l.YesOdds == "even"
		})).Return(testLine("even", "-110"), nil)
		mocks.ExpectEvent(events.EventTypeDailyLineUpdated)

		_, err := svc.SetDailyLine(ctx, lineParams("q", "even", "-110", "2025-03-10T20:00"))

		require.NoError(t, err)
		mocks.AssertAllExpectations(t)
	})

	t.Run("rejects missing fields and bad cutoff", func(t *testing.T) {
		mocks := NewTestMocks()
		svc := newTestLineService(mocks, TestNow)

		_, err := svc.SetDailyLine(ctx, lineParams("", "+150", "-200", "2025-03-10T20:00"))
		assert.ErrorIs(t, err, apperrors.ErrValidation)

		_, err = svc.SetDailyLine(ctx, lineParams("q", "+150", " ", "2025-03-10T20:00"))
		assert.ErrorIs(t, err, apperrors.ErrValidation)

		_, err = svc.SetDailyLine(ctx, lineParams("q", "+150", "-200", "tomorrow at noon"))
		assert.ErrorIs(t, err, apperrors.ErrValidation)

		mocks.DailyLineRepo.AssertNotCalled(t, "Upsert", mock.Anything, mock.Anything)
	})
}

func TestLineService_GetTodayLine(t *testing.T) {
	ctx := context.Background()

	t.Run("returns line for today's UTC date", func(t *testing.T) {
		mocks := NewTestMocks()
		svc := newTestLineService(mocks, TestNow)
		mocks.DailyLineRepo.On("GetByDate", ctx, TestLineDate).Return(testLine("+150", "-200"), nil)

		line, err := svc.GetTodayLine(ctx)

		require.NoError(t, err)
		assert.Equal(t, TestLineDate, line.Date)
	})

	t.Run("not found when no line is set", func(t *testing.T) {
		mocks := NewTestMocks()
		svc := newTestLineService(mocks, TestNow)
		mocks.DailyLineRepo.On("GetByDate", ctx, TestLineDate).Return(nil, nil)

		_, err := svc.GetTodayLine(ctx)

		assert.ErrorIs(t, err, apperrors.ErrNotFound)
	})
}

func TestLineService_PlaceBet(t *testing.T) {
	ctx := context.Background()

	t.Run("debits stake and records bet", func(t *testing.T) {
		mocks := NewTestMocks()
		svc := newTestLineService(mocks, TestNow)

		mocks.DailyLineRepo.On("GetByDateForShare", ctx, TestLineDate).Return(testLine("+150", "-200"), nil)
		mocks.ExpectLedgerMutation(TestUsername, "10", "7.5", entities.TransactionTypeBetPlaced)

		var betID string
		mocks.BetRepo.On("Create", ctx, mock.MatchedBy(func(b *entities.Bet) bool {
			betID = b.ID
			return b.Username == TestUsername &&
				b.Choice == entities.SideYes &&
				b.Amount.Equal(dec("2.5")) &&
				b.LineDate == TestLineDate
		})).Return(nil)
		mocks.BetRepo.On("VolumeByLine", ctx, TestLineDate).
			Return(&entities.BetVolume{TotalBets: 3, TotalAmount: dec("12.5")}, nil)
		mocks.ExpectEvent(events.EventTypeBetPlaced)
		mocks.ExpectEvent(events.EventTypeBetVolumeUpdated)

		result, err := svc.PlaceBet(ctx, TestUsername, entities.SideYes, dec("2.5"))

		require.NoError(t, err)
		assert.True(t, result.Balance.Equal(dec("7.5")))
		assert.Equal(t, 3, result.Volume.TotalBets)
		assert.Equal(t, betID, result.Bet.ID)
		assert.NotEmpty(t, betID)
		mocks.AssertAllExpectations(t)
	})

	t.Run("history entry points at the bet", func(t *testing.T) {
		mocks := NewTestMocks()
		svc := newTestLineService(mocks, TestNow)

		mocks.DailyLineRepo.On("GetByDateForShare", ctx, TestLineDate).Return(testLine("+150", "-200"), nil)
		mocks.UserRepo.On("GetForUpdate", ctx, TestUsername).
			Return(&entities.User{Username: TestUsername, Balance: dec("5")}, nil)
		mocks.UserRepo.On("UpdateBalance", ctx, TestUsername, decEq("5"), decEq("4")).Return(nil)
		mocks.EventPublisher.On("Publish", mock.Anything).Return(nil)
		mocks.BetRepo.On("VolumeByLine", ctx, TestLineDate).Return(&entities.BetVolume{TotalBets: 1, TotalAmount: dec("1")}, nil)

		var recorded *entities.BalanceHistory
		mocks.BalanceHistoryRepo.On("Record", ctx, mock.Anything).Run(func(args mock.Arguments) {
			recorded = args.Get(1).(*entities.BalanceHistory)
		}).Return(nil)
		var created *entities.Bet
		mocks.BetRepo.On("Create", ctx, mock.Anything).Run(func(args mock.Arguments) {
			created = args.Get(1).(*entities.Bet)
		}).Return(nil)

		_, err := svc.PlaceBet(ctx, TestUsername, entities.SideNo, dec("1"))

		require.NoError(t, err)
		require.NotNil(t, recorded.RelatedID)
		assert.Equal(t, created.ID, *recorded.RelatedID)
		assert.Equal(t, "NO", recorded.TransactionMetadata["choice"])
	})

	t.Run("insufficient funds leaves no bet", func(t *testing.T) {
		mocks := NewTestMocks()
		svc := newTestLineService(mocks, TestNow)

		mocks.DailyLineRepo.On("GetByDateForShare", ctx, TestLineDate).Return(testLine("+150", "-200"), nil)
		mocks.UserRepo.On("GetForUpdate", ctx, TestUsername).
			Return(&entities.User{Username: TestUsername, Balance: dec("1")}, nil)

		_, err := svc.PlaceBet(ctx, TestUsername, entities.SideYes, dec("2"))

		assert.ErrorIs(t, err, apperrors.ErrInsufficientFunds)
		mocks.BetRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
		mocks.UserRepo.AssertNotCalled(t, "UpdateBalance", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("betting closed at cutoff", func(t *testing.T) {
		mocks := NewTestMocks()
		svc := newTestLineService(mocks, time.Date(2025, 3, 10, 20, 0, 0, 0, time.UTC))

		mocks.DailyLineRepo.On("GetByDateForShare", ctx, TestLineDate).Return(testLine("+150", "-200"), nil)

		_, err := svc.PlaceBet(ctx, TestUsername, entities.SideYes, dec("1"))

		assert.ErrorIs(t, err, apperrors.ErrValidation)
		mocks.UserRepo.AssertNotCalled(t, "GetForUpdate", mock.Anything, mock.Anything)
	})

	t.Run("resolved line refuses bets before cutoff", func(t *testing.T) {
		mocks := NewTestMocks()
		svc := newTestLineService(mocks, TestNow)

		line := testLine("+150", "-200")
		yes := entities.SideYes
		line.WinningSide = &yes
		mocks.DailyLineRepo.On("GetByDateForShare", ctx, TestLineDate).Return(line, nil)

		_, err := svc.PlaceBet(ctx, TestUsername, entities.SideNo, dec("1"))

		assert.ErrorIs(t, err, apperrors.ErrValidation)
	})

	t.Run("no line today", func(t *testing.T) {
		mocks := NewTestMocks()
		svc := newTestLineService(mocks, TestNow)
		mocks.DailyLineRepo.On("GetByDateForShare", ctx, TestLineDate).Return(nil, nil)

		_, err := svc.PlaceBet(ctx, TestUsername, entities.SideYes, dec("1"))

		assert.ErrorIs(t, err, apperrors.ErrNotFound)
	})

	t.Run("validates choice and amount before touching storage", func(t *testing.T) {
		mocks := NewTestMocks()
		svc := newTestLineService(mocks, TestNow)

		_, err := svc.PlaceBet(ctx, TestUsername, entities.Side("MAYBE"), dec("1"))
		assert.ErrorIs(t, err, apperrors.ErrValidation)

		_, err = svc.PlaceBet(ctx, TestUsername, entities.SideYes, dec("0"))
		assert.ErrorIs(t, err, apperrors.ErrValidation)

		_, err = svc.PlaceBet(ctx, TestUsername, entities.SideYes, dec("-1"))
		assert.ErrorIs(t, err, apperrors.ErrValidation)

		_, err = svc.PlaceBet(ctx, TestUsername, entities.SideYes, dec("1.000004"))
		assert.ErrorIs(t, err, apperrors.ErrValidation)

		mocks.AssertAllExpectations(t)
	})
}

func TestLineService_ListTodayBets(t *testing.T) {
	ctx := context.Background()
	mocks := NewTestMocks()
	svc := newTestLineService(mocks, TestNow)

	line := testLine("+150", "-200")
	no := entities.SideNo
	line.WinningSide = &no
	mocks.DailyLineRepo.On("GetByDate", ctx, TestLineDate).Return(line, nil)
	mocks.BetRepo.On("ListByLine", ctx, TestLineDate).Return([]*entities.Bet{
		{ID: "b2", Username: TestOtherUsername, Choice: entities.SideNo, Amount: dec("1")},
		{ID: "b1", Username: TestUsername, Choice: entities.SideYes, Amount: dec("2")},
	}, nil)

	views, err := svc.ListTodayBets(ctx)

	require.NoError(t, err)
	require.Len(t, views, 2)
	assert.Equal(t, entities.BetStatusWon, views[0].Status)
	assert.Equal(t, entities.BetStatusLost, views[1].Status)
}

func TestLineService_GetBetVolume(t *testing.T) {
	ctx := context.Background()
	mocks := NewTestMocks()
	svc := newTestLineService(mocks, TestNow)

	mocks.DailyLineRepo.On("GetByDate", ctx, TestLineDate).Return(testLine("+150", "-200"), nil)
	mocks.BetRepo.On("VolumeByLine", ctx, TestLineDate).Return(nil, errors.New("connection reset"))

	_, err := svc.GetBetVolume(ctx)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to get bet volume")
}

func TestLineService_ResolveLine(t *testing.T) {
	ctx := context.Background()

	t.Run("sets winner once", func(t *testing.T) {
		mocks := NewTestMocks()
		svc := newTestLineService(mocks, TestNow)

		mocks.DailyLineRepo.On("GetByDate", ctx, TestLineDate).Return(testLine("+150", "-200"), nil)
		mocks.DailyLineRepo.On("SetWinningSide", ctx, TestLineDate, entities.SideYes, TestNow).Return(true, nil)

		line, err := svc.ResolveLine(ctx, TestLineDate, entities.SideYes)

		require.NoError(t, err)
		require.NotNil(t, line.WinningSide)
		assert.Equal(t, entities.SideYes, *line.WinningSide)
		assert.Equal(t, entities.LineStateResolved, line.StateAt(TestNow))
		mocks.AssertAllExpectations(t)
	})

	t.Run("already resolved", func(t *testing.T) {
		mocks := NewTestMocks()
		svc := newTestLineService(mocks, TestNow)

		line := testLine("+150", "-200")
		no := entities.SideNo
		line.WinningSide = &no
		mocks.DailyLineRepo.On("GetByDate", ctx, TestLineDate).Return(line, nil)

		_, err := svc.ResolveLine(ctx, TestLineDate, entities.SideYes)

		assert.ErrorIs(t, err, apperrors.ErrAlreadyProcessed)
		mocks.DailyLineRepo.AssertNotCalled(t, "SetWinningSide", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("lost race to another resolver", func(t *testing.T) {
		mocks := NewTestMocks()
		svc := newTestLineService(mocks, TestNow)

		mocks.DailyLineRepo.On("GetByDate", ctx, TestLineDate).Return(testLine("+150", "-200"), nil)
		mocks.DailyLineRepo.On("SetWinningSide", ctx, TestLineDate, entities.SideNo, TestNow).Return(false, nil)

		_, err := svc.ResolveLine(ctx, TestLineDate, entities.SideNo)

		assert.ErrorIs(t, err, apperrors.ErrAlreadyProcessed)
	})

	t.Run("missing line and bad input", func(t *testing.T) {
		mocks := NewTestMocks()
		svc := newTestLineService(mocks, TestNow)
		mocks.DailyLineRepo.On("GetByDate", ctx, "2025-03-09").Return(nil, nil)

		_, err := svc.ResolveLine(ctx, "2025-03-09", entities.SideYes)
		assert.ErrorIs(t, err, apperrors.ErrNotFound)

		_, err = svc.ResolveLine(ctx, "03/09/2025", entities.SideYes)
		assert.ErrorIs(t, err, apperrors.ErrValidation)

		_, err = svc.ResolveLine(ctx, TestLineDate, entities.Side("yes"))
		assert.ErrorIs(t, err, apperrors.ErrValidation)
	})
}
