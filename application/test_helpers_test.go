package application_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"dailybet/application"
	"dailybet/domain/entities"
	"dailybet/domain/events"
	"dailybet/infrastructure"
	"dailybet/repository"
	"dailybet/repository/testutil"

	"github.com/stretchr/testify/require"
)

// eventLog collects every event the root publisher dispatches
type eventLog struct {
	mu     sync.Mutex
	events []events.Event
}

func (l *eventLog) handle(ctx context.Context, event events.Event) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.events = append(l.events, event)
	return nil
}

func (l *eventLog) ofType(eventType events.EventType) []events.Event {
	l.mu.Lock()
	defer l.mu.Unlock()
	var out []events.Event
	for _, e := range l.events {
		if e.Type() == eventType {
			out = append(out, e)
		}
	}
	return out
}

type testEnv struct {
	db         *testutil.TestDatabase
	publisher  *infrastructure.DomainEventPublisher
	uowFactory application.UnitOfWorkFactory
	userLocks  *application.UserLocks
	events     *eventLog
}

func setupEnv(t *testing.T) *testEnv {
	t.Helper()
	testDB := testutil.SetupTestDatabase(t)

	log := &eventLog{}
	publisher := infrastructure.NewDomainEventPublisher(nil)
	publisher.RegisterGlobalHandler(log.handle)

	return &testEnv{
		db:         testDB,
		publisher:  publisher,
		uowFactory: infrastructure.NewUnitOfWorkFactory(testDB.DB, publisher),
		userLocks:  application.NewUserLocks(),
		events:     log,
	}
}

// openTodayLine stores a line for the current UTC date that closes in an hour
func (e *testEnv) openTodayLine(t *testing.T) *entities.DailyLine {
	t.Helper()
	line := testutil.CreateTestLine(entities.DateKey(time.Now()))
	line.YesOdds = "150"
	line.NoOdds = "-200"
	line.CutoffTime = time.Now().UTC().Add(time.Hour)

	stored, err := repository.NewDailyLineRepository(e.db.DB).Upsert(context.Background(), line)
	require.NoError(t, err)
	return stored
}
