package services

import (
	"testing"
	"time"

	"github.com/qoweh/knut4/models"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func newMockStore(t *testing.T) (*HistoryStore, sqlmock.Sqlmock) {
	t.Helper()

	sqlDB, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	t.Cleanup(func() { _ = sqlDB.Close() })

	db, err := gorm.Open(postgres.New(postgres.Config{
		Conn:                 sqlDB,
		PreferSimpleProtocol: true,
	}), &gorm.Config{})
	require.NoError(t, err)

	return NewHistoryStore(db), mock
}

func historyColumns() []string {
	return []string{"id", "created_at", "updated_at", "deleted_at", "user_id", "weather", "moods", "budget", "latitude", "longitude"}
}

func TestRecordSkipsDuplicateInsideWindow(t *testing.T) {
	store, mock := newMockStore(t)
	fixedNow := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	store.now = func() time.Time { return fixedNow }

	mock.ExpectQuery(`SELECT \* FROM "recommendation_histories" WHERE user_id`).
		WithArgs(uint(1), 1).
		WillReturnRows(sqlmock.NewRows(historyColumns()).
			AddRow(10, fixedNow.Add(-time.Second), fixedNow.Add(-time.Second), nil, 1, "맑음", "매콤", 10000, 37.5, 127.0))

	userID := uint(1)
	store.Record(&userID, "맑음", []string{"매콤"}, 10000, 37.5, 127.0)

	// no INSERT expectation: an insert would fail ExpectationsWereMet
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRecordInsertsWhenTupleDiffers(t *testing.T) {
	store, mock := newMockStore(t)
	fixedNow := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	store.now = func() time.Time { return fixedNow }

	mock.ExpectQuery(`SELECT \* FROM "recommendation_histories" WHERE user_id`).
		WithArgs(uint(1), 1).
		WillReturnRows(sqlmock.NewRows(historyColumns()).
			AddRow(10, fixedNow.Add(-time.Second), fixedNow.Add(-time.Second), nil, 1, "비", "매콤", 10000, 37.5, 127.0))

	mock.ExpectBegin()
	mock.ExpectQuery(`INSERT INTO "recommendation_histories"`).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(11))
	mock.ExpectCommit()

	userID := uint(1)
	store.Record(&userID, "맑음", []string{"매콤"}, 10000, 37.5, 127.0)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRecordInsertsWhenWindowElapsed(t *testing.T) {
	store, mock := newMockStore(t)
	fixedNow := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	store.now = func() time.Time { return fixedNow }

	mock.ExpectQuery(`SELECT \* FROM "recommendation_histories" WHERE user_id`).
		WithArgs(uint(1), 1).
		WillReturnRows(sqlmock.NewRows(historyColumns()).
			AddRow(10, fixedNow.Add(-3*time.Second), fixedNow.Add(-3*time.Second), nil, 1, "맑음", "매콤", 10000, 37.5, 127.0))

	mock.ExpectBegin()
	mock.ExpectQuery(`INSERT INTO "recommendation_histories"`).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(11))
	mock.ExpectCommit()

	userID := uint(1)
	store.Record(&userID, "맑음", []string{"매콤"}, 10000, 37.5, 127.0)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRecordAnonymousAlwaysInserts(t *testing.T) {
	store, mock := newMockStore(t)

	// no dedup SELECT for anonymous callers
	mock.ExpectBegin()
	mock.ExpectQuery(`INSERT INTO "recommendation_histories"`).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(12))
	mock.ExpectCommit()

	store.Record(nil, "맑음", nil, 8000, 37.5, 127.0)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRecordFirstRequestInserts(t *testing.T) {
	store, mock := newMockStore(t)

	mock.ExpectQuery(`SELECT \* FROM "recommendation_histories" WHERE user_id`).
		WithArgs(uint(2), 1).
		WillReturnRows(sqlmock.NewRows(historyColumns()))

	mock.ExpectBegin()
	mock.ExpectQuery(`INSERT INTO "recommendation_histories"`).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(1))
	mock.ExpectCommit()

	userID := uint(2)
	store.Record(&userID, "맑음", []string{"든든"}, 12000, 37.5, 127.0)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestFindForUserNotFound(t *testing.T) {
	store, mock := newMockStore(t)

	mock.ExpectQuery(`SELECT \* FROM "recommendation_histories" WHERE \(id`).
		WillReturnRows(sqlmock.NewRows(historyColumns()))

	_, err := store.FindForUser(99, 1)
	assert.ErrorIs(t, err, ErrHistoryNotFound)
}

func TestListForUserPages(t *testing.T) {
	store, mock := newMockStore(t)
	now := time.Now()

	mock.ExpectQuery(`SELECT count\(\*\) FROM "recommendation_histories"`).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(23))
	mock.ExpectQuery(`SELECT \* FROM "recommendation_histories" WHERE user_id`).
		WillReturnRows(sqlmock.NewRows(historyColumns()).
			AddRow(21, now, now, nil, 1, "맑음", nil, 9000, 37.5, 127.0).
			AddRow(20, now.Add(-time.Minute), now.Add(-time.Minute), nil, 1, "비", "든든", 11000, 37.5, 127.0))

	rows, total, err := store.ListForUser(1, 2, 10)

	require.NoError(t, err)
	assert.Equal(t, int64(23), total)
	require.Len(t, rows, 2)
	assert.Nil(t, rows[0].Moods)
	assert.Equal(t, "든든", *rows[1].Moods)
}

func TestShareTokenCreatesThenReuses(t *testing.T) {
	store, mock := newMockStore(t)
	history := &models.RecommendationHistory{Weather: "맑음"}
	history.ID = 7

	sharedColumns := []string{"id", "created_at", "updated_at", "deleted_at", "user_id", "history_id", "token"}

	// first call: no row yet, create one
	mock.ExpectQuery(`SELECT \* FROM "shared_recommendations" WHERE history_id`).
		WillReturnRows(sqlmock.NewRows(sharedColumns))
	mock.ExpectBegin()
	mock.ExpectQuery(`INSERT INTO "shared_recommendations"`).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(1))
	mock.ExpectCommit()

	first, err := store.ShareToken(history, 3)
	require.NoError(t, err)
	require.NotEmpty(t, first.Token)

	// second call: existing row wins, token unchanged
	now := time.Now()
	mock.ExpectQuery(`SELECT \* FROM "shared_recommendations" WHERE history_id`).
		WillReturnRows(sqlmock.NewRows(sharedColumns).
			AddRow(1, now, now, nil, 3, 7, first.Token))

	second, err := store.ShareToken(history, 3)
	require.NoError(t, err)
	assert.Equal(t, first.Token, second.Token)
	assert.Equal(t, "맑음", second.History.Weather)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestFindSharedUnknownToken(t *testing.T) {
	store, mock := newMockStore(t)

	mock.ExpectQuery(`SELECT \* FROM "shared_recommendations" WHERE token`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "created_at", "updated_at", "deleted_at", "user_id", "history_id", "token"}))

	_, err := store.FindShared("nope")
	assert.ErrorIs(t, err, ErrSharedNotFound)
}

func TestNormalizeMoods(t *testing.T) {
	assert.Nil(t, normalizeMoods(nil))
	assert.Nil(t, normalizeMoods([]string{" ", ""}))

	got := normalizeMoods([]string{" 매콤 ", "", "든든"})
	require.NotNil(t, got)
	assert.Equal(t, "매콤,든든", *got)
}

func TestSameRequestTuple(t *testing.T) {
	moods := "매콤"
	last := &models.RecommendationHistory{Weather: "맑음", Moods: &moods, Budget: 10000, Latitude: 37.5, Longitude: 127.0}

	same := "매콤"
	assert.True(t, sameRequestTuple(last, "맑음", &same, 10000, 37.5, 127.0))

	other := "든든"
	assert.False(t, sameRequestTuple(last, "맑음", &other, 10000, 37.5, 127.0))
	assert.False(t, sameRequestTuple(last, "비", &same, 10000, 37.5, 127.0))
	assert.False(t, sameRequestTuple(last, "맑음", nil, 10000, 37.5, 127.0))
	assert.False(t, sameRequestTuple(last, "맑음", &same, 9999, 37.5, 127.0))

	last.Moods = nil
	assert.True(t, sameRequestTuple(last, "맑음", nil, 10000, 37.5, 127.0))
}
