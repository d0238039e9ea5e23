// internal/providers/postgres/postgres_test.go
package postgres

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"metasearch-engine/internal/common/database"
	"metasearch-engine/internal/common/logger"
)

func newMockProvider(t *testing.T) (*Provider, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	p, err := New(Config{Timeout: 2 * time.Second}, &database.PostgresClient{DB: db}, logger.NewTestLogger(t))
	require.NoError(t, err)
	return p, mock
}

func TestSearch_RanksByRelevance(t *testing.T) {
	p, mock := newMockProvider(t)

	rows := sqlmock.NewRows([]string{"url", "title", "snippet", "relevance"}).
		AddRow("https://kb.example.com/a", "Alpha", "first", 0.92).
		AddRow("https://kb.example.com/b", "Beta", "second", 0.41)

	mock.ExpectQuery("SELECT url, title, snippet").
		WithArgs("rank fusion", 10).
		WillReturnRows(rows)

	results, err := p.Search(context.Background(), "rank fusion", 10)
	require.NoError(t, err)
	require.Len(t, results, 2)

	assert.Equal(t, "https://kb.example.com/a", results[0].URL)
	assert.Equal(t, 1, results[0].Rank)
	require.NotNil(t, results[0].Score)
	assert.InDelta(t, 0.92, *results[0].Score, 1e-9)
	assert.Equal(t, "postgres", results[0].SourceID)

	assert.Equal(t, 2, results[1].Rank)
	assert.InDelta(t, 0.41, *results[1].Score, 1e-9)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSearch_EmptyResultSet(t *testing.T) {
	p, mock := newMockProvider(t)

	mock.ExpectQuery("SELECT url, title, snippet").
		WithArgs("nothing", 10).
		WillReturnRows(sqlmock.NewRows([]string{"url", "title", "snippet", "relevance"}))

	results, err := p.Search(context.Background(), "nothing", 10)
	require.NoError(t, err)
	assert.Empty(t, results)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSearch_QueryFailure(t *testing.T) {
	p, mock := newMockProvider(t)

	mock.ExpectQuery("SELECT url, title, snippet").
		WithArgs("q", 5).
		WillReturnError(errors.New("relation \"documents\" does not exist"))

	_, err := p.Search(context.Background(), "q", 5)
	assert.Error(t, err)
}

func TestNew_NilClient(t *testing.T) {
	_, err := New(Config{}, nil, logger.NewNoOpLogger())
	assert.Error(t, err)
}
