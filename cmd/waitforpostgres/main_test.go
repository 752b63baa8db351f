package main

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWaitTimeout(t *testing.T) {
	got, err := waitTimeout("")
	require.NoError(t, err)
	assert.Equal(t, 60*time.Second, got)

	got, err = waitTimeout("5")
	require.NoError(t, err)
	assert.Equal(t, 5*time.Second, got)

	for _, raw := range []string{"0", "-1", "soon"} {
		_, err := waitTimeout(raw)
		assert.Error(t, err, "waitTimeout(%q)", raw)
	}
}

func TestWaitReadyRetriesUntilPing(t *testing.T) {
	db, mock, err := sqlmock.New(sqlmock.MonitorPingsOption(true))
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectPing().WillReturnError(errors.New("connection refused"))
	mock.ExpectPing()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	require.NoError(t, waitReady(ctx, db, 10*time.Millisecond))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestWaitReadyGivesUp(t *testing.T) {
	db, mock, err := sqlmock.New(sqlmock.MonitorPingsOption(true))
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectPing().WillReturnError(errors.New("connection refused"))

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	assert.Error(t, waitReady(ctx, db, 100*time.Millisecond))
}
