package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/and161185/supp-tracker/internal/model"
)

func TestMigrateLocal_CopiesDays(t *testing.T) {
	local, primary := newFakeDays(), newFakeDays()
	local.data[d(2024, 1, 1)] = []model.Supplement{{Name: "A"}}
	local.data[d(2024, 1, 2)] = []model.Supplement{{Name: "B"}}
	local.data[d(2024, 1, 3)] = []model.Supplement{{Name: "C"}}
	primary.failOn[d(2024, 1, 2)] = true

	res, err := MigrateLocal(context.Background(), local, primary, testUser, zaptest.NewLogger(t))
	require.NoError(t, err)
	require.Equal(t, 2, res.Migrated)
	require.Equal(t, "migrated 2 days of data", res.Message)
	require.Equal(t, 3, primary.writeCount())
}

func TestMigrateLocal_SkipsWhenPrimaryHasData(t *testing.T) {
	local, primary := newFakeDays(), newFakeDays()
	local.data[d(2024, 1, 1)] = []model.Supplement{{Name: "A"}}
	primary.data[d(2023, 12, 31)] = []model.Supplement{{Name: "Z"}}

	res, err := MigrateLocal(context.Background(), local, primary, testUser, zaptest.NewLogger(t))
	require.NoError(t, err)
	require.Zero(t, res.Migrated)
	require.Contains(t, res.Message, "already exists")
	require.Zero(t, primary.writeCount())
}

func TestMigrateLocal_NoLocalStore(t *testing.T) {
	_, err := MigrateLocal(context.Background(), nil, newFakeDays(), testUser, zaptest.NewLogger(t))
	require.Error(t, err)
}
