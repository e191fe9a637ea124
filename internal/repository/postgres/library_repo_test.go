package postgres

import (
	"context"
	"testing"

	"github.com/and161185/supp-tracker/internal/errs"
	"github.com/and161185/supp-tracker/internal/model"
	"github.com/gofrs/uuid/v5"
	"github.com/jackc/pgx/v5"
	pgxmock "github.com/pashagolub/pgxmock/v3"
	"github.com/stretchr/testify/require"
)

func TestLibraryRepo_GetSave(t *testing.T) {
	db, mock := newDB(t)
	defer mock.Close()
	r := NewLibraryRepo(db)
	ctx := context.Background()
	user := uuid.Must(uuid.NewV4())

	mock.ExpectQuery(`SELECT items FROM supplement_libraries WHERE user_id=\$1`).
		WithArgs(user).
		WillReturnError(pgx.ErrNoRows)
	_, err := r.Get(ctx, user)
	require.ErrorIs(t, err, errs.ErrNotFound)

	items := []model.LibraryItem{{ID: "1", Name: "Zinc", DefaultDosage: "15 mg", Category: "Minerals"}}
	mock.ExpectExec(`INSERT INTO supplement_libraries`).
		WithArgs(user, pgxmock.AnyArg()).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))
	require.NoError(t, r.Save(ctx, user, items))

	mock.ExpectQuery(`SELECT items FROM supplement_libraries`).
		WithArgs(user).
		WillReturnRows(pgxmock.NewRows([]string{"items"}).
			AddRow([]byte(`[{"id":"1","name":"Zinc","defaultDosage":"15 mg","category":"Minerals"}]`)))
	got, err := r.Get(ctx, user)
	require.NoError(t, err)
	require.Equal(t, items, got)

	require.NoError(t, mock.ExpectationsWereMet())
}
