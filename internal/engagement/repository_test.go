package engagement

import (
	"context"
	"regexp"
	"testing"

	"gostatus/internal/common"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func setupTestDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)

	gormDB, err := gorm.Open(mysql.New(mysql.Config{
		Conn:                      db,
		SkipInitializeWithVersion: true,
	}), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	return gormDB, mock, func() { db.Close() }
}

func TestEngagementRepository_InsertView(t *testing.T) {
	tests := []struct {
		name      string
		mockSetup func(sqlmock.Sqlmock)
		want      bool
	}{
		{
			name: "first view bumps counter",
			mockSetup: func(mock sqlmock.Sqlmock) {
				mock.ExpectBegin()
				mock.ExpectExec(regexp.QuoteMeta("INSERT INTO `status_views`")).
					WillReturnResult(sqlmock.NewResult(1, 1))
				mock.ExpectExec(regexp.QuoteMeta("UPDATE `statuses` SET `view_count`=view_count + ?")).
					WithArgs(1, 3).
					WillReturnResult(sqlmock.NewResult(0, 1))
				mock.ExpectCommit()
			},
			want: true,
		},
		{
			name: "repeat view leaves counter",
			mockSetup: func(mock sqlmock.Sqlmock) {
				mock.ExpectBegin()
				mock.ExpectExec(regexp.QuoteMeta("INSERT INTO `status_views`")).
					WillReturnResult(sqlmock.NewResult(0, 0))
				mock.ExpectCommit()
			},
			want: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db, mock, cleanup := setupTestDB(t)
			defer cleanup()
			tt.mockSetup(mock)

			got, err := NewEngagementRepository(db).InsertView(context.Background(), 3, 9, t0)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestEngagementRepository_DeleteLikeNeverGoesNegative(t *testing.T) {
	db, mock, cleanup := setupTestDB(t)
	defer cleanup()

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM `status_likes` WHERE status_id = ? AND viewer_id = ?")).
		WithArgs(3, 9).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(regexp.QuoteMeta("UPDATE `statuses` SET `like_count`=like_count - ? WHERE status_id = ? AND like_count > 0")).
		WithArgs(1, 3).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	removed, err := NewEngagementRepository(db).DeleteLike(context.Background(), 3, 9)
	require.NoError(t, err)
	assert.True(t, removed)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestEngagementRepository_Counts(t *testing.T) {
	db, mock, cleanup := setupTestDB(t)
	defer cleanup()

	mock.ExpectQuery(regexp.QuoteMeta("SELECT `view_count`,`like_count` FROM `statuses`")).
		WillReturnRows(sqlmock.NewRows([]string{"view_count", "like_count"}).AddRow(12, 4))
	mock.ExpectQuery(regexp.QuoteMeta("SELECT `view_count`,`like_count` FROM `statuses`")).
		WillReturnError(gorm.ErrRecordNotFound)

	repo := NewEngagementRepository(db)
	views, likes, err := repo.Counts(context.Background(), 3)
	require.NoError(t, err)
	assert.Equal(t, int64(12), views)
	assert.Equal(t, int64(4), likes)

	_, _, err = repo.Counts(context.Background(), 4)
	assert.ErrorIs(t, err, common.ErrNotFound)
}
