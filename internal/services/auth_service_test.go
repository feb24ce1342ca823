package services

import (
	"database/sql"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/transitline/bus-booking-backend/internal/database"
	"github.com/transitline/bus-booking-backend/internal/models"
	"github.com/transitline/bus-booking-backend/pkg/jwt"
)

func newAuthFixture(t *testing.T) (*AuthService, sqlmock.Sqlmock) {
	t.Helper()

	mockDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { mockDB.Close() })

	sqlxDB := sqlx.NewDb(mockDB, "sqlmock")
	pg := &database.PostgresDB{DB: sqlxDB}

	jwtService := jwt.NewService("test-access-secret", "test-refresh-secret", time.Hour, 24*time.Hour)
	userRepo := database.NewUserRepository(pg)
	operatorKeyRepo := database.NewOperatorKeyRepository(pg)

	return NewAuthService(userRepo, operatorKeyRepo, jwtService, bcrypt.MinCost), mock
}

func userColumns() []string {
	return []string{"id", "name", "email", "password_hash", "phone", "role", "created_at", "updated_at"}
}

func TestRegisterFirstUserBecomesAdmin(t *testing.T) {
	service, mock := newAuthFixture(t)

	now := time.Now()
	mock.ExpectQuery("SELECT (.+) FROM users").
		WithArgs("amara@example.com").
		WillReturnError(sql.ErrNoRows)
	mock.ExpectQuery("SELECT COUNT\\(\\*\\) FROM users").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))
	mock.ExpectQuery("INSERT INTO users").
		WillReturnRows(sqlmock.NewRows([]string{"created_at", "updated_at"}).AddRow(now, now))

	resp, err := service.Register(&models.RegisterRequest{
		Name:     "Amara Silva",
		Email:    "Amara@Example.com",
		Password: "super-secret",
	})
	require.NoError(t, err)

	assert.Equal(t, models.RoleAdmin, resp.User.Role)
	assert.Equal(t, "amara@example.com", resp.User.Email, "email is normalized")
	assert.NotEmpty(t, resp.Token)
	assert.NotEmpty(t, resp.RefreshToken)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRegisterWithOperatorKey(t *testing.T) {
	service, mock := newAuthFixture(t)

	now := time.Now()
	mock.ExpectQuery("SELECT (.+) FROM users").
		WithArgs("ops@example.com").
		WillReturnError(sql.ErrNoRows)
	mock.ExpectQuery("SELECT COUNT\\(\\*\\) FROM users").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(3))
	mock.ExpectQuery("SELECT (.+) FROM operator_keys").
		WithArgs("opk_abc123").
		WillReturnRows(sqlmock.NewRows([]string{"id", "key", "created_by", "used_by", "used_at", "created_at"}).
			AddRow("key-1", "opk_abc123", "admin-1", nil, nil, now))
	mock.ExpectExec("UPDATE operator_keys").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery("INSERT INTO users").
		WillReturnRows(sqlmock.NewRows([]string{"created_at", "updated_at"}).AddRow(now, now))

	key := "opk_abc123"
	resp, err := service.Register(&models.RegisterRequest{
		Name:        "Transit Ops",
		Email:       "ops@example.com",
		Password:    "super-secret",
		OperatorKey: &key,
	})
	require.NoError(t, err)

	assert.Equal(t, models.RoleOperator, resp.User.Role)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRegisterOperatorKeyConsumedConcurrently(t *testing.T) {
	service, mock := newAuthFixture(t)

	// Two registrations race on the same key. The loser's UPDATE matches
	// zero rows; no user row may be inserted for it.
	now := time.Now()
	mock.ExpectQuery("SELECT (.+) FROM users").
		WithArgs("ops@example.com").
		WillReturnError(sql.ErrNoRows)
	mock.ExpectQuery("SELECT COUNT\\(\\*\\) FROM users").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(3))
	mock.ExpectQuery("SELECT (.+) FROM operator_keys").
		WithArgs("opk_abc123").
		WillReturnRows(sqlmock.NewRows([]string{"id", "key", "created_by", "used_by", "used_at", "created_at"}).
			AddRow("key-1", "opk_abc123", "admin-1", nil, nil, now))
	mock.ExpectExec("UPDATE operator_keys").
		WillReturnResult(sqlmock.NewResult(0, 0))

	key := "opk_abc123"
	_, err := service.Register(&models.RegisterRequest{
		Name:        "Transit Ops",
		Email:       "ops@example.com",
		Password:    "super-secret",
		OperatorKey: &key,
	})
	assert.ErrorIs(t, err, ErrInvalidOperatorKey)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRegisterUsedOperatorKey(t *testing.T) {
	service, mock := newAuthFixture(t)

	now := time.Now()
	usedBy := "someone"
	mock.ExpectQuery("SELECT (.+) FROM users").
		WithArgs("ops@example.com").
		WillReturnError(sql.ErrNoRows)
	mock.ExpectQuery("SELECT COUNT\\(\\*\\) FROM users").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(3))
	mock.ExpectQuery("SELECT (.+) FROM operator_keys").
		WithArgs("opk_abc123").
		WillReturnRows(sqlmock.NewRows([]string{"id", "key", "created_by", "used_by", "used_at", "created_at"}).
			AddRow("key-1", "opk_abc123", "admin-1", usedBy, now, now))

	key := "opk_abc123"
	_, err := service.Register(&models.RegisterRequest{
		Name:        "Transit Ops",
		Email:       "ops@example.com",
		Password:    "super-secret",
		OperatorKey: &key,
	})
	assert.ErrorIs(t, err, ErrInvalidOperatorKey)
}

func TestRegisterEmailTaken(t *testing.T) {
	service, mock := newAuthFixture(t)

	now := time.Now()
	mock.ExpectQuery("SELECT (.+) FROM users").
		WithArgs("amara@example.com").
		WillReturnRows(sqlmock.NewRows(userColumns()).
			AddRow("user-1", "Amara Silva", "amara@example.com", "hash", nil, "USER", now, now))

	_, err := service.Register(&models.RegisterRequest{
		Name:     "Amara Silva",
		Email:    "amara@example.com",
		Password: "super-secret",
	})
	assert.ErrorIs(t, err, ErrEmailTaken)
}

func TestLogin(t *testing.T) {
	service, mock := newAuthFixture(t)

	hash, err := bcrypt.GenerateFromPassword([]byte("super-secret"), bcrypt.MinCost)
	require.NoError(t, err)

	now := time.Now()
	loginRows := func() *sqlmock.Rows {
		return sqlmock.NewRows(userColumns()).
			AddRow("user-1", "Amara Silva", "amara@example.com", string(hash), nil, "USER", now, now)
	}

	mock.ExpectQuery("SELECT (.+) FROM users").
		WithArgs("amara@example.com").
		WillReturnRows(loginRows())

	resp, err := service.Login(&models.LoginRequest{Email: "amara@example.com", Password: "super-secret"})
	require.NoError(t, err)
	assert.Equal(t, "user-1", resp.User.ID)
	assert.NotEmpty(t, resp.Token)

	// Wrong password and unknown email collapse into the same error
	mock.ExpectQuery("SELECT (.+) FROM users").
		WithArgs("amara@example.com").
		WillReturnRows(loginRows())
	_, err = service.Login(&models.LoginRequest{Email: "amara@example.com", Password: "wrong"})
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	mock.ExpectQuery("SELECT (.+) FROM users").
		WithArgs("nobody@example.com").
		WillReturnError(sql.ErrNoRows)
	_, err = service.Login(&models.LoginRequest{Email: "nobody@example.com", Password: "super-secret"})
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestRefresh(t *testing.T) {
	service, mock := newAuthFixture(t)

	jwtService := jwt.NewService("test-access-secret", "test-refresh-secret", time.Hour, 24*time.Hour)
	refresh, err := jwtService.GenerateRefreshToken("user-1", "amara@example.com")
	require.NoError(t, err)

	now := time.Now()
	mock.ExpectQuery("SELECT (.+) FROM users").
		WithArgs("user-1").
		WillReturnRows(sqlmock.NewRows(userColumns()).
			AddRow("user-1", "Amara Silva", "amara@example.com", "hash", nil, "USER", now, now))

	resp, err := service.Refresh(refresh)
	require.NoError(t, err)
	assert.Equal(t, "user-1", resp.User.ID)
	assert.NotEmpty(t, resp.Token)

	_, err = service.Refresh("not.a.token")
	assert.Error(t, err)
}
