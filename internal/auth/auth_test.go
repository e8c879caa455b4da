package auth

import (
	"fmt"
	"testing"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/ksred/fantaleague-api/internal/database"
	"github.com/ksred/fantaleague-api/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

const testSecret = "test-secret"

func setupAuthTest(t *testing.T) (*Service, *gorm.DB) {
	t.Helper()
	db, err := database.NewDatabase(fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString()))
	require.NoError(t, err)
	return NewService(db, testSecret, "admin", "admin-pass"), db
}

func seedTeam(t *testing.T, db *gorm.DB, name, password string) {
	t.Helper()
	hash, err := HashPassword(password)
	require.NoError(t, err)
	require.NoError(t, db.Create(&types.Team{
		TeamID:       "TEAM_1",
		Name:         name,
		Division:     "A",
		Credits:      100,
		PasswordHash: hash,
	}).Error)
}

func TestLogin(t *testing.T) {
	svc, db := setupAuthTest(t)
	seedTeam(t, db, "Alpha", "password123")

	token, err := svc.Login(Credentials{Name: "Alpha", Password: "password123"})
	require.NoError(t, err)
	assert.NotEmpty(t, token.Token)
	require.NotNil(t, token.Team)
	assert.Equal(t, "TEAM_1", token.Team.TeamID)
	assert.Equal(t, "A", token.Team.Division)

	// The token carries the team identity
	parsed, err := jwt.Parse(token.Token, func(tok *jwt.Token) (interface{}, error) {
		return []byte(testSecret), nil
	})
	require.NoError(t, err)
	claims := parsed.Claims.(jwt.MapClaims)
	assert.Equal(t, "TEAM_1", claims["team_id"])
	assert.Equal(t, "Alpha", claims["team_name"])
}

func TestLoginInvalidCredentials(t *testing.T) {
	svc, db := setupAuthTest(t)
	seedTeam(t, db, "Alpha", "password123")

	_, err := svc.Login(Credentials{Name: "Alpha", Password: "wrong"})
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	_, err = svc.Login(Credentials{Name: "Nobody", Password: "password123"})
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestAdminLogin(t *testing.T) {
	svc, _ := setupAuthTest(t)

	token, err := svc.AdminLogin(Credentials{Name: "admin", Password: "admin-pass"})
	require.NoError(t, err)
	assert.NotEmpty(t, token.Token)
	assert.Nil(t, token.Team)

	parsed, err := jwt.Parse(token.Token, func(tok *jwt.Token) (interface{}, error) {
		return []byte(testSecret), nil
	})
	require.NoError(t, err)
	claims := parsed.Claims.(jwt.MapClaims)
	assert.Equal(t, "admin", claims["role"])

	_, err = svc.AdminLogin(Credentials{Name: "admin", Password: "wrong"})
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestChangePassword(t *testing.T) {
	svc, db := setupAuthTest(t)
	seedTeam(t, db, "Alpha", "password123")

	err := svc.ChangePassword("TEAM_1", "wrong", "newpassword")
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	require.NoError(t, svc.ChangePassword("TEAM_1", "password123", "newpassword"))

	_, err = svc.Login(Credentials{Name: "Alpha", Password: "password123"})
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	_, err = svc.Login(Credentials{Name: "Alpha", Password: "newpassword"})
	assert.NoError(t, err)
}
