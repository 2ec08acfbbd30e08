package service

import (
	"context"
	"testing"

	"kashflow/internal/config"
	"kashflow/internal/dto"
	"kashflow/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func newAuthFixture(t *testing.T) (AuthService, *stubUsuarioRepo) {
	t.Helper()
	repo := newStubUsuarioRepo()
	cfg := &config.Config{
		JWTSecret:          "test-secret",
		JWTExpirationHours: 8,
		JWTRefreshHours:    24,
	}
	return NewAuthService(repo, cfg), repo
}

func seedUsuario(t *testing.T, repo *stubUsuarioRepo, username, password string) *model.Usuario {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	require.NoError(t, err)
	return repo.add(&model.Usuario{
		Username:     username,
		Nombre:       "Vendedor Uno",
		PasswordHash: string(hash),
		Rol:          "vendedor",
		Activo:       true,
	})
}

func TestLogin_CredencialesValidas(t *testing.T) {
	svc, repo := newAuthFixture(t)
	seedUsuario(t, repo, "vendedor1", "secreta123")

	resp, err := svc.Login(context.Background(), dto.LoginRequest{Username: "vendedor1", Password: "secreta123"})
	require.NoError(t, err)
	assert.NotEmpty(t, resp.AccessToken)
	assert.NotEmpty(t, resp.RefreshToken)
	assert.Equal(t, "bearer", resp.TokenType)
	assert.Equal(t, 8*3600, resp.ExpiresIn)
	assert.Equal(t, "vendedor1", resp.User.Username)
	assert.Equal(t, "vendedor", resp.User.Rol)
}

func TestLogin_PasswordIncorrecta(t *testing.T) {
	svc, repo := newAuthFixture(t)
	seedUsuario(t, repo, "vendedor1", "secreta123")

	_, err := svc.Login(context.Background(), dto.LoginRequest{Username: "vendedor1", Password: "otra"})
	assert.Error(t, err)
}

func TestLogin_UsuarioInexistente(t *testing.T) {
	svc, _ := newAuthFixture(t)
	_, err := svc.Login(context.Background(), dto.LoginRequest{Username: "nadie", Password: "x"})
	assert.Error(t, err)
}

func TestRefresh_EmiteNuevosTokens(t *testing.T) {
	svc, repo := newAuthFixture(t)
	seedUsuario(t, repo, "vendedor1", "secreta123")

	login, err := svc.Login(context.Background(), dto.LoginRequest{Username: "vendedor1", Password: "secreta123"})
	require.NoError(t, err)

	refreshed, err := svc.Refresh(context.Background(), login.RefreshToken)
	require.NoError(t, err)
	assert.NotEmpty(t, refreshed.AccessToken)
	assert.Equal(t, login.User.ID, refreshed.User.ID)
}

func TestRefresh_TokenInvalido(t *testing.T) {
	svc, _ := newAuthFixture(t)
	_, err := svc.Refresh(context.Background(), "no-es-un-jwt")
	assert.Error(t, err)
}

func TestRefresh_UsuarioDesactivado(t *testing.T) {
	svc, repo := newAuthFixture(t)
	u := seedUsuario(t, repo, "vendedor1", "secreta123")

	login, err := svc.Login(context.Background(), dto.LoginRequest{Username: "vendedor1", Password: "secreta123"})
	require.NoError(t, err)

	u.Activo = false
	_, err = svc.Refresh(context.Background(), login.RefreshToken)
	assert.Error(t, err)
}

func TestCrearUsuario_HasheaPassword(t *testing.T) {
	svc, repo := newAuthFixture(t)

	resp, err := svc.CrearUsuario(context.Background(), dto.CrearUsuarioRequest{
		Username: "nuevo", Nombre: "Nuevo Vendedor", Password: "clave-larga", Rol: "vendedor",
	})
	require.NoError(t, err)
	assert.Equal(t, "nuevo", resp.Username)

	stored, err := repo.FindByUsername(context.Background(), "nuevo")
	require.NoError(t, err)
	assert.NotEqual(t, "clave-larga", stored.PasswordHash)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(stored.PasswordHash), []byte("clave-larga")))
}
