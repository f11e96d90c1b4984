package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"banking_backend/internal/auth"
	"banking_backend/internal/domain"
	"banking_backend/internal/middleware"
	"banking_backend/internal/service"
	"banking_backend/internal/store"

	"github.com/alicebob/miniredis/v2"
	"github.com/gin-gonic/gin"
	"github.com/glebarez/sqlite"
	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// stubVerifier resolves tokens from a fixed table; everything else is invalid
type stubVerifier struct {
	identities map[string]*auth.Identity
}

func (s *stubVerifier) Verify(_ context.Context, token string) (*auth.Identity, error) {
	if identity, ok := s.identities[token]; ok {
		return identity, nil
	}
	return nil, auth.ErrInvalidToken
}

// openTestDB gives each test a fresh in-memory database with the full schema
func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&domain.UserProfile{}, &domain.AccountDetails{}, &domain.Transaction{}))
	return db
}

// devRouter wires the /api routes behind the dev-mode identity strategy
func devRouter(t *testing.T) (*gin.Engine, *gorm.DB) {
	t.Helper()
	db := openTestDB(t)
	ledger := store.NewLedger(db)
	accounts := service.NewAccounts(db)

	r := gin.New()
	apiGroup := r.Group("/api")
	apiGroup.Use(middleware.DevUser(ledger, "dev@localhost", "Dev User"))
	apiGroup.GET("/profile", ProfileHandler(ledger))
	apiGroup.GET("/account", AccountHandler(ledger))
	apiGroup.POST("/deposit", DepositHandler(ledger, accounts))
	apiGroup.POST("/withdraw", WithdrawHandler(ledger, accounts))
	return r, db
}

// authRouter wires the full authenticated variant with a stub verifier
func authRouter(t *testing.T, verifier auth.TokenVerifier) (*gin.Engine, *gorm.DB) {
	t.Helper()
	db := openTestDB(t)
	ledger := store.NewLedger(db)
	accounts := service.NewAccounts(db)
	mr := miniredis.RunT(t)
	sessions := auth.NewSessions(redis.NewClient(&redis.Options{Addr: mr.Addr()}), "test-secret")

	r := gin.New()
	identity := middleware.SessionAuth(sessions, ledger)
	r.GET("/", IndexHandler(ledger, sessions))
	r.POST("/auth/google_signin", GoogleSignInHandler(verifier, ledger, sessions, ""))
	r.POST("/auth/logout", identity, LogoutHandler(sessions, ""))
	apiGroup := r.Group("/api")
	apiGroup.Use(identity)
	apiGroup.GET("/profile", ProfileHandler(ledger))
	apiGroup.GET("/account", AccountHandler(ledger))
	apiGroup.POST("/deposit", DepositHandler(ledger, accounts))
	apiGroup.POST("/withdraw", WithdrawHandler(ledger, accounts))
	return r, db
}

// doRequest fires one request, optionally with a JSON body and a cookie
func doRequest(r *gin.Engine, method, path, body, cookie string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	if cookie != "" {
		req.AddCookie(&http.Cookie{Name: auth.SessionCookieName, Value: cookie})
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

// balanceOf decodes a {"balance": ...} response
func balanceOf(t *testing.T, w *httptest.ResponseRecorder) decimal.Decimal {
	t.Helper()
	var resp struct {
		Balance decimal.Decimal `json:"balance"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return resp.Balance
}

// accountsOf decodes the account listing response
func accountsOf(t *testing.T, w *httptest.ResponseRecorder) []accountResponse {
	t.Helper()
	var resp []accountResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return resp
}

func TestDevModeProvisionsUserAndAccount(t *testing.T) {
	r, _ := devRouter(t)

	// First access of a brand-new user still yields 200 with one account
	// at balance 0
	w := doRequest(r, http.MethodGet, "/api/account", "", "")
	require.Equal(t, http.StatusOK, w.Code)
	accounts := accountsOf(t, w)
	require.Len(t, accounts, 1)
	assert.True(t, accounts[0].AccountBalance.IsZero())
	assert.Empty(t, accounts[0].Transactions)

	w = doRequest(r, http.MethodGet, "/api/profile", "", "")
	require.Equal(t, http.StatusOK, w.Code)
	var profile profileResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &profile))
	assert.Equal(t, "dev@localhost", profile.EmailAddress)
	assert.True(t, profile.IsActive)
}

func TestDepositWithdrawFlow(t *testing.T) {
	r, _ := devRouter(t)

	w := doRequest(r, http.MethodPost, "/api/deposit", `{"amount":"50"}`, "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.True(t, balanceOf(t, w).Equal(decimal.RequireFromString("50")))

	w = doRequest(r, http.MethodPost, "/api/withdraw", `{"amount":"30"}`, "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.True(t, balanceOf(t, w).Equal(decimal.RequireFromString("20")))

	// The listing shows the new balance and both ledger entries, most
	// recent first
	w = doRequest(r, http.MethodGet, "/api/account", "", "")
	require.Equal(t, http.StatusOK, w.Code)
	accounts := accountsOf(t, w)
	require.Len(t, accounts, 1)
	assert.True(t, accounts[0].AccountBalance.Equal(decimal.RequireFromString("20")))
	require.Len(t, accounts[0].Transactions, 2)
	assert.Equal(t, "WITHDRAWAL", accounts[0].Transactions[0].Type)
	assert.Equal(t, "DEPOSIT", accounts[0].Transactions[1].Type)
	assert.True(t, accounts[0].Transactions[0].AmountBefore.Equal(decimal.RequireFromString("50")))
	assert.True(t, accounts[0].Transactions[0].AmountAfter.Equal(decimal.RequireFromString("20")))
}

func TestWithdrawInsufficientFunds(t *testing.T) {
	r, _ := devRouter(t)

	w := doRequest(r, http.MethodPost, "/api/deposit", `{"amount":"20"}`, "")
	require.Equal(t, http.StatusOK, w.Code)

	w = doRequest(r, http.MethodPost, "/api/withdraw", `{"amount":"100"}`, "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "Insufficient funds")

	// Balance unchanged
	w = doRequest(r, http.MethodGet, "/api/account", "", "")
	accounts := accountsOf(t, w)
	require.Len(t, accounts, 1)
	assert.True(t, accounts[0].AccountBalance.Equal(decimal.RequireFromString("20")))
	assert.Len(t, accounts[0].Transactions, 1)
}

func TestMutationRejectsBadAmounts(t *testing.T) {
	r, _ := devRouter(t)

	for _, body := range []string{`{"amount":"0"}`, `{"amount":"-5"}`, `{}`, `{"amount":"abc"}`} {
		w := doRequest(r, http.MethodPost, "/api/deposit", body, "")
		assert.Equal(t, http.StatusBadRequest, w.Code, "body %s", body)
		w = doRequest(r, http.MethodPost, "/api/withdraw", body, "")
		assert.Equal(t, http.StatusBadRequest, w.Code, "body %s", body)
	}
}

func TestRequiresSession(t *testing.T) {
	verifier := &stubVerifier{identities: map[string]*auth.Identity{}}
	r, _ := authRouter(t, verifier)

	for _, path := range []string{"/api/profile", "/api/account"} {
		w := doRequest(r, http.MethodGet, path, "", "")
		assert.Equal(t, http.StatusUnauthorized, w.Code, "path %s", path)
	}
	w := doRequest(r, http.MethodPost, "/api/deposit", `{"amount":"1"}`, "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	// A forged cookie is just as dead
	w = doRequest(r, http.MethodGet, "/api/profile", "", "forged-token")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestGoogleSignInFlow(t *testing.T) {
	verifier := &stubVerifier{identities: map[string]*auth.Identity{
		"good-token": {Subject: "google-sub-1", Email: "alice@example.com", FullName: "Alice"},
	}}
	r, db := authRouter(t, verifier)

	t.Run("missing token", func(t *testing.T) {
		w := doRequest(r, http.MethodPost, "/auth/google_signin", `{}`, "")
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("invalid token", func(t *testing.T) {
		w := doRequest(r, http.MethodPost, "/auth/google_signin", `{"token":"bad-token"}`, "")
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	// First sign-in creates the user, a default account, and a session
	w := doRequest(r, http.MethodPost, "/auth/google_signin", `{"token":"good-token"}`, "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "alice@example.com")

	var sessionCookie string
	for _, c := range w.Result().Cookies() {
		if c.Name == auth.SessionCookieName {
			sessionCookie = c.Value
		}
	}
	require.NotEmpty(t, sessionCookie, "sign-in must set the session cookie")

	t.Run("session grants access", func(t *testing.T) {
		w := doRequest(r, http.MethodGet, "/api/profile", "", sessionCookie)
		require.Equal(t, http.StatusOK, w.Code)
		var profile profileResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &profile))
		assert.Equal(t, "alice@example.com", profile.EmailAddress)

		w = doRequest(r, http.MethodGet, "/api/account", "", sessionCookie)
		require.Equal(t, http.StatusOK, w.Code)
		accounts := accountsOf(t, w)
		require.Len(t, accounts, 1)
		assert.True(t, accounts[0].AccountBalance.IsZero())
	})

	t.Run("second sign-in reuses the profile", func(t *testing.T) {
		w := doRequest(r, http.MethodPost, "/auth/google_signin", `{"token":"good-token"}`, "")
		require.Equal(t, http.StatusOK, w.Code)
		var count int64
		require.NoError(t, db.Model(&domain.UserProfile{}).Count(&count).Error)
		assert.EqualValues(t, 1, count)
	})

	t.Run("logout revokes the session", func(t *testing.T) {
		w := doRequest(r, http.MethodPost, "/auth/logout", "", sessionCookie)
		require.Equal(t, http.StatusOK, w.Code)
		w = doRequest(r, http.MethodGet, "/api/profile", "", sessionCookie)
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})
}

func TestSignInInactiveUser(t *testing.T) {
	verifier := &stubVerifier{identities: map[string]*auth.Identity{
		"good-token": {Subject: "google-sub-2", Email: "bob@example.com", FullName: "Bob"},
	}}
	r, db := authRouter(t, verifier)

	w := doRequest(r, http.MethodPost, "/auth/google_signin", `{"token":"good-token"}`, "")
	require.Equal(t, http.StatusOK, w.Code)
	var sessionCookie string
	for _, c := range w.Result().Cookies() {
		if c.Name == auth.SessionCookieName {
			sessionCookie = c.Value
		}
	}

	// Deactivate the user behind the live session
	require.NoError(t, db.Model(&domain.UserProfile{}).
		Where("email_address = ?", "bob@example.com").
		Update("is_active", false).Error)

	// Sign-in is refused outright
	w = doRequest(r, http.MethodPost, "/auth/google_signin", `{"token":"good-token"}`, "")
	assert.Equal(t, http.StatusForbidden, w.Code)

	// And the existing session no longer resolves
	w = doRequest(r, http.MethodGet, "/api/profile", "", sessionCookie)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}
