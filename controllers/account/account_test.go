package accountControllers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/junaidrashid-git/storefront/auth"
	"github.com/junaidrashid-git/storefront/cart"
	"github.com/junaidrashid-git/storefront/database"
	"github.com/junaidrashid-git/storefront/middleware"
	"github.com/junaidrashid-git/storefront/models"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type fakeVerifier struct{}

func (fakeVerifier) Verify(_ context.Context, idToken string) (*auth.ExternalIdentity, error) {
	if idToken != "good" {
		return nil, auth.ErrInvalidIDToken
	}
	return &auth.ExternalIdentity{UID: "g-1", Email: "google@example.com", FullName: "Goo Gle"}, nil
}

type loginResponse struct {
	MergeStatus string      `json:"merge_status"`
	Redirect    string      `json:"redirect"`
	User        models.User `json:"user"`
	Error       string      `json:"error"`
}

type fixture struct {
	db     *gorm.DB
	deps   Deps
	router *gin.Engine
}

func newFixture(t *testing.T, google auth.IdentityVerifier) *fixture {
	t.Helper()
	db, err := database.OpenSQLiteMemory()
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			sqlDB.Close()
		}
	})
	repo := cart.NewGormRepository(db)
	d := Deps{
		Users:    auth.NewService(db),
		Sessions: auth.NewSessionManager("test-secret", time.Hour, nil),
		Carts:    cart.NewService(repo, repo),
		Google:   google,
	}
	if err := d.Users.EnsureRoles(context.Background()); err != nil {
		t.Fatal(err)
	}

	r := gin.New()
	r.Use(middleware.LoadSession(d.Sessions))
	r.POST("/account/register", Register(d))
	r.POST("/account/login", Login(d))
	r.POST("/account/google", GoogleLogin(d))
	r.POST("/account/logout", Logout(d))
	return &fixture{db: db, deps: d, router: r}
}

func (f *fixture) post(t *testing.T, path string, body any, cookies ...*http.Cookie) (*httptest.ResponseRecorder, loginResponse) {
	t.Helper()
	b, _ := json.Marshal(body)
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(b))
	req.Header.Set("Content-Type", "application/json")
	for _, c := range cookies {
		req.AddCookie(c)
	}
	rec := httptest.NewRecorder()
	f.router.ServeHTTP(rec, req)
	var resp loginResponse
	json.Unmarshal(rec.Body.Bytes(), &resp)
	return rec, resp
}

func (f *fixture) guestCart(t *testing.T, quantity int) (*models.Cart, *http.Cookie) {
	t.Helper()
	ctx := context.Background()
	category := models.Category{Name: "cat"}
	f.db.FirstOrCreate(&category, models.Category{Name: "cat"})
	p := models.Product{Name: "thing", Price: decimal.NewFromInt(1), CategoryID: category.ID}
	if err := f.db.Create(&p).Error; err != nil {
		t.Fatal(err)
	}
	guest, err := f.deps.Carts.ResolveAnonymous(ctx, "")
	if err != nil {
		t.Fatal(err)
	}
	if err := f.deps.Carts.AddItem(ctx, guest, p.ID, quantity); err != nil {
		t.Fatal(err)
	}
	return guest, &http.Cookie{Name: cart.CookieName, Value: guest.Token.String()}
}

func hasSessionCookie(rec *httptest.ResponseRecorder) bool {
	for _, c := range rec.Result().Cookies() {
		if c.Name == auth.SessionCookieName && c.Value != "" {
			return true
		}
	}
	return false
}

func TestRegisterPromotesGuestCart(t *testing.T) {
	f := newFixture(t, nil)
	guest, cookie := f.guestCart(t, 2)

	rec, resp := f.post(t, "/account/register", gin.H{
		"email": "new@example.com", "full_name": "New User",
		"password": "pw1", "confirm_password": "pw1",
	}, cookie)
	if rec.Code != http.StatusCreated {
		t.Fatalf("register: %d %s", rec.Code, rec.Body)
	}
	if resp.MergeStatus != string(cart.MergePromoted) || !hasSessionCookie(rec) {
		t.Fatalf("unexpected response %+v", resp)
	}

	owned, err := f.deps.Carts.CartForOwner(context.Background(), resp.User.ID)
	if err != nil || owned.ID != guest.ID {
		t.Fatalf("guest cart not promoted: %+v %v", owned, err)
	}
}

func TestRegisterErrors(t *testing.T) {
	f := newFixture(t, nil)
	body := gin.H{"email": "x@example.com", "full_name": "Ex Ex", "password": "pw1", "confirm_password": "pw1"}
	if rec, _ := f.post(t, "/account/register", body); rec.Code != http.StatusCreated {
		t.Fatalf("first register: %d", rec.Code)
	}
	if rec, _ := f.post(t, "/account/register", body); rec.Code != http.StatusConflict {
		t.Fatalf("duplicate: %d", rec.Code)
	}
	mismatch := gin.H{"email": "y@example.com", "full_name": "Why", "password": "pw1", "confirm_password": "pw2"}
	if rec, _ := f.post(t, "/account/register", mismatch); rec.Code != http.StatusBadRequest {
		t.Fatalf("mismatch: %d", rec.Code)
	}
	short := gin.H{"email": "z@example.com", "full_name": "Zed", "password": "p", "confirm_password": "p"}
	if rec, _ := f.post(t, "/account/register", short); rec.Code != http.StatusBadRequest {
		t.Fatalf("short password: %d", rec.Code)
	}
	badEmail := gin.H{"email": "not-an-email", "full_name": "Zed", "password": "pw1", "confirm_password": "pw1"}
	if rec, _ := f.post(t, "/account/register", badEmail); rec.Code != http.StatusBadRequest {
		t.Fatalf("bad email: %d", rec.Code)
	}
	shortName := gin.H{"email": "n@example.com", "full_name": "N", "password": "pw1", "confirm_password": "pw1"}
	if rec, _ := f.post(t, "/account/register", shortName); rec.Code != http.StatusBadRequest {
		t.Fatalf("short name: %d", rec.Code)
	}

	var users int64
	f.db.Model(&models.User{}).Where("email IN ?", []string{"y@example.com", "z@example.com", "not-an-email", "n@example.com"}).Count(&users)
	if users != 0 {
		t.Fatalf("rejected registrations created %d users", users)
	}
}

func TestLoginAbandonsGuestCartWhenUserHasOne(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()
	user, err := f.deps.Users.Register(ctx, "has@example.com", "Has Cart", "pw1")
	if err != nil {
		t.Fatal(err)
	}
	userCart, err := f.deps.Carts.ResolveForUser(ctx, user.ID)
	if err != nil {
		t.Fatal(err)
	}
	guest, cookie := f.guestCart(t, 5)

	rec, resp := f.post(t, "/account/login", gin.H{"email": "has@example.com", "password": "pw1"}, cookie)
	if rec.Code != http.StatusOK {
		t.Fatalf("login: %d %s", rec.Code, rec.Body)
	}
	if resp.MergeStatus != string(cart.MergeAbandoned) {
		t.Fatalf("expected abandoned, got %q", resp.MergeStatus)
	}

	resolved, _ := f.deps.Carts.ResolveForUser(ctx, user.ID)
	if resolved.ID != userCart.ID || f.deps.Carts.ItemCount(resolved) != 0 {
		t.Fatalf("user cart changed: %+v", resolved)
	}
	still, err := f.deps.Carts.ResolveAnonymous(ctx, guest.Token.String())
	if err != nil || still.ID != guest.ID {
		t.Fatalf("guest cart should remain unowned: %+v %v", still, err)
	}
}

func TestLoginFailuresAndAdminRedirect(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()
	if _, err := f.deps.Users.SeedAdmin(ctx, "admin@example.com", "root"); err != nil {
		t.Fatal(err)
	}

	if rec, _ := f.post(t, "/account/login", gin.H{"email": "admin@example.com", "password": "nope"}); rec.Code != http.StatusUnauthorized {
		t.Fatalf("wrong password: %d", rec.Code)
	}
	if rec, _ := f.post(t, "/account/login", gin.H{"email": "admin@example.com"}); rec.Code != http.StatusBadRequest {
		t.Fatalf("missing password: %d", rec.Code)
	}

	rec, resp := f.post(t, "/account/login", gin.H{"email": "ADMIN@example.com", "password": "root"})
	if rec.Code != http.StatusOK || resp.Redirect != "/admin/users" {
		t.Fatalf("admin login: %d %+v", rec.Code, resp)
	}
	if resp.MergeStatus != string(cart.MergeNoGuestCart) {
		t.Fatalf("expected no-guest-cart, got %q", resp.MergeStatus)
	}
}

func TestGoogleLogin(t *testing.T) {
	off := newFixture(t, nil)
	if rec, _ := off.post(t, "/account/google", gin.H{"idToken": "good"}); rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("disabled google: %d", rec.Code)
	}

	f := newFixture(t, fakeVerifier{})
	if rec, _ := f.post(t, "/account/google", gin.H{"idToken": "bad"}); rec.Code != http.StatusUnauthorized {
		t.Fatalf("bad token: %d", rec.Code)
	}
	rec, resp := f.post(t, "/account/google", gin.H{"idToken": "good"})
	if rec.Code != http.StatusOK || resp.User.Email != "google@example.com" {
		t.Fatalf("google login: %d %+v", rec.Code, resp)
	}
	if resp.User.Provider != models.ProviderGoogle {
		t.Fatalf("unexpected provider %q", resp.User.Provider)
	}
}

func TestLogoutClearsSession(t *testing.T) {
	f := newFixture(t, nil)
	rec, _ := f.post(t, "/account/register", gin.H{
		"email": "l@example.com", "full_name": "Log Out", "password": "pw1", "confirm_password": "pw1",
	})
	var session *http.Cookie
	for _, c := range rec.Result().Cookies() {
		if c.Name == auth.SessionCookieName {
			session = c
		}
	}
	if session == nil {
		t.Fatal("no session cookie")
	}

	rec, _ = f.post(t, "/account/logout", nil, session)
	if rec.Code != http.StatusOK {
		t.Fatalf("logout: %d", rec.Code)
	}
	cleared := false
	for _, c := range rec.Result().Cookies() {
		if c.Name == auth.SessionCookieName && c.MaxAge < 0 {
			cleared = true
		}
	}
	if !cleared {
		t.Fatal("session cookie not cleared")
	}
}
