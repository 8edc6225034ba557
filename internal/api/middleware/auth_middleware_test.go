package middleware

import (
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	config "github.com/pra2107tham/Reeva/configs"
	"github.com/pra2107tham/Reeva/pkg/utils"
)

func newAuthApp(cfg config.Config) *fiber.App {
	app := fiber.New()
	m := NewAuthMiddleware(cfg)
	app.Get("/me", m.AuthMiddleware(), func(c *fiber.Ctx) error {
		return c.SendString(c.Locals("user_id").(string))
	})
	return app
}

func sessionRequest(t *testing.T, cookieName, token string) *http.Request {
	t.Helper()
	req := httptest.NewRequest("GET", "/me", nil)
	if token != "" {
		req.AddCookie(&http.Cookie{Name: cookieName, Value: token})
	}
	return req
}

func TestAuthMiddleware_ValidCookie(t *testing.T) {
	cfg := config.Config{SecretKey: "session-secret", CookieName: "reeva_session"}
	app := newAuthApp(cfg)

	token, err := utils.GenerateToken(cfg.SecretKey, "42", time.Hour)
	if err != nil {
		t.Fatalf("generate token: %v", err)
	}

	resp, err := app.Test(sessionRequest(t, cfg.CookieName, token))
	if err != nil {
		t.Fatalf("request: %v", err)
	}
	if resp.StatusCode != fiber.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}

	body, _ := io.ReadAll(resp.Body)
	if string(body) != "42" {
		t.Errorf("user_id = %q, want 42", body)
	}
}

func TestAuthMiddleware_MissingCookie(t *testing.T) {
	cfg := config.Config{SecretKey: "session-secret", CookieName: "reeva_session"}
	app := newAuthApp(cfg)

	resp, err := app.Test(sessionRequest(t, cfg.CookieName, ""))
	if err != nil {
		t.Fatalf("request: %v", err)
	}
	if resp.StatusCode != fiber.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", resp.StatusCode)
	}
}

func TestAuthMiddleware_WrongSigningKey(t *testing.T) {
	cfg := config.Config{SecretKey: "session-secret", CookieName: "reeva_session"}
	app := newAuthApp(cfg)

	token, err := utils.GenerateToken("some-other-secret", "42", time.Hour)
	if err != nil {
		t.Fatalf("generate token: %v", err)
	}

	resp, err := app.Test(sessionRequest(t, cfg.CookieName, token))
	if err != nil {
		t.Fatalf("request: %v", err)
	}
	if resp.StatusCode != fiber.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", resp.StatusCode)
	}
}

func TestAuthMiddleware_ExpiredToken(t *testing.T) {
	cfg := config.Config{SecretKey: "session-secret", CookieName: "reeva_session"}
	app := newAuthApp(cfg)

	token, err := utils.GenerateToken(cfg.SecretKey, "42", -time.Minute)
	if err != nil {
		t.Fatalf("generate token: %v", err)
	}

	resp, err := app.Test(sessionRequest(t, cfg.CookieName, token))
	if err != nil {
		t.Fatalf("request: %v", err)
	}
	if resp.StatusCode != fiber.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", resp.StatusCode)
	}
}
