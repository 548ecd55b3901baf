package service

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/Skotchmaster/accounts/internal/domain"
	"github.com/Skotchmaster/accounts/internal/models"
	"github.com/Skotchmaster/accounts/internal/transport"
	pkg_hash "github.com/Skotchmaster/accounts/pkg/hash"
	"github.com/Skotchmaster/accounts/pkg/logging"
	"github.com/Skotchmaster/accounts/pkg/tokens"
)

const (
	maxFieldLen    = 60
	publishTimeout = 5 * time.Second

	EventAccountRegistered = "account_registered"
	EventAccountLoggedIn   = "account_logged_in"
	EventTokenRevoked      = "token_revoked"
)

type AuthService struct {
	Accounts  AccountStore
	Blacklist Blacklist
	Tokens    *tokens.Issuer

	// Events is optional; nil disables publishing.
	Events     EventPublisher
	EventTopic string

	// StoreTimeout bounds every store call. Zero means the caller's deadline.
	StoreTimeout time.Duration
}

// dummyHash keeps the unknown-username path as slow as a wrong password.
var dummyHash = sync.OnceValue(func() string {
	h, _ := pkg_hash.HashPassword("timing-equalizer")
	return h
})

func (s *AuthService) storeCtx(ctx context.Context) (context.Context, context.CancelFunc) {
	if s.StoreTimeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, s.StoreTimeout)
}

func validateRegister(req *transport.RegisterRequest) error {
	req.Email = strings.TrimSpace(req.Email)
	req.Username = strings.TrimSpace(req.Username)
	req.FirstName = strings.TrimSpace(req.FirstName)
	req.LastName = strings.TrimSpace(req.LastName)

	if req.Username == "" || req.Email == "" || req.Password == "" {
		return fmt.Errorf("%w: email, username and password are required", domain.ErrValidation)
	}
	for name, v := range map[string]string{
		"email":      req.Email,
		"username":   req.Username,
		"first_name": req.FirstName,
		"last_name":  req.LastName,
	} {
		if len(v) > maxFieldLen {
			return fmt.Errorf("%w: %s longer than %d characters", domain.ErrValidation, name, maxFieldLen)
		}
	}
	addr, err := mail.ParseAddress(req.Email)
	if err != nil || addr.Address != req.Email {
		return fmt.Errorf("%w: malformed email", domain.ErrValidation)
	}
	return nil
}

func (s *AuthService) Register(ctx context.Context, req transport.RegisterRequest) (*transport.RegisterResponse, error) {
	l := logging.FromContext(ctx).With("svc", "auth.register")

	if err := validateRegister(&req); err != nil {
		return nil, err
	}

	pwHash, err := pkg_hash.HashPassword(req.Password)
	if err != nil {
		if errors.Is(err, pkg_hash.ErrPasswordTooLong) {
			return nil, fmt.Errorf("%w: password too long", domain.ErrValidation)
		}
		l.Error("register_error", "status", 500, "reason", "cannot hash the password", "error", err)
		return nil, err
	}

	account := models.Account{
		Email:        req.Email,
		Username:     req.Username,
		FirstName:    req.FirstName,
		LastName:     req.LastName,
		PasswordHash: pwHash,
	}

	sctx, cancel := s.storeCtx(ctx)
	err = s.Accounts.CreateAccount(sctx, &account)
	cancel()
	if err != nil {
		if errors.Is(err, domain.ErrConflict) {
			l.Warn("register_failed", "status", 409, "reason", "account already exists")
			return nil, err
		}
		l.Error("register_error", "status", 500, "reason", "store failure", "error", err)
		return nil, domain.NewStoreError("create account", err)
	}

	s.publish(ctx, account.ID, map[string]any{
		"type":     EventAccountRegistered,
		"UserID":   account.ID,
		"username": account.Username,
	})

	l.Info("register_success", "account_id", account.ID)
	return &transport.RegisterResponse{ID: account.ID, Username: account.Username}, nil
}

func (s *AuthService) Login(ctx context.Context, username, password string) (*transport.TokenPair, error) {
	l := logging.FromContext(ctx).With("svc", "auth.login")

	username = strings.TrimSpace(username)
	if username == "" || password == "" {
		return nil, fmt.Errorf("%w: username and password are required", domain.ErrValidation)
	}

	sctx, cancel := s.storeCtx(ctx)
	account, err := s.Accounts.FindByUsername(sctx, username)
	cancel()
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			pkg_hash.CheckPassword(dummyHash(), password)
			l.Warn("login_failed", "status", 401, "reason", "invalid username or password")
			return nil, domain.ErrInvalidCredentials
		}
		l.Error("login_error", "status", 500, "error", err)
		return nil, domain.NewStoreError("find account", err)
	}

	if !pkg_hash.CheckPassword(account.PasswordHash, password) {
		l.Warn("login_failed", "status", 401, "reason", "invalid username or password")
		return nil, domain.ErrInvalidCredentials
	}

	sub := subjectOf(account)
	accessToken, accessClaims, err := s.Tokens.IssueAccess(sub)
	if err != nil {
		l.Error("login_error", "status", 500, "reason", "cannot create token", "error", err)
		return nil, err
	}
	refreshToken, refreshClaims, err := s.Tokens.IssueRefresh(sub)
	if err != nil {
		l.Error("login_error", "status", 500, "reason", "cannot create token", "error", err)
		return nil, err
	}

	s.publish(ctx, account.ID, map[string]any{
		"type":     EventAccountLoggedIn,
		"UserID":   account.ID,
		"username": account.Username,
	})

	l.Info("login_successful", "account_id", account.ID)
	return &transport.TokenPair{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		AccessExp:    accessClaims.ExpiresAt.Time,
		RefreshExp:   refreshClaims.ExpiresAt.Time,
	}, nil
}

// Authorize validates signature, expiry and kind, then consults the
// blacklist. A revoked token is rejected even when otherwise valid.
func (s *AuthService) Authorize(ctx context.Context, token string, kind tokens.Kind) (*tokens.Claims, error) {
	claims, err := s.parse(token, kind)
	if err != nil {
		return nil, err
	}

	sctx, cancel := s.storeCtx(ctx)
	revoked, err := s.Blacklist.IsRevoked(sctx, claims.ID)
	cancel()
	if err != nil {
		logging.FromContext(ctx).Error("authorize_error", "status", 500, "reason", "cannot check blacklist", "error", err)
		return nil, domain.NewStoreError("check revoked", err)
	}
	if revoked {
		return nil, domain.NewAuthError(domain.Revoked, fmt.Errorf("jti %s", claims.ID))
	}
	return claims, nil
}

// Logout revokes the presented token. Revoking an already revoked token
// succeeds.
func (s *AuthService) Logout(ctx context.Context, token string, kind tokens.Kind) error {
	l := logging.FromContext(ctx).With("svc", "auth.logout", "kind", string(kind))

	claims, err := s.parse(token, kind)
	if err != nil {
		l.Warn("logout_failed", "status", 401, "reason", "invalid token", "error", err)
		return err
	}

	sctx, cancel := s.storeCtx(ctx)
	err = s.Blacklist.Revoke(sctx, claims.ID, claims.ExpiresAt.Time)
	cancel()
	if err != nil {
		l.Error("logout_failed", "status", 500, "reason", "cannot revoke token", "error", err)
		return domain.NewStoreError("revoke token", err)
	}

	s.publish(ctx, claims.Subject, map[string]any{
		"type":   EventTokenRevoked,
		"UserID": claims.Subject,
		"kind":   string(kind),
		"jti":    claims.ID,
	})

	l.Info("successful_logout", "jti", claims.ID)
	return nil
}

// RefreshAccess mints a new access token for the refresh token's subject.
// The refresh token itself stays valid until logout or expiry.
func (s *AuthService) RefreshAccess(ctx context.Context, refreshToken string) (*transport.AccessToken, error) {
	l := logging.FromContext(ctx).With("svc", "auth.refresh")

	claims, err := s.Authorize(ctx, refreshToken, tokens.KindRefresh)
	if err != nil {
		var ae *domain.AuthError
		if errors.As(err, &ae) {
			l.Warn("refresh_failed", "status", 401, "reason", ae.Kind.String())
		}
		return nil, err
	}

	accessToken, accessClaims, err := s.Tokens.IssueAccess(tokens.Subject{
		ID:      claims.Subject,
		Role:    claims.Role,
		IsAdmin: claims.IsAdmin,
	})
	if err != nil {
		l.Error("refresh_error", "status", 500, "reason", "cannot create token", "error", err)
		return nil, err
	}

	return &transport.AccessToken{
		AccessToken: accessToken,
		AccessExp:   accessClaims.ExpiresAt.Time,
	}, nil
}

func (s *AuthService) ListAccounts(ctx context.Context) ([]transport.AccountView, error) {
	sctx, cancel := s.storeCtx(ctx)
	accounts, err := s.Accounts.ListAccounts(sctx)
	cancel()
	if err != nil {
		logging.FromContext(ctx).Error("list_accounts_error", "error", err)
		return nil, domain.NewStoreError("list accounts", err)
	}

	out := make([]transport.AccountView, 0, len(accounts))
	for _, a := range accounts {
		v := transport.AccountView{
			ID:        a.ID,
			Email:     a.Email,
			Username:  a.Username,
			FirstName: a.FirstName,
			LastName:  a.LastName,
			IsAdmin:   a.IsAdmin,
		}
		if a.Role != nil {
			v.Role = a.Role.Name
		}
		out = append(out, v)
	}
	return out, nil
}

func (s *AuthService) DeleteAllAccounts(ctx context.Context) (int64, error) {
	l := logging.FromContext(ctx).With("svc", "auth.delete_all")

	sctx, cancel := s.storeCtx(ctx)
	n, err := s.Accounts.DeleteAll(sctx)
	cancel()
	if err != nil {
		l.Error("delete_all_failed", "status", 500, "error", err)
		return 0, domain.NewStoreError("delete accounts", err)
	}

	l.Info("delete_all_success", "deleted", n)
	return n, nil
}

func (s *AuthService) parse(token string, kind tokens.Kind) (*tokens.Claims, error) {
	if token == "" {
		return nil, domain.NewAuthError(domain.InvalidToken, errors.New("missing token"))
	}
	claims, err := s.Tokens.Parse(token, kind)
	if err != nil {
		return nil, domain.NewAuthError(domain.InvalidToken, err)
	}
	return claims, nil
}

func (s *AuthService) publish(ctx context.Context, key any, event map[string]any) {
	if s.Events == nil {
		return
	}
	pctx, cancel := context.WithTimeout(ctx, publishTimeout)
	defer cancel()

	if err := s.Events.PublishEvent(pctx, s.EventTopic, fmt.Sprint(key), event); err != nil {
		logging.FromContext(ctx).Error("publish_failed", "event", event["type"], "error", err)
	}
}

func subjectOf(a *models.Account) tokens.Subject {
	sub := tokens.Subject{
		ID:      strconv.FormatUint(uint64(a.ID), 10),
		IsAdmin: a.IsAdmin,
	}
	if a.Role != nil {
		sub.Role = a.Role.Name
	}
	return sub
}
