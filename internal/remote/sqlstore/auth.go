package sqlstore

import (
	"context"
	"database/sql"
	"encoding/json"
	"strings"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"insightpm/internal/domain"
	"insightpm/internal/errors"
	"insightpm/internal/remote"
)

const minPasswordLength = 6

// sessionClaims is the access token payload.
type sessionClaims struct {
	Email    string         `json:"email"`
	Metadata map[string]any `json:"user_metadata,omitempty"`
	jwt.RegisteredClaims
}

type account struct {
	ID           string
	Email        string
	PasswordHash string
	Metadata     map[string]any
}

func scanAccount(scanner Scanner) (*account, error) {
	a := &account{}
	var metadata string
	if err := scanner.Scan(&a.ID, &a.Email, &a.PasswordHash, &metadata); err != nil {
		return nil, err
	}
	if metadata != "" {
		if err := json.Unmarshal([]byte(metadata), &a.Metadata); err != nil {
			return nil, err
		}
	}
	return a, nil
}

func (s *Store) findAccount(ctx context.Context, q querier, email string) (*account, error) {
	query := s.dialect.rebind(`SELECT id, email, password_hash, metadata FROM accounts WHERE email = ?`)
	return QuerySingle(ctx, q, query, scanAccount, "account", email, normalizeEmail(email))
}

// GetSession returns the held session while its token still verifies.
func (s *Store) GetSession(ctx context.Context) (*remote.Session, error) {
	current := s.sessions.Current()
	if current == nil {
		return nil, nil
	}
	if _, err := s.VerifyToken(current.AccessToken); err != nil {
		s.logger.Debug("held session no longer valid", zap.Error(err))
		s.sessions.Set(remote.EventSignedOut, nil)
		return nil, nil
	}
	return current, nil
}

// OnAuthStateChange registers fn for session changes.
func (s *Store) OnAuthStateChange(fn remote.AuthListener) func() {
	return s.sessions.Subscribe(fn)
}

// SignIn checks the password and starts a session.
func (s *Store) SignIn(ctx context.Context, email, password string) (*remote.Session, error) {
	acct, err := s.findAccount(ctx, s.db, email)
	if err != nil {
		if errors.IsErrorType(err, errors.ErrorTypeNotFound) {
			return nil, errors.NewAuthError("Invalid login credentials", nil)
		}
		return nil, err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(acct.PasswordHash), []byte(password)); err != nil {
		return nil, errors.NewAuthError("Invalid login credentials", nil)
	}

	session, err := s.issueSession(acct)
	if err != nil {
		return nil, err
	}
	s.sessions.Set(remote.EventSignedIn, session)
	return session, nil
}

// SignUp creates the account and its team profile, then signs in. Accounts
// are confirmed immediately.
func (s *Store) SignUp(ctx context.Context, req remote.SignUpRequest) (*remote.Session, error) {
	email := normalizeEmail(req.Email)
	if email == "" || !strings.Contains(email, "@") {
		return nil, errors.NewAuthError("Unable to validate email address: invalid format", nil)
	}
	if len(req.Password) < minPasswordLength {
		return nil, errors.NewAuthError("Password should be at least 6 characters", nil)
	}

	cost := s.hashCost
	if cost == 0 {
		cost = bcrypt.DefaultCost
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), cost)
	if err != nil {
		return nil, errors.NewAuthError("could not hash password", err)
	}

	metadata := map[string]any{}
	if req.FullName != "" {
		metadata["full_name"] = req.FullName
	}
	if req.Username != "" {
		metadata["username"] = req.Username
	}
	encoded, err := json.Marshal(metadata)
	if err != nil {
		return nil, errors.NewAuthError("could not encode user metadata", err)
	}

	acct := &account{ID: uuid.NewString(), Email: email, PasswordHash: string(hash), Metadata: metadata}
	err = withTx(ctx, s.db, func(tx *sql.Tx) error {
		if _, err := s.findAccount(ctx, tx, email); err == nil {
			return errors.NewAuthError("User already registered", nil)
		} else if !errors.IsErrorType(err, errors.ErrorTypeNotFound) {
			return err
		}

		query := s.dialect.rebind(`INSERT INTO accounts (id, email, password_hash, metadata, created_at) VALUES (?, ?, ?, ?, ?)`)
		if _, err := tx.ExecContext(ctx, query, acct.ID, email, acct.PasswordHash, string(encoded), FormatTimeForDB(s.now())); err != nil {
			return HandleDatabaseError("insert account", err)
		}

		fullName := req.FullName
		if fullName == "" {
			fullName = req.Username
		}
		profile := domain.NewUserMapper().ToRow(domain.User{
			ID:                 acct.ID,
			FullName:           fullName,
			Role:               "Member",
			DailyCapacityHours: domain.DefaultCapacityHours,
		})
		query = s.dialect.rebind(`INSERT INTO users (id, full_name, role, avatar_url, daily_capacity_hours, created_at) VALUES (?, ?, ?, ?, ?, ?)`)
		if _, err := tx.ExecContext(ctx, query, profile["id"], profile["full_name"], profile["role"], profile["avatar_url"], profile["daily_capacity_hours"], FormatTimeForDB(s.now())); err != nil {
			return HandleDatabaseError("insert profile", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	session, err := s.issueSession(acct)
	if err != nil {
		return nil, err
	}
	s.sessions.Set(remote.EventSignedIn, session)
	return session, nil
}

// SignOut drops the held session.
func (s *Store) SignOut(ctx context.Context) error {
	s.sessions.Set(remote.EventSignedOut, nil)
	return nil
}

// ResetPasswordForEmail records a recovery token for the account. Unknown
// addresses succeed silently so callers cannot probe for accounts.
func (s *Store) ResetPasswordForEmail(ctx context.Context, email, redirectTo string) error {
	acct, err := s.findAccount(ctx, s.db, email)
	if err != nil {
		if errors.IsErrorType(err, errors.ErrorTypeNotFound) {
			return nil
		}
		return err
	}

	token := uuid.NewString()
	query := s.dialect.rebind(`INSERT INTO password_resets (token, account_id, redirect_to, created_at) VALUES (?, ?, ?, ?)`)
	if _, err := s.db.ExecContext(ctx, query, token, acct.ID, redirectTo, FormatTimeForDB(s.now())); err != nil {
		return HandleDatabaseError("insert password reset", err)
	}
	s.logger.Info("password recovery requested",
		zap.String("account_id", acct.ID),
		zap.String("redirect_to", redirectTo))
	return nil
}

// VerifyToken validates an access token issued by this store.
func (s *Store) VerifyToken(token string) (*remote.User, error) {
	claims := &sessionClaims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (any, error) {
		return s.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil || !parsed.Valid {
		return nil, errors.NewAuthError("invalid session token", err)
	}
	return &remote.User{ID: claims.Subject, Email: claims.Email, Metadata: claims.Metadata}, nil
}

func (s *Store) issueSession(acct *account) (*remote.Session, error) {
	now := s.now()
	expires := now.Add(s.ttl)
	claims := sessionClaims{
		Email:    acct.Email,
		Metadata: acct.Metadata,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   acct.ID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expires),
			ID:        uuid.NewString(),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return nil, errors.NewAuthError("could not sign session", err)
	}
	return &remote.Session{
		AccessToken: signed,
		ExpiresAt:   expires,
		User:        remote.User{ID: acct.ID, Email: acct.Email, Metadata: acct.Metadata},
	}, nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
