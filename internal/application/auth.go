package application

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/nexshop/marketplace/internal/domain/entity"
	"github.com/nexshop/marketplace/internal/gateway"
	"github.com/nexshop/marketplace/internal/store"
	"github.com/nexshop/marketplace/pkg/helpers"
	"github.com/nexshop/marketplace/pkg/mailer"
)

// RegisterResult carries the created account and its one-time
// verification code. The code is demo-grade, not a cryptographic
// mechanism; real deployments deliver it by email only.
type RegisterResult struct {
	User  entity.User `json:"user"`
	Token string      `json:"token"`
}

// Register creates an unverified buyer account. Fails with
// ErrDuplicateEmail when the address is already taken.
func (s *Service) Register(ctx context.Context, email, password, name string) (*RegisterResult, error) {
	if s.Remote == nil {
		return s.registerLocal(ctx, email, password, name)
	}
	res, err := gateway.Fallback(ctx,
		func(ctx context.Context) (*RegisterResult, error) {
			var out RegisterResult
			body := map[string]string{"email": email, "password": password, "name": name}
			if err := s.Remote.PostJSON(ctx, "/api/auth/register", body, &out); err != nil {
				return nil, err
			}
			s.mirrorUser(ctx, out.User)
			return &out, nil
		},
		func(ctx context.Context) (*RegisterResult, error) {
			return s.registerLocal(ctx, email, password, name)
		},
	)
	if err != nil {
		return nil, rejected(err, ErrDuplicateEmail)
	}
	return res, nil
}

func (s *Service) registerLocal(ctx context.Context, email, password, name string) (*RegisterResult, error) {
	users := store.GetTable[entity.User](ctx, s.Store, store.TableUsers)
	for _, u := range users {
		if strings.EqualFold(u.Email, email) {
			return nil, ErrDuplicateEmail
		}
	}

	hash, err := helpers.HashPassword(password)
	if err != nil {
		return nil, err
	}
	user := entity.User{
		ID:           uuid.NewString(),
		Name:         name,
		Email:        email,
		PasswordHash: hash,
		Role:         entity.RoleBuyer,
	}
	if err := store.SetTable(ctx, s.Store, store.TableUsers, append(users, user)); err != nil {
		return nil, err
	}

	token, err := helpers.GenVerifyCode()
	if err != nil {
		return nil, err
	}
	tokens, _ := store.GetValue[map[string]string](ctx, s.Store, store.TableTokens)
	if tokens == nil {
		tokens = map[string]string{}
	}
	tokens[token] = user.ID
	if err := store.SetValue(ctx, s.Store, store.TableTokens, tokens); err != nil {
		return nil, err
	}

	s.enqueueVerifyEmail(ctx, user, token)
	return &RegisterResult{User: user.Sanitized(), Token: token}, nil
}

func (s *Service) enqueueVerifyEmail(ctx context.Context, u entity.User, token string) {
	if s.Pub == nil || !s.MailSendEnabled {
		return
	}
	job := mailer.EmailJob{
		To:       u.Email,
		Template: "verify_email",
		Data: map[string]any{
			"Name":  u.Name,
			"Token": token,
			"Link":  s.VerifyEmailURL + "?token=" + token,
		},
	}
	if err := s.Pub.PublishJSON(ctx, job); err != nil {
		s.warn(err, "enqueue verify email failed", logrus.Fields{"email": u.Email})
	}
}

// VerifyEmail flips the account's verification flag and invalidates
// the token. Fails with ErrInvalidToken when no pending registration
// matches.
func (s *Service) VerifyEmail(ctx context.Context, token string) (*entity.User, error) {
	if s.Remote == nil {
		return s.verifyEmailLocal(ctx, token)
	}
	u, err := gateway.Fallback(ctx,
		func(ctx context.Context) (*entity.User, error) {
			var out entity.User
			if err := s.Remote.PostJSON(ctx, "/api/auth/verify", map[string]string{"token": token}, &out); err != nil {
				return nil, err
			}
			s.mirrorUser(ctx, out)
			// Token was minted locally too when registration fell back.
			s.dropLocalToken(ctx, token)
			return &out, nil
		},
		func(ctx context.Context) (*entity.User, error) {
			return s.verifyEmailLocal(ctx, token)
		},
	)
	if err != nil {
		return nil, rejected(err, ErrInvalidToken)
	}
	return u, nil
}

func (s *Service) verifyEmailLocal(ctx context.Context, token string) (*entity.User, error) {
	tokens, _ := store.GetValue[map[string]string](ctx, s.Store, store.TableTokens)
	uid, ok := tokens[token]
	if !ok {
		return nil, ErrInvalidToken
	}

	users := store.GetTable[entity.User](ctx, s.Store, store.TableUsers)
	var verified *entity.User
	for i := range users {
		if users[i].ID == uid {
			users[i].IsVerified = true
			verified = &users[i]
			break
		}
	}
	if verified == nil {
		return nil, ErrInvalidToken
	}
	if err := store.SetTable(ctx, s.Store, store.TableUsers, users); err != nil {
		return nil, err
	}

	delete(tokens, token)
	if err := store.SetValue(ctx, s.Store, store.TableTokens, tokens); err != nil {
		return nil, err
	}
	out := verified.Sanitized()
	return &out, nil
}

func (s *Service) dropLocalToken(ctx context.Context, token string) {
	tokens, ok := store.GetValue[map[string]string](ctx, s.Store, store.TableTokens)
	if !ok {
		return
	}
	if _, exists := tokens[token]; exists {
		delete(tokens, token)
		_ = store.SetValue(ctx, s.Store, store.TableTokens, tokens)
	}
}

// Login authenticates by email and password. An invalid-credentials
// rejection always propagates; it is never masked by the offline
// fallback, so a wrong password cannot "succeed" against mock data.
func (s *Service) Login(ctx context.Context, email, password string) (*entity.User, error) {
	if s.Remote == nil {
		return s.loginLocal(ctx, email, password)
	}
	u, err := gateway.Fallback(ctx,
		func(ctx context.Context) (*entity.User, error) {
			var out entity.User
			body := map[string]string{"email": email, "password": password}
			if err := s.Remote.PostJSON(ctx, "/api/login", body, &out); err != nil {
				return nil, err
			}
			s.mirrorUser(ctx, out)
			return &out, nil
		},
		func(ctx context.Context) (*entity.User, error) {
			return s.loginLocal(ctx, email, password)
		},
	)
	if err != nil {
		return nil, rejected(err, ErrInvalidCredentials)
	}
	return u, nil
}

func (s *Service) loginLocal(ctx context.Context, email, password string) (*entity.User, error) {
	users := store.GetTable[entity.User](ctx, s.Store, store.TableUsers)
	for _, u := range users {
		if strings.EqualFold(u.Email, email) {
			if u.PasswordHash == "" || !helpers.CompareHashAndPassword(u.PasswordHash, password) {
				return nil, ErrInvalidCredentials
			}
			out := u.Sanitized()
			return &out, nil
		}
	}
	return nil, ErrInvalidCredentials
}

// GetUser looks an account up by id.
func (s *Service) GetUser(ctx context.Context, id string) (*entity.User, error) {
	if s.Remote != nil {
		u, err := gateway.Fallback(ctx,
			func(ctx context.Context) (*entity.User, error) {
				var out entity.User
				if err := s.Remote.GetJSON(ctx, "/api/users/"+id, &out); err != nil {
					return nil, err
				}
				s.mirrorUser(ctx, out)
				return &out, nil
			},
			func(ctx context.Context) (*entity.User, error) {
				return s.getUserLocal(ctx, id)
			},
		)
		if err != nil {
			return nil, rejected(err, ErrNotFound)
		}
		return u, nil
	}
	return s.getUserLocal(ctx, id)
}

func (s *Service) getUserLocal(ctx context.Context, id string) (*entity.User, error) {
	users := store.GetTable[entity.User](ctx, s.Store, store.TableUsers)
	for _, u := range users {
		if u.ID == id {
			out := u.Sanitized()
			return &out, nil
		}
	}
	return nil, ErrNotFound
}

// ProfileInput carries partial profile updates; empty fields are left
// untouched.
type ProfileInput struct {
	Name       string `json:"name,omitempty"`
	Address    string `json:"address,omitempty"`
	CardNumber string `json:"card_number,omitempty"`
	CardExpiry string `json:"card_expiry,omitempty"`
	CardCvv    string `json:"card_cvv,omitempty"`
}

// UpdateProfile persists partial profile changes and returns the
// updated account.
func (s *Service) UpdateProfile(ctx context.Context, id string, in ProfileInput) (*entity.User, error) {
	if s.Remote == nil {
		return s.updateProfileLocal(ctx, id, in)
	}
	u, err := gateway.Fallback(ctx,
		func(ctx context.Context) (*entity.User, error) {
			var out entity.User
			if err := s.Remote.PutJSON(ctx, "/api/users/"+id, in, &out); err != nil {
				return nil, err
			}
			s.mirrorUser(ctx, out)
			return &out, nil
		},
		func(ctx context.Context) (*entity.User, error) {
			return s.updateProfileLocal(ctx, id, in)
		},
	)
	if err != nil {
		return nil, rejected(err, ErrNotFound)
	}
	return u, nil
}

func (s *Service) updateProfileLocal(ctx context.Context, id string, in ProfileInput) (*entity.User, error) {
	users := store.GetTable[entity.User](ctx, s.Store, store.TableUsers)
	for i := range users {
		if users[i].ID != id {
			continue
		}
		if in.Name != "" {
			users[i].Name = in.Name
		}
		if in.Address != "" {
			users[i].Address = in.Address
		}
		if in.CardNumber != "" {
			users[i].CardNumber = in.CardNumber
		}
		if in.CardExpiry != "" {
			users[i].CardExpiry = in.CardExpiry
		}
		if in.CardCvv != "" {
			users[i].CardCvv = in.CardCvv
		}
		if err := store.SetTable(ctx, s.Store, store.TableUsers, users); err != nil {
			return nil, err
		}
		out := users[i].Sanitized()
		return &out, nil
	}
	return nil, ErrNotFound
}

// mirrorUser refreshes the local copy of a user after a successful
// remote call so later offline reads see current data. Password hashes
// never travel back from the API, so offline login keeps whatever hash
// the local table already has.
func (s *Service) mirrorUser(ctx context.Context, u entity.User) {
	users := store.GetTable[entity.User](ctx, s.Store, store.TableUsers)
	for i := range users {
		if users[i].ID == u.ID {
			hash := users[i].PasswordHash
			users[i] = u
			users[i].PasswordHash = hash
			if err := store.SetTable(ctx, s.Store, store.TableUsers, users); err != nil {
				s.warn(err, "mirror user failed", logrus.Fields{"user_id": u.ID})
			}
			return
		}
	}
	if err := store.SetTable(ctx, s.Store, store.TableUsers, append(users, u)); err != nil {
		s.warn(err, "mirror user failed", logrus.Fields{"user_id": u.ID})
	}
}

// promoteToSeller flips a buyer to seller the first time they list a
// product. Other roles are left alone.
func (s *Service) promoteToSeller(ctx context.Context, userID string) {
	users := store.GetTable[entity.User](ctx, s.Store, store.TableUsers)
	for i := range users {
		if users[i].ID == userID && users[i].Role == entity.RoleBuyer {
			users[i].Role = entity.RoleSeller
			if err := store.SetTable(ctx, s.Store, store.TableUsers, users); err != nil {
				s.warn(err, "promote to seller failed", logrus.Fields{"user_id": userID})
			}
			return
		}
	}
}
