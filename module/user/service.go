package user

import (
	"context"
	"strings"
	"time"

	msg "github.com/Ksaikiran28/NexChat/module/message"
	"github.com/Ksaikiran28/NexChat/module/user/model"
	"github.com/Ksaikiran28/NexChat/tools/errs"
	"github.com/Ksaikiran28/NexChat/tools/ids"
	jwtlib "github.com/Ksaikiran28/NexChat/tools/security"

	"golang.org/x/crypto/bcrypt"
)

type Service struct {
	store Store
	jwt   jwtlib.Options
}

func NewService(store Store, jwt jwtlib.Options) *Service {
	return &Service{store: store, jwt: jwt}
}

type SignupParams struct {
	FullName string `json:"fullName"`
	Email    string `json:"email"`
	Password string `json:"password"`
	Bio      string `json:"bio"`
}

// Signup creates an account and returns it with a fresh token.
func (s *Service) Signup(ctx context.Context, in SignupParams) (*model.User, string, error) {
	in.Email = strings.ToLower(strings.TrimSpace(in.Email))
	if in.FullName == "" || in.Email == "" || in.Password == "" || in.Bio == "" {
		return nil, "", errs.ErrArgs.WithDetail("missing details")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, "", errs.WrapMsg(err, "hash password")
	}

	u := &model.User{
		ID:        ids.Generate(),
		FullName:  in.FullName,
		Email:     in.Email,
		Password:  string(hash),
		Bio:       in.Bio,
		CreatedAt: time.Now().UTC(),
	}
	if err := s.store.Insert(ctx, u); err != nil {
		return nil, "", err
	}

	token, _, err := jwtlib.Generate(s.jwt, u.ID)
	if err != nil {
		return nil, "", errs.WrapMsg(err, "mint token")
	}
	return u, token, nil
}

// Login verifies credentials and mints a token. Unknown email reports not
// found; a wrong password reports invalid credentials.
func (s *Service) Login(ctx context.Context, email, password string) (*model.User, string, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	u, err := s.store.FindByEmail(ctx, email)
	if err != nil {
		return nil, "", err
	}
	if bcrypt.CompareHashAndPassword([]byte(u.Password), []byte(password)) != nil {
		return nil, "", errs.ErrPassword
	}
	token, _, err := jwtlib.Generate(s.jwt, u.ID)
	if err != nil {
		return nil, "", errs.WrapMsg(err, "mint token")
	}
	return u, token, nil
}

func (s *Service) Get(ctx context.Context, id string) (*model.User, error) {
	return s.store.FindByID(ctx, id)
}

func (s *Service) UpdateProfile(ctx context.Context, id, fullName, bio, profilePic string) (*model.User, error) {
	return s.store.UpdateProfile(ctx, id, fullName, bio, profilePic)
}

// PeerAdapter lets the message service list chat partners without knowing
// the user store.
type PeerAdapter struct {
	store Store
}

func NewPeerAdapter(store Store) *PeerAdapter {
	return &PeerAdapter{store: store}
}

func (a *PeerAdapter) ListPeers(ctx context.Context, excludeUserID string) ([]*msg.Peer, error) {
	users, err := a.store.ListOthers(ctx, excludeUserID)
	if err != nil {
		return nil, err
	}
	out := make([]*msg.Peer, 0, len(users))
	for _, u := range users {
		out = append(out, &msg.Peer{
			ID:         u.ID,
			FullName:   u.FullName,
			Bio:        u.Bio,
			ProfilePic: u.ProfilePic,
		})
	}
	return out, nil
}
