package clinic

import (
	"context"
	"strings"

	"github.com/goliatone/go-errors"
	repository "github.com/goliatone/go-repository-bun"
)

// UserStore is the narrow read surface the identity provider needs.
type UserStore interface {
	GetByEmail(ctx context.Context, email string) (*User, error)
	GetByID(ctx context.Context, id string) (*User, error)
}

// UserProvider resolves identities against the credential store.
type UserProvider struct {
	store  UserStore
	logger Logger
}

// NewUserProvider will create a new UserProvider
func NewUserProvider(store UserStore) *UserProvider {
	return &UserProvider{
		store:  store,
		logger: defLogger{},
	}
}

func (u *UserProvider) WithLogger(l Logger) *UserProvider {
	if l != nil {
		u.logger = l
	}
	return u
}

// VerifyIdentity will find the user, run the approval gate and compare
// the password, in that order. The approval check deliberately runs
// before the password comparison so a pending account is reported as
// pending even when the caller got the password wrong; an unknown email
// and a wrong password are indistinguishable to the caller.
func (u *UserProvider) VerifyIdentity(ctx context.Context, email, password string) (Identity, error) {
	user, err := u.store.GetByEmail(ctx, NormalizeEmail(email))
	if err != nil {
		if repository.IsRecordNotFound(err) {
			return nil, ErrInvalidCredentials
		}
		return nil, errors.Wrap(err, errors.CategoryInternal, "failed to retrieve user during verification")
	}

	if !user.Approved {
		return nil, ErrPendingApproval
	}

	if err := ComparePasswordAndHash(password, user.PasswordHash); err != nil {
		return nil, ErrInvalidCredentials
	}

	return identityFromUser(user), nil
}

// FindIdentityByID resolves an already authenticated subject id back to
// an identity. No password or approval checks run here.
func (u *UserProvider) FindIdentityByID(ctx context.Context, id string) (Identity, error) {
	user, err := u.store.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return identityFromUser(user), nil
}

// NormalizeEmail lowercases and trims an email so lookups are case
// insensitive regardless of how the record was written.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

type authIdentity struct {
	id    string
	name  string
	email string
	role  string
}

func (a authIdentity) ID() string    { return a.id }
func (a authIdentity) Name() string  { return a.name }
func (a authIdentity) Email() string { return a.email }
func (a authIdentity) Role() string  { return a.role }

var _ Identity = authIdentity{}

func identityFromUser(user *User) Identity {
	return authIdentity{
		id:    user.ID.String(),
		name:  user.Name,
		email: user.Email,
		role:  string(user.Role),
	}
}
