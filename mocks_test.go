package clinic_test

import (
	"context"
	"database/sql"
	"sort"
	"sync"

	repository "github.com/goliatone/go-repository-bun"
	"github.com/google/uuid"
	clinic "github.com/medikeep/clinic"
	"github.com/uptrace/bun"
)

// testIdentity implements clinic.Identity
type testIdentity struct {
	id    string
	name  string
	email string
	role  string
}

func (t testIdentity) ID() string    { return t.id }
func (t testIdentity) Name() string  { return t.name }
func (t testIdentity) Email() string { return t.email }
func (t testIdentity) Role() string  { return t.role }

// testConfig implements clinic.Config
type testConfig struct {
	signingKey      string
	tokenExpiration int
	issuer          string
	contextKey      string
	authScheme      string
}

func defTestConfig() testConfig {
	return testConfig{
		signingKey:      "test-signing-key",
		tokenExpiration: 12,
		issuer:          "clinic-test",
		contextKey:      "user",
		authScheme:      "Bearer",
	}
}

func (c testConfig) GetSigningKey() string   { return c.signingKey }
func (c testConfig) GetTokenExpiration() int { return c.tokenExpiration }
func (c testConfig) GetIssuer() string       { return c.issuer }
func (c testConfig) GetContextKey() string   { return c.contextKey }
func (c testConfig) GetAuthScheme() string   { return c.authScheme }

// memUsers is an in-memory clinic.Users
type memUsers struct {
	mu      sync.Mutex
	byID    map[uuid.UUID]*clinic.User
	removed []uuid.UUID
}

func newMemUsers(seed ...*clinic.User) *memUsers {
	m := &memUsers{byID: map[uuid.UUID]*clinic.User{}}
	for _, u := range seed {
		if u.ID == uuid.Nil {
			u.ID = uuid.New()
		}
		u.Email = clinic.NormalizeEmail(u.Email)
		m.byID[u.ID] = u
	}
	return m
}

func notFound() error {
	return repository.NewRecordNotFound()
}

func (m *memUsers) GetByID(ctx context.Context, id string) (*clinic.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	uid, err := uuid.Parse(id)
	if err != nil {
		return nil, notFound()
	}
	if u, ok := m.byID[uid]; ok {
		return u, nil
	}
	return nil, notFound()
}

func (m *memUsers) GetByEmail(ctx context.Context, email string) (*clinic.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	email = clinic.NormalizeEmail(email)
	for _, u := range m.byID {
		if u.Email == email {
			return u, nil
		}
	}
	return nil, notFound()
}

func (m *memUsers) GetByEmailTx(ctx context.Context, tx bun.IDB, email string) (*clinic.User, error) {
	return m.GetByEmail(ctx, email)
}

func (m *memUsers) GetByNFCToken(ctx context.Context, token string) (*clinic.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, u := range m.byID {
		if u.NFCToken == token && u.Role == clinic.RolePatient {
			return u, nil
		}
	}
	return nil, notFound()
}

func (m *memUsers) ListPending(ctx context.Context) ([]*clinic.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	out := []*clinic.User{}
	for _, u := range m.byID {
		if !u.Approved {
			out = append(out, u)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].Email < out[j].Email
	})
	return out, nil
}

func (m *memUsers) Register(ctx context.Context, user *clinic.User) (*clinic.User, error) {
	return m.RegisterTx(ctx, nil, user)
}

func (m *memUsers) RegisterTx(ctx context.Context, tx bun.IDB, user *clinic.User) (*clinic.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if user.ID == uuid.Nil {
		user.ID = uuid.New()
	}
	user.Email = clinic.NormalizeEmail(user.Email)
	m.byID[user.ID] = user
	return user, nil
}

func (m *memUsers) Approve(ctx context.Context, id uuid.UUID) (*clinic.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	u, ok := m.byID[id]
	if !ok {
		return nil, notFound()
	}
	u.Approved = true
	return u, nil
}

func (m *memUsers) Remove(ctx context.Context, id uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	delete(m.byID, id)
	m.removed = append(m.removed, id)
	return nil
}

var _ clinic.Users = (*memUsers)(nil)

// memPrescriptions is an in-memory clinic.Prescriptions
type memPrescriptions struct {
	mu      sync.Mutex
	records []*clinic.Prescription
}

func (m *memPrescriptions) Create(ctx context.Context, record *clinic.Prescription) (*clinic.Prescription, error) {
	return m.CreateTx(ctx, nil, record)
}

func (m *memPrescriptions) CreateTx(ctx context.Context, tx bun.IDB, record *clinic.Prescription) (*clinic.Prescription, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if record.ID == uuid.Nil {
		record.ID = uuid.New()
	}
	m.records = append(m.records, record)
	return record, nil
}

func (m *memPrescriptions) ListByPatient(ctx context.Context, patientID uuid.UUID) ([]*clinic.Prescription, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	out := []*clinic.Prescription{}
	for _, p := range m.records {
		if p.PatientID == patientID {
			out = append(out, p)
		}
	}
	return out, nil
}

var _ clinic.Prescriptions = (*memPrescriptions)(nil)

// memDocuments is an in-memory clinic.Documents
type memDocuments struct {
	mu      sync.Mutex
	records []*clinic.Document
}

func (m *memDocuments) Create(ctx context.Context, record *clinic.Document) (*clinic.Document, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if record.ID == uuid.Nil {
		record.ID = uuid.New()
	}
	m.records = append(m.records, record)
	return record, nil
}

func (m *memDocuments) ListByPatient(ctx context.Context, patientID uuid.UUID) ([]*clinic.Document, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	out := []*clinic.Document{}
	for _, d := range m.records {
		if d.PatientID == patientID {
			out = append(out, d)
		}
	}
	return out, nil
}

var _ clinic.Documents = (*memDocuments)(nil)

// memRepo is an in-memory clinic.RepositoryManager
type memRepo struct {
	users         *memUsers
	prescriptions *memPrescriptions
	documents     *memDocuments
}

func newMemRepo(seed ...*clinic.User) *memRepo {
	return &memRepo{
		users:         newMemUsers(seed...),
		prescriptions: &memPrescriptions{},
		documents:     &memDocuments{},
	}
}

func (m *memRepo) Validate() error { return nil }

func (m *memRepo) RunInTx(ctx context.Context, opts *sql.TxOptions, f func(ctx context.Context, tx bun.Tx) error) error {
	return f(ctx, bun.Tx{})
}

func (m *memRepo) Users() clinic.Users                 { return m.users }
func (m *memRepo) Prescriptions() clinic.Prescriptions { return m.prescriptions }
func (m *memRepo) Documents() clinic.Documents         { return m.documents }

var _ clinic.RepositoryManager = (*memRepo)(nil)

func mustHash(password string) string {
	hash, err := clinic.HashPassword(password)
	if err != nil {
		panic(err)
	}
	return hash
}
