package auth

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"updigital/internal/models"
)

// fakeAccountStore keeps accounts in memory and enforces the same
// uniqueness rules the real store does.
type fakeAccountStore struct {
	mu    sync.Mutex
	users map[string]*models.User
}

func newFakeAccountStore() *fakeAccountStore {
	return &fakeAccountStore{users: make(map[string]*models.User)}
}

func (s *fakeAccountStore) Create(ctx context.Context, user *models.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, existing := range s.users {
		if existing.Email == user.Email || existing.EmailConfirmationCode == user.EmailConfirmationCode {
			return fmt.Errorf("%w: account already exists", ErrConflict)
		}
	}

	if user.ID == "" {
		user.ID = uuid.NewString()
	}
	copied := *user
	s.users[user.ID] = &copied
	return nil
}

func (s *fakeAccountStore) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, u := range s.users {
		if u.Email == email {
			copied := *u
			return &copied, nil
		}
	}
	return nil, nil
}

func (s *fakeAccountStore) FindByConfirmationCode(ctx context.Context, code string) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, u := range s.users {
		if u.EmailConfirmationCode == code {
			copied := *u
			return &copied, nil
		}
	}
	return nil, nil
}

func (s *fakeAccountStore) Update(ctx context.Context, user *models.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.users[user.ID]; !ok {
		return fmt.Errorf("%w: no such account", ErrStorage)
	}
	copied := *user
	s.users[user.ID] = &copied
	return nil
}

func (s *fakeAccountStore) get(id string) *models.User {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.users[id]
}

type fakeSessionStore struct {
	mu       sync.Mutex
	bindings map[string]string
}

func newFakeSessionStore() *fakeSessionStore {
	return &fakeSessionStore{bindings: make(map[string]string)}
}

func (s *fakeSessionStore) Bind(ctx context.Context, sessionID, userID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.bindings[sessionID] = userID
	return nil
}

func (s *fakeSessionStore) Destroy(ctx context.Context, sessionID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.bindings, sessionID)
	return nil
}

func (s *fakeSessionStore) userFor(sessionID string) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.bindings[sessionID]
}

// fakeHasher is reversible enough for tests without bcrypt's cost.
type fakeHasher struct{}

func (fakeHasher) Hash(plaintext string) (string, error) {
	return "hashed:" + plaintext, nil
}

func (fakeHasher) Verify(plaintext, hash string) bool {
	return hash == "hashed:"+plaintext
}

type fakeIssuer struct {
	mu     sync.Mutex
	serial int
}

func (i *fakeIssuer) Issue(email string) (string, error) {
	i.mu.Lock()
	defer i.mu.Unlock()
	i.serial++
	return fmt.Sprintf("token-%s-%d", email, i.serial), nil
}

func (i *fakeIssuer) Verify(token string) (string, error) {
	return "", errors.New("not used")
}

type fakeNotifier struct {
	mu    sync.Mutex
	sent  []string
	fail  bool
	users []*models.User
}

func (n *fakeNotifier) SendVerification(ctx context.Context, token string, user *models.User) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.fail {
		return errors.New("smtp down")
	}
	n.sent = append(n.sent, token)
	n.users = append(n.users, user)
	return nil
}

func (n *fakeNotifier) tokens() []string {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]string(nil), n.sent...)
}

type workflowFixture struct {
	workflow *Workflow
	accounts *fakeAccountStore
	sessions *fakeSessionStore
	notifier *fakeNotifier
}

func newWorkflowFixture() *workflowFixture {
	accounts := newFakeAccountStore()
	sessions := newFakeSessionStore()
	notifier := &fakeNotifier{}
	return &workflowFixture{
		workflow: NewWorkflow(accounts, sessions, fakeHasher{}, &fakeIssuer{}, notifier),
		accounts: accounts,
		sessions: sessions,
		notifier: notifier,
	}
}

func TestSignup(t *testing.T) {
	t.Parallel()

	t.Run("creates unverified account with hashed password", func(t *testing.T) {
		t.Parallel()
		f := newWorkflowFixture()

		id, err := f.workflow.Signup(context.Background(), "sess-1", SignupInput{
			Email:     "Ana@Example.com",
			Password:  "s3cret",
			FirstName: "Ana",
			LastName:  "Pop",
		})
		require.NoError(t, err)
		require.NotEmpty(t, id)

		user := f.accounts.get(id)
		require.NotNil(t, user)
		assert.Equal(t, "ana@example.com", user.Email)
		assert.False(t, user.IsVerified)
		assert.NotEqual(t, "s3cret", user.Password)
		assert.NotEmpty(t, user.EmailConfirmationCode)
	})

	t.Run("binds the caller session", func(t *testing.T) {
		t.Parallel()
		f := newWorkflowFixture()

		id, err := f.workflow.Signup(context.Background(), "sess-2", SignupInput{
			Email: "bob@example.com", Password: "pw",
		})
		require.NoError(t, err)
		assert.Equal(t, id, f.sessions.userFor("sess-2"))
	})

	t.Run("requests a verification mail with the stored code", func(t *testing.T) {
		t.Parallel()
		f := newWorkflowFixture()

		id, err := f.workflow.Signup(context.Background(), "sess-3", SignupInput{
			Email: "carol@example.com", Password: "pw",
		})
		require.NoError(t, err)

		tokens := f.notifier.tokens()
		require.Len(t, tokens, 1)
		assert.Equal(t, f.accounts.get(id).EmailConfirmationCode, tokens[0])
	})

	t.Run("duplicate email returns conflict", func(t *testing.T) {
		t.Parallel()
		f := newWorkflowFixture()

		_, err := f.workflow.Signup(context.Background(), "sess-a", SignupInput{
			Email: "dup@example.com", Password: "first",
		})
		require.NoError(t, err)

		_, err = f.workflow.Signup(context.Background(), "sess-b", SignupInput{
			Email: "dup@example.com", Password: "second",
		})
		assert.ErrorIs(t, err, ErrConflict)
	})

	t.Run("duplicate email differing only by case returns conflict", func(t *testing.T) {
		t.Parallel()
		f := newWorkflowFixture()

		_, err := f.workflow.Signup(context.Background(), "sess-a", SignupInput{
			Email: "case@example.com", Password: "pw",
		})
		require.NoError(t, err)

		_, err = f.workflow.Signup(context.Background(), "sess-b", SignupInput{
			Email: "CASE@example.com", Password: "pw",
		})
		assert.ErrorIs(t, err, ErrConflict)
	})

	t.Run("concurrent duplicate signups admit exactly one", func(t *testing.T) {
		t.Parallel()
		f := newWorkflowFixture()

		const attempts = 8
		errs := make(chan error, attempts)
		var wg sync.WaitGroup
		for i := 0; i < attempts; i++ {
			wg.Add(1)
			go func(i int) {
				defer wg.Done()
				_, err := f.workflow.Signup(context.Background(),
					fmt.Sprintf("sess-%d", i),
					SignupInput{Email: "race@example.com", Password: "pw"})
				errs <- err
			}(i)
		}
		wg.Wait()
		close(errs)

		var ok, conflicts int
		for err := range errs {
			switch {
			case err == nil:
				ok++
			case errors.Is(err, ErrConflict):
				conflicts++
			default:
				t.Fatalf("unexpected error: %v", err)
			}
		}
		assert.Equal(t, 1, ok)
		assert.Equal(t, attempts-1, conflicts)
	})

	t.Run("mail failure does not fail the signup", func(t *testing.T) {
		t.Parallel()
		f := newWorkflowFixture()
		f.notifier.fail = true

		id, err := f.workflow.Signup(context.Background(), "sess-4", SignupInput{
			Email: "dave@example.com", Password: "pw",
		})
		require.NoError(t, err)
		assert.NotNil(t, f.accounts.get(id))
		assert.Equal(t, id, f.sessions.userFor("sess-4"))
	})
}

func TestLogin(t *testing.T) {
	t.Parallel()

	signup := func(t *testing.T, f *workflowFixture, email, password string) string {
		t.Helper()
		id, err := f.workflow.Signup(context.Background(), "seed", SignupInput{
			Email: email, Password: password,
		})
		require.NoError(t, err)
		require.NoError(t, f.workflow.Logout(context.Background(), "seed"))
		return id
	}

	t.Run("valid credentials bind the session", func(t *testing.T) {
		t.Parallel()
		f := newWorkflowFixture()
		id := signup(t, f, "eve@example.com", "correct")

		got, err := f.workflow.Login(context.Background(), "sess-l", "eve@example.com", "correct")
		require.NoError(t, err)
		assert.Equal(t, id, got)
		assert.Equal(t, id, f.sessions.userFor("sess-l"))
	})

	t.Run("email match is case-insensitive", func(t *testing.T) {
		t.Parallel()
		f := newWorkflowFixture()
		id := signup(t, f, "frank@example.com", "pw")

		got, err := f.workflow.Login(context.Background(), "sess-c", "FRANK@Example.COM", "pw")
		require.NoError(t, err)
		assert.Equal(t, id, got)
	})

	t.Run("wrong password and unknown email are indistinguishable", func(t *testing.T) {
		t.Parallel()
		f := newWorkflowFixture()
		signup(t, f, "grace@example.com", "right")

		_, errWrongPassword := f.workflow.Login(context.Background(), "s1", "grace@example.com", "wrong")
		_, errUnknownEmail := f.workflow.Login(context.Background(), "s2", "nobody@example.com", "right")

		require.ErrorIs(t, errWrongPassword, ErrUnauthorized)
		require.ErrorIs(t, errUnknownEmail, ErrUnauthorized)
		assert.Equal(t, errWrongPassword.Error(), errUnknownEmail.Error())
	})

	t.Run("failed login leaves the session unbound", func(t *testing.T) {
		t.Parallel()
		f := newWorkflowFixture()
		signup(t, f, "heidi@example.com", "pw")

		_, err := f.workflow.Login(context.Background(), "sess-f", "heidi@example.com", "bad")
		require.ErrorIs(t, err, ErrUnauthorized)
		assert.Empty(t, f.sessions.userFor("sess-f"))
	})

	t.Run("login works before email verification", func(t *testing.T) {
		t.Parallel()
		f := newWorkflowFixture()
		id := signup(t, f, "ivan@example.com", "pw")
		require.False(t, f.accounts.get(id).IsVerified)

		got, err := f.workflow.Login(context.Background(), "sess-u", "ivan@example.com", "pw")
		require.NoError(t, err)
		assert.Equal(t, id, got)
	})
}

func TestLogout(t *testing.T) {
	t.Parallel()

	t.Run("unbinds the session", func(t *testing.T) {
		t.Parallel()
		f := newWorkflowFixture()

		id, err := f.workflow.Signup(context.Background(), "sess-o", SignupInput{
			Email: "judy@example.com", Password: "pw",
		})
		require.NoError(t, err)
		require.Equal(t, id, f.sessions.userFor("sess-o"))

		require.NoError(t, f.workflow.Logout(context.Background(), "sess-o"))
		assert.Empty(t, f.sessions.userFor("sess-o"))
	})

	t.Run("is idempotent", func(t *testing.T) {
		t.Parallel()
		f := newWorkflowFixture()

		require.NoError(t, f.workflow.Logout(context.Background(), "never-seen"))
		require.NoError(t, f.workflow.Logout(context.Background(), "never-seen"))
	})
}

func TestVerifyEmail(t *testing.T) {
	t.Parallel()

	t.Run("marks the account verified", func(t *testing.T) {
		t.Parallel()
		f := newWorkflowFixture()

		id, err := f.workflow.Signup(context.Background(), "s", SignupInput{
			Email: "kim@example.com", Password: "pw",
		})
		require.NoError(t, err)
		code := f.accounts.get(id).EmailConfirmationCode

		outcome, err := f.workflow.VerifyEmail(context.Background(), code)
		require.NoError(t, err)
		assert.Equal(t, OutcomeActivated, outcome)
		assert.Equal(t, "Email has been activated!", outcome.Message())
		assert.True(t, f.accounts.get(id).IsVerified)
	})

	t.Run("unknown code changes nothing", func(t *testing.T) {
		t.Parallel()
		f := newWorkflowFixture()

		id, err := f.workflow.Signup(context.Background(), "s", SignupInput{
			Email: "lena@example.com", Password: "pw",
		})
		require.NoError(t, err)

		outcome, err := f.workflow.VerifyEmail(context.Background(), "bogus")
		require.NoError(t, err)
		assert.Equal(t, OutcomeInvalid, outcome)
		assert.Equal(t, "Invalid token!", outcome.Message())
		assert.False(t, f.accounts.get(id).IsVerified)
	})

	t.Run("replaying a code stays activated", func(t *testing.T) {
		t.Parallel()
		f := newWorkflowFixture()

		id, err := f.workflow.Signup(context.Background(), "s", SignupInput{
			Email: "mia@example.com", Password: "pw",
		})
		require.NoError(t, err)
		code := f.accounts.get(id).EmailConfirmationCode

		for i := 0; i < 3; i++ {
			outcome, err := f.workflow.VerifyEmail(context.Background(), code)
			require.NoError(t, err)
			assert.Equal(t, OutcomeActivated, outcome)
		}
		assert.True(t, f.accounts.get(id).IsVerified)
	})
}
