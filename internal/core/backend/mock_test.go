package backend

import (
	"context"
	"encoding/json"
	"strings"
	"sync"

	"github.com/yndnr/isoauth-go/internal/core/domain"
)

// callLog records calls across collaborators in order.
type callLog struct {
	mu      sync.Mutex
	entries []string
}

func (l *callLog) add(s string) {
	l.mu.Lock()
	l.entries = append(l.entries, s)
	l.mu.Unlock()
}

func (l *callLog) all() []string {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]string(nil), l.entries...)
}

// logTransport answers identity REST calls and logs "post:<endpoint>".
type logTransport struct {
	log    *callLog
	bodies []map[string]any
	reply  string
	err    error
}

func (t *logTransport) Post(_ context.Context, url string, body any) (json.RawMessage, error) {
	path := url
	if i := strings.Index(path, "?"); i >= 0 {
		path = path[:i]
	}
	t.log.add("post:" + path[strings.LastIndex(path, "/")+1:])

	data, _ := json.Marshal(body)
	var m map[string]any
	_ = json.Unmarshal(data, &m)
	t.bodies = append(t.bodies, m)

	if t.err != nil {
		return nil, t.err
	}
	if t.reply != "" {
		return json.RawMessage(t.reply), nil
	}
	return json.RawMessage(`{"localId":"u1","users":[{"localId":"u1","email":"a@b.c"}]}`), nil
}

// logTokens issues sequential tokens and logs "token:force=<bool>".
type logTokens struct {
	log *callLog
	n   int
	err error
}

func (s *logTokens) Token(_ context.Context, force bool) (string, error) {
	if force {
		s.log.add("token:force=true")
	} else {
		s.log.add("token:force=false")
	}
	if s.err != nil {
		return "", s.err
	}
	s.n++
	return "tok" + string(rune('0'+s.n)), nil
}

type fakeHandle struct {
	log     *callLog
	session *domain.Session
	updates []domain.ProfileUpdate
	err     error
}

func (h *fakeHandle) Snapshot() *domain.Session { return h.session.Clone() }

func (h *fakeHandle) Token(_ context.Context, force bool) (string, error) {
	h.log.add("handle.token")
	return "sdk-token", h.err
}

func (h *fakeHandle) UpdateProfile(_ context.Context, u domain.ProfileUpdate) error {
	h.log.add("handle.updateProfile")
	h.updates = append(h.updates, u)
	if h.err != nil {
		return h.err
	}
	if u.DisplayName != "" {
		h.session.DisplayName = u.DisplayName
	}
	if u.PhotoURL != "" {
		h.session.PhotoURL = u.PhotoURL
	}
	return nil
}

func (h *fakeHandle) UpdateEmail(_ context.Context, email string) error {
	h.log.add("handle.updateEmail")
	if h.err == nil {
		h.session.Email = email
	}
	return h.err
}

func (h *fakeHandle) UpdatePassword(context.Context, string) error {
	h.log.add("handle.updatePassword")
	return h.err
}

func (h *fakeHandle) SendEmailVerification(context.Context) error {
	h.log.add("handle.sendEmailVerification")
	return h.err
}

func (h *fakeHandle) Reauthenticate(context.Context, domain.Credential) error {
	h.log.add("handle.reauthenticate")
	return h.err
}

func (h *fakeHandle) Delete(context.Context) error {
	h.log.add("handle.delete")
	return h.err
}

type fakeSDK struct {
	log    *callLog
	handle *fakeHandle
	err    error
}

func (s *fakeSDK) OnSessionChanged(func(domain.AuthEvent)) func() { return func() {} }

func (s *fakeSDK) SignInWithEmailAndPassword(_ context.Context, email, _ string) (*domain.Session, error) {
	s.log.add("sdk.signIn")
	if s.err != nil {
		return nil, s.err
	}
	return &domain.Session{UID: "u1", Email: email}, nil
}

func (s *fakeSDK) CreateUserWithEmailAndPassword(_ context.Context, email, _ string) (*domain.Session, error) {
	s.log.add("sdk.signUp")
	return &domain.Session{UID: "u2", Email: email}, s.err
}

func (s *fakeSDK) SignInAnonymously(context.Context) (*domain.Session, error) {
	s.log.add("sdk.signInAnonymously")
	return &domain.Session{UID: "anon", IsAnonymous: true}, s.err
}

func (s *fakeSDK) SignOut(context.Context) error {
	s.log.add("sdk.signOut")
	return s.err
}

func (s *fakeSDK) CurrentSession() SessionHandle {
	if s.handle == nil {
		return nil
	}
	return s.handle
}

func (s *fakeSDK) SendPasswordResetEmail(context.Context, string) error {
	s.log.add("sdk.sendPasswordResetEmail")
	return s.err
}

func (s *fakeSDK) VerifyPasswordResetCode(context.Context, string) (string, error) {
	s.log.add("sdk.verifyPasswordResetCode")
	return "a@b.c", s.err
}

func (s *fakeSDK) ConfirmPasswordReset(context.Context, string, string) error {
	s.log.add("sdk.confirmPasswordReset")
	return s.err
}

func (s *fakeSDK) FetchProvidersForEmail(context.Context, string) ([]string, error) {
	s.log.add("sdk.fetchProviders")
	return []string{"password"}, s.err
}
