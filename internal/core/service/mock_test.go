package service

import (
	"context"
	"encoding/json"
	"strings"
	"sync"
	"time"

	"github.com/yndnr/isoauth-go/internal/core/backend"
	"github.com/yndnr/isoauth-go/internal/core/domain"
	"github.com/yndnr/isoauth-go/internal/core/platform"
)

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

// recordingCapability logs "<context>:<method>" for every call.
type recordingCapability struct {
	ctx     platform.Context
	log     *callLog
	session *domain.Session
	err     error
}

func (r *recordingCapability) record(m string) {
	r.log.add(r.ctx.String() + ":" + m)
}

func (r *recordingCapability) Context() platform.Context { return r.ctx }

func (r *recordingCapability) SignIn(context.Context, string, string) (*domain.Session, error) {
	r.record("SignIn")
	return r.session.Clone(), r.err
}

func (r *recordingCapability) SignInAnonymously(context.Context) (*domain.Session, error) {
	r.record("SignInAnonymously")
	return r.session.Clone(), r.err
}

func (r *recordingCapability) SignUp(context.Context, string, string) (*domain.Session, error) {
	r.record("SignUp")
	return r.session.Clone(), r.err
}

func (r *recordingCapability) SignOut(context.Context) error {
	r.record("SignOut")
	return r.err
}

func (r *recordingCapability) UpdateProfile(context.Context, domain.ProfileUpdate) (*domain.Session, error) {
	r.record("UpdateProfile")
	return r.session.Clone(), r.err
}

func (r *recordingCapability) UpdateEmail(context.Context, string) (*domain.Session, error) {
	r.record("UpdateEmail")
	return r.session.Clone(), r.err
}

func (r *recordingCapability) UpdatePassword(context.Context, string) (*domain.Session, error) {
	r.record("UpdatePassword")
	return r.session.Clone(), r.err
}

func (r *recordingCapability) SendEmailVerification(context.Context) error {
	r.record("SendEmailVerification")
	return r.err
}

func (r *recordingCapability) SendPasswordResetEmail(context.Context, string) error {
	r.record("SendPasswordResetEmail")
	return r.err
}

func (r *recordingCapability) VerifyPasswordResetCode(context.Context, string) (string, error) {
	r.record("VerifyPasswordResetCode")
	return "a@b.c", r.err
}

func (r *recordingCapability) ConfirmPasswordReset(context.Context, string, string) error {
	r.record("ConfirmPasswordReset")
	return r.err
}

func (r *recordingCapability) Reauthenticate(context.Context, domain.Credential) (*domain.Session, error) {
	r.record("Reauthenticate")
	return r.session.Clone(), r.err
}

func (r *recordingCapability) DeleteAccount(context.Context, domain.Credential) error {
	r.record("DeleteAccount")
	return r.err
}

func (r *recordingCapability) FetchProviders(context.Context, string) ([]string, error) {
	r.record("FetchProviders")
	return []string{"password"}, r.err
}

func (r *recordingCapability) Profile(context.Context) (*domain.Session, error) {
	r.record("Profile")
	return r.session.Clone(), r.err
}

var _ backend.Capability = (*recordingCapability)(nil)

// pushSDK is a backend.SDK whose events are pushed by the test and whose
// signed-in session is a recordingHandle.
type pushSDK struct {
	log *callLog

	mu       sync.Mutex
	handlers map[int]func(domain.AuthEvent)
	next     int
	seq      uint64
	handle   *recordingHandle
}

func newPushSDK(log *callLog) *pushSDK {
	return &pushSDK{log: log, handlers: map[int]func(domain.AuthEvent){}}
}

func (p *pushSDK) OnSessionChanged(h func(domain.AuthEvent)) func() {
	p.mu.Lock()
	defer p.mu.Unlock()
	id := p.next
	p.next++
	p.handlers[id] = h
	return func() {
		p.mu.Lock()
		delete(p.handlers, id)
		p.mu.Unlock()
	}
}

func (p *pushSDK) push(s *domain.Session) {
	p.mu.Lock()
	p.seq++
	e := domain.AuthEvent{Session: s, Seq: p.seq, At: time.Now()}
	hs := make([]func(domain.AuthEvent), 0, len(p.handlers))
	for _, h := range p.handlers {
		hs = append(hs, h)
	}
	p.mu.Unlock()
	for _, h := range hs {
		h(e)
	}
}

func (p *pushSDK) SignInWithEmailAndPassword(context.Context, string, string) (*domain.Session, error) {
	p.log.add("sdk:SignIn")
	return &domain.Session{UID: "u1"}, nil
}

func (p *pushSDK) CreateUserWithEmailAndPassword(context.Context, string, string) (*domain.Session, error) {
	p.log.add("sdk:SignUp")
	return &domain.Session{UID: "u1"}, nil
}

func (p *pushSDK) SignInAnonymously(context.Context) (*domain.Session, error) {
	p.log.add("sdk:SignInAnonymously")
	return &domain.Session{UID: "anon", IsAnonymous: true}, nil
}

func (p *pushSDK) SignOut(context.Context) error {
	p.log.add("sdk:SignOut")
	return nil
}

func (p *pushSDK) CurrentSession() backend.SessionHandle {
	if p.handle == nil {
		return nil
	}
	return p.handle
}

func (p *pushSDK) SendPasswordResetEmail(context.Context, string) error { return nil }

func (p *pushSDK) VerifyPasswordResetCode(context.Context, string) (string, error) { return "", nil }

func (p *pushSDK) ConfirmPasswordReset(context.Context, string, string) error { return nil }

func (p *pushSDK) FetchProvidersForEmail(context.Context, string) ([]string, error) { return nil, nil }

type recordingHandle struct {
	log     *callLog
	session *domain.Session
	updates []domain.ProfileUpdate
}

func (h *recordingHandle) Snapshot() *domain.Session { return h.session.Clone() }

func (h *recordingHandle) Token(_ context.Context, force bool) (string, error) {
	if force {
		h.log.add("token:force=true")
	} else {
		h.log.add("token:force=false")
	}
	return "fresh-token", nil
}

func (h *recordingHandle) UpdateProfile(_ context.Context, u domain.ProfileUpdate) error {
	h.log.add("sdk:UpdateProfile")
	h.updates = append(h.updates, u)
	h.session.DisplayName = u.DisplayName
	h.session.PhotoURL = u.PhotoURL
	return nil
}

func (h *recordingHandle) UpdateEmail(context.Context, string) error    { return nil }
func (h *recordingHandle) UpdatePassword(context.Context, string) error { return nil }
func (h *recordingHandle) SendEmailVerification(context.Context) error  { return nil }

func (h *recordingHandle) Reauthenticate(context.Context, domain.Credential) error {
	h.log.add("sdk:Reauthenticate")
	return nil
}

func (h *recordingHandle) Delete(context.Context) error { return nil }

// logTransport logs "post:<endpoint>" for every REST call.
type logTransport struct {
	log    *callLog
	bodies []map[string]any
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
	return json.RawMessage(`{"localId":"u1","email":"a@b.c","users":[{"localId":"u1","email":"a@b.c"}]}`), nil
}
