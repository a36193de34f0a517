package localsdk

import (
	"context"
	"sync"
	"time"

	"github.com/yndnr/isoauth-go/internal/core/backend"
	"github.com/yndnr/isoauth-go/internal/core/domain"
	"github.com/yndnr/isoauth-go/internal/identitytoolkit"
	"github.com/yndnr/isoauth-go/internal/telemetry/logger"
)

// SDK implements backend.SDK over the Identity Toolkit REST client.
type SDK struct {
	client *identitytoolkit.Client
	log    logger.Logger
	now    func() time.Time

	// emitMu orders state transitions with their notifications.
	emitMu sync.Mutex

	mu       sync.Mutex
	current  *Session
	handlers map[uint64]func(domain.AuthEvent)
	nextID   uint64
	seq      uint64
}

var _ backend.SDK = (*SDK)(nil)

// Option configures an SDK.
type Option func(*SDK)

// WithLogger sets the logger.
func WithLogger(l logger.Logger) Option {
	return func(s *SDK) { s.log = l }
}

// WithClock replaces time.Now, for tests.
func WithClock(now func() time.Time) Option {
	return func(s *SDK) { s.now = now }
}

// New creates a signed-out SDK.
func New(client *identitytoolkit.Client, opts ...Option) *SDK {
	s := &SDK{
		client:   client,
		log:      logger.Default(),
		now:      time.Now,
		handlers: make(map[uint64]func(domain.AuthEvent)),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// OnSessionChanged registers h for every later transition. Handlers run
// synchronously on the goroutine that caused the transition, in sequence
// order, and must not call back into sign-in or sign-out.
func (s *SDK) OnSessionChanged(h func(domain.AuthEvent)) func() {
	s.mu.Lock()
	id := s.nextID
	s.nextID++
	s.handlers[id] = h
	s.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			s.mu.Lock()
			delete(s.handlers, id)
			s.mu.Unlock()
		})
	}
}

// transition replaces the current session (nil signs out) and notifies.
// With onlyIf set, nothing happens unless onlyIf is still current.
func (s *SDK) transition(next *Session, onlyIf *Session) bool {
	s.emitMu.Lock()
	defer s.emitMu.Unlock()

	s.mu.Lock()
	if onlyIf != nil && s.current != onlyIf {
		s.mu.Unlock()
		return false
	}
	s.current = next
	s.seq++
	e := domain.AuthEvent{Seq: s.seq, At: s.now()}
	if next != nil {
		e.Session = next.Snapshot()
	}
	handlers := make([]func(domain.AuthEvent), 0, len(s.handlers))
	for _, h := range s.handlers {
		handlers = append(handlers, h)
	}
	s.mu.Unlock()

	s.log.Debug("session changed", "seq", e.Seq, "uid", uidOf(e.Session))
	for _, h := range handlers {
		h(e)
	}
	return true
}

// refreshed re-announces a session whose tokens or profile changed.
func (s *SDK) refreshed(sess *Session) {
	s.transition(sess, sess)
}

func uidOf(s *domain.Session) string {
	if s == nil {
		return ""
	}
	return s.UID
}

func (s *SDK) isCurrent(sess *Session) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.current == sess
}

func (s *SDK) signIn(resp *identitytoolkit.AuthResponse) *domain.Session {
	profile := resp.Session()
	sess := newSession(s, profile)
	sess.setTokens(resp.IDToken, resp.RefreshToken, profile.ExpiresIn, s.now())
	s.transition(sess, nil)
	return profile
}

// SignInWithEmailAndPassword implements backend.SDK.
func (s *SDK) SignInWithEmailAndPassword(ctx context.Context, email, password string) (*domain.Session, error) {
	resp, err := s.client.VerifyPassword(ctx, email, password)
	if err != nil {
		return nil, err
	}
	return s.signIn(resp), nil
}

// CreateUserWithEmailAndPassword implements backend.SDK.
func (s *SDK) CreateUserWithEmailAndPassword(ctx context.Context, email, password string) (*domain.Session, error) {
	resp, err := s.client.SignUp(ctx, email, password)
	if err != nil {
		return nil, err
	}
	return s.signIn(resp), nil
}

// SignInAnonymously implements backend.SDK.
func (s *SDK) SignInAnonymously(ctx context.Context) (*domain.Session, error) {
	resp, err := s.client.SignUpAnonymously(ctx)
	if err != nil {
		return nil, err
	}
	return s.signIn(resp), nil
}

// Restore resumes a session from a refresh token obtained earlier.
func (s *SDK) Restore(ctx context.Context, refreshToken string) (*domain.Session, error) {
	tok, err := s.client.RefreshToken(ctx, refreshToken)
	if err != nil {
		return nil, err
	}
	user, err := s.client.GetAccountInfo(ctx, tok.IDToken)
	if err != nil {
		return nil, err
	}

	sess := newSession(s, user.Session())
	sess.setTokens(tok.IDToken, tok.RefreshToken, tok.Expiry(), s.now())
	s.transition(sess, nil)
	return sess.Snapshot(), nil
}

// SignOut drops the current session. Signing out while signed out does
// not notify.
func (s *SDK) SignOut(context.Context) error {
	s.mu.Lock()
	cur := s.current
	s.mu.Unlock()
	if cur == nil {
		return nil
	}
	s.transition(nil, cur)
	return nil
}

// CurrentSession implements backend.SDK.
func (s *SDK) CurrentSession() backend.SessionHandle {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.current == nil {
		return nil
	}
	return s.current
}

// SendPasswordResetEmail implements backend.SDK.
func (s *SDK) SendPasswordResetEmail(ctx context.Context, email string) error {
	return s.client.SendPasswordReset(ctx, email)
}

// VerifyPasswordResetCode implements backend.SDK.
func (s *SDK) VerifyPasswordResetCode(ctx context.Context, code string) (string, error) {
	return s.client.VerifyResetCode(ctx, code)
}

// ConfirmPasswordReset implements backend.SDK.
func (s *SDK) ConfirmPasswordReset(ctx context.Context, code, newPassword string) error {
	return s.client.ConfirmReset(ctx, code, newPassword)
}

// FetchProvidersForEmail implements backend.SDK.
func (s *SDK) FetchProvidersForEmail(ctx context.Context, email string) ([]string, error) {
	return s.client.ProvidersForEmail(ctx, email)
}
