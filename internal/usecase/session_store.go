package usecase

import (
	"context"
	"fmt"
	"sync"

	"credit2cash/internal/domain"
	"credit2cash/internal/onboarding"
)

// Keys of the records the session store owns.
const (
	keySession      = "session"
	keyProfile      = "profile"
	keyLoginOTP     = "otp.login"
	keyKYCChallenge = "otp.kyc"
)

// SessionStore holds the device's login session, onboarding profile and OTP
// staging. Read-modify-write sequences are serialized by mu.
type SessionStore struct {
	kv KeyValueStore
	mu sync.Mutex
}

// NewSessionStore creates a session store over kv.
func NewSessionStore(kv KeyValueStore) *SessionStore {
	return &SessionStore{kv: kv}
}

// Session returns the current login, if any.
func (s *SessionStore) Session(ctx context.Context) (domain.AuthSession, bool, error) {
	var sess domain.AuthSession
	ok, err := getJSON(ctx, s.kv, keySession, &sess)
	if err != nil || !ok {
		return domain.AuthSession{}, false, err
	}
	return sess, sess.IsAuthenticated, nil
}

// IsAuthenticated reports whether a login session exists.
func (s *SessionStore) IsAuthenticated(ctx context.Context) (bool, error) {
	_, ok, err := s.Session(ctx)
	return ok, err
}

// PutSession replaces the login session.
func (s *SessionStore) PutSession(ctx context.Context, sess domain.AuthSession) error {
	return putJSON(ctx, s.kv, keySession, sess)
}

// ClearSession removes the login session.
func (s *SessionStore) ClearSession(ctx context.Context) error {
	return s.kv.Delete(ctx, keySession)
}

// Profile returns the onboarding profile; an absent profile is the zero value.
func (s *SessionStore) Profile(ctx context.Context) (domain.Profile, error) {
	var p domain.Profile
	if _, err := getJSON(ctx, s.kv, keyProfile, &p); err != nil {
		return domain.Profile{}, err
	}
	return p, nil
}

// UpdateProfile applies fn to the stored profile and writes the result back.
func (s *SessionStore) UpdateProfile(ctx context.Context, fn func(*domain.Profile)) (domain.Profile, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, err := s.Profile(ctx)
	if err != nil {
		return domain.Profile{}, err
	}
	fn(&p)
	if err := putJSON(ctx, s.kv, keyProfile, p); err != nil {
		return domain.Profile{}, err
	}
	return p, nil
}

// LoginChallenge returns the staged login OTP request.
func (s *SessionStore) LoginChallenge(ctx context.Context) (domain.OTPChallenge, bool, error) {
	return s.challenge(ctx, keyLoginOTP)
}

// PutLoginChallenge stages a login OTP request, replacing any earlier one.
func (s *SessionStore) PutLoginChallenge(ctx context.Context, c domain.OTPChallenge) error {
	return putJSON(ctx, s.kv, keyLoginOTP, c)
}

// ClearLoginChallenge drops the staged login OTP request.
func (s *SessionStore) ClearLoginChallenge(ctx context.Context) error {
	return s.kv.Delete(ctx, keyLoginOTP)
}

// KYCChallenge returns the staged Aadhaar OTP request.
func (s *SessionStore) KYCChallenge(ctx context.Context) (domain.OTPChallenge, bool, error) {
	return s.challenge(ctx, keyKYCChallenge)
}

// PutKYCChallenge stages an Aadhaar OTP request, replacing any earlier one.
func (s *SessionStore) PutKYCChallenge(ctx context.Context, c domain.OTPChallenge) error {
	return putJSON(ctx, s.kv, keyKYCChallenge, c)
}

// ClearKYCChallenge drops the staged Aadhaar OTP request.
func (s *SessionStore) ClearKYCChallenge(ctx context.Context) error {
	return s.kv.Delete(ctx, keyKYCChallenge)
}

// recordFailedAttempt bumps the attempt counter of the challenge under key.
func (s *SessionStore) recordFailedAttempt(ctx context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	c, ok, err := s.challenge(ctx, key)
	if err != nil || !ok {
		return err
	}
	c.Attempts++
	return putJSON(ctx, s.kv, key, c)
}

func (s *SessionStore) challenge(ctx context.Context, key string) (domain.OTPChallenge, bool, error) {
	var c domain.OTPChallenge
	ok, err := getJSON(ctx, s.kv, key, &c)
	if err != nil || !ok {
		return domain.OTPChallenge{}, false, err
	}
	return c, true, nil
}

// ClearTransient drops the session and both OTP challenges. The profile stays.
func (s *SessionStore) ClearTransient(ctx context.Context) error {
	if err := s.kv.Delete(ctx, keySession, keyLoginOTP, keyKYCChallenge); err != nil {
		return fmt.Errorf("could not clear session: %w", err)
	}
	return nil
}

// Reset drops everything the session store owns, the profile included.
func (s *SessionStore) Reset(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.kv.Delete(ctx, keySession, keyLoginOTP, keyKYCChallenge, keyProfile); err != nil {
		return fmt.Errorf("could not reset profile: %w", err)
	}
	return nil
}

// Facts snapshots the predicates the onboarding gates are evaluated against.
func (s *SessionStore) Facts(ctx context.Context) (onboarding.Facts, error) {
	authed, err := s.IsAuthenticated(ctx)
	if err != nil {
		return onboarding.Facts{}, err
	}
	_, login, err := s.LoginChallenge(ctx)
	if err != nil {
		return onboarding.Facts{}, err
	}
	_, kyc, err := s.KYCChallenge(ctx)
	if err != nil {
		return onboarding.Facts{}, err
	}
	p, err := s.Profile(ctx)
	if err != nil {
		return onboarding.Facts{}, err
	}
	return onboarding.Facts{
		HasSession:       authed,
		LoginChallenge:   login,
		UserTypeSet:      p.UserType != "",
		IdentityVerified: p.IdentityVerified,
		KYCChallenge:     kyc,
		AadhaarVerified:  p.AadhaarVerified,
	}, nil
}
