package usecase

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"golang.org/x/sync/semaphore"

	"credit2cash/internal/domain"
	"credit2cash/internal/onboarding"
	"credit2cash/internal/validation"
)

// AcceptedOTP is the only code the simulated OTP channel accepts.
const AcceptedOTP = "123456"

// OnboardingConfig holds the simulated latencies of the OTP and verification
// steps and the resend cooldown handed back to callers.
type OnboardingConfig struct {
	AcceptedOTP         string
	OTPSendDelay        time.Duration
	OTPVerifyDelay      time.Duration
	IdentityVerifyDelay time.Duration
	AadhaarSendDelay    time.Duration
	AadhaarVerifyDelay  time.Duration
	ResendCooldown      time.Duration
}

// DefaultOnboardingConfig mirrors the timings of the demo app.
func DefaultOnboardingConfig() OnboardingConfig {
	return OnboardingConfig{
		AcceptedOTP:         AcceptedOTP,
		OTPSendDelay:        500 * time.Millisecond,
		OTPVerifyDelay:      600 * time.Millisecond,
		IdentityVerifyDelay: time.Second,
		AadhaarSendDelay:    800 * time.Millisecond,
		AadhaarVerifyDelay:  time.Second,
		ResendCooldown:      30 * time.Second,
	}
}

// OnboardingUseCase drives the login and KYC flow over the session store.
type OnboardingUseCase struct {
	store    *SessionStore
	cfg      OnboardingConfig
	opts     options
	inflight *semaphore.Weighted
	busy     atomic.Bool
}

// NewOnboardingUseCase creates the onboarding flow.
func NewOnboardingUseCase(store *SessionStore, cfg OnboardingConfig, opts ...Option) *OnboardingUseCase {
	if cfg.AcceptedOTP == "" {
		cfg.AcceptedOTP = AcceptedOTP
	}
	return &OnboardingUseCase{
		store:    store,
		cfg:      cfg,
		opts:     buildOptions(opts),
		inflight: semaphore.NewWeighted(1),
	}
}

// Busy reports whether a simulated OTP or verification call is outstanding.
func (uc *OnboardingUseCase) Busy() bool {
	return uc.busy.Load()
}

// SendOTP stages a login code for phone. Calling it again is a resend.
func (uc *OnboardingUseCase) SendOTP(ctx context.Context, phone string) (onboarding.State, error) {
	if !validation.ValidatePhone(phone) {
		return onboarding.LoggedOut, &domain.ValidationError{Field: "phone", Message: "enter a valid 10-digit mobile number"}
	}
	release, err := uc.begin(ctx, uc.cfg.OTPSendDelay)
	if err != nil {
		return onboarding.LoggedOut, err
	}
	defer release()

	facts, err := uc.store.Facts(ctx)
	if err != nil {
		return onboarding.LoggedOut, err
	}
	from := onboarding.LoggedOut
	if facts.LoginChallenge {
		from = onboarding.AwaitingOTP
	}
	next, err := onboarding.Transition(from, onboarding.OTPRequested)
	if err != nil {
		return from, err
	}
	if err := uc.store.PutLoginChallenge(ctx, domain.OTPChallenge{Phone: phone, SentAt: uc.opts.now()}); err != nil {
		return from, fmt.Errorf("could not stage otp: %w", err)
	}
	uc.opts.logger.Printf("onboarding event=%s phone=%s state=%s", onboarding.OTPRequested, validation.MaskLast4(phone), next)
	return next, nil
}

// ResendAvailableAt tells the caller when its resend cooldown ends.
func (uc *OnboardingUseCase) ResendAvailableAt(ctx context.Context) (time.Time, bool, error) {
	c, ok, err := uc.store.LoginChallenge(ctx)
	if err != nil || !ok {
		return time.Time{}, false, err
	}
	return c.SentAt.Add(uc.cfg.ResendCooldown), true, nil
}

// VerifyOTP checks code against the staged login challenge for phone and
// opens a session on a match. A returning user whose profile is already
// verified resolves straight to the dashboard.
func (uc *OnboardingUseCase) VerifyOTP(ctx context.Context, phone, code string) (onboarding.State, error) {
	if !validation.ValidateOTP(code) {
		return onboarding.AwaitingOTP, &domain.ValidationError{Field: "otp", Message: "enter a 6-digit OTP"}
	}
	challenge, ok, err := uc.store.LoginChallenge(ctx)
	if err != nil {
		return onboarding.LoggedOut, err
	}
	if !ok {
		return onboarding.LoggedOut, locked(onboarding.AwaitingOTP, onboarding.LoggedOut)
	}
	release, err := uc.begin(ctx, uc.cfg.OTPVerifyDelay)
	if err != nil {
		return onboarding.AwaitingOTP, err
	}
	defer release()

	if challenge.Phone != phone {
		return onboarding.AwaitingOTP, &domain.AuthMismatchError{Reason: "phone number mismatch"}
	}
	if code != uc.cfg.AcceptedOTP {
		if err := uc.store.recordFailedAttempt(ctx, keyLoginOTP); err != nil {
			return onboarding.AwaitingOTP, err
		}
		uc.opts.logger.Printf("onboarding event=%s phone=%s", onboarding.OTPRejected, validation.MaskLast4(phone))
		return onboarding.AwaitingOTP, &domain.AuthMismatchError{Reason: "incorrect OTP, try again"}
	}

	sess := domain.AuthSession{Phone: phone, IsAuthenticated: true, LoginAt: uc.opts.now()}
	if err := uc.store.PutSession(ctx, sess); err != nil {
		return onboarding.AwaitingOTP, fmt.Errorf("could not create session: %w", err)
	}
	if err := uc.store.ClearLoginChallenge(ctx); err != nil {
		return onboarding.AwaitingOTP, fmt.Errorf("could not clear otp: %w", err)
	}
	facts, err := uc.store.Facts(ctx)
	if err != nil {
		return onboarding.AwaitingOTP, err
	}
	next := onboarding.Resolve(facts)
	uc.opts.logger.Printf("onboarding event=%s phone=%s state=%s", onboarding.OTPAccepted, validation.MaskLast4(phone), next)
	return next, nil
}

// ChooseUserType records the declared occupation.
func (uc *OnboardingUseCase) ChooseUserType(ctx context.Context, ut domain.UserType) (onboarding.State, error) {
	if err := uc.requireGate(ctx, onboarding.UserType); err != nil {
		return onboarding.UserType, err
	}
	if _, err := domain.ParseUserType(string(ut)); err != nil {
		return onboarding.UserType, &domain.ValidationError{Field: "user type", Message: "select salaried or business"}
	}
	profile, err := uc.store.Profile(ctx)
	if err != nil {
		return onboarding.UserType, err
	}
	if ut == domain.UserTypeSalaried && profile.IdentityVerified && profile.IdentityType == domain.IdentityGST {
		return onboarding.UserType, &domain.ValidationError{Field: "user type", Message: "identity was verified with GST, salaried users verify with PAN"}
	}
	if _, err := uc.store.UpdateProfile(ctx, func(p *domain.Profile) { p.UserType = ut }); err != nil {
		return onboarding.UserType, fmt.Errorf("could not save user type: %w", err)
	}
	return uc.advance(ctx, onboarding.UserType, onboarding.UserTypeChosen)
}

// SubmitIdentity validates and records a PAN or GST number. Salaried users
// may only use PAN.
func (uc *OnboardingUseCase) SubmitIdentity(ctx context.Context, it domain.IdentityType, number string) (onboarding.State, error) {
	if err := uc.requireGate(ctx, onboarding.Identity); err != nil {
		return onboarding.Identity, err
	}
	profile, err := uc.store.Profile(ctx)
	if err != nil {
		return onboarding.Identity, err
	}
	number = validation.NormalizeIdentity(number)
	switch it {
	case domain.IdentityPAN:
		if !validation.ValidatePAN(number) {
			return onboarding.Identity, &domain.ValidationError{Field: "pan", Message: "invalid PAN format"}
		}
	case domain.IdentityGST:
		if profile.UserType == domain.UserTypeSalaried {
			return onboarding.Identity, &domain.ValidationError{Field: "identity type", Message: "salaried users verify with PAN"}
		}
		if !validation.ValidateGST(number) {
			return onboarding.Identity, &domain.ValidationError{Field: "gst", Message: "invalid GST format"}
		}
	default:
		return onboarding.Identity, &domain.ValidationError{Field: "identity type", Message: "select PAN or GST"}
	}

	release, err := uc.begin(ctx, uc.cfg.IdentityVerifyDelay)
	if err != nil {
		return onboarding.Identity, err
	}
	defer release()

	_, err = uc.store.UpdateProfile(ctx, func(p *domain.Profile) {
		p.IdentityType = it
		p.IdentityNumber = number
		p.IdentityVerified = true
	})
	if err != nil {
		return onboarding.Identity, fmt.Errorf("could not save identity: %w", err)
	}
	return uc.advance(ctx, onboarding.Identity, onboarding.IdentityVerified)
}

// SendAadhaarOTP stages a KYC code for the given Aadhaar number.
func (uc *OnboardingUseCase) SendAadhaarOTP(ctx context.Context, aadhaar string) (onboarding.State, error) {
	if err := uc.requireGate(ctx, onboarding.KYCAadhaar); err != nil {
		return onboarding.KYCAadhaar, err
	}
	if !validation.ValidateAadhaar(aadhaar) {
		return onboarding.KYCAadhaar, &domain.ValidationError{Field: "aadhaar", Message: "enter a valid 12-digit Aadhaar number"}
	}
	release, err := uc.begin(ctx, uc.cfg.AadhaarSendDelay)
	if err != nil {
		return onboarding.KYCAadhaar, err
	}
	defer release()

	c := domain.OTPChallenge{Aadhaar: validation.StripSpaces(aadhaar), SentAt: uc.opts.now()}
	if err := uc.store.PutKYCChallenge(ctx, c); err != nil {
		return onboarding.KYCAadhaar, fmt.Errorf("could not stage aadhaar otp: %w", err)
	}
	return uc.advance(ctx, onboarding.KYCAadhaar, onboarding.AadhaarOTPRequested)
}

// VerifyAadhaarOTP completes KYC on a matching code.
func (uc *OnboardingUseCase) VerifyAadhaarOTP(ctx context.Context, code string) (onboarding.State, error) {
	if err := uc.requireGate(ctx, onboarding.KYCOTP); err != nil {
		return onboarding.KYCOTP, err
	}
	if !validation.ValidateOTP(code) {
		return onboarding.KYCOTP, &domain.ValidationError{Field: "otp", Message: "enter a 6-digit OTP"}
	}
	challenge, _, err := uc.store.KYCChallenge(ctx)
	if err != nil {
		return onboarding.KYCOTP, err
	}
	release, err := uc.begin(ctx, uc.cfg.AadhaarVerifyDelay)
	if err != nil {
		return onboarding.KYCOTP, err
	}
	defer release()

	if code != uc.cfg.AcceptedOTP {
		if err := uc.store.recordFailedAttempt(ctx, keyKYCChallenge); err != nil {
			return onboarding.KYCOTP, err
		}
		uc.opts.logger.Printf("onboarding event=%s", onboarding.AadhaarRejected)
		return onboarding.KYCOTP, &domain.AuthMismatchError{Reason: "incorrect OTP, try again"}
	}

	_, err = uc.store.UpdateProfile(ctx, func(p *domain.Profile) {
		p.AadhaarNumber = challenge.Aadhaar
		p.AadhaarVerified = true
	})
	if err != nil {
		return onboarding.KYCOTP, fmt.Errorf("could not save kyc: %w", err)
	}
	if err := uc.store.ClearKYCChallenge(ctx); err != nil {
		return onboarding.KYCOTP, fmt.Errorf("could not clear aadhaar otp: %w", err)
	}
	return uc.advance(ctx, onboarding.KYCOTP, onboarding.AadhaarAccepted)
}

// Enter returns target when its gate is open, or the state to go to instead.
func (uc *OnboardingUseCase) Enter(ctx context.Context, target onboarding.State) (onboarding.State, error) {
	facts, err := uc.store.Facts(ctx)
	if err != nil {
		return onboarding.LoggedOut, err
	}
	return onboarding.Gate(target, facts), nil
}

// Resume derives the caller's current step from durable state alone.
func (uc *OnboardingUseCase) Resume(ctx context.Context) (onboarding.State, error) {
	facts, err := uc.store.Facts(ctx)
	if err != nil {
		return onboarding.LoggedOut, err
	}
	return onboarding.Resolve(facts), nil
}

// IsAuthenticated reports whether a session is open.
func (uc *OnboardingUseCase) IsAuthenticated(ctx context.Context) (bool, error) {
	return uc.store.IsAuthenticated(ctx)
}

// Session returns the open session.
func (uc *OnboardingUseCase) Session(ctx context.Context) (domain.AuthSession, bool, error) {
	return uc.store.Session(ctx)
}

// Profile returns the accumulated onboarding profile.
func (uc *OnboardingUseCase) Profile(ctx context.Context) (domain.Profile, error) {
	return uc.store.Profile(ctx)
}

// Logout closes the session and drops OTP staging. The profile is kept so a
// verified user does not repeat KYC on the next login.
func (uc *OnboardingUseCase) Logout(ctx context.Context) (onboarding.State, error) {
	if err := uc.store.ClearTransient(ctx); err != nil {
		return onboarding.LoggedOut, err
	}
	uc.opts.logger.Printf("onboarding event=%s", onboarding.LoggedOutEvent)
	return onboarding.LoggedOut, nil
}

// Reset logs out and forgets the profile.
func (uc *OnboardingUseCase) Reset(ctx context.Context) (onboarding.State, error) {
	if err := uc.store.Reset(ctx); err != nil {
		return onboarding.LoggedOut, err
	}
	uc.opts.logger.Printf("onboarding event=reset")
	return onboarding.LoggedOut, nil
}

func (uc *OnboardingUseCase) requireGate(ctx context.Context, target onboarding.State) error {
	facts, err := uc.store.Facts(ctx)
	if err != nil {
		return err
	}
	if target > onboarding.AwaitingOTP && !facts.HasSession {
		return locked(target, onboarding.LoggedOut)
	}
	if got := onboarding.Gate(target, facts); got != target {
		return locked(target, got)
	}
	return nil
}

// advance applies ev to from and settles on the first state whose gate is open.
func (uc *OnboardingUseCase) advance(ctx context.Context, from onboarding.State, ev onboarding.Event) (onboarding.State, error) {
	next, err := onboarding.Transition(from, ev)
	if err != nil {
		return from, err
	}
	facts, err := uc.store.Facts(ctx)
	if err != nil {
		return from, err
	}
	next = onboarding.Settle(next, facts)
	uc.opts.logger.Printf("onboarding event=%s state=%s", ev, next)
	return next, nil
}

// begin claims the single in-flight slot and waits out the simulated latency.
func (uc *OnboardingUseCase) begin(ctx context.Context, delay time.Duration) (func(), error) {
	if !uc.inflight.TryAcquire(1) {
		return nil, domain.ErrOperationInProgress
	}
	uc.busy.Store(true)
	release := func() {
		uc.busy.Store(false)
		uc.inflight.Release(1)
	}
	if err := simulateLatency(ctx, delay); err != nil {
		release()
		return nil, err
	}
	return release, nil
}

func simulateLatency(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

func locked(want, redirect onboarding.State) error {
	return &domain.StepLockedError{Want: want.String(), Redirect: redirect.String()}
}
