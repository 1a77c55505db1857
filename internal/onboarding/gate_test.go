package onboarding_test

import (
	"testing"

	"credit2cash/internal/onboarding"

	"github.com/stretchr/testify/assert"
)

// allFacts enumerates every combination of the six boolean facts.
func allFacts() []onboarding.Facts {
	var out []onboarding.Facts
	for mask := 0; mask < 1<<6; mask++ {
		out = append(out, onboarding.Facts{
			HasSession:       mask&1 != 0,
			LoginChallenge:   mask&2 != 0,
			UserTypeSet:      mask&4 != 0,
			IdentityVerified: mask&8 != 0,
			KYCChallenge:     mask&16 != 0,
			AadhaarVerified:  mask&32 != 0,
		})
	}
	return out
}

func TestGateKYCWithoutIdentityRedirectsToIdentity(t *testing.T) {
	for _, f := range allFacts() {
		if f.IdentityVerified {
			continue
		}
		assert.Equal(t, onboarding.Identity, onboarding.Gate(onboarding.KYCAadhaar, f), "%+v", f)
		assert.Equal(t, onboarding.Identity, onboarding.Gate(onboarding.KYCOTP, f), "%+v", f)
	}
}

func TestGateDashboard(t *testing.T) {
	for _, f := range allFacts() {
		got := onboarding.Gate(onboarding.Dashboard, f)
		switch {
		case !f.HasSession:
			assert.Equal(t, onboarding.LoggedOut, got, "%+v", f)
		case !f.AadhaarVerified:
			assert.Equal(t, onboarding.KYCAadhaar, got, "%+v", f)
		default:
			assert.Equal(t, onboarding.Dashboard, got, "%+v", f)
		}
	}
}

func TestGate(t *testing.T) {
	tests := []struct {
		name   string
		target onboarding.State
		facts  onboarding.Facts
		want   onboarding.State
	}{
		{name: "logged out always open", target: onboarding.LoggedOut, want: onboarding.LoggedOut},
		{name: "otp entry without challenge", target: onboarding.AwaitingOTP, want: onboarding.LoggedOut},
		{name: "otp entry with challenge", target: onboarding.AwaitingOTP, facts: onboarding.Facts{LoginChallenge: true}, want: onboarding.AwaitingOTP},
		{name: "user type needs session", target: onboarding.UserType, want: onboarding.LoggedOut},
		{name: "user type with session", target: onboarding.UserType, facts: onboarding.Facts{HasSession: true}, want: onboarding.UserType},
		{name: "identity needs user type", target: onboarding.Identity, facts: onboarding.Facts{HasSession: true}, want: onboarding.UserType},
		{name: "identity open", target: onboarding.Identity, facts: onboarding.Facts{HasSession: true, UserTypeSet: true}, want: onboarding.Identity},
		{name: "kyc otp needs challenge", target: onboarding.KYCOTP, facts: onboarding.Facts{HasSession: true, UserTypeSet: true, IdentityVerified: true}, want: onboarding.KYCAadhaar},
		{name: "kyc otp open", target: onboarding.KYCOTP, facts: onboarding.Facts{HasSession: true, UserTypeSet: true, IdentityVerified: true, KYCChallenge: true}, want: onboarding.KYCOTP},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, onboarding.Gate(tt.target, tt.facts))
		})
	}
}

func TestSettleFollowsRedirects(t *testing.T) {
	f := onboarding.Facts{}
	assert.Equal(t, onboarding.LoggedOut, onboarding.Settle(onboarding.Dashboard, f))

	f = onboarding.Facts{HasSession: true}
	assert.Equal(t, onboarding.UserType, onboarding.Settle(onboarding.KYCOTP, f))

	f = onboarding.Facts{HasSession: true, UserTypeSet: true, IdentityVerified: true}
	assert.Equal(t, onboarding.KYCAadhaar, onboarding.Settle(onboarding.Dashboard, f))
}

func TestResolve(t *testing.T) {
	tests := []struct {
		name  string
		facts onboarding.Facts
		want  onboarding.State
	}{
		{name: "fresh device", want: onboarding.LoggedOut},
		{name: "otp pending", facts: onboarding.Facts{LoginChallenge: true}, want: onboarding.AwaitingOTP},
		{name: "logged in", facts: onboarding.Facts{HasSession: true}, want: onboarding.UserType},
		{name: "type chosen", facts: onboarding.Facts{HasSession: true, UserTypeSet: true}, want: onboarding.Identity},
		{name: "identity done", facts: onboarding.Facts{HasSession: true, UserTypeSet: true, IdentityVerified: true}, want: onboarding.KYCAadhaar},
		{name: "aadhaar otp pending", facts: onboarding.Facts{HasSession: true, UserTypeSet: true, IdentityVerified: true, KYCChallenge: true}, want: onboarding.KYCOTP},
		{name: "verified", facts: onboarding.Facts{HasSession: true, UserTypeSet: true, IdentityVerified: true, AadhaarVerified: true}, want: onboarding.Dashboard},
		{name: "verified but logged out", facts: onboarding.Facts{UserTypeSet: true, IdentityVerified: true, AadhaarVerified: true}, want: onboarding.LoggedOut},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, onboarding.Resolve(tt.facts))
		})
	}
}

func TestResolvedStateAlwaysPassesItsGate(t *testing.T) {
	for _, f := range allFacts() {
		s := onboarding.Resolve(f)
		assert.Equal(t, s, onboarding.Gate(s, f), "%+v resolved to %v", f, s)
	}
}
