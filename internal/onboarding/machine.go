// Package onboarding is the pure state machine behind the login and KYC flow.
//
// Nothing here reads storage. Callers snapshot the durable session and profile
// into Facts and ask the machine where the user is allowed to be.
package onboarding

import (
	"errors"
	"fmt"
)

// ErrInvalidTransition is returned when an event does not apply to a state.
var ErrInvalidTransition = errors.New("invalid onboarding transition")

// State is a step of the onboarding flow, in traversal order.
type State int

const (
	LoggedOut State = iota
	AwaitingOTP
	UserType
	Identity
	KYCAadhaar
	KYCOTP
	Dashboard
)

// States lists every state in traversal order.
var States = []State{LoggedOut, AwaitingOTP, UserType, Identity, KYCAadhaar, KYCOTP, Dashboard}

func (s State) String() string {
	switch s {
	case LoggedOut:
		return "logged_out"
	case AwaitingOTP:
		return "awaiting_otp"
	case UserType:
		return "user_type"
	case Identity:
		return "identity"
	case KYCAadhaar:
		return "kyc_aadhaar"
	case KYCOTP:
		return "kyc_otp"
	case Dashboard:
		return "dashboard"
	}
	return fmt.Sprintf("state(%d)", int(s))
}

// ParseState is the inverse of State.String.
func ParseState(s string) (State, error) {
	for _, st := range States {
		if st.String() == s {
			return st, nil
		}
	}
	return 0, fmt.Errorf("unknown onboarding state %q", s)
}

// Event is something that happened in the flow.
type Event int

const (
	OTPRequested Event = iota
	OTPAccepted
	OTPRejected
	UserTypeChosen
	IdentityVerified
	AadhaarOTPRequested
	AadhaarAccepted
	AadhaarRejected
	LoggedOutEvent
)

// Events lists every event.
var Events = []Event{
	OTPRequested, OTPAccepted, OTPRejected, UserTypeChosen, IdentityVerified,
	AadhaarOTPRequested, AadhaarAccepted, AadhaarRejected, LoggedOutEvent,
}

func (e Event) String() string {
	switch e {
	case OTPRequested:
		return "otp_requested"
	case OTPAccepted:
		return "otp_accepted"
	case OTPRejected:
		return "otp_rejected"
	case UserTypeChosen:
		return "user_type_chosen"
	case IdentityVerified:
		return "identity_verified"
	case AadhaarOTPRequested:
		return "aadhaar_otp_requested"
	case AadhaarAccepted:
		return "aadhaar_accepted"
	case AadhaarRejected:
		return "aadhaar_rejected"
	case LoggedOutEvent:
		return "logged_out"
	}
	return fmt.Sprintf("event(%d)", int(e))
}

// Transition applies one event to one state. Rejections and resends loop on
// the current state; logout is accepted everywhere.
func Transition(s State, e Event) (State, error) {
	if e == LoggedOutEvent {
		return LoggedOut, nil
	}
	switch s {
	case LoggedOut:
		if e == OTPRequested {
			return AwaitingOTP, nil
		}
	case AwaitingOTP:
		switch e {
		case OTPRequested, OTPRejected:
			return AwaitingOTP, nil
		case OTPAccepted:
			return UserType, nil
		}
	case UserType:
		if e == UserTypeChosen {
			return Identity, nil
		}
	case Identity:
		if e == IdentityVerified {
			return KYCAadhaar, nil
		}
	case KYCAadhaar:
		if e == AadhaarOTPRequested {
			return KYCOTP, nil
		}
	case KYCOTP:
		switch e {
		case AadhaarOTPRequested, AadhaarRejected:
			return KYCOTP, nil
		case AadhaarAccepted:
			return Dashboard, nil
		}
	case Dashboard:
	default:
		return s, fmt.Errorf("%w: unknown state %v", ErrInvalidTransition, s)
	}
	return s, fmt.Errorf("%w: %v on %v", ErrInvalidTransition, e, s)
}
