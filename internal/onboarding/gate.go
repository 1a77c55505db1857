package onboarding

// Facts is the snapshot of durable state every gate is evaluated against.
type Facts struct {
	HasSession       bool
	LoginChallenge   bool
	UserTypeSet      bool
	IdentityVerified bool
	KYCChallenge     bool
	AadhaarVerified  bool
}

// Gate checks the entry precondition of target and returns either target or
// the single state the caller is redirected to.
func Gate(target State, f Facts) State {
	switch target {
	case LoggedOut:
		return LoggedOut
	case AwaitingOTP:
		if !f.LoginChallenge {
			return LoggedOut
		}
	case UserType:
		if !f.HasSession {
			return LoggedOut
		}
	case Identity:
		if !f.UserTypeSet {
			return UserType
		}
	case KYCAadhaar:
		if !f.IdentityVerified {
			return Identity
		}
	case KYCOTP:
		if !f.IdentityVerified {
			return Identity
		}
		if !f.KYCChallenge {
			return KYCAadhaar
		}
	case Dashboard:
		if !f.HasSession {
			return LoggedOut
		}
		if !f.AadhaarVerified {
			return KYCAadhaar
		}
	default:
		return LoggedOut
	}
	return target
}

// Settle follows Gate redirects until a state admits entry.
func Settle(target State, f Facts) State {
	for i := 0; i < len(States); i++ {
		next := Gate(target, f)
		if next == target {
			return target
		}
		target = next
	}
	return target
}

// Resolve derives where a returning caller belongs from durable facts alone.
func Resolve(f Facts) State {
	if !f.HasSession {
		if f.LoginChallenge {
			return AwaitingOTP
		}
		return LoggedOut
	}
	switch {
	case !f.UserTypeSet:
		return UserType
	case !f.IdentityVerified:
		return Identity
	case !f.AadhaarVerified:
		if f.KYCChallenge {
			return KYCOTP
		}
		return KYCAadhaar
	}
	return Dashboard
}
