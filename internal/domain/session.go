package domain

import (
	"fmt"
	"time"
)

// UserType is the occupation declared during onboarding.
type UserType string

const (
	UserTypeSalaried UserType = "salaried"
	UserTypeBusiness UserType = "business"
)

// ParseUserType rejects anything outside the closed set of user types.
func ParseUserType(s string) (UserType, error) {
	switch ut := UserType(s); ut {
	case UserTypeSalaried, UserTypeBusiness:
		return ut, nil
	}
	return "", fmt.Errorf("unknown user type %q", s)
}

// UnmarshalText accepts the empty value so an unset field survives a round trip.
func (u *UserType) UnmarshalText(b []byte) error {
	if len(b) == 0 {
		*u = ""
		return nil
	}
	ut, err := ParseUserType(string(b))
	if err != nil {
		return err
	}
	*u = ut
	return nil
}

// IdentityType is the document used to prove identity.
type IdentityType string

const (
	IdentityPAN IdentityType = "pan"
	IdentityGST IdentityType = "gst"
)

// ParseIdentityType rejects anything outside the closed set of identity types.
func ParseIdentityType(s string) (IdentityType, error) {
	switch it := IdentityType(s); it {
	case IdentityPAN, IdentityGST:
		return it, nil
	}
	return "", fmt.Errorf("unknown identity type %q", s)
}

// UnmarshalText accepts the empty value so an unset field survives a round trip.
func (i *IdentityType) UnmarshalText(b []byte) error {
	if len(b) == 0 {
		*i = ""
		return nil
	}
	it, err := ParseIdentityType(string(b))
	if err != nil {
		return err
	}
	*i = it
	return nil
}

// AuthSession is the single login record on the device.
type AuthSession struct {
	Phone           string    `json:"phone"`
	IsAuthenticated bool      `json:"isAuthenticated"`
	LoginAt         time.Time `json:"loginAt"`
}

// Profile accumulates onboarding progress. It is keyed to the device and
// outlives individual sessions.
type Profile struct {
	UserType         UserType     `json:"userType,omitempty"`
	IdentityType     IdentityType `json:"identityType,omitempty"`
	IdentityNumber   string       `json:"identityNumber,omitempty"`
	IdentityVerified bool         `json:"identityVerified"`
	AadhaarNumber    string       `json:"aadhaarNumber,omitempty"`
	AadhaarVerified  bool         `json:"aadhaarVerified"`
}

// OTPChallenge is transient staging for an outstanding code request.
// Phone is set for login challenges, Aadhaar for KYC challenges.
type OTPChallenge struct {
	Phone    string    `json:"phone,omitempty"`
	Aadhaar  string    `json:"aadhaar,omitempty"`
	SentAt   time.Time `json:"sentAt"`
	Attempts int       `json:"attempts"`
}
