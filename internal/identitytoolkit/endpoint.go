package identitytoolkit

import (
	"net/url"
	"strings"
)

// Endpoint is a relyingparty operation name.
type Endpoint string

const (
	EndpointVerifyPassword   Endpoint = "verifyPassword"
	EndpointSignupNewUser    Endpoint = "signupNewUser"
	EndpointSetAccountInfo   Endpoint = "setAccountInfo"
	EndpointGetOobCode       Endpoint = "getOobConfirmationCode"
	EndpointResetPassword    Endpoint = "resetPassword"
	EndpointDeleteAccount    Endpoint = "deleteAccount"
	EndpointGetAccountInfo   Endpoint = "getAccountInfo"
	EndpointCreateAuthURI    Endpoint = "createAuthUri"
	EndpointVerifyAssertion  Endpoint = "verifyAssertion"
	endpointSecureTokenGrant Endpoint = "token"
)

// RequestEnvelope is one REST unit of work. It is built per call and
// never retained.
type RequestEnvelope struct {
	Endpoint Endpoint
	APIKey   string
	Body     any
}

// URL joins base and the endpoint and appends the key parameter.
// The secure-token endpoint is addressed directly by base.
func (e RequestEnvelope) URL(base string) string {
	target := base
	if e.Endpoint != endpointSecureTokenGrant {
		if !strings.HasSuffix(target, "/") {
			target += "/"
		}
		target += string(e.Endpoint)
	}

	sep := "?"
	if strings.Contains(target, "?") {
		sep = "&"
	}
	return target + sep + "key=" + url.QueryEscape(e.APIKey)
}
