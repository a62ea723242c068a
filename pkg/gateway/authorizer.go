package gateway

import "net/http"

// Authorizer resolves an inbound request to the key ID that
// authenticated it, or an apierr (AuthorizationMalformed, typically)
// if it does not. Full AWS SigV4 verification is out of scope; this
// seam lets a deployment plug in whatever credential scheme it needs.
type Authorizer interface {
	Authorize(r *http.Request) (keyID string, err error)
}

// AllowAll accepts every request with a fixed key ID, for local
// development and tests where authorization is not the point.
type AllowAll struct {
	KeyID string
}

// Authorize implements Authorizer.
func (a AllowAll) Authorize(r *http.Request) (string, error) {
	return a.KeyID, nil
}

var _ Authorizer = AllowAll{}
