package gateway

import (
	"encoding/xml"
	"net/http"

	"github.com/driftbase/driftbase/pkg/apierr"
)

// errorEnvelope is the minimal S3 XML error body: root <Error> with
// Code/Message/Resource/Region, sufficient to satisfy the error
// envelope contract without the full S3 request/response XML grammar.
type errorEnvelope struct {
	XMLName  xml.Name `xml:"Error"`
	Code     string   `xml:"Code"`
	Message  string   `xml:"Message"`
	Resource string   `xml:"Resource"`
	Region   string   `xml:"Region"`
}

// statusAndCode maps an apierr.Kind to the HTTP status and S3 error
// Code the gateway reports for it.
func statusAndCode(kind apierr.Kind) (int, string) {
	switch kind {
	case apierr.NotFound:
		return http.StatusNotFound, "NoSuchKey"
	case apierr.BadRequest:
		return http.StatusBadRequest, "InvalidRequest"
	case apierr.AuthorizationMalformed:
		return http.StatusBadRequest, "AuthorizationHeaderMalformed"
	case apierr.PreconditionFailed:
		return http.StatusPreconditionFailed, "PreconditionFailed"
	case apierr.RangeNotSatisfiable:
		return http.StatusRequestedRangeNotSatisfiable, "InvalidRange"
	case apierr.NotImplemented:
		return http.StatusNotImplemented, "NotImplemented"
	default:
		return http.StatusInternalServerError, "InternalError"
	}
}

// writeError renders err as the XML error envelope and sets the
// matching HTTP status.
func writeError(w http.ResponseWriter, region, resource string, err error) {
	kind := apierr.KindOf(err)
	status, code := statusAndCode(kind)

	env := errorEnvelope{
		Code:     code,
		Message:  err.Error(),
		Resource: resource,
		Region:   region,
	}

	w.Header().Set("Content-Type", "application/xml")
	w.WriteHeader(status)
	_ = xml.NewEncoder(w).Encode(env)
}
