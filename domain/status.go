package domain

// Status is the outcome of a span, following the usual tracing status set.
type Status uint8

const (
	StatusUnset Status = iota
	StatusOK
	StatusCancelled
	StatusUnknown
	StatusInvalidArgument
	StatusDeadlineExceeded
	StatusNotFound
	StatusAlreadyExists
	StatusPermissionDenied
	StatusResourceExhausted
	StatusFailedPrecondition
	StatusAborted
	StatusOutOfRange
	StatusUnimplemented
	StatusInternalError
	StatusUnavailable
	StatusDataLoss
	StatusUnauthenticated
)

var statusNames = map[Status]string{
	StatusUnset:              "unset",
	StatusOK:                 "ok",
	StatusCancelled:          "cancelled",
	StatusUnknown:            "unknown_error",
	StatusInvalidArgument:    "invalid_argument",
	StatusDeadlineExceeded:   "deadline_exceeded",
	StatusNotFound:           "not_found",
	StatusAlreadyExists:      "already_exists",
	StatusPermissionDenied:   "permission_denied",
	StatusResourceExhausted:  "resource_exhausted",
	StatusFailedPrecondition: "failed_precondition",
	StatusAborted:            "aborted",
	StatusOutOfRange:         "out_of_range",
	StatusUnimplemented:      "unimplemented",
	StatusInternalError:      "internal_error",
	StatusUnavailable:        "unavailable",
	StatusDataLoss:           "data_loss",
	StatusUnauthenticated:    "unauthenticated",
}

func (s Status) String() string {
	if name, ok := statusNames[s]; ok {
		return name
	}
	return statusNames[StatusUnknown]
}

// StatusFromHTTPStatus maps an HTTP response code onto a span Status.
func StatusFromHTTPStatus(code int) Status {
	switch {
	case code >= 100 && code < 400:
		return StatusOK
	case code == 400:
		return StatusInvalidArgument
	case code == 401:
		return StatusUnauthenticated
	case code == 403:
		return StatusPermissionDenied
	case code == 404:
		return StatusNotFound
	case code == 409:
		return StatusAlreadyExists
	case code == 429:
		return StatusResourceExhausted
	case code == 499:
		return StatusCancelled
	case code == 500:
		return StatusInternalError
	case code == 501:
		return StatusUnimplemented
	case code == 503:
		return StatusUnavailable
	case code == 504:
		return StatusDeadlineExceeded
	default:
		return StatusUnknown
	}
}
