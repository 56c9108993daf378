package errs

// Retryable reports whether an HTTP status code indicates a transient failure
// worth retrying. 4xx client errors are terminal except request timeouts and
// rate limits; 5xx are transient.
func Retryable(statusCode int) bool {
	switch {
	case statusCode == 408 || statusCode == 429:
		return true
	case statusCode >= 500 && statusCode < 600:
		return true
	default:
		return false
	}
}

// FromStatus maps an HTTP status code to an error kind: 401/403 are auth
// failures, 400/422 are validation, everything else is connectivity.
func FromStatus(statusCode int) Kind {
	switch statusCode {
	case 401, 403:
		return KindAuth
	case 400, 422:
		return KindValidation
	default:
		return KindConnectivity
	}
}
