package errors

import "testing"

func TestIsRetryableStatusCode(t *testing.T) {
	retryable := []int{0, 429, 500, 502, 503, 504}
	for _, code := range retryable {
		if !IsRetryableStatusCode(code) {
			t.Errorf("expected %d to be retryable", code)
		}
	}

	permanent := []int{200, 301, 400, 401, 403, 404, 418, 501}
	for _, code := range permanent {
		if IsRetryableStatusCode(code) {
			t.Errorf("expected %d to be permanent", code)
		}
	}
}

func TestTypeForStatusCode(t *testing.T) {
	tests := []struct {
		code     int
		expected ErrorType
	}{
		{0, ErrorTypeNetwork},
		{429, ErrorTypeRateLimit},
		{500, ErrorTypeServerError},
		{502, ErrorTypeServerError},
		{503, ErrorTypeServerError},
		{504, ErrorTypeServerError},
		{401, ErrorTypeAuth},
		{403, ErrorTypeAuth},
		{404, ErrorTypeNotFound},
		{400, ErrorTypeUnknown},
	}

	for _, test := range tests {
		if got := TypeForStatusCode(test.code); got != test.expected {
			t.Errorf("code %d: expected %s, got %s", test.code, test.expected, got)
		}
	}
}

func TestErrorString(t *testing.T) {
	err := &Error{Type: ErrorTypeServerError, Message: "unavailable", Code: 503}
	expected := "server_error error (code 503): unavailable"
	if err.Error() != expected {
		t.Errorf("expected %q, got %q", expected, err.Error())
	}
}

func TestRetryabilityMatchesTaxonomy(t *testing.T) {
	if !IsRetryable(ErrorTypeNetwork) || !IsRetryable(ErrorTypeRateLimit) || !IsRetryable(ErrorTypeServerError) {
		t.Error("transient types must be retryable")
	}
	if IsRetryable(ErrorTypeNotFound) || IsRetryable(ErrorTypeParsing) || IsRetryable(ErrorTypeAuth) || IsRetryable(ErrorTypeConfig) {
		t.Error("permanent types must not be retryable")
	}
}
