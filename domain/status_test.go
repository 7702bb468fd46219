package domain

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestStatusFromHTTPStatus(t *testing.T) {
	cases := []struct {
		code     int
		expected Status
	}{
		{100, StatusOK},
		{200, StatusOK},
		{302, StatusOK},
		{399, StatusOK},
		{400, StatusInvalidArgument},
		{401, StatusUnauthenticated},
		{403, StatusPermissionDenied},
		{404, StatusNotFound},
		{409, StatusAlreadyExists},
		{418, StatusUnknown},
		{429, StatusResourceExhausted},
		{499, StatusCancelled},
		{500, StatusInternalError},
		{501, StatusUnimplemented},
		{502, StatusUnknown},
		{503, StatusUnavailable},
		{504, StatusDeadlineExceeded},
		{0, StatusUnknown},
		{99, StatusUnknown},
	}

	for _, tc := range cases {
		t.Run("", func(t *testing.T) {
			require.Equal(t, tc.expected, StatusFromHTTPStatus(tc.code))
		})
	}
}

func TestStatusString(t *testing.T) {
	require.Equal(t, "unset", StatusUnset.String())
	require.Equal(t, "ok", StatusOK.String())
	require.Equal(t, "internal_error", StatusInternalError.String())
	require.Equal(t, "unknown_error", Status(200).String())
}
