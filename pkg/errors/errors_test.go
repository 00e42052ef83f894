package errors

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestExitCode(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want int
	}{
		{"nil", nil, ExitOK},
		{"usage sentinel", ErrUsage, ExitUsage},
		{"wrapped input", fmt.Errorf("reading a.txt: %w", ErrInputFile), ExitBadInput},
		{"app error wins", New(ErrInputFile, ExitUsage, "odd"), ExitUsage},
		{"unknown", errors.New("boom"), ExitFailure},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			require.Equal(t, tc.want, ExitCode(tc.err))
		})
	}
}

func TestAppErrorUnwrap(t *testing.T) {
	err := Newf(ErrCorruptState, ExitFailure, "bad magic %x", 0x1234)
	require.ErrorIs(t, err, ErrCorruptState)
	require.Equal(t, "corrupt snapshot state: bad magic 1234", err.Error())
}
