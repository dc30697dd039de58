package env

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestCapture(t *testing.T) {
	t.Setenv("npm_lifecycle_event", "build")
	t.Setenv("WEBPARTS_LIFECYCLE", "")
	t.Setenv("HOST", "0.0.0.0")
	t.Setenv("PORT", "3000")

	e, err := Capture()
	require.NoError(t, err)
	require.Equal(t, Environment{LifecycleEvent: "build", Host: "0.0.0.0", Port: "3000"}, e)
	require.Equal(t, "build", e.Signal())
}

func TestCapture_NonNumericPort(t *testing.T) {
	t.Setenv("PORT", "http")

	e, err := Capture()
	require.NoError(t, err)
	require.Equal(t, "http", e.Port)
}

func TestPortNumber(t *testing.T) {
	tests := []struct {
		name    string
		port    string
		want    int
		wantErr bool
	}{
		{name: "unset", port: "", want: 0},
		{name: "number", port: "3000", want: 3000},
		{name: "not a number", port: "http", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Environment{Port: tt.port}.PortNumber()
			if tt.wantErr {
				require.ErrorContains(t, err, `invalid PORT "http"`)
				return
			}
			require.NoError(t, err)
			require.Equal(t, tt.want, got)
		})
	}
}

func TestSignal(t *testing.T) {
	tests := []struct {
		name string
		env  Environment
		want string
	}{
		{name: "unset", env: Environment{}, want: ""},
		{name: "lifecycle event", env: Environment{LifecycleEvent: "stats"}, want: "stats"},
		{name: "override wins", env: Environment{LifecycleEvent: "start", Lifecycle: "build"}, want: "build"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.want, tt.env.Signal())
		})
	}
}
