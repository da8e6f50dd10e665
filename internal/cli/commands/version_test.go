package commands

import (
	"bytes"
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewVersionCommand(t *testing.T) {
	tests := []struct {
		name string
		info BuildInfo
		want string
	}{
		{
			name: "release build",
			info: BuildInfo{Version: "1.2.3", GitCommit: "4f2a9c1", BuildDate: "2026-10-01T12:00:00Z"},
			want: "pqdeps v1.2.3\n  commit: 4f2a9c1\n  built:  2026-10-01T12:00:00Z\n",
		},
		{
			name: "local build without metadata",
			info: BuildInfo{Version: "dev"},
			want: "pqdeps vdev\n  commit: unknown\n  built:  unknown\n",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cmd := NewVersionCommand(tt.info)
			buf := new(bytes.Buffer)
			cmd.SetOut(buf)
			cmd.SetArgs([]string{})

			require.NoError(t, cmd.Execute())
			assert.Equal(t, tt.want+"  go:     "+runtime.Version()+" "+runtime.GOOS+"/"+runtime.GOARCH+"\n", buf.String())
		})
	}
}
