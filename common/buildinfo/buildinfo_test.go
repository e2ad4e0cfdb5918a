package buildinfo

import (
	"runtime/debug"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestResolve(t *testing.T) {
	tests := []struct {
		name   string
		linked string
		info   *debug.BuildInfo
		want   string
	}{
		{name: "linked version wins", linked: "1.4.0", info: &debug.BuildInfo{Main: debug.Module{Version: "v0.9.0"}}, want: "1.4.0"},
		{name: "no build info", want: "dev"},
		{name: "module version", info: &debug.BuildInfo{Main: debug.Module{Version: "v0.9.0"}}, want: "v0.9.0"},
		{
			name: "vcs revision",
			info: &debug.BuildInfo{
				Main: debug.Module{Version: "(devel)"},
				Settings: []debug.BuildSetting{
					{Key: "vcs.revision", Value: "0123456789abcdef0123"},
					{Key: "vcs.modified", Value: "true"},
				},
			},
			want: "0123456789ab-dirty",
		},
		{name: "devel without vcs", info: &debug.BuildInfo{Main: debug.Module{Version: "(devel)"}}, want: "dev"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, resolve(tt.linked, tt.info))
		})
	}
}

func TestCurrent_NeverEmpty(t *testing.T) {
	assert.NotEmpty(t, Current())
}
