package config

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidateConfigPath(t *testing.T) {
	tests := []struct {
		name    string
		path    string
		wantErr bool
	}{
		{name: "empty", path: "", wantErr: true},
		{name: "too long", path: strings.Repeat("a", maxPathLen+1) + ".json", wantErr: true},
		{name: "relative json", path: "configs/app.json"},
		{name: "relative yaml", path: "app.yaml"},
		{name: "yml extension", path: "/etc/genericcache/app.yml"},
		{name: "escapes working directory", path: "../../etc/app.json", wantErr: true},
		{name: "wrong extension", path: "/etc/passwd", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := validateConfigPath(tt.path)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestValidateEnvVar(t *testing.T) {
	assert.NoError(t, validateEnvVar("K", ""))
	assert.NoError(t, validateEnvVar("K", "value"))
	assert.Error(t, validateEnvVar("K", "bad\x00value"))
	assert.Error(t, validateEnvVar("K", strings.Repeat("x", maxEnvVarLen+1)))
}
