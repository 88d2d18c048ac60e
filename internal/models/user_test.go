package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseRole(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    Role
		wantErr bool
	}{
		{name: "admin", input: "Admin", want: RoleAdmin},
		{name: "pro", input: "Pro", want: RolePro},
		{name: "user", input: "User", want: RoleUser},
		{name: "lower case is rejected", input: "admin", wantErr: true},
		{name: "empty", input: "", wantErr: true},
		{name: "unknown", input: "Owner", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseRole(tt.input)
			if tt.wantErr {
				require.Error(t, err)
				assert.False(t, Role(tt.input).Valid())
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestRoles_AllValid(t *testing.T) {
	for _, r := range Roles() {
		assert.True(t, r.Valid(), r.String())
	}
	assert.Len(t, Roles(), 3)
}
