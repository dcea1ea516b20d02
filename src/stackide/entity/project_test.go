package entity

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestProjectRoot(t *testing.T) {
	tests := []struct {
		name     string
		project  *Project
		wantRoot string
		wantName string
	}{
		{
			name:     "nil project",
			project:  nil,
			wantRoot: "",
			wantName: "",
		},
		{
			name:     "no folders",
			project:  &Project{Key: "1"},
			wantRoot: "",
			wantName: "",
		},
		{
			name:     "first folder wins",
			project:  &Project{Key: "1", Folders: []string{"/home/user/helloworld", "/home/user/other"}},
			wantRoot: "/home/user/helloworld",
			wantName: "helloworld",
		},
		{
			name:     "trailing separator",
			project:  &Project{Key: "1", Folders: []string{"/home/user/helloworld/"}},
			wantRoot: "/home/user/helloworld/",
			wantName: "helloworld",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.wantRoot, tt.project.Root())
			assert.Equal(t, tt.wantName, tt.project.Name())
		})
	}
}
