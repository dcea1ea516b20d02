// Package entity contains the domain logic for the stackide-proxy service.
package entity

import (
	"path/filepath"

	"github.com/gofrs/uuid"
)

// ProjectKey identifies a monitored project. Editors use their window id.
type ProjectKey string

// Project is a project currently of interest to a connected editor.
type Project struct {
	Key     ProjectKey `json:"key" zap:"key"`
	Folders []string   `json:"folders" zap:"folders"`
	// Owner is the editor connection that registered the project.
	Owner uuid.UUID `json:"-" zap:"-"`
}

// Root returns the folder a worker is started in, or "" if the project has no folders.
// Only one worker runs per project, on its first folder.
func (p *Project) Root() string {
	if p == nil || len(p.Folders) == 0 {
		return ""
	}
	return p.Folders[0]
}

// Name returns the base name of the project root, which the worker uses as its target name.
func (p *Project) Name() string {
	root := p.Root()
	if root == "" {
		return ""
	}
	return filepath.Base(filepath.Clean(root))
}

// InstanceStatus is a point-in-time view of a tracked worker instance.
type InstanceStatus struct {
	Key     ProjectKey `json:"key"`
	Alive   bool       `json:"alive"`
	Active  bool       `json:"active"`
	Reason  string     `json:"reason,omitempty"`
	Pending int        `json:"pending"`
}
