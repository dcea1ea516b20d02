package fs

import (
	"os"
	"path/filepath"

	"go.uber.org/fx"
)

//go:generate mockgen -destination=fsmock/fs_mock.go -package=fsmock . StackFS

// Module is the Fx module for this package.
var Module = fx.Provide(New)

// StackFS wraps the filesystem operations used by the proxy.
type StackFS interface {
	MkdirAll(path string) error
	Glob(pattern string) ([]string, error)
	DirExists(path string) (bool, error)
	FileExists(path string) (bool, error)
	ReadFile(name string) ([]byte, error)
	WriteFile(name string, data []byte) error
	Create(name string) (*os.File, error)
	Remove(name string) error
}

type fsImpl struct{}

// New creates a new StackFS.
func New() StackFS {
	return fsImpl{}
}

// MkdirAll creates a directory and all its parents.
func (fsImpl) MkdirAll(path string) error { return os.MkdirAll(path, os.ModePerm) }

// Glob returns the names of all files matching pattern.
func (fsImpl) Glob(pattern string) ([]string, error) {
	return filepath.Glob(pattern)
}

func (fsImpl) DirExists(path string) (bool, error) {
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, err
	}
	return info.IsDir(), nil
}

func (fsImpl) FileExists(path string) (bool, error) {
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, err
	}
	return !info.IsDir(), nil
}

func (fsImpl) ReadFile(name string) ([]byte, error) {
	return os.ReadFile(name)
}

func (fsImpl) WriteFile(name string, data []byte) error {
	return os.WriteFile(name, data, 0644)
}

func (fsImpl) Create(name string) (*os.File, error) {
	return os.Create(name)
}

func (fsImpl) Remove(name string) error {
	return os.Remove(name)
}
