// Package fsx abstracts file storage so services never depend on a
// concrete backend.
package fsx

import "context"

// FileReader reads previously stored files
type FileReader interface {
	ReadFile(ctx context.Context, path string) ([]byte, error)
}

// FileWriter stores files under a path and returns nothing but an error
type FileWriter interface {
	WriteFile(ctx context.Context, path string, data []byte, contentType string) error
}

// FileSystem combines read, write and delete over one backend
type FileSystem interface {
	FileReader
	FileWriter
	DeleteFile(ctx context.Context, path string) error
}
