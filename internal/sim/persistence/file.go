// Copyright (c) 2026 Ethan Gardner. All rights reserved.
// This software may be modified and distributed under the terms
// of the BSD-3 Clause License. See the LICENSE file for details.

package persistence

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/emgardner/keller-xline/internal/sim/model"
)

// FileStorage persists the memory image in a plain file. The whole image
// is kept in RAM and written back on every modification.
type FileStorage struct {
	path string
	file *os.File
	data []byte
	m    *model.Memory
}

// NewFileStorage creates a new FileStorage.
func NewFileStorage(path string) *FileStorage {
	return &FileStorage{
		path: path,
	}
}

// Load reads the backing file, creating and sizing it if necessary.
func (fs *FileStorage) Load() (*model.Memory, error) {
	f, err := os.OpenFile(fs.path, os.O_RDWR|os.O_CREATE, 0644)
	if err != nil {
		return nil, fmt.Errorf("failed to open file: %w", err)
	}
	fs.file = f

	fi, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, err
	}
	if fi.Size() != int64(totalSize) {
		if err := f.Truncate(int64(totalSize)); err != nil {
			f.Close()
			return nil, fmt.Errorf("failed to resize file: %w", err)
		}
	}

	fs.data = make([]byte, totalSize)
	if _, err := f.ReadAt(fs.data, 0); err != nil {
		f.Close()
		return nil, fmt.Errorf("failed to read file: %w", err)
	}

	fs.m = mapBytesToModel(fs.data)
	return fs.m, nil
}

// Save writes the whole image back to the file.
func (fs *FileStorage) Save(m *model.Memory) error {
	if fs.file == nil {
		return fmt.Errorf("file storage not loaded")
	}
	if _, err := fs.file.WriteAt(fs.data, 0); err != nil {
		return fmt.Errorf("failed to write file: %w", err)
	}
	return fs.file.Sync()
}

// OnWrite writes through on every modification.
func (fs *FileStorage) OnWrite() {
	if err := fs.Save(fs.m); err != nil {
		slog.Error("Failed to persist sensor memory", "err", err)
	}
}

// Close closes the backing file.
func (fs *FileStorage) Close() error {
	if fs.file != nil {
		err := fs.file.Close()
		fs.file = nil
		return err
	}
	return nil
}
