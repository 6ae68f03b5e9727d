// Copyright (c) 2026 Ethan Gardner. All rights reserved.
// This software may be modified and distributed under the terms
// of the BSD-3 Clause License. See the LICENSE file for details.

package persistence

import "github.com/emgardner/keller-xline/internal/sim/model"

// MemoryStorage is a no-op storage (non-persistent).
type MemoryStorage struct{}

func NewMemoryStorage() *MemoryStorage {
	return &MemoryStorage{}
}

func (ms *MemoryStorage) Load() (*model.Memory, error) {
	return model.NewMemory(), nil
}

func (ms *MemoryStorage) Save(m *model.Memory) error {
	return nil
}

func (ms *MemoryStorage) OnWrite() {
	// No-op
}
