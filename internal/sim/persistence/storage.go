// Copyright (c) 2026 Ethan Gardner. All rights reserved.
// This software may be modified and distributed under the terms
// of the BSD-3 Clause License. See the LICENSE file for details.

package persistence

import (
	"github.com/emgardner/keller-xline/internal/sim/model"
)

// Storage defines the interface for persisting the simulated sensor memory.
type Storage interface {
	// Load loads the memory image from storage, creating a zeroed one if
	// none exists yet.
	Load() (*model.Memory, error)

	// Save saves the current memory image to storage.
	Save(m *model.Memory) error

	// OnWrite is a hook called whenever the device modifies its memory.
	// It allows the storage to perform real-time persistence.
	OnWrite()
}
