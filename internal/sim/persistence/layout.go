// Copyright (c) 2026 Ethan Gardner. All rights reserved.
// This software may be modified and distributed under the terms
// of the BSD-3 Clause License. See the LICENSE file for details.

package persistence

import (
	"github.com/emgardner/keller-xline/internal/sim/model"
)

const (
	sizeCoefficients   = model.NumCoefficients * 4
	sizeConfigurations = model.NumConfigurations
	sizeSerial         = 4
	sizeAddress        = 1
	totalSize          = sizeCoefficients + sizeConfigurations + sizeSerial + sizeAddress

	offsetCoefficients   = 0
	offsetConfigurations = offsetCoefficients + sizeCoefficients
	offsetSerial         = offsetConfigurations + sizeConfigurations
	offsetAddress        = offsetSerial + sizeSerial
)

// mapBytesToModel constructs a Memory backed by the provided data slice.
// The regions alias the slice, so writes through the model land directly
// in the file or memory map behind it.
func mapBytesToModel(data []byte) *model.Memory {
	m := &model.Memory{}
	m.Coefficients = data[offsetCoefficients : offsetCoefficients+sizeCoefficients]
	m.Configurations = data[offsetConfigurations : offsetConfigurations+sizeConfigurations]
	m.Serial = data[offsetSerial : offsetSerial+sizeSerial]
	m.Address = data[offsetAddress : offsetAddress+sizeAddress]
	return m
}
