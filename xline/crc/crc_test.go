// Copyright (c) 2026 Ethan Gardner. All rights reserved.
// This software may be modified and distributed under the terms
// of the BSD-3 Clause License. See the LICENSE file for details.

package crc

import "testing"

func TestCRC(t *testing.T) {
	var crc CRC
	crc.Reset()
	crc.PushBytes([]byte{0x02, 0x07})

	if crc.Value() != 0x1241 {
		t.Fatalf("crc expected %v, actual %v", 0x1241, crc.Value())
	}
}

func TestChecksum(t *testing.T) {
	tests := []struct {
		name string
		data []byte
		want uint16
	}{
		{"Empty", nil, 0xFFFF},
		{"SingleZero", []byte{0x00}, 0x40BF},
		{"TwoBytes", []byte{0x02, 0x07}, 0x1241},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Checksum(tt.data); got != tt.want {
				t.Errorf("Checksum(% X) = %04X, want %04X", tt.data, got, tt.want)
			}
		})
	}
}

func TestChecksumMatchesIncremental(t *testing.T) {
	data := []byte{250, 30, 64, 0x3F, 0x80, 0x00, 0x00}

	var crc CRC
	crc.Reset()
	crc.PushBytes(data[:3])
	crc.PushBytes(data[3:])

	if got := Checksum(data); got != crc.Value() {
		t.Errorf("one-shot %04X differs from incremental %04X", got, crc.Value())
	}
}
