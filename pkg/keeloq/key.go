// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

package keeloq

// ManufacturerKey is the vendor-wide secret every device key is derived from.
// High is configured as "MSB", Low as "LSB".
type ManufacturerKey = Key

// DeriveDeviceKey computes the per-device key from its serial using the
// normal (non-seeded) manufacturer learning scheme: both halves are the
// decryption of the serial tagged with a fixed pattern in the top nibble.
func DeriveDeviceKey(serial uint32, mk ManufacturerKey) Key {
	return Key{
		High: mk.Decrypt(serial | seedHighMask),
		Low:  mk.Decrypt(serial | seedLowMask),
	}
}
