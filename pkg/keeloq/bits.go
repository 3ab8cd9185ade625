// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

package keeloq

// BitRead returns bit n of value as 0 or 1
func BitRead(value uint32, n uint) uint32 {
	return (value >> n) & 0x01
}

// BitSet returns value with bit n forced to 1
func BitSet(value uint32, n uint) uint32 {
	return value | (1 << n)
}
