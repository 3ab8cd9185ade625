// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

package keeloq

// Key is a 64-bit KeeLoq key split into two 32-bit halves
type Key struct {
	High uint32
	Low  uint32
}

// keyBit returns bit n (0-63) of the key
func (k Key) keyBit(n uint) uint32 {
	if n < 32 {
		return BitRead(k.Low, n)
	}
	return BitRead(k.High, n-32)
}

// Encrypt encrypts a 32-bit block with this key
func (k Key) Encrypt(plaintext uint32) uint32 {
	return Encrypt(plaintext, k.High, k.Low)
}

// Decrypt decrypts a 32-bit block with this key
func (k Key) Decrypt(ciphertext uint32) uint32 {
	return Decrypt(ciphertext, k.High, k.Low)
}

// Encrypt runs the 528-round KeeLoq NLFSR over x.
func Encrypt(x, keyHigh, keyLow uint32) uint32 {
	k := Key{High: keyHigh, Low: keyLow}
	for r := uint(0); r < Rounds; r++ {
		index := BitRead(x, 1) |
			BitRead(x, 9)<<1 |
			BitRead(x, 20)<<2 |
			BitRead(x, 26)<<3 |
			BitRead(x, 31)<<4
		bit := BitRead(x, 0) ^ BitRead(x, 16) ^ BitRead(NLF, uint(index)) ^ k.keyBit(r&63)
		x = (x >> 1) | bit<<31
	}
	return x
}

// Decrypt runs the KeeLoq rounds backwards and is the exact inverse of Encrypt.
// The key schedule starts at bit 15 because the last encrypt round (527) used
// key bit 527 mod 64 = 15.
func Decrypt(x, keyHigh, keyLow uint32) uint32 {
	k := Key{High: keyHigh, Low: keyLow}
	for r := uint(0); r < Rounds; r++ {
		index := BitRead(x, 0) |
			BitRead(x, 8)<<1 |
			BitRead(x, 19)<<2 |
			BitRead(x, 25)<<3 |
			BitRead(x, 30)<<4
		bit := BitRead(x, 31) ^ BitRead(x, 15) ^ BitRead(NLF, uint(index)) ^ k.keyBit((15-r)&63)
		x = (x << 1) | bit
	}
	return x
}
