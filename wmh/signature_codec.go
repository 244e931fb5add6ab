package wmh

import (
	"encoding/binary"
	"errors"
	"math"
)

// signatureHeaderSize is the width of the length header: a single u32 slot
// count, little-endian, written as a fixed-width prefix before the body.
const signatureHeaderSize = 4

// MarshalBinary implements encoding.BinaryMarshaler. Layout: a 4-byte
// little-endian slot count followed by len(s) little-endian u64 values.
func (s Signature) MarshalBinary() ([]byte, error) {
	data := make([]byte, signatureHeaderSize+len(s)*8)
	binary.LittleEndian.PutUint32(data[0:], uint32(len(s)))
	for i, id := range s {
		off := signatureHeaderSize + i*8
		binary.LittleEndian.PutUint64(data[off:], id)
	}
	return data, nil
}

// UnmarshalBinary implements encoding.BinaryUnmarshaler.
func (s *Signature) UnmarshalBinary(data []byte) error {
	if len(data) < signatureHeaderSize {
		return errors.New("wmh: signature data too short")
	}
	n := int(binary.LittleEndian.Uint32(data[0:]))
	expected := signatureHeaderSize + n*8
	if len(data) != expected {
		return errors.New("wmh: signature data size mismatch")
	}
	out := make(Signature, n)
	for i := range out {
		off := signatureHeaderSize + i*8
		out[i] = binary.LittleEndian.Uint64(data[off:])
	}
	*s = out
	return nil
}

// MarshalBinary implements encoding.BinaryMarshaler for the ERS signature
// shape. Layout: 4-byte slot count, then len(r) * (8-byte id + 8-byte
// float64 rank bits), all little-endian.
func (r RankedSignature) MarshalBinary() ([]byte, error) {
	data := make([]byte, signatureHeaderSize+len(r)*16)
	binary.LittleEndian.PutUint32(data[0:], uint32(len(r)))
	for i, slot := range r {
		off := signatureHeaderSize + i*16
		binary.LittleEndian.PutUint64(data[off:], slot.ID)
		binary.LittleEndian.PutUint64(data[off+8:], math.Float64bits(slot.Rank))
	}
	return data, nil
}

// UnmarshalBinary implements encoding.BinaryUnmarshaler for RankedSignature.
func (r *RankedSignature) UnmarshalBinary(data []byte) error {
	if len(data) < signatureHeaderSize {
		return errors.New("wmh: ranked signature data too short")
	}
	n := int(binary.LittleEndian.Uint32(data[0:]))
	expected := signatureHeaderSize + n*16
	if len(data) != expected {
		return errors.New("wmh: ranked signature data size mismatch")
	}
	out := make(RankedSignature, n)
	for i := range out {
		off := signatureHeaderSize + i*16
		out[i] = RankedSlot{
			ID:   binary.LittleEndian.Uint64(data[off:]),
			Rank: math.Float64frombits(binary.LittleEndian.Uint64(data[off+8:])),
		}
	}
	*r = out
	return nil
}
