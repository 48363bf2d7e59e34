package wire

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"math"

	"github.com/go-gl/mathgl/mgl32"
)

const (
	// MaxStringLen bounds decoded strings.
	MaxStringLen = 32767
	// MaxArrayLen bounds decoded element arrays.
	MaxArrayLen = 1 << 22
)

var (
	ErrVarIntTooLong  = errors.New("wire: varint too long")
	ErrVarLongTooLong = errors.New("wire: varlong too long")
	ErrLength         = errors.New("wire: length out of range")
)

func ReadVarInt(r io.Reader) (int32, int, error) {
	var result uint32
	var numRead int
	var buf [1]byte

	for {
		if _, err := io.ReadFull(r, buf[:]); err != nil {
			return 0, numRead, err
		}
		numRead++

		result |= uint32(buf[0]&0x7F) << (7 * (numRead - 1))

		if buf[0]&0x80 == 0 {
			break
		}
		if numRead >= 5 {
			return 0, numRead, ErrVarIntTooLong
		}
	}

	return int32(result), numRead, nil
}

func WriteVarInt(w io.Writer, value int32) (int, error) {
	var buf [5]byte
	n := PutVarInt(buf[:], value)
	return w.Write(buf[:n])
}

// PutVarInt encodes value into buf, which must hold at least five bytes.
func PutVarInt(buf []byte, value int32) int {
	val := uint32(value)
	n := 0
	for {
		b := byte(val & 0x7F)
		val >>= 7
		if val != 0 {
			b |= 0x80
		}
		buf[n] = b
		n++
		if val == 0 {
			return n
		}
	}
}

func VarIntSize(value int32) int {
	val := uint32(value)
	size := 1
	for val >>= 7; val != 0; val >>= 7 {
		size++
	}
	return size
}

func ReadVarLong(r io.Reader) (int64, int, error) {
	var result uint64
	var numRead int
	var buf [1]byte

	for {
		if _, err := io.ReadFull(r, buf[:]); err != nil {
			return 0, numRead, err
		}
		numRead++

		result |= uint64(buf[0]&0x7F) << (7 * (numRead - 1))

		if buf[0]&0x80 == 0 {
			break
		}
		if numRead >= 10 {
			return 0, numRead, ErrVarLongTooLong
		}
	}

	return int64(result), numRead, nil
}

func WriteVarLong(w io.Writer, value int64) (int, error) {
	var buf [10]byte
	val := uint64(value)
	n := 0
	for {
		b := byte(val & 0x7F)
		val >>= 7
		if val != 0 {
			b |= 0x80
		}
		buf[n] = b
		n++
		if val == 0 {
			break
		}
	}
	return w.Write(buf[:n])
}

// readLen reads a varint length prefix and checks it against limit.
func readLen(r io.Reader, limit int) (int, error) {
	n, _, err := ReadVarInt(r)
	if err != nil {
		return 0, err
	}
	if n < 0 || int(n) > limit {
		return 0, fmt.Errorf("%w: %d", ErrLength, n)
	}
	return int(n), nil
}

func ReadString(r io.Reader) (string, error) {
	n, err := readLen(r, MaxStringLen*4)
	if err != nil {
		return "", fmt.Errorf("read string length: %w", err)
	}
	buf := make([]byte, n)
	if _, err := io.ReadFull(r, buf); err != nil {
		return "", fmt.Errorf("read string data: %w", err)
	}
	return string(buf), nil
}

func WriteString(w io.Writer, s string) (int, error) {
	n1, err := WriteVarInt(w, int32(len(s)))
	if err != nil {
		return n1, err
	}
	n2, err := io.WriteString(w, s)
	return n1 + n2, err
}

func ReadU8(r io.Reader) (uint8, error) {
	var buf [1]byte
	if _, err := io.ReadFull(r, buf[:]); err != nil {
		return 0, err
	}
	return buf[0], nil
}

func ReadBool(r io.Reader) (bool, error) {
	b, err := ReadU8(r)
	return b != 0, err
}

func ReadU32(r io.Reader) (uint32, error) {
	var buf [4]byte
	if _, err := io.ReadFull(r, buf[:]); err != nil {
		return 0, err
	}
	return binary.BigEndian.Uint32(buf[:]), nil
}

func ReadI32(r io.Reader) (int32, error) {
	v, err := ReadU32(r)
	return int32(v), err
}

func ReadF32(r io.Reader) (float32, error) {
	v, err := ReadU32(r)
	return math.Float32frombits(v), err
}

func WriteU32(w io.Writer, v uint32) error {
	var buf [4]byte
	binary.BigEndian.PutUint32(buf[:], v)
	_, err := w.Write(buf[:])
	return err
}

func WriteF32(w io.Writer, v float32) error {
	return WriteU32(w, math.Float32bits(v))
}

// writeFloats writes each component as a big-endian float32.
func writeFloats(w io.Writer, vs ...float32) error {
	for _, v := range vs {
		if err := WriteF32(w, v); err != nil {
			return err
		}
	}
	return nil
}

func readFloats(r io.Reader, dst []float32) error {
	for i := range dst {
		v, err := ReadF32(r)
		if err != nil {
			return err
		}
		dst[i] = v
	}
	return nil
}

func ReadVec3(r io.Reader) (mgl32.Vec3, error) {
	var v mgl32.Vec3
	err := readFloats(r, v[:])
	return v, err
}

func WriteVec3(w io.Writer, v mgl32.Vec3) error {
	return writeFloats(w, v[:]...)
}

func ReadVec4(r io.Reader) (mgl32.Vec4, error) {
	var v mgl32.Vec4
	err := readFloats(r, v[:])
	return v, err
}

func WriteVec4(w io.Writer, v mgl32.Vec4) error {
	return writeFloats(w, v[:]...)
}

func ReadVec3s(r io.Reader) ([]mgl32.Vec3, error) {
	n, err := readLen(r, MaxArrayLen)
	if err != nil {
		return nil, fmt.Errorf("read vec3 array length: %w", err)
	}
	if n == 0 {
		return nil, nil
	}
	out := make([]mgl32.Vec3, n)
	for i := range out {
		if err := readFloats(r, out[i][:]); err != nil {
			return nil, fmt.Errorf("read vec3 %d: %w", i, err)
		}
	}
	return out, nil
}

func WriteVec3s(w io.Writer, vs []mgl32.Vec3) error {
	if _, err := WriteVarInt(w, int32(len(vs))); err != nil {
		return err
	}
	for _, v := range vs {
		if err := writeFloats(w, v[:]...); err != nil {
			return err
		}
	}
	return nil
}

func ReadVec2s(r io.Reader) ([]mgl32.Vec2, error) {
	n, err := readLen(r, MaxArrayLen)
	if err != nil {
		return nil, fmt.Errorf("read vec2 array length: %w", err)
	}
	if n == 0 {
		return nil, nil
	}
	out := make([]mgl32.Vec2, n)
	for i := range out {
		if err := readFloats(r, out[i][:]); err != nil {
			return nil, fmt.Errorf("read vec2 %d: %w", i, err)
		}
	}
	return out, nil
}

func WriteVec2s(w io.Writer, vs []mgl32.Vec2) error {
	if _, err := WriteVarInt(w, int32(len(vs))); err != nil {
		return err
	}
	for _, v := range vs {
		if err := writeFloats(w, v[:]...); err != nil {
			return err
		}
	}
	return nil
}

func ReadU32s(r io.Reader) ([]uint32, error) {
	n, err := readLen(r, MaxArrayLen)
	if err != nil {
		return nil, fmt.Errorf("read u32 array length: %w", err)
	}
	if n == 0 {
		return nil, nil
	}
	out := make([]uint32, n)
	for i := range out {
		if out[i], err = ReadU32(r); err != nil {
			return nil, fmt.Errorf("read u32 %d: %w", i, err)
		}
	}
	return out, nil
}

func WriteU32s(w io.Writer, vs []uint32) error {
	if _, err := WriteVarInt(w, int32(len(vs))); err != nil {
		return err
	}
	for _, v := range vs {
		if err := WriteU32(w, v); err != nil {
			return err
		}
	}
	return nil
}
