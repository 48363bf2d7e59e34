package wire

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"io"
	"sync"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/klauspost/compress/zstd"
)

const (
	// MaxFrameSize bounds a frame body, compressed or not.
	MaxFrameSize = 1 << 24

	// DefaultCompressThreshold is the body size from which frames are compressed.
	DefaultCompressThreshold = 1024

	flagZstd byte = 1 << 0
)

// Message is a value with a wire id, encoded through vx struct tags.
type Message interface {
	MessageID() int32
}

var (
	zstdOnce sync.Once
	zstdEnc  *zstd.Encoder
	zstdDec  *zstd.Decoder
	zstdErr  error
)

// codecs returns the shared zstd encoder and decoder. EncodeAll and DecodeAll
// are safe for concurrent use.
func codecs() (*zstd.Encoder, *zstd.Decoder, error) {
	zstdOnce.Do(func() {
		zstdEnc, zstdErr = zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedFastest))
		if zstdErr != nil {
			return
		}
		zstdDec, zstdErr = zstd.NewReader(nil, zstd.WithDecoderMaxMemory(MaxFrameSize))
	})
	return zstdEnc, zstdDec, zstdErr
}

// AppendFrame appends one frame to dst:
//
//	varint length | u8 flags | body
//
// where body is varint id followed by data. Bodies of at least threshold
// bytes are zstd compressed; a negative threshold disables compression.
func AppendFrame(dst []byte, id int32, data []byte, threshold int) ([]byte, error) {
	var head [5]byte
	n := PutVarInt(head[:], id)
	body := make([]byte, 0, n+len(data))
	body = append(body, head[:n]...)
	body = append(body, data...)

	flags := byte(0)
	if threshold >= 0 && len(body) >= threshold {
		enc, _, err := codecs()
		if err != nil {
			return dst, fmt.Errorf("init zstd: %w", err)
		}
		body = enc.EncodeAll(body, nil)
		flags |= flagZstd
	}
	if len(body)+1 > MaxFrameSize {
		return dst, fmt.Errorf("frame 0x%02X too large: %d bytes", id, len(body)+1)
	}

	n = PutVarInt(head[:], int32(len(body)+1))
	dst = append(dst, head[:n]...)
	dst = append(dst, flags)
	return append(dst, body...), nil
}

// WriteFrame writes one frame to w.
func WriteFrame(w io.Writer, id int32, data []byte, threshold int) error {
	buf, err := AppendFrame(nil, id, data, threshold)
	if err != nil {
		return err
	}
	if _, err := w.Write(buf); err != nil {
		return fmt.Errorf("flush frame: %w", err)
	}
	return nil
}

// ReadFrame reads one frame and returns its id and decompressed data.
func ReadFrame(r io.Reader) (id int32, data []byte, err error) {
	length, _, err := ReadVarInt(r)
	if err != nil {
		return 0, nil, fmt.Errorf("read frame length: %w", err)
	}
	if length < 2 {
		return 0, nil, fmt.Errorf("frame length too small: %d", length)
	}
	if length > MaxFrameSize {
		return 0, nil, fmt.Errorf("frame too large: %d bytes", length)
	}

	payload := make([]byte, length)
	if _, err := io.ReadFull(r, payload); err != nil {
		return 0, nil, fmt.Errorf("read frame payload: %w", err)
	}

	flags, body := payload[0], payload[1:]
	if flags&flagZstd != 0 {
		_, dec, err := codecs()
		if err != nil {
			return 0, nil, fmt.Errorf("init zstd: %w", err)
		}
		if body, err = dec.DecodeAll(body, nil); err != nil {
			return 0, nil, fmt.Errorf("decompress frame: %w", err)
		}
	}

	buf := bytes.NewReader(body)
	id, _, err = ReadVarInt(buf)
	if err != nil {
		return 0, nil, fmt.Errorf("read message id: %w", err)
	}
	return id, body[len(body)-buf.Len():], nil
}

// Encode marshals m into a single frame.
func Encode(m Message, threshold int) ([]byte, error) {
	data, err := Marshal(m)
	if err != nil {
		return nil, fmt.Errorf("marshal message 0x%02X: %w", m.MessageID(), err)
	}
	return AppendFrame(nil, m.MessageID(), data, threshold)
}

// WriteMessage marshals m and writes it as one frame.
func WriteMessage(w io.Writer, m Message, threshold int) error {
	buf, err := Encode(m, threshold)
	if err != nil {
		return err
	}
	if _, err := w.Write(buf); err != nil {
		return fmt.Errorf("flush message 0x%02X: %w", m.MessageID(), err)
	}
	return nil
}

// ReadMessage reads one frame and decodes it into the registered message type.
func ReadMessage(r io.Reader) (Message, error) {
	id, data, err := ReadFrame(r)
	if err != nil {
		return nil, err
	}
	m, err := New(id)
	if err != nil {
		return nil, err
	}
	if err := Unmarshal(data, m); err != nil {
		return nil, fmt.Errorf("decode message 0x%02X: %w", id, err)
	}
	return m, nil
}

// Decode parses a single frame held in b.
func Decode(b []byte) (Message, error) {
	return ReadMessage(bytes.NewReader(b))
}

func WriteField(w io.Writer, tag string, val any) error {
	switch tag {
	case "varint":
		_, err := WriteVarInt(w, val.(int32))
		return err
	case "varlong":
		_, err := WriteVarLong(w, val.(int64))
		return err
	case "u8":
		_, err := w.Write([]byte{val.(uint8)})
		return err
	case "bool":
		b := byte(0)
		if val.(bool) {
			b = 1
		}
		_, err := w.Write([]byte{b})
		return err
	case "i32":
		return binary.Write(w, binary.BigEndian, val.(int32))
	case "u32":
		return WriteU32(w, val.(uint32))
	case "f32":
		return WriteF32(w, val.(float32))
	case "string":
		_, err := WriteString(w, val.(string))
		return err
	case "vec3":
		return WriteVec3(w, val.(mgl32.Vec3))
	case "vec4":
		return WriteVec4(w, val.(mgl32.Vec4))
	case "vec3s":
		return WriteVec3s(w, val.([]mgl32.Vec3))
	case "vec2s":
		return WriteVec2s(w, val.([]mgl32.Vec2))
	case "u32s":
		return WriteU32s(w, val.([]uint32))
	default:
		return fmt.Errorf("unknown field tag: %q", tag)
	}
}

func ReadField(r io.Reader, tag string) (any, error) {
	switch tag {
	case "varint":
		v, _, err := ReadVarInt(r)
		return v, err
	case "varlong":
		v, _, err := ReadVarLong(r)
		return v, err
	case "u8":
		return ReadU8(r)
	case "bool":
		return ReadBool(r)
	case "i32":
		return ReadI32(r)
	case "u32":
		return ReadU32(r)
	case "f32":
		return ReadF32(r)
	case "string":
		return ReadString(r)
	case "vec3":
		return ReadVec3(r)
	case "vec4":
		return ReadVec4(r)
	case "vec3s":
		return ReadVec3s(r)
	case "vec2s":
		return ReadVec2s(r)
	case "u32s":
		return ReadU32s(r)
	default:
		return nil, fmt.Errorf("unknown field tag: %q", tag)
	}
}
