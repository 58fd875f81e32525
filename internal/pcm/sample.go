package pcm

import (
	"fmt"
	"math"
)

// PutFloat32 writes v into b[0:4] as IEEE-754 bits in the given byte order.
func PutFloat32(b []byte, v float32, order ByteOrder) {
	order.binary().PutUint32(b, math.Float32bits(v))
}

// Float32 reads an IEEE-754 single from b[0:4].
func Float32(b []byte, order ByteOrder) float32 {
	return math.Float32frombits(order.binary().Uint32(b))
}

// PutInt32 writes v into b[0:4] in the given byte order.
func PutInt32(b []byte, v int32, order ByteOrder) {
	order.binary().PutUint32(b, uint32(v))
}

// Int32 reads a signed 32-bit sample from b[0:4].
func Int32(b []byte, order ByteOrder) int32 {
	return int32(order.binary().Uint32(b))
}

// DecodeSample reads one sample of format f from b and normalizes it to
// [-1, 1]. b must hold at least f.BytesPerSample() bytes.
func DecodeSample(b []byte, f Format) float64 {
	bo := f.ByteOrder.binary()
	switch f.Encoding {
	case Float:
		if f.BitsPerSample == 64 {
			return math.Float64frombits(bo.Uint64(b))
		}
		return float64(math.Float32frombits(bo.Uint32(b)))
	case SignedInt:
		switch f.BitsPerSample {
		case 8:
			return float64(int8(b[0])) / 128.0
		case 16:
			return float64(int16(bo.Uint16(b))) / 32768.0
		case 24:
			var v int32
			if f.ByteOrder == BigEndian {
				v = int32(b[0])<<16 | int32(b[1])<<8 | int32(b[2])
			} else {
				v = int32(b[2])<<16 | int32(b[1])<<8 | int32(b[0])
			}
			if v >= 1<<23 {
				v -= 1 << 24
			}
			return float64(v) / 8388608.0
		case 32:
			return float64(int32(bo.Uint32(b))) / 2147483648.0
		}
	}
	return 0
}

// EncodeSample writes v (clamped to [-1, 1]) into b using format f.
func EncodeSample(b []byte, v float64, f Format) error {
	if v > 1 {
		v = 1
	} else if v < -1 {
		v = -1
	}
	bo := f.ByteOrder.binary()
	switch f.Encoding {
	case Float:
		if f.BitsPerSample == 64 {
			bo.PutUint64(b, math.Float64bits(v))
			return nil
		}
		if f.BitsPerSample == 32 {
			bo.PutUint32(b, math.Float32bits(float32(v)))
			return nil
		}
	case SignedInt:
		switch f.BitsPerSample {
		case 8:
			b[0] = byte(int8(v * 127))
			return nil
		case 16:
			bo.PutUint16(b, uint16(int16(v*32767)))
			return nil
		case 24:
			s := int32(v * 8388607)
			if f.ByteOrder == BigEndian {
				b[0], b[1], b[2] = byte(s>>16), byte(s>>8), byte(s)
			} else {
				b[0], b[1], b[2] = byte(s), byte(s>>8), byte(s>>16)
			}
			return nil
		case 32:
			bo.PutUint32(b, uint32(int32(v*2147483647)))
			return nil
		}
	}
	return fmt.Errorf("%w: cannot encode %s", ErrInvalidFormat, f)
}
