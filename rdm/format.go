package rdm

import "encoding/binary"

// The PDL format DSL describes a parameter's on-wire layout the way
// core/dictionary.go's Constant.Value carries dynamically-typed values
// through a single interface{} slot: a compact string drives an
// Encode/Decode pair instead of a struct tag or reflection.
//
// Recognized tokens:
//
//	b        1-byte field
//	w        2-byte big-endian field
//	d        4-byte big-endian field
//	u        6-byte UID, big-endian on the wire
//	a        remaining bytes as ASCII, max 32
//	x<hh>    a literal byte, given as two hex digits
//	$        end-of-format marker (accepted, otherwise a no-op)
//
// This is the exact token set the original driver's device_info.go and
// queue_status.c registration calls use (e.g. "x01x00wwdwbbwwb$").
type fieldKind byte

const (
	fieldByte    fieldKind = 'b'
	fieldWord    fieldKind = 'w'
	fieldDWord   fieldKind = 'd'
	fieldUID     fieldKind = 'u'
	fieldASCII   fieldKind = 'a'
	fieldLiteral fieldKind = 'x'
)

type field struct {
	kind    fieldKind
	literal byte
}

func hexDigit(c byte) (int, bool) {
	switch {
	case c >= '0' && c <= '9':
		return int(c - '0'), true
	case c >= 'a' && c <= 'f':
		return int(c-'a') + 10, true
	case c >= 'A' && c <= 'F':
		return int(c-'A') + 10, true
	default:
		return 0, false
	}
}

func compileFormat(format string) ([]field, error) {
	fields := make([]field, 0, len(format))
	for i := 0; i < len(format); {
		c := format[i]
		switch c {
		case 'b', 'w', 'd', 'u', 'a':
			fields = append(fields, field{kind: fieldKind(c)})
			i++
		case '$':
			i++
		case 'x':
			if i+2 >= len(format) {
				return nil, ErrFormat
			}
			hi, ok1 := hexDigit(format[i+1])
			lo, ok2 := hexDigit(format[i+2])
			if !ok1 || !ok2 {
				return nil, ErrFormat
			}
			fields = append(fields, field{kind: fieldLiteral, literal: byte(hi<<4 | lo)})
			i += 3
		default:
			return nil, ErrFormat
		}
	}
	return fields, nil
}

// EncodePDL renders values against format, producing a PDL payload.
// values supplies one entry per non-literal, non-'$' token in format,
// in order; literal (x<hh>) tokens need no corresponding value. ASCII
// ('a') values may be a string or []byte and are truncated to 32
// bytes.
func EncodePDL(format string, values ...interface{}) ([]byte, error) {
	fields, err := compileFormat(format)
	if err != nil {
		return nil, err
	}
	out := make([]byte, 0, len(fields)+8)
	vi := 0
	next := func() (interface{}, error) {
		if vi >= len(values) {
			return nil, ErrFormat
		}
		v := values[vi]
		vi++
		return v, nil
	}
	for _, f := range fields {
		switch f.kind {
		case fieldLiteral:
			out = append(out, f.literal)
		case fieldByte:
			v, err := next()
			if err != nil {
				return nil, err
			}
			out = append(out, byte(toUint32(v)))
		case fieldWord:
			v, err := next()
			if err != nil {
				return nil, err
			}
			var buf [2]byte
			binary.BigEndian.PutUint16(buf[:], uint16(toUint32(v)))
			out = append(out, buf[:]...)
		case fieldDWord:
			v, err := next()
			if err != nil {
				return nil, err
			}
			var buf [4]byte
			binary.BigEndian.PutUint32(buf[:], toUint32(v))
			out = append(out, buf[:]...)
		case fieldUID:
			v, err := next()
			if err != nil {
				return nil, err
			}
			u, ok := v.(UID)
			if !ok {
				return nil, ErrFormat
			}
			b := u.Bytes()
			out = append(out, b[:]...)
		case fieldASCII:
			v, err := next()
			if err != nil {
				return nil, err
			}
			var s []byte
			switch val := v.(type) {
			case string:
				s = []byte(val)
			case []byte:
				s = val
			default:
				return nil, ErrFormat
			}
			if len(s) > 32 {
				s = s[:32]
			}
			out = append(out, s...)
		}
	}
	return out, nil
}

// DecodePDL parses pdl against format, returning one value per
// non-literal, non-'$' token: byte, uint16, uint32, UID or string for
// b/w/d/u/a respectively. Literal tokens are verified against pdl and
// rejected on mismatch.
func DecodePDL(format string, pdl []byte) ([]interface{}, error) {
	fields, err := compileFormat(format)
	if err != nil {
		return nil, err
	}
	out := make([]interface{}, 0, len(fields))
	for idx, f := range fields {
		switch f.kind {
		case fieldLiteral:
			if len(pdl) < 1 || pdl[0] != f.literal {
				return nil, ErrFormat
			}
			pdl = pdl[1:]
		case fieldByte:
			if len(pdl) < 1 {
				return nil, ErrShortBuffer
			}
			out = append(out, pdl[0])
			pdl = pdl[1:]
		case fieldWord:
			if len(pdl) < 2 {
				return nil, ErrShortBuffer
			}
			out = append(out, binary.BigEndian.Uint16(pdl))
			pdl = pdl[2:]
		case fieldDWord:
			if len(pdl) < 4 {
				return nil, ErrShortBuffer
			}
			out = append(out, binary.BigEndian.Uint32(pdl))
			pdl = pdl[4:]
		case fieldUID:
			if len(pdl) < 6 {
				return nil, ErrShortBuffer
			}
			out = append(out, UIDFromBytes(pdl[:6]))
			pdl = pdl[6:]
		case fieldASCII:
			// 'a' is only ever the last token in every format string
			// this driver registers; it consumes whatever remains.
			n := len(pdl)
			if n > 32 {
				n = 32
			}
			out = append(out, string(pdl[:n]))
			pdl = pdl[n:]
			_ = idx
		}
	}
	return out, nil
}

func toUint32(v interface{}) uint32 {
	switch val := v.(type) {
	case byte:
		return uint32(val)
	case uint16:
		return uint32(val)
	case uint32:
		return val
	case int:
		return uint32(val)
	default:
		return 0
	}
}
