// Package numfmt formats numbers as JSON number text.
package numfmt

import (
	"math"
	"strconv"
)

// maxPlainExp bounds the decimal exponent that is still written without
// scientific notation.
const maxPlainExp = 16

// AppendInt appends the minimal decimal form of v.
func AppendInt(dst []byte, v int64) []byte { return strconv.AppendInt(dst, v, 10) }

// AppendUint appends the minimal decimal form of v.
func AppendUint(dst []byte, v uint64) []byte { return strconv.AppendUint(dst, v, 10) }

// AppendFloat appends the shortest text that parses back to f at the given
// bit size (32 or 64). NaN and infinities have no JSON form and are written
// as null. Integral values carry no fractional part: 2.0 is written as 2.
//
// Values whose decimal exponent lies in (-5, 16] are written in plain
// decimal; everything else as d.ddde[-]x without a plus sign or padding.
func AppendFloat(dst []byte, f float64, bits int) []byte {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return append(dst, "null"...)
	}

	var scratch [32]byte
	sci := strconv.AppendFloat(scratch[:0], f, 'e', -1, bits)
	if sci[0] == '-' {
		dst = append(dst, '-')
		sci = sci[1:]
	}

	// sci is d[.ddd]e±xx; collect the digits and the exponent.
	var digitBuf [24]byte
	digits := digitBuf[:0]
	i := 0
	for ; sci[i] != 'e'; i++ {
		if sci[i] != '.' {
			digits = append(digits, sci[i])
		}
	}
	i++
	expNeg := sci[i] == '-'
	i++
	exp := 0
	for ; i < len(sci); i++ {
		exp = exp*10 + int(sci[i]-'0')
	}
	if expNeg {
		exp = -exp
	}

	n := len(digits)
	kk := exp + 1 // 10^(kk-1) <= |f| < 10^kk
	k := kk - n

	switch {
	case k >= 0 && kk <= maxPlainExp:
		dst = append(dst, digits...)
		for ; k > 0; k-- {
			dst = append(dst, '0')
		}
	case kk > 0 && kk <= maxPlainExp:
		dst = append(dst, digits[:kk]...)
		dst = append(dst, '.')
		dst = append(dst, digits[kk:]...)
	case kk > -5 && kk <= 0:
		dst = append(dst, '0', '.')
		for z := kk; z < 0; z++ {
			dst = append(dst, '0')
		}
		dst = append(dst, digits...)
	default:
		dst = append(dst, digits[0])
		if n > 1 {
			dst = append(dst, '.')
			dst = append(dst, digits[1:]...)
		}
		dst = append(dst, 'e')
		dst = strconv.AppendInt(dst, int64(kk-1), 10)
	}
	return trimPointZero(dst)
}

// trimPointZero drops a trailing ".0" so integral floats read as integers.
func trimPointZero(b []byte) []byte {
	if n := len(b); n >= 2 && b[n-2] == '.' && b[n-1] == '0' {
		return b[:n-2]
	}
	return b
}
