package ast

import (
	"math/big"
	"strings"

	"github.com/babel-lang/babel/pkg/types"
	"github.com/pkg/errors"
)

const floatPrecision = 113 // fp128 mantissa bits

// ParseInteger parses an integer literal: optional 0x/0o/0b base prefix,
// ' digit separators, and a width suffix B/S/I/L/C selecting int8 through
// int128. Hex literals need a _ before S/I/L suffixes to keep them apart
// from digits.
func ParseInteger(lit string) (Integer, error) {
	if strings.Contains(lit, "''") {
		return Integer{}, errors.Errorf("adjacent digit separators in %q", lit)
	}
	s := strings.ReplaceAll(lit, "'", "")

	switch {
	case strings.HasPrefix(s, "0x"):
		if strings.ContainsAny(s[2:], "SsIiLl") && s[len(s)-2] != '_' {
			return Integer{}, errors.New("invalid hex literal: type suffix requires _ as a separator")
		}
		return parseInt(s, 2, 16)
	case strings.HasPrefix(s, "0o"):
		if strings.ContainsAny(s[2:], "89AaDdEeFf") || misplacedSuffix(s[2:]) {
			return Integer{}, errors.New("invalid octal literal: only digits 0-7 are allowed")
		}
		return parseInt(s, 2, 8)
	case strings.HasPrefix(s, "0b"):
		if strings.ContainsAny(s[2:], "23456789AaDdEeFf") || misplacedSuffix(s[2:]) {
			return Integer{}, errors.New("invalid binary literal: only digits 0 and 1 are allowed")
		}
		return parseInt(s, 2, 2)
	default:
		if strings.ContainsAny(s, "AaDdEeFf") || misplacedSuffix(s) {
			return Integer{}, errors.New("invalid decimal literal: only digits 0-9 are allowed")
		}
		return parseInt(s, 0, 10)
	}
}

// misplacedSuffix reports a B or C anywhere but the final position, where
// it would be a suffix.
func misplacedSuffix(s string) bool {
	i := strings.IndexAny(s, "BbCc")
	return i >= 0 && i != len(s)-1
}

func parseInt(s string, offset, base int) (Integer, error) {
	digits := s[offset:]
	var suffix byte
	switch {
	case len(s) >= 2 && s[len(s)-2] == '_':
		suffix = s[len(s)-1]
		digits = s[offset : len(s)-2]
	case base != 16 && len(digits) > 0 && strings.ContainsAny(digits[len(digits)-1:], "BbSsIiLlCc"):
		suffix = s[len(s)-1]
		digits = s[offset : len(s)-1]
	}

	typ, err := intTypeFromSuffix(suffix)
	if err != nil {
		return Integer{}, err
	}
	val, ok := new(big.Int).SetString(digits, base)
	if !ok {
		return Integer{}, errors.Errorf("malformed integer literal %q", s)
	}
	return Integer{Val: val, Type: typ}, nil
}

func intTypeFromSuffix(suffix byte) (types.Type, error) {
	switch suffix {
	case 0, 'I', 'i':
		return types.Int(), nil
	case 'B', 'b':
		return types.Int8, nil
	case 'S', 's':
		return types.Int16, nil
	case 'L', 'l':
		return types.Int64, nil
	case 'C', 'c':
		return types.Int128, nil
	}
	return nil, errors.Errorf("unknown integer suffix %q", string(suffix))
}

// ParseFloat parses a floating-point literal: decimal or hex mantissa,
// e/E or p/P exponents, NaN and Inf, and a width suffix H/F/D/Q selecting
// float16 through float128. A literal without . or exponent is an integer
// with a float suffix and is parsed as such, then converted.
func ParseFloat(lit string) (Float, error) {
	if strings.Contains(lit, "''") {
		return Float{}, errors.Errorf("adjacent digit separators in %q", lit)
	}
	s := strings.ReplaceAll(lit, "'", "")

	genuine := strings.ContainsAny(s, ".EePp") || s == "NaN" || s == "Inf"
	hexFloat := strings.HasPrefix(s, "0x")

	if !genuine {
		if hexFloat && !strings.Contains(s, "_") {
			return Float{}, errors.New("invalid hex literal: type suffix requires _ as a separator")
		}
		suffix := s[len(s)-1]
		i := strings.IndexByte("HFDQ", upper(suffix))
		if i < 0 {
			return Float{}, errors.Errorf("malformed float literal %q", s)
		}
		integer, err := ParseInteger(s[:len(s)-1] + string("SILC"[i]))
		if err != nil {
			return Float{}, err
		}
		return Float{
			Val:  new(big.Float).SetPrec(floatPrecision).SetInt(integer.Val),
			Type: floatTypeFromSuffix(suffix),
		}, nil
	}

	if hexFloat && !strings.ContainsAny(s, "Pp") {
		return Float{}, errors.New("hex float must contain an exponent")
	}

	mantissa := s
	var suffix byte
	if strings.Contains(s, "_") {
		suffix = s[len(s)-1]
		mantissa = s[:len(s)-2]
	} else if !hexFloat && s != "Inf" && strings.ContainsAny(s, "HhFfDdQq") {
		suffix = s[len(s)-1]
		mantissa = s[:len(s)-1]
	}
	mantissa = strings.ToLower(mantissa)

	result := Float{Type: floatTypeFromSuffix(suffix)}
	switch mantissa {
	case "nan":
		result.NaN = true
		result.Val = new(big.Float).SetPrec(floatPrecision)
	case "inf":
		result.Val = new(big.Float).SetPrec(floatPrecision).SetInf(false)
	default:
		val, _, err := big.ParseFloat(mantissa, 0, floatPrecision, big.ToNearestEven)
		if err != nil {
			return Float{}, errors.Wrapf(err, "malformed float literal %q", s)
		}
		result.Val = val
	}
	return result, nil
}

func floatTypeFromSuffix(suffix byte) types.Type {
	switch suffix {
	case 'H', 'h':
		return types.Float16
	case 'D', 'd':
		return types.Float64
	case 'Q', 'q':
		return types.Float128
	}
	return types.Float()
}

func upper(c byte) byte {
	if c >= 'a' && c <= 'z' {
		return c - 'a' + 'A'
	}
	return c
}
