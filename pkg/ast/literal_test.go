package ast

import (
	"math/big"
	"testing"

	"github.com/babel-lang/babel/pkg/types"
)

func TestParseInteger(t *testing.T) {
	tests := []struct {
		lit  string
		val  int64
		typ  types.Type
	}{
		{"5", 5, types.Int32},
		{"1'000'000", 1000000, types.Int32},
		{"0xFF_I", 255, types.Int32},
		{"0xFF_L", 255, types.Int64},
		{"0xFFB", 4091, types.Int32},
		{"0x10", 16, types.Int32},
		{"0o17", 15, types.Int32},
		{"0o17L", 15, types.Int64},
		{"0b101", 5, types.Int32},
		{"0b11B", 3, types.Int8},
		{"12B", 12, types.Int8},
		{"12S", 12, types.Int16},
		{"12I", 12, types.Int32},
		{"12L", 12, types.Int64},
		{"12C", 12, types.Int128},
		{"5_L", 5, types.Int64},
	}
	for _, tt := range tests {
		t.Run(tt.lit, func(t *testing.T) {
			got, err := ParseInteger(tt.lit)
			if err != nil {
				t.Fatalf("ParseInteger(%q): %v", tt.lit, err)
			}
			if got.Val.Cmp(big.NewInt(tt.val)) != 0 {
				t.Errorf("value = %v, want %d", got.Val, tt.val)
			}
			if !types.Equal(got.Type, tt.typ) {
				t.Errorf("type = %v, want %v", got.Type, tt.typ)
			}
		})
	}
}

func TestParseIntegerErrors(t *testing.T) {
	tests := []struct {
		name string
		lit  string
	}{
		{"adjacent separators", "''1"},
		{"adjacent separators inside", "1''000"},
		{"binary stray digit", "0b102"},
		{"binary hex digit", "0b1F"},
		{"octal digit nine", "0o19"},
		{"octal hex digit", "0o1A"},
		{"octal early B", "0oB1"},
		{"decimal hex digit", "1F"},
		{"decimal early C", "1C2"},
		{"hex suffix without separator", "0xFFI"},
		{"empty hex digits", "0x_I"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := ParseInteger(tt.lit); err == nil {
				t.Errorf("ParseInteger(%q) succeeded, want error", tt.lit)
			}
		})
	}
}

func TestParseInteger128Bit(t *testing.T) {
	got, err := ParseInteger("0xFFFFFFFFFFFFFFFFFFFFFFFF_C")
	if err != nil {
		t.Fatalf("ParseInteger: %v", err)
	}
	want := new(big.Int).Sub(new(big.Int).Lsh(big.NewInt(1), 96), big.NewInt(1))
	if got.Val.Cmp(want) != 0 {
		t.Errorf("value = %v, want %v", got.Val, want)
	}
	if !types.Equal(got.Type, types.Int128) {
		t.Errorf("type = %v, want int128", got.Type)
	}
}

func TestParseFloat(t *testing.T) {
	tests := []struct {
		lit string
		val float64
		typ types.Type
	}{
		{"2.5", 2.5, types.Float32},
		{"2.5F", 2.5, types.Float32},
		{"2.5D", 2.5, types.Float64},
		{"2.5H", 2.5, types.Float16},
		{"2.5Q", 2.5, types.Float128},
		{"1e3", 1000, types.Float32},
		{"1.5e2", 150, types.Float32},
		{"0x1.8p3", 12, types.Float32},
		{"0x1.8p3_D", 12, types.Float64},
		{"5D", 5, types.Float64},
		{"5H", 5, types.Float16},
		{"3'000.5", 3000.5, types.Float32},
	}
	for _, tt := range tests {
		t.Run(tt.lit, func(t *testing.T) {
			got, err := ParseFloat(tt.lit)
			if err != nil {
				t.Fatalf("ParseFloat(%q): %v", tt.lit, err)
			}
			if got.NaN {
				t.Fatal("unexpected NaN")
			}
			if v, _ := got.Val.Float64(); v != tt.val {
				t.Errorf("value = %v, want %v", v, tt.val)
			}
			if !types.Equal(got.Type, tt.typ) {
				t.Errorf("type = %v, want %v", got.Type, tt.typ)
			}
		})
	}
}

func TestParseFloatSpecials(t *testing.T) {
	nan, err := ParseFloat("NaN")
	if err != nil {
		t.Fatalf("ParseFloat(NaN): %v", err)
	}
	if !nan.NaN {
		t.Error("NaN literal did not set NaN")
	}
	if !types.Equal(nan.Type, types.Float32) {
		t.Errorf("NaN type = %v, want float32", nan.Type)
	}

	inf, err := ParseFloat("Inf")
	if err != nil {
		t.Fatalf("ParseFloat(Inf): %v", err)
	}
	if !inf.Val.IsInf() {
		t.Error("Inf literal is not infinite")
	}
}

func TestParseFloatErrors(t *testing.T) {
	tests := []struct {
		name string
		lit  string
	}{
		{"adjacent separators", "1''000.5"},
		{"hex float without exponent", "0xFE_D"},
		{"hex suffix without separator", "0x1D"},
		{"unknown suffix", "5Z"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := ParseFloat(tt.lit); err == nil {
				t.Errorf("ParseFloat(%q) succeeded, want error", tt.lit)
			}
		})
	}
}
