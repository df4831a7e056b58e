package ctemplate_test

import (
	"encoding/json"
	"math"
	"math/big"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/lwmacct/251219-go-pkg-ctemplate/pkg/ctemplate"
)

func TestFormatValue(t *testing.T) {
	big1, _ := new(big.Int).SetString("123456789012345678901234567890", 10)
	three := 3

	tests := []struct {
		name string
		in   any
		want string
	}{
		{name: "nil", in: nil, want: ""},
		{name: "string", in: "87411", want: "87411"},
		{name: "bytes", in: []byte("raw"), want: "raw"},
		{name: "json number", in: json.Number("1.50"), want: "1.50"},
		{name: "bool", in: true, want: "true"},
		{name: "int", in: 7411, want: "7411"},
		{name: "negative int64", in: int64(-5), want: "-5"},
		{name: "max uint64", in: uint64(math.MaxUint64), want: "18446744073709551615"},
		{name: "float", in: 0.1, want: "0.1"},
		{name: "large float", in: 1e21, want: "1e+21"},
		{name: "float32", in: float32(1.5), want: "1.5"},
		{name: "big int", in: big1, want: "123456789012345678901234567890"},
		{name: "tuple", in: ctemplate.Tuple{1, 2, 3}, want: "(1, 2, 3)"},
		{name: "single tuple", in: ctemplate.Tuple{"a"}, want: "(a)"},
		{name: "nested tuple", in: ctemplate.Tuple{1, ctemplate.Tuple{2, "x"}}, want: "(1, (2, x))"},
		{name: "slice", in: []int{4, 5}, want: "(4, 5)"},
		{name: "array", in: [2]string{"x", "y"}, want: "(x, y)"},
		{name: "pointer", in: &three, want: "3"},
		{name: "stringer", in: 1500 * time.Millisecond, want: "1.5s"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ctemplate.FormatValue(tt.in))
		})
	}
}
