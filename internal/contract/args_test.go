package contract

import (
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseArgsTransferAndCall(t *testing.T) {
	b, err := Bind(common.Address{}, GetBuiltinABI(BuiltinMDToken), &fakeBackend{})
	require.NoError(t, err)
	m, ok := b.Method("transferAndCall")
	require.True(t, ok)

	args, err := ParseArgs(m.Inputs, []string{
		"0x3c9dd8fac2b908de52363e654fbefe833184a9a0",
		"625000000000000000000",
		"0x01",
	})
	require.NoError(t, err)
	assert.Equal(t, common.HexToAddress("0x3c9dd8fac2b908de52363e654fbefe833184a9a0"), args[0])
	assert.Equal(t, "625000000000000000000", args[1].(*big.Int).String())
	assert.Equal(t, []byte{0x01}, args[2])

	_, err = m.Inputs.Pack(args...)
	assert.NoError(t, err)
}

func TestParseArgsSizedAndBool(t *testing.T) {
	parsed, err := ParseABI([]ABIEntry{{
		Name: "f", Type: "function", StateMutability: "nonpayable",
		Inputs: []ABIParam{{Type: "uint8"}, {Type: "bool"}, {Type: "int64"}, {Type: "bytes4"}, {Type: "string"}},
	}})
	require.NoError(t, err)
	inputs := parsed.Methods["f"].Inputs

	args, err := ParseArgs(inputs, []string{"2", "true", "-5", "0xdeadbeef", "hi"})
	require.NoError(t, err)
	assert.Equal(t, uint8(2), args[0])
	assert.Equal(t, true, args[1])
	assert.Equal(t, int64(-5), args[2])
	assert.Equal(t, [4]byte{0xde, 0xad, 0xbe, 0xef}, args[3])
	assert.Equal(t, "hi", args[4])

	_, err = inputs.Pack(args...)
	assert.NoError(t, err)
}

func TestParseArgsErrors(t *testing.T) {
	b, _ := Bind(common.Address{}, GetBuiltinABI(BuiltinMDToken), &fakeBackend{})
	m, _ := b.Method("transfer")

	_, err := ParseArgs(m.Inputs, []string{"0xabc"})
	assert.Error(t, err, "wrong count")

	_, err = ParseArgs(m.Inputs, []string{"not-an-address", "1"})
	assert.Error(t, err)

	_, err = ParseArgs(m.Inputs, []string{"0x3c9dd8fac2b908de52363e654fbefe833184a9a0", "-1"})
	assert.Error(t, err)

	_, err = ParseArgs(m.Inputs, []string{"0x3c9dd8fac2b908de52363e654fbefe833184a9a0", "abc"})
	assert.Error(t, err)
}

func TestFormatValue(t *testing.T) {
	addr := common.HexToAddress("0x3c9dd8fac2b908de52363e654fbefe833184a9a0")
	assert.Equal(t, addr.Hex(), FormatValue(addr))
	assert.Equal(t, "0x0102", FormatValue([]byte{1, 2}))
	assert.Equal(t, "0xdeadbeef", FormatValue([4]byte{0xde, 0xad, 0xbe, 0xef}))
	assert.Equal(t, "123", FormatValue(big.NewInt(123)))
	assert.Equal(t, "true", FormatValue(true))
	assert.Equal(t, "7", FormatValue(uint8(7)))
}
