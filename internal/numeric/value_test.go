package numeric

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func TestValue_JSONRoundTripIsExact(t *testing.T) {
	for _, in := range []string{"0", "0.001", "1.15", "123456789012345678901234567890.5", "1e1000"} {
		v := MustParse(in)

		raw, err := json.Marshal(v)
		require.NoError(t, err)

		var out Value
		require.NoError(t, json.Unmarshal(raw, &out))
		assert.True(t, v.Equal(out), "round trip of %s gave %s", in, out)
		assert.Equal(t, v.String(), out.String())
	}
}

func TestValue_UnmarshalJSONAcceptsBareNumbers(t *testing.T) {
	var v Value
	require.NoError(t, json.Unmarshal([]byte(`42.5`), &v))
	assert.Equal(t, "42.5", v.String())

	require.NoError(t, json.Unmarshal([]byte(`null`), &v))
	assert.Equal(t, "42.5", v.String())

	assert.Error(t, json.Unmarshal([]byte(`"abc"`), &v))
}

func TestValue_YAMLScalar(t *testing.T) {
	var doc struct {
		Base   Value `yaml:"base"`
		Growth Value `yaml:"growth"`
		Big    Value `yaml:"big"`
	}
	src := "base: 10\ngrowth: 1.15\nbig: \"1e10000\"\n"
	require.NoError(t, yaml.Unmarshal([]byte(src), &doc))

	assert.Equal(t, "10", doc.Base.String())
	assert.Equal(t, "1.15", doc.Growth.String())
	assert.True(t, doc.Big.GreaterThan(MustParse("1e9999")))

	err := yaml.Unmarshal([]byte("base: ten\n"), &doc)
	assert.Error(t, err)
}

func TestValue_FloorDivTruncates(t *testing.T) {
	threshold := MustParse("1e10")

	assert.Equal(t, "2", MustParse("2.5e10").FloorDiv(threshold).String())
	assert.Equal(t, "0", MustParse("9999999999").FloorDiv(threshold).String())
	assert.Equal(t, "1", threshold.FloorDiv(threshold).String())

	// 3e30 - 1 must not round up to 3e20
	almost := MustParse("3e30").Sub(One)
	assert.Equal(t, "299999999999999999999", almost.FloorDiv(threshold).String())

	assert.True(t, One.FloorDiv(Zero).IsZero())
}

func TestValue_PowInt(t *testing.T) {
	assert.Equal(t, "1", MustParse("1.15").PowInt(0).String())
	assert.Equal(t, "1.520875", MustParse("1.15").PowInt(3).String())
	assert.Equal(t, "1024", FromInt(2).PowInt(10).String())
	assert.Equal(t, "0.25", FromInt(2).PowInt(-2).String())

	big := FromInt(10).PowInt(1000)
	assert.True(t, big.Equal(MustParse("1e1000")))
}

func TestValue_PowIntRelativeError(t *testing.T) {
	growth := MustParse("1.15")
	exact := One
	for i := 0; i < 300; i++ {
		exact = exact.Mul(growth)
	}

	got := growth.PowInt(300)
	relErr := got.Sub(exact).Div(exact)
	if relErr.IsNegative() {
		relErr = relErr.Neg()
	}
	assert.True(t, relErr.LessThan(MustParse("1e-20")), "relative error %s", relErr)
}

func TestValue_DivByZeroIsZero(t *testing.T) {
	assert.True(t, FromInt(5).Div(Zero).IsZero())
	assert.Equal(t, "2.5", FromInt(5).Div(FromInt(2)).String())
}

func TestValue_ClampMinMax(t *testing.T) {
	ceiling := MustParse("0.95")

	assert.Equal(t, "0.95", FromInt(3).Clamp(Zero, ceiling).String())
	assert.Equal(t, "0", FromInt(-1).Clamp(Zero, ceiling).String())
	assert.Equal(t, "0.5", MustParse("0.5").Clamp(Zero, ceiling).String())

	assert.Equal(t, "3", Max(FromInt(3), One).String())
	assert.Equal(t, "1", Min(FromInt(3), One).String())
}

func TestValue_ZeroValueIsUsable(t *testing.T) {
	var v Value
	assert.True(t, v.IsZero())
	assert.Equal(t, "7", v.Add(FromInt(7)).String())
	assert.False(t, v.IsNegative())
}
