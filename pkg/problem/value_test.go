package problem

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
)

type ValueTestSuite struct {
	suite.Suite
}

func TestValueTestSuite(t *testing.T) {
	suite.Run(t, new(ValueTestSuite))
}

func (s *ValueTestSuite) TestScalars() {
	v, err := ParseValue(KindInt, " 42 ")
	s.Require().NoError(err)
	s.Equal(int32(42), v)

	v, err = ParseValue(KindLong, "-9000000000")
	s.Require().NoError(err)
	s.Equal(int64(-9000000000), v)

	v, err = ParseValue(KindDouble, "2.5")
	s.Require().NoError(err)
	s.Equal(2.5, v)

	v, err = ParseValue(KindString, `"a \"quoted\" word"`)
	s.Require().NoError(err)
	s.Equal(`a "quoted" word`, v)

	v, err = ParseValue(KindChar, "'x'")
	s.Require().NoError(err)
	s.Equal('x', v)

	v, err = ParseValue(KindChar, "y")
	s.Require().NoError(err)
	s.Equal('y', v)
}

func (s *ValueTestSuite) TestArrays() {
	v, err := ParseValue(KindIntArray, "{1, 2, 3}")
	s.Require().NoError(err)
	s.Equal([]int32{1, 2, 3}, v)

	v, err = ParseValue(KindStringArray, `{"a, b", "c}", ""}`)
	s.Require().NoError(err)
	s.Equal([]string{"a, b", "c}", ""}, v)

	v, err = ParseValue(KindCharArray, "{'a', ',', 'c'}")
	s.Require().NoError(err)
	s.Equal([]rune{'a', ',', 'c'}, v)

	v, err = ParseValue(KindDoubleArray, "{}")
	s.Require().NoError(err)
	s.Equal([]float64{}, v)

	v, err = ParseValue(KindLongArray, "{ 1 ,2 }")
	s.Require().NoError(err)
	s.Equal([]int64{1, 2}, v)
}

func (s *ValueTestSuite) TestMalformed() {
	cases := []struct {
		kind Kind
		raw  string
	}{
		{KindInt, "2147483648"},
		{KindInt, "abc"},
		{KindString, "unquoted"},
		{KindChar, "'ab'"},
		{KindIntArray, "1, 2"},
		{KindIntArray, "{1,,2}"},
		{KindStringArray, `{"open}`},
		{KindInvalid, "1"},
	}
	for _, c := range cases {
		_, err := ParseValue(c.kind, c.raw)
		s.Error(err, "%s %q", c.kind, c.raw)
	}
	_, err := ParseValue(KindInvalid, "1")
	s.True(errors.Is(err, ErrUnsupportedDataType))
	_, err = ParseValue(KindInt, "x")
	s.True(errors.Is(err, ErrMalformedValue))
}

func TestFormatValueParsesBack(t *testing.T) {
	values := map[Kind]string{
		KindStringArray: `{"he said \"hi\"", "back\\slash"}`,
		KindChar:        `'\''`,
		KindDoubleArray: "{0.5, -3, 1e+21}",
		KindInt:         "-7",
	}
	for kind, raw := range values {
		v, err := ParseValue(kind, raw)
		require.NoError(t, err, kind.String())
		out, err := FormatValue(kind, v)
		require.NoError(t, err, kind.String())
		again, err := ParseValue(kind, out)
		require.NoError(t, err, kind.String())
		assert.Equal(t, v, again, kind.String())
	}
}

func TestFormatValueRejectsWrongType(t *testing.T) {
	_, err := FormatValue(KindString, int32(1))
	assert.ErrorIs(t, err, ErrMalformedValue)
	_, err = FormatValue(KindIntArray, []string{"a"})
	assert.ErrorIs(t, err, ErrMalformedValue)
}

func TestKind(t *testing.T) {
	assert.Equal(t, "String[]", KindStringArray.String())
	assert.Equal(t, "invalid", KindInvalid.String())
	assert.True(t, KindLongArray.IsArray())
	assert.False(t, KindLong.IsArray())
	assert.Equal(t, KindLong, KindLongArray.Elem())
	assert.Equal(t, KindChar, KindChar.Elem())
	assert.Len(t, Kinds(), 10)
	assert.False(t, KindInvalid.Valid())
}
