package obrt

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/obelix-lang/obelix/internal/obvalue"
)

func Test_Primitive_Execute_arithmetic(t *testing.T) {
	testCases := []struct {
		name   string
		left   Primitive
		op     string
		right  obvalue.Value
		expect Primitive
	}{
		{"int add", Int(2), "+", Int(3), Int(5)},
		{"float add promotes", Int(2), "+", Float(1.5), Float(3.5)},
		{"string concat", String("ab"), "+", String("cd"), String("abcd")},
		{"string repeat", String("ab"), "*", Int(3), String("ababab")},
		{"int divide exact", Int(10), "/", Int(2), Int(5)},
		{"int divide inexact promotes to float", Int(5), "/", Int(2), Float(2.5)},
		{"equal ints", Int(4), "==", Int(4), Bool(true)},
		{"less than", Int(2), "<", Int(4), Bool(true)},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert := assert.New(t)
			got, err := tc.left.Execute(tc.op, []obvalue.Value{tc.right})
			if !assert.NoError(err) {
				return
			}
			assert.True(tc.expect.Equal(got), "expected %s, got %s", tc.expect.String(), got.String())
		})
	}
}

func Test_Primitive_divideByZero(t *testing.T) {
	assert := assert.New(t)
	_, err := Int(1).Execute("/", []obvalue.Value{Int(0)})
	assert.Error(err)
}

func Test_List_execute(t *testing.T) {
	assert := assert.New(t)
	l := NewList(Int(1), Int(2))
	concatenated, err := l.Execute("+", []obvalue.Value{NewList(Int(3))})
	if !assert.NoError(err) {
		return
	}
	assert.Equal("[1, 2, 3]", concatenated.String())
}

func Test_FromToken(t *testing.T) {
	assert := assert.New(t)

	v, err := FromToken("Integer", "42")
	if assert.NoError(err) {
		assert.Equal("42", v.String())
	}

	v, err = FromToken("HexNumber", "0x1F")
	if assert.NoError(err) {
		assert.Equal("31", v.String())
	}

	_, err = FromToken("Integer", "not-a-number")
	assert.Error(err)
}
