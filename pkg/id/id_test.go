package id

import (
	"testing"

	"github.com/bmizerany/assert"
	"github.com/gofrs/uuid"
)

func TestUUIDFromString(t *testing.T) {
	a := UUIDFromString("0xabc-1")
	assert.Equal(t, a, UUIDFromString("0xabc-1"))
	assert.NotEqual(t, a, UUIDFromString("0xabc-2"))

	u, err := uuid.FromString(a)
	assert.Equal(t, nil, err)
	assert.Equal(t, byte(3), u.Version())
}

func TestUUIDByName(t *testing.T) {
	ns := UUIDFromString("markets")

	a, err := UUIDByName(ns, "0xabc")
	assert.Equal(t, nil, err)
	b, _ := UUIDByName(ns, "0xabc")
	assert.Equal(t, a, b)

	_, err = UUIDByName("not a uuid", "0xabc")
	assert.NotEqual(t, nil, err)
}
