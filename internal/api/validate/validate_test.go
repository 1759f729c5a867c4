package validate

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEmail(t *testing.T) {
	assert.Nil(t, Email("email", "bob@example.com"))
	assert.Nil(t, Email("email", " Bob@Example.com "))
	assert.NotNil(t, Email("email", ""))
	assert.NotNil(t, Email("email", "bob"))
	assert.NotNil(t, Email("email", "Bob <bob@example.com>"))
}

func TestPositiveQueryInt(t *testing.T) {
	n, err := PositiveQueryInt("page", "", 1)
	assert.Nil(t, err)
	assert.Equal(t, 1, n)

	n, err = PositiveQueryInt("page", "7", 1)
	assert.Nil(t, err)
	assert.Equal(t, 7, n)

	for _, raw := range []string{"0", "-2", "x", "1.5"} {
		_, err = PositiveQueryInt("page", raw, 1)
		assert.NotNil(t, err, raw)
	}
}

func TestCollect(t *testing.T) {
	errs := Collect(nil, Required("name", ""), MinInt("points", 0, 1))
	assert.Len(t, errs, 2)
	assert.Equal(t, "name: required; points: must be >= 1", errs.Error())
	assert.Empty(t, Collect(nil, nil))
}
