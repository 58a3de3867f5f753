package geo

import (
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/Nixie-Tech-LLC/minaarly/internal/model"
)

func TestValidate(t *testing.T) {
	cases := []struct {
		name string
		box  model.BoundingBox
		ok   bool
	}{
		{"berlin", model.BoundingBox{South: 52.3, North: 52.7, West: 13.0, East: 13.8}, true},
		{"antimeridian", model.BoundingBox{South: -20, North: -10, West: 170, East: -170}, true},
		{"inverted", model.BoundingBox{South: 10, North: 5, West: 0, East: 1}, false},
		{"lat range", model.BoundingBox{South: -91, North: 0, West: 0, East: 1}, false},
		{"lng range", model.BoundingBox{South: 0, North: 1, West: -181, East: 1}, false},
		{"nan", model.BoundingBox{South: math.NaN(), North: 1, West: 0, East: 1}, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := Validate(tc.box)
			if tc.ok {
				assert.NoError(t, err)
			} else {
				assert.True(t, errors.Is(err, ErrInvalidBounds))
			}
		})
	}
}

func TestContains(t *testing.T) {
	b := model.BoundingBox{South: 0, North: 10, West: 170, East: -170}
	assert.True(t, Contains(b, 5, 175))
	assert.True(t, Contains(b, 5, -175))
	assert.False(t, Contains(b, 5, 0))
	assert.False(t, Contains(b, 11, 175))
}

func TestAroundEnclosesRadius(t *testing.T) {
	b := Around(52.52, 13.405, 5)
	assert.NoError(t, Validate(b))
	// a point 4.9km north is inside the box
	assert.True(t, Contains(b, 52.52+4.9/111.32, 13.405))
	assert.False(t, Contains(b, 52.52+5.5/111.32, 13.405))
}

func TestHaversine(t *testing.T) {
	// Berlin -> Hamburg, roughly 255km
	d := Haversine(52.5200, 13.4050, 53.5511, 9.9937)
	assert.InDelta(t, 255000, d, 3000)
	assert.Zero(t, Haversine(1, 1, 1, 1))
}

func TestKeyRounds(t *testing.T) {
	a := Key(model.BoundingBox{South: 52.3001, North: 52.7002, West: 13.0004, East: 13.8}, 2)
	b := Key(model.BoundingBox{South: 52.2999, North: 52.6998, West: 12.9996, East: 13.8001}, 2)
	assert.Equal(t, a, b)
}
