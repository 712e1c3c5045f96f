package inventory

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func TestNormalizeColor(t *testing.T) {
	cases := []struct {
		name   string
		raw    *string
		legacy bool
		want   *string
	}{
		{name: "nil", raw: nil, want: nil},
		{name: "blank", raw: strPtr("   "), want: nil},
		{name: "trimmed", raw: strPtr(" Noir "), want: strPtr("Noir")},
		{name: "standard kept by default", raw: strPtr("Standard"), want: strPtr("Standard")},
		{name: "standard collapsed in legacy mode", raw: strPtr("Standard"), legacy: true, want: nil},
		{name: "other colours untouched in legacy mode", raw: strPtr("Rouge"), legacy: true, want: strPtr("Rouge")},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := NormalizeColor(tc.raw, tc.legacy)
			assert.True(t, SameColor(tc.want, got), "want %v got %v", tc.want, got)
		})
	}
}

func TestNewVariantKey(t *testing.T) {
	id := uuid.New()
	key := NewVariantKey(id, " M ", strPtr(""), false)
	assert.Equal(t, "M", key.Size)
	assert.Nil(t, key.Color)
	assert.NoError(t, key.Validate())
	assert.Equal(t, id.String()+"/M", key.String())

	coloured := NewVariantKey(id, "M", strPtr("Noir"), false)
	assert.Equal(t, id.String()+"/M/Noir", coloured.String())
}

func TestSameColor(t *testing.T) {
	assert.True(t, SameColor(nil, nil))
	assert.True(t, SameColor(strPtr("Noir"), strPtr("Noir")))
	assert.False(t, SameColor(strPtr("Noir"), nil))
	assert.False(t, SameColor(nil, strPtr("Noir")))
	assert.False(t, SameColor(strPtr("Noir"), strPtr("noir")))
}
