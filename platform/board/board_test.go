package board

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTrackShape(t *testing.T) {
	tr := NewTrack()
	for i := 0; i < Size; i++ {
		sp := tr.At(i)
		assert.Equal(t, i, sp.Position)
		if sp.Kind.Purchasable() {
			require.NotNil(t, sp.Property, "purchasable space %d must carry a property", i)
			assert.Equal(t, i, sp.Property.Position)
			assert.Empty(t, sp.Property.OwnerID)
			assert.Zero(t, sp.Property.Houses)
		} else {
			assert.Nil(t, sp.Property, "special space %d must not carry a property", i)
		}
	}

	assert.Equal(t, KindGo, tr.At(0).Kind)
	assert.Equal(t, KindJail, tr.At(10).Kind)
	assert.Equal(t, KindFreeParking, tr.At(20).Kind)
	assert.Equal(t, KindGoToJail, tr.At(30).Kind)
}

func TestTaxSpaces(t *testing.T) {
	tr := NewTrack()

	income := tr.At(4)
	require.Equal(t, KindTax, income.Kind)
	assert.Equal(t, 200, income.TaxAmount)
	assert.InDelta(t, 0.1, income.TaxRate, 1e-9)

	luxury := tr.At(38)
	require.Equal(t, KindTax, luxury.Kind)
	assert.Equal(t, 75, luxury.TaxAmount)
	assert.Zero(t, luxury.TaxRate)
}

func TestNewTrackCopiesAreIndependent(t *testing.T) {
	a := NewTrack()
	b := NewTrack()

	prop, err := a.PropertyAt(1)
	require.NoError(t, err)
	prop.OwnerID = "someone"
	prop.Houses = 2

	other, err := b.PropertyAt(1)
	require.NoError(t, err)
	assert.Empty(t, other.OwnerID)
	assert.Zero(t, other.Houses)
}

func TestPropertyAtRejectsSpecialSpaces(t *testing.T) {
	tr := NewTrack()

	_, err := tr.PropertyAt(0)
	assert.Error(t, err)
	_, err = tr.PropertyAt(40)
	assert.Error(t, err)
	_, err = tr.PropertyAt(-1)
	assert.Error(t, err)
}

func TestOwnedBy(t *testing.T) {
	tr := NewTrack()
	for _, pos := range []int{5, 15, 25} {
		prop, err := tr.PropertyAt(pos)
		require.NoError(t, err)
		prop.OwnerID = "u1"
	}
	owned := tr.OwnedBy("u1")
	assert.Len(t, owned, 3)
	assert.Empty(t, tr.OwnedBy("u2"))
}

func TestParseTrackRejectsBadData(t *testing.T) {
	_, err := parseTrack([]byte(`[]`))
	assert.Error(t, err)

	_, err = parseTrack([]byte(`not json`))
	assert.Error(t, err)
}
