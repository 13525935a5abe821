package crop

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultCatalog(t *testing.T) {
	c := Default()
	assert.Equal(t, []string{"Carrot", "Lettuce", "Maize", "Parsley", "Potato", "Tomato", "Wheat"}, c.Names())

	for _, name := range c.Names() {
		p, err := c.Lookup(name)
		require.NoError(t, err)
		assert.Equal(t, name, p.Name)
		assert.NoError(t, p.Validate())
		assert.Greater(t, p.OptimalTemp, p.BaseTemp, name)
	}
}

func TestLookup(t *testing.T) {
	p, err := Lookup("lettuce")
	require.NoError(t, err)
	assert.Equal(t, "Lettuce", p.Name)
	assert.Equal(t, 20.0, p.OptimalTemp)

	_, err = Lookup("Triffid")
	assert.ErrorIs(t, err, ErrUnknownCrop)
}

func TestReadCatalogRejectsUnknownField(t *testing.T) {
	_, err := ReadCatalog(strings.NewReader("Kale:\n  tsum: 900\n  topt_typo: 20\n"))
	assert.Error(t, err)
}

func TestReadCatalogValidates(t *testing.T) {
	_, err := ReadCatalog(strings.NewReader("Kale:\n  tsum: 0\n"))
	assert.Error(t, err)
}
