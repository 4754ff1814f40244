package exemplar

import (
	"testing"

	"socialguard/internal/models"

	"github.com/stretchr/testify/require"
)

func TestStatic_FiveExemplarsPerCategory(t *testing.T) {
	req := require.New(t)
	set := Static()

	for _, c := range models.Categories {
		group := set.For(c)
		req.Len(group, PerCategory)
		for _, ex := range group {
			req.Equal(c, ex.Label)
			req.NotEmpty(ex.Text)
		}
	}
	req.Len(set.All(), 25)
}

func TestStatic_IsImmutable(t *testing.T) {
	req := require.New(t)
	set := Static()
	set[models.Neutral][0].Text = "changed"

	group := Static().For(models.Neutral)
	group[1].Text = "changed too"

	fresh := Static()
	req.Equal("Bu çok güzel bir paylaşım olmuş teşekkürler", fresh[models.Neutral][0].Text)
	req.Equal("Harika bir içerik eline sağlık", fresh[models.Neutral][1].Text)
}

func TestStatic_InvalidCategory(t *testing.T) {
	require.Nil(t, Static().For(models.Category(9)))
}
