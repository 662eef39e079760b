package classifier

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/use-agent/bannerscout/models"
)

const samplePage = `<html><body>
<div class="hero"><img src="/img/top.jpg" alt="Summer sale"></div>
<div><img src="logo.png" width="120" height="40"></div>
<section id="promo"><img src="https://cdn.example.net/wide.jpg" width="1200" height="300"></section>
<div><img src="data:image/png;base64,AAAA" width="1600"></div>
<div class="banner"><img src="/img/top.jpg"></div>
<div style="background-image: url('/bg/city.webp'); height: 400px"></div>
<div style="background-image: linear-gradient(red, blue)"></div>
</body></html>`

func TestExtract(t *testing.T) {
	got, err := Extract(samplePage, "https://shop.example.com/en/home?x=1")
	require.NoError(t, err)

	require.Len(t, got, 3)

	assert.Equal(t, models.BannerRef{
		Src:    "https://shop.example.com/img/top.jpg",
		Alt:    "Summer sale",
		Width:  models.DimensionAuto,
		Height: models.DimensionAuto,
		Type:   models.BannerTypeImage,
	}, got[0])

	assert.Equal(t, "https://cdn.example.net/wide.jpg", got[1].Src)
	assert.Equal(t, "Banner image", got[1].Alt)
	assert.Equal(t, models.Dimension("1200"), got[1].Width)
	assert.Equal(t, models.Dimension("300"), got[1].Height)

	assert.Equal(t, "https://shop.example.com/bg/city.webp", got[2].Src)
	assert.Equal(t, models.BannerTypeBackground, got[2].Type)
	assert.Equal(t, "Background banner", got[2].Alt)
}

func TestExtract_RelativeToOriginNotPath(t *testing.T) {
	got, err := Extract(`<div class="slider"><img src="a/b.jpg"></div>`, "https://x.test/deep/page.html")
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "https://x.test/a/b.jpg", got[0].Src)
}

func TestExtract_EmptyPage(t *testing.T) {
	got, err := Extract("", "https://x.test/")
	require.NoError(t, err)
	assert.Empty(t, got)
	assert.NotNil(t, got)
}

func TestExtract_InvalidPageURL(t *testing.T) {
	_, err := Extract("<img>", "not a url")
	assert.Error(t, err)
}
