package runner

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/use-agent/bannerscout/models"
)

const indentedOutput = `[*] Starting banner scrape for: https://casino.test
[*] Location: 1 | Headless: True
============================================================
[+] Scraping completed successfully
============================================================

{
  "homepage": [
    {
      "src": "https://casino.test/hero.jpg",
      "alt": "",
      "width": 1440,
      "height": 500,
      "type": "Banner Image"
    }
  ],
  "promotions": []
}
`

func TestExtractResult_IndentedTrailingJSON(t *testing.T) {
	res, ok := ExtractResult(indentedOutput)
	require.True(t, ok)

	require.Len(t, res.Homepage, 1)
	assert.Equal(t, "https://casino.test/hero.jpg", res.Homepage[0].Src)
	assert.Equal(t, models.Dimension("1440"), res.Homepage[0].Width)
	assert.Empty(t, res.Promotions)
	assert.NotNil(t, res.Promotions)
}

func TestExtractResult_FramedLineWins(t *testing.T) {
	out := "[*] scanning\n" +
		`{"homepage":[{"src":"old"}],"promotions":[]}` + "\n" +
		models.ResultFrame + `{"homepage":[{"src":"framed"}],"promotions":[]}` + "\n" +
		"{ trailing noise from a library\n"

	res, ok := ExtractResult(out)
	require.True(t, ok)
	assert.Equal(t, "framed", res.Homepage[0].Src)
}

func TestExtractResult_BrokenFrameFallsBack(t *testing.T) {
	out := `{"homepage":[{"src":"legacy"}]}` + "\n" + models.ResultFrame + "{broken\n"

	res, ok := ExtractResult(out)
	require.True(t, ok)
	assert.Equal(t, "legacy", res.Homepage[0].Src)
	assert.NotNil(t, res.Promotions)
}

func TestExtractResult_RequiresHomepageKey(t *testing.T) {
	_, ok := ExtractResult("[*] done\n{\"status\": \"ok\"}\n")
	assert.False(t, ok)
}

func TestExtractResult_NoJSON(t *testing.T) {
	_, ok := ExtractResult("[*] nothing here\n[-] Error: timeout\n")
	assert.False(t, ok)

	_, ok = ExtractResult("")
	assert.False(t, ok)
}

func TestExtractResult_CRLF(t *testing.T) {
	out := "[*] a\r\n{\r\n  \"homepage\": [],\r\n  \"promotions\": []\r\n}\r\n"
	res, ok := ExtractResult(out)
	require.True(t, ok)
	assert.Empty(t, res.Homepage)
}
