package runner

import (
	"encoding/json"
	"strings"

	"github.com/use-agent/bannerscout/models"
)

// ExtractResult finds the scrape result in a worker's stdout.
//
// The last line carrying models.ResultFrame wins when it decodes. Without
// one, stdout is scanned from the end for a line starting with '{'; the
// text from there to the end must decode as an object with a "homepage"
// key. The first candidate that does is the result.
func ExtractResult(stdout string) (*models.ScrapeResult, bool) {
	lines := strings.Split(stdout, "\n")

	for i := len(lines) - 1; i >= 0; i-- {
		rest, ok := strings.CutPrefix(strings.TrimRight(lines[i], "\r"), models.ResultFrame)
		if !ok {
			continue
		}
		if res, ok := decodeResult(rest); ok {
			return res, true
		}
		break
	}

	for i := len(lines) - 1; i >= 0; i-- {
		if !strings.HasPrefix(strings.TrimSpace(lines[i]), "{") {
			continue
		}
		if res, ok := decodeResult(strings.Join(lines[i:], "\n")); ok {
			return res, true
		}
	}
	return nil, false
}

func decodeResult(s string) (*models.ScrapeResult, bool) {
	var keys map[string]json.RawMessage
	if err := json.Unmarshal([]byte(s), &keys); err != nil {
		return nil, false
	}
	if _, ok := keys["homepage"]; !ok {
		return nil, false
	}

	var res models.ScrapeResult
	if err := json.Unmarshal([]byte(s), &res); err != nil {
		return nil, false
	}
	if res.Homepage == nil {
		res.Homepage = []models.BannerRef{}
	}
	if res.Promotions == nil {
		res.Promotions = []models.BannerRef{}
	}
	return &res, true
}
