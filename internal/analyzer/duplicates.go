package analyzer

import (
	"net/url"
	"sort"
	"strings"

	"github.com/lotas/tabmon/internal/types"
)

func NormalizeURL(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return rawURL
	}
	u.Fragment = ""
	params := u.Query()
	for k := range params {
		sort.Strings(params[k])
	}
	u.RawQuery = params.Encode()
	result := u.String()
	if strings.HasSuffix(result, "/") && result != u.Scheme+"://"+u.Host+"/" {
		result = strings.TrimRight(result, "/")
	}
	return result
}

// AnalyzeDuplicates marks every tab whose normalized URL is shared with
// another tab. Tabs without a URL are never duplicates.
func AnalyzeDuplicates(tabs []types.EnrichedTab) {
	groups := make(map[string][]int)
	for i := range tabs {
		tabs[i].IsDuplicate = false
		if tabs[i].URL == "" {
			continue
		}
		normalized := NormalizeURL(tabs[i].URL)
		groups[normalized] = append(groups[normalized], i)
	}
	for _, indices := range groups {
		if len(indices) < 2 {
			continue
		}
		for _, i := range indices {
			tabs[i].IsDuplicate = true
		}
	}
}
