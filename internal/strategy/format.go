package strategy

import (
	"math/rand"
	"strings"

	"github.com/timlawrenz/fluffy-train-sub000/internal/domain"
)

// genericHashtagPool pads generated tag sets when cluster and photo tags
// run short.
var genericHashtagPool = []string{
	"#photography",
	"#photooftheday",
	"#instagood",
	"#picoftheday",
	"#naturelovers",
	"#travelgram",
	"#visualsoflife",
	"#exploremore",
}

// RecommendFormat picks the publish format from config preferences and the
// photo's analysis metadata.
func RecommendFormat(cfg *Config, photo *domain.Photo) string {
	analysis := photo.Analysis()
	if cfg.Format.PreferCarousels && analysis.SalientRegions > 1 {
		return domain.FormatCarousel
	}
	if cfg.Format.PreferReels && analysis.IsVideo {
		return domain.FormatReel
	}
	return domain.FormatStatic
}

// GenerateHashtags concatenates cluster-name tags, photo-analysis tags, and
// the generic pool, deduplicates, and truncates to a count drawn randomly
// from the configured [min, max] range.
func GenerateHashtags(cfg *Config, rng *rand.Rand, cluster *domain.Cluster, photo *domain.Photo) []string {
	var candidates []string
	if cluster != nil {
		candidates = append(candidates, clusterNameTags(cluster.Name)...)
	}
	if photo != nil {
		for _, tag := range photo.Analysis().Tags {
			candidates = append(candidates, normalizeTag(tag))
		}
	}
	candidates = append(candidates, genericHashtagPool...)

	seen := make(map[string]bool)
	var tags []string
	for _, tag := range candidates {
		if tag == "" || seen[tag] {
			continue
		}
		seen[tag] = true
		tags = append(tags, tag)
	}

	count := cfg.Hashtags.Min
	if spread := cfg.Hashtags.Max - cfg.Hashtags.Min; spread > 0 {
		count += rng.Intn(spread + 1)
	}
	if count > len(tags) {
		count = len(tags)
	}
	return tags[:count]
}

// clusterNameTags derives tags from a cluster name: one per word plus the
// joined form when the name has several words.
func clusterNameTags(name string) []string {
	words := strings.FieldsFunc(strings.ToLower(name), func(r rune) bool {
		return !('a' <= r && r <= 'z' || '0' <= r && r <= '9')
	})
	var out []string
	for _, word := range words {
		out = append(out, "#"+word)
	}
	if len(words) > 1 {
		out = append(out, "#"+strings.Join(words, ""))
	}
	return out
}

func normalizeTag(tag string) string {
	tag = strings.ToLower(strings.TrimSpace(tag))
	tag = strings.TrimPrefix(tag, "#")
	var b strings.Builder
	for _, r := range tag {
		if 'a' <= r && r <= 'z' || '0' <= r && r <= '9' {
			b.WriteRune(r)
		}
	}
	if b.Len() == 0 {
		return ""
	}
	return "#" + b.String()
}
