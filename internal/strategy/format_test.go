package strategy

import (
	"encoding/json"
	"math/rand"
	"strings"
	"testing"

	"github.com/google/uuid"

	"github.com/timlawrenz/fluffy-train-sub000/internal/domain"
)

func photoWithAnalysis(t *testing.T, analysis domain.PhotoAnalysis) *domain.Photo {
	t.Helper()
	raw, err := json.Marshal(analysis)
	if err != nil {
		t.Fatalf("marshal analysis: %v", err)
	}
	return &domain.Photo{ID: uuid.New(), Metadata: raw}
}

func TestRecommendFormat(t *testing.T) {
	cfg := &Config{Format: FormatConfig{PreferCarousels: true, PreferReels: true}}

	multi := photoWithAnalysis(t, domain.PhotoAnalysis{SalientRegions: 3})
	if got := RecommendFormat(cfg, multi); got != domain.FormatCarousel {
		t.Fatalf("multi-region photo: want=%s got=%s", domain.FormatCarousel, got)
	}

	video := photoWithAnalysis(t, domain.PhotoAnalysis{IsVideo: true})
	if got := RecommendFormat(cfg, video); got != domain.FormatReel {
		t.Fatalf("video: want=%s got=%s", domain.FormatReel, got)
	}

	plain := photoWithAnalysis(t, domain.PhotoAnalysis{SalientRegions: 1})
	if got := RecommendFormat(cfg, plain); got != domain.FormatStatic {
		t.Fatalf("plain photo: want=%s got=%s", domain.FormatStatic, got)
	}

	noPrefs := &Config{}
	if got := RecommendFormat(noPrefs, multi); got != domain.FormatStatic {
		t.Fatalf("preferences off: want=%s got=%s", domain.FormatStatic, got)
	}
}

func TestGenerateHashtagsCountWithinConfiguredRange(t *testing.T) {
	cfg := &Config{Hashtags: HashtagConfig{Min: 5, Max: 12}}
	cluster := &domain.Cluster{ID: uuid.New(), Name: "Mountain Sunsets"}
	photo := photoWithAnalysis(t, domain.PhotoAnalysis{Tags: []string{"Alpine", "golden hour", "#Peaks"}})

	for seed := int64(0); seed < 20; seed++ {
		rng := rand.New(rand.NewSource(seed))
		tags := GenerateHashtags(cfg, rng, cluster, photo)
		if len(tags) < 5 || len(tags) > 12 {
			t.Fatalf("tag count: want in [5,12] got=%d", len(tags))
		}
		seen := map[string]bool{}
		for _, tag := range tags {
			if !strings.HasPrefix(tag, "#") {
				t.Fatalf("tag without # prefix: %q", tag)
			}
			if seen[tag] {
				t.Fatalf("duplicate tag: %q", tag)
			}
			seen[tag] = true
		}
	}
}

func TestGenerateHashtagsIncludesClusterNameTags(t *testing.T) {
	cfg := &Config{Hashtags: HashtagConfig{Min: 5, Max: 5}}
	cluster := &domain.Cluster{ID: uuid.New(), Name: "Mountain Sunsets"}
	rng := rand.New(rand.NewSource(7))

	tags := GenerateHashtags(cfg, rng, cluster, nil)
	joined := strings.Join(tags, " ")
	if !strings.Contains(joined, "#mountain") || !strings.Contains(joined, "#sunsets") {
		t.Fatalf("cluster name tags missing: %v", tags)
	}
}

func TestNormalizeTagStripsNonAlphanumerics(t *testing.T) {
	cases := map[string]string{
		"Golden Hour!": "#goldenhour",
		"#Peaks":       "#peaks",
		"  alpine  ":   "#alpine",
		"???":          "",
	}
	for in, want := range cases {
		if got := normalizeTag(in); got != want {
			t.Fatalf("normalizeTag(%q): want=%q got=%q", in, want, got)
		}
	}
}
