package stats

import (
	"maps"
	"testing"

	"github.com/j-veylop/langstats-tui/internal/models"
)

func TestMerge(t *testing.T) {
	got := models.LanguageStats{}
	Merge(got, models.LanguageStats{"TypeScript": 100})
	Merge(got, models.LanguageStats{"TypeScript": 50, "Python": 30})

	want := models.LanguageStats{"TypeScript": 150, "Python": 30}
	if !maps.Equal(got, want) {
		t.Errorf("Merge() = %v, want %v", got, want)
	}
}

func TestMerge_OrderIndependent(t *testing.T) {
	repos := []models.LanguageStats{
		{"Go": 10, "Shell": 1},
		{"Go": 5, "TypeScript": 7},
		{"SQL": 3},
	}

	forward := models.LanguageStats{}
	for _, r := range repos {
		Merge(forward, r)
	}
	backward := models.LanguageStats{}
	for i := len(repos) - 1; i >= 0; i-- {
		Merge(backward, repos[i])
	}

	if !maps.Equal(forward, backward) {
		t.Errorf("merge depends on order: %v vs %v", forward, backward)
	}
}

func TestPercent(t *testing.T) {
	tests := []struct {
		name        string
		part, total int64
		want        int
	}{
		{"ZeroTotal", 5, 0, 0},
		{"ZeroPart", 0, 10, 0},
		{"Whole", 10, 10, 100},
		{"Exact", 70, 100, 70},
		{"HalfRoundsUp", 1, 8, 13},       // 12.5
		{"BelowHalf", 1, 3, 33},          // 33.33
		{"AboveHalf", 2, 3, 67},          // 66.67
		{"TinyShare", 1, 1000, 0},        // 0.1
		{"HalfOfOnePercent", 1, 200, 1},  // 0.5
		{"LargeCounts", 1 << 40, 1 << 41, 50},
		{"HugeExactHalf", 1<<53 + 1, 200 * (1<<53 + 1), 1}, // float64 would lose the half
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Percent(tt.part, tt.total); got != tt.want {
				t.Errorf("Percent(%d, %d) = %d, want %d", tt.part, tt.total, got, tt.want)
			}
		})
	}
}

func TestCategoryPercent(t *testing.T) {
	stats := models.LanguageStats{"TypeScript": 70, "SQL": 30}

	if got := CategoryPercent(stats, TagWeb); got != 70 {
		t.Errorf("CategoryPercent(web) = %d, want 70", got)
	}
	if got := CategoryPercent(stats, TagDB); got != 30 {
		t.Errorf("CategoryPercent(db) = %d, want 30", got)
	}
	if got := CategoryPercent(stats, TagAI); got != 0 {
		t.Errorf("CategoryPercent(ai) = %d, want 0", got)
	}
}

func TestCategoryPercent_Empty(t *testing.T) {
	for _, stats := range []models.LanguageStats{nil, {}, {"Go": 0}} {
		for _, tag := range Tags() {
			if got := CategoryPercent(stats, tag); got != 0 {
				t.Errorf("CategoryPercent(%v, %s) = %d, want 0", stats, tag, got)
			}
		}
	}
}

func TestCategoryPercent_UncategorizedCountsInTotal(t *testing.T) {
	stats := models.LanguageStats{"TypeScript": 50, "Haskell": 50}

	if got := CategoryPercent(stats, TagWeb); got != 50 {
		t.Errorf("CategoryPercent(web) = %d, want 50", got)
	}
	if got := Uncategorized(stats); got != 50 {
		t.Errorf("Uncategorized() = %d, want 50", got)
	}
}

func TestCategoryPercent_SumBound(t *testing.T) {
	tests := []struct {
		name        string
		stats       models.LanguageStats
		want        int
		allMapped   bool
		exactShares bool
	}{
		{
			name:        "AllCategorized",
			stats:       models.LanguageStats{"Go": 25, "TypeScript": 50, "Shell": 25},
			want:        100,
			allMapped:   true,
			exactShares: true,
		},
		{
			name:        "PartlyCategorized",
			stats:       models.LanguageStats{"Go": 40, "Elixir": 60},
			want:        40,
			exactShares: true,
		},
		{
			name:  "ThirdsRoundDown",
			stats: models.LanguageStats{"Go": 1, "CSS": 1, "C": 1},
			want:  99,
		},
		{
			name:  "Uncategorized",
			stats: models.LanguageStats{"Haskell": 10},
			want:  0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sum := 0
			for _, tag := range Tags() {
				sum += CategoryPercent(tt.stats, tag)
			}
			if sum > 100 {
				t.Errorf("category percentages sum to %d, want <= 100", sum)
			}
			if sum != tt.want {
				t.Errorf("sum = %d, want %d", sum, tt.want)
			}
			if tt.allMapped && tt.exactShares && sum != 100 {
				t.Errorf("all languages categorized with exact shares, sum = %d, want 100", sum)
			}
		})
	}
}

// Independent rounding can push the rounded sum one point over 100 when
// several categories sit exactly on a half. The exact byte shares never do.
func TestCategoryPercent_RoundingOverflow(t *testing.T) {
	stats := models.LanguageStats{"CSS": 1, "SQL": 1, "C": 198}

	var bytesSum int64
	sum := 0
	for _, tag := range Tags() {
		bytesSum += CategoryBytes(stats, tag)
		sum += CategoryPercent(stats, tag)
	}
	if bytesSum > stats.Total() {
		t.Fatalf("category bytes %d exceed total %d", bytesSum, stats.Total())
	}
	if sum != 101 {
		t.Errorf("rounded sum = %d, want 101 (0.5 + 0.5 + 99 rounded half up)", sum)
	}
}

func TestCategoryShares(t *testing.T) {
	stats := models.LanguageStats{"TypeScript": 60, "Go": 30, "Dockerfile": 10}
	shares := CategoryShares(stats)

	if len(shares) != 3 {
		t.Fatalf("len(CategoryShares) = %d, want 3", len(shares))
	}
	want := []struct {
		tag     string
		bytes   int64
		percent int
	}{
		{TagWeb, 60, 60},
		{TagDB, 30, 30},
		{TagAI, 10, 10},
	}
	for i, w := range want {
		if shares[i].Tag != w.tag || shares[i].Bytes != w.bytes || shares[i].Percent != w.percent {
			t.Errorf("shares[%d] = %+v, want %+v", i, shares[i], w)
		}
		if shares[i].Title == "" {
			t.Errorf("shares[%d] has no title", i)
		}
	}

	m := ShareMap(stats)
	if m[TagWeb] != 60 || m[TagDB] != 30 || m[TagAI] != 10 {
		t.Errorf("ShareMap() = %v", m)
	}
}

func TestTopLanguages(t *testing.T) {
	stats := models.LanguageStats{
		"TypeScript": 500,
		"Go":         300,
		"Python":     100,
		"Shell":      50,
		"CSS":        30,
		"HTML":       15,
		"Makefile":   5,
	}

	top := TopLanguages(stats, TopN)
	if len(top) != 5 {
		t.Fatalf("len(TopLanguages) = %d, want 5", len(top))
	}

	wantOrder := []string{"TypeScript", "Go", "Python", "Shell", "CSS"}
	sum := 0
	for i, l := range top {
		if l.Name != wantOrder[i] {
			t.Errorf("top[%d] = %s, want %s", i, l.Name, wantOrder[i])
		}
		if i > 0 && top[i-1].Bytes < l.Bytes {
			t.Errorf("not sorted by bytes descending at %d", i)
		}
		sum += l.Percent
	}
	if sum > 100 {
		t.Errorf("top percentages sum to %d, want <= 100", sum)
	}
	if top[0].Percent != 50 || top[1].Percent != 30 {
		t.Errorf("percents = %d, %d, want 50, 30", top[0].Percent, top[1].Percent)
	}
}

func TestTopLanguages_TieBreakByName(t *testing.T) {
	stats := models.LanguageStats{"Rust": 10, "C": 10, "Go": 10, "Zig": 20}

	top := TopLanguages(stats, 3)
	got := []string{top[0].Name, top[1].Name, top[2].Name}
	want := []string{"Zig", "C", "Go"}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("TopLanguages() order = %v, want %v", got, want)
		}
	}

	for range 20 {
		again := TopLanguages(stats, 3)
		for i := range want {
			if again[i].Name != want[i] {
				t.Fatalf("ordering is not deterministic: %v", again)
			}
		}
	}
}

func TestTopLanguages_Small(t *testing.T) {
	if got := TopLanguages(nil, TopN); len(got) != 0 {
		t.Errorf("TopLanguages(nil) = %v, want empty", got)
	}
	if got := TopLanguages(models.LanguageStats{"Go": 1}, 0); len(got) != 0 {
		t.Errorf("TopLanguages(n=0) = %v, want empty", got)
	}

	got := TopLanguages(models.LanguageStats{"Go": 3, "C": 1}, TopN)
	if len(got) != 2 {
		t.Fatalf("len = %d, want 2", len(got))
	}
	if got[0].Percent != 75 || got[1].Percent != 25 {
		t.Errorf("percents = %d, %d", got[0].Percent, got[1].Percent)
	}
}

func TestTopLanguages_LinguistMetadata(t *testing.T) {
	top := TopLanguages(models.LanguageStats{"Go": 10, "NotARealLanguage": 5}, TopN)

	if top[0].Color == "" {
		t.Error("Go should have a linguist colour")
	}
	if top[0].Kind != "programming" {
		t.Errorf("Kind(Go) = %q, want programming", top[0].Kind)
	}
	if top[1].Kind != "unknown" {
		t.Errorf("Kind(unknown) = %q", top[1].Kind)
	}
}

func TestTopLanguage(t *testing.T) {
	if got := TopLanguage(nil); got != "" {
		t.Errorf("TopLanguage(nil) = %q", got)
	}
	if got := TopLanguage(models.LanguageStats{"Go": 1, "C": 2}); got != "C" {
		t.Errorf("TopLanguage() = %q, want C", got)
	}
}
