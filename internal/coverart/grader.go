package coverart

import "github.com/hifiberry/acr/internal/model"

// formatRank orders formats by preference: PNG > JPEG > WEBP > other
// (spec §4.6).
var formatRank = map[string]int{
	"image/png":  3,
	"image/jpeg": 2,
	"image/webp": 1,
}

// minSaneBytes bounds the "sanity" component of the grade: very small
// files are almost always broken/placeholder images.
const minSaneBytes = 4 * 1024

// providerRank assigns a preference rank per provider's internal name,
// used as a tie-breaker component of the grade (spec §4.6 "provider
// preference rank"); unlisted providers rank lowest but are never
// excluded.
var providerRank = map[string]int{
	"local":     100,
	"spotify":   80,
	"fanarttv":  70,
	"theaudiodb": 60,
	"lastfm":    50,
}

// Grade is the pure scoring function spec §4.6 requires: a function of
// the ImageInfo and the supplying provider's internal name, combining
// pixel area, format preference, provider preference, and a small-file
// penalty. Ties are broken by caller-side stable sort, not here.
func Grade(img model.ImageInfo, providerInternalName string) int {
	score := 0

	if img.Width != nil && img.Height != nil {
		area := (*img.Width) * (*img.Height)
		score += area / 1000
	}

	if img.Format != nil {
		score += formatRank[*img.Format] * 1000
	}

	score += providerRank[providerInternalName] * 10

	if img.SizeBytes != nil && *img.SizeBytes < minSaneBytes {
		score -= 5000
	}

	return score
}
