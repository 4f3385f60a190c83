package listing

import (
	"strconv"

	"github.com/iliyamo/dorm-finder/internal/model"
)

// PricePlaceholder is shown when no price signal exists. Unknown prices are
// never rendered as zero.
const PricePlaceholder = "-"

// PriceText renders a monthly price range, e.g. "฿3,000 - 5,000 / Month".
func PriceText(p model.PriceRange) string {
	lo, okLo := p.Lower()
	hi, okHi := p.Upper()
	if !okLo || !okHi {
		return PricePlaceholder
	}
	if lo > hi {
		lo, hi = hi, lo
	}
	if lo == hi {
		return "฿" + groupThousands(lo) + " / Month"
	}
	return "฿" + groupThousands(lo) + " - " + groupThousands(hi) + " / Month"
}

func groupThousands(n int) string {
	s := strconv.Itoa(n)
	neg := false
	if n < 0 {
		neg = true
		s = s[1:]
	}
	var out []byte
	for i := range s {
		if i > 0 && (len(s)-i)%3 == 0 {
			out = append(out, ',')
		}
		out = append(out, s[i])
	}
	if neg {
		return "-" + string(out)
	}
	return string(out)
}
