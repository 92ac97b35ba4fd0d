package geo

// DefaultPrecision is the geohash length used whenever a user coordinate is
// logged or attached to a span. Six characters is a cell of about 1.2 km by
// 0.6 km, coarse enough not to pinpoint a home.
const DefaultPrecision = 6

const geohashAlphabet = "0123456789bcdefghjkmnpqrstuvwxyz"

// span is one axis of the shrinking geohash cell.
type span struct{ lo, hi float64 }

// bisect keeps the half of s containing v and reports whether it was the
// upper half.
func (s *span) bisect(v float64) bool {
	mid := (s.lo + s.hi) / 2
	if v > mid {
		s.lo = mid
		return true
	}
	s.hi = mid
	return false
}

// Encode returns the geohash of (lat, lng) with precision characters. Bits
// alternate longitude first; each character carries five of them. A
// precision below 1 means DefaultPrecision.
func Encode(lat, lng float64, precision int) string {
	if precision < 1 {
		precision = DefaultPrecision
	}

	lngSpan, latSpan := span{-180, 180}, span{-90, 90}
	out := make([]byte, precision)
	for i := range out {
		var idx byte
		for bit := 0; bit < 5; bit++ {
			var upper bool
			if (i*5+bit)%2 == 0 {
				upper = lngSpan.bisect(lng)
			} else {
				upper = latSpan.bisect(lat)
			}
			idx <<= 1
			if upper {
				idx |= 1
			}
		}
		out[i] = geohashAlphabet[idx]
	}
	return string(out)
}

// Coarse returns the point's geohash at DefaultPrecision.
func (p Point) Coarse() string {
	return Encode(p.Lat, p.Lng, DefaultPrecision)
}
