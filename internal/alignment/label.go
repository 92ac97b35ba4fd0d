package alignment

// Label returns the display label for an alignment strength.
func Label(strength int) string {
	switch {
	case strength >= 80:
		return "Highly Aligned"
	case strength >= 60:
		return "Aligned"
	case strength > 40:
		return "Neutral"
	case strength >= 20:
		return "Opposed"
	default:
		return "Highly Opposed"
	}
}
