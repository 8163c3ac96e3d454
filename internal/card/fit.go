package card

// MeasureFunc reports the rendered pixel width of text at a font size.
// Keeping measurement behind a function makes the fitting algorithm
// independent of any drawing surface.
type MeasureFunc func(text string, size float64) float64

// FitFontSize finds the largest font size, starting at max and shrinking
// in fixed steps, at which text measures at or under maxWidth. The min
// floor is accepted even when the text still overflows: there is no
// wrapping engine, so a too-long string is drawn small rather than not
// at all. The result never exceeds max and never goes below min.
func FitFontSize(text string, maxWidth, min, max, step float64, measure MeasureFunc) float64 {
	if max < min {
		return min
	}
	for size := max; size > min; size -= step {
		if measure(text, size) <= maxWidth {
			return size
		}
	}
	return min
}
