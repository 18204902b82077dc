package station

// DecimalDegrees converts a degrees/minutes/seconds angle with a hemisphere letter
// to signed decimal degrees. 'S' and 'W' are negative.
func DecimalDegrees(degrees, minutes, seconds float64, hemisphere byte) float64 {
	dd := degrees + minutes/60 + seconds/3600
	switch hemisphere {
	case 'S', 's', 'W', 'w':
		return -dd
	}
	return dd
}
