package section

// EndMarker is the 4-byte literal "7777" that terminates every GRIB2
// message (Section 8).
const EndMarker = "7777"

// IsEndMarker reports whether the given 4 bytes are the GRIB2 end marker.
func IsEndMarker(b []byte) bool {
	return len(b) == 4 && string(b) == EndMarker
}
