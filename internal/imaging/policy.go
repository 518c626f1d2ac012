package imaging

// TargetWidth picks the encode width for a source frame: wider originals are
// downsampled more aggressively to bound provider upload size and latency.
// A zero return means the frame is already small enough to send as-is.
func TargetWidth(sourceWidth int) int {
	switch {
	case sourceWidth > 3000:
		return 640
	case sourceWidth > 1500:
		return 512
	case sourceWidth > 800:
		return 384
	default:
		return 0
	}
}
