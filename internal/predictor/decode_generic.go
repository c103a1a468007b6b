package predictor

// decodeASM delegates to the pure Go predictor decode.
// The platform-specific SIMD assembly (amd64/arm64) was never provided in
// this build, so all platforms use the pure Go fallback, which DecodeSIMD's
// callers already treat as equivalent.
func decodeASM(data []byte) {
	decodePureGo(data)
}
