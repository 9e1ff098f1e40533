package jsonescape

// MaxLength returns the maximum possible length of the JSON string literal
// produced for an input of length bytes. It also includes the padding the
// window kernels need to store a full vector past the last escape.
func MaxLength(length int) int {
	return length*6 + // all characters escaped as \u00XX
		32 + // allocation for vector stores overrunning the written length
		3 // surrounding quotes
}
