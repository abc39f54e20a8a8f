package search

// binarySniffSize is how much of a file's head is inspected for NUL bytes.
const binarySniffSize = 512

// looksBinary checks whether data appears to be binary by looking for null bytes
// in the first 512 bytes.
func looksBinary(data []byte) bool {
	checkSize := min(len(data), binarySniffSize)
	for i := 0; i < checkSize; i++ {
		if data[i] == 0 {
			return true
		}
	}
	return false
}
