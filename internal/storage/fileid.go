// Package storage implements the attachment blob store boundary on local disk.
package storage

import "crypto/rand"

const fileIDPool = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

// NewFileID generates a short public file identifier: "F" plus 7 random
// characters from an uppercase alphanumeric pool.
func NewFileID() string {
	buf := make([]byte, 7)
	if _, err := rand.Read(buf); err != nil {
		// crypto/rand only fails when the OS entropy source is broken.
		panic(err)
	}

	id := make([]byte, 0, 8)
	id = append(id, 'F')
	for _, b := range buf {
		id = append(id, fileIDPool[int(b)%len(fileIDPool)])
	}
	return string(id)
}
