// verify_passthrough counts and hashes everything on stdin so a stream can
// be compared before and after pipemeter.
//
// Usage:
//
//	head -c 10000000 /dev/urandom > in.bin
//	go run ./cmd/verify_passthrough < in.bin
//	pipemeter < in.bin | go run ./cmd/verify_passthrough
package main

import (
	"encoding/hex"
	"fmt"
	"io"
	"os"
	"time"

	sha256 "github.com/minio/sha256-simd"
)

func main() {
	start := time.Now()
	n, sum, err := digest(os.Stdin)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	duration := time.Since(start)

	fmt.Printf("%s  %d bytes\n", sum, n)
	fmt.Fprintf(os.Stderr, "Read %d bytes in %v\n", n, duration)
}

// digest returns the byte count and hex SHA-256 of r.
func digest(r io.Reader) (int64, string, error) {
	h := sha256.New()
	n, err := io.Copy(h, r)
	if err != nil {
		return n, "", err
	}
	return n, hex.EncodeToString(h.Sum(nil)), nil
}
