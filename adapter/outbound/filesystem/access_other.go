//go:build !unix

package filesystem

import "os"

func checkReadable(dir string) error {
	f, err := os.Open(dir)
	if err != nil {
		return err
	}
	return f.Close()
}
