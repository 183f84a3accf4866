// Package artifact stores chip images on an afero filesystem.
//
// A File is the destination of a chip read and the source of a verify. It
// moves data in blocks and knows nothing about the image format:
//
//	img := artifact.NewOS("dump.bin")
//	if err := img.Create(); err != nil {
//	    log.Fatal(err)
//	}
//	// hand img to the worker; it writes every block and closes it
//
// Tests and tools that keep images in memory use afero.NewMemMapFs:
//
//	fs := afero.NewMemMapFs()
//	img := artifact.New(fs, "/dump.bin")
package artifact
