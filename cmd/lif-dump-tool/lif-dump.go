package main

import (
	"fmt"
	"os"

	"github.com/Arcadia-Science/readlif"
)

// Useful diagnostic tool to confirm what the scanner and the metadata
// walker actually see in a container.
func main() {
	if len(os.Args) < 2 {
		fmt.Println("Usage: lif-dump <file.lif>")
		os.Exit(1)
	}

	file, err := readlif.Open(os.Args[1])
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		os.Exit(1)
	}
	defer file.Close()

	fmt.Printf("%s (%d bytes, header %d chars)\n", file.Path, file.Size, len(file.XMLHeader))
	if file.Truncated {
		fmt.Println("container is TRUNCATED")
	}
	for _, w := range file.Warnings {
		fmt.Printf("warning: %s\n", w)
	}

	offsets := file.Offsets()
	fmt.Printf("\n%d image(s):\n", file.ImageCount())

	n := 0
	for img := range file.Images(0) {
		rng := offsets[n]
		fmt.Printf("\n[%d] %s%s\n", n, img.ImagePath(), img.Name())
		fmt.Printf("    %s, %d channel(s), bit depth %v\n", img.Dims(), img.Channels(), img.BitDepth())
		fmt.Printf("    display axes (%d, %d)\n", img.DisplayDims()[0], img.DisplayDims()[1])
		if rng.Length == 0 {
			fmt.Printf("    payload missing (truncated), anchored at offset %d\n", rng.Offset)
		} else {
			fmt.Printf("    payload %d bytes at offset %d\n", rng.Length, rng.Offset)
		}
		for d := 1; d <= 4; d++ {
			if scale, ok := img.Scale(d); ok {
				fmt.Printf("    scale[%d] = %.4f\n", d, scale)
			}
		}
		if tiles := img.MosaicTiles(); len(tiles) > 0 {
			fmt.Printf("    %d mosaic tile(s)\n", len(tiles))
		}
		n++
	}
}
