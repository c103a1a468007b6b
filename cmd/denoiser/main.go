// denoiser runs the directional-fan cross-bilateral kernel once over
// a single multi-channel OpenEXR frame and writes tone-mapped PNGs of
// the input and the denoised output to ./out/.
//
// Usage:
//
//	denoiser <input.exr>
package main

import (
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/ashgrovefilm/denoiser/arena"
	"github.com/ashgrovefilm/denoiser/denoise"
	"github.com/ashgrovefilm/denoiser/loader"
	"github.com/ashgrovefilm/denoiser/tonemap"
)

// tiles is the number of contiguous bands (not aligned to rows) the
// kernel's valid origin range is split across; a fixed constant, not a
// CLI flag (spec §6 allows none). The number of goroutines running the
// bands is the exr worker pool's, taken from the host's GOMAXPROCS.
const tiles = 16

func main() {
	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: denoiser <input.exr>\n")
	}
	flag.Parse()

	args := flag.Args()
	if len(args) != 1 {
		flag.Usage()
		os.Exit(1)
	}

	if err := run(args[0]); err != nil {
		fail(err)
	}
}

// run executes the full pipeline. Precondition violations surface as
// panics from the arena and pixel-layout shaper (spec §7); recover
// here so they reach the same diagnostic path as an ordinary error.
func run(inputPath string) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%v", r)
		}
	}()

	img, loadErr := loader.Load(inputPath)
	if loadErr != nil {
		return loadErr
	}
	width, height := img.Width, img.Height
	total := width * height

	a, arenaErr := arena.New(arena.DefaultSize)
	if arenaErr != nil {
		return arenaErr
	}
	defer a.Close()
	a.Prefault()

	// Cache-colouring offsets per spec §5's observed values: color,
	// albedo and z share offset 0, normals sit at 128, dst at 192.
	color := denoise.UploadChannelsInterleave(a, 0, img, []string{"R", "G", "B"})
	albedo := denoise.UploadChannelsInterleave(a, 0, img, []string{"Albedo.R", "Albedo.G", "Albedo.B"})
	normals := denoise.UploadChannelsInterleave(a, 128, img, []string{"Ns.X", "Ns.Y", "Ns.Z"})

	z := a.Allocate(0, total*3)
	denoise.Demodulate(z, color, albedo)

	dst := a.Allocate(192, total*3)
	copy(dst, color) // pixels outside the valid range keep the input value

	start := time.Now()
	if err := denoise.FilterInterleavedParallel(width, height, tiles, dst, albedo, z, normals); err != nil {
		return fmt.Errorf("denoise: %w", err)
	}
	elapsed := time.Since(start)

	if err := os.MkdirAll("out", 0o755); err != nil {
		return fmt.Errorf("creating out/: %w", err)
	}
	if err := tonemap.SaveInterleaved("out/in.png", width, height, color); err != nil {
		return err
	}
	if err := tonemap.SaveInterleaved("out/out.png", width, height, dst); err != nil {
		return err
	}

	fmt.Printf("denoised %dx%d in %.3fms\n", width, height, float64(elapsed)/float64(time.Millisecond))
	return nil
}

// fail prints a red-bold diagnostic and exits 1, per spec §6/§7. No
// ANSI colour library appears anywhere in the retrieved pack, so the
// SGR codes are emitted directly rather than reaching for a dependency
// the corpus never shows reaching for.
func fail(err error) {
	fmt.Fprintf(os.Stderr, "\x1b[1;31merror: %v\x1b[0m\n", err)
	os.Exit(1)
}
