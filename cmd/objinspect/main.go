// objinspect loads OBJ models without a window and reports what the viewer
// would upload for them.
package main

import (
	"flag"
	"fmt"
	"os"

	"go.uber.org/zap"

	"github.com/Faultbox/objview/internal/assets"
	"github.com/Faultbox/objview/internal/engine/gpu"
	"github.com/Faultbox/objview/internal/engine/mesh"
	"github.com/Faultbox/objview/internal/engine/texture"
	"github.com/Faultbox/objview/internal/logger"
)

func main() {
	fs := flag.NewFlagSet("objinspect", flag.ExitOnError)
	materials := fs.Bool("materials", false, "Use mtllib/usemtl materials")
	tex := fs.String("texture", "", "Model-level texture")
	noFlip := fs.Bool("no-flip", false, "Do not flip textures vertically")
	root := fs.String("root", "", "Extra asset search root")
	debug := fs.Bool("debug", false, "Enable debug logging")
	fs.Usage = printUsage
	_ = fs.Parse(os.Args[1:])

	if fs.NArg() < 1 {
		printUsage()
		os.Exit(1)
	}

	level := "warn"
	if *debug {
		level = "debug"
	}
	if err := logger.Init(level, ""); err != nil {
		fmt.Fprintf(os.Stderr, "Logger error: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	src := assets.NewManager(".")
	if *root != "" {
		src.AddRoot(*root)
	}
	defer src.Close()

	dev := gpu.NewMemoryDevice()
	deps := mesh.Deps{Source: src, Device: dev, Loader: texture.NewFileLoader(src, dev)}
	opts := mesh.Options{Texture: *tex, Materials: *materials, FlipTextures: !*noFlip}

	failed := 0
	for _, path := range fs.Args() {
		if err := inspect(deps, dev, path, opts); err != nil {
			logger.Error("inspect failed", zap.String("path", path), zap.Error(err))
			fmt.Fprintf(os.Stderr, "%s: %v\n", path, err)
			failed++
		}
	}

	if dev.LiveTotal() != 0 {
		fmt.Fprintf(os.Stderr, "warning: %d device objects still live\n", dev.LiveTotal())
	}
	if failed > 0 {
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Println(`objinspect - OBJ model inspector

Usage:
  objinspect [options] <model.obj>...

Options:
  -materials       Use mtllib/usemtl materials
  -texture <path>  Model-level texture
  -no-flip         Do not flip textures vertically
  -root <dir>      Extra asset search root
  -debug           Enable debug logging

Examples:
  objinspect models/cube.obj
  objinspect -materials -root assets models/scene.obj`)
}

func inspect(deps mesh.Deps, dev *gpu.MemoryDevice, path string, opts mesh.Options) error {
	m, err := mesh.Load(deps, path, opts)
	if err != nil {
		return err
	}
	defer m.Release()

	stats := m.Stats()
	fmt.Printf("Model: %s\n", path)
	fmt.Printf("  Kind:      %s\n", m.Kind())
	fmt.Printf("  Faces:     %d\n", stats.Faces)
	fmt.Printf("  Vertices:  %d\n", stats.Vertices)
	fmt.Printf("  Indices:   %d\n", stats.Indices)
	fmt.Printf("  Groups:    %d\n", stats.Groups)
	if stats.Faces > 0 {
		fmt.Printf("  Dedup:     %.1f%% of corners reused\n",
			100*(1-float64(stats.Vertices)/float64(stats.Indices)))
		fmt.Printf("  Bounds:    min %v max %v\n", stats.Bounds.Min, stats.Bounds.Max)
		fmt.Printf("  Size:      %v\n", stats.Bounds.Size())
	}
	fmt.Printf("  GPU bytes: %d\n", dev.Bytes())

	if m.Kind() == mesh.SingleTexture {
		fmt.Printf("  Texture:   %s (loaded: %t)\n", opts.Texture, m.Texture() != 0)
	}
	if mats := m.Materials(); len(mats) > 0 {
		fmt.Printf("  Materials:\n")
		for _, mat := range mats {
			status := "no texture"
			switch {
			case mat.HasTexture():
				status = mat.TexturePath
			case mat.DiffuseMap != "":
				status = mat.TexturePath + " (failed)"
			}
			fmt.Printf("    %-20s Kd %v  %s\n", mat.Name, mat.Diffuse, status)
		}
	}
	fmt.Println()
	return nil
}
