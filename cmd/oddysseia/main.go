package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"runtime"

	"github.com/tuuundra/oddysseia-sub000/internal/config"
	"github.com/tuuundra/oddysseia-sub000/internal/hotspot"
	"github.com/tuuundra/oddysseia-sub000/internal/preview"
	"github.com/tuuundra/oddysseia-sub000/internal/source"
	"github.com/tuuundra/oddysseia-sub000/internal/system"
)

func main() {
	system.InitResourceLimits()

	dirs := []string{"input", "output"}
	for _, d := range dirs {
		os.MkdirAll(d, 0755)
	}

	configPtr := flag.String("config", "", "Manifest path (default: most recent YAML in input/)")
	writeConfigPtr := flag.String("write-config", "", "Write the default manifest to this path and exit")
	outPtr := flag.String("out", "", "Frame output directory (overrides manifest)")
	framesPtr := flag.Int("frames", 0, "Frame count (overrides manifest)")
	widthPtr := flag.Int("width", 0, "Frame width (overrides manifest)")
	heightPtr := flag.Int("height", 0, "Frame height (overrides manifest)")
	workersPtr := flag.Int("workers", 0, "Render workers (overrides manifest; manifest default falls back to CPU count)")
	sharePtr := flag.String("share-url", "", "Stamp a QR code for this link on every frame")
	statsPtr := flag.Bool("stats", false, "Print the performance report")
	verbosePtr := flag.Bool("verbose", false, "Log sequence state changes")
	hotspotsPtr := flag.String("hotspots", "", "Analyze this artwork for trigger regions and exit")

	flag.Parse()

	if *writeConfigPtr != "" {
		if err := config.Write(config.Default(), *writeConfigPtr); err != nil {
			log.Fatalf("[-] Failed to write manifest: %v", err)
		}
		fmt.Printf("[+++] Default manifest written: %s\n", *writeConfigPtr)
		return
	}

	if *hotspotsPtr != "" {
		if err := analyzeHotspots(*hotspotsPtr); err != nil {
			log.Fatalf("[-] Hotspot analysis failed: %v", err)
		}
		return
	}

	configPath := *configPtr
	if configPath == "" {
		latest, err := config.FindLatestManifest("input")
		if err != nil {
			fmt.Println("[!] No manifest found in input/, using built-in defaults")
		} else {
			configPath = latest
			fmt.Printf("[*] Manifest: %s\n", configPath)
		}
	}

	var cfg *config.Config
	if configPath != "" {
		loaded, err := config.Load(configPath)
		if err != nil {
			log.Fatalf("[-] %v", err)
		}
		cfg = loaded
	} else {
		cfg = config.Default()
	}

	if *outPtr != "" {
		cfg.Preview.OutDir = *outPtr
	}
	if *framesPtr > 0 {
		cfg.Preview.Frames = *framesPtr
	}
	if *widthPtr > 0 {
		cfg.Preview.Width = *widthPtr
	}
	if *heightPtr > 0 {
		cfg.Preview.Height = *heightPtr
	}
	if *workersPtr > 0 {
		cfg.Preview.Workers = *workersPtr
	}
	if cfg.Preview.Workers <= 0 {
		cfg.Preview.Workers = runtime.NumCPU()
	}
	if *sharePtr != "" {
		cfg.Preview.ShareURL = *sharePtr
	}
	if *statsPtr {
		cfg.Preview.Stats = true
	}

	fmt.Println("--- [ODDYSSEIA TIMELINE EXPORT] ---")
	fmt.Printf("[*] Scenes: %d | Breakpoints: %d | Frames: %d\n",
		len(cfg.Scenes), len(cfg.Breakpoints), cfg.Preview.Frames)
	fmt.Printf("[*] Resolution: %dx%d | Workers: %d\n",
		cfg.Preview.Width, cfg.Preview.Height, cfg.Preview.Workers)
	fmt.Println("-----------------------------------")

	exp, err := preview.NewExporter(cfg)
	if err != nil {
		log.Fatalf("[-] %v", err)
	}
	if *verbosePtr {
		exp.SetVerbose(true)
	}

	report, err := exp.Export(context.Background())
	if err != nil {
		log.Fatalf("[-] Export failed: %v", err)
	}

	if cfg.Preview.Stats {
		report.Print()
	}

	fmt.Printf("[+++] Done! Frames in %s\n", cfg.Preview.OutDir)
}

// analyzeHotspots proposes trigger regions for a piece of artwork and prints
// them, so a narrative author can pick breakpoint coordinates.
func analyzeHotspots(path string) error {
	src, err := source.Open(path)
	if err != nil {
		return err
	}
	defer src.Close()

	img, err := src.RenderPage(0, 150)
	if err != nil {
		return err
	}

	det, err := hotspot.NewDetector("contrast")
	if err != nil {
		return err
	}

	regions, err := hotspot.Propose(det, img, 8)
	if err != nil {
		return err
	}

	if len(regions) == 0 {
		fmt.Println("[!] No trigger regions found")
		return nil
	}

	fmt.Printf("[*] %d trigger region(s) in %s:\n", len(regions), path)
	for i, r := range regions {
		fmt.Printf("[>] #%d  %v  score %.2f\n", i+1, r.Rect, r.Score)
	}
	return nil
}
