// Command textbehind composites styled text behind the subject of a photo
// and writes the result next to the input.
package main

import (
	"context"
	"flag"
	"log"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"textbehind"
	"textbehind/export"
	"textbehind/textlayer"
)

func main() {
	var (
		input    = flag.String("input", "", "input photo (png, jpeg, gif)")
		text     = flag.String("text", "TEXT BEHIND", "text content")
		fontSize = flag.Float64("size", 96, "font size in px")
		colorHex = flag.String("color", "#FFFFFF", "text color as #RRGGBB")
		opacity  = flag.Float64("opacity", 90, "text opacity in percent")
		posX     = flag.Float64("x", 50, "horizontal anchor in percent")
		posY     = flag.Float64("y", 40, "vertical anchor in percent")
		blur     = flag.Float64("blur", 0, "text blur radius in px")
		bold     = flag.Bool("bold", false, "bold text")
		italic   = flag.Bool("italic", false, "italic text")
		format   = flag.String("format", "png", "output format: png or jpeg")
		outDir   = flag.String("out", ".", "output directory")
		verbose  = flag.Bool("v", false, "verbose logging")
	)
	flag.Parse()

	if *input == "" {
		flag.Usage()
		os.Exit(2)
	}
	if *verbose {
		textbehind.SetLogger(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
			Level: slog.LevelDebug,
		})))
	}

	data, err := os.ReadFile(*input)
	if err != nil {
		log.Fatalf("read input: %v", err)
	}

	session, err := textbehind.NewSession(
		textbehind.WithStatus(func(msg string, processing bool) {
			if *verbose {
				log.Println(msg)
			}
		}),
	)
	if err != nil {
		log.Fatalf("create session: %v", err)
	}
	defer session.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
	defer cancel()

	if err := session.LoadImage(ctx, data); err != nil {
		log.Fatalf("load image: %v", err)
	}
	if err := session.AwaitSegmentation(ctx); err != nil {
		log.Fatalf("await segmentation: %v", err)
	}

	style := textlayer.TextStyle{
		Content:    *text,
		FontSize:   *fontSize,
		FontFamily: "Arial",
		Color:      *colorHex,
		OpacityPct: *opacity,
		Pos:        textlayer.Position{X: *posX, Y: *posY},
		Blur:       *blur,
		Bold:       *bold,
		Italic:     *italic,
	}
	if err := session.SetStyle(style); err != nil {
		log.Fatalf("set style: %v", err)
	}

	outFormat := export.Format(*format)
	blob, err := session.Export(outFormat)
	if err != nil {
		log.Fatalf("export: %v", err)
	}

	name := filepath.Join(*outDir, session.ExportFilename(outFormat))
	if err := os.WriteFile(name, blob, 0o644); err != nil {
		log.Fatalf("write output: %v", err)
	}
	log.Printf("Saved %s (%d bytes)\n", name, len(blob))
}
