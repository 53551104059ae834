package main

import (
	"context"
	"flag"
	"fmt"
	"math"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/byrdie/optika/pkg/core"
	"github.com/byrdie/optika/pkg/designs"
	"github.com/byrdie/optika/pkg/table"
)

func main() {
	// Optional .env file for environment defaults
	_ = godotenv.Load()

	designName := flag.String("design", envOr("OPTIKA_DESIGN", "prime-focus"),
		"Design name: 'prime-focus', 'prime-focus-obscured' or 'fold-bench'")
	nPupil := flag.Int("pupil", envOrInt("OPTIKA_PUPIL", 32), "Pupil grid size N (N x N rays)")
	nField := flag.Int("field", envOrInt("OPTIKA_FIELD", 3), "Field grid size N (N x N field points)")
	wavelengths := flag.String("wavelengths", envOr("OPTIKA_WAVELENGTHS", "550e-6"),
		"Comma-separated wavelengths in length units")
	outPath := flag.String("out", "", "Write the ray table to this file")
	codecName := flag.String("codec", "snappy", "Table codec: 'raw', 'snappy' or 'zstd'")
	help := flag.Bool("help", false, "Show help information")
	flag.Parse()

	if *help {
		fmt.Println("Sequential ray tracer")
		fmt.Println("Usage: optika [options]")
		fmt.Println()
		fmt.Println("Options:")
		flag.PrintDefaults()
		fmt.Println()
		fmt.Println("Available designs:")
		fmt.Println("  prime-focus          - Parabolic primary with the sensor at prime focus")
		fmt.Println("  prime-focus-obscured - Prime focus with the sensor package shadowing the primary")
		fmt.Println("  fold-bench           - Flat 45-degree fold mirror diagnostic bench")
		return
	}

	sys, ok := designs.ByName(*designName)
	if !ok {
		fmt.Printf("Unknown design: %s (available: %s)\n", *designName, strings.Join(designs.Names(), ", "))
		os.Exit(1)
	}

	waves, err := parseWavelengths(*wavelengths)
	if err != nil {
		fmt.Printf("Invalid wavelengths: %v\n", err)
		os.Exit(1)
	}
	grid := core.NewUniformGrid(waves, *nField, *nPupil)

	fmt.Printf("Tracing %s: %d rays (%d wavelengths x %dx%d field x %dx%d pupil)\n",
		*designName, grid.NumCells(), len(waves), *nField, *nField, *nPupil, *nPupil)

	startTime := time.Now()
	rf, err := sys.Trace(context.Background(), grid)
	if err != nil {
		fmt.Printf("Trace error: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("Trace completed in %v\n", time.Since(startTime))

	printSummary(rf)

	if *outPath != "" {
		codec, err := table.ParseCodec(*codecName)
		if err != nil {
			fmt.Printf("Invalid codec: %v\n", err)
			os.Exit(1)
		}
		if err := writeTable(*outPath, codec, rf); err != nil {
			fmt.Printf("Error writing table: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("Ray table saved as %s\n", *outPath)
	}
}

// printSummary reports, per field point, the sensor centroid and the RMS
// spot radius about it.
func printSummary(rf *core.RayFunction) {
	residuals := rf.Residuals()
	sensor := rf.Sensor()
	for iw := range rf.Grid.Wavelengths {
		for ify := range rf.Grid.FieldY {
			for ifx := range rf.Grid.FieldX {
				centroid, ok := rf.Centroid(iw, ify, ifx)
				if !ok {
					fmt.Printf("  field (%.2f, %.2f): no surviving rays\n",
						rf.Grid.FieldX[ifx], rf.Grid.FieldY[ify])
					continue
				}
				var sum float64
				n := 0
				for ipy := range rf.Grid.PupilY {
					for ipx := range rf.Grid.PupilX {
						i := rf.Grid.Index(iw, ify, ifx, ipy, ipx)
						if !sensor[i].Alive {
							continue
						}
						r := residuals[i]
						sum += r.X()*r.X() + r.Y()*r.Y()
						n++
					}
				}
				rms := math.Sqrt(sum / float64(n))
				fmt.Printf("  field (%.2f, %.2f): centroid (%.4f, %.4f), RMS spot radius %.3g (%d rays)\n",
					rf.Grid.FieldX[ifx], rf.Grid.FieldY[ify],
					centroid.X(), centroid.Y(), rms, n)
			}
		}
	}
}

func writeTable(path string, codec table.Codec, rf *core.RayFunction) error {
	file, err := os.Create(path)
	if err != nil {
		return err
	}
	defer file.Close()
	return table.Write(file, codec, rf)
}

func parseWavelengths(s string) ([]float64, error) {
	parts := strings.Split(s, ",")
	out := make([]float64, 0, len(parts))
	for _, p := range parts {
		w, err := strconv.ParseFloat(strings.TrimSpace(p), 64)
		if err != nil {
			return nil, err
		}
		out = append(out, w)
	}
	return out, nil
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envOrInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}
