package main

import (
	"fmt"
	"os"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	flag "github.com/spf13/pflag"

	"github.com/kpauljoseph/pdf2cbz/internal/inspect"
	"github.com/kpauljoseph/pdf2cbz/internal/pdf"
)

// metadataKeys are printed in this order when present.
var metadataKeys = []string{"title", "author", "subject", "creator", "producer"}

func main() {
	pdfPath := flag.String("file", "", "path to PDF file")
	perPage := flag.Bool("pages", false, "also list every page's dimensions")
	flag.Parse()

	if *pdfPath == "" && flag.NArg() == 1 {
		*pdfPath = flag.Arg(0)
	}
	if *pdfPath == "" {
		fmt.Fprintln(os.Stderr, "usage: pdfinspect [--pages] <file.pdf>")
		os.Exit(1)
	}

	doc, err := pdf.Open(*pdfPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error opening PDF: %v\n", err)
		os.Exit(1)
	}
	defer doc.Close()

	pageCount := doc.PageCount()
	widths := make([]float64, 0, pageCount)
	heights := make([]float64, 0, pageCount)
	for i := 0; i < pageCount; i++ {
		w, h, err := doc.PageSize(i)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Warning: could not read size of page %d: %v\n", i, err)
			continue
		}
		widths = append(widths, w)
		heights = append(heights, h)
	}

	report := inspect.Summarize(widths, heights)

	fmt.Println("\n" + divider)
	fmt.Printf("PDF Inspection: %s\n", *pdfPath)
	fmt.Println(divider)

	printMetadata(doc.Metadata())

	fmt.Printf("\nPages: %d\n", pageCount)
	fmt.Println("Size (points, outliers excluded on long documents):")
	fmt.Printf("  Width:  %.2f\n", report.AvgWidth)
	fmt.Printf("  Height: %.2f\n", report.AvgHeight)
	fmt.Print(divider + "\n\n")

	if *perPage {
		printPageDims(*pdfPath)
	}
}

const divider = "=================================================="

func printMetadata(metadata map[string]string) {
	found := false
	for _, key := range metadataKeys {
		if value := metadata[key]; value != "" {
			if !found {
				fmt.Println("\nMetadata:")
				found = true
			}
			fmt.Printf("  %s: %s\n", key, value)
		}
	}
	if !found {
		fmt.Println("\nMetadata: none found")
	}
}

// printPageDims lists per-page dimensions via pdfcpu, which reads the
// page tree directly without rasterizing anything.
func printPageDims(path string) {
	dims, err := api.PageDimsFile(path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error getting page dimensions: %v\n", err)
		os.Exit(1)
	}

	for i, dim := range dims {
		fmt.Printf("Page %d: %.3f x %.3f points\n", i+1, dim.Width, dim.Height)
	}
}
