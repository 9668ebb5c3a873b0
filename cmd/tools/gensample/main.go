package main

import (
	"flag"
	"fmt"
	"log"

	"github.com/tealeg/xlsx/v3"
)

// gensample writes a small sample workbook in the format the bulk-import
// endpoint expects, for manual testing of the upload flow.
func main() {
	out := flag.String("out", "sample_inventory.xlsx", "Output file path")
	flag.Parse()

	type sampleItem struct {
		name        string
		description string
		price       float64
		quantity    int
	}
	samples := []sampleItem{
		{"Sony PS5", "Next-gen console", 499.99, 10},
		{"iPhone 15", "Latest smartphone", 999.00, 25},
		{"Logitech Mouse", "Wireless mouse", 49.50, 100},
		{"Gaming Chair", "Ergonomic chair", 250.00, 15},
	}

	file := xlsx.NewFile()
	sheet, err := file.AddSheet("Inventory")
	if err != nil {
		log.Fatalf("Failed to add sheet: %v", err)
	}

	header := sheet.AddRow()
	for _, name := range []string{"Name", "Description", "Price", "Quantity"} {
		header.AddCell().SetString(name)
	}

	for _, s := range samples {
		row := sheet.AddRow()
		row.AddCell().SetString(s.name)
		row.AddCell().SetString(s.description)
		row.AddCell().SetFloat(s.price)
		row.AddCell().SetInt(s.quantity)
	}

	if err := file.Save(*out); err != nil {
		log.Fatalf("Failed to save workbook: %v", err)
	}
	fmt.Printf("Sample file created at %s (%d rows)\n", *out, len(samples))
}
