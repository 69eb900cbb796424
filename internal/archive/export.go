package archive

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/parquet-go/parquet-go"
	"gopkg.in/yaml.v3"
)

// Formats lists the supported export formats.
var Formats = []string{"json", "yaml", "parquet"}

// exportRow is the flat parquet layout of an Item. Photos are left out.
type exportRow struct {
	ID          string   `parquet:"id"`
	Title       string   `parquet:"title"`
	Price       int64    `parquet:"price"`
	Description string   `parquet:"description"`
	Tags        []string `parquet:"tags"`
	Date        string   `parquet:"date"`
	RemoteID    string   `parquet:"remote_id,optional"`
	HasImage    bool     `parquet:"has_image"`
}

// Export writes items to w in the given format.
func Export(w io.Writer, items []Item, format string) error {
	switch strings.ToLower(format) {
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(items)
	case "yaml", "yml":
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(items); err != nil {
			return fmt.Errorf("failed to encode yaml: %w", err)
		}
		return enc.Close()
	case "parquet":
		return exportParquet(w, items)
	default:
		return fmt.Errorf("unsupported export format: %s (supported: %s)", format, strings.Join(Formats, ", "))
	}
}

func exportParquet(w io.Writer, items []Item) error {
	rows := make([]exportRow, len(items))
	for i, item := range items {
		rows[i] = exportRow{
			ID:          item.ID,
			Title:       item.Title,
			Price:       int64(item.Price),
			Description: item.Description,
			Tags:        item.Tags,
			Date:        item.Date,
			RemoteID:    item.RemoteID,
			HasImage:    item.Image != "",
		}
	}

	writer := parquet.NewGenericWriter[exportRow](w)
	if _, err := writer.Write(rows); err != nil {
		return fmt.Errorf("failed to write parquet rows: %w", err)
	}
	if err := writer.Close(); err != nil {
		return fmt.Errorf("failed to close parquet writer: %w", err)
	}
	return nil
}
