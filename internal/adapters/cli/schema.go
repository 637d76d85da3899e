package cli

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/invopop/jsonschema"
	"github.com/spf13/cobra"

	"github.com/andrescamacho/xnova-go/internal/adapters/persistence"
)

// NewSchemaCommand prints the JSON schema of the persisted player document
func NewSchemaCommand() *cobra.Command {
	var outPath string

	cmd := &cobra.Command{
		Use:   "schema",
		Short: "Print the JSON schema of stored player documents",
		Long: `Print the JSON schema of the document stored per player. Useful to check
exports or hand-edited fixtures.

Examples:
  xnova schema
  xnova schema --out docs/player-document.schema.json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := json.MarshalIndent(BuildDocumentSchema(), "", "  ")
			if err != nil {
				return fmt.Errorf("marshal schema: %w", err)
			}
			data = append(data, '\n')

			if outPath == "" {
				_, err := cmd.OutOrStdout().Write(data)
				return err
			}
			if err := writeFileAtomic(outPath, data); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "✓ Schema written to %s\n", outPath)
			return nil
		},
	}

	cmd.Flags().StringVar(&outPath, "out", "", "Write to this file instead of stdout")

	return cmd
}

// BuildDocumentSchema reflects the persisted player document
func BuildDocumentSchema() *jsonschema.Schema {
	reflector := jsonschema.Reflector{}
	schema := reflector.Reflect(new(persistence.PlayerDocument))
	schema.Title = "Xnova Player Document"
	schema.Description = fmt.Sprintf("Persisted state of one player, schema version %d. Timestamps are epoch seconds.",
		persistence.DocumentSchemaVersion)
	return schema
}

func writeFileAtomic(outPath string, data []byte) error {
	if err := os.MkdirAll(filepath.Dir(outPath), 0o755); err != nil {
		return fmt.Errorf("create schema directory: %w", err)
	}
	tmpPath := outPath + ".tmp"
	if err := os.WriteFile(tmpPath, data, 0o644); err != nil {
		return fmt.Errorf("write temp schema: %w", err)
	}
	if err := os.Rename(tmpPath, outPath); err != nil {
		return fmt.Errorf("replace schema: %w", err)
	}
	return nil
}
