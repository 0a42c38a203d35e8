package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/mentevital/terapia-admin/internal"
	"github.com/mentevital/terapia-admin/internal/export"
	"github.com/spf13/cobra"
)

var (
	exportFormat string
	exportOutput string
	exportAll    bool
)

var exportCmd = &cobra.Command{
	Use:   "export <enfoques|productos>",
	Short: "Exporta un listado del catálogo (json, jsonl, yaml, md)",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		exporter, err := export.NewExporter(exportFormat)
		if err != nil {
			return err
		}

		ctx := context.Background()
		opts := internal.ListOptions{OnlyActive: !exportAll}

		var listing *export.Listing
		switch args[0] {
		case "enfoques":
			client, store, err := newEnfoquesClient()
			if err != nil {
				return err
			}
			defer store.Close()
			defer client.Close()
			if err := client.List(ctx, opts); err != nil {
				return fmt.Errorf("%s", client.Err())
			}
			listing = export.FromEnfoques(client.Records())
		case "productos":
			client, store, err := newProductosClient()
			if err != nil {
				return err
			}
			defer store.Close()
			defer client.Close()
			if err := client.List(ctx, opts); err != nil {
				return fmt.Errorf("%s", client.Err())
			}
			listing = export.FromProductos(client.Records())
		default:
			return fmt.Errorf("catálogo desconocido: %q (se espera enfoques o productos)", args[0])
		}

		out := os.Stdout
		if exportOutput != "" {
			f, err := os.Create(exportOutput)
			if err != nil {
				return fmt.Errorf("no fue posible crear %s: %w", exportOutput, err)
			}
			defer f.Close()
			out = f
		}

		if err := exporter.Export(listing, out); err != nil {
			return err
		}
		if exportOutput != "" {
			fmt.Println(successStyle.Render(fmt.Sprintf("Exportado a %s", exportOutput)))
		}
		return nil
	},
}

func init() {
	exportCmd.Flags().StringVar(&exportFormat, "format", "json", "Formato de salida (json, jsonl, yaml, md)")
	exportCmd.Flags().StringVarP(&exportOutput, "output", "o", "", "Archivo de salida (por defecto stdout)")
	exportCmd.Flags().BoolVar(&exportAll, "all", false, "Incluir registros inactivos")

	rootCmd.AddCommand(exportCmd)
}
