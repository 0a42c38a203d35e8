package cmd

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/mentevital/terapia-admin/internal"
	"github.com/spf13/cobra"
)

var cacheCmd = &cobra.Command{
	Use:   "cache",
	Short: "Inspecciona o limpia la caché optimista local",
	Long: `La caché optimista conserva los registros recién escritos para que los
listados no los pierdan mientras el backend alcanza consistencia. Estos
comandos permiten revisar su contenido y descartarla por completo.`,
}

var cacheInspectCmd = &cobra.Command{
	Use:   "inspect",
	Short: "Muestra las entradas de la caché por tipo de entidad",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := loadConfig()
		store := openOverlayStore(cfg)
		defer store.Close()

		enfoques := internal.NewOverlayCache[*internal.Enfoque](internal.OverlayKindEnfoques, store, cfg.OverlayMaxAge)
		productos := internal.NewOverlayCache[*internal.Producto](internal.OverlayKindProductos, store, cfg.OverlayMaxAge)

		w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)

		fmt.Println(headerStyle.Render("Enfoques en caché"))
		fmt.Fprintln(w, "ID\tNOMBRE\tESTATUS\tCAPTURADO")
		for key, entry := range enfoques.Entries() {
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", key, entry.Record.Nombre, entry.Record.Estatus,
				entry.CapturedAt.Format("2006-01-02 15:04:05"))
		}
		w.Flush()

		fmt.Println()
		fmt.Println(headerStyle.Render("Productos en caché"))
		fmt.Fprintln(w, "ID\tNOMBRE\tESTATUS\tCAPTURADO")
		for key, entry := range productos.Entries() {
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", key, entry.Record.Nombre, entry.Record.Estatus,
				entry.CapturedAt.Format("2006-01-02 15:04:05"))
		}
		w.Flush()
		return nil
	},
}

var cacheClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Descarta todas las entradas de la caché",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := loadConfig()
		store := openOverlayStore(cfg)
		defer store.Close()

		internal.NewOverlayCache[*internal.Enfoque](internal.OverlayKindEnfoques, store, 0).Clear()
		internal.NewOverlayCache[*internal.Producto](internal.OverlayKindProductos, store, 0).Clear()

		fmt.Println(successStyle.Render("Caché optimista descartada"))
		return nil
	},
}

func init() {
	cacheCmd.AddCommand(cacheInspectCmd, cacheClearCmd)
	rootCmd.AddCommand(cacheCmd)
}
