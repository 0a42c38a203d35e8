package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/mentevital/terapia-admin/internal"
	"github.com/spf13/cobra"
)

var (
	enfPage     int
	enfPageSize int
	enfAll      bool
	enfQuery    string
	enfNombre   string
	enfDesc     string
	enfMetadata string
	enfArchivo  string
)

var enfoquesCmd = &cobra.Command{
	Use:   "enfoques",
	Short: "Gestiona el catálogo de enfoques",
	Long: `Lista, crea, modifica y desactiva los enfoques del catálogo.

Los listados combinan la respuesta del backend con la caché optimista
local: un enfoque recién creado aparece de inmediato aunque el backend aún
no lo refleje en sus lecturas.`,
}

var enfoquesListCmd = &cobra.Command{
	Use:   "list",
	Short: "Lista los enfoques",
	RunE: func(cmd *cobra.Command, args []string) error {
		client, store, err := newEnfoquesClient()
		if err != nil {
			return err
		}
		defer store.Close()
		defer client.Close()

		opts := internal.ListOptions{Page: enfPage, PageSize: enfPageSize, OnlyActive: !enfAll}
		if err := client.List(context.Background(), opts); err != nil {
			return fmt.Errorf("%s", client.Err())
		}
		renderEnfoques(client.Filtered(enfQuery))
		return nil
	},
}

var enfoquesShowCmd = &cobra.Command{
	Use:   "show <id>",
	Short: "Muestra el detalle de un enfoque",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := strconv.Atoi(args[0])
		if err != nil {
			return fmt.Errorf("identificador inválido: %q", args[0])
		}

		client, store, err := newEnfoquesClient()
		if err != nil {
			return err
		}
		defer store.Close()
		defer client.Close()

		ctx := context.Background()
		if err := client.List(ctx, internal.ListOptions{OnlyActive: false}); err != nil {
			return fmt.Errorf("%s", client.Err())
		}
		enfoque, err := client.Select(ctx, id)
		if err != nil {
			return err
		}

		fmt.Println(headerStyle.Render(fmt.Sprintf("Enfoque %d", enfoque.ID)))
		fmt.Printf("Nombre:      %s\n", titleStyle.Render(enfoque.Nombre))
		fmt.Printf("Estatus:     %s\n", renderEstatus(enfoque.Estatus))
		fmt.Printf("Descripción: %s\n", enfoque.Descripcion)
		if enfoque.ImagenURL != "" {
			fmt.Printf("Imagen:      %s\n", enfoque.ImagenURL)
		}
		if enfoque.Version != "" {
			fmt.Println(metaStyle.Render("Versión: " + enfoque.Version))
		}
		return nil
	},
}

var enfoquesCreateCmd = &cobra.Command{
	Use:   "create",
	Short: "Crea un enfoque",
	RunE: func(cmd *cobra.Command, args []string) error {
		client, store, err := newEnfoquesClient()
		if err != nil {
			return err
		}
		defer store.Close()
		defer client.Close()

		draft, err := buildCatalogDraft(0, map[string]any{
			"nombre":      enfNombre,
			"descripcion": enfDesc,
		}, enfMetadata, enfArchivo)
		if err != nil {
			return err
		}

		_, enfoque, err := client.Create(context.Background(), draft)
		if err != nil {
			return err
		}
		if enfoque == nil {
			fmt.Println(successStyle.Render("Enfoque creado"))
			return nil
		}
		fmt.Println(successStyle.Render(fmt.Sprintf("Enfoque %d creado: %s", enfoque.ID, enfoque.Nombre)))
		return nil
	},
}

var enfoquesUpdateCmd = &cobra.Command{
	Use:   "update <id>",
	Short: "Modifica un enfoque (solo envía los campos que cambian)",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := strconv.Atoi(args[0])
		if err != nil {
			return fmt.Errorf("identificador inválido: %q", args[0])
		}

		client, store, err := newEnfoquesClient()
		if err != nil {
			return err
		}
		defer store.Close()
		defer client.Close()

		ctx := context.Background()
		if err := client.List(ctx, internal.ListOptions{OnlyActive: false}); err != nil {
			return fmt.Errorf("%s", client.Err())
		}
		current, err := client.Select(ctx, id)
		if err != nil {
			return err
		}

		fields := current.PatchSnapshot()
		if cmd.Flags().Changed("nombre") {
			fields["nombre"] = enfNombre
		}
		if cmd.Flags().Changed("descripcion") {
			fields["descripcion"] = enfDesc
		}
		draft, err := buildCatalogDraft(id, fields, enfMetadata, enfArchivo)
		if err != nil {
			return err
		}
		draft.Original = current.PatchSnapshot()

		updated, err := client.Update(ctx, draft)
		if err != nil {
			return err
		}
		if updated != nil {
			fmt.Println(successStyle.Render(fmt.Sprintf("Enfoque %d actualizado", updated.ID)))
		}
		return nil
	},
}

var enfoquesDeactivateCmd = &cobra.Command{
	Use:   "deactivate <id>",
	Short: "Desactiva un enfoque",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := strconv.Atoi(args[0])
		if err != nil {
			return fmt.Errorf("identificador inválido: %q", args[0])
		}

		client, store, err := newEnfoquesClient()
		if err != nil {
			return err
		}
		defer store.Close()
		defer client.Close()

		ctx := context.Background()
		if err := client.List(ctx, internal.ListOptions{OnlyActive: true}); err != nil {
			return fmt.Errorf("%s", client.Err())
		}
		if err := client.Deactivate(ctx, id); err != nil {
			return err
		}
		fmt.Println(successStyle.Render(fmt.Sprintf("Enfoque %d desactivado", id)))
		return nil
	},
}

func newEnfoquesClient() (*internal.EnfoquesClient, internal.KVStore, error) {
	cfg := loadConfig()
	sess, err := loadSession(cfg)
	if err != nil {
		return nil, nil, err
	}
	store := openOverlayStore(cfg)
	return internal.NewEnfoquesClient(newGateway(cfg), sess, store, cfg), store, nil
}

// buildCatalogDraft assembles a draft from flag values: optional JSON
// metadata and an optional file, which routes the call through the
// multipart endpoint variant.
func buildCatalogDraft(id int, fields map[string]any, metadataJSON, archivo string) (internal.CatalogDraft, error) {
	draft := internal.CatalogDraft{ID: id, Fields: fields}

	if metadataJSON != "" {
		var metadata map[string]any
		if err := json.Unmarshal([]byte(metadataJSON), &metadata); err != nil {
			return draft, fmt.Errorf("metadata inválida (se espera JSON): %w", err)
		}
		fields["metadata"] = metadata
	}

	if archivo != "" {
		data, err := os.ReadFile(archivo)
		if err != nil {
			return draft, fmt.Errorf("no fue posible leer el archivo: %w", err)
		}
		draft.File = &internal.FileAttachment{
			Field: "archivo",
			Name:  filepath.Base(archivo),
			Data:  data,
		}
	}

	return draft, nil
}

func init() {
	enfoquesListCmd.Flags().IntVar(&enfPage, "page", 1, "Página del listado")
	enfoquesListCmd.Flags().IntVar(&enfPageSize, "page-size", 50, "Registros por página")
	enfoquesListCmd.Flags().BoolVar(&enfAll, "all", false, "Incluir enfoques inactivos")
	enfoquesListCmd.Flags().StringVar(&enfQuery, "query", "", "Filtro de texto sobre nombre y descripción")

	for _, c := range []*cobra.Command{enfoquesCreateCmd, enfoquesUpdateCmd} {
		c.Flags().StringVar(&enfNombre, "nombre", "", "Nombre del enfoque")
		c.Flags().StringVar(&enfDesc, "descripcion", "", "Descripción del enfoque")
		c.Flags().StringVar(&enfMetadata, "metadata", "", "Metadata en JSON")
		c.Flags().StringVar(&enfArchivo, "archivo", "", "Imagen/archivo a adjuntar (activa la variante multipart)")
	}

	enfoquesCmd.AddCommand(enfoquesListCmd, enfoquesShowCmd, enfoquesCreateCmd, enfoquesUpdateCmd, enfoquesDeactivateCmd)
	rootCmd.AddCommand(enfoquesCmd)
}
