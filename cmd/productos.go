package cmd

import (
	"context"
	"fmt"
	"strconv"

	"github.com/mentevital/terapia-admin/internal"
	"github.com/spf13/cobra"
)

var (
	prodPage     int
	prodPageSize int
	prodAll      bool
	prodQuery    string
	prodNombre   string
	prodDesc     string
	prodPrecio   float64
	prodMetadata string
	prodArchivo  string
)

var productosCmd = &cobra.Command{
	Use:   "productos",
	Short: "Gestiona el catálogo de productos",
}

var productosListCmd = &cobra.Command{
	Use:   "list",
	Short: "Lista los productos",
	RunE: func(cmd *cobra.Command, args []string) error {
		client, store, err := newProductosClient()
		if err != nil {
			return err
		}
		defer store.Close()
		defer client.Close()

		opts := internal.ListOptions{Page: prodPage, PageSize: prodPageSize, OnlyActive: !prodAll}
		if err := client.List(context.Background(), opts); err != nil {
			return fmt.Errorf("%s", client.Err())
		}
		renderProductos(client.Filtered(prodQuery))
		return nil
	},
}

var productosShowCmd = &cobra.Command{
	Use:   "show <id>",
	Short: "Muestra el detalle de un producto",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := strconv.Atoi(args[0])
		if err != nil {
			return fmt.Errorf("identificador inválido: %q", args[0])
		}

		client, store, err := newProductosClient()
		if err != nil {
			return err
		}
		defer store.Close()
		defer client.Close()

		ctx := context.Background()
		if err := client.List(ctx, internal.ListOptions{OnlyActive: false}); err != nil {
			return fmt.Errorf("%s", client.Err())
		}
		producto, err := client.Select(ctx, id)
		if err != nil {
			return err
		}

		fmt.Println(headerStyle.Render(fmt.Sprintf("Producto %d", producto.ID)))
		fmt.Printf("Nombre:      %s\n", titleStyle.Render(producto.Nombre))
		fmt.Printf("Estatus:     %s\n", renderEstatus(producto.Estatus))
		if producto.Precio != nil {
			fmt.Printf("Precio:      %.2f\n", *producto.Precio)
		}
		fmt.Printf("Descripción: %s\n", producto.Descripcion)
		if producto.ImagenURL != "" {
			fmt.Printf("Imagen:      %s\n", producto.ImagenURL)
		}
		return nil
	},
}

var productosCreateCmd = &cobra.Command{
	Use:   "create",
	Short: "Crea un producto",
	RunE: func(cmd *cobra.Command, args []string) error {
		client, store, err := newProductosClient()
		if err != nil {
			return err
		}
		defer store.Close()
		defer client.Close()

		fields := map[string]any{
			"nombre":      prodNombre,
			"descripcion": prodDesc,
		}
		if cmd.Flags().Changed("precio") {
			fields["precio"] = prodPrecio
		}
		draft, err := buildCatalogDraft(0, fields, prodMetadata, prodArchivo)
		if err != nil {
			return err
		}

		_, producto, err := client.Create(context.Background(), draft)
		if err != nil {
			return err
		}
		if producto == nil {
			fmt.Println(successStyle.Render("Producto creado"))
			return nil
		}
		fmt.Println(successStyle.Render(fmt.Sprintf("Producto %d creado: %s", producto.ID, producto.Nombre)))
		return nil
	},
}

var productosUpdateCmd = &cobra.Command{
	Use:   "update <id>",
	Short: "Modifica un producto (solo envía los campos que cambian)",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := strconv.Atoi(args[0])
		if err != nil {
			return fmt.Errorf("identificador inválido: %q", args[0])
		}

		client, store, err := newProductosClient()
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
			fields["nombre"] = prodNombre
		}
		if cmd.Flags().Changed("descripcion") {
			fields["descripcion"] = prodDesc
		}
		if cmd.Flags().Changed("precio") {
			fields["precio"] = prodPrecio
		}
		draft, err := buildCatalogDraft(id, fields, prodMetadata, prodArchivo)
		if err != nil {
			return err
		}
		draft.Original = current.PatchSnapshot()

		updated, err := client.Update(ctx, draft)
		if err != nil {
			return err
		}
		if updated != nil {
			fmt.Println(successStyle.Render(fmt.Sprintf("Producto %d actualizado", updated.ID)))
		}
		return nil
	},
}

var productosDeactivateCmd = &cobra.Command{
	Use:   "deactivate <id>",
	Short: "Desactiva un producto",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := strconv.Atoi(args[0])
		if err != nil {
			return fmt.Errorf("identificador inválido: %q", args[0])
		}

		client, store, err := newProductosClient()
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
		fmt.Println(successStyle.Render(fmt.Sprintf("Producto %d desactivado", id)))
		return nil
	},
}

func newProductosClient() (*internal.ProductosClient, internal.KVStore, error) {
	cfg := loadConfig()
	sess, err := loadSession(cfg)
	if err != nil {
		return nil, nil, err
	}
	store := openOverlayStore(cfg)
	return internal.NewProductosClient(newGateway(cfg), sess, store, cfg), store, nil
}

func init() {
	productosListCmd.Flags().IntVar(&prodPage, "page", 1, "Página del listado")
	productosListCmd.Flags().IntVar(&prodPageSize, "page-size", 50, "Registros por página")
	productosListCmd.Flags().BoolVar(&prodAll, "all", false, "Incluir productos inactivos")
	productosListCmd.Flags().StringVar(&prodQuery, "query", "", "Filtro de texto sobre nombre y descripción")

	for _, c := range []*cobra.Command{productosCreateCmd, productosUpdateCmd} {
		c.Flags().StringVar(&prodNombre, "nombre", "", "Nombre del producto")
		c.Flags().StringVar(&prodDesc, "descripcion", "", "Descripción del producto")
		c.Flags().Float64Var(&prodPrecio, "precio", 0, "Precio del producto")
		c.Flags().StringVar(&prodMetadata, "metadata", "", "Metadata en JSON")
		c.Flags().StringVar(&prodArchivo, "archivo", "", "Imagen/archivo a adjuntar (activa la variante multipart)")
	}

	productosCmd.AddCommand(productosListCmd, productosShowCmd, productosCreateCmd, productosUpdateCmd, productosDeactivateCmd)
	rootCmd.AddCommand(productosCmd)
}
