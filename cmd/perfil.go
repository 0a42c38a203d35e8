package cmd

import (
	"context"
	"fmt"
	"strings"

	"github.com/mentevital/terapia-admin/internal"
	"github.com/spf13/cobra"
)

var (
	perfilFields []string
	perfilFoto   string
)

var perfilCmd = &cobra.Command{
	Use:   "perfil",
	Short: "Gestiona el perfil del terapeuta",
	Long: `Consulta y modifica el perfil del terapeuta resuelto desde la sesión.

Las modificaciones se envían en una sola llamada: los campos con "save" y,
si se seleccionó una foto, la variante multipart del endpoint.`,
}

var perfilShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Muestra el perfil del terapeuta",
	RunE: func(cmd *cobra.Command, args []string) error {
		client, err := newProfileClient()
		if err != nil {
			return err
		}
		defer client.Close()

		perfil, err := client.Fetch(context.Background())
		if err != nil {
			return err
		}
		renderPerfil(perfil)
		return nil
	},
}

var perfilSaveCmd = &cobra.Command{
	Use:   "save",
	Short: "Aplica cambios al perfil (--set campo=valor, --foto archivo)",
	RunE: func(cmd *cobra.Command, args []string) error {
		client, err := newProfileClient()
		if err != nil {
			return err
		}
		defer client.Close()

		ctx := context.Background()
		if _, err := client.Fetch(ctx); err != nil {
			return err
		}

		for _, kv := range perfilFields {
			parts := strings.SplitN(kv, "=", 2)
			if len(parts) != 2 {
				return fmt.Errorf("asignación inválida: %q (se espera campo=valor)", kv)
			}
			if err := client.SetField(parts[0], parts[1]); err != nil {
				return err
			}
		}

		if perfilFoto != "" {
			preview, err := client.SetPhoto(perfilFoto)
			if err != nil {
				return err
			}
			internal.LogDebug("photo staged, preview at %s", preview)
		}

		if !client.IsDirty() {
			fmt.Println(metaStyle.Render("Sin cambios que guardar"))
			return nil
		}

		if err := client.Save(ctx); err != nil {
			return err
		}
		fmt.Println(successStyle.Render("Perfil actualizado"))
		if perfil := client.Perfil(); perfil != nil {
			renderPerfil(perfil)
		}
		return nil
	},
}

func newProfileClient() (*internal.ProfileClient, error) {
	cfg := loadConfig()
	sess, err := loadSession(cfg)
	if err != nil {
		return nil, err
	}
	return internal.NewProfileClient(newGateway(cfg), sess, cfg.CacheDir), nil
}

func init() {
	perfilSaveCmd.Flags().StringArrayVar(&perfilFields, "set", nil, "Asignación campo=valor (nombre, apellidos, email, telefono, sexo, descripcion, cedula, especialidad, tarifa)")
	perfilSaveCmd.Flags().StringVar(&perfilFoto, "foto", "", "Foto a subir con la variante multipart")

	perfilCmd.AddCommand(perfilShowCmd, perfilSaveCmd)
	rootCmd.AddCommand(perfilCmd)
}
