package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/mentevital/terapia-admin/internal"
	"github.com/spf13/cobra"
)

var (
	horDia      int
	horInicio   string
	horFin      string
	horTipo     string
	horCanal    string
	horUbic     string
	horMetadata string
)

var horariosCmd = &cobra.Command{
	Use:   "horarios",
	Short: "Gestiona los horarios de atención del terapeuta",
	Long: `Lista, crea y desactiva los horarios del terapeuta resuelto desde la
sesión: un terapeuta gestiona sus propios horarios; un administrador
gestiona los del terapeuta seleccionado (id_terapeuta de la sesión).`,
}

var horariosListCmd = &cobra.Command{
	Use:   "list",
	Short: "Lista los horarios del terapeuta",
	RunE: func(cmd *cobra.Command, args []string) error {
		client, err := newScheduleClient()
		if err != nil {
			return err
		}
		defer client.Close()

		if err := client.Refresh(context.Background()); err != nil {
			return err
		}
		renderHorarios(client.Slots())
		return nil
	},
}

var horariosCreateCmd = &cobra.Command{
	Use:   "create",
	Short: "Crea un horario de atención",
	RunE: func(cmd *cobra.Command, args []string) error {
		client, err := newScheduleClient()
		if err != nil {
			return err
		}
		defer client.Close()

		form := internal.HorarioForm{
			DiaSemana:    horDia,
			HoraInicio:   horInicio,
			HoraFin:      horFin,
			TipoAtencion: horTipo,
			Canal:        horCanal,
			Ubicacion:    horUbic,
		}
		if horMetadata != "" {
			var metadata map[string]any
			if err := json.Unmarshal([]byte(horMetadata), &metadata); err != nil {
				return fmt.Errorf("metadata inválida (se espera JSON): %w", err)
			}
			form.Metadata = metadata
		}

		if err := client.Create(context.Background(), form); err != nil {
			return err
		}
		fmt.Println(successStyle.Render(fmt.Sprintf("Horario creado: %s %s-%s",
			internal.WeekdayLabel(form.DiaSemana), form.HoraInicio, form.HoraFin)))
		renderHorarios(client.Slots())
		return nil
	},
}

var horariosDeactivateCmd = &cobra.Command{
	Use:   "deactivate <id>",
	Short: "Desactiva un horario",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := strconv.Atoi(args[0])
		if err != nil {
			return fmt.Errorf("identificador inválido: %q", args[0])
		}

		client, err := newScheduleClient()
		if err != nil {
			return err
		}
		defer client.Close()

		ctx := context.Background()
		if err := client.Refresh(ctx); err != nil {
			return err
		}

		var slot *internal.HorarioSlot
		for _, s := range client.Slots() {
			if s.ID == id {
				slot = s
				break
			}
		}
		if slot == nil {
			return fmt.Errorf("el horario %d no está en el listado", id)
		}

		if err := client.Deactivate(ctx, slot); err != nil {
			return err
		}
		fmt.Println(successStyle.Render(fmt.Sprintf("Horario %d desactivado", id)))
		renderHorarios(client.Slots())
		return nil
	},
}

func newScheduleClient() (*internal.ScheduleClient, error) {
	cfg := loadConfig()
	sess, err := loadSession(cfg)
	if err != nil {
		return nil, err
	}
	return internal.NewScheduleClient(newGateway(cfg), sess), nil
}

func init() {
	horariosCreateCmd.Flags().IntVar(&horDia, "dia", 0, "Día de la semana (1=Lunes ... 7=Domingo)")
	horariosCreateCmd.Flags().StringVar(&horInicio, "inicio", "", "Hora de inicio (HH:MM)")
	horariosCreateCmd.Flags().StringVar(&horFin, "fin", "", "Hora de fin (HH:MM)")
	horariosCreateCmd.Flags().StringVar(&horTipo, "tipo", "", "Tipo de atención")
	horariosCreateCmd.Flags().StringVar(&horCanal, "canal", "", "Canal de atención")
	horariosCreateCmd.Flags().StringVar(&horUbic, "ubicacion", "", "Ubicación")
	horariosCreateCmd.Flags().StringVar(&horMetadata, "metadata", "", "Metadata en JSON (incluye la zona horaria IANA)")

	horariosCmd.AddCommand(horariosListCmd, horariosCreateCmd, horariosDeactivateCmd)
	rootCmd.AddCommand(horariosCmd)
}
