package cmd

import (
	"fmt"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/charmbracelet/lipgloss"
	"github.com/mentevital/terapia-admin/internal"
)

var (
	// Styles
	headerStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("62")).
			Padding(0, 1)

	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("212"))

	idStyle = lipgloss.NewStyle().
		Foreground(lipgloss.Color("240")).
		Italic(true)

	activeStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("42")).
			Bold(true)

	inactiveStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("196"))

	metaStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("243"))

	successStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("42")).
			Bold(true)

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("196")).
			Bold(true)
)

func renderEstatus(estatus string) string {
	if estatus == internal.EstatusInactivo {
		return inactiveStyle.Render(estatus)
	}
	return activeStyle.Render(estatus)
}

func renderEnfoques(records []*internal.Enfoque) {
	fmt.Println(headerStyle.Render(fmt.Sprintf("Enfoques (%d)", len(records))))

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tNOMBRE\tESTATUS\tDESCRIPCIÓN")
	for _, e := range records {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\n",
			idStyle.Render(fmt.Sprintf("%d", e.ID)),
			titleStyle.Render(e.Nombre),
			renderEstatus(e.Estatus),
			truncate(e.Descripcion, 60),
		)
	}
	w.Flush()
}

func renderProductos(records []*internal.Producto) {
	fmt.Println(headerStyle.Render(fmt.Sprintf("Productos (%d)", len(records))))

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tNOMBRE\tPRECIO\tESTATUS\tDESCRIPCIÓN")
	for _, p := range records {
		precio := "-"
		if p.Precio != nil {
			precio = fmt.Sprintf("%.2f", *p.Precio)
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n",
			idStyle.Render(fmt.Sprintf("%d", p.ID)),
			titleStyle.Render(p.Nombre),
			precio,
			renderEstatus(p.Estatus),
			truncate(p.Descripcion, 50),
		)
	}
	w.Flush()
}

func renderHorarios(slots []*internal.HorarioSlot) {
	fmt.Println(headerStyle.Render(fmt.Sprintf("Horarios (%d)", len(slots))))

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tDÍA\tHORARIO\tTIPO\tCANAL\tUBICACIÓN")
	for _, s := range slots {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\n",
			idStyle.Render(fmt.Sprintf("%d", s.ID)),
			titleStyle.Render(s.DiaLabel),
			s.Horario,
			s.TipoAtencion,
			s.Canal,
			s.Ubicacion,
		)
	}
	w.Flush()
}

func renderPerfil(p *internal.Perfil) {
	fmt.Println(headerStyle.Render(fmt.Sprintf("Perfil del terapeuta %d", p.IDTerapeuta)))

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintf(w, "Nombre:\t%s %s\n", p.Nombre, p.Apellidos)
	fmt.Fprintf(w, "Email:\t%s\n", p.Email)
	fmt.Fprintf(w, "Teléfono:\t%s\n", p.Telefono)
	fmt.Fprintf(w, "Sexo:\t%s\n", p.Sexo)
	fmt.Fprintf(w, "Cédula:\t%s\n", p.Cedula)
	fmt.Fprintf(w, "Especialidad:\t%s\n", p.Especialidad)
	if p.Tarifa != nil {
		fmt.Fprintf(w, "Tarifa:\t%.2f\n", *p.Tarifa)
	} else {
		fmt.Fprintf(w, "Tarifa:\t-\n")
	}
	if p.FotoURL != "" {
		fmt.Fprintf(w, "Foto:\t%s\n", p.FotoURL)
	}
	w.Flush()

	if p.Descripcion != "" {
		fmt.Println()
		fmt.Println(metaStyle.Render(p.Descripcion))
	}
}

func truncate(s string, max int) string {
	s = strings.ReplaceAll(s, "\n", " ")
	if len(s) <= max {
		return s
	}
	return s[:max] + "..."
}
