package cmd

import (
	"context"
	"fmt"
	"time"

	"github.com/mentevital/terapia-admin/internal"
	"github.com/spf13/cobra"
)

// healthcheckCmd probes the backend with a cheap listing call and reports
// reachability and latency.
var healthcheckCmd = &cobra.Command{
	Use:   "healthcheck",
	Short: "Verifica que el backend responde con la sesión actual",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := loadConfig()
		sess, err := loadSession(cfg)
		if err != nil {
			return err
		}
		gw := newGateway(cfg)

		fmt.Printf("Backend: %s\n", cfg.BaseURL)

		start := time.Now()
		env, err := gw.Call(context.Background(), internal.EndpointEnfoquesListar, "POST",
			map[string]any{"pagina": 1, "por_pagina": 1, "solo_activos": true}, sess)
		elapsed := time.Since(start)

		if err != nil {
			fmt.Println(errorStyle.Render(fmt.Sprintf("✗ Sin respuesta (%s): %v", elapsed.Round(time.Millisecond), err)))
			return err
		}

		outcome := internal.NormalizeResponse(env, "")
		if !outcome.OK {
			fmt.Println(errorStyle.Render(fmt.Sprintf("✗ El backend rechazó la llamada: %s", outcome.Message)))
			return fmt.Errorf("backend rechazó la llamada: %s", outcome.Message)
		}

		fmt.Println(successStyle.Render(fmt.Sprintf("✓ Backend accesible (%s)", elapsed.Round(time.Millisecond))))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(healthcheckCmd)
}
