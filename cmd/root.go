package cmd

import (
	"fmt"
	"os"

	"github.com/mentevital/terapia-admin/internal"
	"github.com/spf13/cobra"
)

var (
	verbose     bool
	sessionPath string
	baseURL     string
	cacheDir    string
	version     string = "dev"
	commit      string = "unknown"
	date        string = "unknown"
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "terapia-admin",
	Short: "Administra el catálogo y los terapeutas de la plataforma",
	Long: `CLI de administración para la plataforma de servicios terapéuticos.

Gestiona los enfoques y productos del catálogo, los horarios de atención y
el perfil de los terapeutas contra el backend de la plataforma. Las
escrituras confirmadas se conservan en una caché local optimista, de modo
que un registro recién creado o modificado nunca desaparece de los listados
mientras el backend alcanza consistencia.

Inicio rápido:
  terapia-admin enfoques list            # Listar enfoques activos
  terapia-admin productos create ...     # Crear un producto
  terapia-admin horarios list            # Horarios del terapeuta gestionado
  terapia-admin perfil show              # Perfil del terapeuta

La sesión se lee de un archivo YAML (--session o TERAPIA_SESSION_FILE)
emitido por el servicio de autenticación.`,
	Version: fmt.Sprintf("%s (commit: %s, built: %s)", version, commit, date),
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		internal.SetVerbose(verbose)
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose logging")
	rootCmd.PersistentFlags().StringVar(&sessionPath, "session", "", "Path to the YAML session credential file")
	rootCmd.PersistentFlags().StringVar(&baseURL, "base-url", "", "Backend base URL (overrides TERAPIA_BASE_URL)")
	rootCmd.PersistentFlags().StringVar(&cacheDir, "cache-dir", "", "Local cache directory (overrides TERAPIA_CACHE_DIR)")

	rootCmd.SetVersionTemplate(`{{printf "%s\n" .Version}}`)
}

// loadConfig merges the environment configuration with the command flags
func loadConfig() *internal.Config {
	cfg := internal.LoadConfig()
	if baseURL != "" {
		cfg.BaseURL = baseURL
	}
	if cacheDir != "" {
		cfg.CacheDir = cacheDir
	}
	if sessionPath != "" {
		cfg.SessionFile = sessionPath
	}
	return cfg
}

// loadSession reads the session credential file
func loadSession(cfg *internal.Config) (*internal.Session, error) {
	sess, err := internal.LoadSession(cfg.SessionFile)
	if err != nil {
		return nil, fmt.Errorf("failed to load session (use --session or TERAPIA_SESSION_FILE): %w", err)
	}
	return sess, nil
}

// openOverlayStore opens the persisted overlay store, degrading to an
// in-memory store when the on-disk database cannot be opened. The overlay
// is best-effort; a broken store must never block an operation.
func openOverlayStore(cfg *internal.Config) internal.KVStore {
	store, err := internal.OpenSQLiteKV(cfg.CacheDir)
	if err != nil {
		internal.LogWarn("Overlay store unavailable, continuing without persistence: %v", err)
		return internal.NewMemoryKV()
	}
	return store
}

// newGateway builds the HTTP gateway from config
func newGateway(cfg *internal.Config) internal.Gateway {
	return internal.NewHTTPGateway(cfg.BaseURL, cfg.HTTPTimeout)
}
