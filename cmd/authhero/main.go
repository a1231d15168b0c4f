// authhero es el CLI operativo: servir, migrar, seedear y administrar
// claves de firma.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/dropDatabas3/authhero/internal/config"
	"github.com/dropDatabas3/authhero/internal/observability/logger"
)

func main() {
	var (
		configPath = envOr("AUTHHERO_CONFIG", envOr("CONFIG_PATH", "configs/config.yaml"))
		envFile    = ".env"
		cfg        *config.Config
	)

	root := &cobra.Command{
		Use:           "authhero",
		Short:         "CLI de operación de authhero",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if envFile != "" {
				_ = godotenv.Load(envFile)
			}
			var err error
			cfg, err = config.Load(configPath)
			if err != nil {
				return err
			}
			log := logger.Init(logger.Config{
				Env:         cfg.App.Env,
				Level:       cfg.Log.Level,
				ServiceName: cfg.App.Name,
				Version:     cfg.App.Version,
			})
			cmd.SetContext(logger.ToContext(cmd.Context(), log))
			return nil
		},
	}
	root.PersistentFlags().StringVar(&configPath, "config", configPath, "ruta a config.yaml (env AUTHHERO_CONFIG)")
	root.PersistentFlags().StringVar(&envFile, "env-file", envFile, "ruta a .env (opcional)")

	conf := func() *config.Config { return cfg }
	root.AddCommand(serveCmd(conf), migrateCmd(conf), seedCmd(conf), keysCmd(conf))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := root.ExecuteContext(ctx)
	stop()
	if err != nil {
		fmt.Fprintln(os.Stderr, err.Error())
		os.Exit(1)
	}
}

func envOr(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}
