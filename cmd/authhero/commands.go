package main

import (
	"errors"
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/dropDatabas3/authhero/internal/app"
	"github.com/dropDatabas3/authhero/internal/bootstrap"
	"github.com/dropDatabas3/authhero/internal/config"
	httpserver "github.com/dropDatabas3/authhero/internal/http"
	"github.com/dropDatabas3/authhero/internal/jwt"
	"github.com/dropDatabas3/authhero/internal/store/pg"
	migrations "github.com/dropDatabas3/authhero/migrations/postgres"
)

type configFn func() *config.Config

func serveCmd(conf configFn) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Levanta el servidor HTTP",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg := conf()
			c, err := app.Build(cmd.Context(), cfg)
			if err != nil {
				return err
			}
			defer c.Close()
			return httpserver.Start(cmd.Context(), httpserver.ServerConfig{
				Addr:            cfg.Server.Addr,
				ReadTimeout:     cfg.Server.ReadTimeout,
				WriteTimeout:    cfg.Server.WriteTimeout,
				ShutdownTimeout: cfg.Server.ShutdownTimeout,
			}, c.Handler)
		},
	}
}

func migrateCmd(conf configFn) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Migraciones del esquema PostgreSQL",
	}
	run := func(up bool) func(*cobra.Command, []string) error {
		return func(cmd *cobra.Command, _ []string) error {
			cfg := conf()
			if cfg.Storage.Driver != "postgres" {
				return errors.New("migrate: storage.driver must be postgres")
			}
			pool, err := pg.Connect(cmd.Context(), cfg.Storage.DSN, pg.PoolConfig{MaxConns: 2})
			if err != nil {
				return err
			}
			defer pool.Close()
			if up {
				if err := migrations.Up(cmd.Context(), pool); err != nil {
					return err
				}
			}
			v, err := migrations.Version(cmd.Context(), pool)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "schema version %d\n", v)
			return nil
		}
	}
	cmd.AddCommand(
		&cobra.Command{Use: "up", Short: "Aplica las migraciones pendientes", RunE: run(true)},
		&cobra.Command{Use: "status", Short: "Muestra la versión actual", RunE: run(false)},
	)
	return cmd
}

func seedCmd(conf configFn) *cobra.Command {
	var file string
	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Carga tenants, aplicaciones, conexiones y usuarios desde YAML",
		RunE: func(cmd *cobra.Command, _ []string) error {
			f, err := bootstrap.Load(file)
			if err != nil {
				return err
			}
			kvc, dal, err := app.OpenStore(cmd.Context(), conf())
			if err != nil {
				return err
			}
			defer kvc.Close()
			defer dal.Close()
			res, err := bootstrap.Apply(cmd.Context(), bootstrap.Target{
				Admin: dal.Admin, Users: dal.Users, Passwords: dal.Passwords,
			}, f)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "tenants=%d applications=%d connections=%d users=%d skipped_users=%d\n",
				res.Tenants, res.Applications, res.Connections, res.Users, res.SkippedUsers)
			return nil
		},
	}
	cmd.Flags().StringVarP(&file, "file", "f", "configs/seed.yaml", "archivo de seed (- = stdin)")
	return cmd
}

func keysCmd(conf configFn) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "keys",
		Short: "Claves de firma (JWKS)",
	}

	withKeys := func(fn func(cmd *cobra.Command, args []string, ks *jwt.Keystore) error) func(*cobra.Command, []string) error {
		return func(cmd *cobra.Command, args []string) error {
			kvc, dal, err := app.OpenStore(cmd.Context(), conf())
			if err != nil {
				return err
			}
			defer kvc.Close()
			defer dal.Close()
			return fn(cmd, args, jwt.NewKeystore(dal.Keys))
		}
	}

	list := &cobra.Command{
		Use:   "list",
		Short: "Lista las claves publicadas",
		RunE: withKeys(func(cmd *cobra.Command, _ []string, ks *jwt.Keystore) error {
			keys, err := ks.Published(cmd.Context())
			if err != nil {
				return err
			}
			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "KID\tCREATED\tACTIVATES\tREVOKES")
			for _, k := range keys {
				rev := "-"
				if k.RevokedAt != nil {
					rev = k.RevokedAt.UTC().Format(time.RFC3339)
				}
				fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", k.KID,
					k.CreatedAt.UTC().Format(time.RFC3339), k.ActivateAt.UTC().Format(time.RFC3339), rev)
			}
			return tw.Flush()
		}),
	}

	var grace time.Duration
	rotate := &cobra.Command{
		Use:   "rotate",
		Short: "Crea una clave nueva; la anterior sigue publicada durante --grace",
		RunE: withKeys(func(cmd *cobra.Command, _ []string, ks *jwt.Keystore) error {
			g := grace
			if g == 0 {
				g = conf().JWT.KeyGrace
			}
			k, err := ks.Rotate(cmd.Context(), g)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "new key %s (previous keys revoked at %s)\n",
				k.KID, time.Now().Add(g).UTC().Format(time.RFC3339))
			return nil
		}),
	}
	rotate.Flags().DurationVar(&grace, "grace", 0, "ventana de gracia (default jwt.key_grace)")

	revoke := &cobra.Command{
		Use:   "revoke KID",
		Short: "Revoca una clave inmediatamente",
		Args:  cobra.ExactArgs(1),
		RunE: withKeys(func(cmd *cobra.Command, args []string, ks *jwt.Keystore) error {
			if err := ks.Revoke(cmd.Context(), args[0]); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "revoked %s\n", args[0])
			return nil
		}),
	}

	cmd.AddCommand(list, rotate, revoke)
	return cmd
}
