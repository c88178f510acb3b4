package cli

import (
	"github.com/spf13/cobra"

	"github.com/matzehuels/pageprint/pkg/server"
)

// serveCommand creates the serve command, which runs the HTTP API.
func (c *CLI) serveCommand() *cobra.Command {
	var (
		addr    string
		fontDir string
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API for storing, merging and reconstructing documents",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			cfg := c.config()

			backing, err := c.newCache(ctx, false)
			if err != nil {
				return err
			}
			defer backing.Close()
			store, err := cfg.OpenStore(ctx, backing)
			if err != nil {
				return err
			}
			defer store.Close()

			srv := server.New(server.Options{
				Store:        store,
				Fonts:        c.fontCatalog(fontDir),
				FontAliases:  cfg.Reconstruct.FontAliases,
				Tolerance:    cfg.Merge.Tolerance,
				MaxBodyBytes: cfg.Server.MaxBodyBytes,
				Logger:       c.Logger,
			})

			addr = firstNonEmpty(addr, cfg.Server.Addr)
			printInfo("Listening on %s", StyleLink.Render(addr))
			printDetail("cache %s · store %s", cfg.Cache.Backend, cfg.Store.Backend)
			if err := srv.ListenAndServe(ctx, addr, cfg.Server.ReadTimeout, cfg.Server.WriteTimeout); err != nil {
				return err
			}
			printSuccess("Server stopped")
			return nil
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "listen address (default from config, :8080)")
	cmd.Flags().StringVar(&fontDir, "font-dir", "", "font directory for reconstruction")

	return cmd
}
