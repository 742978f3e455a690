package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/wfvining/motion-ca/internal/mcp"
	"github.com/wfvining/motion-ca/internal/store"
)

func newServeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the MCP tool server on stdio",
		Long: `Start an MCP server on stdin/stdout exposing the motionca_run,
motionca_sweep and motionca_results tools. Parameters a tool call leaves
unset come from the loaded configuration.

Logs go to stderr so they never corrupt the protocol stream.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			if err := applySimulationFlags(cmd, cfg); err != nil {
				return err
			}
			noStore, _ := cmd.Flags().GetBool("no-store")
			logger := newLogger(cmd, cfg)

			var st *store.Store
			if !noStore {
				if st, err = store.Open(cfg.DataDir()); err != nil {
					return fmt.Errorf("failed to open result store: %w", err)
				}
			}

			events := openEvents(cfg)
			defer events.Close()

			server, err := mcp.NewServer(&mcp.Config{
				Name:     "motionca",
				Version:  version,
				Defaults: cfg,
				Store:    st,
				Events:   events,
				Logger:   logger,
			})
			if err != nil {
				if st != nil {
					st.Close()
				}
				return err
			}
			defer server.Close()

			logger.Info("mcp server starting", "store", !noStore)
			return server.Run(cmd.Context())
		},
	}

	addSimulationFlags(cmd)
	cmd.Flags().Bool("no-store", false, "Run without the result store; saving and listing fail")

	return cmd
}
