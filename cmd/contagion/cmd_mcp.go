package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/nvandessel/contagion/internal/mcp"
	"github.com/spf13/cobra"
)

func newMCPServerCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "mcp-server",
		Short: "Run an MCP server over stdio",
		Long: `Start a Model Context Protocol server on stdin/stdout.

Tools: contagion_generate, contagion_step, contagion_run, contagion_stats
and contagion_graph. The current run is also readable as the resource
contagion://run/stats. Configured parameters are the defaults for
contagion_generate fields a client leaves unset.

Example client configuration:
  {"command": "contagion", "args": ["mcp-server", "--seed", "42"]}`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}

			auditDir, _ := cmd.Flags().GetString("audit-dir")
			if auditDir == "" {
				if home, err := os.UserHomeDir(); err == nil {
					auditDir = filepath.Join(home, ".contagion")
				}
			}

			// stdout carries the protocol; logs go to stderr.
			logger, transitions := newLoggers(cmd, cfg)
			defer transitions.Close()

			server, err := mcp.NewServer(&mcp.Config{
				Name:        "contagion",
				Version:     version,
				Defaults:    cfg.Simulation,
				Seed:        cfg.Run.Seed,
				MaxDays:     cfg.Run.MaxDays,
				Workers:     cfg.Run.Workers,
				AuditDir:    auditDir,
				Logger:      logger,
				Transitions: transitions,
			})
			if err != nil {
				return fmt.Errorf("failed to create MCP server: %w", err)
			}

			return server.Run(cmd.Context())
		},
	}

	cmd.Flags().String("audit-dir", "", "Directory for audit.jsonl (default ~/.contagion)")
	addParamFlags(cmd)

	return cmd
}
