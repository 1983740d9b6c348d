package main

import (
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/pawdiary/pawdiary/internal/domain/template"
)

var draftsCmd = &cobra.Command{
	Use:   "drafts",
	Short: "Manage unsaved editor drafts",
}

var sweepMaxAge time.Duration

var draftsSweepCmd = &cobra.Command{
	Use:   "sweep",
	Short: "Remove drafts older than the maximum age",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		a, closeDB, err := openApp(cfg, quietLogger(cmd.ErrOrStderr()))
		if err != nil {
			return err
		}
		defer closeDB()

		removed, err := a.SweepDrafts(cmd.Context(), sweepMaxAge)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Removed %d drafts\n", removed)
		return nil
	},
}

var (
	templatesCategory string
	templatesQuick    bool
)

var templatesCmd = &cobra.Command{
	Use:   "templates",
	Short: "Inspect activity templates",
}

var templatesListCmd = &cobra.Command{
	Use:   "list",
	Short: "List activity templates",
	RunE: func(cmd *cobra.Command, args []string) error {
		reg := template.Default()
		var list []template.ActivityTemplate
		switch {
		case templatesCategory != "":
			c, ok := template.ParseCategory(templatesCategory)
			if !ok {
				return fmt.Errorf("unknown category %q", templatesCategory)
			}
			list = reg.ByCategory(c)
		case templatesQuick:
			list = reg.QuickLog()
		default:
			list = reg.All()
		}

		w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "ID\tCATEGORY\tLABEL\tBLOCKS\tQUICK")
		for _, t := range list {
			if templatesQuick && !t.IsQuickLogEnabled {
				continue
			}
			fmt.Fprintf(w, "%s\t%s\t%s\t%d\t%t\n", t.ID, t.Category, t.Label, len(t.Blocks), t.IsQuickLogEnabled)
		}
		return w.Flush()
	},
}

var (
	apiKeyTenant      string
	apiKeyToken       string
	apiKeyDescription string
)

var apiKeyCmd = &cobra.Command{
	Use:   "apikey",
	Short: "Manage API keys",
}

var apiKeyAddCmd = &cobra.Command{
	Use:   "add",
	Short: "Add an API key for a tenant",
	RunE: func(cmd *cobra.Command, args []string) error {
		if apiKeyTenant == "" {
			return fmt.Errorf("--tenant is required")
		}
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		a, closeDB, err := openApp(cfg, quietLogger(cmd.ErrOrStderr()))
		if err != nil {
			return err
		}
		defer closeDB()

		token := apiKeyToken
		if token == "" {
			token = uuid.NewString()
		}
		if err := a.APIKeys.Add(cmd.Context(), token, apiKeyTenant, apiKeyDescription); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Added API key for tenant %s\n", apiKeyTenant)
		fmt.Fprintf(cmd.OutOrStdout(), "Token: %s\n", token)
		return nil
	},
}

func init() {
	draftsSweepCmd.Flags().DurationVar(&sweepMaxAge, "max-age", 0, "Maximum draft age (default from config)")
	draftsCmd.AddCommand(draftsSweepCmd)

	templatesListCmd.Flags().StringVar(&templatesCategory, "category", "", "Only templates in this category")
	templatesListCmd.Flags().BoolVar(&templatesQuick, "quick", false, "Only quick-log templates")
	templatesCmd.AddCommand(templatesListCmd)

	apiKeyAddCmd.Flags().StringVar(&apiKeyTenant, "tenant", "", "Tenant the key resolves to")
	apiKeyAddCmd.Flags().StringVar(&apiKeyToken, "token", "", "Token value (generated when empty)")
	apiKeyAddCmd.Flags().StringVar(&apiKeyDescription, "description", "", "Free-form note")
	apiKeyCmd.AddCommand(apiKeyAddCmd)

	rootCmd.AddCommand(draftsCmd, templatesCmd, apiKeyCmd)
}
