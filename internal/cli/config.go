package cli

import (
	"fmt"
	"os"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/matzehuels/stackbuilder/pkg/config"
	"github.com/matzehuels/stackbuilder/pkg/errors"
)

// configCommand creates the config management command.
func (c *CLI) configCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Show or create the configuration file",
	}
	cmd.AddCommand(c.configShowCommand())
	cmd.AddCommand(c.configInitCommand())
	cmd.AddCommand(c.configPathCommand())
	return cmd
}

func (c *CLI) configShowCommand() *cobra.Command {
	var raw bool
	cmd := &cobra.Command{
		Use:   "show",
		Short: "Print the effective configuration",
		RunE: func(cmd *cobra.Command, args []string) error {
			if raw {
				data, err := c.Config.Encode()
				if err != nil {
					return err
				}
				_, err = cmd.OutOrStdout().Write(data)
				return err
			}

			cfg := c.Config
			fmt.Println(StyleTitle.Render("stack"))
			printKeyValue("max_layers", strconv.Itoa(cfg.Stack.MaxLayers))
			printKeyValue("history", strconv.Itoa(cfg.Stack.History))
			fmt.Println(StyleTitle.Render("render"))
			printKeyValue("viz_type", cfg.Render.VizType)
			printKeyValue("style", cfg.Render.Style)
			printKeyValue("width", strconv.FormatFloat(cfg.Render.Width, 'g', -1, 64))
			printKeyValue("margin", strconv.FormatFloat(cfg.Render.Margin, 'g', -1, 64))
			printKeyValue("scale", strconv.FormatFloat(cfg.Render.Scale, 'g', -1, 64))
			printKeyValue("formats", fmt.Sprint(cfg.Render.Formats))
			fmt.Println(StyleTitle.Render("serve"))
			printKeyValue("addr", cfg.Serve.Addr)
			printKeyValue("session_ttl", cfg.Serve.SessionTTL.String())
			printKeyValue("max_sessions", strconv.Itoa(cfg.Serve.MaxSessions))
			fmt.Println(StyleTitle.Render("ui"))
			printKeyValue("show_offsets", strconv.FormatBool(cfg.UI.ShowOffsets))
			return nil
		},
	}
	cmd.Flags().BoolVar(&raw, "toml", false, "print as TOML")
	return cmd
}

func (c *CLI) configInitCommand() *cobra.Command {
	var force bool
	cmd := &cobra.Command{
		Use:         "init",
		Short:       "Write a config file with the default settings",
		Annotations: map[string]string{annotationNoConfig: "true"},
		RunE: func(cmd *cobra.Command, args []string) error {
			path, _, err := config.Path(c.configPath)
			if err != nil {
				return err
			}
			if _, err := os.Stat(path); err == nil && !force {
				printWarning("Config already exists at %s", path)
				printNextStep("Overwrite with", appName+" config init --force")
				return nil
			}
			if err := errors.ValidateOutputPath(path); err != nil {
				return err
			}
			if err := config.Save(path, config.Default()); err != nil {
				return err
			}
			printSuccess("Wrote default config")
			printFile(path)
			return nil
		},
	}
	cmd.Flags().BoolVar(&force, "force", false, "overwrite an existing file")
	return cmd
}

func (c *CLI) configPathCommand() *cobra.Command {
	return &cobra.Command{
		Use:         "path",
		Short:       "Print the config file path",
		Annotations: map[string]string{annotationNoConfig: "true"},
		RunE: func(cmd *cobra.Command, args []string) error {
			path, _, err := config.Path(c.configPath)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), path)
			return nil
		},
	}
}
