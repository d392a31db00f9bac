package cli

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/roach88/evidence-tracker/internal/domain"
)

// NewTagsCommand creates the tags command and its subcommands.
func NewTagsCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "tags",
		Short: "Manage the tag configuration",
		Long: `Read and change the tag taxonomy stored in tags.json.

Until tags.json exists the built-in default is shown.`,
	}

	cmd.AddCommand(newTagsListCommand(rootOpts))
	cmd.AddCommand(newTagsSaveCommand(rootOpts))
	cmd.AddCommand(newTagsAddCommand(rootOpts))
	cmd.AddCommand(newTagsRemoveCommand(rootOpts))

	return cmd
}

func newTagsListCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:           "list",
		Short:         "Show tags and their colors",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			tr, err := rootOpts.openTracker(cmd)
			if err != nil {
				return err
			}
			defer tr.Close()

			cfg, err := tr.TagConfig()
			if err != nil {
				return failed("failed to read tag configuration", err)
			}
			return rootOpts.formatter(cmd).Render(cfg, func(w io.Writer) error {
				for _, tag := range cfg.AvailableTags {
					color := cfg.TagColors[tag]
					if color == "" {
						color = "-"
					}
					fmt.Fprintf(w, "%-16s %s\n", tag, color)
				}
				return nil
			})
		},
	}
}

type tagsSaveOptions struct {
	*RootOptions
	File string
}

func newTagsSaveCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &tagsSaveOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "save",
		Short: "Replace the whole tag configuration",
		Long: `Replace tags.json with a configuration read from a YAML or JSON file
(or stdin):

  available_tags: [rent, food]
  tag_colors:
    rent: "#ef4444"

Example:
  evidence tags save --file tags.yaml`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := readTagConfig(opts.File, cmd.InOrStdin())
			if err != nil {
				return WrapExitError(ExitCommandError, "failed to read tag configuration", err)
			}

			tr, err := opts.openTracker(cmd)
			if err != nil {
				return err
			}
			defer tr.Close()

			if err := tr.SaveTagConfig(cfg); err != nil {
				return failed("failed to save tag configuration", err)
			}
			return opts.formatter(cmd).Success(fmt.Sprintf("Saved %d tags", len(cfg.AvailableTags)))
		},
	}

	cmd.Flags().StringVarP(&opts.File, "file", "f", "-", "YAML or JSON tag configuration (- for stdin)")

	return cmd
}

// readTagConfig decodes a tag configuration from path or stdin.
func readTagConfig(path string, stdin io.Reader) (domain.TagConfig, error) {
	var (
		data []byte
		err  error
	)
	if path == "-" || path == "" {
		data, err = io.ReadAll(stdin)
	} else {
		data, err = os.ReadFile(path)
	}
	if err != nil {
		return domain.TagConfig{}, err
	}

	var cfg domain.TagConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return domain.TagConfig{}, fmt.Errorf("parse tag configuration: %w", err)
	}
	return cfg, nil
}

type tagsAddOptions struct {
	*RootOptions
	Color string
}

func newTagsAddCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &tagsAddOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "add <name>",
		Short: "Add a tag, optionally with a color",
		Long: `Add a tag if it is not present yet. With --color the tag's color is
set or replaced.

Example:
  evidence tags add Food --color "#ff0000"`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			var color *string
			if cmd.Flags().Changed("color") {
				color = domain.StrPtr(opts.Color)
			}

			tr, err := opts.openTracker(cmd)
			if err != nil {
				return err
			}
			defer tr.Close()

			if err := tr.AddTag(args[0], color); err != nil {
				return failed("failed to add tag", err)
			}
			return opts.formatter(cmd).Success(fmt.Sprintf("Tag %s added", args[0]))
		},
	}

	cmd.Flags().StringVar(&opts.Color, "color", "", "display color")

	return cmd
}

func newTagsRemoveCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:           "remove <name>",
		Short:         "Remove a tag and its color",
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			tr, err := rootOpts.openTracker(cmd)
			if err != nil {
				return err
			}
			defer tr.Close()

			if err := tr.RemoveTag(args[0]); err != nil {
				return failed("failed to remove tag", err)
			}
			return rootOpts.formatter(cmd).Success(fmt.Sprintf("Tag %s removed", args[0]))
		},
	}
}

// NewConfigPathCommand creates the config-path command.
func NewConfigPathCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:           "config-path",
		Short:         "Print the configuration directory",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := rootOpts.loadConfig()
			if err != nil {
				return WrapExitError(ExitCommandError, "failed to resolve config path", err)
			}
			return rootOpts.formatter(cmd).Success(cfg.Dir)
		},
	}
}
