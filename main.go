// Command renderspec renders a distribution-specific .spec file from a
// distribution-agnostic spec-file template.
package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"sigs.k8s.io/yaml"

	"github.com/datawire/renderspec/pkg/cliutil"
	"github.com/datawire/renderspec/pkg/distro"
	"github.com/datawire/renderspec/pkg/render"
	"github.com/datawire/renderspec/pkg/requirements"
)

var flags = struct {
	Output        string
	SpecStyle     string
	Epochs        string
	Requirements  []string
	SkipPyversion string
}{}

var argparser = &cobra.Command{
	Use:   "renderspec [flags] IN_TEMPLATE.spec.tmpl",
	Short: "Render a spec-file template in to a distribution .spec file",
	Long: "Given a spec-file template, render it with the conventions of one " +
		"target distribution: package naming, version/release encoding, license " +
		"tokens, and the distribution's bundled template blocks.  The styles " +
		"\"suse\" and \"fedora\" select the two convention families; any other " +
		"style selects a bundled overlay template (such as \"epel7\") on top of " +
		"the input template.",

	Args: cliutil.WrapPositionalArgs(cobra.ExactArgs(1)),
	RunE: Main,

	SilenceErrors: true, // main() will handle this after .ExecuteContext() returns
	SilenceUsage:  true, // our FlagErrorFunc will handle it
}

func init() {
	setupFlags(argparser.Flags())
	argparser.SetFlagErrorFunc(cliutil.FlagErrorFunc)
	argparser.SetHelpTemplate(cliutil.HelpTemplate)
}

func setupFlags(fs *pflag.FlagSet) {
	fs.StringVarP(&flags.Output, "output", "o", "",
		"Write to `FILE` instead of stdout")
	fs.StringVar(&flags.SpecStyle, "spec-style", distro.Detect(),
		"Distribution `STYLE` to render for (default detected from /etc/os-release)")
	fs.StringVar(&flags.Epochs, "epochs", "",
		"Read package epochs from `YAML_FILE` (a name: integer mapping)")
	fs.StringArrayVar(&flags.Requirements, "requirements", nil,
		"Read minimum versions from requirements `FILE`; may be repeated, later files win")
	fs.StringVar(&flags.SkipPyversion, "skip-pyversion", "",
		"Drop this Python runtime `VARIANT` (py2 or py3) from every translation")
}

func Main(cmd *cobra.Command, args []string) error {
	epochs := make(map[string]int)
	if flags.Epochs != "" {
		content, err := os.ReadFile(flags.Epochs)
		if err != nil {
			return err
		}
		if err := yaml.UnmarshalStrict(content, &epochs); err != nil {
			return fmt.Errorf("%s: %w", flags.Epochs, err)
		}
	}

	reqs, err := requirements.ParseFiles(flags.Requirements)
	if err != nil {
		return err
	}

	outputDir := ""
	if flags.Output != "" {
		outputDir = filepath.Dir(flags.Output)
	}

	session, err := render.NewSession(args[0], &render.Context{
		Style:         flags.SpecStyle,
		Epochs:        epochs,
		Requirements:  reqs,
		SkipPyversion: flags.SkipPyversion,
		OutputDir:     outputDir,
	})
	if err != nil {
		return err
	}

	spec, err := session.Render(cmd.Context())
	if err != nil {
		return err
	}

	if flags.Output == "" {
		_, err = fmt.Fprint(cmd.OutOrStdout(), spec)
		return err
	}
	return os.WriteFile(flags.Output, []byte(spec), 0o666)
}

func main() {
	ctx := context.Background()
	if err := argparser.ExecuteContext(ctx); err != nil {
		fmt.Fprintf(argparser.ErrOrStderr(), "%s: error: %v\n", argparser.CommandPath(), err)
		os.Exit(1)
	}
}
