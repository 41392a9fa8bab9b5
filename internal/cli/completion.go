package cli

import (
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/stackbuilder/pkg/layer"
	"github.com/matzehuels/stackbuilder/pkg/stack"
)

// completionCommand creates the completion command for generating shell completions.
func (c *CLI) completionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "completion [bash|zsh|fish|powershell]",
		Short: "Generate shell completion scripts",
		Long: `Generate shell completion scripts for stackbuilder.

Bash:
  $ source <(stackbuilder completion bash)

Zsh:
  $ stackbuilder completion zsh > "${fpath[1]}/_stackbuilder"

Fish:
  $ stackbuilder completion fish > ~/.config/fish/completions/stackbuilder.fish

PowerShell:
  PS> stackbuilder completion powershell | Out-String | Invoke-Expression
`,
		DisableFlagsInUseLine: true,
		ValidArgs:             []string{"bash", "zsh", "fish", "powershell"},
		Args:                  cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
		Annotations:           map[string]string{annotationNoConfig: "true"},
		RunE: func(cmd *cobra.Command, args []string) error {
			switch args[0] {
			case "bash":
				return cmd.Root().GenBashCompletion(os.Stdout)
			case "zsh":
				return cmd.Root().GenZshCompletion(os.Stdout)
			case "fish":
				return cmd.Root().GenFishCompletion(os.Stdout, true)
			case "powershell":
				return cmd.Root().GenPowerShellCompletionWithDesc(os.Stdout)
			}
			return nil
		},
	}
}

// completeActions offers action tokens for the render and play arguments.
func completeActions(_ *cobra.Command, _ []string, toComplete string) ([]string, cobra.ShellCompDirective) {
	var out []string
	for _, k := range layer.Kinds() {
		if strings.HasPrefix(k.String(), toComplete) {
			out = append(out, k.String()+"\tappend a "+k.String()+" layer")
		}
	}
	for _, a := range []stack.Action{stack.RemoveHead, stack.RemoveTail} {
		if strings.HasPrefix(a.String(), toComplete) {
			out = append(out, a.String())
		}
	}
	return out, cobra.ShellCompDirectiveNoFileComp
}

// completeKinds offers layer kinds for the table arguments.
func completeKinds(_ *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
	if len(args) >= 2 {
		return nil, cobra.ShellCompDirectiveNoFileComp
	}
	var out []string
	for _, k := range layer.Kinds() {
		if strings.HasPrefix(k.String(), toComplete) {
			out = append(out, k.String())
		}
	}
	return out, cobra.ShellCompDirectiveNoFileComp
}
