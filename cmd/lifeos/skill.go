// ABOUTME: Install the lifeos skill file for AI coding assistants.
// ABOUTME: Embeds and installs the skill definition to ~/.claude/skills/lifeos.

package main

import (
	"bufio"
	"embed"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
)

//go:embed skill/SKILL.md
var skillFS embed.FS

var skillSkipConfirm bool

var installSkillCmd = &cobra.Command{
	Use:   "install-skill",
	Short: "Install the lifeos assistant skill",
	Long: `Install the lifeos skill definition.

This copies the skill definition to ~/.claude/skills/lifeos/
so an assistant can use lifeos commands contextually.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		home, err := os.UserHomeDir()
		if err != nil {
			return fmt.Errorf("failed to get home directory: %w", err)
		}
		return installSkill(filepath.Join(home, ".claude", "skills", "lifeos"), os.Stdin, cmd.OutOrStdout())
	},
}

func init() {
	installSkillCmd.Flags().BoolVarP(&skillSkipConfirm, "yes", "y", false, "Skip confirmation prompt")
	rootCmd.AddCommand(installSkillCmd)
}

func installSkill(skillDir string, in io.Reader, out io.Writer) error {
	skillPath := filepath.Join(skillDir, "SKILL.md")

	fmt.Fprintln(out, "This will install the lifeos skill, enabling your assistant to:")
	fmt.Fprintln(out)
	fmt.Fprintln(out, "  • Read readiness, recovery and nutrition scores")
	fmt.Fprintln(out, "  • Log samples and check metric trends")
	fmt.Fprintln(out, "  • Review habits and focus sessions")
	fmt.Fprintln(out)
	fmt.Fprintf(out, "Destination:\n  %s\n\n", skillPath)

	if _, err := os.Stat(skillPath); err == nil {
		fmt.Fprintln(out, "Note: A skill file already exists and will be overwritten.")
		fmt.Fprintln(out)
	}

	if !skillSkipConfirm {
		fmt.Fprint(out, "Install the lifeos skill? [y/N] ")
		response, err := bufio.NewReader(in).ReadString('\n')
		if err != nil && err != io.EOF {
			return fmt.Errorf("failed to read response: %w", err)
		}
		response = strings.TrimSpace(strings.ToLower(response))
		if response != "y" && response != "yes" {
			fmt.Fprintln(out, "Installation canceled.")
			return nil
		}
	}

	content, err := skillFS.ReadFile("skill/SKILL.md")
	if err != nil {
		return fmt.Errorf("failed to read embedded skill: %w", err)
	}
	if err := os.MkdirAll(skillDir, 0750); err != nil {
		return fmt.Errorf("failed to create skill directory: %w", err)
	}
	if err := os.WriteFile(skillPath, content, 0600); err != nil {
		return fmt.Errorf("failed to write skill file: %w", err)
	}

	fmt.Fprintln(out, "✓ Installed lifeos skill successfully!")
	return nil
}
