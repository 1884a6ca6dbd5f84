package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/nanoshaper/ns-setup/internal/config"
)

func init() {
	rootCmd.AddCommand(configCmd)
	configCmd.AddCommand(configInitCmd)
	configCmd.AddCommand(configShowCmd)

	configInitCmd.Flags().Bool("force", false, "overwrite config if it already exists")
}

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage " + config.FileName,
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Write " + config.FileName + " with the default settings",
	RunE:  runConfigInit,
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the effective configuration",
	RunE:  runConfigShow,
}

func runConfigInit(cmd *cobra.Command, args []string) error {
	s, err := loadSession(cmd)
	if err != nil {
		return err
	}

	force, _ := cmd.Flags().GetBool("force")
	if err := initConfig(s.configPath, force); err != nil {
		return err
	}
	printStatus(markSuccess(), "config", s.configPath)
	return nil
}

func initConfig(path string, force bool) error {
	if !force {
		if _, err := os.Stat(path); err == nil {
			return fmt.Errorf("config already exists: %s (use --force to overwrite)", path)
		}
	}
	if err := config.Save(config.Default(), path); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}
	return nil
}

func runConfigShow(cmd *cobra.Command, args []string) error {
	s, err := loadSession(cmd)
	if err != nil {
		return err
	}

	source := s.configPath
	if _, err := os.Stat(source); err != nil {
		source += " (not found, defaults)"
	}
	fmt.Println(dimText("# root:   " + s.root))
	fmt.Println(dimText("# config: " + source))

	data, err := config.Marshal(s.cfg)
	if err != nil {
		return err
	}
	fmt.Print(string(data))
	return nil
}
