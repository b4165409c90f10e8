package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

const defaultConfigPath = "config.toml"

// NewRootCmd корневая команда сервиса
func NewRootCmd() *cobra.Command {
	var configPath string

	root := &cobra.Command{
		Use:           "detailing-booking",
		Short:         "Сервис записи на детейлинг: слоты, записи, отмена",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVarP(&configPath, "config", "c", defaultConfigPath, "путь к config.toml")

	root.AddCommand(newServeCmd(&configPath))
	root.AddCommand(newMigrateCmd(&configPath))
	root.AddCommand(newSeedCmd(&configPath))

	return root
}

// Execute запускает CLI. Без подкоманды используется serve.
func Execute() {
	root := NewRootCmd()
	if len(os.Args) == 1 {
		root.SetArgs([]string{"serve"})
	}

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
