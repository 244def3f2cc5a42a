package cmd

import (
	"os"

	"github.com/spf13/cobra"
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "opencre",
	Short: "CRE knowledge graph tool",
	Example: `opencre db migrate
opencre import -f cres.yaml
opencre get cre -n "Authentication"
opencre get standard -n ASVS -p 2
opencre search text "Standard:ASVS:V2.1"
opencre search tags crypto,tls
opencre gap ASVS CWE
opencre export -d ./out
opencre warm --schedule "@every 1h"`,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.AddCommand(dbCmd)
	rootCmd.SetHelpCommand(&cobra.Command{Use: "no-help", Hidden: true})

	rootCmd.CompletionOptions.HiddenDefaultCmd = true
	cobra.EnableCommandSorting = false
}
