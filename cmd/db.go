package cmd

import (
	"github.com/AlexDev08/OpenCRE-migration/internal/config"
	"github.com/AlexDev08/OpenCRE-migration/internal/model"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

var dbCmd = &cobra.Command{
	Use:   "db",
	Short: "db commands",
}

func init() {
	dbCmd.AddCommand(Migrate())
}

func Migrate() *cobra.Command {
	command := &cobra.Command{
		Use:   "migrate",
		Short: "Migrate the database",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.LoadConfig()
			if err != nil {
				return err
			}

			db := config.GetDb(cfg)
			if err := model.Migrate(db); err != nil {
				return err
			}

			logrus.Infof("migrated %s database", cfg.DbDriver)
			return nil
		},
	}

	return command
}
