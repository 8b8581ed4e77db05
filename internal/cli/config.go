package cli

import (
	"fmt"

	"github.com/complexairport/dit/internal/diterr"
	"github.com/complexairport/dit/internal/dit"
	"github.com/spf13/cobra"
)

func newConfigCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config set|get <key> [value]",
		Short: "Get or set user.name/user.email",
		Args:  cobra.RangeArgs(2, 3),
		RunE:  runConfig,
	}
	return cmd
}

func runConfig(cmd *cobra.Command, args []string) error {
	action, key := args[0], args[1]

	d, err := dit.Open()
	if err != nil {
		return err
	}
	cfg, err := d.Config()
	if err != nil {
		return err
	}

	switch action {
	case "get":
		value, known := cfg.Get(key)
		if !known {
			return diterr.New(diterr.KindConfig, "unknown config key: "+key)
		}
		fmt.Println(value)
		return nil
	case "set":
		if len(args) != 3 {
			return diterr.New(diterr.KindConfig, "usage: dit config set <key> <value>")
		}
		if err := cfg.Set(key, args[2]); err != nil {
			return err
		}
		return cfg.Save(d.Repo)
	default:
		return diterr.New(diterr.KindConfig, "unknown config action: "+action)
	}
}
