package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"hfharvest/pkg/auth"
)

var tokenCmd = &cobra.Command{
	Use:   "token",
	Short: "Manage the hub bearer token in the system keyring",
}

var tokenSetCmd = &cobra.Command{
	Use:   "set <token>",
	Short: "Store a bearer token in the system keyring",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := auth.NewKeyringStore()
		if err != nil {
			return err
		}
		if err := store.Store(args[0]); err != nil {
			return err
		}
		fmt.Println("Token stored.")
		return nil
	},
}

var tokenCheckCmd = &cobra.Command{
	Use:   "check",
	Short: "Report where a bearer token would be found",
	RunE: func(cmd *cobra.Command, args []string) error {
		if _, err := (auth.EnvironmentStore{}).Retrieve(); err == nil {
			fmt.Println("Token found in environment (HF_TOKEN).")
			return nil
		}
		if store, err := auth.NewKeyringStore(); err == nil {
			if _, err := store.Retrieve(); err == nil {
				fmt.Println("Token found in system keyring.")
				return nil
			}
		}
		fmt.Println("No token configured; requests will be unauthenticated.")
		return nil
	},
}

var tokenClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Remove the bearer token from the system keyring",
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := auth.NewKeyringStore()
		if err != nil {
			return err
		}
		if err := store.Delete(); err != nil {
			return err
		}
		fmt.Println("Token removed.")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(tokenCmd)
	tokenCmd.AddCommand(tokenSetCmd)
	tokenCmd.AddCommand(tokenCheckCmd)
	tokenCmd.AddCommand(tokenClearCmd)
}
