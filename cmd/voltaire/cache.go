package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"voltaire/internal/driver"
)

var cacheCmd = &cobra.Command{
	Use:   "cache",
	Short: "Inspect or clear the provider response cache",
}

var cacheDirCmd = &cobra.Command{
	Use:   "dir",
	Short: "Print the cache directory",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		disk, err := openDiskCache(cmd)
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), disk.Dir())
		return nil
	},
}

var cacheClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Remove every cached response",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		disk, err := openDiskCache(cmd)
		if err != nil {
			return err
		}
		if err := disk.DropAll(); err != nil {
			return fmt.Errorf("failed to clear cache: %w", err)
		}
		if !isQuiet(cmd) {
			fmt.Fprintf(cmd.OutOrStdout(), "cleared %s\n", disk.Dir())
		}
		return nil
	},
}

func init() {
	cacheCmd.AddCommand(cacheDirCmd)
	cacheCmd.AddCommand(cacheClearCmd)
}

func openDiskCache(cmd *cobra.Command) (*driver.DiskCache, error) {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return nil, err
	}
	dir, err := cfg.CacheDir()
	if err != nil {
		return nil, fmt.Errorf("failed to resolve cache directory: %w", err)
	}
	return driver.OpenDiskCache(dir)
}
