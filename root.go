package main

import (
	"github.com/spf13/cobra"
)

var cfgFile string

var rootCmd = &cobra.Command{
	Use:   "digilib",
	Short: "Digital library catalog and reader service",
	Long: `digilib serves a catalog of books and e-books to a paging reader.

Commands:
  serve   run the HTTP API
  import  fetch books from Project Gutenberg, Wikipedia and the library
          workbook and write them to the seed file`,
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "YAML config file (settings also come from .env and the environment)")
	rootCmd.AddCommand(serveCmd, importCmd)
}
