package main

import (
	"fmt"
	"os"
	"path/filepath"
	"text/tabwriter"
	"time"

	"github.com/labstack/gommon/bytes"
	"github.com/spf13/cobra"

	"github.com/eringen/brandkit/domain"
	"github.com/eringen/brandkit/editor"
)

var (
	assetsType   string
	importTab    string
	assetsOutput string
)

var assetsCmd = &cobra.Command{
	Use:   "assets",
	Short: "List and import library assets",
}

var assetsListCmd = &cobra.Command{
	Use:     "list",
	Aliases: []string{"ls"},
	Short:   "List library assets, oldest first",
	RunE:    runAssetsList,
}

var assetsImportCmd = &cobra.Command{
	Use:   "import <file>...",
	Short: "Import image files into the library",
	Long: `Import image files into the library. Files are stored one after another;
a failure is reported and the remaining files are still imported.

Examples:
  brandkit assets import logo.png
  brandkit assets import --type signature sig-*.png`,
	Args: cobra.MinimumNArgs(1),
	RunE: runAssetsImport,
}

var assetsDeleteCmd = &cobra.Command{
	Use:   "delete <id>",
	Short: "Delete one asset by id",
	Args:  cobra.ExactArgs(1),
	RunE:  runAssetsDelete,
}

func init() {
	assetsListCmd.Flags().StringVarP(&assetsType, "type", "t", "", "only list one type (logo, icon, signature, product)")
	assetsListCmd.Flags().StringVarP(&assetsOutput, "output", "o", "table", "output format (table, json, yaml)")
	assetsImportCmd.Flags().StringVarP(&importTab, "type", "t", "logo", "asset type for the imported files")
	assetsCmd.AddCommand(assetsListCmd)
	assetsCmd.AddCommand(assetsImportCmd)
	assetsCmd.AddCommand(assetsDeleteCmd)
}

func runAssetsList(cmd *cobra.Command, args []string) error {
	var only domain.AssetType
	if assetsType != "" {
		t, ok := domain.ParseAssetType(assetsType)
		if !ok {
			return fmt.Errorf("unknown asset type %q", assetsType)
		}
		only = t
	}
	app, err := openApp()
	if err != nil {
		return err
	}
	defer app.Close()

	l := app.Storage.LoadAssets(cmd.Context())
	if l.Degraded() {
		return fmt.Errorf("load assets: %w", l.Err)
	}
	assets := make([]domain.Asset, 0, len(l.Value))
	for _, a := range l.Value {
		if only == "" || a.Type == only {
			assets = append(assets, a)
		}
	}
	if assetsOutput != "table" {
		return encode(cmd.OutOrStdout(), assetsOutput, assets)
	}

	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tTYPE\tNAME\tMIME\tSIZE\tCREATED")
	for _, a := range assets {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\n",
			a.ID, a.Type, a.Name, domain.DataURLMime(a.DataURL),
			bytes.Format(int64(len(a.DataURL))),
			time.UnixMilli(a.CreatedAt).Format(time.DateTime))
	}
	return w.Flush()
}

func runAssetsImport(cmd *cobra.Command, args []string) error {
	tab, ok := editor.ParseTab(importTab)
	if !ok || tab == editor.TabAll {
		return fmt.Errorf("unknown asset type %q", importTab)
	}
	app, err := openApp()
	if err != nil {
		return err
	}
	defer app.Close()

	files := make([]editor.File, 0, len(args))
	for _, path := range args {
		data, err := os.ReadFile(path)
		if err != nil {
			return err
		}
		if int64(len(data)) > app.Config.MaxUploadSize {
			return fmt.Errorf("%s is larger than %s", path, bytes.Format(app.Config.MaxUploadSize))
		}
		files = append(files, editor.File{Name: filepath.Base(path), Data: data})
	}

	ctx := cmd.Context()
	lib := editor.NewAssetLibrary(app.Storage)
	if err := lib.Mount(ctx); err != nil {
		return err
	}
	if err := lib.LoadErr(); err != nil {
		return fmt.Errorf("load assets: %w", err)
	}
	stored, err := lib.Upload(ctx, tab, files)
	fmt.Fprintf(cmd.OutOrStdout(), "imported %d of %d files as %s\n", stored, len(files), tab.UploadType())
	return err
}

func runAssetsDelete(cmd *cobra.Command, args []string) error {
	app, err := openApp()
	if err != nil {
		return err
	}
	defer app.Close()

	if _, err := app.Storage.GetAsset(cmd.Context(), args[0]); err != nil {
		return fmt.Errorf("asset %s: %w", args[0], err)
	}
	if _, err := app.Storage.DeleteAsset(cmd.Context(), args[0]); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "deleted %s\n", args[0])
	return nil
}
