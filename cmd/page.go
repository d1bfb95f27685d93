package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	storefront "github.com/emrgen/storefront"
	"github.com/emrgen/storefront/internal/config"
	"github.com/emrgen/storefront/internal/document"
	"github.com/fatih/color"
	"github.com/olekukonko/tablewriter"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(createPageCmd())
	rootCmd.AddCommand(getPageCmd())
	rootCmd.AddCommand(listPagesCmd())
	rootCmd.AddCommand(draftPageCmd())
	rootCmd.AddCommand(publishPageCmd())
	rootCmd.AddCommand(unpublishPageCmd())
	rootCmd.AddCommand(rollbackPageCmd())
	rootCmd.AddCommand(listVersionsCmd())
	rootCmd.AddCommand(deletePageCmd())
	rootCmd.AddCommand(exportPageCmd())
	rootCmd.AddCommand(importPageCmd())
}

func newClient() *storefront.Client {
	return storefront.NewClient(config.LoadConfig().HTTPPort).WithToken(contextToken())
}

func createPageCmd() *cobra.Command {
	var storeID string
	var slug string
	var pageType string
	var fromTemplate bool

	var required = []string{"store-id", "slug"}

	command := &cobra.Command{
		Use:     "create",
		Short:   "create a page",
		Example: "storefront create -s <store-id> -l <slug> -p <page-type>",
		Run: func(cmd *cobra.Command, args []string) {
			if checkMissingFlags(cmd, required) {
				return
			}

			page, err := newClient().CreatePage(context.TODO(), &storefront.CreatePageRequest{
				StoreID:      storeID,
				Slug:         slug,
				PageType:     pageType,
				FromTemplate: fromTemplate,
			})
			if err != nil {
				logrus.Error(err)
				return
			}

			logrus.Infof("page created with id: %s", page.ID)
		},
	}

	command.Flags().StringVarP(&storeID, "store-id", "s", "", "store id (required)")
	command.Flags().StringVarP(&slug, "slug", "l", "", "page slug (required)")
	command.Flags().StringVarP(&pageType, "page-type", "p", "page", "page type")
	command.Flags().BoolVarP(&fromTemplate, "template", "m", false, "seed from the starter template")
	bindContextFlags(command)

	command.Flags().SortFlags = false

	return command
}

func getPageCmd() *cobra.Command {
	var pageID string

	var required = []string{"page-id"}

	command := &cobra.Command{
		Use:     "get",
		Short:   "get a page",
		Example: "storefront get -d <page-id>",
		Run: func(cmd *cobra.Command, args []string) {
			if checkMissingFlags(cmd, required) {
				return
			}

			page, err := newClient().GetPage(context.TODO(), pageID)
			if err != nil {
				logrus.Error(err)
				return
			}

			table := tablewriter.NewWriter(os.Stdout)
			table.SetHeader([]string{"ID", "Slug", "Type", "Status", "Versions", "Sections"})
			table.Append([]string{page.ID, page.Slug, page.PageType, page.Status, strconv.FormatInt(page.VersionCount, 10), strconv.Itoa(len(page.Sections))})
			table.Render()

			for _, section := range page.Sections {
				hidden := ""
				if section.Hidden() {
					hidden = " (hidden)"
				}
				printField(section.Type, section.ID+hidden)
			}
		},
	}

	command.Flags().StringVarP(&pageID, "page-id", "d", "", "page id (required)")
	bindContextFlags(command)

	command.SetHelpCommand(&cobra.Command{Use: "no-help", Hidden: true})
	command.Flags().SortFlags = false

	return command
}

func listPagesCmd() *cobra.Command {
	var storeID string

	var required = []string{"store-id"}
	command := &cobra.Command{
		Use:   "list",
		Short: "list pages",
		Run: func(cmd *cobra.Command, args []string) {
			if checkMissingFlags(cmd, required) {
				return
			}

			res, err := newClient().ListPages(context.TODO(), storeID)
			if err != nil {
				logrus.Error(err)
				return
			}

			table := tablewriter.NewWriter(os.Stdout)
			table.SetHeader([]string{"ID", "Slug", "Type", "Status", "Versions"})
			for _, page := range res.Pages {
				table.Append([]string{page.ID, page.Slug, page.PageType, page.Status, strconv.FormatInt(page.VersionCount, 10)})
			}

			table.Render()
		},
	}

	command.Flags().StringVarP(&storeID, "store-id", "s", "", "store id (required)")
	bindContextFlags(command)
	command.Flags().SortFlags = false

	return command
}

func draftPageCmd() *cobra.Command {
	var pageID string
	var file string

	var required = []string{"page-id", "file"}

	command := &cobra.Command{
		Use:     "draft",
		Short:   "save a page draft from a sections file",
		Example: "storefront draft -d <page-id> -i sections.json",
		Run: func(cmd *cobra.Command, args []string) {
			if checkMissingFlags(cmd, required) {
				return
			}

			data, err := os.ReadFile(file)
			if err != nil {
				logrus.Error(err)
				return
			}

			var sections document.Sections
			if err := json.Unmarshal(data, &sections); err != nil {
				logrus.Error(err)
				return
			}

			page, err := newClient().SaveDraft(context.TODO(), pageID, sections)
			if err != nil {
				logrus.Error(err)
				return
			}

			logrus.Infof("draft saved with %d sections", len(page.Sections))
		},
	}

	command.Flags().StringVarP(&pageID, "page-id", "d", "", "page id (required)")
	command.Flags().StringVarP(&file, "file", "i", "", "sections json file (required)")
	bindContextFlags(command)
	command.Flags().SortFlags = false

	return command
}

func publishPageCmd() *cobra.Command {
	var pageID string

	var required = []string{"page-id"}

	command := &cobra.Command{
		Use:   "publish",
		Short: "publish a page",
		Run: func(cmd *cobra.Command, args []string) {
			if checkMissingFlags(cmd, required) {
				return
			}

			version, err := newClient().Publish(context.TODO(), pageID)
			if err != nil {
				logrus.Error(err)
				return
			}

			table := tablewriter.NewWriter(os.Stdout)
			table.SetHeader([]string{"ID", "Version", "Published At"})
			table.Append([]string{version.PageID, strconv.FormatInt(version.VersionIndex, 10), version.PublishedAt.Format(time.RFC3339)})
			table.Render()
		},
	}

	command.Flags().StringVarP(&pageID, "page-id", "d", "", "page id to publish")
	bindContextFlags(command)
	command.Flags().SortFlags = false

	return command
}

func unpublishPageCmd() *cobra.Command {
	var pageID string

	var required = []string{"page-id"}

	command := &cobra.Command{
		Use:   "unpublish",
		Short: "take a page offline",
		Run: func(cmd *cobra.Command, args []string) {
			if checkMissingFlags(cmd, required) {
				return
			}

			if err := newClient().Unpublish(context.TODO(), pageID); err != nil {
				logrus.Error(err)
				return
			}

			logrus.Infof("page %s unpublished", pageID)
		},
	}

	command.Flags().StringVarP(&pageID, "page-id", "d", "", "page id to unpublish")
	bindContextFlags(command)
	command.Flags().SortFlags = false

	return command
}

func rollbackPageCmd() *cobra.Command {
	var pageID string
	var version int64

	var required = []string{"page-id", "version"}

	command := &cobra.Command{
		Use:   "rollback",
		Short: "publish an old version as the newest one",
		Run: func(cmd *cobra.Command, args []string) {
			if checkMissingFlags(cmd, required) {
				return
			}

			color.Magenta("rolling page %s back to version %d\n", pageID, version)

			rolled, err := newClient().Rollback(context.TODO(), pageID, version)
			if err != nil {
				logrus.Error(err)
				return
			}

			table := tablewriter.NewWriter(os.Stdout)
			table.SetHeader([]string{"ID", "New Version"})
			table.Append([]string{rolled.PageID, strconv.FormatInt(rolled.VersionIndex, 10)})
			table.Render()
		},
	}

	command.Flags().StringVarP(&pageID, "page-id", "d", "", "page id (required)")
	command.Flags().Int64VarP(&version, "version", "v", 0, "version to roll back to (required)")
	bindContextFlags(command)
	command.Flags().SortFlags = false

	return command
}

func listVersionsCmd() *cobra.Command {
	var pageID string

	var required = []string{"page-id"}

	command := &cobra.Command{
		Use:   "versions",
		Short: "list page versions",
		Run: func(cmd *cobra.Command, args []string) {
			if checkMissingFlags(cmd, required) {
				return
			}

			res, err := newClient().ListVersions(context.TODO(), pageID)
			if err != nil {
				logrus.Error(err)
				return
			}

			table := tablewriter.NewWriter(os.Stdout)
			table.SetHeader([]string{"Version", "Published At"})
			for _, version := range res.Versions {
				table.Append([]string{strconv.FormatInt(version.VersionIndex, 10), version.PublishedAt.Format(time.RFC3339)})
			}

			table.Render()
		},
	}

	command.Flags().StringVarP(&pageID, "page-id", "d", "", "page id (required)")
	bindContextFlags(command)
	command.Flags().SortFlags = false

	return command
}

func deletePageCmd() *cobra.Command {
	var pageID string

	var required = []string{"page-id"}

	command := &cobra.Command{
		Use:   "delete",
		Short: "delete a page",
		Run: func(cmd *cobra.Command, args []string) {
			if checkMissingFlags(cmd, required) {
				return
			}

			if err := newClient().DeletePage(context.TODO(), pageID); err != nil {
				logrus.Error(err)
				return
			}

			logrus.Infof("page %s deleted", pageID)
		},
	}

	command.Flags().StringVarP(&pageID, "page-id", "d", "", "page id (required)")
	bindContextFlags(command)
	command.Flags().SortFlags = false

	return command
}

func exportPageCmd() *cobra.Command {
	var pageID string
	var out string

	var required = []string{"page-id", "out"}

	command := &cobra.Command{
		Use:     "export",
		Short:   "export a page as a template blob",
		Example: "storefront export -d <page-id> -o home.json.gz",
		Run: func(cmd *cobra.Command, args []string) {
			if checkMissingFlags(cmd, required) {
				return
			}

			blob, err := newClient().ExportTemplate(context.TODO(), pageID)
			if err != nil {
				logrus.Error(err)
				return
			}

			if err := os.WriteFile(out, blob, 0644); err != nil {
				logrus.Error(err)
				return
			}

			logrus.Infof("template written to %s (%d bytes)", out, len(blob))
		},
	}

	command.Flags().StringVarP(&pageID, "page-id", "d", "", "page id (required)")
	command.Flags().StringVarP(&out, "out", "o", "", "output file (required)")
	bindContextFlags(command)
	command.Flags().SortFlags = false

	return command
}

func importPageCmd() *cobra.Command {
	var storeID string
	var slug string
	var file string

	var required = []string{"store-id", "slug", "file"}

	command := &cobra.Command{
		Use:     "import",
		Short:   "create a page from a template blob",
		Example: "storefront import -s <store-id> -l <slug> -i home.json.gz",
		Run: func(cmd *cobra.Command, args []string) {
			if checkMissingFlags(cmd, required) {
				return
			}

			blob, err := os.ReadFile(file)
			if err != nil {
				logrus.Error(err)
				return
			}

			page, err := newClient().ImportTemplate(context.TODO(), storeID, slug, blob)
			if err != nil {
				logrus.Error(err)
				return
			}

			logrus.Infof("page created with id: %s", page.ID)
		},
	}

	command.Flags().StringVarP(&storeID, "store-id", "s", "", "store id (required)")
	command.Flags().StringVarP(&slug, "slug", "l", "", "page slug (required)")
	command.Flags().StringVarP(&file, "file", "i", "", "template blob file (required)")
	bindContextFlags(command)
	command.Flags().SortFlags = false

	return command
}

func printField(label, value string) {
	color.Set(color.FgCyan)
	fmt.Print(label)
	color.Unset()
	fmt.Printf(": %s\n", value)
}

// checkMissingFlags checks if the required flags are set and returns ok if they are set
func checkMissingFlags(cmd *cobra.Command, flags []string) bool {
	var missingFlags []string
	var providedFlags []string
	for _, required := range flags {
		if cmd.Flag(required).Changed == false {
			missingFlags = append(missingFlags, required)
		} else {
			value := cmd.Flag(required).Value.String()
			providedFlags = append(providedFlags, fmt.Sprintf("--%s=%s", required, value))
		}
	}

	if len(missingFlags) > 0 {
		var msg string
		for _, f := range missingFlags {
			msg += fmt.Sprintf("--%s ", f)
		}

		color.Red("missing: %s\n", msg)
		if len(providedFlags) > 0 {
			provided := strings.Join(providedFlags, " ")
			color.Green("provide: %s\n", provided)
		}

		cmd.Println("")

		return true
	}

	return false
}
