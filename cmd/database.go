package main

import (
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/fatih/color"
	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	"github.com/yungbote/unibridge-backend/internal/app"
	"github.com/yungbote/unibridge-backend/internal/data/db"
	"github.com/yungbote/unibridge-backend/internal/data/repos"
	types "github.com/yungbote/unibridge-backend/internal/domain"
	"github.com/yungbote/unibridge-backend/internal/platform/dbctx"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Create or update the database schema",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := app.LoadConfig(log)
		if err != nil {
			return err
		}
		database, err := app.OpenDatabase(log, cfg)
		if err != nil {
			return err
		}
		defer database.Close()
		color.Green("Schema migrated (%s)", database.Driver())
		return nil
	},
}

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Insert the curated university catalogue",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := app.LoadConfig(log)
		if err != nil {
			return err
		}
		database, err := app.OpenDatabase(log, cfg)
		if err != nil {
			return err
		}
		defer database.Close()
		n, err := db.SeedCatalogue(database.DB())
		if err != nil {
			return err
		}
		if n == 0 {
			color.Yellow("Catalogue already present, nothing inserted")
			return nil
		}
		color.Green("Inserted %d universities", n)
		return nil
	},
}

var (
	catalogEmbedded bool
	catalogLimit    int
)

var catalogCmd = &cobra.Command{
	Use:   "catalog",
	Short: "Print the university catalogue",
	RunE: func(cmd *cobra.Command, args []string) error {
		if catalogEmbedded {
			rows, err := db.Catalogue()
			if err != nil {
				return err
			}
			color.Cyan("Embedded catalogue")
			renderCatalogue(os.Stdout, rows)
			return nil
		}

		cfg, err := app.LoadConfig(log)
		if err != nil {
			return err
		}
		database, err := app.OpenDatabase(log, cfg)
		if err != nil {
			return err
		}
		defer database.Close()
		rows, err := repos.NewUniversityRepo(database.DB(), log).List(dbctx.Context{Ctx: cmd.Context()}, catalogLimit)
		if err != nil {
			return fmt.Errorf("list universities: %w", err)
		}
		color.Cyan("Stored universities (%d)", len(rows))
		renderCatalogue(os.Stdout, rows)
		return nil
	},
}

func init() {
	catalogCmd.Flags().BoolVar(&catalogEmbedded, "embedded", false, "print the embedded seed file instead of the database")
	catalogCmd.Flags().IntVar(&catalogLimit, "limit", 50, "maximum rows to print")
}

func renderCatalogue(w io.Writer, rows []*types.University) {
	table := tablewriter.NewWriter(w)
	table.SetHeader([]string{"Name", "Country", "Degree", "Field", "Tuition", "Difficulty", "AI"})
	table.SetBorder(false)
	table.SetAutoWrapText(false)
	for _, u := range rows {
		ai := ""
		if u.GeneratedByAI {
			ai = "yes"
		}
		table.Append([]string{
			u.Name,
			u.Country,
			u.Degree,
			u.Field,
			"$" + strconv.Itoa(u.TuitionMin) + " - $" + strconv.Itoa(u.TuitionMax),
			string(u.Difficulty),
			ai,
		})
	}
	table.Render()
}
