package main

import (
	"Foodgram-Backend/cmd/config"
	migration "Foodgram-Backend/cmd/database/migrate"
	"Foodgram-Backend/internal/utils"
	"Foodgram-Backend/pkg/ingredient"
	"Foodgram-Backend/pkg/log"
	"Foodgram-Backend/pkg/tag"
	"bufio"
	"context"
	"errors"
	"fmt"
	"github.com/urfave/cli/v2"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"gorm.io/gorm"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"
)

func main() {
	cliApp := &cli.App{
		Name:  "foodgram",
		Usage: "recipe sharing backend",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "config",
				Value: "config.yaml",
				Usage: "path to the yaml configuration",
			},
		},
		Before: func(ctx *cli.Context) error {
			utils.LoadConfigFrom(ctx.String("config"))
			return log.Setup(log.Options{
				Level:  utils.GetConfig("LOG_LEVEL"),
				Output: utils.GetConfig("LOG_OUTPUT"),
				Format: utils.GetConfig("LOG_FORMAT"),
			})
		},
		Commands: []*cli.Command{
			{
				Name:   "serve",
				Usage:  "start http server",
				Action: serve,
			},
			{
				Name:  "migrate",
				Usage: "create or update database tables",
				Action: withDB(func(ctx *cli.Context, db *gorm.DB) error {
					return migration.Migrate(db)
				}),
			},
			{
				Name:  "load-ingredients",
				Usage: "import ingredients from a JSON file",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "file", Value: "data/ingredients.json"},
				},
				Action: withDB(loadIngredients),
			},
			{
				Name:  "load-tags",
				Usage: "import tags from a JSON file",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "file", Value: "data/tags.json"},
				},
				Action: withDB(loadTags),
			},
			{
				Name:   "remove-duplicate-ingredients",
				Usage:  "keep the lowest id of every (name, measurement unit) pair",
				Action: withDB(removeDuplicateIngredients),
			},
			{
				Name:  "purge-ingredients",
				Usage: "delete every ingredient",
				Flags: []cli.Flag{
					&cli.BoolFlag{Name: "force", Usage: "skip the confirmation prompt"},
				},
				Action: withDB(purgeIngredients),
			},
			{
				Name:  "normalize-units",
				Usage: "fold household measurement units into grams and millilitres",
				Flags: []cli.Flag{
					&cli.BoolFlag{Name: "force", Usage: "skip the confirmation prompt"},
				},
				Action: withDB(normalizeUnits),
			},
		},
	}
	if err := cliApp.Run(os.Args); err != nil {
		log.L.Fatal("command failed", zap.Error(err))
	}
}

func withDB(action func(ctx *cli.Context, db *gorm.DB) error) cli.ActionFunc {
	return func(ctx *cli.Context) error {
		db, err := config.ConnectDB()
		if err != nil {
			return err
		}
		return action(ctx, db)
	}
}

func serve(ctx *cli.Context) error {
	db, err := config.ConnectDB()
	if err != nil {
		return err
	}
	app, err := config.NewApp(db)
	if err != nil {
		return err
	}

	port := utils.GetConfig("APP_PORT")
	if port == "" {
		port = "8000"
	}

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGTERM, syscall.SIGQUIT, syscall.SIGINT)

	eg, groupCtx := errgroup.WithContext(ctx.Context)
	log.L.Info("server starting", zap.String("port", port))

	eg.Go(func() error {
		return app.Listen(":" + port)
	})

	eg.Go(func() error {
		defer func() {
			log.L.Info("server stopping")
			if err := app.ShutdownWithTimeout(3 * time.Second); err != nil {
				log.L.Info("server stopping", zap.Error(err))
			}
		}()

		select {
		case <-groupCtx.Done():
			return groupCtx.Err()
		case <-quit:
			return nil
		}
	})

	if err := eg.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}

	log.L.Info("server stopped")
	return nil
}

func loadIngredients(ctx *cli.Context, db *gorm.DB) error {
	file, err := os.Open(ctx.String("file"))
	if err != nil {
		return err
	}
	defer file.Close()

	service := ingredient.NewIngredientService(ingredient.NewIngredientRepository(db))
	count, err := service.LoadIngredients(ctx.Context, file)
	if err != nil {
		return err
	}
	log.L.Info("ingredients loaded", zap.Int64("count", count))
	return nil
}

func loadTags(ctx *cli.Context, db *gorm.DB) error {
	file, err := os.Open(ctx.String("file"))
	if err != nil {
		return err
	}
	defer file.Close()

	service := tag.NewTagService(tag.NewTagRepository(db))
	count, err := service.LoadTags(ctx.Context, file)
	if err != nil {
		return err
	}
	log.L.Info("tags loaded", zap.Int64("count", count))
	return nil
}

func removeDuplicateIngredients(ctx *cli.Context, db *gorm.DB) error {
	service := ingredient.NewIngredientService(ingredient.NewIngredientRepository(db))
	removed, err := service.RemoveDuplicates(ctx.Context)
	if err != nil {
		return err
	}
	log.L.Info("duplicate ingredients removed", zap.Int64("count", removed))
	return nil
}

func purgeIngredients(ctx *cli.Context, db *gorm.DB) error {
	service := ingredient.NewIngredientService(ingredient.NewIngredientRepository(db))
	total, err := service.CountIngredients(ctx.Context)
	if err != nil {
		return err
	}
	if total == 0 {
		log.L.Info("no ingredients to delete")
		return nil
	}

	if !ctx.Bool("force") {
		question := fmt.Sprintf("Delete all %d ingredients? Recipes lose their ingredient rows.", total)
		if !confirm(os.Stdin, ctx.App.Writer, question) {
			log.L.Info("purge cancelled")
			return nil
		}
	}

	deleted, err := service.PurgeIngredients(ctx.Context)
	if err != nil {
		return err
	}
	log.L.Info("ingredients purged", zap.Int64("count", deleted))
	return nil
}

func normalizeUnits(ctx *cli.Context, db *gorm.DB) error {
	service := ingredient.NewIngredientService(ingredient.NewIngredientRepository(db))
	pending, err := service.CountUnitsToNormalize(ctx.Context, ingredient.DefaultUnitReplacements)
	if err != nil {
		return err
	}
	if pending == 0 {
		log.L.Info("no measurement units to normalize")
		return nil
	}

	if !ctx.Bool("force") {
		question := fmt.Sprintf("Rewrite the measurement unit of %d ingredients?", pending)
		if !confirm(os.Stdin, ctx.App.Writer, question) {
			log.L.Info("normalization cancelled")
			return nil
		}
	}

	updated, err := service.NormalizeUnits(ctx.Context, ingredient.DefaultUnitReplacements)
	if err != nil {
		return err
	}
	for unit, count := range updated {
		log.L.Info("measurement unit normalized",
			zap.String("from", unit),
			zap.String("to", ingredient.DefaultUnitReplacements[unit]),
			zap.Int64("count", count),
		)
	}
	return nil
}

// confirm asks a yes/no question and accepts only an explicit yes.
func confirm(in io.Reader, out io.Writer, question string) bool {
	fmt.Fprintf(out, "%s [y/N]: ", question)
	answer, err := bufio.NewReader(in).ReadString('\n')
	if err != nil && answer == "" {
		return false
	}
	switch strings.ToLower(strings.TrimSpace(answer)) {
	case "y", "yes":
		return true
	}
	return false
}
