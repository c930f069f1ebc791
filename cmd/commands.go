package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/samber/lo"
	"github.com/urfave/cli/v2"

	"vision-search/config"
	telegram "vision-search/internal/api"
	"vision-search/internal/domain/entity"
	"vision-search/internal/infrastructure/imageio"
)

func detectCommand() *cli.Command {
	return &cli.Command{
		Name:      "detect",
		Usage:     "распознать объекты на одном изображении",
		ArgsUsage: "<image>",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "out", Usage: "сохранить изображение с рамками в PNG"},
		},
		Action: func(c *cli.Context) error {
			path := c.Args().First()
			if path == "" {
				return errors.New("image path is required")
			}

			rt, err := bootstrap(requireDetector, nil)
			if err != nil {
				return err
			}
			defer rt.Close()

			record, err := rt.services.InferenceService.ProcessSingle(c.Context, path)
			if err != nil {
				return err
			}
			if err := printJSON(c, record); err != nil {
				return err
			}

			out := c.String("out")
			if out == "" {
				return nil
			}
			img, err := rt.services.AnnotationService.Render(record, entity.SingleImageOptions(record))
			if err != nil {
				return err
			}
			return imageio.Save(out, img)
		},
	}
}

func scanCommand() *cli.Command {
	return &cli.Command{
		Name:      "scan",
		Usage:     "распознать изображения каталога и сохранить метаданные",
		ArgsUsage: "<dir>",
		Flags: []cli.Flag{
			&cli.BoolFlag{Name: "recursive", Aliases: []string{"r"}, Usage: "обходить подкаталоги"},
			&cli.IntFlag{Name: "workers", Aliases: []string{"w"}, Usage: "число параллельных обработчиков"},
			&cli.BoolFlag{Name: "strict", Usage: "завершиться с ошибкой, если часть изображений пропущена"},
		},
		Action: func(c *cli.Context) error {
			dir := c.Args().First()
			if dir == "" {
				return errors.New("directory is required")
			}

			rt, err := bootstrap(requireDetector, func(cfg *config.Config) {
				if c.IsSet("recursive") {
					cfg.Recursive = c.Bool("recursive")
				}
				if c.IsSet("workers") {
					cfg.Workers = c.Int("workers")
				}
			})
			if err != nil {
				return err
			}
			defer rt.Close()

			report, err := rt.services.InferenceService.ProcessDirectory(c.Context, dir)
			if err != nil {
				return err
			}
			path, err := rt.services.MetadataService.SaveForDirectory(c.Context, dir, report.Store)
			if err != nil {
				return err
			}

			fmt.Fprintf(c.App.Writer, "processed %d of %d images, metadata saved to %s\n",
				report.Succeeded(), report.Total(), path)
			for _, f := range report.Failures {
				fmt.Fprintln(c.App.ErrWriter, "skipped:", f.Error())
			}

			if c.Bool("strict") {
				return report.Err()
			}
			return nil
		},
	}
}

func classesCommand() *cli.Command {
	return &cli.Command{
		Name:      "classes",
		Usage:     "показать классы и встречающиеся количества",
		ArgsUsage: "<metadata.json>",
		Action: func(c *cli.Context) error {
			path := c.Args().First()
			if path == "" {
				return errors.New("metadata path is required")
			}

			rt, err := bootstrap(withoutDetector, nil)
			if err != nil {
				return err
			}
			defer rt.Close()

			store, err := rt.services.MetadataService.Load(c.Context, path)
			if err != nil {
				return err
			}
			snap := rt.services.Library.Replace(store, path)

			for _, class := range snap.Index.UniqueClasses() {
				counts := lo.Map(snap.Index.CountOptions(class), func(n int, _ int) string {
					return fmt.Sprint(n)
				})
				fmt.Fprintf(c.App.Writer, "%s: %s\n", class, strings.Join(counts, ", "))
			}
			return nil
		},
	}
}

func searchCommand() *cli.Command {
	return &cli.Command{
		Name:      "search",
		Usage:     "найти изображения по классам и количествам",
		ArgsUsage: "<metadata.json>",
		Flags: []cli.Flag{
			&cli.StringSliceFlag{Name: "class", Aliases: []string{"c"}, Usage: "искомый класс", Required: true},
			&cli.StringFlag{Name: "mode", Value: string(entity.ModeAny), Usage: "any (OR) или all (AND)"},
			&cli.StringSliceFlag{Name: "max", Usage: "ограничение class=N, None снимает ограничение"},
			&cli.StringFlag{Name: "export", Usage: "сохранить результаты в JSON"},
			&cli.StringFlag{Name: "render-dir", Usage: "сохранить изображения с рамками в каталог"},
			&cli.BoolFlag{Name: "boxes", Value: true, Usage: "рисовать рамки"},
			&cli.BoolFlag{Name: "highlight", Value: true, Usage: "рисовать только выбранные классы"},
		},
		Action: func(c *cli.Context) error {
			path := c.Args().First()
			if path == "" {
				return errors.New("metadata path is required")
			}

			mode, err := entity.ParseMode(c.String("mode"))
			if err != nil {
				return err
			}
			thresholds, err := parseThresholds(c.StringSlice("max"))
			if err != nil {
				return err
			}
			q, err := entity.NewSearchQuery(mode, c.StringSlice("class"), thresholds)
			if err != nil {
				return err
			}

			rt, err := bootstrap(withoutDetector, nil)
			if err != nil {
				return err
			}
			defer rt.Close()

			store, err := rt.services.MetadataService.Load(c.Context, path)
			if err != nil {
				return err
			}
			snap := rt.services.Library.Replace(store, path)

			results, err := rt.services.SearchService.Search(q)
			if err != nil {
				return err
			}
			// Произвольное ограничение допустимо, но не совпадает ни с одним вариантом из индекса
			for class, limit := range q.Thresholds {
				if err := entity.CheckThreshold(snap.Index, class, limit); err != nil {
					fmt.Fprintln(c.App.ErrWriter, "warning:", err)
				}
			}
			for _, r := range results.Records() {
				fmt.Fprintln(c.App.Writer, r.ImagePath())
			}

			if export := c.String("export"); export != "" {
				if err := rt.services.MetadataService.Export(c.Context, export, results); err != nil {
					return err
				}
			}

			if dir := c.String("render-dir"); dir != "" {
				opts := entity.RenderOptions{
					ShowBoxes:             c.Bool("boxes"),
					HighlightOnlySelected: c.Bool("highlight"),
					SelectedClasses:       q.Classes,
				}
				return renderResults(c, rt, results, opts, dir)
			}
			return nil
		},
	}
}

func botCommand() *cli.Command {
	return &cli.Command{
		Name:  "bot",
		Usage: "запустить Telegram-бота",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "metadata", Usage: "загрузить метаданные при старте"},
		},
		Action: func(c *cli.Context) error {
			rt, err := bootstrap(optionalDetector, nil)
			if err != nil {
				return err
			}
			defer rt.Close()

			if rt.cfg.TelegramToken == "" {
				return errors.New("TELEGRAM_TOKEN is required")
			}

			if path := c.String("metadata"); path != "" {
				store, err := rt.services.MetadataService.Load(c.Context, path)
				if err != nil {
					return err
				}
				rt.services.Library.Replace(store, path)
			}

			bot, err := telegram.NewBot(rt.cfg.TelegramToken, rt.services, telegram.Options{
				MaxPhotoSide:    rt.cfg.MaxPhotoSide,
				MaxResultPhotos: rt.cfg.MaxResultPhotos,
			})
			if err != nil {
				return fmt.Errorf("create bot: %w", err)
			}

			rt.logger.Info("bot is running")
			return bot.Run(c.Context)
		},
	}
}

// renderResults сохраняет найденные изображения с рамками.
// Ошибка одного изображения не прерывает остальные.
func renderResults(c *cli.Context, rt *runtime, results *entity.MetadataStore, opts entity.RenderOptions, dir string) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}

	for i, r := range rt.services.AnnotationService.RenderAll(results, opts) {
		if r.Err != nil {
			fmt.Fprintln(c.App.ErrWriter, "render skipped:", r.Err)
			continue
		}
		name := fmt.Sprintf("%03d_%s.png", i, strings.TrimSuffix(r.Record.Name(), filepath.Ext(r.Record.Name())))
		if err := imageio.Save(filepath.Join(dir, name), r.Image); err != nil {
			return err
		}
	}
	return nil
}

// parseThresholds разбирает значения --max вида class=N
func parseThresholds(values []string) (map[string]int, error) {
	thresholds := make(map[string]int, len(values))
	for _, v := range values {
		class, raw, ok := strings.Cut(v, "=")
		if !ok || strings.TrimSpace(class) == "" {
			return nil, fmt.Errorf("%w: --max %q, expected class=N", entity.ErrInvalidQuery, v)
		}
		limit, bounded, err := entity.ParseThreshold(strings.TrimSpace(raw))
		if err != nil {
			return nil, err
		}
		if bounded {
			thresholds[strings.TrimSpace(class)] = limit
		}
	}
	return thresholds, nil
}

func printJSON(c *cli.Context, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(c.App.Writer, string(data))
	return err
}
