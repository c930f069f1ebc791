package telegram

import (
	"errors"
	"fmt"
	"strings"

	"github.com/samber/lo"

	app "vision-search/internal/application"
	"vision-search/internal/domain/entity"
)

// maxListedFailures сколько пропущенных файлов перечислять в ответе на /scan
const maxListedFailures = 5

var errSwitch = errors.New("ожидается on или off")

// parseClassList разбирает "person, traffic light" в список классов.
// Названия классов COCO содержат пробелы, поэтому разделитель запятая.
func parseClassList(args string) []string {
	parts := lo.Map(strings.Split(args, ","), func(s string, _ int) string {
		return strings.TrimSpace(s)
	})
	return lo.Compact(parts)
}

// parseThresholdArg разбирает "class=N" или "class=None"
func parseThresholdArg(args string) (class, raw string, err error) {
	class, raw, ok := strings.Cut(args, "=")
	class, raw = strings.TrimSpace(class), strings.TrimSpace(raw)
	if !ok || class == "" || raw == "" {
		return "", "", fmt.Errorf("%w: ожидается /max класс=N", entity.ErrInvalidQuery)
	}
	return class, raw, nil
}

func parseSwitch(arg string) (bool, error) {
	switch strings.ToLower(strings.TrimSpace(arg)) {
	case "on", "да", "1", "true":
		return true, nil
	case "off", "нет", "0", "false":
		return false, nil
	}
	return false, errSwitch
}

func formatMode(mode entity.SearchMode) string {
	if mode == entity.ModeAll {
		return "✅ Режим: all (все выбранные классы на изображении)"
	}
	return "✅ Режим: any (хотя бы один выбранный класс)"
}

// formatClasses перечисляет классы текущих метаданных и встречающиеся количества
func formatClasses(snap *app.Snapshot) string {
	index := snap.Index
	if index.Len() == 0 {
		return fmt.Sprintf("📂 %s\nНа изображениях ничего не найдено.", snap.Source)
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "📂 %s, изображений: %d\n", snap.Source, snap.Store.Len())
	sb.WriteString("📋 Классы (количество на изображении):\n")
	for _, class := range index.UniqueClasses() {
		counts := lo.Map(index.CountOptions(class), func(n int, _ int) string {
			return fmt.Sprint(n)
		})
		fmt.Fprintf(&sb, "%s: %s\n", class, strings.Join(counts, ", "))
	}
	return strings.TrimRight(sb.String(), "\n")
}

func formatReport(report *app.BatchReport, path string) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "✅ Обработано %d из %d изображений.\nМетаданные: %s",
		report.Succeeded(), report.Total(), path)

	if len(report.Failures) == 0 {
		return sb.String()
	}

	sb.WriteString("\n\n⚠️ Пропущены:")
	for _, f := range lo.Slice(report.Failures, 0, maxListedFailures) {
		fmt.Fprintf(&sb, "\n%s", f.Error())
	}
	if rest := len(report.Failures) - maxListedFailures; rest > 0 {
		fmt.Fprintf(&sb, "\n...и ещё %d", rest)
	}
	return sb.String()
}
