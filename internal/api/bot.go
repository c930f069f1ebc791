package telegram

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"image"
	"io"
	"net/http"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"

	app "vision-search/internal/application"
	"vision-search/internal/container"
	"vision-search/internal/domain/entity"
	"vision-search/internal/infrastructure/imageio"
)

const (
	msgStart = `👋 Привет! Я ищу изображения по найденным на них объектам.

📸 Отправьте фото, и я покажу, что на нём нашла модель.
📂 /scan <каталог> — распознать все изображения каталога
📄 /load <файл> — загрузить сохранённые метаданные

/help — справка`

	msgHelp = `ℹ️ Команды:

/detect — распознать одно фото
/scan <каталог> — обработать каталог и сохранить метаданные
/load <metadata.json> — загрузить метаданные
/classes — классы и встречающиеся количества
/mode any|all — любой из классов (OR) или все сразу (AND)
/select person, car — выбрать классы
/max person=2 — не больше 2 объектов класса (None — без ограничения)
/boxes on|off — показывать рамки
/highlight on|off — рисовать только выбранные классы
/search — найти изображения
/export — выгрузить результаты в JSON
/cancel — отменить операцию`

	msgAwaitingPhoto   = "📸 Отправьте фото для распознавания."
	msgCancelled       = "❌ Операция отменена."
	msgSendPhoto       = "📸 Отправьте фото или команду. /help — справка."
	msgUnknownCommand  = "❓ Неизвестная команда. Используйте /help для справки."
	msgProcessing      = "⏳ Обрабатываю изображение..."
	msgScanning        = "⏳ Распознаю изображения каталога..."
	msgProcessingError = "⚠️ Не удалось обработать изображение: %v"
	msgNoDetector      = "⚠️ Модель не загружена, распознавание недоступно."
	msgNoMetadata      = "📂 Сначала загрузите метаданные: /scan или /load."
	msgNoSelection     = "☝️ Выберите классы: /select person, car"
	msgNoResults       = "🔍 Ничего не найдено."
	msgNoExport        = "🔍 Нет результатов для выгрузки. Сначала выполните /search."
)

// Bot представляет Telegram-бота
type Bot struct {
	api       *tgbotapi.BotAPI
	services  *container.Container
	logger    *zap.SugaredLogger
	maxSide   int
	maxPhotos int
}

// Options ограничения ответов бота
type Options struct {
	MaxPhotoSide    int
	MaxResultPhotos int
}

// NewBot создаёт нового бота
func NewBot(token string, services *container.Container, opts Options) (*Bot, error) {
	api, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, err
	}

	services.Logger.Infow("authorized", "account", api.Self.UserName)

	return &Bot{
		api:       api,
		services:  services,
		logger:    services.Logger,
		maxSide:   opts.MaxPhotoSide,
		maxPhotos: opts.MaxResultPhotos,
	}, nil
}

// Run запускает основной цикл обработки сообщений
func (b *Bot) Run(ctx context.Context) error {
	u := tgbotapi.NewUpdate(0)
	u.Timeout = 60

	updates := b.api.GetUpdatesChan(u)
	defer b.api.StopReceivingUpdates()

	for {
		select {
		case <-ctx.Done():
			return nil
		case update, ok := <-updates:
			if !ok {
				return nil
			}
			if update.Message == nil {
				continue
			}
			b.handleMessage(ctx, update.Message)
		}
	}
}

// handleMessage обрабатывает входящее сообщение
func (b *Bot) handleMessage(ctx context.Context, msg *tgbotapi.Message) {
	user, err := b.services.UserService.Get(ctx, msg.From.ID, msg.Chat.ID)
	if err != nil {
		b.logger.Errorw("get user", "error", err)
		return
	}

	// Обработка команд
	if msg.IsCommand() {
		b.handleCommand(ctx, msg, user)
		return
	}

	// Обработка фото
	if len(msg.Photo) > 0 {
		b.handlePhoto(ctx, msg)
		return
	}

	b.sendMessage(msg.Chat.ID, msgSendPhoto)
}

// handleCommand обрабатывает команды бота
func (b *Bot) handleCommand(ctx context.Context, msg *tgbotapi.Message, user *entity.User) {
	chatID := msg.Chat.ID
	args := strings.TrimSpace(msg.CommandArguments())
	users := b.services.UserService

	switch msg.Command() {
	case "start":
		users.SetState(ctx, user.ID, chatID, entity.StateMainMenu)
		b.sendMessage(chatID, msgStart)

	case "help":
		b.sendMessage(chatID, msgHelp)

	case "detect":
		users.BeginDetect(ctx, user.ID, chatID)
		b.sendMessage(chatID, msgAwaitingPhoto)

	case "cancel":
		users.Cancel(ctx, user.ID, chatID)
		b.sendMessage(chatID, msgCancelled)

	case "scan":
		b.handleScan(ctx, chatID, args)

	case "load":
		b.handleLoad(ctx, chatID, args)

	case "classes":
		snap, ok := b.services.Library.Current()
		if !ok {
			b.sendMessage(chatID, msgNoMetadata)
			return
		}
		b.sendMessage(chatID, formatClasses(snap))

	case "mode":
		updated, err := users.SetMode(ctx, user.ID, chatID, args)
		if err != nil {
			b.sendError(chatID, err)
			return
		}
		b.sendMessage(chatID, formatMode(updated.Mode))

	case "select":
		index, err := b.services.SearchService.Index()
		if err != nil {
			b.sendMessage(chatID, msgNoMetadata)
			return
		}
		updated, err := users.SelectClasses(ctx, user.ID, chatID, parseClassList(args), index)
		if err != nil {
			b.sendError(chatID, err)
			return
		}
		b.sendMessage(chatID, "✅ Выбрано: "+strings.Join(updated.Selected, ", "))

	case "max":
		class, raw, err := parseThresholdArg(args)
		if err != nil {
			b.sendError(chatID, err)
			return
		}
		index, err := b.services.SearchService.Index()
		if err != nil {
			b.sendMessage(chatID, msgNoMetadata)
			return
		}
		if _, err := users.SetThreshold(ctx, user.ID, chatID, class, raw, index); err != nil {
			b.sendError(chatID, err)
			return
		}
		b.sendMessage(chatID, fmt.Sprintf("✅ Максимум для %s: %s", class, raw))

	case "boxes", "highlight":
		on, err := parseSwitch(args)
		if err != nil {
			b.sendError(chatID, err)
			return
		}
		showBoxes, highlight := user.ShowBoxes, user.HighlightOnly
		if msg.Command() == "boxes" {
			showBoxes = on
		} else {
			highlight = on
		}
		users.SetDisplay(ctx, user.ID, chatID, showBoxes, highlight)
		b.sendMessage(chatID, "✅ Готово")

	case "search":
		b.handleSearch(ctx, chatID, user)

	case "export":
		b.handleExport(chatID, user)

	default:
		b.sendMessage(chatID, msgUnknownCommand)
	}
}

// handleScan обрабатывает каталог и делает результат текущими метаданными
func (b *Bot) handleScan(ctx context.Context, chatID int64, dir string) {
	if dir == "" {
		b.sendMessage(chatID, "📂 Укажите каталог: /scan path/to/images")
		return
	}
	b.sendMessage(chatID, msgScanning)

	report, err := b.services.InferenceService.ProcessDirectory(ctx, dir)
	if err != nil {
		b.sendError(chatID, err)
		return
	}

	path, err := b.services.MetadataService.SaveForDirectory(ctx, dir, report.Store)
	if err != nil {
		b.sendError(chatID, err)
		return
	}
	b.services.Library.Replace(report.Store, path)
	b.resetSearches(ctx)

	b.sendMessage(chatID, formatReport(report, path))
}

// handleLoad загружает сохранённые метаданные
func (b *Bot) handleLoad(ctx context.Context, chatID int64, path string) {
	if path == "" {
		b.sendMessage(chatID, "📄 Укажите файл: /load path/to/metadata.json")
		return
	}

	store, err := b.services.MetadataService.Load(ctx, path)
	if err != nil {
		b.sendError(chatID, err)
		return
	}
	b.services.Library.Replace(store, path)
	b.resetSearches(ctx)

	b.sendMessage(chatID, fmt.Sprintf("✅ Загружены метаданные %d изображений.", store.Len()))
}

// resetSearches сбрасывает выбор всех пользователей: классы старых метаданных могли исчезнуть
func (b *Bot) resetSearches(ctx context.Context) {
	if err := b.services.UserService.ResetSearches(ctx); err != nil {
		b.logger.Errorw("reset searches", "error", err)
	}
}

// handleSearch выполняет поиск и отправляет найденные изображения
func (b *Bot) handleSearch(ctx context.Context, chatID int64, user *entity.User) {
	if len(user.Selected) == 0 {
		b.sendMessage(chatID, msgNoSelection)
		return
	}

	q, err := user.Query()
	if err != nil {
		b.sendError(chatID, err)
		return
	}
	results, err := b.services.SearchService.Search(q)
	if errors.Is(err, app.ErrNoMetadata) {
		b.sendMessage(chatID, msgNoMetadata)
		return
	}
	if err != nil {
		b.sendError(chatID, err)
		return
	}
	b.services.UserService.SaveResults(ctx, user.ID, chatID, results)

	if results.Len() == 0 {
		b.sendMessage(chatID, msgNoResults)
		return
	}
	b.sendMessage(chatID, fmt.Sprintf("🔍 Найдено изображений: %d", results.Len()))

	shown := entity.NewMetadataStore(results.Records()[:min(results.Len(), b.maxPhotos)])
	for _, r := range b.services.AnnotationService.RenderAll(shown, user.RenderOptions()) {
		if r.Err != nil {
			b.sendMessage(chatID, fmt.Sprintf("⚠️ Не удалось показать %s: %v", r.Record.Name(), r.Err))
			continue
		}
		b.sendImage(chatID, r.Image, entity.Caption(r.Record, user.Selected))
	}
	if results.Len() > b.maxPhotos {
		b.sendMessage(chatID, fmt.Sprintf("Показаны первые %d. Полный список: /export", b.maxPhotos))
	}
}

// handleExport отправляет результаты последнего поиска документом
func (b *Bot) handleExport(chatID int64, user *entity.User) {
	if user.Results == nil || user.Results.Len() == 0 {
		b.sendMessage(chatID, msgNoExport)
		return
	}

	data, err := json.MarshalIndent(user.Results, "", "  ")
	if err != nil {
		b.sendError(chatID, err)
		return
	}
	doc := tgbotapi.NewDocument(chatID, tgbotapi.FileBytes{Name: "search_results.json", Bytes: data})
	if _, err := b.api.Send(doc); err != nil {
		b.logger.Errorw("send document", "error", err)
	}
}

// handlePhoto распознаёт объекты на присланном фото
func (b *Bot) handlePhoto(ctx context.Context, msg *tgbotapi.Message) {
	chatID := msg.Chat.ID
	defer b.services.UserService.SetState(ctx, msg.From.ID, chatID, entity.StateMainMenu)
	b.services.UserService.SetState(ctx, msg.From.ID, chatID, entity.StateProcessing)

	b.sendMessage(chatID, msgProcessing)

	// Получаем файл с максимальным разрешением
	photo := msg.Photo[len(msg.Photo)-1]

	imageData, err := b.downloadFile(photo.FileID)
	if err != nil {
		b.logger.Errorw("download photo", "error", err)
		b.sendMessage(chatID, fmt.Sprintf(msgProcessingError, err))
		return
	}

	img, err := b.services.Loader.Decode(bytes.NewReader(imageData))
	if err != nil {
		b.sendMessage(chatID, fmt.Sprintf(msgProcessingError, err))
		return
	}

	record, err := b.services.InferenceService.ProcessImage(ctx, photo.FileUniqueID+".jpg", img)
	if err != nil {
		if errors.Is(err, app.ErrNoDetector) {
			b.sendMessage(chatID, msgNoDetector)
			return
		}
		b.sendMessage(chatID, fmt.Sprintf(msgProcessingError, err))
		return
	}

	annotated := b.services.AnnotationService.RenderImage(img, record, entity.SingleImageOptions(record))
	b.sendImage(chatID, annotated, entity.Caption(record, nil))
}

// downloadFile скачивает файл из Telegram
func (b *Bot) downloadFile(fileID string) ([]byte, error) {
	file, err := b.api.GetFile(tgbotapi.FileConfig{FileID: fileID})
	if err != nil {
		return nil, fmt.Errorf("get file: %w", err)
	}

	fileURL := file.Link(b.api.Token)

	resp, err := http.Get(fileURL)
	if err != nil {
		return nil, fmt.Errorf("download file: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read file: %w", err)
	}

	return data, nil
}

// sendImage отправляет изображение в PNG с подписью
func (b *Bot) sendImage(chatID int64, img image.Image, caption string) {
	data, err := imageio.EncodePNG(imageio.Fit(img, b.maxSide))
	if err != nil {
		b.logger.Errorw("encode photo", "error", err)
		return
	}

	photo := tgbotapi.NewPhoto(chatID, tgbotapi.FileBytes{Name: "result.png", Bytes: data})
	photo.Caption = caption
	if _, err := b.api.Send(photo); err != nil {
		b.logger.Errorw("send photo", "error", err)
	}
}

// sendError сообщает пользователю причину ошибки
func (b *Bot) sendError(chatID int64, err error) {
	b.sendMessage(chatID, "⚠️ "+err.Error())
}

// sendMessage отправляет текстовое сообщение
func (b *Bot) sendMessage(chatID int64, text string) {
	msg := tgbotapi.NewMessage(chatID, text)
	if _, err := b.api.Send(msg); err != nil {
		b.logger.Errorw("send message", "error", err)
	}
}
