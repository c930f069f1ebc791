package container

import (
	"go.uber.org/zap"

	app "vision-search/internal/application"
	"vision-search/internal/domain/port"
)

type Container struct {
	Library           *app.Library
	UserService       *app.UserService
	InferenceService  *app.InferenceService
	SearchService     *app.SearchService
	AnnotationService *app.AnnotationService
	MetadataService   *app.MetadataService
	Loader            port.ImageLoader
	Logger            *zap.SugaredLogger
}

// Deps внешние зависимости, собранные в main
type Deps struct {
	UserRepo     port.UserRepository
	MetadataRepo port.MetadataRepository
	Detector     port.ObjectDetector // может быть nil: поиск работает без модели
	Loader       port.ImageLoader
	Renderer     port.AnnotationRenderer
	Logger       *zap.SugaredLogger
	Inference    app.InferenceOptions
	MetadataFile string
}

func New(deps Deps) *Container {
	library := app.NewLibrary()

	return &Container{
		Library:           library,
		UserService:       app.NewUserService(deps.UserRepo),
		InferenceService:  app.NewInferenceService(deps.Detector, deps.Loader, deps.Logger, deps.Inference),
		SearchService:     app.NewSearchService(library, deps.Logger),
		AnnotationService: app.NewAnnotationService(deps.Loader, deps.Renderer, deps.Logger),
		MetadataService:   app.NewMetadataService(deps.MetadataRepo, deps.MetadataFile),
		Loader:            deps.Loader,
		Logger:            deps.Logger,
	}
}
