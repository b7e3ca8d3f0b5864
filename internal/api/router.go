package api

import (
	"askhub/internal/api/handlers"
	"askhub/internal/pubsub"
	"askhub/pkg/auth"
	"askhub/pkg/middleware"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"go.uber.org/zap"
)

func SetupRouter(
	authHandler *handlers.AuthHandler,
	questionHandler *handlers.QuestionHandler,
	healthHandler *handlers.HealthHandler,
	broker pubsub.Subscriber[any],
	jwtManager *auth.JWTManager,
	appLogger *zap.Logger,
) *fiber.App {
	app := fiber.New(fiber.Config{
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			code := fiber.StatusInternalServerError
			if e, ok := err.(*fiber.Error); ok {
				code = e.Code
			}
			return c.Status(code).JSON(fiber.Map{
				"error": err.Error(),
			})
		},
	})

	// Middleware
	app.Use(recover.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowMethods: "GET,POST,PATCH,DELETE,OPTIONS",
		AllowHeaders: "Origin,Content-Type,Accept,Authorization",
	}))
	app.Use(logger.New())

	app.Get("/healthz", healthHandler.Basic)
	app.Get("/healthz/detailed", healthHandler.Detailed)

	app.Use("/ws", WSUpgrade)
	app.Get("/ws", WSHandler(broker, appLogger))

	api := app.Group("/api/v1")

	// Auth routes (public)
	authRoutes := api.Group("/auth")
	authRoutes.Post("/register", authHandler.Register)
	authRoutes.Post("/login", authHandler.Login)
	authRoutes.Post("/refresh", authHandler.RefreshToken)

	// Question routes. Creation accepts anonymous posts via the guest
	// account; marking answered requires authentication.
	questions := api.Group("/questions")
	questions.Get("", questionHandler.ListQuestions)
	questions.Get("/:id", questionHandler.GetQuestion)
	questions.Get("/:id/suggestion", questionHandler.GetSuggestion)
	questions.Post("", middleware.OptionalAuthMiddleware(jwtManager, appLogger), questionHandler.CreateQuestion)
	questions.Post("/:id/answers", middleware.OptionalAuthMiddleware(jwtManager, appLogger), questionHandler.CreateAnswer)
	questions.Patch("/:id/mark-answered", middleware.AuthMiddleware(jwtManager, appLogger), questionHandler.MarkAnswered)

	return app
}
