// Package api exposes the ledger over HTTP with fiber.
package api

import (
	"errors"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/rustyeddy/ledger/engine"
	"github.com/rustyeddy/ledger/ledger"
	"github.com/rustyeddy/ledger/logging"
	"go.uber.org/zap"
)

type server struct {
	engine   *engine.Engine
	query    *engine.Query
	log      *zap.Logger
	validate *validator.Validate
}

// New builds the fiber app serving the account and transaction routes.
// Timeouts left at zero mean none.
func New(e *engine.Engine, q *engine.Query, log *zap.Logger, readTimeout, writeTimeout time.Duration) *fiber.App {
	s := &server{
		engine:   e,
		query:    q,
		log:      logging.OrNop(log),
		validate: validator.New(validator.WithRequiredStructEnabled()),
	}

	app := fiber.New(fiber.Config{
		AppName:               "ledger",
		DisableStartupMessage: true,
		ReadTimeout:           readTimeout,
		WriteTimeout:          writeTimeout,
		ErrorHandler:          s.errorHandler,
	})
	app.Use(s.accessLog)

	app.Post("/account", s.createAccount)
	app.Get("/account", s.listAccounts)
	app.Get("/account/:id", s.getAccount)
	app.Get("/account/:id/transactions", s.accountTransactions)
	app.Patch("/account/:id", s.renameAccount)
	app.Post("/account/:id/close", s.closeAccount)

	app.Post("/transaction", s.submitTransfer)
	app.Post("/transaction/withdraw", s.withdraw)
	app.Post("/transaction/deposit", s.deposit)
	app.Get("/transaction/:id", s.getTransaction)

	return app
}

type errorResponse struct {
	Error string `json:"error"`
}

// statusFor maps ledger errors onto HTTP status codes.
func statusFor(err error) int {
	var fe *fiber.Error
	var ve validator.ValidationErrors
	switch {
	case errors.As(err, &fe):
		return fe.Code
	case errors.As(err, &ve), errors.Is(err, ledger.ErrValidation):
		return fiber.StatusBadRequest
	case ledger.IsNotFound(err):
		return fiber.StatusNotFound
	case errors.Is(err, ledger.ErrDuplicateID), errors.Is(err, ledger.ErrAccountClosed):
		return fiber.StatusConflict
	case errors.Is(err, engine.ErrEngineClosed):
		return fiber.StatusServiceUnavailable
	default:
		return fiber.StatusInternalServerError
	}
}

func (s *server) errorHandler(c *fiber.Ctx, err error) error {
	status := statusFor(err)
	msg := err.Error()
	if status == fiber.StatusInternalServerError {
		s.log.Error("request failed",
			zap.String("method", c.Method()),
			zap.String("path", c.Path()),
			zap.Error(err),
		)
		msg = "internal error"
	}
	return c.Status(status).JSON(errorResponse{Error: msg})
}

// accessLog writes one line per request. Handler errors are rendered here so
// the logged status is the one the client sees.
func (s *server) accessLog(c *fiber.Ctx) error {
	start := time.Now()

	if err := c.Next(); err != nil {
		if herr := c.App().ErrorHandler(c, err); herr != nil {
			_ = c.SendStatus(fiber.StatusInternalServerError)
		}
	}

	s.log.Info("http request",
		zap.String("method", c.Method()),
		zap.String("path", c.Path()),
		zap.Int("status", c.Response().StatusCode()),
		zap.Duration("latency", time.Since(start)),
	)
	return nil
}
