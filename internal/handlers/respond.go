package handlers

import (
	"errors"
	"log/slog"
	"net/http"

	"insurance-service/internal/apperrors"
	"insurance-service/internal/utils"

	"github.com/gofiber/fiber/v3"
)

// respondError maps engine errors onto the response envelope. Coded errors
// carry their own HTTP status; anything else is a 500 with the details kept
// server-side.
func respondError(c fiber.Ctx, err error) error {
	var ae *apperrors.AppError
	if errors.As(err, &ae) {
		return c.Status(ae.HTTPCode).JSON(utils.CreateErrorResponse(string(ae.Code), ae.Message))
	}

	slog.Error("unhandled error", "path", c.Path(), "error", err)
	return c.Status(http.StatusInternalServerError).JSON(
		utils.CreateErrorResponse("INTERNAL_SERVER_ERROR", "an unexpected error occurred"))
}

// requireUserID reads the authenticated user from the gateway header.
func requireUserID(c fiber.Ctx) (string, error) {
	userID := c.Get("X-User-ID")
	if userID == "" {
		return "", apperrors.New(apperrors.CodeForbidden, "missing X-User-ID header", http.StatusUnauthorized)
	}
	return userID, nil
}
