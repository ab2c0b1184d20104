package middleware

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

type errorBody struct {
	Error string `json:"error"`
}

func unauthorizedError(c echo.Context) error {
	return c.JSON(http.StatusUnauthorized, errorBody{Error: "Unauthorized"})
}
