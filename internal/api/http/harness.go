package http

import (
	_ "embed"

	"github.com/gofiber/fiber/v2"
)

//go:embed web/index.html
var harnessPage []byte

// HarnessPage serves the static page for manually exercising the API.
func HarnessPage(c *fiber.Ctx) error {
	c.Type("html", "utf-8")
	return c.Send(harnessPage)
}
