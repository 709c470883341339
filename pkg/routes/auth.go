package routes

import (
	"github.com/gofiber/fiber/v2"

	"github.com/atshalahmedkhan/CodeOpoly-sub001/app/controllers"
)

func AuthRoutes(a *fiber.App) {
	route := a.Group("/user")

	route.Post("/signup", controllers.CreateUser)
	route.Post("/login", controllers.Login)
}
