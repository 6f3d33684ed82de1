package handlers

import (
	"errors"
	"log"
	"strings"

	"noteful/internal/services"
	"noteful/internal/validation"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/utils"
)

// UserHandler handles HTTP requests for user accounts.
type UserHandler struct {
	service  *services.UserService
	validate *validator.Validate
}

// NewUserHandler creates a new UserHandler.
func NewUserHandler(service *services.UserService) *UserHandler {
	return &UserHandler{
		service:  service,
		validate: validator.New(),
	}
}

// RegisterRoutes registers the user routes. Reading a user requires the
// authenticated middleware; registering one does not.
func (h *UserHandler) RegisterRoutes(router fiber.Router, authRequired fiber.Handler) {
	userRoutes := router.Group("/users")
	userRoutes.Post("/", h.HandleCreateUser)
	userRoutes.Get("/:id", authRequired, h.HandleGetUser)
}

// HandleCreateUser validates the request body, registers the user and
// answers 201 with a Location header pointing at the new resource.
func (h *UserHandler) HandleCreateUser(c *fiber.Ctx) error {
	input, err := decodeObject(c.Body(), c.App().Config().JSONDecoder)
	if err != nil {
		log.Printf("Error parsing create user request body: %v", err)
		return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
	}

	// A *validation.FieldError is rendered by ErrorHandler.
	newUser, err := validation.ValidateNewUser(input)
	if err != nil {
		return err
	}

	user, err := h.service.CreateUser(newUser)
	if err != nil {
		if errors.Is(err, services.ErrUsernameTaken) {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}
		return err
	}

	c.Location(strings.TrimSuffix(c.Path(), "/") + "/" + user.ID)
	return c.Status(fiber.StatusCreated).JSON(user)
}

// HandleGetUser returns a single user by its ID.
func (h *UserHandler) HandleGetUser(c *fiber.Ctx) error {
	userID := c.Params("id")
	if err := h.validate.Var(userID, "required,uuid"); err != nil {
		return fiber.NewError(fiber.StatusNotFound, "User not found")
	}

	user, err := h.service.GetUser(userID)
	if err != nil {
		if errors.Is(err, services.ErrUserNotFound) {
			return fiber.NewError(fiber.StatusNotFound, "User not found")
		}
		return err
	}
	return c.JSON(user)
}

// decodeObject parses a JSON object body with the app's decoder into an
// untyped map, so that missing and mistyped fields stay distinguishable.
// An empty body is an empty object.
func decodeObject(body []byte, decode utils.JSONUnmarshal) (map[string]any, error) {
	input := map[string]any{}
	if len(strings.TrimSpace(string(body))) == 0 {
		return input, nil
	}
	if err := decode(body, &input); err != nil {
		return nil, err
	}
	if input == nil {
		return nil, errors.New("request body must be a JSON object")
	}
	return input, nil
}
