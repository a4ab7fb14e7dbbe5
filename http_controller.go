package clinic

import (
	"fmt"

	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/go-ozzo/ozzo-validation/is"
	"github.com/gofiber/fiber/v2"
	"github.com/goliatone/go-print"
	"github.com/nyaruka/phonenumbers"
)

// AuthController exposes registration and login as JSON endpoints.
type AuthController struct {
	Debug    bool
	Logger   Logger
	Auther   *Auther
	Register *RegisterUserHandler
}

type AuthControllerOption func(*AuthController) *AuthController

func NewAuthController(opts ...AuthControllerOption) *AuthController {
	c := &AuthController{
		Logger: defLogger{},
	}

	for _, opt := range opts {
		c = opt(c)
	}

	if c.Auther == nil {
		panic("Missing Authenticator in auth controller...")
	}

	if c.Register == nil {
		panic("Missing RegisterUserHandler in auth controller...")
	}

	return c
}

func WithControllerLogger(logger Logger) AuthControllerOption {
	return func(c *AuthController) *AuthController {
		if logger != nil {
			c.Logger = logger
		}
		return c
	}
}

func WithControllerDebug(debug bool) AuthControllerOption {
	return func(c *AuthController) *AuthController {
		c.Debug = debug
		return c
	}
}

func WithControllerAuther(auther *Auther) AuthControllerOption {
	return func(c *AuthController) *AuthController {
		c.Auther = auther
		return c
	}
}

func WithControllerRegister(handler *RegisterUserHandler) AuthControllerOption {
	return func(c *AuthController) *AuthController {
		c.Register = handler
		return c
	}
}

// LoginRequest payload
type LoginRequest struct {
	Email    string `form:"email" json:"email"`
	Password string `form:"password" json:"password"`
}

// Validate will run validation rules
func (r LoginRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(
			&r.Email,
			validation.Required,
			is.Email,
		),
		validation.Field(
			&r.Password,
			validation.Required,
		),
	)
}

func (a *AuthController) LoginPost(c *fiber.Ctx) error {
	payload := new(LoginRequest)

	if err := c.BodyParser(payload); err != nil {
		return RespondError(c, ValidationError("Invalid request body"))
	}

	if err := payload.Validate(); err != nil {
		return RespondError(c, ValidationError(err.Error()))
	}

	if a.Debug {
		fmt.Println("======= AUTH LOGIN ======")
		fmt.Println(print.MaybePrettyJSON(payload))
		fmt.Println("=========================")
	}

	token, identity, err := a.Auther.Login(c.UserContext(), payload.Email, payload.Password)
	if err != nil {
		return RespondError(c, err)
	}

	return c.JSON(fiber.Map{
		"success": true,
		"token":   token,
		"user": fiber.Map{
			"id":    identity.ID(),
			"name":  identity.Name(),
			"email": identity.Email(),
			"role":  identity.Role(),
		},
	})
}

// RegistrationCreatePayload is the registration payload
type RegistrationCreatePayload struct {
	Name     string `form:"name" json:"name"`
	Email    string `form:"email" json:"email"`
	Password string `form:"password" json:"password"`
	Mobile   string `form:"mobile" json:"mobile"`
	Role     string `form:"role" json:"role"`
	NFCToken string `form:"nfc_token" json:"nfc_token"`
}

// Validate will validate the payload
func (r RegistrationCreatePayload) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Name, validation.Required, validation.Length(1, 200)),
		validation.Field(&r.Email, validation.Required, validation.Length(6, 100), is.Email),
		validation.Field(&r.Password, validation.Required, validation.Length(8, 100)),
		validation.Field(&r.Mobile, validation.By(ValidateMobileNumber)),
		validation.Field(&r.Role, validation.Required, validation.In(
			RolePatient.String(),
			RoleDoctor.String(),
			RoleAdmin.String(),
		)),
	)
}

// ValidateMobileNumber accepts E.164 formatted numbers, e.g. +14155552671.
func ValidateMobileNumber(value any) error {
	s, _ := value.(string)
	if s == "" {
		return nil
	}

	num, err := phonenumbers.Parse(s, "")
	if err != nil {
		return fmt.Errorf("must be a valid mobile number in international format")
	}

	if !phonenumbers.IsValidNumber(num) {
		return fmt.Errorf("must be a valid mobile number")
	}

	return nil
}

func (a *AuthController) RegisterPost(c *fiber.Ctx) error {
	payload := new(RegistrationCreatePayload)

	if err := c.BodyParser(payload); err != nil {
		return RespondError(c, ValidationError("Invalid request body"))
	}

	if err := payload.Validate(); err != nil {
		return RespondError(c, ValidationError(err.Error()))
	}

	if a.Debug {
		fmt.Println("======= AUTH REGISTER ======")
		fmt.Println(print.MaybePrettyJSON(payload))
		fmt.Println("============================")
	}

	user, err := a.Register.Execute(c.UserContext(), RegisterUserMessage{
		Name:     payload.Name,
		Email:    payload.Email,
		Password: payload.Password,
		Mobile:   payload.Mobile,
		Role:     payload.Role,
		NFCToken: payload.NFCToken,
	})
	if err != nil {
		return RespondError(c, err)
	}

	message := "Registration submitted, awaiting approval"
	if user.Approved {
		message = "Registration complete"
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"success": true,
		"message": message,
		"user": fiber.Map{
			"id":       user.ID,
			"role":     user.Role,
			"approved": user.Approved,
		},
	})
}
