package routes

import (
	"github.com/photobook/gateway-api/internal/access"
	"github.com/photobook/gateway-api/internal/middleware"
	"github.com/photobook/gateway-api/internal/models"
	apperrors "github.com/photobook/gateway-api/pkg/errors"

	"github.com/gofiber/fiber/v2"
)

var errInvalidBody = apperrors.New(apperrors.CodeBadRequest, "Invalid request body")

// fail renders err. A backend 401 tears the session down and points the
// client at the login page of the role it was signed in as.
func fail(c *fiber.Ctx, err error) error {
	store := middleware.GetStore(c)
	if store == nil {
		return middleware.WriteError(c, err)
	}

	role := store.Current().Role()
	_ = store.Check(c.UserContext(), err)
	if apperrors.HasCode(err, apperrors.CodeUnauthenticated) && role != models.RoleNone {
		return middleware.WriteErrorWithRedirect(c, err, access.LoginPath(role))
	}
	return middleware.WriteError(c, err)
}

// parse decodes the JSON body into v and validates it
func parse(c *fiber.Ctx, v interface{}) error {
	if err := c.BodyParser(v); err != nil {
		return apperrors.NewAppError(errInvalidBody.Code, errInvalidBody.Message, err)
	}
	return models.Validate(v)
}
