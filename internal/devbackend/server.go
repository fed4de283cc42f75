// Package devbackend is an in-memory stand-in for the photobook REST
// backend. It serves the same routes under /api for local development and
// end-to-end tests. It does not check booking overlap or repeated ratings.
package devbackend

import (
	"errors"
	"strings"
	"time"

	"github.com/photobook/gateway-api/internal/models"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"
)

var (
	errEmailTaken           = fiber.NewError(fiber.StatusConflict, "Email is already registered")
	errBadCredentials       = fiber.NewError(fiber.StatusUnauthorized, "Invalid email or password")
	errInactive             = fiber.NewError(fiber.StatusForbidden, "Account is inactive")
	errPhotographerNotFound = fiber.NewError(fiber.StatusNotFound, "Photographer not found")
	errBookingNotFound      = fiber.NewError(fiber.StatusNotFound, "Booking not found")
	errNotYourBooking       = fiber.NewError(fiber.StatusForbidden, "Booking belongs to another photographer")
	errInvalidStatus        = fiber.NewError(fiber.StatusBadRequest, "Invalid status value")
	errNoToken              = fiber.NewError(fiber.StatusUnauthorized, "No token, authorization denied")
	errBadToken             = fiber.NewError(fiber.StatusUnauthorized, "Token is not valid")
	errWrongRole            = fiber.NewError(fiber.StatusForbidden, "Access denied")
)

// Config tunes the development backend
type Config struct {
	Secret     []byte
	TokenTTL   time.Duration
	BcryptCost int
}

// Server is the development backend
type Server struct {
	cfg    Config
	store  *store
	logger *logrus.Logger
}

func New(cfg Config, logger *logrus.Logger) *Server {
	if cfg.TokenTTL <= 0 {
		cfg.TokenTTL = time.Hour
	}
	if cfg.BcryptCost == 0 {
		cfg.BcryptCost = bcrypt.DefaultCost
	}
	return &Server{cfg: cfg, store: newStore(cfg.BcryptCost), logger: logger}
}

// SetClock replaces the time source used for tokens and timestamps
func (s *Server) SetClock(now func() time.Time) {
	s.store.mu.Lock()
	s.store.now = now
	s.store.mu.Unlock()
}

func (s *Server) now() time.Time {
	s.store.mu.RLock()
	defer s.store.mu.RUnlock()
	return s.store.now()
}

// App builds the Fiber application with every route under /api. The given
// middleware runs ahead of all routes.
func (s *Server) App(middleware ...fiber.Handler) *fiber.App {
	app := fiber.New(fiber.Config{
		AppName:      "photobook-devbackend",
		Immutable:    true,
		ErrorHandler: s.errorHandler,
	})
	for _, m := range middleware {
		app.Use(m)
	}

	api := app.Group("/api")

	users := api.Group("/users")
	users.Post("/register", s.registerUser)
	users.Post("/login", s.login(models.RoleUser))
	users.Post("/contact", s.contact)
	users.Get("/profile", s.auth(models.RoleUser), s.userProfile)
	users.Put("/profile", s.auth(models.RoleUser), s.updateUserProfile)
	users.Get("/history", s.auth(models.RoleUser), s.userHistory)
	users.Get("/bookings", s.auth(models.RoleUser), s.userBookings)
	users.Post("/book-session", s.auth(models.RoleUser), s.bookSession)

	photographers := api.Group("/photographers")
	photographers.Post("/register", s.registerPhotographer)
	photographers.Post("/login", s.login(models.RolePhotographer))
	photographers.Get("/", s.listPhotographers)
	photographers.Get("/profile", s.auth(models.RolePhotographer), s.photographerProfile)
	photographers.Put("/profile", s.auth(models.RolePhotographer), s.updatePhotographerProfile)
	photographers.Get("/portfolio", s.auth(models.RolePhotographer), s.listPortfolio)
	photographers.Post("/portfolio", s.auth(models.RolePhotographer), s.createPortfolio)
	photographers.Put("/portfolio/:id", s.auth(models.RolePhotographer), s.updatePortfolio)
	photographers.Delete("/portfolio/:id", s.auth(models.RolePhotographer), s.deletePortfolio)
	photographers.Get("/bookings", s.auth(models.RolePhotographer), s.photographerBookings)
	photographers.Put("/booking-status", s.auth(models.RolePhotographer), s.updateBookingStatus)
	photographers.Post("/rate/:photographerId", s.auth(models.RoleUser), s.ratePhotographer)
	photographers.Get("/:id/notifications", s.auth(models.RolePhotographer), s.notifications)

	admin := api.Group("/admin")
	admin.Post("/register", s.registerAdmin)
	admin.Post("/login", s.login(models.RoleAdmin))
	admin.Get("/users", s.auth(models.RoleAdmin), s.adminUsers)
	admin.Get("/photographers", s.auth(models.RoleAdmin), s.adminPhotographers)
	admin.Get("/bookings", s.auth(models.RoleAdmin), s.adminBookings)
	admin.Put("/user-status", s.auth(models.RoleAdmin), s.updateUserStatus)
	admin.Post("/register-photographer", s.auth(models.RoleAdmin), s.registerPhotographer)
	admin.Delete("/delete-photographer/:id", s.auth(models.RoleAdmin), s.deletePhotographer)

	return app
}

func (s *Server) errorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	var fe *fiber.Error
	if errors.As(err, &fe) {
		code = fe.Code
	} else {
		s.logger.WithError(err).Error("Development backend request failed")
	}
	msg := err.Error()
	if code == fiber.StatusInternalServerError {
		msg = "Server error"
	}
	return c.Status(code).JSON(fiber.Map{"message": msg})
}

// Tokens

type claims struct {
	Role string `json:"role"`
	jwt.RegisteredClaims
}

func (s *Server) issue(acc *account) (string, error) {
	now := s.now()
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims{
		Role: string(acc.role),
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   acc.id(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.cfg.TokenTTL)),
		},
	}).SignedString(s.cfg.Secret)
}

// auth admits only bearer tokens issued for role
func (s *Server) auth(role models.Role) fiber.Handler {
	return func(c *fiber.Ctx) error {
		raw := strings.TrimPrefix(c.Get(fiber.HeaderAuthorization), "Bearer ")
		if raw == "" || raw == c.Get(fiber.HeaderAuthorization) {
			return errNoToken
		}
		var cl claims
		_, err := jwt.ParseWithClaims(raw, &cl, func(*jwt.Token) (interface{}, error) {
			return s.cfg.Secret, nil
		}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithTimeFunc(s.now))
		if err != nil {
			return errBadToken
		}
		if models.Role(cl.Role) != role {
			return errWrongRole
		}
		acc, ok := s.store.account(cl.Subject, role)
		if !ok {
			return errBadToken
		}
		c.Locals("account", acc)
		return c.Next()
	}
}

func current(c *fiber.Ctx) *account {
	return c.Locals("account").(*account)
}

func bind(c *fiber.Ctx, v interface{}) error {
	if err := c.BodyParser(v); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
	}
	if err := models.Validate(v); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	}
	return nil
}

// Registration and login

func (s *Server) registerUser(c *fiber.Ctx) error {
	var req models.RegisterUserRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	_, err := s.store.register(models.RoleUser, req.Email, req.Password, func(id string) *account {
		return &account{user: &models.EndUser{
			ID: id, Name: req.Name, Email: req.Email, Phone: req.Phone, Address: req.Address,
			Status: string(models.UserStatusActive),
		}}
	})
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(models.MessageResponse{Message: "User registered successfully"})
}

func (s *Server) registerPhotographer(c *fiber.Ctx) error {
	var req models.RegisterPhotographerRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	_, err := s.store.register(models.RolePhotographer, req.Email, req.Password, func(id string) *account {
		return &account{photographer: &models.Photographer{
			ID: id, Name: req.Name, Email: req.Email, Phone: req.Phone,
			Specialization: req.Specialization, Experience: req.Experience,
		}}
	})
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(models.MessageResponse{Message: "Photographer registered successfully"})
}

func (s *Server) registerAdmin(c *fiber.Ctx) error {
	var req models.RegisterAdminRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	_, err := s.store.register(models.RoleAdmin, req.Email, req.Password, func(id string) *account {
		return &account{admin: &models.Admin{ID: id, Name: req.Name, Email: req.Email}}
	})
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(models.MessageResponse{Message: "Admin registered successfully"})
}

func (s *Server) login(role models.Role) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var creds models.Credentials
		if err := c.BodyParser(&creds); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
		}
		acc, err := s.store.authenticate(role, creds.Email, creds.Password)
		if err != nil {
			return err
		}
		token, err := s.issue(acc)
		if err != nil {
			return err
		}
		body := fiber.Map{"token": token}
		switch role {
		case models.RoleUser:
			body[string(role)] = acc.user
		case models.RolePhotographer:
			body[string(role)] = acc.photographer
		case models.RoleAdmin:
			body[string(role)] = acc.admin
		}
		return c.JSON(body)
	}
}

func (s *Server) contact(c *fiber.Ctx) error {
	var req models.ContactRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	s.store.mu.Lock()
	s.store.contacts = append(s.store.contacts, req)
	s.store.mu.Unlock()
	return c.JSON(models.MessageResponse{Message: "Message received"})
}

// EndUser

func (s *Server) userProfile(c *fiber.Ctx) error {
	s.store.mu.RLock()
	defer s.store.mu.RUnlock()
	return c.JSON(current(c).user)
}

func (s *Server) updateUserProfile(c *fiber.Ctx) error {
	var req models.UpdateUserProfileRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	s.store.mu.Lock()
	defer s.store.mu.Unlock()
	u := current(c).user
	if req.Name != "" {
		u.Name = req.Name
	}
	if req.Phone != "" {
		u.Phone = req.Phone
	}
	if req.Address != "" {
		u.Address = req.Address
	}
	if req.ProfilePicture != "" {
		u.ProfilePicture = req.ProfilePicture
	}
	return c.JSON(u)
}

func (s *Server) userHistory(c *fiber.Ctx) error {
	uid := current(c).id()
	status := models.BookingStatus(c.Query("status"))
	return c.JSON(s.store.bookingsWhere(func(b *models.Booking) bool {
		return b.UserID.ID == uid && (status == "" || b.Status == status)
	}))
}

func (s *Server) userBookings(c *fiber.Ctx) error {
	uid := current(c).id()
	return c.JSON(s.store.bookingsWhere(func(b *models.Booking) bool { return b.UserID.ID == uid }))
}

func (s *Server) bookSession(c *fiber.Ctx) error {
	var req models.BookSessionRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	b, err := s.store.createBooking(current(c).id(), &req)
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(models.BookingResponse{Message: "Session booked successfully", Booking: &b})
}

// Photographer

func (s *Server) listPhotographers(c *fiber.Ctx) error {
	return c.JSON(s.store.photographers())
}

func (s *Server) photographerProfile(c *fiber.Ctx) error {
	s.store.mu.RLock()
	defer s.store.mu.RUnlock()
	p := *current(c).photographer
	p.Portfolio = s.store.portfolioOf(p.ID)
	return c.JSON(p)
}

func (s *Server) updatePhotographerProfile(c *fiber.Ctx) error {
	var req models.UpdatePhotographerProfileRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	s.store.mu.Lock()
	defer s.store.mu.Unlock()
	p := current(c).photographer
	if req.Name != "" {
		p.Name = req.Name
	}
	if req.Phone != "" {
		p.Phone = req.Phone
	}
	if len(req.Specialization) > 0 {
		p.Specialization = req.Specialization
	}
	if req.Experience != nil {
		p.Experience = *req.Experience
	}
	if req.Packages != nil {
		p.Packages = req.Packages
	}
	if req.ProfilePicture != "" {
		p.ProfilePicture = req.ProfilePicture
	}
	return c.JSON(p)
}

func (s *Server) listPortfolio(c *fiber.Ctx) error {
	s.store.mu.RLock()
	defer s.store.mu.RUnlock()
	return c.JSON(s.store.portfolioOf(current(c).id()))
}

func (s *Server) createPortfolio(c *fiber.Ctx) error {
	var req models.PortfolioRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	item := &models.PortfolioItem{
		ID:             uuid.NewString(),
		PhotographerID: current(c).id(),
		Title:          req.Title,
		Description:    req.Description,
		ImageURL:       req.ImageURL,
	}
	s.store.mu.Lock()
	s.store.portfolio[item.ID] = item
	s.store.mu.Unlock()
	return c.Status(fiber.StatusCreated).JSON(item)
}

func (s *Server) ownedItem(c *fiber.Ctx) (*models.PortfolioItem, error) {
	item, ok := s.store.portfolio[c.Params("id")]
	if !ok {
		return nil, fiber.NewError(fiber.StatusNotFound, "Portfolio item not found")
	}
	if item.PhotographerID != current(c).id() {
		return nil, fiber.NewError(fiber.StatusForbidden, "Portfolio item belongs to another photographer")
	}
	return item, nil
}

func (s *Server) updatePortfolio(c *fiber.Ctx) error {
	var req models.PortfolioRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	s.store.mu.Lock()
	defer s.store.mu.Unlock()
	item, err := s.ownedItem(c)
	if err != nil {
		return err
	}
	item.Title, item.Description, item.ImageURL = req.Title, req.Description, req.ImageURL
	return c.JSON(item)
}

func (s *Server) deletePortfolio(c *fiber.Ctx) error {
	s.store.mu.Lock()
	defer s.store.mu.Unlock()
	item, err := s.ownedItem(c)
	if err != nil {
		return err
	}
	delete(s.store.portfolio, item.ID)
	return c.JSON(models.MessageResponse{Message: "Portfolio item deleted"})
}

func (s *Server) photographerBookings(c *fiber.Ctx) error {
	pid := current(c).id()
	return c.JSON(s.store.bookingsWhere(func(b *models.Booking) bool { return b.PhotographerID.ID == pid }))
}

func (s *Server) updateBookingStatus(c *fiber.Ctx) error {
	var req models.StatusUpdateRequest
	if err := c.BodyParser(&req); err != nil || req.BookingID == "" {
		return fiber.NewError(fiber.StatusBadRequest, "bookingId and status are required")
	}
	status, ok := models.ParseStatus(string(req.Status))
	if !ok {
		return errInvalidStatus
	}
	b, err := s.store.setBookingStatus(current(c).id(), req.BookingID, status)
	if err != nil {
		return err
	}
	return c.JSON(models.BookingResponse{Message: "Booking status updated", Booking: &b})
}

func (s *Server) ratePhotographer(c *fiber.Ctx) error {
	var req models.Rating
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
	}
	if req.Rating < 1 || req.Rating > 5 {
		return fiber.NewError(fiber.StatusBadRequest, "Rating must be between 1 and 5")
	}
	avg, err := s.store.rate(c.Params("photographerId"), ratingEntry{
		bookingID: req.BookingID,
		userID:    current(c).id(),
		value:     req.Rating,
		comment:   req.Comment,
	})
	if err != nil {
		return err
	}
	return c.JSON(models.RatingResponse{Message: "Rating submitted successfully", AverageRating: &avg})
}

func (s *Server) notifications(c *fiber.Ctx) error {
	if c.Params("id") != current(c).id() {
		return errWrongRole
	}
	s.store.mu.RLock()
	defer s.store.mu.RUnlock()
	out := append([]models.Notification{}, s.store.notifications[current(c).id()]...)
	return c.JSON(out)
}

// Admin

func (s *Server) adminUsers(c *fiber.Ctx) error {
	return c.JSON(s.store.users())
}

func (s *Server) adminPhotographers(c *fiber.Ctx) error {
	return c.JSON(s.store.photographers())
}

func (s *Server) adminBookings(c *fiber.Ctx) error {
	return c.JSON(s.store.bookingsWhere(func(*models.Booking) bool { return true }))
}

func (s *Server) updateUserStatus(c *fiber.Ctx) error {
	var req models.UpdateUserStatusRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	acc, ok := s.store.account(req.UserID, models.RoleUser)
	if !ok {
		return fiber.NewError(fiber.StatusNotFound, "User not found")
	}
	s.store.mu.Lock()
	acc.user.Status = string(req.Status)
	s.store.mu.Unlock()
	return c.JSON(models.MessageResponse{Message: "User status updated"})
}

func (s *Server) deletePhotographer(c *fiber.Ctx) error {
	if !s.store.deletePhotographer(c.Params("id")) {
		return errPhotographerNotFound
	}
	return c.JSON(models.MessageResponse{Message: "Photographer deleted"})
}
