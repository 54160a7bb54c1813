package server

import (
	"context"
	"strconv"
	"strings"
	"time"

	"devhub/internal/authz"
	"devhub/internal/middleware"
	"devhub/internal/models"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

const (
	wsTicketPrefix = "ws_ticket:"
	wsTicketTTL    = 60 * time.Second

	localIdentity = "identity"
	localToken    = "token"
	localUserID   = "userID"
)

// Identify resolves the caller once per request and stores the result in
// locals. Invalid credentials yield an anonymous identity; routes that need a
// caller add AuthRequired.
func (s *Server) Identify() fiber.Handler {
	return func(c *fiber.Ctx) error {
		ctx := c.UserContext()
		id := authz.Anonymous()

		if ticket := c.Query("ticket"); ticket != "" && s.isWSPath(c) {
			if accountID, ok := s.redeemWSTicket(ctx, ticket); ok {
				id = s.gate.IdentifyAccount(ctx, accountID)
			}
		} else if token := bearerToken(c); token != "" {
			id = s.gate.Identify(ctx, token)
			if id.Authenticated() {
				c.Locals(localToken, token)
			}
		}

		c.Locals(localIdentity, id)
		if id.Authenticated() {
			c.Locals(localUserID, id.AccountID)
			c.SetUserContext(context.WithValue(ctx, middleware.UserIDKey, id.AccountID))
		}
		return c.Next()
	}
}

// AuthRequired rejects anonymous callers with 401.
func (s *Server) AuthRequired() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if !identityOf(c).Authenticated() {
			return models.RespondWithError(c, fiber.StatusUnauthorized,
				models.NewUnauthenticatedError("Authentication required"))
		}
		return c.Next()
	}
}

func identityOf(c *fiber.Ctx) authz.Identity {
	if id, ok := c.Locals(localIdentity).(authz.Identity); ok {
		return id
	}
	return authz.Anonymous()
}

func bearerToken(c *fiber.Ctx) string {
	parts := strings.SplitN(c.Get(fiber.HeaderAuthorization), " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return ""
	}
	return strings.TrimSpace(parts[1])
}

func (s *Server) isWSPath(c *fiber.Ctx) bool {
	return strings.HasPrefix(c.Path(), "/api/ws") && c.Path() != "/api/ws/ticket"
}

// redeemWSTicket consumes a single-use ticket.
func (s *Server) redeemWSTicket(ctx context.Context, ticket string) (uint, bool) {
	if s.redis == nil {
		return 0, false
	}
	raw, err := s.redis.GetDel(ctx, wsTicketPrefix+ticket).Result()
	if err != nil {
		return 0, false
	}
	accountID, err := strconv.ParseUint(raw, 10, 32)
	if err != nil || accountID == 0 {
		return 0, false
	}
	return uint(accountID), true
}

// IssueWSTicket handles POST /api/ws/ticket
// @Summary Issue a WebSocket ticket
// @Description Returns a single-use ticket for opening the notifications socket
// @Tags realtime
// @Produce json
// @Security BearerAuth
// @Success 200 {object} object{ticket=string,expires_in=int}
// @Failure 401 {object} models.ErrorResponse
// @Router /ws/ticket [post]
func (s *Server) IssueWSTicket(c *fiber.Ctx) error {
	if s.redis == nil {
		return models.RespondWithError(c, fiber.StatusServiceUnavailable,
			models.NewUpstreamError(errRealtimeUnavailable))
	}
	id := identityOf(c)
	ticket := uuid.NewString()
	if err := s.redis.Set(c.UserContext(), wsTicketPrefix+ticket,
		strconv.FormatUint(uint64(id.AccountID), 10), wsTicketTTL).Err(); err != nil {
		return s.respondError(c, models.NewUpstreamError(err))
	}
	return c.JSON(fiber.Map{
		"ticket":     ticket,
		"expires_in": int(wsTicketTTL.Seconds()),
	})
}
