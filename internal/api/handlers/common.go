package handlers

import (
	"Foodgram-Backend/domain"
	"Foodgram-Backend/internal/api/presenters"
	"Foodgram-Backend/internal/utils"
	"Foodgram-Backend/pkg/log"
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
	"strconv"
)

const (
	defaultPageLimit = 6
	maxPageLimit     = 100
)

// currentUserID is zero for anonymous requests.
func currentUserID(c *fiber.Ctx) uint {
	id, _ := c.Locals("user_id").(uint)
	return id
}

func parseID(c *fiber.Ctx, name string) (uint, error) {
	id, err := strconv.ParseUint(c.Params(name), 10, 64)
	if err != nil || id == 0 {
		return 0, domain.ErrParseID
	}
	return uint(id), nil
}

func parsePagination(c *fiber.Ctx) domain.Pagination {
	page, err := strconv.Atoi(c.Query("page", "1"))
	if err != nil || page < 1 {
		page = 1
	}

	def := utils.GetConfigInt("PAGINATION_LIMIT", defaultPageLimit)
	limit, err := strconv.Atoi(c.Query("limit", strconv.Itoa(def)))
	if err != nil || limit < 1 {
		limit = def
	}
	if limit > maxPageLimit {
		limit = maxPageLimit
	}
	return domain.Pagination{Page: page, Limit: limit}
}

// parseRecipesLimit returns -1 when the query does not hold a usable limit.
func parseRecipesLimit(c *fiber.Ctx) int {
	limit, err := strconv.Atoi(c.Query("recipes_limit"))
	if err != nil || limit < 0 {
		return -1
	}
	return limit
}

func paginated(key string, items any, p domain.Pagination, count int64) fiber.Map {
	return fiber.Map{
		key: items,
		"pagination": fiber.Map{
			"page":        p.Page,
			"limit":       p.Limit,
			"total":       count,
			"total_pages": (count + int64(p.Limit) - 1) / int64(p.Limit),
		},
	}
}

// failed renders err with the status it maps to and logs unexpected errors.
func failed(c *fiber.Ctx, message string, err error) error {
	status := presenters.StatusFor(err)
	if status >= fiber.StatusInternalServerError {
		log.L.Error(message, zap.String("path", c.Path()), zap.Error(err))
		return presenters.ErrorResponse(c, status, message, nil)
	}
	return presenters.ErrorResponse(c, status, message, err)
}
