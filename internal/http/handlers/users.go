package handlers

import (
	"net/http"
	"strconv"

	"github.com/codefreela/userhub/internal/cache"
	"github.com/codefreela/userhub/internal/domain/user"
	"github.com/codefreela/userhub/internal/service"
	"github.com/codefreela/userhub/internal/utils"
	"github.com/gin-gonic/gin"
)

type UsersHandler struct {
	users        *service.Users
	cache        *cache.Cache
	exposeErrors bool
}

func NewUsersHandler(users *service.Users, exposeErrors bool) *UsersHandler {
	return &UsersHandler{users: users, exposeErrors: exposeErrors}
}

// WithCache enables the short-lived list response cache.
func (h *UsersHandler) WithCache(c *cache.Cache) *UsersHandler {
	h.cache = c
	return h
}

// POST /api/users

func (h *UsersHandler) Create(ctx *gin.Context) {
	var in user.CreateInput

	if err := ctx.ShouldBindJSON(&in); err != nil {
		RespondBadRequest(ctx, "invalid request body")
		return
	}

	view, err := h.users.Create(ctx.Request.Context(), in)

	if err != nil {
		RespondAppError(ctx, err, h.exposeErrors)
		return
	}

	h.invalidateCache()

	ctx.JSON(http.StatusCreated, view)
}

// GET /api/users

func (h *UsersHandler) List(ctx *gin.Context) {
	q, ok := h.parseListQuery(ctx)

	if !ok {
		return
	}

	key := utils.BuildUsersListCacheKey(q)

	if h.cache != nil {
		if cached, hit := h.cache.Get(key); hit {
			RespondJSONWithETag(ctx, http.StatusOK, cached)
			return
		}
	}

	result, err := h.users.FindAll(ctx.Request.Context(), q)

	if err != nil {
		RespondAppError(ctx, err, h.exposeErrors)
		return
	}

	if h.cache != nil {
		h.cache.Set(key, result)
	}

	RespondJSONWithETag(ctx, http.StatusOK, result)
}

// GET /api/users/:id

func (h *UsersHandler) GetByID(ctx *gin.Context) {
	view, err := h.users.FindOne(ctx.Request.Context(), ctx.Param("id"))

	if err != nil {
		RespondAppError(ctx, err, h.exposeErrors)
		return
	}

	RespondJSONWithETag(ctx, http.StatusOK, view)
}

// PATCH /api/users/:id

func (h *UsersHandler) Update(ctx *gin.Context) {
	var in user.UpdateInput

	if err := ctx.ShouldBindJSON(&in); err != nil {
		RespondBadRequest(ctx, "invalid request body")
		return
	}

	view, err := h.users.Update(ctx.Request.Context(), ctx.Param("id"), in)

	if err != nil {
		RespondAppError(ctx, err, h.exposeErrors)
		return
	}

	h.invalidateCache()

	ctx.JSON(http.StatusOK, view)
}

// DELETE /api/users/:id

func (h *UsersHandler) Delete(ctx *gin.Context) {
	err := h.users.Delete(ctx.Request.Context(), ctx.Param("id"))

	if err != nil {
		RespondAppError(ctx, err, h.exposeErrors)
		return
	}

	h.invalidateCache()

	ctx.Status(http.StatusNoContent)
}

func (h *UsersHandler) invalidateCache() {
	if h.cache != nil {
		h.cache.Clear()
	}
}

// parseListQuery maps the query string onto the FindAll query shape.
// Reports false after responding 400 on a malformed number.
func (h *UsersHandler) parseListQuery(ctx *gin.Context) (user.Query, bool) {
	q := user.Query{
		SortBy:   ctx.Query("sortBy"),
		SortDesc: ctx.Query("sortDesc") == "true",
		Search:   ctx.Query("search"),
	}

	if raw := ctx.Query("skip"); raw != "" {
		n, err := strconv.Atoi(raw)

		if err != nil {
			RespondBadRequest(ctx, "skip must be an integer")
			return user.Query{}, false
		}

		q.Skip = n
	}

	if raw := ctx.Query("take"); raw != "" {
		n, err := strconv.Atoi(raw)

		if err != nil {
			RespondBadRequest(ctx, "take must be an integer")
			return user.Query{}, false
		}

		q.Take = n
	}

	return q, true
}
