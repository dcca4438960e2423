package handler

import (
	"encoding/json"
	"errors"
	"io"
	"math"
	"net/http"
	"strconv"
	"strings"

	"go-grocery/apps/store/middleware"
	"go-grocery/apps/store/model"
	"go-grocery/apps/store/service"
	"go-grocery/pkg/response"

	"github.com/gin-gonic/gin"
)

type CartHandler struct{ Svc *service.CartService }

func NewCartHandler(svc *service.CartService) *CartHandler { return &CartHandler{Svc: svc} }

type setQuantityRequest struct {
	ProductQuantity quantityValue `json:"product_quantity"`
}

var errInvalidInteger = errors.New("a valid integer is required")

// quantityValue accepts 5, 5.0 and "5". Values beyond the column range are
// clamped just past it so validation still rejects them.
type quantityValue struct{ n *int }

func (q *quantityValue) UnmarshalJSON(b []byte) error {
	s := strings.TrimSpace(string(b))
	if s == "null" {
		q.n = nil
		return nil
	}
	if strings.HasPrefix(s, `"`) {
		var str string
		if err := json.Unmarshal(b, &str); err != nil {
			return err
		}
		s = strings.TrimSpace(str)
	}

	f, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(f) || f != math.Trunc(f) {
		return errInvalidInteger
	}
	var v int
	switch {
	case f > model.MaxQuantity:
		v = model.MaxQuantity + 1
	case f < 0:
		v = -1
	default:
		v = int(f)
	}
	q.n = &v
	return nil
}

// currentUser is guarded by AuthMiddleware, so a miss here is a wiring bug
// rather than a client error; still answer 401.
func currentUser(c *gin.Context) (uint, bool) {
	uid, ok := middleware.CurrentUserID(c)
	if !ok {
		response.Error(c, http.StatusUnauthorized, "Authentication credentials were not provided.")
	}
	return uid, ok
}

// POST /products/:id/shopping_cart/
func (h *CartHandler) Add(c *gin.Context) {
	uid, ok := currentUser(c)
	if !ok {
		return
	}
	pid, ok := idParam(c)
	if !ok {
		return
	}

	item, err := h.Svc.AddToCart(c.Request.Context(), uid, pid)
	if err != nil {
		writeError(c, err)
		return
	}
	response.JSON(c, http.StatusCreated, item)
}

// PATCH /products/:id/shopping_cart/  {"product_quantity": n}
func (h *CartHandler) SetQuantity(c *gin.Context) {
	uid, ok := currentUser(c)
	if !ok {
		return
	}
	pid, ok := idParam(c)
	if !ok {
		return
	}

	var req setQuantityRequest
	// an empty body is a missing quantity, reported after the 404 checks
	if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		response.ValidationError(c, "Invalid input.", map[string][]string{
			"product_quantity": {"A valid integer is required."},
		})
		return
	}

	item, err := h.Svc.SetQuantity(c.Request.Context(), uid, pid, req.ProductQuantity.n)
	if err != nil {
		writeError(c, err)
		return
	}
	response.JSON(c, http.StatusOK, item)
}

// DELETE /products/:id/shopping_cart/
func (h *CartHandler) Remove(c *gin.Context) {
	uid, ok := currentUser(c)
	if !ok {
		return
	}
	pid, ok := idParam(c)
	if !ok {
		return
	}

	if err := h.Svc.RemoveFromCart(c.Request.Context(), uid, pid); err != nil {
		writeError(c, err)
		return
	}
	response.NoContent(c)
}

// GET /shopping_cart/
func (h *CartHandler) View(c *gin.Context) {
	uid, ok := currentUser(c)
	if !ok {
		return
	}

	cart, err := h.Svc.ViewCart(c.Request.Context(), uid)
	if err != nil {
		writeError(c, err)
		return
	}
	response.JSON(c, http.StatusOK, cart)
}

// DELETE /shopping_cart/
func (h *CartHandler) Clear(c *gin.Context) {
	uid, ok := currentUser(c)
	if !ok {
		return
	}

	if err := h.Svc.ClearCart(c.Request.Context(), uid); err != nil {
		writeError(c, err)
		return
	}
	response.NoContent(c)
}
