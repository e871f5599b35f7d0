package api

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/example/storefront/internal/catalog"
	"github.com/example/storefront/internal/domain/auth"
	"github.com/example/storefront/internal/domain/cart"
	"github.com/example/storefront/internal/domain/order"
	"github.com/example/storefront/internal/domain/product"
	"github.com/example/storefront/internal/domain/review"
	"github.com/example/storefront/internal/domain/wishlist"
)

// Checkout totals mirror the storefront's pricing: flat 10% tax,
// free shipping.
const taxRate = 0.10

type Handlers struct {
	catalog  *catalog.Client
	cart     *cart.Manager
	wishlist *wishlist.Manager
	auth     *auth.Manager
	orders   *order.Manager
	reviews  *review.Manager
	log      logrus.FieldLogger
}

func NewHandlers(
	cat *catalog.Client,
	cartMgr *cart.Manager,
	wishMgr *wishlist.Manager,
	authMgr *auth.Manager,
	orderMgr *order.Manager,
	reviewMgr *review.Manager,
	log logrus.FieldLogger,
) *Handlers {
	return &Handlers{
		catalog:  cat,
		cart:     cartMgr,
		wishlist: wishMgr,
		auth:     authMgr,
		orders:   orderMgr,
		reviews:  reviewMgr,
		log:      log,
	}
}

// Product handlers

func (h *Handlers) GetProducts(w http.ResponseWriter, r *http.Request) {
	products, err := h.catalog.Products(r.Context())
	if err != nil {
		h.log.WithError(err).Error("api: catalog fetch failed")
		respondJSONError(w, "Failed to fetch products", http.StatusBadGateway)
		return
	}
	respondJSON(w, http.StatusOK, products)
}

func (h *Handlers) GetProduct(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r.URL.Path, "/products/")
	if !ok {
		return
	}

	p, err := h.catalog.Product(r.Context(), id)
	if err != nil {
		h.log.WithError(err).WithField("product_id", id).Error("api: catalog fetch failed")
		respondJSONError(w, "Failed to fetch product", http.StatusBadGateway)
		return
	}
	respondJSON(w, http.StatusOK, p)
}

// Cart handlers

// CartResponse carries the cart plus its derived values so the
// presentation layer never recomputes totals.
type CartResponse struct {
	Items []cart.Line `json:"items"`
	Total float64     `json:"total"`
	Count int         `json:"count"`
}

func (h *Handlers) GetCart(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, h.cartResponse())
}

func (h *Handlers) AddToCart(w http.ResponseWriter, r *http.Request) {
	var p product.Product
	if err := json.NewDecoder(r.Body).Decode(&p); err != nil {
		respondJSONError(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	h.cart.Add(p)
	respondJSON(w, http.StatusOK, h.cartResponse())
}

func (h *Handlers) UpdateCartItem(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r.URL.Path, "/cart/items/")
	if !ok {
		return
	}

	var req struct {
		Quantity int `json:"quantity"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondJSONError(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	h.cart.SetQuantity(id, req.Quantity)
	respondJSON(w, http.StatusOK, h.cartResponse())
}

func (h *Handlers) RemoveFromCart(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r.URL.Path, "/cart/items/")
	if !ok {
		return
	}

	h.cart.Remove(id)
	respondJSON(w, http.StatusOK, h.cartResponse())
}

func (h *Handlers) ClearCart(w http.ResponseWriter, r *http.Request) {
	h.cart.Clear()
	respondJSON(w, http.StatusOK, h.cartResponse())
}

func (h *Handlers) cartResponse() CartResponse {
	return CartResponse{
		Items: h.cart.Lines(),
		Total: h.cart.Total(),
		Count: h.cart.Count(),
	}
}

// Wishlist handlers

func (h *Handlers) GetWishlist(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, h.wishlist.Products())
}

func (h *Handlers) AddToWishlist(w http.ResponseWriter, r *http.Request) {
	var p product.Product
	if err := json.NewDecoder(r.Body).Decode(&p); err != nil {
		respondJSONError(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	h.wishlist.Add(p)
	respondJSON(w, http.StatusOK, h.wishlist.Products())
}

func (h *Handlers) RemoveFromWishlist(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r.URL.Path, "/wishlist/")
	if !ok {
		return
	}

	h.wishlist.Remove(id)
	respondJSON(w, http.StatusOK, h.wishlist.Products())
}

// Auth handlers

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type SignupRequest struct {
	Email     string `json:"email"`
	Password  string `json:"password"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
}

func (h *Handlers) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondJSONError(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	if err := h.auth.Login(r.Context(), req.Email, req.Password); err != nil {
		respondJSONError(w, "Invalid email or password", http.StatusUnauthorized)
		return
	}

	id, _ := h.auth.Current()
	respondJSON(w, http.StatusOK, id)
}

func (h *Handlers) Signup(w http.ResponseWriter, r *http.Request) {
	var req SignupRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondJSONError(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	if err := h.auth.Signup(r.Context(), req.Email, req.Password, req.FirstName, req.LastName); err != nil {
		switch err {
		case auth.ErrEmailTaken:
			respondJSONError(w, "Email already registered", http.StatusConflict)
		case auth.ErrPasswordTooShort:
			respondJSONError(w, "Password must be at least 8 characters", http.StatusBadRequest)
		default:
			respondJSONError(w, "Signup failed", http.StatusInternalServerError)
		}
		return
	}

	id, _ := h.auth.Current()
	respondJSON(w, http.StatusCreated, id)
}

func (h *Handlers) Logout(w http.ResponseWriter, r *http.Request) {
	h.auth.Logout()
	respondJSON(w, http.StatusOK, map[string]string{"message": "Logout successful"})
}

func (h *Handlers) Me(w http.ResponseWriter, r *http.Request) {
	id, ok := h.auth.Current()
	if !ok {
		respondJSONError(w, "Not authenticated", http.StatusUnauthorized)
		return
	}
	respondJSON(w, http.StatusOK, id)
}

// Order handlers

func (h *Handlers) GetOrders(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, h.orders.Orders())
}

func (h *Handlers) GetOrder(w http.ResponseWriter, r *http.Request) {
	id := strings.TrimPrefix(r.URL.Path, "/orders/")
	o, ok := h.orders.GetOrderByID(id)
	if !ok {
		respondJSONError(w, "Order not found", http.StatusNotFound)
		return
	}
	respondJSON(w, http.StatusOK, o)
}

type CheckoutRequest struct {
	ShippingAddress string `json:"shipping_address"`
}

type CheckoutResponse struct {
	Order    order.Order `json:"order"`
	Subtotal float64     `json:"subtotal"`
	Tax      float64     `json:"tax"`
	Shipping float64     `json:"shipping"`
}

// Checkout snapshots the cart into a new order and clears the cart.
func (h *Handlers) Checkout(w http.ResponseWriter, r *http.Request) {
	if !h.auth.IsAuthenticated() {
		respondJSONError(w, "Not authenticated", http.StatusUnauthorized)
		return
	}

	var req CheckoutRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondJSONError(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	items := h.cart.Lines()
	if len(items) == 0 {
		respondJSONError(w, "Cart is empty", http.StatusBadRequest)
		return
	}

	subtotal := h.cart.Total()
	tax := subtotal * taxRate
	shipping := 0.0
	total := subtotal + tax + shipping

	o := h.orders.AddOrder(r.Context(), items, total, req.ShippingAddress)
	h.cart.Clear()

	respondJSON(w, http.StatusCreated, CheckoutResponse{
		Order:    o,
		Subtotal: subtotal,
		Tax:      tax,
		Shipping: shipping,
	})
}

// Review handlers

type ReviewsResponse struct {
	Reviews       []review.Review `json:"reviews"`
	AverageRating float64         `json:"average_rating"`
}

func (h *Handlers) GetProductReviews(w http.ResponseWriter, r *http.Request) {
	id, ok := reviewsPathID(w, r.URL.Path)
	if !ok {
		return
	}

	respondJSON(w, http.StatusOK, ReviewsResponse{
		Reviews:       h.reviews.ProductReviews(id),
		AverageRating: h.reviews.AverageRating(id),
	})
}

func (h *Handlers) AddProductReview(w http.ResponseWriter, r *http.Request) {
	id, ok := reviewsPathID(w, r.URL.Path)
	if !ok {
		return
	}

	identity, authed := h.auth.Current()
	if !authed {
		respondJSONError(w, "Not authenticated", http.StatusUnauthorized)
		return
	}

	var req struct {
		Rating  int    `json:"rating"`
		Comment string `json:"comment"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondJSONError(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	userName := strings.TrimSpace(identity.FirstName + " " + identity.LastName)
	rev, err := h.reviews.AddReview(id, req.Rating, req.Comment, identity.ID, userName)
	if err != nil {
		respondJSONError(w, "Rating must be between 1 and 5", http.StatusBadRequest)
		return
	}

	respondJSON(w, http.StatusCreated, rev)
}

// Helpers

// pathID parses the integer segment after prefix, responding 400 on
// garbage.
func pathID(w http.ResponseWriter, path, prefix string) (int, bool) {
	raw := strings.TrimPrefix(path, prefix)
	raw = strings.SplitN(raw, "/", 2)[0]
	id, err := strconv.Atoi(raw)
	if err != nil {
		respondJSONError(w, "Invalid id", http.StatusBadRequest)
		return 0, false
	}
	return id, true
}

// reviewsPathID parses the product id from /products/{id}/reviews.
func reviewsPathID(w http.ResponseWriter, path string) (int, bool) {
	return pathID(w, path, "/products/")
}

func respondJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func respondJSONError(w http.ResponseWriter, message string, status int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": message})
}
