package router

import (
	"errors"
	"log/slog"
	"net/http"

	"storefront/internal/auth"
	"storefront/internal/catalog"
	"storefront/internal/middleware"

	"github.com/gin-gonic/gin"
)

// Deps is everything the HTTP layer needs.
type Deps struct {
	Catalog  *catalog.Service
	Guard    *auth.Guard
	Sessions *middleware.SessionManager
	// ReadLimit guards GET /products when non-nil.
	ReadLimit gin.HandlerFunc
	Logger    *slog.Logger
	// Production hides storage error details from the server log.
	Production bool
}

// Setup registers every HTTP route.
func Setup(r *gin.Engine, d Deps) {
	if d.Logger == nil {
		d.Logger = slog.Default()
	}
	// keep %2F inside product names from splitting the path
	r.UseRawPath = true
	r.UnescapePathValues = true

	r.Use(d.Sessions.Middleware())

	r.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"msg": "pong"})
	})

	// Admin session
	r.POST("/admin-login", adminLogin(d))
	r.POST("/admin-logout", adminLogout(d))
	r.GET("/admin-status", adminStatus(d))

	// Products
	products := []gin.HandlerFunc{listProducts(d)}
	if d.ReadLimit != nil {
		products = append([]gin.HandlerFunc{d.ReadLimit}, products...)
	}
	r.GET("/products", products...)
	r.POST("/add-product", addProduct(d))
	r.DELETE("/products/by-name/:name", deleteProductsByName(d))

	r.NoRoute(func(c *gin.Context) {
		if !d.Production {
			d.Logger.Info("page not found", "method", c.Request.Method, "url", c.Request.URL.String())
		}
		c.String(http.StatusNotFound, "Page not found.")
	})
}

// adminLogin checks the credential triple and marks the session as admin.
func adminLogin(d Deps) gin.HandlerFunc {
	return func(c *gin.Context) {
		var creds auth.Credentials
		// A malformed body is just another wrong credential.
		_ = c.ShouldBindJSON(&creds)

		sess := middleware.CurrentSession(c)
		if err := d.Guard.Login(c.Request.Context(), sess, creds); err != nil {
			if errors.Is(err, auth.ErrUnauthorized) {
				c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
				return
			}
			d.Logger.Error("admin login: save session", "err", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Login failed (server)."})
			return
		}
		if err := d.Sessions.Issue(c, sess); err != nil {
			d.Logger.Error("admin login: encode cookie", "err", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Login failed (server)."})
			return
		}
		c.JSON(http.StatusOK, gin.H{"message": "Logged in as admin"})
	}
}

// adminLogout destroys the whole session. It always succeeds from the client's point of view.
func adminLogout(d Deps) gin.HandlerFunc {
	return func(c *gin.Context) {
		if err := d.Guard.Logout(c.Request.Context(), middleware.CurrentSession(c)); err != nil {
			d.Logger.Error("admin logout: destroy session", "err", err)
		}
		d.Sessions.Clear(c)
		c.JSON(http.StatusOK, gin.H{"message": "Logged out"})
	}
}

func adminStatus(d Deps) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"isAdmin": d.Guard.RequireAdmin(middleware.CurrentSession(c))})
	}
}

// listProducts returns the whole catalog to anyone.
func listProducts(d Deps) gin.HandlerFunc {
	return func(c *gin.Context) {
		list, err := d.Catalog.List(c.Request.Context())
		if err != nil {
			d.storageError("list products", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch products."})
			return
		}
		c.JSON(http.StatusOK, list)
	}
}

// addProduct creates one product for an admin session.
func addProduct(d Deps) gin.HandlerFunc {
	return func(c *gin.Context) {
		sess := middleware.CurrentSession(c)
		if !d.Guard.RequireAdmin(sess) {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
			return
		}

		var in catalog.AddInput
		if err := c.ShouldBindJSON(&in); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid fields."})
			return
		}

		_, err := d.Catalog.Add(c.Request.Context(), sess, in)
		switch {
		case err == nil:
			c.JSON(http.StatusOK, gin.H{"message": "Product added successfully!"})
		case errors.Is(err, catalog.ErrUnauthorized):
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		case errors.Is(err, catalog.ErrValidation):
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid fields."})
		case errors.Is(err, catalog.ErrConflict):
			c.JSON(http.StatusConflict, gin.H{"error": "A product with this name and version already exists."})
		default:
			d.storageError("add product", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to add product (server)."})
		}
	}
}

// deleteProductsByName removes every version of a product, matching the name case-insensitively.
func deleteProductsByName(d Deps) gin.HandlerFunc {
	return func(c *gin.Context) {
		_, err := d.Catalog.DeleteByName(c.Request.Context(), middleware.CurrentSession(c), c.Param("name"))
		switch {
		case err == nil:
			c.JSON(http.StatusOK, gin.H{"message": "Product deleted."})
		case errors.Is(err, catalog.ErrUnauthorized):
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		case errors.Is(err, catalog.ErrNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "Product not found."})
		default:
			d.storageError("delete product", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete product."})
		}
	}
}

// storageError logs err unless running in production.
func (d Deps) storageError(op string, err error) {
	if d.Production {
		return
	}
	d.Logger.Error(op, "err", err)
}
