package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/pro-around/server/internal/model"
	"github.com/pro-around/server/internal/repo"
	"github.com/pro-around/server/internal/service"

	"github.com/gin-gonic/gin"
)

type DirectoryHandler interface {
	SearchNearby(c *gin.Context)
	GetProfile(c *gin.Context)
	GetProfileReviews(c *gin.Context)
	GetRawProfile(c *gin.Context)
	UpdateLastConnection(c *gin.Context)
	UpdateImage(c *gin.Context)
	UpdateProfile(c *gin.Context)
	ChangePassword(c *gin.Context)
	DeleteUser(c *gin.Context)
}

type directoryHandler struct {
	service service.DirectoryService
}

func NewDirectoryHandler(service service.DirectoryService) DirectoryHandler {
	return &directoryHandler{
		service: service,
	}
}

// SearchNearby handles GET /nearme/:longitude/:latitude[/:radius[/:search]].
// A radius that is not a valid number silently falls back to the
// default; longitude and latitude must parse.
func (h *directoryHandler) SearchNearby(c *gin.Context) {
	lng, err := strconv.ParseFloat(c.Param("longitude"), 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"message": "Invalid longitude",
		})
		return
	}
	lat, err := strconv.ParseFloat(c.Param("latitude"), 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"message": "Invalid latitude",
		})
		return
	}

	radius, err := strconv.ParseFloat(c.Param("radius"), 64)
	if err != nil {
		radius = service.DefaultSearchRadius
	}
	query := c.Param("search")

	users, err := h.service.SearchNearby(c.Request.Context(), lng, lat, radius, query)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"message": "Error getting the users",
			"error":   err.Error(),
		})
		return
	}
	if users == nil {
		users = []model.ProfessionalListing{}
	}

	c.JSON(http.StatusOK, gin.H{
		"users": users,
	})
}

func (h *directoryHandler) GetProfile(c *gin.Context) {
	user, err := h.service.Profile(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.respondLookupError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"user": user,
	})
}

func (h *directoryHandler) GetProfileReviews(c *gin.Context) {
	user, err := h.service.ProfileReviews(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.respondLookupError(c, err)
		return
	}
	if user.Reviews == nil {
		user.Reviews = []model.ExpandedReview{}
	}

	c.JSON(http.StatusOK, gin.H{
		"user": user,
	})
}

func (h *directoryHandler) GetRawProfile(c *gin.Context) {
	user, err := h.service.RawProfile(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.respondLookupError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"user": user,
	})
}

func (h *directoryHandler) UpdateLastConnection(c *gin.Context) {
	if err := h.service.Heartbeat(c.Request.Context(), c.Param("id")); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"message": "An error happened updating the user's last connection",
			"error":   err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "User's last connection updated",
	})
}

// UpdateImage handles PUT /image/:id with a multipart "profileImage"
// field. Every upload failure surfaces as one generic error.
func (h *directoryHandler) UpdateImage(c *gin.Context) {
	file, err := c.FormFile("profileImage")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"message": "profileImage file is required",
		})
		return
	}

	user, err := h.service.UpdatePhoto(c.Request.Context(), c.Param("id"), file)
	if err != nil {
		if errors.Is(err, repo.ErrUserNotFound) {
			h.respondNotFound(c)
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{
			"message": "An error happened when uploading the image",
			"error":   err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "User updated successfully",
		"user":    user,
	})
}

func (h *directoryHandler) UpdateProfile(c *gin.Context) {
	var in model.ProfileUpdate
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"message": "Invalid request body",
			"error":   err.Error(),
		})
		return
	}

	user, err := h.service.UpdateProfile(c.Request.Context(), c.Param("id"), in)
	if err != nil {
		switch {
		case errors.Is(err, repo.ErrUserNotFound):
			h.respondNotFound(c)
		case errors.Is(err, service.ErrUnsupportedRole):
			c.JSON(http.StatusUnprocessableEntity, gin.H{
				"message": "Unsupported user role",
				"error":   err.Error(),
			})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{
				"message": "Error updating the user",
				"error":   err.Error(),
			})
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "User updated successfully",
		"user":    user,
	})
}

func (h *directoryHandler) ChangePassword(c *gin.Context) {
	var in model.PasswordChange
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"message": "Invalid request body",
			"error":   err.Error(),
		})
		return
	}

	err := h.service.ChangePassword(c.Request.Context(), c.Param("id"), in)
	if err != nil {
		switch {
		case errors.Is(err, repo.ErrUserNotFound):
			h.respondNotFound(c)
		case errors.Is(err, service.ErrWrongPassword):
			c.JSON(http.StatusUnauthorized, gin.H{
				"message": "Current password is incorrect",
			})
		case errors.Is(err, service.ErrEmptyPassword):
			c.JSON(http.StatusBadRequest, gin.H{
				"message": "New password must not be empty",
			})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{
				"message": "Error updating the password",
				"error":   err.Error(),
			})
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Password updated successfully",
	})
}

// DeleteUser reports success whether or not a document matched.
func (h *directoryHandler) DeleteUser(c *gin.Context) {
	if err := h.service.Delete(c.Request.Context(), c.Param("id")); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"message": "Error removing the specified user",
			"error":   err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "User deleted successfully",
	})
}

func (h *directoryHandler) respondLookupError(c *gin.Context, err error) {
	if errors.Is(err, repo.ErrUserNotFound) {
		h.respondNotFound(c)
		return
	}
	c.JSON(http.StatusInternalServerError, gin.H{
		"message": "Error getting the specified user",
		"error":   err.Error(),
	})
}

func (h *directoryHandler) respondNotFound(c *gin.Context) {
	c.JSON(http.StatusNotFound, gin.H{
		"message": "User not found",
	})
}
